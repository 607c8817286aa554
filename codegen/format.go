// Copyright 2025 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package codegen

import (
	"strings"
)

const indentUnit = "  "

// Format renders generated code as source text. Output depends only on the
// tree, so formatting the same tree twice gives identical text.
func Format(gc *GeneratedCode) string {
	f := &formatter{}
	var sections []func()
	if len(gc.Imports) > 0 {
		sections = append(sections, func() {
			for _, imp := range gc.Imports {
				f.line(0, "use "+imp)
			}
		})
	}
	if len(gc.Parameters) > 0 {
		sections = append(sections, func() {
			for _, p := range gc.Parameters {
				f.line(0, "const "+p.Name+": "+scriptParamType(p)+" = "+scriptParamValue(p))
			}
		})
	}
	for _, td := range gc.Types {
		sections = append(sections, func() {
			f.typeDef(td)
		})
	}
	sections = append(sections, func() {
		for _, n := range gc.Notes {
			f.line(0, "// "+n)
		}
		f.validator(gc.Validator)
	})
	for i, section := range sections {
		if i > 0 {
			f.sb.WriteString("\n")
		}
		section()
	}
	return f.sb.String()
}

type formatter struct {
	sb strings.Builder
}

func (f *formatter) line(indent int, s string) {
	f.sb.WriteString(strings.Repeat(indentUnit, indent))
	f.sb.WriteString(s)
	f.sb.WriteString("\n")
}

func (f *formatter) typeDef(td TypeDefinition) {
	f.line(0, "pub type "+td.Name+" {")
	switch td.Kind {
	case TypeEnum:
		for _, v := range td.Variants {
			if len(v.Fields) == 0 {
				f.line(1, v.Name)
				continue
			}
			f.line(1, v.Name+" { "+fieldList(v.Fields)+" }")
		}
	default:
		for _, fd := range td.Fields {
			f.line(1, fd.Name+": "+fd.Type+",")
		}
	}
	f.line(0, "}")
}

func fieldList(fields []FieldDefinition) string {
	parts := make([]string, 0, len(fields))
	for _, fd := range fields {
		parts = append(parts, fd.Name+": "+fd.Type)
	}
	return strings.Join(parts, ", ")
}

func (f *formatter) validator(v ValidatorBlock) {
	header := "validator " + v.Name
	if len(v.Parameters) > 0 {
		header += "(" + strings.Join(v.Parameters, ", ") + ")"
	}
	f.line(0, header+" {")
	for i, h := range v.Handlers {
		if i > 0 {
			f.sb.WriteString("\n")
		}
		f.line(1, h.Purpose+"("+strings.Join(h.Params, ", ")+") {")
		if h.Body != nil {
			f.stmts(2, h.Body.Children)
		}
		f.line(1, "}")
	}
	f.line(0, "}")
}

func (f *formatter) stmts(indent int, blocks []*CodeBlock) {
	for _, b := range blocks {
		f.block(indent, b)
	}
}

func (f *formatter) block(indent int, b *CodeBlock) {
	switch b.Kind {
	case BlockLet:
		if len(b.Children) == 1 && b.Content == "" {
			fn := b.Children[0]
			f.line(indent, "let "+b.Name+" = "+fn.Header+" {")
			f.stmts(indent+1, fn.Children)
			f.line(indent, "}")
			return
		}
		f.line(indent, "let "+b.Name+" = "+b.Content)
	case BlockExpect:
		f.line(indent, "expect "+b.Content)
	case BlockExpression:
		f.line(indent, b.Content)
	case BlockIf:
		f.line(indent, "if "+b.Header+" {")
		f.stmts(indent+1, b.Children)
		for e := b.Else; e != nil; {
			if e.Kind == BlockIf {
				f.line(indent, "} else if "+e.Header+" {")
				f.stmts(indent+1, e.Children)
				e = e.Else
				continue
			}
			f.line(indent, "} else {")
			f.stmts(indent+1, e.Children)
			break
		}
		f.line(indent, "}")
	case BlockWhen:
		f.line(indent, "when "+b.Header+" is {")
		for _, branch := range b.Children {
			if text, ok := singleLine(branch.Children); ok {
				f.line(indent+1, branch.Header+" -> "+text)
				continue
			}
			f.line(indent+1, branch.Header+" -> {")
			f.stmts(indent+2, branch.Children)
			f.line(indent+1, "}")
		}
		f.line(indent, "}")
	default:
		if b.Header == "" {
			f.stmts(indent, b.Children)
			return
		}
		f.line(indent, b.Header+" {")
		f.stmts(indent+1, b.Children)
		f.line(indent, "}")
	}
}

// singleLine reports the text of a branch body that is one expression
func singleLine(blocks []*CodeBlock) (string, bool) {
	if len(blocks) != 1 || blocks[0].Kind != BlockExpression {
		return "", false
	}
	return blocks[0].Content, true
}
