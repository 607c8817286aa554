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

package ir

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/blinklabs-io/uplcdec/uplc"
)

var opSymbols = map[string]string{
	"add":    "+",
	"sub":    "-",
	"mul":    "*",
	"div":    "/",
	"quot":   "quot",
	"rem":    "rem",
	"mod":    "%",
	"eq":     "==",
	"lt":     "<",
	"le":     "<=",
	"concat": "++",
}

// Format renders a module as indented pseudo-source for inspection
func Format(m *Module) string {
	f := &formatter{}
	for _, imp := range m.Imports {
		f.line("use " + imp)
	}
	if len(m.Imports) > 0 {
		f.line("")
	}
	for _, td := range m.Types {
		f.line(fmt.Sprintf("type %s = %s", td.Name, td.Type))
	}
	for i, fn := range m.Functions {
		if i > 0 || len(m.Types) > 0 {
			f.line("")
		}
		params := make([]string, 0, len(fn.Params))
		for _, p := range fn.Params {
			params = append(params, p.Name)
		}
		f.line(fmt.Sprintf("fn %s(%s) {", fn.Name, strings.Join(params, ", ")))
		f.indent++
		f.stmts(fn.Body)
		f.indent--
		f.line("}")
	}
	for _, h := range m.Hints {
		f.line(fmt.Sprintf("// hint: %s %s (%.2f) %s", h.Kind, h.Target, h.Confidence, h.Reason))
	}
	return f.sb.String()
}

type formatter struct {
	sb     strings.Builder
	indent int
}

func (f *formatter) line(s string) {
	if s != "" {
		f.sb.WriteString(strings.Repeat("  ", f.indent))
	}
	f.sb.WriteString(s)
	f.sb.WriteString("\n")
}

func (f *formatter) stmts(stmts []Stmt) {
	for _, s := range stmts {
		switch v := s.(type) {
		case *LetStmt:
			f.line("let " + v.Name + " = " + f.expr(v.Value))
		case *ReturnStmt:
			f.line(f.expr(v.Value))
		case *FailStmt:
			f.line("fail")
		case *ExprStmt:
			f.line(f.expr(v.Expr))
		}
	}
}

// block renders statements at one deeper level and returns the text
// without a trailing newline
func (f *formatter) block(stmts []Stmt) string {
	inner := &formatter{indent: f.indent + 1}
	inner.stmts(stmts)
	return strings.TrimRight(inner.sb.String(), "\n")
}

func (f *formatter) exprs(exprs []Expr) string {
	parts := make([]string, 0, len(exprs))
	for _, e := range exprs {
		parts = append(parts, f.expr(e))
	}
	return strings.Join(parts, ", ")
}

func (f *formatter) expr(e Expr) string {
	pad := strings.Repeat("  ", f.indent)
	switch v := e.(type) {
	case *Literal:
		return formatLiteral(v.Value)
	case *Variable:
		return v.Name
	case *BinaryExpr:
		sym, ok := opSymbols[v.Op]
		if !ok {
			sym = v.Op
		}
		return "(" + f.expr(v.Left) + " " + sym + " " + f.expr(v.Right) + ")"
	case *UnaryExpr:
		return v.Op + "(" + f.expr(v.Operand) + ")"
	case *CallExpr:
		head := v.Builtin
		if head == "" {
			head = f.expr(v.Func)
		}
		return head + "(" + f.exprs(v.Args) + ")"
	case *LambdaExpr:
		params := make([]string, 0, len(v.Params))
		for _, p := range v.Params {
			params = append(params, p.Name)
		}
		return "fn(" + strings.Join(params, ", ") + ") {\n" + f.block(v.Body) + "\n" + pad + "}"
	case *ConstructorExpr:
		return "Constr" + strconv.FormatUint(v.Index, 10) + "(" + f.exprs(v.Args) + ")"
	case *WhenExpr:
		var sb strings.Builder
		sb.WriteString("when " + f.expr(v.Subject) + " is {\n")
		for _, b := range v.Branches {
			sb.WriteString(pad + "  " + b.Pattern + " -> {\n")
			inner := &formatter{indent: f.indent + 1}
			sb.WriteString(inner.block(b.Body) + "\n")
			sb.WriteString(pad + "  }\n")
		}
		sb.WriteString(pad + "}")
		return sb.String()
	}
	return "?"
}

func formatLiteral(v uplc.Value) string {
	if v == nil {
		return "?"
	}
	return uplc.ShowValue(v)
}
