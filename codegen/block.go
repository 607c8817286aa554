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
	"sort"
	"strings"

	"github.com/blinklabs-io/uplcdec/analysis"
	"github.com/blinklabs-io/uplcdec/uplc"
)

type BlockKind string

const (
	BlockWhen       BlockKind = "when"
	BlockIf         BlockKind = "if"
	BlockLet        BlockKind = "let"
	BlockExpect     BlockKind = "expect"
	BlockExpression BlockKind = "expression"
	BlockBlock      BlockKind = "block"
)

// CodeBlock is one node of a generated handler body.
//
// A when block has its subject in Header and one block child per branch
// with the pattern in Header. An if block has its condition in Header,
// the then statements in Children and the else branch in Else. A let block
// has Name and either Content or a single block child for function values.
// A block with a Header is a function literal.
type CodeBlock struct {
	Kind     BlockKind
	Header   string
	Name     string
	Content  string
	Children []*CodeBlock
	Else     *CodeBlock
}

// lowerer turns validator bodies into code blocks
type lowerer struct {
	r        *renderer
	variants map[uplc.Term]analysis.RedeemerVariant
}

func newLowerer(r *renderer, variants []analysis.RedeemerVariant) *lowerer {
	l := &lowerer{
		r:        r,
		variants: make(map[uplc.Term]analysis.RedeemerVariant, len(variants)),
	}
	for _, v := range variants {
		if v.Body != nil {
			l.variants[v.Body] = v
		}
	}
	return l
}

// statements lowers a term in statement position. Lets, traces and
// expectations become statements and the remaining term ends the list.
func (l *lowerer) statements(t uplc.Term) []*CodeBlock {
	var ret []*CodeBlock
	for {
		t = unwrap(t)
		if name, value, body, ok := uplc.AsLet(t); ok {
			if b, found := l.r.env.Lookup(name); !found || b.Kind == BindingKeep {
				ret = append(ret, l.let(name, value))
			}
			t = body
			continue
		}
		if args, ok := uplc.MatchBuiltin(t, "trace", 2); ok {
			ret = append(ret, &CodeBlock{
				Kind:    BlockExpression,
				Content: "trace " + l.r.expr(args[0]),
			})
			t = args[1]
			continue
		}
		if args, ok := uplc.MatchBuiltin(t, "ifThenElse", 3); ok {
			if _, variant := l.variants[unwrap(args[1])]; !variant {
				if isError(args[2]) {
					ret = append(ret, &CodeBlock{Kind: BlockExpect, Content: l.r.expr(args[0])})
					t = args[1]
					continue
				}
				if isError(args[1]) {
					ret = append(ret, &CodeBlock{Kind: BlockExpect, Content: negate(l.r.operand(args[0]))})
					t = args[2]
					continue
				}
			}
		}
		return append(ret, l.tail(t))
	}
}

// tail lowers the final term of a statement list
func (l *lowerer) tail(t uplc.Term) *CodeBlock {
	if when, ok := l.dispatch(t); ok {
		return when
	}
	switch v := t.(type) {
	case *uplc.Error:
		return &CodeBlock{Kind: BlockExpression, Content: "fail"}
	case *uplc.Lambda:
		params, body := lambdaParams(v)
		return &CodeBlock{
			Kind:     BlockBlock,
			Header:   "fn(" + strings.Join(params, ", ") + ")",
			Children: l.statements(body),
		}
	case *uplc.Case:
		when := &CodeBlock{Kind: BlockWhen, Header: l.r.expr(v.Scrutinee)}
		for i, b := range v.Branches {
			params, body := lambdaParams(b)
			when.Children = append(when.Children, &CodeBlock{
				Kind:     BlockBlock,
				Header:   casePattern(uint64(i), params),
				Children: l.statements(body),
			})
		}
		return when
	}
	if args, ok := uplc.MatchBuiltin(t, "ifThenElse", 3); ok {
		if !isBoolConst(args[1], true) || !isBoolConst(args[2], false) {
			return &CodeBlock{
				Kind:     BlockIf,
				Header:   l.r.expr(args[0]),
				Children: l.statements(args[1]),
				Else:     l.elseBlock(args[2]),
			}
		}
	}
	return &CodeBlock{Kind: BlockExpression, Content: l.r.expr(t)}
}

func (l *lowerer) elseBlock(t uplc.Term) *CodeBlock {
	stmts := l.statements(t)
	if len(stmts) == 1 && stmts[0].Kind == BlockIf {
		return stmts[0]
	}
	return &CodeBlock{Kind: BlockBlock, Children: stmts}
}

func (l *lowerer) let(name string, value uplc.Term) *CodeBlock {
	let := &CodeBlock{Kind: BlockLet, Name: name}
	if lam, ok := unwrap(value).(*uplc.Lambda); ok {
		let.Children = []*CodeBlock{l.tail(lam)}
		return let
	}
	let.Content = l.r.expr(value)
	return let
}

// dispatch turns a chain of redeemer constructor tests, or a case over the
// redeemer, into a when block over the recognized variants
func (l *lowerer) dispatch(t uplc.Term) (*CodeBlock, bool) {
	if len(l.variants) == 0 {
		return nil, false
	}
	type arm struct {
		variant analysis.RedeemerVariant
		body    uplc.Term
	}
	var arms []arm
	var fallback uplc.Term
	if c, ok := t.(*uplc.Case); ok {
		for _, b := range c.Branches {
			v, ok := l.variants[b]
			if !ok {
				return nil, false
			}
			arms = append(arms, arm{variant: v, body: b})
		}
	} else {
		cur := t
		for {
			args, ok := uplc.MatchBuiltin(unwrap(cur), "ifThenElse", 3)
			if !ok {
				break
			}
			then := unwrap(args[1])
			v, ok := l.variants[then]
			if !ok {
				break
			}
			arms = append(arms, arm{variant: v, body: then})
			cur = args[2]
		}
		fallback = cur
	}
	if len(arms) == 0 {
		return nil, false
	}
	sort.SliceStable(arms, func(i, j int) bool {
		return arms[i].variant.Index < arms[j].variant.Index
	})
	when := &CodeBlock{Kind: BlockWhen, Header: "redeemer"}
	prevBound := l.r.bound
	for _, a := range arms {
		params, body := lambdaParams(a.body)
		pattern := a.variant.Name
		bound := make(map[int]string, len(a.variant.Fields))
		switch {
		case len(params) > 0:
			pattern = call(pattern, params)
		case len(a.variant.Fields) > 0:
			names := make([]string, 0, len(a.variant.Fields))
			for _, f := range a.variant.Fields {
				bound[f.Index] = f.Name
				names = append(names, f.Name)
			}
			pattern += " { " + strings.Join(names, ", ") + ", .. }"
		}
		l.r.bound = bound
		when.Children = append(when.Children, &CodeBlock{
			Kind:     BlockBlock,
			Header:   pattern,
			Children: l.statements(body),
		})
	}
	l.r.bound = prevBound
	if fallback != nil {
		when.Children = append(when.Children, &CodeBlock{
			Kind:     BlockBlock,
			Header:   "_",
			Children: l.statements(fallback),
		})
	}
	return when, true
}

func isError(t uplc.Term) bool {
	_, ok := unwrap(t).(*uplc.Error)
	return ok
}

func negate(s string) string {
	return "!" + s
}
