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

	"github.com/blinklabs-io/uplcdec/uplc"
)

// Options selects the optimization passes to run
type Options struct {
	ConstantFolding     bool `yaml:"constantFolding"`
	DeadCodeElimination bool `yaml:"deadCodeElimination"`
	Inlining            bool `yaml:"inlining"`
}

// DefaultOptions enables every pass
func DefaultOptions() Options {
	return Options{
		ConstantFolding:     true,
		DeadCodeElimination: true,
		Inlining:            true,
	}
}

// Optimize runs the selected passes and returns a new module. The input
// module is not modified.
func Optimize(m *Module, opts Options) *Module {
	ret := &Module{
		Types:   append([]*TypeDef(nil), m.Types...),
		Imports: append([]string(nil), m.Imports...),
		Hints:   append([]Hint(nil), m.Hints...),
	}
	p := &passes{opts: opts}
	for _, fn := range m.Functions {
		ret.Functions = append(ret.Functions, &Function{
			Name:       fn.Name,
			Params:     fn.Params,
			ReturnType: fn.ReturnType,
			Body:       p.stmts(fn.Body),
		})
	}
	if opts.Inlining {
		ret.Hints = append(ret.Hints, inlineHints(ret)...)
	}
	return ret
}

type passes struct {
	opts Options
}

// stmts rewrites a statement list. Dead code elimination drops everything
// after the first return or fail.
func (p *passes) stmts(stmts []Stmt) []Stmt {
	ret := make([]Stmt, 0, len(stmts))
	for _, s := range stmts {
		switch v := s.(type) {
		case *LetStmt:
			ret = append(ret, &LetStmt{Name: v.Name, Value: p.expr(v.Value)})
		case *ReturnStmt:
			ret = append(ret, &ReturnStmt{Value: p.expr(v.Value)})
		case *ExprStmt:
			ret = append(ret, &ExprStmt{Expr: p.expr(v.Expr)})
		case *FailStmt:
			ret = append(ret, &FailStmt{})
		}
		if p.opts.DeadCodeElimination && isTerminator(s) {
			break
		}
	}
	return ret
}

func isTerminator(s Stmt) bool {
	switch s.(type) {
	case *ReturnStmt, *FailStmt:
		return true
	}
	return false
}

func (p *passes) exprs(exprs []Expr) []Expr {
	ret := make([]Expr, 0, len(exprs))
	for _, e := range exprs {
		ret = append(ret, p.expr(e))
	}
	return ret
}

// expr rewrites an expression bottom-up, folding operators whose operands
// are literals when constant folding is enabled
func (p *passes) expr(e Expr) Expr {
	switch v := e.(type) {
	case *BinaryExpr:
		left := p.expr(v.Left)
		right := p.expr(v.Right)
		if p.opts.ConstantFolding {
			if folded, ok := foldLiterals(v.Builtin, left, right); ok {
				return folded
			}
		}
		return &BinaryExpr{Op: v.Op, Builtin: v.Builtin, Left: left, Right: right}
	case *UnaryExpr:
		operand := p.expr(v.Operand)
		if p.opts.ConstantFolding {
			if folded, ok := foldLiterals(v.Builtin, operand); ok {
				return folded
			}
		}
		return &UnaryExpr{Op: v.Op, Builtin: v.Builtin, Operand: operand}
	case *CallExpr:
		ret := &CallExpr{Builtin: v.Builtin, Args: p.exprs(v.Args)}
		if v.Func != nil {
			ret.Func = p.expr(v.Func)
		}
		return ret
	case *LambdaExpr:
		return &LambdaExpr{Params: v.Params, Body: p.stmts(v.Body)}
	case *ConstructorExpr:
		return &ConstructorExpr{Index: v.Index, Args: p.exprs(v.Args)}
	case *WhenExpr:
		ret := &WhenExpr{Subject: p.expr(v.Subject)}
		for _, b := range v.Branches {
			ret.Branches = append(ret.Branches, &Branch{
				Pattern: b.Pattern,
				Body:    p.stmts(b.Body),
			})
		}
		return ret
	}
	return e
}

func foldLiterals(builtin string, operands ...Expr) (Expr, bool) {
	values := make([]uplc.Value, 0, len(operands))
	for _, o := range operands {
		lit, ok := o.(*Literal)
		if !ok {
			return nil, false
		}
		values = append(values, lit.Value)
	}
	folded, ok := FoldBuiltin(builtin, values)
	if !ok {
		return nil, false
	}
	return &Literal{Value: folded, Type: TypeOf(folded.Type())}, true
}

// inlineHints reports functions and let-bound lambdas whose body is a
// single return
func inlineHints(m *Module) []Hint {
	var ret []Hint
	for _, fn := range m.Functions {
		if len(fn.Body) == 1 {
			if _, ok := fn.Body[0].(*ReturnStmt); ok {
				ret = append(ret, Hint{
					Kind:       "inline",
					Target:     fn.Name,
					Confidence: 0.9,
					Reason:     "function body is a single return",
				})
			}
		}
		for _, s := range fn.Body {
			let, ok := s.(*LetStmt)
			if !ok {
				continue
			}
			lam, ok := let.Value.(*LambdaExpr)
			if !ok || len(lam.Body) != 1 {
				continue
			}
			if _, ok := lam.Body[0].(*ReturnStmt); ok {
				ret = append(ret, Hint{
					Kind:       "inline",
					Target:     let.Name,
					Confidence: 0.6,
					Reason:     fmt.Sprintf("lambda with %d parameters returns a single expression", len(lam.Params)),
				})
			}
		}
	}
	return ret
}
