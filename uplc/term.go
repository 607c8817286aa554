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

// Package uplc contains the canonical Untyped Plutus Core term model shared
// by the parser, the binary converter, the analysis engine and the code
// generator.
//
// Terms are built once and never modified afterwards. All variants are
// pointers so that pattern-recognition passes can deduplicate matches by
// node identity.
package uplc

// Term is a node of a UPLC program
type Term interface {
	isTerm()
}

// Program wraps a root term together with the language version
type Program struct {
	Version [3]uint
	Term    Term
}

// DefaultVersion is the version used when none is specified
var DefaultVersion = [3]uint{1, 1, 0}

type Var struct {
	Name string
}

type Lambda struct {
	Param string
	Body  Term
}

type Apply struct {
	Func Term
	Arg  Term
}

type Constant struct {
	Value Value
}

type Builtin struct {
	Name string
}

type Force struct {
	Term Term
}

type Delay struct {
	Term Term
}

type Error struct{}

// Case selects a branch based on the constructor tag of the scrutinee
type Case struct {
	Scrutinee Term
	Branches  []Term
}

// Constr builds a sums-of-products value
type Constr struct {
	Index uint64
	Args  []Term
}

func (*Var) isTerm()      {}
func (*Lambda) isTerm()   {}
func (*Apply) isTerm()    {}
func (*Constant) isTerm() {}
func (*Builtin) isTerm()  {}
func (*Force) isTerm()    {}
func (*Delay) isTerm()    {}
func (*Error) isTerm()    {}
func (*Case) isTerm()     {}
func (*Constr) isTerm()   {}

// NewApply folds the given arguments into nested binary applications
func NewApply(fn Term, args ...Term) Term {
	ret := fn
	for _, arg := range args {
		ret = &Apply{Func: ret, Arg: arg}
	}
	return ret
}

// NewLet builds the let-binding idiom (lam name body) value
func NewLet(name string, value Term, body Term) *Apply {
	return &Apply{
		Func: &Lambda{Param: name, Body: body},
		Arg:  value,
	}
}

// AsLet reports whether the term is a let-binding, returning its parts
func AsLet(t Term) (name string, value Term, body Term, ok bool) {
	app, isApp := t.(*Apply)
	if !isApp {
		return "", nil, nil, false
	}
	lam, isLam := app.Func.(*Lambda)
	if !isLam {
		return "", nil, nil, false
	}
	return lam.Param, app.Arg, lam.Body, true
}

// Children returns the direct sub-terms in evaluation order
func Children(t Term) []Term {
	switch v := t.(type) {
	case *Lambda:
		return []Term{v.Body}
	case *Apply:
		return []Term{v.Func, v.Arg}
	case *Force:
		return []Term{v.Term}
	case *Delay:
		return []Term{v.Term}
	case *Case:
		ret := make([]Term, 0, len(v.Branches)+1)
		ret = append(ret, v.Scrutinee)
		return append(ret, v.Branches...)
	case *Constr:
		return v.Args
	default:
		return nil
	}
}

// KindName returns a short lowercase name for the term variant
func KindName(t Term) string {
	switch t.(type) {
	case *Var:
		return "var"
	case *Lambda:
		return "lam"
	case *Apply:
		return "app"
	case *Constant:
		return "con"
	case *Builtin:
		return "builtin"
	case *Force:
		return "force"
	case *Delay:
		return "delay"
	case *Error:
		return "error"
	case *Case:
		return "case"
	case *Constr:
		return "constr"
	default:
		return "unknown"
	}
}
