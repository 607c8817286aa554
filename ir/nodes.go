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

// Package ir holds a simplified, statement oriented form of a UPLC program
// that optimization passes run over.
package ir

import (
	"strings"

	"github.com/blinklabs-io/uplcdec/uplc"
)

// Module is the unit of lowering and optimization.
type Module struct {
	Types     []*TypeDef
	Functions []*Function
	Imports   []string
	Hints     []Hint
}

// TypeDef names a type used by the module.
type TypeDef struct {
	Name string
	Type *Type
}

// Function represents a top level function.
type Function struct {
	Name       string
	Params     []*Param
	ReturnType *Type
	Body       []Stmt
}

// Param represents a function or lambda parameter.
type Param struct {
	Name string
	Type *Type
}

// Hint is an optimization opportunity found but not applied.
type Hint struct {
	Kind       string
	Target     string
	Confidence float64
	Reason     string
}

// --- Types ---

type TypeKind int

const (
	TypeUnknown TypeKind = iota
	TypeInt
	TypeBool
	TypeBytes
	TypeString
	TypeUnit
	TypeList
	TypeTuple
	TypeOption
	TypeCustom
	TypeFunction
)

// Type is an IR type. Elems holds list, tuple and option element types and
// function parameter types; Result is a function result type.
type Type struct {
	Kind   TypeKind
	Name   string
	Elems  []*Type
	Result *Type
}

var (
	unknownType = &Type{Kind: TypeUnknown}
	intType     = &Type{Kind: TypeInt}
	boolType    = &Type{Kind: TypeBool}
	bytesType   = &Type{Kind: TypeBytes}
	stringType  = &Type{Kind: TypeString}
	unitType    = &Type{Kind: TypeUnit}
	dataType    = &Type{Kind: TypeCustom, Name: "Data"}
)

func (t *Type) String() string {
	if t == nil {
		return "?"
	}
	elems := func() string {
		parts := make([]string, 0, len(t.Elems))
		for _, e := range t.Elems {
			parts = append(parts, e.String())
		}
		return strings.Join(parts, ", ")
	}
	switch t.Kind {
	case TypeInt:
		return "Int"
	case TypeBool:
		return "Bool"
	case TypeBytes:
		return "ByteArray"
	case TypeString:
		return "String"
	case TypeUnit:
		return "Void"
	case TypeList:
		return "List<" + elems() + ">"
	case TypeTuple:
		return "(" + elems() + ")"
	case TypeOption:
		return "Option<" + elems() + ">"
	case TypeCustom:
		return t.Name
	case TypeFunction:
		return "fn(" + elems() + ") -> " + t.Result.String()
	}
	return "?"
}

// TypeOf returns the IR type of a constant type
func TypeOf(t uplc.Type) *Type {
	switch v := t.(type) {
	case *uplc.ListType:
		return &Type{Kind: TypeList, Elems: []*Type{TypeOf(v.Elem)}}
	case *uplc.PairType:
		return &Type{Kind: TypeTuple, Elems: []*Type{TypeOf(v.Fst), TypeOf(v.Snd)}}
	}
	switch t {
	case uplc.TypeInteger:
		return intType
	case uplc.TypeByteString:
		return bytesType
	case uplc.TypeString:
		return stringType
	case uplc.TypeBool:
		return boolType
	case uplc.TypeUnit:
		return unitType
	case uplc.TypeData:
		return dataType
	}
	return unknownType
}

// --- Statements ---

// Stmt is the interface for all IR statement nodes.
type Stmt interface {
	stmtNode()
}

// LetStmt represents a variable binding.
type LetStmt struct {
	Name  string
	Value Expr
}

// ReturnStmt produces the value of the enclosing function or branch.
type ReturnStmt struct {
	Value Expr
}

// FailStmt aborts evaluation.
type FailStmt struct{}

// ExprStmt evaluates an expression for its effect.
type ExprStmt struct {
	Expr Expr
}

func (*LetStmt) stmtNode()    {}
func (*ReturnStmt) stmtNode() {}
func (*FailStmt) stmtNode()   {}
func (*ExprStmt) stmtNode()   {}

// --- Expressions ---

// Expr is the interface for all IR expression nodes.
type Expr interface {
	exprNode()
}

// Literal is a constant value.
type Literal struct {
	Value uplc.Value
	Type  *Type
}

// Variable references a parameter or let binding.
type Variable struct {
	Name string
}

// BinaryExpr is a builtin applied to exactly two operands with an operator
// form. Builtin keeps the original builtin name.
type BinaryExpr struct {
	Op      string
	Builtin string
	Left    Expr
	Right   Expr
}

// UnaryExpr is a builtin applied to exactly one operand with an operator
// form.
type UnaryExpr struct {
	Op      string
	Builtin string
	Operand Expr
}

// CallExpr calls a builtin when Builtin is set, otherwise Func.
type CallExpr struct {
	Func    Expr
	Builtin string
	Args    []Expr
}

// LambdaExpr is an anonymous function.
type LambdaExpr struct {
	Params []*Param
	Body   []Stmt
}

// ConstructorExpr builds a tagged value.
type ConstructorExpr struct {
	Index uint64
	Args  []Expr
}

// WhenExpr selects a branch by matching Subject against each pattern.
type WhenExpr struct {
	Subject  Expr
	Branches []*Branch
}

// Branch is one arm of a when expression. Pattern is True or False for
// boolean subjects and the constructor index otherwise.
type Branch struct {
	Pattern string
	Body    []Stmt
}

func (*Literal) exprNode()         {}
func (*Variable) exprNode()        {}
func (*BinaryExpr) exprNode()      {}
func (*UnaryExpr) exprNode()       {}
func (*CallExpr) exprNode()        {}
func (*LambdaExpr) exprNode()      {}
func (*ConstructorExpr) exprNode() {}
func (*WhenExpr) exprNode()        {}
