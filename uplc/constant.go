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

package uplc

import (
	"math/big"
)

// Type is a constant type tag
type Type interface {
	String() string
	isType()
}

type simpleType string

func (t simpleType) String() string { return string(t) }
func (simpleType) isType()          {}

var (
	TypeInteger    Type = simpleType("integer")
	TypeByteString Type = simpleType("bytestring")
	TypeString     Type = simpleType("string")
	TypeBool       Type = simpleType("bool")
	TypeUnit       Type = simpleType("unit")
	TypeData       Type = simpleType("data")
)

// ListType is the type of a homogeneous list constant
type ListType struct {
	Elem Type
}

func (t *ListType) String() string { return "(list " + t.Elem.String() + ")" }
func (*ListType) isType()          {}

// PairType is the type of a pair constant
type PairType struct {
	Fst Type
	Snd Type
}

func (t *PairType) String() string {
	return "(pair " + t.Fst.String() + " " + t.Snd.String() + ")"
}
func (*PairType) isType() {}

// SimpleTypeByName returns the non-compound type with the given name
func SimpleTypeByName(name string) (Type, bool) {
	switch name {
	case "integer":
		return TypeInteger, true
	case "bytestring":
		return TypeByteString, true
	case "string":
		return TypeString, true
	case "bool":
		return TypeBool, true
	case "unit":
		return TypeUnit, true
	case "data":
		return TypeData, true
	}
	return nil, false
}

// Value is a constant value
type Value interface {
	Type() Type
}

type Integer struct {
	Value *big.Int
}

type ByteString struct {
	Value []byte
}

type String struct {
	Value string
}

type Bool struct {
	Value bool
}

type Unit struct{}

type List struct {
	ElemType Type
	Items    []Value
}

type Pair struct {
	FstType Type
	SndType Type
	Fst     Value
	Snd     Value
}

type DataValue struct {
	Value Data
}

func (*Integer) Type() Type    { return TypeInteger }
func (*ByteString) Type() Type { return TypeByteString }
func (*String) Type() Type     { return TypeString }
func (*Bool) Type() Type       { return TypeBool }
func (*Unit) Type() Type       { return TypeUnit }
func (*DataValue) Type() Type  { return TypeData }

func (l *List) Type() Type {
	return &ListType{Elem: l.ElemType}
}

func (p *Pair) Type() Type {
	return &PairType{Fst: p.FstType, Snd: p.SndType}
}

// NewInt returns an integer constant term
func NewInt(v int64) *Constant {
	return &Constant{Value: &Integer{Value: big.NewInt(v)}}
}

// NewBigInt returns an integer constant term
func NewBigInt(v *big.Int) *Constant {
	return &Constant{Value: &Integer{Value: new(big.Int).Set(v)}}
}

// NewBytes returns a bytestring constant term
func NewBytes(v []byte) *Constant {
	return &Constant{Value: &ByteString{Value: v}}
}

// NewString returns a string constant term
func NewString(v string) *Constant {
	return &Constant{Value: &String{Value: v}}
}

// NewBool returns a boolean constant term
func NewBool(v bool) *Constant {
	return &Constant{Value: &Bool{Value: v}}
}

// NewUnit returns the unit constant term
func NewUnit() *Constant {
	return &Constant{Value: &Unit{}}
}

// NewData returns a data constant term
func NewData(d Data) *Constant {
	return &Constant{Value: &DataValue{Value: d}}
}

// EqualTypes reports whether two constant types are structurally equal
func EqualTypes(a, b Type) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.String() == b.String()
}
