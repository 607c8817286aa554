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

// Package convert turns externally decoded UPLC trees, which reference
// variables by de Bruijn index, into named uplc terms.
package convert

import "github.com/blinklabs-io/uplcdec/uplc"

// Node is a decoded term as produced by a binary decoder
type Node interface {
	isNode()
}

type Apply struct {
	Func Node
	Arg  Node
}

// Lambda binds an anonymous parameter referenced by index from its body
type Lambda struct {
	Body Node
}

// Var references a binder by 1-based de Bruijn index
type Var struct {
	Index int
}

// Constant carries a typed payload in whatever representation the decoder
// produced. List payloads are []any and pair payloads are [2]any.
type Constant struct {
	Type    uplc.Type
	Payload any
}

// Builtin identifies a builtin by protocol tag, or by the name the decoder
// reported when Name is set
type Builtin struct {
	Tag  int
	Name string
}

type Force struct {
	Term Node
}

type Delay struct {
	Term Node
}

type Error struct{}

type Case struct {
	Scrutinee Node
	Branches  []Node
}

type Constr struct {
	Tag    uint64
	Fields []Node
}

// Opaque wraps a decoded value the adapter could not classify
type Opaque struct {
	Kind  string
	Value any
}

func (*Apply) isNode()    {}
func (*Lambda) isNode()   {}
func (*Var) isNode()      {}
func (*Constant) isNode() {}
func (*Builtin) isNode()  {}
func (*Force) isNode()    {}
func (*Delay) isNode()    {}
func (*Error) isNode()    {}
func (*Case) isNode()     {}
func (*Constr) isNode()   {}
func (*Opaque) isNode()   {}
