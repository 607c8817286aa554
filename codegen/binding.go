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
	"github.com/blinklabs-io/uplcdec/ir"
	"github.com/blinklabs-io/uplcdec/uplc"
)

type BindingKind string

const (
	// BindingInline is a constant, or an expression that folds to one
	BindingInline BindingKind = "inline"
	// BindingAlias refers directly to another name
	BindingAlias BindingKind = "alias"
	// BindingKeep has computational content and stays a named value
	BindingKeep BindingKind = "keep"
)

// Binding is the resolution of one let-bound name
type Binding struct {
	Name string
	Kind BindingKind
	// Value is the bound term
	Value uplc.Term
	// Target is the referenced name of an alias
	Target string
	// Folded is the constant value of an inline binding, when known
	Folded     uplc.Value
	References int
	// Cycle is set on aliases that lead back to themselves
	Cycle bool
	// Shadowed is set when the name is bound more than once, by a let or a
	// lambda parameter. Shadowed bindings are never resolved.
	Shadowed bool

	classified bool
}

// BindingEnvironment maps every let-bound name in a program to its
// resolved binding
type BindingEnvironment struct {
	bindings    map[string]*Binding
	order       []string
	inlineLimit int
	pinned      map[string]bool
	// shadowed holds every name bound more than once
	shadowed map[string]bool
}

type BindingOptionFunc func(*BindingEnvironment)

// WithInlineLimit sets how many references a folded expression may have and
// still be inlined. Constants and aliases are always inlined.
func WithInlineLimit(limit int) BindingOptionFunc {
	return func(e *BindingEnvironment) {
		e.inlineLimit = limit
	}
}

// WithPinned forces the named bindings to be kept
func WithPinned(names ...string) BindingOptionFunc {
	return func(e *BindingEnvironment) {
		for _, name := range names {
			e.pinned[name] = true
		}
	}
}

// NewBindingEnvironment collects and classifies every let binding of a term
func NewBindingEnvironment(
	term uplc.Term,
	opts ...BindingOptionFunc,
) *BindingEnvironment {
	e := &BindingEnvironment{
		bindings:    make(map[string]*Binding),
		inlineLimit: 1,
		pinned:      make(map[string]bool),
		shadowed:    make(map[string]bool),
	}
	for _, opt := range opts {
		opt(e)
	}
	uplc.Inspect(term, func(t uplc.Term) bool {
		name, value, body, ok := uplc.AsLet(t)
		if !ok {
			return true
		}
		if b, exists := e.bindings[name]; exists {
			b.Shadowed = true
			return true
		}
		e.bindings[name] = &Binding{
			Name:       name,
			Value:      value,
			References: uplc.CountReferences(body, name),
		}
		e.order = append(e.order, name)
		return true
	})
	for name, count := range uplc.BinderCounts(term) {
		if count > 1 {
			e.shadowed[name] = true
			if b, ok := e.bindings[name]; ok {
				b.Shadowed = true
			}
		}
	}
	for _, name := range e.order {
		e.classify(e.bindings[name], make(map[string]bool))
	}
	var cyclic []*Binding
	for _, name := range e.order {
		b := e.bindings[name]
		if b.Kind != BindingAlias {
			continue
		}
		if _, cycle := e.follow(b); cycle {
			cyclic = append(cyclic, b)
		}
	}
	for _, b := range cyclic {
		b.Kind = BindingKeep
		b.Cycle = true
	}
	return e
}

// Render renders a term as a source expression with bindings resolved
func (e *BindingEnvironment) Render(t uplc.Term) string {
	return newRenderer(e).expr(t)
}

// Len returns the number of let-bound names
func (e *BindingEnvironment) Len() int {
	return len(e.order)
}

// Lookup returns the binding of a name without following aliases
func (e *BindingEnvironment) Lookup(name string) (*Binding, bool) {
	b, ok := e.bindings[name]
	return b, ok
}

// Resolve follows aliases from name and returns the terminal binding. An
// alias whose target is not let-bound is itself terminal.
func (e *BindingEnvironment) Resolve(name string) (*Binding, bool) {
	b, ok := e.bindings[name]
	if !ok {
		return nil, false
	}
	ret, _ := e.follow(b)
	return ret, true
}

// Bindings returns all bindings in discovery order
func (e *BindingEnvironment) Bindings() []*Binding {
	ret := make([]*Binding, 0, len(e.order))
	for _, name := range e.order {
		ret = append(ret, e.bindings[name])
	}
	return ret
}

func (e *BindingEnvironment) follow(b *Binding) (*Binding, bool) {
	seen := map[string]bool{b.Name: true}
	for b.Kind == BindingAlias {
		next, ok := e.bindings[b.Target]
		if !ok {
			return b, false
		}
		if seen[next.Name] {
			return b, true
		}
		seen[next.Name] = true
		b = next
	}
	return b, false
}

func (e *BindingEnvironment) classify(b *Binding, visiting map[string]bool) {
	if b.classified {
		return
	}
	b.classified = true
	b.Kind = BindingKeep
	if e.pinned[b.Name] || b.Shadowed {
		return
	}
	switch v := unwrap(b.Value).(type) {
	case *uplc.Constant:
		b.Kind = BindingInline
		b.Folded = v.Value
		return
	case *uplc.Var:
		if e.shadowed[v.Name] {
			return
		}
		b.Kind = BindingAlias
		b.Target = v.Name
		return
	}
	if b.References > e.inlineLimit {
		return
	}
	visiting[b.Name] = true
	if folded, ok := e.evaluate(b.Value, visiting); ok {
		b.Kind = BindingInline
		b.Folded = folded
	}
}

// evaluate folds a term built from constants, inline names and foldable
// builtins
func (e *BindingEnvironment) evaluate(t uplc.Term, visiting map[string]bool) (uplc.Value, bool) {
	switch v := unwrap(t).(type) {
	case *uplc.Constant:
		return v.Value, true
	case *uplc.Var:
		b, ok := e.bindings[v.Name]
		if !ok || visiting[v.Name] {
			return nil, false
		}
		visiting[v.Name] = true
		e.classify(b, visiting)
		for b.Kind == BindingAlias {
			next, ok := e.bindings[b.Target]
			if !ok || visiting[next.Name] {
				return nil, false
			}
			visiting[next.Name] = true
			e.classify(next, visiting)
			b = next
		}
		if b.Kind != BindingInline || b.Folded == nil {
			return nil, false
		}
		return b.Folded, true
	case *uplc.Apply:
		name, args, ok := uplc.SplitBuiltinApp(v)
		if !ok {
			return nil, false
		}
		info, ok := uplc.LookupBuiltin(name)
		if !ok || info.Arity != len(args) {
			return nil, false
		}
		values := make([]uplc.Value, 0, len(args))
		for _, arg := range args {
			value, ok := e.evaluate(arg, visiting)
			if !ok {
				return nil, false
			}
			values = append(values, value)
		}
		return ir.FoldBuiltin(name, values)
	}
	return nil, false
}

// unwrap removes enclosing force and delay nodes
func unwrap(t uplc.Term) uplc.Term {
	for {
		switch v := t.(type) {
		case *uplc.Force:
			t = v.Term
		case *uplc.Delay:
			t = v.Term
		default:
			return t
		}
	}
}
