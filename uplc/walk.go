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

// Machine-generated contracts nest thousands of levels deep, so the walkers
// in this file use explicit stacks rather than native recursion.

type walkFrame struct {
	term   Term
	parent Term
}

// Inspect visits every term in pre-order. Children of a term are skipped
// when fn returns false.
func Inspect(root Term, fn func(Term) bool) {
	InspectWithParent(root, func(t Term, _ Term) bool {
		return fn(t)
	})
}

// InspectWithParent visits every term in pre-order along with its direct
// parent (nil for the root)
func InspectWithParent(root Term, fn func(t Term, parent Term) bool) {
	if root == nil {
		return
	}
	stack := []walkFrame{{term: root}}
	for len(stack) > 0 {
		frame := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if frame.term == nil {
			continue
		}
		if !fn(frame.term, frame.parent) {
			continue
		}
		children := Children(frame.term)
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, walkFrame{term: children[i], parent: frame.term})
		}
	}
}

// Size returns the number of nodes in the term
func Size(root Term) int {
	count := 0
	Inspect(root, func(Term) bool {
		count++
		return true
	})
	return count
}

// CountReferences counts the free occurrences of a variable, honoring
// shadowing by inner lambdas
func CountReferences(root Term, name string) int {
	count := 0
	Inspect(root, func(t Term) bool {
		switch v := t.(type) {
		case *Var:
			if v.Name == name {
				count++
			}
		case *Lambda:
			if v.Param == name {
				return false
			}
		}
		return true
	})
	return count
}

// ReferenceCounts counts occurrences of every variable name in the term.
// Shadowing is ignored, which over-counts and keeps callers conservative.
func ReferenceCounts(root Term) map[string]int {
	ret := make(map[string]int)
	Inspect(root, func(t Term) bool {
		if v, ok := t.(*Var); ok {
			ret[v.Name]++
		}
		return true
	})
	return ret
}

// BinderCounts counts how many lambdas bind each parameter name. A let is
// a lambda applied to its value, so let names are counted too.
func BinderCounts(root Term) map[string]int {
	ret := make(map[string]int)
	Inspect(root, func(t Term) bool {
		if l, ok := t.(*Lambda); ok {
			ret[l.Param]++
		}
		return true
	})
	return ret
}

// StripForce removes any number of enclosing force nodes
func StripForce(t Term) Term {
	for {
		f, ok := t.(*Force)
		if !ok {
			return t
		}
		t = f.Term
	}
}

// StripDelay removes any number of enclosing delay nodes
func StripDelay(t Term) Term {
	for {
		d, ok := t.(*Delay)
		if !ok {
			return t
		}
		t = d.Term
	}
}

// SplitApply flattens an application spine into its head and arguments
func SplitApply(t Term) (Term, []Term) {
	var args []Term
	for {
		app, ok := t.(*Apply)
		if !ok {
			break
		}
		args = append(args, app.Arg)
		t = app.Func
	}
	for i, j := 0, len(args)-1; i < j; i, j = i+1, j-1 {
		args[i], args[j] = args[j], args[i]
	}
	return t, args
}

// SplitBuiltinApp matches a (possibly forced) builtin applied to arguments.
// Forces around the head, around intermediate applications, and around the
// whole application are ignored.
func SplitBuiltinApp(t Term) (string, []Term, bool) {
	t = StripForce(t)
	var args []Term
	for {
		t = StripForce(t)
		app, ok := t.(*Apply)
		if !ok {
			break
		}
		args = append(args, app.Arg)
		t = app.Func
	}
	b, ok := t.(*Builtin)
	if !ok {
		return "", nil, false
	}
	for i, j := 0, len(args)-1; i < j; i, j = i+1, j-1 {
		args[i], args[j] = args[j], args[i]
	}
	return b.Name, args, true
}

// MatchBuiltin matches a builtin with exactly the given name and number of
// arguments
func MatchBuiltin(t Term, name string, arity int) ([]Term, bool) {
	n, args, ok := SplitBuiltinApp(t)
	if !ok || n != name || len(args) != arity {
		return nil, false
	}
	return args, true
}
