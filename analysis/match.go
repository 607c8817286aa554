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

package analysis

import (
	"math/big"

	"github.com/blinklabs-io/uplcdec/uplc"
)

// source reports whether a term denotes a tracked value, such as the
// redeemer parameter
type source func(uplc.Term) bool

// maxChain bounds alias and tailList chain walks
const maxChain = 100000

// Index of the redeemer within a version 3 script context
const redeemerField = 1

type analyzer struct {
	params []string
	roles  map[string]Role
	body   uplc.Term
	// lets maps every let-bound name to its value
	lets map[string]uplc.Term
	// names of the entry parameters by role
	datumName    string
	redeemerName string
	contextName  string
	datum        source
	redeemer     source
	context      source
	// structural marks comparisons that select a constructor rather than
	// validate anything
	structural map[uplc.Term]bool
}

func newAnalyzer(e entry) *analyzer {
	a := &analyzer{
		params:     e.params,
		roles:      assignRoles(e.params),
		body:       e.body,
		lets:       make(map[string]uplc.Term),
		structural: make(map[uplc.Term]bool),
	}
	for _, l := range e.lets {
		a.lets[l.Name] = l.Value
	}
	uplc.Inspect(e.body, func(t uplc.Term) bool {
		if name, value, _, ok := uplc.AsLet(t); ok {
			if _, exists := a.lets[name]; !exists {
				a.lets[name] = value
			}
		}
		return true
	})
	// A name bound more than once cannot be resolved by name alone
	binders := uplc.BinderCounts(e.body)
	for _, p := range e.params {
		binders[p]++
	}
	for _, l := range e.lets {
		binders[l.Name]++
	}
	for name := range a.lets {
		if binders[name] > 1 {
			delete(a.lets, name)
		}
	}
	for name, role := range a.roles {
		switch role {
		case RoleDatum:
			a.datumName = name
			a.datum = a.isParam(name)
		case RoleRedeemer:
			a.redeemerName = name
			a.redeemer = a.isParam(name)
		case RoleContext:
			a.contextName = name
			a.context = a.isParam(name)
		}
	}
	if a.redeemer == nil && a.context != nil {
		// The redeemer of a single parameter script is a context field
		ctx := a.context
		a.redeemer = func(t uplc.Term) bool {
			k, ok := a.fieldIndex(t, ctx)
			return ok && k == redeemerField
		}
	}
	return a
}

func (a *analyzer) isParam(name string) source {
	return func(t uplc.Term) bool {
		v, ok := a.resolve(t).(*uplc.Var)
		return ok && v.Name == name
	}
}

// stripWrappers removes enclosing force and delay nodes
func stripWrappers(t uplc.Term) uplc.Term {
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

// resolve strips force and delay wrappers and follows let aliases
func (a *analyzer) resolve(t uplc.Term) uplc.Term {
	for range maxChain {
		t = stripWrappers(t)
		v, ok := t.(*uplc.Var)
		if !ok {
			return t
		}
		value, ok := a.lets[v.Name]
		if !ok {
			return t
		}
		if rv, ok := stripWrappers(value).(*uplc.Var); ok && rv.Name == v.Name {
			return t
		}
		t = value
	}
	return t
}

// builtinApp matches a fully applied builtin after resolving aliases
func (a *analyzer) builtinApp(t uplc.Term, name string, arity int) ([]uplc.Term, bool) {
	return uplc.MatchBuiltin(a.resolve(t), name, arity)
}

func (a *analyzer) intConst(t uplc.Term) (*big.Int, bool) {
	c, ok := a.resolve(t).(*uplc.Constant)
	if !ok {
		return nil, false
	}
	n, ok := c.Value.(*uplc.Integer)
	if !ok {
		return nil, false
	}
	return n.Value, true
}

func (a *analyzer) bytesConst(t uplc.Term) ([]byte, bool) {
	c, ok := a.resolve(t).(*uplc.Constant)
	if !ok {
		return nil, false
	}
	b, ok := c.Value.(*uplc.ByteString)
	if !ok {
		return nil, false
	}
	return b.Value, true
}

// unConstrOf matches unConstrData(x) where x is from src
func (a *analyzer) unConstrOf(t uplc.Term, src source) bool {
	if src == nil {
		return false
	}
	args, ok := a.builtinApp(t, "unConstrData", 1)
	return ok && src(args[0])
}

// discriminant matches fstPair(unConstrData(x)), the constructor tag of x
func (a *analyzer) discriminant(t uplc.Term, src source) bool {
	args, ok := a.builtinApp(t, "fstPair", 1)
	return ok && a.unConstrOf(args[0], src)
}

// fieldIndex matches headList(tailList^k(sndPair(unConstrData(x)))) where x
// is from src and returns k
func (a *analyzer) fieldIndex(t uplc.Term, src source) (int, bool) {
	if src == nil {
		return 0, false
	}
	args, ok := a.builtinApp(t, "headList", 1)
	if !ok {
		return 0, false
	}
	inner := args[0]
	for k := range maxChain {
		r := a.resolve(inner)
		if next, ok := uplc.MatchBuiltin(r, "tailList", 1); ok {
			inner = next[0]
			continue
		}
		if pair, ok := uplc.MatchBuiltin(r, "sndPair", 1); ok {
			return k, a.unConstrOf(pair[0], src)
		}
		return 0, false
	}
	return 0, false
}

// builtinVisit is a fully applied builtin found during a scan
type builtinVisit struct {
	node uplc.Term
	name string
	args []uplc.Term
}

// builtinApps lists every fully applied builtin in root once, keyed by the
// application node with forces removed
func builtinApps(root uplc.Term) []builtinVisit {
	var ret []builtinVisit
	seen := make(map[uplc.Term]bool)
	uplc.Inspect(root, func(t uplc.Term) bool {
		node := uplc.StripForce(t)
		if _, ok := node.(*uplc.Apply); !ok || seen[node] {
			return true
		}
		name, args, ok := uplc.SplitBuiltinApp(node)
		if !ok {
			return true
		}
		info, known := uplc.LookupBuiltin(name)
		if !known || info.Arity != len(args) {
			return true
		}
		seen[node] = true
		ret = append(ret, builtinVisit{node: node, name: name, args: args})
		return true
	})
	return ret
}

type discriminatorComparison struct {
	tag  uint64
	node uplc.Term
}

// discriminatorComparisons finds equalsInteger(fstPair(unConstrData(x)), K)
// with x from src, in either operand order
func (a *analyzer) discriminatorComparisons(root uplc.Term, src source) []discriminatorComparison {
	var ret []discriminatorComparison
	if src == nil {
		return nil
	}
	for _, v := range builtinApps(root) {
		if v.name != "equalsInteger" {
			continue
		}
		if tag, ok := a.discriminatorTag(v.args, src); ok {
			ret = append(ret, discriminatorComparison{tag: tag, node: v.node})
		}
	}
	return ret
}

func (a *analyzer) discriminatorTag(args []uplc.Term, src source) (uint64, bool) {
	for i := range 2 {
		if !a.discriminant(args[i], src) {
			continue
		}
		n, ok := a.intConst(args[1-i])
		if ok && n.Sign() >= 0 && n.IsUint64() {
			return n.Uint64(), true
		}
	}
	return 0, false
}

// isDiscriminator reports whether t reads the constructor tag of any value
func (a *analyzer) isDiscriminator(t uplc.Term) bool {
	return a.discriminant(t, func(uplc.Term) bool { return true })
}

func (a *analyzer) hasFieldAccess(root uplc.Term, src source) bool {
	if src == nil {
		return false
	}
	for _, v := range builtinApps(root) {
		if v.name != "headList" {
			continue
		}
		if _, ok := a.fieldIndex(v.node, src); ok {
			return true
		}
	}
	return false
}
