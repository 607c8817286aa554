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
	"sort"
	"strconv"

	"github.com/blinklabs-io/uplcdec/uplc"
)

var variantNames = []string{"Cancel", "Update", "Claim", "Withdraw", "Close"}

// VariantName returns the conventional name for a redeemer constructor
func VariantName(index uint64) string {
	if index < uint64(len(variantNames)) {
		return variantNames[index]
	}
	return "Variant" + strconv.FormatUint(index, 10)
}

// variantBranch matches
// ifThenElse(equalsInteger(fstPair(unConstrData(x)), K), then, else)
// with x from src
func (a *analyzer) variantBranch(t uplc.Term, src source) (uint64, uplc.Term, uplc.Term, bool) {
	args, ok := uplc.MatchBuiltin(stripWrappers(t), "ifThenElse", 3)
	if !ok {
		return 0, nil, nil, false
	}
	cond, ok := a.builtinApp(args[0], "equalsInteger", 2)
	if !ok {
		return 0, nil, nil, false
	}
	tag, ok := a.discriminatorTag(cond, src)
	if !ok {
		return 0, nil, nil, false
	}
	a.structural[uplc.StripForce(a.resolve(args[0]))] = true
	return tag, stripWrappers(args[1]), stripWrappers(args[2]), true
}

// findVariants discovers redeemer constructors from tag comparisons and
// from case expressions over the redeemer. The first occurrence of each
// index wins. Results are sorted by index.
func (a *analyzer) findVariants() []RedeemerVariant {
	if a.redeemer == nil {
		return nil
	}
	var ret []RedeemerVariant
	seen := make(map[uint64]bool)
	add := func(index uint64, body uplc.Term) {
		if seen[index] {
			return
		}
		seen[index] = true
		ret = append(ret, RedeemerVariant{
			Index: index,
			Name:  VariantName(index),
			Body:  body,
		})
	}
	uplc.Inspect(a.body, func(t uplc.Term) bool {
		if tag, then, _, ok := a.variantBranch(t, a.redeemer); ok {
			add(tag, then)
			return true
		}
		if c, ok := t.(*uplc.Case); ok && a.redeemer(c.Scrutinee) {
			for i, branch := range c.Branches {
				add(uint64(i), branch)
			}
		}
		return true
	})
	sort.SliceStable(ret, func(i, j int) bool {
		return ret[i].Index < ret[j].Index
	})
	return ret
}
