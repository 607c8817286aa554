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
	"fmt"
	"math/big"
	"strings"

	"github.com/blinklabs-io/uplcdec/uplc"
)

// checkBuiltins are the builtins whose applications represent a condition
// the script validates
var checkBuiltins = map[string]bool{
	"equalsInteger":                   true,
	"lessThanInteger":                 true,
	"lessThanEqualsInteger":           true,
	"equalsByteString":                true,
	"lessThanByteString":              true,
	"lessThanEqualsByteString":        true,
	"equalsString":                    true,
	"equalsData":                      true,
	"verifyEd25519Signature":          true,
	"verifyEcdsaSecp256k1Signature":   true,
	"verifySchnorrSecp256k1Signature": true,
	"sha2_256":                        true,
	"sha3_256":                        true,
	"blake2b_224":                     true,
	"blake2b_256":                     true,
	"keccak_256":                      true,
	"bls12_381_G1_equal":              true,
	"bls12_381_G2_equal":              true,
	"bls12_381_finalVerify":           true,
}

// Integers above this look like POSIX timestamps in milliseconds
var timestampThreshold = big.NewInt(1_000_000_000)

// Length of a blake2b-224 key or script hash, also used as policy IDs
const hash28Len = 28

func (a *analyzer) findChecks() []ValidationCheck {
	var ret []ValidationCheck
	seen := make(map[uplc.Term]bool)
	for _, v := range builtinApps(a.body) {
		if !checkBuiltins[v.name] || seen[v.node] || a.structural[v.node] {
			continue
		}
		if v.name == "equalsInteger" && (a.isDiscriminator(v.args[0]) || a.isDiscriminator(v.args[1])) {
			continue
		}
		seen[v.node] = true
		category, desc := a.classify(v)
		ret = append(ret, ValidationCheck{
			Category:    category,
			Builtin:     v.name,
			Description: desc,
			Node:        v.node,
		})
	}
	return ret
}

func (a *analyzer) classify(v builtinVisit) (CheckCategory, string) {
	switch v.name {
	case "verifyEd25519Signature", "verifyEcdsaSecp256k1Signature", "verifySchnorrSecp256k1Signature":
		return CheckSigner, "signature verified with " + v.name
	case "bls12_381_finalVerify":
		return CheckSigner, "pairing check with bls12_381_finalVerify"
	case "equalsByteString":
		return a.classifyBytesEquality(v)
	case "equalsInteger", "lessThanInteger", "lessThanEqualsInteger":
		return a.classifyIntegerComparison(v)
	case "lessThanByteString", "lessThanEqualsByteString":
		return CheckComparison, "byte strings compared with " + v.name
	case "equalsString", "equalsData", "bls12_381_G1_equal", "bls12_381_G2_equal":
		if a.involvesValue(v.args) {
			return CheckValue, "value compared with " + v.name
		}
		return CheckEquality, "values compared with " + v.name
	}
	return CheckUnknown, fmt.Sprintf("check using %s", v.name)
}

func (a *analyzer) classifyBytesEquality(v builtinVisit) (CheckCategory, string) {
	for i := range 2 {
		b, ok := a.bytesConst(v.args[i])
		if !ok {
			continue
		}
		other := v.args[1-i]
		if a.isMapKey(other) {
			return CheckToken, fmt.Sprintf("token identifier equals #%x", b)
		}
		if len(b) == hash28Len {
			return CheckOwner, fmt.Sprintf("credential equals #%x", b)
		}
		return CheckEquality, fmt.Sprintf("byte string equals #%x", b)
	}
	if a.isMapKey(v.args[0]) || a.isMapKey(v.args[1]) {
		return CheckToken, "token identifiers compared"
	}
	if a.fromContext(v.args[0]) || a.fromContext(v.args[1]) {
		return CheckSigner, "key hash compared against transaction data"
	}
	return CheckEquality, "byte strings compared"
}

func (a *analyzer) classifyIntegerComparison(v builtinVisit) (CheckCategory, string) {
	for i := range 2 {
		n, ok := a.intConst(v.args[i])
		if ok && n.CmpAbs(timestampThreshold) > 0 {
			return CheckDeadline, fmt.Sprintf("time compared with %s", n)
		}
	}
	if a.involvesValue(v.args) {
		return CheckValue, "amount checked with " + v.name
	}
	if v.name == "equalsInteger" {
		return CheckEquality, "integers compared with equalsInteger"
	}
	return CheckComparison, "integers ordered with " + v.name
}

// isMapKey matches a value read as the key of a map entry, such as a
// policy ID or asset name
func (a *analyzer) isMapKey(t uplc.Term) bool {
	r := a.resolve(t)
	if args, ok := uplc.MatchBuiltin(r, "unBData", 1); ok {
		r = a.resolve(args[0])
	}
	_, ok := uplc.MatchBuiltin(r, "fstPair", 1)
	return ok && !a.isDiscriminator(r)
}

// involvesValue reports whether any operand is read out of a data map,
// the shape of ledger values
func (a *analyzer) involvesValue(args []uplc.Term) bool {
	for _, arg := range args {
		if a.dependsOn(arg, func(t uplc.Term) bool {
			name, _, ok := uplc.SplitBuiltinApp(t)
			return ok && name == "unMapData"
		}) {
			return true
		}
	}
	return false
}

// fromContext reports whether a term reads from the script context
func (a *analyzer) fromContext(t uplc.Term) bool {
	if a.contextName == "" {
		return false
	}
	return a.dependsOn(t, func(t uplc.Term) bool {
		v, ok := t.(*uplc.Var)
		return ok && v.Name == a.contextName
	})
}

// dependsOn reports whether pred matches any subterm of root, looking
// through the values of let-bound names root refers to
func (a *analyzer) dependsOn(root uplc.Term, pred func(uplc.Term) bool) bool {
	visited := make(map[string]bool)
	pending := []uplc.Term{root}
	found := false
	for len(pending) > 0 && !found {
		next := pending[len(pending)-1]
		pending = pending[:len(pending)-1]
		uplc.Inspect(next, func(t uplc.Term) bool {
			if found {
				return false
			}
			if pred(t) {
				found = true
				return false
			}
			if v, ok := t.(*uplc.Var); ok && !visited[v.Name] {
				visited[v.Name] = true
				if value, ok := a.lets[v.Name]; ok {
					pending = append(pending, value)
				}
			}
			return true
		})
	}
	return found
}

// CheckSummary renders a short human description of the checks
func CheckSummary(checks []ValidationCheck) string {
	parts := make([]string, 0, len(checks))
	for _, c := range checks {
		parts = append(parts, string(c.Category)+": "+c.Description)
	}
	return strings.Join(parts, "\n")
}
