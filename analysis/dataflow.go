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
	"slices"
	"strconv"
	"strings"

	"github.com/blinklabs-io/uplcdec/uplc"
)

// UsageKind classifies how a tracked value is consumed
type UsageKind string

const (
	UsageComparison     UsageKind = "comparison"
	UsageCrypto         UsageKind = "crypto"
	UsageArithmetic     UsageKind = "arithmetic"
	UsageListOp         UsageKind = "list_op"
	UsageDataExtraction UsageKind = "data_extraction"
)

// NamedVariable is a field of a datum, redeemer or context along with the
// name inferred from how the script uses it
type NamedVariable struct {
	Name       string      `yaml:"name"`
	Source     Role        `yaml:"source"`
	Variant    string      `yaml:"variant,omitempty"`
	Field      int         `yaml:"field"`
	Usages     []UsageKind `yaml:"usages,omitempty"`
	Transforms []string    `yaml:"transforms,omitempty"`
}

var hashBuiltins = map[string]bool{
	"sha2_256":    true,
	"sha3_256":    true,
	"blake2b_224": true,
	"blake2b_256": true,
	"keccak_256":  true,
	"ripemd_160":  true,
}

// transformBuiltins produce a new value from a tracked one
var transformBuiltins = map[string]bool{
	"unIData":      true,
	"unBData":      true,
	"unListData":   true,
	"unMapData":    true,
	"unConstrData": true,
}

// Context field names of a version 3 script context
var contextFieldNames = []string{"tx_info", "redeemer", "script_info"}

func usageKind(builtin string) (UsageKind, bool) {
	switch {
	case strings.HasPrefix(builtin, "equals"), strings.HasPrefix(builtin, "lessThan"):
		return UsageComparison, true
	case strings.HasPrefix(builtin, "verify"), hashBuiltins[builtin],
		strings.HasPrefix(builtin, "bls12_381"):
		return UsageCrypto, true
	}
	switch builtin {
	case "addInteger", "subtractInteger", "multiplyInteger", "divideInteger",
		"quotientInteger", "remainderInteger", "modInteger", "expModInteger":
		return UsageArithmetic, true
	case "headList", "tailList", "nullList", "chooseList", "mkCons", "dropList",
		"listToArray", "lengthOfArray", "indexArray":
		return UsageListOp, true
	case "unConstrData", "unIData", "unBData", "unMapData", "unListData",
		"fstPair", "sndPair", "chooseData":
		return UsageDataExtraction, true
	}
	return "", false
}

type usage struct {
	kind     UsageKind
	builtin  string
	position int
	// other is the second operand of a binary builtin
	other uplc.Term
}

// tracks reports whether arg is field k of src, possibly after transforms,
// and returns the transforms innermost first
func (a *analyzer) tracks(arg uplc.Term, src source, k int) ([]string, bool) {
	var transforms []string
	r := arg
	for range maxChain {
		if idx, ok := a.fieldIndex(r, src); ok {
			if idx != k {
				return nil, false
			}
			slices.Reverse(transforms)
			return transforms, true
		}
		name, args, ok := uplc.SplitBuiltinApp(a.resolve(r))
		if !ok || len(args) != 1 || !(transformBuiltins[name] || hashBuiltins[name]) {
			return nil, false
		}
		transforms = append(transforms, name)
		r = args[0]
	}
	return nil, false
}

func (a *analyzer) usagesOf(root uplc.Term, src source, k int) ([]usage, []string) {
	var usages []usage
	var history []string
	for _, v := range builtinApps(root) {
		kind, ok := usageKind(v.name)
		if !ok {
			continue
		}
		for i, arg := range v.args {
			transforms, ok := a.tracks(arg, src, k)
			if !ok {
				continue
			}
			u := usage{kind: kind, builtin: v.name, position: i}
			if len(v.args) == 2 {
				u.other = v.args[1-i]
			}
			usages = append(usages, u)
			for _, t := range transforms {
				if !slices.Contains(history, t) {
					history = append(history, t)
				}
			}
		}
	}
	return usages, history
}

// semanticName picks a name from transform history, then usage kind. It
// returns "" when neither suggests anything.
func (a *analyzer) semanticName(usages []usage, transforms []string) string {
	for _, t := range transforms {
		if hashBuiltins[t] {
			return "preimage"
		}
	}
	for _, t := range transforms {
		switch t {
		case "unMapData":
			return "value"
		case "unListData":
			return "items"
		}
	}
	for _, kind := range []UsageKind{UsageCrypto, UsageComparison, UsageArithmetic, UsageListOp} {
		for _, u := range usages {
			if u.kind != kind {
				continue
			}
			if name := a.usageName(u); name != "" {
				return name
			}
		}
	}
	return ""
}

func (a *analyzer) usageName(u usage) string {
	switch u.builtin {
	case "verifyEd25519Signature", "verifyEcdsaSecp256k1Signature", "verifySchnorrSecp256k1Signature":
		return []string{"public_key", "message", "signature"}[u.position]
	case "equalsByteString":
		if u.other == nil {
			return ""
		}
		b, ok := a.bytesConst(u.other)
		switch {
		case !ok:
			return "signer"
		case len(b) == hash28Len:
			return "owner"
		default:
			return "token_name"
		}
	case "lessThanInteger", "lessThanEqualsInteger":
		return "deadline"
	case "equalsInteger":
		if u.other != nil {
			if n, ok := a.intConst(u.other); ok && n.CmpAbs(timestampThreshold) > 0 {
				return "deadline"
			}
		}
		return "amount"
	}
	switch u.kind {
	case UsageArithmetic:
		return "amount"
	case UsageListOp:
		return "items"
	}
	return ""
}

type fieldGroup struct {
	src     source
	role    Role
	variant string
	scope   uplc.Term
	fields  []FieldInfo
}

// nameVariables names the fields of the datum, each redeemer variant and
// the context, and renames FieldInfo entries that received a semantic name
func (a *analyzer) nameVariables(cs *ContractStructure) []NamedVariable {
	var groups []fieldGroup
	if a.datum != nil {
		groups = append(groups, fieldGroup{
			src: a.datum, role: RoleDatum, scope: a.body, fields: cs.Datum.Fields,
		})
	}
	if a.redeemer != nil {
		if len(cs.Redeemer.Variants) > 0 {
			for _, v := range cs.Redeemer.Variants {
				groups = append(groups, fieldGroup{
					src: a.redeemer, role: RoleRedeemer, variant: v.Name,
					scope: v.Body, fields: v.Fields,
				})
			}
		} else {
			groups = append(groups, fieldGroup{
				src: a.redeemer, role: RoleRedeemer, scope: a.body,
				fields: cs.Redeemer.Fields,
			})
		}
	}
	if a.context != nil && a.redeemerName == "" {
		groups = append(groups, fieldGroup{
			src: a.context, role: RoleContext, scope: a.body,
			fields: a.extractFields(a.body, a.context),
		})
	}
	var ret []NamedVariable
	for _, g := range groups {
		taken := make(map[string]bool)
		for i := range g.fields {
			f := &g.fields[i]
			usages, transforms := a.usagesOf(g.scope, g.src, f.Index)
			name := a.semanticName(usages, transforms)
			if name == "" && g.role == RoleContext && f.Index < len(contextFieldNames) {
				name = contextFieldNames[f.Index]
			}
			if name != "" {
				if taken[name] {
					name += "_" + strconv.Itoa(f.Index)
				}
				f.Name = name
			} else {
				name = string(g.role) + "_field_" + strconv.Itoa(f.Index)
			}
			taken[name] = true
			nv := NamedVariable{
				Name:       name,
				Source:     g.role,
				Variant:    g.variant,
				Field:      f.Index,
				Transforms: transforms,
			}
			for _, u := range usages {
				if !slices.Contains(nv.Usages, u.kind) {
					nv.Usages = append(nv.Usages, u.kind)
				}
			}
			ret = append(ret, nv)
		}
	}
	return ret
}
