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

	"github.com/blinklabs-io/uplcdec/uplc"
)

// maxEntryParams is the most lambdas unwrapped as entry parameters. Deeper
// lambdas belong to the body.
const maxEntryParams = 8

// LetBinding is an outer let that is not a script parameter, such as a
// hoisted helper function
type LetBinding struct {
	Name  string
	Value uplc.Term
}

type entry struct {
	lets         []LetBinding
	params       []string
	body         uplc.Term
	scriptParams []ScriptParameter
	outer        []LetBinding
}

func detectEntry(term uplc.Term) entry {
	var e entry
	t := term
	for {
		name, value, body, ok := uplc.AsLet(t)
		if !ok {
			break
		}
		e.lets = append(e.lets, LetBinding{Name: name, Value: value})
		t = body
	}
	for len(e.params) < maxEntryParams {
		lam, ok := t.(*uplc.Lambda)
		if !ok {
			break
		}
		e.params = append(e.params, lam.Param)
		t = lam.Body
	}
	if len(e.params) == 0 {
		// Lets around a parameterless program are part of its body
		e.lets = nil
		e.body = term
		return e
	}
	e.body = t
	for _, l := range e.lets {
		if c, ok := l.Value.(*uplc.Constant); ok {
			e.scriptParams = append(e.scriptParams, ScriptParameter{
				Name:  l.Name,
				Type:  c.Value.Type().String(),
				Text:  uplc.ShowValue(c.Value),
				Value: c.Value,
			})
			continue
		}
		e.outer = append(e.outer, l)
	}
	return e
}

func assignRoles(params []string) map[string]Role {
	roles := make(map[string]Role, len(params))
	n := len(params)
	switch n {
	case 0:
	case 1:
		roles[params[0]] = RoleContext
	case 2:
		roles[params[0]] = RoleRedeemer
		roles[params[1]] = RoleContext
	default:
		for _, p := range params[:n-3] {
			roles[p] = RoleParameter
		}
		roles[params[n-3]] = RoleDatum
		roles[params[n-2]] = RoleRedeemer
		roles[params[n-1]] = RoleContext
	}
	return roles
}

// Script info constructor tags in a version 3 script context
var scriptInfoPurposes = []Purpose{
	PurposeMint,
	PurposeSpend,
	PurposeWithdraw,
	PurposePublish,
	PurposeVote,
	PurposePropose,
}

// Index of the script info within a version 3 script context
const scriptInfoField = 2

func (a *analyzer) inferPurpose() Outcome[Purpose] {
	n := len(a.params)
	switch {
	case n <= 1:
		if a.context != nil {
			if ret := a.scriptInfoPurpose(nil); ret.Ok() {
				return ret
			}
		}
		return Found(PurposeMint)
	case n == 2:
		return Ambiguous(
			PurposeMint,
			[]Purpose{PurposeMint, PurposeWithdraw, PurposePublish},
			"two parameter scripts may mint, withdraw or publish",
		)
	case n == 3:
		if a.hasFieldAccess(a.body, a.datum) {
			return Found(PurposeSpend)
		}
		// Without datum evidence the first parameter may be a validator
		// parameter in front of a two parameter script
		return Ambiguous(
			PurposeSpend,
			[]Purpose{PurposeSpend, PurposeMint, PurposeWithdraw, PurposePublish},
			"no datum field access found",
		)
	case n == 4:
		governance := map[uint64]bool{4: true, 5: true}
		if ret := a.scriptInfoPurpose(governance); ret.Ok() {
			return ret
		}
		return Ambiguous(
			PurposeSpend,
			[]Purpose{PurposeSpend, PurposeVote, PurposePropose},
			"no governance script info match on the context",
		)
	default:
		return Ambiguous(
			PurposeSpend,
			[]Purpose{PurposeSpend, PurposeMint, PurposeWithdraw, PurposePublish},
			fmt.Sprintf("%d leading parameters treated as validator parameters", n-3),
		)
	}
}

// scriptInfoPurpose looks for constructor tag comparisons on the context or
// on its script info field. A nil filter accepts every known tag.
func (a *analyzer) scriptInfoPurpose(filter map[uint64]bool) Outcome[Purpose] {
	ctx := a.context
	scriptInfo := func(t uplc.Term) bool {
		if ctx(t) {
			return true
		}
		k, ok := a.fieldIndex(t, ctx)
		return ok && k == scriptInfoField
	}
	var found []Purpose
	seen := make(map[uint64]bool)
	for _, cmp := range a.discriminatorComparisons(a.body, scriptInfo) {
		if seen[cmp.tag] || cmp.tag >= uint64(len(scriptInfoPurposes)) {
			continue
		}
		if filter != nil && !filter[cmp.tag] {
			continue
		}
		seen[cmp.tag] = true
		a.structural[cmp.node] = true
		found = append(found, scriptInfoPurposes[cmp.tag])
	}
	switch len(found) {
	case 0:
		return NotFound[Purpose]("no script info comparison")
	case 1:
		return Found(found[0])
	default:
		return Ambiguous(found[0], found, "script handles several purposes")
	}
}
