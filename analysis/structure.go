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

// Package analysis reconstructs the high level shape of a validator from
// its UPLC term: entry parameters, purpose, redeemer variants, datum fields
// and the checks the script performs.
package analysis

import (
	"github.com/blinklabs-io/uplcdec/uplc"
)

type Purpose string

const (
	PurposeSpend    Purpose = "spend"
	PurposeMint     Purpose = "mint"
	PurposeWithdraw Purpose = "withdraw"
	PurposePublish  Purpose = "publish"
	PurposeVote     Purpose = "vote"
	PurposePropose  Purpose = "propose"
	PurposeUnknown  Purpose = "unknown"
)

// Role is the part an entry parameter plays for the ledger
type Role string

const (
	RoleDatum     Role = "datum"
	RoleRedeemer  Role = "redeemer"
	RoleContext   Role = "context"
	RoleParameter Role = "parameter"
)

type FieldType string

const (
	FieldInteger    FieldType = "integer"
	FieldByteString FieldType = "bytestring"
	FieldList       FieldType = "list"
	FieldMap        FieldType = "map"
	FieldData       FieldType = "data"
	FieldUnknown    FieldType = "unknown"
)

type MatchPattern string

const (
	MatchConstructor MatchPattern = "constructor"
	MatchUnknown     MatchPattern = "unknown"
)

type CheckCategory string

const (
	CheckSigner     CheckCategory = "signer"
	CheckDeadline   CheckCategory = "deadline"
	CheckToken      CheckCategory = "token"
	CheckValue      CheckCategory = "value"
	CheckOwner      CheckCategory = "owner"
	CheckEquality   CheckCategory = "equality"
	CheckComparison CheckCategory = "comparison"
	CheckUnknown    CheckCategory = "unknown"
)

type FieldInfo struct {
	Index int       `yaml:"index"`
	Name  string    `yaml:"name"`
	Type  FieldType `yaml:"type"`
}

type DatumInfo struct {
	Used     bool        `yaml:"used"`
	Optional bool        `yaml:"optional"`
	Fields   []FieldInfo `yaml:"fields,omitempty"`
	// Type is the inferred type name: Datum when fields were found, Data
	// when the datum is used opaquely, Void when unused
	Type string `yaml:"type"`
}

type RedeemerVariant struct {
	Index  uint64      `yaml:"index"`
	Name   string      `yaml:"name"`
	Fields []FieldInfo `yaml:"fields,omitempty"`
	// Body is the branch taken for this variant, shared with the analyzed term
	Body uplc.Term `yaml:"-"`
}

type RedeemerInfo struct {
	Variants     []RedeemerVariant `yaml:"variants,omitempty"`
	Fields       []FieldInfo       `yaml:"fields,omitempty"`
	MatchPattern MatchPattern      `yaml:"match_pattern"`
}

type ValidationCheck struct {
	Category    CheckCategory `yaml:"category"`
	Builtin     string        `yaml:"builtin"`
	Description string        `yaml:"description"`
	// Node is the builtin application, used for identity
	Node uplc.Term `yaml:"-"`
}

// ScriptParameter is a constant baked into the script ahead of its entry
// parameters
type ScriptParameter struct {
	Name  string     `yaml:"name"`
	Type  string     `yaml:"type"`
	Text  string     `yaml:"value"`
	Value uplc.Value `yaml:"-"`
}

type ContractStructure struct {
	Purpose        Purpose           `yaml:"purpose"`
	PurposeOutcome Outcome[Purpose]  `yaml:"-"`
	Params         []string          `yaml:"params,omitempty"`
	Roles          map[string]Role   `yaml:"roles,omitempty"`
	Datum          DatumInfo         `yaml:"datum"`
	Redeemer       RedeemerInfo      `yaml:"redeemer"`
	Checks         []ValidationCheck `yaml:"checks,omitempty"`
	ScriptParams   []ScriptParameter `yaml:"script_params,omitempty"`
	Variables      []NamedVariable   `yaml:"variables,omitempty"`
	// Outer holds let bindings around the entry parameters that are not
	// script parameters
	Outer []LetBinding `yaml:"-"`
	// Body is the innermost validator body after the entry parameters
	Body uplc.Term `yaml:"-"`
	// Full is the analyzed term including outer let bindings
	Full uplc.Term `yaml:"-"`
}

// ParamFor returns the entry parameter with the given role
func (cs *ContractStructure) ParamFor(role Role) (string, bool) {
	for _, p := range cs.Params {
		if cs.Roles[p] == role {
			return p, true
		}
	}
	return "", false
}

// Analyze recognizes the contract structure of a term. It never fails:
// shapes it does not understand produce empty or unknown results.
func Analyze(term uplc.Term) *ContractStructure {
	cs := &ContractStructure{
		Full:  term,
		Roles: make(map[string]Role),
		Redeemer: RedeemerInfo{
			MatchPattern: MatchUnknown,
		},
	}
	if term == nil {
		cs.Purpose = PurposeUnknown
		cs.PurposeOutcome = NotFound[Purpose]("empty term")
		cs.Datum.Type = "Void"
		return cs
	}
	entry := detectEntry(term)
	cs.Params = entry.params
	cs.Body = entry.body
	cs.ScriptParams = entry.scriptParams
	cs.Outer = entry.outer
	a := newAnalyzer(entry)
	for name, role := range a.roles {
		cs.Roles[name] = role
	}
	cs.PurposeOutcome = a.inferPurpose()
	cs.Purpose = cs.PurposeOutcome.Value
	if cs.Purpose == "" {
		cs.Purpose = PurposeUnknown
	}
	cs.Redeemer.Variants = a.findVariants()
	if len(cs.Redeemer.Variants) > 0 {
		cs.Redeemer.MatchPattern = MatchConstructor
	} else if a.redeemer != nil {
		cs.Redeemer.Fields = a.extractFields(a.body, a.redeemer)
	}
	for i := range cs.Redeemer.Variants {
		v := &cs.Redeemer.Variants[i]
		v.Fields = a.extractFields(v.Body, a.redeemer)
	}
	cs.Datum = a.datumInfo()
	cs.Checks = a.findChecks()
	cs.Variables = a.nameVariables(cs)
	return cs
}
