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

package analysis_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/blinklabs-io/uplcdec/analysis"
	"github.com/blinklabs-io/uplcdec/syntax"
	"github.com/blinklabs-io/uplcdec/uplc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tag(x string) string {
	return "[(force (force (builtin fstPair))) [(builtin unConstrData) " + x + "]]"
}

func ite(cond, then, els string) string {
	return fmt.Sprintf(
		"[(force (builtin ifThenElse)) %s (delay %s) (delay %s)]",
		cond, then, els,
	)
}

func eqInt(a, b string) string {
	return "[(builtin equalsInteger) " + a + " " + b + "]"
}

func field(x string, k int) string {
	inner := "[(force (force (builtin sndPair))) [(builtin unConstrData) " + x + "]]"
	for range k {
		inner = "[(force (builtin tailList)) " + inner + "]"
	}
	return "[(force (builtin headList)) " + inner + "]"
}

const unit = "(con unit ())"

func analyze(t *testing.T, text string) *analysis.ContractStructure {
	t.Helper()
	term, err := syntax.ParseTerm(text)
	require.NoError(t, err)
	return analysis.Analyze(term)
}

func TestVariantsSortedByIndex(t *testing.T) {
	body := ite(
		eqInt(tag("r"), "(con integer 2)"),
		unit,
		ite(
			eqInt(tag("r"), "(con integer 0)"),
			unit,
			ite(eqInt("(con integer 1)", tag("r")), unit, "(error)"),
		),
	)
	cs := analyze(t, "(lam d (lam r (lam c "+body+")))")
	require.Len(t, cs.Redeemer.Variants, 3)
	indexes := []uint64{}
	names := []string{}
	for _, v := range cs.Redeemer.Variants {
		indexes = append(indexes, v.Index)
		names = append(names, v.Name)
	}
	assert.Equal(t, []uint64{0, 1, 2}, indexes)
	assert.Equal(t, []string{"Cancel", "Update", "Claim"}, names)
	assert.Equal(t, analysis.MatchConstructor, cs.Redeemer.MatchPattern)
	// Constructor selection is structure, not validation
	assert.Empty(t, cs.Checks)
}

func TestVariantDedupFirstWins(t *testing.T) {
	body := ite(
		eqInt(tag("r"), "(con integer 0)"),
		"(con integer 1)",
		ite(eqInt(tag("r"), "(con integer 0)"), "(con integer 2)", "(error)"),
	)
	cs := analyze(t, "(lam d (lam r (lam c "+body+")))")
	require.Len(t, cs.Redeemer.Variants, 1)
	assert.Equal(t, "(con integer 1)", uplc.Show(cs.Redeemer.Variants[0].Body))
}

func TestVariantsThroughAliases(t *testing.T) {
	body := "[(lam x [(lam t " + ite(eqInt("t", "(con integer 3)"), unit, "(error)") +
		") " + tag("x") + "]) r]"
	cs := analyze(t, "(lam d (lam r (lam c "+body+")))")
	require.Len(t, cs.Redeemer.Variants, 1)
	assert.Equal(t, uint64(3), cs.Redeemer.Variants[0].Index)
	assert.Equal(t, "Withdraw", cs.Redeemer.Variants[0].Name)
	assert.Equal(t, "Variant7", analysis.VariantName(7))
}

func TestVariantsFromCase(t *testing.T) {
	cs := analyze(t, "(lam d (lam r (lam c (case r "+unit+" (error)))))")
	require.Len(t, cs.Redeemer.Variants, 2)
	assert.Equal(t, "Cancel", cs.Redeemer.Variants[0].Name)
	assert.Equal(t, "(error)", uplc.Show(cs.Redeemer.Variants[1].Body))
}

func TestDatumFieldDepth(t *testing.T) {
	body := "[(builtin lessThanInteger) (con integer 1700000000000) [(builtin unIData) " +
		field("d", 3) + "]]"
	cs := analyze(t, "(lam d (lam r (lam c "+body+")))")
	assert.Equal(t, analysis.PurposeSpend, cs.Purpose)
	assert.Equal(t, analysis.StatusFound, cs.PurposeOutcome.Status)
	require.Len(t, cs.Datum.Fields, 1)
	f := cs.Datum.Fields[0]
	assert.Equal(t, 3, f.Index)
	assert.Equal(t, analysis.FieldInteger, f.Type)
	assert.Equal(t, "deadline", f.Name)
	assert.True(t, cs.Datum.Used)
	assert.Equal(t, "Datum", cs.Datum.Type)
	require.Len(t, cs.Checks, 1)
	assert.Equal(t, analysis.CheckDeadline, cs.Checks[0].Category)
}

func TestDatumFieldsThroughLets(t *testing.T) {
	// fields = sndPair (unConstrData d); rest = tailList fields
	body := "[(lam fields [(lam rest [(builtin unBData) [(force (builtin headList)) rest]]) " +
		"[(force (builtin tailList)) fields]]) [(force (force (builtin sndPair))) [(builtin unConstrData) d]]]"
	cs := analyze(t, "(lam d (lam r (lam c "+body+")))")
	require.Len(t, cs.Datum.Fields, 1)
	assert.Equal(t, 1, cs.Datum.Fields[0].Index)
	assert.Equal(t, analysis.FieldByteString, cs.Datum.Fields[0].Type)
}

func TestRedeemerVariantFields(t *testing.T) {
	then := "[(builtin equalsByteString) [(builtin unBData) " + field("r", 0) + "] " +
		"(con bytestring #" + strings.Repeat("ab", 28) + ")]"
	body := ite(eqInt(tag("r"), "(con integer 1)"), then, "(error)")
	cs := analyze(t, "(lam d (lam r (lam c "+body+")))")
	require.Len(t, cs.Redeemer.Variants, 1)
	v := cs.Redeemer.Variants[0]
	require.Len(t, v.Fields, 1)
	assert.Equal(t, analysis.FieldByteString, v.Fields[0].Type)
	assert.Equal(t, "owner", v.Fields[0].Name)
	require.Len(t, cs.Checks, 1)
	assert.Equal(t, analysis.CheckOwner, cs.Checks[0].Category)
}

func TestPurposeByArity(t *testing.T) {
	cs := analyze(t, "(lam ctx "+unit+")")
	assert.Equal(t, analysis.PurposeMint, cs.Purpose)
	assert.Equal(t, analysis.RoleContext, cs.Roles["ctx"])

	cs = analyze(t, "(lam r (lam ctx "+unit+"))")
	assert.Equal(t, analysis.PurposeMint, cs.Purpose)
	assert.Equal(t, analysis.StatusAmbiguous, cs.PurposeOutcome.Status)
	assert.ElementsMatch(
		t,
		[]analysis.Purpose{analysis.PurposeMint, analysis.PurposeWithdraw, analysis.PurposePublish},
		cs.PurposeOutcome.Candidates,
	)

	cs = analyze(t, "(lam d (lam r (lam ctx "+unit+")))")
	assert.Equal(t, analysis.PurposeSpend, cs.Purpose)
	assert.Equal(t, analysis.StatusAmbiguous, cs.PurposeOutcome.Status)
	assert.Equal(t, "no datum field access found", cs.PurposeOutcome.Reason)
	assert.Equal(
		t,
		[]analysis.Purpose{
			analysis.PurposeSpend,
			analysis.PurposeMint,
			analysis.PurposeWithdraw,
			analysis.PurposePublish,
		},
		cs.PurposeOutcome.Candidates,
	)

	vote := ite(eqInt(tag("ctx"), "(con integer 4)"), unit, "(error)")
	cs = analyze(t, "(lam p (lam d (lam r (lam ctx "+vote+"))))")
	assert.Equal(t, analysis.PurposeVote, cs.Purpose)
	assert.Equal(t, analysis.RoleParameter, cs.Roles["p"])

	cs = analyze(t, "(lam a (lam b (lam d (lam r (lam ctx "+unit+")))))")
	assert.Equal(t, analysis.PurposeSpend, cs.Purpose)
	assert.Equal(t, analysis.StatusAmbiguous, cs.PurposeOutcome.Status)
	assert.Len(t, cs.PurposeOutcome.Candidates, 4)
	assert.Contains(t, cs.PurposeOutcome.Candidates, analysis.PurposeMint)
}

func TestSingleParameterScriptInfo(t *testing.T) {
	body := ite(eqInt(tag(field("ctx", 2)), "(con integer 2)"), unit, "(error)")
	cs := analyze(t, "(lam ctx "+body+")")
	assert.Equal(t, analysis.PurposeWithdraw, cs.Purpose)
	assert.Equal(t, analysis.StatusFound, cs.PurposeOutcome.Status)
	assert.Empty(t, cs.Redeemer.Variants)
}

func TestSingleParameterRedeemerVariants(t *testing.T) {
	body := ite(eqInt(tag(field("ctx", 1)), "(con integer 0)"), unit, "(error)")
	cs := analyze(t, "(lam ctx "+body+")")
	require.Len(t, cs.Redeemer.Variants, 1)
	assert.Equal(t, "Cancel", cs.Redeemer.Variants[0].Name)
}

func TestScriptParameters(t *testing.T) {
	cs := analyze(t, "[(lam owner (lam ctx "+unit+")) (con bytestring #00ff)]")
	require.Len(t, cs.ScriptParams, 1)
	assert.Equal(t, "owner", cs.ScriptParams[0].Name)
	assert.Equal(t, "bytestring", cs.ScriptParams[0].Type)
	assert.Equal(t, "#00ff", cs.ScriptParams[0].Text)
	assert.Equal(t, []string{"ctx"}, cs.Params)
}

func TestChecksDeduplicatedByNode(t *testing.T) {
	check := "(force [(builtin verifyEd25519Signature) (con bytestring #01) (con bytestring #02) (con bytestring #03)])"
	body := "[(lam x x) " + check + "]"
	cs := analyze(t, "(lam d (lam r (lam c "+body+")))")
	require.Len(t, cs.Checks, 1)
	assert.Equal(t, analysis.CheckSigner, cs.Checks[0].Category)
	assert.Equal(t, "verifyEd25519Signature", cs.Checks[0].Builtin)
}

func TestUnknownShapesDegrade(t *testing.T) {
	cs := analysis.Analyze(&uplc.Error{})
	assert.Equal(t, analysis.PurposeMint, cs.Purpose)
	assert.Empty(t, cs.Redeemer.Variants)
	assert.Equal(t, analysis.MatchUnknown, cs.Redeemer.MatchPattern)

	cs = analysis.Analyze(nil)
	assert.Equal(t, analysis.PurposeUnknown, cs.Purpose)

	var term uplc.Term = uplc.NewUnit()
	for range 50000 {
		term = &uplc.Lambda{Param: "x", Body: term}
	}
	cs = analysis.Analyze(term)
	assert.Len(t, cs.Params, 8)
}

func unB(x string) string {
	return "[(builtin unBData) " + x + "]"
}

// mapEntry reads the first entry of a map stored in field 0 of the datum
func mapEntry(accessor string) string {
	return "[(force (force (builtin " + accessor + "))) [(force (builtin headList)) [(builtin unMapData) " +
		field("d", 0) + "]]]"
}

func TestCheckCategories(t *testing.T) {
	testDefs := []struct {
		name        string
		body        string
		category    analysis.CheckCategory
		description string
	}{
		{
			name:        "asset name against constant",
			body:        "[(builtin equalsByteString) (con bytestring #746f6b) " + unB(mapEntry("fstPair")) + "]",
			category:    analysis.CheckToken,
			description: "token identifier equals #746f6b",
		},
		{
			name:        "two map keys",
			body:        "[(builtin equalsByteString) " + unB(mapEntry("fstPair")) + " " + unB(mapEntry("fstPair")) + "]",
			category:    analysis.CheckToken,
			description: "token identifiers compared",
		},
		{
			name: "amount read from a map",
			body: "[(builtin lessThanEqualsInteger) (con integer 5) [(builtin unIData) " +
				mapEntry("sndPair") + "]]",
			category:    analysis.CheckValue,
			description: "amount checked with lessThanEqualsInteger",
		},
		{
			name: "data built from a map",
			body: "[(builtin equalsData) (con data (I 1)) [(builtin mapData) [(builtin unMapData) " +
				field("d", 0) + "]]]",
			category:    analysis.CheckValue,
			description: "value compared with equalsData",
		},
		{
			name:        "ordered byte strings",
			body:        "[(builtin lessThanByteString) " + unB(field("d", 0)) + " (con bytestring #00)]",
			category:    analysis.CheckComparison,
			description: "byte strings compared with lessThanByteString",
		},
		{
			name:        "key hash from the context",
			body:        "[(builtin equalsByteString) " + unB(field("d", 0)) + " " + unB(field("c", 0)) + "]",
			category:    analysis.CheckSigner,
			description: "key hash compared against transaction data",
		},
		{
			name:        "two datum byte strings",
			body:        "[(builtin equalsByteString) " + unB(field("d", 0)) + " " + unB(field("d", 1)) + "]",
			category:    analysis.CheckEquality,
			description: "byte strings compared",
		},
	}
	for _, testDef := range testDefs {
		cs := analyze(t, "(lam d (lam r (lam c "+testDef.body+")))")
		require.Len(t, cs.Checks, 1, testDef.name)
		assert.Equal(t, testDef.category, cs.Checks[0].Category, testDef.name)
		assert.Equal(t, testDef.description, cs.Checks[0].Description, testDef.name)
	}
}

func TestVariableNamingPriority(t *testing.T) {
	owner := "(con bytestring #" + strings.Repeat("ab", 28) + ")"
	testDefs := []struct {
		name      string
		body      string
		field     int
		variable  string
		fieldName string
	}{
		{
			// the hash transform wins over the owner comparison
			name:      "hashed field",
			body:      "[(builtin equalsByteString) [(builtin sha2_256) " + unB(field("d", 0)) + "] " + owner + "]",
			field:     0,
			variable:  "preimage",
			fieldName: "preimage",
		},
		{
			// the map transform wins over the list operation
			name:      "map field",
			body:      "[(force (builtin nullList)) [(builtin unMapData) " + field("d", 0) + "]]",
			field:     0,
			variable:  "value",
			fieldName: "value",
		},
		{
			name:      "list field",
			body:      "[(force (builtin nullList)) [(builtin unListData) " + field("d", 2) + "]]",
			field:     2,
			variable:  "items",
			fieldName: "items",
		},
		{
			name: "signature operand",
			body: "[(builtin verifyEd25519Signature) " + unB(field("d", 0)) +
				" (con bytestring #00) (con bytestring #00)]",
			field:     0,
			variable:  "public_key",
			fieldName: "public_key",
		},
		{
			name:      "owner comparison",
			body:      "[(builtin equalsByteString) " + unB(field("d", 1)) + " " + owner + "]",
			field:     1,
			variable:  "owner",
			fieldName: "owner",
		},
		{
			// no transform or usage suggests a name
			name:      "unnamed field",
			body:      "[(builtin equalsData) " + field("d", 1) + " (con data (I 0))]",
			field:     1,
			variable:  "datum_field_1",
			fieldName: "field_1",
		},
	}
	for _, testDef := range testDefs {
		cs := analyze(t, "(lam d (lam r (lam c "+testDef.body+")))")
		var found *analysis.NamedVariable
		for i, v := range cs.Variables {
			if v.Source == analysis.RoleDatum && v.Field == testDef.field {
				found = &cs.Variables[i]
			}
		}
		require.NotNil(t, found, testDef.name)
		assert.Equal(t, testDef.variable, found.Name, testDef.name)
		require.Len(t, cs.Datum.Fields, 1, testDef.name)
		assert.Equal(t, testDef.fieldName, cs.Datum.Fields[0].Name, testDef.name)
	}
}
