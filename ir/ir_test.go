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

package ir_test

import (
	"math/big"
	"strings"
	"testing"

	"github.com/blinklabs-io/uplcdec/ir"
	"github.com/blinklabs-io/uplcdec/syntax"
	"github.com/blinklabs-io/uplcdec/uplc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lower(t *testing.T, text string) *ir.Module {
	t.Helper()
	term, err := syntax.ParseTerm(text)
	require.NoError(t, err)
	return ir.FromTerm(term)
}

func returned(t *testing.T, m *ir.Module) ir.Expr {
	t.Helper()
	require.Len(t, m.Functions, 1)
	body := m.Functions[0].Body
	require.NotEmpty(t, body)
	ret, ok := body[len(body)-1].(*ir.ReturnStmt)
	require.True(t, ok, "last statement is %T", body[len(body)-1])
	return ret.Value
}

func intLiteral(t *testing.T, e ir.Expr) int64 {
	t.Helper()
	lit, ok := e.(*ir.Literal)
	require.True(t, ok, "expression is %T", e)
	i, ok := lit.Value.(*uplc.Integer)
	require.True(t, ok)
	return i.Value.Int64()
}

func TestLowerParamsAndLets(t *testing.T) {
	m := lower(t, `(lam d (lam r [(lam c [(builtin addInteger) c r]) (con integer 1)]))`)
	fn := m.Functions[0]
	assert.Equal(t, ir.FunctionName, fn.Name)
	require.Len(t, fn.Params, 2)
	assert.Equal(t, "d", fn.Params[0].Name)
	assert.Equal(t, "r", fn.Params[1].Name)
	require.Len(t, fn.Body, 2)
	let, ok := fn.Body[0].(*ir.LetStmt)
	require.True(t, ok)
	assert.Equal(t, "c", let.Name)
	bin, ok := returned(t, m).(*ir.BinaryExpr)
	require.True(t, ok)
	assert.Equal(t, "add", bin.Op)
	assert.Equal(t, "addInteger", bin.Builtin)
}

func TestLowerIfThenElseAndError(t *testing.T) {
	m := lower(t, `(lam x (force [(force (builtin ifThenElse)) [(builtin equalsInteger) x (con integer 0)] (delay (con unit ())) (delay (error))]))`)
	when, ok := returned(t, m).(*ir.WhenExpr)
	require.True(t, ok)
	require.Len(t, when.Branches, 2)
	assert.Equal(t, "True", when.Branches[0].Pattern)
	assert.Equal(t, "False", when.Branches[1].Pattern)
	assert.IsType(t, &ir.FailStmt{}, when.Branches[1].Body[0])
}

func TestLowerCaseAndImports(t *testing.T) {
	m := lower(t, `(lam x (case x (con integer 1) [(builtin bls12_381_G1_compress) x]))`)
	when, ok := returned(t, m).(*ir.WhenExpr)
	require.True(t, ok)
	require.Len(t, when.Branches, 2)
	assert.Equal(t, "1", when.Branches[1].Pattern)
	assert.Equal(t, []string{"bls12_381/g1"}, m.Imports)
}

func TestFoldArithmetic(t *testing.T) {
	m := lower(t, `[(builtin addInteger) (con integer 41) [(builtin multiplyInteger) (con integer 1) (con integer 1)]]`)
	opt := ir.Optimize(m, ir.DefaultOptions())
	assert.Equal(t, int64(42), intLiteral(t, returned(t, opt)))
	// the input module is left alone
	assert.IsType(t, &ir.BinaryExpr{}, returned(t, m))
}

func TestFoldDivisionRounding(t *testing.T) {
	testDefs := []struct {
		builtin  string
		expected int64
	}{
		{"divideInteger", -4},
		{"modInteger", 1},
		{"quotientInteger", -3},
		{"remainderInteger", -1},
	}
	for _, testDef := range testDefs {
		v, ok := ir.FoldBuiltin(testDef.builtin, []uplc.Value{
			&uplc.Integer{Value: big.NewInt(-7)},
			&uplc.Integer{Value: big.NewInt(2)},
		})
		require.True(t, ok, testDef.builtin)
		assert.Equal(t, testDef.expected, v.(*uplc.Integer).Value.Int64(), testDef.builtin)
	}
}

func TestFoldDivisionByZeroIsKept(t *testing.T) {
	m := lower(t, `[(builtin divideInteger) (con integer 1) (con integer 0)]`)
	opt := ir.Optimize(m, ir.DefaultOptions())
	assert.IsType(t, &ir.BinaryExpr{}, returned(t, opt))
}

func TestFoldSerialiseData(t *testing.T) {
	v, ok := ir.FoldBuiltin("serialiseData", []uplc.Value{
		&uplc.DataValue{Value: &uplc.DataConstr{Tag: 0}},
	})
	require.True(t, ok)
	assert.Equal(t, []byte{0xd8, 0x79, 0x80}, v.(*uplc.ByteString).Value)
}

func TestFoldHashLength(t *testing.T) {
	v, ok := ir.FoldBuiltin("blake2b_224", []uplc.Value{&uplc.ByteString{}})
	require.True(t, ok)
	assert.Len(t, v.(*uplc.ByteString).Value, 28)
	_, ok = ir.FoldBuiltin("decodeUtf8", []uplc.Value{&uplc.ByteString{Value: []byte{0xff}}})
	assert.False(t, ok)
}

func TestFoldingDisabled(t *testing.T) {
	m := lower(t, `[(builtin addInteger) (con integer 1) (con integer 2)]`)
	opt := ir.Optimize(m, ir.Options{})
	assert.IsType(t, &ir.BinaryExpr{}, returned(t, opt))
}

func TestDeadCodeElimination(t *testing.T) {
	m := &ir.Module{Functions: []*ir.Function{{
		Name: "f",
		Body: []ir.Stmt{
			&ir.FailStmt{},
			&ir.LetStmt{Name: "x", Value: &ir.Variable{Name: "y"}},
			&ir.ReturnStmt{Value: &ir.Variable{Name: "x"}},
		},
	}}}
	opt := ir.Optimize(m, ir.Options{DeadCodeElimination: true})
	require.Len(t, opt.Functions[0].Body, 1)
	assert.IsType(t, &ir.FailStmt{}, opt.Functions[0].Body[0])
	assert.Len(t, m.Functions[0].Body, 3)
}

func TestInlineHints(t *testing.T) {
	m := lower(t, `(lam x [(lam f [f x]) (lam y y)])`)
	opt := ir.Optimize(m, ir.DefaultOptions())
	targets := make(map[string]float64)
	for _, h := range opt.Hints {
		assert.Equal(t, "inline", h.Kind)
		targets[h.Target] = h.Confidence
	}
	require.Contains(t, targets, "f")
	assert.Less(t, targets["f"], 0.9)
	assert.Empty(t, m.Hints)
}

func TestFormat(t *testing.T) {
	m := lower(t, `(lam x (force [(force (builtin ifThenElse)) [(builtin lessThanInteger) x (con integer 10)] (delay (con bool True)) (delay (error))]))`)
	out := ir.Format(m)
	assert.True(t, strings.HasPrefix(out, "fn validator(x) {\n"))
	assert.Contains(t, out, "when (x < 10) is {")
	assert.Contains(t, out, "    True -> {\n      True\n    }")
	assert.Contains(t, out, "      fail")
}
