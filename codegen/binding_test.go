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

package codegen_test

import (
	"testing"

	"github.com/blinklabs-io/uplcdec/codegen"
	"github.com/blinklabs-io/uplcdec/syntax"
	"github.com/blinklabs-io/uplcdec/uplc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseTerm(t *testing.T, text string) uplc.Term {
	t.Helper()
	term, err := syntax.ParseTerm(text)
	require.NoError(t, err)
	return term
}

func TestAliasChainResolvesToConstant(t *testing.T) {
	term := parseTerm(t, `[(lam c [(lam b [(lam a a) b]) c]) (con integer 42)]`)
	env := codegen.NewBindingEnvironment(term)
	assert.Equal(t, 3, env.Len())
	a, ok := env.Resolve("a")
	require.True(t, ok)
	assert.Equal(t, "c", a.Name)
	assert.Equal(t, codegen.BindingInline, a.Kind)
	assert.Equal(t, "42", env.Render(term))
}

func TestFoldedChain(t *testing.T) {
	term := parseTerm(t, `[(lam c [(lam b [(lam a a) b]) [(builtin addInteger) c (con integer 1)]]) (con integer 42)]`)
	env := codegen.NewBindingEnvironment(term)
	b, ok := env.Lookup("b")
	require.True(t, ok)
	assert.Equal(t, codegen.BindingInline, b.Kind)
	require.NotNil(t, b.Folded)
	assert.Equal(t, int64(43), b.Folded.(*uplc.Integer).Value.Int64())
	out := env.Render(term)
	assert.Equal(t, "42 + 1", out)
}

func TestMultiplyReferencedExpressionIsKept(t *testing.T) {
	term := parseTerm(t, `[(lam c [(lam b [(builtin multiplyInteger) b b]) [(builtin addInteger) c (con integer 1)]]) (con integer 42)]`)
	env := codegen.NewBindingEnvironment(term)
	b, ok := env.Lookup("b")
	require.True(t, ok)
	assert.Equal(t, 2, b.References)
	assert.Equal(t, codegen.BindingKeep, b.Kind)
	c, ok := env.Lookup("c")
	require.True(t, ok)
	assert.Equal(t, codegen.BindingInline, c.Kind)
	assert.Equal(t, "{ let b = 42 + 1 b * b }", env.Render(term))

	relaxed := codegen.NewBindingEnvironment(term, codegen.WithInlineLimit(2))
	b, _ = relaxed.Lookup("b")
	assert.Equal(t, codegen.BindingInline, b.Kind)
}

func TestNonConstantBuiltinIsKept(t *testing.T) {
	term := parseTerm(t, `(lam x [(lam y [(builtin addInteger) y y]) [(builtin addInteger) x (con integer 1)]])`)
	env := codegen.NewBindingEnvironment(term)
	y, ok := env.Lookup("y")
	require.True(t, ok)
	assert.Equal(t, codegen.BindingKeep, y.Kind)
	assert.Nil(t, y.Folded)
}

func TestAliasCycle(t *testing.T) {
	term := uplc.NewLet(
		"a",
		&uplc.Var{Name: "b"},
		uplc.NewLet("b", &uplc.Var{Name: "a"}, &uplc.Var{Name: "a"}),
	)
	env := codegen.NewBindingEnvironment(term)
	for _, name := range []string{"a", "b"} {
		b, ok := env.Resolve(name)
		require.True(t, ok)
		assert.Equal(t, codegen.BindingKeep, b.Kind, name)
		assert.True(t, b.Cycle, name)
	}
}

func TestAliasToParameter(t *testing.T) {
	term := parseTerm(t, `(lam x [(lam y [(builtin sha2_256) y]) x])`)
	env := codegen.NewBindingEnvironment(term)
	y, ok := env.Resolve("y")
	require.True(t, ok)
	assert.Equal(t, codegen.BindingAlias, y.Kind)
	assert.Equal(t, "x", y.Target)
	assert.Equal(t, "fn(x) { crypto.sha2_256(x) }", env.Render(term))
}

func TestPinnedBindingIsKept(t *testing.T) {
	term := parseTerm(t, `[(lam p p) (con integer 5)]`)
	env := codegen.NewBindingEnvironment(term, codegen.WithPinned("p"))
	p, ok := env.Lookup("p")
	require.True(t, ok)
	assert.Equal(t, codegen.BindingKeep, p.Kind)
}

func TestReusedBinderNamesKeepTheirMeaning(t *testing.T) {
	testDefs := []struct {
		input    string
		expected string
	}{
		{
			input:    "(lam x [(lam y [(lam x y) (con integer 1)]) x])",
			expected: "fn(x) { x }",
		},
		{
			input:    "[(lam x (lam x x)) (con integer 1)]",
			expected: "fn(x_1) { x_1 }",
		},
	}
	for _, testDef := range testDefs {
		term := parseTerm(t, testDef.input)
		env := codegen.NewBindingEnvironment(term)
		assert.Equal(t, testDef.expected, env.Render(term), "input: %s", testDef.input)
	}
}

func TestNameBoundByLambdaAndLetIsNotResolved(t *testing.T) {
	// [(lam x (lam x x)) (con integer 1)] built without the parser
	term := &uplc.Apply{
		Func: &uplc.Lambda{
			Param: "x",
			Body:  &uplc.Lambda{Param: "x", Body: &uplc.Var{Name: "x"}},
		},
		Arg: uplc.NewInt(1),
	}
	env := codegen.NewBindingEnvironment(term)
	x, ok := env.Lookup("x")
	require.True(t, ok)
	assert.True(t, x.Shadowed)
	assert.Equal(t, codegen.BindingKeep, x.Kind)
	out := env.Render(term)
	assert.Contains(t, out, "fn(x) { x }")
	assert.NotEqual(t, "fn(x) { 1 }", out)

	// an alias of a reused name is not followed
	alias := &uplc.Lambda{
		Param: "x",
		Body: uplc.NewLet(
			"y",
			&uplc.Var{Name: "x"},
			uplc.NewLet("x", uplc.NewInt(1), &uplc.Var{Name: "y"}),
		),
	}
	env = codegen.NewBindingEnvironment(alias)
	y, ok := env.Lookup("y")
	require.True(t, ok)
	assert.Equal(t, codegen.BindingKeep, y.Kind)
}
