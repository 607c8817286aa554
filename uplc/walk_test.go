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

package uplc_test

import (
	"math/big"
	"testing"

	"github.com/blinklabs-io/uplcdec/uplc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitBuiltinAppIgnoresForces(t *testing.T) {
	// [(force (force (builtin fstPair))) x]
	term := &uplc.Apply{
		Func: &uplc.Force{Term: &uplc.Force{Term: &uplc.Builtin{Name: "fstPair"}}},
		Arg:  &uplc.Var{Name: "x"},
	}
	name, args, ok := uplc.SplitBuiltinApp(term)
	require.True(t, ok)
	assert.Equal(t, "fstPair", name)
	require.Len(t, args, 1)
	assert.Equal(t, "x", args[0].(*uplc.Var).Name)
}

func TestSplitBuiltinAppOrder(t *testing.T) {
	term := uplc.NewApply(
		&uplc.Force{Term: &uplc.Builtin{Name: "ifThenElse"}},
		uplc.NewBool(true),
		uplc.NewInt(1),
		uplc.NewInt(2),
	)
	args, ok := uplc.MatchBuiltin(&uplc.Force{Term: term}, "ifThenElse", 3)
	require.True(t, ok)
	assert.Equal(t, int64(1), args[1].(*uplc.Constant).Value.(*uplc.Integer).Value.Int64())
	assert.Equal(t, int64(2), args[2].(*uplc.Constant).Value.(*uplc.Integer).Value.Int64())
	_, ok = uplc.MatchBuiltin(term, "ifThenElse", 2)
	assert.False(t, ok)
}

func TestCountReferencesHonorsShadowing(t *testing.T) {
	// [(lam x [x (lam x x)]) x]
	term := &uplc.Apply{
		Func: &uplc.Lambda{
			Param: "y",
			Body: &uplc.Apply{
				Func: &uplc.Var{Name: "x"},
				Arg:  &uplc.Lambda{Param: "x", Body: &uplc.Var{Name: "x"}},
			},
		},
		Arg: &uplc.Var{Name: "x"},
	}
	assert.Equal(t, 2, uplc.CountReferences(term, "x"))
	assert.Equal(t, 3, uplc.ReferenceCounts(term)["x"])
}

func TestBinderCounts(t *testing.T) {
	// [(lam x (lam x x)) (lam y y)]
	term := &uplc.Apply{
		Func: &uplc.Lambda{
			Param: "x",
			Body:  &uplc.Lambda{Param: "x", Body: &uplc.Var{Name: "x"}},
		},
		Arg: &uplc.Lambda{Param: "y", Body: &uplc.Var{Name: "y"}},
	}
	counts := uplc.BinderCounts(term)
	assert.Equal(t, 2, counts["x"])
	assert.Equal(t, 1, counts["y"])
	assert.Zero(t, counts["z"])
}

func TestInspectDeepTerm(t *testing.T) {
	var term uplc.Term = uplc.NewBool(true)
	for range 100000 {
		term = &uplc.Lambda{Param: "x", Body: term}
	}
	assert.Equal(t, 100001, uplc.Size(term))
}

func TestShowTerm(t *testing.T) {
	term := &uplc.Lambda{
		Param: "x",
		Body: uplc.NewApply(
			&uplc.Builtin{Name: "addInteger"},
			&uplc.Var{Name: "x"},
			uplc.NewInt(-3),
		),
	}
	assert.Equal(
		t,
		"(lam x [[(builtin addInteger) x] (con integer -3)])",
		uplc.Show(term),
	)
	prog := &uplc.Program{Version: uplc.DefaultVersion, Term: &uplc.Error{}}
	assert.Equal(t, "(program 1.1.0 (error))", uplc.ShowProgram(prog))
}

func TestShowValues(t *testing.T) {
	list := &uplc.List{
		ElemType: uplc.TypeInteger,
		Items: []uplc.Value{
			&uplc.Integer{Value: big.NewInt(1)},
			&uplc.Integer{Value: big.NewInt(2)},
		},
	}
	assert.Equal(t, "[1, 2]", uplc.ShowValue(list))
	assert.Equal(t, "(list integer)", list.Type().String())
	pair := &uplc.Pair{
		FstType: uplc.TypeInteger,
		SndType: uplc.TypeByteString,
		Fst:     &uplc.Integer{Value: big.NewInt(7)},
		Snd:     &uplc.ByteString{Value: []byte{0xca, 0xfe}},
	}
	assert.Equal(t, "(7, #cafe)", uplc.ShowValue(pair))
	assert.Equal(t, "(pair integer bytestring)", pair.Type().String())
	d := &uplc.DataConstr{
		Tag: 0,
		Fields: []uplc.Data{
			&uplc.DataInteger{Value: big.NewInt(5)},
			&uplc.DataMap{Pairs: []uplc.DataPair{{
				Key:   &uplc.DataBytes{Value: []byte{1}},
				Value: &uplc.DataList{},
			}}},
		},
	}
	assert.Equal(t, "Constr 0 [I 5, Map [(B #01, List [])]]", uplc.ShowData(d))
}

func TestAsLet(t *testing.T) {
	let := uplc.NewLet("c", uplc.NewInt(42), &uplc.Var{Name: "c"})
	name, value, body, ok := uplc.AsLet(let)
	require.True(t, ok)
	assert.Equal(t, "c", name)
	assert.IsType(t, &uplc.Constant{}, value)
	assert.IsType(t, &uplc.Var{}, body)
	_, _, _, ok = uplc.AsLet(uplc.NewInt(1))
	assert.False(t, ok)
}
