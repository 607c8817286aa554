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

package cost_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/blinklabs-io/uplcdec/cost"
	"github.com/blinklabs-io/uplcdec/syntax"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCount(t *testing.T) {
	term, err := syntax.ParseTerm(`(lam x [(builtin addInteger) x (force (delay (con integer 1)))])`)
	require.NoError(t, err)
	counts := cost.Count(term)
	assert.Equal(t, int64(1), counts.Steps[cost.StepLambda])
	assert.Equal(t, int64(2), counts.Steps[cost.StepApply])
	assert.Equal(t, int64(1), counts.Steps[cost.StepForce])
	assert.Equal(t, int64(1), counts.Steps[cost.StepDelay])
	assert.Equal(t, int64(1), counts.Builtins["addInteger"])
	assert.Equal(t, int64(8), counts.TotalSteps())
}

func TestEstimate(t *testing.T) {
	counts := cost.Counts{
		Steps:    map[cost.StepKind]int64{cost.StepApply: 2},
		Builtins: map[string]int64{"addInteger": 1, "notABuiltin": 1},
	}
	model := cost.DefaultModel()
	b := cost.Estimate(counts, model)
	assert.Equal(t, int64(100+2*16000+100788+200000), b.CPU)
	assert.Equal(t, int64(100+2*100+1+32), b.Memory)
	assert.True(t, b.Fits(cost.MaxTxBudget))
	assert.Equal(t, "cpu=332888 mem=333", b.String())
}

func TestApplyParams(t *testing.T) {
	model := cost.DefaultModel()
	model.ApplyParams(map[string]int64{
		"cekApplyCost-exBudgetCPU":           23000,
		"cekStartupCost-exBudgetMemory":      7,
		"addInteger-cpu-arguments-intercept": 205665,
		"dropList-memory-arguments":          4,
		"unrelated":                          1,
	})
	assert.Equal(t, int64(23000), model.Steps[cost.StepApply].CPU)
	assert.Equal(t, int64(100), model.Steps[cost.StepApply].Memory)
	assert.Equal(t, int64(7), model.Startup.Memory)
	assert.Equal(t, int64(205665), model.Builtins["addInteger"].CPU)
	assert.Equal(t, int64(4), model.Builtins["dropList"].Memory)
	assert.Equal(t, int64(200000), model.Builtins["dropList"].CPU)
}

func TestLoadModel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.yaml")
	doc := "fallback:\n  cpu: 1\n  memory: 2\nbuiltins:\n  sha2_256:\n    cpu: 3\n    memory: 4\n"
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))
	model, err := cost.LoadModel(path)
	require.NoError(t, err)
	assert.Equal(t, cost.Cost{CPU: 1, Memory: 2}, model.Fallback)
	assert.Equal(t, cost.Cost{CPU: 3, Memory: 4}, model.Builtins["sha2_256"])
	// untouched entries keep their defaults
	assert.Equal(t, int64(100788), model.Builtins["addInteger"].CPU)
	_, err = cost.LoadModel(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestEpochSource(t *testing.T) {
	ctx := context.Background()
	early := cost.DefaultModel()
	late := cost.DefaultModel()
	late.Fallback.CPU = 1
	src := cost.NewEpochSource()
	src.Set(500, late)
	src.Set(100, early)
	_, err := src.CostModel(ctx, 99)
	assert.ErrorIs(t, err, cost.ErrNoCostModel)
	m, err := src.CostModel(ctx, 499)
	require.NoError(t, err)
	assert.Same(t, early, m)
	m, err = src.CostModel(ctx, 900)
	require.NoError(t, err)
	assert.Same(t, late, m)

	m, err = cost.StaticSource{}.CostModel(ctx, 1)
	require.NoError(t, err)
	assert.NotNil(t, m)
}
