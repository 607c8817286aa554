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

package cost

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Cost is a CPU and memory pair in execution units
type Cost struct {
	CPU    int64 `yaml:"cpu"`
	Memory int64 `yaml:"memory"`
}

// Model holds machine and builtin costs
type Model struct {
	Startup  Cost              `yaml:"startup"`
	Steps    map[StepKind]Cost `yaml:"steps"`
	Builtins map[string]Cost   `yaml:"builtins"`
	// Fallback is charged for builtins missing from Builtins
	Fallback Cost `yaml:"fallback"`
}

const (
	defaultStepCPU    = 16000
	defaultStepMemory = 100
)

// Constant parts of the mainnet builtin cost functions
var defaultBuiltinCosts = map[string]Cost{
	"addInteger":             {100788, 1},
	"subtractInteger":        {100788, 1},
	"multiplyInteger":        {90434, 0},
	"divideInteger":          {85848, 0},
	"quotientInteger":        {85848, 0},
	"remainderInteger":       {85848, 0},
	"modInteger":             {85848, 0},
	"equalsInteger":          {51775, 1},
	"lessThanInteger":        {44749, 1},
	"lessThanEqualsInteger":  {43285, 1},
	"appendByteString":       {1000, 0},
	"lengthOfByteString":     {1000, 10},
	"equalsByteString":       {29498, 1},
	"lessThanByteString":     {28999, 1},
	"sha2_256":               {270652, 4},
	"sha3_256":               {1457325, 4},
	"blake2b_224":            {207616, 4},
	"blake2b_256":            {117366, 4},
	"keccak_256":             {2261318, 4},
	"verifyEd25519Signature": {53384111, 10},
	"ifThenElse":             {76049, 1},
	"chooseUnit":             {61462, 4},
	"trace":                  {59498, 32},
	"fstPair":                {80436, 32},
	"sndPair":                {85931, 32},
	"headList":               {43249, 32},
	"tailList":               {41182, 32},
	"nullList":               {60091, 32},
	"chooseList":             {175354, 32},
	"mkCons":                 {65493, 32},
	"constrData":             {89141, 32},
	"iData":                  {1000, 32},
	"bData":                  {1000, 32},
	"unConstrData":           {32696, 32},
	"unIData":                {43357, 32},
	"unBData":                {31220, 32},
	"unListData":             {32247, 32},
	"unMapData":              {38314, 32},
	"equalsData":             {1060367, 1},
	"serialiseData":          {1159724, 0},
}

// DefaultModel returns a model with mainnet machine costs and flat builtin
// costs
func DefaultModel() *Model {
	m := &Model{
		Startup:  Cost{CPU: 100, Memory: 100},
		Steps:    make(map[StepKind]Cost),
		Builtins: make(map[string]Cost, len(defaultBuiltinCosts)),
		Fallback: Cost{CPU: 200000, Memory: 32},
	}
	for _, kind := range []StepKind{
		StepConstant, StepVar, StepLambda, StepApply, StepDelay,
		StepForce, StepBuiltin, StepConstr, StepCase,
	} {
		m.Steps[kind] = Cost{CPU: defaultStepCPU, Memory: defaultStepMemory}
	}
	for name, c := range defaultBuiltinCosts {
		m.Builtins[name] = c
	}
	return m
}

// ParseModel reads a YAML model. Entries missing from the document keep
// their default values.
func ParseModel(data []byte) (*Model, error) {
	m := DefaultModel()
	if err := yaml.Unmarshal(data, m); err != nil {
		return nil, fmt.Errorf("parse cost model: %w", err)
	}
	return m, nil
}

// LoadModel reads a YAML model from a file
func LoadModel(path string) (*Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read cost model: %w", err)
	}
	return ParseModel(data)
}

// stepParams maps machine step kinds to their protocol parameter names
var stepParams = map[string]StepKind{
	"cekConstCost":   StepConstant,
	"cekVarCost":     StepVar,
	"cekLamCost":     StepLambda,
	"cekApplyCost":   StepApply,
	"cekDelayCost":   StepDelay,
	"cekForceCost":   StepForce,
	"cekBuiltinCost": StepBuiltin,
	"cekConstrCost":  StepConstr,
	"cekCaseCost":    StepCase,
}

// ApplyParams overrides costs from named protocol cost model entries, such
// as cekApplyCost-exBudgetCPU or addInteger-cpu-arguments-intercept.
// Unknown names are ignored.
func (m *Model) ApplyParams(params map[string]int64) {
	for name, value := range params {
		prefix, suffix, ok := strings.Cut(name, "-")
		if !ok {
			continue
		}
		if prefix == "cekStartupCost" {
			setCost(&m.Startup, suffix, value)
			continue
		}
		if kind, ok := stepParams[prefix]; ok {
			c := m.Steps[kind]
			setCost(&c, suffix, value)
			m.Steps[kind] = c
			continue
		}
		c, ok := m.Builtins[prefix]
		if !ok {
			c = m.Fallback
		}
		switch suffix {
		case "cpu-arguments", "cpu-arguments-intercept":
			c.CPU = value
		case "memory-arguments", "memory-arguments-intercept":
			c.Memory = value
		default:
			continue
		}
		if m.Builtins == nil {
			m.Builtins = make(map[string]Cost)
		}
		m.Builtins[prefix] = c
	}
}

func setCost(c *Cost, suffix string, value int64) {
	switch suffix {
	case "exBudgetCPU":
		c.CPU = value
	case "exBudgetMemory":
		c.Memory = value
	}
}

// Budget is an estimated execution budget
type Budget struct {
	CPU    int64 `yaml:"cpu"`
	Memory int64 `yaml:"memory"`
}

// MaxTxBudget is the per-transaction execution limit on mainnet
var MaxTxBudget = Budget{CPU: 10_000_000_000, Memory: 14_000_000}

func (b Budget) String() string {
	return fmt.Sprintf("cpu=%d mem=%d", b.CPU, b.Memory)
}

// Fits reports whether the budget is within limit
func (b Budget) Fits(limit Budget) bool {
	return b.CPU <= limit.CPU && b.Memory <= limit.Memory
}

// Estimate prices counts with a model
func Estimate(counts Counts, model *Model) Budget {
	ret := Budget{CPU: model.Startup.CPU, Memory: model.Startup.Memory}
	for kind, n := range counts.Steps {
		c := model.Steps[kind]
		ret.CPU += c.CPU * n
		ret.Memory += c.Memory * n
	}
	for name, n := range counts.Builtins {
		c, ok := model.Builtins[name]
		if !ok {
			c = model.Fallback
		}
		ret.CPU += c.CPU * n
		ret.Memory += c.Memory * n
	}
	return ret
}
