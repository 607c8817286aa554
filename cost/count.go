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

// Package cost estimates the execution budget of a script from static step
// and builtin counts. Builtin costs are flat per call and ignore argument
// sizes, so estimates are a lower bound for the typical execution path.
package cost

import (
	"github.com/blinklabs-io/uplcdec/uplc"
)

type StepKind string

const (
	StepConstant StepKind = "constant"
	StepVar      StepKind = "var"
	StepLambda   StepKind = "lambda"
	StepApply    StepKind = "apply"
	StepDelay    StepKind = "delay"
	StepForce    StepKind = "force"
	StepBuiltin  StepKind = "builtin"
	StepConstr   StepKind = "constr"
	StepCase     StepKind = "case"
)

// Counts holds machine step counts per term kind and call counts per
// builtin
type Counts struct {
	Steps    map[StepKind]int64 `yaml:"steps"`
	Builtins map[string]int64   `yaml:"builtins"`
}

// Count gathers the step and builtin counts of a term
func Count(t uplc.Term) Counts {
	ret := Counts{
		Steps:    make(map[StepKind]int64),
		Builtins: make(map[string]int64),
	}
	uplc.Inspect(t, func(t uplc.Term) bool {
		switch v := t.(type) {
		case *uplc.Constant:
			ret.Steps[StepConstant]++
		case *uplc.Var:
			ret.Steps[StepVar]++
		case *uplc.Lambda:
			ret.Steps[StepLambda]++
		case *uplc.Apply:
			ret.Steps[StepApply]++
		case *uplc.Delay:
			ret.Steps[StepDelay]++
		case *uplc.Force:
			ret.Steps[StepForce]++
		case *uplc.Builtin:
			ret.Steps[StepBuiltin]++
			ret.Builtins[v.Name]++
		case *uplc.Constr:
			ret.Steps[StepConstr]++
		case *uplc.Case:
			ret.Steps[StepCase]++
		}
		return true
	})
	return ret
}

// TotalSteps returns the number of machine steps
func (c Counts) TotalSteps() int64 {
	var ret int64
	for _, n := range c.Steps {
		ret += n
	}
	return ret
}
