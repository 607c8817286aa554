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

package ir

import (
	"strconv"
	"strings"

	"github.com/blinklabs-io/uplcdec/uplc"
)

// binaryOps maps builtins with an infix operator form to that operator
var binaryOps = map[string]string{
	"addInteger":               "add",
	"subtractInteger":          "sub",
	"multiplyInteger":          "mul",
	"divideInteger":            "div",
	"quotientInteger":          "quot",
	"remainderInteger":         "rem",
	"modInteger":               "mod",
	"equalsInteger":            "eq",
	"lessThanInteger":          "lt",
	"lessThanEqualsInteger":    "le",
	"appendByteString":         "concat",
	"equalsByteString":         "eq",
	"lessThanByteString":       "lt",
	"lessThanEqualsByteString": "le",
	"appendString":             "concat",
	"equalsString":             "eq",
	"equalsData":               "eq",
}

// unaryOps maps single operand builtins with an operator form
var unaryOps = map[string]string{
	"lengthOfByteString":   "len",
	"encodeUtf8":           "encode_utf8",
	"decodeUtf8":           "decode_utf8",
	"serialiseData":        "serialise",
	"sha2_256":             "sha2_256",
	"sha3_256":             "sha3_256",
	"blake2b_224":          "blake2b_224",
	"blake2b_256":          "blake2b_256",
	"keccak_256":           "keccak_256",
	"complementByteString": "complement",
}

// BinaryOp returns the operator for a two operand builtin
func BinaryOp(builtin string) (string, bool) {
	op, ok := binaryOps[builtin]
	return op, ok
}

// FunctionName is the name of the function FromTerm produces
const FunctionName = "validator"

// FromTerm lowers a term to a module holding a single function. Leading
// lambdas become its parameters.
func FromTerm(term uplc.Term) *Module {
	fn := &Function{Name: FunctionName, ReturnType: unknownType}
	t := term
	for {
		lam, ok := t.(*uplc.Lambda)
		if !ok {
			break
		}
		fn.Params = append(fn.Params, &Param{Name: lam.Param, Type: unknownType})
		t = lam.Body
	}
	fn.Body = lowerBlock(t)
	m := &Module{Functions: []*Function{fn}}
	m.Imports = importsFor(term)
	return m
}

func importsFor(term uplc.Term) []string {
	var ret []string
	seen := make(map[string]bool)
	uplc.Inspect(term, func(t uplc.Term) bool {
		b, ok := t.(*uplc.Builtin)
		if !ok {
			return true
		}
		var mod string
		switch {
		case strings.HasPrefix(b.Name, "bls12_381_G1_"):
			mod = "bls12_381/g1"
		case strings.HasPrefix(b.Name, "bls12_381_G2_"):
			mod = "bls12_381/g2"
		case strings.HasPrefix(b.Name, "bls12_381_"):
			mod = "bls12_381"
		}
		if mod != "" && !seen[mod] {
			seen[mod] = true
			ret = append(ret, mod)
		}
		return true
	})
	return ret
}

// lowerBlock lowers a term in statement position: lets become statements,
// error becomes fail and anything else is returned
func lowerBlock(t uplc.Term) []Stmt {
	var stmts []Stmt
	for {
		t = uplc.StripDelay(uplc.StripForce(t))
		if name, value, body, ok := uplc.AsLet(t); ok {
			stmts = append(stmts, &LetStmt{Name: name, Value: lowerExpr(value)})
			t = body
			continue
		}
		if _, ok := t.(*uplc.Error); ok {
			return append(stmts, &FailStmt{})
		}
		if args, ok := uplc.MatchBuiltin(t, "trace", 2); ok {
			stmts = append(stmts, &ExprStmt{Expr: &CallExpr{
				Builtin: "trace",
				Args:    []Expr{lowerExpr(args[0])},
			}})
			t = args[1]
			continue
		}
		return append(stmts, &ReturnStmt{Value: lowerExpr(t)})
	}
}

func lowerExprs(terms []uplc.Term) []Expr {
	ret := make([]Expr, 0, len(terms))
	for _, t := range terms {
		ret = append(ret, lowerExpr(t))
	}
	return ret
}

func lowerExpr(t uplc.Term) Expr {
	switch v := t.(type) {
	case *uplc.Force:
		return lowerExpr(v.Term)
	case *uplc.Delay:
		return lowerExpr(v.Term)
	case *uplc.Var:
		return &Variable{Name: v.Name}
	case *uplc.Constant:
		return &Literal{Value: v.Value, Type: TypeOf(v.Value.Type())}
	case *uplc.Builtin:
		return &Variable{Name: v.Name}
	case *uplc.Error:
		return &CallExpr{Builtin: "error"}
	case *uplc.Lambda:
		lam := &LambdaExpr{}
		var body uplc.Term = v
		for {
			l, ok := body.(*uplc.Lambda)
			if !ok {
				break
			}
			lam.Params = append(lam.Params, &Param{Name: l.Param, Type: unknownType})
			body = l.Body
		}
		lam.Body = lowerBlock(body)
		return lam
	case *uplc.Constr:
		return &ConstructorExpr{Index: v.Index, Args: lowerExprs(v.Args)}
	case *uplc.Case:
		when := &WhenExpr{Subject: lowerExpr(v.Scrutinee)}
		for i, b := range v.Branches {
			when.Branches = append(when.Branches, &Branch{
				Pattern: strconv.Itoa(i),
				Body:    lowerBlock(b),
			})
		}
		return when
	case *uplc.Apply:
		return lowerApply(v)
	}
	return &CallExpr{Builtin: "error"}
}

func lowerApply(app *uplc.Apply) Expr {
	if name, args, ok := uplc.SplitBuiltinApp(app); ok {
		if name == "ifThenElse" && len(args) == 3 {
			return &WhenExpr{
				Subject: lowerExpr(args[0]),
				Branches: []*Branch{
					{Pattern: "True", Body: lowerBlock(args[1])},
					{Pattern: "False", Body: lowerBlock(args[2])},
				},
			}
		}
		if op, ok := binaryOps[name]; ok && len(args) == 2 {
			return &BinaryExpr{
				Op:      op,
				Builtin: name,
				Left:    lowerExpr(args[0]),
				Right:   lowerExpr(args[1]),
			}
		}
		if op, ok := unaryOps[name]; ok && len(args) == 1 {
			return &UnaryExpr{Op: op, Builtin: name, Operand: lowerExpr(args[0])}
		}
		return &CallExpr{Builtin: name, Args: lowerExprs(args)}
	}
	head, args := uplc.SplitApply(app)
	return &CallExpr{Func: lowerExpr(head), Args: lowerExprs(args)}
}
