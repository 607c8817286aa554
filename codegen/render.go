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

package codegen

import (
	"encoding/hex"
	"strconv"
	"strings"

	"github.com/blinklabs-io/uplcdec/uplc"
)

// renderer turns terms into single line source expressions
type renderer struct {
	env     *BindingEnvironment
	renames map[string]string
	imports map[string]bool
	// fields names record fields by the rendered base and field index
	fields map[string]map[int]string
	// bound names redeemer fields bound by the enclosing when pattern
	bound map[int]string
}

func newRenderer(env *BindingEnvironment) *renderer {
	return &renderer{
		env:     env,
		renames: make(map[string]string),
		imports: make(map[string]bool),
		fields:  make(map[string]map[int]string),
	}
}

func (r *renderer) use(module string) {
	if module != "" {
		r.imports[module] = true
	}
}

func (r *renderer) name(n string) string {
	if renamed, ok := r.renames[n]; ok {
		return renamed
	}
	return n
}

// expr renders a term as an expression
func (r *renderer) expr(t uplc.Term) string {
	s, _ := r.exprPrec(t)
	return s
}

// operand renders a term for use next to an infix operator
func (r *renderer) operand(t uplc.Term) string {
	s, infix := r.exprPrec(t)
	if infix {
		return "(" + s + ")"
	}
	return s
}

// exprPrec renders a term and reports whether the result is an infix
// expression
func (r *renderer) exprPrec(t uplc.Term) (string, bool) {
	t = unwrap(t)
	if name, value, body, ok := uplc.AsLet(t); ok {
		b, found := r.env.Lookup(name)
		if found && b.Kind != BindingKeep {
			return r.exprPrec(body)
		}
		return "{ let " + name + " = " + r.expr(value) + " " + r.expr(body) + " }", false
	}
	switch v := t.(type) {
	case *uplc.Var:
		return r.variable(v.Name)
	case *uplc.Constant:
		return literal(v.Value), false
	case *uplc.Builtin:
		r.use(SurfaceImport(v.Name))
		return SurfaceName(v.Name), false
	case *uplc.Error:
		return "fail", false
	case *uplc.Lambda:
		params, body := lambdaParams(v)
		return "fn(" + strings.Join(params, ", ") + ") { " + r.expr(body) + " }", false
	case *uplc.Constr:
		args := make([]string, 0, len(v.Args))
		for _, a := range v.Args {
			args = append(args, r.expr(a))
		}
		ctor := "Constr" + strconv.FormatUint(v.Index, 10)
		if len(args) == 0 {
			return ctor, false
		}
		return call(ctor, args), false
	case *uplc.Case:
		arms := make([]string, 0, len(v.Branches))
		for i, b := range v.Branches {
			params, body := lambdaParams(b)
			arms = append(arms, casePattern(uint64(i), params)+" -> "+r.expr(body))
		}
		return "when " + r.expr(v.Scrutinee) + " is { " + strings.Join(arms, ", ") + " }", false
	case *uplc.Apply:
		return r.apply(v)
	}
	return "fail", false
}

func (r *renderer) variable(n string) (string, bool) {
	b, ok := r.env.Resolve(n)
	if !ok {
		return r.name(n), false
	}
	switch b.Kind {
	case BindingInline:
		if c, ok := unwrap(b.Value).(*uplc.Constant); ok {
			return literal(c.Value), false
		}
		return r.exprPrec(b.Value)
	case BindingAlias:
		return r.name(b.Target), false
	}
	return r.name(b.Name), false
}

func (r *renderer) apply(app *uplc.Apply) (string, bool) {
	if name, args, ok := uplc.SplitBuiltinApp(app); ok {
		return r.builtin(name, args)
	}
	head, args := uplc.SplitApply(app)
	rendered := make([]string, 0, len(args))
	for _, a := range args {
		rendered = append(rendered, r.expr(a))
	}
	h := r.expr(head)
	if _, ok := unwrap(head).(*uplc.Lambda); ok {
		h = "(" + h + ")"
	}
	return call(h, rendered), false
}

func (r *renderer) builtin(name string, args []uplc.Term) (string, bool) {
	info, known := uplc.LookupBuiltin(name)
	if known && info.Arity == len(args) {
		if s, ok := r.special(name, args); ok {
			return s, false
		}
		if isInfix(name) {
			return r.operand(args[0]) + " " + SurfaceName(name) + " " + r.operand(args[1]), true
		}
	}
	rendered := make([]string, 0, len(args))
	for _, a := range args {
		rendered = append(rendered, r.expr(a))
	}
	r.use(SurfaceImport(name))
	if known && info.Arity == len(args) {
		rendered = permute(rendered, surfaces[name].order)
	}
	return call(SurfaceName(name), rendered), false
}

// special renders builtins with a dedicated source form
func (r *renderer) special(name string, args []uplc.Term) (string, bool) {
	switch name {
	case "ifThenElse":
		if isBoolConst(args[1], true) && isBoolConst(args[2], false) {
			return r.expr(args[0]), true
		}
		return "if " + r.expr(args[0]) + " { " + r.expr(args[1]) + " } else { " + r.expr(args[2]) + " }", true
	case "chooseUnit":
		return r.expr(args[1]), true
	case "unIData", "unBData", "unListData", "unMapData":
		if s, ok := r.field(args[0]); ok {
			return s, true
		}
	case "headList":
		if s, ok := r.field(args[0]); ok {
			return s, true
		}
	}
	return "", false
}

// field renders a record field access
// headList(tailList^k(sndPair(unConstrData(x)))) as base.name. The argument
// is the operand of headList or of the unwrapping builtin.
func (r *renderer) field(t uplc.Term) (string, bool) {
	if args, ok := uplc.MatchBuiltin(t, "headList", 1); ok {
		t = args[0]
	}
	k := 0
	for {
		args, ok := uplc.MatchBuiltin(t, "tailList", 1)
		if !ok {
			break
		}
		k++
		t = args[0]
	}
	args, ok := uplc.MatchBuiltin(t, "sndPair", 1)
	if !ok {
		return "", false
	}
	args, ok = uplc.MatchBuiltin(args[0], "unConstrData", 1)
	if !ok {
		return "", false
	}
	v, ok := unwrap(args[0]).(*uplc.Var)
	if !ok {
		return "", false
	}
	base, _ := r.variable(v.Name)
	if base == "redeemer" && r.bound != nil {
		if n, ok := r.bound[k]; ok {
			return n, true
		}
	}
	names, ok := r.fields[base]
	if !ok {
		return "", false
	}
	n, ok := names[k]
	if !ok {
		return "", false
	}
	return base + "." + n, true
}

func isBoolConst(t uplc.Term, want bool) bool {
	c, ok := unwrap(t).(*uplc.Constant)
	if !ok {
		return false
	}
	b, ok := c.Value.(*uplc.Bool)
	return ok && b.Value == want
}

// lambdaParams collects the parameters of nested lambdas
func lambdaParams(t uplc.Term) ([]string, uplc.Term) {
	var params []string
	for {
		lam, ok := unwrap(t).(*uplc.Lambda)
		if !ok {
			return params, t
		}
		params = append(params, lam.Param)
		t = lam.Body
	}
}

func casePattern(index uint64, params []string) string {
	ctor := "Constr" + strconv.FormatUint(index, 10)
	if len(params) == 0 {
		return ctor
	}
	return call(ctor, params)
}

// literal renders a constant value
func literal(v uplc.Value) string {
	switch c := v.(type) {
	case *uplc.Integer:
		return c.Value.String()
	case *uplc.ByteString:
		return "#\"" + hex.EncodeToString(c.Value) + "\""
	case *uplc.String:
		return "@" + strconv.Quote(c.Value)
	case *uplc.Bool:
		if c.Value {
			return "True"
		}
		return "False"
	case *uplc.Unit:
		return "Void"
	case *uplc.List:
		items := make([]string, 0, len(c.Items))
		for _, item := range c.Items {
			items = append(items, literal(item))
		}
		return "[" + strings.Join(items, ", ") + "]"
	case *uplc.Pair:
		return "Pair(" + literal(c.Fst) + ", " + literal(c.Snd) + ")"
	case *uplc.DataValue:
		return dataLiteral(c.Value)
	}
	return "Void"
}

func dataLiteral(d uplc.Data) string {
	switch v := d.(type) {
	case *uplc.DataInteger:
		return v.Value.String()
	case *uplc.DataBytes:
		return "#\"" + hex.EncodeToString(v.Value) + "\""
	case *uplc.DataList:
		items := make([]string, 0, len(v.Items))
		for _, item := range v.Items {
			items = append(items, dataLiteral(item))
		}
		return "[" + strings.Join(items, ", ") + "]"
	case *uplc.DataMap:
		pairs := make([]string, 0, len(v.Pairs))
		for _, p := range v.Pairs {
			pairs = append(pairs, "Pair("+dataLiteral(p.Key)+", "+dataLiteral(p.Value)+")")
		}
		return "[" + strings.Join(pairs, ", ") + "]"
	case *uplc.DataConstr:
		fields := make([]string, 0, len(v.Fields))
		for _, f := range v.Fields {
			fields = append(fields, dataLiteral(f))
		}
		ctor := "Constr" + strconv.FormatUint(v.Tag, 10)
		if len(fields) == 0 {
			return ctor
		}
		return call(ctor, fields)
	}
	return "Void"
}

// sourceType returns the source type of a constant type
func sourceType(t uplc.Type) string {
	switch v := t.(type) {
	case *uplc.ListType:
		return "List<" + sourceType(v.Elem) + ">"
	case *uplc.PairType:
		return "Pair<" + sourceType(v.Fst) + ", " + sourceType(v.Snd) + ">"
	}
	switch t {
	case uplc.TypeInteger:
		return "Int"
	case uplc.TypeByteString:
		return "ByteArray"
	case uplc.TypeString:
		return "String"
	case uplc.TypeBool:
		return "Bool"
	case uplc.TypeUnit:
		return "Void"
	}
	return "Data"
}
