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

// Package codegen turns a recognized contract structure into Aiken-flavoured
// source text.
package codegen

import (
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"

	"github.com/blinklabs-io/uplcdec/analysis"
	"github.com/blinklabs-io/uplcdec/ir"
)

const DefaultValidatorName = "decompiled"

type TypeKind string

const (
	TypeStruct TypeKind = "struct"
	TypeEnum   TypeKind = "enum"
)

// GeneratedCode is the formatting-ready form of a decompiled contract
type GeneratedCode struct {
	Imports    []string
	Parameters []analysis.ScriptParameter
	Types      []TypeDefinition
	Validator  ValidatorBlock
	// Notes are rendered as comments ahead of the validator
	Notes []string
}

type TypeDefinition struct {
	Name     string
	Kind     TypeKind
	Fields   []FieldDefinition
	Variants []VariantDefinition
}

type FieldDefinition struct {
	Name string
	Type string
}

type VariantDefinition struct {
	Name   string
	Fields []FieldDefinition
}

type ValidatorBlock struct {
	Name       string
	Parameters []string
	Handlers   []HandlerBlock
}

type HandlerBlock struct {
	Purpose string
	Params  []string
	Body    *CodeBlock
}

type generator struct {
	logger        *slog.Logger
	validatorName string
	bindingOpts   []BindingOptionFunc
	hints         []ir.Hint
}

type GenerateOptionFunc func(*generator)

// WithLogger specifies the logger object to use for logging messages
func WithLogger(logger *slog.Logger) GenerateOptionFunc {
	return func(g *generator) {
		g.logger = logger
	}
}

// WithValidatorName sets the name of the generated validator
func WithValidatorName(name string) GenerateOptionFunc {
	return func(g *generator) {
		g.validatorName = name
	}
}

// WithBindingOptions passes options to the binding environment
func WithBindingOptions(opts ...BindingOptionFunc) GenerateOptionFunc {
	return func(g *generator) {
		g.bindingOpts = append(g.bindingOpts, opts...)
	}
}

// WithHints adds IR optimization hints to the generated notes
func WithHints(hints []ir.Hint) GenerateOptionFunc {
	return func(g *generator) {
		g.hints = hints
	}
}

// Generate builds and formats the source for a contract structure
func Generate(cs *analysis.ContractStructure, opts ...GenerateOptionFunc) string {
	return Format(Build(cs, opts...))
}

// Build produces the generated code tree for a contract structure
func Build(cs *analysis.ContractStructure, opts ...GenerateOptionFunc) *GeneratedCode {
	g := &generator{
		logger:        slog.New(slog.NewJSONHandler(io.Discard, nil)),
		validatorName: DefaultValidatorName,
	}
	for _, opt := range opts {
		opt(g)
	}
	g.logger = g.logger.With("component", "codegen")
	return g.build(cs)
}

func (g *generator) build(cs *analysis.ContractStructure) *GeneratedCode {
	gc := &GeneratedCode{
		Parameters: cs.ScriptParams,
		Validator:  ValidatorBlock{Name: g.validatorName},
	}
	pinned := make([]string, 0, len(cs.ScriptParams))
	for _, p := range cs.ScriptParams {
		pinned = append(pinned, p.Name)
	}
	env := NewBindingEnvironment(
		cs.Full,
		append([]BindingOptionFunc{WithPinned(pinned...)}, g.bindingOpts...)...,
	)
	r := newRenderer(env)
	gc.Types = g.types(cs, r)
	handler := HandlerBlock{Purpose: handlerPurpose(cs.Purpose)}
	for _, p := range cs.Params {
		role := cs.Roles[p]
		if role == analysis.RoleParameter {
			gc.Validator.Parameters = append(gc.Validator.Parameters, p+": Data")
			continue
		}
		name, typ := g.roleParam(cs, role)
		r.renames[p] = name
		handler.Params = append(handler.Params, name+": "+typ)
		if role == analysis.RoleContext {
			r.use(importContext)
		}
	}
	l := newLowerer(r, cs.Redeemer.Variants)
	body := &CodeBlock{Kind: BlockBlock}
	scriptParams := make(map[string]bool, len(cs.ScriptParams))
	for _, p := range cs.ScriptParams {
		scriptParams[p.Name] = true
	}
	for _, o := range cs.Outer {
		if b, ok := env.Lookup(o.Name); ok && b.Kind != BindingKeep {
			continue
		}
		body.Children = append(body.Children, l.let(o.Name, o.Value))
	}
	if _, hasRedeemer := cs.ParamFor(analysis.RoleRedeemer); !hasRedeemer &&
		len(cs.Redeemer.Variants) > 0 {
		if ctx, ok := cs.ParamFor(analysis.RoleContext); ok {
			body.Children = append(body.Children, &CodeBlock{
				Kind:    BlockExpect,
				Content: "redeemer: Redeemer = " + r.name(ctx) + ".redeemer",
			})
		}
	}
	if cs.Body != nil {
		body.Children = append(body.Children, l.statements(cs.Body)...)
	} else {
		body.Children = append(body.Children, &CodeBlock{Kind: BlockExpression, Content: "fail"})
	}
	handler.Body = body
	gc.Validator.Handlers = []HandlerBlock{handler}
	gc.Notes = g.notes(cs)
	for imp := range r.imports {
		gc.Imports = append(gc.Imports, imp)
	}
	sort.Strings(gc.Imports)
	g.logger.Debug(
		"generated validator",
		"purpose", handler.Purpose,
		"types", len(gc.Types),
		"bindings", env.Len(),
	)
	return gc
}

func handlerPurpose(p analysis.Purpose) string {
	if p == analysis.PurposeUnknown || p == "" {
		return "else"
	}
	return string(p)
}

func (g *generator) roleParam(cs *analysis.ContractStructure, role analysis.Role) (string, string) {
	switch role {
	case analysis.RoleDatum:
		switch {
		case len(cs.Datum.Fields) == 0:
			return "datum", "Data"
		case cs.Datum.Optional:
			return "datum", "Option<Datum>"
		}
		return "datum", "Datum"
	case analysis.RoleRedeemer:
		if len(cs.Redeemer.Variants) > 0 || len(cs.Redeemer.Fields) > 0 {
			return "redeemer", "Redeemer"
		}
		return "redeemer", "Data"
	}
	return "ctx", "ScriptContext"
}

// types declares a Datum record when datum fields were found and a Redeemer
// enum or record when the redeemer has variants or fields
func (g *generator) types(cs *analysis.ContractStructure, r *renderer) []TypeDefinition {
	var ret []TypeDefinition
	if len(cs.Datum.Fields) > 0 {
		td := TypeDefinition{Name: "Datum", Kind: TypeStruct, Fields: fieldDefs(cs.Datum.Fields)}
		ret = append(ret, td)
		r.fields["datum"] = fieldNames(cs.Datum.Fields)
	}
	switch {
	case len(cs.Redeemer.Variants) > 0:
		td := TypeDefinition{Name: "Redeemer", Kind: TypeEnum}
		for _, v := range cs.Redeemer.Variants {
			td.Variants = append(td.Variants, VariantDefinition{
				Name:   v.Name,
				Fields: fieldDefs(v.Fields),
			})
		}
		ret = append(ret, td)
	case len(cs.Redeemer.Fields) > 0:
		ret = append(ret, TypeDefinition{
			Name:   "Redeemer",
			Kind:   TypeStruct,
			Fields: fieldDefs(cs.Redeemer.Fields),
		})
		r.fields["redeemer"] = fieldNames(cs.Redeemer.Fields)
	}
	return ret
}

func fieldDefs(fields []analysis.FieldInfo) []FieldDefinition {
	ret := make([]FieldDefinition, 0, len(fields))
	for _, f := range fields {
		ret = append(ret, FieldDefinition{Name: f.Name, Type: fieldType(f.Type)})
	}
	return ret
}

func fieldNames(fields []analysis.FieldInfo) map[int]string {
	ret := make(map[int]string, len(fields))
	for _, f := range fields {
		ret[f.Index] = f.Name
	}
	return ret
}

func fieldType(t analysis.FieldType) string {
	switch t {
	case analysis.FieldInteger:
		return "Int"
	case analysis.FieldByteString:
		return "ByteArray"
	case analysis.FieldList:
		return "List<Data>"
	case analysis.FieldMap:
		return "Pairs<Data, Data>"
	}
	return "Data"
}

func (g *generator) notes(cs *analysis.ContractStructure) []string {
	var ret []string
	if o := cs.PurposeOutcome; o.Status == analysis.StatusAmbiguous {
		note := fmt.Sprintf("purpose %s is a guess", cs.Purpose)
		if o.Reason != "" {
			note += " (" + o.Reason + ")"
		}
		alternatives := make([]string, 0, len(o.Candidates))
		for _, c := range o.Candidates {
			if c != cs.Purpose {
				alternatives = append(alternatives, string(c))
			}
		}
		if len(alternatives) > 0 {
			note += ", alternatives: " + strings.Join(alternatives, ", ")
		}
		ret = append(ret, note)
	}
	for _, c := range cs.Checks {
		ret = append(ret, "check "+string(c.Category)+": "+c.Description)
	}
	for _, h := range g.hints {
		ret = append(ret, fmt.Sprintf("%s candidate %s (%.2f)", h.Kind, h.Target, h.Confidence))
	}
	return ret
}

// scriptParamType returns the source type of a script parameter
func scriptParamType(p analysis.ScriptParameter) string {
	if p.Value == nil {
		return "Data"
	}
	return sourceType(p.Value.Type())
}

func scriptParamValue(p analysis.ScriptParameter) string {
	if p.Value == nil {
		return p.Text
	}
	return literal(p.Value)
}
