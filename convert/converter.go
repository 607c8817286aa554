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

package convert

import (
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"sync/atomic"

	"github.com/blinklabs-io/uplcdec/uplc"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ConversionError is returned in strict mode when a node cannot be converted
type ConversionError struct {
	Kind    string
	Message string
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("cannot convert %s node: %s", e.Kind, e.Message)
}

// Diagnostics counts problems seen across all conversions
type Diagnostics struct {
	Unrecognized uint64
	Unbound      uint64
}

type Converter struct {
	logger       *slog.Logger
	promRegistry prometheus.Registerer
	metrics      *Metrics
	strict       bool
	unrecognized atomic.Uint64
	unbound      atomic.Uint64
}

// Metrics holds the conversion counters. One Metrics value may be shared by
// many converters so the counters are registered only once.
type Metrics struct {
	unrecognized prometheus.Counter
	unbound      prometheus.Counter
}

// NewMetrics registers the conversion counters. It returns nil when
// promRegistry is nil.
func NewMetrics(promRegistry prometheus.Registerer) *Metrics {
	if promRegistry == nil {
		return nil
	}
	factory := promauto.With(promRegistry)
	return &Metrics{
		unrecognized: factory.NewCounter(prometheus.CounterOpts{
			Name: "uplcdec_convert_unrecognized_nodes_total",
			Help: "Total number of decoded nodes that could not be converted",
		}),
		unbound: factory.NewCounter(prometheus.CounterOpts{
			Name: "uplcdec_convert_unbound_variables_total",
			Help: "Total number of de Bruijn indexes with no enclosing binder",
		}),
	}
}

func (m *Metrics) addUnrecognized() {
	if m == nil {
		return
	}
	m.unrecognized.Inc()
}

func (m *Metrics) addUnbound() {
	if m == nil {
		return
	}
	m.unbound.Inc()
}

type ConverterOptionFunc func(*Converter)

// WithLogger specifies the logger object to use for logging messages
func WithLogger(logger *slog.Logger) ConverterOptionFunc {
	return func(c *Converter) {
		c.logger = logger
	}
}

// WithPromRegistry specifies the prometheus registry to use for metrics
func WithPromRegistry(registry prometheus.Registerer) ConverterOptionFunc {
	return func(c *Converter) {
		c.promRegistry = registry
	}
}

// WithMetrics specifies counters shared with other converters. It takes
// precedence over WithPromRegistry.
func WithMetrics(metrics *Metrics) ConverterOptionFunc {
	return func(c *Converter) {
		c.metrics = metrics
	}
}

// WithStrict makes unrecognized nodes fail the conversion instead of
// becoming error terms
func WithStrict(strict bool) ConverterOptionFunc {
	return func(c *Converter) {
		c.strict = strict
	}
}

// New returns a converter. A Converter is safe for concurrent use.
func New(opts ...ConverterOptionFunc) *Converter {
	c := &Converter{}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	if c.metrics == nil {
		c.metrics = NewMetrics(c.promRegistry)
	}
	return c
}

// Diagnostics returns cumulative conversion problem counts
func (c *Converter) Diagnostics() Diagnostics {
	return Diagnostics{
		Unrecognized: c.unrecognized.Load(),
		Unbound:      c.unbound.Load(),
	}
}

// Convert converts a decoded node tree into a named term
func (c *Converter) Convert(node Node) (uplc.Term, error) {
	state := &conversion{conv: c}
	return state.convert(node)
}

// ConvertProgram converts a decoded program body and attaches the version
func (c *Converter) ConvertProgram(version [3]uint, node Node) (*uplc.Program, error) {
	term, err := c.Convert(node)
	if err != nil {
		return nil, err
	}
	return &uplc.Program{Version: version, Term: term}, nil
}

// conversion holds the state of a single Convert call
type conversion struct {
	conv *Converter
	// names is the binder stack, innermost last
	names []string
	// counter generates names unique across the whole program
	counter int
}

// GenerateName returns the n-th generated variable name: a..z, then
// a1..z1, a2..z2 and so on
func GenerateName(n int) string {
	letter := string(rune('a' + n%26))
	if round := n / 26; round > 0 {
		return letter + strconv.Itoa(round)
	}
	return letter
}

func (s *conversion) fresh() string {
	name := GenerateName(s.counter)
	s.counter++
	return name
}

func (s *conversion) unrecognized(kind string, format string, args ...any) (uplc.Term, error) {
	msg := fmt.Sprintf(format, args...)
	if s.conv.strict {
		return nil, &ConversionError{Kind: kind, Message: msg}
	}
	s.conv.unrecognized.Add(1)
	s.conv.metrics.addUnrecognized()
	s.conv.logger.Warn(
		"replacing unrecognized node with error term",
		"component", "convert",
		"kind", kind,
		"reason", msg,
	)
	return &uplc.Error{}, nil
}

func (s *conversion) convertAll(nodes []Node) ([]uplc.Term, error) {
	ret := make([]uplc.Term, 0, len(nodes))
	for _, n := range nodes {
		t, err := s.convert(n)
		if err != nil {
			return nil, err
		}
		ret = append(ret, t)
	}
	return ret, nil
}

func (s *conversion) convert(node Node) (uplc.Term, error) {
	switch n := node.(type) {
	case *Apply:
		fn, err := s.convert(n.Func)
		if err != nil {
			return nil, err
		}
		arg, err := s.convert(n.Arg)
		if err != nil {
			return nil, err
		}
		return &uplc.Apply{Func: fn, Arg: arg}, nil
	case *Lambda:
		name := s.fresh()
		s.names = append(s.names, name)
		body, err := s.convert(n.Body)
		s.names = s.names[:len(s.names)-1]
		if err != nil {
			return nil, err
		}
		return &uplc.Lambda{Param: name, Body: body}, nil
	case *Var:
		if n.Index < 1 || n.Index > len(s.names) {
			s.conv.unbound.Add(1)
			s.conv.metrics.addUnbound()
			s.conv.logger.Debug(
				"unbound de Bruijn index",
				"component", "convert",
				"index", n.Index,
				"depth", len(s.names),
			)
			return &uplc.Var{Name: "?" + strconv.Itoa(n.Index)}, nil
		}
		return &uplc.Var{Name: s.names[len(s.names)-n.Index]}, nil
	case *Constant:
		value, err := normalizeValue(n.Type, n.Payload)
		if err != nil {
			return s.unrecognized("constant", "%s", err)
		}
		return &uplc.Constant{Value: value}, nil
	case *Builtin:
		name, ok := builtinName(n)
		if !ok {
			return s.unrecognized("builtin", "unknown builtin tag %d name %q", n.Tag, n.Name)
		}
		return &uplc.Builtin{Name: name}, nil
	case *Force:
		inner, err := s.convert(n.Term)
		if err != nil {
			return nil, err
		}
		return &uplc.Force{Term: inner}, nil
	case *Delay:
		inner, err := s.convert(n.Term)
		if err != nil {
			return nil, err
		}
		return &uplc.Delay{Term: inner}, nil
	case *Error:
		return &uplc.Error{}, nil
	case *Case:
		scrutinee, err := s.convert(n.Scrutinee)
		if err != nil {
			return nil, err
		}
		branches, err := s.convertAll(n.Branches)
		if err != nil {
			return nil, err
		}
		return &uplc.Case{Scrutinee: scrutinee, Branches: branches}, nil
	case *Constr:
		args, err := s.convertAll(n.Fields)
		if err != nil {
			return nil, err
		}
		return &uplc.Constr{Index: n.Tag, Args: args}, nil
	case *Opaque:
		return s.unrecognized(n.Kind, "unsupported decoded value %T", n.Value)
	case nil:
		return s.unrecognized("nil", "missing node")
	default:
		return s.unrecognized(fmt.Sprintf("%T", node), "unsupported node type")
	}
}
