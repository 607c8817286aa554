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

// Package uplcdec turns compiled Plutus scripts back into readable source.
// A Decompiler runs the full pipeline (decode, analyze, lower to IR,
// optimize, generate) and can cache its results in a database.
package uplcdec

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/blinklabs-io/uplcdec/analysis"
	"github.com/blinklabs-io/uplcdec/codegen"
	"github.com/blinklabs-io/uplcdec/convert"
	"github.com/blinklabs-io/uplcdec/cost"
	"github.com/blinklabs-io/uplcdec/database"
	"github.com/blinklabs-io/uplcdec/database/models"
	"github.com/blinklabs-io/uplcdec/database/types"
	"github.com/blinklabs-io/uplcdec/event"
	"github.com/blinklabs-io/uplcdec/ir"
	"github.com/blinklabs-io/uplcdec/script"
	"github.com/blinklabs-io/uplcdec/syntax"
	"github.com/blinklabs-io/uplcdec/uplc"
	"golang.org/x/crypto/blake2b"
	"gopkg.in/yaml.v3"
)

const (
	inputText   = "text"
	inputScript = "script"
)

// Result is the outcome of decompiling one input
type Result struct {
	// Key is the hex cache key of the input
	Key string
	// Hash is the script hash, empty for text input
	Hash      string
	Source    string
	IR        string
	Structure *analysis.ContractStructure
	// Module is the optimized IR. It is nil for cached results.
	Module       *ir.Module
	Budget       cost.Budget
	Unrecognized uint64
	// Unbound counts de Bruijn indexes with no enclosing binder
	Unbound uint64
	Cached  bool
}

type Decompiler struct {
	config        Config
	db            *database.Database
	metrics       *decompilerMetrics
	convMetrics   *convert.Metrics
	shutdownFuncs []func(context.Context) error
	// fingerprint is mixed into cache keys and covers the settings that
	// change the generated output
	fingerprint []byte
	closeOnce   sync.Once
	closeErr    error
	ownsDB      bool
}

// StageError reports the pipeline stage that failed
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return e.Stage + ": " + e.Err.Error()
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// request is one input on its way through the pipeline
type request struct {
	kind     string
	keyBytes []byte
	language script.Language
	decode   func() (*uplc.Program, string, convert.Diagnostics, error)
}

// New creates a decompiler from the given config
func New(cfg Config) (*Decompiler, error) {
	if cfg.logger == nil {
		cfg.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	if cfg.costSource == nil {
		cfg.costSource = cost.StaticSource{}
	}
	if cfg.validatorName == "" {
		cfg.validatorName = DefaultValidatorName
	}
	if cfg.shutdownTimeout <= 0 {
		cfg.shutdownTimeout = DefaultShutdownTimeout
	}
	d := &Decompiler{
		config:      cfg,
		metrics:     newDecompilerMetrics(cfg.promRegistry),
		convMetrics: convert.NewMetrics(cfg.promRegistry),
		fingerprint: fmt.Appendf(
			nil,
			"%s|%+v|%d|%d|%t",
			cfg.validatorName,
			cfg.optimize,
			cfg.inlineLimit,
			cfg.epoch,
			cfg.strict,
		),
	}
	if cfg.tracing {
		if err := d.setupTracing(); err != nil {
			return nil, err
		}
	}
	if cfg.cache {
		if err := d.openDatabase(); err != nil {
			return nil, errors.Join(err, d.Close())
		}
	}
	return d, nil
}

func (d *Decompiler) openDatabase() error {
	if d.config.database != nil {
		d.db = d.config.database
		return nil
	}
	db, err := database.New(&database.Config{
		PromRegistry:       d.config.promRegistry,
		Logger:             d.config.logger,
		BlobPlugin:         d.config.blobPlugin,
		MetadataPlugin:     d.config.metadataPlugin,
		DataDir:            d.config.dataDir,
		MemoryCacheEntries: d.config.cacheEntries,
	})
	if err != nil {
		if db != nil {
			return errors.Join(
				fmt.Errorf("open database: %w", err),
				db.Close(),
			)
		}
		return fmt.Errorf("open database: %w", err)
	}
	d.db = db
	d.ownsDB = true
	return nil
}

// Database returns the cache database, or nil when caching is disabled
func (d *Decompiler) Database() *database.Database {
	return d.db
}

// Close flushes traces and closes the database if the decompiler opened it
func (d *Decompiler) Close() error {
	d.closeOnce.Do(func() {
		ctx, cancel := context.WithTimeout(
			context.Background(),
			d.config.shutdownTimeout,
		)
		defer cancel()
		var errs []error
		for _, fn := range d.shutdownFuncs {
			if err := fn(ctx); err != nil {
				errs = append(errs, err)
			}
		}
		if d.ownsDB && d.db != nil {
			if err := d.db.Close(); err != nil {
				errs = append(errs, err)
			}
		}
		d.closeErr = errors.Join(errs...)
	})
	return d.closeErr
}

// DecompileText decompiles a program in UPLC text syntax
func (d *Decompiler) DecompileText(
	ctx context.Context,
	text string,
) (*Result, error) {
	d.metrics.request(inputText)
	return d.decompile(ctx, &request{
		kind:     inputText,
		keyBytes: append([]byte{0}, text...),
		decode: func() (*uplc.Program, string, convert.Diagnostics, error) {
			prog, err := syntax.Parse(text)
			return prog, "", convert.Diagnostics{}, err
		},
	})
}

// DecompileScript decompiles serialized script bytes, either flat or
// wrapped in CBOR bytestrings
func (d *Decompiler) DecompileScript(
	ctx context.Context,
	raw []byte,
) (*Result, error) {
	d.metrics.request(inputScript)
	return d.decompileScript(ctx, raw)
}

// DecompileHex is DecompileScript for hex text
func (d *Decompiler) DecompileHex(
	ctx context.Context,
	text string,
) (*Result, error) {
	d.metrics.request(inputScript)
	raw, err := hex.DecodeString(strings.TrimSpace(text))
	if err != nil {
		d.metrics.failure(stageDecode)
		err = &StageError{
			Stage: stageDecode,
			Err:   fmt.Errorf("decode script hex: %w", err),
		}
		d.publish("", nil, err, 0)
		return nil, err
	}
	return d.decompileScript(ctx, raw)
}

func (d *Decompiler) decompileScript(
	ctx context.Context,
	raw []byte,
) (*Result, error) {
	lang := d.config.language
	return d.decompile(ctx, &request{
		kind:     inputScript,
		keyBytes: append([]byte{byte(lang)}, raw...),
		language: lang,
		decode: func() (*uplc.Program, string, convert.Diagnostics, error) {
			// A converter per request keeps its diagnostics per request
			conv := convert.New(
				convert.WithLogger(d.config.logger),
				convert.WithStrict(d.config.strict),
				convert.WithMetrics(d.convMetrics),
			)
			s, err := script.Decode(raw, lang, conv)
			if err != nil {
				return nil, "", convert.Diagnostics{}, err
			}
			return s.Program, s.Hash, conv.Diagnostics(), nil
		},
	})
}

func (d *Decompiler) decompile(
	ctx context.Context,
	req *request,
) (*Result, error) {
	var key [blake2b.Size256]byte
	h, _ := blake2b.New256(nil)
	h.Write(req.keyBytes)
	h.Write(d.fingerprint)
	h.Sum(key[:0])
	start := time.Now()
	res, err := d.run(ctx, req, key[:])
	d.publish(hex.EncodeToString(key[:]), res, err, time.Since(start))
	return res, err
}

func (d *Decompiler) run(
	ctx context.Context,
	req *request,
	key []byte,
) (*Result, error) {
	if d.db != nil {
		res, err := d.lookup(ctx, key)
		if err == nil {
			d.metrics.cacheHit()
			return res, nil
		}
		if !errors.Is(err, types.ErrDecompilationNotFound) {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			d.config.logger.Warn(
				fmt.Sprintf("cache lookup failed: %s", err),
				"component", "decompiler",
			)
		}
	}
	start := time.Now()
	res := &Result{Key: hex.EncodeToString(key)}
	var prog *uplc.Program
	err := d.stage(ctx, stageDecode, func(context.Context) error {
		var (
			diag convert.Diagnostics
			err  error
		)
		prog, res.Hash, diag, err = req.decode()
		res.Unrecognized = diag.Unrecognized
		res.Unbound = diag.Unbound
		return err
	})
	if err != nil {
		return nil, err
	}
	err = d.stage(ctx, stageAnalyze, func(context.Context) error {
		res.Structure = analysis.Analyze(prog.Term)
		return nil
	})
	if err != nil {
		return nil, err
	}
	err = d.stage(ctx, stageIR, func(context.Context) error {
		res.Module = ir.Optimize(ir.FromTerm(prog.Term), d.config.optimize)
		res.IR = ir.Format(res.Module)
		return nil
	})
	if err != nil {
		return nil, err
	}
	err = d.stage(ctx, stageGenerate, func(context.Context) error {
		var bindingOpts []codegen.BindingOptionFunc
		if d.config.inlineLimit > 0 {
			bindingOpts = append(
				bindingOpts,
				codegen.WithInlineLimit(d.config.inlineLimit),
			)
		}
		res.Source = codegen.Generate(
			res.Structure,
			codegen.WithLogger(d.config.logger),
			codegen.WithValidatorName(d.config.validatorName),
			codegen.WithBindingOptions(bindingOpts...),
			codegen.WithHints(res.Module.Hints),
		)
		return nil
	})
	if err != nil {
		return nil, err
	}
	err = d.stage(ctx, stageCost, func(ctx context.Context) error {
		model, err := d.config.costSource.CostModel(ctx, d.config.epoch)
		if err != nil {
			return err
		}
		res.Budget = cost.Estimate(cost.Count(prog.Term), model)
		return nil
	})
	if err != nil {
		return nil, err
	}
	d.metrics.observe(start)
	d.config.logger.Debug(
		"decompiled input",
		"component", "decompiler",
		"input", req.kind,
		"hash", res.Hash,
		"purpose", string(res.Structure.Purpose),
		"unrecognized", res.Unrecognized,
		"unbound", res.Unbound,
		"duration", time.Since(start).String(),
	)
	if d.db != nil {
		err = d.stage(ctx, stageStore, func(context.Context) error {
			return d.store(key, req, res)
		})
		if err != nil {
			// The result is still good without a cache entry
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			d.config.logger.Warn(
				fmt.Sprintf("failed to cache result: %s", err),
				"component", "decompiler",
			)
		}
	}
	return res, nil
}

func (d *Decompiler) publish(
	key string,
	res *Result,
	err error,
	duration time.Duration,
) {
	bus := d.config.eventBus
	if bus == nil {
		return
	}
	evt := event.DecompileEvent{
		Key:      key,
		Duration: duration,
	}
	if err != nil {
		evt.Err = err
		var stageErr *StageError
		if errors.As(err, &stageErr) {
			evt.Stage = stageErr.Stage
		}
		bus.Publish(
			event.DecompileFailedEventType,
			event.NewEvent(event.DecompileFailedEventType, evt),
		)
		return
	}
	evt.Hash = res.Hash
	evt.Purpose = string(res.Structure.Purpose)
	evt.Cached = res.Cached
	bus.Publish(
		event.DecompileCompletedEventType,
		event.NewEvent(event.DecompileCompletedEventType, evt),
	)
}

func (d *Decompiler) lookup(ctx context.Context, key []byte) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	_, span := d.tracer().Start(ctx, "uplcdec."+stageLookup)
	defer span.End()
	entry, err := d.db.GetDecompilation(key)
	if err != nil {
		if !errors.Is(err, types.ErrDecompilationNotFound) {
			span.RecordError(err)
			d.metrics.failure(stageLookup)
		}
		return nil, err
	}
	cs := &analysis.ContractStructure{}
	if len(entry.Structure) > 0 {
		if err := yaml.Unmarshal(entry.Structure, cs); err != nil {
			d.metrics.failure(stageLookup)
			return nil, fmt.Errorf("decode cached structure: %w", err)
		}
	}
	return &Result{
		Key:       hex.EncodeToString(key),
		Hash:      hex.EncodeToString(entry.Summary.ScriptHash),
		Source:    string(entry.Source),
		IR:        string(entry.IR),
		Structure: cs,
		Budget: cost.Budget{
			CPU:    entry.Summary.BudgetCPU,
			Memory: entry.Summary.BudgetMemory,
		},
		Unrecognized: uint64(entry.Summary.Unrecognized),
		Unbound:      uint64(entry.Summary.Unbound),
		Cached:       true,
	}, nil
}

func (d *Decompiler) store(key []byte, req *request, res *Result) error {
	structure, err := yaml.Marshal(res.Structure)
	if err != nil {
		return fmt.Errorf("encode structure: %w", err)
	}
	var scriptHash []byte
	if res.Hash != "" {
		scriptHash, err = hex.DecodeString(res.Hash)
		if err != nil {
			return fmt.Errorf("decode script hash: %w", err)
		}
	}
	cs := res.Structure
	return d.db.PutDecompilation(&database.Entry{
		Summary: models.Decompilation{
			CacheKey:      key,
			ScriptHash:    scriptHash,
			Purpose:       string(cs.Purpose),
			PurposeStatus: cs.PurposeOutcome.Status.String(),
			Validator:     d.config.validatorName,
			BudgetCPU:     res.Budget.CPU,
			BudgetMemory:  res.Budget.Memory,
			Params:        len(cs.Params),
			Variants:      len(cs.Redeemer.Variants),
			Checks:        len(cs.Checks),
			Unrecognized:  int(res.Unrecognized),
			Unbound:       int(res.Unbound),
			Language:      uint8(req.language),
		},
		Source:    []byte(res.Source),
		IR:        []byte(res.IR),
		Structure: structure,
	})
}
