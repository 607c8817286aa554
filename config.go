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

package uplcdec

import (
	"io"
	"log/slog"
	"time"

	"github.com/blinklabs-io/uplcdec/cost"
	"github.com/blinklabs-io/uplcdec/database"
	"github.com/blinklabs-io/uplcdec/event"
	"github.com/blinklabs-io/uplcdec/ir"
	"github.com/blinklabs-io/uplcdec/script"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	DefaultValidatorName   = "decompiled"
	DefaultShutdownTimeout = 30 * time.Second
)

type Config struct {
	promRegistry    prometheus.Registerer
	logger          *slog.Logger
	database        *database.Database
	eventBus        *event.EventBus
	costSource      cost.ParamSource
	dataDir         string
	blobPlugin      string
	metadataPlugin  string
	validatorName   string
	optimize        ir.Options
	epoch           uint64
	inlineLimit     int
	cacheEntries    int
	shutdownTimeout time.Duration
	language        script.Language
	cache           bool
	strict          bool
	tracing         bool
	tracingStdout   bool
}

// ConfigOptionFunc is a type that represents functions that modify the decompiler config
type ConfigOptionFunc func(*Config)

// NewConfig creates a new decompiler config with the specified options
func NewConfig(opts ...ConfigOptionFunc) Config {
	c := Config{
		// Default logger will throw away logs
		// We do this so we don't have to add guards around every log operation
		logger:          slog.New(slog.NewJSONHandler(io.Discard, nil)),
		validatorName:   DefaultValidatorName,
		optimize:        ir.DefaultOptions(),
		language:        script.LanguagePlutusV3,
		shutdownTimeout: DefaultShutdownTimeout,
	}
	// Apply options
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// WithLogger specifies the logger object to use for logging messages
func WithLogger(logger *slog.Logger) ConfigOptionFunc {
	return func(c *Config) {
		c.logger = logger
	}
}

// WithPromRegistry specifies the prometheus registry to use for metrics
func WithPromRegistry(
	registry prometheus.Registerer,
) ConfigOptionFunc {
	return func(c *Config) {
		c.promRegistry = registry
	}
}

// WithDatabase specifies an already opened database to use as the result cache. The caller remains responsible
// for closing it. This implies WithCache(true)
func WithDatabase(db *database.Database) ConfigOptionFunc {
	return func(c *Config) {
		c.database = db
		c.cache = true
	}
}

// WithEventBus specifies an event bus to publish decompile events to
func WithEventBus(bus *event.EventBus) ConfigOptionFunc {
	return func(c *Config) {
		c.eventBus = bus
	}
}

// WithCache enables the result cache. Without WithDatabase or WithDatabasePath the cache is kept in memory
func WithCache(cache bool) ConfigOptionFunc {
	return func(c *Config) {
		c.cache = cache
	}
}

// WithDatabasePath specifies the persistent data directory to use for the result cache. This implies WithCache(true)
func WithDatabasePath(dataDir string) ConfigOptionFunc {
	return func(c *Config) {
		c.dataDir = dataDir
		c.cache = true
	}
}

// WithBlobPlugin specifies the blob storage plugin to use.
func WithBlobPlugin(plugin string) ConfigOptionFunc {
	return func(c *Config) {
		c.blobPlugin = plugin
	}
}

// WithMetadataPlugin specifies the metadata storage plugin to use.
func WithMetadataPlugin(plugin string) ConfigOptionFunc {
	return func(c *Config) {
		c.metadataPlugin = plugin
	}
}

// WithCacheEntries specifies the number of results held in memory in front of the database
func WithCacheEntries(entries int) ConfigOptionFunc {
	return func(c *Config) {
		c.cacheEntries = entries
	}
}

// WithValidatorName specifies the name given to the generated validator
func WithValidatorName(name string) ConfigOptionFunc {
	return func(c *Config) {
		c.validatorName = name
	}
}

// WithLanguage specifies the Plutus language version assumed for binary scripts. The default is PlutusV3
func WithLanguage(lang script.Language) ConfigOptionFunc {
	return func(c *Config) {
		c.language = lang
	}
}

// WithStrictConversion makes unrecognized decoded nodes fail the decompilation
func WithStrictConversion(strict bool) ConfigOptionFunc {
	return func(c *Config) {
		c.strict = strict
	}
}

// WithOptimizeOptions specifies the IR optimization passes to run
func WithOptimizeOptions(opts ir.Options) ConfigOptionFunc {
	return func(c *Config) {
		c.optimize = opts
	}
}

// WithInlineLimit specifies how many references a folded expression may have and still be inlined
func WithInlineLimit(limit int) ConfigOptionFunc {
	return func(c *Config) {
		c.inlineLimit = limit
	}
}

// WithCostSource specifies where cost models for budget estimates come from. The default is the built-in model
func WithCostSource(source cost.ParamSource) ConfigOptionFunc {
	return func(c *Config) {
		c.costSource = source
	}
}

// WithEpoch specifies the epoch whose cost model is used for budget estimates
func WithEpoch(epoch uint64) ConfigOptionFunc {
	return func(c *Config) {
		c.epoch = epoch
	}
}

// WithTracing enables tracing. By default, spans are submitted to a HTTP(s) endpoint using OTLP. This can be configured
// using the OTEL_EXPORTER_OTLP_* env vars documented in the README for [go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp]
func WithTracing(tracing bool) ConfigOptionFunc {
	return func(c *Config) {
		c.tracing = tracing
	}
}

// WithTracingStdout enables tracing output to stdout. This also requires tracing to enabled separately. This is mostly useful for debugging
func WithTracingStdout(stdout bool) ConfigOptionFunc {
	return func(c *Config) {
		c.tracingStdout = stdout
	}
}

// WithShutdownTimeout specifies the timeout for flushing traces on close. The default is 30 seconds
func WithShutdownTimeout(timeout time.Duration) ConfigOptionFunc {
	return func(c *Config) {
		c.shutdownTimeout = timeout
	}
}
