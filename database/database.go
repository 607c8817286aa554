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

// Package database persists decompilation results. Generated text lives in
// a blob store and per-result summaries in a metadata store, kept in step
// by a shared commit timestamp.
package database

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/blinklabs-io/uplcdec/database/plugin"
	"github.com/blinklabs-io/uplcdec/database/plugin/blob"
	"github.com/blinklabs-io/uplcdec/database/plugin/blob/badger"
	"github.com/blinklabs-io/uplcdec/database/plugin/metadata"
	"github.com/blinklabs-io/uplcdec/database/plugin/metadata/sqlite"
	"github.com/prometheus/client_golang/prometheus"
)

const DefaultMemoryCacheEntries = 256

// Config holds the settings for New. When BlobPlugin or MetadataPlugin is
// set, that store comes from the plugin registry, with DataDir applied as
// its data-dir option when non-empty. Otherwise the built-in badger and
// sqlite stores are opened in DataDir, or in memory when DataDir is empty.
type Config struct {
	PromRegistry   prometheus.Registerer
	Logger         *slog.Logger
	BlobPlugin     string
	MetadataPlugin string
	DataDir        string
	// MemoryCacheEntries sizes the in-memory tier. Negative disables it and
	// zero selects DefaultMemoryCacheEntries.
	MemoryCacheEntries int
}

type Database struct {
	logger   *slog.Logger
	blob     blob.BlobStore
	metadata metadata.MetadataStore
	memory   *EntryLRUCache
	metrics  *CacheMetrics
	dataDir  string
}

// New opens the blob and metadata stores described by config
func New(config *Config) (*Database, error) {
	if config == nil {
		config = &Config{}
	}
	logger := config.Logger
	if logger == nil {
		// Create logger to throw away logs
		// We do this so we don't have to add guards around every log operation
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	blobDb, err := openBlob(config, logger)
	if err != nil {
		return nil, fmt.Errorf("open blob store: %w", err)
	}
	metadataDb, err := openMetadata(config, logger)
	if err != nil {
		return nil, errors.Join(
			fmt.Errorf("open metadata store: %w", err),
			blobDb.Close(),
		)
	}
	cacheEntries := config.MemoryCacheEntries
	if cacheEntries == 0 {
		cacheEntries = DefaultMemoryCacheEntries
	}
	db := &Database{
		logger:   logger,
		blob:     blobDb,
		metadata: metadataDb,
		memory:   NewEntryLRUCache(cacheEntries),
		metrics:  &CacheMetrics{},
		dataDir:  config.DataDir,
	}
	db.metrics.Register(config.PromRegistry)
	if err := db.init(); err != nil {
		// Database is available for recovery, so return it with error
		return db, err
	}
	return db, nil
}

func openBlob(config *Config, logger *slog.Logger) (blob.BlobStore, error) {
	if config.BlobPlugin == "" {
		store, err := badger.New(
			badger.WithDataDir(config.DataDir),
			badger.WithLogger(logger),
			badger.WithPromRegistry(config.PromRegistry),
		)
		if err != nil {
			if store != nil {
				_ = store.Close()
			}
			return nil, err
		}
		return store, nil
	}
	if config.DataDir != "" {
		if err := plugin.SetPluginOption(
			plugin.PluginTypeBlob,
			config.BlobPlugin,
			"data-dir",
			config.DataDir,
		); err != nil {
			return nil, err
		}
	}
	return blob.New(config.BlobPlugin)
}

func openMetadata(config *Config, logger *slog.Logger) (metadata.MetadataStore, error) {
	if config.MetadataPlugin == "" {
		store, err := sqlite.New(config.DataDir, logger, config.PromRegistry)
		if err != nil {
			if store != nil {
				_ = store.Close()
			}
			return nil, err
		}
		return store, nil
	}
	if config.DataDir != "" {
		if err := plugin.SetPluginOption(
			plugin.PluginTypeMetadata,
			config.MetadataPlugin,
			"data-dir",
			config.DataDir,
		); err != nil {
			return nil, err
		}
	}
	return metadata.New(config.MetadataPlugin)
}

// Blob returns the underling blob store instance
func (d *Database) Blob() blob.BlobStore {
	return d.blob
}

// DataDir returns the path to the data directory used for storage
func (d *Database) DataDir() string {
	return d.dataDir
}

// Logger returns the logger instance
func (d *Database) Logger() *slog.Logger {
	return d.logger
}

// Metadata returns the underlying metadata store instance
func (d *Database) Metadata() metadata.MetadataStore {
	return d.metadata
}

// Metrics returns the cache counters
func (d *Database) Metrics() *CacheMetrics {
	return d.metrics
}

// Transaction starts a new database transaction and returns a handle to it
func (d *Database) Transaction(readWrite bool) *Txn {
	return NewTxn(d, readWrite)
}

// Close cleans up the database connections
func (d *Database) Close() error {
	var err error
	if d.metadata != nil {
		err = errors.Join(err, d.metadata.Close())
	}
	if d.blob != nil {
		err = errors.Join(err, d.blob.Close())
	}
	return err
}

func (d *Database) init() error {
	return d.checkCommitTimestamp()
}
