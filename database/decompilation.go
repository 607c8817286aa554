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

package database

import (
	"errors"
	"fmt"

	"github.com/blinklabs-io/uplcdec/database/models"
	"github.com/blinklabs-io/uplcdec/database/types"
)

// Entry is one cached decompilation
type Entry struct {
	Summary models.Decompilation
	Source  []byte
	IR      []byte
	// Structure is an opaque encoded summary of the recognized contract
	Structure []byte
}

func cacheKey(key []byte) ([32]byte, error) {
	var ret [32]byte
	if len(key) != len(ret) {
		return ret, fmt.Errorf("invalid cache key length %d", len(key))
	}
	copy(ret[:], key)
	return ret, nil
}

// GetDecompilation returns the entry stored under a blake2b-256 cache key,
// or types.ErrDecompilationNotFound
func (d *Database) GetDecompilation(key []byte) (*Entry, error) {
	memKey, err := cacheKey(key)
	if err != nil {
		return nil, err
	}
	if entry, ok := d.memory.Get(memKey); ok {
		d.metrics.incMemoryHit()
		return entry, nil
	}
	txn := d.Transaction(false)
	defer txn.Release()
	summary, err := d.Metadata().GetDecompilation(key, txn.Metadata())
	if err != nil {
		if errors.Is(err, types.ErrDecompilationNotFound) {
			d.metrics.incMiss()
		}
		return nil, err
	}
	entry := &Entry{Summary: *summary}
	entry.Source, err = d.Blob().Get(txn.Blob(), types.SourceBlobKey(key))
	if err != nil {
		if errors.Is(err, types.ErrBlobKeyNotFound) {
			// A summary without its source is treated as absent
			d.metrics.incMiss()
			return nil, types.ErrDecompilationNotFound
		}
		return nil, err
	}
	for _, opt := range []struct {
		key  []byte
		dest *[]byte
	}{
		{types.IRBlobKey(key), &entry.IR},
		{types.StructureBlobKey(key), &entry.Structure},
	} {
		val, err := d.Blob().Get(txn.Blob(), opt.key)
		if err != nil && !errors.Is(err, types.ErrBlobKeyNotFound) {
			return nil, err
		}
		*opt.dest = val
	}
	d.metrics.incStoreHit()
	d.memory.Put(memKey, entry)
	return entry, nil
}

// PutDecompilation stores an entry under its summary's cache key,
// replacing any previous entry
func (d *Database) PutDecompilation(entry *Entry) error {
	key := entry.Summary.CacheKey
	memKey, err := cacheKey(key)
	if err != nil {
		return err
	}
	entry.Summary.SourceSize = types.Uint64(len(entry.Source))
	txn := d.Transaction(true)
	err = txn.Do(func(txn *Txn) error {
		if err := d.Blob().Set(txn.Blob(), types.SourceBlobKey(key), entry.Source); err != nil {
			return err
		}
		if entry.IR != nil {
			if err := d.Blob().Set(txn.Blob(), types.IRBlobKey(key), entry.IR); err != nil {
				return err
			}
		}
		if entry.Structure != nil {
			if err := d.Blob().Set(txn.Blob(), types.StructureBlobKey(key), entry.Structure); err != nil {
				return err
			}
		}
		return d.Metadata().SetDecompilation(&entry.Summary, txn.Metadata())
	})
	if err != nil {
		return fmt.Errorf("store decompilation: %w", err)
	}
	d.metrics.incWrite()
	d.memory.Put(memKey, entry)
	d.logger.Debug(
		"stored decompilation",
		"component", "database",
		"purpose", entry.Summary.Purpose,
		"size", len(entry.Source),
	)
	return nil
}

// DeleteDecompilation removes an entry from every tier
func (d *Database) DeleteDecompilation(key []byte) error {
	memKey, err := cacheKey(key)
	if err != nil {
		return err
	}
	d.memory.Remove(memKey)
	txn := d.Transaction(true)
	return txn.Do(func(txn *Txn) error {
		for _, blobKey := range [][]byte{
			types.SourceBlobKey(key),
			types.IRBlobKey(key),
			types.StructureBlobKey(key),
		} {
			if err := d.Blob().Delete(txn.Blob(), blobKey); err != nil {
				return err
			}
		}
		return d.Metadata().DeleteDecompilation(key, txn.Metadata())
	})
}

// ListDecompilations returns stored summaries newest first. An empty
// purpose matches every entry and a non-positive limit returns all.
func (d *Database) ListDecompilations(purpose string, limit int) ([]models.Decompilation, error) {
	txn := NewMetadataOnlyTxn(d, false)
	defer txn.Release()
	return d.Metadata().ListDecompilations(purpose, limit, txn.Metadata())
}
