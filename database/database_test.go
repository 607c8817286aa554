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

package database_test

import (
	"bytes"
	"errors"
	"sync"
	"testing"

	"github.com/blinklabs-io/uplcdec/database"
	"github.com/blinklabs-io/uplcdec/database/models"
	"github.com/blinklabs-io/uplcdec/database/types"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testKey(b byte) []byte {
	return bytes.Repeat([]byte{b}, 32)
}

func newTestDatabase(t *testing.T, config *database.Config) *database.Database {
	t.Helper()
	db, err := database.New(config)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestPutGetDecompilation(t *testing.T) {
	registry := prometheus.NewRegistry()
	db := newTestDatabase(t, &database.Config{
		PromRegistry:       registry,
		MemoryCacheEntries: -1,
	})
	entry := &database.Entry{
		Summary: models.Decompilation{
			CacheKey:  testKey(1),
			Purpose:   "mint",
			Validator: "decompiled",
		},
		Source:    []byte("validator decompiled {\n}\n"),
		IR:        []byte("fn validator() {\n}\n"),
		Structure: []byte{0xa0},
	}
	require.NoError(t, db.PutDecompilation(entry))

	got, err := db.GetDecompilation(testKey(1))
	require.NoError(t, err)
	assert.Equal(t, entry.Source, got.Source)
	assert.Equal(t, entry.IR, got.IR)
	assert.Equal(t, entry.Structure, got.Structure)
	assert.Equal(t, "mint", got.Summary.Purpose)
	assert.Equal(t, types.Uint64(len(entry.Source)), got.Summary.SourceSize)

	_, err = db.GetDecompilation(testKey(2))
	assert.ErrorIs(t, err, types.ErrDecompilationNotFound)

	assert.Equal(t, uint64(1), db.Metrics().StoreHits.Load())
	assert.Equal(t, uint64(1), db.Metrics().Misses.Load())
	assert.Equal(t, uint64(1), db.Metrics().Writes.Load())
	count, err := testutil.GatherAndCount(
		registry,
		"uplcdec_cache_writes_total",
		"uplcdec_cache_misses_total",
		"database_blob_bytes_written_total",
		"database_metadata_decompilations",
	)
	require.NoError(t, err)
	assert.Equal(t, 4, count)
}

func TestMemoryTier(t *testing.T) {
	db := newTestDatabase(t, &database.Config{MemoryCacheEntries: 4})
	entry := &database.Entry{
		Summary: models.Decompilation{CacheKey: testKey(3)},
		Source:  []byte("x"),
	}
	require.NoError(t, db.PutDecompilation(entry))
	_, err := db.GetDecompilation(testKey(3))
	require.NoError(t, err)
	assert.Equal(t, uint64(1), db.Metrics().MemoryHits.Load())
	assert.Zero(t, db.Metrics().StoreHits.Load())
}

func TestInvalidKey(t *testing.T) {
	db := newTestDatabase(t, nil)
	_, err := db.GetDecompilation([]byte{1, 2, 3})
	assert.Error(t, err)
	assert.Error(t, db.PutDecompilation(&database.Entry{}))
}

func TestDeleteAndList(t *testing.T) {
	db := newTestDatabase(t, nil)
	for i, purpose := range []string{"spend", "mint", "spend"} {
		require.NoError(t, db.PutDecompilation(&database.Entry{
			Summary: models.Decompilation{CacheKey: testKey(byte(10 + i)), Purpose: purpose},
			Source:  []byte(purpose),
		}))
	}
	spends, err := db.ListDecompilations("spend", 0)
	require.NoError(t, err)
	assert.Len(t, spends, 2)

	require.NoError(t, db.DeleteDecompilation(testKey(10)))
	_, err = db.GetDecompilation(testKey(10))
	assert.ErrorIs(t, err, types.ErrDecompilationNotFound)
	all, err := db.ListDecompilations("", 0)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestTxnDoRollsBack(t *testing.T) {
	db := newTestDatabase(t, nil)
	failure := errors.New("abort")
	txn := db.Transaction(true)
	err := txn.Do(func(txn *database.Txn) error {
		require.NoError(t, db.Blob().Set(txn.Blob(), types.SourceBlobKey(testKey(5)), []byte("x")))
		return failure
	})
	assert.ErrorIs(t, err, failure)

	rtxn := db.Transaction(false)
	defer rtxn.Release()
	_, err = db.Blob().Get(rtxn.Blob(), types.SourceBlobKey(testKey(5)))
	assert.ErrorIs(t, err, types.ErrBlobKeyNotFound)
}

func TestCommitTimestampsMatchOnReopen(t *testing.T) {
	dir := t.TempDir()
	db, err := database.New(&database.Config{DataDir: dir})
	require.NoError(t, err)
	require.NoError(t, db.PutDecompilation(&database.Entry{
		Summary: models.Decompilation{CacheKey: testKey(7)},
		Source:  []byte("persisted"),
	}))
	metaTs, err := db.Metadata().GetCommitTimestamp()
	require.NoError(t, err)
	blobTs, err := db.Blob().GetCommitTimestamp()
	require.NoError(t, err)
	assert.Equal(t, metaTs, blobTs)
	require.NoError(t, db.Close())

	reopened := newTestDatabase(t, &database.Config{DataDir: dir})
	got, err := reopened.GetDecompilation(testKey(7))
	require.NoError(t, err)
	assert.Equal(t, "persisted", string(got.Source))
}

func TestCommitTimestampError(t *testing.T) {
	err := database.CommitTimestampError{MetadataTimestamp: 1, BlobTimestamp: 2}
	assert.Equal(t, "commit timestamp mismatch: 1 (metadata) != 2 (blob)", err.Error())
}

func TestConcurrentPuts(t *testing.T) {
	db := newTestDatabase(t, nil)
	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for i := range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- db.PutDecompilation(&database.Entry{
				Summary: models.Decompilation{CacheKey: testKey(byte(100 + i))},
				Source:  []byte{byte(i)},
			})
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}
	all, err := db.ListDecompilations("", 0)
	require.NoError(t, err)
	assert.Len(t, all, 16)
}

func TestEntryLRUCache(t *testing.T) {
	cache := database.NewEntryLRUCache(2)
	var a, b, c [32]byte
	a[0], b[0], c[0] = 1, 2, 3
	cache.Put(a, &database.Entry{Source: []byte("a")})
	cache.Put(b, &database.Entry{Source: []byte("b")})
	_, ok := cache.Get(a)
	require.True(t, ok)
	cache.Put(c, &database.Entry{Source: []byte("c")})
	// b was least recently used
	_, ok = cache.Get(b)
	assert.False(t, ok)
	assert.Equal(t, 2, cache.Len())
	cache.Remove(a)
	assert.Equal(t, 1, cache.Len())

	disabled := database.NewEntryLRUCache(-1)
	disabled.Put(a, &database.Entry{})
	assert.Zero(t, disabled.Len())
}
