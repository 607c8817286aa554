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

package sqlite_test

import (
	"testing"

	"github.com/blinklabs-io/uplcdec/database/models"
	"github.com/blinklabs-io/uplcdec/database/plugin/metadata/sqlite"
	"github.com/blinklabs-io/uplcdec/database/types"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *sqlite.MetadataStoreSqlite {
	t.Helper()
	store, err := sqlite.New("", nil, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestDecompilationRoundTrip(t *testing.T) {
	store := newTestStore(t)
	rec := &models.Decompilation{
		CacheKey:     []byte{0x01, 0x02},
		Purpose:      "spend",
		Validator:    "vault",
		BudgetCPU:    1234,
		BudgetMemory: 56,
		SourceSize:   types.Uint64(99),
		Variants:     2,
	}
	require.NoError(t, store.SetDecompilation(rec, nil))

	got, err := store.GetDecompilation([]byte{0x01, 0x02}, nil)
	require.NoError(t, err)
	assert.Equal(t, "spend", got.Purpose)
	assert.Equal(t, "vault", got.Validator)
	assert.Equal(t, int64(1234), got.BudgetCPU)
	assert.Equal(t, types.Uint64(99), got.SourceSize)
	assert.Equal(t, 2, got.Variants)

	_, err = store.GetDecompilation([]byte{0xff}, nil)
	assert.ErrorIs(t, err, types.ErrDecompilationNotFound)
}

func TestSetDecompilationReplaces(t *testing.T) {
	store := newTestStore(t)
	key := []byte{0xaa}
	require.NoError(t, store.SetDecompilation(&models.Decompilation{CacheKey: key, Purpose: "mint"}, nil))
	require.NoError(t, store.SetDecompilation(&models.Decompilation{CacheKey: key, Purpose: "spend"}, nil))
	count, err := store.CountDecompilations(nil)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
	got, err := store.GetDecompilation(key, nil)
	require.NoError(t, err)
	assert.Equal(t, "spend", got.Purpose)
}

func TestListAndDelete(t *testing.T) {
	store := newTestStore(t)
	for i, purpose := range []string{"mint", "spend", "mint"} {
		require.NoError(t, store.SetDecompilation(
			&models.Decompilation{CacheKey: []byte{byte(i)}, Purpose: purpose},
			nil,
		))
	}
	all, err := store.ListDecompilations("", 0, nil)
	require.NoError(t, err)
	assert.Len(t, all, 3)
	mints, err := store.ListDecompilations("mint", 0, nil)
	require.NoError(t, err)
	assert.Len(t, mints, 2)
	limited, err := store.ListDecompilations("", 1, nil)
	require.NoError(t, err)
	assert.Len(t, limited, 1)

	require.NoError(t, store.DeleteDecompilation([]byte{0}, nil))
	count, err := store.CountDecompilations(nil)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestTransactionRollback(t *testing.T) {
	store := newTestStore(t)
	txn := store.Transaction()
	require.NoError(t, store.SetDecompilation(&models.Decompilation{CacheKey: []byte{1}}, txn))
	require.NoError(t, txn.Rollback())
	count, err := store.CountDecompilations(nil)
	require.NoError(t, err)
	assert.Zero(t, count)

	txn = store.Transaction()
	require.NoError(t, store.SetDecompilation(&models.Decompilation{CacheKey: []byte{1}}, txn))
	require.NoError(t, store.SetCommitTimestamp(42, txn))
	require.NoError(t, txn.Commit())
	ts, err := store.GetCommitTimestamp()
	require.NoError(t, err)
	assert.Equal(t, int64(42), ts)
}

type otherTxn struct{}

func (otherTxn) Commit() error   { return nil }
func (otherTxn) Rollback() error { return nil }

func TestWrongTxnType(t *testing.T) {
	store := newTestStore(t)
	_, err := store.GetDecompilation([]byte{1}, otherTxn{})
	assert.ErrorIs(t, err, types.ErrTxnWrongType)
}

func TestInMemoryStoresAreIsolated(t *testing.T) {
	a := newTestStore(t)
	b := newTestStore(t)
	require.NoError(t, a.SetDecompilation(&models.Decompilation{CacheKey: []byte{7}}, nil))
	count, err := b.CountDecompilations(nil)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestFileStoreAndMetrics(t *testing.T) {
	dir := t.TempDir()
	registry := prometheus.NewRegistry()
	store, err := sqlite.NewWithOptions(
		sqlite.WithDataDir(dir),
		sqlite.WithPromRegistry(registry),
	)
	require.NoError(t, err)
	assert.Equal(t, dir, store.DataDir())
	require.NoError(t, store.SetDecompilation(&models.Decompilation{CacheKey: []byte{3}}, nil))
	count, err := testutil.GatherAndCount(registry, "database_metadata_decompilations")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	require.NoError(t, store.Close())
	// Closing twice is harmless
	require.NoError(t, store.Close())

	reopened, err := sqlite.New(dir, nil, nil)
	require.NoError(t, err)
	defer reopened.Close()
	_, err = reopened.GetDecompilation([]byte{3}, nil)
	assert.NoError(t, err)
}
