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

package badger_test

import (
	"testing"
	"time"

	"github.com/blinklabs-io/uplcdec/database/plugin/blob/badger"
	"github.com/blinklabs-io/uplcdec/database/types"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestInMemoryGetSet(t *testing.T) {
	registry := prometheus.NewRegistry()
	store, err := badger.New(
		badger.WithDataDir(""),
		badger.WithPromRegistry(registry),
	)
	require.NoError(t, err)
	defer store.Close()

	txn := store.NewTransaction(true)
	require.NoError(t, store.Set(txn, []byte("src1"), []byte("validator x {}")))
	require.NoError(t, txn.Commit())

	rtxn := store.NewTransaction(false)
	defer rtxn.Rollback() //nolint:errcheck
	val, err := store.Get(rtxn, []byte("src1"))
	require.NoError(t, err)
	assert.Equal(t, "validator x {}", string(val))
	_, err = store.Get(rtxn, []byte("src2"))
	assert.ErrorIs(t, err, types.ErrBlobKeyNotFound)

	count, err := testutil.GatherAndCount(registry, "database_blob_hits_total", "database_blob_misses_total")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestTxnValidation(t *testing.T) {
	store, err := badger.New(badger.WithDataDir(""))
	require.NoError(t, err)
	defer store.Close()
	other, err := badger.New(badger.WithDataDir(""))
	require.NoError(t, err)
	defer other.Close()

	_, err = store.Get(nil, []byte("k"))
	assert.ErrorIs(t, err, types.ErrNilTxn)

	foreign := other.NewTransaction(false)
	defer foreign.Rollback() //nolint:errcheck
	_, err = store.Get(foreign, []byte("k"))
	assert.Error(t, err)

	txn := store.NewTransaction(true)
	require.NoError(t, txn.Commit())
	assert.Error(t, store.Set(txn, []byte("k"), []byte("v")))
	// Finished transactions commit and roll back as no-ops
	assert.NoError(t, txn.Commit())
	assert.NoError(t, txn.Rollback())
}

func TestIteratorPrefix(t *testing.T) {
	store, err := badger.New(badger.WithDataDir(""))
	require.NoError(t, err)
	defer store.Close()

	txn := store.NewTransaction(true)
	for _, k := range []string{"src\x01", "src\x02", "ir\x01"} {
		require.NoError(t, store.Set(txn, []byte(k), []byte(k)))
	}
	require.NoError(t, txn.Commit())

	rtxn := store.NewTransaction(false)
	defer rtxn.Rollback() //nolint:errcheck
	it := store.NewIterator(rtxn, types.BlobIteratorOptions{Prefix: []byte("src")})
	defer it.Close()
	var keys []string
	for it.Rewind(); it.ValidForPrefix([]byte("src")); it.Next() {
		keys = append(keys, string(it.Item().Key()))
	}
	require.NoError(t, it.Err())
	assert.Equal(t, []string{"src\x01", "src\x02"}, keys)

	bad := store.NewIterator(nil, types.BlobIteratorOptions{})
	assert.False(t, bad.Valid())
	assert.ErrorIs(t, bad.Err(), types.ErrNilTxn)
}

func TestCommitTimestamp(t *testing.T) {
	store, err := badger.New(badger.WithDataDir(""))
	require.NoError(t, err)
	defer store.Close()

	ts, err := store.GetCommitTimestamp()
	require.NoError(t, err)
	assert.Zero(t, ts)

	txn := store.NewTransaction(true)
	require.NoError(t, store.SetCommitTimestamp(1700000000123, txn))
	require.NoError(t, txn.Commit())
	ts, err = store.GetCommitTimestamp()
	require.NoError(t, err)
	assert.Equal(t, int64(1700000000123), ts)

	assert.ErrorIs(t, store.SetCommitTimestamp(1, nil), types.ErrNilTxn)
}

func TestDiskStoreStopsGc(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	dir := t.TempDir()
	store, err := badger.New(
		badger.WithDataDir(dir),
		badger.WithGcInterval(10*time.Millisecond),
	)
	require.NoError(t, err)
	assert.Equal(t, dir, store.DataDir())
	txn := store.NewTransaction(true)
	require.NoError(t, store.Set(txn, []byte("k"), []byte("v")))
	require.NoError(t, txn.Commit())
	time.Sleep(30 * time.Millisecond)
	require.NoError(t, store.Close())
	// Closing twice is harmless
	require.NoError(t, store.Close())

	reopened, err := badger.New(badger.WithDataDir(dir), badger.WithGc(false))
	require.NoError(t, err)
	defer reopened.Close()
	rtxn := reopened.NewTransaction(false)
	defer rtxn.Rollback() //nolint:errcheck
	val, err := reopened.Get(rtxn, []byte("k"))
	require.NoError(t, err)
	assert.Equal(t, "v", string(val))
}
