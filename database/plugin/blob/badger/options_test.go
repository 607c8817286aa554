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

package badger

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
)

func TestOptions(t *testing.T) {
	b := &BlobStoreBadger{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	registry := prometheus.NewRegistry()
	for _, opt := range []BlobStoreBadgerOptionFunc{
		WithDataDir("/tmp/combined"),
		WithBlockCacheSize(1000000),
		WithIndexCacheSize(2000000),
		WithLogger(logger),
		WithPromRegistry(registry),
		WithGc(true),
		WithGcInterval(time.Second),
		WithValueLogFileSize(1 << 20),
		WithMemTableSize(1 << 19),
		WithValueThreshold(512),
	} {
		opt(b)
	}
	assert.Equal(t, "/tmp/combined", b.dataDir)
	assert.Equal(t, uint64(1000000), b.blockCacheSize)
	assert.Equal(t, uint64(2000000), b.indexCacheSize)
	assert.Same(t, logger, b.logger)
	assert.Equal(t, prometheus.Registerer(registry), b.promRegistry)
	assert.True(t, b.gcEnabled)
	assert.Equal(t, time.Second, b.gcInterval)
	assert.Equal(t, int64(1<<20), b.valueLogFileSize)
	assert.Equal(t, int64(1<<19), b.memTableSize)
	assert.Equal(t, int64(512), b.valueThreshold)

	WithGc(false)(b)
	assert.False(t, b.gcEnabled)
}
