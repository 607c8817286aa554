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
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecompilerMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	d, err := New(NewConfig(WithPromRegistry(reg), WithCache(true)))
	require.NoError(t, err)
	defer d.Close()

	ctx := context.Background()
	_, err = d.DecompileText(ctx, "(program 1.1.0 (lam ctx (con unit ())))")
	require.NoError(t, err)
	_, err = d.DecompileText(ctx, "(program 1.1.0 (lam ctx (con unit ())))")
	require.NoError(t, err)
	_, err = d.DecompileText(ctx, "(program 1.1.0 (lam ctx")
	require.Error(t, err)

	assert.InDelta(t, 3, testutil.ToFloat64(d.metrics.requests.WithLabelValues(inputText)), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(d.metrics.cacheHits), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(d.metrics.failures.WithLabelValues(stageDecode)), 0)
	assert.Equal(t, 1, testutil.CollectAndCount(d.metrics.duration))
}

func TestConversionMetricsRegistered(t *testing.T) {
	reg := prometheus.NewRegistry()
	d, err := New(NewConfig(WithPromRegistry(reg)))
	require.NoError(t, err)
	defer d.Close()

	// always succeeds, V3
	res, err := d.DecompileHex(context.Background(), "46450101002499")
	require.NoError(t, err)
	assert.Zero(t, res.Unrecognized)
	assert.Zero(t, res.Unbound)
	count, err := testutil.GatherAndCount(
		reg,
		"uplcdec_convert_unrecognized_nodes_total",
		"uplcdec_convert_unbound_variables_total",
	)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	// a second request reuses the registered counters
	_, err = d.DecompileHex(context.Background(), "46450101002499")
	require.NoError(t, err)
}

func TestNilMetricsAreSafe(t *testing.T) {
	var m *decompilerMetrics
	assert.NotPanics(t, func() {
		m.request(inputScript)
		m.failure(stageCost)
		m.cacheHit()
		m.observe(time.Now())
	})
	assert.Nil(t, newDecompilerMetrics(nil))
}
