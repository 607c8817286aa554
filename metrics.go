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
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	stageDecode   = "decode"
	stageAnalyze  = "analyze"
	stageIR       = "ir"
	stageGenerate = "generate"
	stageCost     = "cost"
	stageStore    = "store"
	stageLookup   = "lookup"
)

type decompilerMetrics struct {
	requests  *prometheus.CounterVec
	failures  *prometheus.CounterVec
	duration  prometheus.Histogram
	cacheHits prometheus.Counter
}

func newDecompilerMetrics(promRegistry prometheus.Registerer) *decompilerMetrics {
	if promRegistry == nil {
		return nil
	}
	m := &decompilerMetrics{}
	promautoFactory := promauto.With(promRegistry)
	m.requests = promautoFactory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "uplcdec_decompile_requests_total",
			Help: "number of decompile requests by input kind",
		},
		[]string{"input"},
	)
	m.failures = promautoFactory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "uplcdec_decompile_failures_total",
			Help: "number of failed decompile requests by pipeline stage",
		},
		[]string{"stage"},
	)
	m.duration = promautoFactory.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "uplcdec_decompile_duration_seconds",
			Help:    "time spent decompiling one input, excluding cache hits",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 16), // 0.5ms to ~16s
		},
	)
	m.cacheHits = promautoFactory.NewCounter(prometheus.CounterOpts{
		Name: "uplcdec_decompile_cache_hits_total",
		Help: "number of decompile requests answered from the cache",
	})
	return m
}

func (m *decompilerMetrics) request(input string) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(input).Inc()
}

func (m *decompilerMetrics) failure(stage string) {
	if m == nil {
		return
	}
	m.failures.WithLabelValues(stage).Inc()
}

func (m *decompilerMetrics) observe(start time.Time) {
	if m == nil {
		return
	}
	m.duration.Observe(time.Since(start).Seconds())
}

func (m *decompilerMetrics) cacheHit() {
	if m == nil {
		return
	}
	m.cacheHits.Inc()
}
