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
	"sync"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// CacheMetrics holds atomic counters for decompilation cache monitoring
type CacheMetrics struct {
	MemoryHits atomic.Uint64
	StoreHits  atomic.Uint64
	Misses     atomic.Uint64
	Writes     atomic.Uint64

	// Prometheus metrics (nil until Register is called)
	memoryHitsCounter prometheus.Counter
	storeHitsCounter  prometheus.Counter
	missesCounter     prometheus.Counter
	writesCounter     prometheus.Counter

	registerOnce sync.Once
}

// Register registers Prometheus metrics with the given registry. A nil
// registry is a no-op and repeated calls do nothing.
func (m *CacheMetrics) Register(registry prometheus.Registerer) {
	if registry == nil {
		return
	}
	m.registerOnce.Do(func() {
		factory := promauto.With(registry)
		m.memoryHitsCounter = factory.NewCounter(prometheus.CounterOpts{
			Name: "uplcdec_cache_memory_hits_total",
			Help: "Total number of decompilations served from the in-memory cache",
		})
		m.storeHitsCounter = factory.NewCounter(prometheus.CounterOpts{
			Name: "uplcdec_cache_store_hits_total",
			Help: "Total number of decompilations served from the persistent store",
		})
		m.missesCounter = factory.NewCounter(prometheus.CounterOpts{
			Name: "uplcdec_cache_misses_total",
			Help: "Total number of decompilation cache misses",
		})
		m.writesCounter = factory.NewCounter(prometheus.CounterOpts{
			Name: "uplcdec_cache_writes_total",
			Help: "Total number of decompilations written to the store",
		})
	})
}

func (m *CacheMetrics) incMemoryHit() {
	m.MemoryHits.Add(1)
	if m.memoryHitsCounter != nil {
		m.memoryHitsCounter.Inc()
	}
}

func (m *CacheMetrics) incStoreHit() {
	m.StoreHits.Add(1)
	if m.storeHitsCounter != nil {
		m.storeHitsCounter.Inc()
	}
}

func (m *CacheMetrics) incMiss() {
	m.Misses.Add(1)
	if m.missesCounter != nil {
		m.missesCounter.Inc()
	}
}

func (m *CacheMetrics) incWrite() {
	m.Writes.Add(1)
	if m.writesCounter != nil {
		m.writesCounter.Inc()
	}
}
