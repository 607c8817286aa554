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
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const badgerMetricNamePrefix = "database_blob_"

type blobMetrics struct {
	hits         prometheus.Counter
	misses       prometheus.Counter
	bytesWritten prometheus.Counter
	gcRuns       prometheus.Counter
}

func (d *BlobStoreBadger) registerBlobMetrics() {
	factory := promauto.With(d.promRegistry)
	d.metrics = &blobMetrics{
		hits: factory.NewCounter(prometheus.CounterOpts{
			Name: badgerMetricNamePrefix + "hits_total",
			Help: "Total number of blob lookups that found a key",
		}),
		misses: factory.NewCounter(prometheus.CounterOpts{
			Name: badgerMetricNamePrefix + "misses_total",
			Help: "Total number of blob lookups for a missing key",
		}),
		bytesWritten: factory.NewCounter(prometheus.CounterOpts{
			Name: badgerMetricNamePrefix + "bytes_written_total",
			Help: "Total bytes written to the blob store",
		}),
		gcRuns: factory.NewCounter(prometheus.CounterOpts{
			Name: badgerMetricNamePrefix + "gc_runs_total",
			Help: "Total number of value log files rewritten by GC",
		}),
	}
	factory.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: badgerMetricNamePrefix + "lsm_size_bytes",
			Help: "Size of the badger LSM tree",
		},
		func() float64 {
			lsm, _ := d.DB().Size()
			return float64(lsm)
		},
	)
	factory.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: badgerMetricNamePrefix + "vlog_size_bytes",
			Help: "Size of the badger value log",
		},
		func() float64 {
			_, vlog := d.DB().Size()
			return float64(vlog)
		},
	)
}

func (m *blobMetrics) hit() {
	if m != nil {
		m.hits.Inc()
	}
}

func (m *blobMetrics) miss() {
	if m != nil {
		m.misses.Inc()
	}
}

func (m *blobMetrics) wrote(n int) {
	if m != nil {
		m.bytesWritten.Add(float64(n))
	}
}
