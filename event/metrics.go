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

package event

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type eventMetrics struct {
	eventsTotal    *prometheus.CounterVec
	subscribers    *prometheus.GaugeVec
	deliveryErrors *prometheus.CounterVec
}

func newEventMetrics(promRegistry prometheus.Registerer) *eventMetrics {
	promautoFactory := promauto.With(promRegistry)
	return &eventMetrics{
		eventsTotal: promautoFactory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "uplcdec_event_published_total",
				Help: "number of events published by type",
			},
			[]string{"type"},
		),
		subscribers: promautoFactory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "uplcdec_event_subscribers",
				Help: "number of active subscribers by event type",
			},
			[]string{"type"},
		),
		deliveryErrors: promautoFactory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "uplcdec_event_delivery_errors_total",
				Help: "number of failed event deliveries by type",
			},
			[]string{"type"},
		),
	}
}

func (m *eventMetrics) published(eventType EventType) {
	if m == nil {
		return
	}
	m.eventsTotal.WithLabelValues(string(eventType)).Inc()
}

func (m *eventMetrics) subscriberAdded(eventType EventType) {
	if m == nil {
		return
	}
	m.subscribers.WithLabelValues(string(eventType)).Inc()
}

func (m *eventMetrics) subscriberRemoved(eventType EventType) {
	if m == nil {
		return
	}
	m.subscribers.WithLabelValues(string(eventType)).Dec()
}

func (m *eventMetrics) deliveryError(eventType EventType) {
	if m == nil {
		return
	}
	m.deliveryErrors.WithLabelValues(string(eventType)).Inc()
}

func (m *eventMetrics) reset() {
	if m == nil {
		return
	}
	m.subscribers.Reset()
}
