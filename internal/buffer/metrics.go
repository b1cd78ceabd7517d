// Copyright 2022 CFC4N <cfc4n.cs@gmail.com>. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//   http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package buffer

import (
	stderrors "errors"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/viniarck/kytos/internal/errors"
)

const metricsNamespace = "kytos"

// Metrics holds the per buffer collectors, labelled by buffer name.
type Metrics struct {
	enqueued *prometheus.CounterVec
	dequeued *prometheus.CounterVec
	dropped  *prometheus.CounterVec
	rejected *prometheus.CounterVec
	depth    *prometheus.GaugeVec
}

// NewMetrics creates the buffer collectors and registers them on reg.
// Collectors already registered on reg are reused.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		enqueued: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "buffer",
			Name:      "enqueued_total",
			Help:      "Events accepted by the buffer.",
		}, []string{"buffer"}),
		dequeued: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "buffer",
			Name:      "dequeued_total",
			Help:      "Events handed out by the buffer.",
		}, []string{"buffer"}),
		dropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "buffer",
			Name:      "dropped_total",
			Help:      "Events dropped because the buffer was draining.",
		}, []string{"buffer"}),
		rejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "buffer",
			Name:      "rejected_total",
			Help:      "Events rejected because of a kind mismatch.",
		}, []string{"buffer"}),
		depth: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Subsystem: "buffer",
			Name:      "depth",
			Help:      "Events currently queued.",
		}, []string{"buffer"}),
	}

	if reg == nil {
		return m, nil
	}

	var err error
	if m.enqueued, err = registerCounterVec(reg, m.enqueued); err != nil {
		return nil, err
	}
	if m.dequeued, err = registerCounterVec(reg, m.dequeued); err != nil {
		return nil, err
	}
	if m.dropped, err = registerCounterVec(reg, m.dropped); err != nil {
		return nil, err
	}
	if m.rejected, err = registerCounterVec(reg, m.rejected); err != nil {
		return nil, err
	}
	if err = reg.Register(m.depth); err != nil {
		var are prometheus.AlreadyRegisteredError
		if !stderrors.As(err, &are) {
			return nil, errors.Wrap(errors.ErrCodeConfiguration, "failed to register buffer metrics", err)
		}
		existing, ok := are.ExistingCollector.(*prometheus.GaugeVec)
		if !ok {
			return nil, errors.Wrap(errors.ErrCodeConfiguration, "conflicting buffer depth metric", err)
		}
		m.depth = existing
	}

	return m, nil
}

func registerCounterVec(reg prometheus.Registerer, c *prometheus.CounterVec) (*prometheus.CounterVec, error) {
	err := reg.Register(c)
	if err == nil {
		return c, nil
	}
	var are prometheus.AlreadyRegisteredError
	if stderrors.As(err, &are) {
		if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
			return existing, nil
		}
	}
	return nil, errors.Wrap(errors.ErrCodeConfiguration, "failed to register buffer metrics", err)
}

// bufferMetrics are the collectors of a single buffer. A nil *bufferMetrics
// records nothing.
type bufferMetrics struct {
	enqueued prometheus.Counter
	dequeued prometheus.Counter
	dropped  prometheus.Counter
	rejected prometheus.Counter
	depth    prometheus.Gauge
}

func (m *Metrics) forBuffer(name string) *bufferMetrics {
	if m == nil {
		return nil
	}
	return &bufferMetrics{
		enqueued: m.enqueued.WithLabelValues(name),
		dequeued: m.dequeued.WithLabelValues(name),
		dropped:  m.dropped.WithLabelValues(name),
		rejected: m.rejected.WithLabelValues(name),
		depth:    m.depth.WithLabelValues(name),
	}
}

func (m *bufferMetrics) onPut(depth int) {
	if m == nil {
		return
	}
	m.enqueued.Inc()
	m.depth.Set(float64(depth))
}

func (m *bufferMetrics) onGet(depth int) {
	if m == nil {
		return
	}
	m.dequeued.Inc()
	m.depth.Set(float64(depth))
}

func (m *bufferMetrics) onDrop() {
	if m == nil {
		return
	}
	m.dropped.Inc()
}

func (m *bufferMetrics) onReject() {
	if m == nil {
		return
	}
	m.rejected.Inc()
}
