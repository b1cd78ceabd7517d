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

package controller

import (
	stderrors "errors"

	"github.com/prometheus/client_golang/prometheus"
)

type metrics struct {
	processed   *prometheus.CounterVec
	failed      *prometheus.CounterVec
	connections prometheus.Gauge
}

func newMetrics(reg prometheus.Registerer) *metrics {
	m := &metrics{
		processed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "kytos",
			Subsystem: "stage",
			Name:      "processed_total",
			Help:      "Events processed by a controller stage.",
		}, []string{"stage"}),
		failed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "kytos",
			Subsystem: "stage",
			Name:      "failed_total",
			Help:      "Events a controller stage failed to process.",
		}, []string{"stage"}),
		connections: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "kytos",
			Name:      "connections",
			Help:      "Open switch connections.",
		}),
	}
	if reg == nil {
		return m
	}
	m.processed = register(reg, m.processed)
	m.failed = register(reg, m.failed)
	m.connections = register(reg, m.connections)
	return m
}

// register returns the collector already registered under the same
// descriptor, if any.
func register[T prometheus.Collector](reg prometheus.Registerer, c T) T {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if stderrors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing
			}
		}
	}
	return c
}
