/*
 * Copyright 2025 SREDiag Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package hwinfo

import (
	"context"
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

const instrumentationName = "github.com/srediag/hwinfo-shm/pkg/hwinfo"

// Read outcomes, used as the "outcome" label.
const (
	outcomeOK       = "ok"
	outcomeNotFound = "not_found"
	outcomeError    = "error"
)

type metrics struct {
	reads        *prometheus.CounterVec
	readDuration prometheus.Histogram
	readings     *prometheus.GaugeVec
	lock         *prometheus.CounterVec
	skipped      prometheus.Counter
	groupCache   *prometheus.CounterVec

	otelReads metric.Int64Counter
	tracer    trace.Tracer
}

func newMetrics(config *Config) (*metrics, error) {
	m := &metrics{
		reads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "hwinfo_reads_total",
			Help: "Shared memory read calls by source and outcome.",
		}, []string{"source", "outcome"}),
		readDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "hwinfo_read_duration_seconds",
			Help:    "Time from mutex wait to assembled readings.",
			Buckets: prometheus.ExponentialBuckets(0.0001, 2, 16),
		}),
		readings: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "hwinfo_readings",
			Help: "Readings returned by the last successful read.",
		}, []string{"source"}),
		lock: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "hwinfo_lock_total",
			Help: "Producer mutex acquisition attempts by outcome.",
		}, []string{"outcome"}),
		skipped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "hwinfo_readings_skipped_total",
			Help: "Readings dropped because their group index was out of range.",
		}),
		groupCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "hwinfo_group_cache_total",
			Help: "Group cache lookups by result.",
		}, []string{"result"}),
	}

	if config.Registerer != nil {
		var err error
		if m.reads, err = register(config.Registerer, m.reads); err != nil {
			return nil, err
		}
		if m.readDuration, err = register(config.Registerer, m.readDuration); err != nil {
			return nil, err
		}
		if m.readings, err = register(config.Registerer, m.readings); err != nil {
			return nil, err
		}
		if m.lock, err = register(config.Registerer, m.lock); err != nil {
			return nil, err
		}
		if m.skipped, err = register(config.Registerer, m.skipped); err != nil {
			return nil, err
		}
		if m.groupCache, err = register(config.Registerer, m.groupCache); err != nil {
			return nil, err
		}
	}

	mp := config.MeterProvider
	if mp == nil {
		mp = metricnoop.NewMeterProvider()
	}
	counter, err := mp.Meter(instrumentationName).Int64Counter("hwinfo.reads",
		metric.WithDescription("Shared memory read calls."),
		metric.WithUnit("{call}"))
	if err != nil {
		return nil, err
	}
	m.otelReads = counter

	tp := config.TracerProvider
	if tp == nil {
		tp = tracenoop.NewTracerProvider()
	}
	m.tracer = tp.Tracer(instrumentationName)
	return m, nil
}

// register adds c to reg. Several readers sharing one registry share the
// collectors registered first.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

func (m *metrics) observeRead(ctx context.Context, src Source, outcome string, n int) {
	m.reads.WithLabelValues(src.String(), outcome).Inc()
	if outcome == outcomeOK {
		m.readings.WithLabelValues(src.String()).Set(float64(n))
	}
	m.otelReads.Add(ctx, 1, metric.WithAttributes(
		attribute.String("source", src.String()),
		attribute.String("outcome", outcome),
	))
}

func (m *metrics) observeLock(outcome string) {
	m.lock.WithLabelValues(outcome).Inc()
}

func (m *metrics) observeCache(hit bool) {
	if hit {
		m.groupCache.WithLabelValues("hit").Inc()
		return
	}
	m.groupCache.WithLabelValues("miss").Inc()
}
