// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package metrics provides a backends.Backend decorator that exports Prometheus metrics about the
// executed passes.
//
// Exported metrics:
//
//   - bitonic_passes_total{backend,result}: number of passes executed, result is "ok" or "error".
//   - bitonic_pass_duration_seconds{backend}: histogram of the pass execution time.
//   - bitonic_pass_elements{backend}: histogram of the number of elements per pass.
//
// Collectors are registered once per prometheus.Registerer: wrapping many backends with the same
// registry shares them, and they are distinguished by the "backend" label.
package metrics

import (
	"fmt"
	"time"

	"github.com/gomlx/bitonic/backends"
	"github.com/gomlx/bitonic/pkg/core/network"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	// Namespace of all exported metrics.
	Namespace = "bitonic"

	ResultOK    = "ok"
	ResultError = "error"
)

// Collectors holds the Prometheus collectors updated by the decorated backends.
type Collectors struct {
	Passes   *prometheus.CounterVec
	Duration *prometheus.HistogramVec
	Elements *prometheus.HistogramVec
}

// NewCollectors creates the collectors and registers them in reg. If they were already registered
// in reg, the existing ones are returned.
func NewCollectors(reg prometheus.Registerer) (*Collectors, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	var c Collectors
	var err error
	c.Passes, err = register(reg, prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "passes_total",
			Help:      "Number of compare-exchange passes executed.",
		},
		[]string{"backend", "result"},
	))
	if err != nil {
		return nil, err
	}
	c.Duration, err = register(reg, prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "pass_duration_seconds",
			Help:      "Time to execute one compare-exchange pass, in seconds.",
			Buckets:   prometheus.ExponentialBuckets(1e-6, 4, 12),
		},
		[]string{"backend"},
	))
	if err != nil {
		return nil, err
	}
	c.Elements, err = register(reg, prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "pass_elements",
			Help:      "Number of (padded) elements processed by one pass.",
			Buckets:   prometheus.ExponentialBuckets(2, 4, 15),
		},
		[]string{"backend"},
	))
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, collector C) (C, error) {
	err := reg.Register(collector)
	if err == nil {
		return collector, nil
	}
	var alreadyErr prometheus.AlreadyRegisteredError
	if errors.As(err, &alreadyErr) {
		if existing, ok := alreadyErr.ExistingCollector.(C); ok {
			return existing, nil
		}
	}
	return collector, errors.Wrap(err, "failed to register bitonic metrics")
}

// Backend decorates a backends.Backend, recording metrics for every pass.
type Backend struct {
	backends.Backend
	collectors *Collectors
}

// Compile-time check that metrics.Backend implements backends.Backend.
var _ backends.Backend = &Backend{}

// Wrap backend with metrics registered in reg (prometheus.DefaultRegisterer if nil).
func Wrap(backend backends.Backend, reg prometheus.Registerer) (*Backend, error) {
	collectors, err := NewCollectors(reg)
	if err != nil {
		return nil, err
	}
	return WrapWithCollectors(backend, collectors), nil
}

// WrapWithCollectors decorates backend with already created collectors.
func WrapWithCollectors(backend backends.Backend, collectors *Collectors) *Backend {
	return &Backend{Backend: backend, collectors: collectors}
}

// Unwrap returns the decorated backend.
func (b *Backend) Unwrap() backends.Backend { return b.Backend }

// Description implements backends.Backend.
func (b *Backend) Description() string {
	return fmt.Sprintf("%s (with metrics)", b.Backend.Description())
}

// ExecutePass implements backends.Backend, delegating to the decorated backend.
func (b *Backend) ExecutePass(buffer []uint32, params network.Params) error {
	name := b.Backend.Name()
	start := time.Now()
	err := b.Backend.ExecutePass(buffer, params)
	elapsed := time.Since(start)
	result := ResultOK
	if err != nil {
		result = ResultError
	}
	b.collectors.Passes.WithLabelValues(name, result).Inc()
	b.collectors.Duration.WithLabelValues(name).Observe(elapsed.Seconds())
	b.collectors.Elements.WithLabelValues(name).Observe(float64(params.NumElements))
	return err
}
