// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// bitonic_demo sorts a set of arrays (integers, floats, special values, both orders) with the first
// available backend and reports the results. Optionally it benchmarks the backend and prints the
// Prometheus metrics collected.
//
// Usage:
//
//	bitonic_demo -backends=wasm,go -bench -metrics
package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/gomlx/bitonic/backends"
	_ "github.com/gomlx/bitonic/backends/default"
	"github.com/gomlx/bitonic/backends/metrics"
	"github.com/gomlx/bitonic/internal/must"
	"github.com/gomlx/bitonic/pkg/support/xslices"
	"github.com/prometheus/client_golang/prometheus"
	"k8s.io/klog/v2"
)

var (
	flagBackends = xslices.Flag("backends", []string{"wasm", "go"},
		fmt.Sprintf("Comma-separated list of backend configurations to try, in order of preference. "+
			"Each is formatted as \"<backend>:<config>\". If empty, $%s is used. Registered backends: %q",
			backends.ConfigEnvVar, backends.List()),
		func(config string) (string, error) { return config, nil })
	flagBench      = flag.Bool("bench", false, "Benchmark the backend after running the scenarios.")
	flagBenchSizes = xslices.Flag("bench_sizes", []int{1000, 65536, 1_000_000},
		"Comma-separated list of array sizes to benchmark.", strconv.Atoi)
	flagBenchRuns = flag.Int("bench_runs", 5, "Number of sorts per benchmarked size.")
	flagMetrics   = flag.Bool("metrics", false, "Collect Prometheus metrics of the passes and print them at the end.")
	flagSeed      = flag.Uint64("seed", 42, "Random seed for the benchmark data.")
)

func main() {
	klog.InitFlags(nil)
	flag.Parse()

	backend, registry := newBackend()
	defer backend.Finalize()
	fmt.Println(titleStyle.Render("Bitonic Sort Demo"))
	printBackendInfo(backend)

	if failed := runScenarios(backend); failed > 0 {
		klog.Errorf("%d scenario(s) failed", failed)
		os.Exit(1)
	}
	if *flagBench {
		must.M(runBenchmarks(backend, *flagBenchSizes, *flagBenchRuns, *flagSeed))
	}
	if registry != nil {
		must.M(printMetrics(registry))
	}
}

// newBackend creates the first available backend in -backends, optionally decorated with metrics.
func newBackend() (backends.Backend, *prometheus.Registry) {
	backend, err := backends.NewFirstAvailable(*flagBackends...)
	if err != nil {
		klog.Fatalf("Failed to create backend: %+v", err)
	}
	klog.V(1).Infof("using backend %s", backend.Description())
	if !*flagMetrics {
		return backend, nil
	}
	registry := prometheus.NewRegistry()
	return must.M1(metrics.Wrap(backend, registry)), registry
}
