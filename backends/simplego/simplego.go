// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package simplego implements a simple, portable CPU backend in pure Go.
//
// Each pass is split in contiguous chunks of indices that are processed in parallel by a pool of
// goroutines. Since every compare-exchange pair is owned by its lower index, chunks never write
// to the same pair, and no synchronization is needed within a pass.
//
// Configuration (comma-separated, e.g. "go:parallelism=4,min_chunk=4096"):
//
//   - parallelism: max number of parallel workers. 0 runs sequentially, -1 is unlimited. Defaults to runtime.NumCPU().
//   - min_chunk: minimum number of indices handled by one worker. Defaults to DefaultMinChunkSize.
//
// The Backend can be used concurrently by multiple sorts, as long as they don't share buffers.
package simplego

import (
	"fmt"
	"runtime"

	"github.com/gomlx/bitonic/backends"
	"github.com/gomlx/bitonic/internal/workerspool"
	"github.com/gomlx/bitonic/pkg/core/network"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// BackendName to be used in BITONIC_BACKEND to specify this backend.
const BackendName = "go"

// DefaultMinChunkSize is the default minimum number of indices per parallel task: smaller passes
// are executed inline, since the goroutine overhead would dominate.
const DefaultMinChunkSize = 16 * 1024

// Registers New() as the constructor for the "go" backend.
func init() {
	backends.Register(BackendName, New)
}

// New constructs a new SimpleGo Backend from the configuration string.
func New(config string) (backends.Backend, error) {
	options, err := backends.ParseOptions(config, "parallelism", "min_chunk")
	if err != nil {
		return nil, err
	}
	parallelism, err := options.Int("parallelism", runtime.NumCPU())
	if err != nil {
		return nil, err
	}
	minChunk, err := options.Int("min_chunk", DefaultMinChunkSize)
	if err != nil {
		return nil, err
	}
	if minChunk < 1 {
		return nil, errors.Errorf("min_chunk must be >= 1, got %d", minChunk)
	}
	return NewWithOptions(parallelism, minChunk), nil
}

// NewWithOptions creates a Backend with the given parallelism (see workerspool.Pool.SetMaxParallelism)
// and minimum chunk size.
func NewWithOptions(parallelism, minChunkSize int) *Backend {
	pool := workerspool.New()
	pool.SetMaxParallelism(parallelism)
	klog.V(1).Infof("backend %q: parallelism=%d, min_chunk=%d", BackendName, parallelism, minChunkSize)
	return &Backend{
		workers:      pool,
		minChunkSize: minChunkSize,
	}
}

// Backend implements the backends.Backend interface.
type Backend struct {
	workers      *workerspool.Pool
	minChunkSize int
	finalized    bool
}

// Compile-time check that simplego.Backend implements backends.Backend.
var _ backends.Backend = &Backend{}

// Name returns the short name of the backend.
func (b *Backend) Name() string {
	return BackendName
}

// String implements fmt.Stringer.
func (b *Backend) String() string { return BackendName }

// Description is a longer description of the Backend that can be used to pretty-print.
func (b *Backend) Description() string {
	return fmt.Sprintf("SimpleGo portable CPU backend (parallelism=%d)", b.workers.MaxParallelism())
}

// Info implements backends.Backend.
func (b *Backend) Info() backends.Info {
	return backends.Info{
		Host:    "go",
		Backend: "CPU",
		Adapter: fmt.Sprintf("%s/%s, %d CPUs", runtime.GOOS, runtime.GOARCH, runtime.NumCPU()),
		Driver:  runtime.Version(),
	}
}

// ExecutePass implements backends.Backend.
func (b *Backend) ExecutePass(buffer []uint32, params network.Params) error {
	if b.finalized {
		return backends.NewPassExecutionError(BackendName, params, backends.ErrFinalized)
	}
	if err := backends.CheckPass(buffer, params); err != nil {
		return backends.NewPassExecutionError(BackendName, params, err)
	}
	b.workers.ParallelFor(len(buffer), b.minChunkSize, func(start, end int) {
		network.ApplyRange(buffer, params, uint32(start), uint32(end))
	})
	return nil
}

// Finalize releases all the associated resources immediately, and makes the backend invalid.
func (b *Backend) Finalize() {
	b.finalized = true
}
