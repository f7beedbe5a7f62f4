// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package workerspool implements a soft-limited pool of goroutines, used to split the indices of a
// compare-exchange pass across the available CPUs.
package workerspool

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// Pool keeps tabs on the number of running workers. Tasks run on their own goroutines: the pool only
// throttles how many are started.
type Pool struct {
	// maxParallelism is a soft target on the limit of parallel work to do.
	// The actual number of goroutines is higher than that -- because of waits and such.
	maxParallelism int
	mu             sync.Mutex
	cond           sync.Cond // Signaled whenever numRunning is decreased.
	numRunning     int

	// extraParallelism is temporarily increased when a worker goes to sleep.
	extraParallelism atomic.Int32
}

// New returns a new Pool of workers with the default parallelism (runtime.NumCPU()).
func New() *Pool {
	w := &Pool{}
	w.maxParallelism = runtime.NumCPU()
	w.cond = sync.Cond{L: &w.mu}
	return w
}

// IsEnabled returns whether parallelism is enabled (maxParallelism != 0).
func (w *Pool) IsEnabled() bool {
	return w.maxParallelism != 0
}

// IsUnlimited returns whether parallelism is unlimited (maxParallelism < 0).
func (w *Pool) IsUnlimited() bool {
	return w.maxParallelism < 0
}

// MaxParallelism is a soft-target for parallelism.
// If set to 0 parallelism is disabled. If set to -1 parallelism is unlimited.
func (w *Pool) MaxParallelism() int {
	return w.maxParallelism
}

// SetMaxParallelism sets the maxParallelism.
//
// Only change it before any workers start running: changing it during execution is undefined behavior.
func (w *Pool) SetMaxParallelism(maxParallelism int) {
	w.maxParallelism = maxParallelism
}

const goroutineToParallelismRatio = 2

// lockedIsFull returns whether all available workers are in use.
//
// It must be called with w.mu acquired.
func (w *Pool) lockedIsFull() bool {
	if w.maxParallelism == 0 {
		return true
	} else if w.maxParallelism < 0 {
		return false
	}
	return w.numRunning >= goroutineToParallelismRatio*w.maxParallelism+int(w.extraParallelism.Load())
}

// WaitToStart waits until there is a worker available and runs task in a new goroutine.
//
// If parallelism is disabled (maxParallelism is 0), it runs the task inline and returns when it is finished.
func (w *Pool) WaitToStart(task func()) {
	if w.IsUnlimited() {
		go task()
		return
	} else if w.maxParallelism == 0 {
		task()
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	for w.lockedIsFull() {
		w.cond.Wait()
	}
	w.numRunning++
	go func() {
		task()
		w.mu.Lock()
		w.numRunning--
		w.cond.Signal()
		w.mu.Unlock()
	}()
}

// NumRunning returns the number of tasks currently running in their own goroutine.
func (w *Pool) NumRunning() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.numRunning
}

// WorkerIsAsleep indicates the worker (the one that called the method) is going to sleep waiting
// for other workers, and temporarily increases the available number of workers.
//
// Call WorkerRestarted when the worker is ready to run again.
func (w *Pool) WorkerIsAsleep() {
	w.extraParallelism.Add(1)
}

// WorkerRestarted indicates the worker (the one that called the method) is ready to run again.
// It should only be called after WorkerIsAsleep.
func (w *Pool) WorkerRestarted() {
	w.extraParallelism.Add(-1)
}

// ParallelFor splits [0, n) into contiguous chunks of at least minChunkSize indices (the last one may be
// smaller) and calls fn(start, end) for each of them, using up to MaxParallelism workers.
// The calling goroutine processes the first chunk itself. It returns when all chunks are done.
//
// If parallelism is disabled, or n is too small to be split, fn(0, n) is called inline.
func (w *Pool) ParallelFor(n, minChunkSize int, fn func(start, end int)) {
	if n <= 0 {
		return
	}
	minChunkSize = max(minChunkSize, 1)
	numChunks := 1
	if w.IsEnabled() {
		target := w.maxParallelism
		if w.IsUnlimited() {
			target = runtime.NumCPU()
		}
		numChunks = min(target, (n+minChunkSize-1)/minChunkSize)
	}
	if numChunks <= 1 {
		fn(0, n)
		return
	}

	chunkSize := (n + numChunks - 1) / numChunks
	var wg sync.WaitGroup
	for start := chunkSize; start < n; start += chunkSize {
		end := min(start+chunkSize, n)
		wg.Add(1)
		w.WaitToStart(func() {
			defer wg.Done()
			fn(start, end)
		})
	}
	fn(0, chunkSize)

	// While waiting the caller is not using its worker.
	w.WorkerIsAsleep()
	wg.Wait()
	w.WorkerRestarted()
}
