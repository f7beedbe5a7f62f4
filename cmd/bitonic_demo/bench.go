// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/gomlx/bitonic/backends"
	"github.com/gomlx/bitonic/pkg/core/network"
	"github.com/gomlx/bitonic/pkg/sorter"
	"github.com/pkg/errors"
	"github.com/schollz/progressbar/v3"
	"golang.org/x/exp/rand"
)

// benchResult of sorting one size numRuns times.
type benchResult struct {
	size, paddedSize, numPasses int
	perSort                     time.Duration
}

// runBenchmarks sorts random float32 slices of each size numRuns times, showing a progress bar,
// and prints a table with the results.
func runBenchmarks(backend backends.Backend, sizes []int, numRuns int, seed uint64) error {
	if numRuns < 1 {
		return errors.Errorf("-bench_runs must be >= 1, got %d", numRuns)
	}
	fmt.Println(titleStyle.Render("Benchmarks"))
	bar := progressbar.NewOptions(len(sizes)*numRuns,
		progressbar.OptionSetDescription("sorting"),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("sorts"),
		progressbar.OptionSetTheme(progressbar.ThemeASCII),
		progressbar.OptionClearOnFinish(),
	)
	rng := rand.New(rand.NewSource(seed))
	results := make([]benchResult, 0, len(sizes))
	for _, size := range sizes {
		input := make([]float32, size)
		for ii := range input {
			input[ii] = float32(rng.NormFloat64())
		}
		data := make([]float32, size)
		var total time.Duration
		for range numRuns {
			copy(data, input)
			start := time.Now()
			if err := sorter.Sort(backend, data, network.Ascending); err != nil {
				return errors.WithMessagef(err, "benchmark of %d elements", size)
			}
			total += time.Since(start)
			if !sorter.IsSorted(data, network.Ascending) {
				return errors.Errorf("benchmark of %d elements: result not sorted", size)
			}
			_ = bar.Add(1)
		}
		padded := network.NextPowerOfTwo(size)
		results = append(results, benchResult{
			size:       size,
			paddedSize: padded,
			numPasses:  network.NumSteps(padded),
			perSort:    total / time.Duration(numRuns),
		})
	}
	_ = bar.Finish()

	table := newPlainTable(lipgloss.Right).
		Headers("Elements", "Padded", "Passes", "Buffer", "Time/sort", "Elements/s")
	for _, r := range results {
		throughput := "-"
		if r.perSort > 0 {
			throughput = humanize.SIWithDigits(float64(r.size)/r.perSort.Seconds(), 2, "")
		}
		table.Row(humanize.Comma(int64(r.size)), humanize.Comma(int64(r.paddedSize)),
			humanize.Comma(int64(r.numPasses)), humanize.IBytes(uint64(r.paddedSize)*4),
			r.perSort.Round(time.Microsecond).String(), throughput)
	}
	fmt.Println(table.Render())
	return nil
}
