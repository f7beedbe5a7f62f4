// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"math"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/gomlx/bitonic/backends"
	"github.com/gomlx/bitonic/pkg/core/keys"
	"github.com/gomlx/bitonic/pkg/core/network"
	"github.com/gomlx/bitonic/pkg/sorter"
	"github.com/gomlx/bitonic/pkg/support/xslices"
)

// scenario is one demo sort: run sorts its own data with the backend and reports it.
type scenario struct {
	name string
	run  func(backend backends.Backend) scenarioResult
}

type scenarioResult struct {
	numElements   int
	order         network.SortOrder
	before, after string
	elapsed       time.Duration
	passed        bool
	err           error
}

// newScenario creates a scenario sorting a copy of data.
func newScenario[T keys.Key](name string, data []T, order network.SortOrder) scenario {
	return scenario{
		name: name,
		run: func(backend backends.Backend) scenarioResult {
			values := xslices.Copy(data)
			r := scenarioResult{numElements: len(values), order: order, before: preview(values)}
			start := time.Now()
			r.err = sorter.Sort(backend, values, order)
			r.elapsed = time.Since(start)
			r.after = preview(values)
			r.passed = r.err == nil && sorter.IsSorted(values, order)
			return r
		},
	}
}

// preview returns the first and last few values of data.
func preview[T any](data []T) string {
	const edge = 5
	if len(data) <= 2*edge {
		return fmt.Sprint(data)
	}
	return fmt.Sprintf("%v ... %v", data[:edge], data[len(data)-edge:])
}

func allScenarios() []scenario {
	u32 := xslices.Map(xslices.Iota(0, 1000), func(i int) uint32 { return uint32((i*31337 + 42) % 1000) })
	i32 := xslices.Map(xslices.Iota(0, 1000), func(i int) int32 { return int32((i*31337-500000)%2000 - 1000) })
	f32 := xslices.Map(xslices.Iota(0, 1000), func(i int) float32 { return (float32(i)*math.Pi - 500) * 0.123 })
	inf, negInf := float32(math.Inf(1)), float32(math.Inf(-1))
	negZero := float32(math.Copysign(0, -1))
	return []scenario{
		newScenario("1000 uint32", u32, network.Ascending),
		newScenario("uint32 special values", []uint32{
			42, 7, 999, 0, 13, 256, 128, 1, math.MaxUint32, 0, math.MaxUint32 / 2, math.MaxUint32 - 1,
			1000000, 999999, 100, 50}, network.Ascending),
		newScenario("1000 int32", i32, network.Ascending),
		newScenario("int32 special values", []int32{
			-42, 7, -999, 0, 13, -256, 128, -1, math.MaxInt32, math.MinInt32, math.MaxInt32 / 2, math.MinInt32 / 2,
			-1000000, 999999, -100, 50}, network.Ascending),
		newScenario("1000 float32", f32, network.Ascending),
		newScenario("float32 special values", []float32{
			math.Pi, -2.71, 0, negZero, 1.41, -99.9, 42, inf, negInf, math.MaxFloat32, -math.MaxFloat32,
			math.SmallestNonzeroFloat32, -math.SmallestNonzeroFloat32, 1e-10, -1e10, 0.1}, network.Ascending),
		newScenario("uint32", []uint32{42, 7, 999, 0, 13, 256, 128, 511, 1, 64}, network.Descending),
		newScenario("int32 with negatives", []int32{-42, 7, -999, 0, 13, -256, 128, -1, 100, -100}, network.Descending),
		newScenario("float32 special values", []float32{
			math.Pi, -2.71, 0, negZero, 1.41, -99.9, 42, inf, negInf, math.MaxFloat32, -math.MaxFloat32},
			network.Descending),
	}
}

// runScenarios runs all scenarios with backend, prints a report and returns the number of failures.
func runScenarios(backend backends.Backend) (failed int) {
	fmt.Println(titleStyle.Render("Scenarios"))
	table := newPlainTable(lipgloss.Right, lipgloss.Left, lipgloss.Left, lipgloss.Right, lipgloss.Right, lipgloss.Center, lipgloss.Left).
		Headers("#", "Scenario", "Order", "Elements", "Time", "Result", "Sorted")
	for ii, s := range allScenarios() {
		r := s.run(backend)
		status := passedStyle.Render("PASSED")
		if !r.passed {
			failed++
			status = failedStyle.Render("FAILED")
			if r.err != nil {
				fmt.Printf("Scenario %q failed: %+v\n", s.name, r.err)
			}
		}
		table.Row(fmt.Sprint(ii+1), s.name, r.order.String(), humanize.Comma(int64(r.numElements)),
			r.elapsed.Round(time.Microsecond).String(), status, r.after)
		fmt.Printf("%d. %s\n\tbefore: %s\n\tafter:  %s\n", ii+1, s.name, r.before, r.after)
	}
	fmt.Println(table.Render())
	return failed
}
