// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package network

import (
	"iter"
	"math/bits"

	"github.com/pkg/errors"
)

// NumStages returns log2(n) for a power-of-two n, and 0 for n <= 1.
func NumStages(n int) int {
	if n <= 1 {
		return 0
	}
	return bits.Len(uint(n)) - 1
}

// NumSteps returns the total number of passes of the network for n elements: s*(s+1)/2 with s = NumStages(n).
func NumSteps(n int) int {
	s := NumStages(n)
	return s * (s + 1) / 2
}

// Steps iterates over the (stage, pass) schedule for n elements, where n is a power of two.
//
// Stages go from 0 to NumStages(n)-1 and, within each stage, passes go from 0 to stage (inclusive).
// The order matters: each pass reads what the previous one wrote.
func Steps(n int) iter.Seq[Step] {
	numStages := NumStages(n)
	return func(yield func(Step) bool) {
		for stage := range numStages {
			for pass := 0; pass <= stage; pass++ {
				if !yield(Step{Stage: Stage(stage), Pass: Pass(pass)}) {
					return
				}
			}
		}
	}
}

// Schedule returns the materialized sequence of steps for n elements.
// It returns an error if n is not a power of two (n == 0 included).
func Schedule(n int) ([]Step, error) {
	if !IsPowerOfTwo(n) {
		return nil, errors.Errorf("bitonic schedule requires a power-of-two number of elements, got %d", n)
	}
	steps := make([]Step, 0, NumSteps(n))
	for step := range Steps(n) {
		steps = append(steps, step)
	}
	return steps, nil
}
