// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package network defines the bitonic sorting network: the sort order, the (stage, pass) steps,
// the parameters of one compare-exchange pass, the schedule of passes and the padding of inputs
// to a power-of-two length.
//
// Everything here works on the encoded representation (see package keys): buffers of uint32 words.
// The schedule only depends on the number of elements, never on the data, and it is the same for
// every backend.
package network

import (
	"fmt"
	"math/bits"

	"github.com/pkg/errors"
)

// SortOrder of the output.
type SortOrder uint32

const (
	Ascending  SortOrder = 0
	Descending SortOrder = 1
)

// String implements fmt.Stringer.
func (o SortOrder) String() string {
	switch o {
	case Ascending:
		return "ascending"
	case Descending:
		return "descending"
	default:
		return fmt.Sprintf("SortOrder(%d)", uint32(o))
	}
}

// Code returns the 1-bit integer code of the order: 0 for Ascending and 1 for Descending.
// This is the value passed to device kernels.
func (o SortOrder) Code() uint32 { return uint32(o) }

// SortOrderFromCode is the inverse of SortOrder.Code. It fails for codes other than 0 or 1.
func SortOrderFromCode(code uint32) (SortOrder, error) {
	switch code {
	case 0:
		return Ascending, nil
	case 1:
		return Descending, nil
	}
	return Ascending, errors.Errorf("invalid sort order code %d, only 0 (ascending) or 1 (descending) are valid", code)
}

// CompareDirection of one bitonic subsequence.
type CompareDirection uint8

const (
	Up CompareDirection = iota
	Down
)

// IsAscending returns whether the direction is Up.
func (d CompareDirection) IsAscending() bool { return d == Up }

func (d CompareDirection) String() string {
	if d == Up {
		return "up"
	}
	return "down"
}

// Stage identifies the merge level of the network, from 0 to log2(n)-1.
type Stage uint32

// Pass identifies the sub-step within a Stage, from 0 to the stage number (inclusive).
type Pass uint32

// Step is one (stage, pass) pair of the schedule.
type Step struct {
	Stage Stage
	Pass  Pass
}

func (s Step) String() string { return fmt.Sprintf("stage=%d/pass=%d", s.Stage, s.Pass) }

// Params of one compare-exchange pass. It fully determines, for every index, its partner and the
// direction of the comparison.
//
// The field layout matches what the device kernels receive: four uint32 values.
type Params struct {
	NumElements uint32
	Stage       Stage
	Pass        Pass
	Order       SortOrder
}

// Step returns the (stage, pass) of the parameters.
func (p Params) Step() Step { return Step{Stage: p.Stage, Pass: p.Pass} }

func (p Params) String() string {
	return fmt.Sprintf("{n=%d, stage=%d, pass=%d, order=%s}", p.NumElements, p.Stage, p.Pass, p.Order)
}

// Distance between an index and its partner in this pass: 1 << (stage - pass).
func (p Params) Distance() uint32 {
	return uint32(1) << (uint32(p.Stage) - uint32(p.Pass))
}

// BlockSize is the length of the bitonic subsequences merged in this stage: 2 << stage.
// Indices whose block-size bit is set belong to a "down" subsequence.
func (p Params) BlockSize() uint64 {
	return uint64(2) << uint64(p.Stage)
}

// Direction of the comparison for the lower index i of a pair, taking the global order into account.
func (p Params) Direction(i uint32) CompareDirection {
	up := uint64(i)&p.BlockSize() == 0
	if p.Order == Descending {
		up = !up
	}
	if up {
		return Up
	}
	return Down
}

// Validate checks that the parameters describe a pass of a valid network:
// NumElements must be a power of two >= 2, the stage smaller than log2(NumElements), the pass at most
// the stage, and the order either Ascending or Descending.
func (p Params) Validate() error {
	if p.NumElements < 2 || bits.OnesCount32(p.NumElements) != 1 {
		return errors.Errorf("invalid params %s: number of elements must be a power of two >= 2", p)
	}
	numStages := uint32(bits.TrailingZeros32(p.NumElements))
	if uint32(p.Stage) >= numStages {
		return errors.Errorf("invalid params %s: stage must be < %d", p, numStages)
	}
	if p.Pass > Pass(p.Stage) {
		return errors.Errorf("invalid params %s: pass must be <= stage", p)
	}
	if p.Order != Ascending && p.Order != Descending {
		return errors.Errorf("invalid params %s: invalid sort order", p)
	}
	return nil
}
