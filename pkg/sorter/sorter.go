// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package sorter sorts slices of numeric values with a bitonic sorting network executed by a
// backends.Backend.
//
// The values are encoded into order-preserving uint32 words (see package keys), padded to the next
// power of two (see network.Pad), sorted by issuing every pass of the network to the backend, one at
// a time and in order, and finally truncated and decoded back into the input slice.
//
// The sort is not stable, and NaN values are not supported.
//
// Example:
//
//	import _ "github.com/gomlx/bitonic/backends/default"
//
//	backend := backends.MustNew()
//	defer backend.Finalize()
//	data := []float32{3.14, -2.71, 0, 42}
//	if err := sorter.Sort(backend, data, network.Ascending); err != nil { ... }
package sorter

import (
	"context"

	"github.com/gomlx/bitonic/backends"
	"github.com/gomlx/bitonic/pkg/core/keys"
	"github.com/gomlx/bitonic/pkg/core/network"
	"github.com/gomlx/exceptions"
	"github.com/pkg/errors"
)

// MaxElements is the largest slice that can be sorted: the padded length must fit a uint32.
const MaxElements = 1 << 31

// ErrTooLarge is returned (wrapped) for slices with more than MaxElements values.
var ErrTooLarge = errors.New("too many elements to sort")

// Sort data in place, in the given order, using backend to execute the passes of the network.
//
// Slices of length 0 or 1 are returned as is, without using the backend.
//
// Errors from the backend are returned as *backends.PassExecutionError, and the remaining passes
// are not executed. In case of error the contents of data are left unchanged, but callers should
// not rely on that.
func Sort[T keys.Key](backend backends.Backend, data []T, order network.SortOrder) error {
	return SortContext(context.Background(), backend, data, order)
}

// SortContext is like Sort, but checks ctx between passes, returning ctx.Err() (wrapped) if it
// is done. A pass already running is never interrupted.
func SortContext[T keys.Key](ctx context.Context, backend backends.Backend, data []T, order network.SortOrder) error {
	if len(data) <= 1 {
		return nil
	}
	if backend == nil {
		return errors.New("sorter: nil backend")
	}
	if _, err := network.SortOrderFromCode(order.Code()); err != nil {
		return err
	}
	if uint64(len(data)) > MaxElements {
		return errors.WithMessagef(ErrTooLarge, "%d elements given, max is %d", len(data), MaxElements)
	}

	codec := keys.CodecFor[T]()
	buffer := make([]uint32, len(data), network.NextPowerOfTwo(len(data)))
	keys.EncodeSlice(buffer, data)
	buffer = network.Pad(buffer, order, codec.MaxWord(), codec.MinWord())

	for step := range network.Steps(len(buffer)) {
		if err := ctx.Err(); err != nil {
			return errors.Wrapf(err, "sort interrupted before %s", step)
		}
		params := network.Params{
			NumElements: uint32(len(buffer)),
			Stage:       step.Stage,
			Pass:        step.Pass,
			Order:       order,
		}
		if err := executePass(backend, buffer, params); err != nil {
			return err
		}
	}
	keys.DecodeSlice(data, buffer[:len(data)])
	return nil
}

// executePass runs one pass, converting any failure (including a panic) of the backend into a
// *backends.PassExecutionError.
func executePass(backend backends.Backend, buffer []uint32, params network.Params) (err error) {
	exception := exceptions.Try(func() {
		err = backend.ExecutePass(buffer, params)
	})
	if exception != nil {
		panicErr, ok := exception.(error)
		if !ok {
			panicErr = errors.Errorf("%v", exception)
		}
		return backends.NewPassExecutionError(backend.Name(), params, errors.WithMessage(panicErr, "backend panicked"))
	}
	if err != nil {
		var passErr *backends.PassExecutionError
		if errors.As(err, &passErr) {
			return err
		}
		return backends.NewPassExecutionError(backend.Name(), params, err)
	}
	return nil
}

// IsSorted returns whether data is sorted in the given order. Equal values (including -0.0 and
// +0.0) can be in any relative position.
func IsSorted[T keys.Key](data []T, order network.SortOrder) bool {
	for ii := 1; ii < len(data); ii++ {
		c := keys.Compare(data[ii-1], data[ii])
		if (order == network.Ascending && c > 0) || (order == network.Descending && c < 0) {
			return false
		}
	}
	return true
}
