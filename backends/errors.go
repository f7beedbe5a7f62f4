// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package backends

import (
	"fmt"

	"github.com/gomlx/bitonic/pkg/core/network"
	"github.com/pkg/errors"
)

var (
	// ErrNotRegistered is returned (wrapped) when the requested backend was not registered.
	ErrNotRegistered = errors.New("backend not registered")

	// ErrFinalized is returned (wrapped) when a finalized backend is used.
	ErrFinalized = errors.New("backend already finalized")

	// ErrInvalidParams is returned (wrapped) when a pass is requested with invalid parameters or
	// with a buffer whose length doesn't match them.
	ErrInvalidParams = errors.New("invalid pass parameters")
)

// InitializationError is returned when a backend can't be created: the backend resource is not
// available or its configuration is invalid. It is never retried automatically.
type InitializationError struct {
	Backend string
	Err     error
}

func (e *InitializationError) Error() string {
	if e.Backend == "" {
		return fmt.Sprintf("failed to initialize backend: %v", e.Err)
	}
	return fmt.Sprintf("failed to initialize backend %q: %v", e.Backend, e.Err)
}

func (e *InitializationError) Unwrap() error { return e.Err }

// PassExecutionError is returned when a backend fails to execute a pass. It is fatal to the current
// sort: the buffer is left in an undefined state.
type PassExecutionError struct {
	Backend string
	Params  network.Params
	Err     error
}

func (e *PassExecutionError) Error() string {
	return fmt.Sprintf("backend %q failed to execute pass %s: %v", e.Backend, e.Params, e.Err)
}

func (e *PassExecutionError) Unwrap() error { return e.Err }

// NewPassExecutionError wraps err as a *PassExecutionError, adding a stack trace.
func NewPassExecutionError(backend string, params network.Params, err error) *PassExecutionError {
	return &PassExecutionError{Backend: backend, Params: params, Err: errors.WithStack(err)}
}

// CheckPass returns an error wrapping ErrInvalidParams if params are not valid or if the buffer
// length doesn't match params.NumElements. Backends call it at the start of ExecutePass.
func CheckPass(buffer []uint32, params network.Params) error {
	if err := params.Validate(); err != nil {
		return errors.WithMessage(ErrInvalidParams, err.Error())
	}
	if uint64(len(buffer)) != uint64(params.NumElements) {
		return errors.WithMessagef(ErrInvalidParams, "buffer has %d elements, params require %d",
			len(buffer), params.NumElements)
	}
	return nil
}
