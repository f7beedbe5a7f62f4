// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package backends defines the interface a compute substrate needs to implement to execute the
// passes of a bitonic sorting network, and a registry of the available implementations.
//
// A Backend only knows how to run one compare-exchange pass (see network.Params) over a buffer of
// encoded uint32 words. Encoding, padding and scheduling are done by the caller (see package sorter),
// and are identical for every backend.
//
// Backends register themselves during package initialization, so to make one available simply import
// it, e.g.:
//
//	import _ "github.com/gomlx/bitonic/backends/default"
package backends

import (
	stderrors "errors"
	"os"
	"slices"
	"strings"
	"sync"

	"github.com/gomlx/bitonic/pkg/core/network"
	"github.com/gomlx/exceptions"
	"github.com/pkg/errors"
)

// Backend is the API that needs to be implemented by a pass executor.
type Backend interface {
	// Name returns the short name of the backend. E.g.: "go" for the SimpleGo CPU backend.
	Name() string

	// Description is a longer description of the Backend that can be used to pretty-print.
	Description() string

	// Info describes where the backend runs. It is informational only.
	Info() Info

	// ExecutePass runs one compare-exchange pass over buffer, in place.
	//
	// len(buffer) must be equal to params.NumElements. The backend may only use buffer during the call:
	// it must not keep any reference to it after returning.
	//
	// When it fails, the contents of buffer are undefined. The error should be a *PassExecutionError.
	ExecutePass(buffer []uint32, params network.Params) error

	// Finalize releases all the associated resources immediately, and makes the backend invalid.
	Finalize()
}

// Info describes the host and device of a backend.
type Info struct {
	// Host is the library or runtime hosting the computation, e.g.: "go" or "wazero".
	Host string

	// Backend, Adapter and Driver are optional (empty if not known).
	Backend, Adapter, Driver string
}

// Constructor takes a config string (optionally empty) and returns a Backend.
type Constructor func(config string) (Backend, error)

var (
	muRegistry             sync.Mutex
	registeredConstructors = make(map[string]Constructor)
	registrationOrder      []string
)

// Register backend with the given name, and a default constructor that takes as input a configuration string that is
// passed along to the backend constructor.
//
// To be safe, call Register during initialization of a package.
func Register(name string, constructor Constructor) {
	muRegistry.Lock()
	defer muRegistry.Unlock()
	if _, found := registeredConstructors[name]; !found {
		registrationOrder = append(registrationOrder, name)
	}
	registeredConstructors[name] = constructor
}

// List the names of the registered backends, in registration order.
func List() []string {
	muRegistry.Lock()
	defer muRegistry.Unlock()
	return slices.Clone(registrationOrder)
}

// DefaultConfig is the name of the default backend configuration to use if specified.
//
// See NewWithConfig for the format of the configuration string.
var DefaultConfig string

// ConfigEnvVar is the environment variable with the default backend configuration to use.
//
// The format of config is "<backend_name>:<backend_configuration>".
// The "<backend_name>" is the name of a registered backend (e.g.: "go") and
// "<backend_configuration>" is backend specific (e.g.: for the "go" backend, "parallelism=4").
const ConfigEnvVar = "BITONIC_BACKEND"

// New returns a new default Backend.
//
// The default is:
//
// 1. The environment ConfigEnvVar is used as a configuration if defined.
// 2. Next the variable DefaultConfig is used as a configuration if defined.
// 3. The first registered backend is used with an empty configuration.
func New() (Backend, error) {
	config, found := os.LookupEnv(ConfigEnvVar)
	if found {
		return NewWithConfig(config)
	}
	if DefaultConfig != "" {
		return NewWithConfig(DefaultConfig)
	}
	return NewWithConfig("")
}

// MustNew is like New, but panics (with a stack trace) on error.
func MustNew() Backend {
	backend, err := New()
	if err != nil {
		exceptions.Panicf("backends.MustNew(): %+v", err)
	}
	return backend
}

// NewWithConfig takes a configuration string formatted as "<backend_name>:<backend_configuration>".
//
// If only "<backend_name>" is given (without ":"), the backend configuration is empty.
// If config is empty, the first registered backend is used.
//
// Any error is returned as an *InitializationError. Falling back to a different backend is up to the
// caller, see NewFirstAvailable.
func NewWithConfig(config string) (Backend, error) {
	muRegistry.Lock()
	if len(registrationOrder) == 0 {
		muRegistry.Unlock()
		return nil, &InitializationError{Err: errors.WithMessage(ErrNotRegistered,
			`no registered backends -- maybe import the default ones with import _ "github.com/gomlx/bitonic/backends/default"?`)}
	}
	backendName, backendConfig := config, ""
	if idx := strings.Index(config, ":"); idx != -1 {
		backendName = config[:idx]
		backendConfig = config[idx+1:]
	}
	if backendName == "" {
		backendName = registrationOrder[0]
	}
	constructor, found := registeredConstructors[backendName]
	muRegistry.Unlock()
	if !found {
		return nil, &InitializationError{Backend: backendName, Err: errors.WithMessagef(ErrNotRegistered,
			"can't find backend %q for configuration %q given, registered backends are %q", backendName, config, List())}
	}
	backend, err := constructor(backendConfig)
	if err != nil {
		var initErr *InitializationError
		if errors.As(err, &initErr) {
			return nil, err
		}
		return nil, &InitializationError{Backend: backendName, Err: err}
	}
	return backend, nil
}

// NewFirstAvailable tries each configuration in order and returns the first backend that can be
// created. It is a caller-level fallback policy, e.g. NewFirstAvailable("wasm", "go").
//
// If all of them fail, it returns the errors of every attempt joined.
func NewFirstAvailable(configs ...string) (Backend, error) {
	if len(configs) == 0 {
		return New()
	}
	var errs []error
	for _, config := range configs {
		backend, err := NewWithConfig(config)
		if err == nil {
			return backend, nil
		}
		errs = append(errs, err)
	}
	return nil, errors.Wrap(stderrors.Join(errs...), "no backend available")
}
