// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package wasm implements a backend that runs the compare-exchange kernel as a WebAssembly module
// hosted by wazero.
//
// It behaves like an accelerator device: a process-wide "device context" (the wazero runtime and
// the compiled kernel) is created lazily on first use and reused by every Backend of the same
// engine. Each pass uploads the buffer into a freshly instantiated module's linear memory,
// dispatches one kernel call per workgroup of network.WorkgroupSize indices, and downloads the
// result. The instance is released when the pass ends, on success or failure.
//
// Configuration (comma-separated, e.g. "wasm:engine=interpreter,max_pages=1024"):
//
//   - engine: "auto" (default), "compiler" or "interpreter".
//   - max_pages: max number of 64KiB pages of linear memory a pass can use. Larger buffers fail
//     with a resource exhaustion error. Defaults to 65535 (just under 4GiB).
//   - max_instances: max number of passes (module instances) running simultaneously. 0 (default)
//     means unlimited.
package wasm

import (
	"context"
	"encoding/binary"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/gomlx/bitonic/backends"
	"github.com/gomlx/bitonic/pkg/core/network"
	"github.com/gomlx/bitonic/pkg/support/xsync"
	"github.com/gomlx/exceptions"
	"github.com/pkg/errors"
	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"k8s.io/klog/v2"
)

// BackendName to be used in BITONIC_BACKEND to specify this backend.
const BackendName = "wasm"

// PageSize of WebAssembly linear memory.
const PageSize = 64 * 1024

// MaxPages is the largest linear memory usable by a pass: addresses must fit 32 bits.
const MaxPages = 65535

// Engines supported by the "engine" option.
const (
	EngineAuto        = "auto"
	EngineCompiler    = "compiler"
	EngineInterpreter = "interpreter"
)

// ErrResourceExhausted is returned (wrapped) when a pass needs more memory than the backend allows.
var ErrResourceExhausted = errors.New("resource exhausted")

// Registers New() as the constructor for the "wasm" backend.
func init() {
	backends.Register(BackendName, New)
}

// deviceContext is the process-wide state shared by all backends of one engine.
type deviceContext struct {
	engine  string
	runtime wazero.Runtime
	kernel  wazero.CompiledModule
}

// deviceContexts are created at most once per engine: concurrent first uses all get the same
// context (or the same error).
var deviceContexts = map[string]func() (*deviceContext, error){
	EngineAuto:        sync.OnceValues(func() (*deviceContext, error) { return newDeviceContext(EngineAuto) }),
	EngineCompiler:    sync.OnceValues(func() (*deviceContext, error) { return newDeviceContext(EngineCompiler) }),
	EngineInterpreter: sync.OnceValues(func() (*deviceContext, error) { return newDeviceContext(EngineInterpreter) }),
}

func newDeviceContext(engine string) (device *deviceContext, err error) {
	var config wazero.RuntimeConfig
	switch engine {
	case EngineCompiler:
		// The compiler panics on platforms it doesn't support.
		if exception := exceptions.Try(func() { config = wazero.NewRuntimeConfigCompiler() }); exception != nil {
			return nil, errors.Errorf("wazero compiler not available on this platform: %v", exception)
		}
	case EngineInterpreter:
		config = wazero.NewRuntimeConfigInterpreter()
	default:
		config = wazero.NewRuntimeConfig()
	}
	config = config.WithMemoryLimitPages(MaxPages)

	ctx := context.Background()
	runtime := wazero.NewRuntimeWithConfig(ctx, config)
	kernel, err := runtime.CompileModule(ctx, KernelBinary())
	if err != nil {
		_ = runtime.Close(ctx)
		return nil, errors.Wrapf(err, "failed to compile bitonic kernel with engine %q", engine)
	}
	if _, found := kernel.ExportedFunctions()[KernelEntryPoint]; !found {
		_ = runtime.Close(ctx)
		return nil, errors.Errorf("bitonic kernel doesn't export %q", KernelEntryPoint)
	}
	klog.V(1).Infof("backend %q: created device context with engine %q", BackendName, engine)
	return &deviceContext{engine: engine, runtime: runtime, kernel: kernel}, nil
}

// New constructs a new wasm Backend from the configuration string.
func New(config string) (backends.Backend, error) {
	options, err := backends.ParseOptions(config, "engine", "max_pages", "max_instances")
	if err != nil {
		return nil, err
	}
	engine := options.String("engine", EngineAuto)
	getDevice, found := deviceContexts[engine]
	if !found {
		return nil, errors.Errorf("unknown engine %q, valid values are %q, %q or %q",
			engine, EngineAuto, EngineCompiler, EngineInterpreter)
	}
	maxPages, err := options.Int("max_pages", MaxPages)
	if err != nil {
		return nil, err
	}
	if maxPages < 1 || maxPages > MaxPages {
		return nil, errors.Errorf("max_pages must be in [1, %d], got %d", MaxPages, maxPages)
	}
	maxInstances, err := options.Int("max_instances", 0)
	if err != nil {
		return nil, err
	}
	device, err := getDevice()
	if err != nil {
		return nil, err
	}
	klog.V(1).Infof("backend %q: engine=%s, max_pages=%d, max_instances=%d", BackendName, engine, maxPages, maxInstances)
	return &Backend{
		device:    device,
		maxPages:  uint32(maxPages),
		instances: xsync.NewSemaphore(maxInstances),
	}, nil
}

// Backend implements the backends.Backend interface.
type Backend struct {
	device    *deviceContext
	maxPages  uint32
	instances *xsync.Semaphore
	finalized atomic.Bool
}

// Compile-time check that wasm.Backend implements backends.Backend.
var _ backends.Backend = &Backend{}

// Name returns the short name of the backend.
func (b *Backend) Name() string {
	return BackendName
}

// String implements fmt.Stringer.
func (b *Backend) String() string { return BackendName }

// Description is a longer description of the Backend that can be used to pretty-print.
func (b *Backend) Description() string {
	return fmt.Sprintf("WebAssembly kernel on wazero (engine=%s, max_pages=%d)", b.device.engine, b.maxPages)
}

// Info implements backends.Backend.
func (b *Backend) Info() backends.Info {
	return backends.Info{
		Host:    "wazero",
		Backend: "WebAssembly",
		Adapter: b.device.engine,
		Driver:  fmt.Sprintf("workgroup size %d", network.WorkgroupSize),
	}
}

// PagesFor returns the number of linear memory pages needed to hold numElements words.
func PagesFor(numElements uint32) uint64 {
	return (uint64(numElements)*4 + PageSize - 1) / PageSize
}

// ExecutePass implements backends.Backend.
func (b *Backend) ExecutePass(buffer []uint32, params network.Params) error {
	if b.finalized.Load() {
		return backends.NewPassExecutionError(BackendName, params, backends.ErrFinalized)
	}
	if err := backends.CheckPass(buffer, params); err != nil {
		return backends.NewPassExecutionError(BackendName, params, err)
	}
	pages := PagesFor(params.NumElements)
	if pages > uint64(b.maxPages) {
		return backends.NewPassExecutionError(BackendName, params, errors.WithMessagef(ErrResourceExhausted,
			"pass needs %d pages of memory, max_pages=%d", pages, b.maxPages))
	}
	b.instances.Acquire()
	defer b.instances.Release()
	if err := b.runPass(buffer, params, uint32(pages)); err != nil {
		return backends.NewPassExecutionError(BackendName, params, err)
	}
	return nil
}

// runPass instantiates the kernel, uploads buffer, dispatches all workgroups and downloads the
// result back into buffer.
func (b *Backend) runPass(buffer []uint32, params network.Params, pages uint32) error {
	ctx := context.Background()
	instance, err := b.device.runtime.InstantiateModule(ctx, b.device.kernel, wazero.NewModuleConfig().WithName(""))
	if err != nil {
		return errors.Wrap(err, "failed to instantiate kernel")
	}
	defer func() {
		if err := instance.Close(ctx); err != nil {
			klog.Warningf("backend %q: failed to release kernel instance: %+v", BackendName, err)
		}
	}()

	memory := instance.ExportedMemory(KernelMemory)
	if memory == nil {
		return errors.Errorf("kernel instance doesn't export %q", KernelMemory)
	}
	if current := memory.Size() / PageSize; current < pages {
		if _, ok := memory.Grow(pages - current); !ok {
			return errors.WithMessagef(ErrResourceExhausted, "failed to grow kernel memory to %d pages", pages)
		}
	}
	numBytes := uint32(len(buffer)) * 4
	view, ok := memory.Read(0, numBytes)
	if !ok {
		return errors.Errorf("failed to upload %d bytes to kernel memory", numBytes)
	}
	for i, word := range buffer {
		binary.LittleEndian.PutUint32(view[4*i:], word)
	}

	kernel := instance.ExportedFunction(KernelEntryPoint)
	if kernel == nil {
		return errors.Errorf("kernel instance doesn't export %q", KernelEntryPoint)
	}
	stack := make([]uint64, numKernelParams)
	for workgroup := range network.NumWorkgroups(params.NumElements) {
		stack[localNumElements] = api.EncodeU32(params.NumElements)
		stack[localStage] = api.EncodeU32(uint32(params.Stage))
		stack[localPass] = api.EncodeU32(uint32(params.Pass))
		stack[localOrder] = api.EncodeU32(params.Order.Code())
		stack[localWorkgroup] = api.EncodeU32(workgroup)
		if err := kernel.CallWithStack(ctx, stack); err != nil {
			return errors.Wrapf(err, "kernel failed on workgroup %d", workgroup)
		}
	}

	view, ok = memory.Read(0, numBytes)
	if !ok {
		return errors.Errorf("failed to download %d bytes from kernel memory", numBytes)
	}
	for i := range buffer {
		buffer[i] = binary.LittleEndian.Uint32(view[4*i:])
	}
	return nil
}

// Finalize makes the backend invalid. The device context is shared and lives until the process ends.
func (b *Backend) Finalize() {
	b.finalized.Store(true)
}
