// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package sorter

import (
	"context"
	"fmt"
	"math"
	"slices"
	"testing"

	"github.com/gomlx/bitonic/backends"
	_ "github.com/gomlx/bitonic/backends/default"
	"github.com/gomlx/bitonic/backends/metrics"
	"github.com/gomlx/bitonic/pkg/core/keys"
	"github.com/gomlx/bitonic/pkg/core/network"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/x448/float16"
	"golang.org/x/exp/rand"
	"k8s.io/klog/v2"
)

func init() {
	klog.InitFlags(nil)
}

// forEachBackend runs testFn for every registered backend, plus one decorated with metrics.
func forEachBackend(t *testing.T, testFn func(t *testing.T, backend backends.Backend)) {
	for _, name := range backends.List() {
		t.Run(name, func(t *testing.T) {
			backend, err := backends.NewWithConfig(name)
			require.NoError(t, err)
			defer backend.Finalize()
			testFn(t, backend)
		})
	}
	t.Run("metrics", func(t *testing.T) {
		inner, err := backends.NewWithConfig("go")
		require.NoError(t, err)
		backend, err := metrics.Wrap(inner, prometheus.NewRegistry())
		require.NoError(t, err)
		defer backend.Finalize()
		testFn(t, backend)
	})
}

func TestRegisteredBackends(t *testing.T) {
	names := backends.List()
	require.Contains(t, names, "go")
	require.Contains(t, names, "wasm")
	assert.Equal(t, "go", names[0], "go must be the default backend")
}

func TestScenarios(t *testing.T) {
	forEachBackend(t, func(t *testing.T, backend backends.Backend) {
		u32 := []uint32{42, 7, 999, 0, 13, 256, 128, 511}
		require.NoError(t, Sort(backend, u32, network.Ascending))
		assert.Equal(t, []uint32{0, 7, 13, 42, 128, 256, 511, 999}, u32)

		i32 := []int32{-42, 7, -999, 0, 13, -256, 128, -1}
		require.NoError(t, Sort(backend, i32, network.Ascending))
		assert.Equal(t, []int32{-999, -256, -42, -1, 0, 7, 13, 128}, i32)

		u32 = []uint32{42, 7, 999, 0, 13, 256, 128, 511}
		require.NoError(t, Sort(backend, u32, network.Descending))
		assert.Equal(t, []uint32{999, 511, 256, 128, 42, 13, 7, 0}, u32)

		negZero := float32(math.Copysign(0, -1))
		f32 := []float32{math.Pi, -2.71, 0, negZero, 1.41, -99.9, 42, float32(math.Inf(1)), float32(math.Inf(-1))}
		require.NoError(t, Sort(backend, f32, network.Ascending))
		require.Len(t, f32, 9)
		assert.True(t, math.IsInf(float64(f32[0]), -1))
		assert.True(t, math.IsInf(float64(f32[8]), 1))
		assert.Equal(t, []float32{-99.9, -2.71}, f32[1:3])
		assert.Equal(t, float32(0), f32[3])
		assert.Equal(t, float32(0), f32[4])
		assert.NotEqual(t, math.Signbit(float64(f32[3])), math.Signbit(float64(f32[4])), "-0.0 and 0.0 must be adjacent")
		assert.Equal(t, []float32{1.41, math.Pi, 42}, f32[5:8])
		assert.True(t, IsSorted(f32, network.Ascending))
	})
}

func TestTrivialLengths(t *testing.T) {
	fake := &fakeBackend{failAt: 0}
	require.NoError(t, Sort(fake, []int32{}, network.Ascending))
	require.NoError(t, Sort[float32](fake, nil, network.Descending))
	single := []uint16{7}
	require.NoError(t, Sort(fake, single, network.Ascending))
	assert.Equal(t, []uint16{7}, single)
	assert.Empty(t, fake.calls, "backend must not be used for length <= 1")
	require.NoError(t, Sort[int8](nil, []int8{1}, network.Ascending))
}

// checkSort sorts a copy of input in both orders with backend and compares with slices.SortFunc.
func checkSort[T keys.Key](t *testing.T, backend backends.Backend, input []T) {
	for _, order := range []network.SortOrder{network.Ascending, network.Descending} {
		data := slices.Clone(input)
		require.NoError(t, Sort(backend, data, order))
		require.Len(t, data, len(input))
		require.Truef(t, IsSorted(data, order), "%T not sorted %s", input, order)

		// Permutation: same multiset of values.
		want := slices.Clone(input)
		slices.SortFunc(want, keys.Compare[T])
		got := slices.Clone(data)
		slices.SortFunc(got, keys.Compare[T])
		for ii := range want {
			require.Zerof(t, keys.Compare(want[ii], got[ii]), "%T values changed sorting %s", input, order)
		}

		// Idempotence.
		again := slices.Clone(data)
		require.NoError(t, Sort(backend, again, order))
		require.Equal(t, data, again)
	}
}

func TestRandomInputs(t *testing.T) {
	forEachBackend(t, func(t *testing.T, backend backends.Backend) {
		rng := rand.New(rand.NewSource(1000))
		for _, n := range []int{2, 3, 5, 17, 255, 256, 1000, 4097} {
			t.Run(fmt.Sprintf("n=%d", n), func(t *testing.T) {
				u32 := make([]uint32, n)
				i32 := make([]int32, n)
				f32 := make([]float32, n)
				u8 := make([]uint8, n)
				i16 := make([]int16, n)
				f16 := make([]float16.Float16, n)
				for ii := range n {
					u32[ii] = rng.Uint32()
					i32[ii] = int32(rng.Uint32())
					f32[ii] = float32(rng.NormFloat64() * 1000)
					u8[ii] = uint8(rng.Intn(256))
					i16[ii] = int16(rng.Intn(1<<16) - 1<<15)
					f16[ii] = float16.Fromfloat32(float32(rng.NormFloat64()))
				}
				checkSort(t, backend, u32)
				checkSort(t, backend, i32)
				checkSort(t, backend, f32)
				checkSort(t, backend, u8)
				checkSort(t, backend, i16)
				checkSort(t, backend, f16)
			})
		}
	})
}

func TestExtremeValues(t *testing.T) {
	forEachBackend(t, func(t *testing.T, backend backends.Backend) {
		// Values equal to the padding sentinels must not be confused with padding.
		u32 := []uint32{math.MaxUint32, 0, math.MaxUint32, 5, 0}
		require.NoError(t, Sort(backend, u32, network.Ascending))
		assert.Equal(t, []uint32{0, 0, 5, math.MaxUint32, math.MaxUint32}, u32)
		require.NoError(t, Sort(backend, u32, network.Descending))
		assert.Equal(t, []uint32{math.MaxUint32, math.MaxUint32, 5, 0, 0}, u32)

		i32 := []int32{math.MaxInt32, math.MinInt32, 0, -1, math.MaxInt32, 1}
		require.NoError(t, Sort(backend, i32, network.Descending))
		assert.Equal(t, []int32{math.MaxInt32, math.MaxInt32, 1, 0, -1, math.MinInt32}, i32)
	})
}

func TestSortPassSequence(t *testing.T) {
	fake := &fakeBackend{failAt: -1, panicAt: -1}
	data := []int32{5, -3, 8, 1, 0, 2, 9, -7, 4, 6, 3}
	require.NoError(t, Sort(fake, data, network.Descending))
	assert.Equal(t, []int32{9, 8, 6, 5, 4, 3, 2, 1, 0, -3, -7}, data)

	wantSteps, err := network.Schedule(16)
	require.NoError(t, err)
	require.Len(t, fake.calls, len(wantSteps))
	for ii, params := range fake.calls {
		assert.Equal(t, uint32(16), params.NumElements)
		assert.Equal(t, network.Descending, params.Order)
		assert.Equal(t, wantSteps[ii], params.Step())
	}
}

func TestPassFailure(t *testing.T) {
	fake := &fakeBackend{failAt: 2, panicAt: -1}
	data := []uint32{4, 3, 2, 1}
	err := Sort(fake, data, network.Ascending)
	require.Error(t, err)
	var passErr *backends.PassExecutionError
	require.ErrorAs(t, err, &passErr)
	assert.Equal(t, "fake", passErr.Backend)
	assert.Equal(t, network.Step{Stage: 1, Pass: 1}, passErr.Params.Step())
	require.ErrorIs(t, err, errDeviceLost)
	assert.Len(t, fake.calls, 3, "no passes must be issued after a failure")

	fake = &fakeBackend{failAt: -1, panicAt: 1}
	err = Sort(fake, []float32{2, 1, 4, 3}, network.Ascending)
	require.ErrorAs(t, err, &passErr)
	assert.Contains(t, err.Error(), "panicked")
	assert.Len(t, fake.calls, 2)
}

func TestSortContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	fake := &fakeBackend{failAt: -1, panicAt: -1, onPass: cancel}
	err := SortContext(ctx, fake, []uint32{4, 3, 2, 1, 0}, network.Ascending)
	require.ErrorIs(t, err, context.Canceled)
	assert.Len(t, fake.calls, 1, "the running pass completes, the next is not started")
}

func TestInvalidOrder(t *testing.T) {
	err := Sort(&fakeBackend{}, []uint32{2, 1}, network.SortOrder(7))
	require.Error(t, err)
}

func TestIsSorted(t *testing.T) {
	assert.True(t, IsSorted([]int32{}, network.Ascending))
	assert.True(t, IsSorted([]int32{-1, -1, 0, 3}, network.Ascending))
	assert.False(t, IsSorted([]int32{-1, -1, 0, 3}, network.Descending))
	assert.True(t, IsSorted([]uint8{9, 9, 3, 0}, network.Descending))
	negZero := float32(math.Copysign(0, -1))
	assert.True(t, IsSorted([]float32{-1, 0, negZero, 2}, network.Ascending))
	assert.True(t, IsSorted([]float32{2, negZero, 0, -1}, network.Descending))
	assert.False(t, IsSorted([]float32{2, 3}, network.Descending))
}

var errDeviceLost = errors.New("device lost")

// fakeBackend executes passes on the CPU, recording them, and can be made to fail or panic on
// the pass with the given index (-1 to never fail).
type fakeBackend struct {
	calls   []network.Params
	failAt  int
	panicAt int
	onPass  func()
}

var _ backends.Backend = &fakeBackend{}

func (b *fakeBackend) Name() string        { return "fake" }
func (b *fakeBackend) Description() string { return "fake backend for tests" }
func (b *fakeBackend) Info() backends.Info { return backends.Info{Host: "test"} }
func (b *fakeBackend) Finalize()           {}

func (b *fakeBackend) ExecutePass(buffer []uint32, params network.Params) error {
	idx := len(b.calls)
	b.calls = append(b.calls, params)
	if idx == b.failAt {
		return errDeviceLost
	}
	if idx == b.panicAt {
		panic(errors.Errorf("kernel launch rejected at pass %d", idx))
	}
	network.ApplyRange(buffer, params, 0, params.NumElements)
	if b.onPass != nil {
		b.onPass()
	}
	return nil
}
