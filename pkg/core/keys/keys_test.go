// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package keys

import (
	"math"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/x448/float16"
	"golang.org/x/exp/rand"
)

// checkOrderPreserved verifies that for every pair of consecutive values (sorted by less) the encoding
// is strictly increasing when the values are strictly ordered, and never decreasing otherwise.
func checkOrderPreserved[T Key](t *testing.T, values []T, less func(a, b T) bool) {
	t.Helper()
	codec := CodecFor[T]()
	values = slices.Clone(values)
	slices.SortStableFunc(values, func(a, b T) int {
		if less(a, b) {
			return -1
		} else if less(b, a) {
			return 1
		}
		return 0
	})
	for ii := 1; ii < len(values); ii++ {
		a, b := values[ii-1], values[ii]
		ea, eb := codec.Encode(a), codec.Encode(b)
		if less(a, b) {
			require.Lessf(t, ea, eb, "Encode(%v)=%#x should be < Encode(%v)=%#x", a, ea, b, eb)
		} else {
			// Equal under the natural order (e.g.: -0.0 and 0.0): they must stay adjacent.
			diff := int64(ea) - int64(eb)
			require.Truef(t, diff >= -1 && diff <= 1,
				"equal values %v and %v should have adjacent encodings, got %#x and %#x", a, b, ea, eb)
		}
	}
}

func lessOrdered[T uint8 | int8 | uint16 | int16 | uint32 | int32 | float32](a, b T) bool { return a < b }

func TestSmallIntegersExhaustive(t *testing.T) {
	t.Run("uint8", func(t *testing.T) {
		var values []uint8
		for v := 0; v <= math.MaxUint8; v++ {
			values = append(values, uint8(v))
			require.Equal(t, uint8(v), DecodeUint8(EncodeUint8(uint8(v))))
		}
		checkOrderPreserved(t, values, lessOrdered[uint8])
	})
	t.Run("int8", func(t *testing.T) {
		var values []int8
		for v := math.MinInt8; v <= math.MaxInt8; v++ {
			values = append(values, int8(v))
			require.Equal(t, int8(v), DecodeInt8(EncodeInt8(int8(v))))
		}
		checkOrderPreserved(t, values, lessOrdered[int8])
		assert.Equal(t, uint32(0), EncodeInt8(math.MinInt8))
		assert.Equal(t, uint32(0xFF), EncodeInt8(math.MaxInt8))
	})
	t.Run("uint16", func(t *testing.T) {
		var values []uint16
		for v := 0; v <= math.MaxUint16; v++ {
			values = append(values, uint16(v))
			require.Equal(t, uint16(v), DecodeUint16(EncodeUint16(uint16(v))))
		}
		checkOrderPreserved(t, values, lessOrdered[uint16])
	})
	t.Run("int16", func(t *testing.T) {
		var values []int16
		for v := math.MinInt16; v <= math.MaxInt16; v++ {
			values = append(values, int16(v))
			require.Equal(t, int16(v), DecodeInt16(EncodeInt16(int16(v))))
		}
		checkOrderPreserved(t, values, lessOrdered[int16])
	})
}

func TestInt32(t *testing.T) {
	assert.Equal(t, uint32(0), EncodeInt32(math.MinInt32))
	assert.Equal(t, uint32(0x7FFFFFFF), EncodeInt32(-1))
	assert.Equal(t, uint32(0x80000000), EncodeInt32(0))
	assert.Equal(t, uint32(math.MaxUint32), EncodeInt32(math.MaxInt32))

	rng := rand.New(rand.NewSource(42))
	values := []int32{math.MinInt32, math.MinInt32 + 1, -1, 0, 1, math.MaxInt32 - 1, math.MaxInt32}
	for range 10_000 {
		values = append(values, int32(rng.Uint32()))
	}
	for _, v := range values {
		require.Equal(t, v, DecodeInt32(EncodeInt32(v)))
	}
	checkOrderPreserved(t, values, lessOrdered[int32])
}

func TestUint32(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	values := []uint32{0, 1, math.MaxUint32 - 1, math.MaxUint32}
	for range 10_000 {
		values = append(values, rng.Uint32())
	}
	for _, v := range values {
		require.Equal(t, v, DecodeUint32(EncodeUint32(v)))
	}
	checkOrderPreserved(t, values, lessOrdered[uint32])
}

func TestFloat32(t *testing.T) {
	negZero := float32(math.Copysign(0, -1))
	special := []float32{
		float32(math.Inf(-1)), -math.MaxFloat32, -1e10, -99.9, -2.71, -1, -math.SmallestNonzeroFloat32,
		negZero, 0, math.SmallestNonzeroFloat32, 1e-10, 0.1, 1.41, math.Pi, 42, math.MaxFloat32,
		float32(math.Inf(1)),
	}
	for ii, v := range special {
		require.Equal(t, math.Float32bits(v), math.Float32bits(DecodeFloat32(EncodeFloat32(v))),
			"round trip of %g", v)
		if ii > 0 && special[ii-1] < v {
			require.Less(t, EncodeFloat32(special[ii-1]), EncodeFloat32(v))
		}
	}

	// -0.0 and 0.0 are adjacent.
	assert.Equal(t, EncodeFloat32(negZero)+1, EncodeFloat32(0))
	assert.Equal(t, uint32(0x007FFFFF), EncodeFloat32(float32(math.Inf(-1))))
	assert.Equal(t, uint32(0xFF800000), EncodeFloat32(float32(math.Inf(1))))

	rng := rand.New(rand.NewSource(11))
	values := slices.Clone(special)
	for len(values) < 20_000 {
		v := math.Float32frombits(rng.Uint32())
		if math.IsNaN(float64(v)) {
			// NaN is not supported.
			continue
		}
		values = append(values, v)
	}
	for _, v := range values {
		require.Equal(t, math.Float32bits(v), math.Float32bits(DecodeFloat32(EncodeFloat32(v))))
	}
	checkOrderPreserved(t, values, lessOrdered[float32])
}

func TestFloat16Exhaustive(t *testing.T) {
	var values []float16.Float16
	for bits := 0; bits <= math.MaxUint16; bits++ {
		v := float16.Frombits(uint16(bits))
		if v.IsNaN() {
			continue
		}
		values = append(values, v)
		require.Equal(t, v.Bits(), DecodeFloat16(EncodeFloat16(v)).Bits())
		require.Zero(t, EncodeFloat16(v)>>16, "float16 encoding must only use the low 16 bits")
	}
	checkOrderPreserved(t, values, func(a, b float16.Float16) bool { return a.Float32() < b.Float32() })
}

func TestCodecFor(t *testing.T) {
	f32 := CodecFor[float32]()
	assert.True(t, math.IsInf(float64(f32.Max), 1))
	assert.True(t, math.IsInf(float64(f32.Min), -1))
	assert.Equal(t, EncodeFloat32(float32(math.Inf(1))), f32.MaxWord())
	assert.Equal(t, EncodeFloat32(float32(math.Inf(-1))), f32.MinWord())

	i32 := CodecFor[int32]()
	assert.Equal(t, uint32(math.MaxUint32), i32.MaxWord())
	assert.Equal(t, uint32(0), i32.MinWord())

	u32 := CodecFor[uint32]()
	assert.Equal(t, uint32(math.MaxUint32), u32.MaxWord())
	assert.Equal(t, uint32(0), u32.MinWord())

	f16 := CodecFor[float16.Float16]()
	assert.True(t, f16.Max.IsInf(1))
	assert.True(t, f16.Min.IsInf(-1))
	assert.Equal(t, uint32(math.MaxUint8), CodecFor[uint8]().MaxWord())
	assert.Equal(t, uint32(0), CodecFor[int16]().MinWord())
}

func TestSlices(t *testing.T) {
	input := []int32{-42, 7, -999, 0, 13, -256, 128, -1}
	words := make([]uint32, len(input)+2)
	EncodeSlice(words, input)
	for ii, v := range input {
		assert.Equal(t, EncodeInt32(v), words[ii])
	}
	output := make([]int32, len(input))
	DecodeSlice(output, words)
	assert.Equal(t, input, output)
}

func TestCompare(t *testing.T) {
	assert.Equal(t, -1, Compare[int32](-5, 3))
	assert.Equal(t, 1, Compare[uint8](200, 3))
	assert.Equal(t, 0, Compare[int16](-7, -7))
	negZero := float32(math.Copysign(0, -1))
	assert.Equal(t, 0, Compare(negZero, float32(0)))
	assert.Equal(t, -1, Compare(float32(math.Inf(-1)), float32(-1e30)))
	assert.Equal(t, 1, Compare(float16.Fromfloat32(2.5), float16.Fromfloat32(-2.5)))
	assert.Equal(t, 0, Compare(float16.Fromfloat32(float32(math.Copysign(0, -1))), float16.Fromfloat32(0)))
}
