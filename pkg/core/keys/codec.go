// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package keys

import (
	"cmp"
	"math"

	"github.com/x448/float16"
)

// Codec groups the encoding functions and the padding sentinels of one Key type.
type Codec[T Key] struct {
	// Encode converts a value to its order-preserving uint32 representation.
	Encode func(v T) uint32

	// Decode converts back from the uint32 representation.
	Decode func(w uint32) T

	// Max and Min are the largest and smallest values of the type, used to pad inputs.
	// For floating point types they are +Inf and -Inf.
	Max, Min T
}

// MaxWord returns the encoded Max sentinel.
func (c Codec[T]) MaxWord() uint32 { return c.Encode(c.Max) }

// MinWord returns the encoded Min sentinel.
func (c Codec[T]) MinWord() uint32 { return c.Encode(c.Min) }

// CodecFor returns the Codec for the type T.
func CodecFor[T Key]() Codec[T] {
	var zero T
	var codec any
	switch any(zero).(type) {
	case uint8:
		codec = Codec[uint8]{Encode: EncodeUint8, Decode: DecodeUint8, Max: math.MaxUint8, Min: 0}
	case int8:
		codec = Codec[int8]{Encode: EncodeInt8, Decode: DecodeInt8, Max: math.MaxInt8, Min: math.MinInt8}
	case uint16:
		codec = Codec[uint16]{Encode: EncodeUint16, Decode: DecodeUint16, Max: math.MaxUint16, Min: 0}
	case int16:
		codec = Codec[int16]{Encode: EncodeInt16, Decode: DecodeInt16, Max: math.MaxInt16, Min: math.MinInt16}
	case uint32:
		codec = Codec[uint32]{Encode: EncodeUint32, Decode: DecodeUint32, Max: math.MaxUint32, Min: 0}
	case int32:
		codec = Codec[int32]{Encode: EncodeInt32, Decode: DecodeInt32, Max: math.MaxInt32, Min: math.MinInt32}
	case float32:
		codec = Codec[float32]{Encode: EncodeFloat32, Decode: DecodeFloat32,
			Max: float32(math.Inf(1)), Min: float32(math.Inf(-1))}
	case float16.Float16:
		codec = Codec[float16.Float16]{Encode: EncodeFloat16, Decode: DecodeFloat16,
			Max: float16.Inf(1), Min: float16.Inf(-1)}
	}
	return codec.(Codec[T])
}

// EncodeSlice encodes src into dst, which must be at least as long as src.
func EncodeSlice[T Key](dst []uint32, src []T) {
	encode := CodecFor[T]().Encode
	for ii, v := range src {
		dst[ii] = encode(v)
	}
}

// DecodeSlice decodes the first len(dst) words of src into dst.
func DecodeSlice[T Key](dst []T, src []uint32) {
	decode := CodecFor[T]().Decode
	for ii := range dst {
		dst[ii] = decode(src[ii])
	}
}

// Compare returns -1, 0 or +1 depending on whether a is less, equal or greater than b, using the
// numeric order of T. Differently from comparing the encoded words, -0.0 and +0.0 compare equal.
func Compare[T Key](a, b T) int {
	switch a := any(a).(type) {
	case float32:
		return cmp.Compare(a, any(b).(float32))
	case float16.Float16:
		return cmp.Compare(a.Float32(), any(b).(float16.Float16).Float32())
	}
	encode := CodecFor[T]().Encode
	return cmp.Compare(encode(a), encode(b))
}
