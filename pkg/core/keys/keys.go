// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package keys converts sortable values to and from an order-preserving uint32 representation.
//
// For any two values a and b of a supported type, Encode(a) < Encode(b) (as unsigned integers) if and
// only if a < b. That is what allows the sorting network to compare plain uint32 words regardless of
// the original type.
//
// Supported types are listed by the Key constraint. Types narrower than 32 bits are encoded into the
// low bits of the word, so the upper bits are always zero.
//
// NaN values are not supported: they are encoded like any other bit pattern, and where they end up
// in the sorted order is undefined.
package keys

import (
	"math"

	"github.com/x448/float16"
)

// Key is the set of types that can be sorted.
type Key interface {
	uint8 | int8 | uint16 | int16 | uint32 | int32 | float32 | float16.Float16
}

const (
	signBit8  = uint8(1) << 7
	signBit16 = uint16(1) << 15
	signBit32 = uint32(1) << 31
)

// EncodeUint32 is the identity.
func EncodeUint32(v uint32) uint32 { return v }

// DecodeUint32 is the identity.
func DecodeUint32(w uint32) uint32 { return w }

// EncodeInt32 flips the sign bit, so negative values sort before positive ones.
func EncodeInt32(v int32) uint32 { return uint32(v) ^ signBit32 }

// DecodeInt32 is the inverse of EncodeInt32 (flipping the sign bit is its own inverse).
func DecodeInt32(w uint32) int32 { return int32(w ^ signBit32) }

// EncodeFloat32 maps the IEEE-754 bits of v to an unsigned integer with the same ordering:
// negative values (including -0) have all their bits complemented, positive values have the sign bit set.
func EncodeFloat32(v float32) uint32 {
	bits := math.Float32bits(v)
	if bits&signBit32 != 0 {
		return ^bits
	}
	return bits | signBit32
}

// DecodeFloat32 is the inverse of EncodeFloat32.
func DecodeFloat32(w uint32) float32 {
	if w&signBit32 != 0 {
		return math.Float32frombits(w &^ signBit32)
	}
	return math.Float32frombits(^w)
}

// EncodeUint16 is the identity, zero-extended.
func EncodeUint16(v uint16) uint32 { return uint32(v) }

// DecodeUint16 takes the low 16 bits.
func DecodeUint16(w uint32) uint16 { return uint16(w) }

// EncodeInt16 flips the 16-bit sign bit.
func EncodeInt16(v int16) uint32 { return uint32(uint16(v) ^ signBit16) }

// DecodeInt16 is the inverse of EncodeInt16.
func DecodeInt16(w uint32) int16 { return int16(uint16(w) ^ signBit16) }

// EncodeUint8 is the identity, zero-extended.
func EncodeUint8(v uint8) uint32 { return uint32(v) }

// DecodeUint8 takes the low 8 bits.
func DecodeUint8(w uint32) uint8 { return uint8(w) }

// EncodeInt8 flips the 8-bit sign bit.
func EncodeInt8(v int8) uint32 { return uint32(uint8(v) ^ signBit8) }

// DecodeInt8 is the inverse of EncodeInt8.
func DecodeInt8(w uint32) int8 { return int8(uint8(w) ^ signBit8) }

// EncodeFloat16 applies the same transformation as EncodeFloat32 to the 16 bits of a half-precision float.
func EncodeFloat16(v float16.Float16) uint32 {
	bits := v.Bits()
	if bits&signBit16 != 0 {
		return uint32(^bits)
	}
	return uint32(bits | signBit16)
}

// DecodeFloat16 is the inverse of EncodeFloat16.
func DecodeFloat16(w uint32) float16.Float16 {
	bits := uint16(w)
	if bits&signBit16 != 0 {
		return float16.Frombits(bits &^ signBit16)
	}
	return float16.Frombits(^bits)
}
