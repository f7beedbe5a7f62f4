// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package network

// IsPowerOfTwo returns whether n is a positive power of two.
func IsPowerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}

// NextPowerOfTwo returns the smallest power of two >= n. It returns 1 for n <= 1.
func NextPowerOfTwo(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

// Pad extends buf to the next power of two, appending maxWord if order is Ascending or minWord if
// order is Descending, so the padding ends up after all the real values.
//
// buf is returned unchanged if its length is <= 1 or already a power of two. The returned slice may
// share storage with buf.
func Pad(buf []uint32, order SortOrder, maxWord, minWord uint32) []uint32 {
	m := len(buf)
	if m <= 1 || IsPowerOfTwo(m) {
		return buf
	}
	sentinel := maxWord
	if order == Descending {
		sentinel = minWord
	}
	padded := NextPowerOfTwo(m)
	if cap(buf) < padded {
		grown := make([]uint32, m, padded)
		copy(grown, buf)
		buf = grown
	}
	buf = buf[:padded]
	for ii := m; ii < padded; ii++ {
		buf[ii] = sentinel
	}
	return buf
}
