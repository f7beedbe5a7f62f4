// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package network

// WorkgroupSize is the number of indices processed by one workgroup (a GPU thread block) of a device
// kernel. Host dispatch and the kernel code must agree on this value.
const WorkgroupSize = 256

// NumWorkgroups returns how many workgroups are needed to cover n indices.
func NumWorkgroups(n uint32) uint32 {
	return (n + WorkgroupSize - 1) / WorkgroupSize
}

// CompareExchange performs the compare-exchange of index i with its partner i^Distance().
//
// Only the lower index of a pair does the work, so calling it for every index in any order, or
// concurrently from any number of goroutines, never writes the same pair twice.
func CompareExchange(buf []uint32, p Params, i uint32) {
	partner := i ^ p.Distance()
	if partner <= i {
		return
	}
	a, b := buf[i], buf[partner]
	var swap bool
	if p.Direction(i) == Up {
		swap = a > b
	} else {
		swap = a < b
	}
	if swap {
		buf[i], buf[partner] = b, a
	}
}

// ApplyRange runs CompareExchange for every index in [start, end).
// Disjoint ranges of the same pass can be applied concurrently.
func ApplyRange(buf []uint32, p Params, start, end uint32) {
	distance := p.Distance()
	blockSize := p.BlockSize()
	descending := p.Order == Descending
	for i := start; i < end; i++ {
		partner := i ^ distance
		if partner <= i {
			continue
		}
		a, b := buf[i], buf[partner]
		up := (uint64(i)&blockSize == 0) != descending
		if (up && a > b) || (!up && a < b) {
			buf[i], buf[partner] = b, a
		}
	}
}
