// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package wasm

import (
	"github.com/gomlx/bitonic/pkg/core/network"
)

// KernelEntryPoint is the name of the exported kernel function:
//
//	bitonic_workgroup(num_elements, stage, pass, sort_order, workgroup: i32)
//
// It runs the compare-exchange of every index in
// [workgroup*WorkgroupSize, min(num_elements, (workgroup+1)*WorkgroupSize)) over the uint32 words
// stored from address 0 of the exported "memory".
const KernelEntryPoint = "bitonic_workgroup"

// KernelMemory is the name of the exported memory holding the buffer.
const KernelMemory = "memory"

// WebAssembly binary encoding constants used by the kernel.
const (
	opBlock    = 0x02
	opLoop     = 0x03
	opIf       = 0x04
	opEnd      = 0x0B
	opBr       = 0x0C
	opBrIf     = 0x0D
	opSelect   = 0x1B
	opLocalGet = 0x20
	opLocalSet = 0x21
	opLocalTee = 0x22
	opI32Load  = 0x28
	opI32Store = 0x36
	opI32Const = 0x41
	opI32Eqz   = 0x45
	opI32Ne    = 0x47
	opI32LtU   = 0x49
	opI32GtU   = 0x4B
	opI32GeU   = 0x4F
	opI32Add   = 0x6A
	opI32Sub   = 0x6B
	opI32Mul   = 0x6C
	opI32And   = 0x71
	opI32Xor   = 0x73
	opI32Shl   = 0x74

	blockTypeEmpty = 0x40
	valueTypeI32   = 0x7F
	funcTypeForm   = 0x60

	sectionType     = 1
	sectionFunction = 3
	sectionMemory   = 5
	sectionExport   = 7
	sectionCode     = 10

	exportKindFunc   = 0x00
	exportKindMemory = 0x02

	// alignment (log2) of 32-bit loads and stores.
	alignI32 = 2
)

// Kernel parameters and locals indices.
const (
	localNumElements = iota
	localStage
	localPass
	localOrder
	localWorkgroup
	localI
	localEnd
	localDistance
	localPartner
	localA
	localB
	localUp

	numKernelParams = localWorkgroup + 1
	numKernelLocals = localUp + 1 - numKernelParams
)

var kernelBinary = assembleKernel()

// KernelBinary returns the compiled WebAssembly module implementing the compare-exchange kernel.
// The returned slice must not be modified.
func KernelBinary() []byte {
	return kernelBinary
}

// code accumulates WebAssembly instructions.
type code []byte

func (c code) op(ops ...byte) code   { return append(c, ops...) }
func (c code) get(local uint32) code { return appendULEB128(append(c, opLocalGet), uint64(local)) }
func (c code) set(local uint32) code { return appendULEB128(append(c, opLocalSet), uint64(local)) }
func (c code) tee(local uint32) code { return appendULEB128(append(c, opLocalTee), uint64(local)) }
func (c code) i32(v int32) code      { return appendSLEB128(append(c, opI32Const), int64(v)) }
func (c code) br(op byte, depth uint32) code {
	return appendULEB128(append(c, op), uint64(depth))
}

// wordAddress pushes local*4.
func (c code) wordAddress(local uint32) code {
	return c.get(local).i32(2).op(opI32Shl)
}

// load pushes the word at index local.
func (c code) load(local uint32) code {
	return c.wordAddress(local).op(opI32Load, alignI32, 0)
}

// kernelBody returns the instructions of the kernel function, following network.CompareExchange.
func kernelBody() code {
	var c code
	// i = workgroup * WorkgroupSize; end = min(i + WorkgroupSize, num_elements)
	c = c.get(localWorkgroup).i32(network.WorkgroupSize).op(opI32Mul).tee(localI)
	c = c.i32(network.WorkgroupSize).op(opI32Add).set(localEnd)
	c = c.get(localNumElements).get(localEnd).get(localEnd).get(localNumElements).op(opI32GtU, opSelect).set(localEnd)

	// distance = 1 << (stage - pass)
	c = c.i32(1).get(localStage).get(localPass).op(opI32Sub, opI32Shl).set(localDistance)

	c = c.op(opBlock, blockTypeEmpty, opLoop, blockTypeEmpty)
	{
		// if i >= end: break
		c = c.get(localI).get(localEnd).op(opI32GeU).br(opBrIf, 1)

		// partner = i ^ distance; only the lower index of the pair works.
		c = c.get(localI).get(localDistance).op(opI32Xor).tee(localPartner)
		c = c.get(localI).op(opI32GtU, opIf, blockTypeEmpty)
		{
			c = c.load(localI).set(localA)
			c = c.load(localPartner).set(localB)

			// up = ((i & (2 << stage)) == 0) != (order != 0)
			c = c.get(localI).i32(2).get(localStage).op(opI32Shl, opI32And, opI32Eqz)
			c = c.get(localOrder).i32(0).op(opI32Ne, opI32Xor).set(localUp)

			// swap = up ? a > b : a < b
			c = c.get(localA).get(localB).op(opI32GtU)
			c = c.get(localA).get(localB).op(opI32LtU)
			c = c.get(localUp).op(opSelect, opIf, blockTypeEmpty)
			{
				c = c.wordAddress(localI).get(localB).op(opI32Store, alignI32, 0)
				c = c.wordAddress(localPartner).get(localA).op(opI32Store, alignI32, 0)
			}
			c = c.op(opEnd)
		}
		c = c.op(opEnd)

		// i++; continue
		c = c.get(localI).i32(1).op(opI32Add).set(localI)
		c = c.br(opBr, 0)
	}
	c = c.op(opEnd, opEnd)
	return c.op(opEnd)
}

// assembleKernel builds the binary module: one function type, one function, one memory (1 page,
// growable by the host) and the two exports.
func assembleKernel() []byte {
	module := []byte{0x00, 0x61, 0x73, 0x6D, 0x01, 0x00, 0x00, 0x00}

	// Type section: (i32 x 5) -> ().
	typeSection := appendULEB128(nil, 1)
	typeSection = append(typeSection, funcTypeForm)
	typeSection = appendULEB128(typeSection, numKernelParams)
	for range numKernelParams {
		typeSection = append(typeSection, valueTypeI32)
	}
	typeSection = appendULEB128(typeSection, 0)
	module = appendSection(module, sectionType, typeSection)

	// Function section: function 0 has type 0.
	module = appendSection(module, sectionFunction, []byte{1, 0})

	// Memory section: one memory, min 1 page, no max.
	module = appendSection(module, sectionMemory, []byte{1, 0x00, 1})

	// Export section.
	exports := appendULEB128(nil, 2)
	exports = appendName(exports, KernelEntryPoint)
	exports = append(exports, exportKindFunc, 0)
	exports = appendName(exports, KernelMemory)
	exports = append(exports, exportKindMemory, 0)
	module = appendSection(module, sectionExport, exports)

	// Code section: locals declared as one group of i32.
	var body []byte
	body = appendULEB128(body, 1)
	body = appendULEB128(body, numKernelLocals)
	body = append(body, valueTypeI32)
	body = append(body, kernelBody()...)
	codeSection := appendULEB128(nil, 1)
	codeSection = appendULEB128(codeSection, uint64(len(body)))
	codeSection = append(codeSection, body...)
	return appendSection(module, sectionCode, codeSection)
}

func appendSection(module []byte, id byte, content []byte) []byte {
	module = append(module, id)
	module = appendULEB128(module, uint64(len(content)))
	return append(module, content...)
}

func appendName(b []byte, name string) []byte {
	b = appendULEB128(b, uint64(len(name)))
	return append(b, name...)
}

func appendULEB128(b []byte, v uint64) []byte {
	for {
		c := byte(v & 0x7f)
		v >>= 7
		if v == 0 {
			return append(b, c)
		}
		b = append(b, c|0x80)
	}
}

func appendSLEB128(b []byte, v int64) []byte {
	for {
		c := byte(v & 0x7f)
		v >>= 7
		if (v == 0 && c&0x40 == 0) || (v == -1 && c&0x40 != 0) {
			return append(b, c)
		}
		b = append(b, c|0x80)
	}
}
