// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package _default includes the default backends, namely SimpleGo ("go") and WebAssembly ("wasm").
//
// To use it simply include:
//
//	import _ "github.com/gomlx/bitonic/backends/default"
//
// "go" is registered first, so it is the default when no configuration is given.
// If you add the tag `nowasm` it will not include wasm -- useful to keep wazero out of the binary.
package _default

import (
	_ "github.com/gomlx/bitonic/backends/simplego"
)
