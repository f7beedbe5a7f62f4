//go:build !nowasm

package _default

import _ "github.com/gomlx/bitonic/backends/wasm"
