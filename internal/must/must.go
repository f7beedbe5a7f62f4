// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package must provide functions that check for errors and panic on error.
//
// Convenient for command-line tools and tests, e.g. `backend := must.M1(backends.NewWithConfig("go"))`.
package must

import (
	"k8s.io/klog/v2"
)

// M logs and panics if `err` is not nil.
//
// This function is used by all other variants (M1, M2), and if you want a different error
// behavior (like `klog.Fatalf`), just reassign M, and the other functions will pick it up.
var M = func(err error) {
	if err != nil {
		klog.Errorf("Must not error: %+v\nPanicking ...\n\n", err)
		panic(err)
	}
}

// M1 checks that there is no error with `M(err)` and then simply returns the value given.
func M1[T1 any](value1 T1, err error) T1 {
	M(err)
	return value1
}

// M2 checks that there is no error with `M(err)` and then simply returns the values given.
func M2[T1 any, T2 any](value1 T1, value2 T2, err error) (T1, T2) {
	M(err)
	return value1, value2
}
