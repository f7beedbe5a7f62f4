// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package must

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMust(t *testing.T) {
	M(nil)
	assert.Equal(t, 3, M1(3, nil))
	a, b := M2("x", 1.5, nil)
	assert.Equal(t, "x", a)
	assert.Equal(t, 1.5, b)

	errFailed := errors.New("failed")
	require.PanicsWithError(t, "failed", func() { M(errFailed) })
	require.Panics(t, func() { M1(0, errFailed) })
}
