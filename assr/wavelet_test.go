// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package assr

import (
	"math"
	"math/cmplx"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMorlet(t *testing.T) {
	w := morlet(1000, 40, 7)

	// 5 sigma at 40 Hz and 7 cycles spans 140 samples on each side.
	assert.Len(t, w, 2*140-1)

	var sum complex128
	var energy float64
	for _, v := range w {
		sum += v
		energy += real(v)*real(v) + imag(v)*imag(v)
	}
	assert.InDelta(t, 0, cmplx.Abs(sum), 1e-4)
	assert.InDelta(t, 2, energy, 1e-9)

	// Symmetric magnitude about the centre sample.
	for i := range w {
		assert.InDelta(t, cmplx.Abs(w[i]), cmplx.Abs(w[len(w)-1-i]), 1e-12)
	}
	assert.Greater(t, cmplx.Abs(w[139]), cmplx.Abs(w[100]))
	assert.False(t, math.IsNaN(real(w[0])))
}
