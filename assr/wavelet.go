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
)

// morlet returns the complex Morlet wavelet at freq Hz with nCycles cycles,
// sampled at sampleRate and truncated at five standard deviations. The
// wavelet has zero mean and is scaled to an L2 norm of sqrt(2).
func morlet(sampleRate, freq, nCycles float64) []complex128 {
	sigma := nCycles / (2 * math.Pi * freq)

	// Half-length: number of samples in [0, 5 sigma).
	half := int(math.Ceil(5 * sigma * sampleRate))
	w := make([]complex128, 2*half-1)

	offset := math.Exp(-2 * math.Pow(math.Pi*freq*sigma, 2))
	var norm float64
	for i := range w {
		t := float64(i-(half-1)) / sampleRate
		osc := cmplx.Exp(complex(0, 2*math.Pi*freq*t)) - complex(offset, 0)
		gauss := math.Exp(-t * t / (2 * sigma * sigma))
		w[i] = osc * complex(gauss, 0)
		norm += real(w[i])*real(w[i]) + imag(w[i])*imag(w[i])
	}

	scale := complex(1/(math.Sqrt(0.5)*math.Sqrt(norm)), 0)
	for i := range w {
		w[i] *= scale
	}
	return w
}
