// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

// Package units holds the amplitude and power conversions used along the
// pipeline.
//
// Recordings store amplitudes in microvolts. On import they are rescaled into
// volts so that spectral estimates come out in V-equivalent units; once a PSD
// has been estimated every value is converted back into µV². Both steps live
// here so that no call site repeats the arithmetic.
package units

import "math"

// MicrovoltsPerVolt is the scale between the stored and the analysed units.
const MicrovoltsPerVolt = 1e6

// VoltsFromMicrovolts rescales a stored microvolt amplitude into volts.
func VoltsFromMicrovolts(uv float64) float64 {
	return uv / MicrovoltsPerVolt
}

// ScaleToVolts rescales samples in place from microvolts to volts.
func ScaleToVolts(samples []float64) {
	for i, v := range samples {
		samples[i] = VoltsFromMicrovolts(v)
	}
}

// PowerMicrovoltsSquared converts a V-equivalent spectral value into µV².
//
// The value is taken as a squared RMS voltage: its square root is rescaled to
// microvolts and squared again, i.e. (sqrt(v) * 1e6)^2. Negative inputs yield
// NaN.
func PowerMicrovoltsSquared(v float64) float64 {
	uv := math.Sqrt(v) * MicrovoltsPerVolt
	return uv * uv
}
