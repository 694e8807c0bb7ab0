// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package spectrum

import (
	"fmt"
	"slices"

	"github.com/OpenPSG/ecogpower"
	"github.com/OpenPSG/ecogpower/recording"
	"github.com/cwbudde/algo-dsp/dsp/filter/biquad"
	"github.com/cwbudde/algo-dsp/dsp/filter/design"
)

// BandPass applies a zero-phase Butterworth band-pass filter of the given
// order to every epoch and channel of rec. The signal is filtered forwards and
// backwards, with odd reflections at both ends to limit edge transients.
func BandPass(rec *recording.Recording, band FilterBand, order int) (*recording.Recording, error) {
	nyquist := rec.SampleRate() / 2
	if band.Low <= 0 || band.High <= band.Low || band.High >= nyquist {
		return nil, fmt.Errorf("%w: filter band [%g, %g] Hz with Nyquist frequency %g Hz", ecogpower.ErrInvalidParameter, band.Low, band.High, nyquist)
	}
	if order <= 0 || order%2 != 0 {
		return nil, fmt.Errorf("%w: filter order must be positive even, got %d", ecogpower.ErrInvalidParameter, order)
	}

	hp := biquad.NewChain(design.ButterworthHP(band.Low, order, rec.SampleRate()))
	lp := biquad.NewChain(design.ButterworthLP(band.High, order, rec.SampleRate()))

	return rec.Map(func(sig []float64) {
		filtfilt(sig, hp, lp, 3*(order+1))
	}), nil
}

// filtfilt runs the chains over sig forwards then backwards, in place.
func filtfilt(sig []float64, hp, lp *biquad.Chain, pad int) {
	pad = min(pad, len(sig)-1)
	ext := reflectOdd(sig, pad)

	for pass := 0; pass < 2; pass++ {
		hp.Reset()
		lp.Reset()
		hp.ProcessBlock(ext)
		lp.ProcessBlock(ext)
		slices.Reverse(ext)
	}

	copy(sig, ext[pad:pad+len(sig)])
}

// reflectOdd extends sig by pad samples on each side with its odd reflection
// about the end points.
func reflectOdd(sig []float64, pad int) []float64 {
	n := len(sig)
	ext := make([]float64, n+2*pad)
	for i := 0; i < pad; i++ {
		ext[i] = 2*sig[0] - sig[pad-i]
		ext[n+pad+i] = 2*sig[n-1] - sig[n-2-i]
	}
	copy(ext[pad:], sig)
	return ext
}
