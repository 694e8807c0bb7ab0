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
	"github.com/cwbudde/algo-dsp/dsp/window"
	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/floats"
)

// Periodogram estimates the one-sided spectrum of a single epoch segment.
// Implementations must return ascending frequencies and must not modify
// segment.
type Periodogram interface {
	Spectrum(segment []float64, sampleRate float64) (freqs, psd []float64, err error)
}

// multitaper is the DPSS multitaper estimator with eigenvalue weighting and
// no adaptive refinement.
type multitaper struct {
	bandwidth float64 // Full bandwidth in Hz
	density   bool    // Divide by the sampling rate
	cache     *taperCache
}

func (mt *multitaper) Spectrum(segment []float64, sampleRate float64) ([]float64, []float64, error) {
	n := len(segment)
	halfNBW := mt.bandwidth * float64(n) / (2 * sampleRate)
	if halfNBW < 0.5 {
		return nil, nil, fmt.Errorf("%w: multitaper bandwidth %g Hz is too narrow for a %d sample window", ecogpower.ErrInvalidParameter, mt.bandwidth, n)
	}

	tp, err := mt.cache.lowBias(n, halfNBW, int(2*halfNBW))
	if err != nil {
		return nil, nil, err
	}

	x := demeaned(segment)
	fft := fourier.NewFFT(n)
	bins := n/2 + 1

	psd := make([]float64, bins)
	tapered := make([]float64, n)
	coeffs := make([]complex128, bins)
	var weightSum float64
	for k, taper := range tp.windows {
		// Weights are the square roots of the concentrations, so the squared
		// weight is the concentration itself.
		weight := tp.ratios[k]
		weightSum += weight

		floats.MulTo(tapered, x, taper)
		fft.Coefficients(coeffs, tapered)
		for f, c := range coeffs {
			p := real(c)*real(c) + imag(c)*imag(c)
			// The DC bin, and the Nyquist bin of even lengths, are not
			// mirrored in the one-sided spectrum.
			if f == 0 || (n%2 == 0 && f == bins-1) {
				p /= 2
			}
			psd[f] += weight * p
		}
	}
	floats.Scale(2/weightSum, psd)
	if mt.density {
		floats.Scale(1/sampleRate, psd)
	}

	return rfftFreqs(n, sampleRate, bins), psd, nil
}

// welch is Welch's averaged periodogram with a periodic Hamming window,
// non-overlapping segments, constant detrending and density scaling.
type welch struct {
	length int
}

func (w *welch) Spectrum(segment []float64, sampleRate float64) ([]float64, []float64, error) {
	n := len(segment)
	if w.length > n {
		return nil, nil, fmt.Errorf("%w: welch transform length %d exceeds the %d sample window", ecogpower.ErrInvalidParameter, w.length, n)
	}

	win, err := window.Hamming(w.length, window.WithPeriodic())
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ecogpower.ErrInvalidParameter, err)
	}
	scale := 1 / (sampleRate * floats.Dot(win, win))

	fft := fourier.NewFFT(w.length)
	bins := w.length/2 + 1
	psd := make([]float64, bins)
	coeffs := make([]complex128, bins)
	windowed := make([]float64, w.length)

	segments := (n-w.length)/w.length + 1
	for s := 0; s < segments; s++ {
		seg := demeaned(segment[s*w.length : (s+1)*w.length])
		floats.MulTo(windowed, seg, win)
		fft.Coefficients(coeffs, windowed)
		for f, c := range coeffs {
			p := (real(c)*real(c) + imag(c)*imag(c)) * scale
			if f > 0 && (w.length%2 == 1 || f < bins-1) {
				p *= 2
			}
			psd[f] += p
		}
	}
	floats.Scale(1/float64(segments), psd)

	return rfftFreqs(w.length, sampleRate, bins), psd, nil
}

func demeaned(x []float64) []float64 {
	out := slices.Clone(x)
	floats.AddConst(-floats.Sum(x)/float64(len(x)), out)
	return out
}

func rfftFreqs(n int, sampleRate float64, bins int) []float64 {
	freqs := make([]float64, bins)
	for i := range freqs {
		freqs[i] = float64(i) * sampleRate / float64(n)
	}
	return freqs
}
