// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

// Package assr measures the auditory steady-state response with Morlet
// wavelet time-frequency maps.
package assr

import (
	"fmt"
	"math"
	"math/cmplx"
	"runtime"

	"github.com/OpenPSG/ecogpower"
	"github.com/OpenPSG/ecogpower/recording"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/floats"
)

// Analyzer computes wavelet power and inter-trial coherence maps.
type Analyzer struct {
	freqs   []float64
	cycles  []float64
	summary SummaryParams
	logger  *zap.Logger
	workers int
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithFrequencies sets the wavelet frequencies in Hz and the number of cycles
// of each wavelet.
func WithFrequencies(freqs, cycles []float64) Option {
	return func(a *Analyzer) {
		a.freqs, a.cycles = freqs, cycles
	}
}

// WithSummary sets the frequency rows and windows used by Cohort.
func WithSummary(p SummaryParams) Option {
	return func(a *Analyzer) {
		a.summary = p
	}
}

// WithLogger sets the logger used by cohort operations.
func WithLogger(logger *zap.Logger) Option {
	return func(a *Analyzer) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// WithWorkers limits the number of recordings analysed concurrently.
func WithWorkers(n int) Option {
	return func(a *Analyzer) {
		if n > 0 {
			a.workers = n
		}
	}
}

// NewAnalyzer returns an Analyzer over 71 frequencies from 20 to 90 Hz with 7
// to 30 cycles, logarithmically spaced.
func NewAnalyzer(opts ...Option) (*Analyzer, error) {
	a := &Analyzer{
		freqs:   floats.Span(make([]float64, 71), 20, 90),
		cycles:  floats.LogSpan(make([]float64, 71), 7, 30),
		summary: DefaultSummaryParams(),
		logger:  zap.NewNop(),
		workers: runtime.GOMAXPROCS(0),
	}
	for _, opt := range opts {
		opt(a)
	}

	if len(a.freqs) == 0 || len(a.freqs) != len(a.cycles) {
		return nil, fmt.Errorf("%w: %d frequencies and %d cycle counts", ecogpower.ErrInvalidParameter, len(a.freqs), len(a.cycles))
	}
	for i, f := range a.freqs {
		if f <= 0 || a.cycles[i] <= 0 {
			return nil, fmt.Errorf("%w: wavelet at %g Hz with %g cycles", ecogpower.ErrInvalidParameter, f, a.cycles[i])
		}
	}
	if err := a.summary.Validate(); err != nil {
		return nil, err
	}
	return a, nil
}

// Map is a time-frequency map. Power and ITC are indexed [frequency][time].
type Map struct {
	Freqs []float64
	Times []float64
	Power [][]float64
	ITC   [][]float64
}

// Analyze convolves every epoch of channel with the wavelets and returns the
// epoch-averaged power and the inter-trial coherence.
func (a *Analyzer) Analyze(rec *recording.Recording, channel string) (*Map, error) {
	c, ok := rec.ChannelIndex(channel)
	if !ok {
		return nil, fmt.Errorf("%w: unknown channel %q", ecogpower.ErrInvalidParameter, channel)
	}

	n := rec.Samples()
	wavelets := make([][]complex128, len(a.freqs))
	longest := 0
	for i, f := range a.freqs {
		wavelets[i] = morlet(rec.SampleRate(), f, a.cycles[i])
		if len(wavelets[i]) > n {
			return nil, fmt.Errorf("%w: the %g Hz wavelet is longer than the %d sample epoch", ecogpower.ErrInvalidParameter, f, n)
		}
		longest = max(longest, len(wavelets[i]))
	}

	size := n + longest - 1
	fft := fourier.NewCmplxFFT(size)
	spectra := make([][]complex128, len(wavelets))
	for i, w := range wavelets {
		padded := make([]complex128, size)
		copy(padded, w)
		spectra[i] = fft.Coefficients(nil, padded)
	}

	m := &Map{
		Freqs: append([]float64(nil), a.freqs...),
		Times: rec.Times(),
		Power: make([][]float64, len(a.freqs)),
		ITC:   make([][]float64, len(a.freqs)),
	}
	phase := make([][]complex128, len(a.freqs))
	for i := range a.freqs {
		m.Power[i] = make([]float64, n)
		phase[i] = make([]complex128, n)
	}

	x := make([]complex128, size)
	prod := make([]complex128, size)
	conv := make([]complex128, size)
	for e := 0; e < rec.Epochs(); e++ {
		clear(x)
		for i, v := range rec.Signal(e, c) {
			x[i] = complex(v, 0)
		}
		xf := fft.Coefficients(nil, x)

		for i, wf := range spectra {
			for k := range prod {
				prod[k] = xf[k] * wf[k]
			}
			fft.Sequence(conv, prod)

			start := (len(wavelets[i]) - 1) / 2
			for t := 0; t < n; t++ {
				v := conv[start+t] / complex(float64(size), 0)
				p := real(v)*real(v) + imag(v)*imag(v)
				m.Power[i][t] += p
				if p > 0 {
					phase[i][t] += v / complex(math.Sqrt(p), 0)
				}
			}
		}
	}

	epochs := float64(rec.Epochs())
	for i := range m.Power {
		floats.Scale(1/epochs, m.Power[i])
		m.ITC[i] = make([]float64, n)
		for t, z := range phase[i] {
			m.ITC[i][t] = cmplx.Abs(z) / epochs
		}
	}

	return m, nil
}
