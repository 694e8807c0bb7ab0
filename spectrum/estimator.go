// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

// Package spectrum estimates power spectral density tables from sweep
// recordings.
package spectrum

import (
	"fmt"
	"math"

	"github.com/OpenPSG/ecogpower"
	"github.com/OpenPSG/ecogpower/recording"
	"github.com/OpenPSG/ecogpower/units"
	"gonum.org/v1/gonum/floats"
)

const (
	defaultBandwidth   = 2.0
	defaultWelchLength = 1000
	defaultFilterOrder = 4
)

// Estimator computes PSD tables. It is safe for concurrent use.
type Estimator struct {
	bandwidth   float64
	welchLength int
	filterOrder int
	density     bool
	overrides   map[Method]Periodogram
	cache       *taperCache
}

// Option configures an Estimator.
type Option func(*Estimator)

// WithMultitaperBandwidth sets the full multitaper bandwidth in Hz (default 2).
func WithMultitaperBandwidth(hz float64) Option {
	return func(e *Estimator) {
		if hz > 0 {
			e.bandwidth = hz
		}
	}
}

// WithWelchLength sets the Welch transform and segment length in samples
// (default 1000).
func WithWelchLength(n int) Option {
	return func(e *Estimator) {
		if n > 0 {
			e.welchLength = n
		}
	}
}

// WithFilterOrder sets the Butterworth order of the pre-filter (default 4).
func WithFilterOrder(n int) Option {
	return func(e *Estimator) {
		e.filterOrder = n
	}
}

// WithMultitaperDensity divides multitaper estimates by the sampling rate so
// that they are densities like Welch estimates. By default multitaper
// estimates are normalised by window length only.
func WithMultitaperDensity() Option {
	return func(e *Estimator) {
		e.density = true
	}
}

// WithPeriodogram replaces the spectral back-end used for m.
func WithPeriodogram(m Method, p Periodogram) Option {
	return func(e *Estimator) {
		e.overrides[m] = p
	}
}

// NewEstimator returns an Estimator configured by opts.
func NewEstimator(opts ...Option) *Estimator {
	e := &Estimator{
		bandwidth:   defaultBandwidth,
		welchLength: defaultWelchLength,
		filterOrder: defaultFilterOrder,
		overrides:   make(map[Method]Periodogram),
		cache:       newTaperCache(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	return e
}

func (e *Estimator) periodogram(m Method) (Periodogram, error) {
	if p, ok := e.overrides[m]; ok {
		return p, nil
	}
	switch m {
	case Multitaper:
		return &multitaper{bandwidth: e.bandwidth, density: e.density, cache: e.cache}, nil
	case Welch:
		return &welch{length: e.welchLength}, nil
	}
	return nil, fmt.Errorf("%w: unsupported method %s", ecogpower.ErrInvalidParameter, m)
}

// Estimate computes the PSD of the selected channels of rec over the epoch
// time window and frequency window of p. Per-epoch spectra are averaged per
// frequency bin and converted to µV².
func (e *Estimator) Estimate(rec *recording.Recording, p Params) (*Table, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	pg, err := e.periodogram(p.Method)
	if err != nil {
		return nil, err
	}

	rec, err = rec.Pick(p.Channels...)
	if err != nil {
		return nil, err
	}
	if p.Filter != nil {
		if rec, err = BandPass(rec, *p.Filter, e.filterOrder); err != nil {
			return nil, err
		}
	}

	start, stop, err := cropIndices(rec, p.TimeMin, p.TimeMax)
	if err != nil {
		return nil, err
	}

	var freqs []float64
	sums := make([][]float64, len(p.Channels))
	for ep := 0; ep < rec.Epochs(); ep++ {
		for c := range p.Channels {
			f, psd, err := pg.Spectrum(rec.Signal(ep, c)[start:stop+1], rec.SampleRate())
			if err != nil {
				return nil, err
			}
			if freqs == nil {
				freqs = f
			}
			if sums[c] == nil {
				sums[c] = make([]float64, len(psd))
			}
			floats.Add(sums[c], psd)
		}
	}

	tbl := &Table{Channels: append([]string(nil), p.Channels...), Power: make([][]float64, len(p.Channels))}
	for i, f := range freqs {
		if f < p.FreqMin || f > p.FreqMax {
			continue
		}
		tbl.Freqs = append(tbl.Freqs, f)
		for c := range p.Channels {
			mean := sums[c][i] / float64(rec.Epochs())
			tbl.Power[c] = append(tbl.Power[c], units.PowerMicrovoltsSquared(mean))
		}
	}
	if len(tbl.Freqs) == 0 {
		return nil, fmt.Errorf("%w: no frequency bins in [%g, %g] Hz", ecogpower.ErrInvalidParameter, p.FreqMin, p.FreqMax)
	}

	return tbl, nil
}

// EstimateCalc computes the PSD for a calculation kind: the baseline window,
// the signal window, or the signal PSD divided by the baseline PSD of the same
// recording. The time window in p is ignored.
func (e *Estimator) EstimateCalc(rec *recording.Recording, p Params, calc Calc, w Windows) (*Table, error) {
	if err := w.Validate(); err != nil {
		return nil, err
	}

	switch calc {
	case Baseline:
		return e.Estimate(rec, p.WithWindow(w.Baseline))
	case Signal:
		return e.Estimate(rec, p.WithWindow(w.Signal))
	case Ratio:
		baseline, err := e.Estimate(rec, p.WithWindow(w.Baseline))
		if err != nil {
			return nil, err
		}
		signal, err := e.Estimate(rec, p.WithWindow(w.Signal))
		if err != nil {
			return nil, err
		}
		if err := signal.Div(baseline); err != nil {
			return nil, err
		}
		return signal, nil
	}
	return nil, fmt.Errorf("%w: unsupported calc %s", ecogpower.ErrInvalidParameter, calc)
}

// cropIndices returns the first and last sample of the epoch window
// [tmin, tmax], rounding both ends to the nearest sample.
func cropIndices(rec *recording.Recording, tmin, tmax float64) (int, int, error) {
	start := max(int(math.Round(tmin*rec.SampleRate())), 0)
	stop := min(int(math.Round(tmax*rec.SampleRate())), rec.Samples()-1)
	if start >= stop {
		return 0, 0, fmt.Errorf("%w: time window [%g, %g] s is outside the %s epoch", ecogpower.ErrInvalidParameter, tmin, tmax, rec.Duration())
	}
	return start, stop, nil
}
