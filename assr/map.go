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
	"fmt"
	"math"

	"github.com/OpenPSG/ecogpower"
	"github.com/OpenPSG/ecogpower/spectrum"
	"github.com/montanaflynn/stats"
)

// Crop returns the rows of m with fmin <= freq <= fmax. Rows are shared with
// m.
func (m *Map) Crop(fmin, fmax float64) (*Map, error) {
	out := &Map{Times: m.Times}
	for i, f := range m.Freqs {
		if f >= fmin && f <= fmax {
			out.Freqs = append(out.Freqs, f)
			out.Power = append(out.Power, m.Power[i])
			out.ITC = append(out.ITC, m.ITC[i])
		}
	}
	if len(out.Freqs) == 0 {
		return nil, fmt.Errorf("%w: no wavelet frequency in [%g, %g] Hz", ecogpower.ErrInvalidParameter, fmin, fmax)
	}
	return out, nil
}

// DecibelChange returns 10*log10(power) minus, per frequency, its mean over
// the baseline window.
func (m *Map) DecibelChange(baseline spectrum.TimeWindow) ([][]float64, error) {
	idx := timeIndices(m.Times, baseline)
	if len(idx) == 0 {
		return nil, fmt.Errorf("%w: no samples in the [%g, %g] s baseline", ecogpower.ErrInvalidParameter, baseline.Min, baseline.Max)
	}

	out := make([][]float64, len(m.Power))
	for i, row := range m.Power {
		db := make([]float64, len(row))
		for t, p := range row {
			db[t] = 10 * math.Log10(p)
		}
		ref := make(stats.Float64Data, len(idx))
		for j, t := range idx {
			ref[j] = db[t]
		}
		mean, err := stats.Mean(ref)
		if err != nil {
			return nil, err
		}
		for t := range db {
			db[t] -= mean
		}
		out[i] = db
	}
	return out, nil
}

// timeIndices returns the positions of times inside w, both ends included.
func timeIndices(times []float64, w spectrum.TimeWindow) []int {
	var idx []int
	for i, t := range times {
		if t >= w.Min && t <= w.Max {
			idx = append(idx, i)
		}
	}
	return idx
}

// accumulate adds o to m element-wise.
func (m *Map) accumulate(o *Map) error {
	if len(m.Freqs) != len(o.Freqs) || len(m.Times) != len(o.Times) {
		return fmt.Errorf("%w: %dx%d and %dx%d maps", ecogpower.ErrShapeMismatch, len(m.Freqs), len(m.Times), len(o.Freqs), len(o.Times))
	}
	for i := range m.Power {
		for t := range m.Power[i] {
			m.Power[i][t] += o.Power[i][t]
			m.ITC[i][t] += o.ITC[i][t]
		}
	}
	return nil
}

func (m *Map) scale(c float64) {
	for i := range m.Power {
		for t := range m.Power[i] {
			m.Power[i][t] *= c
			m.ITC[i][t] *= c
		}
	}
}
