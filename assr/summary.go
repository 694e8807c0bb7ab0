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

	"github.com/OpenPSG/ecogpower"
	"github.com/OpenPSG/ecogpower/spectrum"
	"github.com/montanaflynn/stats"
)

// SummaryParams selects the frequency rows and time windows of a summary.
type SummaryParams struct {
	FreqMin  float64             `yaml:"freq_min"`
	FreqMax  float64             `yaml:"freq_max"`
	Baseline spectrum.TimeWindow `yaml:"baseline"`
	Response spectrum.TimeWindow `yaml:"response"`
}

// DefaultSummaryParams returns the 39-41 Hz rows with the 0.2-0.9 s baseline
// and the 1.2-1.9 s response.
func DefaultSummaryParams() SummaryParams {
	w := spectrum.DefaultWindows()
	return SummaryParams{FreqMin: 39, FreqMax: 41, Baseline: w.Baseline, Response: w.Signal}
}

// Validate checks that the frequency range and both windows are ordered.
func (p SummaryParams) Validate() error {
	if p.FreqMin < 0 || p.FreqMax < p.FreqMin {
		return fmt.Errorf("%w: summary frequencies [%g, %g]", ecogpower.ErrInvalidParameter, p.FreqMin, p.FreqMax)
	}
	for i, w := range []spectrum.TimeWindow{p.Baseline, p.Response} {
		if w.Min < 0 || w.Max <= w.Min {
			return fmt.Errorf("%w: summary %s window [%g, %g]", ecogpower.ErrInvalidParameter, [...]string{"baseline", "response"}[i], w.Min, w.Max)
		}
	}
	return nil
}

// Summary is the steady-state response of one recording.
type Summary struct {
	BaselineMean float64
	ResponseMean float64
	Ratio        float64
	PLF          float64
}

// Summarize averages power over the baseline and response windows and ITC
// over the response window, across the selected frequency rows.
func Summarize(m *Map, p SummaryParams) (Summary, error) {
	band, err := m.Crop(p.FreqMin, p.FreqMax)
	if err != nil {
		return Summary{}, err
	}

	baseline, err := windowMean(band.Power, band.Times, p.Baseline)
	if err != nil {
		return Summary{}, err
	}
	response, err := windowMean(band.Power, band.Times, p.Response)
	if err != nil {
		return Summary{}, err
	}
	plf, err := windowMean(band.ITC, band.Times, p.Response)
	if err != nil {
		return Summary{}, err
	}

	return Summary{
		BaselineMean: baseline,
		ResponseMean: response,
		Ratio:        response / baseline,
		PLF:          plf,
	}, nil
}

func windowMean(rows [][]float64, times []float64, w spectrum.TimeWindow) (float64, error) {
	idx := timeIndices(times, w)
	var values stats.Float64Data
	for _, row := range rows {
		for _, t := range idx {
			values = append(values, row[t])
		}
	}
	mean, err := stats.Mean(values)
	if err != nil {
		return 0, fmt.Errorf("%w: no samples in the [%g, %g] s window", ecogpower.ErrInvalidParameter, w.Min, w.Max)
	}
	return mean, nil
}
