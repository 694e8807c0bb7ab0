// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package assr_test

import (
	"context"
	"fmt"
	"math"
	"testing"

	"github.com/OpenPSG/ecogpower"
	"github.com/OpenPSG/ecogpower/assr"
	"github.com/OpenPSG/ecogpower/recording"
	"github.com/OpenPSG/ecogpower/spectrum"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func synth(t *testing.T, seed uint64) *recording.Recording {
	t.Helper()

	p := recording.DefaultSynthParams()
	p.SampleRate = 500
	p.Epochs = 12
	p.Seed = seed

	rec, err := recording.Synthesize(recording.DefaultLayout(), p)
	require.NoError(t, err)
	return rec
}

func analyzer(t *testing.T) *assr.Analyzer {
	t.Helper()
	a, err := assr.NewAnalyzer(assr.WithLogger(zaptest.NewLogger(t)), assr.WithWorkers(2))
	require.NoError(t, err)
	return a
}

func TestAnalyze(t *testing.T) {
	m, err := analyzer(t).Analyze(synth(t, 1), "Aux1")
	require.NoError(t, err)

	require.Len(t, m.Freqs, 71)
	assert.InDelta(t, 20.0, m.Freqs[0], 1e-12)
	assert.InDelta(t, 40.0, m.Freqs[20], 1e-12)
	assert.InDelta(t, 90.0, m.Freqs[70], 1e-12)
	require.Len(t, m.Times, 1500)
	require.Len(t, m.Power, 71)
	require.Len(t, m.Power[0], 1500)

	// The tone between 1 s and 2 s is phase-locked across epochs.
	at := func(s float64) int { return int(s * 500) }
	assert.Greater(t, m.ITC[20][at(1.5)], 0.9)
	assert.Less(t, m.ITC[20][at(0.5)], 0.7)
	assert.Greater(t, m.Power[20][at(1.5)], 4*m.Power[20][at(0.5)])

	for _, row := range m.ITC {
		for _, v := range row {
			assert.GreaterOrEqual(t, v, 0.0)
			assert.LessOrEqual(t, v, 1.0+1e-9)
		}
	}
}

func TestAnalyzeErrors(t *testing.T) {
	a := analyzer(t)
	_, err := a.Analyze(synth(t, 1), "M1")
	require.ErrorIs(t, err, ecogpower.ErrInvalidParameter)

	short, err := recording.New([]recording.Channel{{Name: "Aux1", Type: recording.ChannelECoG}}, 500, [][][]float64{{make([]float64, 100)}})
	require.NoError(t, err)
	_, err = a.Analyze(short, "Aux1")
	require.ErrorIs(t, err, ecogpower.ErrInvalidParameter)

	_, err = assr.NewAnalyzer(assr.WithFrequencies([]float64{40}, nil))
	require.ErrorIs(t, err, ecogpower.ErrInvalidParameter)
}

func TestSummarize(t *testing.T) {
	m, err := analyzer(t).Analyze(synth(t, 1), "Aux1")
	require.NoError(t, err)

	s, err := assr.Summarize(m, assr.DefaultSummaryParams())
	require.NoError(t, err)
	assert.Greater(t, s.Ratio, 4.0)
	assert.InEpsilon(t, s.ResponseMean/s.BaselineMean, s.Ratio, 1e-12)
	assert.Greater(t, s.PLF, 0.9)

	p := assr.DefaultSummaryParams()
	p.FreqMin, p.FreqMax = 95, 99
	_, err = assr.Summarize(m, p)
	require.ErrorIs(t, err, ecogpower.ErrInvalidParameter)

	p = assr.DefaultSummaryParams()
	p.Response = spectrum.TimeWindow{Min: 4, Max: 5}
	_, err = assr.Summarize(m, p)
	require.ErrorIs(t, err, ecogpower.ErrInvalidParameter)
}

func TestCropAndDecibelChange(t *testing.T) {
	m, err := analyzer(t).Analyze(synth(t, 1), "Aux1")
	require.NoError(t, err)

	cropped, err := m.Crop(20, 70)
	require.NoError(t, err)
	assert.Len(t, cropped.Freqs, 51)

	db, err := cropped.DecibelChange(spectrum.DefaultWindows().Baseline)
	require.NoError(t, err)
	require.Len(t, db, 51)

	// The baseline of every row averages to zero dB.
	var sum float64
	var n int
	for i, t0 := range cropped.Times {
		if t0 >= 0.2 && t0 <= 0.9 {
			sum += db[20][i]
			n++
		}
	}
	assert.InDelta(t, 0, sum/float64(n), 1e-9)
	assert.Greater(t, db[20][750], 6.0)
}

type loaderFunc func(path string) (*recording.Recording, error)

func (f loaderFunc) Load(path string) (*recording.Recording, error) { return f(path) }

func loader(t *testing.T) recording.Loader {
	recs := map[string]*recording.Recording{"a.edf": synth(t, 1), "b.edf": synth(t, 2)}
	return loaderFunc(func(path string) (*recording.Recording, error) {
		rec, ok := recs[path]
		if !ok {
			return nil, fmt.Errorf("%w: %s does not exist", ecogpower.ErrImport, path)
		}
		return rec, nil
	})
}

func TestCohort(t *testing.T) {
	a := analyzer(t)
	ctx := context.Background()

	tbl, err := a.Cohort(ctx, loader(t), []string{"a.edf", "missing.edf", "b.edf"}, []string{"A1", "A2", "A3"}, "Aux1", "ketamine")
	require.NoError(t, err)
	require.Len(t, tbl.Rows, 2)
	assert.Equal(t, "A1", tbl.Rows[0].Subject)
	assert.Equal(t, "A3", tbl.Rows[1].Subject)
	for _, r := range tbl.Rows {
		assert.Equal(t, "ketamine", r.Treatment)
		assert.Greater(t, r.PLF, 0.9)
	}

	_, err = a.Cohort(ctx, loader(t), []string{"a.edf"}, nil, "Aux1", "saline")
	require.ErrorIs(t, err, ecogpower.ErrShapeMismatch)

	_, err = a.Cohort(ctx, loader(t), []string{"missing.edf"}, []string{"A1"}, "Aux1", "saline")
	require.ErrorIs(t, err, ecogpower.ErrEmptyCohort)
}

func TestCohortSummaryParams(t *testing.T) {
	ctx := context.Background()
	files, subjects := []string{"a.edf"}, []string{"A1"}

	def, err := analyzer(t).Cohort(ctx, loader(t), files, subjects, "Aux1", "saline")
	require.NoError(t, err)

	// Measuring the response over the baseline window leaves nothing to compare.
	p := assr.DefaultSummaryParams()
	p.Response = p.Baseline
	a, err := assr.NewAnalyzer(assr.WithSummary(p), assr.WithWorkers(1))
	require.NoError(t, err)

	tbl, err := a.Cohort(ctx, loader(t), files, subjects, "Aux1", "saline")
	require.NoError(t, err)
	require.Len(t, tbl.Rows, 1)
	assert.InEpsilon(t, def.Rows[0].BaselineMean, tbl.Rows[0].BaselineMean, 1e-12)
	assert.InEpsilon(t, tbl.Rows[0].BaselineMean, tbl.Rows[0].ResponseMean, 1e-12)
	assert.InDelta(t, 1.0, tbl.Rows[0].Ratio, 1e-12)
	assert.Greater(t, def.Rows[0].Ratio, 2.0)
	assert.Less(t, tbl.Rows[0].PLF, def.Rows[0].PLF)

	p = assr.DefaultSummaryParams()
	p.FreqMin, p.FreqMax = 60, 70
	a, err = assr.NewAnalyzer(assr.WithSummary(p))
	require.NoError(t, err)
	tbl, err = a.Cohort(ctx, loader(t), files, subjects, "Aux1", "saline")
	require.NoError(t, err)
	assert.Less(t, tbl.Rows[0].ResponseMean, def.Rows[0].ResponseMean)
}

func TestNewAnalyzerRejectsSummary(t *testing.T) {
	p := assr.DefaultSummaryParams()
	p.FreqMin, p.FreqMax = 41, 39
	_, err := assr.NewAnalyzer(assr.WithSummary(p))
	require.ErrorIs(t, err, ecogpower.ErrInvalidParameter)

	p = assr.DefaultSummaryParams()
	p.Response.Max = p.Response.Min
	_, err = assr.NewAnalyzer(assr.WithSummary(p))
	require.ErrorIs(t, err, ecogpower.ErrInvalidParameter)
}

func TestAverageMap(t *testing.T) {
	a := analyzer(t)
	l := loader(t)

	ma, err := a.Analyze(synth(t, 1), "Aux1")
	require.NoError(t, err)
	mb, err := a.Analyze(synth(t, 2), "Aux1")
	require.NoError(t, err)

	avg, err := a.AverageMap(context.Background(), l, []string{"a.edf", "b.edf"}, "Aux1")
	require.NoError(t, err)
	for _, pt := range [][2]int{{0, 0}, {20, 750}, {70, 1499}} {
		want := (ma.Power[pt[0]][pt[1]] + mb.Power[pt[0]][pt[1]]) / 2
		assert.InEpsilon(t, want, avg.Power[pt[0]][pt[1]], 1e-9)
	}
	assert.False(t, math.IsNaN(avg.ITC[0][0]))
}
