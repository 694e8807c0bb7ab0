// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package bands_test

import (
	"math"
	"testing"

	"github.com/OpenPSG/ecogpower"
	"github.com/OpenPSG/ecogpower/bands"
	"github.com/OpenPSG/ecogpower/spectrum"
	"github.com/OpenPSG/ecogpower/table"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// psd returns a table with one bin per Hz from 0 to 100 whose power equals
// the frequency, for each channel scaled by its position.
func psd(channels ...string) *spectrum.Table {
	tbl := &spectrum.Table{Channels: channels}
	for f := 0; f <= 100; f++ {
		tbl.Freqs = append(tbl.Freqs, float64(f))
	}
	for c := range channels {
		col := make([]float64, len(tbl.Freqs))
		for i, f := range tbl.Freqs {
			col[i] = f * float64(c+1)
		}
		tbl.Power = append(tbl.Power, col)
	}
	return tbl
}

var meta = table.Meta{Subject: "A1", Phase: "week_0"}

func reducer(t *testing.T, set bands.Set) *bands.Reducer {
	t.Helper()
	r, err := bands.NewReducer(set)
	require.NoError(t, err)
	return r
}

func value(t *testing.T, l *table.Long, band, area string) float64 {
	t.Helper()
	rows := l.Filter(band, area).Rows
	require.Len(t, rows, 1)
	return rows[0].Value
}

func TestReduceBands(t *testing.T) {
	res, err := reducer(t, bands.Canonical()).Reduce(psd("Aux1", "PFC"), meta, spectrum.Baseline, bands.ModeBands)
	require.NoError(t, err)
	require.Nil(t, res.Wide)
	require.Len(t, res.Long.Rows, 12)
	assert.Equal(t, "Power", res.Long.ValueName)

	// Rows are grouped by channel, then band.
	assert.Equal(t, "Aux1", res.Long.Rows[0].Area)
	assert.Equal(t, "delta", res.Long.Rows[0].Band)
	assert.Equal(t, "high gamma", res.Long.Rows[5].Band)
	assert.Equal(t, "PFC", res.Long.Rows[6].Area)

	for _, r := range res.Long.Rows {
		assert.Equal(t, "A1", r.Subject)
		assert.Equal(t, "week_0", r.Phase)
		assert.Equal(t, spectrum.Baseline, r.Calc)
	}

	assert.InDelta(t, 2.0, value(t, res.Long, "delta", "Aux1"), 1e-12)
	assert.InDelta(t, 21.0, value(t, res.Long, "beta", "Aux1"), 1e-12)
	assert.InDelta(t, 72.5, value(t, res.Long, "high gamma", "Aux1"), 1e-12)
	assert.InDelta(t, 145.0, value(t, res.Long, "high gamma", "PFC"), 1e-12)
}

func TestReduceSharedEdges(t *testing.T) {
	tbl := &spectrum.Table{
		Freqs:    []float64{7, 8, 9},
		Channels: []string{"Aux1"},
		Power:    [][]float64{{1, 100, 1}},
	}

	res, err := reducer(t, bands.Canonical()).Reduce(tbl, meta, spectrum.Signal, bands.ModeBands)
	require.NoError(t, err)

	// The 8 Hz bin belongs to both theta and alpha.
	assert.InDelta(t, 50.5, value(t, res.Long, "theta", "Aux1"), 1e-12)
	assert.InDelta(t, 50.5, value(t, res.Long, "alpha", "Aux1"), 1e-12)

	set := bands.Canonical()
	set.Boundary = bands.HalfOpen
	res, err = reducer(t, set).Reduce(tbl, meta, spectrum.Signal, bands.ModeBands)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, value(t, res.Long, "theta", "Aux1"), 1e-12)
	assert.InDelta(t, 50.5, value(t, res.Long, "alpha", "Aux1"), 1e-12)
}

func TestReduceMainsGapExcluded(t *testing.T) {
	tbl := psd("Aux1")
	// Poison everything strictly between 45 and 55 Hz.
	for i, f := range tbl.Freqs {
		if f > 45 && f < 55 {
			tbl.Power[0][i] = math.Inf(1)
		}
	}

	res, err := reducer(t, bands.Canonical()).Reduce(tbl, meta, spectrum.Baseline, bands.ModeBands)
	require.NoError(t, err)
	for _, r := range res.Long.Rows {
		assert.False(t, math.IsInf(r.Value, 0), r.Band)
	}
}

func TestReduceEmptyBand(t *testing.T) {
	tbl := &spectrum.Table{Freqs: []float64{1, 2}, Channels: []string{"Aux1"}, Power: [][]float64{{1, 2}}}

	res, err := reducer(t, bands.Canonical()).Reduce(tbl, meta, spectrum.Baseline, bands.ModeBands)
	require.NoError(t, err)
	assert.True(t, math.IsNaN(value(t, res.Long, "beta", "Aux1")))
}

func TestReduceNarrow40(t *testing.T) {
	res, err := reducer(t, bands.Canonical()).Reduce(psd("Aux1", "PFC"), meta, spectrum.Ratio, bands.ModeNarrow40)
	require.NoError(t, err)
	require.Len(t, res.Long.Rows, 2)
	assert.Equal(t, "Ratio", res.Long.ValueName)

	// 39, 40 and 41 Hz; both edges are excluded.
	assert.InDelta(t, 40.0, value(t, res.Long, "40 hz", "Aux1"), 1e-12)
	assert.InDelta(t, 80.0, value(t, res.Long, "40 hz", "PFC"), 1e-12)
}

func TestReduceFullResolution(t *testing.T) {
	tbl := psd("Aux1", "PFC")
	res, err := reducer(t, bands.Canonical()).Reduce(tbl, meta, spectrum.Signal, bands.ModeFullResolution)
	require.NoError(t, err)
	require.Nil(t, res.Long)
	require.Len(t, res.Wide.Rows, len(tbl.Freqs))
	assert.Equal(t, []string{"freq", "Aux1", "PFC", "calc", "mouse", "experiment_phase"}, res.Wide.Columns())
	assert.Equal(t, []float64{10, 20}, res.Wide.Rows[10].Values)
}

func TestReduceDeterministic(t *testing.T) {
	r := reducer(t, bands.Canonical())
	a, err := r.Reduce(psd("Aux1", "PFC"), meta, spectrum.Baseline, bands.ModeBands)
	require.NoError(t, err)
	b, err := r.Reduce(psd("Aux1", "PFC"), meta, spectrum.Baseline, bands.ModeBands)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestReduceInvalid(t *testing.T) {
	r := reducer(t, bands.Canonical())
	_, err := r.Reduce(psd("Aux1"), meta, spectrum.Calc(7), bands.ModeBands)
	require.ErrorIs(t, err, ecogpower.ErrInvalidParameter)

	_, err = r.Reduce(psd("Aux1"), meta, spectrum.Baseline, bands.Mode(9))
	require.ErrorIs(t, err, ecogpower.ErrInvalidParameter)

	_, err = bands.NewReducer(bands.Set{})
	require.ErrorIs(t, err, ecogpower.ErrInvalidParameter)

	_, err = bands.NewReducer(bands.Set{Bands: []bands.Band{{Name: "a", Low: 1, High: 2}, {Name: "a", Low: 2, High: 3}}})
	require.ErrorIs(t, err, ecogpower.ErrInvalidParameter)
}

func TestModeFor(t *testing.T) {
	assert.Equal(t, bands.ModeBands, bands.ModeFor(false, false))
	assert.Equal(t, bands.ModeFullResolution, bands.ModeFor(false, true))
	assert.Equal(t, bands.ModeNarrow40, bands.ModeFor(true, false))
	assert.Equal(t, bands.ModeNarrow40, bands.ModeFor(true, true))
}

func TestBoundaryText(t *testing.T) {
	var b bands.Boundary
	require.NoError(t, b.UnmarshalText([]byte("half-open")))
	assert.Equal(t, bands.HalfOpen, b)
	require.ErrorIs(t, b.UnmarshalText([]byte("closed")), ecogpower.ErrInvalidParameter)
}
