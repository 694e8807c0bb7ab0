// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package table_test

import (
	"testing"

	"github.com/OpenPSG/ecogpower"
	"github.com/OpenPSG/ecogpower/spectrum"
	"github.com/OpenPSG/ecogpower/table"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func longTable() *table.Long {
	return &table.Long{
		ValueName: "Power",
		Rows: []table.LongRow{
			{Subject: "A1", Phase: "week_0", Band: "delta", Calc: spectrum.Baseline, Area: "Aux1", Value: 1.5},
			{Subject: "A1", Phase: "week_0", Band: "delta", Calc: spectrum.Baseline, Area: "PFC", Value: 2},
			{Subject: "A2", Phase: "week_0", Band: "theta", Calc: spectrum.Baseline, Area: "Aux1", Value: 3},
			{Subject: "A2", Phase: "week_0", Band: "delta", Calc: spectrum.Baseline, Area: "Aux1", Value: 4},
		},
	}
}

func TestLongFilter(t *testing.T) {
	got := longTable().Filter("delta", "Aux1")
	assert.Equal(t, "Power", got.ValueName)
	require.Len(t, got.Rows, 2)
	assert.Equal(t, "A1", got.Rows[0].Subject)
	assert.Equal(t, "A2", got.Rows[1].Subject)

	assert.Empty(t, longTable().Filter("high gamma", "Aux1").Rows)
}

func TestConcat(t *testing.T) {
	a, b := longTable(), longTable()
	b.Rows = b.Rows[:1]

	got, err := table.Concat(a, nil, b)
	require.NoError(t, err)
	assert.Len(t, got.Rows, 5)
	assert.Equal(t, a.Rows[0], got.Rows[0])
	assert.Equal(t, b.Rows[0], got.Rows[4])

	_, err = table.Concat(a, &table.Long{ValueName: "Ratio"})
	require.ErrorIs(t, err, ecogpower.ErrShapeMismatch)
}

func TestLongRecords(t *testing.T) {
	l := longTable()
	assert.Equal(t, []string{"mouse", "experiment_phase", "band_name", "calc", "brain_area", "Power"}, l.Columns())
	assert.Equal(t, []string{"A1", "week_0", "delta", "baseline", "Aux1", "1.5"}, l.Records()[0])
}

func psdTable(scale float64) *spectrum.Table {
	return &spectrum.Table{
		Freqs:    []float64{1, 2, 3},
		Channels: []string{"Aux1", "PFC"},
		Power:    [][]float64{{1 * scale, 2 * scale, 3 * scale}, {4 * scale, 5 * scale, 6 * scale}},
	}
}

func TestNewWide(t *testing.T) {
	w := table.NewWide(psdTable(1), spectrum.Signal, table.Meta{Subject: "A1", Phase: "week_2"})

	assert.Equal(t, []string{"freq", "Aux1", "PFC", "calc", "mouse", "experiment_phase"}, w.Columns())
	require.Len(t, w.Rows, 3)
	assert.Equal(t, []float64{2, 5}, w.Rows[1].Values)
	assert.Equal(t, []string{"3", "3", "6", "signal", "A1", "week_2"}, w.Records()[2])
}

func TestWideRatio(t *testing.T) {
	treatment := table.NewWide(psdTable(3), spectrum.Ratio, table.Meta{Subject: "ketamine"})
	control := table.NewWide(psdTable(2), spectrum.Ratio, table.Meta{Subject: "saline"})

	got, err := treatment.Ratio(control)
	require.NoError(t, err)
	for _, r := range got.Rows {
		assert.Equal(t, "ketamine", r.Subject)
		assert.InDeltaSlice(t, []float64{1.5, 1.5}, r.Values, 1e-12)
	}
	// The inputs are untouched.
	assert.Equal(t, []float64{3, 12}, treatment.Rows[0].Values)

	short := table.NewWide(psdTable(2), spectrum.Ratio, table.Meta{})
	short.Rows = short.Rows[:2]
	_, err = treatment.Ratio(short)
	require.ErrorIs(t, err, ecogpower.ErrShapeMismatch)

	shifted := table.NewWide(psdTable(2), spectrum.Ratio, table.Meta{})
	shifted.Rows[1].Freq = 2.5
	_, err = treatment.Ratio(shifted)
	require.ErrorIs(t, err, ecogpower.ErrShapeMismatch)
}

func TestConcatWide(t *testing.T) {
	a := table.NewWide(psdTable(1), spectrum.Baseline, table.Meta{Subject: "A1"})
	b := table.NewWide(psdTable(1), spectrum.Baseline, table.Meta{Subject: "A2"})

	got, err := table.ConcatWide(a, b)
	require.NoError(t, err)
	require.Len(t, got.Rows, 6)
	assert.Equal(t, "A2", got.Rows[3].Subject)

	b.Channels = []string{"Aux1"}
	_, err = table.ConcatWide(a, b)
	require.ErrorIs(t, err, ecogpower.ErrShapeMismatch)
}

func TestASSRRecords(t *testing.T) {
	a := &table.ASSR{Rows: []table.ASSRRow{{Subject: "A1", BaselineMean: 2, ResponseMean: 5, Ratio: 2.5, PLF: 0.75, Treatment: "ketamine"}}}
	assert.Equal(t, []string{"mouse_name", "baseline_mean", "response_mean", "ratio", "plf", "Injection"}, a.Columns())
	assert.Equal(t, [][]string{{"A1", "2", "5", "2.5", "0.75", "ketamine"}}, a.Records())
}
