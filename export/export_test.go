// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package export_test

import (
	"bytes"
	"encoding/csv"
	"testing"

	"github.com/OpenPSG/ecogpower/export"
	"github.com/OpenPSG/ecogpower/spectrum"
	"github.com/OpenPSG/ecogpower/table"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func longTable() *table.Long {
	return &table.Long{
		ValueName: "Ratio",
		Rows: []table.LongRow{
			{Subject: "A1", Phase: "week_0", Band: "low gamma", Calc: spectrum.Ratio, Area: "Aux1", Value: 1.25},
			{Subject: "A2", Phase: "week_0", Band: "low gamma", Calc: spectrum.Ratio, Area: "Aux1", Value: 0.5},
		},
	}
}

func TestWriteLongCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, export.WriteLongCSV(&buf, longTable()))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"mouse", "experiment_phase", "band_name", "calc", "brain_area", "Ratio"},
		{"A1", "week_0", "low gamma", "ratio", "Aux1", "1.25"},
		{"A2", "week_0", "low gamma", "ratio", "Aux1", "0.5"},
	}, records)
}

func TestWriteWideCSV(t *testing.T) {
	tbl := &spectrum.Table{Freqs: []float64{0, 1.5}, Channels: []string{"Aux1", "PFC"}, Power: [][]float64{{1, 2}, {3, 4}}}

	var buf bytes.Buffer
	require.NoError(t, export.WriteWideCSV(&buf, table.NewWide(tbl, spectrum.Baseline, table.Meta{Subject: "A1", Phase: "week_2"})))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"freq", "Aux1", "PFC", "calc", "mouse", "experiment_phase"},
		{"0", "1", "3", "baseline", "A1", "week_2"},
		{"1.5", "2", "4", "baseline", "A1", "week_2"},
	}, records)
}

func TestWriteASSRCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, export.WriteASSRCSV(&buf, &table.ASSR{Rows: []table.ASSRRow{{Subject: "A1", BaselineMean: 1, ResponseMean: 3, Ratio: 3, PLF: 0.5, Treatment: "saline"}}}))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "Injection", records[0][5])
	assert.Equal(t, []string{"A1", "1", "3", "3", "0.5", "saline"}, records[1])
}

func TestMatrix(t *testing.T) {
	m := export.Matrix{Freqs: []float64{39, 40}, Times: []float64{0, 0.5}, Values: [][]float64{{1, 2}, {3, 4}}}

	var buf bytes.Buffer
	require.NoError(t, export.WriteCSV(&buf, m))
	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"freq", "0", "0.5"}, {"39", "1", "2"}, {"40", "3", "4"}}, records)
}

func TestWriteXLSX(t *testing.T) {
	assr := &table.ASSR{Rows: []table.ASSRRow{{Subject: "A1", Ratio: 2, Treatment: "ketamine"}}}

	var buf bytes.Buffer
	require.NoError(t, export.WriteXLSX(&buf,
		export.Sheet{Name: "bands", Table: longTable()},
		export.Sheet{Name: "assr", Table: assr},
	))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, f.Close())
	})

	assert.Equal(t, []string{"bands", "assr"}, f.GetSheetList())

	rows, err := f.GetRows("bands")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "brain_area", rows[0][4])
	assert.Equal(t, "1.25", rows[1][5])

	typ, err := f.GetCellType("bands", "F2")
	require.NoError(t, err)
	assert.NotEqual(t, excelize.CellTypeSharedString, typ)

	rows, err = f.GetRows("assr")
	require.NoError(t, err)
	assert.Equal(t, "ketamine", rows[1][5])

	require.Error(t, export.WriteXLSX(&buf))
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "fig_1_delta_Aux1_week_0_baseline_power.csv", export.FileName("1", "csv", "delta", "Aux1", "week_0", "baseline", "power"))
	assert.Equal(t, "fig_3_low_gamma_PFC.xlsx", export.FileName("3", ".xlsx", "low gamma", "PFC"))
}
