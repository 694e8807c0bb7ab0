// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

// Package export writes result tables as CSV files and XLSX workbooks.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/OpenPSG/ecogpower/table"
)

// Tabular is a table with named columns and string records.
type Tabular interface {
	Columns() []string
	Records() [][]string
}

var (
	_ Tabular = (*table.Long)(nil)
	_ Tabular = (*table.Wide)(nil)
	_ Tabular = (*table.ASSR)(nil)
)

// WriteCSV writes the header and records of t.
func WriteCSV(w io.Writer, t Tabular) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Columns()); err != nil {
		return fmt.Errorf("error writing header: %w", err)
	}
	if err := cw.WriteAll(t.Records()); err != nil {
		return fmt.Errorf("error writing records: %w", err)
	}
	return nil
}

// WriteLongCSV writes a long-form band table.
func WriteLongCSV(w io.Writer, t *table.Long) error { return WriteCSV(w, t) }

// WriteWideCSV writes a full-resolution table.
func WriteWideCSV(w io.Writer, t *table.Wide) error { return WriteCSV(w, t) }

// WriteASSRCSV writes an ASSR summary table.
func WriteASSRCSV(w io.Writer, t *table.ASSR) error { return WriteCSV(w, t) }

// Matrix is a frequency by time grid, such as a time-frequency map.
type Matrix struct {
	Freqs  []float64
	Times  []float64
	Values [][]float64 // [frequency][time]
}

// Columns implements Tabular.
func (m Matrix) Columns() []string {
	cols := make([]string, 0, len(m.Times)+1)
	cols = append(cols, "freq")
	for _, t := range m.Times {
		cols = append(cols, strconv.FormatFloat(t, 'g', -1, 64))
	}
	return cols
}

// Records implements Tabular.
func (m Matrix) Records() [][]string {
	records := make([][]string, len(m.Freqs))
	for i, f := range m.Freqs {
		rec := make([]string, 0, len(m.Values[i])+1)
		rec = append(rec, strconv.FormatFloat(f, 'g', -1, 64))
		for _, v := range m.Values[i] {
			rec = append(rec, strconv.FormatFloat(v, 'g', -1, 64))
		}
		records[i] = rec
	}
	return records
}

// FileName builds an output file name from a figure number and name parts,
// e.g. fig_1_delta_Aux1_week_0_baseline_power.csv. Spaces become underscores.
func FileName(figure, ext string, parts ...string) string {
	all := append([]string{"fig", figure}, parts...)
	name := strings.ReplaceAll(strings.Join(all, "_"), " ", "_")
	return name + "." + strings.TrimPrefix(ext, ".")
}
