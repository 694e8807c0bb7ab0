// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package table

import (
	"fmt"
	"math"
	"slices"

	"github.com/OpenPSG/ecogpower"
	"github.com/OpenPSG/ecogpower/spectrum"
)

// WideRow is one frequency bin of one recording.
type WideRow struct {
	Freq    float64
	Values  []float64 // one per channel
	Calc    spectrum.Calc
	Subject string
	Phase   string
}

// Wide is a full-resolution table with one value column per channel.
type Wide struct {
	Channels []string
	Rows     []WideRow
}

// NewWide converts a PSD table into wide rows tagged with calc and meta.
func NewWide(tbl *spectrum.Table, calc spectrum.Calc, meta Meta) *Wide {
	w := &Wide{Channels: slices.Clone(tbl.Channels), Rows: make([]WideRow, len(tbl.Freqs))}
	for i, f := range tbl.Freqs {
		values := make([]float64, len(tbl.Channels))
		for c := range tbl.Channels {
			values[c] = tbl.Power[c][i]
		}
		w.Rows[i] = WideRow{Freq: f, Values: values, Calc: calc, Subject: meta.Subject, Phase: meta.Phase}
	}
	return w
}

// ConcatWide appends the rows of tables in order. All tables must share a
// channel set.
func ConcatWide(tables ...*Wide) (*Wide, error) {
	out := &Wide{}
	for i, t := range tables {
		if t == nil {
			continue
		}
		if out.Channels == nil {
			out.Channels = slices.Clone(t.Channels)
		} else if !slices.Equal(out.Channels, t.Channels) {
			return nil, fmt.Errorf("%w: table %d has channels %v, want %v", ecogpower.ErrShapeMismatch, i, t.Channels, out.Channels)
		}
		out.Rows = append(out.Rows, t.Rows...)
	}
	return out, nil
}

// Ratio divides every value of w by the value at the same row and channel of
// control. Rows are paired by position and must have the same frequency.
// Metadata is taken from w.
func (w *Wide) Ratio(control *Wide) (*Wide, error) {
	if !slices.Equal(w.Channels, control.Channels) {
		return nil, fmt.Errorf("%w: channels %v and %v", ecogpower.ErrShapeMismatch, w.Channels, control.Channels)
	}
	if len(w.Rows) != len(control.Rows) {
		return nil, fmt.Errorf("%w: %d and %d rows", ecogpower.ErrShapeMismatch, len(w.Rows), len(control.Rows))
	}

	out := &Wide{Channels: slices.Clone(w.Channels), Rows: make([]WideRow, len(w.Rows))}
	for i, r := range w.Rows {
		c := control.Rows[i]
		if math.Abs(r.Freq-c.Freq) > 1e-9 {
			return nil, fmt.Errorf("%w: row %d is at %g Hz in one table and %g Hz in the other", ecogpower.ErrShapeMismatch, i, r.Freq, c.Freq)
		}
		values := make([]float64, len(r.Values))
		for j := range values {
			values[j] = r.Values[j] / c.Values[j]
		}
		r.Values = values
		out.Rows[i] = r
	}
	return out, nil
}

// Columns returns the column names in output order.
func (w *Wide) Columns() []string {
	cols := append([]string{"freq"}, w.Channels...)
	return append(cols, "calc", "mouse", "experiment_phase")
}

// Records renders every row as strings in column order.
func (w *Wide) Records() [][]string {
	records := make([][]string, len(w.Rows))
	for i, r := range w.Rows {
		rec := make([]string, 0, len(r.Values)+4)
		rec = append(rec, formatFloat(r.Freq))
		for _, v := range r.Values {
			rec = append(rec, formatFloat(v))
		}
		records[i] = append(rec, r.Calc.String(), r.Subject, r.Phase)
	}
	return records
}
