// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

// Package table holds the result tables written by the analyses: long-form
// band tables, wide full-resolution tables and ASSR summaries.
package table

import (
	"fmt"
	"strconv"

	"github.com/OpenPSG/ecogpower"
	"github.com/OpenPSG/ecogpower/spectrum"
)

// Meta identifies the recording a set of rows came from.
type Meta struct {
	Subject string
	Phase   string
}

// LongRow is one (band, area) value of one recording.
type LongRow struct {
	Subject string
	Phase   string
	Band    string
	Calc    spectrum.Calc
	Area    string
	Value   float64
}

// Long is a long-form band table. ValueName is "Power" or "Ratio".
type Long struct {
	ValueName string
	Rows      []LongRow
}

// Filter returns the rows whose band and area match exactly. The result may
// be empty.
func (l *Long) Filter(band, area string) *Long {
	out := &Long{ValueName: l.ValueName}
	for _, r := range l.Rows {
		if r.Band == band && r.Area == area {
			out.Rows = append(out.Rows, r)
		}
	}
	return out
}

// Concat appends the rows of tables in order. All tables must share a value
// column name.
func Concat(tables ...*Long) (*Long, error) {
	out := &Long{}
	for _, t := range tables {
		if t == nil {
			continue
		}
		if out.ValueName == "" {
			out.ValueName = t.ValueName
		} else if t.ValueName != out.ValueName {
			return nil, fmt.Errorf("%w: cannot concatenate %s and %s tables", ecogpower.ErrShapeMismatch, out.ValueName, t.ValueName)
		}
		out.Rows = append(out.Rows, t.Rows...)
	}
	return out, nil
}

// Columns returns the column names in output order.
func (l *Long) Columns() []string {
	return []string{"mouse", "experiment_phase", "band_name", "calc", "brain_area", l.ValueName}
}

// Records renders every row as strings in column order.
func (l *Long) Records() [][]string {
	records := make([][]string, len(l.Rows))
	for i, r := range l.Rows {
		records[i] = []string{r.Subject, r.Phase, r.Band, r.Calc.String(), r.Area, formatFloat(r.Value)}
	}
	return records
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
