// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package table

// ASSRRow summarises the 40 Hz steady-state response of one recording.
type ASSRRow struct {
	Subject      string
	BaselineMean float64
	ResponseMean float64
	Ratio        float64
	PLF          float64 // Phase locking factor over the response window
	Treatment    string
}

// ASSR is a table of ASSR summaries, one row per recording.
type ASSR struct {
	Rows []ASSRRow
}

// Columns returns the column names in output order.
func (a *ASSR) Columns() []string {
	return []string{"mouse_name", "baseline_mean", "response_mean", "ratio", "plf", "Injection"}
}

// Records renders every row as strings in column order.
func (a *ASSR) Records() [][]string {
	records := make([][]string, len(a.Rows))
	for i, r := range a.Rows {
		records[i] = []string{
			r.Subject,
			formatFloat(r.BaselineMean),
			formatFloat(r.ResponseMean),
			formatFloat(r.Ratio),
			formatFloat(r.PLF),
			r.Treatment,
		}
	}
	return records
}
