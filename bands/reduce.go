// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package bands

import (
	"fmt"
	"math"

	"github.com/OpenPSG/ecogpower"
	"github.com/OpenPSG/ecogpower/spectrum"
	"github.com/OpenPSG/ecogpower/table"
	"github.com/montanaflynn/stats"
)

// Mode selects the shape of a reduction.
type Mode int

const (
	// ModeBands averages each band of the reducer's set.
	ModeBands Mode = iota
	// ModeNarrow40 averages the open 38-42 Hz band.
	ModeNarrow40
	// ModeFullResolution keeps every frequency bin in a wide table.
	ModeFullResolution
)

var modeNames = map[Mode]string{
	ModeBands:          "bands",
	ModeNarrow40:       "narrow40",
	ModeFullResolution: "full",
}

func (m Mode) String() string {
	if s, ok := modeNames[m]; ok {
		return s
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// ModeFor picks the mode from the two output switches. The 40 Hz band wins
// over full resolution.
func ModeFor(narrow40, full bool) Mode {
	switch {
	case narrow40:
		return ModeNarrow40
	case full:
		return ModeFullResolution
	default:
		return ModeBands
	}
}

// Result holds a long table, or a wide table for ModeFullResolution.
type Result struct {
	Long *table.Long
	Wide *table.Wide
}

// Reducer turns PSD tables into band tables.
type Reducer struct {
	set Set
}

// NewReducer returns a Reducer averaging over set.
func NewReducer(set Set) (*Reducer, error) {
	if err := set.Validate(); err != nil {
		return nil, err
	}
	return &Reducer{set: set}, nil
}

// Reduce averages tbl per band and channel and tags the rows with meta and
// calc. Rows are ordered by channel, then band. A band without bins has a NaN
// mean.
func (r *Reducer) Reduce(tbl *spectrum.Table, meta table.Meta, calc spectrum.Calc, mode Mode) (*Result, error) {
	if !calc.Valid() {
		return nil, fmt.Errorf("%w: unsupported calc %s", ecogpower.ErrInvalidParameter, calc)
	}

	var set Set
	switch mode {
	case ModeFullResolution:
		return &Result{Wide: table.NewWide(tbl, calc, meta)}, nil
	case ModeNarrow40:
		set = Narrow40()
	case ModeBands:
		set = r.set
	default:
		return nil, fmt.Errorf("%w: unsupported mode %s", ecogpower.ErrInvalidParameter, mode)
	}

	indices := make([][]int, len(set.Bands))
	for i, b := range set.Bands {
		indices[i] = set.Indices(b, tbl.Freqs)
	}

	out := &table.Long{ValueName: calc.ValueName(), Rows: make([]table.LongRow, 0, len(tbl.Channels)*len(set.Bands))}
	for c, area := range tbl.Channels {
		for i, b := range set.Bands {
			out.Rows = append(out.Rows, table.LongRow{
				Subject: meta.Subject,
				Phase:   meta.Phase,
				Band:    b.Name,
				Calc:    calc,
				Area:    area,
				Value:   mean(tbl.Power[c], indices[i]),
			})
		}
	}

	return &Result{Long: out}, nil
}

func mean(values []float64, idx []int) float64 {
	picked := make(stats.Float64Data, len(idx))
	for i, j := range idx {
		picked[i] = values[j]
	}
	m, err := stats.Mean(picked)
	if err != nil {
		return math.NaN()
	}
	return m
}
