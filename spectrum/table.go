// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package spectrum

import (
	"fmt"
	"math"
	"slices"

	"github.com/OpenPSG/ecogpower"
	"gonum.org/v1/gonum/floats"
)

// freqTolerance is the largest difference at which two frequency bins are
// considered the same.
const freqTolerance = 1e-9

// Table is a PSD table: ascending frequencies and one power column per
// channel.
type Table struct {
	Freqs    []float64
	Channels []string
	Power    [][]float64 // [channel][frequency]
}

// Column returns the power column of the named channel.
func (t *Table) Column(name string) ([]float64, bool) {
	i := slices.Index(t.Channels, name)
	if i < 0 {
		return nil, false
	}
	return t.Power[i], true
}

// Clone returns a deep copy of t.
func (t *Table) Clone() *Table {
	power := make([][]float64, len(t.Power))
	for i, col := range t.Power {
		power[i] = slices.Clone(col)
	}
	return &Table{
		Freqs:    slices.Clone(t.Freqs),
		Channels: slices.Clone(t.Channels),
		Power:    power,
	}
}

// Compatible returns an error wrapping ecogpower.ErrShapeMismatch unless t and
// o share frequencies and channels.
func (t *Table) Compatible(o *Table) error {
	if !slices.Equal(t.Channels, o.Channels) {
		return fmt.Errorf("%w: channels %v and %v", ecogpower.ErrShapeMismatch, t.Channels, o.Channels)
	}
	if len(t.Freqs) != len(o.Freqs) {
		return fmt.Errorf("%w: %d and %d frequency bins", ecogpower.ErrShapeMismatch, len(t.Freqs), len(o.Freqs))
	}
	for i := range t.Freqs {
		if math.Abs(t.Freqs[i]-o.Freqs[i]) > freqTolerance {
			return fmt.Errorf("%w: frequency bin %d differs (%g and %g Hz)", ecogpower.ErrShapeMismatch, i, t.Freqs[i], o.Freqs[i])
		}
	}
	return nil
}

// Add accumulates o into t element-wise.
func (t *Table) Add(o *Table) error {
	if err := t.Compatible(o); err != nil {
		return err
	}
	for i := range t.Power {
		floats.Add(t.Power[i], o.Power[i])
	}
	return nil
}

// Div divides t by o element-wise, per frequency and channel.
func (t *Table) Div(o *Table) error {
	if err := t.Compatible(o); err != nil {
		return err
	}
	for i := range t.Power {
		floats.Div(t.Power[i], o.Power[i])
	}
	return nil
}

// Scale multiplies every power value by c.
func (t *Table) Scale(c float64) {
	for i := range t.Power {
		floats.Scale(c, t.Power[i])
	}
}
