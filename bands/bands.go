// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

// Package bands reduces PSD tables to mean power per frequency band.
package bands

import (
	"fmt"

	"github.com/OpenPSG/ecogpower"
)

// Boundary decides which frequencies belong to a band.
type Boundary int

const (
	// Inclusive keeps low <= f <= high. Bins on a shared edge count towards
	// both neighbouring bands.
	Inclusive Boundary = iota
	// HalfOpen keeps low <= f < high.
	HalfOpen
	// Open keeps low < f < high.
	Open
)

var boundaryNames = map[Boundary]string{
	Inclusive: "inclusive",
	HalfOpen:  "half-open",
	Open:      "open",
}

func (b Boundary) String() string {
	if s, ok := boundaryNames[b]; ok {
		return s
	}
	return fmt.Sprintf("Boundary(%d)", int(b))
}

func (b Boundary) MarshalText() ([]byte, error) {
	if _, ok := boundaryNames[b]; !ok {
		return nil, fmt.Errorf("%w: unsupported boundary %d", ecogpower.ErrInvalidParameter, int(b))
	}
	return []byte(b.String()), nil
}

func (b *Boundary) UnmarshalText(text []byte) error {
	for v, name := range boundaryNames {
		if name == string(text) {
			*b = v
			return nil
		}
	}
	return fmt.Errorf("%w: unsupported boundary %q", ecogpower.ErrInvalidParameter, text)
}

func (b Boundary) contains(band Band, f float64) bool {
	switch b {
	case HalfOpen:
		return f >= band.Low && f < band.High
	case Open:
		return f > band.Low && f < band.High
	default:
		return f >= band.Low && f <= band.High
	}
}

// Band is a named frequency interval in Hz.
type Band struct {
	Name string  `yaml:"name"`
	Low  float64 `yaml:"low"`
	High float64 `yaml:"high"`
}

// Set is an ordered list of bands sharing a boundary policy.
type Set struct {
	Bands    []Band   `yaml:"bands"`
	Boundary Boundary `yaml:"boundary"`
}

// Canonical returns the six analysis bands with inclusive edges. The
// 45-55 Hz mains region belongs to no band.
func Canonical() Set {
	return Set{
		Bands: []Band{
			{Name: "delta", Low: 0, High: 4},
			{Name: "theta", Low: 4, High: 8},
			{Name: "alpha", Low: 8, High: 12},
			{Name: "beta", Low: 12, High: 30},
			{Name: "low gamma", Low: 30, High: 45},
			{Name: "high gamma", Low: 55, High: 90},
		},
		Boundary: Inclusive,
	}
}

// Narrow40 returns the single 38-42 Hz band around the auditory steady-state
// response, excluding both edges.
func Narrow40() Set {
	return Set{
		Bands:    []Band{{Name: "40 hz", Low: 38, High: 42}},
		Boundary: Open,
	}
}

// Validate checks that the set has uniquely named, non-empty bands.
func (s Set) Validate() error {
	if len(s.Bands) == 0 {
		return fmt.Errorf("%w: band set is empty", ecogpower.ErrInvalidParameter)
	}
	if _, ok := boundaryNames[s.Boundary]; !ok {
		return fmt.Errorf("%w: unsupported boundary %d", ecogpower.ErrInvalidParameter, int(s.Boundary))
	}
	seen := make(map[string]bool, len(s.Bands))
	for _, b := range s.Bands {
		if b.Name == "" || seen[b.Name] {
			return fmt.Errorf("%w: band name %q is empty or repeated", ecogpower.ErrInvalidParameter, b.Name)
		}
		if b.Low < 0 || b.High <= b.Low {
			return fmt.Errorf("%w: band %s [%g, %g]", ecogpower.ErrInvalidParameter, b.Name, b.Low, b.High)
		}
		seen[b.Name] = true
	}
	return nil
}

// Indices returns the positions of freqs that fall inside band.
func (s Set) Indices(band Band, freqs []float64) []int {
	var idx []int
	for i, f := range freqs {
		if s.Boundary.contains(band, f) {
			idx = append(idx, i)
		}
	}
	return idx
}
