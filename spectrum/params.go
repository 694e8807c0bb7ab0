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

	"github.com/OpenPSG/ecogpower"
)

// TimeWindow is an epoch time interval in seconds, both ends included.
type TimeWindow struct {
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max"`
}

func (w TimeWindow) validate(name string) error {
	if w.Min < 0 || w.Max <= w.Min {
		return fmt.Errorf("%w: %s window [%g, %g]", ecogpower.ErrInvalidParameter, name, w.Min, w.Max)
	}
	return nil
}

// Windows holds the epoch windows of the baseline and signal calculations.
type Windows struct {
	Baseline TimeWindow `yaml:"baseline"`
	Signal   TimeWindow `yaml:"signal"`
}

// DefaultWindows returns the 0.2-0.9 s baseline and 1.2-1.9 s response windows.
func DefaultWindows() Windows {
	return Windows{
		Baseline: TimeWindow{Min: 0.2, Max: 0.9},
		Signal:   TimeWindow{Min: 1.2, Max: 1.9},
	}
}

// Validate checks both windows.
func (w Windows) Validate() error {
	if err := w.Baseline.validate("baseline"); err != nil {
		return err
	}
	return w.Signal.validate("signal")
}

// FilterBand is a band-pass pre-filter. Low is the high-pass cutoff and High
// the low-pass cutoff, both in Hz.
type FilterBand struct {
	Low  float64 `yaml:"low"`
	High float64 `yaml:"high"`
}

// DefaultFilterBand returns the 0.5-100 Hz band.
func DefaultFilterBand() FilterBand {
	return FilterBand{Low: 0.5, High: 100}
}

// Params selects what Estimate computes.
type Params struct {
	Channels []string
	FreqMin  float64
	FreqMax  float64
	TimeMin  float64
	TimeMax  float64
	Method   Method
	Filter   *FilterBand // nil disables pre-filtering
}

// DefaultParams returns 0.1-100 Hz over the 1.2-1.9 s window using the
// multitaper method without pre-filtering.
func DefaultParams(channels ...string) Params {
	return Params{
		Channels: channels,
		FreqMin:  0.1,
		FreqMax:  100,
		TimeMin:  1.2,
		TimeMax:  1.9,
		Method:   Multitaper,
	}
}

// WithWindow returns a copy of p restricted to the time window w.
func (p Params) WithWindow(w TimeWindow) Params {
	p.TimeMin, p.TimeMax = w.Min, w.Max
	return p
}

// Validate checks p for internal consistency.
func (p Params) Validate() error {
	if len(p.Channels) == 0 {
		return fmt.Errorf("%w: no channels selected", ecogpower.ErrInvalidParameter)
	}
	if !p.Method.Valid() {
		return fmt.Errorf("%w: unsupported method %s", ecogpower.ErrInvalidParameter, p.Method)
	}
	if p.FreqMin < 0 || p.FreqMax <= p.FreqMin {
		return fmt.Errorf("%w: frequency window [%g, %g]", ecogpower.ErrInvalidParameter, p.FreqMin, p.FreqMax)
	}
	if err := (TimeWindow{Min: p.TimeMin, Max: p.TimeMax}).validate("time"); err != nil {
		return err
	}
	if p.Filter != nil && (p.Filter.Low <= 0 || p.Filter.High <= p.Filter.Low) {
		return fmt.Errorf("%w: filter band [%g, %g]", ecogpower.ErrInvalidParameter, p.Filter.Low, p.Filter.High)
	}
	return nil
}
