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

// Method selects the spectral estimation algorithm.
type Method int

const (
	// Multitaper averages periodograms of DPSS-tapered copies of the signal.
	Multitaper Method = iota + 1
	// Welch averages Hamming-windowed periodograms of fixed-length segments.
	Welch
)

var methodNames = map[Method]string{
	Multitaper: "multitaper",
	Welch:      "welch",
}

func (m Method) String() string {
	if s, ok := methodNames[m]; ok {
		return s
	}
	return fmt.Sprintf("Method(%d)", int(m))
}

// Valid reports whether m is one of the declared methods.
func (m Method) Valid() bool {
	_, ok := methodNames[m]
	return ok
}

// ParseMethod converts a method name into a Method.
func ParseMethod(s string) (Method, error) {
	for m, name := range methodNames {
		if name == s {
			return m, nil
		}
	}
	return 0, fmt.Errorf("%w: unsupported method %q", ecogpower.ErrInvalidParameter, s)
}

func (m Method) MarshalText() ([]byte, error) {
	if !m.Valid() {
		return nil, fmt.Errorf("%w: unsupported method %d", ecogpower.ErrInvalidParameter, int(m))
	}
	return []byte(m.String()), nil
}

func (m *Method) UnmarshalText(text []byte) error {
	parsed, err := ParseMethod(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// Calc selects which part of the epoch a PSD describes.
type Calc int

const (
	// Baseline is the pre-stimulus window.
	Baseline Calc = iota + 1
	// Signal is the response window.
	Signal
	// Ratio is the signal PSD divided by the baseline PSD.
	Ratio
)

var calcNames = map[Calc]string{
	Baseline: "baseline",
	Signal:   "signal",
	Ratio:    "ratio",
}

func (c Calc) String() string {
	if s, ok := calcNames[c]; ok {
		return s
	}
	return fmt.Sprintf("Calc(%d)", int(c))
}

// Valid reports whether c is one of the declared calculation kinds.
func (c Calc) Valid() bool {
	_, ok := calcNames[c]
	return ok
}

// ValueName is the name of the value column of long-form tables built from c.
func (c Calc) ValueName() string {
	if c == Ratio {
		return "Ratio"
	}
	return "Power"
}

// ParseCalc converts a calculation name into a Calc.
func ParseCalc(s string) (Calc, error) {
	for c, name := range calcNames {
		if name == s {
			return c, nil
		}
	}
	return 0, fmt.Errorf("%w: unsupported calc %q", ecogpower.ErrInvalidParameter, s)
}

func (c Calc) MarshalText() ([]byte, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("%w: unsupported calc %d", ecogpower.ErrInvalidParameter, int(c))
	}
	return []byte(c.String()), nil
}

func (c *Calc) UnmarshalText(text []byte) error {
	parsed, err := ParseCalc(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
