// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package ecogpower

import "errors"

var (
	// ErrImport is returned when a recording cannot be read, is malformed, or
	// does not match the expected channel layout.
	ErrImport = errors.New("import error")
	// ErrInvalidParameter is returned for unknown enumeration values and
	// out-of-range analysis parameters.
	ErrInvalidParameter = errors.New("invalid parameter")
	// ErrEmptyCohort is returned when a cohort operation receives no recordings,
	// or when none of its recordings could be processed.
	ErrEmptyCohort = errors.New("empty cohort")
	// ErrShapeMismatch is returned when paired inputs or combined tables do not
	// line up.
	ErrShapeMismatch = errors.New("shape mismatch")
)

// Recoverable reports whether a cohort loop may log err and continue with the
// remaining recordings. Only import failures are recoverable; everything else
// indicates a configuration or programming error.
func Recoverable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrInvalidParameter) || errors.Is(err, ErrEmptyCohort) || errors.Is(err, ErrShapeMismatch) {
		return false
	}
	return errors.Is(err, ErrImport)
}
