// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

// Package ecogpower computes power spectral density metrics from multi-channel
// ECoG sweep recordings.
//
// The pipeline is split into packages that depend on each other strictly
// upwards:
//
//   - edf: EDF/EDF+ container reader and writer.
//   - units: microvolt and power unit conversions.
//   - recording: channel layouts and the recording importer.
//   - spectrum: PSD estimation (multitaper, Welch) over epoch time windows.
//   - bands: frequency band reduction and long-form reshaping.
//   - cohort: multi-recording aggregation and cohort tables.
//   - assr: Morlet time-frequency analysis of the 40 Hz steady-state response.
//   - table, export: tabular results and their CSV/XLSX renderings.
//   - config: YAML analysis configuration.
//
// This package holds the error kinds shared by all of them.
package ecogpower
