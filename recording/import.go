// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package recording

import (
	"fmt"
	"io"
	"os"

	"github.com/OpenPSG/ecogpower"
	"github.com/OpenPSG/ecogpower/edf"
	"github.com/OpenPSG/ecogpower/units"
)

// Loader loads a recording identified by a file name.
type Loader interface {
	Load(path string) (*Recording, error)
}

// EDFLoader imports EDF files with a fixed channel layout.
type EDFLoader struct {
	Layout Layout
}

// Load implements Loader.
func (l EDFLoader) Load(path string) (*Recording, error) {
	return Import(path, l.Layout)
}

// Import reads the EDF file at path into a Recording.
func Import(path string, layout Layout) (*Recording, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ecogpower.ErrImport, err)
	}
	defer f.Close()

	rec, err := Read(f, layout)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rec, nil
}

// Read imports an EDF stream into a Recording. Every data record becomes one
// epoch, the sampling rate comes from the header, and amplitudes are rescaled
// from microvolts to volts.
//
// Errors caused by the stream are wrapped with ecogpower.ErrImport; an invalid
// layout yields ecogpower.ErrInvalidParameter.
func Read(r io.ReadSeeker, layout Layout) (*Recording, error) {
	if err := layout.Validate(); err != nil {
		return nil, err
	}

	er, err := edf.Open(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ecogpower.ErrImport, err)
	}
	hdr := er.Header()

	if hdr.SignalCount != len(layout.Channels) {
		return nil, fmt.Errorf("%w: file has %d signals, layout expects %d", ecogpower.ErrImport, hdr.SignalCount, len(layout.Channels))
	}
	if hdr.DataRecords <= 0 {
		return nil, fmt.Errorf("%w: file has no sweeps", ecogpower.ErrImport)
	}
	samples := hdr.Signals[0].SamplesPerRecord
	for i, sig := range hdr.Signals {
		if sig.SamplesPerRecord != samples {
			return nil, fmt.Errorf("%w: signal %d has %d samples per sweep, signal 0 has %d", ecogpower.ErrImport, i, sig.SamplesPerRecord, samples)
		}
	}
	sampleRate := hdr.SampleRate(0)
	if sampleRate <= 0 || samples <= 0 {
		return nil, fmt.Errorf("%w: invalid sweep length", ecogpower.ErrImport)
	}

	data := make([][][]float64, hdr.DataRecords)
	for e := range data {
		record, err := er.ReadRecord(e)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ecogpower.ErrImport, err)
		}

		epoch := make([][]float64, len(layout.Channels))
		for c, ch := range layout.Channels {
			sig := record[ch.Source]
			units.ScaleToVolts(sig)
			epoch[c] = sig
		}
		data[e] = epoch
	}

	return New(layout.Channels, sampleRate, data)
}
