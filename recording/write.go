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
	"math"
	"time"

	"github.com/OpenPSG/ecogpower/edf"
	"github.com/OpenPSG/ecogpower/units"
)

// WriteEDF writes rec as an EDF file with one data record per epoch. Signals
// are written in channel order and stored in microvolts, so the file imports
// back with a layout whose sources are 0..n-1 in the same order.
func WriteEDF(w io.WriteSeeker, rec *Recording, subject, session string) error {
	signals := make([]edf.Signal, len(rec.channels))
	for c, ch := range rec.channels {
		peak := 0.0
		for e := 0; e < rec.Epochs(); e++ {
			for _, v := range rec.Signal(e, c) {
				peak = math.Max(peak, math.Abs(v*units.MicrovoltsPerVolt))
			}
		}
		peak = math.Ceil(peak)
		if peak == 0 {
			peak = 1
		}

		signals[c] = edf.Signal{
			Label:             ch.Name,
			TransducerType:    string(ch.Type),
			PhysicalDimension: "uV",
			PhysicalMin:       -peak,
			PhysicalMax:       peak,
			DigitalMin:        -32768,
			DigitalMax:        32767,
			SamplesPerRecord:  rec.Samples(),
		}
	}

	ew, err := edf.Create(w, edf.Header{
		Version:            edf.Version0,
		PatientID:          subject,
		RecordingID:        session,
		StartTime:          time.Now().UTC(),
		DataRecordDuration: time.Duration(float64(rec.Samples()) / rec.sampleRate * float64(time.Second)),
		SignalCount:        len(signals),
		Signals:            signals,
	})
	if err != nil {
		return err
	}

	record := make([][]float64, len(rec.channels))
	for e := 0; e < rec.Epochs(); e++ {
		for c := range record {
			src := rec.Signal(e, c)
			uv := make([]float64, len(src))
			for i, v := range src {
				uv[i] = v * units.MicrovoltsPerVolt
			}
			record[c] = uv
		}
		if err := ew.WriteRecord(record); err != nil {
			return fmt.Errorf("error writing sweep %d: %w", e, err)
		}
	}

	return ew.Close()
}
