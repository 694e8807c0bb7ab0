// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package edf

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"strconv"
)

// maxRecordBytes is the data record size recommended by the EDF standard.
const maxRecordBytes = 61440

// Writer writes EDF files.
type Writer struct {
	w           io.WriteSeeker
	hdr         *Header
	dataRecords int // Number of data records written so far.
}

// Create creates a new EDF writer that writes to the given writer.
func Create(w io.WriteSeeker, hdr Header) (*Writer, error) {
	if hdr.SignalCount != len(hdr.Signals) {
		return nil, fmt.Errorf("signal count %d does not match %d signal definitions", hdr.SignalCount, len(hdr.Signals))
	}
	if hdr.RecordSize() > maxRecordBytes {
		return nil, fmt.Errorf("data record too large: %d bytes, max is %d bytes", hdr.RecordSize(), maxRecordBytes)
	}

	hdr.DataRecords = -1 // Unknown number of data records (at this time).
	hdr.Signals = append([]Signal(nil), hdr.Signals...)

	ew := &Writer{w: w, hdr: &hdr}

	if err := ew.writeHeader(); err != nil {
		return nil, fmt.Errorf("error writing header: %w", err)
	}

	return ew, nil
}

// Close finalizes the EDF file by updating the header with the total number of data records.
func (ew *Writer) Close() error {
	ew.hdr.DataRecords = ew.dataRecords
	if err := ew.writeHeader(); err != nil {
		return fmt.Errorf("error writing header: %w", err)
	}

	return nil
}

// WriteRecord appends one data record (one sweep) holding the physical values
// of every signal. Each signal must carry exactly SamplesPerRecord samples.
func (ew *Writer) WriteRecord(signals [][]float64) error {
	if len(signals) != ew.hdr.SignalCount {
		return fmt.Errorf("expected %d signals, got %d", ew.hdr.SignalCount, len(signals))
	}
	for i, samples := range signals {
		if want := ew.hdr.Signals[i].SamplesPerRecord; len(samples) != want {
			return fmt.Errorf("signal %d: expected %d samples, got %d", i, want, len(samples))
		}
	}

	// Data records start right after the header, in order.
	pos := int64(ew.hdr.HeaderBytes) + int64(ew.dataRecords)*int64(ew.hdr.RecordSize())
	if _, err := ew.w.Seek(pos, io.SeekStart); err != nil {
		return fmt.Errorf("error seeking to position: %w", err)
	}

	writer := bufio.NewWriter(ew.w)

	buf := make([]byte, 2)
	for i, samples := range signals {
		signal := ew.hdr.Signals[i]
		for _, sample := range samples {
			digital := convertPhysicalToDigital(sample, signal.PhysicalMin, signal.PhysicalMax, signal.DigitalMin, signal.DigitalMax)
			binary.LittleEndian.PutUint16(buf, uint16(digital))
			if _, err := writer.Write(buf); err != nil {
				return err
			}
		}
	}

	if err := writer.Flush(); err != nil {
		return err
	}

	ew.dataRecords++
	return nil
}

func (ew *Writer) writeHeader() error {
	if _, err := ew.w.Seek(0, io.SeekStart); err != nil {
		return err
	}

	ew.hdr.HeaderBytes = 256 + (ew.hdr.SignalCount * 256)

	writer := bufio.NewWriter(ew.w)
	put := func(width int, v string) {
		if len(v) > width {
			v = v[:width]
		}
		_, _ = fmt.Fprintf(writer, "%-*s", width, v)
	}

	put(8, string(ew.hdr.Version))
	put(80, ew.hdr.PatientID)
	put(80, ew.hdr.RecordingID)
	put(8, ew.hdr.StartTime.Format("02.01.06"))
	put(8, ew.hdr.StartTime.Format("15.04.05"))
	put(8, strconv.Itoa(ew.hdr.HeaderBytes))
	put(44, "")
	put(8, strconv.Itoa(ew.hdr.DataRecords))
	put(8, formatNumber(ew.hdr.DataRecordDuration.Seconds()))
	put(4, strconv.Itoa(ew.hdr.SignalCount))

	for _, signal := range ew.hdr.Signals {
		put(16, signal.Label)
	}
	for _, signal := range ew.hdr.Signals {
		put(80, signal.TransducerType)
	}
	for _, signal := range ew.hdr.Signals {
		put(8, signal.PhysicalDimension)
	}
	for _, signal := range ew.hdr.Signals {
		put(8, formatNumber(signal.PhysicalMin))
	}
	for _, signal := range ew.hdr.Signals {
		put(8, formatNumber(signal.PhysicalMax))
	}
	for _, signal := range ew.hdr.Signals {
		put(8, strconv.Itoa(signal.DigitalMin))
	}
	for _, signal := range ew.hdr.Signals {
		put(8, strconv.Itoa(signal.DigitalMax))
	}
	for _, signal := range ew.hdr.Signals {
		put(80, signal.Prefiltering)
	}
	for _, signal := range ew.hdr.Signals {
		put(8, strconv.Itoa(signal.SamplesPerRecord))
	}
	for range ew.hdr.Signals {
		put(32, "")
	}

	return writer.Flush()
}

// convertPhysicalToDigital converts a physical value to a digital value using
// the calibration factors, clamping to the digital range.
func convertPhysicalToDigital(physical float64, pmin, pmax float64, dmin, dmax int) int16 {
	if pmax == pmin {
		return 0 // Avoid division by zero
	}
	digital := math.Round(((physical - pmin) * (float64(dmax - dmin)) / (pmax - pmin)) + float64(dmin))
	digital = math.Max(float64(dmin), math.Min(float64(dmax), digital))
	return int16(digital)
}

// formatNumber renders a value into an 8 character header field.
func formatNumber(val float64) string {
	s := strconv.FormatFloat(val, 'f', -1, 64)
	if len(s) > 8 {
		// Try with 2 decimal places, then fall back to no decimal.
		s = strconv.FormatFloat(val, 'f', 2, 64)
		if len(s) > 8 {
			s = strconv.FormatFloat(val, 'f', 0, 64)
		}
	}
	return s
}
