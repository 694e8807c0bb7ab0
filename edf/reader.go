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
	"strconv"
	"strings"
	"time"
)

// Reader reads EDF/EDF+ files.
type Reader struct {
	r   io.ReadSeeker
	hdr *Header
}

// Open opens an EDF/EDF+ file for reading and parses its header.
func Open(r io.ReadSeeker) (*Reader, error) {
	reader := bufio.NewReader(r)

	b := make([]byte, 256)
	if _, err := io.ReadFull(reader, b); err != nil {
		return nil, fmt.Errorf("error reading header: %w", err)
	}

	hdr := &Header{}
	hdr.Version = Version(field(b[0:8]))
	hdr.PatientID = field(b[8:88])
	hdr.RecordingID = field(b[88:168])

	startDate, err := time.Parse("02.01.06", field(b[168:176]))
	if err != nil {
		return nil, fmt.Errorf("error parsing start date: %w", err)
	}
	startTime, err := time.Parse("15.04.05", field(b[176:184]))
	if err != nil {
		return nil, fmt.Errorf("error parsing start time: %w", err)
	}
	hdr.StartTime = time.Date(startDate.Year(), startDate.Month(), startDate.Day(),
		startTime.Hour(), startTime.Minute(), startTime.Second(), 0, time.UTC)

	if hdr.HeaderBytes, err = strconv.Atoi(field(b[184:192])); err != nil {
		return nil, fmt.Errorf("error parsing header bytes: %w", err)
	}
	if hdr.DataRecords, err = strconv.Atoi(field(b[236:244])); err != nil {
		return nil, fmt.Errorf("error parsing number of data records: %w", err)
	}
	if hdr.DataRecordDuration, err = time.ParseDuration(field(b[244:252]) + "s"); err != nil {
		return nil, fmt.Errorf("error parsing data record duration: %w", err)
	}
	if hdr.SignalCount, err = strconv.Atoi(field(b[252:256])); err != nil {
		return nil, fmt.Errorf("error parsing signal count: %w", err)
	}
	if hdr.SignalCount < 0 {
		return nil, fmt.Errorf("invalid signal count %d", hdr.SignalCount)
	}

	hdr.Signals = make([]Signal, hdr.SignalCount)

	// Signal headers are stored field by field, each field repeated for every signal.
	fields := []struct {
		width int
		set   func(sig *Signal, v string) error
	}{
		{16, func(sig *Signal, v string) error { sig.Label = v; return nil }},
		{80, func(sig *Signal, v string) error { sig.TransducerType = v; return nil }},
		{8, func(sig *Signal, v string) error { sig.PhysicalDimension = v; return nil }},
		{8, func(sig *Signal, v string) (err error) { sig.PhysicalMin, err = strconv.ParseFloat(v, 64); return }},
		{8, func(sig *Signal, v string) (err error) { sig.PhysicalMax, err = strconv.ParseFloat(v, 64); return }},
		{8, func(sig *Signal, v string) (err error) { sig.DigitalMin, err = strconv.Atoi(v); return }},
		{8, func(sig *Signal, v string) (err error) { sig.DigitalMax, err = strconv.Atoi(v); return }},
		{80, func(sig *Signal, v string) error { sig.Prefiltering = v; return nil }},
		{8, func(sig *Signal, v string) (err error) { sig.SamplesPerRecord, err = strconv.Atoi(v); return }},
		{32, func(sig *Signal, v string) error { sig.Reserved = v; return nil }},
	}

	for _, f := range fields {
		b := make([]byte, f.width)
		for i := range hdr.Signals {
			if _, err := io.ReadFull(reader, b); err != nil {
				return nil, fmt.Errorf("error reading signal headers: %w", err)
			}
			if err := f.set(&hdr.Signals[i], field(b)); err != nil {
				return nil, fmt.Errorf("error parsing header of signal %d: %w", i, err)
			}
		}
	}

	for i, sig := range hdr.Signals {
		if sig.SamplesPerRecord <= 0 {
			return nil, fmt.Errorf("invalid number of samples %d in signal %d", sig.SamplesPerRecord, i)
		}
	}

	// The record count must fit in what the stream actually holds.
	if hdr.DataRecords > 0 && hdr.RecordSize() > 0 {
		size, err := r.Seek(0, io.SeekEnd)
		if err != nil {
			return nil, fmt.Errorf("error seeking to end: %w", err)
		}
		available := (size - int64(hdr.HeaderBytes)) / int64(hdr.RecordSize())
		if int64(hdr.DataRecords) > available {
			return nil, fmt.Errorf("header claims %d data records, file holds %d", hdr.DataRecords, max(available, 0))
		}
	}

	return &Reader{
		r:   r,
		hdr: hdr,
	}, nil
}

// Header returns the parsed file header.
func (er *Reader) Header() *Header {
	return er.hdr
}

// ReadRecord reads data record i and returns the physical values of every
// signal, indexed by [signal][sample].
func (er *Reader) ReadRecord(i int) ([][]float64, error) {
	if i < 0 || i >= er.hdr.DataRecords {
		return nil, fmt.Errorf("data record %d out of range", i)
	}

	recordSize := er.hdr.RecordSize()
	pos := int64(er.hdr.HeaderBytes) + int64(i)*int64(recordSize)
	if _, err := er.r.Seek(pos, io.SeekStart); err != nil {
		return nil, fmt.Errorf("error seeking to position: %w", err)
	}

	buf := make([]byte, recordSize)
	if _, err := io.ReadFull(er.r, buf); err != nil {
		return nil, fmt.Errorf("error reading data record %d: %w", i, err)
	}

	signals := make([][]float64, len(er.hdr.Signals))
	offset := 0
	for s, sig := range er.hdr.Signals {
		samples := make([]float64, sig.SamplesPerRecord)
		for n := range samples {
			digital := int16(binary.LittleEndian.Uint16(buf[offset:]))
			samples[n] = convertDigitalToPhysical(digital, sig.DigitalMin, sig.DigitalMax, sig.PhysicalMin, sig.PhysicalMax)
			offset += 2
		}
		signals[s] = samples
	}

	return signals, nil
}

// convertDigitalToPhysical converts a digital value from the data record to a physical value using the calibration factors.
func convertDigitalToPhysical(digital int16, dmin, dmax int, pmin, pmax float64) float64 {
	if dmax == dmin {
		return 0 // Avoid division by zero
	}
	return pmin + (float64(digital)-float64(dmin))*(pmax-pmin)/float64(dmax-dmin)
}

func field(b []byte) string {
	return strings.TrimSpace(string(b))
}
