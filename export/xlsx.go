// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package export

import (
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/xuri/excelize/v2"
)

// defaultSheet is the sheet every new workbook starts with.
const defaultSheet = "Sheet1"

// Sheet is a named worksheet.
type Sheet struct {
	Name  string
	Table Tabular
}

// WriteXLSX writes a workbook with one worksheet per sheet, in order. Cells
// that parse as numbers are stored as numbers, except NaN and infinities.
func WriteXLSX(w io.Writer, sheets ...Sheet) error {
	if len(sheets) == 0 {
		return fmt.Errorf("workbook has no sheets")
	}

	f := excelize.NewFile()
	defer f.Close()

	for i, s := range sheets {
		if i == 0 {
			if err := f.SetSheetName(defaultSheet, s.Name); err != nil {
				return fmt.Errorf("error naming sheet %q: %w", s.Name, err)
			}
		} else if _, err := f.NewSheet(s.Name); err != nil {
			return fmt.Errorf("error creating sheet %q: %w", s.Name, err)
		}

		if err := writeSheet(f, s); err != nil {
			return err
		}
	}
	f.SetActiveSheet(0)

	if err := f.Write(w); err != nil {
		return fmt.Errorf("error writing workbook: %w", err)
	}
	return nil
}

func writeSheet(f *excelize.File, s Sheet) error {
	header := make([]any, 0, len(s.Table.Columns()))
	for _, c := range s.Table.Columns() {
		header = append(header, c)
	}
	if err := f.SetSheetRow(s.Name, "A1", &header); err != nil {
		return fmt.Errorf("error writing header of sheet %q: %w", s.Name, err)
	}

	for r, rec := range s.Table.Records() {
		row := make([]any, len(rec))
		for i, v := range rec {
			if num, err := strconv.ParseFloat(v, 64); err == nil && !math.IsNaN(num) && !math.IsInf(num, 0) {
				row[i] = num
			} else {
				row[i] = v
			}
		}

		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(s.Name, cell, &row); err != nil {
			return fmt.Errorf("error writing row %d of sheet %q: %w", r, s.Name, err)
		}
	}
	return nil
}
