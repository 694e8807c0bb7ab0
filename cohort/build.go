// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package cohort

import (
	"context"
	"fmt"

	"github.com/OpenPSG/ecogpower"
	"github.com/OpenPSG/ecogpower/bands"
	"github.com/OpenPSG/ecogpower/recording"
	"github.com/OpenPSG/ecogpower/spectrum"
	"github.com/OpenPSG/ecogpower/table"
)

// Reduce computes the band table of a single recording.
func (p *Pipeline) Reduce(ctx context.Context, file, subject, phase string, calc spectrum.Calc, mode bands.Mode) (*bands.Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rec, err := p.loader.Load(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", file, err)
	}
	return p.reduce(rec, table.Meta{Subject: subject, Phase: phase}, calc, mode)
}

func (p *Pipeline) reduce(rec *recording.Recording, meta table.Meta, calc spectrum.Calc, mode bands.Mode) (*bands.Result, error) {
	params := p.params
	params.FreqMin, params.FreqMax = reduceFreqMin, reduceFreqMax

	tbl, err := p.estimator.EstimateCalc(rec, params, calc, p.windows)
	if err != nil {
		return nil, err
	}
	return p.reducer.Reduce(tbl, meta, calc, mode)
}

// BuildTable reduces every file and concatenates the long tables in input
// order. subjects names the subject of each file. Files that fail to import
// are left out.
func (p *Pipeline) BuildTable(ctx context.Context, files, subjects []string, phase string, calc spectrum.Calc, mode bands.Mode) (*table.Long, error) {
	if mode == bands.ModeFullResolution {
		return nil, fmt.Errorf("%w: full resolution tables are built with BuildWide", ecogpower.ErrInvalidParameter)
	}
	results, err := p.build(ctx, files, subjects, phase, calc, mode)
	if err != nil {
		return nil, err
	}

	tables := make([]*table.Long, len(results))
	for i, res := range results {
		tables[i] = res.Long
	}
	return table.Concat(tables...)
}

// BuildWide is BuildTable for full-resolution tables.
func (p *Pipeline) BuildWide(ctx context.Context, files, subjects []string, phase string, calc spectrum.Calc) (*table.Wide, error) {
	results, err := p.build(ctx, files, subjects, phase, calc, bands.ModeFullResolution)
	if err != nil {
		return nil, err
	}

	tables := make([]*table.Wide, len(results))
	for i, res := range results {
		tables[i] = res.Wide
	}
	return table.ConcatWide(tables...)
}

// build returns the results of the files that could be imported, in input
// order.
func (p *Pipeline) build(ctx context.Context, files, subjects []string, phase string, calc spectrum.Calc, mode bands.Mode) ([]*bands.Result, error) {
	if len(files) != len(subjects) {
		return nil, fmt.Errorf("%w: %d files and %d subjects", ecogpower.ErrShapeMismatch, len(files), len(subjects))
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w: no recordings to tabulate", ecogpower.ErrEmptyCohort)
	}

	results := make([]*bands.Result, len(files))
	skipped, err := p.forEach(ctx, files, func(i int, rec *recording.Recording) error {
		res, err := p.reduce(rec, table.Meta{Subject: subjects[i], Phase: phase}, calc, mode)
		if err != nil {
			return err
		}
		results[i] = res
		return nil
	})
	if err != nil {
		return nil, err
	}

	kept := results[:0]
	for _, res := range results {
		if res != nil {
			kept = append(kept, res)
		}
	}
	if len(kept) == 0 {
		return nil, emptyCohort(skipped)
	}
	return kept, nil
}
