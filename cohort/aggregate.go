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
	"github.com/OpenPSG/ecogpower/recording"
	"github.com/OpenPSG/ecogpower/spectrum"
	"go.uber.org/zap"
)

// Aggregate computes the mean PSD of files for calc. For Ratio the per-file
// signal/baseline ratios are averaged. Files that fail to import are left out
// of the mean.
func (p *Pipeline) Aggregate(ctx context.Context, files []string, calc spectrum.Calc) (*spectrum.Table, error) {
	if len(files) == 0 {
		return nil, fmt.Errorf("%w: no recordings to aggregate", ecogpower.ErrEmptyCohort)
	}
	if !calc.Valid() {
		return nil, fmt.Errorf("%w: unsupported calc %s", ecogpower.ErrInvalidParameter, calc)
	}

	tables := make([]*spectrum.Table, len(files))
	skipped, err := p.forEach(ctx, files, func(i int, rec *recording.Recording) error {
		tbl, err := p.estimator.EstimateCalc(rec, p.params, calc, p.windows)
		if err != nil {
			return err
		}
		tables[i] = tbl
		return nil
	})
	if err != nil {
		return nil, err
	}

	var (
		sum   *spectrum.Table
		count int
	)
	for _, tbl := range tables {
		if tbl == nil {
			continue
		}
		count++
		if sum == nil {
			sum = tbl
			continue
		}
		if err := sum.Add(tbl); err != nil {
			return nil, err
		}
	}
	if count == 0 {
		return nil, emptyCohort(skipped)
	}
	sum.Scale(1 / float64(count))

	p.logger.Debug("Aggregated cohort",
		zap.Stringer("calc", calc),
		zap.Int("recordings", count),
		zap.Int("skipped", len(files)-count))

	return sum, nil
}
