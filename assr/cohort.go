// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package assr

import (
	"context"
	"errors"
	"fmt"

	"github.com/OpenPSG/ecogpower"
	"github.com/OpenPSG/ecogpower/recording"
	"github.com/OpenPSG/ecogpower/table"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Cohort summarises the response of channel in every file with the
// analyzer's summary parameters. Rows keep the order of files; files that fail to import
// are logged and left out.
func (a *Analyzer) Cohort(ctx context.Context, loader recording.Loader, files, subjects []string, channel, treatment string) (*table.ASSR, error) {
	if len(files) != len(subjects) {
		return nil, fmt.Errorf("%w: %d files and %d subjects", ecogpower.ErrShapeMismatch, len(files), len(subjects))
	}

	rows := make([]*table.ASSRRow, len(files))
	skipped, err := a.forEach(ctx, loader, files, channel, func(i int, m *Map) error {
		s, err := Summarize(m, a.summary)
		if err != nil {
			return err
		}
		rows[i] = &table.ASSRRow{
			Subject:      subjects[i],
			BaselineMean: s.BaselineMean,
			ResponseMean: s.ResponseMean,
			Ratio:        s.Ratio,
			PLF:          s.PLF,
			Treatment:    treatment,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	out := &table.ASSR{}
	for _, r := range rows {
		if r != nil {
			out.Rows = append(out.Rows, *r)
		}
	}
	if len(out.Rows) == 0 {
		return nil, emptyCohort(skipped)
	}
	return out, nil
}

// AverageMap averages the power and ITC maps of channel over files.
func (a *Analyzer) AverageMap(ctx context.Context, loader recording.Loader, files []string, channel string) (*Map, error) {
	maps := make([]*Map, len(files))
	skipped, err := a.forEach(ctx, loader, files, channel, func(i int, m *Map) error {
		maps[i] = m
		return nil
	})
	if err != nil {
		return nil, err
	}

	var (
		sum   *Map
		count int
	)
	for _, m := range maps {
		if m == nil {
			continue
		}
		count++
		if sum == nil {
			sum = m
			continue
		}
		if err := sum.accumulate(m); err != nil {
			return nil, err
		}
	}
	if count == 0 {
		return nil, emptyCohort(skipped)
	}
	sum.scale(1 / float64(count))
	return sum, nil
}

// forEach analyses every file, at most a.workers at a time, and hands the
// maps to fn by index. Recoverable import failures are logged and returned
// in skipped.
func (a *Analyzer) forEach(ctx context.Context, loader recording.Loader, files []string, channel string, fn func(i int, m *Map) error) (skipped []error, err error) {
	if len(files) == 0 {
		return nil, fmt.Errorf("%w: no recordings to analyse", ecogpower.ErrEmptyCohort)
	}

	skipped = make([]error, len(files))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(a.workers)
	for i, path := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			rec, err := loader.Load(path)
			if err != nil {
				if ecogpower.Recoverable(err) {
					a.logger.Warn("Skipping recording", zap.String("file", path), zap.Error(err))
					skipped[i] = err
					return nil
				}
				return fmt.Errorf("%s: %w", path, err)
			}

			m, err := a.Analyze(rec, channel)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			return fn(i, m)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return skipped, nil
}

func emptyCohort(skipped []error) error {
	return fmt.Errorf("%w: no recording could be imported: %w", ecogpower.ErrEmptyCohort, errors.Join(skipped...))
}
