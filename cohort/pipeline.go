// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

// Package cohort runs the spectral analyses over groups of recordings.
package cohort

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"github.com/OpenPSG/ecogpower"
	"github.com/OpenPSG/ecogpower/bands"
	"github.com/OpenPSG/ecogpower/recording"
	"github.com/OpenPSG/ecogpower/spectrum"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Band reductions always start from the 0-101 Hz spectrum.
const (
	reduceFreqMin = 0
	reduceFreqMax = 101
)

// Pipeline loads recordings and computes cohort PSDs and band tables.
type Pipeline struct {
	logger    *zap.Logger
	loader    recording.Loader
	estimator *spectrum.Estimator
	params    spectrum.Params
	windows   spectrum.Windows
	reducer   *bands.Reducer
	bandsErr  error
	workers   int
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the logger used to report skipped recordings.
func WithLogger(logger *zap.Logger) Option {
	return func(p *Pipeline) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithEstimator replaces the default spectrum estimator.
func WithEstimator(e *spectrum.Estimator) Option {
	return func(p *Pipeline) {
		if e != nil {
			p.estimator = e
		}
	}
}

// WithWindows sets the baseline and signal windows.
func WithWindows(w spectrum.Windows) Option {
	return func(p *Pipeline) {
		p.windows = w
	}
}

// WithBands sets the band set used by Reduce and BuildTable.
func WithBands(set bands.Set) Option {
	return func(p *Pipeline) {
		p.reducer, p.bandsErr = bands.NewReducer(set)
	}
}

// WithWorkers limits the number of recordings processed concurrently.
func WithWorkers(n int) Option {
	return func(p *Pipeline) {
		if n > 0 {
			p.workers = n
		}
	}
}

// NewPipeline returns a Pipeline reading recordings through loader. params
// selects channels, method, pre-filter and the frequency window of
// Aggregate; its time window is replaced by the calculation windows.
func NewPipeline(loader recording.Loader, params spectrum.Params, opts ...Option) (*Pipeline, error) {
	reducer, err := bands.NewReducer(bands.Canonical())
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		logger:    zap.NewNop(),
		loader:    loader,
		estimator: spectrum.NewEstimator(),
		params:    params,
		windows:   spectrum.DefaultWindows(),
		reducer:   reducer,
		workers:   runtime.GOMAXPROCS(0),
	}
	for _, opt := range opts {
		opt(p)
	}

	if p.loader == nil {
		return nil, fmt.Errorf("%w: no recording loader", ecogpower.ErrInvalidParameter)
	}
	if p.bandsErr != nil {
		return nil, fmt.Errorf("band set: %w", p.bandsErr)
	}
	if err := p.windows.Validate(); err != nil {
		return nil, err
	}
	if err := p.params.WithWindow(p.windows.Signal).Validate(); err != nil {
		return nil, err
	}

	return p, nil
}

// forEach loads every file and calls fn with its index and recording, at most
// p.workers at a time. Recoverable load failures are logged and returned in
// skipped, indexed like files; any other error stops the run.
func (p *Pipeline) forEach(ctx context.Context, files []string, fn func(i int, rec *recording.Recording) error) (skipped []error, err error) {
	skipped = make([]error, len(files))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)
	for i, path := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			rec, err := p.loader.Load(path)
			if err != nil {
				if ecogpower.Recoverable(err) {
					p.logger.Warn("Skipping recording", zap.String("file", path), zap.Error(err))
					skipped[i] = err
					return nil
				}
				return fmt.Errorf("%s: %w", path, err)
			}

			if err := fn(i, rec); err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return skipped, nil
}

// emptyCohort reports that none of the recordings could be processed.
func emptyCohort(skipped []error) error {
	return fmt.Errorf("%w: no recording could be imported: %w", ecogpower.ErrEmptyCohort, errors.Join(skipped...))
}
