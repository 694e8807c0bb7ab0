// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package main

import (
	"context"

	"github.com/OpenPSG/ecogpower/config"
	"github.com/OpenPSG/ecogpower/export"
	"github.com/OpenPSG/ecogpower/spectrum"
	"github.com/OpenPSG/ecogpower/table"
	"github.com/spf13/cobra"
)

func newAggregateCmd(a *app) *cobra.Command {
	var calcName string

	cmd := &cobra.Command{
		Use:   "aggregate [cohort]",
		Short: "Average the PSD of a cohort",
		Long: `Average the PSD of every recording of a cohort over the baseline window,
the signal window, or (for --calc ratio) the per-recording signal/baseline
ratio.

Example: ecogpower aggregate ketamine_week_0 --calc ratio`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			calc, err := spectrum.ParseCalc(calcName)
			if err != nil {
				return err
			}
			cfg, err := a.config()
			if err != nil {
				return err
			}
			co, err := cfg.Cohort(args[0])
			if err != nil {
				return err
			}

			wide, err := aggregate(cmd.Context(), a, cfg, co.Name, calc)
			if err != nil {
				return err
			}
			return a.writeCSV(export.FileName("1", "csv", co.Name, calc.String(), "power"), wide)
		},
	}

	cmd.Flags().StringVar(&calcName, "calc", "baseline", "calculation: baseline, signal or ratio")

	return cmd
}

func newContrastCmd(a *app) *cobra.Command {
	var calcName string

	cmd := &cobra.Command{
		Use:   "contrast [treatment] [control]",
		Short: "Divide the cohort PSD of a treatment by that of a control",
		Long: `Aggregate both cohorts and divide the treatment PSD by the control PSD per
frequency and channel.

Example: ecogpower contrast ketamine_week_0 saline_week_0 --calc ratio`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			calc, err := spectrum.ParseCalc(calcName)
			if err != nil {
				return err
			}
			cfg, err := a.config()
			if err != nil {
				return err
			}

			treatment, err := aggregate(cmd.Context(), a, cfg, args[0], calc)
			if err != nil {
				return err
			}
			control, err := aggregate(cmd.Context(), a, cfg, args[1], calc)
			if err != nil {
				return err
			}
			ratio, err := treatment.Ratio(control)
			if err != nil {
				return err
			}
			return a.writeCSV(export.FileName("1", "csv", args[0], args[1], calc.String(), "power_ratio"), ratio)
		},
	}

	cmd.Flags().StringVar(&calcName, "calc", "ratio", "calculation: baseline, signal or ratio")

	return cmd
}

// aggregate averages the named cohort and tags the rows with its name and
// phase.
func aggregate(ctx context.Context, a *app, cfg *config.Config, name string, calc spectrum.Calc) (*table.Wide, error) {
	co, err := cfg.Cohort(name)
	if err != nil {
		return nil, err
	}
	p, err := a.pipeline(cfg)
	if err != nil {
		return nil, err
	}
	tbl, err := p.Aggregate(ctx, co.Files, calc)
	if err != nil {
		return nil, err
	}
	return table.NewWide(tbl, calc, table.Meta{Subject: co.Name, Phase: co.Phase}), nil
}
