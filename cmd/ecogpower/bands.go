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
	"github.com/OpenPSG/ecogpower/bands"
	"github.com/OpenPSG/ecogpower/export"
	"github.com/OpenPSG/ecogpower/spectrum"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newBandsCmd(a *app) *cobra.Command {
	var (
		calcName string
		narrow40 bool
		full     bool
		band     string
		area     string
		xlsx     bool
	)

	cmd := &cobra.Command{
		Use:   "bands [cohort...]",
		Short: "Tabulate band power of every recording of one or more cohorts",
		Long: `Compute per-recording band power (delta to high gamma), the 38-42 Hz band
with --narrow40, or the full 0-101 Hz spectrum with --full, and write one
long-form table per cohort.

Example: ecogpower bands ketamine_week_0 saline_week_0 --calc ratio --narrow40`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			calc, err := spectrum.ParseCalc(calcName)
			if err != nil {
				return err
			}
			cfg, err := a.config()
			if err != nil {
				return err
			}
			p, err := a.pipeline(cfg)
			if err != nil {
				return err
			}

			mode := bands.ModeFor(narrow40, full)
			var sheets []export.Sheet
			for _, name := range args {
				co, err := cfg.Cohort(name)
				if err != nil {
					return err
				}

				var tbl export.Tabular
				if mode == bands.ModeFullResolution {
					wide, err := p.BuildWide(cmd.Context(), co.Files, co.Subjects, co.Phase, calc)
					if err != nil {
						return err
					}
					tbl = wide
				} else {
					long, err := p.BuildTable(cmd.Context(), co.Files, co.Subjects, co.Phase, calc, mode)
					if err != nil {
						return err
					}
					if band != "" || area != "" {
						long = long.Filter(band, area)
						a.logger.Info("Filtered table", zap.String("band", band), zap.String("area", area), zap.Int("rows", len(long.Rows)))
					}
					tbl = long
				}

				parts := []string{co.Name, calc.String(), mode.String()}
				if band != "" {
					parts = append(parts, band, area)
				}
				if err := a.writeCSV(export.FileName("1", "csv", parts...), tbl); err != nil {
					return err
				}
				sheets = append(sheets, export.Sheet{Name: co.Name, Table: tbl})
			}

			if xlsx {
				return a.writeXLSX(export.FileName("1", "xlsx", calc.String(), mode.String()), sheets...)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&calcName, "calc", "baseline", "calculation: baseline, signal or ratio")
	cmd.Flags().BoolVar(&narrow40, "narrow40", false, "average the 38-42 Hz band only")
	cmd.Flags().BoolVar(&full, "full", false, "keep every frequency bin")
	cmd.Flags().StringVar(&band, "band", "", "keep only rows of this band (with --area)")
	cmd.Flags().StringVar(&area, "area", "", "keep only rows of this brain area (with --band)")
	cmd.Flags().BoolVar(&xlsx, "xlsx", false, "also write a workbook with one sheet per cohort")
	cmd.MarkFlagsRequiredTogether("band", "area")

	return cmd
}
