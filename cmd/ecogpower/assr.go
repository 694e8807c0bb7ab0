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
	"github.com/OpenPSG/ecogpower/export"
	"github.com/OpenPSG/ecogpower/recording"
	"github.com/spf13/cobra"
)

func newASSRCmd(a *app) *cobra.Command {
	var (
		heatMap bool
		fmin    float64
		fmax    float64
	)

	cmd := &cobra.Command{
		Use:   "assr [cohort]",
		Short: "Summarise the 40 Hz auditory steady-state response of a cohort",
		Long: `Compute Morlet wavelet power and inter-trial coherence for every recording
of a cohort and write the baseline, response, ratio and phase locking factor
of each. With --map, also write the cohort-averaged power change in dB
relative to the baseline window.

Example: ecogpower assr ketamine_week_0 --map`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.config()
			if err != nil {
				return err
			}
			co, err := cfg.Cohort(args[0])
			if err != nil {
				return err
			}
			an, err := a.analyzer(cfg)
			if err != nil {
				return err
			}
			loader := recording.EDFLoader{Layout: cfg.Layout}
			channel := cfg.ASSR.Channel

			tbl, err := an.Cohort(cmd.Context(), loader, co.Files, co.Subjects, channel, co.Treatment)
			if err != nil {
				return err
			}
			if err := a.writeCSV(export.FileName("4", "csv", co.Treatment, "40_ASSR", channel, co.Phase), tbl); err != nil {
				return err
			}

			if !heatMap {
				return nil
			}
			m, err := an.AverageMap(cmd.Context(), loader, co.Files, channel)
			if err != nil {
				return err
			}
			if m, err = m.Crop(fmin, fmax); err != nil {
				return err
			}
			db, err := m.DecibelChange(cfg.ASSR.Summary.Baseline)
			if err != nil {
				return err
			}
			return a.writeCSV(export.FileName("4", "csv", channel, co.Treatment, co.Phase, "map"),
				export.Matrix{Freqs: m.Freqs, Times: m.Times, Values: db})
		},
	}

	cmd.Flags().BoolVar(&heatMap, "map", false, "also write the averaged time-frequency map")
	cmd.Flags().Float64Var(&fmin, "map-fmin", 20, "lowest map frequency in Hz")
	cmd.Flags().Float64Var(&fmax, "map-fmax", 70, "highest map frequency in Hz")

	return cmd
}
