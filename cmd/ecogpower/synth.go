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
	"fmt"
	"os"
	"path/filepath"

	"github.com/OpenPSG/ecogpower/recording"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newSynthCmd(a *app) *cobra.Command {
	var (
		subjects int
		prefix   string
		session  string
		p        = recording.DefaultSynthParams()
	)

	cmd := &cobra.Command{
		Use:   "synth",
		Short: "Write synthetic 40 Hz click-train recordings",
		Long: `Write EDF recordings with a stimulus marker and ECoG channels carrying a
background rhythm, noise and a phase-locked response during the stimulus.
Useful for trying out configurations without laboratory data.

Example: ecogpower synth --subjects 4 --response 10 -o testdata`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.config()
			if err != nil {
				return err
			}

			for i := 0; i < subjects; i++ {
				subject := fmt.Sprintf("%s%d", prefix, i+1)
				sp := p
				sp.Seed = p.Seed + uint64(i)
				rec, err := recording.Synthesize(cfg.Layout, sp)
				if err != nil {
					return err
				}

				path := filepath.Join(a.outDir, subject+".edf")
				if err := writeRecording(path, rec, subject, session); err != nil {
					return err
				}
				a.logger.Info("Wrote recording", zap.String("path", path), zap.Int("epochs", rec.Epochs()))
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&subjects, "subjects", 1, "number of recordings")
	cmd.Flags().StringVar(&prefix, "prefix", "A", "subject name prefix")
	cmd.Flags().StringVar(&session, "session", "week_0", "session recorded in the file header")
	cmd.Flags().IntVar(&p.Epochs, "epochs", p.Epochs, "sweeps per recording")
	cmd.Flags().Float64Var(&p.SampleRate, "rate", p.SampleRate, "sampling rate in Hz")
	cmd.Flags().Float64Var(&p.ResponseAmplitude, "response", p.ResponseAmplitude, "phase-locked response amplitude in µV")
	cmd.Flags().Float64Var(&p.NoiseAmplitude, "noise", p.NoiseAmplitude, "white noise standard deviation in µV")
	cmd.Flags().Uint64Var(&p.Seed, "seed", p.Seed, "random seed of the first recording")

	return cmd
}

func writeRecording(path string, rec *recording.Recording, subject, session string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := recording.WriteEDF(f, rec, subject, session); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return f.Close()
}
