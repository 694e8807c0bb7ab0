// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

// Command ecogpower computes band power tables and ASSR summaries from sweep
// recordings.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/OpenPSG/ecogpower/assr"
	"github.com/OpenPSG/ecogpower/cohort"
	"github.com/OpenPSG/ecogpower/config"
	"github.com/OpenPSG/ecogpower/export"
	"github.com/OpenPSG/ecogpower/recording"
	"github.com/OpenPSG/ecogpower/spectrum"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// app holds the state shared by every subcommand.
type app struct {
	configPath string
	outDir     string
	workers    int
	verbose    bool

	logger *zap.Logger
	cfg    *config.Config
}

func main() {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:           "ecogpower",
		Short:         "Spectral power analysis of ECoG sweep recordings",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	rootCmd.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "analysis configuration (default $ECOGPOWER_CONFIG or ecogpower.yaml)")
	rootCmd.PersistentFlags().StringVarP(&a.outDir, "out", "o", ".", "output directory")
	rootCmd.PersistentFlags().IntVar(&a.workers, "workers", 0, "recordings processed concurrently (default $ECOGPOWER_WORKERS or the config)")
	rootCmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "enable development logging")

	rootCmd.AddCommand(
		newBandsCmd(a),
		newAggregateCmd(a),
		newContrastCmd(a),
		newASSRCmd(a),
		newSynthCmd(a),
	)

	if err := rootCmd.Execute(); err != nil {
		if a.logger != nil {
			a.logger.Error("Command failed", zap.Error(err))
			_ = a.logger.Sync()
		} else {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

func (a *app) setup(cmd *cobra.Command) error {
	// A missing .env file is fine.
	_ = godotenv.Load()

	var (
		logger *zap.Logger
		err    error
	)
	if a.verbose {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	a.logger = logger.With(zap.String("run", uuid.NewString()), zap.String("command", cmd.Name()))

	if a.configPath == "" {
		a.configPath = os.Getenv("ECOGPOWER_CONFIG")
	}
	if a.workers == 0 {
		if v := os.Getenv("ECOGPOWER_WORKERS"); v != "" {
			if a.workers, err = strconv.Atoi(v); err != nil {
				return fmt.Errorf("invalid ECOGPOWER_WORKERS: %w", err)
			}
		}
	}

	return os.MkdirAll(a.outDir, 0o755)
}

// config loads the configuration once. Without an explicit path a missing
// ecogpower.yaml falls back to the defaults.
func (a *app) config() (*config.Config, error) {
	if a.cfg != nil {
		return a.cfg, nil
	}

	path := a.configPath
	if path == "" {
		path = "ecogpower.yaml"
		if _, err := os.Stat(path); os.IsNotExist(err) {
			a.logger.Info("No configuration file, using defaults")
			path = ""
		}
	}

	cfg := config.Default()
	if path != "" {
		var err error
		if cfg, err = config.Load(path); err != nil {
			return nil, err
		}
		a.logger.Info("Loaded configuration", zap.String("path", path), zap.Int("cohorts", len(cfg.Cohorts)))
	}
	if a.workers > 0 {
		cfg.Workers = a.workers
	}
	a.cfg = cfg
	return cfg, nil
}

func (a *app) pipeline(cfg *config.Config) (*cohort.Pipeline, error) {
	return cohort.NewPipeline(recording.EDFLoader{Layout: cfg.Layout}, cfg.Params(),
		cohort.WithLogger(a.logger),
		cohort.WithEstimator(spectrum.NewEstimator(cfg.EstimatorOptions()...)),
		cohort.WithWindows(cfg.Windows),
		cohort.WithBands(cfg.Bands),
		cohort.WithWorkers(cfg.Workers),
	)
}

func (a *app) analyzer(cfg *config.Config) (*assr.Analyzer, error) {
	return assr.NewAnalyzer(
		assr.WithLogger(a.logger),
		assr.WithSummary(cfg.ASSR.Summary),
		assr.WithWorkers(cfg.Workers),
	)
}

// writeCSV writes t to name in the output directory.
func (a *app) writeCSV(name string, t export.Tabular) error {
	path := filepath.Join(a.outDir, name)
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := export.WriteCSV(f, t); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return err
	}

	a.logger.Info("Wrote table", zap.String("path", path))
	return nil
}

// writeXLSX writes sheets to name in the output directory.
func (a *app) writeXLSX(name string, sheets ...export.Sheet) error {
	path := filepath.Join(a.outDir, name)
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := export.WriteXLSX(f, sheets...); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return err
	}

	a.logger.Info("Wrote workbook", zap.String("path", path), zap.Int("sheets", len(sheets)))
	return nil
}
