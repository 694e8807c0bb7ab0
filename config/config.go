// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

// Package config loads analysis configurations from YAML.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/OpenPSG/ecogpower"
	"github.com/OpenPSG/ecogpower/assr"
	"github.com/OpenPSG/ecogpower/bands"
	"github.com/OpenPSG/ecogpower/recording"
	"github.com/OpenPSG/ecogpower/spectrum"
	"gopkg.in/yaml.v3"
)

// Config is an analysis configuration.
type Config struct {
	Layout     recording.Layout     `yaml:"layout"`
	Channels   []string             `yaml:"channels"`
	Method     spectrum.Method      `yaml:"method"`
	FreqMin    float64              `yaml:"freq_min"`
	FreqMax    float64              `yaml:"freq_max"`
	Filter     *spectrum.FilterBand `yaml:"filter"`
	Windows    spectrum.Windows     `yaml:"windows"`
	Bands      bands.Set            `yaml:"bands"`
	Multitaper MultitaperConfig     `yaml:"multitaper"`
	Welch      WelchConfig          `yaml:"welch"`
	ASSR       ASSRConfig           `yaml:"assr"`
	Workers    int                  `yaml:"workers"`
	Cohorts    []Cohort             `yaml:"cohorts"`
}

// MultitaperConfig tunes the multitaper estimator.
type MultitaperConfig struct {
	Bandwidth float64 `yaml:"bandwidth"`
	Density   bool    `yaml:"density"`
}

// WelchConfig tunes the Welch estimator.
type WelchConfig struct {
	Length int `yaml:"length"`
}

// ASSRConfig selects the channel and windows of the steady-state analysis.
type ASSRConfig struct {
	Channel string             `yaml:"channel"`
	Summary assr.SummaryParams `yaml:"summary"`
}

// Cohort is a group of recordings from one experiment phase.
type Cohort struct {
	Name      string   `yaml:"name"`
	Phase     string   `yaml:"phase"`
	Treatment string   `yaml:"treatment"`
	Files     []string `yaml:"files"`
	Subjects  []string `yaml:"subjects"`
}

// Default returns the configuration used when no file overrides a setting.
func Default() *Config {
	return &Config{
		Layout:     recording.DefaultLayout(),
		Channels:   []string{"Aux1", "PFC"},
		Method:     spectrum.Multitaper,
		FreqMin:    0.1,
		FreqMax:    100,
		Windows:    spectrum.DefaultWindows(),
		Bands:      bands.Canonical(),
		Multitaper: MultitaperConfig{Bandwidth: 2},
		Welch:      WelchConfig{Length: 1000},
		ASSR:       ASSRConfig{Channel: "Aux1", Summary: assr.DefaultSummaryParams()},
	}
}

// Load reads the configuration at path on top of the defaults. Relative
// recording paths are resolved against the directory of path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: failed to parse config file: %w", ecogpower.ErrInvalidParameter, err)
	}

	dir := filepath.Dir(path)
	for i := range cfg.Cohorts {
		for j, f := range cfg.Cohorts[i].Files {
			if !filepath.IsAbs(f) {
				cfg.Cohorts[i].Files[j] = filepath.Join(dir, f)
			}
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	if err := c.Layout.Validate(); err != nil {
		return err
	}
	for _, ch := range append(slices.Clone(c.Channels), c.ASSR.Channel) {
		if !slices.Contains(c.Layout.Names(), ch) {
			return fmt.Errorf("%w: channel %q is not in the layout", ecogpower.ErrInvalidParameter, ch)
		}
	}
	if err := c.Params().Validate(); err != nil {
		return err
	}
	if err := c.Windows.Validate(); err != nil {
		return err
	}
	if err := c.Bands.Validate(); err != nil {
		return err
	}
	if err := c.ASSR.Summary.Validate(); err != nil {
		return err
	}
	if c.Multitaper.Bandwidth <= 0 || c.Welch.Length <= 0 {
		return fmt.Errorf("%w: multitaper bandwidth and welch length must be positive", ecogpower.ErrInvalidParameter)
	}
	if c.Workers < 0 {
		return fmt.Errorf("%w: negative worker count", ecogpower.ErrInvalidParameter)
	}

	seen := make(map[string]bool, len(c.Cohorts))
	for _, co := range c.Cohorts {
		if co.Name == "" || seen[co.Name] {
			return fmt.Errorf("%w: cohort name %q is empty or repeated", ecogpower.ErrInvalidParameter, co.Name)
		}
		seen[co.Name] = true
		if len(co.Files) != len(co.Subjects) {
			return fmt.Errorf("%w: cohort %s has %d files and %d subjects", ecogpower.ErrShapeMismatch, co.Name, len(co.Files), len(co.Subjects))
		}
	}
	return nil
}

// Params returns the estimator parameters over the signal window.
func (c *Config) Params() spectrum.Params {
	p := spectrum.DefaultParams(c.Channels...)
	p.FreqMin, p.FreqMax = c.FreqMin, c.FreqMax
	p.Method = c.Method
	p.Filter = c.Filter
	return p.WithWindow(c.Windows.Signal)
}

// EstimatorOptions returns the estimator tuning of c.
func (c *Config) EstimatorOptions() []spectrum.Option {
	opts := []spectrum.Option{
		spectrum.WithMultitaperBandwidth(c.Multitaper.Bandwidth),
		spectrum.WithWelchLength(c.Welch.Length),
	}
	if c.Multitaper.Density {
		opts = append(opts, spectrum.WithMultitaperDensity())
	}
	return opts
}

// Cohort returns the cohort named name.
func (c *Config) Cohort(name string) (Cohort, error) {
	for _, co := range c.Cohorts {
		if co.Name == name {
			return co, nil
		}
	}
	return Cohort{}, fmt.Errorf("%w: unknown cohort %q", ecogpower.ErrInvalidParameter, name)
}
