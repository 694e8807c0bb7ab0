// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package recording

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/OpenPSG/ecogpower"
	"github.com/OpenPSG/ecogpower/units"
)

// SynthParams configures a synthetic steady-state response recording.
// Amplitudes are in microvolts, times in seconds.
type SynthParams struct {
	SampleRate          float64
	Epochs              int
	SweepDuration       float64
	StimOnset           float64
	StimOffset          float64
	ToneFrequency       float64 // Frequency of the entrained response
	ResponseAmplitude   float64 // Phase-locked tone amplitude during the stimulus
	BackgroundFrequency float64 // Ongoing rhythm with a random phase per sweep
	BackgroundAmplitude float64
	NoiseAmplitude      float64 // Standard deviation of white noise
	Seed                uint64
}

// DefaultSynthParams mirrors the 40 Hz click-train protocol: 3 s sweeps at
// 2 kHz with the stimulus between 1 s and 2 s.
func DefaultSynthParams() SynthParams {
	return SynthParams{
		SampleRate:          2000,
		Epochs:              30,
		SweepDuration:       3,
		StimOnset:           1,
		StimOffset:          2,
		ToneFrequency:       40,
		ResponseAmplitude:   20,
		BackgroundFrequency: 6,
		BackgroundAmplitude: 30,
		NoiseAmplitude:      5,
		Seed:                1,
	}
}

// Synthesize generates a recording for layout. Stimulus channels carry a unit
// pulse between StimOnset and StimOffset; ECoG channels carry background
// rhythm, noise and a phase-locked response during the stimulus.
func Synthesize(layout Layout, p SynthParams) (*Recording, error) {
	if err := layout.Validate(); err != nil {
		return nil, err
	}
	if p.SampleRate <= 0 || p.Epochs <= 0 || p.SweepDuration <= 0 {
		return nil, fmt.Errorf("%w: synthetic recording needs a positive rate, epoch count and duration", ecogpower.ErrInvalidParameter)
	}

	rng := rand.New(rand.NewPCG(p.Seed, p.Seed^0x9e3779b97f4a7c15))
	n := int(math.Round(p.SweepDuration * p.SampleRate))

	data := make([][][]float64, p.Epochs)
	for e := range data {
		epoch := make([][]float64, len(layout.Channels))
		for c, ch := range layout.Channels {
			sig := make([]float64, n)
			phase := rng.Float64() * 2 * math.Pi
			for i := range sig {
				t := float64(i) / p.SampleRate
				stim := t >= p.StimOnset && t < p.StimOffset

				switch ch.Type {
				case ChannelStim:
					if stim {
						sig[i] = 1
					}
				default:
					v := p.BackgroundAmplitude*math.Sin(2*math.Pi*p.BackgroundFrequency*t+phase) +
						p.NoiseAmplitude*rng.NormFloat64()
					if stim {
						v += p.ResponseAmplitude * math.Sin(2*math.Pi*p.ToneFrequency*(t-p.StimOnset))
					}
					sig[i] = v
				}
			}
			units.ScaleToVolts(sig)
			epoch[c] = sig
		}
		data[e] = epoch
	}

	return New(layout.Channels, p.SampleRate, data)
}
