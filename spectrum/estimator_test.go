// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package spectrum_test

import (
	"math"
	"testing"

	"github.com/OpenPSG/ecogpower"
	"github.com/OpenPSG/ecogpower/recording"
	"github.com/OpenPSG/ecogpower/spectrum"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func synthRecording(t *testing.T) *recording.Recording {
	t.Helper()

	p := recording.DefaultSynthParams()
	p.SampleRate = 1000
	p.Epochs = 8

	rec, err := recording.Synthesize(recording.DefaultLayout(), p)
	require.NoError(t, err)
	return rec
}

// level reports the first sample of the segment as the value of every bin.
type level struct{}

func (level) Spectrum(segment []float64, sampleRate float64) ([]float64, []float64, error) {
	bins := len(segment)/2 + 1
	freqs := make([]float64, bins)
	psd := make([]float64, bins)
	for i := range freqs {
		freqs[i] = float64(i) * sampleRate / float64(len(segment))
		psd[i] = segment[0]
	}
	return freqs, psd, nil
}

func TestEstimateFrequencyWindow(t *testing.T) {
	rec := synthRecording(t)
	est := spectrum.NewEstimator()

	p := spectrum.DefaultParams("Aux1", "PFC")
	p.FreqMin, p.FreqMax = 2, 80

	tbl, err := est.Estimate(rec, p)
	require.NoError(t, err)

	assert.Equal(t, []string{"Aux1", "PFC"}, tbl.Channels)
	require.NotEmpty(t, tbl.Freqs)
	for i, f := range tbl.Freqs {
		assert.GreaterOrEqual(t, f, 2.0)
		assert.LessOrEqual(t, f, 80.0)
		if i > 0 {
			assert.Greater(t, f, tbl.Freqs[i-1])
		}
	}
	for _, col := range tbl.Power {
		assert.Len(t, col, len(tbl.Freqs))
	}
}

func TestEstimateConvertsToMicrovoltsSquared(t *testing.T) {
	channels := []recording.Channel{
		{Name: "Aux1", Type: recording.ChannelECoG},
		{Name: "PFC", Type: recording.ChannelECoG, Source: 1},
	}
	est := spectrum.NewEstimator(spectrum.WithPeriodogram(spectrum.Multitaper, level{}))

	for _, a := range []float64{1e-12, 2.5e-11, 4e-10} {
		sig := make([]float64, 3000)
		for i := range sig {
			sig[i] = a
		}
		rec, err := recording.New(channels, 1000, [][][]float64{{sig, sig}})
		require.NoError(t, err)

		want := math.Pow(math.Sqrt(a)*1e6, 2)
		for _, w := range []spectrum.TimeWindow{{Min: 0.2, Max: 0.9}, {Min: 1.2, Max: 1.9}, {Min: 0, Max: 3}} {
			tbl, err := est.Estimate(rec, spectrum.DefaultParams("Aux1", "PFC").WithWindow(w))
			require.NoError(t, err)
			for _, col := range tbl.Power {
				for _, v := range col {
					assert.InEpsilon(t, want, v, 1e-9)
				}
			}
		}
	}
}

func TestEstimateResponsePeak(t *testing.T) {
	rec := synthRecording(t)

	for _, method := range []spectrum.Method{spectrum.Multitaper, spectrum.Welch} {
		t.Run(method.String(), func(t *testing.T) {
			p := spectrum.DefaultParams("Aux1")
			p.FreqMin, p.FreqMax = 20, 60
			p.Method = method
			if method == spectrum.Welch {
				// Welch needs at least 1000 samples.
				p.TimeMin = 0.9
			}

			tbl, err := spectrum.NewEstimator().Estimate(rec, p)
			require.NoError(t, err)

			peak := 0
			for i, v := range tbl.Power[0] {
				if v > tbl.Power[0][peak] {
					peak = i
				}
			}
			assert.InDelta(t, 40.0, tbl.Freqs[peak], 1.5)
		})
	}
}

func TestEstimateWelchWindowTooShort(t *testing.T) {
	p := spectrum.DefaultParams("Aux1")
	p.Method = spectrum.Welch

	_, err := spectrum.NewEstimator().Estimate(synthRecording(t), p)
	require.ErrorIs(t, err, ecogpower.ErrInvalidParameter)
}

func TestEstimateInvalidParams(t *testing.T) {
	rec := synthRecording(t)
	est := spectrum.NewEstimator()

	p := spectrum.DefaultParams("Aux1")
	p.Method = spectrum.Method(9)
	_, err := est.Estimate(rec, p)
	require.ErrorIs(t, err, ecogpower.ErrInvalidParameter)

	_, err = est.Estimate(rec, spectrum.DefaultParams("M1"))
	require.ErrorIs(t, err, ecogpower.ErrInvalidParameter)

	p = spectrum.DefaultParams("Aux1").WithWindow(spectrum.TimeWindow{Min: 5, Max: 6})
	_, err = est.Estimate(rec, p)
	require.ErrorIs(t, err, ecogpower.ErrInvalidParameter)

	p = spectrum.DefaultParams("Aux1")
	p.FreqMin, p.FreqMax = 40.1, 40.2
	_, err = est.Estimate(rec, p)
	require.ErrorIs(t, err, ecogpower.ErrInvalidParameter)
}

func TestEstimateCalc(t *testing.T) {
	rec := synthRecording(t)
	est := spectrum.NewEstimator()
	p := spectrum.DefaultParams("Aux1")
	w := spectrum.DefaultWindows()

	baseline, err := est.EstimateCalc(rec, p, spectrum.Baseline, w)
	require.NoError(t, err)
	signal, err := est.EstimateCalc(rec, p, spectrum.Signal, w)
	require.NoError(t, err)
	ratio, err := est.EstimateCalc(rec, p, spectrum.Ratio, w)
	require.NoError(t, err)

	require.Equal(t, baseline.Freqs, ratio.Freqs)
	for i := range ratio.Freqs {
		assert.InEpsilon(t, signal.Power[0][i]/baseline.Power[0][i], ratio.Power[0][i], 1e-9)
	}

	// The entrained response dominates the ratio at 40 Hz.
	at40 := 0
	for i, f := range ratio.Freqs {
		if math.Abs(f-40) < math.Abs(ratio.Freqs[at40]-40) {
			at40 = i
		}
	}
	assert.Greater(t, ratio.Power[0][at40], 5.0)

	_, err = est.EstimateCalc(rec, p, spectrum.Calc(0), w)
	require.ErrorIs(t, err, ecogpower.ErrInvalidParameter)
}

func TestEstimatePreFilter(t *testing.T) {
	rec := synthRecording(t)
	est := spectrum.NewEstimator()

	p := spectrum.DefaultParams("Aux1")
	band := spectrum.DefaultFilterBand()
	p.Filter = &band

	tbl, err := est.Estimate(rec, p)
	require.NoError(t, err)
	assert.NotEmpty(t, tbl.Freqs)

	// The low-pass edge must lie below Nyquist.
	band.High = 600
	_, err = est.Estimate(rec, p)
	require.ErrorIs(t, err, ecogpower.ErrInvalidParameter)
}
