// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

// Package recording imports multi-channel sweep recordings.
package recording

import (
	"fmt"
	"time"

	"github.com/OpenPSG/ecogpower"
)

// Recording is a multi-channel, multi-epoch time series. Samples are in volts.
// A Recording is never modified after it is built; slices returned by its
// accessors must be treated as read-only.
type Recording struct {
	channels   []Channel
	sampleRate float64
	data       [][][]float64 // [epoch][channel][sample]
}

// New builds a Recording from samples indexed by [epoch][channel][sample].
// The Recording takes ownership of data.
func New(channels []Channel, sampleRate float64, data [][][]float64) (*Recording, error) {
	if len(channels) == 0 {
		return nil, fmt.Errorf("%w: recording has no channels", ecogpower.ErrInvalidParameter)
	}
	if sampleRate <= 0 {
		return nil, fmt.Errorf("%w: sampling rate %g", ecogpower.ErrInvalidParameter, sampleRate)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: recording has no epochs", ecogpower.ErrInvalidParameter)
	}

	samples := -1
	for e, epoch := range data {
		if len(epoch) != len(channels) {
			return nil, fmt.Errorf("%w: epoch %d has %d channels, want %d", ecogpower.ErrShapeMismatch, e, len(epoch), len(channels))
		}
		for c, sig := range epoch {
			if samples < 0 {
				samples = len(sig)
			}
			if len(sig) != samples || samples == 0 {
				return nil, fmt.Errorf("%w: epoch %d channel %q has %d samples, want %d", ecogpower.ErrShapeMismatch, e, channels[c].Name, len(sig), samples)
			}
		}
	}

	return &Recording{
		channels:   append([]Channel(nil), channels...),
		sampleRate: sampleRate,
		data:       data,
	}, nil
}

// Channels returns the channel names in order.
func (r *Recording) Channels() []string {
	names := make([]string, len(r.channels))
	for i, ch := range r.channels {
		names[i] = ch.Name
	}
	return names
}

// ChannelTypes returns the channel type tags in channel order.
func (r *Recording) ChannelTypes() []ChannelType {
	types := make([]ChannelType, len(r.channels))
	for i, ch := range r.channels {
		types[i] = ch.Type
	}
	return types
}

// ChannelIndex returns the position of the named channel.
func (r *Recording) ChannelIndex(name string) (int, bool) {
	for i, ch := range r.channels {
		if ch.Name == name {
			return i, true
		}
	}
	return -1, false
}

// SampleRate returns the sampling rate in Hz.
func (r *Recording) SampleRate() float64 { return r.sampleRate }

// Epochs returns the number of epochs (sweeps).
func (r *Recording) Epochs() int { return len(r.data) }

// Samples returns the number of samples per epoch and channel.
func (r *Recording) Samples() int { return len(r.data[0][0]) }

// Duration returns the length of one epoch.
func (r *Recording) Duration() time.Duration {
	return time.Duration(float64(r.Samples()) / r.sampleRate * float64(time.Second))
}

// Signal returns the samples of channel c in epoch e.
func (r *Recording) Signal(e, c int) []float64 {
	return r.data[e][c]
}

// Times returns the time in seconds of every sample of an epoch, starting at 0.
func (r *Recording) Times() []float64 {
	times := make([]float64, r.Samples())
	for i := range times {
		times[i] = float64(i) / r.sampleRate
	}
	return times
}

// Pick returns a Recording restricted to the named channels, in the given
// order. The samples are shared with r.
func (r *Recording) Pick(names ...string) (*Recording, error) {
	if len(names) == 0 {
		return nil, fmt.Errorf("%w: no channels picked", ecogpower.ErrInvalidParameter)
	}

	idx := make([]int, len(names))
	channels := make([]Channel, len(names))
	for i, name := range names {
		c, ok := r.ChannelIndex(name)
		if !ok {
			return nil, fmt.Errorf("%w: unknown channel %q", ecogpower.ErrInvalidParameter, name)
		}
		idx[i] = c
		channels[i] = r.channels[c]
	}

	data := make([][][]float64, len(r.data))
	for e, epoch := range r.data {
		data[e] = make([][]float64, len(idx))
		for i, c := range idx {
			data[e][i] = epoch[c]
		}
	}

	return &Recording{channels: channels, sampleRate: r.sampleRate, data: data}, nil
}

// Map returns a new Recording with fn applied to a copy of every channel of
// every epoch.
func (r *Recording) Map(fn func(signal []float64)) *Recording {
	data := make([][][]float64, len(r.data))
	for e, epoch := range r.data {
		data[e] = make([][]float64, len(epoch))
		for c, sig := range epoch {
			cp := append([]float64(nil), sig...)
			fn(cp)
			data[e][c] = cp
		}
	}
	return &Recording{channels: r.channels, sampleRate: r.sampleRate, data: data}
}
