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

	"github.com/OpenPSG/ecogpower"
)

// ChannelType tags the role of a channel.
type ChannelType string

const (
	// ChannelStim is a stimulus marker channel.
	ChannelStim ChannelType = "stim"
	// ChannelECoG is an electrocorticography signal channel.
	ChannelECoG ChannelType = "ecog"
)

// Valid reports whether t is a known channel type.
func (t ChannelType) Valid() bool {
	switch t {
	case ChannelStim, ChannelECoG:
		return true
	}
	return false
}

// Channel describes one channel of a layout.
type Channel struct {
	Name   string      `yaml:"name"`
	Type   ChannelType `yaml:"type"`
	Source int         `yaml:"source"` // Index of the signal in the source file
}

// Layout maps the signals of a source file onto named channels. The order of
// Channels is the channel order of every imported Recording.
type Layout struct {
	Channels []Channel `yaml:"channels"`
}

// DefaultLayout returns the three channel rig layout: the stimulus marker
// followed by the primary (Aux1) and secondary (PFC) signal channels.
func DefaultLayout() Layout {
	return Layout{
		Channels: []Channel{
			{Name: "STI", Type: ChannelStim, Source: 0},
			{Name: "Aux1", Type: ChannelECoG, Source: 1},
			{Name: "PFC", Type: ChannelECoG, Source: 2},
		},
	}
}

// Names returns the channel names in layout order.
func (l Layout) Names() []string {
	names := make([]string, len(l.Channels))
	for i, ch := range l.Channels {
		names[i] = ch.Name
	}
	return names
}

// Validate checks that the layout is usable for importing.
func (l Layout) Validate() error {
	if len(l.Channels) == 0 {
		return fmt.Errorf("%w: layout has no channels", ecogpower.ErrInvalidParameter)
	}

	names := make(map[string]struct{}, len(l.Channels))
	sources := make(map[int]struct{}, len(l.Channels))
	for i, ch := range l.Channels {
		if ch.Name == "" {
			return fmt.Errorf("%w: channel %d has no name", ecogpower.ErrInvalidParameter, i)
		}
		if !ch.Type.Valid() {
			return fmt.Errorf("%w: channel %q has unknown type %q", ecogpower.ErrInvalidParameter, ch.Name, ch.Type)
		}
		if ch.Source < 0 || ch.Source >= len(l.Channels) {
			return fmt.Errorf("%w: channel %q source %d out of range", ecogpower.ErrInvalidParameter, ch.Name, ch.Source)
		}
		if _, ok := names[ch.Name]; ok {
			return fmt.Errorf("%w: duplicate channel %q", ecogpower.ErrInvalidParameter, ch.Name)
		}
		if _, ok := sources[ch.Source]; ok {
			return fmt.Errorf("%w: source %d mapped twice", ecogpower.ErrInvalidParameter, ch.Source)
		}
		names[ch.Name] = struct{}{}
		sources[ch.Source] = struct{}{}
	}

	return nil
}
