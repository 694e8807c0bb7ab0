// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package spectrum

import (
	"fmt"
	"math"
	"sync"

	"gonum.org/v1/gonum/mat"
)

// lowBiasThreshold is the minimum spectral concentration of a kept taper.
const lowBiasThreshold = 0.9

// tapers is a set of DPSS windows and their spectral concentrations, most
// concentrated first.
type tapers struct {
	windows [][]float64
	ratios  []float64
}

// dpss computes kmax periodic discrete prolate spheroidal sequences of length
// n with time-half-bandwidth product nw.
//
// The sequences are the eigenvectors of the tridiagonal matrix whose
// eigenvectors coincide with those of the prolate concentration problem. A
// periodic window of length n is the symmetric window of length n+1 without
// its last sample.
func dpss(n int, nw float64, kmax int) (*tapers, error) {
	m := n + 1
	if kmax < 1 || kmax > m {
		return nil, fmt.Errorf("cannot compute %d tapers of length %d", kmax, n)
	}

	w := nw / float64(m)
	cos := math.Cos(2 * math.Pi * w)

	sym := mat.NewSymDense(m, nil)
	for i := 0; i < m; i++ {
		d := (float64(m-1) - 2*float64(i)) / 2
		sym.SetSym(i, i, d*d*cos)
		if i > 0 {
			sym.SetSym(i-1, i, float64(i)*float64(m-i)/2)
		}
	}

	var eig mat.EigenSym
	if ok := eig.Factorize(sym, true); !ok {
		return nil, fmt.Errorf("dpss eigendecomposition failed for length %d", n)
	}
	var vectors mat.Dense
	eig.VectorsTo(&vectors)

	// Eigenvalues are ascending; the largest kmax give the tapers.
	windows := make([][]float64, kmax)
	for k := range windows {
		col := m - 1 - k
		win := make([]float64, m)
		for i := range win {
			win[i] = vectors.At(i, col)
		}
		windows[k] = win
	}

	// Even tapers are symmetric with a positive sum, odd tapers start with a
	// positive lobe.
	thresh := math.Max(1e-7, 1/float64(m))
	for k, win := range windows {
		if k%2 == 0 {
			var sum float64
			for _, v := range win {
				sum += v
			}
			if sum < 0 {
				negate(win)
			}
			continue
		}
		for _, v := range win {
			if v*v > thresh {
				if v < 0 {
					negate(win)
				}
				break
			}
		}
	}

	ratios := make([]float64, kmax)
	for k, win := range windows {
		ratios[k] = concentration(win, w)
		windows[k] = win[:n]
	}

	return &tapers{windows: windows, ratios: ratios}, nil
}

// concentration returns the fraction of the energy of win inside the band
// [-w, w] (in cycles per sample).
func concentration(win []float64, w float64) float64 {
	var ratio float64
	for lag := range win {
		var rxx float64
		for i := 0; i+lag < len(win); i++ {
			rxx += win[i] * win[i+lag]
		}
		r := 2 * w
		if lag > 0 {
			x := 2 * w * float64(lag)
			r = 4 * w * math.Sin(math.Pi*x) / (math.Pi * x)
		}
		ratio += rxx * r
	}
	return ratio
}

func negate(s []float64) {
	for i := range s {
		s[i] = -s[i]
	}
}

type taperKey struct {
	n    int
	nw   float64
	kmax int
}

// taperCache memoises low-bias taper sets. Windows are read-only once cached.
type taperCache struct {
	mu    sync.Mutex
	items map[taperKey]*tapers
}

func newTaperCache() *taperCache {
	return &taperCache{items: make(map[taperKey]*tapers)}
}

// lowBias returns the tapers of length n whose concentration exceeds
// lowBiasThreshold, falling back to the single most concentrated taper.
func (c *taperCache) lowBias(n int, nw float64, kmax int) (*tapers, error) {
	key := taperKey{n: n, nw: nw, kmax: kmax}

	c.mu.Lock()
	cached, ok := c.items[key]
	c.mu.Unlock()
	if ok {
		return cached, nil
	}

	all, err := dpss(n, nw, kmax)
	if err != nil {
		return nil, err
	}

	kept := &tapers{}
	best := 0
	for k, ratio := range all.ratios {
		if ratio > all.ratios[best] {
			best = k
		}
		if ratio > lowBiasThreshold {
			kept.windows = append(kept.windows, all.windows[k])
			kept.ratios = append(kept.ratios, ratio)
		}
	}
	if len(kept.windows) == 0 {
		kept.windows = [][]float64{all.windows[best]}
		kept.ratios = []float64{all.ratios[best]}
	}

	c.mu.Lock()
	c.items[key] = kept
	c.mu.Unlock()

	return kept, nil
}
