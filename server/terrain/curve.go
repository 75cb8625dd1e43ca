// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package terrain

import (
	"github.com/SoftbearStudios/terra/server/world"
	"sort"
)

// Key is one point of a Curve.
type Key struct {
	Time  float32 `yaml:"time" json:"time"`
	Value float32 `yaml:"value" json:"value"`
}

// Curve remaps heights with linear interpolation between keys sorted by Time.
// Inputs outside the keys take the value of the nearest end.
// An empty Curve is the identity.
type Curve []Key

// NewCurve copies and sorts keys.
func NewCurve(keys ...Key) Curve {
	curve := make(Curve, len(keys))
	copy(curve, keys)
	sort.SliceStable(curve, func(i, j int) bool {
		return curve[i].Time < curve[j].Time
	})
	return curve
}

func (curve Curve) Evaluate(t float32) float32 {
	n := len(curve)
	if n == 0 {
		return t
	}
	if t <= curve[0].Time {
		return curve[0].Value
	}
	if t >= curve[n-1].Time {
		return curve[n-1].Value
	}

	// First key after t
	i := sort.Search(n, func(i int) bool {
		return curve[i].Time > t
	})
	a, b := curve[i-1], curve[i]
	return world.Lerp(a.Value, b.Value, world.InverseLerp(a.Time, b.Time, t))
}
