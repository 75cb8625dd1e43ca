// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package terrain

import "image/color"

// Band is a named range of heights starting at Height.
type Band struct {
	Name   string
	Height float32
	Color  color.RGBA
}

// BandTable must be sorted by non-decreasing Height.
// An unsorted table produces inconsistent banding but never panics.
type BandTable []Band

// DefaultBands are normalized versions of the classic ocean/sand/grass/rock/snow levels.
var DefaultBands = BandTable{
	{Name: "deep water", Height: 0, Color: RGB(0, 50, 115)},
	{Name: "water", Height: 0.2, Color: RGB(0, 75, 130)},
	{Name: "sand", Height: 0.3, Color: RGB(194, 178, 128)},
	{Name: "grass", Height: 0.36, Color: RGB(90, 180, 30)},
	{Name: "rock", Height: 0.6, Color: RGB(105, 110, 115)},
	{Name: "snow", Height: 0.85, Color: Gray(220)},
}

// Index returns the highest index whose band starts at or below h, or -1.
func (table BandTable) Index(h float32) int {
	index := -1
	for i := range table {
		if h < table[i].Height {
			break
		}
		index = i
	}
	return index
}

// Classify returns the color of the band containing h.
// Heights below every band get the zero color.
func (table BandTable) Classify(h float32) color.RGBA {
	if i := table.Index(h); i >= 0 {
		return table[i].Color
	}
	return color.RGBA{}
}

// Sorted reports whether the thresholds are non-decreasing.
func (table BandTable) Sorted() bool {
	for i := 1; i < len(table); i++ {
		if table[i].Height < table[i-1].Height {
			return false
		}
	}
	return true
}

func Gray(v byte) color.RGBA {
	return RGB(v, v, v)
}

func RGB(r, g, b byte) color.RGBA {
	return color.RGBA{R: r, G: g, B: b, A: 255}
}
