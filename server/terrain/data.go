// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package terrain

import (
	"github.com/SoftbearStudios/terra/server/world"
	"image/color"
)

// HeightField is a grid of elevation samples, indexed x + y*Width.
// Once part of a MapData it must not be modified; use Clone.
type HeightField struct {
	Width   int
	Height  int
	Samples []float32
}

func NewHeightField(width, height int) *HeightField {
	return &HeightField{
		Width:   width,
		Height:  height,
		Samples: make([]float32, width*height),
	}
}

func (f *HeightField) At(x, y int) float32 {
	return f.Samples[x+y*f.Width]
}

func (f *HeightField) Set(x, y int, h float32) {
	f.Samples[x+y*f.Width] = h
}

func (f *HeightField) Clone() *HeightField {
	clone := *f
	clone.Samples = make([]float32, len(f.Samples))
	copy(clone.Samples, f.Samples)
	return &clone
}

// SameSize is true if both fields have the same dimensions.
func (f *HeightField) SameSize(other *HeightField) bool {
	return other != nil && f.Width == other.Width && f.Height == other.Height
}

// Equal compares every sample bit for bit.
func (f *HeightField) Equal(other *HeightField) bool {
	if !f.SameSize(other) {
		return false
	}
	for i, h := range f.Samples {
		if h != other.Samples[i] {
			return false
		}
	}
	return true
}

// ColorField is a grid of colors paired with a HeightField.
type ColorField struct {
	Width  int
	Height int
	Colors []color.RGBA
}

func NewColorField(width, height int) *ColorField {
	return &ColorField{
		Width:  width,
		Height: height,
		Colors: make([]color.RGBA, width*height),
	}
}

func (f *ColorField) At(x, y int) color.RGBA {
	return f.Colors[x+y*f.Width]
}

func (f *ColorField) Equal(other *ColorField) bool {
	if other == nil || f.Width != other.Width || f.Height != other.Height {
		return false
	}
	for i, c := range f.Colors {
		if c != other.Colors[i] {
			return false
		}
	}
	return true
}

// MapData is the output of one Builder.Build. It is shared read-only.
type MapData struct {
	Origin  world.Vec2f
	Heights *HeightField
	Colors  *ColorField
}
