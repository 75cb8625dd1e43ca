// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package terrain

import "github.com/SoftbearStudios/terra/server/world"

// Builder produces MapData windows. It is read-only after construction, so
// Build can run on any goroutine.
type Builder struct {
	Source Source
	Params NoiseParams
	Bands  BandTable
	Width  int
	Height int

	// Depth and Curve shape surface previews.
	Depth float32
	Curve Curve
}

// Build samples the Source once for the window at origin and classifies
// every sample.
func (b *Builder) Build(origin world.Vec2f) *MapData {
	heights := b.Source.Generate(b.Params, b.Width, b.Height, origin)
	return &MapData{
		Origin:  origin,
		Heights: heights,
		Colors:  b.Classify(heights),
	}
}

// Classify maps each height to its band color.
func (b *Builder) Classify(heights *HeightField) *ColorField {
	colors := NewColorField(heights.Width, heights.Height)
	for i, h := range heights.Samples {
		colors.Colors[i] = b.Bands.Classify(h)
	}
	return colors
}
