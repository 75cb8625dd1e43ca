// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package terrain

import (
	"errors"
	"github.com/SoftbearStudios/terra/server/world"
)

// Surface is a displayable heightmap. Heights holds the curve-remapped
// samples quantized to bytes; multiply by Depth/255 for world units.
type Surface struct {
	Width   int
	Height  int
	Depth   float32
	Heights []byte
}

var errEmptyHeights = errors.New("terrain: empty height field")

// BuildSurface remaps each sample through curve and quantizes it.
func BuildSurface(heights *HeightField, depth float32, curve Curve) (*Surface, error) {
	if heights == nil || len(heights.Samples) == 0 {
		return nil, errEmptyHeights
	}

	surface := &Surface{
		Width:   heights.Width,
		Height:  heights.Height,
		Depth:   depth,
		Heights: make([]byte, len(heights.Samples)),
	}

	for i, h := range heights.Samples {
		surface.Heights[i] = floatToByte(curve.Evaluate(h))
	}

	return surface, nil
}

// Altitude is the world height at a sample.
func (s *Surface) Altitude(x, y int) float32 {
	return float32(s.Heights[x+y*s.Width]) * (s.Depth / 255)
}

func floatToByte(f float32) byte {
	return byte(world.Clamp(f, 0, 1)*255 + 0.5)
}
