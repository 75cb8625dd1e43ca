// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package terrain

// Neighbors are the fields adjacent to a field along its own axes.
// Left is -x, Bottom is -y and BottomLeft is diagonal to both. Nil entries
// are skipped by Stitch.
//
// Every field owns its right column and top row. The field on the other
// side of those edges copies them, so two stitched neighbors agree sample
// for sample no matter which was stitched first.
type Neighbors struct {
	Left       *HeightField
	Bottom     *HeightField
	BottomLeft *HeightField
}

// Complete is true if every neighbor Stitch reads from exists.
func (n Neighbors) Complete() bool {
	return n.Left != nil && n.Bottom != nil && n.BottomLeft != nil
}

// Stitch returns a copy of center whose left column and bottom row are
// replaced by the touching edges of its neighbors. The corner comes from
// BottomLeft. Neighbors of a different size are ignored.
// Neither center nor the neighbors are modified.
func Stitch(center *HeightField, n Neighbors) *HeightField {
	stitched := center.Clone()
	width, height := center.Width, center.Height

	// A single row or column has no edge it owns.
	if width < 2 || height < 2 {
		return stitched
	}

	if center.SameSize(n.Left) {
		for y := 1; y < height; y++ {
			stitched.Set(0, y, n.Left.At(width-1, y))
		}
	}
	if center.SameSize(n.Bottom) {
		for x := 1; x < width; x++ {
			stitched.Set(x, 0, n.Bottom.At(x, height-1))
		}
	}
	if center.SameSize(n.BottomLeft) {
		stitched.Set(0, 0, n.BottomLeft.At(width-1, height-1))
	}

	return stitched
}
