// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package world

import "github.com/chewxy/math32"

// AABB is an axis aligned box. Vec2f is its minimum corner.
type AABB struct {
	Vec2f
	Width  float32 `json:"width"`
	Height float32 `json:"height"`
}

func AABBFrom(x, y, width, height float32) AABB {
	return AABB{
		Vec2f:  Vec2f{X: x, Y: y},
		Width:  width,
		Height: height,
	}
}

// AABBCentered is a square of side size centered on center.
func AABBCentered(center Vec2f, size float32) AABB {
	return AABBFrom(center.X-size*0.5, center.Y-size*0.5, size, size)
}

// Center of a.
func (a AABB) Center() Vec2f {
	return Vec2f{X: a.X + a.Width*0.5, Y: a.Y + a.Height*0.5}
}

// ContainsPoint point is inside a or on its edge.
func (a AABB) ContainsPoint(point Vec2f) bool {
	return point.X >= a.X && point.X <= a.X+a.Width && point.Y >= a.Y && point.Y <= a.Y+a.Height
}

// SqrDistance is the squared distance from point to the closest point of a.
// It is zero inside a.
func (a AABB) SqrDistance(point Vec2f) float32 {
	dx := math32.Max(math32.Max(a.X-point.X, 0), point.X-(a.X+a.Width))
	dy := math32.Max(math32.Max(a.Y-point.Y, 0), point.Y-(a.Y+a.Height))
	return dx*dx + dy*dy
}
