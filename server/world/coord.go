// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package world

import "strconv"

// ChunkCoord identifies a chunk of the infinite grid.
// Chunk (0, 0) is centered on the world origin.
type ChunkCoord struct {
	X int32 `json:"x"`
	Y int32 `json:"y"`
}

// CoordOf returns the coordinate of the chunk whose center is nearest to pos.
func CoordOf(pos Vec2f, chunkSize float32) ChunkCoord {
	s := pos.Div(chunkSize).Round()
	return ChunkCoord{X: int32(s.X), Y: int32(s.Y)}
}

// Position is the center of the chunk in world space.
func (coord ChunkCoord) Position(chunkSize float32) Vec2f {
	return Vec2f{X: float32(coord.X) * chunkSize, Y: float32(coord.Y) * chunkSize}
}

// Bounds is the area covered by the chunk.
func (coord ChunkCoord) Bounds(chunkSize float32) AABB {
	return AABBCentered(coord.Position(chunkSize), chunkSize)
}

func (coord ChunkCoord) Add(x, y int32) ChunkCoord {
	coord.X += x
	coord.Y += y
	return coord
}

// ChebyshevDistance is the number of king moves between two chunks.
func (coord ChunkCoord) ChebyshevDistance(other ChunkCoord) int32 {
	dx := coord.X - other.X
	if dx < 0 {
		dx = -dx
	}
	dy := coord.Y - other.Y
	if dy < 0 {
		dy = -dy
	}
	if dx > dy {
		return dx
	}
	return dy
}

// AppendText appends "x,y".
func (coord ChunkCoord) AppendText(buf []byte) []byte {
	buf = strconv.AppendInt(buf, int64(coord.X), 10)
	buf = append(buf, ',')
	return strconv.AppendInt(buf, int64(coord.Y), 10)
}

func (coord ChunkCoord) String() string {
	return string(coord.AppendText(make([]byte, 0, 16)))
}
