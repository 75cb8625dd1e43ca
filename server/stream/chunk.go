// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package stream

import (
	"fmt"
	"github.com/SoftbearStudios/terra/server/terrain"
	"github.com/SoftbearStudios/terra/server/world"
)

// State is how far a chunk has progressed.
type State uint8

const (
	// StateRequested is waiting for map data.
	StateRequested State = iota
	// StateMapReady has map data and is being stitched or waiting for its surface.
	StateMapReady
	// StateReady has a surface and may be shown.
	StateReady
)

func (state State) String() string {
	switch state {
	case StateRequested:
		return "requested"
	case StateMapReady:
		return "map ready"
	case StateReady:
		return "ready"
	default:
		return fmt.Sprintf("state(%d)", uint8(state))
	}
}

// Chunk is one tile of the infinite grid, owned by a Manager.
type Chunk struct {
	Coord    world.ChunkCoord
	Position world.Vec2f
	Bounds   world.AABB
	State    State
	Data     *terrain.MapData
	Heights  *terrain.HeightField // Data.Heights, stitched if enabled
	Surface  *terrain.Surface

	visible    bool
	wasVisible bool // visible during the previous Update
	stitching  bool

	requestTick world.Ticks
	mapTick     world.Ticks
	readyTick   world.Ticks
}

// View is a copy of a Chunk for callers outside the Manager.
type View struct {
	ID       ChunkID
	Coord    world.ChunkCoord
	Position world.Vec2f
	Bounds   world.AABB
	State    State
	Data     *terrain.MapData
	Heights  *terrain.HeightField
	Surface  *terrain.Surface
	Visible  bool
}

func (c *Chunk) view(id ChunkID) View {
	return View{
		ID:       id,
		Coord:    c.Coord,
		Position: c.Position,
		Bounds:   c.Bounds,
		State:    c.State,
		Data:     c.Data,
		Heights:  c.Heights,
		Surface:  c.Surface,
		Visible:  c.visible,
	}
}

// Origin is where the chunk's map data is sampled, the position rotated by -90 degrees.
func Origin(position world.Vec2f) world.Vec2f {
	return position.RotN90()
}
