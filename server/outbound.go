// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import (
	"bytes"
	"github.com/SoftbearStudios/terra/server/stream"
	"github.com/SoftbearStudios/terra/server/terrain"
	"github.com/SoftbearStudios/terra/server/terrain/compressed"
	"github.com/SoftbearStudios/terra/server/world"
	"github.com/google/uuid"
	"log"
	"sync"
)

type (
	// ChunkUpdate is what changed in a viewer's stream since the last one.
	ChunkUpdate struct {
		Ready   []ChunkSurface     `json:"ready,omitempty"`
		Shown   []world.ChunkCoord `json:"shown,omitempty"`
		Hidden  []world.ChunkCoord `json:"hidden,omitempty"`
		Evicted []world.ChunkCoord `json:"evicted,omitempty"`
	}

	// ChunkSurface is a chunk that just became ready.
	ChunkSurface struct {
		Coord   world.ChunkCoord `json:"coord"`
		Origin  world.Vec2f      `json:"origin"`
		Terrain *compressed.Data `json:"terrain"`
		Colors  []byte           `json:"colors,omitempty"` // PNG of the band colors
	}

	// Status summarizes a viewer's stream.
	Status struct {
		ViewerID uuid.UUID   `json:"viewerID"`
		Name     string      `json:"name,omitempty"`
		Position world.Vec2f `json:"position"`
		Tick     world.Ticks `json:"tick"`
		Radius   int         `json:"radius"`
		Chunks   int         `json:"chunks"`
		Visible  int         `json:"visible"`
	}
)

func init() {
	registerOutbound(
		&ChunkUpdate{},
		&Status{},
	)
}

var chunkUpdatePool = sync.Pool{
	New: func() interface{} {
		return &ChunkUpdate{}
	},
}

// newChunkUpdate compresses the surfaces of newly ready chunks, with their
// band colors if colors is set. Chunks evicted before the update was built
// are skipped.
func newChunkUpdate(m *stream.Manager, events *stream.Events, colors bool) *ChunkUpdate {
	update := chunkUpdatePool.Get().(*ChunkUpdate)

	for _, coord := range events.Ready {
		id, ok := m.Lookup(coord)
		if !ok {
			continue
		}
		view, ok := m.Chunk(id)
		if !ok || view.Surface == nil {
			continue
		}
		surface := ChunkSurface{
			Coord:   coord,
			Origin:  stream.Origin(view.Position),
			Terrain: compressed.Encode(view.Surface),
		}
		if colors && view.Data != nil && view.Data.Colors != nil {
			var buf bytes.Buffer
			if err := terrain.EncodePNG(&buf, view.Data.Colors.Image(), 0); err != nil {
				log.Println("chunk colors:", coord, err)
			} else {
				surface.Colors = buf.Bytes()
			}
		}
		update.Ready = append(update.Ready, surface)
	}

	update.Shown = append(update.Shown, events.Shown...)
	update.Hidden = append(update.Hidden, events.Hidden...)
	update.Evicted = append(update.Evicted, events.Evicted...)
	return update
}

func (update *ChunkUpdate) Pool() {
	for i := range update.Ready {
		update.Ready[i].Terrain.Pool()
		update.Ready[i] = ChunkSurface{}
	}

	update.Ready = update.Ready[:0]
	update.Shown = update.Shown[:0]
	update.Hidden = update.Hidden[:0]
	update.Evicted = update.Evicted[:0]
	chunkUpdatePool.Put(update)
}

func (status *Status) Pool() {}
