// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import (
	"fmt"
	"github.com/SoftbearStudios/terra/server/stream"
	"github.com/SoftbearStudios/terra/server/world"
	"github.com/google/uuid"
)

const (
	viewerNameLengthMin = 1
	viewerNameLengthMax = 12
)

// Viewer is a client's position in the world and the chunks streamed around it.
type Viewer struct {
	ID       uuid.UUID
	Name     string
	Position world.Vec2f
	Joined   bool
	Stream   *stream.Manager
}

func (v *Viewer) init(h *Hub) {
	v.ID = uuid.New()
	v.Stream = stream.NewManager(h.pipeline, h.cfg.StreamOptions())
}

// update advances the viewer's stream one tick and sends what changed.
func (v *Viewer) update(client Client) {
	if !v.Joined || v.Stream == nil {
		return
	}

	v.Stream.Update(v.Position)

	events := v.Stream.Events()
	if events.Empty() {
		return
	}
	// Bots never draw, skip encoding colors for them.
	client.Send(newChunkUpdate(v.Stream, &events, !client.Bot()))
}

func (v *Viewer) status() *Status {
	status := &Status{
		ViewerID: v.ID,
		Name:     v.Name,
		Position: v.Position,
	}
	if v.Stream != nil {
		status.Tick = v.Stream.Tick()
		status.Radius = v.Stream.VisibleRadius()
		status.Chunks = v.Stream.Len()
		status.Visible = len(v.Stream.Visible())
	}
	return status
}

func (v *Viewer) String() string {
	return fmt.Sprintf("%s %q at %s", v.ID, v.Name, v.Position)
}
