// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package stream keeps the chunks around a viewer generated and decides
// which of them are visible.
package stream

import (
	"github.com/SoftbearStudios/terra/server/terrain"
	"github.com/SoftbearStudios/terra/server/world"
	"github.com/chewxy/math32"
	"math"
)

// evictPeriod is how often eviction runs.
const evictPeriod = 16

// Requester generates chunk contents. Callbacks must run on the goroutine
// that calls Manager.Update.
type Requester interface {
	RequestMapData(origin world.Vec2f, onReady func(*terrain.MapData))
	RequestSurface(heights *terrain.HeightField, onReady func(*terrain.Surface))
}

type Options struct {
	ChunkSize       float32
	MaxViewDistance float32
	// EvictDistance is how far chunks are kept. Zero never evicts.
	EvictDistance float32
	// Stitch replaces chunk borders with their neighbors' edges before
	// building surfaces.
	Stitch bool
	// StitchWait is how many ticks to wait for missing neighbors.
	StitchWait world.Ticks
}

// ViewerState is where the viewer is and how far it sees.
type ViewerState struct {
	Position        world.Vec2f
	MaxViewDistance float32
}

// Events are the changes since the last call to Manager.Events.
type Events struct {
	Ready   []world.ChunkCoord
	Shown   []world.ChunkCoord
	Hidden  []world.ChunkCoord
	Evicted []world.ChunkCoord
}

// Empty is true if nothing happened.
func (e *Events) Empty() bool {
	return len(e.Ready) == 0 && len(e.Shown) == 0 && len(e.Hidden) == 0 && len(e.Evicted) == 0
}

type Stats struct {
	Chunks    int
	Requested int
	MapReady  int
	Ready     int
	Visible   int
	Stitching int
	Evicted   int
}

// Manager streams the chunks around one viewer.
// It is not safe for concurrent use. Update and the Requester's callbacks
// must run on the same goroutine.
type Manager struct {
	options   Options
	requester Requester

	arena     arena
	tick      world.Ticks
	viewer    ViewerState
	center    world.ChunkCoord
	radius    int
	visible   []ChunkID // visible after the last Update
	stitching []ChunkID // StateMapReady chunks waiting for neighbors
	events    Events
	evicted   int
}

func NewManager(requester Requester, options Options) *Manager {
	if options.ChunkSize <= 0 {
		options.ChunkSize = 1
	}
	if options.MaxViewDistance < 0 {
		options.MaxViewDistance = 0
	}

	return &Manager{
		options:   options,
		requester: requester,
		arena:     newArena(),
		viewer:    ViewerState{MaxViewDistance: options.MaxViewDistance},
		radius:    viewRadius(options.MaxViewDistance, options.ChunkSize),
	}
}

// viewRadius is the number of chunks visible in each direction, rounded
// the same way as world.CoordOf.
func viewRadius(maxViewDistance, chunkSize float32) int {
	return int(math.RoundToEven(float64(maxViewDistance / chunkSize)))
}

// Update moves the viewer to position, requests missing chunks and updates
// visibility. Call it once per tick.
func (m *Manager) Update(position world.Vec2f) {
	m.tick++
	m.viewer.Position = position
	m.center = world.CoordOf(position, m.options.ChunkSize)

	// Hide everything that was visible, the window shows what still is
	for _, id := range m.visible {
		if c := m.arena.get(id); c != nil {
			c.visible = false
			c.wasVisible = true
		}
	}
	previous := m.visible
	m.visible = nil

	r := int32(m.radius)
	for dy := -r; dy <= r; dy++ {
		for dx := -r; dx <= r; dx++ {
			coord := m.center.Add(dx, dy)

			id, ok := m.arena.lookup(coord)
			if !ok {
				m.request(coord)
				continue
			}

			c := m.arena.get(id)
			if m.updateVisibility(c) {
				m.visible = append(m.visible, id)
				if !c.wasVisible {
					m.events.Shown = append(m.events.Shown, coord)
				}
			}
		}
	}

	for _, id := range previous {
		if c := m.arena.get(id); c != nil {
			if !c.visible {
				m.events.Hidden = append(m.events.Hidden, c.Coord)
			}
			c.wasVisible = false
		}
	}

	m.pollStitching()

	if m.options.EvictDistance > 0 && m.tick%evictPeriod == 0 {
		m.evict()
	}
}

func (m *Manager) request(coord world.ChunkCoord) {
	id, c := m.arena.insert(coord)
	c.Position = coord.Position(m.options.ChunkSize)
	c.Bounds = world.AABBCentered(c.Position, m.options.ChunkSize)
	c.State = StateRequested
	c.requestTick = m.tick
	origin := Origin(c.Position)

	// c may be invalid after this call
	m.requester.RequestMapData(origin, func(data *terrain.MapData) {
		m.mapDataReady(id, data)
	})
}

// updateVisibility sets whether c is visible. Chunks without a surface, or
// that got it last tick, stay hidden.
func (m *Manager) updateVisibility(c *Chunk) bool {
	if c.State != StateReady || m.tick <= c.readyTick+1 {
		c.visible = false
		return false
	}
	d := m.options.MaxViewDistance
	c.visible = c.Bounds.SqrDistance(m.viewer.Position) <= d*d
	return c.visible
}

func (m *Manager) mapDataReady(id ChunkID, data *terrain.MapData) {
	c := m.arena.get(id)
	if c == nil || c.State != StateRequested {
		// Evicted
		return
	}

	c.Data = data
	c.State = StateMapReady
	c.mapTick = m.tick

	if m.options.Stitch {
		c.stitching = true
		m.stitching = append(m.stitching, id)
		return
	}

	m.requestSurface(id, c, data.Heights)
}

func (m *Manager) requestSurface(id ChunkID, c *Chunk, heights *terrain.HeightField) {
	c.Heights = heights
	m.requester.RequestSurface(heights, func(surface *terrain.Surface) {
		m.surfaceReady(id, surface)
	})
}

func (m *Manager) surfaceReady(id ChunkID, surface *terrain.Surface) {
	c := m.arena.get(id)
	if c == nil || c.State != StateMapReady {
		return
	}

	c.Surface = surface
	c.State = StateReady
	c.visible = false
	c.readyTick = m.tick
	m.events.Ready = append(m.events.Ready, c.Coord)
}

// pollStitching stitches every waiting chunk whose neighbors are all
// present, or that has waited long enough.
func (m *Manager) pollStitching() {
	waiting := m.stitching[:0]
	for _, id := range m.stitching {
		c := m.arena.get(id)
		if c == nil || !c.stitching {
			continue
		}

		neighbors := m.neighbors(c.Coord)
		if !neighbors.Complete() && m.tick.Since(c.mapTick) < m.options.StitchWait {
			waiting = append(waiting, id)
			continue
		}

		c.stitching = false
		m.requestSurface(id, c, terrain.Stitch(c.Data.Heights, neighbors))
	}

	// Clear the tail so evicted ids don't linger
	for i := len(waiting); i < len(m.stitching); i++ {
		m.stitching[i] = ChunkID{}
	}
	m.stitching = waiting
}

// neighbors returns the map data adjacent in field space. Origins are
// rotated so field +x is chunk +Y and field +y is chunk +X.
func (m *Manager) neighbors(coord world.ChunkCoord) terrain.Neighbors {
	return terrain.Neighbors{
		Left:       m.heightsAt(coord.Add(0, -1)),
		Bottom:     m.heightsAt(coord.Add(-1, 0)),
		BottomLeft: m.heightsAt(coord.Add(-1, -1)),
	}
}

// heightsAt returns the unstitched heights of a chunk, if it has map data.
func (m *Manager) heightsAt(coord world.ChunkCoord) *terrain.HeightField {
	id, ok := m.arena.lookup(coord)
	if !ok {
		return nil
	}
	if c := m.arena.get(id); c != nil && c.Data != nil {
		return c.Data.Heights
	}
	return nil
}

// evictLimit is the Chebyshev chunk distance beyond which hidden chunks are
// removed.
func (m *Manager) evictLimit() int32 {
	limit := int32(math32.Ceil(m.options.EvictDistance / m.options.ChunkSize))
	if window := int32(m.radius) + 1; limit < window {
		limit = window
	}
	return limit
}

func (m *Manager) evict() {
	limit := m.evictLimit()

	var stale []ChunkID
	m.arena.forEach(func(id ChunkID, c *Chunk) {
		if !c.visible && c.Coord.ChebyshevDistance(m.center) > limit {
			stale = append(stale, id)
		}
	})

	for _, id := range stale {
		coord := m.arena.get(id).Coord
		if m.arena.remove(id) {
			m.evicted++
			m.events.Evicted = append(m.events.Evicted, coord)
		}
	}
}

// Events returns and clears the changes since the last call.
func (m *Manager) Events() Events {
	events := m.events
	m.events = Events{}
	return events
}

// Lookup finds the chunk at coord.
func (m *Manager) Lookup(coord world.ChunkCoord) (ChunkID, bool) {
	return m.arena.lookup(coord)
}

// Chunk returns a copy of a chunk. It is false for evicted chunks.
func (m *Manager) Chunk(id ChunkID) (View, bool) {
	c := m.arena.get(id)
	if c == nil {
		return View{}, false
	}
	return c.view(id), true
}

// Visible returns the chunks visible after the last Update.
func (m *Manager) Visible() []View {
	views := make([]View, 0, len(m.visible))
	for _, id := range m.visible {
		if c := m.arena.get(id); c != nil {
			views = append(views, c.view(id))
		}
	}
	return views
}

// Len is the number of chunks held.
func (m *Manager) Len() int {
	return m.arena.len()
}

// VisibleRadius is the half width of the window in chunks.
func (m *Manager) VisibleRadius() int {
	return m.radius
}

func (m *Manager) Viewer() ViewerState {
	return m.viewer
}

// Tick is the number of calls to Update.
func (m *Manager) Tick() world.Ticks {
	return m.tick
}

func (m *Manager) Stats() Stats {
	stats := Stats{
		Chunks:    m.arena.len(),
		Visible:   len(m.visible),
		Stitching: len(m.stitching),
		Evicted:   m.evicted,
	}
	m.arena.forEach(func(_ ChunkID, c *Chunk) {
		switch c.State {
		case StateRequested:
			stats.Requested++
		case StateMapReady:
			stats.MapReady++
		case StateReady:
			stats.Ready++
		}
	})
	return stats
}
