// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package stream

import (
	"github.com/SoftbearStudios/terra/server/terrain"
	"github.com/SoftbearStudios/terra/server/world"
	"math/rand"
	"testing"
)

// gradientSource is a cheap deterministic stand-in for noise.
type gradientSource struct{}

func (gradientSource) Generate(params terrain.NoiseParams, width, height int, offset world.Vec2f) *terrain.HeightField {
	field := terrain.NewHeightField(width, height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			v := (float32(x)+offset.X)*0.013 + (float32(y)-offset.Y)*0.007
			field.Set(x, y, v-float32(int(v)))
		}
	}
	return field
}

// queueRequester holds requests until deliver, like the hub's pipeline and dispatcher.
type queueRequester struct {
	builder  *terrain.Builder
	origins  []world.Vec2f
	maps     []func()
	surfaces []func()
}

func newQueueRequester() *queueRequester {
	return &queueRequester{
		builder: &terrain.Builder{
			Source: gradientSource{},
			Bands:  terrain.DefaultBands,
			Width:  8,
			Height: 8,
		},
	}
}

func (q *queueRequester) RequestMapData(origin world.Vec2f, onReady func(*terrain.MapData)) {
	q.origins = append(q.origins, origin)
	q.maps = append(q.maps, func() {
		onReady(q.builder.Build(origin))
	})
}

func (q *queueRequester) RequestSurface(heights *terrain.HeightField, onReady func(*terrain.Surface)) {
	q.surfaces = append(q.surfaces, func() {
		surface, _ := terrain.BuildSurface(heights, 1, nil)
		onReady(surface)
	})
}

// deliver runs queued map data callbacks then queued surface callbacks.
func (q *queueRequester) deliver() {
	maps := q.maps
	q.maps = nil
	for _, fn := range maps {
		fn()
	}

	surfaces := q.surfaces
	q.surfaces = nil
	for _, fn := range surfaces {
		fn()
	}
}

// step is one hub tick.
func step(q *queueRequester, m *Manager, position world.Vec2f) {
	q.deliver()
	m.Update(position)
}

func view(t *testing.T, m *Manager, coord world.ChunkCoord) View {
	t.Helper()
	id, ok := m.Lookup(coord)
	if !ok {
		t.Fatalf("no chunk at %s", coord)
	}
	v, ok := m.Chunk(id)
	if !ok {
		t.Fatalf("stale id for %s", coord)
	}
	return v
}

func TestViewRadius(t *testing.T) {
	tests := []struct {
		chunkSize, viewDistance float32
		radius                  int
	}{
		{255, 700, 3},
		{10, 10, 1},
		{10, 0, 0},
		{10, 24, 2},
		{240, 450, 2},
		// Ties go to even like world.CoordOf
		{10, 25, 2},
		{10, 35, 4},
	}

	for _, test := range tests {
		m := NewManager(newQueueRequester(), Options{ChunkSize: test.chunkSize, MaxViewDistance: test.viewDistance})
		if r := m.VisibleRadius(); r != test.radius {
			t.Errorf("chunk size %f view distance %f expected radius %d got %d", test.chunkSize, test.viewDistance, test.radius, r)
		}
	}
}

func TestManager_Window(t *testing.T) {
	q := newQueueRequester()
	m := NewManager(q, Options{ChunkSize: 255, MaxViewDistance: 700})

	m.Update(world.Vec2f{X: 300, Y: -10})

	if m.Len() != 49 || len(q.origins) != 49 {
		t.Fatalf("expected 49 chunks got %d (%d requests)", m.Len(), len(q.origins))
	}

	center := world.ChunkCoord{X: 1, Y: 0}
	for y := int32(-3); y <= 3; y++ {
		for x := int32(-3); x <= 3; x++ {
			v := view(t, m, center.Add(x, y))
			if v.State != StateRequested || v.Visible {
				t.Errorf("%s expected requested and hidden", v.Coord)
			}
		}
	}

	// Same window requests nothing new
	m.Update(world.Vec2f{X: 300, Y: -10})
	if len(q.origins) != 49 {
		t.Errorf("duplicate requests, %d total", len(q.origins))
	}
}

func TestManager_RotatedOrigin(t *testing.T) {
	q := newQueueRequester()
	m := NewManager(q, Options{ChunkSize: 10, MaxViewDistance: 10})

	step(q, m, world.Vec2f{})
	step(q, m, world.Vec2f{})

	for y := int32(-1); y <= 1; y++ {
		for x := int32(-1); x <= 1; x++ {
			v := view(t, m, world.ChunkCoord{X: x, Y: y})
			want := world.Vec2f{X: float32(y) * 10, Y: float32(-x) * 10}
			if v.Data == nil || v.Data.Origin != want {
				t.Errorf("chunk %s expected origin %s", v.Coord, want)
			}
			if v.Position != (world.Vec2f{X: float32(x) * 10, Y: float32(y) * 10}) {
				t.Errorf("chunk %s has position %s", v.Coord, v.Position)
			}
		}
	}
}

func TestManager_Grace(t *testing.T) {
	q := newQueueRequester()
	m := NewManager(q, Options{ChunkSize: 10, MaxViewDistance: 10})
	origin := world.ChunkCoord{}

	// Tick 1 requests
	step(q, m, world.Vec2f{})
	if view(t, m, origin).State != StateRequested {
		t.Fatal("expected requested")
	}

	// Tick 2 delivers but must not show
	step(q, m, world.Vec2f{})
	v := view(t, m, origin)
	if v.State != StateReady {
		t.Fatalf("expected ready got %s", v.State)
	}
	if v.Visible || len(m.Visible()) != 0 {
		t.Error("visible on the tick it became ready")
	}
	events := m.Events()
	if len(events.Ready) != 9 || len(events.Shown) != 0 {
		t.Errorf("unexpected events %+v", events)
	}

	// Tick 3 shows
	step(q, m, world.Vec2f{})
	if !view(t, m, origin).Visible {
		t.Error("not visible after grace tick")
	}
	if events := m.Events(); len(events.Shown) != 9 {
		t.Errorf("expected 9 shown got %+v", events)
	}

	// Steady state emits nothing
	step(q, m, world.Vec2f{})
	if events := m.Events(); !events.Empty() {
		t.Errorf("expected no events got %+v", events)
	}
}

// Once ready, a chunk in the window is visible exactly when it is within
// view distance. It is never visible before.
func TestManager_Visibility(t *testing.T) {
	const (
		chunkSize    = 10
		viewDistance = 24
	)

	q := newQueueRequester()
	m := NewManager(q, Options{ChunkSize: chunkSize, MaxViewDistance: viewDistance})
	r := rand.New(rand.NewSource(7))

	readyAt := make(map[world.ChunkCoord]world.Ticks)
	position := world.Vec2f{}

	for i := 0; i < 200; i++ {
		position = position.Add(world.Vec2f{X: r.Float32()*8 - 4, Y: r.Float32()*8 - 4})
		step(q, m, position)

		for _, coord := range m.Events().Ready {
			readyAt[coord] = m.Tick()
		}

		center := world.CoordOf(position, chunkSize)
		radius := int32(m.VisibleRadius())

		for y := -radius; y <= radius; y++ {
			for x := -radius; x <= radius; x++ {
				coord := center.Add(x, y)
				id, ok := m.Lookup(coord)
				if !ok {
					t.Fatalf("tick %d: window chunk %s missing", m.Tick(), coord)
				}
				v, _ := m.Chunk(id)

				if v.State != StateReady {
					if v.Visible {
						t.Fatalf("tick %d: %s visible in state %s", m.Tick(), coord, v.State)
					}
					continue
				}

				if readyAt[coord] == m.Tick() {
					if v.Visible {
						t.Fatalf("tick %d: %s visible on the tick it became ready", m.Tick(), coord)
					}
					continue
				}

				within := v.Bounds.SqrDistance(position) <= viewDistance*viewDistance
				if v.Visible != within {
					t.Fatalf("tick %d: %s visible %t but within %t", m.Tick(), coord, v.Visible, within)
				}
			}
		}

		for _, v := range m.Visible() {
			if v.Coord.ChebyshevDistance(center) > radius {
				t.Fatalf("tick %d: %s visible outside window", m.Tick(), v.Coord)
			}
		}
	}
}

func TestManager_HidePrevious(t *testing.T) {
	q := newQueueRequester()
	m := NewManager(q, Options{ChunkSize: 10, MaxViewDistance: 10})

	for i := 0; i < 3; i++ {
		step(q, m, world.Vec2f{})
	}
	if n := len(m.Visible()); n != 9 {
		t.Fatalf("expected 9 visible got %d", n)
	}
	m.Events()

	// Jump away, old chunks stay in memory but hide
	step(q, m, world.Vec2f{X: 1000})
	if n := len(m.Visible()); n != 0 {
		t.Errorf("expected nothing visible got %d", n)
	}
	if v := view(t, m, world.ChunkCoord{}); v.Visible {
		t.Error("old chunk still visible")
	}
	if events := m.Events(); len(events.Hidden) != 9 {
		t.Errorf("expected 9 hidden got %+v", events)
	}
	if m.Len() != 18 {
		t.Errorf("expected 18 chunks without eviction got %d", m.Len())
	}
}

func TestManager_Eviction(t *testing.T) {
	q := newQueueRequester()
	m := NewManager(q, Options{ChunkSize: 10, MaxViewDistance: 10, EvictDistance: 20})

	// Requested but never delivered before moving away
	m.Update(world.Vec2f{})
	oldID, _ := m.Lookup(world.ChunkCoord{})

	far := world.Vec2f{X: 1000, Y: 1000}
	for m.Tick() < evictPeriod {
		m.Update(far)
	}

	if _, ok := m.Lookup(world.ChunkCoord{}); ok {
		t.Error("far chunk not evicted")
	}
	if _, ok := m.Chunk(oldID); ok {
		t.Error("stale id still resolves")
	}
	if m.Len() != 9 {
		t.Errorf("expected 9 chunks after eviction got %d", m.Len())
	}
	if events := m.Events(); len(events.Evicted) != 9 {
		t.Errorf("expected 9 evicted got %d", len(events.Evicted))
	}

	// Late deliveries for evicted chunks are dropped, the rest land where they belong
	step(q, m, far)
	step(q, m, far)

	for _, v := range m.Visible() {
		if v.Data.Origin != Origin(v.Position) {
			t.Errorf("chunk %s got map data for %s", v.Coord, v.Data.Origin)
		}
	}
	if n := len(m.Visible()); n != 9 {
		t.Errorf("expected 9 visible got %d", n)
	}
	if stats := m.Stats(); stats.Evicted != 9 || stats.Ready != 9 {
		t.Errorf("unexpected stats %+v", stats)
	}
}

func TestManager_EvictLimit(t *testing.T) {
	m := NewManager(newQueueRequester(), Options{ChunkSize: 10, MaxViewDistance: 30, EvictDistance: 15})
	if limit := m.evictLimit(); limit != 4 {
		t.Errorf("expected window + 1 got %d", limit)
	}

	m = NewManager(newQueueRequester(), Options{ChunkSize: 10, MaxViewDistance: 30, EvictDistance: 91})
	if limit := m.evictLimit(); limit != 10 {
		t.Errorf("expected 10 got %d", limit)
	}
}

func TestManager_Stitch(t *testing.T) {
	q := newQueueRequester()
	m := NewManager(q, Options{ChunkSize: 10, MaxViewDistance: 10, Stitch: true, StitchWait: 3})

	step(q, m, world.Vec2f{})
	step(q, m, world.Vec2f{}) // map data arrives, center has all neighbors

	center := view(t, m, world.ChunkCoord{})
	if center.Heights == nil || center.Heights == center.Data.Heights {
		t.Fatal("center not stitched")
	}

	// Its field space left neighbor is outside the window
	edge := view(t, m, world.ChunkCoord{X: -1, Y: -1})
	if edge.State != StateMapReady || edge.Heights != nil {
		t.Error("edge chunk should wait for missing neighbors")
	}

	left := view(t, m, world.ChunkCoord{Y: -1}).Data.Heights
	bottom := view(t, m, world.ChunkCoord{X: -1}).Data.Heights
	w, h := center.Heights.Width, center.Heights.Height
	for y := 1; y < h; y++ {
		if center.Heights.At(0, y) != left.At(w-1, y) {
			t.Fatalf("left seam differs at row %d", y)
		}
	}
	for x := 1; x < w; x++ {
		if center.Heights.At(x, 0) != bottom.At(x, h-1) {
			t.Fatalf("bottom seam differs at column %d", x)
		}
	}

	// Map data is shared and must stay untouched
	fresh := q.builder.Build(center.Data.Origin)
	if !fresh.Heights.Equal(center.Data.Heights) {
		t.Error("map data modified by stitching")
	}

	for i := 0; i < 5; i++ {
		step(q, m, world.Vec2f{})
	}
	if stats := m.Stats(); stats.Ready != 9 || stats.Stitching != 0 {
		t.Errorf("expected everything ready got %+v", stats)
	}
}

// Two stitched chunks must agree along their shared edge.
func TestManager_StitchedSeams(t *testing.T) {
	q := newQueueRequester()
	m := NewManager(q, Options{ChunkSize: 10, MaxViewDistance: 10, Stitch: true, StitchWait: 3})

	for i := 0; i < 10; i++ {
		step(q, m, world.Vec2f{})
	}

	center := view(t, m, world.ChunkCoord{}).Heights
	right := view(t, m, world.ChunkCoord{Y: 1}).Heights // field +x
	top := view(t, m, world.ChunkCoord{X: 1}).Heights   // field +y
	if center == nil || right == nil || top == nil {
		t.Fatal("chunks not stitched")
	}

	w, h := center.Width, center.Height
	mismatched := 0
	for y := 0; y < h; y++ {
		if center.At(w-1, y) != right.At(0, y) {
			mismatched++
		}
	}
	for x := 0; x < w; x++ {
		if center.At(x, h-1) != top.At(x, 0) {
			mismatched++
		}
	}
	if mismatched != 0 {
		t.Errorf("%d of %d seam samples differ after stitching", mismatched, w+h)
	}
}
