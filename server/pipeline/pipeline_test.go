// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package pipeline

import (
	"errors"
	"github.com/SoftbearStudios/terra/server/terrain"
	"github.com/SoftbearStudios/terra/server/world"
	"testing"
	"time"
)

// flatSource fills each field with its offset's X, and panics on negative X.
type flatSource struct{}

func (flatSource) Generate(params terrain.NoiseParams, width, height int, offset world.Vec2f) *terrain.HeightField {
	if offset.X < 0 {
		panic("negative offset")
	}
	field := terrain.NewHeightField(width, height)
	for i := range field.Samples {
		field.Samples[i] = offset.X / 1000
	}
	return field
}

func testPipeline(workers int) *Pipeline {
	return New(Options{
		Workers: workers,
		Builder: &terrain.Builder{
			Source: flatSource{},
			Bands:  terrain.DefaultBands,
			Width:  4,
			Height: 4,
		},
	})
}

// waitFor polls until done or fails the test after a second.
func waitFor(t *testing.T, done func() bool) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for !done() {
		if time.Now().After(deadline) {
			t.Fatal("timed out")
		}
		time.Sleep(time.Millisecond)
	}
}

func TestPipeline_FIFO(t *testing.T) {
	p := testPipeline(1)
	defer p.Close()

	const n = 50
	var order []float32
	for i := 0; i < n; i++ {
		p.RequestMapData(world.Vec2f{X: float32(i)}, func(data *terrain.MapData) {
			order = append(order, data.Origin.X)
		})
	}

	if len(order) != 0 {
		t.Fatal("delivered before Tick")
	}

	waitFor(t, func() bool { return p.Stats().Built == n })

	if delivered := p.Tick(); delivered != n {
		t.Errorf("expected %d delivered got %d", n, delivered)
	}
	for i, x := range order {
		if x != float32(i) {
			t.Fatalf("delivery %d was origin %f", i, x)
		}
	}

	if delivered := p.Tick(); delivered != 0 {
		t.Errorf("expected empty tick got %d", delivered)
	}
	if pending := p.Stats().Pending; pending != 0 {
		t.Errorf("expected nothing pending got %d", pending)
	}
}

func TestPipeline_NoDedup(t *testing.T) {
	p := testPipeline(4)
	defer p.Close()

	origin := world.Vec2f{X: 250, Y: 500}
	var results []*terrain.MapData
	for i := 0; i < 2; i++ {
		p.RequestMapData(origin, func(data *terrain.MapData) {
			results = append(results, data)
		})
	}

	waitFor(t, func() bool {
		p.Tick()
		return len(results) == 2
	})

	a, b := results[0], results[1]
	if a == b || a.Heights == b.Heights {
		t.Error("results share memory")
	}
	if !a.Heights.Equal(b.Heights) || !a.Colors.Equal(b.Colors) || a.Origin != b.Origin {
		t.Error("results differ")
	}
}

func TestPipeline_Failure(t *testing.T) {
	p := testPipeline(2)
	defer p.Close()

	var delivered []float32
	for _, x := range []float32{1, -1, 2} {
		p.RequestMapData(world.Vec2f{X: x}, func(data *terrain.MapData) {
			delivered = append(delivered, data.Origin.X)
		})
	}

	waitFor(t, func() bool {
		stats := p.Stats()
		return stats.Built+stats.Failed == 3
	})
	p.Tick()

	if len(delivered) != 2 {
		t.Fatalf("expected 2 deliveries got %v", delivered)
	}
	for _, x := range delivered {
		if x < 0 {
			t.Error("failed request was delivered")
		}
	}

	stats := p.Stats()
	if stats.Failed != 1 || stats.Pending != 0 {
		t.Errorf("unexpected stats %+v", stats)
	}
}

func TestPipeline_Surface(t *testing.T) {
	dispatcher := NewDispatcher()
	errBad := errors.New("bad")
	p := New(Options{
		Workers:    1,
		Builder:    &terrain.Builder{Source: flatSource{}, Width: 2, Height: 2},
		Dispatcher: dispatcher,
		Surfaces: SurfaceBuilderFunc(func(heights *terrain.HeightField) (*terrain.Surface, error) {
			if heights.Width == 1 {
				return nil, errBad
			}
			return terrain.BuildSurface(heights, 10, nil)
		}),
	})
	defer p.Close()

	var surfaces []*terrain.Surface
	onReady := func(surface *terrain.Surface) {
		surfaces = append(surfaces, surface)
	}

	p.RequestSurface(terrain.NewHeightField(2, 2), onReady)
	p.RequestSurface(terrain.NewHeightField(1, 1), onReady)

	if p.Tick() != 0 || len(surfaces) != 0 {
		t.Fatal("surface built by Tick")
	}
	if n := dispatcher.Drain(); n != 2 {
		t.Errorf("expected 2 tasks got %d", n)
	}
	if len(surfaces) != 1 || surfaces[0].Depth != 10 {
		t.Errorf("expected one surface got %v", surfaces)
	}

	stats := p.Stats()
	if stats.Surfaces != 1 || stats.Failed != 1 {
		t.Errorf("unexpected stats %+v", stats)
	}
}

func TestPipeline_SurfacePanic(t *testing.T) {
	dispatcher := NewDispatcher()
	p := New(Options{
		Workers:    1,
		Builder:    &terrain.Builder{Source: flatSource{}, Width: 2, Height: 2},
		Dispatcher: dispatcher,
		Surfaces: SurfaceBuilderFunc(func(heights *terrain.HeightField) (*terrain.Surface, error) {
			if heights.Width == 1 {
				panic("bad heights")
			}
			return terrain.BuildSurface(heights, 10, nil)
		}),
	})
	defer p.Close()

	var surfaces int
	onReady := func(*terrain.Surface) {
		surfaces++
	}

	// The panic fails only its own task.
	p.RequestSurface(terrain.NewHeightField(1, 1), onReady)
	p.RequestSurface(terrain.NewHeightField(2, 2), onReady)

	if n := dispatcher.Drain(); n != 2 {
		t.Errorf("expected 2 tasks got %d", n)
	}
	if surfaces != 1 {
		t.Errorf("expected 1 surface got %d", surfaces)
	}

	stats := p.Stats()
	if stats.Surfaces != 1 || stats.Failed != 1 {
		t.Errorf("unexpected stats %+v", stats)
	}
}

func TestPipeline_Close(t *testing.T) {
	p := testPipeline(2)

	delivered := 0
	for i := 0; i < 10; i++ {
		p.RequestMapData(world.Vec2f{X: float32(i)}, func(*terrain.MapData) {
			delivered++
		})
	}
	p.Close()
	p.Close()

	p.Tick()
	if delivered != 10 {
		t.Errorf("expected queued jobs to finish, got %d", delivered)
	}

	p.RequestMapData(world.Vec2f{}, func(*terrain.MapData) {
		t.Error("delivered after close")
	})
	p.Tick()
	if stats := p.Stats(); stats.Failed != 1 {
		t.Errorf("expected request after close to fail, got %+v", stats)
	}
}

func TestGenerationFailure(t *testing.T) {
	inner := errors.New("inner")
	var err error = &GenerationFailure{Stage: StageMapData, Origin: world.Vec2f{X: 1}, Err: inner}

	var failure *GenerationFailure
	if !errors.As(err, &failure) || failure.Stage != StageMapData {
		t.Error("errors.As failed")
	}
	if !errors.Is(err, inner) {
		t.Error("errors.Is failed")
	}
}
