// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package pipeline builds terrain off the main goroutine and hands results
// back to it in order.
package pipeline

import (
	"errors"
	"github.com/SoftbearStudios/terra/server/terrain"
	"github.com/SoftbearStudios/terra/server/world"
	"log"
	"runtime"
	"sync"
	"sync/atomic"
)

// SurfaceBuilder turns a height field into a surface. It is only called on
// the Dispatcher's goroutine.
type SurfaceBuilder interface {
	BuildSurface(heights *terrain.HeightField) (*terrain.Surface, error)
}

// SurfaceBuilderFunc adapts a function to SurfaceBuilder.
type SurfaceBuilderFunc func(heights *terrain.HeightField) (*terrain.Surface, error)

func (f SurfaceBuilderFunc) BuildSurface(heights *terrain.HeightField) (*terrain.Surface, error) {
	return f(heights)
}

// CurveSurfaces builds surfaces with terrain.BuildSurface.
func CurveSurfaces(depth float32, curve terrain.Curve) SurfaceBuilder {
	return SurfaceBuilderFunc(func(heights *terrain.HeightField) (*terrain.Surface, error) {
		return terrain.BuildSurface(heights, depth, curve)
	})
}

type Options struct {
	// Workers is the number of goroutines building map data.
	// Zero means runtime.NumCPU().
	Workers    int
	Builder    *terrain.Builder
	Surfaces   SurfaceBuilder
	Dispatcher *Dispatcher
}

// Stats are running totals.
type Stats struct {
	Requested int64 // map data requests
	Built     int64 // map data built, waiting for or past Tick
	Delivered int64 // map data callbacks run
	Failed    int64 // map data or surface failures
	Surfaces  int64 // surface callbacks run
	Pending   int64 // map data requested but not yet delivered or failed
}

// Pipeline generates map data with a pool of workers and delivers it on Tick.
// Surfaces are built by the Dispatcher.
type Pipeline struct {
	// Atomics first for alignment
	requested     int64
	built         int64
	delivered     int64
	mapFailed     int64
	surfaceFailed int64
	surfaces      int64

	builder    *terrain.Builder
	surfacer   SurfaceBuilder
	dispatcher *Dispatcher

	jobs      *taskQueue
	completed *taskQueue
	wait      sync.WaitGroup
	closeOnce sync.Once
}

func New(options Options) *Pipeline {
	if options.Builder == nil {
		panic("pipeline: nil builder")
	}

	workers := options.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	dispatcher := options.Dispatcher
	if dispatcher == nil {
		dispatcher = NewDispatcher()
	}

	surfacer := options.Surfaces
	if surfacer == nil {
		surfacer = CurveSurfaces(1, nil)
	}

	p := &Pipeline{
		builder:    options.Builder,
		surfacer:   surfacer,
		dispatcher: dispatcher,
		jobs:       newTaskQueue(),
		completed:  newTaskQueue(),
	}

	p.wait.Add(workers)
	for i := 0; i < workers; i++ {
		go p.work()
	}

	return p
}

func (p *Pipeline) work() {
	defer p.wait.Done()
	for {
		job, ok := p.jobs.pop()
		if !ok {
			return
		}
		job()
	}
}

// Dispatcher is where surfaces are built. Its owner must Drain it.
func (p *Pipeline) Dispatcher() *Dispatcher {
	return p.dispatcher
}

// RequestMapData builds the map data at origin on a worker. onReady is
// called by a later Tick. Identical requests are not merged.
func (p *Pipeline) RequestMapData(origin world.Vec2f, onReady func(*terrain.MapData)) {
	atomic.AddInt64(&p.requested, 1)

	ok := p.jobs.push(func() {
		data, err := p.build(origin)
		if err != nil {
			p.fail(&GenerationFailure{Stage: StageMapData, Origin: origin, Err: err})
			return
		}

		atomic.AddInt64(&p.built, 1)
		p.completed.push(func() {
			atomic.AddInt64(&p.delivered, 1)
			onReady(data)
		})
	})

	if !ok {
		p.fail(&GenerationFailure{Stage: StageMapData, Origin: origin, Err: errClosed})
	}
}

var errClosed = errors.New("pipeline closed")

func (p *Pipeline) build(origin world.Vec2f) (data *terrain.MapData, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = recovered(r)
		}
	}()
	return p.builder.Build(origin), nil
}

// RequestSurface builds a surface from heights on the Dispatcher's next Drain.
func (p *Pipeline) RequestSurface(heights *terrain.HeightField, onReady func(*terrain.Surface)) {
	p.dispatcher.Schedule(func() {
		surface, err := p.buildSurface(heights)
		if err != nil {
			p.fail(&GenerationFailure{Stage: StageSurface, Err: err})
			return
		}

		atomic.AddInt64(&p.surfaces, 1)
		onReady(surface)
	})
}

func (p *Pipeline) buildSurface(heights *terrain.HeightField) (surface *terrain.Surface, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = recovered(r)
		}
	}()
	return p.surfacer.BuildSurface(heights)
}

func (p *Pipeline) fail(failure *GenerationFailure) {
	if failure.Stage == StageMapData {
		atomic.AddInt64(&p.mapFailed, 1)
	} else {
		atomic.AddInt64(&p.surfaceFailed, 1)
	}
	log.Printf("pipeline: %v", failure)
}

// Tick runs the callbacks of map data built since the last Tick, in the
// order the workers finished. Returns the number delivered.
func (p *Pipeline) Tick() int {
	completed := p.completed.drain()
	for _, deliver := range completed {
		deliver()
	}
	return len(completed)
}

func (p *Pipeline) Stats() Stats {
	mapFailed := atomic.LoadInt64(&p.mapFailed)
	stats := Stats{
		Requested: atomic.LoadInt64(&p.requested),
		Built:     atomic.LoadInt64(&p.built),
		Delivered: atomic.LoadInt64(&p.delivered),
		Failed:    mapFailed + atomic.LoadInt64(&p.surfaceFailed),
		Surfaces:  atomic.LoadInt64(&p.surfaces),
	}
	stats.Pending = stats.Requested - stats.Delivered - mapFailed
	return stats
}

// Close stops the workers once the queued jobs are done.
// Results built before Close are still delivered by Tick.
func (p *Pipeline) Close() {
	p.closeOnce.Do(func() {
		p.jobs.close()
		p.wait.Wait()
	})
}
