// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package noise

import (
	"github.com/SoftbearStudios/terra/server/terrain"
	"github.com/SoftbearStudios/terra/server/world"
	"github.com/aquilax/go-perlin"
	"sync"
)

const (
	// globalSpread widens the estimated range used by terrain.NormalizeGlobal
	// since summed octaves rarely reach their theoretical maximum.
	globalSpread = 1.75

	// minPersistence keeps perlin's alpha (1 / persistence) finite.
	minPersistence = 1e-4
)

// Generator generates heightmaps using perlin noise.
// Perlin tables are built once per NoiseParams and shared between goroutines.
type Generator struct {
	mutex  sync.Mutex
	perlin map[perlinKey]*perlin.Perlin
}

// perlinKey is the subset of terrain.NoiseParams that affects the tables.
type perlinKey struct {
	seed        int64
	octaves     int
	persistence float32
	lacunarity  float32
}

func New() *Generator {
	return &Generator{
		perlin: make(map[perlinKey]*perlin.Perlin),
	}
}

// Generate implements terrain.Source.Generate.
// Sample (x, y) reads the noise at ((x + offset.X) / scale, (y - offset.Y) / scale).
func (g *Generator) Generate(params terrain.NoiseParams, width, height int, offset world.Vec2f) *terrain.HeightField {
	field := terrain.NewHeightField(width, height)

	if params.Octaves <= 0 {
		return field
	}

	p := g.get(params)
	scale := float64(params.Scale)
	if scale <= 0 {
		scale = 1e-4
	}
	offX := float64(offset.X)
	offY := float64(offset.Y)

	var lo, hi float32
	for j := 0; j < height; j++ {
		for i := 0; i < width; i++ {
			x := (float64(i) + offX) / scale
			y := (float64(j) - offY) / scale

			h := float32(p.Noise2D(x, y))
			if i == 0 && j == 0 {
				lo, hi = h, h
			} else if h < lo {
				lo = h
			} else if h > hi {
				hi = h
			}
			field.Samples[i+j*width] = h
		}
	}

	switch params.Normalize {
	case terrain.NormalizeLocal:
		for i, h := range field.Samples {
			field.Samples[i] = world.InverseLerp(lo, hi, h)
		}
	default:
		amplitude := maxAmplitude(params)
		for i, h := range field.Samples {
			field.Samples[i] = world.Clamp((h+1)/(2*amplitude/globalSpread), 0, 1)
		}
	}

	return field
}

func (g *Generator) get(params terrain.NoiseParams) *perlin.Perlin {
	key := perlinKey{
		seed:        params.Seed,
		octaves:     params.Octaves,
		persistence: clampPersistence(params.Persistence),
		lacunarity:  params.Lacunarity,
	}

	g.mutex.Lock()
	defer g.mutex.Unlock()

	p, ok := g.perlin[key]
	if !ok {
		// perlin divides octave i by alpha^i and multiplies its frequency by beta^i
		p = perlin.NewPerlin(1/float64(key.persistence), float64(key.lacunarity), key.octaves, key.seed)
		g.perlin[key] = p
	}
	return p
}

// maxAmplitude is the sum of every octave's amplitude.
func maxAmplitude(params terrain.NoiseParams) float32 {
	persistence := clampPersistence(params.Persistence)
	amplitude := float32(1)
	var sum float32
	for i := 0; i < params.Octaves; i++ {
		sum += amplitude
		amplitude *= persistence
	}
	return sum
}
