// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config loads server settings from YAML.
package config

import (
	"fmt"
	"github.com/SoftbearStudios/terra/server/stream"
	"github.com/SoftbearStudios/terra/server/terrain"
	"github.com/SoftbearStudios/terra/server/world"
	"gopkg.in/yaml.v3"
	"log"
	"os"
	"runtime"
	"time"
)

// Config is read-only after Load.
type Config struct {
	Map      MapConfig      `yaml:"map"`
	Chunk    ChunkConfig    `yaml:"chunk"`
	Noise    NoiseConfig    `yaml:"noise"`
	Bands    []BandConfig   `yaml:"bands"`
	Pipeline PipelineConfig `yaml:"pipeline"`
	Stitch   StitchConfig   `yaml:"stitch"`
	Server   ServerConfig   `yaml:"server"`
}

// MapConfig is the size of each chunk's heightmap and how it becomes a surface.
type MapConfig struct {
	Width  int           `yaml:"width"`
	Height int           `yaml:"height"`
	Depth  float32       `yaml:"depth"`
	Curve  []terrain.Key `yaml:"curve"`
}

type ChunkConfig struct {
	Size          float32 `yaml:"size"`
	ViewDistance  float32 `yaml:"view_distance"`
	EvictDistance float32 `yaml:"evict_distance"` // 0 never evicts
}

type NoiseConfig struct {
	Seed        int64                 `yaml:"seed"`
	Scale       float32               `yaml:"scale"`
	Octaves     int                   `yaml:"octaves"`
	Persistence float32               `yaml:"persistence"`
	Lacunarity  float32               `yaml:"lacunarity"`
	Normalize   terrain.NormalizeMode `yaml:"normalize"`
}

type BandConfig struct {
	Name   string  `yaml:"name"`
	Height float32 `yaml:"height"`
	Color  Color   `yaml:"color"`
}

type PipelineConfig struct {
	Workers int `yaml:"workers"` // 0 is one per CPU
}

type StitchConfig struct {
	Enabled bool     `yaml:"enabled"`
	Wait    Duration `yaml:"wait"`
}

type ServerConfig struct {
	Port           int      `yaml:"port"`
	MaxConnections int      `yaml:"max_connections"`
	MinViewers     int      `yaml:"min_viewers"` // topped up with bots
	BotSpeed       float32  `yaml:"bot_speed"`
	TickPeriod     Duration `yaml:"tick_period"`
	DebugPeriod    Duration `yaml:"debug_period"`
	SnapshotPeriod Duration `yaml:"snapshot_period"`
	PreviewRadius  int      `yaml:"preview_radius"`
}

// Default is usable without a config file.
func Default() Config {
	return Config{
		Map: MapConfig{
			// One more sample than the chunk size so neighbors share an edge
			Width:  256,
			Height: 256,
			Depth:  40,
		},
		Chunk: ChunkConfig{
			Size:          255,
			ViewDistance:  700,
			EvictDistance: 3 * 700,
		},
		Noise: NoiseConfig{
			Seed:        56,
			Scale:       50,
			Octaves:     4,
			Persistence: 0.5,
			Lacunarity:  2,
		},
		Bands: DefaultBands(),
		Stitch: StitchConfig{
			Wait: Duration(time.Second / 2),
		},
		Server: ServerConfig{
			Port:           8192,
			MaxConnections: 256,
			BotSpeed:       60,
			TickPeriod:     Duration(world.TickPeriod),
			DebugPeriod:    Duration(time.Minute),
			SnapshotPeriod: Duration(time.Hour),
			PreviewRadius:  2,
		},
	}
}

// DefaultBands converts terrain.DefaultBands.
func DefaultBands() []BandConfig {
	bands := make([]BandConfig, len(terrain.DefaultBands))
	for i, b := range terrain.DefaultBands {
		bands[i] = BandConfig{Name: b.Name, Height: b.Height, Color: Color(b.Color)}
	}
	return bands
}

// Load overlays the file at path on Default and clamps the result.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	cfg.Clamp()
	return &cfg, nil
}

// Clamp fixes out of range values instead of failing.
func (c *Config) Clamp() {
	if c.Map.Width < 1 {
		c.Map.Width = 1
	}
	if c.Map.Height < 1 {
		c.Map.Height = 1
	}
	if c.Map.Depth < 0 {
		c.Map.Depth = 0
	}

	if c.Chunk.Size < 1 {
		c.Chunk.Size = 1
	}
	if c.Chunk.ViewDistance < 0 {
		c.Chunk.ViewDistance = 0
	}
	if c.Chunk.EvictDistance < 0 {
		c.Chunk.EvictDistance = 0
	}

	if c.Noise.Scale < 0.0001 {
		c.Noise.Scale = 0.0001
	}
	if c.Noise.Octaves < 0 {
		c.Noise.Octaves = 0
	}
	c.Noise.Persistence = world.Clamp(c.Noise.Persistence, 0, 1)
	if c.Noise.Lacunarity < 1 {
		c.Noise.Lacunarity = 1
	}

	if c.Pipeline.Workers < 1 {
		c.Pipeline.Workers = runtime.NumCPU()
	}
	if c.Stitch.Wait < 0 {
		c.Stitch.Wait = 0
	}

	if c.Server.TickPeriod <= 0 {
		c.Server.TickPeriod = Duration(world.TickPeriod)
	}
	if c.Server.MinViewers < 0 {
		c.Server.MinViewers = 0
	}
	if c.Server.PreviewRadius < 0 {
		c.Server.PreviewRadius = 0
	}

	// Samples are one world unit apart
	if float32(c.Map.Width-1) != c.Chunk.Size || float32(c.Map.Height-1) != c.Chunk.Size {
		log.Printf("config: map %dx%d doesn't span chunk size %g, chunk edges won't line up", c.Map.Width, c.Map.Height, c.Chunk.Size)
	}
	if !c.BandTable().Sorted() {
		log.Println("config: band heights are not sorted, banding will be inconsistent")
	}
}

func (c *Config) Params() terrain.NoiseParams {
	return terrain.NoiseParams{
		Seed:        c.Noise.Seed,
		Scale:       c.Noise.Scale,
		Octaves:     c.Noise.Octaves,
		Persistence: c.Noise.Persistence,
		Lacunarity:  c.Noise.Lacunarity,
		Normalize:   c.Noise.Normalize,
	}
}

func (c *Config) BandTable() terrain.BandTable {
	table := make(terrain.BandTable, len(c.Bands))
	for i, b := range c.Bands {
		table[i] = terrain.Band{Name: b.Name, Height: b.Height, Color: b.Color.RGBA()}
	}
	return table
}

func (c *Config) Curve() terrain.Curve {
	return terrain.NewCurve(c.Map.Curve...)
}

// Builder returns a terrain.Builder sampling source.
func (c *Config) Builder(source terrain.Source) *terrain.Builder {
	return &terrain.Builder{
		Source: source,
		Params: c.Params(),
		Bands:  c.BandTable(),
		Width:  c.Map.Width,
		Height: c.Map.Height,
		Depth:  c.Map.Depth,
		Curve:  c.Curve(),
	}
}

// StreamOptions configures each viewer's stream.Manager.
func (c *Config) StreamOptions() stream.Options {
	return stream.Options{
		ChunkSize:       c.Chunk.Size,
		MaxViewDistance: c.Chunk.ViewDistance,
		EvictDistance:   c.Chunk.EvictDistance,
		Stitch:          c.Stitch.Enabled,
		StitchWait:      world.ToTicks(time.Duration(c.Stitch.Wait), time.Duration(c.Server.TickPeriod)),
	}
}
