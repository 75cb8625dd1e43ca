// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package main

import (
	"flag"
	"github.com/SoftbearStudios/terra/server/config"
	"github.com/SoftbearStudios/terra/server/terrain"
	"github.com/SoftbearStudios/terra/server/terrain/noise"
	"github.com/SoftbearStudios/terra/server/world"
	"log"
	"os"
	"runtime/pprof"
)

func main() {
	var (
		configPath string
		cpuProfile string
		out        string
		modeName   string
		radius     int
		size       int
		x, y       float64
	)

	flag.StringVar(&configPath, "config", "", "yaml config file (defaults if empty)")
	flag.StringVar(&cpuProfile, "cpuprofile", "", "write cpu profile to `file`")
	flag.StringVar(&out, "out", "out.png", "output `file`")
	flag.StringVar(&modeName, "mode", "color", "color, noise or surface")
	flag.IntVar(&radius, "radius", 2, "chunks in each direction")
	flag.IntVar(&size, "size", 0, "shrink to fit in size x size pixels (0 is full size)")
	flag.Float64Var(&x, "x", 0, "center x")
	flag.Float64Var(&y, "y", 0, "center y")
	flag.Parse()

	var mode terrain.DrawMode
	if err := mode.UnmarshalText([]byte(modeName)); err != nil {
		log.Fatal(err)
	}

	if cpuProfile != "" {
		f, err := os.Create(cpuProfile)
		if err != nil {
			log.Fatal("could not create CPU profile: ", err)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			log.Fatal("could not start CPU profile: ", err)
		}
		defer pprof.StopCPUProfile()
	}

	cfg := config.Default()
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			log.Fatal(err)
		}
		cfg = *loaded
	}

	if err := run(&cfg, world.Vec2f{X: float32(x), Y: float32(y)}, radius, mode, size, out); err != nil {
		log.Fatal(err)
	}
}

func run(cfg *config.Config, center world.Vec2f, radius int, mode terrain.DrawMode, size int, out string) error {
	builder := cfg.Builder(noise.New())
	img := terrain.RenderPreview(builder, center, radius, cfg.Chunk.Size, mode)

	file, err := os.Create(out)
	if err != nil {
		return err
	}
	defer file.Close()

	return terrain.EncodePNG(file, img, size)
}
