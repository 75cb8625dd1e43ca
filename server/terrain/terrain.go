// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package terrain

import (
	"fmt"
	"github.com/SoftbearStudios/terra/server/world"
)

// Source generates heightmap data.
// Implementations must be deterministic for fixed inputs and safe to call
// from multiple goroutines.
type Source interface {
	Generate(params NoiseParams, width, height int, offset world.Vec2f) *HeightField
}

// NoiseParams configures a Source.
type NoiseParams struct {
	Seed        int64
	Scale       float32
	Octaves     int
	Persistence float32 // amplitude multiplier per octave, in [0, 1]
	Lacunarity  float32 // frequency multiplier per octave, >= 1
	Normalize   NormalizeMode
}

// NormalizeMode selects how raw noise is mapped to [0, 1].
type NormalizeMode uint8

const (
	// NormalizeGlobal uses a fixed range estimated from the octave amplitudes.
	// Neighboring windows line up, so it is required for streaming.
	NormalizeGlobal NormalizeMode = iota
	// NormalizeLocal stretches each window to its own min and max.
	NormalizeLocal
)

func (mode NormalizeMode) String() string {
	switch mode {
	case NormalizeGlobal:
		return "global"
	case NormalizeLocal:
		return "local"
	default:
		return fmt.Sprintf("normalize(%d)", uint8(mode))
	}
}

func (mode NormalizeMode) MarshalText() ([]byte, error) {
	return []byte(mode.String()), nil
}

func (mode *NormalizeMode) UnmarshalText(text []byte) error {
	switch string(text) {
	case "global", "":
		*mode = NormalizeGlobal
	case "local":
		*mode = NormalizeLocal
	default:
		return fmt.Errorf("unknown normalize mode %q", text)
	}
	return nil
}
