// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package terrain

import (
	"github.com/SoftbearStudios/terra/server/world"
	"testing"
)

// rampSource produces a deterministic ramp so tests don't depend on noise.
type rampSource struct{}

func (rampSource) Generate(params NoiseParams, width, height int, offset world.Vec2f) *HeightField {
	field := NewHeightField(width, height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			v := (float32(x) + offset.X + float32(y) - offset.Y) / 64
			field.Set(x, y, world.Clamp(v-float32(int(v)), 0, 1))
		}
	}
	return field
}

func testBuilder(width, height int) *Builder {
	return &Builder{
		Source: rampSource{},
		Bands:  testBands,
		Width:  width,
		Height: height,
	}
}

func TestBuilder_Build(t *testing.T) {
	b := testBuilder(16, 8)
	origin := world.Vec2f{X: 32, Y: -16}

	data := b.Build(origin)
	if data.Origin != origin {
		t.Errorf("expected origin %s got %s", origin, data.Origin)
	}
	if data.Heights.Width != 16 || data.Heights.Height != 8 {
		t.Errorf("unexpected heights size %dx%d", data.Heights.Width, data.Heights.Height)
	}
	if data.Colors.Width != 16 || data.Colors.Height != 8 || len(data.Colors.Colors) != 16*8 {
		t.Errorf("unexpected colors size %dx%d", data.Colors.Width, data.Colors.Height)
	}

	for i, h := range data.Heights.Samples {
		if got, want := data.Colors.Colors[i], testBands.Classify(h); got != want {
			t.Fatalf("sample %d height %f expected %v got %v", i, h, want, got)
		}
	}
}

func TestBuilder_Deterministic(t *testing.T) {
	b := testBuilder(8, 8)
	origin := world.Vec2f{X: 100, Y: 200}

	a, c := b.Build(origin), b.Build(origin)
	if !a.Heights.Equal(c.Heights) || !a.Colors.Equal(c.Colors) {
		t.Error("builds differ")
	}
}
