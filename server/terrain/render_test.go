// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package terrain

import (
	"bytes"
	"github.com/SoftbearStudios/terra/server/world"
	"image/png"
	"testing"
)

func TestRenderPreview(t *testing.T) {
	b := testBuilder(8, 8)

	img := RenderPreview(b, world.Vec2f{}, 1, 8, DrawColor)
	if size := img.Bounds().Size(); size.X != 24 || size.Y != 24 {
		t.Fatalf("expected 24x24 got %v", size)
	}

	// Center tile is the chunk at the origin
	data := b.Build(world.Vec2f{})
	r, g, bl, _ := img.At(8+3, 8+5).RGBA()
	want := data.Colors.At(3, 5)
	if byte(r>>8) != want.R || byte(g>>8) != want.G || byte(bl>>8) != want.B {
		t.Errorf("center pixel expected %v", want)
	}
}

func TestRenderPreview_Surface(t *testing.T) {
	b := testBuilder(8, 8)
	b.Depth = 40

	img := RenderPreview(b, world.Vec2f{}, 1, 8, DrawSurface)
	if size := img.Bounds().Size(); size.X != 24 || size.Y != 24 {
		t.Fatalf("expected 24x24 got %v", size)
	}

	surface, err := BuildSurface(b.Build(world.Vec2f{}).Heights, b.Depth, b.Curve)
	if err != nil {
		t.Fatal(err)
	}
	want := surface.Image().GrayAt(3, 5).Y
	if got, _, _, _ := img.At(8+3, 8+5).RGBA(); byte(got>>8) != want {
		t.Errorf("center pixel expected %d got %d", want, byte(got>>8))
	}
}

func TestSurface_Image(t *testing.T) {
	ramp := func(heights ...byte) *Surface {
		s := &Surface{Width: 3, Height: 3, Depth: 255, Heights: make([]byte, 9)}
		for y := 0; y < 3; y++ {
			copy(s.Heights[y*3:], heights)
		}
		return s
	}

	// Light comes from -x so a slope rising along +x faces it.
	lit := ramp(0, 10, 20).Image().GrayAt(1, 1).Y
	shadowed := ramp(20, 10, 0).Image().GrayAt(1, 1).Y
	if lit <= shadowed {
		t.Errorf("expected lit slope %d brighter than shadowed %d", lit, shadowed)
	}

	flat := &Surface{Width: 2, Height: 2, Heights: []byte{255, 255, 255, 255}}
	if y := flat.Image().GrayAt(1, 1).Y; y != 147 {
		t.Errorf("flat surface expected 147 got %d", y)
	}
}

func TestEncodePNG(t *testing.T) {
	field := filled(64, 32, 0.5)

	var buf bytes.Buffer
	if err := EncodePNG(&buf, field.Image(), 16); err != nil {
		t.Fatal(err)
	}

	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if size := img.Bounds().Size(); size.X != 16 || size.Y != 8 {
		t.Errorf("expected 16x8 thumbnail got %v", size)
	}
}

func TestDrawMode_UnmarshalText(t *testing.T) {
	var mode DrawMode
	if err := mode.UnmarshalText([]byte("noise")); err != nil || mode != DrawNoise {
		t.Errorf("expected noise got %s (%v)", mode, err)
	}
	if err := mode.UnmarshalText([]byte("surface")); err != nil || mode != DrawSurface || mode.String() != "surface" {
		t.Errorf("expected surface got %s (%v)", mode, err)
	}
	if err := mode.UnmarshalText([]byte("bogus")); err == nil {
		t.Error("expected error")
	}
}
