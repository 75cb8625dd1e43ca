// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package terrain

import (
	"fmt"
	"github.com/SoftbearStudios/terra/server/world"
	"github.com/chewxy/math32"
	"github.com/nfnt/resize"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"sync"
)

// DrawMode selects what a preview shows.
type DrawMode uint8

const (
	// DrawNoise shows heights as grayscale.
	DrawNoise DrawMode = iota
	// DrawColor shows band colors.
	DrawColor
	// DrawSurface shows the displayable surface as shaded relief.
	DrawSurface
)

func (mode DrawMode) String() string {
	switch mode {
	case DrawNoise:
		return "noise"
	case DrawColor:
		return "color"
	case DrawSurface:
		return "surface"
	default:
		return fmt.Sprintf("draw(%d)", uint8(mode))
	}
}

func (mode *DrawMode) UnmarshalText(text []byte) error {
	switch string(text) {
	case "noise":
		*mode = DrawNoise
	case "color", "":
		*mode = DrawColor
	case "surface":
		*mode = DrawSurface
	default:
		return fmt.Errorf("unknown draw mode %q", text)
	}
	return nil
}

// Image encodes the colors as pixels. Pixel (x, y) is sample (x, y).
func (f *ColorField) Image() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, f.Width, f.Height))
	for y := 0; y < f.Height; y++ {
		for x := 0; x < f.Width; x++ {
			img.SetRGBA(x, y, f.At(x, y))
		}
	}
	return img
}

// Image encodes heights in [0, 1] as black to white.
func (f *HeightField) Image() *image.Gray {
	img := image.NewGray(image.Rect(0, 0, f.Width, f.Height))
	for y := 0; y < f.Height; y++ {
		for x := 0; x < f.Width; x++ {
			img.SetGray(x, y, color.Gray{Y: floatToByte(f.At(x, y))})
		}
	}
	return img
}

// Image shades the surface as relief lit from the top left, brightened with
// altitude. A zero Depth draws flat.
func (s *Surface) Image() *image.Gray {
	img := image.NewGray(image.Rect(0, 0, s.Width, s.Height))

	// Unit light vector (-1, -1, 1) / sqrt(3)
	const light = 0.57735026

	for y := 0; y < s.Height; y++ {
		for x := 0; x < s.Width; x++ {
			dx := (s.Altitude(clampIndex(x+1, s.Width), y) - s.Altitude(clampIndex(x-1, s.Width), y)) * 0.5
			dy := (s.Altitude(x, clampIndex(y+1, s.Height)) - s.Altitude(x, clampIndex(y-1, s.Height))) * 0.5

			// Normal is (-dx, -dy, 1) normalized
			shade := (dx + dy + 1) * light / math32.Sqrt(dx*dx+dy*dy+1)
			h := float32(s.Heights[x+y*s.Width]) / 255
			img.SetGray(x, y, color.Gray{Y: floatToByte(shade * (0.5 + 0.5*h))})
		}
	}
	return img
}

func clampIndex(i, n int) int {
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

// EncodePNG writes img as a PNG, shrunk to fit in maxSize x maxSize if maxSize > 0.
func EncodePNG(w io.Writer, img image.Image, maxSize int) error {
	if maxSize > 0 {
		bounds := img.Bounds()
		if bounds.Dx() > maxSize || bounds.Dy() > maxSize {
			img = resize.Thumbnail(uint(maxSize), uint(maxSize), img, resize.Lanczos3)
		}
	}
	return png.Encode(w, img)
}

// RenderPreview builds every chunk within radius of center and tiles them.
// DrawSurface remaps heights with the Builder's Curve and Depth.
// Tiles follow the rotated chunk origin: image x runs along chunk Y and
// image y along chunk X, so neighboring tiles line up.
func RenderPreview(b *Builder, center world.Vec2f, radius int, chunkSize float32, mode DrawMode) image.Image {
	if radius < 0 {
		radius = 0
	}
	side := 2*radius + 1
	centerCoord := world.CoordOf(center, chunkSize)
	canvas := image.NewRGBA(image.Rect(0, 0, side*b.Width, side*b.Height))

	var wait sync.WaitGroup
	for i := 0; i < side; i++ {
		for j := 0; j < side; j++ {
			coord := centerCoord.Add(int32(i-radius), int32(j-radius))
			at := image.Pt(j*b.Width, i*b.Height)

			wait.Add(1)
			go func() {
				defer wait.Done()

				data := b.Build(coord.Position(chunkSize).RotN90())
				var tile image.Image
				switch mode {
				case DrawNoise:
					tile = data.Heights.Image()
				case DrawSurface:
					surface, err := BuildSurface(data.Heights, b.Depth, b.Curve)
					if err != nil {
						return
					}
					tile = surface.Image()
				default:
					tile = data.Colors.Image()
				}

				// Tiles don't overlap so drawing concurrently is fine
				draw.Draw(canvas, image.Rectangle{Min: at, Max: at.Add(tile.Bounds().Size())}, tile, image.Point{}, draw.Src)
			}()
		}
	}
	wait.Wait()

	return canvas
}
