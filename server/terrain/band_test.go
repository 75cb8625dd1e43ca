// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package terrain

import (
	"image/color"
	"math/rand"
	"testing"
)

var testBands = BandTable{
	{Name: "water", Height: 0, Color: RGB(0, 0, 255)},
	{Name: "sand", Height: 0.3, Color: RGB(255, 255, 0)},
	{Name: "grass", Height: 0.6, Color: RGB(0, 255, 0)},
	{Name: "rock", Height: 0.8, Color: Gray(128)},
}

func TestBandTable_Classify(t *testing.T) {
	tests := []struct {
		height float32
		want   color.RGBA
	}{
		{0.25, testBands[0].Color},
		{0, testBands[0].Color},
		{0.3, testBands[1].Color},
		{0.65, testBands[2].Color},
		{0.95, testBands[3].Color},
		{1, testBands[3].Color},
		{-0.1, color.RGBA{}},
	}

	for _, test := range tests {
		if got := testBands.Classify(test.height); got != test.want {
			t.Errorf("Classify(%f) expected %v got %v", test.height, test.want, got)
		}
	}
}

func TestBandTable_Empty(t *testing.T) {
	var table BandTable
	if i := table.Index(0.5); i != -1 {
		t.Errorf("expected -1 got %d", i)
	}
	if c := table.Classify(0.5); c != (color.RGBA{}) {
		t.Errorf("expected zero color got %v", c)
	}
}

// The chosen band is the last one whose threshold is <= h.
func TestBandTable_Random(t *testing.T) {
	r := rand.New(rand.NewSource(1))

	for n := 0; n < 100; n++ {
		table := make(BandTable, 1+r.Intn(8))
		var height float32
		for i := range table {
			height += r.Float32() * 0.2
			table[i] = Band{Height: height, Color: Gray(byte(i))}
		}
		if !table.Sorted() {
			t.Fatal("generated table not sorted")
		}

		for k := 0; k < 50; k++ {
			h := r.Float32()*1.4 - 0.2
			i := table.Index(h)

			if i == -1 {
				if h >= table[0].Height {
					t.Fatalf("%f above first band but got -1", h)
				}
				continue
			}
			if table[i].Height > h {
				t.Fatalf("band %d starts at %f above %f", i, table[i].Height, h)
			}
			if i+1 < len(table) && table[i+1].Height <= h {
				t.Fatalf("band %d also starts at or below %f", i+1, h)
			}
		}
	}
}

func TestBandTable_Sorted(t *testing.T) {
	if !DefaultBands.Sorted() {
		t.Error("default bands not sorted")
	}
	unsorted := BandTable{{Height: 0.5}, {Height: 0.2}}
	if unsorted.Sorted() {
		t.Error("expected unsorted")
	}
	// Must not panic
	unsorted.Classify(0.3)
}
