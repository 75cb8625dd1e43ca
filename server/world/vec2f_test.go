// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package world

import (
	"github.com/chewxy/math32"
	"math/rand"
	"testing"
)

func approx(a, b float32) bool {
	return math32.Abs(a-b) < 0.02
}

func TestVec2f_RotN90(t *testing.T) {
	tests := []struct {
		vec      Vec2f
		expected Vec2f
	}{
		{Vec2f{0, 0}, Vec2f{0, 0}},
		{Vec2f{1, 0}, Vec2f{0, -1}},
		{Vec2f{0, 1}, Vec2f{1, 0}},
		{Vec2f{255, -510}, Vec2f{-510, -255}},
	}

	for _, test := range tests {
		if got := test.vec.RotN90(); got != test.expected {
			t.Errorf("expected %v.RotN90(): %v, got %v", test.vec, test.expected, got)
		}
		if got := test.vec.RotN90().Rot90(); got != test.vec {
			t.Errorf("expected %v.RotN90().Rot90() to round trip, got %v", test.vec, got)
		}
	}
}

func TestVec2f_Round(t *testing.T) {
	tests := []struct {
		vec      Vec2f
		expected Vec2f
	}{
		{Vec2f{0.4, -0.4}, Vec2f{0, 0}},
		{Vec2f{0.5, 1.5}, Vec2f{0, 2}},
		{Vec2f{2.745, -2.745}, Vec2f{3, -3}},
	}

	for _, test := range tests {
		if got := test.vec.Round(); got != test.expected {
			t.Errorf("expected %v.Round(): %v, got %v", test.vec, test.expected, got)
		}
	}
}

func TestVec2f_Distance(t *testing.T) {
	for i := 0; i < 100; i++ {
		a := Vec2f{X: rand.Float32()*100 - 50, Y: rand.Float32()*100 - 50}
		b := Vec2f{X: rand.Float32()*100 - 50, Y: rand.Float32()*100 - 50}
		d := a.Distance(b)
		if !approx(d*d, a.DistanceSquared(b)) {
			t.Errorf("distance %f squared != %f", d, a.DistanceSquared(b))
		}
	}
}

func TestAngle_Wrap(t *testing.T) {
	for i := float32(-20.0); i < 20; i += 0.25 {
		a := Angle(i).Wrap()
		if a < -Angle(math32.Pi) || a >= Angle(math32.Pi) {
			t.Errorf("Angle(%f).Wrap() = %f out of range", i, a)
		}
		v1, v2 := Angle(i).Vec2f(), a.Vec2f()
		if !approx(v1.X, v2.X) || !approx(v1.Y, v2.Y) {
			t.Errorf("Angle(%f).Wrap() changed direction %v -> %v", i, v1, v2)
		}
	}
}
