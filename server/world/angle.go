// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package world

import (
	"fmt"
	"github.com/chewxy/math32"
)

// Angle is a heading in radians.
type Angle float32

func (angle Angle) Vec2f() Vec2f {
	sin, cos := math32.Sincos(float32(angle))
	return Vec2f{
		X: cos,
		Y: sin,
	}
}

// Wrap maps the angle to [-Pi, Pi).
func (angle Angle) Wrap() Angle {
	const mod = Angle(math32.Pi * 2)
	if angle >= mod || angle < -mod {
		angle = Angle(math32.Mod(float32(angle), float32(mod)))
	}
	if angle < Angle(-math32.Pi) {
		angle += mod
	} else if angle >= Angle(math32.Pi) {
		angle -= mod
	}
	return angle
}

func (angle Angle) String() string {
	return fmt.Sprintf("%.01f degrees", float32(angle)*180/math32.Pi)
}
