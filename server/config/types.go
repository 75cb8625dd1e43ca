// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
	"time"
)

// Duration is a time.Duration written like "500ms".
type Duration time.Duration

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", text, err)
	}
	*d = Duration(parsed)
	return nil
}

// Color is written as "#rrggbb" or "#rrggbbaa".
type Color color.RGBA

func (c Color) RGBA() color.RGBA {
	return color.RGBA(c)
}

func (c Color) MarshalText() ([]byte, error) {
	if c.A == 255 {
		return []byte(fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)), nil
	}
	return []byte(fmt.Sprintf("#%02x%02x%02x%02x", c.R, c.G, c.B, c.A)), nil
}

func (c *Color) UnmarshalText(text []byte) error {
	s := strings.TrimPrefix(string(text), "#")
	if len(s) != 6 && len(s) != 8 {
		return fmt.Errorf("invalid color %q", text)
	}

	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return fmt.Errorf("invalid color %q: %w", text, err)
	}
	if len(s) == 6 {
		v = v<<8 | 0xff
	}

	*c = Color{R: byte(v >> 24), G: byte(v >> 16), B: byte(v >> 8), A: byte(v)}
	return nil
}
