// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package world

func min(a, b float32) float32 {
	if a < b {
		return a
	}
	return b
}

func max(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}

// Clamp limits val to [minimum, maximum].
func Clamp(val, minimum, maximum float32) float32 {
	return min(max(val, minimum), maximum)
}

// InverseLerp is where val sits between a and b, 0 when a == b.
func InverseLerp(a, b, val float32) float32 {
	if a == b {
		return 0
	}
	return (val - a) / (b - a)
}
