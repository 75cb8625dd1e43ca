// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package world

import "time"

// TickPeriod is the default time between hub ticks.
const TickPeriod = time.Second / 30

// Ticks counts hub updates.
type Ticks uint32

// ToTicks converts a duration to whole ticks of period, rounding up.
func ToTicks(d, period time.Duration) Ticks {
	if period <= 0 || d <= 0 {
		return 0
	}
	return Ticks((d + period - 1) / period)
}

// Since is the number of ticks from earlier to now.
func (ticks Ticks) Since(earlier Ticks) Ticks {
	return ticks - earlier
}

func (ticks Ticks) Duration(period time.Duration) time.Duration {
	return time.Duration(ticks) * period
}
