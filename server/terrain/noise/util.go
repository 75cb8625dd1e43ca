// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package noise

func clampPersistence(p float32) float32 {
	if p < minPersistence {
		return minPersistence
	}
	if p > 1 {
		return 1
	}
	return p
}
