// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package db

type Database interface {
	UpdateServer(server Server) error
	ReadServers() (servers []Server, err error)
	ReadServersByRegion(region string) (servers []Server, err error)
	PutSnapshot(snapshot Snapshot) error
	// ReadSnapshots returns snapshots of a seed, newest first.
	ReadSnapshots(seed int64) (snapshots []Snapshot, err error)
}
