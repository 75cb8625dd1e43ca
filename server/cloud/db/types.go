// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package db

import (
	"net"
)

type Server struct {
	Region  string `dynamo:"region"`
	ID      string `dynamo:"id"`
	IP      net.IP `dynamo:"ip"`
	Viewers int    `dynamo:"viewers"`
	TTL     int64  `dynamo:"ttl,omitempty"`
}

// Snapshot is a terrain preview uploaded to the static bucket.
type Snapshot struct {
	Seed    int64  `dynamo:"seed"`
	Created int64  `dynamo:"created"`
	Key     string `dynamo:"key"`
	Server  string `dynamo:"server"`
	Size    int    `dynamo:"size"`
	TTL     int64  `dynamo:"ttl,omitempty"`
}
