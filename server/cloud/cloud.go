// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package cloud

import (
	"fmt"
	"github.com/SoftbearStudios/terra/server/cloud/db"
	"github.com/SoftbearStudios/terra/server/cloud/fs"
	"github.com/google/uuid"
	"net"
	"strings"
	"time"
)

const UpdatePeriod = 30 * time.Second

// SnapshotTTL is how long snapshot records are kept.
const SnapshotTTL = 30 * 24 * time.Hour

// A nil cloud is valid to use with any methods (acts as a no-op)
// This just means server is in offline mode
type Cloud struct {
	region   string
	id       uuid.UUID
	ip       net.IP
	database db.Database
	fs       fs.Filesystem
}

func (cloud *Cloud) String() string {
	var builder strings.Builder
	builder.WriteByte('[')
	if cloud == nil {
		builder.WriteString("offline")
	} else {
		builder.WriteString(cloud.region)
		builder.WriteByte(' ')
		builder.WriteString(cloud.id.String())
		builder.WriteByte(' ')
		builder.WriteString(cloud.ip.String())
	}
	builder.WriteByte(']')
	return builder.String()
}

// Returns nil cloud on error
func New() (*Cloud, error) {
	userData, err := loadUserData()
	if err != nil {
		return nil, fmt.Errorf("user data: %w", err)
	}

	ip, err := getPublicIP()
	if err != nil {
		return nil, fmt.Errorf("public ip: %w", err)
	}

	session, err := getAWSSession(userData.Region)
	if err != nil {
		return nil, fmt.Errorf("aws session: %w", err)
	}

	database, err := db.NewDynamoDBDatabase(session, userData.Stage)
	if err != nil {
		return nil, err
	}
	filesystem, err := fs.NewS3Filesystem(session, userData.Stage)
	if err != nil {
		return nil, err
	}

	cloud := newCloud(userData.Region, ip, database, filesystem)
	if err := cloud.UpdateServer(0); err != nil {
		return nil, err
	}
	return cloud, nil
}

func newCloud(region string, ip net.IP, database db.Database, filesystem fs.Filesystem) *Cloud {
	return &Cloud{
		region:   region,
		id:       uuid.New(),
		ip:       ip,
		database: database,
		fs:       filesystem,
	}
}

// Call at least every UpdatePeriod
func (cloud *Cloud) UpdateServer(viewers int) error {
	if cloud == nil {
		return nil
	}
	return cloud.database.UpdateServer(db.Server{
		Region:  cloud.region,
		ID:      cloud.id.String(),
		IP:      cloud.ip,
		Viewers: viewers,
		TTL:     time.Now().Unix() + int64(UpdatePeriod/time.Second) + 5,
	})
}

// UploadTerrainSnapshot stores an encoded PNG of the terrain generated by seed
// and records it in the database.
func (cloud *Cloud) UploadTerrainSnapshot(seed int64, data []byte) error {
	if cloud == nil {
		return nil
	}

	now := time.Now()
	key := fmt.Sprintf("snapshots/%d/%d.png", seed, now.Unix())

	if err := cloud.fs.UploadStaticFile(key, 60, data); err != nil {
		return fmt.Errorf("upload %s: %w", key, err)
	}

	return cloud.database.PutSnapshot(db.Snapshot{
		Seed:    seed,
		Key:     key,
		Server:  cloud.id.String(),
		Size:    len(data),
		Created: now.Unix(),
		TTL:     now.Add(SnapshotTTL).Unix(),
	})
}

// Snapshots lists recorded snapshots of seed, newest first.
func (cloud *Cloud) Snapshots(seed int64) ([]db.Snapshot, error) {
	if cloud == nil {
		return nil, nil
	}
	return cloud.database.ReadSnapshots(seed)
}

func (cloud *Cloud) UpdatePeriod() time.Duration {
	return UpdatePeriod
}
