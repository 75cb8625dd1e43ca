// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package db

import (
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/guregu/dynamo"
)

type DynamoDBDatabase struct {
	svc            *dynamodb.DynamoDB
	db             *dynamo.DB
	serversTable   dynamo.Table
	snapshotsTable dynamo.Table
}

func NewDynamoDBDatabase(session *session.Session, stage string) (*DynamoDBDatabase, error) {
	ddb := &DynamoDBDatabase{svc: dynamodb.New(session)}
	ddb.db = dynamo.NewFromIface(ddb.svc)
	ddb.serversTable = ddb.db.Table("terra-" + stage + "-servers")
	ddb.snapshotsTable = ddb.db.Table("terra-" + stage + "-snapshots")
	return ddb, nil
}

func (ddb *DynamoDBDatabase) UpdateServer(server Server) error {
	return ddb.serversTable.Put(server).Run()
}

func (ddb *DynamoDBDatabase) ReadServers() (servers []Server, err error) {
	err = ddb.serversTable.Scan().All(&servers)
	return
}

func (ddb *DynamoDBDatabase) ReadServersByRegion(region string) (servers []Server, err error) {
	query := ddb.serversTable.Get("region", region).Iter()

	for {
		var server Server
		if !query.Next(&server) {
			return servers, query.Err()
		}
		servers = append(servers, server)
	}
}

func (ddb *DynamoDBDatabase) PutSnapshot(snapshot Snapshot) error {
	// Two uploads in the same second for the same seed keep the first
	err := ddb.snapshotsTable.Put(snapshot).If("attribute_not_exists(created)").Run()
	if err != nil {
		if _, ok := err.(*dynamodb.ConditionalCheckFailedException); ok {
			return nil
		}
	}
	return err
}

func (ddb *DynamoDBDatabase) ReadSnapshots(seed int64) (snapshots []Snapshot, err error) {
	err = ddb.snapshotsTable.Get("seed", seed).Order(dynamo.Descending).All(&snapshots)
	return
}
