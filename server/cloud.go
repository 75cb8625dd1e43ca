// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import (
	"fmt"
	"github.com/SoftbearStudios/terra/server/pipeline"
	"log"
	"time"
)

// A nil cloud is valid to use with any methods (acts as a no-op)
// This just means server is in offline mode
type Cloud interface {
	fmt.Stringer
	UpdateServer(viewers int) error
	UploadTerrainSnapshot(seed int64, data []byte) error // takes an encoded PNG
	UpdatePeriod() time.Duration
}

type Offline struct{}

func (offline Offline) String() string {
	return "offline"
}

func (offline Offline) UpdateServer(viewers int) error {
	return nil
}

func (offline Offline) UploadTerrainSnapshot(seed int64, data []byte) error {
	return nil
}

func (offline Offline) UpdatePeriod() time.Duration {
	return time.Hour
}

// serverStatus is served by ServeIndex.
type serverStatus struct {
	Viewers  int            `json:"viewers"`
	Bots     int            `json:"bots"`
	Seed     int64          `json:"seed"`
	Chunks   int            `json:"chunks"`
	Pipeline pipeline.Stats `json:"pipeline"`
}

func (h *Hub) Cloud() {
	status := serverStatus{
		Seed:     h.cfg.Noise.Seed,
		Pipeline: h.pipeline.Stats(),
	}

	for client := h.clients.First; client != nil; client = client.Data().Next {
		if client.Bot() {
			status.Bots++
		} else {
			status.Viewers++
		}
		if stream := client.Data().Viewer.Stream; stream != nil {
			status.Chunks += stream.Len()
		}
	}

	statusJSON, err := json.Marshal(status)
	if err == nil {
		h.statusJSON.Store(statusJSON)
	} else {
		log.Println("error marshaling status:", err)
	}

	if err = h.cloud.UpdateServer(status.Viewers); err != nil {
		log.Println("error updating server:", err)
	}
}
