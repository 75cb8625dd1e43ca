// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import (
	"fmt"
	"github.com/SoftbearStudios/terra/server/config"
	"github.com/SoftbearStudios/terra/server/pipeline"
	"github.com/SoftbearStudios/terra/server/terrain"
	"github.com/SoftbearStudios/terra/server/terrain/noise"
	"log"
	"os"
	"sync/atomic"
	"time"
)

const (
	botPeriod    = time.Second / 4
	statusPeriod = time.Second

	// encodeBotMessages makes BotClient.Send marshal json and check for errors.
	// Only useful for testing/benchmarking (drops performance significantly).
	encodeBotMessages = false
)

type HubOptions struct {
	Config *config.Config
	// Cloud may be nil (offline).
	Cloud Cloud
	// MinViewers overrides Config.Server.MinViewers if non-negative.
	MinViewers int
}

// Hub owns every viewer's stream.Manager and the generation pipeline.
// Everything but the pipeline's workers runs on the Run goroutine.
type Hub struct {
	cfg        *config.Config
	builder    *terrain.Builder
	pipeline   *pipeline.Pipeline
	dispatcher *pipeline.Dispatcher
	clients    ClientList // implemented as double-linked list

	// Flags
	minViewers int

	// Cloud (and things that are served atomically by HTTP)
	cloud      Cloud
	statusJSON atomic.Value

	// funcBenches are benchmarks of core Hub functions.
	funcBenches []funcBench

	// Inbound channels
	inbound    chan SignedInbound
	register   chan Client
	unregister chan Client

	// Timer based events
	cloudTicker    *time.Ticker
	updateTicker   *time.Ticker
	statusTicker   *time.Ticker
	debugTicker    *time.Ticker
	snapshotTicker *time.Ticker
	botsTicker     *time.Ticker
}

func NewHub(options HubOptions) *Hub {
	cfg := options.Config
	if cfg == nil {
		def := config.Default()
		def.Clamp()
		cfg = &def
	}

	c := options.Cloud
	if c == nil {
		c = Offline{}
	}

	minViewers := cfg.Server.MinViewers
	if options.MinViewers >= 0 {
		minViewers = options.MinViewers
	}

	builder := cfg.Builder(noise.New())
	dispatcher := pipeline.NewDispatcher()

	return &Hub{
		cfg:        cfg,
		builder:    builder,
		dispatcher: dispatcher,
		pipeline: pipeline.New(pipeline.Options{
			Workers:    cfg.Pipeline.Workers,
			Builder:    builder,
			Surfaces:   pipeline.CurveSurfaces(cfg.Map.Depth, cfg.Curve()),
			Dispatcher: dispatcher,
		}),
		minViewers:     minViewers,
		cloud:          c,
		inbound:        make(chan SignedInbound, 16+minViewers*2),
		register:       make(chan Client, 8+minViewers/256),
		unregister:     make(chan Client, 16+minViewers/128),
		cloudTicker:    time.NewTicker(c.UpdatePeriod()),
		updateTicker:   time.NewTicker(time.Duration(cfg.Server.TickPeriod)),
		statusTicker:   time.NewTicker(statusPeriod),
		debugTicker:    time.NewTicker(positive(time.Duration(cfg.Server.DebugPeriod), time.Minute)),
		snapshotTicker: time.NewTicker(positive(time.Duration(cfg.Server.SnapshotPeriod), time.Hour)),
		botsTicker:     time.NewTicker(botPeriod),
	}
}

// Register adds a client. It may be called from any goroutine.
func (h *Hub) Register(client Client) {
	h.register <- client
}

func (h *Hub) Run() {
	defer func() {
		if r := recover(); r != nil {
			panic(r)
		}
		println("That's it, I'm out -hub") // Don't waste time debugging hub exists
		os.Exit(1)
	}()

	fmt.Println("Hub started", h.cloud)
	h.Cloud()

	for {
		select {
		case client := <-h.register:
			h.clients.Add(client)
			client.Data().Hub = h
			client.Data().Viewer.init(h)
			client.Init()
		case client := <-h.unregister:
			client.Close()
			data := client.Data()
			if !client.Bot() && data.Viewer.Joined {
				log.Println("viewer left:", &data.Viewer)
			}
			// In-flight generation for this stream is delivered to nothing.
			data.Viewer.Stream = nil
			data.Hub = nil
			h.clients.Remove(client)
		case in := <-h.inbound:
			// Read all messages currently in the channel
			n := len(h.inbound)

			for {
				// If not same hub the message is old
				data := in.Client.Data()
				if h == data.Hub {
					in.Process(h, in.Client, &data.Viewer)
				}

				if n--; n <= 0 {
					break
				}

				in = <-h.inbound
			}
		case <-h.updateTicker.C:
			h.Update()
		case <-h.statusTicker.C:
			h.Status()
		case <-h.debugTicker.C:
			h.Debug()
		case <-h.snapshotTicker.C:
			h.SnapshotTerrain()
		case <-h.botsTicker.C:
			// Add as many as fit in the channel but don't block because it would deadlock
		bots:
			for i := h.clients.Len + len(h.register) - len(h.unregister); i < h.minViewers; i++ {
				select {
				case h.register <- &BotClient{}:
				default:
					break bots
				}
			}
		case <-h.cloudTicker.C:
			h.Cloud()
		}
	}
}

// Update is one tick. Map data finished by workers is delivered first, then
// surfaces are built, then every viewer's chunks are updated.
func (h *Hub) Update() {
	defer h.timeFunction("update", time.Now())

	h.pipeline.Tick()
	h.dispatcher.Drain()

	for client := h.clients.First; client != nil; client = client.Data().Next {
		client.Data().Viewer.update(client)
	}
}

// Status sends every viewer a summary of its stream.
func (h *Hub) Status() {
	for client := h.clients.First; client != nil; client = client.Data().Next {
		client.Send(client.Data().Viewer.status())
	}
}

func positive(d, fallback time.Duration) time.Duration {
	if d <= 0 {
		return fallback
	}
	return d
}
