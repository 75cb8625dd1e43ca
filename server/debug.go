// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"github.com/SoftbearStudios/terra/server/stream"
	"github.com/SoftbearStudios/terra/server/terrain"
	"github.com/SoftbearStudios/terra/server/world"
	"log"
	"os"
	"runtime"
	"sort"
	"time"
)

// snapshotSize is the maximum width and height of uploaded snapshots.
const snapshotSize = 512

// Debug prints debugging info to console and tmp files.
func (h *Hub) Debug() {
	fmt.Printf("Debug [%v] %s\n", time.Now().Format(time.UnixDate), h.cloud)
	var stats runtime.MemStats
	runtime.ReadMemStats(&stats)
	fmt.Printf(" - memstats: %dM/%dM\n", stats.HeapInuse/1e6, stats.NextGC/1e6)

	var (
		botCount    int
		realViewers []*Viewer
		total       stream.Stats
	)

	for client := h.clients.First; client != nil; client = client.Data().Next {
		viewer := &client.Data().Viewer
		if client.Bot() {
			botCount++
		} else {
			realViewers = append(realViewers, viewer)
		}

		if viewer.Stream == nil {
			continue
		}
		s := viewer.Stream.Stats()
		total.Chunks += s.Chunks
		total.Requested += s.Requested
		total.MapReady += s.MapReady
		total.Ready += s.Ready
		total.Visible += s.Visible
		total.Stitching += s.Stitching
		total.Evicted += s.Evicted
	}

	sort.Slice(realViewers, func(i, j int) bool {
		return realViewers[i].Name < realViewers[j].Name
	})

	fmt.Printf(" - clients: %d, bots: %d\n", len(realViewers), botCount)
	for _, realViewer := range realViewers {
		fmt.Printf("   - %s", realViewer)
		if !realViewer.Joined {
			fmt.Print(" {joining}")
		}
		fmt.Println()
	}

	fmt.Printf(" - chunks: %d (requested %d, map ready %d, ready %d, visible %d, stitching %d, evicted %d)\n",
		total.Chunks, total.Requested, total.MapReady, total.Ready, total.Visible, total.Stitching, total.Evicted)

	p := h.pipeline.Stats()
	fmt.Printf(" - pipeline: requested %d, built %d, delivered %d, surfaces %d, failed %d, pending %d, dispatch %d\n",
		p.Requested, p.Built, p.Delivered, p.Surfaces, p.Failed, p.Pending, h.dispatcher.Len())

	// Function benchmarks
	var totalDuration time.Duration

	fmt.Print(" - ")
	for i := range h.funcBenches {
		bench := &h.funcBenches[i]

		duration := bench.reset()
		totalDuration += duration

		fmt.Print(bench.name, ": ", duration, ", ")
	}
	fmt.Println("total:", totalDuration)

	_ = AppendLog("/tmp/terra.log", []interface{}{
		unixMillis(),
		len(realViewers),
		botCount,
		total.Chunks,
		p.Pending,
		p.Failed,
	})
}

// SnapshotTerrain uploads a preview of the terrain around the origin.
func (h *Hub) SnapshotTerrain() {
	if _, ok := h.cloud.(Offline); ok {
		return
	}

	// Rendering takes a while and the builder is read only.
	builder := h.builder
	radius := h.cfg.Server.PreviewRadius
	chunkSize := h.cfg.Chunk.Size
	seed := h.cfg.Noise.Seed
	c := h.cloud

	go func() {
		img := terrain.RenderPreview(builder, world.Vec2f{}, radius, chunkSize, terrain.DrawColor)

		var buf bytes.Buffer
		if err := terrain.EncodePNG(&buf, img, snapshotSize); err != nil {
			log.Println("error encoding snapshot:", err)
			return
		}
		if err := c.UploadTerrainSnapshot(seed, buf.Bytes()); err != nil {
			log.Println("error uploading snapshot:", err)
		}
	}()
}

// AppendLog appends one csv record to filename.
func AppendLog(filename string, fields []interface{}) (err error) {
	f, err := os.OpenFile(filename, os.O_APPEND|os.O_WRONLY|os.O_CREATE, 0644)
	if err != nil {
		return
	}
	defer f.Close()

	w := csv.NewWriter(f)

	fieldStrings := make([]string, 0, len(fields))
	for _, field := range fields {
		switch v := field.(type) {
		case float32, float64:
			fieldStrings = append(fieldStrings, fmt.Sprintf("%.2f", v))
		default:
			fieldStrings = append(fieldStrings, fmt.Sprint(v))
		}
	}

	if err = w.Write(fieldStrings); err != nil {
		return
	}

	w.Flush()
	// Error from flush
	return w.Error()
}

// funcBench is a benchmark of a core function.
type funcBench struct {
	name     string
	duration time.Duration
	runs     int
}

// reset resets the benchmark and returns the average duration
func (bench *funcBench) reset() time.Duration {
	if bench.runs == 0 {
		return 0
	}
	average := bench.duration / time.Duration(bench.runs)
	bench.duration = 0
	bench.runs = 0
	return average
}

// timeFunction times a function.
// defer timeFunction("name", time.Now())
func (h *Hub) timeFunction(name string, start time.Time) {
	end := time.Now()

	var bench *funcBench
	for i := range h.funcBenches {
		b := &h.funcBenches[i]
		if name == b.name {
			bench = b
			break
		}
	}

	if bench == nil {
		h.funcBenches = append(h.funcBenches, funcBench{name: name})
		bench = &h.funcBenches[len(h.funcBenches)-1]
	}

	bench.duration += end.Sub(start)
	bench.runs++
}
