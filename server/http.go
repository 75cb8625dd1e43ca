// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import (
	"github.com/SoftbearStudios/terra/server/terrain"
	"github.com/SoftbearStudios/terra/server/world"
	"log"
	"net/http"
	"strconv"
)

const (
	// maxPreviewRadius bounds the work of one preview request.
	maxPreviewRadius = 4
	maxPreviewSize   = 1024
)

func (h *Hub) ServeIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Content-Type", "application/json")
	buf, ok := h.statusJSON.Load().([]byte)
	if ok {
		_, _ = w.Write(buf)
	}
}

func (h *Hub) ServeSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println("upgrade error", err)
		return
	}

	h.register <- NewSocketClient(conn)
}

// ServePreview renders the chunks around ?x=&y= as a PNG.
// ?radius= is in chunks and ?mode= is "color", "noise" or "surface".
func (h *Hub) ServePreview(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	var center world.Vec2f
	for _, param := range []struct {
		name string
		dst  *float32
	}{{"x", &center.X}, {"y", &center.Y}} {
		str := query.Get(param.name)
		if str == "" {
			continue
		}
		f, err := strconv.ParseFloat(str, 32)
		if err != nil {
			http.Error(w, "invalid "+param.name, http.StatusBadRequest)
			return
		}
		*param.dst = float32(f)
	}
	if !center.Finite() {
		http.Error(w, "invalid center", http.StatusBadRequest)
		return
	}

	radius := h.cfg.Server.PreviewRadius
	if str := query.Get("radius"); str != "" {
		var err error
		if radius, err = strconv.Atoi(str); err != nil || radius < 0 {
			http.Error(w, "invalid radius", http.StatusBadRequest)
			return
		}
	}
	if radius > maxPreviewRadius {
		radius = maxPreviewRadius
	}

	var mode terrain.DrawMode
	if err := mode.UnmarshalText([]byte(query.Get("mode"))); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	img := terrain.RenderPreview(h.builder, center, radius, h.cfg.Chunk.Size, mode)

	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Content-Type", "image/png")
	if err := terrain.EncodePNG(w, img, maxPreviewSize); err != nil {
		log.Println("preview error:", err)
	}
}
