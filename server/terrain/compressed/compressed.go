// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package compressed packs terrain surfaces for the wire.
package compressed

import (
	"fmt"
	"github.com/SoftbearStudios/terra/server/terrain"
	"io"
	"sync"
)

// Data is a run length encoded terrain.Surface.
type Data struct {
	Data   []byte  `json:"data"`   // Data is the encoded heightmap.
	Stride int     `json:"stride"` // Stride is width of the heightmap.
	Length int     `json:"length"` // Length is decoded length of Data for faster reading.
	Depth  float32 `json:"depth"`
}

var dataPool = sync.Pool{
	New: func() interface{} {
		return &Data{
			Data: make([]byte, 0, 2048),
		}
	},
}

func NewData() *Data {
	return dataPool.Get().(*Data)
}

// Pool returns the Data to the pool. It must not be used afterwards.
func (data *Data) Pool() {
	data.Data = data.Data[:0]
	data.Stride = 0
	data.Length = 0
	data.Depth = 0
	dataPool.Put(data)
}

// Encode compresses a surface into pooled Data.
func Encode(surface *terrain.Surface) *Data {
	data := NewData()
	buffer := Buffer{buf: data.Data}
	_, _ = buffer.Write(surface.Heights)

	data.Data = buffer.Buffer()
	data.Stride = surface.Width
	data.Length = len(surface.Heights)
	data.Depth = surface.Depth
	return data
}

// Decode reverses Encode.
func Decode(data *Data) (*terrain.Surface, error) {
	if data.Stride <= 0 || data.Length%data.Stride != 0 {
		return nil, fmt.Errorf("compressed: length %d not a multiple of stride %d", data.Length, data.Stride)
	}

	heights := make([]byte, data.Length)
	var buffer Buffer
	buffer.Reset(data.Data)

	n, err := io.ReadFull(&buffer, heights)
	if err != nil {
		return nil, fmt.Errorf("compressed: read %d of %d bytes: %w", n, data.Length, err)
	}

	return &terrain.Surface{
		Width:   data.Stride,
		Height:  data.Length / data.Stride,
		Depth:   data.Depth,
		Heights: heights,
	}, nil
}
