// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package stream

import (
	"fmt"
	"github.com/SoftbearStudios/terra/server/world"
)

// ChunkID is a handle to a chunk in a Manager.
// It stops resolving once the chunk is evicted, even if its slot is reused.
type ChunkID struct {
	index      uint32
	generation uint32
}

// Valid is false for the zero ChunkID.
func (id ChunkID) Valid() bool {
	return id.generation != 0
}

func (id ChunkID) String() string {
	return fmt.Sprintf("%d#%d", id.index, id.generation)
}

type slot struct {
	chunk      Chunk
	generation uint32 // odd while in use
}

// arena stores chunks in reusable slots.
// Pointers it returns are invalidated by the next insert.
type arena struct {
	slots []slot
	free  []uint32
	index map[world.ChunkCoord]ChunkID
}

func newArena() arena {
	return arena{index: make(map[world.ChunkCoord]ChunkID)}
}

func (a *arena) insert(coord world.ChunkCoord) (ChunkID, *Chunk) {
	var i uint32
	if n := len(a.free); n > 0 {
		i = a.free[n-1]
		a.free = a.free[:n-1]
	} else {
		i = uint32(len(a.slots))
		a.slots = append(a.slots, slot{})
	}

	s := &a.slots[i]
	s.generation++
	s.chunk = Chunk{Coord: coord}

	id := ChunkID{index: i, generation: s.generation}
	a.index[coord] = id
	return id, &s.chunk
}

// get returns nil for stale or invalid ids.
func (a *arena) get(id ChunkID) *Chunk {
	if int(id.index) >= len(a.slots) {
		return nil
	}
	s := &a.slots[id.index]
	if s.generation != id.generation || s.generation%2 == 0 {
		return nil
	}
	return &s.chunk
}

func (a *arena) lookup(coord world.ChunkCoord) (ChunkID, bool) {
	id, ok := a.index[coord]
	return id, ok
}

func (a *arena) remove(id ChunkID) bool {
	c := a.get(id)
	if c == nil {
		return false
	}
	delete(a.index, c.Coord)

	s := &a.slots[id.index]
	s.generation++
	s.chunk = Chunk{}
	a.free = append(a.free, id.index)
	return true
}

func (a *arena) len() int {
	return len(a.index)
}

// forEach calls fn on every live chunk. fn must not insert or remove.
func (a *arena) forEach(fn func(id ChunkID, c *Chunk)) {
	for i := range a.slots {
		s := &a.slots[i]
		if s.generation%2 == 1 {
			fn(ChunkID{index: uint32(i), generation: s.generation}, &s.chunk)
		}
	}
}
