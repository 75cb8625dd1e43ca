// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package pipeline

import (
	"sync"
	"testing"
)

func TestDispatcher_Drain(t *testing.T) {
	d := NewDispatcher()

	var order []string
	d.Schedule(func() {
		order = append(order, "a")
		d.Schedule(func() {
			order = append(order, "c")
		})
	})
	d.Schedule(func() {
		order = append(order, "b")
	})

	if n := d.Drain(); n != 2 {
		t.Errorf("expected 2 got %d", n)
	}
	if len(order) != 2 || order[0] != "a" || order[1] != "b" {
		t.Errorf("unexpected order %v", order)
	}
	if d.Len() != 1 {
		t.Errorf("expected nested task to wait, len %d", d.Len())
	}

	d.Drain()
	if len(order) != 3 || order[2] != "c" {
		t.Errorf("unexpected order %v", order)
	}
}

func TestDispatcher_Concurrent(t *testing.T) {
	d := NewDispatcher()

	var wait sync.WaitGroup
	count := 0
	for i := 0; i < 8; i++ {
		wait.Add(1)
		go func() {
			defer wait.Done()
			for j := 0; j < 100; j++ {
				d.Schedule(func() { count++ })
			}
		}()
	}
	wait.Wait()

	if n := d.Drain(); n != 800 || count != 800 {
		t.Errorf("expected 800 got %d (%d)", n, count)
	}
}
