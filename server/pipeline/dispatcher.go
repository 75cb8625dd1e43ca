// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package pipeline

// Dispatcher runs tasks on the goroutine that owns it.
// Schedule may be called from any goroutine. Drain must only be called by the owner.
type Dispatcher struct {
	queue *taskQueue
}

func NewDispatcher() *Dispatcher {
	return &Dispatcher{queue: newTaskQueue()}
}

// Schedule queues task to run on the next Drain.
func (d *Dispatcher) Schedule(task func()) {
	d.queue.push(task)
}

// Drain runs the tasks scheduled before the call in FIFO order.
// Tasks they schedule run on the next Drain. Returns the number run.
func (d *Dispatcher) Drain() int {
	tasks := d.queue.drain()
	for _, task := range tasks {
		task()
	}
	return len(tasks)
}

// Len is the number of tasks waiting for Drain.
func (d *Dispatcher) Len() int {
	return d.queue.len()
}
