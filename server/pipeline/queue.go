// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package pipeline

import "sync"

// taskQueue is a mutex guarded FIFO of tasks.
// push never blocks. pop blocks until a task arrives or the queue is closed.
type taskQueue struct {
	mutex  sync.Mutex
	cond   sync.Cond
	tasks  []func()
	closed bool
}

func newTaskQueue() *taskQueue {
	q := &taskQueue{}
	q.cond.L = &q.mutex
	return q
}

// push returns false if the queue is closed.
func (q *taskQueue) push(task func()) bool {
	q.mutex.Lock()
	defer q.mutex.Unlock()

	if q.closed {
		return false
	}
	q.tasks = append(q.tasks, task)
	q.cond.Signal()
	return true
}

// pop waits for the next task. It returns false once closed and empty.
func (q *taskQueue) pop() (func(), bool) {
	q.mutex.Lock()
	defer q.mutex.Unlock()

	for len(q.tasks) == 0 {
		if q.closed {
			return nil, false
		}
		q.cond.Wait()
	}

	task := q.tasks[0]
	q.tasks[0] = nil
	q.tasks = q.tasks[1:]
	return task, true
}

// drain removes every queued task without waiting.
func (q *taskQueue) drain() []func() {
	q.mutex.Lock()
	defer q.mutex.Unlock()

	tasks := q.tasks
	q.tasks = nil
	return tasks
}

func (q *taskQueue) len() int {
	q.mutex.Lock()
	defer q.mutex.Unlock()
	return len(q.tasks)
}

func (q *taskQueue) close() {
	q.mutex.Lock()
	defer q.mutex.Unlock()

	q.closed = true
	q.cond.Broadcast()
}
