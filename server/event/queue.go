// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package event

import (
	"context"
	"errors"
	"sync"
)

// DefaultMaxQueueSize is the default queue capacity.
const DefaultMaxQueueSize = 1024

// Queue errors.
var (
	// ErrQueueClosed is returned by Enqueue on a closed queue and by Dequeue
	// once a closed queue has drained.
	ErrQueueClosed = errors.New("event queue is closed")

	// ErrQueueFull is returned by Enqueue when the queue is at capacity.
	ErrQueueFull = errors.New("event queue is full")
)

// Queue is a bounded FIFO of task lifecycle events. One producer (the
// executor goroutine) and one consumer (the request handler) per queue;
// events are dequeued in the exact order they were enqueued.
type Queue struct {
	events chan Event

	mu        sync.RWMutex
	closed    bool
	closeOnce sync.Once
	done      chan struct{}
}

// NewQueue creates a queue with the given capacity. A non-positive size
// uses DefaultMaxQueueSize.
func NewQueue(size int) *Queue {
	if size <= 0 {
		size = DefaultMaxQueueSize
	}
	return &Queue{
		events: make(chan Event, size),
		done:   make(chan struct{}),
	}
}

// Enqueue adds an event to the queue.
func (q *Queue) Enqueue(ctx context.Context, e Event) error {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		return ErrQueueClosed
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case q.events <- e:
		return nil
	default:
		return ErrQueueFull
	}
}

// Dequeue blocks until an event is available, the context is canceled, or
// the queue is closed and drained.
func (q *Queue) Dequeue(ctx context.Context) (Event, error) {
	select {
	case e := <-q.events:
		return e, nil
	default:
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case e := <-q.events:
		return e, nil
	case <-q.done:
		// Drain anything enqueued before the close.
		select {
		case e := <-q.events:
			return e, nil
		default:
			return nil, ErrQueueClosed
		}
	}
}

// Close closes the queue. Pending events remain dequeueable; further
// enqueues fail with ErrQueueClosed. Close is idempotent.
func (q *Queue) Close() {
	q.closeOnce.Do(func() {
		q.mu.Lock()
		defer q.mu.Unlock()
		q.closed = true
		close(q.done)
	})
}

// IsClosed reports whether the queue is closed.
func (q *Queue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}

// Size returns the number of buffered events.
func (q *Queue) Size() int {
	return len(q.events)
}
