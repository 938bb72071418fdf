// Package queue carries save requests from store mutations to the saver
// worker.
package queue

import (
	"context"
	"sync"
	"time"

	"github.com/okian/daybook/pkg/metrics"
)

const defaultCapacity = 64

// Request asks the saver to persist the current store contents.
type Request struct {
	Reason string
	At     time.Time
}

// Queue provides non-blocking enqueue and channel-based dequeue semantics.
type Queue interface {
	// Enqueue adds a request. It returns false when the queue is full or
	// closed; a pending request already covers the change in that case.
	Enqueue(ctx context.Context, r Request) bool

	// Dequeue returns the channel requests are delivered on. It is closed
	// once the queue is closed and drained.
	Dequeue() <-chan Request

	Len() int

	// Close stops accepting requests. Pending requests stay readable.
	Close() error

	IsClosed() bool
}

// InMemoryQueue implements Queue using a buffered channel.
type InMemoryQueue struct {
	requests chan Request
	capacity int

	mu     sync.RWMutex
	closed bool
}

// NewInMemoryQueue creates a bounded in-memory queue.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{capacity: defaultCapacity}
	for _, opt := range opts {
		opt(q)
	}
	q.requests = make(chan Request, q.capacity)
	metrics.UpdateSaveQueueDepth(0)
	return q
}

// Enqueue implements Queue.Enqueue.
func (q *InMemoryQueue) Enqueue(ctx context.Context, r Request) bool {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed || ctx.Err() != nil {
		return false
	}
	select {
	case q.requests <- r:
		metrics.UpdateSaveQueueDepth(len(q.requests))
		return true
	default:
		metrics.RecordSave(metrics.ResultDropped)
		return false
	}
}

// Dequeue implements Queue.Dequeue.
func (q *InMemoryQueue) Dequeue() <-chan Request {
	return q.requests
}

// Len implements Queue.Len.
func (q *InMemoryQueue) Len() int {
	n := len(q.requests)
	metrics.UpdateSaveQueueDepth(n)
	return n
}

// Close implements Queue.Close. It is safe to call more than once.
func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return nil
	}
	close(q.requests)
	q.closed = true
	return nil
}

// IsClosed implements Queue.IsClosed.
func (q *InMemoryQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}
