// Package queue provides a bounded, non-blocking snapshot queue. Each feed
// subscriber owns one so a slow reader never stalls the loop driver.
package queue

import (
	"context"
	"sync"

	"github.com/okian/headcount/internal/domain/model"
	"github.com/okian/headcount/pkg/metrics"
)

const (
	defaultQueueCapacity = 16
	defaultQueueName     = "feed"
)

// Snapshot is the payload type flowing through the queue.
type Snapshot = model.Snapshot

// Queue provides non-blocking enqueue and channel-based dequeue semantics.
type Queue interface {
	// Enqueue adds a snapshot to the queue.
	// Returns false if the queue is full or closed and the snapshot was dropped.
	Enqueue(ctx context.Context, s Snapshot) bool

	// Dequeue returns the receive side of the queue.
	// The channel is closed when the queue is closed.
	Dequeue() <-chan Snapshot

	// Len returns the current number of queued snapshots.
	Len() int

	// Close shuts the queue down. Further enqueues fail.
	Close() error

	// IsClosed reports whether Close has been called.
	IsClosed() bool
}

var _ Queue = (*InMemoryQueue)(nil)

// InMemoryQueue implements Queue using a buffered channel.
type InMemoryQueue struct {
	snapshots chan Snapshot
	capacity  int
	name      string

	mu     sync.RWMutex
	closed bool
}

// NewInMemoryQueue creates a new in-memory queue.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{
		capacity: defaultQueueCapacity,
		name:     defaultQueueName,
	}
	for _, opt := range opts {
		opt(q)
	}
	q.snapshots = make(chan Snapshot, q.capacity)
	return q
}

// Enqueue adds a snapshot to the queue without blocking.
func (q *InMemoryQueue) Enqueue(ctx context.Context, s Snapshot) bool { //nolint:gocritic // hugeParam: value semantics for the channel
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		metrics.RecordErrorByComponent(q.name, "closed")
		return false
	}

	select {
	case q.snapshots <- s:
		return true
	case <-ctx.Done():
		metrics.RecordErrorByComponent(q.name, "context_cancelled")
		return false
	default:
		metrics.RecordFeedDropped()
		return false
	}
}

// Dequeue returns the receive side of the queue.
func (q *InMemoryQueue) Dequeue() <-chan Snapshot {
	return q.snapshots
}

// Len returns the current number of queued snapshots.
func (q *InMemoryQueue) Len() int {
	return len(q.snapshots)
}

// Close gracefully shuts down the queue.
func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}
	close(q.snapshots)
	q.closed = true
	return nil
}

// IsClosed returns true if the queue has been closed.
func (q *InMemoryQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}
