// Package hub fans snapshots out to feed subscribers. Each subscriber gets its
// own bounded queue; a full queue drops the snapshot for that subscriber only.
package hub

import (
	"context"
	"sync"

	"github.com/okian/headcount/internal/adapters/mq/queue"
	"github.com/okian/headcount/internal/domain/model"
	"github.com/okian/headcount/pkg/metrics"
)

const defaultSubscriberBuffer = 16

// Option applies a configuration option to the Hub.
type Option func(*Hub)

// WithSubscriberBuffer sets the per-subscriber queue capacity.
func WithSubscriberBuffer(size int) Option {
	return func(h *Hub) {
		if size > 0 {
			h.buffer = size
		}
	}
}

// Subscription is one reader of the feed.
type Subscription struct {
	q    *queue.InMemoryQueue
	hub  *Hub
	once sync.Once
}

// C returns the channel snapshots arrive on. It is closed on Cancel or when
// the hub closes.
func (s *Subscription) C() <-chan model.Snapshot { return s.q.Dequeue() }

// Cancel detaches the subscription. Safe to call more than once.
func (s *Subscription) Cancel() {
	s.once.Do(func() { s.hub.remove(s) })
}

// Hub is the in-process broadcaster.
type Hub struct {
	buffer int

	mu     sync.RWMutex
	subs   map[*Subscription]struct{}
	last   *model.Snapshot
	closed bool
}

// New creates a hub.
func New(opts ...Option) *Hub {
	h := &Hub{
		buffer: defaultSubscriberBuffer,
		subs:   make(map[*Subscription]struct{}),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Subscribe registers a new reader. The most recent snapshot, if any, is
// delivered first so a late joiner is not blank until the next tick.
func (h *Hub) Subscribe() (*Subscription, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil, queue.ErrClosed
	}
	s := &Subscription{
		q:   queue.NewInMemoryQueue(queue.WithCapacity(h.buffer), queue.WithName("feed")),
		hub: h,
	}
	if h.last != nil {
		s.q.Enqueue(context.Background(), *h.last)
	}
	h.subs[s] = struct{}{}
	metrics.UpdateFeedSubscribers(len(h.subs))
	return s, nil
}

// Publish offers snap to every subscriber without blocking.
func (h *Hub) Publish(ctx context.Context, snap model.Snapshot) { //nolint:gocritic // hugeParam: stored by value
	h.mu.Lock()
	h.last = &snap
	subs := make([]*Subscription, 0, len(h.subs))
	for s := range h.subs {
		subs = append(subs, s)
	}
	h.mu.Unlock()

	for _, s := range subs {
		s.q.Enqueue(ctx, snap)
	}
}

// Subscribers returns the number of attached readers.
func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Close detaches every subscriber and rejects new ones.
func (h *Hub) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil
	}
	h.closed = true
	for s := range h.subs {
		_ = s.q.Close()
		delete(h.subs, s)
	}
	metrics.UpdateFeedSubscribers(0)
	return nil
}

func (h *Hub) remove(s *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.subs[s]; !ok {
		return
	}
	delete(h.subs, s)
	_ = s.q.Close()
	metrics.UpdateFeedSubscribers(len(h.subs))
}
