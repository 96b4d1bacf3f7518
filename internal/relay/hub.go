package relay

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/puzpuzpuz/xsync/v3"

	"github.com/roach88/blobrelay/internal/metrics"
	"github.com/roach88/blobrelay/internal/record"
)

// DefaultBuffer is the per-subscriber event buffer used when none is given.
const DefaultBuffer = 16

// Hub fans events out to every current subscriber.
//
// Emit never blocks on a slow subscriber: if a subscriber's buffer is
// full the event is dropped for that subscriber only and a warning is
// logged. Delivery to the others is unaffected.
//
// Thread-safety: all methods are safe for concurrent use.
type Hub struct {
	subs   *xsync.MapOf[uuid.UUID, *subscriber]
	buffer int
	logger *slog.Logger
}

// subscriber guards its channel so a send never races a close.
type subscriber struct {
	mu     sync.Mutex
	ch     chan record.Event
	closed bool
}

// offer delivers ev unless the buffer is full or the subscriber is gone.
func (s *subscriber) offer(ev record.Event) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return true
	}
	select {
	case s.ch <- ev:
		return true
	default:
		return false
	}
}

func (s *subscriber) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.closed = true
		close(s.ch)
	}
}

// NewHub creates a hub with the given per-subscriber buffer size.
// A nil logger falls back to slog.Default().
func NewHub(buffer int, logger *slog.Logger) *Hub {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		subs:   xsync.NewMapOf[uuid.UUID, *subscriber](),
		buffer: buffer,
		logger: logger,
	}
}

// Subscribe registers a new subscriber.
// The returned cancel func unregisters it and closes the channel; it is
// safe to call more than once.
func (h *Hub) Subscribe() (uuid.UUID, <-chan record.Event, func()) {
	id := uuid.New()
	sub := &subscriber{ch: make(chan record.Event, h.buffer)}
	h.subs.Store(id, sub)
	metrics.SubscriberJoined()

	h.logger.Debug("host subscribed", "subscriber", id)

	cancel := func() {
		if s, ok := h.subs.LoadAndDelete(id); ok {
			s.close()
			metrics.SubscriberLeft()
			h.logger.Debug("host unsubscribed", "subscriber", id)
		}
	}
	return id, sub.ch, cancel
}

// Subscribers returns the number of current subscribers.
func (h *Hub) Subscribers() int {
	return h.subs.Size()
}

// Emit delivers ev to every subscriber without blocking.
func (h *Hub) Emit(_ context.Context, ev record.Event) error {
	h.subs.Range(func(id uuid.UUID, sub *subscriber) bool {
		if !sub.offer(ev) {
			metrics.HubDropped.Inc()
			h.logger.Warn("subscriber buffer full, event dropped",
				"subscriber", id,
				"event", ev.Type,
				"records", ev.Len(),
			)
		}
		return true
	})
	return nil
}

// Close unregisters every subscriber and closes their channels.
func (h *Hub) Close() {
	h.subs.Range(func(id uuid.UUID, _ *subscriber) bool {
		if s, ok := h.subs.LoadAndDelete(id); ok {
			s.close()
			metrics.SubscriberLeft()
		}
		return true
	})
}
