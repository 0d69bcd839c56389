// Package broadcast fans out order change events to subscribed kitchen
// displays. Delivery is best-effort: no acknowledgment, no replay — a
// subscriber connecting after an event misses it and pulls current state
// over the REST surface instead.
package broadcast

import (
	"log/slog"
	"sync"
	"time"
)

// Event types pushed over the kitchen channel.
const (
	EventNewOrder       = "NEW_ORDER"
	EventOrderCompleted = "ORDER_COMPLETED"
	EventOrderReverted  = "ORDER_REVERTED"
)

// Event is the wire message sent to every subscriber.
type Event struct {
	Type    string `json:"type"`
	OrderID int64  `json:"orderId"`
}

// Subscriber is one open push channel. Events arrive on Events() in the
// order they were broadcast; Done() closes when the hub drops the
// subscriber or Unsubscribe is called.
type Subscriber struct {
	ch   chan Event
	done chan struct{}
	once sync.Once
}

func (s *Subscriber) Events() <-chan Event  { return s.ch }
func (s *Subscriber) Done() <-chan struct{} { return s.done }

func (s *Subscriber) close() {
	s.once.Do(func() { close(s.done) })
}

// Hub owns the subscriber set. All mutation happens under mu so that
// teardown is safe to race with a concurrent broadcast.
type Hub struct {
	mu          sync.Mutex
	subs        map[*Subscriber]struct{}
	sendTimeout time.Duration

	// OnDrop, if set, is called after a subscriber is removed because a
	// send timed out. Used for metrics.
	OnDrop func()
}

const defaultSendTimeout = 2 * time.Second

func NewHub() *Hub {
	return &Hub{
		subs:        make(map[*Subscriber]struct{}),
		sendTimeout: defaultSendTimeout,
	}
}

// Subscribe registers a new push channel and returns its handle.
func (h *Hub) Subscribe() *Subscriber {
	s := &Subscriber{
		ch:   make(chan Event, 16),
		done: make(chan struct{}),
	}
	h.mu.Lock()
	h.subs[s] = struct{}{}
	h.mu.Unlock()
	return s
}

// Unsubscribe removes the handle. Safe to call more than once and safe to
// race with Broadcast; the event channel is never closed so an in-flight
// send cannot panic on a stale handle.
func (h *Hub) Unsubscribe(s *Subscriber) {
	h.mu.Lock()
	delete(h.subs, s)
	h.mu.Unlock()
	s.close()
}

// Count returns the number of live subscribers.
func (h *Hub) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// Broadcast delivers ev to every currently-registered subscriber. A slow or
// dead peer is dropped after sendTimeout so it can never stall delivery to
// the others.
func (h *Hub) Broadcast(ev Event) {
	h.mu.Lock()
	targets := make([]*Subscriber, 0, len(h.subs))
	for s := range h.subs {
		targets = append(targets, s)
	}
	h.mu.Unlock()

	for _, s := range targets {
		select {
		case s.ch <- ev:
		case <-s.done:
		case <-time.After(h.sendTimeout):
			slog.Warn("dropping slow kitchen subscriber", "event", ev.Type, "orderId", ev.OrderID)
			h.Unsubscribe(s)
			if h.OnDrop != nil {
				h.OnDrop()
			}
		}
	}
}
