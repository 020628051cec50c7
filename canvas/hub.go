// CLAUDE:SUMMARY Per-surface fan-out of update messages — bounded subscriber queues, drop-on-overflow, snapshot seeding.
package canvas

import (
	"log/slog"
	"sync"
)

// Hub fans update messages out to per-surface subscribers. Publishing never
// blocks: each subscriber has a bounded queue, and a subscriber that cannot
// keep up is dropped rather than allowed to stall the surface.
type Hub struct {
	logger *slog.Logger
	buffer int

	mu   sync.RWMutex
	subs map[string]map[*Subscription]struct{}
}

// HubOption customises a Hub.
type HubOption func(*Hub)

// WithHubLogger sets the hub's logger. Default: slog.Default().
func WithHubLogger(logger *slog.Logger) HubOption {
	return func(h *Hub) { h.logger = logger }
}

// WithSubscriberBuffer sets the per-subscriber queue depth. Default: 64.
func WithSubscriberBuffer(n int) HubOption {
	return func(h *Hub) {
		if n > 0 {
			h.buffer = n
		}
	}
}

// NewHub creates an empty hub.
func NewHub(opts ...HubOption) *Hub {
	h := &Hub{
		logger: slog.Default(),
		buffer: 64,
		subs:   make(map[string]map[*Subscription]struct{}),
	}
	for _, o := range opts {
		o(h)
	}
	return h
}

// Subscription is one receiver's view of a surface's update stream. The
// channel is closed when the subscriber is dropped, closes itself, or the
// surface is torn down.
type Subscription struct {
	surfaceID string
	hub       *Hub
	ch        chan UpdateMessage
	closed    bool // guarded by hub.mu
}

// Updates returns the message stream. The first message is always the
// snapshot the subscription was seeded with.
func (sub *Subscription) Updates() <-chan UpdateMessage { return sub.ch }

// SurfaceID returns the surface this subscription follows.
func (sub *Subscription) SurfaceID() string { return sub.surfaceID }

// Close detaches the subscription and closes its channel. Safe to call more
// than once; the surface itself is unaffected.
func (sub *Subscription) Close() { sub.hub.remove(sub) }

// Subscribe attaches a new subscriber seeded with snapshot as its first
// message. Callers serialize Subscribe against publishes for the same
// surface (Store.View does this), which is what guarantees the
// snapshot-then-updates ordering.
func (h *Hub) Subscribe(surfaceID string, snapshot UpdateMessage) *Subscription {
	sub := &Subscription{
		surfaceID: surfaceID,
		hub:       h,
		ch:        make(chan UpdateMessage, h.buffer),
	}
	sub.ch <- snapshot

	h.mu.Lock()
	set, ok := h.subs[surfaceID]
	if !ok {
		set = make(map[*Subscription]struct{})
		h.subs[surfaceID] = set
	}
	set[sub] = struct{}{}
	h.mu.Unlock()

	return sub
}

// Publish delivers msg to the surface's current subscribers. Subscribers
// with a full queue are disconnected.
func (h *Hub) Publish(surfaceID string, msg UpdateMessage) {
	var slow []*Subscription

	h.mu.RLock()
	for sub := range h.subs[surfaceID] {
		select {
		case sub.ch <- msg:
		default:
			slow = append(slow, sub)
		}
	}
	h.mu.RUnlock()

	for _, sub := range slow {
		h.logger.Warn("canvas: dropping slow subscriber", "surface_id", surfaceID, "version", msg.Version)
		h.remove(sub)
	}
}

// Teardown drops every subscriber of a surface, closing their channels.
// Called after the close message has been published.
func (h *Hub) Teardown(surfaceID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for sub := range h.subs[surfaceID] {
		if !sub.closed {
			sub.closed = true
			close(sub.ch)
		}
	}
	delete(h.subs, surfaceID)
}

// Count returns the number of live subscribers for a surface.
func (h *Hub) Count(surfaceID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[surfaceID])
}

func (h *Hub) remove(sub *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.subs[sub.surfaceID]
	if !ok {
		return
	}
	if _, ok := set[sub]; !ok {
		return
	}
	delete(set, sub)
	if len(set) == 0 {
		delete(h.subs, sub.surfaceID)
	}
	if !sub.closed {
		sub.closed = true
		close(sub.ch)
	}
}
