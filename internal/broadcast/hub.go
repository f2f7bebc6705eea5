package broadcast

import (
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Event is one change notification delivered to subscribers. Delivery is
// fire-and-forget, at most once per user-facing event.
type Event struct {
	Type     string `json:"type"`
	SystemID string `json:"system_id"`
}

const EventSignaturesChanged = "signatures_changed"

// Hub fans change notifications out to subscribers. Slow subscribers are
// dropped-on, never blocked on.
type Hub struct {
	Logger *zap.Logger

	mu            sync.RWMutex
	subs          map[string]chan Event
	droppedFanout uint64
}

func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		Logger: logger,
		subs:   map[string]chan Event{},
	}
}

// Subscribe registers a new subscriber and returns its id and channel. The
// channel is closed on Unsubscribe.
func (h *Hub) Subscribe(buf int) (string, <-chan Event) {
	if buf <= 0 {
		buf = 16
	}
	id := uuid.NewString()
	ch := make(chan Event, buf)
	h.mu.Lock()
	h.subs[id] = ch
	h.mu.Unlock()
	return id, ch
}

func (h *Hub) Unsubscribe(id string) {
	h.mu.Lock()
	ch, ok := h.subs[id]
	if ok {
		delete(h.subs, id)
	}
	h.mu.Unlock()
	if ok {
		close(ch)
	}
}

// NotifySignaturesChanged tells every subscriber that a system's signature
// set changed.
func (h *Hub) NotifySignaturesChanged(systemID string) {
	if h == nil || systemID == "" {
		return
	}
	h.publish(Event{Type: EventSignaturesChanged, SystemID: systemID})
}

func (h *Hub) publish(ev Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, ch := range h.subs {
		select {
		case ch <- ev:
		default:
			// Drop when subscriber is slow; hub must not block.
			atomic.AddUint64(&h.droppedFanout, 1)
		}
	}
	if h.Logger != nil {
		h.Logger.Debug("broadcast",
			zap.String("type", ev.Type),
			zap.String("system_id", ev.SystemID))
	}
}

// Dropped returns how many events were discarded on slow subscribers.
func (h *Hub) Dropped() uint64 {
	return atomic.LoadUint64(&h.droppedFanout)
}

// SubscriberCount returns the current number of subscribers.
func (h *Hub) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}
