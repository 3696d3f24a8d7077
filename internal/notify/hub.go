// Package notify fans out row-change events from Postgres to in-process
// subscribers. A Listener turns LISTEN/NOTIFY payloads into Events and a
// Hub delivers them to every interested Subscription.
package notify

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
)

// Tables that emit change events.
const (
	TablePosts      = "blog_posts"
	TableCategories = "categories"
)

// Change operations. OpResync is synthesised after the listener
// reconnects, since changes made while it was down were not observed.
const (
	OpInsert = "INSERT"
	OpUpdate = "UPDATE"
	OpDelete = "DELETE"
	OpResync = "RESYNC"
)

// Event describes one row change.
type Event struct {
	Table string `json:"table"`
	Op    string `json:"op"`
	ID    int64  `json:"id"`
}

// ParseEvent decodes a notification payload.
func ParseEvent(payload string) (Event, error) {
	var e Event
	if err := json.Unmarshal([]byte(payload), &e); err != nil {
		return Event{}, fmt.Errorf("parse event: %w", err)
	}
	if e.Table == "" || e.Op == "" {
		return Event{}, fmt.Errorf("parse event: missing table or op in %q", payload)
	}
	return e, nil
}

// Hub delivers events to subscribers. Delivery never blocks the
// publisher: a subscriber whose buffer is full misses the event.
type Hub struct {
	mu     sync.RWMutex
	subs   map[*Subscription]struct{}
	buffer int
}

// NewHub creates a hub whose subscriptions buffer up to buffer events.
func NewHub(buffer int) *Hub {
	if buffer < 1 {
		buffer = 1
	}
	return &Hub{subs: make(map[*Subscription]struct{}), buffer: buffer}
}

// Subscription receives events for a set of tables on C until Close.
type Subscription struct {
	C <-chan Event

	ch     chan Event
	hub    *Hub
	tables map[string]bool
	once   sync.Once
}

// Subscribe registers interest in the given tables; none means all.
// Resync events reach every subscription.
func (h *Hub) Subscribe(tables ...string) *Subscription {
	ch := make(chan Event, h.buffer)
	s := &Subscription{C: ch, ch: ch, hub: h}
	if len(tables) > 0 {
		s.tables = make(map[string]bool, len(tables))
		for _, t := range tables {
			s.tables[t] = true
		}
	}

	h.mu.Lock()
	h.subs[s] = struct{}{}
	h.mu.Unlock()
	return s
}

// Close unregisters the subscription and closes C. It is safe to call
// more than once.
func (s *Subscription) Close() {
	s.once.Do(func() {
		s.hub.mu.Lock()
		delete(s.hub.subs, s)
		s.hub.mu.Unlock()
		close(s.ch)
	})
}

func (s *Subscription) wants(e Event) bool {
	return s.tables == nil || e.Op == OpResync || s.tables[e.Table]
}

// Publish delivers e to every matching subscription.
func (h *Hub) Publish(e Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for s := range h.subs {
		if !s.wants(e) {
			continue
		}
		select {
		case s.ch <- e:
		default:
			slog.Debug("notify: subscriber lagging, event dropped", "table", e.Table, "op", e.Op, "id", e.ID)
		}
	}
}

// Len returns the number of open subscriptions.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}
