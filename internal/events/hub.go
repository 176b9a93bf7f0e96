package events

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/kirinyoku/seatres/internal/domain"
)

const defaultBuffer = 64

// Hub fans events out to in-process subscribers of a group. A subscriber
// that is not keeping up loses events rather than slowing the publisher.
// Seat events arriving after a newer version of the same seat are dropped,
// so observers never move a seat back to an older state.
type Hub struct {
	mu     sync.RWMutex
	subs   map[domain.GroupID]map[*Subscription]struct{}
	latest map[uuid.UUID]int64
	buffer int
	logger *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		subs:   make(map[domain.GroupID]map[*Subscription]struct{}),
		latest: make(map[uuid.UUID]int64),
		buffer: defaultBuffer,
		logger: logger,
	}
}

type Subscription struct {
	C     <-chan Event
	ch    chan Event
	group domain.GroupID
	hub   *Hub
	once  sync.Once
}

// Subscribe registers an observer of group. Close must be called when the
// observer goes away.
func (h *Hub) Subscribe(group domain.GroupID) *Subscription {
	ch := make(chan Event, h.buffer)
	sub := &Subscription{C: ch, ch: ch, group: group, hub: h}

	h.mu.Lock()
	defer h.mu.Unlock()

	set, ok := h.subs[group]
	if !ok {
		set = make(map[*Subscription]struct{})
		h.subs[group] = set
	}
	set[sub] = struct{}{}

	return sub
}

func (s *Subscription) Close() {
	s.once.Do(func() {
		s.hub.mu.Lock()
		defer s.hub.mu.Unlock()

		if set, ok := s.hub.subs[s.group]; ok {
			delete(set, s)
			if len(set) == 0 {
				delete(s.hub.subs, s.group)
			}
		}
		close(s.ch)
	})
}

// Publish implements Publisher.
func (h *Hub) Publish(_ context.Context, group domain.GroupID, ev Event) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if ev.SeatID != nil && ev.Version > 0 {
		if ev.Stale(h.latest[*ev.SeatID]) {
			h.logger.Debug("stale seat event dropped",
				"group", group.String(), "type", string(ev.Type), "label", ev.Label, "version", ev.Version)
			return nil
		}
		h.latest[*ev.SeatID] = ev.Version
	}

	for sub := range h.subs[group] {
		select {
		case sub.ch <- ev:
		default:
			h.logger.Warn("observer too slow, event dropped",
				"group", group.String(), "type", string(ev.Type))
		}
	}

	return nil
}

// Observers returns the number of subscribers of group.
func (h *Hub) Observers(group domain.GroupID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[group])
}
