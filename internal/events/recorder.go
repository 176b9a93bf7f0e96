package events

import (
	"context"
	"sync"

	"github.com/kirinyoku/seatres/internal/domain"
)

// Recorder is a Publisher that keeps everything published to it.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) Publish(_ context.Context, group domain.GroupID, ev Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	ev.Group = group
	r.events = append(r.events, ev)

	return nil
}

func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// OfType returns the recorded events of type t in publication order.
func (r *Recorder) OfType(t Type) []Event {
	var out []Event
	for _, ev := range r.Events() {
		if ev.Type == t {
			out = append(out, ev)
		}
	}
	return out
}

func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}
