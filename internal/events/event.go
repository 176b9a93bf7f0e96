// Package events defines the notifications fanned out to observers of a
// seat group and the publishers that deliver them.
//
// Delivery is at-most-once to observers connected at the time of
// publication. Nothing is queued or persisted; an observer that connects
// later must query the current state instead.
package events

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/kirinyoku/seatres/internal/domain"
)

type Type string

const (
	SeatHeld         Type = "seat_held"
	SeatReleased     Type = "seat_released"
	SeatBooked       Type = "seat_booked"
	BookingCancelled Type = "booking_cancelled"
	Error            Type = "error"
)

// Event is one state-change notification. Which optional fields are set
// depends on Type.
//
// Seat events carry the seat version written by the mutation. Events of one
// seat with a lower version than one already delivered are stale.
type Event struct {
	Type      Type           `json:"type"`
	Group     domain.GroupID `json:"group"`
	SeatID    *uuid.UUID     `json:"resource_id,omitempty"`
	Version   int64          `json:"version,omitempty"`
	Label     string         `json:"label,omitempty"`
	Holder    string         `json:"holder,omitempty"`
	Expiry    *time.Time     `json:"expiry,omitempty"`
	BookingID *uuid.UUID     `json:"booking_id,omitempty"`
	BookedAt  *time.Time     `json:"booked_at,omitempty"`
	Message   string         `json:"message,omitempty"`
}

// Stale reports whether ev is older than the last delivered version of its
// seat. Events without a seat version are never stale.
func (ev Event) Stale(last int64) bool {
	return ev.SeatID != nil && ev.Version > 0 && ev.Version < last
}

// Publisher delivers an event to every current observer of group.
type Publisher interface {
	Publish(ctx context.Context, group domain.GroupID, ev Event) error
}

func Held(s domain.Seat) Event {
	id := s.ID
	ev := Event{
		Type:    SeatHeld,
		Group:   s.Group,
		SeatID:  &id,
		Version: s.Version,
		Label:   s.Label,
		Holder:  s.Holder,
	}
	if s.HoldExpiry != nil {
		exp := *s.HoldExpiry
		ev.Expiry = &exp
	}
	return ev
}

func Released(s domain.Seat) Event {
	id := s.ID
	return Event{
		Type:    SeatReleased,
		Group:   s.Group,
		SeatID:  &id,
		Version: s.Version,
		Label:   s.Label,
	}
}

func Booked(s domain.Seat, b domain.Booking) Event {
	seatID, bookingID, at := s.ID, b.ID, b.BookedAt
	return Event{
		Type:      SeatBooked,
		Group:     s.Group,
		SeatID:    &seatID,
		Version:   s.Version,
		Label:     s.Label,
		Holder:    b.Holder,
		BookingID: &bookingID,
		BookedAt:  &at,
	}
}

func Cancelled(group domain.GroupID, bookingID uuid.UUID) Event {
	return Event{
		Type:      BookingCancelled,
		Group:     group,
		BookingID: &bookingID,
	}
}

func Failed(msg string) Event {
	return Event{Type: Error, Message: msg}
}
