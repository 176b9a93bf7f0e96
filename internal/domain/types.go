package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

type SeatStatus string

const (
	SeatAvailable SeatStatus = "available"
	SeatHeld      SeatStatus = "held"
	SeatBooked    SeatStatus = "booked"
)

func (s SeatStatus) Valid() bool {
	switch s {
	case SeatAvailable, SeatHeld, SeatBooked:
		return true
	}
	return false
}

type BookingStatus string

const (
	BookingConfirmed BookingStatus = "confirmed"
	BookingCancelled BookingStatus = "cancelled"
)

var ErrInvalidSeatState = errors.New("holder and hold expiry must be set only while held")

// Seat is one bookable seat of a group. Only Status, Holder, HoldExpiry and
// Version ever change after provisioning.
type Seat struct {
	ID         uuid.UUID  `json:"id"`
	Group      GroupID    `json:"group"`
	Label      string     `json:"label"`
	Status     SeatStatus `json:"status"`
	Holder     string     `json:"holder,omitempty"`
	HoldExpiry *time.Time `json:"hold_expiry,omitempty"`
	Version    int64      `json:"-"`
}

// SeatState is the mutable part of a Seat, used as the target of a
// compare-and-swap.
type SeatState struct {
	Status     SeatStatus
	Holder     string
	HoldExpiry *time.Time
}

func Available() SeatState {
	return SeatState{Status: SeatAvailable}
}

func HeldBy(holder string, expiry time.Time) SeatState {
	return SeatState{Status: SeatHeld, Holder: holder, HoldExpiry: &expiry}
}

func BookedBy(holder string) SeatState {
	return SeatState{Status: SeatBooked, Holder: holder}
}

// Validate enforces that holder and expiry are both present exactly when the
// state is held.
func (st SeatState) Validate() error {
	if !st.Status.Valid() {
		return ErrInvalidSeatState
	}

	held := st.Status == SeatHeld
	if held != (st.HoldExpiry != nil) {
		return ErrInvalidSeatState
	}
	if held && st.Holder == "" {
		return ErrInvalidSeatState
	}

	return nil
}

func (s Seat) State() SeatState {
	return SeatState{Status: s.Status, Holder: s.Holder, HoldExpiry: s.HoldExpiry}
}

// Apply returns a copy of s carrying st and the next version.
func (s Seat) Apply(st SeatState) Seat {
	s.Status = st.Status
	s.Holder = st.Holder
	s.HoldExpiry = nil
	if st.HoldExpiry != nil {
		exp := *st.HoldExpiry
		s.HoldExpiry = &exp
	}
	s.Version++
	return s
}

// HoldExpired reports whether s is held with an expiry at or before now.
func (s Seat) HoldExpired(now time.Time) bool {
	return s.Status == SeatHeld && s.HoldExpiry != nil && !s.HoldExpiry.After(now)
}

// EffectiveStatus is the status a reader should display: a hold that has
// lapsed counts as available even if no mutation has touched the row yet.
func (s Seat) EffectiveStatus(now time.Time) SeatStatus {
	if s.HoldExpired(now) {
		return SeatAvailable
	}
	return s.Status
}

// Effective returns the seat as it should be displayed at now.
func (s Seat) Effective(now time.Time) Seat {
	if s.HoldExpired(now) {
		s.Status = SeatAvailable
		s.Holder = ""
		s.HoldExpiry = nil
	}
	return s
}

type Booking struct {
	ID       uuid.UUID     `json:"id"`
	SeatID   uuid.UUID     `json:"seat_id"`
	Holder   string        `json:"holder"`
	Status   BookingStatus `json:"status"`
	BookedAt time.Time     `json:"booked_at"`
}

type BookingWithSeat struct {
	Booking
	Group GroupID `json:"group"`
	Label string  `json:"label"`
}

// GroupSummary counts seats of a group by effective status.
type GroupSummary struct {
	Available int64 `json:"available"`
	Held      int64 `json:"held"`
	Booked    int64 `json:"booked"`
	Total     int64 `json:"total"`
}

func Summarize(seats []Seat, now time.Time) GroupSummary {
	var gs GroupSummary
	for _, s := range seats {
		switch s.EffectiveStatus(now) {
		case SeatAvailable:
			gs.Available++
		case SeatHeld:
			gs.Held++
		case SeatBooked:
			gs.Booked++
		}
	}
	gs.Total = gs.Available + gs.Held + gs.Booked
	return gs
}
