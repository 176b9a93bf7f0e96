// Package queue ships booking audit records to RabbitMQ and consumes them
// back into the structured log.
package queue

import (
	"context"
	"time"

	"github.com/google/uuid"
)

const DefaultQueue = "booking.events"

type Action string

const (
	ActionConfirmed Action = "booking_confirmed"
	ActionCancelled Action = "booking_cancelled"
)

// AuditRecord describes one committed change to the bookings of a holder.
type AuditRecord struct {
	Action     Action      `json:"action"`
	Holder     string      `json:"holder"`
	TheaterID  int64       `json:"theater_id"`
	Showtime   string      `json:"showtime"`
	BookingIDs []uuid.UUID `json:"booking_ids"`
	Labels     []string    `json:"labels"`
	At         time.Time   `json:"at"`
}

// Auditor records committed booking changes. Failures are the caller's to
// log; they never undo the change.
type Auditor interface {
	Audit(ctx context.Context, rec AuditRecord) error
}
