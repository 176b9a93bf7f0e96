package httpgin

import (
	"time"

	"github.com/google/uuid"
	"github.com/kirinyoku/seatres/internal/domain"
	"github.com/kirinyoku/seatres/internal/events"
)

type HoldRequest struct {
	Label  string `json:"label" binding:"required"`
	TTLSec int    `json:"ttl_sec" binding:"gte=0"`
}

type HoldResponse struct {
	SeatID    uuid.UUID `json:"resource_id"`
	Label     string    `json:"label"`
	Holder    string    `json:"holder"`
	Expiry    time.Time `json:"expiry"`
	Regranted bool      `json:"regranted"`
}

type BookRequest struct {
	Labels []string `json:"labels" binding:"required,min=1,dive,required"`
}

type BookResponse struct {
	Bookings []domain.BookingWithSeat `json:"bookings"`
}

type BookingsResponse struct {
	Bookings []domain.BookingWithSeat `json:"bookings"`
}

// ErrorResponse is the targeted error event sent to the requesting client
// only. It is never broadcast.
type ErrorResponse struct {
	Type    events.Type `json:"type" example:"error"`
	Message string      `json:"message"`
}

func errorBody(msg string) ErrorResponse {
	ev := events.Failed(msg)
	return ErrorResponse{Type: ev.Type, Message: ev.Message}
}
