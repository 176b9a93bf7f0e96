package cancellation

import "github.com/kirinyoku/seatres/internal/domain"

var (
	ErrBookingNotFound = domain.NewError(domain.KindNotFound, "Booking not found")
	ErrUnauthorized    = domain.NewError(domain.KindUnauthorized, "Unauthorized to cancel this booking")
	ErrTxAborted       = domain.NewError(domain.KindTransactionAborted, "Cancellation failed, please try again")
)
