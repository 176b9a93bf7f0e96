package booking

import "github.com/kirinyoku/seatres/internal/domain"

var (
	ErrUnknownHolder   = domain.NewError(domain.KindUnknownHolder, "User not found. Please login again.")
	ErrSeatNotFound    = domain.NewError(domain.KindNotFound, "Seat not found")
	ErrAlreadyReserved = domain.NewError(domain.KindConflict, "Seat already reserved")
	ErrTxAborted       = domain.NewError(domain.KindTransactionAborted, "Booking failed, please try again")
)
