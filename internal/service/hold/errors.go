package hold

import "github.com/kirinyoku/seatres/internal/domain"

var (
	ErrSeatNotFound    = domain.NewError(domain.KindNotFound, "Seat not found")
	ErrHeldByAnother   = domain.NewError(domain.KindConflict, "Seat is currently being held by someone else")
	ErrAlreadyReserved = domain.NewError(domain.KindConflict, "Seat already reserved")
	ErrRateLimited     = domain.NewError(domain.KindRateLimited, "Too many hold requests, try again later")
	ErrContended       = domain.NewError(domain.KindTransactionAborted, "Seat is busy, try again")
	ErrNoHolder        = domain.NewError(domain.KindUnknownHolder, "User not found. Please login again.")
)
