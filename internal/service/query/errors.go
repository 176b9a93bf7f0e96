package query

import "github.com/kirinyoku/seatres/internal/domain"

var ErrGroupNotFound = domain.NewError(domain.KindNotFound, "No seats for this theater and showtime")
