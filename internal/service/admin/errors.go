package admin

import "errors"

var (
	ErrNoInventory = errors.New("inventory needs at least one theater, showtime, row and column")
	ErrGridTooWide = errors.New("a grid has at most 26 rows")
	ErrEmptyHolder = errors.New("holder must not be empty")
)
