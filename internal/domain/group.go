package domain

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
)

var (
	ErrInvalidTheater  = errors.New("invalid theater id")
	ErrInvalidShowtime = errors.New("unknown showtime")
)

// DefaultShowtimes is the fixed set of showtimes offered by every theater.
var DefaultShowtimes = []string{"10:00", "15:00", "20:00"}

// GroupID partitions seats and broadcasts by theater and showtime.
type GroupID struct {
	TheaterID int64  `json:"theater_id"`
	Showtime  string `json:"showtime"`
}

func (g GroupID) String() string {
	return fmt.Sprintf("%d/%s", g.TheaterID, g.Showtime)
}

// Showtimes is the enumerated set of showtimes a GroupID may carry.
type Showtimes []string

func (s Showtimes) Contains(showtime string) bool {
	return slices.Contains(s, showtime)
}

// Validate checks the shape of g against the configured showtimes.
func (s Showtimes) Validate(g GroupID) error {
	if g.TheaterID <= 0 {
		return ErrInvalidTheater
	}

	if !s.Contains(g.Showtime) {
		return fmt.Errorf("%w: %q", ErrInvalidShowtime, g.Showtime)
	}

	return nil
}

// ParseGroup builds a GroupID from its external string form and validates it.
func (s Showtimes) ParseGroup(theater, showtime string) (GroupID, error) {
	id, err := strconv.ParseInt(theater, 10, 64)
	if err != nil {
		return GroupID{}, ErrInvalidTheater
	}

	g := GroupID{TheaterID: id, Showtime: showtime}
	if err := s.Validate(g); err != nil {
		return GroupID{}, err
	}

	return g, nil
}
