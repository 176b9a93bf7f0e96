// Package memory is an in-process implementation of repository.Store.
//
// Transactions buffer their writes and remember the version of every seat
// they read. Commit re-checks those versions under the store lock and either
// applies all buffered writes or none of them, so a batch that raced with
// another writer is aborted instead of partially applied.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/kirinyoku/seatres/internal/domain"
	"github.com/kirinyoku/seatres/internal/repository"
)

type seatKey struct {
	group domain.GroupID
	label string
}

type Store struct {
	mu       sync.RWMutex
	seats    map[uuid.UUID]domain.Seat
	byKey    map[seatKey]uuid.UUID
	bookings map[uuid.UUID]domain.Booking
	holders  map[string]struct{}
}

func NewStore() *Store {
	return &Store{
		seats:    make(map[uuid.UUID]domain.Seat),
		byKey:    make(map[seatKey]uuid.UUID),
		bookings: make(map[uuid.UUID]domain.Booking),
		holders:  make(map[string]struct{}),
	}
}

func (s *Store) Seats() repository.SeatRepository       { return s.begin(true).Seats() }
func (s *Store) Bookings() repository.BookingRepository { return s.begin(true).Bookings() }
func (s *Store) Holders() repository.HolderRepository   { return s.begin(true).Holders() }

func (s *Store) RunTx(
	ctx context.Context,
	fn func(ctx context.Context, tx repository.Tx) error,
) (err error) {
	const op = "memory.Store.RunTx"

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s:%w", op, err)
	}

	t := s.begin(false)

	defer func() {
		if p := recover(); p != nil {
			t.reset()
			panic(p)
		}
	}()

	if err := fn(ctx, t); err != nil {
		t.reset()
		return err
	}

	if err := t.commit(); err != nil {
		return fmt.Errorf("%s:%w", op, err)
	}

	return nil
}

func (s *Store) begin(autocommit bool) *tx {
	t := &tx{s: s, autocommit: autocommit}
	t.reset()
	return t
}

type tx struct {
	s          *Store
	autocommit bool

	seatReads     map[uuid.UUID]int64
	seatWrites    map[uuid.UUID]domain.Seat
	newSeats      map[seatKey]domain.Seat
	bookingWrites map[uuid.UUID]domain.Booking
	holderWrites  map[string]struct{}
}

func (t *tx) Seats() repository.SeatRepository       { return &seatRepo{tx: t} }
func (t *tx) Bookings() repository.BookingRepository { return &bookingRepo{tx: t} }
func (t *tx) Holders() repository.HolderRepository   { return &holderRepo{tx: t} }

func (t *tx) reset() {
	t.seatReads = make(map[uuid.UUID]int64)
	t.seatWrites = make(map[uuid.UUID]domain.Seat)
	t.newSeats = make(map[seatKey]domain.Seat)
	t.bookingWrites = make(map[uuid.UUID]domain.Booking)
	t.holderWrites = make(map[string]struct{})
}

// wrote commits immediately when the tx is the store's autocommit handle.
func (t *tx) wrote() error {
	if !t.autocommit {
		return nil
	}
	return t.commit()
}

func (t *tx) commit() error {
	defer t.reset()

	t.s.mu.Lock()
	defer t.s.mu.Unlock()

	for id, v := range t.seatReads {
		if cur, ok := t.s.seats[id]; ok && cur.Version != v {
			return repository.ErrTxAborted
		}
	}

	for key, seat := range t.newSeats {
		if _, exists := t.s.byKey[key]; exists {
			continue
		}
		t.s.seats[seat.ID] = seat
		t.s.byKey[key] = seat.ID
	}

	for id, seat := range t.seatWrites {
		t.s.seats[id] = seat
	}

	for id, b := range t.bookingWrites {
		t.s.bookings[id] = b
	}

	for h := range t.holderWrites {
		t.s.holders[h] = struct{}{}
	}

	return nil
}

// seat returns the seat as seen by this transaction. When track is set the
// observed version is validated at commit.
func (t *tx) seat(id uuid.UUID, track bool) (domain.Seat, bool) {
	if s, ok := t.seatWrites[id]; ok {
		return s, true
	}

	for _, s := range t.newSeats {
		if s.ID == id {
			return s, true
		}
	}

	t.s.mu.RLock()
	s, ok := t.s.seats[id]
	t.s.mu.RUnlock()

	if ok && track {
		if _, seen := t.seatReads[id]; !seen {
			t.seatReads[id] = s.Version
		}
	}

	return s, ok
}

func (t *tx) seatIDByKey(key seatKey) (uuid.UUID, bool) {
	if s, ok := t.newSeats[key]; ok {
		return s.ID, true
	}

	t.s.mu.RLock()
	id, ok := t.s.byKey[key]
	t.s.mu.RUnlock()

	return id, ok
}

func (t *tx) booking(id uuid.UUID) (domain.Booking, bool) {
	if b, ok := t.bookingWrites[id]; ok {
		return b, true
	}

	t.s.mu.RLock()
	b, ok := t.s.bookings[id]
	t.s.mu.RUnlock()

	return b, ok
}

// bookings returns a merged snapshot of committed and buffered bookings.
func (t *tx) allBookings() []domain.Booking {
	t.s.mu.RLock()
	out := make([]domain.Booking, 0, len(t.s.bookings)+len(t.bookingWrites))
	for id, b := range t.s.bookings {
		if _, overridden := t.bookingWrites[id]; overridden {
			continue
		}
		out = append(out, b)
	}
	t.s.mu.RUnlock()

	for _, b := range t.bookingWrites {
		out = append(out, b)
	}

	return out
}
