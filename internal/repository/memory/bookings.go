package memory

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/kirinyoku/seatres/internal/domain"
	"github.com/kirinyoku/seatres/internal/repository"
)

type bookingRepo struct {
	tx *tx
}

func (r *bookingRepo) Create(_ context.Context, b domain.Booking) error {
	const op = "memory.BookingRepo.Create"

	if _, exists := r.tx.booking(b.ID); exists {
		return fmt.Errorf("%s:%w", op, repository.ErrConflict)
	}

	if _, ok := r.tx.seat(b.SeatID, false); !ok {
		return fmt.Errorf("%s:%w", op, repository.ErrNotFound)
	}

	r.tx.bookingWrites[b.ID] = b

	if err := r.tx.wrote(); err != nil {
		return fmt.Errorf("%s:%w", op, err)
	}

	return nil
}

func (r *bookingRepo) Get(_ context.Context, id uuid.UUID) (*domain.BookingWithSeat, error) {
	const op = "memory.BookingRepo.Get"

	b, ok := r.tx.booking(id)
	if !ok {
		return nil, fmt.Errorf("%s:%w", op, repository.ErrNotFound)
	}

	bw, ok := r.withSeat(b)
	if !ok {
		return nil, fmt.Errorf("%s:%w", op, repository.ErrNotFound)
	}

	return &bw, nil
}

func (r *bookingRepo) MarkCancelled(_ context.Context, id uuid.UUID) error {
	const op = "memory.BookingRepo.MarkCancelled"

	b, ok := r.tx.booking(id)
	if !ok || b.Status != domain.BookingConfirmed {
		return fmt.Errorf("%s:%w", op, repository.ErrNotFound)
	}

	b.Status = domain.BookingCancelled
	r.tx.bookingWrites[id] = b

	if err := r.tx.wrote(); err != nil {
		return fmt.Errorf("%s:%w", op, err)
	}

	return nil
}

func (r *bookingRepo) ListConfirmedByHolder(_ context.Context, holder string) ([]domain.BookingWithSeat, error) {
	return r.list(func(bw domain.BookingWithSeat) bool {
		return bw.Holder == holder
	}), nil
}

func (r *bookingRepo) ListConfirmedByGroup(_ context.Context, group domain.GroupID) ([]domain.BookingWithSeat, error) {
	return r.list(func(bw domain.BookingWithSeat) bool {
		return bw.Group == group
	}), nil
}

func (r *bookingRepo) list(keep func(domain.BookingWithSeat) bool) []domain.BookingWithSeat {
	var out []domain.BookingWithSeat
	for _, b := range r.tx.allBookings() {
		if b.Status != domain.BookingConfirmed {
			continue
		}
		bw, ok := r.withSeat(b)
		if ok && keep(bw) {
			out = append(out, bw)
		}
	}

	// newest first; label breaks ties within one batch
	slices.SortFunc(out, func(a, b domain.BookingWithSeat) int {
		if c := b.BookedAt.Compare(a.BookedAt); c != 0 {
			return c
		}
		return strings.Compare(a.Label, b.Label)
	})

	return out
}

func (r *bookingRepo) withSeat(b domain.Booking) (domain.BookingWithSeat, bool) {
	s, ok := r.tx.seat(b.SeatID, false)
	if !ok {
		return domain.BookingWithSeat{}, false
	}
	return domain.BookingWithSeat{Booking: b, Group: s.Group, Label: s.Label}, true
}

type holderRepo struct {
	tx *tx
}

func (r *holderRepo) Exists(_ context.Context, holder string) (bool, error) {
	if _, ok := r.tx.holderWrites[holder]; ok {
		return true, nil
	}

	r.tx.s.mu.RLock()
	_, ok := r.tx.s.holders[holder]
	r.tx.s.mu.RUnlock()

	return ok, nil
}

func (r *holderRepo) Register(_ context.Context, holder string) error {
	const op = "memory.HolderRepo.Register"

	if holder == "" {
		return fmt.Errorf("%s: empty holder", op)
	}

	r.tx.holderWrites[holder] = struct{}{}

	if err := r.tx.wrote(); err != nil {
		return fmt.Errorf("%s:%w", op, err)
	}

	return nil
}
