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

type seatRepo struct {
	tx *tx
}

func (r *seatRepo) Get(ctx context.Context, group domain.GroupID, label string) (*domain.Seat, error) {
	const op = "memory.SeatRepo.Get"

	id, ok := r.tx.seatIDByKey(seatKey{group: group, label: label})
	if !ok {
		return nil, fmt.Errorf("%s:%w", op, repository.ErrNotFound)
	}

	return r.GetByID(ctx, id)
}

func (r *seatRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Seat, error) {
	const op = "memory.SeatRepo.GetByID"

	s, ok := r.tx.seat(id, true)
	if !ok {
		return nil, fmt.Errorf("%s:%w", op, repository.ErrNotFound)
	}

	return &s, nil
}

func (r *seatRepo) List(_ context.Context, group domain.GroupID) ([]domain.Seat, error) {
	r.tx.s.mu.RLock()
	ids := make([]uuid.UUID, 0, 100)
	for key, id := range r.tx.s.byKey {
		if key.group == group {
			ids = append(ids, id)
		}
	}
	var pending []domain.Seat
	for key, s := range r.tx.newSeats {
		if _, committed := r.tx.s.byKey[key]; key.group == group && !committed {
			pending = append(pending, s)
		}
	}
	r.tx.s.mu.RUnlock()

	out := make([]domain.Seat, 0, len(ids))
	for _, id := range ids {
		if s, ok := r.tx.seat(id, false); ok {
			out = append(out, s)
		}
	}

	out = append(out, pending...)

	slices.SortFunc(out, func(a, b domain.Seat) int {
		return strings.Compare(a.Label, b.Label)
	})

	return out, nil
}

func (r *seatRepo) CompareAndSwapStatus(
	_ context.Context,
	observed domain.Seat,
	next domain.SeatState,
) (*domain.Seat, error) {
	const op = "memory.SeatRepo.CompareAndSwapStatus"

	if err := next.Validate(); err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	cur, ok := r.tx.seat(observed.ID, true)
	if !ok {
		return nil, fmt.Errorf("%s:%w", op, repository.ErrNotFound)
	}

	if cur.Status != observed.Status || cur.Version != observed.Version {
		return nil, fmt.Errorf("%s:%w", op, repository.ErrConflict)
	}

	updated := cur.Apply(next)
	r.tx.seatWrites[updated.ID] = updated

	if err := r.tx.wrote(); err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return &updated, nil
}

func (r *seatRepo) Provision(_ context.Context, group domain.GroupID, labels []string) (int64, error) {
	const op = "memory.SeatRepo.Provision"

	var created int64
	for _, label := range labels {
		if !domain.ValidLabel(label) {
			return 0, fmt.Errorf("%s:%w", op, domain.ErrInvalidLabel)
		}

		key := seatKey{group: group, label: label}
		if _, exists := r.tx.seatIDByKey(key); exists {
			continue
		}

		r.tx.newSeats[key] = domain.Seat{
			ID:     uuid.New(),
			Group:  group,
			Label:  label,
			Status: domain.SeatAvailable,
		}
		created++
	}

	if err := r.tx.wrote(); err != nil {
		return 0, fmt.Errorf("%s:%w", op, err)
	}

	return created, nil
}
