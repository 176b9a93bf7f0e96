package query

import (
	"context"
	"fmt"
	"time"

	"github.com/kirinyoku/seatres/internal/domain"
	"github.com/kirinyoku/seatres/internal/repository"
)

type Config struct {
	SummaryTTL time.Duration
	Now        func() time.Time
}

// SummaryCache is the read-through cache for group summaries.
type SummaryCache interface {
	GroupSummary(
		ctx context.Context,
		group domain.GroupID,
		ttl time.Duration,
		load func(ctx context.Context) (domain.GroupSummary, error),
	) (domain.GroupSummary, error)
}

// GroupSeats is the state of a group as a client should render it.
type GroupSeats struct {
	Group    domain.GroupID           `json:"group"`
	Seats    []domain.Seat            `json:"seats"`
	Bookings []domain.BookingWithSeat `json:"bookings"`
}

type Service struct {
	store repository.Store
	cache SummaryCache
	cfg   Config
}

// New builds the read side. cache may be nil.
func New(store repository.Store, cache SummaryCache, cfg Config) *Service {
	if cfg.SummaryTTL <= 0 {
		// lapsed holds emit nothing, so cached counts may only lag briefly
		cfg.SummaryTTL = 5 * time.Second
	}

	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	return &Service{
		store: store,
		cache: cache,
		cfg:   cfg,
	}
}

// GetSeats lists the seats of a group in label order together with its
// confirmed bookings. Lapsed holds are shown as available.
//
// Parameters:
//   - ctx: request-scoped context.
//   - group: theater and showtime to list.
//
// Returns:
//   - GroupSeats: seats and bookings of the group.
//   - error: query.ErrGroupNotFound if the group has no seats.
func (s *Service) GetSeats(ctx context.Context, group domain.GroupID) (GroupSeats, error) {
	const op = "service.query.GetSeats"

	seats, err := s.store.Seats().List(ctx, group)
	if err != nil {
		return GroupSeats{}, fmt.Errorf("%s:%w", op, err)
	}

	if len(seats) == 0 {
		return GroupSeats{}, fmt.Errorf("%s:%w", op, ErrGroupNotFound)
	}

	now := s.cfg.Now()
	for i := range seats {
		seats[i] = seats[i].Effective(now)
	}

	bookings, err := s.store.Bookings().ListConfirmedByGroup(ctx, group)
	if err != nil {
		return GroupSeats{}, fmt.Errorf("%s:%w", op, err)
	}

	if bookings == nil {
		bookings = []domain.BookingWithSeat{}
	}

	return GroupSeats{Group: group, Seats: seats, Bookings: bookings}, nil
}

// Summary counts the seats of a group by displayed status.
func (s *Service) Summary(ctx context.Context, group domain.GroupID) (domain.GroupSummary, error) {
	const op = "service.query.Summary"

	load := func(ctx context.Context) (domain.GroupSummary, error) {
		seats, err := s.store.Seats().List(ctx, group)
		if err != nil {
			return domain.GroupSummary{}, err
		}
		if len(seats) == 0 {
			return domain.GroupSummary{}, ErrGroupNotFound
		}
		return domain.Summarize(seats, s.cfg.Now()), nil
	}

	var (
		gs  domain.GroupSummary
		err error
	)
	if s.cache != nil {
		gs, err = s.cache.GroupSummary(ctx, group, s.cfg.SummaryTTL, load)
	} else {
		gs, err = load(ctx)
	}
	if err != nil {
		return domain.GroupSummary{}, fmt.Errorf("%s:%w", op, err)
	}

	return gs, nil
}

// MyBookings lists holder's confirmed bookings, newest first.
func (s *Service) MyBookings(ctx context.Context, holder string) ([]domain.BookingWithSeat, error) {
	const op = "service.query.MyBookings"

	out, err := s.store.Bookings().ListConfirmedByHolder(ctx, holder)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	if out == nil {
		out = []domain.BookingWithSeat{}
	}

	return out, nil
}
