package hold

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/kirinyoku/seatres/internal/domain"
	"github.com/kirinyoku/seatres/internal/events"
	"github.com/kirinyoku/seatres/internal/repository"
	"github.com/kirinyoku/seatres/internal/service/notify"
	"github.com/kirinyoku/seatres/internal/uow"
)

const DefaultTTL = 5 * time.Minute

type Config struct {
	DefaultTTL  time.Duration
	MinHoldTTL  time.Duration
	MaxHoldTTL  time.Duration
	MaxAttempts int
	Now         func() time.Time
}

// Limiter is satisfied by both the redis sliding-window limiter and the
// in-process one.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, int64, time.Duration, error)
}

// Grant is a successful hold. Regranted is set when the caller already
// held the seat; Expiry is then the original one.
type Grant struct {
	Seat      domain.Seat
	Expiry    time.Time
	Regranted bool
}

type Service struct {
	store   repository.Store
	uow     *uow.UoW
	notify  *notify.Notifier
	limiter Limiter
	logger  *slog.Logger
	cfg     Config
}

// New builds the hold manager. limiter may be nil.
func New(
	store repository.Store,
	n *notify.Notifier,
	limiter Limiter,
	logger *slog.Logger,
	cfg Config,
) *Service {
	if cfg.DefaultTTL <= 0 {
		cfg.DefaultTTL = DefaultTTL
	}

	if cfg.MinHoldTTL <= 0 {
		cfg.MinHoldTTL = 15 * time.Second
	}

	if cfg.MaxHoldTTL <= 0 || cfg.MaxHoldTTL < cfg.MinHoldTTL {
		cfg.MaxHoldTTL = max(DefaultTTL, cfg.MinHoldTTL)
	}

	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}

	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	return &Service{
		store:   store,
		uow:     uow.NewUoW(store),
		notify:  n,
		limiter: limiter,
		logger:  logger,
		cfg:     cfg,
	}
}

// RequestHold places a time-boxed hold on one seat for holder.
//
// A hold that has lapsed counts as free even though its row still says
// held. Asking again for a seat the caller already holds succeeds without
// extending the hold.
//
// Parameters:
//   - ctx: request-scoped context.
//   - group: theater and showtime of the seat.
//   - label: seat label such as "A1".
//   - holder: identity of the caller.
//   - ttl: requested hold length; zero means the configured default.
//
// Returns:
//   - Grant: the held seat and its expiry.
//   - error: hold.ErrSeatNotFound if the group has no such seat.
//   - error: hold.ErrHeldByAnother if another holder has a live hold.
//   - error: hold.ErrAlreadyReserved if the seat is booked.
//   - error: hold.ErrRateLimited if the holder is over the request limit.
//   - error: hold.ErrContended if every attempt lost a race.
func (s *Service) RequestHold(
	ctx context.Context,
	group domain.GroupID,
	label, holder string,
	ttl time.Duration,
) (Grant, error) {
	const op = "service.hold.RequestHold"

	if holder == "" {
		return Grant{}, fmt.Errorf("%s:%w", op, ErrNoHolder)
	}

	if !domain.ValidLabel(label) {
		return Grant{}, fmt.Errorf("%s:%w", op, domain.ErrInvalidLabel)
	}

	ttl = s.clampTTL(ttl)

	if s.limiter != nil {
		ok, _, retry, err := s.limiter.Allow(ctx, holder)
		if err != nil {
			return Grant{}, fmt.Errorf("%s:%w", op, err)
		}
		if !ok {
			s.logger.Debug("hold rate limited", "op", op, "holder", holder, "retry_in", retry)
			return Grant{}, fmt.Errorf("%s:%w", op, ErrRateLimited)
		}
	}

	for attempt := 1; attempt <= s.cfg.MaxAttempts; attempt++ {
		grant, err := s.tryHold(ctx, group, label, holder, ttl)
		if err == nil {
			return grant, nil
		}

		if errors.Is(err, repository.ErrConflict) || errors.Is(err, repository.ErrTxAborted) {
			s.logger.Debug("hold attempt lost a race",
				"op", op, "group", group.String(), "label", label, "attempt", attempt)
			continue
		}

		if errors.Is(err, ErrHeldByAnother) || errors.Is(err, ErrAlreadyReserved) {
			s.logger.Debug("hold denied",
				"op", op, "group", group.String(), "label", label, "holder", holder, "reason", domain.Message(err))
		}

		return Grant{}, fmt.Errorf("%s:%w", op, err)
	}

	s.logger.Warn("hold gave up after repeated conflicts",
		"op", op, "group", group.String(), "label", label)

	return Grant{}, fmt.Errorf("%s:%w", op, ErrContended)
}

func (s *Service) tryHold(
	ctx context.Context,
	group domain.GroupID,
	label, holder string,
	ttl time.Duration,
) (Grant, error) {
	var grant Grant

	err := s.uow.Do(ctx, func(
		ctx context.Context,
		tx repository.Tx,
		after func(uow.AfterCommit),
	) error {
		seat, err := tx.Seats().Get(ctx, group, label)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrSeatNotFound
			}
			return err
		}

		now := s.cfg.Now()

		switch seat.EffectiveStatus(now) {
		case domain.SeatBooked:
			return ErrAlreadyReserved

		case domain.SeatHeld:
			if seat.Holder != holder {
				return ErrHeldByAnother
			}
			grant = Grant{Seat: *seat, Expiry: *seat.HoldExpiry, Regranted: true}

		default:
			next, err := tx.Seats().CompareAndSwapStatus(ctx, *seat, domain.HeldBy(holder, now.Add(ttl)))
			if err != nil {
				return err
			}
			grant = Grant{Seat: *next, Expiry: *next.HoldExpiry}
		}

		held := grant.Seat
		after(func(ctx context.Context) {
			s.notify.Emit(ctx, group, events.Held(held))
		})

		return nil
	})

	return grant, err
}

// ReleaseHold gives up holder's hold on a seat.
//
// Releasing a seat the caller does not hold, or that does not exist, is a
// no-op and publishes nothing.
//
// Returns:
//   - bool: whether a hold was actually released.
//   - error: only store failures.
func (s *Service) ReleaseHold(
	ctx context.Context,
	group domain.GroupID,
	label, holder string,
) (bool, error) {
	const op = "service.hold.ReleaseHold"

	if holder == "" || !domain.ValidLabel(label) {
		return false, nil
	}

	var released bool

	err := s.uow.Do(ctx, func(
		ctx context.Context,
		tx repository.Tx,
		after func(uow.AfterCommit),
	) error {
		released = false

		seat, err := tx.Seats().Get(ctx, group, label)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil
			}
			return err
		}

		if seat.Status != domain.SeatHeld || seat.Holder != holder {
			return nil
		}

		next, err := tx.Seats().CompareAndSwapStatus(ctx, *seat, domain.Available())
		if err != nil {
			return err
		}

		released = true
		after(func(ctx context.Context) {
			s.notify.Emit(ctx, group, events.Released(*next))
		})

		return nil
	})
	if err != nil {
		if errors.Is(err, repository.ErrConflict) || errors.Is(err, repository.ErrTxAborted) {
			// someone else moved the seat first; the caller no longer holds it
			return false, nil
		}
		return false, fmt.Errorf("%s:%w", op, err)
	}

	return released, nil
}

func (s *Service) clampTTL(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		ttl = s.cfg.DefaultTTL
	}

	if ttl < s.cfg.MinHoldTTL {
		return s.cfg.MinHoldTTL
	}

	if ttl > s.cfg.MaxHoldTTL {
		return s.cfg.MaxHoldTTL
	}

	return ttl
}
