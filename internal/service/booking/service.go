package booking

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/kirinyoku/seatres/internal/domain"
	"github.com/kirinyoku/seatres/internal/events"
	"github.com/kirinyoku/seatres/internal/queue"
	"github.com/kirinyoku/seatres/internal/repository"
	"github.com/kirinyoku/seatres/internal/service/notify"
	"github.com/kirinyoku/seatres/internal/uow"
)

type Config struct {
	MaxAttempts int
	Now         func() time.Time
}

type Service struct {
	store  repository.Store
	uow    *uow.UoW
	notify *notify.Notifier
	logger *slog.Logger
	cfg    Config
}

func New(store repository.Store, n *notify.Notifier, logger *slog.Logger, cfg Config) *Service {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}

	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	return &Service{
		store:  store,
		uow:    uow.NewUoW(store),
		notify: n,
		logger: logger,
		cfg:    cfg,
	}
}

// Confirm books every label for holder in one transaction, or none of them.
//
// Labels are deduplicated and processed in ascending order. A seat may be
// available, held by holder, or held by someone whose hold has lapsed.
//
// Parameters:
//   - ctx: request-scoped context.
//   - group: theater and showtime of the seats.
//   - holder: identity of the caller.
//   - labels: seat labels to book.
//
// Returns:
//   - []domain.BookingWithSeat: the confirmed bookings in label order.
//   - error: booking.ErrUnknownHolder if holder is not registered.
//   - error: booking.ErrSeatNotFound if any label does not exist.
//   - error: booking.ErrAlreadyReserved if any seat is booked or held by another.
//   - error: booking.ErrTxAborted if the store kept refusing the commit.
func (s *Service) Confirm(
	ctx context.Context,
	group domain.GroupID,
	holder string,
	labels []string,
) ([]domain.BookingWithSeat, error) {
	const op = "service.booking.Confirm"

	labels, err := domain.NormalizeLabels(labels)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	if holder == "" {
		return nil, fmt.Errorf("%s:%w", op, ErrUnknownHolder)
	}

	known, err := s.store.Holders().Exists(ctx, holder)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}
	if !known {
		return nil, fmt.Errorf("%s:%w", op, ErrUnknownHolder)
	}

	for attempt := 1; attempt <= s.cfg.MaxAttempts; attempt++ {
		out, err := s.confirm(ctx, group, holder, labels)
		if err == nil {
			return out, nil
		}

		if errors.Is(err, repository.ErrConflict) || errors.Is(err, repository.ErrTxAborted) {
			s.logger.Warn("booking transaction aborted",
				"op", op, "group", group.String(), "holder", holder, "attempt", attempt, "error", err)
			continue
		}

		if errors.Is(err, ErrAlreadyReserved) || errors.Is(err, ErrSeatNotFound) {
			s.logger.Debug("booking rejected",
				"op", op, "group", group.String(), "holder", holder, "labels", labels, "reason", domain.Message(err))
		}

		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return nil, fmt.Errorf("%s:%w", op, ErrTxAborted)
}

func (s *Service) confirm(
	ctx context.Context,
	group domain.GroupID,
	holder string,
	labels []string,
) ([]domain.BookingWithSeat, error) {
	var out []domain.BookingWithSeat

	err := s.uow.Do(ctx, func(
		ctx context.Context,
		tx repository.Tx,
		after func(uow.AfterCommit),
	) error {
		out = make([]domain.BookingWithSeat, 0, len(labels))
		booked := make([]events.Event, 0, len(labels))
		now := s.cfg.Now().UTC()

		for _, label := range labels {
			seat, err := tx.Seats().Get(ctx, group, label)
			if err != nil {
				if errors.Is(err, repository.ErrNotFound) {
					return ErrSeatNotFound
				}
				return err
			}

			switch seat.EffectiveStatus(now) {
			case domain.SeatBooked:
				return ErrAlreadyReserved
			case domain.SeatHeld:
				if seat.Holder != holder {
					return ErrAlreadyReserved
				}
			}

			b := domain.Booking{
				ID:       uuid.New(),
				SeatID:   seat.ID,
				Holder:   holder,
				Status:   domain.BookingConfirmed,
				BookedAt: now,
			}
			if err := tx.Bookings().Create(ctx, b); err != nil {
				return err
			}

			next, err := tx.Seats().CompareAndSwapStatus(ctx, *seat, domain.BookedBy(holder))
			if err != nil {
				return err
			}

			out = append(out, domain.BookingWithSeat{Booking: b, Group: group, Label: label})
			booked = append(booked, events.Booked(*next, b))
		}

		rec := auditRecord(queue.ActionConfirmed, group, holder, out, now)
		after(func(ctx context.Context) {
			s.notify.Emit(ctx, group, booked...)
			s.notify.Audit(ctx, rec)
		})

		return nil
	})
	if err != nil {
		return nil, err
	}

	return out, nil
}

func auditRecord(
	action queue.Action,
	group domain.GroupID,
	holder string,
	bookings []domain.BookingWithSeat,
	at time.Time,
) queue.AuditRecord {
	rec := queue.AuditRecord{
		Action:    action,
		Holder:    holder,
		TheaterID: group.TheaterID,
		Showtime:  group.Showtime,
		At:        at,
	}
	for _, b := range bookings {
		rec.BookingIDs = append(rec.BookingIDs, b.ID)
		rec.Labels = append(rec.Labels, b.Label)
	}
	return rec
}
