package cancellation

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

// Cancellation is the outcome of a successful cancel. Ack is sent only to
// the requester.
type Cancellation struct {
	Booking domain.BookingWithSeat
	Ack     events.Event
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

// Cancel cancels holder's booking and frees its seat in one transaction.
// The booking row is kept with status cancelled.
//
// Parameters:
//   - ctx: request-scoped context.
//   - bookingID: the booking to cancel.
//   - holder: identity of the caller; must own the booking.
//
// Returns:
//   - Cancellation: the cancelled booking and the acknowledgement for the caller.
//   - error: cancellation.ErrBookingNotFound if there is no confirmed booking with that id.
//   - error: cancellation.ErrUnauthorized if the booking belongs to someone else.
//   - error: cancellation.ErrTxAborted if the store kept refusing the commit.
func (s *Service) Cancel(ctx context.Context, bookingID uuid.UUID, holder string) (Cancellation, error) {
	const op = "service.cancellation.Cancel"

	for attempt := 1; attempt <= s.cfg.MaxAttempts; attempt++ {
		c, err := s.cancel(ctx, bookingID, holder)
		if err == nil {
			return c, nil
		}

		if errors.Is(err, repository.ErrConflict) || errors.Is(err, repository.ErrTxAborted) {
			s.logger.Warn("cancellation transaction aborted",
				"op", op, "booking_id", bookingID, "attempt", attempt, "error", err)
			continue
		}

		if errors.Is(err, ErrUnauthorized) {
			s.logger.Debug("cancellation refused", "op", op, "booking_id", bookingID, "holder", holder)
		}

		return Cancellation{}, fmt.Errorf("%s:%w", op, err)
	}

	return Cancellation{}, fmt.Errorf("%s:%w", op, ErrTxAborted)
}

func (s *Service) cancel(ctx context.Context, bookingID uuid.UUID, holder string) (Cancellation, error) {
	var c Cancellation

	err := s.uow.Do(ctx, func(
		ctx context.Context,
		tx repository.Tx,
		after func(uow.AfterCommit),
	) error {
		b, err := tx.Bookings().Get(ctx, bookingID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrBookingNotFound
			}
			return err
		}

		if b.Status != domain.BookingConfirmed {
			return ErrBookingNotFound
		}

		if b.Holder != holder {
			return ErrUnauthorized
		}

		seat, err := tx.Seats().GetByID(ctx, b.SeatID)
		if err != nil {
			return err
		}

		if err := tx.Bookings().MarkCancelled(ctx, bookingID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrBookingNotFound
			}
			return err
		}

		var broadcast []events.Event
		if seat.Status == domain.SeatBooked {
			next, err := tx.Seats().CompareAndSwapStatus(ctx, *seat, domain.Available())
			if err != nil {
				return err
			}
			broadcast = append(broadcast, events.Released(*next))
		} else {
			s.logger.Warn("cancelled booking whose seat was not booked",
				"booking_id", bookingID, "seat_id", seat.ID, "status", string(seat.Status))
		}

		b.Status = domain.BookingCancelled
		c = Cancellation{Booking: *b, Ack: events.Cancelled(b.Group, b.ID)}

		rec := queue.AuditRecord{
			Action:     queue.ActionCancelled,
			Holder:     holder,
			TheaterID:  b.Group.TheaterID,
			Showtime:   b.Group.Showtime,
			BookingIDs: []uuid.UUID{b.ID},
			Labels:     []string{b.Label},
			At:         s.cfg.Now().UTC(),
		}
		after(func(ctx context.Context) {
			if len(broadcast) > 0 {
				s.notify.Emit(ctx, b.Group, broadcast...)
			}
			s.notify.Audit(ctx, rec)
		})

		return nil
	})

	return c, err
}
