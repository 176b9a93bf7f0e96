package cancellation_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/kirinyoku/seatres/internal/domain"
	"github.com/kirinyoku/seatres/internal/events"
	"github.com/kirinyoku/seatres/internal/queue"
	"github.com/kirinyoku/seatres/internal/repository"
	"github.com/kirinyoku/seatres/internal/service/booking"
	"github.com/kirinyoku/seatres/internal/service/cancellation"
	"github.com/kirinyoku/seatres/internal/service/servicetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) (*servicetest.Env, *cancellation.Service, domain.BookingWithSeat) {
	t.Helper()

	env := servicetest.New(t, "u1", "u2")
	bk := booking.New(env.Store, env.Notifier, env.Logger, booking.Config{Now: env.Clock.Now})

	out, err := bk.Confirm(context.Background(), servicetest.Group, "u1", []string{"A1"})
	require.NoError(t, err)
	env.Recorder.Reset()

	svc := cancellation.New(env.Store, env.Notifier, env.Logger, cancellation.Config{Now: env.Clock.Now})
	return env, svc, out[0]
}

func TestCancel(t *testing.T) {
	env, svc, b := setup(t)
	ctx := context.Background()

	c, err := svc.Cancel(ctx, b.ID, "u1")
	require.NoError(t, err)
	assert.Equal(t, domain.BookingCancelled, c.Booking.Status)
	assert.Equal(t, events.BookingCancelled, c.Ack.Type)
	assert.Equal(t, b.ID, *c.Ack.BookingID)

	seat := env.Seat(t, "A1")
	assert.Equal(t, domain.SeatAvailable, seat.Status)
	assert.Empty(t, seat.Holder)

	got := env.Recorder.Events()
	require.Len(t, got, 1, "the ack is targeted, not broadcast")
	assert.Equal(t, events.SeatReleased, got[0].Type)
	assert.Equal(t, "A1", got[0].Label)

	stored, err := env.Store.Bookings().Get(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingCancelled, stored.Status, "history is kept")

	recs := env.Audit.Records()
	require.NotEmpty(t, recs)
	assert.Equal(t, queue.ActionCancelled, recs[len(recs)-1].Action)

	_, err = svc.Cancel(ctx, b.ID, "u1")
	require.ErrorIs(t, err, cancellation.ErrBookingNotFound, "already cancelled")
}

func TestCancelNotOwner(t *testing.T) {
	env, svc, b := setup(t)
	ctx := context.Background()

	_, err := svc.Cancel(ctx, b.ID, "u2")
	require.ErrorIs(t, err, cancellation.ErrUnauthorized)
	assert.Equal(t, domain.KindUnauthorized, domain.KindOf(err))
	assert.Equal(t, "Unauthorized to cancel this booking", domain.Message(err))

	seat := env.Seat(t, "A1")
	assert.Equal(t, domain.SeatBooked, seat.Status)
	assert.Equal(t, "u1", seat.Holder)

	stored, err := env.Store.Bookings().Get(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingConfirmed, stored.Status)
	assert.Empty(t, env.Recorder.Events())
}

func TestCancelMissing(t *testing.T) {
	_, svc, _ := setup(t)

	_, err := svc.Cancel(context.Background(), uuid.New(), "u1")
	require.ErrorIs(t, err, cancellation.ErrBookingNotFound)
	assert.Equal(t, domain.KindNotFound, domain.KindOf(err))
}

func TestCancelSeatNoLongerBooked(t *testing.T) {
	env, svc, b := setup(t)
	ctx := context.Background()

	expiry := env.Clock.Now().Add(5 * time.Minute)
	require.NoError(t, env.Store.RunTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		seat, err := tx.Seats().Get(ctx, servicetest.Group, "A1")
		if err != nil {
			return err
		}
		_, err = tx.Seats().CompareAndSwapStatus(ctx, *seat, domain.HeldBy("u2", expiry))
		return err
	}))

	c, err := svc.Cancel(ctx, b.ID, "u1")
	require.NoError(t, err)
	assert.Equal(t, domain.BookingCancelled, c.Booking.Status)

	seat := env.Seat(t, "A1")
	assert.Equal(t, domain.SeatHeld, seat.Status)
	assert.Equal(t, "u2", seat.Holder)
	assert.Empty(t, env.Recorder.Events(), "observers keep seeing the hold")
}
