package query_test

import (
	"context"
	"testing"
	"time"

	"github.com/kirinyoku/seatres/internal/domain"
	"github.com/kirinyoku/seatres/internal/service/booking"
	"github.com/kirinyoku/seatres/internal/service/cancellation"
	"github.com/kirinyoku/seatres/internal/service/hold"
	"github.com/kirinyoku/seatres/internal/service/query"
	"github.com/kirinyoku/seatres/internal/service/servicetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seatByLabel(t *testing.T, gs query.GroupSeats, label string) domain.Seat {
	t.Helper()
	for _, s := range gs.Seats {
		if s.Label == label {
			return s
		}
	}
	t.Fatalf("seat %s not listed", label)
	return domain.Seat{}
}

func TestGetSeats(t *testing.T) {
	env := servicetest.New(t, "u1")
	ctx := context.Background()
	q := query.New(env.Store, nil, query.Config{Now: env.Clock.Now})
	hs := hold.New(env.Store, env.Notifier, nil, env.Logger, hold.Config{Now: env.Clock.Now})

	_, err := hs.RequestHold(ctx, servicetest.Group, "A1", "u1", 300*time.Second)
	require.NoError(t, err)

	gs, err := q.GetSeats(ctx, servicetest.Group)
	require.NoError(t, err)
	require.Len(t, gs.Seats, 100)
	assert.Equal(t, "A1", gs.Seats[0].Label)
	assert.Equal(t, "A10", gs.Seats[1].Label, "string order")
	assert.Equal(t, domain.SeatHeld, seatByLabel(t, gs, "A1").Status)
	assert.Empty(t, gs.Bookings)

	env.Clock.Advance(301 * time.Second)

	gs, err = q.GetSeats(ctx, servicetest.Group)
	require.NoError(t, err)
	a1 := seatByLabel(t, gs, "A1")
	assert.Equal(t, domain.SeatAvailable, a1.Status)
	assert.Empty(t, a1.Holder)
	assert.Nil(t, a1.HoldExpiry)

	_, err = q.GetSeats(ctx, domain.GroupID{TheaterID: 9, Showtime: "10:00"})
	require.ErrorIs(t, err, query.ErrGroupNotFound)
}

func TestSummary(t *testing.T) {
	env := servicetest.New(t, "u1")
	ctx := context.Background()
	q := query.New(env.Store, nil, query.Config{Now: env.Clock.Now})
	bk := booking.New(env.Store, env.Notifier, env.Logger, booking.Config{Now: env.Clock.Now})

	_, err := bk.Confirm(ctx, servicetest.Group, "u1", []string{"A1", "A2"})
	require.NoError(t, err)

	gs, err := q.Summary(ctx, servicetest.Group)
	require.NoError(t, err)
	assert.Equal(t, domain.GroupSummary{Available: 98, Booked: 2, Total: 100}, gs)
}

type countingCache struct {
	loads  int
	cached *domain.GroupSummary
}

func (c *countingCache) GroupSummary(
	ctx context.Context,
	_ domain.GroupID,
	_ time.Duration,
	load func(context.Context) (domain.GroupSummary, error),
) (domain.GroupSummary, error) {
	if c.cached != nil {
		return *c.cached, nil
	}
	c.loads++
	gs, err := load(ctx)
	if err == nil {
		c.cached = &gs
	}
	return gs, err
}

func TestSummaryUsesCache(t *testing.T) {
	env := servicetest.New(t)
	cache := &countingCache{}
	q := query.New(env.Store, cache, query.Config{Now: env.Clock.Now})

	for i := 0; i < 3; i++ {
		gs, err := q.Summary(context.Background(), servicetest.Group)
		require.NoError(t, err)
		assert.EqualValues(t, 100, gs.Available)
	}
	assert.Equal(t, 1, cache.loads)
}

func TestBookingRoundTrip(t *testing.T) {
	env := servicetest.New(t, "u1")
	ctx := context.Background()
	q := query.New(env.Store, nil, query.Config{Now: env.Clock.Now})
	bk := booking.New(env.Store, env.Notifier, env.Logger, booking.Config{Now: env.Clock.Now})
	cn := cancellation.New(env.Store, env.Notifier, env.Logger, cancellation.Config{Now: env.Clock.Now})

	out, err := bk.Confirm(ctx, servicetest.Group, "u1", []string{"A1"})
	require.NoError(t, err)

	env.Clock.Advance(time.Minute)
	_, err = bk.Confirm(ctx, servicetest.Group, "u1", []string{"B1"})
	require.NoError(t, err)

	mine, err := q.MyBookings(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, "B1", mine[0].Label, "newest first")
	assert.Equal(t, "A1", mine[1].Label)
	assert.Equal(t, domain.BookingConfirmed, mine[1].Status)

	gs, err := q.GetSeats(ctx, servicetest.Group)
	require.NoError(t, err)
	assert.Len(t, gs.Bookings, 2)

	_, err = cn.Cancel(ctx, out[0].ID, "u1")
	require.NoError(t, err)

	mine, err = q.MyBookings(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "B1", mine[0].Label)

	gs, err = q.GetSeats(ctx, servicetest.Group)
	require.NoError(t, err)
	assert.Equal(t, domain.SeatAvailable, seatByLabel(t, gs, "A1").Status)

	none, err := q.MyBookings(ctx, "nobody")
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}
