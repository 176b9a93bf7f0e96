package hold_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/kirinyoku/seatres/internal/domain"
	"github.com/kirinyoku/seatres/internal/events"
	"github.com/kirinyoku/seatres/internal/service/hold"
	"github.com/kirinyoku/seatres/internal/service/servicetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const ttl = 300 * time.Second

func newService(env *servicetest.Env, limiter hold.Limiter) *hold.Service {
	return hold.New(env.Store, env.Notifier, limiter, env.Logger, hold.Config{
		MaxHoldTTL: 10 * time.Minute,
		Now:        env.Clock.Now,
	})
}

func TestRequestHoldGrants(t *testing.T) {
	env := servicetest.New(t)
	svc := newService(env, nil)
	ctx := context.Background()

	g, err := svc.RequestHold(ctx, servicetest.Group, "A1", "u1", ttl)
	require.NoError(t, err)
	assert.False(t, g.Regranted)
	assert.Equal(t, env.Clock.Now().Add(ttl), g.Expiry)

	seat := env.Seat(t, "A1")
	assert.Equal(t, domain.SeatHeld, seat.Status)
	assert.Equal(t, "u1", seat.Holder)

	held := env.Recorder.OfType(events.SeatHeld)
	require.Len(t, held, 1)
	assert.Equal(t, "A1", held[0].Label)
	assert.Equal(t, "u1", held[0].Holder)
	assert.Equal(t, g.Expiry, *held[0].Expiry)
	assert.Equal(t, seat.ID, *held[0].SeatID)
}

func TestRequestHoldDoesNotRenew(t *testing.T) {
	env := servicetest.New(t)
	svc := newService(env, nil)
	ctx := context.Background()

	first, err := svc.RequestHold(ctx, servicetest.Group, "B5", "u1", ttl)
	require.NoError(t, err)

	env.Clock.Advance(100 * time.Second)

	again, err := svc.RequestHold(ctx, servicetest.Group, "B5", "u1", ttl)
	require.NoError(t, err)
	assert.True(t, again.Regranted)
	assert.Equal(t, first.Expiry, again.Expiry)

	held := env.Recorder.OfType(events.SeatHeld)
	require.Len(t, held, 2)
	assert.Equal(t, first.Expiry, *held[1].Expiry)
}

func TestRequestHoldDenied(t *testing.T) {
	env := servicetest.New(t)
	svc := newService(env, nil)
	ctx := context.Background()

	_, err := svc.RequestHold(ctx, servicetest.Group, "A1", "u1", ttl)
	require.NoError(t, err)
	env.Recorder.Reset()

	_, err = svc.RequestHold(ctx, servicetest.Group, "A1", "u2", ttl)
	require.ErrorIs(t, err, hold.ErrHeldByAnother)
	assert.Equal(t, domain.KindConflict, domain.KindOf(err))
	assert.Equal(t, "Seat is currently being held by someone else", domain.Message(err))
	assert.Empty(t, env.Recorder.Events(), "no broadcast on failure")

	seat := env.Seat(t, "A1")
	_, err = env.Store.Seats().CompareAndSwapStatus(ctx, seat, domain.BookedBy("u1"))
	require.NoError(t, err)

	_, err = svc.RequestHold(ctx, servicetest.Group, "A1", "u2", ttl)
	require.ErrorIs(t, err, hold.ErrAlreadyReserved)

	_, err = svc.RequestHold(ctx, servicetest.Group, "Z99", "u2", ttl)
	require.ErrorIs(t, err, hold.ErrSeatNotFound)
	assert.Equal(t, domain.KindNotFound, domain.KindOf(err))

	_, err = svc.RequestHold(ctx, servicetest.Group, "a1", "u2", ttl)
	assert.Equal(t, domain.KindInvalid, domain.KindOf(err))
}

func TestRequestHoldLazyExpiry(t *testing.T) {
	env := servicetest.New(t)
	svc := newService(env, nil)
	ctx := context.Background()

	_, err := svc.RequestHold(ctx, servicetest.Group, "C3", "u1", ttl)
	require.NoError(t, err)

	env.Clock.Advance(301 * time.Second)

	stale := env.Seat(t, "C3")
	assert.Equal(t, domain.SeatHeld, stale.Status, "nothing sweeps the row")
	assert.Equal(t, domain.SeatAvailable, stale.EffectiveStatus(env.Clock.Now()))

	g, err := svc.RequestHold(ctx, servicetest.Group, "C3", "u2", ttl)
	require.NoError(t, err)
	assert.Equal(t, "u2", g.Seat.Holder)
	assert.Equal(t, env.Clock.Now().Add(ttl), g.Expiry)
}

func TestRequestHoldConcurrentExactlyOneGrant(t *testing.T) {
	env := servicetest.New(t)
	svc := newService(env, nil)
	ctx := context.Background()

	holders := []string{"u1", "u2", "u3", "u4", "u5", "u6", "u7", "u8"}

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		granted []string
		denied  int
	)
	for _, h := range holders {
		wg.Add(1)
		go func(h string) {
			defer wg.Done()
			_, err := svc.RequestHold(ctx, servicetest.Group, "D4", h, ttl)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				granted = append(granted, h)
			case errors.Is(err, hold.ErrHeldByAnother):
				denied++
			default:
				t.Errorf("unexpected error for %s: %v", h, err)
			}
		}(h)
	}
	wg.Wait()

	require.Len(t, granted, 1)
	assert.Equal(t, len(holders)-1, denied)
	assert.Equal(t, granted[0], env.Seat(t, "D4").Holder)
	assert.Len(t, env.Recorder.OfType(events.SeatHeld), 1)
}

func TestRequestHoldClampsTTL(t *testing.T) {
	env := servicetest.New(t)
	svc := newService(env, nil)
	ctx := context.Background()

	g, err := svc.RequestHold(ctx, servicetest.Group, "A1", "u1", 0)
	require.NoError(t, err)
	assert.Equal(t, env.Clock.Now().Add(hold.DefaultTTL), g.Expiry)

	g, err = svc.RequestHold(ctx, servicetest.Group, "A2", "u1", time.Second)
	require.NoError(t, err)
	assert.Equal(t, env.Clock.Now().Add(15*time.Second), g.Expiry)

	g, err = svc.RequestHold(ctx, servicetest.Group, "A3", "u1", time.Hour)
	require.NoError(t, err)
	assert.Equal(t, env.Clock.Now().Add(10*time.Minute), g.Expiry)
}

type denyAll struct{}

func (denyAll) Allow(context.Context, string) (bool, int64, time.Duration, error) {
	return false, 1, time.Second, nil
}

func TestRequestHoldRateLimited(t *testing.T) {
	env := servicetest.New(t)
	svc := newService(env, denyAll{})

	_, err := svc.RequestHold(context.Background(), servicetest.Group, "A1", "u1", ttl)
	require.ErrorIs(t, err, hold.ErrRateLimited)
	assert.Equal(t, domain.KindRateLimited, domain.KindOf(err))
	assert.Equal(t, domain.SeatAvailable, env.Seat(t, "A1").Status)
}

func TestReleaseHold(t *testing.T) {
	env := servicetest.New(t)
	svc := newService(env, nil)
	ctx := context.Background()

	_, err := svc.RequestHold(ctx, servicetest.Group, "A1", "u1", ttl)
	require.NoError(t, err)
	env.Recorder.Reset()

	released, err := svc.ReleaseHold(ctx, servicetest.Group, "A1", "u2")
	require.NoError(t, err)
	assert.False(t, released)
	assert.Empty(t, env.Recorder.Events())

	released, err = svc.ReleaseHold(ctx, servicetest.Group, "J10", "u2")
	require.NoError(t, err)
	assert.False(t, released, "never held")

	released, err = svc.ReleaseHold(ctx, servicetest.Group, "Z1", "u2")
	require.NoError(t, err)
	assert.False(t, released, "no such seat")
	assert.Empty(t, env.Recorder.Events())

	released, err = svc.ReleaseHold(ctx, servicetest.Group, "A1", "u1")
	require.NoError(t, err)
	assert.True(t, released)

	seat := env.Seat(t, "A1")
	assert.Equal(t, domain.SeatAvailable, seat.Status)
	assert.Empty(t, seat.Holder)
	assert.Nil(t, seat.HoldExpiry)

	rel := env.Recorder.OfType(events.SeatReleased)
	require.Len(t, rel, 1)
	assert.Equal(t, "A1", rel[0].Label)
}
