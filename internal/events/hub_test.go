package events

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/kirinyoku/seatres/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	g1 = domain.GroupID{TheaterID: 1, Showtime: "10:00"}
	g2 = domain.GroupID{TheaterID: 2, Showtime: "10:00"}
)

func newHub() *Hub {
	return NewHub(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestHubDeliversOnlyToGroupObservers(t *testing.T) {
	h := newHub()
	ctx := context.Background()

	a := h.Subscribe(g1)
	defer a.Close()
	b := h.Subscribe(g2)
	defer b.Close()

	require.NoError(t, h.Publish(ctx, g1, Event{Type: SeatHeld, Label: "A1"}))

	ev := <-a.C
	assert.Equal(t, "A1", ev.Label)
	assert.Empty(t, b.C)
}

func TestHubLateSubscriberMissesEarlierEvents(t *testing.T) {
	h := newHub()
	ctx := context.Background()

	require.NoError(t, h.Publish(ctx, g1, Event{Type: SeatHeld, Label: "A1"}))

	late := h.Subscribe(g1)
	defer late.Close()

	assert.Empty(t, late.C)
}

func TestHubDropsForSlowObserver(t *testing.T) {
	h := newHub()
	h.buffer = 1
	ctx := context.Background()

	sub := h.Subscribe(g1)
	defer sub.Close()

	require.NoError(t, h.Publish(ctx, g1, Event{Label: "A1"}))
	require.NoError(t, h.Publish(ctx, g1, Event{Label: "A2"}))

	assert.Equal(t, "A1", (<-sub.C).Label)
	assert.Empty(t, sub.C)
}

func TestHubDropsStaleSeatVersions(t *testing.T) {
	h := newHub()
	ctx := context.Background()
	seat := uuid.New()

	sub := h.Subscribe(g1)
	defer sub.Close()

	require.NoError(t, h.Publish(ctx, g1, Event{Type: SeatReleased, SeatID: &seat, Version: 3}))
	require.NoError(t, h.Publish(ctx, g1, Event{Type: SeatHeld, SeatID: &seat, Version: 2}))
	require.NoError(t, h.Publish(ctx, g1, Event{Type: SeatHeld, SeatID: &seat, Version: 3}))
	require.NoError(t, h.Publish(ctx, g1, Event{Type: BookingCancelled}))

	assert.Equal(t, SeatReleased, (<-sub.C).Type)
	assert.Equal(t, SeatHeld, (<-sub.C).Type)
	assert.Equal(t, BookingCancelled, (<-sub.C).Type)
	assert.Empty(t, sub.C)
}

func TestSubscriptionClose(t *testing.T) {
	h := newHub()

	sub := h.Subscribe(g1)
	assert.Equal(t, 1, h.Observers(g1))

	sub.Close()
	sub.Close()
	assert.Equal(t, 0, h.Observers(g1))

	_, open := <-sub.C
	assert.False(t, open)

	require.NoError(t, h.Publish(context.Background(), g1, Event{}))
}

func TestRecorder(t *testing.T) {
	var r Recorder
	ctx := context.Background()

	require.NoError(t, r.Publish(ctx, g1, Event{Type: SeatHeld}))
	require.NoError(t, r.Publish(ctx, g2, Event{Type: SeatReleased}))

	require.Len(t, r.Events(), 2)
	released := r.OfType(SeatReleased)
	require.Len(t, released, 1)
	assert.Equal(t, g2, released[0].Group)

	r.Reset()
	assert.Empty(t, r.Events())
}
