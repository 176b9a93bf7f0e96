package notify

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/kirinyoku/seatres/internal/domain"
	"github.com/kirinyoku/seatres/internal/events"
	"github.com/kirinyoku/seatres/internal/queue"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCache struct{ groups []domain.GroupID }

func (f *fakeCache) InvalidateGroup(_ context.Context, g domain.GroupID) error {
	f.groups = append(f.groups, g)
	return errors.New("redis down")
}

type fakeAuditor struct{ recs []queue.AuditRecord }

func (f *fakeAuditor) Audit(_ context.Context, rec queue.AuditRecord) error {
	f.recs = append(f.recs, rec)
	return nil
}

func TestNotifier(t *testing.T) {
	var rec events.Recorder
	cache := &fakeCache{}
	aud := &fakeAuditor{}
	n := New(&rec, cache, aud, slog.New(slog.NewTextHandler(io.Discard, nil)))

	g := domain.GroupID{TheaterID: 1, Showtime: "10:00"}
	n.Emit(context.Background(), g,
		events.Event{Type: events.SeatBooked, Label: "A1"},
		events.Event{Type: events.SeatBooked, Label: "A2"},
	)
	n.Audit(context.Background(), queue.AuditRecord{Action: queue.ActionConfirmed, Holder: "u1"})

	got := rec.Events()
	require.Len(t, got, 2)
	assert.Equal(t, "A1", got[0].Label)
	assert.Equal(t, "A2", got[1].Label)
	assert.Equal(t, []domain.GroupID{g}, cache.groups)
	assert.Len(t, aud.recs, 1)
}

func TestNotifierOptionalSinks(t *testing.T) {
	var rec events.Recorder
	n := New(&rec, nil, nil, slog.New(slog.NewTextHandler(io.Discard, nil)))

	n.Emit(context.Background(), domain.GroupID{TheaterID: 1, Showtime: "10:00"}, events.Event{Type: events.SeatHeld})
	n.Audit(context.Background(), queue.AuditRecord{})

	assert.Len(t, rec.Events(), 1)
}

func TestNotifierSkipsOvertakenSeatEvents(t *testing.T) {
	var rec events.Recorder
	n := New(&rec, nil, nil, slog.New(slog.NewTextHandler(io.Discard, nil)))
	ctx := context.Background()
	g := domain.GroupID{TheaterID: 1, Showtime: "10:00"}
	seat, other := uuid.New(), uuid.New()

	// the release committed after the hold but got here first
	n.Emit(ctx, g, events.Event{Type: events.SeatReleased, SeatID: &seat, Version: 2})
	n.Emit(ctx, g, events.Event{Type: events.SeatHeld, SeatID: &seat, Version: 1})
	// a re-grant repeats the current version
	n.Emit(ctx, g, events.Event{Type: events.SeatReleased, SeatID: &seat, Version: 2})
	n.Emit(ctx, g, events.Event{Type: events.SeatHeld, SeatID: &other, Version: 1})

	var got []events.Type
	for _, ev := range rec.Events() {
		got = append(got, ev.Type)
	}
	assert.Equal(t, []events.Type{events.SeatReleased, events.SeatReleased, events.SeatHeld}, got)
}
