// Package servicetest wires services against the in-memory store for tests.
package servicetest

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/kirinyoku/seatres/internal/domain"
	"github.com/kirinyoku/seatres/internal/events"
	"github.com/kirinyoku/seatres/internal/queue"
	"github.com/kirinyoku/seatres/internal/repository/memory"
	"github.com/kirinyoku/seatres/internal/service/notify"
	"github.com/stretchr/testify/require"
)

var Group = domain.GroupID{TheaterID: 1, Showtime: "10:00"}

// Clock is a settable time source.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

func NewClock() *Clock {
	return &Clock{now: time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)}
}

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// AuditLog is a queue.Auditor that keeps every record.
type AuditLog struct {
	mu   sync.Mutex
	recs []queue.AuditRecord
}

func (a *AuditLog) Audit(_ context.Context, rec queue.AuditRecord) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.recs = append(a.recs, rec)
	return nil
}

func (a *AuditLog) Records() []queue.AuditRecord {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]queue.AuditRecord(nil), a.recs...)
}

type Env struct {
	Store    *memory.Store
	Recorder *events.Recorder
	Audit    *AuditLog
	Notifier *notify.Notifier
	Clock    *Clock
	Logger   *slog.Logger
}

// New returns an environment with Group provisioned as a 10x10 grid and
// the given holders registered.
func New(t *testing.T, holders ...string) *Env {
	t.Helper()

	ctx := context.Background()
	store := memory.NewStore()

	_, err := store.Seats().Provision(ctx, Group, domain.GridLabels(10, 10))
	require.NoError(t, err)

	for _, h := range holders {
		require.NoError(t, store.Holders().Register(ctx, h))
	}

	rec := &events.Recorder{}
	audit := &AuditLog{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	return &Env{
		Store:    store,
		Recorder: rec,
		Audit:    audit,
		Notifier: notify.New(rec, nil, audit, logger),
		Clock:    NewClock(),
		Logger:   logger,
	}
}

func (e *Env) Seat(t *testing.T, label string) domain.Seat {
	t.Helper()

	s, err := e.Store.Seats().Get(context.Background(), Group, label)
	require.NoError(t, err)
	return *s
}
