package admin_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/kirinyoku/seatres/internal/domain"
	"github.com/kirinyoku/seatres/internal/repository/memory"
	"github.com/kirinyoku/seatres/internal/service/admin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type invalidations struct{ groups []domain.GroupID }

func (i *invalidations) InvalidateGroup(_ context.Context, g domain.GroupID) error {
	i.groups = append(i.groups, g)
	return nil
}

func TestProvisionGroups(t *testing.T) {
	store := memory.NewStore()
	inv := &invalidations{}
	svc := admin.New(store, inv, slog.New(slog.NewTextHandler(io.Discard, nil)))
	ctx := context.Background()

	in := admin.Inventory{
		Theaters:  []int64{1, 2},
		Showtimes: domain.DefaultShowtimes,
		Rows:      10,
		Cols:      10,
	}

	n, err := svc.ProvisionGroups(ctx, in)
	require.NoError(t, err)
	assert.EqualValues(t, 2*len(domain.DefaultShowtimes)*100, n)
	assert.Len(t, inv.groups, 2*len(domain.DefaultShowtimes))

	n, err = svc.ProvisionGroups(ctx, in)
	require.NoError(t, err)
	assert.Zero(t, n, "provisioning again creates nothing")

	seats, err := store.Seats().List(ctx, domain.GroupID{TheaterID: 2, Showtime: domain.DefaultShowtimes[0]})
	require.NoError(t, err)
	require.Len(t, seats, 100)
	assert.Equal(t, domain.SeatAvailable, seats[0].Status)
}

func TestProvisionGroupsRejectsBadInventory(t *testing.T) {
	svc := admin.New(memory.NewStore(), nil, slog.New(slog.NewTextHandler(io.Discard, nil)))
	ctx := context.Background()

	_, err := svc.ProvisionGroups(ctx, admin.Inventory{})
	require.ErrorIs(t, err, admin.ErrNoInventory)

	_, err = svc.ProvisionGroups(ctx, admin.Inventory{
		Theaters: []int64{1}, Showtimes: domain.DefaultShowtimes, Rows: 27, Cols: 1,
	})
	require.ErrorIs(t, err, admin.ErrGridTooWide)

	_, err = svc.ProvisionGroups(ctx, admin.Inventory{
		Theaters: []int64{0}, Showtimes: domain.DefaultShowtimes, Rows: 1, Cols: 1,
	})
	require.ErrorIs(t, err, domain.ErrInvalidTheater)
}

func TestRegisterHolders(t *testing.T) {
	store := memory.NewStore()
	svc := admin.New(store, nil, slog.New(slog.NewTextHandler(io.Discard, nil)))
	ctx := context.Background()

	require.NoError(t, svc.RegisterHolders(ctx, "u1", "u2"))

	ok, err := store.Holders().Exists(ctx, "u2")
	require.NoError(t, err)
	assert.True(t, ok)

	err = svc.RegisterHolders(ctx, "u3", "")
	require.ErrorIs(t, err, admin.ErrEmptyHolder)

	ok, err = store.Holders().Exists(ctx, "u3")
	require.NoError(t, err)
	assert.False(t, ok, "batch rolled back")
}
