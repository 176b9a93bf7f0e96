package admin

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/kirinyoku/seatres/internal/domain"
	"github.com/kirinyoku/seatres/internal/repository"
	"github.com/kirinyoku/seatres/internal/service/notify"
	"github.com/kirinyoku/seatres/internal/uow"
)

// Inventory is the fixed set of groups and the seat grid each one gets.
type Inventory struct {
	Theaters  []int64
	Showtimes domain.Showtimes
	Rows      int
	Cols      int
}

type Service struct {
	store  repository.Store
	uow    *uow.UoW
	cache  notify.Invalidator
	logger *slog.Logger
}

// New builds the provisioning service. cache may be nil.
func New(store repository.Store, cache notify.Invalidator, logger *slog.Logger) *Service {
	return &Service{
		store:  store,
		uow:    uow.NewUoW(store),
		cache:  cache,
		logger: logger,
	}
}

// ProvisionGroups creates every missing seat of inv as available. Seats that
// already exist are left untouched, so running it again is harmless.
//
// Parameters:
//   - ctx: request-scoped context.
//   - inv: theaters, showtimes and grid size to provision.
//
// Returns:
//   - int64: number of seats created.
//   - error: admin.ErrNoInventory or admin.ErrGridTooWide for a bad inventory.
func (s *Service) ProvisionGroups(ctx context.Context, inv Inventory) (int64, error) {
	const op = "service.admin.ProvisionGroups"

	if len(inv.Theaters) == 0 || len(inv.Showtimes) == 0 || inv.Rows <= 0 || inv.Cols <= 0 {
		return 0, fmt.Errorf("%s:%w", op, ErrNoInventory)
	}

	if inv.Rows > 26 {
		return 0, fmt.Errorf("%s:%w", op, ErrGridTooWide)
	}

	labels := domain.GridLabels(inv.Rows, inv.Cols)

	var (
		created int64
		groups  []domain.GroupID
	)

	err := s.uow.Do(ctx, func(ctx context.Context, tx repository.Tx, after func(uow.AfterCommit)) error {
		created, groups = 0, groups[:0]

		for _, theater := range inv.Theaters {
			for _, showtime := range inv.Showtimes {
				group := domain.GroupID{TheaterID: theater, Showtime: showtime}
				if err := inv.Showtimes.Validate(group); err != nil {
					return err
				}

				n, err := tx.Seats().Provision(ctx, group, labels)
				if err != nil {
					return err
				}

				created += n
				if n > 0 {
					groups = append(groups, group)
				}
			}
		}

		after(func(ctx context.Context) {
			if s.cache == nil {
				return
			}
			for _, g := range groups {
				if err := s.cache.InvalidateGroup(ctx, g); err != nil {
					s.logger.Warn("invalidate group cache failed", "group", g.String(), "error", err)
				}
			}
		})

		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("%s:%w", op, err)
	}

	s.logger.Info("inventory provisioned",
		"theaters", len(inv.Theaters), "showtimes", len(inv.Showtimes), "seats_created", created)

	return created, nil
}

// RegisterHolders makes identities known so they may book.
func (s *Service) RegisterHolders(ctx context.Context, holders ...string) error {
	const op = "service.admin.RegisterHolders"

	err := s.uow.Do(ctx, func(ctx context.Context, tx repository.Tx, _ func(uow.AfterCommit)) error {
		for _, h := range holders {
			if h == "" {
				return ErrEmptyHolder
			}
			if err := tx.Holders().Register(ctx, h); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%s:%w", op, err)
	}

	return nil
}
