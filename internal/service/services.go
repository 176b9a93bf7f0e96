package service

import (
	"log/slog"

	"github.com/kirinyoku/seatres/internal/repository"
	"github.com/kirinyoku/seatres/internal/service/admin"
	"github.com/kirinyoku/seatres/internal/service/booking"
	"github.com/kirinyoku/seatres/internal/service/cancellation"
	"github.com/kirinyoku/seatres/internal/service/hold"
	"github.com/kirinyoku/seatres/internal/service/notify"
	"github.com/kirinyoku/seatres/internal/service/query"
)

type Services struct {
	Hold         *hold.Service
	Booking      *booking.Service
	Cancellation *cancellation.Service
	Query        *query.Service
	Admin        *admin.Service
}

type Config struct {
	Hold         hold.Config
	Booking      booking.Config
	Cancellation cancellation.Config
	Query        query.Config
}

// Deps are the optional collaborators of the services. Leave a field nil
// to run without it.
type Deps struct {
	Notifier *notify.Notifier
	Cache    Cache
	Limiter  hold.Limiter
}

// Cache is what the services need from the group cache.
type Cache interface {
	notify.Invalidator
	query.SummaryCache
}

func NewServices(store repository.Store, deps Deps, logger *slog.Logger, cfg Config) *Services {
	var (
		summaries   query.SummaryCache
		invalidator notify.Invalidator
	)
	if deps.Cache != nil {
		summaries, invalidator = deps.Cache, deps.Cache
	}

	return &Services{
		Hold:         hold.New(store, deps.Notifier, deps.Limiter, logger, cfg.Hold),
		Booking:      booking.New(store, deps.Notifier, logger, cfg.Booking),
		Cancellation: cancellation.New(store, deps.Notifier, logger, cfg.Cancellation),
		Query:        query.New(store, summaries, cfg.Query),
		Admin:        admin.New(store, invalidator, logger),
	}
}
