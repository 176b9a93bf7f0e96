package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kirinyoku/seatres/internal/config"
	"github.com/kirinyoku/seatres/internal/events"
	"github.com/kirinyoku/seatres/internal/postgres"
	"github.com/kirinyoku/seatres/internal/queue"
	"github.com/kirinyoku/seatres/internal/ratelimit"
	"github.com/kirinyoku/seatres/internal/redis"
	"github.com/kirinyoku/seatres/internal/repository"
	"github.com/kirinyoku/seatres/internal/repository/memory"
	postgresrepo "github.com/kirinyoku/seatres/internal/repository/postgres"
	redisrepo "github.com/kirinyoku/seatres/internal/repository/redis"
	"github.com/kirinyoku/seatres/internal/service"
	"github.com/kirinyoku/seatres/internal/service/admin"
	"github.com/kirinyoku/seatres/internal/service/hold"
	"github.com/kirinyoku/seatres/internal/service/notify"
	"github.com/kirinyoku/seatres/internal/service/query"
	httpgin "github.com/kirinyoku/seatres/internal/transport/http/gin"
	"golang.org/x/sync/errgroup"
)

type App struct {
	cfg        *config.Config
	logger     *slog.Logger
	httpServer *http.Server
	hub        *events.Hub
	pubsub     *redisrepo.GroupPubSub
	consumer   *queue.Consumer
	closers    []func()
}

// New builds the application. With STORE=memory nothing outside the
// process is contacted; otherwise Postgres and Redis are required and
// RabbitMQ is used when configured.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	a := &App{
		cfg:    cfg,
		logger: logger,
		hub:    events.NewHub(logger),
	}

	var (
		store       repository.Store
		publisher   events.Publisher = a.hub
		cache       service.Cache
		limiter     hold.Limiter
		idempotency httpgin.IdempotencyStore
		auditor     queue.Auditor
	)

	window := time.Minute

	switch cfg.Store {
	case config.StoreMemory:
		store = memory.NewStore()
		if cfg.Reservation.HoldRateLimit > 0 {
			limiter = ratelimit.NewLocal(cfg.Reservation.HoldRateLimit, window)
		}
		logger.Info("using in-memory store")

	default:
		pool, err := postgres.New(ctx, postgres.Config{
			DSN:      cfg.Postgres.DSN(),
			MaxConns: cfg.Postgres.MaxConns,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize postgres: %w", err)
		}
		a.closers = append(a.closers, pool.Close)

		if err := postgres.Migrate(ctx, pool); err != nil {
			a.Close()
			return nil, fmt.Errorf("failed to migrate postgres: %w", err)
		}

		rdb, err := redis.New(ctx, redis.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("failed to initialize redis: %w", err)
		}
		a.closers = append(a.closers, func() { _ = rdb.Close() })

		store = postgresrepo.NewStore(pool)
		cache = redisrepo.NewCache(rdb)
		a.pubsub = redisrepo.NewGroupPubSub(rdb, logger)
		publisher = a.pubsub
		if cfg.Reservation.HoldRateLimit > 0 {
			limiter = redisrepo.NewSlidingWindowLimiter(rdb, "holds", cfg.Reservation.HoldRateLimit, window)
		}
		idempotency = redisrepo.NewIdempotencyStore(rdb, cfg.Reservation.IdemTTL, time.Minute)
	}

	if cfg.RabbitMQ.URL != "" {
		pub := queue.NewPublisher(cfg.RabbitMQ.URL, cfg.RabbitMQ.Queue)
		a.closers = append(a.closers, func() { _ = pub.Close() })
		auditor = pub
		a.consumer = queue.NewConsumer(cfg.RabbitMQ.URL, cfg.RabbitMQ.Queue, logger)
	}

	var invalidator notify.Invalidator
	if cache != nil {
		invalidator = cache
	}

	services := service.NewServices(store, service.Deps{
		Notifier: notify.New(publisher, invalidator, auditor, logger),
		Cache:    cache,
		Limiter:  limiter,
	}, logger, service.Config{
		Hold: hold.Config{
			DefaultTTL: cfg.Reservation.HoldTTL,
			MinHoldTTL: cfg.Reservation.MinHoldTTL,
			MaxHoldTTL: cfg.Reservation.MaxHoldTTL,
		},
		Query: query.Config{SummaryTTL: cfg.Reservation.SummaryTTL},
	})

	if err := seed(ctx, services.Admin, cfg.Inventory); err != nil {
		a.Close()
		return nil, err
	}

	router := httpgin.NewRouter(services, a.hub, httpgin.Options{
		Showtimes:   cfg.Inventory.Showtimes,
		Auth:        httpgin.JWTAuth(cfg.Auth.JWTSecret),
		Idempotency: idempotency,
	}, logger)

	a.httpServer = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	return a, nil
}

func seed(ctx context.Context, adm *admin.Service, inv config.InventoryConfig) error {
	if _, err := adm.ProvisionGroups(ctx, admin.Inventory{
		Theaters:  inv.Theaters,
		Showtimes: inv.Showtimes,
		Rows:      inv.Rows,
		Cols:      inv.Cols,
	}); err != nil {
		return fmt.Errorf("failed to provision seats: %w", err)
	}

	if len(inv.Holders) > 0 {
		if err := adm.RegisterHolders(ctx, inv.Holders...); err != nil {
			return fmt.Errorf("failed to register holders: %w", err)
		}
	}

	return nil
}

func (a *App) Run(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()
	defer a.Close()

	g, gCtx := errgroup.WithContext(ctx)

	// Start HTTP server
	g.Go(func() error {
		a.logger.Info("HTTP server listening", "host", a.cfg.Server.Host, "port", a.cfg.Server.Port)
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to start HTTP server: %w", err)
		}
		return nil
	})

	// Events published by any instance reach this instance's observers.
	if a.pubsub != nil {
		g.Go(func() error {
			err := a.pubsub.Subscribe(gCtx, func(ctx context.Context, ev events.Event) {
				_ = a.hub.Publish(ctx, ev.Group, ev)
			})
			if err != nil && !errors.Is(err, context.Canceled) {
				return fmt.Errorf("group event relay stopped: %w", err)
			}
			return nil
		})
	}

	if a.consumer != nil {
		g.Go(func() error {
			return a.consumer.Run(gCtx)
		})
	}

	// Graceful shutdown
	g.Go(func() error {
		<-gCtx.Done()
		a.logger.Info("shutting down HTTP server")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return a.httpServer.Shutdown(ctx)
	})

	return g.Wait()
}

// Close releases external connections in reverse order of acquisition.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
