package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kirinyoku/seatres/internal/domain"
)

type StoreKind string

const (
	StorePostgres StoreKind = "postgres"
	StoreMemory   StoreKind = "memory"
)

type Config struct {
	Server      ServerConfig
	Store       StoreKind
	Postgres    PostgresConfig
	Redis       RedisConfig
	RabbitMQ    RabbitMQConfig
	Auth        AuthConfig
	Reservation ReservationConfig
	Inventory   InventoryConfig
	LogLevel    slog.Level
}

type ServerConfig struct {
	Host string
	Port int
}

type PostgresConfig struct {
	User     string
	Password string
	Name     string
	Host     string
	Port     int
	SSLMode  string
	MaxConns int32
}

// DSN renders the connection string pgxpool expects.
func (c PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Name, c.SSLMode,
	)
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// RabbitMQConfig is optional; an empty URL disables the audit queue.
type RabbitMQConfig struct {
	URL   string
	Queue string
}

type AuthConfig struct {
	JWTSecret []byte
}

type ReservationConfig struct {
	HoldTTL       time.Duration
	MinHoldTTL    time.Duration
	MaxHoldTTL    time.Duration
	HoldRateLimit int
	SummaryTTL    time.Duration
	IdemTTL       time.Duration
}

type InventoryConfig struct {
	Theaters  []int64
	Showtimes domain.Showtimes
	Rows      int
	Cols      int
	Holders   []string
}

func New() (*Config, error) {
	const op = "config.New"

	_ = godotenv.Load()

	var errs []error
	e := env{errs: &errs}

	cfg := &Config{
		Server: ServerConfig{
			Host: e.str("SERVER_HOST", "localhost"),
			Port: e.num("SERVER_PORT", 8080),
		},
		Store: StoreKind(strings.ToLower(e.str("STORE", string(StorePostgres)))),
		Redis: RedisConfig{
			Addr:     e.str("REDIS_ADDR", "localhost:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       e.num("REDIS_DB", 0),
		},
		RabbitMQ: RabbitMQConfig{
			URL:   os.Getenv("RABBITMQ_URL"),
			Queue: e.str("RABBITMQ_QUEUE", "booking.events"),
		},
		Auth: AuthConfig{
			JWTSecret: []byte(os.Getenv("JWT_SECRET")),
		},
		Reservation: ReservationConfig{
			HoldTTL:       e.duration("HOLD_TTL", 5*time.Minute),
			MinHoldTTL:    e.duration("MIN_HOLD_TTL", 15*time.Second),
			MaxHoldTTL:    e.duration("MAX_HOLD_TTL", 10*time.Minute),
			HoldRateLimit: e.num("HOLD_RATE_LIMIT", 30),
			SummaryTTL:    e.duration("SUMMARY_CACHE_TTL", 5*time.Second),
			IdemTTL:       e.duration("IDEMPOTENCY_TTL", 2*time.Hour),
		},
		Inventory: InventoryConfig{
			Theaters:  e.theaters("THEATERS", 5),
			Showtimes: domain.Showtimes(e.list("SHOWTIMES", domain.DefaultShowtimes)),
			Rows:      e.num("SEAT_ROWS", 10),
			Cols:      e.num("SEAT_COLS", 10),
			Holders:   e.list("SEED_HOLDERS", nil),
		},
		LogLevel: e.level("LOG_LEVEL", slog.LevelInfo),
	}

	switch cfg.Store {
	case StoreMemory:
	case StorePostgres:
		cfg.Postgres = PostgresConfig{
			User:     e.required("POSTGRES_USER"),
			Password: e.required("POSTGRES_PASSWORD"),
			Name:     e.required("POSTGRES_DB"),
			Host:     e.str("POSTGRES_HOST", "localhost"),
			Port:     e.num("POSTGRES_PORT", 5432),
			SSLMode:  e.str("POSTGRES_SSLMODE", "disable"),
			MaxConns: int32(e.num("POSTGRES_MAX_CONNS", 0)),
		}
	default:
		errs = append(errs, fmt.Errorf("invalid STORE %q, want postgres or memory", cfg.Store))
	}

	if len(cfg.Auth.JWTSecret) == 0 {
		errs = append(errs, errors.New("missing JWT_SECRET"))
	}

	if r := cfg.Reservation; r.MinHoldTTL <= 0 || r.MaxHoldTTL < r.MinHoldTTL ||
		r.HoldTTL < r.MinHoldTTL || r.HoldTTL > r.MaxHoldTTL {
		errs = append(errs, errors.New("hold TTLs must satisfy 0 < MIN_HOLD_TTL <= HOLD_TTL <= MAX_HOLD_TTL"))
	}

	if cfg.Inventory.Rows <= 0 || cfg.Inventory.Rows > 26 || cfg.Inventory.Cols <= 0 {
		errs = append(errs, errors.New("SEAT_ROWS must be 1..26 and SEAT_COLS positive"))
	}

	if err := errors.Join(errs...); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return cfg, nil
}

type env struct {
	errs *[]error
}

func (e env) str(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func (e env) required(key string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		*e.errs = append(*e.errs, fmt.Errorf("missing %s", key))
	}
	return v
}

func (e env) num(key string, def int) int {
	s := strings.TrimSpace(os.Getenv(key))
	if s == "" {
		return def
	}

	v, err := strconv.Atoi(s)
	if err != nil {
		*e.errs = append(*e.errs, fmt.Errorf("invalid %s: %w", key, err))
		return def
	}
	return v
}

func (e env) duration(key string, def time.Duration) time.Duration {
	s := strings.TrimSpace(os.Getenv(key))
	if s == "" {
		return def
	}

	v, err := time.ParseDuration(s)
	if err != nil {
		*e.errs = append(*e.errs, fmt.Errorf("invalid %s: %w", key, err))
		return def
	}
	return v
}

func (e env) list(key string, def []string) []string {
	s := strings.TrimSpace(os.Getenv(key))
	if s == "" {
		return def
	}

	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// theaters reads a theater count and expands it to the ids 1..n.
func (e env) theaters(key string, def int) []int64 {
	n := e.num(key, def)
	if n <= 0 {
		*e.errs = append(*e.errs, fmt.Errorf("invalid %s: must be positive", key))
		return nil
	}

	out := make([]int64, n)
	for i := range out {
		out[i] = int64(i + 1)
	}
	return out
}

func (e env) level(key string, def slog.Level) slog.Level {
	s := strings.TrimSpace(os.Getenv(key))
	if s == "" {
		return def
	}

	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(s)); err != nil {
		*e.errs = append(*e.errs, fmt.Errorf("invalid %s: %w", key, err))
		return def
	}
	return lvl
}
