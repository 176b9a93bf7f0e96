package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMemoryDefaults(t *testing.T) {
	t.Setenv("STORE", "memory")
	t.Setenv("JWT_SECRET", "s3cret")

	cfg, err := New()
	require.NoError(t, err)

	assert.Equal(t, StoreMemory, cfg.Store)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 5*time.Minute, cfg.Reservation.HoldTTL)
	assert.Equal(t, []int64{1, 2, 3, 4, 5}, cfg.Inventory.Theaters)
	assert.Equal(t, []string{"10:00", "15:00", "20:00"}, []string(cfg.Inventory.Showtimes))
	assert.Equal(t, 10, cfg.Inventory.Rows)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.Empty(t, cfg.RabbitMQ.URL)
}

func TestNewPostgres(t *testing.T) {
	t.Setenv("STORE", "postgres")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("POSTGRES_USER", "seat")
	t.Setenv("POSTGRES_PASSWORD", "pw")
	t.Setenv("POSTGRES_DB", "seatres")
	t.Setenv("POSTGRES_MAX_CONNS", "20")
	t.Setenv("SHOWTIMES", "09:00, 21:00")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := New()
	require.NoError(t, err)

	assert.Equal(t,
		"postgres://seat:pw@localhost:5432/seatres?sslmode=disable",
		cfg.Postgres.DSN())
	assert.EqualValues(t, 20, cfg.Postgres.MaxConns)
	assert.Equal(t, []string{"09:00", "21:00"}, []string(cfg.Inventory.Showtimes))
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
}

func TestNewCollectsErrors(t *testing.T) {
	t.Setenv("STORE", "postgres")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("POSTGRES_USER", "")
	t.Setenv("POSTGRES_PASSWORD", "")
	t.Setenv("POSTGRES_DB", "")
	t.Setenv("SERVER_PORT", "http")
	t.Setenv("HOLD_TTL", "1h")

	_, err := New()
	require.Error(t, err)
	for _, want := range []string{"missing POSTGRES_USER", "missing JWT_SECRET", "invalid SERVER_PORT", "hold TTLs"} {
		assert.Contains(t, err.Error(), want)
	}

	t.Setenv("STORE", "sqlite")
	_, err = New()
	assert.ErrorContains(t, err, "invalid STORE")
}
