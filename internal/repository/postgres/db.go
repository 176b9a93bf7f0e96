package postgresrepo

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kirinyoku/seatres/internal/repository"
)

type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

type Store struct {
	pool *pgxpool.Pool
	opts pgx.TxOptions
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{
		pool: pool,
		opts: pgx.TxOptions{
			IsoLevel:   pgx.Serializable,
			AccessMode: pgx.ReadWrite,
		},
	}
}

// RunTx runs fn inside a serializable transaction. Serialization failures
// and deadlocks are reported as repository.ErrTxAborted.
func (s *Store) RunTx(
	ctx context.Context,
	fn func(ctx context.Context, tx repository.Tx) error,
) error {
	const op = "postgresrepo.Store.RunTx"

	tx, err := s.pool.BeginTx(ctx, s.opts)
	if err != nil {
		return fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	defer tx.Rollback(ctx)

	if err := fn(ctx, txRepos{db: tx}); err != nil {
		if IsRetryable(err) {
			return fmt.Errorf("%s:%w", op, repository.ErrTxAborted)
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("%s: commit: %w", op, translateDBErr(err))
	}

	return nil
}

func (s *Store) Seats() repository.SeatRepository       { return &SeatRepo{db: s.pool} }
func (s *Store) Bookings() repository.BookingRepository { return &BookingRepo{db: s.pool} }
func (s *Store) Holders() repository.HolderRepository   { return &HolderRepo{db: s.pool} }

// txRepos binds the repositories to one pgx transaction. Seat reads inside
// a transaction take row locks.
type txRepos struct {
	db DB
}

func (t txRepos) Seats() repository.SeatRepository       { return &SeatRepo{db: t.db, forUpdate: true} }
func (t txRepos) Bookings() repository.BookingRepository { return &BookingRepo{db: t.db} }
func (t txRepos) Holders() repository.HolderRepository   { return &HolderRepo{db: t.db} }
