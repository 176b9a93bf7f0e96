package postgresrepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/kirinyoku/seatres/internal/domain"
	"github.com/kirinyoku/seatres/internal/repository"
)

const seatColumns = `id, theater_id, showtime, label, status, COALESCE(holder, ''), hold_expires_at, version`

type SeatRepo struct {
	db        DB
	forUpdate bool
}

func (r *SeatRepo) lockClause() string {
	if r.forUpdate {
		return " FOR UPDATE"
	}
	return ""
}

// Get retrieves a seat by group and label.
//
// Returns:
//   - *domain.Seat: the seat when found.
//   - error: repository.ErrNotFound if the group has no such label.
func (r *SeatRepo) Get(ctx context.Context, group domain.GroupID, label string) (*domain.Seat, error) {
	const op = "postgresrepo.SeatRepo.Get"

	s, err := scanSeat(r.db.QueryRow(ctx,
		`SELECT `+seatColumns+`
		 FROM seats
		 WHERE theater_id = $1 AND showtime = $2 AND label = $3`+r.lockClause(),
		group.TheaterID, group.Showtime, label,
	))
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	return s, nil
}

func (r *SeatRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Seat, error) {
	const op = "postgresrepo.SeatRepo.GetByID"

	s, err := scanSeat(r.db.QueryRow(ctx,
		`SELECT `+seatColumns+` FROM seats WHERE id = $1`+r.lockClause(),
		id,
	))
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	return s, nil
}

// List lists the seats of a group ordered by label.
func (r *SeatRepo) List(ctx context.Context, group domain.GroupID) ([]domain.Seat, error) {
	const op = "postgresrepo.SeatRepo.List"

	rows, err := r.db.Query(ctx,
		`SELECT `+seatColumns+`
		 FROM seats
		 WHERE theater_id = $1 AND showtime = $2
		 ORDER BY label`,
		group.TheaterID, group.Showtime,
	)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	defer rows.Close()

	var out []domain.Seat
	for rows.Next() {
		s, err := scanSeat(rows)
		if err != nil {
			return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
		}
		out = append(out, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	return out, nil
}

// CompareAndSwapStatus moves a seat to next only if it still carries the
// status and version the caller observed.
//
// Returns:
//   - *domain.Seat: the seat after the update.
//   - error: repository.ErrConflict if the seat changed since it was observed.
func (r *SeatRepo) CompareAndSwapStatus(
	ctx context.Context,
	observed domain.Seat,
	next domain.SeatState,
) (*domain.Seat, error) {
	const op = "postgresrepo.SeatRepo.CompareAndSwapStatus"

	if err := next.Validate(); err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	s, err := scanSeat(r.db.QueryRow(ctx,
		`UPDATE seats
		 SET status = $4, holder = NULLIF($5::text, ''), hold_expires_at = $6, version = version + 1
		 WHERE id = $1 AND status = $2 AND version = $3
		 RETURNING `+seatColumns,
		observed.ID, string(observed.Status), observed.Version,
		string(next.Status), next.Holder, next.HoldExpiry,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%s:%w", op, repository.ErrConflict)
		}
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	return s, nil
}

// Provision inserts the given labels of a group as available seats,
// skipping labels that already exist.
func (r *SeatRepo) Provision(ctx context.Context, group domain.GroupID, labels []string) (int64, error) {
	const op = "postgresrepo.SeatRepo.Provision"

	batch := &pgx.Batch{}
	for _, label := range labels {
		if !domain.ValidLabel(label) {
			return 0, fmt.Errorf("%s:%w", op, domain.ErrInvalidLabel)
		}
		batch.Queue(
			`INSERT INTO seats(id, theater_id, showtime, label, status)
			 VALUES ($1, $2, $3, $4, 'available')
			 ON CONFLICT (theater_id, showtime, label) DO NOTHING`,
			uuid.New(), group.TheaterID, group.Showtime, label,
		)
	}

	br := r.db.SendBatch(ctx, batch)
	defer br.Close()

	var created int64
	for range labels {
		tag, err := br.Exec()
		if err != nil {
			return 0, fmt.Errorf("%s:%w", op, translateDBErr(err))
		}
		created += tag.RowsAffected()
	}

	return created, nil
}

func scanSeat(row pgx.Row) (*domain.Seat, error) {
	var (
		s      domain.Seat
		status string
		expiry *time.Time
	)

	if err := row.Scan(
		&s.ID,
		&s.Group.TheaterID,
		&s.Group.Showtime,
		&s.Label,
		&status,
		&s.Holder,
		&expiry,
		&s.Version,
	); err != nil {
		return nil, err
	}

	s.Status = domain.SeatStatus(status)
	s.HoldExpiry = expiry

	return &s, nil
}
