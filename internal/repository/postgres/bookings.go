package postgresrepo

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/kirinyoku/seatres/internal/domain"
	"github.com/kirinyoku/seatres/internal/repository"
)

const bookingColumns = `b.id, b.seat_id, b.holder, b.status, b.booked_at, s.theater_id, s.showtime, s.label`

type BookingRepo struct {
	db DB
}

// Create inserts a booking row.
//
// Returns:
//   - error: repository.ErrConflict if the seat already has a confirmed booking.
func (r *BookingRepo) Create(ctx context.Context, b domain.Booking) error {
	const op = "postgresrepo.BookingRepo.Create"

	if _, err := r.db.Exec(ctx,
		`INSERT INTO bookings(id, seat_id, holder, status, booked_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		b.ID, b.SeatID, b.Holder, string(b.Status), b.BookedAt,
	); err != nil {
		return fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	return nil
}

func (r *BookingRepo) Get(ctx context.Context, id uuid.UUID) (*domain.BookingWithSeat, error) {
	const op = "postgresrepo.BookingRepo.Get"

	bw, err := scanBooking(r.db.QueryRow(ctx,
		`SELECT `+bookingColumns+`
		 FROM bookings b
		 JOIN seats s ON s.id = b.seat_id
		 WHERE b.id = $1`,
		id,
	))
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	return bw, nil
}

// MarkCancelled flips a confirmed booking to cancelled.
//
// Returns:
//   - error: repository.ErrNotFound if there is no confirmed booking with that id.
func (r *BookingRepo) MarkCancelled(ctx context.Context, id uuid.UUID) error {
	const op = "postgresrepo.BookingRepo.MarkCancelled"

	tag, err := r.db.Exec(ctx,
		`UPDATE bookings SET status = 'cancelled'
		 WHERE id = $1 AND status = 'confirmed'`,
		id,
	)
	if err != nil {
		return fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s:%w", op, repository.ErrNotFound)
	}

	return nil
}

func (r *BookingRepo) ListConfirmedByHolder(ctx context.Context, holder string) ([]domain.BookingWithSeat, error) {
	const op = "postgresrepo.BookingRepo.ListConfirmedByHolder"

	rows, err := r.db.Query(ctx,
		`SELECT `+bookingColumns+`
		 FROM bookings b
		 JOIN seats s ON s.id = b.seat_id
		 WHERE b.holder = $1 AND b.status = 'confirmed'
		 ORDER BY b.booked_at DESC, s.label`,
		holder,
	)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	out, err := collectBookings(rows)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return out, nil
}

func (r *BookingRepo) ListConfirmedByGroup(ctx context.Context, group domain.GroupID) ([]domain.BookingWithSeat, error) {
	const op = "postgresrepo.BookingRepo.ListConfirmedByGroup"

	rows, err := r.db.Query(ctx,
		`SELECT `+bookingColumns+`
		 FROM bookings b
		 JOIN seats s ON s.id = b.seat_id
		 WHERE s.theater_id = $1 AND s.showtime = $2 AND b.status = 'confirmed'
		 ORDER BY b.booked_at DESC, s.label`,
		group.TheaterID, group.Showtime,
	)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	out, err := collectBookings(rows)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return out, nil
}

func collectBookings(rows pgx.Rows) ([]domain.BookingWithSeat, error) {
	defer rows.Close()

	var out []domain.BookingWithSeat
	for rows.Next() {
		bw, err := scanBooking(rows)
		if err != nil {
			return nil, translateDBErr(err)
		}
		out = append(out, *bw)
	}
	if err := rows.Err(); err != nil {
		return nil, translateDBErr(err)
	}

	return out, nil
}

func scanBooking(row pgx.Row) (*domain.BookingWithSeat, error) {
	var (
		bw     domain.BookingWithSeat
		status string
	)

	if err := row.Scan(
		&bw.ID,
		&bw.SeatID,
		&bw.Holder,
		&status,
		&bw.BookedAt,
		&bw.Group.TheaterID,
		&bw.Group.Showtime,
		&bw.Label,
	); err != nil {
		return nil, err
	}

	bw.Status = domain.BookingStatus(status)

	return &bw, nil
}

type HolderRepo struct {
	db DB
}

func (r *HolderRepo) Exists(ctx context.Context, holder string) (bool, error) {
	const op = "postgresrepo.HolderRepo.Exists"

	var ok bool
	if err := r.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM holders WHERE id = $1)`,
		holder,
	).Scan(&ok); err != nil {
		return false, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	return ok, nil
}

func (r *HolderRepo) Register(ctx context.Context, holder string) error {
	const op = "postgresrepo.HolderRepo.Register"

	if _, err := r.db.Exec(ctx,
		`INSERT INTO holders(id) VALUES ($1) ON CONFLICT DO NOTHING`,
		holder,
	); err != nil {
		return fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	return nil
}
