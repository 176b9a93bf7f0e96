package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/kirinyoku/seatres/internal/domain"
)

// SeatRepository is the registry of bookable seats. CompareAndSwapStatus is
// the only way a seat changes.
type SeatRepository interface {
	Get(ctx context.Context, group domain.GroupID, label string) (*domain.Seat, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Seat, error)
	// List returns the seats of a group ordered by label ascending.
	List(ctx context.Context, group domain.GroupID) ([]domain.Seat, error)
	// CompareAndSwapStatus moves observed to next if the stored seat still
	// has observed's status and version. It returns ErrConflict otherwise.
	CompareAndSwapStatus(ctx context.Context, observed domain.Seat, next domain.SeatState) (*domain.Seat, error)
	// Provision inserts missing seats of a group as available and returns
	// the number of rows created.
	Provision(ctx context.Context, group domain.GroupID, labels []string) (int64, error)
}

type BookingRepository interface {
	Create(ctx context.Context, b domain.Booking) error
	Get(ctx context.Context, id uuid.UUID) (*domain.BookingWithSeat, error)
	MarkCancelled(ctx context.Context, id uuid.UUID) error
	// ListConfirmedByHolder returns the holder's confirmed bookings, newest first.
	ListConfirmedByHolder(ctx context.Context, holder string) ([]domain.BookingWithSeat, error)
	ListConfirmedByGroup(ctx context.Context, group domain.GroupID) ([]domain.BookingWithSeat, error)
}

// HolderRepository answers whether an identity is known to the system.
type HolderRepository interface {
	Exists(ctx context.Context, holder string) (bool, error)
	Register(ctx context.Context, holder string) error
}

// Tx exposes the repositories bound to one transaction.
type Tx interface {
	Seats() SeatRepository
	Bookings() BookingRepository
	Holders() HolderRepository
}

// Store is a Tx whose repositories run outside any transaction, plus the
// ability to open one. RunTx commits when fn returns nil and rolls back on
// any error or panic.
type Store interface {
	Tx
	RunTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
}
