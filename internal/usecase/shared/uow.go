package shared

import (
	"context"
	"time"

	"table-booking/internal/domain/customer"
	"table-booking/internal/domain/reservation"
	"table-booking/internal/domain/table"

	"github.com/google/uuid"
)

// UnitOfWork is the storage contract every backend implements.
type UnitOfWork interface {
	// Within: atomic read-write transaction. Backends re-run fn on lock
	// contention or serialization failure, so fn must be safe to repeat.
	Within(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
	// WithinReadOnly: consistent snapshot for multi-query reads
	WithinReadOnly(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
	// Migrate creates or upgrades the schema; no-op for backends without one.
	Migrate(ctx context.Context) error
	Close() error
}

type Tx interface {
	Tables() TableRepository
	Customers() CustomerRepository
	Reservations() ReservationRepository
	// LockTable serializes check-then-insert on one table until the transaction ends.
	LockTable(ctx context.Context, tableID uuid.UUID) error
}

type TableRepository interface {
	Insert(ctx context.Context, t *table.Table) (uuid.UUID, error)
	Get(ctx context.Context, id uuid.UUID) (*table.Table, error)
	GetByNumber(ctx context.Context, number int) (*table.Table, error)
	ListAll(ctx context.Context) ([]*table.Table, error)
	// FindAvailable: available tables seating minCapacity with no active
	// reservation overlapping slot, smallest capacity first.
	FindAvailable(ctx context.Context, minCapacity int, slot reservation.TimeSlot) ([]*table.Table, error)
	// SetStatus writes status and holder together; holder is nil for available and maintenance.
	SetStatus(ctx context.Context, id uuid.UUID, status table.Status, holder *uuid.UUID) error
}

type CustomerRepository interface {
	// UpsertByPhone returns the customer with this phone, backfilling a
	// missing email or external id, or creates one stamped with now.
	// An existing customer is returned even when contact.Name is empty.
	UpsertByPhone(ctx context.Context, contact customer.Contact, now time.Time) (*customer.Customer, error)
	Get(ctx context.Context, id uuid.UUID) (*customer.Customer, error)
	IncrementVisits(ctx context.Context, id uuid.UUID) error
}

type ReservationRepository interface {
	Insert(ctx context.Context, r *reservation.Reservation) (uuid.UUID, error)
	Get(ctx context.Context, id uuid.UUID) (*reservation.Reservation, error)
	// ListActive: pending, confirmed and seated, start ascending
	ListActive(ctx context.Context) ([]*reservation.Reservation, error)
	// ListUpcoming: pending or confirmed starting after now, start ascending
	ListUpcoming(ctx context.Context, now time.Time, limit int) ([]*reservation.Reservation, error)
	// ListByCustomer: full history, start descending
	ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]*reservation.Reservation, error)
	// ListByTable: start ascending; day restricts to [day, day+24h)
	ListByTable(ctx context.Context, tableID uuid.UUID, day *time.Time) ([]*reservation.Reservation, error)
	// ListAll: full history, start descending
	ListAll(ctx context.Context) ([]*reservation.Reservation, error)
	HasOverlap(ctx context.Context, tableID uuid.UUID, slot reservation.TimeSlot) (bool, error)
	SetStatus(ctx context.Context, id uuid.UUID, tr reservation.Transition) error
	Stats(ctx context.Context) (ReservationCounts, error)
}

type ReservationCounts struct {
	Total     int
	Completed int
	Cancelled int
	NoShow    int
}
