// Package memory is the in-process backend. A single writer lock serializes
// read-write transactions; each one works on a copy of the state that is
// swapped in only when fn succeeds.
package memory

import (
	"context"
	"log/slog"
	"sync"

	"table-booking/internal/domain/customer"
	"table-booking/internal/domain/reservation"
	"table-booking/internal/domain/table"
	"table-booking/internal/infra"
	"table-booking/internal/usecase/shared"

	"github.com/google/uuid"
)

type UoW struct {
	mu     sync.RWMutex
	st     *state
	logger *slog.Logger
}

func NewUoW(logger *slog.Logger) *UoW {
	if logger == nil {
		logger = slog.Default()
	}
	return &UoW{st: newState(), logger: logger}
}

func (u *UoW) Within(ctx context.Context, fn func(ctx context.Context, tx shared.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	u.mu.Lock()
	defer u.mu.Unlock()

	work := u.st.clone()
	if err := fn(ctx, &memTx{st: work, logger: u.logger}); err != nil {
		return err
	}
	// A request cancelled mid-flight must not commit.
	if err := ctx.Err(); err != nil {
		return err
	}
	u.st = work
	return nil
}

func (u *UoW) WithinReadOnly(ctx context.Context, fn func(ctx context.Context, tx shared.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	u.mu.RLock()
	defer u.mu.RUnlock()

	return fn(ctx, &memTx{st: u.st, logger: u.logger, readOnly: true})
}

func (u *UoW) Migrate(context.Context) error { return nil }

func (u *UoW) Close() error { return nil }

type state struct {
	tables       map[uuid.UUID]*table.Table
	customers    map[uuid.UUID]*customer.Customer
	reservations map[uuid.UUID]*reservation.Reservation
}

func newState() *state {
	return &state{
		tables:       make(map[uuid.UUID]*table.Table),
		customers:    make(map[uuid.UUID]*customer.Customer),
		reservations: make(map[uuid.UUID]*reservation.Reservation),
	}
}

// clone copies the maps; stored entities are never mutated in place, so
// sharing the pointers between generations is safe.
func (s *state) clone() *state {
	c := newState()
	for k, v := range s.tables {
		c.tables[k] = v
	}
	for k, v := range s.customers {
		c.customers[k] = v
	}
	for k, v := range s.reservations {
		c.reservations[k] = v
	}
	return c
}

type memTx struct {
	st       *state
	logger   *slog.Logger
	readOnly bool
}

func (t *memTx) Tables() shared.TableRepository {
	return &tableRepo{tx: t}
}

func (t *memTx) Customers() shared.CustomerRepository {
	return &customerRepo{tx: t}
}

func (t *memTx) Reservations() shared.ReservationRepository {
	return &reservationRepo{tx: t}
}

// LockTable only checks existence; the writer lock already serializes.
func (t *memTx) LockTable(_ context.Context, tableID uuid.UUID) error {
	if _, ok := t.st.tables[tableID]; !ok {
		return infra.WrapRepoErr(t.logger, infra.KindNotFound, "table not found", nil)
	}
	return nil
}

func (t *memTx) writable() error {
	if t.readOnly {
		return infra.WrapRepoErr(t.logger, infra.KindDBFailure, "write in read-only transaction", nil)
	}
	return nil
}
