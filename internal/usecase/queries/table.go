package queries

import (
	"context"
	"time"

	"table-booking/internal/domain/availability"
	"table-booking/internal/domain/reservation"
	"table-booking/internal/domain/table"
	"table-booking/internal/pkg/errs"
	"table-booking/internal/usecase/shared"
)

type TableQueries interface {
	ListTables(ctx context.Context) ([]*table.Table, error)
	// FindCandidates lists the tables free for the window, smallest first.
	FindCandidates(ctx context.Context, partySize int, start time.Time, duration time.Duration) ([]*table.Table, error)
	// FindBestTable prefers an exact-capacity candidate over a larger one.
	FindBestTable(ctx context.Context, partySize int, start time.Time, duration time.Duration) (*table.Table, error)
}

type tableQueriesImpl struct {
	uow             shared.UnitOfWork
	opTimeout       time.Duration
	defaultDuration time.Duration
}

func NewTableQueries(uow shared.UnitOfWork, opTimeout, defaultDuration time.Duration) TableQueries {
	return &tableQueriesImpl{uow: uow, opTimeout: opTimeout, defaultDuration: defaultDuration}
}

func (q *tableQueriesImpl) ListTables(ctx context.Context) ([]*table.Table, error) {
	var tables []*table.Table
	err := readOnly(ctx, q.uow, q.opTimeout, func(ctx context.Context, tx shared.Tx) error {
		var err error
		tables, err = tx.Tables().ListAll(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return tables, nil
}

func (q *tableQueriesImpl) FindCandidates(ctx context.Context, partySize int, start time.Time, duration time.Duration) ([]*table.Table, error) {
	if partySize < 1 {
		return nil, errs.ErrInvalidPartySize
	}
	if duration == 0 {
		duration = q.defaultDuration
	}
	slot, err := reservation.NewTimeSlot(start, duration)
	switch {
	case errs.Is(err, reservation.ErrInvalidDuration):
		return nil, errs.Mark(err, errs.ErrInvalidDuration)
	case err != nil:
		return nil, errs.Mark(err, errs.ErrValidation)
	}

	var tables []*table.Table
	err = readOnly(ctx, q.uow, q.opTimeout, func(ctx context.Context, tx shared.Tx) error {
		var err error
		tables, err = tx.Tables().FindAvailable(ctx, partySize, slot)
		return err
	})
	if err != nil {
		return nil, err
	}
	return tables, nil
}

func (q *tableQueriesImpl) FindBestTable(ctx context.Context, partySize int, start time.Time, duration time.Duration) (*table.Table, error) {
	candidates, err := q.FindCandidates(ctx, partySize, start, duration)
	if err != nil {
		return nil, err
	}
	best, ok := availability.PickBest(candidates, partySize)
	if !ok {
		return nil, errs.ErrNoTableAvailable
	}
	return best, nil
}
