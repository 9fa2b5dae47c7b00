package commands

import (
	"context"

	"table-booking/internal/domain/table"
	"table-booking/internal/infra"
	"table-booking/internal/pkg/clock"
	"table-booking/internal/pkg/errs"
	"table-booking/internal/usecase/shared"

	"github.com/google/uuid"
)

type TableCommands interface {
	AddTable(ctx context.Context, p AddTableParams) (*table.Table, error)
	// SeedDefaultTables installs the venue's default floor plan when no table
	// exists yet and reports how many tables it created.
	SeedDefaultTables(ctx context.Context) (int, error)
	SetMaintenance(ctx context.Context, tableID uuid.UUID, enabled bool) (*table.Table, error)
}

// DefaultTables is the floor plan a fresh venue starts with.
var DefaultTables = []AddTableParams{
	{Number: 1, Capacity: 2, Location: "window", Features: []string{"romantic spot"}},
	{Number: 2, Capacity: 4, Location: "main"},
	{Number: 3, Capacity: 4, Location: "main"},
	{Number: 4, Capacity: 6, Location: "main"},
	{Number: 5, Capacity: 8, Location: "VIP", Features: []string{"private room"}},
	{Number: 6, Capacity: 2, Location: "terrace", Features: []string{"outdoors"}},
	{Number: 7, Capacity: 4, Location: "terrace", Features: []string{"outdoors"}},
}

type tableUseCaseImpl struct {
	uow      shared.UnitOfWork
	clock    clock.Clock
	settings Settings
}

func NewTableUseCase(uow shared.UnitOfWork, clk clock.Clock, settings Settings) TableCommands {
	return &tableUseCaseImpl{uow: uow, clock: clk, settings: settings}
}

func (uc *tableUseCaseImpl) AddTable(ctx context.Context, p AddTableParams) (*table.Table, error) {
	tbl, err := uc.build(p)
	if err != nil {
		return nil, err
	}
	err = uc.within(ctx, func(ctx context.Context, tx shared.Tx) error {
		return insertTable(ctx, tx, tbl)
	})
	if err != nil {
		return nil, err
	}
	return tbl, nil
}

func (uc *tableUseCaseImpl) SeedDefaultTables(ctx context.Context) (int, error) {
	tables := make([]*table.Table, 0, len(DefaultTables))
	for _, p := range DefaultTables {
		tbl, err := uc.build(p)
		if err != nil {
			return 0, err
		}
		tables = append(tables, tbl)
	}

	created := 0
	err := uc.within(ctx, func(ctx context.Context, tx shared.Tx) error {
		created = 0
		existing, err := tx.Tables().ListAll(ctx)
		if err != nil {
			return translate(err, errs.ErrTableNotFound)
		}
		if len(existing) > 0 {
			return nil
		}
		for _, tbl := range tables {
			if err := insertTable(ctx, tx, tbl); err != nil {
				return err
			}
			created++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return created, nil
}

// SetMaintenance takes an available table out of service, or returns a table
// in maintenance to service. Reserved and occupied tables are refused.
func (uc *tableUseCaseImpl) SetMaintenance(ctx context.Context, tableID uuid.UUID, enabled bool) (*table.Table, error) {
	var tbl *table.Table
	err := uc.within(ctx, func(ctx context.Context, tx shared.Tx) error {
		if err := tx.LockTable(ctx, tableID); err != nil {
			return translate(err, errs.ErrTableNotFound)
		}
		t, err := tx.Tables().Get(ctx, tableID)
		if err != nil {
			return translate(err, errs.ErrTableNotFound)
		}

		if enabled {
			err = t.EnterMaintenance()
		} else {
			err = t.LeaveMaintenance()
		}
		if err != nil {
			return translate(err, errs.ErrTableNotFound)
		}

		if err := tx.Tables().SetStatus(ctx, t.ID(), t.Status(), t.CurrentReservationID()); err != nil {
			return translate(err, errs.ErrTableNotFound)
		}
		tbl = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	return tbl, nil
}

func (uc *tableUseCaseImpl) build(p AddTableParams) (*table.Table, error) {
	tbl, err := table.New(p.Number, p.Capacity, p.Location, uc.clock.Now(), p.Features...)
	if err != nil {
		return nil, translate(err, errs.ErrTableNotFound)
	}
	if p.MinDuration > 0 || p.MaxDuration > 0 {
		minDur, maxDur := p.MinDuration, p.MaxDuration
		if minDur == 0 {
			minDur = table.DefaultMinDuration
		}
		if maxDur == 0 {
			maxDur = table.DefaultMaxDuration
		}
		if err := tbl.SetDurationLimits(minDur, maxDur); err != nil {
			return nil, translate(err, errs.ErrTableNotFound)
		}
	}
	return tbl, nil
}

func (uc *tableUseCaseImpl) within(ctx context.Context, fn func(ctx context.Context, tx shared.Tx) error) error {
	return within(ctx, uc.uow, uc.settings.OpTimeout, fn)
}

func insertTable(ctx context.Context, tx shared.Tx, tbl *table.Table) error {
	if _, err := tx.Tables().Insert(ctx, tbl); err != nil {
		if infra.IsKind(err, infra.KindDuplicateKey) {
			return errs.Mark(err, errs.ErrDuplicateTable)
		}
		return translate(err, errs.ErrTableNotFound)
	}
	return nil
}
