package repository

import (
	"context"
	"log/slog"

	"table-booking/internal/domain/reservation"
	"table-booking/internal/domain/table"
	"table-booking/internal/infra"
	"table-booking/internal/infra/repository/converter"
	"table-booking/internal/pkg/pgconv"

	"github.com/google/uuid"
)

type TableRepository struct {
	db     DBTX
	logger *slog.Logger
}

func NewTableRepository(db DBTX, logger *slog.Logger) *TableRepository {
	return &TableRepository{db: db, logger: logger}
}

func (r *TableRepository) Insert(ctx context.Context, t *table.Table) (uuid.UUID, error) {
	_, err := r.db.Exec(ctx,
		`INSERT INTO venue_tables (`+converter.TableColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		converter.TableToArgs(t)...,
	)
	if err != nil {
		return uuid.Nil, WrapPgErr(r.logger, "failed to insert table", err)
	}
	return t.ID(), nil
}

func (r *TableRepository) Get(ctx context.Context, id uuid.UUID) (*table.Table, error) {
	t, err := converter.ScanTable(r.db.QueryRow(ctx,
		`SELECT `+converter.TableColumns+` FROM venue_tables WHERE id = $1`, id))
	if err != nil {
		return nil, WrapPgErr(r.logger, "table not found", err)
	}
	return t, nil
}

func (r *TableRepository) GetByNumber(ctx context.Context, number int) (*table.Table, error) {
	t, err := converter.ScanTable(r.db.QueryRow(ctx,
		`SELECT `+converter.TableColumns+` FROM venue_tables WHERE number = $1`, number))
	if err != nil {
		return nil, WrapPgErr(r.logger, "table not found", err)
	}
	return t, nil
}

func (r *TableRepository) ListAll(ctx context.Context) ([]*table.Table, error) {
	rows, err := r.db.Query(ctx, `SELECT `+converter.TableColumns+` FROM venue_tables ORDER BY number ASC`)
	if err != nil {
		return nil, WrapPgErr(r.logger, "failed to list tables", err)
	}
	tables, err := converter.CollectTables(rows)
	if err != nil {
		return nil, WrapPgErr(r.logger, "failed to scan tables", err)
	}
	return tables, nil
}

// FindAvailable returns available tables seating minCapacity with no active
// reservation overlapping slot, smallest fit first.
func (r *TableRepository) FindAvailable(ctx context.Context, minCapacity int, slot reservation.TimeSlot) ([]*table.Table, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+converter.TableColumns+`
		FROM venue_tables t
		WHERE t.status = $1
		  AND t.capacity >= $2
		  AND NOT EXISTS (
		    SELECT 1 FROM reservations r
		    WHERE r.table_id = t.id
		      AND r.status = ANY($3)
		      AND r.start_time < $5
		      AND r.end_time > $4
		  )
		ORDER BY t.capacity ASC, t.number ASC`,
		table.StatusAvailable.String(), minCapacity, activeStatuses(),
		slot.Start().UTC(), slot.End().UTC(),
	)
	if err != nil {
		return nil, WrapPgErr(r.logger, "failed to find available tables", err)
	}
	tables, err := converter.CollectTables(rows)
	if err != nil {
		return nil, WrapPgErr(r.logger, "failed to scan tables", err)
	}
	return tables, nil
}

func (r *TableRepository) SetStatus(ctx context.Context, id uuid.UUID, status table.Status, holder *uuid.UUID) error {
	if !status.HoldsReservation() {
		holder = nil
	}
	tag, err := r.db.Exec(ctx,
		`UPDATE venue_tables SET status = $2, current_reservation_id = $3 WHERE id = $1`,
		id, status.String(), pgconv.UUIDPtrToPgtype(holder),
	)
	if err != nil {
		return WrapPgErr(r.logger, "failed to update table status", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr(r.logger, infra.KindNotFound, "table not found", nil)
	}
	return nil
}

// activeStatuses are the reservation states that keep a table held.
func activeStatuses() []string {
	out := make([]string, 0, len(reservation.Statuses))
	for _, s := range reservation.Statuses {
		if s.IsActive() {
			out = append(out, s.String())
		}
	}
	return out
}
