package converter

import (
	"time"

	"table-booking/internal/domain/table"
	"table-booking/internal/pkg/pgconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const TableColumns = `id, number, capacity, location, status, current_reservation_id, features,
	min_duration_minutes, max_duration_minutes, created_at`

// TableToArgs returns the values for TableColumns, in order.
func TableToArgs(t *table.Table) []any {
	return []any{
		t.ID(),
		t.Number(),
		t.Capacity(),
		t.Location(),
		t.Status().String(),
		pgconv.UUIDPtrToPgtype(t.CurrentReservationID()),
		pgconv.NonNilStrings(t.Features()),
		pgconv.Minutes(t.MinDuration()),
		pgconv.Minutes(t.MaxDuration()),
		t.CreatedAt().UTC(),
	}
}

func ScanTable(row pgx.Row) (*table.Table, error) {
	var (
		id                     uuid.UUID
		number, capacity       int
		location, status       string
		holder                 pgtype.UUID
		features               []string
		minMinutes, maxMinutes int
		createdAt              time.Time
	)
	if err := row.Scan(&id, &number, &capacity, &location, &status, &holder, &features, &minMinutes, &maxMinutes, &createdAt); err != nil {
		return nil, err
	}
	st, err := table.ParseStatus(status)
	if err != nil {
		return nil, err
	}
	return table.Reconstruct(
		id, number, capacity, location, st, pgconv.UUIDPtrFromPgtype(holder), features,
		pgconv.FromMinutes(minMinutes), pgconv.FromMinutes(maxMinutes),
		createdAt.UTC(),
	), nil
}

func CollectTables(rows pgx.Rows) ([]*table.Table, error) {
	defer rows.Close()
	out := make([]*table.Table, 0)
	for rows.Next() {
		t, err := ScanTable(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
