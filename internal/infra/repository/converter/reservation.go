package converter

import (
	"table-booking/internal/domain/reservation"
	"table-booking/internal/pkg/pgconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const ReservationColumns = `id, customer_id, table_id, start_time, end_time, party_size, status,
	special_requests, source, created_at, confirmed_at, seated_at, completed_at, cancelled_at,
	no_show_at, cancellation_reason`

// ReservationToArgs returns the values for ReservationColumns, in order.
func ReservationToArgs(res *reservation.Reservation) []any {
	rec := res.Record()
	return []any{
		rec.ID,
		rec.CustomerID,
		pgconv.UUIDPtrToPgtype(rec.TableID),
		rec.Start.UTC(),
		rec.End.UTC(),
		rec.PartySize,
		rec.Status.String(),
		pgconv.NonNilStrings(rec.SpecialRequests),
		rec.Source.String(),
		rec.CreatedAt.UTC(),
		pgconv.TimePtrToPgtype(rec.ConfirmedAt),
		pgconv.TimePtrToPgtype(rec.SeatedAt),
		pgconv.TimePtrToPgtype(rec.CompletedAt),
		pgconv.TimePtrToPgtype(rec.CancelledAt),
		pgconv.TimePtrToPgtype(rec.NoShowAt),
		pgconv.StringPtrToPgtype(rec.CancellationReason),
	}
}

func ScanReservation(row pgx.Row) (*reservation.Reservation, error) {
	var (
		rec            reservation.Record
		tableID        pgtype.UUID
		status, source string
		reason         pgtype.Text

		confirmedAt, seatedAt, completedAt, cancelledAt, noShowAt pgtype.Timestamptz
	)
	err := row.Scan(
		&rec.ID, &rec.CustomerID, &tableID, &rec.Start, &rec.End, &rec.PartySize, &status,
		&rec.SpecialRequests, &source, &rec.CreatedAt, &confirmedAt, &seatedAt, &completedAt,
		&cancelledAt, &noShowAt, &reason,
	)
	if err != nil {
		return nil, err
	}

	if rec.Status, err = reservation.ParseStatus(status); err != nil {
		return nil, err
	}
	if rec.Source, err = reservation.ParseSource(source); err != nil {
		return nil, err
	}
	rec.TableID = pgconv.UUIDPtrFromPgtype(tableID)
	rec.Start = rec.Start.UTC()
	rec.End = rec.End.UTC()
	rec.CreatedAt = rec.CreatedAt.UTC()
	rec.ConfirmedAt = pgconv.TimePtrFromPgtype(confirmedAt)
	rec.SeatedAt = pgconv.TimePtrFromPgtype(seatedAt)
	rec.CompletedAt = pgconv.TimePtrFromPgtype(completedAt)
	rec.CancelledAt = pgconv.TimePtrFromPgtype(cancelledAt)
	rec.NoShowAt = pgconv.TimePtrFromPgtype(noShowAt)
	rec.CancellationReason = pgconv.StringPtrFromPgtype(reason)
	return reservation.Reconstruct(rec), nil
}

func CollectReservations(rows pgx.Rows) ([]*reservation.Reservation, error) {
	defer rows.Close()
	out := make([]*reservation.Reservation, 0)
	for rows.Next() {
		r, err := ScanReservation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
