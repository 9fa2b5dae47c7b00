package repository

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"table-booking/internal/domain/reservation"
	"table-booking/internal/infra"
	"table-booking/internal/infra/repository/converter"
	"table-booking/internal/pkg/pgconv"
	"table-booking/internal/usecase/shared"

	"github.com/google/uuid"
)

const selectReservations = `SELECT ` + converter.ReservationColumns + ` FROM reservations `

type ReservationRepository struct {
	db     DBTX
	logger *slog.Logger
}

func NewReservationRepository(db DBTX, logger *slog.Logger) *ReservationRepository {
	return &ReservationRepository{db: db, logger: logger}
}

func (r *ReservationRepository) Insert(ctx context.Context, res *reservation.Reservation) (uuid.UUID, error) {
	_, err := r.db.Exec(ctx,
		`INSERT INTO reservations (`+converter.ReservationColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`,
		converter.ReservationToArgs(res)...,
	)
	if err != nil {
		return uuid.Nil, WrapPgErr(r.logger, "failed to create reservation", err)
	}
	return res.ID(), nil
}

func (r *ReservationRepository) Get(ctx context.Context, id uuid.UUID) (*reservation.Reservation, error) {
	res, err := converter.ScanReservation(r.db.QueryRow(ctx, selectReservations+`WHERE id = $1`, id))
	if err != nil {
		return nil, WrapPgErr(r.logger, "reservation not found", err)
	}
	return res, nil
}

func (r *ReservationRepository) ListActive(ctx context.Context) ([]*reservation.Reservation, error) {
	return r.list(ctx, "failed to list active reservations",
		`WHERE status = ANY($1) ORDER BY start_time ASC, created_at ASC`, activeStatuses())
}

func (r *ReservationRepository) ListUpcoming(ctx context.Context, now time.Time, limit int) ([]*reservation.Reservation, error) {
	var lim any
	if limit > 0 {
		lim = limit
	}
	return r.list(ctx, "failed to list upcoming reservations",
		`WHERE status = ANY($1) AND start_time > $2 ORDER BY start_time ASC, created_at ASC LIMIT $3`,
		[]string{reservation.StatusPending.String(), reservation.StatusConfirmed.String()}, now.UTC(), lim)
}

func (r *ReservationRepository) ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]*reservation.Reservation, error) {
	return r.list(ctx, "failed to list reservations by customer",
		`WHERE customer_id = $1 ORDER BY start_time DESC, created_at ASC`, customerID)
}

func (r *ReservationRepository) ListByTable(ctx context.Context, tableID uuid.UUID, day *time.Time) ([]*reservation.Reservation, error) {
	if day == nil {
		return r.list(ctx, "failed to list reservations by table",
			`WHERE table_id = $1 ORDER BY start_time ASC, created_at ASC`, tableID)
	}
	return r.list(ctx, "failed to list reservations by table",
		`WHERE table_id = $1 AND start_time >= $2 AND start_time < $3 ORDER BY start_time ASC, created_at ASC`,
		tableID, day.UTC(), day.Add(24*time.Hour).UTC())
}

func (r *ReservationRepository) ListAll(ctx context.Context) ([]*reservation.Reservation, error) {
	return r.list(ctx, "failed to list reservations", `ORDER BY start_time DESC, created_at ASC`)
}

func (r *ReservationRepository) HasOverlap(ctx context.Context, tableID uuid.UUID, slot reservation.TimeSlot) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS (
			SELECT 1 FROM reservations
			WHERE table_id = $1 AND status = ANY($2) AND start_time < $4 AND end_time > $3
		)`,
		tableID, activeStatuses(), slot.Start().UTC(), slot.End().UTC(),
	).Scan(&exists)
	if err != nil {
		return false, WrapPgErr(r.logger, "failed to check reservation overlap", err)
	}
	return exists, nil
}

// SetStatus writes the new status with its lifecycle timestamp. A nil reason
// leaves any stored cancellation reason untouched.
func (r *ReservationRepository) SetStatus(ctx context.Context, id uuid.UUID, tr reservation.Transition) error {
	set := `status = $2, cancellation_reason = COALESCE($3, cancellation_reason)`
	args := []any{id, tr.To.String(), pgconv.StringPtrToPgtype(tr.Reason)}
	if col := tr.To.StampField().Column(); col != "" {
		args = append(args, tr.At.UTC())
		set += `, ` + col + ` = $` + strconv.Itoa(len(args))
	}

	tag, err := r.db.Exec(ctx, `UPDATE reservations SET `+set+` WHERE id = $1`, args...)
	if err != nil {
		return WrapPgErr(r.logger, "failed to update reservation status", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr(r.logger, infra.KindNotFound, "reservation not found", nil)
	}
	return nil
}

func (r *ReservationRepository) Stats(ctx context.Context) (shared.ReservationCounts, error) {
	var c shared.ReservationCounts
	err := r.db.QueryRow(ctx,
		`SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE status = $1),
			COUNT(*) FILTER (WHERE status = $2),
			COUNT(*) FILTER (WHERE status = $3)
		FROM reservations`,
		reservation.StatusCompleted.String(), reservation.StatusCancelled.String(), reservation.StatusNoShow.String(),
	).Scan(&c.Total, &c.Completed, &c.Cancelled, &c.NoShow)
	if err != nil {
		return shared.ReservationCounts{}, WrapPgErr(r.logger, "failed to count reservations", err)
	}
	return c, nil
}

func (r *ReservationRepository) list(ctx context.Context, msg, tail string, args ...any) ([]*reservation.Reservation, error) {
	rows, err := r.db.Query(ctx, selectReservations+tail, args...)
	if err != nil {
		return nil, WrapPgErr(r.logger, msg, err)
	}
	out, err := converter.CollectReservations(rows)
	if err != nil {
		return nil, WrapPgErr(r.logger, msg, err)
	}
	return out, nil
}
