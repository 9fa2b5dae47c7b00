package gormstore

import (
	"context"
	"errors"
	"strings"
	"time"

	"table-booking/internal/domain/customer"
	"table-booking/internal/domain/reservation"
	"table-booking/internal/domain/table"
	"table-booking/internal/usecase/shared"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var activeStatuses = []string{
	reservation.StatusPending.String(),
	reservation.StatusConfirmed.String(),
	reservation.StatusSeated.String(),
}

// ------------------------------------------------------------
// tables
// ------------------------------------------------------------

type tableRepository struct{ tx *gormTx }

func (r *tableRepository) Insert(ctx context.Context, t *table.Table) (uuid.UUID, error) {
	if err := r.tx.writable(); err != nil {
		return uuid.Nil, err
	}
	m := tableToModel(t)
	if err := r.tx.db.WithContext(ctx).Create(&m).Error; err != nil {
		return uuid.Nil, r.tx.wrap("insert table", err)
	}
	return t.ID(), nil
}

func (r *tableRepository) Get(ctx context.Context, id uuid.UUID) (*table.Table, error) {
	var m tableModel
	if err := r.tx.db.WithContext(ctx).Where("id = ?", id.String()).Take(&m).Error; err != nil {
		return nil, r.tx.wrap("get table", err)
	}
	return r.fromModel(m)
}

func (r *tableRepository) GetByNumber(ctx context.Context, number int) (*table.Table, error) {
	var m tableModel
	if err := r.tx.db.WithContext(ctx).Where("number = ?", number).Take(&m).Error; err != nil {
		return nil, r.tx.wrap("get table by number", err)
	}
	return r.fromModel(m)
}

func (r *tableRepository) ListAll(ctx context.Context) ([]*table.Table, error) {
	var ms []tableModel
	if err := r.tx.db.WithContext(ctx).Order("number ASC").Find(&ms).Error; err != nil {
		return nil, r.tx.wrap("list tables", err)
	}
	return r.fromModels(ms)
}

func (r *tableRepository) FindAvailable(ctx context.Context, minCapacity int, slot reservation.TimeSlot) ([]*table.Table, error) {
	db := r.tx.db.WithContext(ctx)
	busy := db.Session(&gorm.Session{NewDB: true}).
		Model(&reservationModel{}).
		Select("1").
		Where("reservations.table_id = venue_tables.id").
		Where("reservations.status IN ?", activeStatuses).
		Where("reservations.start_time < ? AND reservations.end_time > ?", slot.End().UTC(), slot.Start().UTC())

	var ms []tableModel
	err := db.
		Where("status = ? AND capacity >= ?", table.StatusAvailable.String(), minCapacity).
		Where("NOT EXISTS (?)", busy).
		Order("capacity ASC").Order("number ASC").
		Find(&ms).Error
	if err != nil {
		return nil, r.tx.wrap("find available tables", err)
	}
	return r.fromModels(ms)
}

func (r *tableRepository) SetStatus(ctx context.Context, id uuid.UUID, status table.Status, holder *uuid.UUID) error {
	if err := r.tx.writable(); err != nil {
		return err
	}
	if !status.HoldsReservation() {
		holder = nil
	}
	res := r.tx.db.WithContext(ctx).Model(&tableModel{}).
		Where("id = ?", id.String()).
		Updates(map[string]any{
			"status":                 status.String(),
			"current_reservation_id": uuidPtrToString(holder),
		})
	if res.Error != nil {
		return r.tx.wrap("set table status", res.Error)
	}
	if res.RowsAffected == 0 {
		return r.tx.ensureExists(ctx, &tableModel{}, id, "set table status")
	}
	return nil
}

func (r *tableRepository) fromModel(m tableModel) (*table.Table, error) {
	t, err := tableFromModel(m)
	if err != nil {
		return nil, r.tx.wrap("decode table", err)
	}
	return t, nil
}

func (r *tableRepository) fromModels(ms []tableModel) ([]*table.Table, error) {
	ts, err := tablesFromModels(ms)
	if err != nil {
		return nil, r.tx.wrap("decode tables", err)
	}
	return ts, nil
}

// ------------------------------------------------------------
// customers
// ------------------------------------------------------------

type customerRepository struct{ tx *gormTx }

func (r *customerRepository) UpsertByPhone(ctx context.Context, contact customer.Contact, now time.Time) (*customer.Customer, error) {
	if err := r.tx.writable(); err != nil {
		return nil, err
	}
	db := r.tx.db.WithContext(ctx)
	contact.Phone = strings.TrimSpace(contact.Phone)

	var m customerModel
	err := db.Where("phone = ?", contact.Phone).Take(&m).Error
	switch {
	case err == nil:
		existing, derr := customerFromModel(m)
		if derr != nil {
			return nil, r.tx.wrap("decode customer", derr)
		}
		if existing.Merge(contact) {
			if err := db.Model(&customerModel{}).Where("id = ?", m.ID).
				Updates(map[string]any{"email": existing.Email(), "external_id": existing.ExternalID()}).Error; err != nil {
				return nil, r.tx.wrap("backfill customer contact", err)
			}
		}
		return existing, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		c, derr := customer.FromContact(contact, now.UTC())
		if derr != nil {
			return nil, derr
		}
		created := customerToModel(c)
		if err := db.Create(&created).Error; err != nil {
			return nil, r.tx.wrap("insert customer", err)
		}
		return c, nil
	default:
		return nil, r.tx.wrap("find customer by phone", err)
	}
}

func (r *customerRepository) Get(ctx context.Context, id uuid.UUID) (*customer.Customer, error) {
	var m customerModel
	if err := r.tx.db.WithContext(ctx).Where("id = ?", id.String()).Take(&m).Error; err != nil {
		return nil, r.tx.wrap("get customer", err)
	}
	c, err := customerFromModel(m)
	if err != nil {
		return nil, r.tx.wrap("decode customer", err)
	}
	return c, nil
}

func (r *customerRepository) IncrementVisits(ctx context.Context, id uuid.UUID) error {
	if err := r.tx.writable(); err != nil {
		return err
	}
	res := r.tx.db.WithContext(ctx).Model(&customerModel{}).
		Where("id = ?", id.String()).
		Update("visit_count", gorm.Expr("visit_count + ?", 1))
	if res.Error != nil {
		return r.tx.wrap("increment visits", res.Error)
	}
	if res.RowsAffected == 0 {
		return r.tx.wrap("increment visits", gorm.ErrRecordNotFound)
	}
	return nil
}

// ------------------------------------------------------------
// reservations
// ------------------------------------------------------------

type reservationRepository struct{ tx *gormTx }

func (r *reservationRepository) Insert(ctx context.Context, res *reservation.Reservation) (uuid.UUID, error) {
	if err := r.tx.writable(); err != nil {
		return uuid.Nil, err
	}
	m := reservationToModel(res)
	if err := r.tx.db.WithContext(ctx).Omit(clause.Associations).Create(&m).Error; err != nil {
		return uuid.Nil, r.tx.wrap("insert reservation", err)
	}
	return res.ID(), nil
}

func (r *reservationRepository) Get(ctx context.Context, id uuid.UUID) (*reservation.Reservation, error) {
	var m reservationModel
	if err := r.tx.db.WithContext(ctx).Where("id = ?", id.String()).Take(&m).Error; err != nil {
		return nil, r.tx.wrap("get reservation", err)
	}
	out, err := reservationFromModel(m)
	if err != nil {
		return nil, r.tx.wrap("decode reservation", err)
	}
	return out, nil
}

func (r *reservationRepository) ListActive(ctx context.Context) ([]*reservation.Reservation, error) {
	return r.list(ctx, "list active reservations", func(db *gorm.DB) *gorm.DB {
		return db.Where("status IN ?", activeStatuses).Order("start_time ASC")
	})
}

func (r *reservationRepository) ListUpcoming(ctx context.Context, now time.Time, limit int) ([]*reservation.Reservation, error) {
	return r.list(ctx, "list upcoming reservations", func(db *gorm.DB) *gorm.DB {
		db = db.Where("status IN ? AND start_time > ?",
			[]string{reservation.StatusPending.String(), reservation.StatusConfirmed.String()}, now.UTC()).
			Order("start_time ASC")
		if limit > 0 {
			db = db.Limit(limit)
		}
		return db
	})
}

func (r *reservationRepository) ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]*reservation.Reservation, error) {
	return r.list(ctx, "list reservations by customer", func(db *gorm.DB) *gorm.DB {
		return db.Where("customer_id = ?", customerID.String()).Order("start_time DESC")
	})
}

func (r *reservationRepository) ListByTable(ctx context.Context, tableID uuid.UUID, day *time.Time) ([]*reservation.Reservation, error) {
	return r.list(ctx, "list reservations by table", func(db *gorm.DB) *gorm.DB {
		db = db.Where("table_id = ?", tableID.String())
		if day != nil {
			db = db.Where("start_time >= ? AND start_time < ?", day.UTC(), day.Add(24*time.Hour).UTC())
		}
		return db.Order("start_time ASC")
	})
}

func (r *reservationRepository) ListAll(ctx context.Context) ([]*reservation.Reservation, error) {
	return r.list(ctx, "list reservations", func(db *gorm.DB) *gorm.DB {
		return db.Order("start_time DESC")
	})
}

func (r *reservationRepository) HasOverlap(ctx context.Context, tableID uuid.UUID, slot reservation.TimeSlot) (bool, error) {
	var n int64
	err := r.tx.db.WithContext(ctx).Model(&reservationModel{}).
		Where("table_id = ? AND status IN ?", tableID.String(), activeStatuses).
		Where("start_time < ? AND end_time > ?", slot.End().UTC(), slot.Start().UTC()).
		Count(&n).Error
	if err != nil {
		return false, r.tx.wrap("check reservation overlap", err)
	}
	return n > 0, nil
}

func (r *reservationRepository) SetStatus(ctx context.Context, id uuid.UUID, tr reservation.Transition) error {
	if err := r.tx.writable(); err != nil {
		return err
	}
	values := map[string]any{"status": tr.To.String()}
	if col := tr.To.StampField().Column(); col != "" {
		values[col] = tr.At.UTC()
	}
	if tr.Reason != nil {
		values["cancellation_reason"] = *tr.Reason
	}

	res := r.tx.db.WithContext(ctx).Model(&reservationModel{}).Where("id = ?", id.String()).Updates(values)
	if res.Error != nil {
		return r.tx.wrap("set reservation status", res.Error)
	}
	if res.RowsAffected == 0 {
		return r.tx.ensureExists(ctx, &reservationModel{}, id, "set reservation status")
	}
	return nil
}

func (r *reservationRepository) Stats(ctx context.Context) (shared.ReservationCounts, error) {
	var rows []struct {
		Status string
		N      int
	}
	err := r.tx.db.WithContext(ctx).Model(&reservationModel{}).
		Select("status, COUNT(*) AS n").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return shared.ReservationCounts{}, r.tx.wrap("reservation stats", err)
	}

	var c shared.ReservationCounts
	for _, row := range rows {
		c.Total += row.N
		switch reservation.Status(row.Status) {
		case reservation.StatusCompleted:
			c.Completed = row.N
		case reservation.StatusCancelled:
			c.Cancelled = row.N
		case reservation.StatusNoShow:
			c.NoShow = row.N
		case reservation.StatusPending, reservation.StatusConfirmed, reservation.StatusSeated:
		}
	}
	return c, nil
}

func (r *reservationRepository) list(ctx context.Context, op string, scope func(*gorm.DB) *gorm.DB) ([]*reservation.Reservation, error) {
	var ms []reservationModel
	if err := scope(r.tx.db.WithContext(ctx)).Order("created_at ASC").Find(&ms).Error; err != nil {
		return nil, r.tx.wrap(op, err)
	}
	out, err := reservationsFromModels(ms)
	if err != nil {
		return nil, r.tx.wrap("decode reservations", err)
	}
	return out, nil
}

// ensureExists distinguishes a missing row from an update that changed
// nothing; MySQL reports zero affected rows for both.
func (t *gormTx) ensureExists(ctx context.Context, model any, id uuid.UUID, op string) error {
	var n int64
	if err := t.db.WithContext(ctx).Model(model).Where("id = ?", id.String()).Count(&n).Error; err != nil {
		return t.wrap(op, err)
	}
	if n == 0 {
		return t.wrap(op, gorm.ErrRecordNotFound)
	}
	return nil
}
