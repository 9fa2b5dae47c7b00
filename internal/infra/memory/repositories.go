package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"table-booking/internal/domain/availability"
	"table-booking/internal/domain/customer"
	"table-booking/internal/domain/reservation"
	"table-booking/internal/domain/table"
	"table-booking/internal/infra"
	"table-booking/internal/pkg/patch"
	"table-booking/internal/usecase/shared"

	"github.com/google/uuid"
)

// ------------------------------------------------------------
// tables
// ------------------------------------------------------------

type tableRepo struct{ tx *memTx }

func (r *tableRepo) Insert(_ context.Context, t *table.Table) (uuid.UUID, error) {
	if err := r.tx.writable(); err != nil {
		return uuid.Nil, err
	}
	for _, existing := range r.tx.st.tables {
		if existing.Number() == t.Number() {
			return uuid.Nil, infra.WrapRepoErr(r.tx.logger, infra.KindDuplicateKey, "table number already exists", nil)
		}
	}
	r.tx.st.tables[t.ID()] = cloneTable(t, t.Status(), t.CurrentReservationID())
	return t.ID(), nil
}

func (r *tableRepo) Get(_ context.Context, id uuid.UUID) (*table.Table, error) {
	t, ok := r.tx.st.tables[id]
	if !ok {
		return nil, infra.WrapRepoErr(r.tx.logger, infra.KindNotFound, "table not found", nil)
	}
	return cloneTable(t, t.Status(), t.CurrentReservationID()), nil
}

func (r *tableRepo) GetByNumber(_ context.Context, number int) (*table.Table, error) {
	for _, t := range r.tx.st.tables {
		if t.Number() == number {
			return cloneTable(t, t.Status(), t.CurrentReservationID()), nil
		}
	}
	return nil, infra.WrapRepoErr(r.tx.logger, infra.KindNotFound, "table not found", nil)
}

func (r *tableRepo) ListAll(context.Context) ([]*table.Table, error) {
	out := r.all()
	sort.Slice(out, func(i, j int) bool { return out[i].Number() < out[j].Number() })
	return out, nil
}

func (r *tableRepo) FindAvailable(_ context.Context, minCapacity int, slot reservation.TimeSlot) ([]*table.Table, error) {
	res := make([]*reservation.Reservation, 0, len(r.tx.st.reservations))
	for _, v := range r.tx.st.reservations {
		res = append(res, v)
	}
	return availability.FindCandidates(r.all(), res, minCapacity, slot), nil
}

func (r *tableRepo) SetStatus(_ context.Context, id uuid.UUID, status table.Status, holder *uuid.UUID) error {
	if err := r.tx.writable(); err != nil {
		return err
	}
	t, ok := r.tx.st.tables[id]
	if !ok {
		return infra.WrapRepoErr(r.tx.logger, infra.KindNotFound, "table not found", nil)
	}
	if !status.HoldsReservation() {
		holder = nil
	}
	r.tx.st.tables[id] = cloneTable(t, status, holder)
	return nil
}

func (r *tableRepo) all() []*table.Table {
	out := make([]*table.Table, 0, len(r.tx.st.tables))
	for _, t := range r.tx.st.tables {
		out = append(out, cloneTable(t, t.Status(), t.CurrentReservationID()))
	}
	return out
}

func cloneTable(t *table.Table, status table.Status, holder *uuid.UUID) *table.Table {
	return table.Reconstruct(
		t.ID(), t.Number(), t.Capacity(), t.Location(), status, patch.Clone(holder),
		t.Features(), t.MinDuration(), t.MaxDuration(), t.CreatedAt(),
	)
}

// ------------------------------------------------------------
// customers
// ------------------------------------------------------------

type customerRepo struct{ tx *memTx }

func (r *customerRepo) UpsertByPhone(_ context.Context, contact customer.Contact, now time.Time) (*customer.Customer, error) {
	if err := r.tx.writable(); err != nil {
		return nil, err
	}
	contact.Phone = strings.TrimSpace(contact.Phone)
	for id, c := range r.tx.st.customers {
		if c.Phone() != contact.Phone {
			continue
		}
		merged := cloneCustomer(c, c.VisitCount())
		if merged.Merge(contact) {
			r.tx.st.customers[id] = merged
		}
		return cloneCustomer(merged, merged.VisitCount()), nil
	}

	c, err := customer.FromContact(contact, now)
	if err != nil {
		return nil, err
	}
	r.tx.st.customers[c.ID()] = c
	return cloneCustomer(c, c.VisitCount()), nil
}

func (r *customerRepo) Get(_ context.Context, id uuid.UUID) (*customer.Customer, error) {
	c, ok := r.tx.st.customers[id]
	if !ok {
		return nil, infra.WrapRepoErr(r.tx.logger, infra.KindNotFound, "customer not found", nil)
	}
	return cloneCustomer(c, c.VisitCount()), nil
}

func (r *customerRepo) IncrementVisits(_ context.Context, id uuid.UUID) error {
	if err := r.tx.writable(); err != nil {
		return err
	}
	c, ok := r.tx.st.customers[id]
	if !ok {
		return infra.WrapRepoErr(r.tx.logger, infra.KindNotFound, "customer not found", nil)
	}
	r.tx.st.customers[id] = cloneCustomer(c, c.VisitCount()+1)
	return nil
}

func cloneCustomer(c *customer.Customer, visits int) *customer.Customer {
	return customer.Reconstruct(c.ID(), c.Name(), c.Phone(), c.Email(), c.ExternalID(), visits, c.Notes(), c.CreatedAt())
}

// ------------------------------------------------------------
// reservations
// ------------------------------------------------------------

type reservationRepo struct{ tx *memTx }

func (r *reservationRepo) Insert(_ context.Context, res *reservation.Reservation) (uuid.UUID, error) {
	if err := r.tx.writable(); err != nil {
		return uuid.Nil, err
	}
	if _, ok := r.tx.st.customers[res.CustomerID()]; !ok {
		return uuid.Nil, infra.WrapRepoErr(r.tx.logger, infra.KindForeignKeyViolated, "unknown customer", nil)
	}
	if tid := res.TableID(); tid != nil {
		if _, ok := r.tx.st.tables[*tid]; !ok {
			return uuid.Nil, infra.WrapRepoErr(r.tx.logger, infra.KindForeignKeyViolated, "unknown table", nil)
		}
	}
	if _, dup := r.tx.st.reservations[res.ID()]; dup {
		return uuid.Nil, infra.WrapRepoErr(r.tx.logger, infra.KindDuplicateKey, "reservation already exists", nil)
	}
	r.tx.st.reservations[res.ID()] = reservation.Reconstruct(res.Record())
	return res.ID(), nil
}

func (r *reservationRepo) Get(_ context.Context, id uuid.UUID) (*reservation.Reservation, error) {
	res, ok := r.tx.st.reservations[id]
	if !ok {
		return nil, infra.WrapRepoErr(r.tx.logger, infra.KindNotFound, "reservation not found", nil)
	}
	return reservation.Reconstruct(res.Record()), nil
}

func (r *reservationRepo) ListActive(context.Context) ([]*reservation.Reservation, error) {
	out := r.filter(func(res *reservation.Reservation) bool { return res.IsActive() })
	sortByStart(out, false)
	return out, nil
}

func (r *reservationRepo) ListUpcoming(_ context.Context, now time.Time, limit int) ([]*reservation.Reservation, error) {
	out := r.filter(func(res *reservation.Reservation) bool {
		s := res.Status()
		return (s == reservation.StatusPending || s == reservation.StatusConfirmed) && res.StartTime().After(now)
	})
	sortByStart(out, false)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *reservationRepo) ListByCustomer(_ context.Context, customerID uuid.UUID) ([]*reservation.Reservation, error) {
	out := r.filter(func(res *reservation.Reservation) bool { return res.CustomerID() == customerID })
	sortByStart(out, true)
	return out, nil
}

func (r *reservationRepo) ListByTable(_ context.Context, tableID uuid.UUID, day *time.Time) ([]*reservation.Reservation, error) {
	out := r.filter(func(res *reservation.Reservation) bool {
		if res.TableID() == nil || *res.TableID() != tableID {
			return false
		}
		if day == nil {
			return true
		}
		return !res.StartTime().Before(*day) && res.StartTime().Before(day.Add(24*time.Hour))
	})
	sortByStart(out, false)
	return out, nil
}

func (r *reservationRepo) ListAll(context.Context) ([]*reservation.Reservation, error) {
	out := r.filter(func(*reservation.Reservation) bool { return true })
	sortByStart(out, true)
	return out, nil
}

func (r *reservationRepo) HasOverlap(_ context.Context, tableID uuid.UUID, slot reservation.TimeSlot) (bool, error) {
	for _, res := range r.tx.st.reservations {
		if res.TableID() != nil && *res.TableID() == tableID && res.IsActive() && res.Slot().Overlaps(slot) {
			return true, nil
		}
	}
	return false, nil
}

func (r *reservationRepo) SetStatus(_ context.Context, id uuid.UUID, tr reservation.Transition) error {
	if err := r.tx.writable(); err != nil {
		return err
	}
	res, ok := r.tx.st.reservations[id]
	if !ok {
		return infra.WrapRepoErr(r.tx.logger, infra.KindNotFound, "reservation not found", nil)
	}
	rec := res.Record()
	rec.Apply(tr)
	r.tx.st.reservations[id] = reservation.Reconstruct(rec)
	return nil
}

func (r *reservationRepo) Stats(context.Context) (shared.ReservationCounts, error) {
	var c shared.ReservationCounts
	for _, res := range r.tx.st.reservations {
		c.Total++
		switch res.Status() {
		case reservation.StatusCompleted:
			c.Completed++
		case reservation.StatusCancelled:
			c.Cancelled++
		case reservation.StatusNoShow:
			c.NoShow++
		case reservation.StatusPending, reservation.StatusConfirmed, reservation.StatusSeated:
		}
	}
	return c, nil
}

func (r *reservationRepo) filter(keep func(*reservation.Reservation) bool) []*reservation.Reservation {
	out := make([]*reservation.Reservation, 0)
	for _, res := range r.tx.st.reservations {
		if keep(res) {
			out = append(out, reservation.Reconstruct(res.Record()))
		}
	}
	return out
}

func sortByStart(rs []*reservation.Reservation, desc bool) {
	sort.Slice(rs, func(i, j int) bool {
		a, b := rs[i].StartTime(), rs[j].StartTime()
		if a.Equal(b) {
			return rs[i].CreatedAt().Before(rs[j].CreatedAt())
		}
		if desc {
			return a.After(b)
		}
		return a.Before(b)
	})
}
