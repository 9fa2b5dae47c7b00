package gormstore

import (
	"time"

	"table-booking/internal/domain/customer"
	"table-booking/internal/domain/reservation"
	"table-booking/internal/domain/table"
	"table-booking/internal/pkg/errs"

	"github.com/google/uuid"
)

func tableToModel(t *table.Table) tableModel {
	return tableModel{
		ID:                   t.ID().String(),
		Number:               t.Number(),
		Capacity:             t.Capacity(),
		Location:             t.Location(),
		Status:               t.Status().String(),
		CurrentReservationID: uuidPtrToString(t.CurrentReservationID()),
		Features:             t.Features(),
		MinDurationMinutes:   int(t.MinDuration() / time.Minute),
		MaxDurationMinutes:   int(t.MaxDuration() / time.Minute),
		CreatedAt:            t.CreatedAt().UTC(),
	}
}

func tableFromModel(m tableModel) (*table.Table, error) {
	id, err := uuid.Parse(m.ID)
	if err != nil {
		return nil, errs.Wrapf(err, "table id %q", m.ID)
	}
	status, err := table.ParseStatus(m.Status)
	if err != nil {
		return nil, err
	}
	holder, err := uuidPtrFromString(m.CurrentReservationID)
	if err != nil {
		return nil, err
	}
	return table.Reconstruct(
		id, m.Number, m.Capacity, m.Location, status, holder, m.Features,
		time.Duration(m.MinDurationMinutes)*time.Minute,
		time.Duration(m.MaxDurationMinutes)*time.Minute,
		m.CreatedAt.UTC(),
	), nil
}

func customerToModel(c *customer.Customer) customerModel {
	return customerModel{
		ID:         c.ID().String(),
		Name:       c.Name(),
		Phone:      c.Phone(),
		Email:      c.Email(),
		ExternalID: c.ExternalID(),
		VisitCount: c.VisitCount(),
		Notes:      c.Notes(),
		CreatedAt:  c.CreatedAt().UTC(),
	}
}

func customerFromModel(m customerModel) (*customer.Customer, error) {
	id, err := uuid.Parse(m.ID)
	if err != nil {
		return nil, errs.Wrapf(err, "customer id %q", m.ID)
	}
	return customer.Reconstruct(id, m.Name, m.Phone, m.Email, m.ExternalID, m.VisitCount, m.Notes, m.CreatedAt.UTC()), nil
}

func reservationToModel(r *reservation.Reservation) reservationModel {
	rec := r.Record()
	return reservationModel{
		ID:                 rec.ID.String(),
		CustomerID:         rec.CustomerID.String(),
		TableID:            uuidPtrToString(rec.TableID),
		StartTime:          rec.Start.UTC(),
		EndTime:            rec.End.UTC(),
		PartySize:          rec.PartySize,
		Status:             rec.Status.String(),
		SpecialRequests:    rec.SpecialRequests,
		Source:             rec.Source.String(),
		CreatedAt:          rec.CreatedAt.UTC(),
		ConfirmedAt:        utcPtr(rec.ConfirmedAt),
		SeatedAt:           utcPtr(rec.SeatedAt),
		CompletedAt:        utcPtr(rec.CompletedAt),
		CancelledAt:        utcPtr(rec.CancelledAt),
		NoShowAt:           utcPtr(rec.NoShowAt),
		CancellationReason: rec.CancellationReason,
	}
}

func reservationFromModel(m reservationModel) (*reservation.Reservation, error) {
	id, err := uuid.Parse(m.ID)
	if err != nil {
		return nil, errs.Wrapf(err, "reservation id %q", m.ID)
	}
	customerID, err := uuid.Parse(m.CustomerID)
	if err != nil {
		return nil, errs.Wrapf(err, "customer id %q", m.CustomerID)
	}
	tableID, err := uuidPtrFromString(m.TableID)
	if err != nil {
		return nil, err
	}
	status, err := reservation.ParseStatus(m.Status)
	if err != nil {
		return nil, err
	}
	source, err := reservation.ParseSource(m.Source)
	if err != nil {
		return nil, err
	}
	return reservation.Reconstruct(reservation.Record{
		ID:                 id,
		CustomerID:         customerID,
		TableID:            tableID,
		Start:              m.StartTime.UTC(),
		End:                m.EndTime.UTC(),
		PartySize:          m.PartySize,
		Status:             status,
		SpecialRequests:    m.SpecialRequests,
		Source:             source,
		CreatedAt:          m.CreatedAt.UTC(),
		ConfirmedAt:        utcPtr(m.ConfirmedAt),
		SeatedAt:           utcPtr(m.SeatedAt),
		CompletedAt:        utcPtr(m.CompletedAt),
		CancelledAt:        utcPtr(m.CancelledAt),
		NoShowAt:           utcPtr(m.NoShowAt),
		CancellationReason: m.CancellationReason,
	}), nil
}

func reservationsFromModels(ms []reservationModel) ([]*reservation.Reservation, error) {
	out := make([]*reservation.Reservation, 0, len(ms))
	for _, m := range ms {
		r, err := reservationFromModel(m)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

func tablesFromModels(ms []tableModel) ([]*table.Table, error) {
	out := make([]*table.Table, 0, len(ms))
	for _, m := range ms {
		t, err := tableFromModel(m)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

func uuidPtrToString(id *uuid.UUID) *string {
	if id == nil {
		return nil
	}
	s := id.String()
	return &s
}

func uuidPtrFromString(s *string) (*uuid.UUID, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	id, err := uuid.Parse(*s)
	if err != nil {
		return nil, errs.Wrapf(err, "uuid %q", *s)
	}
	return &id, nil
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
