package commands

import (
	"context"
	"log/slog"
	"time"

	"table-booking/internal/domain/availability"
	"table-booking/internal/domain/customer"
	"table-booking/internal/domain/reservation"
	"table-booking/internal/domain/table"
	"table-booking/internal/pkg/clock"
	"table-booking/internal/pkg/errs"
	"table-booking/internal/pkg/patch"
	"table-booking/internal/usecase/shared"

	"github.com/google/uuid"
)

type ReservationCommands interface {
	CreateReservation(ctx context.Context, p CreateParams) (*reservation.Reservation, error)
	Book(ctx context.Context, p BookParams) (*BookingResult, error)
	CreateUnassigned(ctx context.Context, p UnassignedParams) (*BookingResult, error)

	Confirm(ctx context.Context, id uuid.UUID) (reservation.Outcome, error)
	Seat(ctx context.Context, id uuid.UUID) (reservation.Outcome, error)
	Complete(ctx context.Context, id uuid.UUID) (reservation.Outcome, error)
	Cancel(ctx context.Context, id uuid.UUID, reason string) (reservation.Outcome, error)
	MarkNoShow(ctx context.Context, id uuid.UUID) (reservation.Outcome, error)
}

type reservationUseCaseImpl struct {
	uow      shared.UnitOfWork
	notifier shared.Notifier
	clock    clock.Clock
	settings Settings
}

func NewReservationUseCase(uow shared.UnitOfWork, notifier shared.Notifier, clk clock.Clock, settings Settings) ReservationCommands {
	return &reservationUseCaseImpl{
		uow:      uow,
		notifier: notifier,
		clock:    clk,
		settings: settings,
	}
}

// CreateReservation books a known table for a known customer.
func (uc *reservationUseCaseImpl) CreateReservation(ctx context.Context, p CreateParams) (*reservation.Reservation, error) {
	slot, err := uc.slot(p.Start, p.PartySize, p.Duration)
	if err != nil {
		return nil, err
	}

	var result *BookingResult
	err = uc.within(ctx, func(ctx context.Context, tx shared.Tx) error {
		cust, err := tx.Customers().Get(ctx, p.CustomerID)
		if err != nil {
			return translate(err, errs.ErrCustomerNotFound)
		}
		res, tbl, err := uc.reserveTable(ctx, tx, p.CustomerID, p.TableID, slot, p.PartySize, p.SpecialRequests, p.Source)
		if err != nil {
			return err
		}
		result = &BookingResult{Reservation: res, Customer: cust, Table: tbl}
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.notify(ctx, result)
	return result.Reservation, nil
}

// Book upserts the guest by phone, picks a table (the requested number, or the
// best candidate for the window) and reserves it, all in one transaction.
func (uc *reservationUseCaseImpl) Book(ctx context.Context, p BookParams) (*BookingResult, error) {
	slot, err := uc.slot(p.Start, p.PartySize, p.Duration)
	if err != nil {
		return nil, err
	}
	requests := p.SpecialRequests
	if p.Comment != "" {
		requests = append(append([]string(nil), requests...), p.Comment)
	}

	var result *BookingResult
	err = uc.within(ctx, func(ctx context.Context, tx shared.Tx) error {
		cust, err := tx.Customers().UpsertByPhone(ctx, customer.Contact{
			Name: p.Name, Phone: p.Phone, Email: p.Email, ExternalID: p.ExternalID,
		}, uc.clock.Now())
		if err != nil {
			return translate(err, errs.ErrCustomerNotFound)
		}

		tableID, err := uc.chooseTable(ctx, tx, p.TableNumber, p.PartySize, slot)
		if err != nil {
			return err
		}

		res, tbl, err := uc.reserveTable(ctx, tx, cust.ID(), tableID, slot, p.PartySize, requests, p.Source)
		if err != nil {
			return err
		}
		result = &BookingResult{Reservation: res, Customer: cust, Table: tbl}
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.notify(ctx, result)
	return result, nil
}

// CreateUnassigned records a request with no table; staff assign one later.
func (uc *reservationUseCaseImpl) CreateUnassigned(ctx context.Context, p UnassignedParams) (*BookingResult, error) {
	slot, err := uc.slot(p.Start, p.PartySize, p.Duration)
	if err != nil {
		return nil, err
	}

	var result *BookingResult
	err = uc.within(ctx, func(ctx context.Context, tx shared.Tx) error {
		cust, err := tx.Customers().UpsertByPhone(ctx, customer.Contact{
			Name: p.Name, Phone: p.Phone, ExternalID: p.ExternalID,
		}, uc.clock.Now())
		if err != nil {
			return translate(err, errs.ErrCustomerNotFound)
		}
		res, err := reservation.NewReservation(cust.ID(), nil, slot, p.PartySize, p.SpecialRequests, source(p.Source), uc.clock.Now())
		if err != nil {
			return translate(err, errs.ErrReservationNotFound)
		}
		if _, err := tx.Reservations().Insert(ctx, res); err != nil {
			return translate(err, errs.ErrCustomerNotFound)
		}
		if err := tx.Customers().IncrementVisits(ctx, cust.ID()); err != nil {
			return translate(err, errs.ErrCustomerNotFound)
		}
		result = &BookingResult{Reservation: res, Customer: cust}
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.notify(ctx, result)
	return result, nil
}

func (uc *reservationUseCaseImpl) Confirm(ctx context.Context, id uuid.UUID) (reservation.Outcome, error) {
	return uc.transition(ctx, id, func(r *reservation.Reservation, _ *table.Table, now time.Time) reservation.Outcome {
		return r.Confirm(now)
	})
}

func (uc *reservationUseCaseImpl) Seat(ctx context.Context, id uuid.UUID) (reservation.Outcome, error) {
	return uc.transition(ctx, id, func(r *reservation.Reservation, t *table.Table, now time.Time) reservation.Outcome {
		return r.Seat(now, t)
	})
}

func (uc *reservationUseCaseImpl) Complete(ctx context.Context, id uuid.UUID) (reservation.Outcome, error) {
	return uc.transition(ctx, id, func(r *reservation.Reservation, t *table.Table, now time.Time) reservation.Outcome {
		return r.Complete(now, t)
	})
}

func (uc *reservationUseCaseImpl) Cancel(ctx context.Context, id uuid.UUID, reason string) (reservation.Outcome, error) {
	return uc.transition(ctx, id, func(r *reservation.Reservation, t *table.Table, now time.Time) reservation.Outcome {
		return r.Cancel(now, reason, t)
	})
}

func (uc *reservationUseCaseImpl) MarkNoShow(ctx context.Context, id uuid.UUID) (reservation.Outcome, error) {
	return uc.transition(ctx, id, func(r *reservation.Reservation, t *table.Table, now time.Time) reservation.Outcome {
		return r.MarkNoShow(now, t)
	})
}

// transition loads the reservation and its table under the table lock, applies
// one lifecycle call and persists both sides together.
func (uc *reservationUseCaseImpl) transition(
	ctx context.Context,
	id uuid.UUID,
	apply func(r *reservation.Reservation, t *table.Table, now time.Time) reservation.Outcome,
) (reservation.Outcome, error) {
	var outcome reservation.Outcome
	err := uc.within(ctx, func(ctx context.Context, tx shared.Tx) error {
		outcome = reservation.OutcomeNoop

		res, err := tx.Reservations().Get(ctx, id)
		if err != nil {
			return translate(err, errs.ErrReservationNotFound)
		}

		var tbl *table.Table
		if tableID := res.TableID(); tableID != nil {
			if err := tx.LockTable(ctx, *tableID); err != nil {
				return translate(err, errs.ErrTableNotFound)
			}
			if tbl, err = tx.Tables().Get(ctx, *tableID); err != nil {
				return translate(err, errs.ErrTableNotFound)
			}
		}

		var before tableState
		if tbl != nil {
			before = stateOf(tbl)
		}

		outcome = apply(res, tbl, uc.clock.Now())
		if !outcome.Applied() {
			return nil
		}

		if err := tx.Reservations().SetStatus(ctx, res.ID(), res.Transition()); err != nil {
			return translate(err, errs.ErrReservationNotFound)
		}
		if tbl != nil && stateOf(tbl) != before {
			if err := tx.Tables().SetStatus(ctx, tbl.ID(), tbl.Status(), tbl.CurrentReservationID()); err != nil {
				return translate(err, errs.ErrTableNotFound)
			}
		}
		return nil
	})
	if err != nil {
		return reservation.OutcomeNoop, err
	}
	return outcome, nil
}

// reserveTable is the check-then-insert path shared by every booking. The
// table lock is taken first so the status and overlap checks hold until commit.
func (uc *reservationUseCaseImpl) reserveTable(
	ctx context.Context,
	tx shared.Tx,
	customerID, tableID uuid.UUID,
	slot reservation.TimeSlot,
	partySize int,
	requests []string,
	src reservation.Source,
) (*reservation.Reservation, *table.Table, error) {
	if err := tx.LockTable(ctx, tableID); err != nil {
		return nil, nil, translate(err, errs.ErrTableNotFound)
	}
	tbl, err := tx.Tables().Get(ctx, tableID)
	if err != nil {
		return nil, nil, translate(err, errs.ErrTableNotFound)
	}

	if !tbl.IsAvailable() {
		return nil, nil, errs.Wrapf(errs.ErrTableUnavailable, "table %d is %s", tbl.Number(), tbl.Status())
	}
	overlap, err := tx.Reservations().HasOverlap(ctx, tableID, slot)
	if err != nil {
		return nil, nil, translate(err, errs.ErrTableNotFound)
	}
	if overlap {
		return nil, nil, errs.Wrapf(errs.ErrTableUnavailable, "table %d is booked for this window", tbl.Number())
	}
	if !tbl.Fits(partySize) {
		return nil, nil, errs.Wrapf(errs.ErrCapacityExceeded, "party of %d, table %d seats %d", partySize, tbl.Number(), tbl.Capacity())
	}
	if !tbl.AllowsDuration(slot.Duration()) {
		return nil, nil, errs.Wrapf(errs.ErrInvalidDuration, "table %d allows %s to %s", tbl.Number(), tbl.MinDuration(), tbl.MaxDuration())
	}

	res, err := reservation.NewReservation(customerID, &tableID, slot, partySize, requests, source(src), uc.clock.Now())
	if err != nil {
		return nil, nil, translate(err, errs.ErrReservationNotFound)
	}
	if _, err := tx.Reservations().Insert(ctx, res); err != nil {
		return nil, nil, translate(err, errs.ErrCustomerNotFound)
	}

	tbl.Reserve(res.ID())
	if err := tx.Tables().SetStatus(ctx, tbl.ID(), tbl.Status(), tbl.CurrentReservationID()); err != nil {
		return nil, nil, translate(err, errs.ErrTableNotFound)
	}
	if err := tx.Customers().IncrementVisits(ctx, customerID); err != nil {
		return nil, nil, translate(err, errs.ErrCustomerNotFound)
	}
	return res, tbl, nil
}

func (uc *reservationUseCaseImpl) chooseTable(ctx context.Context, tx shared.Tx, number *int, partySize int, slot reservation.TimeSlot) (uuid.UUID, error) {
	if number != nil {
		tbl, err := tx.Tables().GetByNumber(ctx, *number)
		if err != nil {
			return uuid.Nil, translate(err, errs.ErrTableNotFound)
		}
		return tbl.ID(), nil
	}

	candidates, err := tx.Tables().FindAvailable(ctx, partySize, slot)
	if err != nil {
		return uuid.Nil, translate(err, errs.ErrTableNotFound)
	}
	best, ok := availability.PickBest(candidates, partySize)
	if !ok {
		return uuid.Nil, errs.Wrapf(errs.ErrNoTableAvailable, "party of %d at %s", partySize, slot.Start().Format(time.RFC3339))
	}
	return best.ID(), nil
}

// slot validates the request shape before any transaction opens.
func (uc *reservationUseCaseImpl) slot(start time.Time, partySize int, duration time.Duration) (reservation.TimeSlot, error) {
	if partySize < 1 {
		return reservation.TimeSlot{}, errs.ErrInvalidPartySize
	}
	if duration == 0 {
		duration = uc.settings.DefaultDuration
	}
	slot, err := reservation.NewTimeSlot(start, duration)
	if err != nil {
		return reservation.TimeSlot{}, translate(err, errs.ErrReservationNotFound)
	}
	return slot, nil
}

func (uc *reservationUseCaseImpl) within(ctx context.Context, fn func(ctx context.Context, tx shared.Tx) error) error {
	return within(ctx, uc.uow, uc.settings.OpTimeout, fn)
}

// notify is best effort: the booking is already committed.
func (uc *reservationUseCaseImpl) notify(ctx context.Context, b *BookingResult) {
	if uc.notifier == nil || b == nil {
		return
	}
	res := b.Reservation
	notice := shared.ReservationNotice{
		ReservationID: res.ID(),
		CustomerName:  b.Customer.Name(),
		CustomerPhone: b.Customer.Phone(),
		Start:         res.StartTime(),
		End:           res.EndTime(),
		PartySize:     res.PartySize(),
		Source:        res.Source().String(),
		Comment:       res.FirstRequest(),
	}
	if b.Table != nil {
		n := b.Table.Number()
		notice.TableNumber = &n
	}
	if err := uc.notifier.ReservationCreated(ctx, notice); err != nil {
		slog.Warn("reservation notification failed",
			"reservation_id", res.ID().String(),
			"error", err.Error())
	}
}

func source(s reservation.Source) reservation.Source {
	if s == "" {
		return reservation.SourceBot
	}
	return s
}

type tableState struct {
	status table.Status
	holder uuid.UUID
}

func stateOf(t *table.Table) tableState {
	return tableState{status: t.Status(), holder: patch.Coalesce(t.CurrentReservationID(), uuid.Nil)}
}
