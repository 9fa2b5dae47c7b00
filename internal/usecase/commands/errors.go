package commands

import (
	"context"
	"errors"
	"time"

	"table-booking/internal/domain/customer"
	"table-booking/internal/domain/reservation"
	"table-booking/internal/domain/table"
	"table-booking/internal/infra"
	"table-booking/internal/pkg/errs"
	"table-booking/internal/usecase/shared"
)

// within runs fn in one storage transaction bounded by timeout, retries
// included.
func within(ctx context.Context, uow shared.UnitOfWork, timeout time.Duration, fn func(ctx context.Context, tx shared.Tx) error) error {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return translate(uow.Within(ctx, fn), errs.ErrNotFound)
}

// translate maps storage and domain failures onto the error classes callers
// switch on. notFound is the sentinel a missing row stands for.
func translate(err error, notFound error) error {
	switch {
	case err == nil:
		return nil
	case errs.Class(err) != nil:
		return err
	case infra.IsKind(err, infra.KindNotFound):
		return errs.Mark(err, notFound)
	case infra.IsKind(err, infra.KindDuplicateKey):
		return errs.Mark(err, errs.ErrConflict)
	case infra.IsKind(err, infra.KindForeignKeyViolated):
		return errs.Mark(err, notFound)
	case errors.Is(err, reservation.ErrInvalidPartySize):
		return errs.Mark(err, errs.ErrInvalidPartySize)
	case errors.Is(err, reservation.ErrInvalidDuration), errors.Is(err, table.ErrInvalidLimits):
		return errs.Mark(err, errs.ErrInvalidDuration)
	case errors.Is(err, customer.ErrNameRequired), errors.Is(err, customer.ErrPhoneRequired):
		return errs.Mark(err, errs.ErrMissingBookingField)
	case errors.Is(err, reservation.ErrInvalidTimeSlot),
		errors.Is(err, reservation.ErrInvalidSource),
		errors.Is(err, reservation.ErrMissingCustomer),
		errors.Is(err, table.ErrInvalidNumber),
		errors.Is(err, table.ErrInvalidCapacity):
		return errs.Mark(err, errs.ErrValidation)
	case errors.Is(err, table.ErrNotAvailable), errors.Is(err, table.ErrNotInMaintenance):
		return errs.Mark(err, errs.ErrTableNotAvailable)
	default:
		return errs.Mark(err, errs.ErrStorage)
	}
}
