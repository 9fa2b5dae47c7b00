package reservation

import (
	"time"

	"table-booking/internal/domain/table"
)

// Outcome tells callers whether a lifecycle call changed anything. Calls whose
// precondition does not hold, including any call on a terminal reservation,
// leave state untouched and report OutcomeNoop.
type Outcome int

const (
	OutcomeNoop Outcome = iota
	OutcomeApplied
)

func (o Outcome) Applied() bool { return o == OutcomeApplied }

func (o Outcome) String() string {
	if o == OutcomeApplied {
		return "applied"
	}
	return "noop"
}

// Transition is what storage needs to persist a status change.
type Transition struct {
	To     Status
	At     time.Time
	Reason *string
}

func (r *Reservation) Confirm(now time.Time) Outcome {
	if r.status != StatusPending {
		return OutcomeNoop
	}
	r.moveTo(StatusConfirmed, now)
	return OutcomeApplied
}

// Seat occupies t when t is this reservation's table.
func (r *Reservation) Seat(now time.Time, t *table.Table) Outcome {
	switch r.status {
	case StatusPending, StatusConfirmed:
	case StatusSeated, StatusCompleted, StatusCancelled, StatusNoShow:
		return OutcomeNoop
	default:
		return OutcomeNoop
	}
	r.moveTo(StatusSeated, now)
	if r.owns(t) {
		t.Occupy(r.id)
	}
	return OutcomeApplied
}

func (r *Reservation) Complete(now time.Time, t *table.Table) Outcome {
	return r.finish(StatusCompleted, now, t)
}

func (r *Reservation) Cancel(now time.Time, reason string, t *table.Table) Outcome {
	if r.status.IsTerminal() {
		return OutcomeNoop
	}
	if reason != "" {
		r.cancellationReason = &reason
	}
	return r.finish(StatusCancelled, now, t)
}

func (r *Reservation) MarkNoShow(now time.Time, t *table.Table) Outcome {
	return r.finish(StatusNoShow, now, t)
}

// Transition describes the change the last applied call made.
func (r *Reservation) Transition() Transition {
	tr := Transition{To: r.status}
	if at := r.Stamp(r.status.StampField()); at != nil {
		tr.At = *at
	}
	if r.status == StatusCancelled {
		tr.Reason = r.cancellationReason
	}
	return tr
}

// Apply writes tr onto a stored record the same way the SQL adapters update columns.
func (rec *Record) Apply(tr Transition) {
	rec.Status = tr.To
	at := tr.At
	switch tr.To.StampField() {
	case StampConfirmed:
		rec.ConfirmedAt = &at
	case StampSeated:
		rec.SeatedAt = &at
	case StampCompleted:
		rec.CompletedAt = &at
	case StampCancelled:
		rec.CancelledAt = &at
	case StampNoShow:
		rec.NoShowAt = &at
	case StampNone:
	}
	if tr.Reason != nil {
		rec.CancellationReason = tr.Reason
	}
}

func (r *Reservation) finish(to Status, now time.Time, t *table.Table) Outcome {
	if r.status.IsTerminal() {
		return OutcomeNoop
	}
	r.moveTo(to, now)
	if r.owns(t) {
		t.Release()
	}
	return OutcomeApplied
}

func (r *Reservation) moveTo(to Status, now time.Time) {
	r.status = to
	at := now
	switch to.StampField() {
	case StampConfirmed:
		r.confirmedAt = &at
	case StampSeated:
		r.seatedAt = &at
	case StampCompleted:
		r.completedAt = &at
	case StampCancelled:
		r.cancelledAt = &at
	case StampNoShow:
		r.noShowAt = &at
	case StampNone:
	}
}

func (r *Reservation) owns(t *table.Table) bool {
	return t != nil && r.tableID != nil && *r.tableID == t.ID()
}
