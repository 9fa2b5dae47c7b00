package reservation

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidTimeSlot  = errors.New("invalid time slot")
	ErrInvalidDuration  = errors.New("duration must be positive")
	ErrInvalidPartySize = errors.New("party size must be at least 1")
	ErrInvalidStatus    = errors.New("invalid reservation status")
	ErrInvalidSource    = errors.New("invalid reservation source")
	ErrMissingCustomer  = errors.New("reservation requires a customer")
)

// Reservation holds non-owning references to its customer and, optionally,
// its table. It is never deleted; history feeds statistics and export.
type Reservation struct {
	id                 uuid.UUID
	customerID         uuid.UUID
	tableID            *uuid.UUID
	slot               TimeSlot
	partySize          int
	status             Status
	specialRequests    []string
	source             Source
	createdAt          time.Time
	confirmedAt        *time.Time
	seatedAt           *time.Time
	completedAt        *time.Time
	cancelledAt        *time.Time
	noShowAt           *time.Time
	cancellationReason *string
}

// Record is the flat persisted form of a Reservation.
type Record struct {
	ID                 uuid.UUID
	CustomerID         uuid.UUID
	TableID            *uuid.UUID
	Start              time.Time
	End                time.Time
	PartySize          int
	Status             Status
	SpecialRequests    []string
	Source             Source
	CreatedAt          time.Time
	ConfirmedAt        *time.Time
	SeatedAt           *time.Time
	CompletedAt        *time.Time
	CancelledAt        *time.Time
	NoShowAt           *time.Time
	CancellationReason *string
}

func NewReservation(
	customerID uuid.UUID,
	tableID *uuid.UUID,
	slot TimeSlot,
	partySize int,
	specialRequests []string,
	source Source,
	now time.Time,
) (*Reservation, error) {
	if customerID == uuid.Nil {
		return nil, ErrMissingCustomer
	}
	if partySize < 1 {
		return nil, ErrInvalidPartySize
	}
	if slot.Duration() <= 0 {
		return nil, ErrInvalidTimeSlot
	}
	if !source.IsValid() {
		return nil, ErrInvalidSource
	}

	r := &Reservation{
		id:         uuid.New(),
		customerID: customerID,
		tableID:    tableID,
		slot:       slot,
		partySize:  partySize,
		status:     StatusPending,
		source:     source,
		createdAt:  now,
	}
	for _, req := range specialRequests {
		r.AddSpecialRequest(req)
	}
	return r, nil
}

func Reconstruct(rec Record) *Reservation {
	return &Reservation{
		id:                 rec.ID,
		customerID:         rec.CustomerID,
		tableID:            rec.TableID,
		slot:               TimeSlot{start: rec.Start, end: rec.End},
		partySize:          rec.PartySize,
		status:             rec.Status,
		specialRequests:    append([]string(nil), rec.SpecialRequests...),
		source:             rec.Source,
		createdAt:          rec.CreatedAt,
		confirmedAt:        rec.ConfirmedAt,
		seatedAt:           rec.SeatedAt,
		completedAt:        rec.CompletedAt,
		cancelledAt:        rec.CancelledAt,
		noShowAt:           rec.NoShowAt,
		cancellationReason: rec.CancellationReason,
	}
}

func (r *Reservation) Record() Record {
	return Record{
		ID:                 r.id,
		CustomerID:         r.customerID,
		TableID:            r.tableID,
		Start:              r.slot.Start(),
		End:                r.slot.End(),
		PartySize:          r.partySize,
		Status:             r.status,
		SpecialRequests:    r.SpecialRequests(),
		Source:             r.source,
		CreatedAt:          r.createdAt,
		ConfirmedAt:        r.confirmedAt,
		SeatedAt:           r.seatedAt,
		CompletedAt:        r.completedAt,
		CancelledAt:        r.cancelledAt,
		NoShowAt:           r.noShowAt,
		CancellationReason: r.cancellationReason,
	}
}

func (r *Reservation) AddSpecialRequest(req string) {
	if req = strings.TrimSpace(req); req != "" {
		r.specialRequests = append(r.specialRequests, req)
	}
}

func (r *Reservation) IsActive() bool {
	return r.status.IsActive()
}

// IsUpcoming: active and starting strictly after now.
func (r *Reservation) IsUpcoming(now time.Time) bool {
	return r.IsActive() && r.slot.Start().After(now)
}

// IsOverdue: still seated after the slot has ended.
func (r *Reservation) IsOverdue(now time.Time) bool {
	return r.status == StatusSeated && now.After(r.slot.End())
}

// Stamp returns the timestamp recorded for f, nil when not yet stamped.
func (r *Reservation) Stamp(f StampField) *time.Time {
	switch f {
	case StampConfirmed:
		return r.confirmedAt
	case StampSeated:
		return r.seatedAt
	case StampCompleted:
		return r.completedAt
	case StampCancelled:
		return r.cancelledAt
	case StampNoShow:
		return r.noShowAt
	case StampNone:
		return nil
	default:
		return nil
	}
}

// FirstRequest is the comment column of the export.
func (r *Reservation) FirstRequest() string {
	if len(r.specialRequests) == 0 {
		return ""
	}
	return r.specialRequests[0]
}

func (r *Reservation) ID() uuid.UUID               { return r.id }
func (r *Reservation) CustomerID() uuid.UUID       { return r.customerID }
func (r *Reservation) TableID() *uuid.UUID         { return r.tableID }
func (r *Reservation) Slot() TimeSlot              { return r.slot }
func (r *Reservation) StartTime() time.Time        { return r.slot.Start() }
func (r *Reservation) EndTime() time.Time          { return r.slot.End() }
func (r *Reservation) Duration() time.Duration     { return r.slot.Duration() }
func (r *Reservation) PartySize() int              { return r.partySize }
func (r *Reservation) Status() Status              { return r.status }
func (r *Reservation) Source() Source              { return r.source }
func (r *Reservation) CreatedAt() time.Time        { return r.createdAt }
func (r *Reservation) ConfirmedAt() *time.Time     { return r.confirmedAt }
func (r *Reservation) SeatedAt() *time.Time        { return r.seatedAt }
func (r *Reservation) CompletedAt() *time.Time     { return r.completedAt }
func (r *Reservation) CancelledAt() *time.Time     { return r.cancelledAt }
func (r *Reservation) NoShowAt() *time.Time        { return r.noShowAt }
func (r *Reservation) CancellationReason() *string { return r.cancellationReason }
func (r *Reservation) SpecialRequests() []string {
	return append([]string(nil), r.specialRequests...)
}
