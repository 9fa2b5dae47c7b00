package table

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidNumber    = errors.New("table number must be positive")
	ErrInvalidCapacity  = errors.New("table capacity must be positive")
	ErrInvalidStatus    = errors.New("invalid table status")
	ErrInvalidLimits    = errors.New("invalid table duration limits")
	ErrNotAvailable     = errors.New("table is not available")
	ErrNotInMaintenance = errors.New("table is not in maintenance")
)

const (
	DefaultLocation    = "main"
	DefaultMinDuration = 30 * time.Minute
	DefaultMaxDuration = 120 * time.Minute
)

// Table is never deleted; maintenance takes it out of service instead.
// Invariant: status is reserved or occupied iff currentReservationID is set.
type Table struct {
	id                   uuid.UUID
	number               int
	capacity             int
	location             string
	status               Status
	currentReservationID *uuid.UUID
	features             []string
	minDuration          time.Duration
	maxDuration          time.Duration
	createdAt            time.Time
}

func New(number, capacity int, location string, now time.Time, features ...string) (*Table, error) {
	if number < 1 {
		return nil, ErrInvalidNumber
	}
	if capacity < 1 {
		return nil, ErrInvalidCapacity
	}
	location = strings.TrimSpace(location)
	if location == "" {
		location = DefaultLocation
	}

	t := &Table{
		id:          uuid.New(),
		number:      number,
		capacity:    capacity,
		location:    location,
		status:      StatusAvailable,
		minDuration: DefaultMinDuration,
		maxDuration: DefaultMaxDuration,
		createdAt:   now,
	}
	for _, f := range features {
		t.AddFeature(f)
	}
	return t, nil
}

func Reconstruct(
	id uuid.UUID,
	number, capacity int,
	location string,
	status Status,
	currentReservationID *uuid.UUID,
	features []string,
	minDuration, maxDuration time.Duration,
	createdAt time.Time,
) *Table {
	return &Table{
		id:                   id,
		number:               number,
		capacity:             capacity,
		location:             location,
		status:               status,
		currentReservationID: currentReservationID,
		features:             append([]string(nil), features...),
		minDuration:          minDuration,
		maxDuration:          maxDuration,
		createdAt:            createdAt,
	}
}

func (t *Table) SetDurationLimits(minDuration, maxDuration time.Duration) error {
	if minDuration <= 0 || maxDuration < minDuration {
		return ErrInvalidLimits
	}
	t.minDuration = minDuration
	t.maxDuration = maxDuration
	return nil
}

func (t *Table) AddFeature(f string) {
	f = strings.TrimSpace(f)
	if f == "" || t.HasFeature(f) {
		return
	}
	t.features = append(t.features, f)
}

func (t *Table) HasFeature(f string) bool {
	for _, existing := range t.features {
		if existing == f {
			return true
		}
	}
	return false
}

func (t *Table) Reserve(reservationID uuid.UUID) {
	t.status = StatusReserved
	t.currentReservationID = &reservationID
}

func (t *Table) Occupy(reservationID uuid.UUID) {
	t.status = StatusOccupied
	t.currentReservationID = &reservationID
}

func (t *Table) Release() {
	t.status = StatusAvailable
	t.currentReservationID = nil
}

func (t *Table) EnterMaintenance() error {
	if t.status != StatusAvailable {
		return ErrNotAvailable
	}
	t.status = StatusMaintenance
	return nil
}

func (t *Table) LeaveMaintenance() error {
	if t.status != StatusMaintenance {
		return ErrNotInMaintenance
	}
	t.status = StatusAvailable
	return nil
}

func (t *Table) IsAvailable() bool {
	return t.status == StatusAvailable
}

func (t *Table) Fits(partySize int) bool {
	return partySize <= t.capacity
}

func (t *Table) AllowsDuration(d time.Duration) bool {
	return d >= t.minDuration && d <= t.maxDuration
}

func (t *Table) Equal(other *Table) bool {
	return other != nil && t.id == other.id
}

func (t *Table) ID() uuid.UUID                    { return t.id }
func (t *Table) Number() int                      { return t.number }
func (t *Table) Capacity() int                    { return t.capacity }
func (t *Table) Location() string                 { return t.location }
func (t *Table) Status() Status                   { return t.status }
func (t *Table) CurrentReservationID() *uuid.UUID { return t.currentReservationID }
func (t *Table) Features() []string               { return append([]string(nil), t.features...) }
func (t *Table) MinDuration() time.Duration       { return t.minDuration }
func (t *Table) MaxDuration() time.Duration       { return t.maxDuration }
func (t *Table) CreatedAt() time.Time             { return t.createdAt }
