//go:build unit || e2e

package builder

import (
	"time"

	"table-booking/internal/domain/reservation"

	"github.com/google/uuid"
)

type ReservationBuilder struct {
	CustomerID      uuid.UUID
	TableID         *uuid.UUID
	Start           time.Time
	Duration        time.Duration
	PartySize       int
	SpecialRequests []string
	Source          reservation.Source
	CreatedAt       time.Time
}

func NewReservationBuilder() *ReservationBuilder {
	return &ReservationBuilder{
		CustomerID: uuid.New(),
		Start:      BaseTime,
		Duration:   90 * time.Minute,
		PartySize:  2,
		Source:     reservation.SourceWebsite,
		CreatedAt:  BaseTime.Add(-48 * time.Hour),
	}
}

func (b *ReservationBuilder) With(mutate func(*ReservationBuilder)) *ReservationBuilder {
	mutate(b)
	return b
}

func (b *ReservationBuilder) BuildDomain() (*reservation.Reservation, error) {
	slot, err := reservation.NewTimeSlot(b.Start, b.Duration)
	if err != nil {
		return nil, err
	}
	return reservation.NewReservation(b.CustomerID, b.TableID, slot, b.PartySize, b.SpecialRequests, b.Source, b.CreatedAt)
}

// MustBuild panics on invalid input; fixtures only.
func (b *ReservationBuilder) MustBuild() *reservation.Reservation {
	r, err := b.BuildDomain()
	if err != nil {
		panic(err)
	}
	return r
}

func (b *ReservationBuilder) WithCustomerID(id uuid.UUID) *ReservationBuilder {
	b.CustomerID = id
	return b
}

func (b *ReservationBuilder) WithTableID(id uuid.UUID) *ReservationBuilder {
	b.TableID = &id
	return b
}

func (b *ReservationBuilder) Unassigned() *ReservationBuilder {
	b.TableID = nil
	return b
}

// WithWindow sets start as an offset from BaseTime.
func (b *ReservationBuilder) WithWindow(offset, duration time.Duration) *ReservationBuilder {
	b.Start = BaseTime.Add(offset)
	b.Duration = duration
	return b
}

func (b *ReservationBuilder) WithStart(start time.Time) *ReservationBuilder {
	b.Start = start
	return b
}

func (b *ReservationBuilder) WithPartySize(n int) *ReservationBuilder {
	b.PartySize = n
	return b
}

func (b *ReservationBuilder) WithRequests(reqs ...string) *ReservationBuilder {
	b.SpecialRequests = reqs
	return b
}

func (b *ReservationBuilder) WithSource(s reservation.Source) *ReservationBuilder {
	b.Source = s
	return b
}
