package commands

import (
	"time"

	"table-booking/internal/domain/customer"
	"table-booking/internal/domain/reservation"
	"table-booking/internal/domain/table"

	"github.com/google/uuid"
)

// Settings carries the venue-wide knobs the write side needs.
type Settings struct {
	// OpTimeout bounds each storage transaction, retries included.
	OpTimeout       time.Duration
	DefaultDuration time.Duration
}

type CreateParams struct {
	CustomerID      uuid.UUID
	TableID         uuid.UUID
	Start           time.Time
	PartySize       int
	Duration        time.Duration
	SpecialRequests []string
	Source          reservation.Source
}

// BookParams is a booking request as it arrives from a guest: contact details
// instead of a customer id, and an optional table number instead of a table id.
type BookParams struct {
	Name            string
	Phone           string
	Email           *string
	ExternalID      *string
	Start           time.Time
	PartySize       int
	Duration        time.Duration
	SpecialRequests []string
	Comment         string
	Source          reservation.Source
	TableNumber     *int
}

type UnassignedParams struct {
	Name            string
	Phone           string
	ExternalID      *string
	Start           time.Time
	PartySize       int
	Duration        time.Duration
	SpecialRequests []string
	Source          reservation.Source
}

type AddTableParams struct {
	Number      int
	Capacity    int
	Location    string
	Features    []string
	MinDuration time.Duration
	MaxDuration time.Duration
}

type BookingResult struct {
	Reservation *reservation.Reservation
	Customer    *customer.Customer
	// Table is nil for unassigned reservations.
	Table *table.Table
}
