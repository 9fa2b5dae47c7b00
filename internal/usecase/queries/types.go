package queries

import (
	"time"

	"github.com/google/uuid"
)

// ReservationView is a reservation with its customer and table resolved.
type ReservationView struct {
	ID                 uuid.UUID  `json:"id"`
	CustomerID         uuid.UUID  `json:"customer_id"`
	CustomerName       string     `json:"customer_name"`
	CustomerPhone      string     `json:"customer_phone"`
	TableID            *uuid.UUID `json:"table_id,omitempty"`
	TableNumber        *int       `json:"table_number,omitempty"`
	Start              time.Time  `json:"start_time"`
	End                time.Time  `json:"end_time"`
	DurationMinutes    int        `json:"duration_minutes"`
	PartySize          int        `json:"party_size"`
	Status             string     `json:"status"`
	Source             string     `json:"source"`
	SpecialRequests    []string   `json:"special_requests"`
	Overdue            bool       `json:"overdue"`
	CreatedAt          time.Time  `json:"created_at"`
	ConfirmedAt        *time.Time `json:"confirmed_at,omitempty"`
	SeatedAt           *time.Time `json:"seated_at,omitempty"`
	CompletedAt        *time.Time `json:"completed_at,omitempty"`
	CancelledAt        *time.Time `json:"cancelled_at,omitempty"`
	NoShowAt           *time.Time `json:"no_show_at,omitempty"`
	CancellationReason *string    `json:"cancellation_reason,omitempty"`
}

type Stats struct {
	Total     int `json:"total"`
	Completed int `json:"completed"`
	Cancelled int `json:"cancelled"`
	NoShow    int `json:"no_show"`
	// CompletionRate is completed/total as a percentage rounded to two places.
	CompletionRate float64 `json:"completion_rate"`
}

type Settings struct {
	Location      *time.Location
	UpcomingLimit int
	OpTimeout     time.Duration
}

const defaultUpcomingLimit = 10
