package shared

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ReservationNotice is the payload handed to notifiers after a booking commits.
type ReservationNotice struct {
	ReservationID uuid.UUID
	CustomerName  string
	CustomerPhone string
	TableNumber   *int
	Start         time.Time
	End           time.Time
	PartySize     int
	Source        string
	Comment       string
}

// Notifier delivers best-effort notices. Failures are logged by the caller
// and never undo the committed booking.
type Notifier interface {
	ReservationCreated(ctx context.Context, n ReservationNotice) error
}
