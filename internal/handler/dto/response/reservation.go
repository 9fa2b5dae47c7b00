package response

import (
	"time"

	"table-booking/internal/domain/reservation"
	"table-booking/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"
)

type ReservationResponse struct {
	ID                 uuid.UUID  `json:"id"`
	CustomerID         uuid.UUID  `json:"customerId"`
	CustomerName       string     `json:"customerName"`
	CustomerPhone      string     `json:"customerPhone"`
	TableID            *uuid.UUID `json:"tableId,omitempty"`
	TableNumber        *int       `json:"tableNumber,omitempty"`
	Start              time.Time  `json:"start"`
	End                time.Time  `json:"end"`
	DurationMinutes    int        `json:"durationMinutes"`
	PartySize          int        `json:"partySize"`
	Status             string     `json:"status"`
	Source             string     `json:"source"`
	SpecialRequests    []string   `json:"specialRequests"`
	Overdue            bool       `json:"overdue"`
	CreatedAt          time.Time  `json:"createdAt"`
	ConfirmedAt        *time.Time `json:"confirmedAt,omitempty"`
	SeatedAt           *time.Time `json:"seatedAt,omitempty"`
	CompletedAt        *time.Time `json:"completedAt,omitempty"`
	CancelledAt        *time.Time `json:"cancelledAt,omitempty"`
	NoShowAt           *time.Time `json:"noShowAt,omitempty"`
	CancellationReason *string    `json:"cancellationReason,omitempty"`
}

type StatsResponse struct {
	Total          int     `json:"total"`
	Completed      int     `json:"completed"`
	Cancelled      int     `json:"cancelled"`
	NoShow         int     `json:"noShow"`
	CompletionRate float64 `json:"completionRate"`
}

// ActionResponse reports whether a lifecycle call changed the reservation.
type ActionResponse struct {
	Applied bool   `json:"applied"`
	Status  string `json:"status"`
}

type BookingResponse struct {
	Reservation *ReservationResponse `json:"reservation"`
	Table       *TableResponse       `json:"table,omitempty"`
}

func FromReservationView(v *queries.ReservationView) *ReservationResponse {
	res := &ReservationResponse{}
	_ = copier.Copy(res, v)
	if res.SpecialRequests == nil {
		res.SpecialRequests = []string{}
	}
	return res
}

func FromReservationViews(vs []*queries.ReservationView) []*ReservationResponse {
	out := make([]*ReservationResponse, len(vs))
	for i, v := range vs {
		out[i] = FromReservationView(v)
	}
	return out
}

func FromStats(s *queries.Stats) *StatsResponse {
	res := &StatsResponse{}
	_ = copier.Copy(res, s)
	return res
}

func FromOutcome(o reservation.Outcome, v *queries.ReservationView) *ActionResponse {
	return &ActionResponse{Applied: o.Applied(), Status: v.Status}
}
