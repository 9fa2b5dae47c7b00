package response

import (
	"time"

	"table-booking/internal/domain/table"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"
)

// TableResponse fields are filled from the table's getters of the same name.
type TableResponse struct {
	ID                   uuid.UUID  `json:"id"`
	Number               int        `json:"number"`
	Capacity             int        `json:"capacity"`
	Location             string     `json:"location"`
	Status               string     `json:"status"`
	CurrentReservationID *uuid.UUID `json:"currentReservationId,omitempty"`
	Features             []string   `json:"features"`
	MinDurationMinutes   int        `json:"minDurationMinutes"`
	MaxDurationMinutes   int        `json:"maxDurationMinutes"`
	CreatedAt            time.Time  `json:"createdAt"`
}

func FromTable(t *table.Table) *TableResponse {
	res := &TableResponse{}
	_ = copier.Copy(res, t)
	res.MinDurationMinutes = int(t.MinDuration() / time.Minute)
	res.MaxDurationMinutes = int(t.MaxDuration() / time.Minute)
	if res.Features == nil {
		res.Features = []string{}
	}
	return res
}

func FromTables(ts []*table.Table) []*TableResponse {
	out := make([]*TableResponse, len(ts))
	for i, t := range ts {
		out[i] = FromTable(t)
	}
	return out
}

type SeedResponse struct {
	Created int `json:"created"`
}
