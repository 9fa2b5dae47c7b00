package request

import (
	"time"

	"table-booking/internal/usecase/commands"
)

type AddTableRequest struct {
	Number      int      `json:"number" binding:"required,min=1"`
	Capacity    int      `json:"capacity" binding:"required,min=1,max=100"`
	Location    string   `json:"location,omitempty" binding:"max=64"`
	Features    []string `json:"features,omitempty" binding:"max=16,dive,max=64"`
	MinDuration int      `json:"min_duration,omitempty" binding:"omitempty,min=1"`
	MaxDuration int      `json:"max_duration,omitempty" binding:"omitempty,min=1"`
}

func (r AddTableRequest) ToParams() commands.AddTableParams {
	return commands.AddTableParams{
		Number:      r.Number,
		Capacity:    r.Capacity,
		Location:    r.Location,
		Features:    r.Features,
		MinDuration: time.Duration(r.MinDuration) * time.Minute,
		MaxDuration: time.Duration(r.MaxDuration) * time.Minute,
	}
}

type MaintenanceRequest struct {
	Enabled *bool `json:"enabled" binding:"required"`
}

type AvailabilityQuery struct {
	Date      string `form:"date" binding:"required"`
	Time      string `form:"time" binding:"required"`
	PartySize int    `form:"party_size" binding:"required,min=1,max=100"`
	Duration  int    `form:"duration" binding:"omitempty,min=1,max=1440"`
}

func (q AvailabilityQuery) Window(loc *time.Location) (time.Time, time.Duration, error) {
	start, err := ParseSlotStart(q.Date, q.Time, loc)
	if err != nil {
		return time.Time{}, 0, err
	}
	return start, time.Duration(q.Duration) * time.Minute, nil
}
