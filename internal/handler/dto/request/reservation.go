package request

import (
	"strings"
	"time"

	"table-booking/internal/domain/reservation"
	"table-booking/internal/usecase/commands"

	"github.com/cockroachdb/errors"
)

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

var ErrInvalidDateTime = errors.New("date must be YYYY-MM-DD and time HH:MM")

type BookReservationRequest struct {
	Name        string  `json:"name" binding:"required,max=100"`
	Phone       string  `json:"phone" binding:"required,max=32"`
	Email       *string `json:"email,omitempty" binding:"omitempty,email"`
	Date        string  `json:"date" binding:"required"`
	Time        string  `json:"time" binding:"required"`
	Guests      int     `json:"guests" binding:"required,min=1,max=100"`
	Duration    int     `json:"duration,omitempty" binding:"omitempty,min=1,max=1440"`
	TableNumber *int    `json:"table_number,omitempty" binding:"omitempty,min=1"`
	Comment     string  `json:"comment,omitempty" binding:"max=500"`
	Source      string  `json:"source,omitempty" binding:"omitempty,oneof=bot website admin"`
}

// ToParams resolves the wall-clock date and time in the venue's zone.
func (r BookReservationRequest) ToParams(loc *time.Location) (commands.BookParams, error) {
	start, err := ParseSlotStart(r.Date, r.Time, loc)
	if err != nil {
		return commands.BookParams{}, err
	}
	source := reservation.SourceWebsite
	if r.Source != "" {
		source = reservation.Source(r.Source)
	}
	return commands.BookParams{
		Name:        strings.TrimSpace(r.Name),
		Phone:       strings.TrimSpace(r.Phone),
		Email:       r.Email,
		Start:       start,
		PartySize:   r.Guests,
		Duration:    time.Duration(r.Duration) * time.Minute,
		Comment:     strings.TrimSpace(r.Comment),
		Source:      source,
		TableNumber: r.TableNumber,
	}, nil
}

type CancelReservationRequest struct {
	Reason string `json:"reason" binding:"max=500"`
}

type UpcomingQuery struct {
	Limit int `form:"limit" binding:"omitempty,min=0,max=100"`
}

type DayQuery struct {
	Date string `form:"date"`
}

// Day returns nil when no date was given.
func (q DayQuery) Day(loc *time.Location) (*time.Time, error) {
	if q.Date == "" {
		return nil, nil
	}
	day, err := time.ParseInLocation(DateLayout, q.Date, loc)
	if err != nil {
		return nil, errors.Mark(errors.Wrapf(err, "date %q", q.Date), ErrInvalidDateTime)
	}
	return &day, nil
}

func ParseSlotStart(date, clock string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	start, err := time.ParseInLocation(DateLayout+" "+TimeLayout, strings.TrimSpace(date)+" "+strings.TrimSpace(clock), loc)
	if err != nil {
		return time.Time{}, errors.Mark(errors.Wrapf(err, "date %q time %q", date, clock), ErrInvalidDateTime)
	}
	return start, nil
}
