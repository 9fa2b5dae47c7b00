package reservation

import "fmt"

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusSeated    Status = "seated"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
	StatusNoShow    Status = "no_show"
)

// Statuses lists every reservation status in lifecycle order.
var Statuses = []Status{
	StatusPending, StatusConfirmed, StatusSeated, StatusCompleted, StatusCancelled, StatusNoShow,
}

func (s Status) String() string {
	return string(s)
}

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusSeated, StatusCompleted, StatusCancelled, StatusNoShow:
		return true
	default:
		return false
	}
}

func (s Status) IsActive() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusSeated:
		return true
	case StatusCompleted, StatusCancelled, StatusNoShow:
		return false
	default:
		return false
	}
}

func (s Status) IsTerminal() bool {
	switch s {
	case StatusCompleted, StatusCancelled, StatusNoShow:
		return true
	case StatusPending, StatusConfirmed, StatusSeated:
		return false
	default:
		return false
	}
}

// StampField names the timestamp a transition into s records.
func (s Status) StampField() StampField {
	switch s {
	case StatusPending:
		return StampNone
	case StatusConfirmed:
		return StampConfirmed
	case StatusSeated:
		return StampSeated
	case StatusCompleted:
		return StampCompleted
	case StatusCancelled:
		return StampCancelled
	case StatusNoShow:
		return StampNoShow
	default:
		return StampNone
	}
}

func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if !st.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
	}
	return st, nil
}

type StampField int

const (
	StampNone StampField = iota
	StampConfirmed
	StampSeated
	StampCompleted
	StampCancelled
	StampNoShow
)

// Column is the storage column name shared by the SQL adapters.
func (f StampField) Column() string {
	switch f {
	case StampConfirmed:
		return "confirmed_at"
	case StampSeated:
		return "seated_at"
	case StampCompleted:
		return "completed_at"
	case StampCancelled:
		return "cancelled_at"
	case StampNoShow:
		return "no_show_at"
	case StampNone:
		return ""
	default:
		return ""
	}
}

type Source string

const (
	SourceBot     Source = "bot"
	SourceWebsite Source = "website"
	SourceAdmin   Source = "admin"
)

func (s Source) String() string {
	return string(s)
}

func (s Source) IsValid() bool {
	switch s {
	case SourceBot, SourceWebsite, SourceAdmin:
		return true
	default:
		return false
	}
}

// ParseSource falls back to SourceBot for an empty value.
func ParseSource(s string) (Source, error) {
	if s == "" {
		return SourceBot, nil
	}
	src := Source(s)
	if !src.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidSource, s)
	}
	return src, nil
}
