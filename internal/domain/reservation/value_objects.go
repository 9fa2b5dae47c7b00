package reservation

import (
	"time"
)

// TimeSlot is the half-open window [start, end) a table is held for.
type TimeSlot struct {
	start time.Time
	end   time.Time
}

func NewTimeSlot(start time.Time, duration time.Duration) (TimeSlot, error) {
	if duration <= 0 {
		return TimeSlot{}, ErrInvalidDuration
	}
	if start.IsZero() {
		return TimeSlot{}, ErrInvalidTimeSlot
	}
	return TimeSlot{
		start: start,
		end:   start.Add(duration),
	}, nil
}

func (ts TimeSlot) Start() time.Time {
	return ts.start
}

func (ts TimeSlot) End() time.Time {
	return ts.end
}

func (ts TimeSlot) Duration() time.Duration {
	return ts.end.Sub(ts.start)
}

// Overlaps is false for adjacent slots: [18:00,19:30) and [19:30,21:00) do not overlap.
func (ts TimeSlot) Overlaps(other TimeSlot) bool {
	return ts.start.Before(other.end) && other.start.Before(ts.end)
}

func (ts TimeSlot) Contains(t time.Time) bool {
	return !t.Before(ts.start) && t.Before(ts.end)
}
