package table

import "fmt"

type Status string

const (
	StatusAvailable   Status = "available"
	StatusReserved    Status = "reserved"
	StatusOccupied    Status = "occupied"
	StatusMaintenance Status = "maintenance"
)

func (s Status) String() string {
	return string(s)
}

func (s Status) IsValid() bool {
	switch s {
	case StatusAvailable, StatusReserved, StatusOccupied, StatusMaintenance:
		return true
	default:
		return false
	}
}

// HoldsReservation reports whether a table in this status must reference a reservation.
func (s Status) HoldsReservation() bool {
	switch s {
	case StatusReserved, StatusOccupied:
		return true
	case StatusAvailable, StatusMaintenance:
		return false
	default:
		return false
	}
}

func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if !st.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
	}
	return st, nil
}
