package errs

// Error classes. Every error leaving the usecase layer belongs to at most one.
var (
	ErrValidation = New("validation error")
	ErrNotFound   = New("not found")
	ErrConflict   = New("conflict")
	ErrStorage    = New("storage error")
)

var (
	// Validation
	ErrCapacityExceeded    = New("party size exceeds table capacity")
	ErrInvalidPartySize    = New("party size must be at least 1")
	ErrInvalidDuration     = New("duration outside table limits")
	ErrMissingBookingField = New("missing required booking field")

	// Not found
	ErrReservationNotFound = New("reservation not found")
	ErrTableNotFound       = New("table not found")
	ErrCustomerNotFound    = New("customer not found")

	// Conflict
	ErrTableUnavailable  = New("table unavailable")
	ErrNoTableAvailable  = New("no table available")
	ErrDuplicateTable    = New("table number already exists")
	ErrTableNotAvailable = New("table is not in a state that allows this change")
)

var classes = []struct {
	class   error
	members []error
}{
	{ErrValidation, []error{ErrCapacityExceeded, ErrInvalidPartySize, ErrInvalidDuration, ErrMissingBookingField}},
	{ErrNotFound, []error{ErrReservationNotFound, ErrTableNotFound, ErrCustomerNotFound}},
	{ErrConflict, []error{ErrTableUnavailable, ErrNoTableAvailable, ErrDuplicateTable, ErrTableNotAvailable}},
	{ErrStorage, nil},
}

// Class reports which error class err belongs to, or nil if none.
func Class(err error) error {
	if err == nil {
		return nil
	}
	for _, c := range classes {
		if Is(err, c.class) {
			return c.class
		}
		for _, m := range c.members {
			if Is(err, m) {
				return c.class
			}
		}
	}
	return nil
}
