package customer

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrPhoneRequired = errors.New("customer phone is required")
	ErrNameRequired  = errors.New("customer name is required")
)

// Customer is deduplicated by phone. Records are never deleted.
type Customer struct {
	id         uuid.UUID
	name       string
	phone      string
	email      *string
	externalID *string
	visitCount int
	notes      []string
	createdAt  time.Time
}

// Contact is what a booking channel knows about a guest.
type Contact struct {
	Name       string
	Phone      string
	Email      *string
	ExternalID *string
}

func New(name, phone string, email, externalID *string, now time.Time) (*Customer, error) {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return nil, ErrPhoneRequired
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrNameRequired
	}

	return &Customer{
		id:         uuid.New(),
		name:       name,
		phone:      phone,
		email:      nonEmpty(email),
		externalID: nonEmpty(externalID),
		createdAt:  now,
	}, nil
}

func Reconstruct(
	id uuid.UUID,
	name, phone string,
	email, externalID *string,
	visitCount int,
	notes []string,
	createdAt time.Time,
) *Customer {
	return &Customer{
		id:         id,
		name:       name,
		phone:      phone,
		email:      email,
		externalID: externalID,
		visitCount: visitCount,
		notes:      append([]string(nil), notes...),
		createdAt:  createdAt,
	}
}

func (c *Customer) AddVisit() {
	c.visitCount++
}

// FromContact creates the record for a guest seen for the first time.
func FromContact(ct Contact, now time.Time) (*Customer, error) {
	return New(ct.Name, ct.Phone, ct.Email, ct.ExternalID, now)
}

// Merge fills in contact details the record lacks. Name and phone are kept.
func (c *Customer) Merge(ct Contact) bool {
	ext := c.BackfillExternalID(ct.ExternalID)
	mail := c.BackfillEmail(ct.Email)
	return ext || mail
}

// BackfillExternalID sets the messaging id only when none is recorded yet.
func (c *Customer) BackfillExternalID(id *string) bool {
	id = nonEmpty(id)
	if c.externalID != nil || id == nil {
		return false
	}
	c.externalID = id
	return true
}

func (c *Customer) BackfillEmail(email *string) bool {
	email = nonEmpty(email)
	if c.email != nil || email == nil {
		return false
	}
	c.email = email
	return true
}

func (c *Customer) ID() uuid.UUID        { return c.id }
func (c *Customer) Name() string         { return c.name }
func (c *Customer) Phone() string        { return c.phone }
func (c *Customer) Email() *string       { return c.email }
func (c *Customer) ExternalID() *string  { return c.externalID }
func (c *Customer) VisitCount() int      { return c.visitCount }
func (c *Customer) Notes() []string      { return append([]string(nil), c.notes...) }
func (c *Customer) CreatedAt() time.Time { return c.createdAt }

func nonEmpty(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
