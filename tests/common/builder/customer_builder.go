//go:build unit || e2e

package builder

import (
	"time"

	"table-booking/internal/domain/customer"
)

type CustomerBuilder struct {
	Name       string
	Phone      string
	Email      *string
	ExternalID *string
}

func NewCustomerBuilder() *CustomerBuilder {
	return &CustomerBuilder{
		Name:  "Anna Petrova",
		Phone: "+79990001122",
	}
}

func (b *CustomerBuilder) With(mutate func(*CustomerBuilder)) *CustomerBuilder {
	mutate(b)
	return b
}

func (b *CustomerBuilder) BuildDomain() (*customer.Customer, error) {
	return customer.New(b.Name, b.Phone, b.Email, b.ExternalID, BaseTime.Add(-72*time.Hour))
}

func (b *CustomerBuilder) WithName(n string) *CustomerBuilder {
	b.Name = n
	return b
}

func (b *CustomerBuilder) WithPhone(p string) *CustomerBuilder {
	b.Phone = p
	return b
}

func (b *CustomerBuilder) WithExternalID(id string) *CustomerBuilder {
	b.ExternalID = &id
	return b
}
