//go:build unit || e2e

package builder

import (
	"time"

	"table-booking/internal/domain/table"

	"github.com/google/uuid"
)

// BaseTime is the reference "evening" the fixtures are built around.
var BaseTime = time.Date(2030, time.June, 1, 18, 0, 0, 0, time.UTC)

type TableBuilder struct {
	Number      int
	Capacity    int
	Location    string
	Features    []string
	Status      table.Status
	HolderID    *uuid.UUID
	MinDuration time.Duration
	MaxDuration time.Duration
}

func NewTableBuilder() *TableBuilder {
	return &TableBuilder{
		Number:      1,
		Capacity:    2,
		Location:    "window",
		Status:      table.StatusAvailable,
		MinDuration: table.DefaultMinDuration,
		MaxDuration: table.DefaultMaxDuration,
	}
}

func (b *TableBuilder) With(mutate func(*TableBuilder)) *TableBuilder {
	mutate(b)
	return b
}

func (b *TableBuilder) BuildDomain() (*table.Table, error) {
	t, err := table.New(b.Number, b.Capacity, b.Location, BaseTime.Add(-24*time.Hour), b.Features...)
	if err != nil {
		return nil, err
	}
	if err := t.SetDurationLimits(b.MinDuration, b.MaxDuration); err != nil {
		return nil, err
	}
	switch b.Status {
	case table.StatusReserved:
		t.Reserve(b.holder())
	case table.StatusOccupied:
		t.Occupy(b.holder())
	case table.StatusMaintenance:
		_ = t.EnterMaintenance()
	case table.StatusAvailable:
	}
	return t, nil
}

// MustBuild panics on invalid input; fixtures only.
func (b *TableBuilder) MustBuild() *table.Table {
	t, err := b.BuildDomain()
	if err != nil {
		panic(err)
	}
	return t
}

func (b *TableBuilder) WithNumber(n int) *TableBuilder {
	b.Number = n
	return b
}

func (b *TableBuilder) WithCapacity(c int) *TableBuilder {
	b.Capacity = c
	return b
}

func (b *TableBuilder) WithLocation(l string) *TableBuilder {
	b.Location = l
	return b
}

func (b *TableBuilder) WithFeatures(f ...string) *TableBuilder {
	b.Features = f
	return b
}

func (b *TableBuilder) WithStatus(s table.Status) *TableBuilder {
	b.Status = s
	return b
}

func (b *TableBuilder) WithHolder(id uuid.UUID) *TableBuilder {
	b.HolderID = &id
	return b
}

func (b *TableBuilder) holder() uuid.UUID {
	if b.HolderID != nil {
		return *b.HolderID
	}
	return uuid.New()
}
