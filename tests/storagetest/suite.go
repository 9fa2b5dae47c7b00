//go:build unit || e2e

// Package storagetest holds the behaviour every shared.UnitOfWork backend must
// share. Backends embed Suite and supply a factory returning empty storage.
package storagetest

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"table-booking/internal/domain/availability"
	"table-booking/internal/domain/customer"
	"table-booking/internal/domain/reservation"
	"table-booking/internal/domain/table"
	"table-booking/internal/infra"
	"table-booking/internal/usecase/shared"
	"table-booking/tests/common/builder"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
)

var errSlotTaken = errors.New("slot taken")

type Suite struct {
	suite.Suite

	// NewUoW returns a backend over empty storage; it is called once per test.
	NewUoW func(t *testing.T) shared.UnitOfWork

	uow shared.UnitOfWork
	ctx context.Context
}

func (s *Suite) SetupTest() {
	s.ctx = context.Background()
	s.uow = s.NewUoW(s.T())
}

func (s *Suite) TearDownTest() {
	if s.uow != nil {
		s.NoError(s.uow.Close())
	}
}

// =============================================================================
// helpers
// =============================================================================

func (s *Suite) insertTable(b *builder.TableBuilder) *table.Table {
	t := b.MustBuild()
	err := s.uow.Within(s.ctx, func(ctx context.Context, tx shared.Tx) error {
		_, err := tx.Tables().Insert(ctx, t)
		return err
	})
	s.Require().NoError(err)
	return t
}

func (s *Suite) insertCustomer(name, phone string) *customer.Customer {
	var c *customer.Customer
	err := s.uow.Within(s.ctx, func(ctx context.Context, tx shared.Tx) error {
		var err error
		c, err = tx.Customers().UpsertByPhone(ctx, customer.Contact{Name: name, Phone: phone}, builder.BaseTime)
		return err
	})
	s.Require().NoError(err)
	return c
}

func (s *Suite) insertReservation(r *reservation.Reservation) {
	err := s.uow.Within(s.ctx, func(ctx context.Context, tx shared.Tx) error {
		_, err := tx.Reservations().Insert(ctx, r)
		return err
	})
	s.Require().NoError(err)
}

func (s *Suite) read(fn func(ctx context.Context, tx shared.Tx) error) {
	s.Require().NoError(s.uow.WithinReadOnly(s.ctx, fn))
}

func ids(rs []*reservation.Reservation) []uuid.UUID {
	out := make([]uuid.UUID, len(rs))
	for i, r := range rs {
		out[i] = r.ID()
	}
	return out
}

func numbers(ts []*table.Table) []int {
	out := make([]int, len(ts))
	for i, t := range ts {
		out[i] = t.Number()
	}
	return out
}

func mustSlot(start time.Time, d time.Duration) reservation.TimeSlot {
	slot, err := reservation.NewTimeSlot(start, d)
	if err != nil {
		panic(err)
	}
	return slot
}

// =============================================================================
// tables
// =============================================================================

func (s *Suite) TestTables_InsertGetList() {
	t3 := s.insertTable(builder.NewTableBuilder().WithNumber(3).WithCapacity(4).WithFeatures("terrace", "heater"))
	s.insertTable(builder.NewTableBuilder().WithNumber(1).WithCapacity(2))
	s.insertTable(builder.NewTableBuilder().WithNumber(2).WithCapacity(6))

	s.read(func(ctx context.Context, tx shared.Tx) error {
		all, err := tx.Tables().ListAll(ctx)
		s.Require().NoError(err)
		s.Equal([]int{1, 2, 3}, numbers(all))

		got, err := tx.Tables().Get(ctx, t3.ID())
		s.Require().NoError(err)
		s.Equal(3, got.Number())
		s.Equal(4, got.Capacity())
		s.Equal("window", got.Location())
		s.Equal([]string{"terrace", "heater"}, got.Features())
		s.Equal(table.StatusAvailable, got.Status())
		s.Nil(got.CurrentReservationID())
		s.Equal(table.DefaultMinDuration, got.MinDuration())
		s.Equal(table.DefaultMaxDuration, got.MaxDuration())

		byNumber, err := tx.Tables().GetByNumber(ctx, 3)
		s.Require().NoError(err)
		s.Equal(t3.ID(), byNumber.ID())

		_, err = tx.Tables().Get(ctx, uuid.New())
		s.True(infra.IsKind(err, infra.KindNotFound), "got %v", err)

		_, err = tx.Tables().GetByNumber(ctx, 99)
		s.True(infra.IsKind(err, infra.KindNotFound), "got %v", err)
		return nil
	})
}

func (s *Suite) TestTables_DuplicateNumber() {
	s.insertTable(builder.NewTableBuilder().WithNumber(5))

	err := s.uow.Within(s.ctx, func(ctx context.Context, tx shared.Tx) error {
		_, err := tx.Tables().Insert(ctx, builder.NewTableBuilder().WithNumber(5).MustBuild())
		return err
	})
	s.True(infra.IsKind(err, infra.KindDuplicateKey), "got %v", err)
}

func (s *Suite) TestTables_SetStatus() {
	t := s.insertTable(builder.NewTableBuilder())
	holder := uuid.New()

	err := s.uow.Within(s.ctx, func(ctx context.Context, tx shared.Tx) error {
		return tx.Tables().SetStatus(ctx, t.ID(), table.StatusReserved, &holder)
	})
	s.Require().NoError(err)

	s.read(func(ctx context.Context, tx shared.Tx) error {
		got, err := tx.Tables().Get(ctx, t.ID())
		s.Require().NoError(err)
		s.Equal(table.StatusReserved, got.Status())
		s.Require().NotNil(got.CurrentReservationID())
		s.Equal(holder, *got.CurrentReservationID())
		return nil
	})

	err = s.uow.Within(s.ctx, func(ctx context.Context, tx shared.Tx) error {
		return tx.Tables().SetStatus(ctx, t.ID(), table.StatusAvailable, nil)
	})
	s.Require().NoError(err)

	s.read(func(ctx context.Context, tx shared.Tx) error {
		got, err := tx.Tables().Get(ctx, t.ID())
		s.Require().NoError(err)
		s.Equal(table.StatusAvailable, got.Status())
		s.Nil(got.CurrentReservationID())
		return nil
	})

	err = s.uow.Within(s.ctx, func(ctx context.Context, tx shared.Tx) error {
		return tx.Tables().SetStatus(ctx, uuid.New(), table.StatusAvailable, nil)
	})
	s.True(infra.IsKind(err, infra.KindNotFound), "got %v", err)
}

// =============================================================================
// availability
// =============================================================================

func (s *Suite) TestFindAvailable_OverlapAndAdjacency() {
	cust := s.insertCustomer("Ivan", "+70000000001")
	t1 := s.insertTable(builder.NewTableBuilder().WithNumber(1).WithCapacity(2))
	s.insertTable(builder.NewTableBuilder().WithNumber(2).WithCapacity(4))

	// 19:00-20:30 on table 1
	s.insertReservation(builder.NewReservationBuilder().
		WithCustomerID(cust.ID()).WithTableID(t1.ID()).
		WithWindow(time.Hour, 90*time.Minute).MustBuild())

	s.read(func(ctx context.Context, tx shared.Tx) error {
		overlapping, err := tx.Tables().FindAvailable(ctx, 2, mustSlot(builder.BaseTime.Add(90*time.Minute), 90*time.Minute))
		s.Require().NoError(err)
		s.Equal([]int{2}, numbers(overlapping))

		adjacent, err := tx.Tables().FindAvailable(ctx, 2, mustSlot(builder.BaseTime.Add(150*time.Minute), 90*time.Minute))
		s.Require().NoError(err)
		s.Equal([]int{1, 2}, numbers(adjacent))
		return nil
	})
}

func (s *Suite) TestFindAvailable_IgnoresTerminalAndFiltersStatus() {
	cust := s.insertCustomer("Ivan", "+70000000001")
	t1 := s.insertTable(builder.NewTableBuilder().WithNumber(1).WithCapacity(4))
	s.insertTable(builder.NewTableBuilder().WithNumber(2).WithCapacity(4).WithStatus(table.StatusMaintenance))
	s.insertTable(builder.NewTableBuilder().WithNumber(3).WithCapacity(2))
	s.insertTable(builder.NewTableBuilder().WithNumber(4).WithCapacity(6))
	s.insertTable(builder.NewTableBuilder().WithNumber(5).WithCapacity(4))

	cancelled := builder.NewReservationBuilder().WithCustomerID(cust.ID()).WithTableID(t1.ID()).MustBuild()
	s.insertReservation(cancelled)
	err := s.uow.Within(s.ctx, func(ctx context.Context, tx shared.Tx) error {
		return tx.Reservations().SetStatus(ctx, cancelled.ID(), reservation.Transition{
			To: reservation.StatusCancelled, At: builder.BaseTime,
		})
	})
	s.Require().NoError(err)

	s.read(func(ctx context.Context, tx shared.Tx) error {
		got, err := tx.Tables().FindAvailable(ctx, 3, mustSlot(builder.BaseTime, 90*time.Minute))
		s.Require().NoError(err)
		s.Equal([]int{1, 5, 4}, numbers(got))
		return nil
	})
}

// The storage query and the pure engine must agree on the same data.
func (s *Suite) TestFindAvailable_AgreesWithEngine() {
	cust := s.insertCustomer("Ivan", "+70000000001")
	var tables []*table.Table
	for i, capacity := range []int{2, 4, 4, 6, 8, 2} {
		tables = append(tables, s.insertTable(builder.NewTableBuilder().WithNumber(i+1).WithCapacity(capacity)))
	}
	var reservations []*reservation.Reservation
	for i, offset := range []time.Duration{0, 45 * time.Minute, 3 * time.Hour} {
		r := builder.NewReservationBuilder().WithCustomerID(cust.ID()).
			WithTableID(tables[i*2].ID()).WithWindow(offset, 90*time.Minute).MustBuild()
		s.insertReservation(r)
		reservations = append(reservations, r)
	}

	for _, slot := range []reservation.TimeSlot{
		mustSlot(builder.BaseTime, time.Hour),
		mustSlot(builder.BaseTime.Add(2*time.Hour), time.Hour),
		mustSlot(builder.BaseTime.Add(-2*time.Hour), 2*time.Hour),
	} {
		for _, party := range []int{1, 3, 5} {
			want := numbers(availability.FindCandidates(tables, reservations, party, slot))
			s.read(func(ctx context.Context, tx shared.Tx) error {
				got, err := tx.Tables().FindAvailable(ctx, party, slot)
				s.Require().NoError(err)
				if diff := cmp.Diff(want, numbers(got)); diff != "" {
					s.Failf("candidates mismatch", "party %d slot %v (-engine +storage):\n%s", party, slot.Start(), diff)
				}
				return nil
			})
		}
	}
}

// =============================================================================
// customers
// =============================================================================

func (s *Suite) TestCustomers_UpsertByPhone() {
	first := s.insertCustomer("Olga", "+71112223344")
	s.Nil(first.ExternalID())
	s.Equal(0, first.VisitCount())

	ext := "tg-42"
	var merged *customer.Customer
	err := s.uow.Within(s.ctx, func(ctx context.Context, tx shared.Tx) error {
		var err error
		merged, err = tx.Customers().UpsertByPhone(ctx, customer.Contact{Name: "Olga K.", Phone: "+71112223344", ExternalID: &ext}, builder.BaseTime)
		return err
	})
	s.Require().NoError(err)
	s.Equal(first.ID(), merged.ID())
	s.Equal("Olga", merged.Name())
	s.Require().NotNil(merged.ExternalID())
	s.Equal("tg-42", *merged.ExternalID())

	other := "tg-99"
	err = s.uow.Within(s.ctx, func(ctx context.Context, tx shared.Tx) error {
		again, err := tx.Customers().UpsertByPhone(ctx, customer.Contact{Name: "Olga", Phone: "+71112223344", ExternalID: &other}, builder.BaseTime)
		s.Require().NoError(err)
		s.Equal("tg-42", *again.ExternalID())
		return tx.Customers().IncrementVisits(ctx, first.ID())
	})
	s.Require().NoError(err)

	s.read(func(ctx context.Context, tx shared.Tx) error {
		got, err := tx.Customers().Get(ctx, first.ID())
		s.Require().NoError(err)
		s.Equal(1, got.VisitCount())
		s.Equal("+71112223344", got.Phone())

		_, err = tx.Customers().Get(ctx, uuid.New())
		s.True(infra.IsKind(err, infra.KindNotFound), "got %v", err)
		return nil
	})
}

func (s *Suite) upsert(contact customer.Contact) (*customer.Customer, error) {
	var c *customer.Customer
	err := s.uow.Within(s.ctx, func(ctx context.Context, tx shared.Tx) error {
		var err error
		c, err = tx.Customers().UpsertByPhone(ctx, contact, builder.BaseTime)
		return err
	})
	return c, err
}

func (s *Suite) TestCustomers_UpsertByPhone_Email() {
	email := "guest@example.com"
	created, err := s.upsert(customer.Contact{Name: "Guest", Phone: "+70000000020", Email: &email})
	s.Require().NoError(err)
	s.Require().NotNil(created.Email())
	s.Equal(email, *created.Email())
	s.True(created.CreatedAt().Equal(builder.BaseTime), "created at %v", created.CreatedAt())

	plain := s.insertCustomer("Petr", "+70000000021")
	s.Nil(plain.Email())

	backfill, later := "petr@example.com", "other@example.com"
	merged, err := s.upsert(customer.Contact{Name: "Petr", Phone: "+70000000021", Email: &backfill})
	s.Require().NoError(err)
	s.Equal(plain.ID(), merged.ID())
	s.Require().NotNil(merged.Email())
	s.Equal(backfill, *merged.Email())

	_, err = s.upsert(customer.Contact{Name: "Petr", Phone: "+70000000021", Email: &later})
	s.Require().NoError(err)

	s.read(func(ctx context.Context, tx shared.Tx) error {
		got, err := tx.Customers().Get(ctx, created.ID())
		s.Require().NoError(err)
		s.Require().NotNil(got.Email())
		s.Equal(email, *got.Email())
		s.True(got.CreatedAt().Equal(builder.BaseTime), "created at %v", got.CreatedAt())

		got, err = tx.Customers().Get(ctx, plain.ID())
		s.Require().NoError(err)
		s.Require().NotNil(got.Email())
		s.Equal(backfill, *got.Email())
		return nil
	})
}

func (s *Suite) TestCustomers_UpsertByPhone_EmptyName() {
	known := s.insertCustomer("Olga", "+70000000030")

	got, err := s.upsert(customer.Contact{Name: "  ", Phone: "+70000000030"})
	s.Require().NoError(err)
	s.Equal(known.ID(), got.ID())
	s.Equal("Olga", got.Name())

	_, err = s.upsert(customer.Contact{Name: "", Phone: "+70000000031"})
	s.ErrorIs(err, customer.ErrNameRequired)

	_, err = s.upsert(customer.Contact{Name: "Nobody", Phone: " "})
	s.ErrorIs(err, customer.ErrPhoneRequired)
}

// =============================================================================
// reservations
// =============================================================================

func (s *Suite) TestReservations_RoundTrip() {
	cust := s.insertCustomer("Ivan", "+70000000001")
	t := s.insertTable(builder.NewTableBuilder())

	assigned := builder.NewReservationBuilder().WithCustomerID(cust.ID()).WithTableID(t.ID()).
		WithRequests("window seat", "birthday").WithSource(reservation.SourceAdmin).MustBuild()
	unassigned := builder.NewReservationBuilder().WithCustomerID(cust.ID()).Unassigned().
		WithSource(reservation.SourceBot).WithPartySize(5).MustBuild()
	s.insertReservation(assigned)
	s.insertReservation(unassigned)

	s.read(func(ctx context.Context, tx shared.Tx) error {
		got, err := tx.Reservations().Get(ctx, assigned.ID())
		s.Require().NoError(err)
		s.Equal(assigned.CustomerID(), got.CustomerID())
		s.Require().NotNil(got.TableID())
		s.Equal(t.ID(), *got.TableID())
		s.True(assigned.StartTime().Equal(got.StartTime()))
		s.True(assigned.EndTime().Equal(got.EndTime()))
		s.Equal(reservation.StatusPending, got.Status())
		s.Equal([]string{"window seat", "birthday"}, got.SpecialRequests())
		s.Equal(reservation.SourceAdmin, got.Source())
		s.Nil(got.ConfirmedAt())
		s.Nil(got.CancellationReason())

		got, err = tx.Reservations().Get(ctx, unassigned.ID())
		s.Require().NoError(err)
		s.Nil(got.TableID())
		s.Equal(5, got.PartySize())
		s.Equal(reservation.SourceBot, got.Source())
		s.Empty(got.SpecialRequests())

		_, err = tx.Reservations().Get(ctx, uuid.New())
		s.True(infra.IsKind(err, infra.KindNotFound), "got %v", err)
		return nil
	})
}

func (s *Suite) TestReservations_Listings() {
	ivan := s.insertCustomer("Ivan", "+70000000001")
	olga := s.insertCustomer("Olga", "+70000000002")
	t1 := s.insertTable(builder.NewTableBuilder().WithNumber(1))
	t2 := s.insertTable(builder.NewTableBuilder().WithNumber(2))

	past := builder.NewReservationBuilder().WithCustomerID(ivan.ID()).WithTableID(t1.ID()).WithWindow(-26*time.Hour, time.Hour).MustBuild()
	tonight := builder.NewReservationBuilder().WithCustomerID(ivan.ID()).WithTableID(t1.ID()).WithWindow(time.Hour, time.Hour).MustBuild()
	later := builder.NewReservationBuilder().WithCustomerID(olga.ID()).WithTableID(t2.ID()).WithWindow(3*time.Hour, time.Hour).MustBuild()
	tomorrow := builder.NewReservationBuilder().WithCustomerID(olga.ID()).WithTableID(t1.ID()).WithWindow(24*time.Hour, time.Hour).MustBuild()
	done := builder.NewReservationBuilder().WithCustomerID(olga.ID()).WithTableID(t2.ID()).WithWindow(2*time.Hour, time.Hour).MustBuild()
	for _, r := range []*reservation.Reservation{past, tonight, later, tomorrow, done} {
		s.insertReservation(r)
	}
	err := s.uow.Within(s.ctx, func(ctx context.Context, tx shared.Tx) error {
		if err := tx.Reservations().SetStatus(ctx, done.ID(), reservation.Transition{To: reservation.StatusCompleted, At: builder.BaseTime}); err != nil {
			return err
		}
		return tx.Reservations().SetStatus(ctx, past.ID(), reservation.Transition{To: reservation.StatusSeated, At: builder.BaseTime})
	})
	s.Require().NoError(err)

	s.read(func(ctx context.Context, tx shared.Tx) error {
		repo := tx.Reservations()

		active, err := repo.ListActive(ctx)
		s.Require().NoError(err)
		s.Equal([]uuid.UUID{past.ID(), tonight.ID(), later.ID(), tomorrow.ID()}, ids(active))

		upcoming, err := repo.ListUpcoming(ctx, builder.BaseTime, 2)
		s.Require().NoError(err)
		s.Equal([]uuid.UUID{tonight.ID(), later.ID()}, ids(upcoming))

		upcoming, err = repo.ListUpcoming(ctx, builder.BaseTime, 0)
		s.Require().NoError(err)
		s.Equal([]uuid.UUID{tonight.ID(), later.ID(), tomorrow.ID()}, ids(upcoming))

		byCustomer, err := repo.ListByCustomer(ctx, olga.ID())
		s.Require().NoError(err)
		s.Equal([]uuid.UUID{tomorrow.ID(), later.ID(), done.ID()}, ids(byCustomer))

		day := time.Date(2030, time.June, 1, 0, 0, 0, 0, time.UTC)
		byTable, err := repo.ListByTable(ctx, t1.ID(), &day)
		s.Require().NoError(err)
		s.Equal([]uuid.UUID{tonight.ID()}, ids(byTable))

		byTable, err = repo.ListByTable(ctx, t1.ID(), nil)
		s.Require().NoError(err)
		s.Equal([]uuid.UUID{past.ID(), tonight.ID(), tomorrow.ID()}, ids(byTable))

		all, err := repo.ListAll(ctx)
		s.Require().NoError(err)
		s.Equal([]uuid.UUID{tomorrow.ID(), later.ID(), done.ID(), tonight.ID(), past.ID()}, ids(all))
		return nil
	})
}

func (s *Suite) TestReservations_HasOverlap() {
	cust := s.insertCustomer("Ivan", "+70000000001")
	t := s.insertTable(builder.NewTableBuilder())
	s.insertReservation(builder.NewReservationBuilder().WithCustomerID(cust.ID()).WithTableID(t.ID()).
		WithWindow(time.Hour, 90*time.Minute).MustBuild())

	cases := []struct {
		name   string
		slot   reservation.TimeSlot
		expect bool
	}{
		{"inside", mustSlot(builder.BaseTime.Add(90*time.Minute), 30*time.Minute), true},
		{"straddles start", mustSlot(builder.BaseTime.Add(30*time.Minute), time.Hour), true},
		{"ends at start", mustSlot(builder.BaseTime, time.Hour), false},
		{"starts at end", mustSlot(builder.BaseTime.Add(150*time.Minute), time.Hour), false},
	}
	s.read(func(ctx context.Context, tx shared.Tx) error {
		for _, tc := range cases {
			got, err := tx.Reservations().HasOverlap(ctx, t.ID(), tc.slot)
			s.Require().NoError(err)
			s.Equal(tc.expect, got, tc.name)
		}
		got, err := tx.Reservations().HasOverlap(ctx, uuid.New(), cases[0].slot)
		s.Require().NoError(err)
		s.False(got)
		return nil
	})
}

func (s *Suite) TestReservations_SetStatusStampsAndStats() {
	cust := s.insertCustomer("Ivan", "+70000000001")
	var rs []*reservation.Reservation
	for i := 0; i < 4; i++ {
		r := builder.NewReservationBuilder().WithCustomerID(cust.ID()).Unassigned().
			WithWindow(time.Duration(i)*time.Hour, time.Hour).MustBuild()
		s.insertReservation(r)
		rs = append(rs, r)
	}

	reason := "changed plans"
	at := builder.BaseTime.Add(5 * time.Minute)
	err := s.uow.Within(s.ctx, func(ctx context.Context, tx shared.Tx) error {
		repo := tx.Reservations()
		if err := repo.SetStatus(ctx, rs[0].ID(), reservation.Transition{To: reservation.StatusConfirmed, At: at}); err != nil {
			return err
		}
		if err := repo.SetStatus(ctx, rs[1].ID(), reservation.Transition{To: reservation.StatusCompleted, At: at}); err != nil {
			return err
		}
		if err := repo.SetStatus(ctx, rs[2].ID(), reservation.Transition{To: reservation.StatusCancelled, At: at, Reason: &reason}); err != nil {
			return err
		}
		return repo.SetStatus(ctx, rs[3].ID(), reservation.Transition{To: reservation.StatusNoShow, At: at})
	})
	s.Require().NoError(err)

	s.read(func(ctx context.Context, tx shared.Tx) error {
		repo := tx.Reservations()

		confirmed, err := repo.Get(ctx, rs[0].ID())
		s.Require().NoError(err)
		s.Equal(reservation.StatusConfirmed, confirmed.Status())
		s.Require().NotNil(confirmed.ConfirmedAt())
		s.True(at.Equal(*confirmed.ConfirmedAt()))

		cancelled, err := repo.Get(ctx, rs[2].ID())
		s.Require().NoError(err)
		s.Require().NotNil(cancelled.CancelledAt())
		s.Require().NotNil(cancelled.CancellationReason())
		s.Equal(reason, *cancelled.CancellationReason())

		noShow, err := repo.Get(ctx, rs[3].ID())
		s.Require().NoError(err)
		s.Require().NotNil(noShow.NoShowAt())

		counts, err := repo.Stats(ctx)
		s.Require().NoError(err)
		s.Equal(shared.ReservationCounts{Total: 4, Completed: 1, Cancelled: 1, NoShow: 1}, counts)
		return nil
	})

	err = s.uow.Within(s.ctx, func(ctx context.Context, tx shared.Tx) error {
		return tx.Reservations().SetStatus(ctx, uuid.New(), reservation.Transition{To: reservation.StatusConfirmed, At: at})
	})
	s.True(infra.IsKind(err, infra.KindNotFound), "got %v", err)
}

func (s *Suite) TestReservations_InsertRequiresCustomer() {
	err := s.uow.Within(s.ctx, func(ctx context.Context, tx shared.Tx) error {
		_, err := tx.Reservations().Insert(ctx, builder.NewReservationBuilder().Unassigned().MustBuild())
		return err
	})
	s.Error(err)
}

// =============================================================================
// transactions
// =============================================================================

func (s *Suite) TestWithin_RollsBackOnError() {
	boom := errors.New("boom")
	var attempted *table.Table
	err := s.uow.Within(s.ctx, func(ctx context.Context, tx shared.Tx) error {
		attempted = builder.NewTableBuilder().WithNumber(7).MustBuild()
		if _, err := tx.Tables().Insert(ctx, attempted); err != nil {
			return err
		}
		if _, err := tx.Customers().UpsertByPhone(ctx, customer.Contact{Name: "Ghost", Phone: "+70000000009"}, builder.BaseTime); err != nil {
			return err
		}
		return boom
	})
	s.ErrorIs(err, boom)

	s.read(func(ctx context.Context, tx shared.Tx) error {
		all, err := tx.Tables().ListAll(ctx)
		s.Require().NoError(err)
		s.Empty(all)
		_, err = tx.Tables().Get(ctx, attempted.ID())
		s.True(infra.IsKind(err, infra.KindNotFound), "got %v", err)
		return nil
	})
}

func (s *Suite) TestWithinReadOnly_RejectsWrites() {
	err := s.uow.WithinReadOnly(s.ctx, func(ctx context.Context, tx shared.Tx) error {
		_, err := tx.Tables().Insert(ctx, builder.NewTableBuilder().MustBuild())
		return err
	})
	s.Error(err)
}

func (s *Suite) TestLockTable_UnknownTable() {
	err := s.uow.Within(s.ctx, func(ctx context.Context, tx shared.Tx) error {
		return tx.LockTable(ctx, uuid.New())
	})
	s.True(infra.IsKind(err, infra.KindNotFound), "got %v", err)
}

// Parallel check-then-insert on one table: exactly one booking wins.
func (s *Suite) TestConcurrentBookingsOnOneTable() {
	cust := s.insertCustomer("Ivan", "+70000000001")
	t := s.insertTable(builder.NewTableBuilder().WithCapacity(4))

	const workers = 8
	results := make(chan error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			r := builder.NewReservationBuilder().WithCustomerID(cust.ID()).WithTableID(t.ID()).
				WithWindow(time.Duration(i)*time.Minute, 90*time.Minute).MustBuild()
			results <- s.uow.Within(s.ctx, func(ctx context.Context, tx shared.Tx) error {
				if err := tx.LockTable(ctx, t.ID()); err != nil {
					return err
				}
				taken, err := tx.Reservations().HasOverlap(ctx, t.ID(), r.Slot())
				if err != nil {
					return err
				}
				if taken {
					return errSlotTaken
				}
				if _, err := tx.Reservations().Insert(ctx, r); err != nil {
					return err
				}
				id := r.ID()
				return tx.Tables().SetStatus(ctx, t.ID(), table.StatusReserved, &id)
			})
		}(i)
	}
	wg.Wait()
	close(results)

	wins := 0
	for err := range results {
		if err == nil {
			wins++
		}
	}
	s.Equal(1, wins)

	s.read(func(ctx context.Context, tx shared.Tx) error {
		booked, err := tx.Reservations().ListByTable(ctx, t.ID(), nil)
		s.Require().NoError(err)
		s.Len(booked, 1)

		got, err := tx.Tables().Get(ctx, t.ID())
		s.Require().NoError(err)
		s.Equal(table.StatusReserved, got.Status())
		s.Require().NotNil(got.CurrentReservationID())
		s.Equal(booked[0].ID(), *got.CurrentReservationID())
		return nil
	})
}
