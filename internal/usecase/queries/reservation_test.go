//go:build unit

package queries_test

import (
	"bytes"
	"context"
	"encoding/csv"
	"testing"
	"time"

	"table-booking/internal/domain/customer"
	"table-booking/internal/domain/reservation"
	"table-booking/internal/infra/memory"
	"table-booking/internal/pkg/clock"
	"table-booking/internal/pkg/errs"
	"table-booking/internal/usecase/queries"
	"table-booking/internal/usecase/shared"
	"table-booking/tests/common/builder"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
)

type ReservationQueriesSuite struct {
	suite.Suite
	ctx      context.Context
	uow      *memory.UoW
	clock    *clock.MockClock
	venue    *time.Location
	q        queries.ReservationQueries
	customer uuid.UUID
}

func TestReservationQueriesSuite(t *testing.T) {
	suite.Run(t, new(ReservationQueriesSuite))
}

func (s *ReservationQueriesSuite) SetupTest() {
	var err error
	s.venue, err = time.LoadLocation("Europe/Moscow")
	s.Require().NoError(err)

	s.ctx = context.Background()
	s.uow = memory.NewUoW(nil)
	s.clock = clock.NewMockClock(builder.BaseTime.Add(-24 * time.Hour))
	s.q = queries.NewReservationQueries(s.uow, s.clock, queries.Settings{
		Location:  s.venue,
		OpTimeout: time.Second,
	})
	s.customer = s.seedCustomer("Anna", "+100")
}

// =============================================================================
// Get
// =============================================================================

func (s *ReservationQueriesSuite) TestGet_ResolvesCustomerAndTable() {
	tableID := s.seedTable(3, 4)
	res := s.insert(builder.NewReservationBuilder().
		WithCustomerID(s.customer).
		WithTableID(tableID).
		WithPartySize(3).
		WithRequests("birthday", "cake"))

	got, err := s.q.Get(s.ctx, res.ID())

	s.Require().NoError(err)
	s.Equal("Anna", got.CustomerName)
	s.Equal("+100", got.CustomerPhone)
	s.Require().NotNil(got.TableNumber)
	s.Equal(3, *got.TableNumber)
	s.Equal(90, got.DurationMinutes)
	s.Equal("pending", got.Status)
	s.Equal([]string{"birthday", "cake"}, got.SpecialRequests)
	s.False(got.Overdue)
}

func (s *ReservationQueriesSuite) TestGet_Unassigned() {
	res := s.insert(builder.NewReservationBuilder().WithCustomerID(s.customer).Unassigned())

	got, err := s.q.Get(s.ctx, res.ID())

	s.Require().NoError(err)
	s.Nil(got.TableID)
	s.Nil(got.TableNumber)
}

func (s *ReservationQueriesSuite) TestGet_UnknownID() {
	_, err := s.q.Get(s.ctx, uuid.New())

	s.True(errs.Is(err, errs.ErrReservationNotFound), "got %v", err)
	s.Equal(errs.ErrNotFound, errs.Class(err))
}

func (s *ReservationQueriesSuite) TestGet_SeatedPastEndIsOverdue() {
	res := s.insert(builder.NewReservationBuilder().WithCustomerID(s.customer).Unassigned())
	s.transition(res.ID(), reservation.StatusSeated, builder.BaseTime)
	s.clock.Set(builder.BaseTime.Add(2 * time.Hour))

	got, err := s.q.Get(s.ctx, res.ID())

	s.Require().NoError(err)
	s.True(got.Overdue)
	s.Require().NotNil(got.SeatedAt)
	s.True(builder.BaseTime.Equal(*got.SeatedAt))
}

// =============================================================================
// Listings
// =============================================================================

func (s *ReservationQueriesSuite) TestActive_ExcludesTerminal() {
	early := s.insert(builder.NewReservationBuilder().WithCustomerID(s.customer).WithWindow(0, time.Hour))
	late := s.insert(builder.NewReservationBuilder().WithCustomerID(s.customer).WithWindow(3*time.Hour, time.Hour))
	done := s.insert(builder.NewReservationBuilder().WithCustomerID(s.customer).WithWindow(time.Hour, time.Hour))
	s.transition(done.ID(), reservation.StatusCompleted, builder.BaseTime)

	got, err := s.q.Active(s.ctx)

	s.Require().NoError(err)
	s.Equal([]uuid.UUID{early.ID(), late.ID()}, ids(got))
}

func (s *ReservationQueriesSuite) TestToday_UsesVenueDate() {
	// 2030-06-01 22:30 UTC is already 2 June in Moscow.
	s.clock.Set(time.Date(2030, 6, 1, 22, 30, 0, 0, time.UTC))

	yesterday := s.insert(s.at(time.Date(2030, 6, 1, 20, 0, 0, 0, time.UTC)))
	afterMidnight := s.insert(s.at(time.Date(2030, 6, 1, 21, 30, 0, 0, time.UTC)))
	evening := s.insert(s.at(time.Date(2030, 6, 2, 19, 0, 0, 0, time.UTC)))
	tomorrow := s.insert(s.at(time.Date(2030, 6, 2, 21, 30, 0, 0, time.UTC)))
	cancelled := s.insert(s.at(time.Date(2030, 6, 2, 10, 0, 0, 0, time.UTC)))
	s.transition(cancelled.ID(), reservation.StatusCancelled, builder.BaseTime)

	got, err := s.q.Today(s.ctx)

	s.Require().NoError(err)
	s.Equal([]uuid.UUID{afterMidnight.ID(), evening.ID()}, ids(got))
	s.NotContains(ids(got), yesterday.ID())
	s.NotContains(ids(got), tomorrow.ID())
}

func (s *ReservationQueriesSuite) TestUpcoming_Limit() {
	var want []uuid.UUID
	for i := 0; i < 12; i++ {
		r := s.insert(builder.NewReservationBuilder().WithCustomerID(s.customer).WithWindow(time.Duration(i)*time.Hour, time.Hour))
		want = append(want, r.ID())
	}
	past := s.insert(builder.NewReservationBuilder().WithCustomerID(s.customer).WithWindow(-48*time.Hour, time.Hour))

	testCases := []struct {
		name  string
		limit int
		want  []uuid.UUID
	}{
		{name: "zero falls back to ten", limit: 0, want: want[:10]},
		{name: "negative falls back to ten", limit: -1, want: want[:10]},
		{name: "explicit limit", limit: 3, want: want[:3]},
		{name: "limit above count", limit: 50, want: want},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			got, err := s.q.Upcoming(s.ctx, tc.limit)

			s.Require().NoError(err)
			s.Empty(cmp.Diff(tc.want, ids(got)))
			s.NotContains(ids(got), past.ID())
		})
	}
}

func (s *ReservationQueriesSuite) TestByCustomer_NewestFirst() {
	other := s.seedCustomer("Boris", "+200")
	older := s.insert(builder.NewReservationBuilder().WithCustomerID(s.customer).WithWindow(-72*time.Hour, time.Hour))
	newer := s.insert(builder.NewReservationBuilder().WithCustomerID(s.customer).WithWindow(0, time.Hour))
	s.insert(builder.NewReservationBuilder().WithCustomerID(other).WithWindow(0, time.Hour))

	got, err := s.q.ByCustomer(s.ctx, s.customer)

	s.Require().NoError(err)
	s.Equal([]uuid.UUID{newer.ID(), older.ID()}, ids(got))
}

func (s *ReservationQueriesSuite) TestByCustomer_Unknown() {
	_, err := s.q.ByCustomer(s.ctx, uuid.New())

	s.True(errs.Is(err, errs.ErrCustomerNotFound), "got %v", err)
}

func (s *ReservationQueriesSuite) TestByTable_DayWindow() {
	tableID := s.seedTable(1, 4)
	first := s.insert(builder.NewReservationBuilder().WithCustomerID(s.customer).WithTableID(tableID).WithWindow(0, time.Hour))
	second := s.insert(builder.NewReservationBuilder().WithCustomerID(s.customer).WithTableID(tableID).WithWindow(2*time.Hour, time.Hour))
	nextDay := s.insert(builder.NewReservationBuilder().WithCustomerID(s.customer).WithTableID(tableID).WithWindow(24*time.Hour, time.Hour))
	day := time.Date(2030, 6, 1, 0, 0, 0, 0, time.UTC)

	all, err := s.q.ByTable(s.ctx, tableID, nil)
	s.Require().NoError(err)
	s.Equal([]uuid.UUID{first.ID(), second.ID(), nextDay.ID()}, ids(all))

	onDay, err := s.q.ByTable(s.ctx, tableID, &day)
	s.Require().NoError(err)
	s.Equal([]uuid.UUID{first.ID(), second.ID()}, ids(onDay))

	_, err = s.q.ByTable(s.ctx, uuid.New(), nil)
	s.True(errs.Is(err, errs.ErrTableNotFound), "got %v", err)
}

// =============================================================================
// Stats
// =============================================================================

func (s *ReservationQueriesSuite) TestStats() {
	testCases := []struct {
		name  string
		final []reservation.Status
		want  queries.Stats
	}{
		{
			name: "empty store",
			want: queries.Stats{},
		},
		{
			name:  "one of three completed",
			final: []reservation.Status{reservation.StatusCompleted, reservation.StatusCancelled, reservation.StatusPending},
			want:  queries.Stats{Total: 3, Completed: 1, Cancelled: 1, CompletionRate: 33.33},
		},
		{
			name:  "two of three completed",
			final: []reservation.Status{reservation.StatusCompleted, reservation.StatusCompleted, reservation.StatusNoShow},
			want:  queries.Stats{Total: 3, Completed: 2, NoShow: 1, CompletionRate: 66.67},
		},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			s.SetupTest()
			for i, status := range tc.final {
				r := s.insert(builder.NewReservationBuilder().WithCustomerID(s.customer).WithWindow(time.Duration(i)*time.Hour, time.Hour))
				if status != reservation.StatusPending {
					s.transition(r.ID(), status, builder.BaseTime)
				}
			}

			got, err := s.q.Stats(s.ctx)

			s.Require().NoError(err)
			s.Equal(tc.want, *got)
		})
	}
}

// =============================================================================
// Export
// =============================================================================

func (s *ReservationQueriesSuite) TestExport() {
	tableID := s.seedTable(1, 4)
	s.insert(builder.NewReservationBuilder().WithCustomerID(s.customer).WithTableID(tableID).WithWindow(0, time.Hour).WithRequests("window", "cake"))
	latest := s.insert(builder.NewReservationBuilder().
		WithCustomerID(s.customer).
		WithWindow(24*time.Hour, time.Hour).
		WithPartySize(5).
		WithSource(reservation.SourceAdmin))

	var buf bytes.Buffer
	s.Require().NoError(s.q.Export(s.ctx, &buf))

	rows, err := csv.NewReader(&buf).ReadAll()
	s.Require().NoError(err)
	s.Require().Len(rows, 3)
	s.Equal([]string{"ID", "Date", "Time", "Guests", "Name", "Phone", "Status", "Source", "Comment"}, rows[0])
	s.Equal([]string{latest.ID().String()[:8], "2030-06-02", "21:00", "5", "Anna", "+100", "pending", "admin", ""}, rows[1])
	s.Equal([]string{"2030-06-01", "21:00", "window"}, []string{rows[2][1], rows[2][2], rows[2][8]})
}

// =============================================================================
// helpers
// =============================================================================

func (s *ReservationQueriesSuite) at(start time.Time) *builder.ReservationBuilder {
	return builder.NewReservationBuilder().WithCustomerID(s.customer).WithStart(start).With(func(b *builder.ReservationBuilder) {
		b.Duration = time.Hour
	})
}

func (s *ReservationQueriesSuite) insert(b *builder.ReservationBuilder) *reservation.Reservation {
	s.T().Helper()
	r := b.MustBuild()
	s.Require().NoError(s.uow.Within(s.ctx, func(ctx context.Context, tx shared.Tx) error {
		_, err := tx.Reservations().Insert(ctx, r)
		return err
	}))
	return r
}

func (s *ReservationQueriesSuite) transition(id uuid.UUID, to reservation.Status, at time.Time) {
	s.T().Helper()
	s.Require().NoError(s.uow.Within(s.ctx, func(ctx context.Context, tx shared.Tx) error {
		return tx.Reservations().SetStatus(ctx, id, reservation.Transition{To: to, At: at})
	}))
}

func (s *ReservationQueriesSuite) seedTable(number, capacity int) uuid.UUID {
	s.T().Helper()
	t := builder.NewTableBuilder().WithNumber(number).WithCapacity(capacity).MustBuild()
	s.Require().NoError(s.uow.Within(s.ctx, func(ctx context.Context, tx shared.Tx) error {
		_, err := tx.Tables().Insert(ctx, t)
		return err
	}))
	return t.ID()
}

func (s *ReservationQueriesSuite) seedCustomer(name, phone string) uuid.UUID {
	s.T().Helper()
	var id uuid.UUID
	s.Require().NoError(s.uow.Within(s.ctx, func(ctx context.Context, tx shared.Tx) error {
		c, err := tx.Customers().UpsertByPhone(ctx, customer.Contact{Name: name, Phone: phone}, s.clock.Now())
		if err != nil {
			return err
		}
		id = c.ID()
		return nil
	}))
	return id
}

func ids(views []*queries.ReservationView) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(views))
	for _, v := range views {
		out = append(out, v.ID)
	}
	return out
}
