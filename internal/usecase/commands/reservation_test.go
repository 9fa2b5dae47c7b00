//go:build unit

package commands_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"table-booking/internal/domain/customer"
	"table-booking/internal/domain/reservation"
	"table-booking/internal/domain/table"
	"table-booking/internal/infra/memory"
	"table-booking/internal/pkg/clock"
	"table-booking/internal/pkg/errs"
	"table-booking/internal/usecase/commands"
	"table-booking/internal/usecase/shared"
	"table-booking/tests/common/builder"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type notifierMock struct {
	mock.Mock
}

func (m *notifierMock) ReservationCreated(ctx context.Context, n shared.ReservationNotice) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}

type ReservationCommandsSuite struct {
	suite.Suite
	ctx      context.Context
	uow      *memory.UoW
	clock    *clock.MockClock
	notifier *notifierMock
	uc       commands.ReservationCommands
}

func TestReservationCommandsSuite(t *testing.T) {
	suite.Run(t, new(ReservationCommandsSuite))
}

func (s *ReservationCommandsSuite) SetupTest() {
	s.ctx = context.Background()
	s.uow = memory.NewUoW(nil)
	s.clock = clock.NewMockClock(builder.BaseTime.Add(-24 * time.Hour))
	s.notifier = new(notifierMock)
	s.uc = commands.NewReservationUseCase(s.uow, s.notifier, s.clock, commands.Settings{
		OpTimeout:       time.Second,
		DefaultDuration: 90 * time.Minute,
	})
}

func (s *ReservationCommandsSuite) TearDownTest() {
	s.notifier.AssertExpectations(s.T())
}

// =============================================================================
// Book
// =============================================================================

func (s *ReservationCommandsSuite) TestBook_PrefersExactFit() {
	s.seedTable(1, 2)
	s.seedTable(2, 4)
	s.notifier.On("ReservationCreated", mock.Anything, mock.MatchedBy(func(n shared.ReservationNotice) bool {
		return n.TableNumber != nil && *n.TableNumber == 1 && n.PartySize == 2 && n.Comment == "by the window"
	})).Return(nil).Once()

	got, err := s.uc.Book(s.ctx, commands.BookParams{
		Name:      "Anna",
		Phone:     "+79990001122",
		Start:     builder.BaseTime,
		PartySize: 2,
		Comment:   "by the window",
		Source:    reservation.SourceWebsite,
	})

	s.Require().NoError(err)
	s.Equal(1, got.Table.Number())
	s.Equal(builder.BaseTime.Add(90*time.Minute), got.Reservation.EndTime())
	s.Equal(reservation.StatusPending, got.Reservation.Status())
	s.Equal([]string{"by the window"}, got.Reservation.SpecialRequests())

	tbl := s.table(got.Table.ID())
	s.Equal(table.StatusReserved, tbl.Status())
	s.Require().NotNil(tbl.CurrentReservationID())
	s.Equal(got.Reservation.ID(), *tbl.CurrentReservationID())
	s.Equal(1, s.customerVisits(got.Customer.ID()))
}

func (s *ReservationCommandsSuite) TestBook_ReturningGuestKeepsOneCustomer() {
	s.seedTable(1, 2)
	s.seedTable(2, 2)
	s.notifier.On("ReservationCreated", mock.Anything, mock.Anything).Return(nil).Twice()

	first, err := s.uc.Book(s.ctx, commands.BookParams{Name: "Anna", Phone: "+100", Start: builder.BaseTime, PartySize: 2})
	s.Require().NoError(err)
	second, err := s.uc.Book(s.ctx, commands.BookParams{Name: "Anna", Phone: " +100 ", Start: builder.BaseTime, PartySize: 2})
	s.Require().NoError(err)

	s.Equal(first.Customer.ID(), second.Customer.ID())
	s.Equal(2, s.customerVisits(first.Customer.ID()))
	s.NotEqual(first.Table.ID(), second.Table.ID())
}

func (s *ReservationCommandsSuite) TestBook_StoresContactDetails() {
	s.seedTable(1, 2)
	s.notifier.On("ReservationCreated", mock.Anything, mock.Anything).Return(nil).Once()
	email, ext := "guest@example.com", "tg-42"

	got, err := s.uc.Book(s.ctx, commands.BookParams{
		Name: "Anna", Phone: "+100", Email: &email, ExternalID: &ext,
		Start: builder.BaseTime, PartySize: 2,
	})
	s.Require().NoError(err)
	s.Require().NotNil(got.Customer.Email())
	s.Equal(email, *got.Customer.Email())

	stored := s.customer(got.Customer.ID())
	s.Require().NotNil(stored.Email())
	s.Equal(email, *stored.Email())
	s.Require().NotNil(stored.ExternalID())
	s.Equal(ext, *stored.ExternalID())
	s.Equal(s.clock.Now(), stored.CreatedAt())
}

func (s *ReservationCommandsSuite) TestBook_RequestedTableNumber() {
	s.seedTable(1, 2)
	s.seedTable(2, 4)
	s.notifier.On("ReservationCreated", mock.Anything, mock.Anything).Return(nil).Once()
	number := 2

	got, err := s.uc.Book(s.ctx, commands.BookParams{
		Name: "Anna", Phone: "+100", Start: builder.BaseTime, PartySize: 2, TableNumber: &number,
	})

	s.Require().NoError(err)
	s.Equal(2, got.Table.Number())
}

func (s *ReservationCommandsSuite) TestBook_Rejections() {
	s.seedTable(1, 2)
	missing := 9

	testCases := []struct {
		name      string
		params    commands.BookParams
		wantErr   error
		wantClass error
	}{
		{
			name:      "no table seats the party",
			params:    commands.BookParams{Name: "Anna", Phone: "+100", Start: builder.BaseTime, PartySize: 6},
			wantErr:   errs.ErrNoTableAvailable,
			wantClass: errs.ErrConflict,
		},
		{
			name:      "unknown table number",
			params:    commands.BookParams{Name: "Anna", Phone: "+100", Start: builder.BaseTime, PartySize: 2, TableNumber: &missing},
			wantErr:   errs.ErrTableNotFound,
			wantClass: errs.ErrNotFound,
		},
		{
			name:      "missing phone",
			params:    commands.BookParams{Name: "Anna", Start: builder.BaseTime, PartySize: 2},
			wantErr:   errs.ErrMissingBookingField,
			wantClass: errs.ErrValidation,
		},
		{
			name:      "empty party",
			params:    commands.BookParams{Name: "Anna", Phone: "+100", Start: builder.BaseTime, PartySize: 0},
			wantErr:   errs.ErrInvalidPartySize,
			wantClass: errs.ErrValidation,
		},
		{
			name:      "longer than the table allows",
			params:    commands.BookParams{Name: "Anna", Phone: "+100", Start: builder.BaseTime, PartySize: 2, Duration: 4 * time.Hour},
			wantErr:   errs.ErrInvalidDuration,
			wantClass: errs.ErrValidation,
		},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			got, err := s.uc.Book(s.ctx, tc.params)

			s.Nil(got)
			s.Require().Error(err)
			s.True(errs.Is(err, tc.wantErr), "expected %v, got %v", tc.wantErr, err)
			s.Equal(tc.wantClass, errs.Class(err))
			s.Empty(s.allReservations())
			s.Equal(table.StatusAvailable, s.tableByNumber(1).Status())
		})
	}
	s.notifier.AssertNotCalled(s.T(), "ReservationCreated", mock.Anything, mock.Anything)
}

func (s *ReservationCommandsSuite) TestBook_NotificationFailureKeepsBooking() {
	s.seedTable(1, 2)
	s.notifier.On("ReservationCreated", mock.Anything, mock.Anything).Return(errors.New("smtp down")).Once()

	got, err := s.uc.Book(s.ctx, commands.BookParams{Name: "Anna", Phone: "+100", Start: builder.BaseTime, PartySize: 2})

	s.Require().NoError(err)
	s.Len(s.allReservations(), 1)
	s.Equal(table.StatusReserved, s.table(got.Table.ID()).Status())
}

func (s *ReservationCommandsSuite) TestBook_ConcurrentRequestsForOneTable() {
	s.seedTable(1, 4)
	s.notifier.On("ReservationCreated", mock.Anything, mock.Anything).Return(nil).Once()
	number := 1

	const workers = 10
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		conflicts int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.uc.Book(s.ctx, commands.BookParams{
				Name: "Guest", Phone: "+200", Start: builder.BaseTime, PartySize: 2, TableNumber: &number,
			})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case errs.Is(err, errs.ErrTableUnavailable):
				conflicts++
			}
		}()
	}
	wg.Wait()

	s.Equal(1, succeeded)
	s.Equal(workers-1, conflicts)
	s.Len(s.allReservations(), 1)
}

// =============================================================================
// CreateReservation
// =============================================================================

func (s *ReservationCommandsSuite) TestCreateReservation_Rejections() {
	customerID := s.seedCustomer("+100")

	testCases := []struct {
		name      string
		setup     func() uuid.UUID
		party     int
		customer  uuid.UUID
		wantErr   error
		wantClass error
	}{
		{
			name:      "party larger than the table",
			setup:     func() uuid.UUID { return s.seedTable(1, 2) },
			party:     3,
			customer:  customerID,
			wantErr:   errs.ErrCapacityExceeded,
			wantClass: errs.ErrValidation,
		},
		{
			name: "table in maintenance",
			setup: func() uuid.UUID {
				return s.insertTable(builder.NewTableBuilder().WithNumber(2).WithStatus(table.StatusMaintenance).MustBuild())
			},
			party:     2,
			customer:  customerID,
			wantErr:   errs.ErrTableUnavailable,
			wantClass: errs.ErrConflict,
		},
		{
			name:      "unknown table",
			setup:     uuid.New,
			party:     2,
			customer:  customerID,
			wantErr:   errs.ErrTableNotFound,
			wantClass: errs.ErrNotFound,
		},
		{
			name:      "unknown customer",
			setup:     func() uuid.UUID { return s.seedTable(3, 2) },
			party:     2,
			customer:  uuid.New(),
			wantErr:   errs.ErrCustomerNotFound,
			wantClass: errs.ErrNotFound,
		},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			tableID := tc.setup()
			before := s.tableStatuses()

			got, err := s.uc.CreateReservation(s.ctx, commands.CreateParams{
				CustomerID: tc.customer,
				TableID:    tableID,
				Start:      builder.BaseTime,
				PartySize:  tc.party,
			})

			s.Nil(got)
			s.True(errs.Is(err, tc.wantErr), "expected %v, got %v", tc.wantErr, err)
			s.Equal(tc.wantClass, errs.Class(err))
			s.Empty(s.allReservations())
			s.Equal(before, s.tableStatuses())
			s.Equal(0, s.customerVisits(customerID))
		})
	}
}

func (s *ReservationCommandsSuite) TestCreateReservation_OverlapAndAdjacency() {
	customerID := s.seedCustomer("+100")
	tableID := s.seedTable(1, 4)
	// An earlier booking recorded without holding the table, as imported history does.
	existing := builder.NewReservationBuilder().
		WithCustomerID(customerID).
		WithTableID(tableID).
		WithWindow(0, 90*time.Minute).
		MustBuild()
	s.Require().NoError(s.uow.Within(s.ctx, func(ctx context.Context, tx shared.Tx) error {
		_, err := tx.Reservations().Insert(ctx, existing)
		return err
	}))
	s.notifier.On("ReservationCreated", mock.Anything, mock.Anything).Return(nil).Once()

	_, err := s.uc.CreateReservation(s.ctx, commands.CreateParams{
		CustomerID: customerID, TableID: tableID, Start: builder.BaseTime.Add(time.Hour), PartySize: 2,
	})
	s.True(errs.Is(err, errs.ErrTableUnavailable), "overlapping window must be refused, got %v", err)

	got, err := s.uc.CreateReservation(s.ctx, commands.CreateParams{
		CustomerID: customerID, TableID: tableID, Start: builder.BaseTime.Add(90 * time.Minute), PartySize: 2,
	})
	s.Require().NoError(err)
	s.Equal(builder.BaseTime.Add(90*time.Minute), got.StartTime())
}

// =============================================================================
// CreateUnassigned
// =============================================================================

func (s *ReservationCommandsSuite) TestCreateUnassigned() {
	s.notifier.On("ReservationCreated", mock.Anything, mock.MatchedBy(func(n shared.ReservationNotice) bool {
		return n.TableNumber == nil && n.Source == "bot"
	})).Return(nil).Once()
	ext := "tg-42"

	got, err := s.uc.CreateUnassigned(s.ctx, commands.UnassignedParams{
		Name: "Ivan", Phone: "+300", ExternalID: &ext, Start: builder.BaseTime, PartySize: 3,
	})

	s.Require().NoError(err)
	s.Nil(got.Table)
	s.Nil(got.Reservation.TableID())
	s.Equal(reservation.SourceBot, got.Reservation.Source())
	s.Equal(1, s.customerVisits(got.Customer.ID()))
	s.Require().NotNil(got.Customer.ExternalID())
	s.Equal("tg-42", *got.Customer.ExternalID())
}

// =============================================================================
// Lifecycle
// =============================================================================

func (s *ReservationCommandsSuite) TestLifecycle_HappyPath() {
	res := s.book(2)

	steps := []struct {
		name       string
		call       func(uuid.UUID) (reservation.Outcome, error)
		wantStatus reservation.Status
		wantTable  table.Status
	}{
		{"confirm", func(id uuid.UUID) (reservation.Outcome, error) { return s.uc.Confirm(s.ctx, id) }, reservation.StatusConfirmed, table.StatusReserved},
		{"seat", func(id uuid.UUID) (reservation.Outcome, error) { return s.uc.Seat(s.ctx, id) }, reservation.StatusSeated, table.StatusOccupied},
		{"complete", func(id uuid.UUID) (reservation.Outcome, error) { return s.uc.Complete(s.ctx, id) }, reservation.StatusCompleted, table.StatusAvailable},
	}

	for _, step := range steps {
		s.clock.Add(10 * time.Minute)
		outcome, err := step.call(res.ID())
		s.Require().NoError(err, step.name)
		s.Equal(reservation.OutcomeApplied, outcome, step.name)

		stored := s.reservation(res.ID())
		s.Equal(step.wantStatus, stored.Status(), step.name)
		s.Equal(step.wantTable, s.table(*res.TableID()).Status(), step.name)
	}

	stored := s.reservation(res.ID())
	s.Require().NotNil(stored.ConfirmedAt())
	s.Require().NotNil(stored.SeatedAt())
	s.Require().NotNil(stored.CompletedAt())
	s.Equal(s.clock.Now(), *stored.CompletedAt())
	s.Nil(s.table(*res.TableID()).CurrentReservationID())
}

func (s *ReservationCommandsSuite) TestLifecycle_TerminalCallsAreNoops() {
	res := s.book(2)
	outcome, err := s.uc.MarkNoShow(s.ctx, res.ID())
	s.Require().NoError(err)
	s.Equal(reservation.OutcomeApplied, outcome)

	calls := map[string]func() (reservation.Outcome, error){
		"confirm":  func() (reservation.Outcome, error) { return s.uc.Confirm(s.ctx, res.ID()) },
		"seat":     func() (reservation.Outcome, error) { return s.uc.Seat(s.ctx, res.ID()) },
		"complete": func() (reservation.Outcome, error) { return s.uc.Complete(s.ctx, res.ID()) },
		"cancel":   func() (reservation.Outcome, error) { return s.uc.Cancel(s.ctx, res.ID(), "late") },
		"no-show":  func() (reservation.Outcome, error) { return s.uc.MarkNoShow(s.ctx, res.ID()) },
	}
	for name, call := range calls {
		outcome, err := call()
		s.Require().NoError(err, name)
		s.Equal(reservation.OutcomeNoop, outcome, name)
	}

	stored := s.reservation(res.ID())
	s.Equal(reservation.StatusNoShow, stored.Status())
	s.Nil(stored.CancellationReason())
}

func (s *ReservationCommandsSuite) TestCancel_SeatedReleasesTable() {
	res := s.book(2)
	_, err := s.uc.Seat(s.ctx, res.ID())
	s.Require().NoError(err)

	outcome, err := s.uc.Cancel(s.ctx, res.ID(), "guest felt unwell")

	s.Require().NoError(err)
	s.True(outcome.Applied())
	stored := s.reservation(res.ID())
	s.Equal(reservation.StatusCancelled, stored.Status())
	s.Require().NotNil(stored.CancellationReason())
	s.Equal("guest felt unwell", *stored.CancellationReason())
	s.False(stored.IsOverdue(builder.BaseTime.Add(3 * time.Hour)))

	tbl := s.table(*res.TableID())
	s.Equal(table.StatusAvailable, tbl.Status())
	s.Nil(tbl.CurrentReservationID())
}

func (s *ReservationCommandsSuite) TestLifecycle_UnknownReservation() {
	outcome, err := s.uc.Confirm(s.ctx, uuid.New())

	s.Equal(reservation.OutcomeNoop, outcome)
	s.True(errs.Is(err, errs.ErrReservationNotFound))
	s.Equal(errs.ErrNotFound, errs.Class(err))
}

func (s *ReservationCommandsSuite) TestCancelledContextIsStorageFailure() {
	ctx, cancel := context.WithCancel(s.ctx)
	cancel()

	_, err := s.uc.Confirm(ctx, uuid.New())

	s.Require().Error(err)
	s.True(errors.Is(err, context.Canceled))
	s.Equal(errs.ErrStorage, errs.Class(err))
}

// =============================================================================
// Helpers
// =============================================================================

func (s *ReservationCommandsSuite) book(party int) *reservation.Reservation {
	s.T().Helper()
	s.seedTable(1, party)
	s.notifier.On("ReservationCreated", mock.Anything, mock.Anything).Return(nil).Once()
	got, err := s.uc.Book(s.ctx, commands.BookParams{Name: "Anna", Phone: "+100", Start: builder.BaseTime, PartySize: party})
	s.Require().NoError(err)
	return got.Reservation
}

func (s *ReservationCommandsSuite) seedTable(number, capacity int) uuid.UUID {
	return s.insertTable(builder.NewTableBuilder().WithNumber(number).WithCapacity(capacity).MustBuild())
}

func (s *ReservationCommandsSuite) insertTable(t *table.Table) uuid.UUID {
	s.T().Helper()
	s.Require().NoError(s.uow.Within(s.ctx, func(ctx context.Context, tx shared.Tx) error {
		_, err := tx.Tables().Insert(ctx, t)
		return err
	}))
	return t.ID()
}

func (s *ReservationCommandsSuite) seedCustomer(phone string) uuid.UUID {
	s.T().Helper()
	var id uuid.UUID
	s.Require().NoError(s.uow.Within(s.ctx, func(ctx context.Context, tx shared.Tx) error {
		c, err := tx.Customers().UpsertByPhone(ctx, customer.Contact{Name: "Seed Guest", Phone: phone}, s.clock.Now())
		if err != nil {
			return err
		}
		id = c.ID()
		return nil
	}))
	return id
}

func (s *ReservationCommandsSuite) read(fn func(ctx context.Context, tx shared.Tx) error) {
	s.T().Helper()
	s.Require().NoError(s.uow.WithinReadOnly(s.ctx, fn))
}

func (s *ReservationCommandsSuite) table(id uuid.UUID) *table.Table {
	var out *table.Table
	s.read(func(ctx context.Context, tx shared.Tx) error {
		var err error
		out, err = tx.Tables().Get(ctx, id)
		return err
	})
	return out
}

func (s *ReservationCommandsSuite) tableByNumber(number int) *table.Table {
	var out *table.Table
	s.read(func(ctx context.Context, tx shared.Tx) error {
		var err error
		out, err = tx.Tables().GetByNumber(ctx, number)
		return err
	})
	return out
}

func (s *ReservationCommandsSuite) tableStatuses() map[int]table.Status {
	out := map[int]table.Status{}
	s.read(func(ctx context.Context, tx shared.Tx) error {
		all, err := tx.Tables().ListAll(ctx)
		for _, t := range all {
			out[t.Number()] = t.Status()
		}
		return err
	})
	return out
}

func (s *ReservationCommandsSuite) reservation(id uuid.UUID) *reservation.Reservation {
	var out *reservation.Reservation
	s.read(func(ctx context.Context, tx shared.Tx) error {
		var err error
		out, err = tx.Reservations().Get(ctx, id)
		return err
	})
	return out
}

func (s *ReservationCommandsSuite) allReservations() []*reservation.Reservation {
	var out []*reservation.Reservation
	s.read(func(ctx context.Context, tx shared.Tx) error {
		var err error
		out, err = tx.Reservations().ListAll(ctx)
		return err
	})
	return out
}

func (s *ReservationCommandsSuite) customer(id uuid.UUID) *customer.Customer {
	var c *customer.Customer
	s.read(func(ctx context.Context, tx shared.Tx) error {
		var err error
		c, err = tx.Customers().Get(ctx, id)
		return err
	})
	s.Require().NotNil(c)
	return c
}

func (s *ReservationCommandsSuite) customerVisits(id uuid.UUID) int {
	return s.customer(id).VisitCount()
}
