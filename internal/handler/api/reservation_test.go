//go:build unit

package api_test

import (
	"context"
	"io"
	"net/http"
	"testing"
	"time"

	"table-booking/internal/domain/reservation"
	"table-booking/internal/handler/api"
	resdto "table-booking/internal/handler/dto/response"
	"table-booking/internal/pkg/errs"
	"table-booking/internal/usecase/commands"
	"table-booking/internal/usecase/queries"
	"table-booking/tests/common/builder"
	"table-booking/tests/common/httptest"
	"table-booking/tests/common/testutil"
	commandsmock "table-booking/tests/mock/commands"
	queriesmock "table-booking/tests/mock/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

type ReservationHandlerTestSuite struct {
	suite.Suite
	router       *gin.Engine
	mockCtrl     *gomock.Controller
	mockCommands *commandsmock.MockReservationCommands
	mockQueries  *queriesmock.MockReservationQueries
	venue        *time.Location
}

func (s *ReservationHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	s.router = gin.New()

	var err error
	s.venue, err = time.LoadLocation("Europe/Moscow")
	s.Require().NoError(err)

	s.mockCtrl = gomock.NewController(s.T())
	s.mockCommands = commandsmock.NewMockReservationCommands(s.mockCtrl)
	s.mockQueries = queriesmock.NewMockReservationQueries(s.mockCtrl)
	h := api.NewReservationHandler(s.mockCommands, s.mockQueries, s.venue)

	s.router.POST("/api/reservations", h.Book)
	s.router.GET("/api/reservations", h.Active)
	s.router.GET("/api/reservations/today", h.Today)
	s.router.GET("/api/reservations/upcoming", h.Upcoming)
	s.router.GET("/api/reservations/stats", h.Stats)
	s.router.GET("/api/reservations/download", h.Download)
	s.router.GET("/api/reservations/:id", h.Get)
	s.router.POST("/api/reservations/:id/confirm", h.Confirm)
	s.router.POST("/api/reservations/:id/seat", h.Seat)
	s.router.POST("/api/reservations/:id/complete", h.Complete)
	s.router.POST("/api/reservations/:id/cancel", h.Cancel)
	s.router.POST("/api/reservations/:id/no-show", h.NoShow)
	s.router.GET("/api/customers/:id/reservations", h.ByCustomer)
	s.router.GET("/api/tables/:id/reservations", h.ByTable)
}

func (s *ReservationHandlerTestSuite) TearDownTest() {
	s.mockCtrl.Finish()
}

func TestReservationHandlerSuite(t *testing.T) {
	suite.Run(t, new(ReservationHandlerTestSuite))
}

func viewOf(res *reservation.Reservation, status string) *queries.ReservationView {
	return &queries.ReservationView{
		ID:              res.ID(),
		CustomerID:      res.CustomerID(),
		CustomerName:    "Anna",
		CustomerPhone:   "+79990000000",
		TableID:         res.TableID(),
		Start:           res.StartTime(),
		End:             res.EndTime(),
		DurationMinutes: int(res.Duration() / time.Minute),
		PartySize:       res.PartySize(),
		Status:          status,
		Source:          string(res.Source()),
		CreatedAt:       res.CreatedAt(),
	}
}

// ================================================================================
// TestBook
// ================================================================================

type testCaseBook struct {
	name       string
	mutate     func(m map[string]any)
	expectCode int
	expectMsg  string
}

func (s *ReservationHandlerTestSuite) TestBook() {
	reqBody := map[string]any{
		"name":    "Anna",
		"phone":   "+79990000000",
		"date":    "2030-06-01",
		"time":    "21:00",
		"guests":  2,
		"comment": "window please",
	}
	tbl := builder.NewTableBuilder().WithNumber(3).WithCapacity(2).MustBuild()
	tableID := tbl.ID()
	res := builder.NewReservationBuilder().WithTableID(tableID).MustBuild()

	s.Run("success: returns 201 with the reservation and its table", func() {
		// 21:00 in Moscow is 18:00 UTC.
		wantStart := time.Date(2030, 6, 1, 18, 0, 0, 0, time.UTC)
		s.mockCommands.EXPECT().
			Book(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, p commands.BookParams) (*commands.BookingResult, error) {
				s.True(p.Start.Equal(wantStart), "start %s", p.Start)
				s.Equal(2, p.PartySize)
				s.Equal(time.Duration(0), p.Duration)
				s.Equal(reservation.SourceWebsite, p.Source)
				s.Equal("window please", p.Comment)
				s.Nil(p.TableNumber)
				return &commands.BookingResult{Reservation: res, Table: tbl}, nil
			}).Times(1)
		s.mockQueries.EXPECT().Get(gomock.Any(), res.ID()).Return(viewOf(res, "pending"), nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/api/reservations", reqBody)

		var body resdto.BookingResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusCreated, &body)
		httptest.AssertHeaders(s.T(), rec, map[string]string{"Location": "/api/reservations/" + res.ID().String()})
		s.Require().NotNil(body.Reservation)
		s.Equal(res.ID(), body.Reservation.ID)
		s.Equal("pending", body.Reservation.Status)
		s.Equal(90, body.Reservation.DurationMinutes)
		s.Equal([]string{}, body.Reservation.SpecialRequests)
		s.Require().NotNil(body.Table)
		s.Equal(3, body.Table.Number)
	})

	s.Run("success: explicit table and source are passed through", func() {
		s.mockCommands.EXPECT().
			Book(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, p commands.BookParams) (*commands.BookingResult, error) {
				s.Require().NotNil(p.TableNumber)
				s.Equal(3, *p.TableNumber)
				s.Equal(reservation.SourceBot, p.Source)
				s.Equal(60*time.Minute, p.Duration)
				return &commands.BookingResult{Reservation: res, Table: tbl}, nil
			}).Times(1)
		s.mockQueries.EXPECT().Get(gomock.Any(), res.ID()).Return(viewOf(res, "pending"), nil).Times(1)

		body := testutil.DtoMap(s.T(), reqBody,
			testutil.Field("table_number", 3),
			testutil.Field("source", "bot"),
			testutil.Field("duration", 60))
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/api/reservations", body)

		s.Equal(http.StatusCreated, rec.Code, rec.Body.String())
	})

	validation := []testCaseBook{
		{name: "missing field: name", mutate: testutil.Field("name", nil), expectCode: http.StatusBadRequest, expectMsg: "Invalid request"},
		{name: "missing field: phone", mutate: testutil.Field("phone", nil), expectCode: http.StatusBadRequest, expectMsg: "Invalid request"},
		{name: "missing field: date", mutate: testutil.Field("date", nil), expectCode: http.StatusBadRequest, expectMsg: "Invalid request"},
		{name: "guests boundary invalid (0)", mutate: testutil.Field("guests", 0), expectCode: http.StatusBadRequest, expectMsg: "Invalid request"},
		{name: "unknown source", mutate: testutil.Field("source", "phone"), expectCode: http.StatusBadRequest, expectMsg: "Invalid request"},
		{name: "malformed email", mutate: testutil.Field("email", "not-an-email"), expectCode: http.StatusBadRequest, expectMsg: "Invalid request"},
		{name: "malformed time", mutate: testutil.Field("time", "9pm"), expectCode: http.StatusBadRequest, expectMsg: "date must be"},
		{name: "malformed date", mutate: testutil.Field("date", "2030/06/01"), expectCode: http.StatusBadRequest, expectMsg: "date must be"},
	}
	for _, tc := range validation {
		s.Run(tc.name, func() {
			rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/api/reservations", testutil.DtoMap(s.T(), reqBody, tc.mutate))

			httptest.AssertErrorResponse(s.T(), rec, tc.expectCode, tc.expectMsg)
		})
	}

	failures := []struct {
		name       string
		err        error
		expectCode int
		expectMsg  string
	}{
		{name: "no free table", err: errs.ErrNoTableAvailable, expectCode: http.StatusConflict, expectMsg: "no table available"},
		{name: "requested table taken", err: errs.ErrTableUnavailable, expectCode: http.StatusConflict, expectMsg: "table unavailable"},
		{name: "party too large", err: errs.Wrap(errs.ErrCapacityExceeded, "table 3"), expectCode: http.StatusUnprocessableEntity, expectMsg: "capacity"},
		{name: "requested table unknown", err: errs.ErrTableNotFound, expectCode: http.StatusNotFound, expectMsg: "table not found"},
		{name: "storage failure", err: errs.Mark(errs.New("dial tcp: refused"), errs.ErrStorage), expectCode: http.StatusInternalServerError, expectMsg: "Internal server error"},
	}
	for _, tc := range failures {
		s.Run("error: "+tc.name, func() {
			s.mockCommands.EXPECT().Book(gomock.Any(), gomock.Any()).Return(nil, tc.err).Times(1)

			rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/api/reservations", reqBody)

			httptest.AssertErrorResponse(s.T(), rec, tc.expectCode, tc.expectMsg)
		})
	}
}

// ================================================================================
// TestGet / lists
// ================================================================================

func (s *ReservationHandlerTestSuite) TestGet() {
	res := builder.NewReservationBuilder().Unassigned().WithRequests("high chair").MustBuild()

	s.Run("success", func() {
		view := viewOf(res, "confirmed")
		view.SpecialRequests = []string{"high chair"}
		s.mockQueries.EXPECT().Get(gomock.Any(), res.ID()).Return(view, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/api/reservations/"+res.ID().String(), nil)

		var body resdto.ReservationResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &body)
		s.Equal("confirmed", body.Status)
		s.Nil(body.TableID)
		s.Equal([]string{"high chair"}, body.SpecialRequests)
	})

	s.Run("error: unknown id", func() {
		id := uuid.New()
		s.mockQueries.EXPECT().Get(gomock.Any(), id).Return(nil, errs.ErrReservationNotFound).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/api/reservations/"+id.String(), nil)

		httptest.AssertErrorResponse(s.T(), rec, http.StatusNotFound, "reservation not found")
	})

	s.Run("error: malformed id", func() {
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/api/reservations/42", nil)

		httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "Invalid id")
	})
}

func (s *ReservationHandlerTestSuite) TestLists() {
	res := builder.NewReservationBuilder().MustBuild()
	views := []*queries.ReservationView{viewOf(res, "pending")}

	s.Run("active", func() {
		s.mockQueries.EXPECT().Active(gomock.Any()).Return(views, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/api/reservations", nil)

		var body []resdto.ReservationResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &body)
		s.Len(body, 1)
	})

	s.Run("today: empty list is an empty array", func() {
		s.mockQueries.EXPECT().Today(gomock.Any()).Return(nil, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/api/reservations/today", nil)

		s.Equal(http.StatusOK, rec.Code)
		s.JSONEq(`[]`, rec.Body.String())
	})

	s.Run("upcoming: limit is forwarded", func() {
		s.mockQueries.EXPECT().Upcoming(gomock.Any(), 3).Return(views, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/api/reservations/upcoming?limit=3", nil)

		s.Equal(http.StatusOK, rec.Code)
	})

	s.Run("upcoming: no limit leaves the default to the query side", func() {
		s.mockQueries.EXPECT().Upcoming(gomock.Any(), 0).Return(views, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/api/reservations/upcoming", nil)

		s.Equal(http.StatusOK, rec.Code)
	})

	s.Run("upcoming: limit out of range", func() {
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/api/reservations/upcoming?limit=1000", nil)

		httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "Invalid limit")
	})

	s.Run("by customer: unknown customer", func() {
		id := uuid.New()
		s.mockQueries.EXPECT().ByCustomer(gomock.Any(), id).Return(nil, errs.ErrCustomerNotFound).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/api/customers/"+id.String()+"/reservations", nil)

		httptest.AssertErrorResponse(s.T(), rec, http.StatusNotFound, "customer not found")
	})

	s.Run("by table: day is read in the venue zone", func() {
		id := uuid.New()
		wantDay := time.Date(2030, 6, 1, 0, 0, 0, 0, s.venue)
		s.mockQueries.EXPECT().
			ByTable(gomock.Any(), id, gomock.Cond(func(x any) bool {
				day, ok := x.(*time.Time)
				return ok && day != nil && day.Equal(wantDay)
			})).
			Return(views, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/api/tables/"+id.String()+"/reservations?date=2030-06-01", nil)

		s.Equal(http.StatusOK, rec.Code, rec.Body.String())
	})

	s.Run("by table: no date means every day", func() {
		id := uuid.New()
		s.mockQueries.EXPECT().ByTable(gomock.Any(), id, gomock.Nil()).Return(views, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/api/tables/"+id.String()+"/reservations", nil)

		s.Equal(http.StatusOK, rec.Code, rec.Body.String())
	})

	s.Run("by table: malformed date", func() {
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/api/tables/"+uuid.NewString()+"/reservations?date=tomorrow", nil)

		httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "Invalid date")
	})
}

// ================================================================================
// TestStats / TestDownload
// ================================================================================

func (s *ReservationHandlerTestSuite) TestStats() {
	s.mockQueries.EXPECT().Stats(gomock.Any()).
		Return(&queries.Stats{Total: 3, Completed: 1, Cancelled: 1, NoShow: 1, CompletionRate: 33.33}, nil).Times(1)

	rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/api/reservations/stats", nil)

	var body resdto.StatsResponse
	httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &body)
	s.Equal(resdto.StatsResponse{Total: 3, Completed: 1, Cancelled: 1, NoShow: 1, CompletionRate: 33.33}, body)
}

func (s *ReservationHandlerTestSuite) TestDownload() {
	s.Run("success: served as a csv attachment", func() {
		s.mockQueries.EXPECT().Export(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, w io.Writer) error {
				_, err := io.WriteString(w, "ID,Date\nabcdef12,01.06.2030\n")
				return err
			}).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/api/reservations/download", nil)

		s.Equal(http.StatusOK, rec.Code)
		httptest.AssertHeaders(s.T(), rec, map[string]string{
			"Content-Type":        "text/csv; charset=utf-8",
			"Content-Disposition": "attachment; filename=reservations.csv",
		})
		s.Equal("ID,Date\nabcdef12,01.06.2030\n", rec.Body.String())
	})

	s.Run("error: nothing is written on failure", func() {
		s.mockQueries.EXPECT().Export(gomock.Any(), gomock.Any()).
			Return(errs.Mark(errs.New("read failed"), errs.ErrStorage)).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/api/reservations/download", nil)

		httptest.AssertErrorResponse(s.T(), rec, http.StatusInternalServerError, "Internal server error")
		s.Empty(rec.Header().Get("Content-Disposition"))
	})
}

// ================================================================================
// TestLifecycle
// ================================================================================

func (s *ReservationHandlerTestSuite) TestLifecycle() {
	res := builder.NewReservationBuilder().MustBuild()
	url := "/api/reservations/" + res.ID().String()

	cases := []struct {
		name    string
		path    string
		expect  func() *gomock.Call
		outcome reservation.Outcome
		status  string
	}{
		{
			name:    "confirm",
			path:    "/confirm",
			expect:  func() *gomock.Call { return s.mockCommands.EXPECT().Confirm(gomock.Any(), res.ID()) },
			outcome: reservation.OutcomeApplied,
			status:  "confirmed",
		},
		{
			name:    "seat",
			path:    "/seat",
			expect:  func() *gomock.Call { return s.mockCommands.EXPECT().Seat(gomock.Any(), res.ID()) },
			outcome: reservation.OutcomeApplied,
			status:  "seated",
		},
		{
			name:    "complete",
			path:    "/complete",
			expect:  func() *gomock.Call { return s.mockCommands.EXPECT().Complete(gomock.Any(), res.ID()) },
			outcome: reservation.OutcomeApplied,
			status:  "completed",
		},
		{
			name:    "no-show",
			path:    "/no-show",
			expect:  func() *gomock.Call { return s.mockCommands.EXPECT().MarkNoShow(gomock.Any(), res.ID()) },
			outcome: reservation.OutcomeApplied,
			status:  "no_show",
		},
		{
			name:    "confirm on a terminal reservation is a no-op",
			path:    "/confirm",
			expect:  func() *gomock.Call { return s.mockCommands.EXPECT().Confirm(gomock.Any(), res.ID()) },
			outcome: reservation.OutcomeNoop,
			status:  "cancelled",
		},
	}
	for _, tc := range cases {
		s.Run(tc.name, func() {
			tc.expect().Return(tc.outcome, nil).Times(1)
			s.mockQueries.EXPECT().Get(gomock.Any(), res.ID()).Return(viewOf(res, tc.status), nil).Times(1)

			rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url+tc.path, nil)

			var body resdto.ActionResponse
			httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &body)
			s.Equal(tc.outcome == reservation.OutcomeApplied, body.Applied)
			s.Equal(tc.status, body.Status)
		})
	}

	s.Run("error: unknown reservation", func() {
		id := uuid.New()
		s.mockCommands.EXPECT().Seat(gomock.Any(), id).Return(reservation.OutcomeNoop, errs.ErrReservationNotFound).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/api/reservations/"+id.String()+"/seat", nil)

		httptest.AssertErrorResponse(s.T(), rec, http.StatusNotFound, "reservation not found")
	})
}

func (s *ReservationHandlerTestSuite) TestCancel() {
	res := builder.NewReservationBuilder().MustBuild()
	url := "/api/reservations/" + res.ID().String() + "/cancel"

	s.Run("with a reason", func() {
		s.mockCommands.EXPECT().Cancel(gomock.Any(), res.ID(), "guest called").Return(reservation.OutcomeApplied, nil).Times(1)
		s.mockQueries.EXPECT().Get(gomock.Any(), res.ID()).Return(viewOf(res, "cancelled"), nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, map[string]any{"reason": "guest called"})

		var body resdto.ActionResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &body)
		s.True(body.Applied)
		s.Equal("cancelled", body.Status)
	})

	s.Run("without a body", func() {
		s.mockCommands.EXPECT().Cancel(gomock.Any(), res.ID(), "").Return(reservation.OutcomeApplied, nil).Times(1)
		s.mockQueries.EXPECT().Get(gomock.Any(), res.ID()).Return(viewOf(res, "cancelled"), nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, nil)

		s.Equal(http.StatusOK, rec.Code, rec.Body.String())
	})

	s.Run("error: malformed body", func() {
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, []int{1, 2})

		httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "Invalid request")
	})
}
