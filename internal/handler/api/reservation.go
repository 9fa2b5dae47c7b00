package api

import (
	"bytes"
	"context"
	"net/http"
	"time"

	"table-booking/internal/domain/reservation"
	reqdto "table-booking/internal/handler/dto/request"
	resdto "table-booking/internal/handler/dto/response"
	"table-booking/internal/handler/httperr"
	"table-booking/internal/usecase/commands"
	"table-booking/internal/usecase/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const exportFilename = "reservations.csv"

type ReservationHandler struct {
	cmds  commands.ReservationCommands
	q     queries.ReservationQueries
	venue *time.Location
}

func NewReservationHandler(cmds commands.ReservationCommands, q queries.ReservationQueries, venue *time.Location) *ReservationHandler {
	if venue == nil {
		venue = time.UTC
	}
	return &ReservationHandler{cmds: cmds, q: q, venue: venue}
}

// @Summary Book a table
// @Description Book the best free table, or the requested table number, for a guest
// @Tags reservations
// @Accept json
// @Produce json
// @Param request body reqdto.BookReservationRequest true "Booking request"
// @Success 201 {object} resdto.BookingResponse
// @Failure 400 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Failure 422 {object} httperr.Response
// @Router /api/reservations [post]
func (h *ReservationHandler) Book(c *gin.Context) {
	var req reqdto.BookReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request", nil)
		return
	}
	params, err := req.ToParams(h.venue)
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, reqdto.ErrInvalidDateTime.Error(), nil)
		return
	}

	result, err := h.cmds.Book(c.Request.Context(), params)
	if err != nil {
		httperr.AbortWithClassified(c, err)
		return
	}
	view, err := h.q.Get(c.Request.Context(), result.Reservation.ID())
	if err != nil {
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Failed to load reservation", nil)
		return
	}

	resp := &resdto.BookingResponse{Reservation: resdto.FromReservationView(view)}
	if result.Table != nil {
		resp.Table = resdto.FromTable(result.Table)
	}
	c.Header("Location", "/api/reservations/"+view.ID.String())
	c.JSON(http.StatusCreated, resp)
}

// @Summary Get reservation
// @Tags reservations
// @Produce json
// @Param id path string true "Reservation ID"
// @Success 200 {object} resdto.ReservationResponse
// @Failure 400 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Router /api/reservations/{id} [get]
func (h *ReservationHandler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	view, err := h.q.Get(c.Request.Context(), id)
	if err != nil {
		httperr.AbortWithClassified(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromReservationView(view))
}

// @Summary Active reservations
// @Description Pending, confirmed and seated reservations, earliest first
// @Tags reservations
// @Produce json
// @Success 200 {array} resdto.ReservationResponse
// @Router /api/reservations [get]
func (h *ReservationHandler) Active(c *gin.Context) {
	h.list(c, h.q.Active)
}

// @Summary Today's reservations
// @Description Active reservations starting on the venue's current date
// @Tags reservations
// @Produce json
// @Success 200 {array} resdto.ReservationResponse
// @Router /api/reservations/today [get]
func (h *ReservationHandler) Today(c *gin.Context) {
	h.list(c, h.q.Today)
}

// @Summary Upcoming reservations
// @Tags reservations
// @Produce json
// @Param limit query int false "Maximum rows (default 10)"
// @Success 200 {array} resdto.ReservationResponse
// @Failure 400 {object} httperr.Response
// @Router /api/reservations/upcoming [get]
func (h *ReservationHandler) Upcoming(c *gin.Context) {
	var query reqdto.UpcomingQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid limit", nil)
		return
	}
	h.list(c, func(ctx context.Context) ([]*queries.ReservationView, error) {
		return h.q.Upcoming(ctx, query.Limit)
	})
}

// @Summary Customer history
// @Tags reservations
// @Produce json
// @Param id path string true "Customer ID"
// @Success 200 {array} resdto.ReservationResponse
// @Failure 404 {object} httperr.Response
// @Router /api/customers/{id}/reservations [get]
func (h *ReservationHandler) ByCustomer(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	h.list(c, func(ctx context.Context) ([]*queries.ReservationView, error) {
		return h.q.ByCustomer(ctx, id)
	})
}

// @Summary Table schedule
// @Tags reservations
// @Produce json
// @Param id path string true "Table ID"
// @Param date query string false "Venue-local day, YYYY-MM-DD"
// @Success 200 {array} resdto.ReservationResponse
// @Failure 404 {object} httperr.Response
// @Router /api/tables/{id}/reservations [get]
func (h *ReservationHandler) ByTable(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var query reqdto.DayQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid query", nil)
		return
	}
	day, err := query.Day(h.venue)
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid date", nil)
		return
	}
	h.list(c, func(ctx context.Context) ([]*queries.ReservationView, error) {
		return h.q.ByTable(ctx, id, day)
	})
}

// @Summary Reservation statistics
// @Tags reservations
// @Produce json
// @Success 200 {object} resdto.StatsResponse
// @Router /api/reservations/stats [get]
func (h *ReservationHandler) Stats(c *gin.Context) {
	stats, err := h.q.Stats(c.Request.Context())
	if err != nil {
		httperr.AbortWithClassified(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromStats(stats))
}

// @Summary Download reservations
// @Description Every reservation as CSV, most recent first
// @Tags reservations
// @Produce text/csv
// @Success 200 {file} file
// @Router /api/reservations/download [get]
func (h *ReservationHandler) Download(c *gin.Context) {
	var buf bytes.Buffer
	if err := h.q.Export(c.Request.Context(), &buf); err != nil {
		httperr.AbortWithClassified(c, err)
		return
	}
	c.Header("Content-Disposition", "attachment; filename="+exportFilename)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

// @Summary Confirm reservation
// @Tags reservations
// @Produce json
// @Param id path string true "Reservation ID"
// @Success 200 {object} resdto.ActionResponse
// @Failure 404 {object} httperr.Response
// @Router /api/reservations/{id}/confirm [post]
func (h *ReservationHandler) Confirm(c *gin.Context) {
	h.act(c, h.cmds.Confirm)
}

// @Summary Seat guests
// @Tags reservations
// @Produce json
// @Param id path string true "Reservation ID"
// @Success 200 {object} resdto.ActionResponse
// @Failure 404 {object} httperr.Response
// @Router /api/reservations/{id}/seat [post]
func (h *ReservationHandler) Seat(c *gin.Context) {
	h.act(c, h.cmds.Seat)
}

// @Summary Complete reservation
// @Tags reservations
// @Produce json
// @Param id path string true "Reservation ID"
// @Success 200 {object} resdto.ActionResponse
// @Failure 404 {object} httperr.Response
// @Router /api/reservations/{id}/complete [post]
func (h *ReservationHandler) Complete(c *gin.Context) {
	h.act(c, h.cmds.Complete)
}

// @Summary Mark no-show
// @Tags reservations
// @Produce json
// @Param id path string true "Reservation ID"
// @Success 200 {object} resdto.ActionResponse
// @Failure 404 {object} httperr.Response
// @Router /api/reservations/{id}/no-show [post]
func (h *ReservationHandler) NoShow(c *gin.Context) {
	h.act(c, h.cmds.MarkNoShow)
}

// @Summary Cancel reservation
// @Tags reservations
// @Accept json
// @Produce json
// @Param id path string true "Reservation ID"
// @Param request body reqdto.CancelReservationRequest false "Cancellation reason"
// @Success 200 {object} resdto.ActionResponse
// @Failure 404 {object} httperr.Response
// @Router /api/reservations/{id}/cancel [post]
func (h *ReservationHandler) Cancel(c *gin.Context) {
	var req reqdto.CancelReservationRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request", nil)
			return
		}
	}
	h.act(c, func(ctx context.Context, id uuid.UUID) (reservation.Outcome, error) {
		return h.cmds.Cancel(ctx, id, req.Reason)
	})
}

func (h *ReservationHandler) act(c *gin.Context, fn func(ctx context.Context, id uuid.UUID) (reservation.Outcome, error)) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	outcome, err := fn(c.Request.Context(), id)
	if err != nil {
		httperr.AbortWithClassified(c, err)
		return
	}
	view, err := h.q.Get(c.Request.Context(), id)
	if err != nil {
		httperr.AbortWithClassified(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromOutcome(outcome, view))
}

func (h *ReservationHandler) list(c *gin.Context, load func(ctx context.Context) ([]*queries.ReservationView, error)) {
	views, err := load(c.Request.Context())
	if err != nil {
		httperr.AbortWithClassified(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromReservationViews(views))
}

func parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid id", nil)
		return uuid.Nil, false
	}
	return id, true
}
