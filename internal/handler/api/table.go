package api

import (
	"net/http"
	"time"

	reqdto "table-booking/internal/handler/dto/request"
	resdto "table-booking/internal/handler/dto/response"
	"table-booking/internal/handler/httperr"
	"table-booking/internal/usecase/commands"
	"table-booking/internal/usecase/queries"

	"github.com/gin-gonic/gin"
)

type TableHandler struct {
	cmds  commands.TableCommands
	q     queries.TableQueries
	venue *time.Location
}

func NewTableHandler(cmds commands.TableCommands, q queries.TableQueries, venue *time.Location) *TableHandler {
	if venue == nil {
		venue = time.UTC
	}
	return &TableHandler{cmds: cmds, q: q, venue: venue}
}

// @Summary List tables
// @Tags tables
// @Produce json
// @Success 200 {array} resdto.TableResponse
// @Router /api/tables [get]
func (h *TableHandler) List(c *gin.Context) {
	tables, err := h.q.ListTables(c.Request.Context())
	if err != nil {
		httperr.AbortWithClassified(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromTables(tables))
}

// @Summary Add table
// @Tags tables
// @Accept json
// @Produce json
// @Param request body reqdto.AddTableRequest true "Table"
// @Success 201 {object} resdto.TableResponse
// @Failure 400 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Failure 422 {object} httperr.Response
// @Router /api/tables [post]
func (h *TableHandler) Add(c *gin.Context) {
	var req reqdto.AddTableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request", nil)
		return
	}
	tbl, err := h.cmds.AddTable(c.Request.Context(), req.ToParams())
	if err != nil {
		httperr.AbortWithClassified(c, err)
		return
	}
	c.JSON(http.StatusCreated, resdto.FromTable(tbl))
}

// @Summary Seed default tables
// @Description Installs the default floor plan when the venue has no tables
// @Tags tables
// @Produce json
// @Success 200 {object} resdto.SeedResponse
// @Router /api/tables/seed [post]
func (h *TableHandler) Seed(c *gin.Context) {
	n, err := h.cmds.SeedDefaultTables(c.Request.Context())
	if err != nil {
		httperr.AbortWithClassified(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.SeedResponse{Created: n})
}

// @Summary Toggle maintenance
// @Tags tables
// @Accept json
// @Produce json
// @Param id path string true "Table ID"
// @Param request body reqdto.MaintenanceRequest true "Maintenance flag"
// @Success 200 {object} resdto.TableResponse
// @Failure 404 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Router /api/tables/{id}/maintenance [put]
func (h *TableHandler) SetMaintenance(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req reqdto.MaintenanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request", nil)
		return
	}
	tbl, err := h.cmds.SetMaintenance(c.Request.Context(), id, *req.Enabled)
	if err != nil {
		httperr.AbortWithClassified(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromTable(tbl))
}

// @Summary Free tables
// @Description Tables that seat the party and are free for the whole window, smallest first
// @Tags tables
// @Produce json
// @Param date query string true "YYYY-MM-DD"
// @Param time query string true "HH:MM"
// @Param party_size query int true "Guests"
// @Param duration query int false "Minutes"
// @Success 200 {array} resdto.TableResponse
// @Failure 400 {object} httperr.Response
// @Router /api/tables/available [get]
func (h *TableHandler) Available(c *gin.Context) {
	var query reqdto.AvailabilityQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid query", nil)
		return
	}
	start, duration, err := query.Window(h.venue)
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, reqdto.ErrInvalidDateTime.Error(), nil)
		return
	}
	tables, err := h.q.FindCandidates(c.Request.Context(), query.PartySize, start, duration)
	if err != nil {
		httperr.AbortWithClassified(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromTables(tables))
}

// @Summary Best table
// @Description The exact-fit free table if any, otherwise the smallest that seats the party
// @Tags tables
// @Produce json
// @Param date query string true "YYYY-MM-DD"
// @Param time query string true "HH:MM"
// @Param party_size query int true "Guests"
// @Param duration query int false "Minutes"
// @Success 200 {object} resdto.TableResponse
// @Failure 400 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Router /api/tables/best [get]
func (h *TableHandler) Best(c *gin.Context) {
	var query reqdto.AvailabilityQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid query", nil)
		return
	}
	start, duration, err := query.Window(h.venue)
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, reqdto.ErrInvalidDateTime.Error(), nil)
		return
	}
	tbl, err := h.q.FindBestTable(c.Request.Context(), query.PartySize, start, duration)
	if err != nil {
		httperr.AbortWithClassified(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromTable(tbl))
}
