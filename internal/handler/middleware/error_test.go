//go:build unit

package middleware_test

import (
	"errors"
	"net/http"
	"testing"

	"table-booking/internal/handler/middleware"
	"table-booking/internal/pkg/errs"
	"table-booking/tests/common/httptest"

	"github.com/gin-gonic/gin"
)

func newEngine() *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.Use(middleware.CustomRecovery())
	engine.Use(middleware.ErrorHandler())
	engine.NoRoute(middleware.NotFound())
	return engine
}

func TestErrorHandler_UnwrittenErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantMsg    string
	}{
		{name: "not found class", err: errs.Wrap(errs.ErrTableNotFound, "load"), wantStatus: http.StatusNotFound, wantMsg: "table not found"},
		{name: "conflict class", err: errs.ErrNoTableAvailable, wantStatus: http.StatusConflict, wantMsg: "no table available"},
		{name: "validation class", err: errs.ErrInvalidPartySize, wantStatus: http.StatusUnprocessableEntity, wantMsg: "party size"},
		{name: "unclassified hides details", err: errors.New("pq: relation missing"), wantStatus: http.StatusInternalServerError, wantMsg: "Internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := newEngine()
			engine.GET("/x", func(c *gin.Context) { _ = c.Error(tt.err) })

			w := httptest.PerformRequest(t, engine, http.MethodGet, "/x", nil)

			httptest.AssertErrorResponse(t, w, tt.wantStatus, tt.wantMsg)
		})
	}
}

func TestErrorHandler_LeavesWrittenResponses(t *testing.T) {
	engine := newEngine()
	engine.GET("/x", func(c *gin.Context) {
		_ = c.Error(errs.ErrTableNotFound)
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	w := httptest.PerformRequest(t, engine, http.MethodGet, "/x", nil)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
}

func TestCustomRecovery(t *testing.T) {
	engine := newEngine()
	engine.GET("/panic", func(*gin.Context) { panic("boom") })

	w := httptest.PerformRequest(t, engine, http.MethodGet, "/panic", nil)

	httptest.AssertErrorResponse(t, w, http.StatusInternalServerError, "Internal server error")
}

func TestNotFound(t *testing.T) {
	engine := newEngine()

	w := httptest.PerformRequest(t, engine, http.MethodGet, "/nowhere", nil)

	httptest.AssertErrorResponse(t, w, http.StatusNotFound, "Route not found")
}
