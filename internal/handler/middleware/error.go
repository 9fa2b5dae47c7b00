package middleware

import (
	"log/slog"
	"net/http"

	"table-booking/internal/handler/httperr"
	"table-booking/internal/pkg/errs"

	"github.com/gin-gonic/gin"
)

// ErrorHandler answers requests that recorded errors but wrote no body.
// Public errors carry their response in Meta; anything else is mapped by
// error class.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() || len(c.Errors) == 0 {
			return
		}
		// Search backward through the error stack
		for i := len(c.Errors) - 1; i >= 0; i-- {
			err := c.Errors[i]

			if err.IsType(gin.ErrorTypePublic) {
				if resp, ok := err.Meta.(httperr.Response); ok {
					c.JSON(resp.Status, resp)
					return
				}
			}
		}

		last := c.Errors.Last().Err
		status := httperr.StatusOf(last)
		resp := httperr.Response{Status: status}
		resp.Error.Message = last.Error()
		if status == http.StatusInternalServerError {
			resp.Error.Message = "Internal server error"
		}
		c.JSON(status, resp)
	}
}

func CustomRecovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				err := errs.New("panic recovered")
				attrs := []any{
					"error", rec,
					"path", c.Request.URL.Path,
					"route", c.FullPath(),
					"stack", errs.ExtractStackLines(err, 12),
				}
				if id, ok := c.Get(requestIDKey); ok {
					attrs = append(attrs, "request_id", id)
				}
				slog.Error("recovered from panic", attrs...)

				resp := httperr.Response{Status: http.StatusInternalServerError}
				resp.Error.Message = "Internal server error"

				c.AbortWithStatusJSON(http.StatusInternalServerError, resp)
			}
		}()
		c.Next()
	}
}

// NotFound keeps unknown routes in the same error envelope as the API.
func NotFound() gin.HandlerFunc {
	return func(c *gin.Context) {
		resp := httperr.Response{Status: http.StatusNotFound}
		resp.Error.Message = "Route not found"
		c.JSON(http.StatusNotFound, resp)
	}
}
