//go:build unit

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"table-booking/internal/pkg/config"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCorsConfig(t *testing.T) {
	tests := []struct {
		name          string
		in            config.CORSConfig
		wantAll       bool
		wantOrigins   []string
		wantExpose    []string
		wantCredsKept bool
		wantDisabled  bool
	}{
		{
			name: "explicit origins keep credentials",
			in: config.CORSConfig{
				AllowOrigins:     []string{"http://localhost:3000"},
				ExposeHeaders:    []string{"Content-Length"},
				AllowCredentials: true,
			},
			wantOrigins:   []string{"http://localhost:3000"},
			wantExpose:    []string{"Content-Length", "Location", "Content-Disposition"},
			wantCredsKept: true,
		},
		{
			name: "wildcard turns into allow-all without credentials",
			in: config.CORSConfig{
				AllowOrigins:     []string{"*", "http://localhost:3000"},
				ExposeHeaders:    []string{"Content-Disposition"},
				AllowCredentials: true,
			},
			wantAll:    true,
			wantExpose: []string{"Content-Disposition", "Location"},
		},
		{
			name:         "no origins turns CORS off",
			in:           config.CORSConfig{AllowCredentials: true},
			wantDisabled: true,
		},
		{
			name:         "blank origins turn CORS off",
			in:           config.CORSConfig{AllowOrigins: []string{"", "  "}},
			wantDisabled: true,
		},
		{
			name: "blank entries are dropped",
			in: config.CORSConfig{
				AllowOrigins: []string{" http://localhost:3000 ", ""},
			},
			wantOrigins: []string{"http://localhost:3000"},
			wantExpose:  []string{"Location", "Content-Disposition"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.in.MaxAge = time.Hour
			got, enabled := corsConfig(tt.in)

			if tt.wantDisabled {
				assert.False(t, enabled)
				return
			}
			assert.True(t, enabled)

			assert.Equal(t, tt.wantAll, got.AllowAllOrigins)
			assert.Equal(t, tt.wantOrigins, got.AllowOrigins)
			assert.Equal(t, tt.wantExpose, got.ExposeHeaders)
			assert.Equal(t, tt.wantCredsKept, got.AllowCredentials)
			assert.Equal(t, time.Hour, got.MaxAge)
		})
	}
}

func TestNewCORSMiddleware_NoOrigins(t *testing.T) {
	gin.SetMode(gin.TestMode)
	engine := gin.New()

	require.NotPanics(t, func() {
		engine.Use(NewCORSMiddleware(config.CORSConfig{}))
	})
	engine.GET("/ping", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Origin", "http://evil.example")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestNewCORSMiddleware_AllowedOrigin(t *testing.T) {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.Use(NewCORSMiddleware(config.NewTestConfig().CORS))
	engine.GET("/ping", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
}
