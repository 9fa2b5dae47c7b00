package middleware

import (
	"log/slog"
	"slices"
	"strings"

	"table-booking/internal/pkg/config"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// exposed regardless of config: booking returns Location, the export names its file.
var requiredExposeHeaders = []string{"Location", "Content-Disposition"}

// NewCORSMiddleware answers cross-origin requests for the configured origins.
// With no origins configured CORS is off and requests pass through untouched.
func NewCORSMiddleware(cfg config.CORSConfig) gin.HandlerFunc {
	corsCfg, enabled := corsConfig(cfg)
	if !enabled {
		slog.Info("CORS middleware disabled: no allowed origins configured")
		return func(c *gin.Context) { c.Next() }
	}
	slog.Info("CORS middleware initialized",
		"AllowOrigins", corsCfg.AllowOrigins,
		"AllowAllOrigins", corsCfg.AllowAllOrigins)
	return cors.New(corsCfg)
}

func corsConfig(cfg config.CORSConfig) (cors.Config, bool) {
	origins := make([]string, 0, len(cfg.AllowOrigins))
	for _, o := range cfg.AllowOrigins {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	if len(origins) == 0 {
		return cors.Config{}, false
	}

	corsCfg := cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     cfg.AllowMethods,
		AllowHeaders:     cfg.AllowHeaders,
		ExposeHeaders:    slices.Clone(cfg.ExposeHeaders),
		AllowCredentials: cfg.AllowCredentials,
		MaxAge:           cfg.MaxAge,
	}
	// cors rejects "*" mixed with explicit origins, and wildcard origins with credentials
	if slices.Contains(origins, "*") {
		corsCfg.AllowOrigins = nil
		corsCfg.AllowAllOrigins = true
		corsCfg.AllowCredentials = false
	}
	for _, h := range requiredExposeHeaders {
		if !slices.Contains(corsCfg.ExposeHeaders, h) {
			corsCfg.ExposeHeaders = append(corsCfg.ExposeHeaders, h)
		}
	}
	return corsCfg, true
}
