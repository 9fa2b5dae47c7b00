package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"table-booking/internal/handler/api"
	"table-booking/internal/handler/middleware"
	"table-booking/internal/pkg/config"
)

type route struct {
	Method  string
	Path    string
	Handler gin.HandlerFunc
}

func NewRouter(engine *gin.Engine, cfg config.Config, logger *slog.Logger, tableHandler *api.TableHandler, reservationHandler *api.ReservationHandler) {
	setupMiddleware(engine, cfg, logger)
	setupRoutes(engine, tableHandler, reservationHandler)
}

func setupMiddleware(engine *gin.Engine, cfg config.Config, logger *slog.Logger) {
	// Recovery must be first (outermost) to catch panics from all other middleware
	engine.Use(middleware.CustomRecovery())
	engine.Use(middleware.NewCORSMiddleware(cfg.CORS))
	engine.Use(middleware.LoggingMiddleware(logger))
	engine.Use(middleware.ErrorHandler())
}

func setupRoutes(engine *gin.Engine, tableHandler *api.TableHandler, reservationHandler *api.ReservationHandler) {
	engine.GET("/health", healthCheck)
	engine.NoRoute(middleware.NotFound())

	if gin.Mode() == gin.DebugMode {
		engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	apiGroup := engine.Group("/api")
	{
		tables := apiGroup.Group("/tables")
		{
			addRoutes(tables, []route{
				{Method: http.MethodGet, Path: "", Handler: tableHandler.List},
				{Method: http.MethodPost, Path: "", Handler: tableHandler.Add},
				{Method: http.MethodPost, Path: "/seed", Handler: tableHandler.Seed},
				{Method: http.MethodGet, Path: "/available", Handler: tableHandler.Available},
				{Method: http.MethodGet, Path: "/best", Handler: tableHandler.Best},
				{Method: http.MethodPut, Path: "/:id/maintenance", Handler: tableHandler.SetMaintenance},
				{Method: http.MethodGet, Path: "/:id/reservations", Handler: reservationHandler.ByTable},
			})
		}

		reservations := apiGroup.Group("/reservations")
		{
			addRoutes(reservations, []route{
				{Method: http.MethodPost, Path: "", Handler: reservationHandler.Book},
				{Method: http.MethodGet, Path: "", Handler: reservationHandler.Active},
				{Method: http.MethodGet, Path: "/today", Handler: reservationHandler.Today},
				{Method: http.MethodGet, Path: "/upcoming", Handler: reservationHandler.Upcoming},
				{Method: http.MethodGet, Path: "/stats", Handler: reservationHandler.Stats},
				{Method: http.MethodGet, Path: "/download", Handler: reservationHandler.Download},
				{Method: http.MethodGet, Path: "/:id", Handler: reservationHandler.Get},
				{Method: http.MethodPost, Path: "/:id/confirm", Handler: reservationHandler.Confirm},
				{Method: http.MethodPost, Path: "/:id/seat", Handler: reservationHandler.Seat},
				{Method: http.MethodPost, Path: "/:id/complete", Handler: reservationHandler.Complete},
				{Method: http.MethodPost, Path: "/:id/cancel", Handler: reservationHandler.Cancel},
				{Method: http.MethodPost, Path: "/:id/no-show", Handler: reservationHandler.NoShow},
			})
		}

		apiGroup.GET("/customers/:id/reservations", reservationHandler.ByCustomer)
	}
}

// @Summary Health check
// @Description Check if the service is healthy
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"message": "Service is healthy",
	})
}

func addRoutes(g *gin.RouterGroup, rs []route) {
	for _, r := range rs {
		h := r.Handler
		switch r.Method {
		case http.MethodGet:
			g.GET(r.Path, h)
		case http.MethodPost:
			g.POST(r.Path, h)
		case http.MethodPut:
			g.PUT(r.Path, h)
		case http.MethodPatch:
			g.PATCH(r.Path, h)
		case http.MethodDelete:
			g.DELETE(r.Path, h)
		default:
			g.Any(r.Path, h)
		}
	}
}
