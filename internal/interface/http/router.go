package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/outfit-calendar/internal/infra/config"
)

// NewRouter wires up the HTTP handlers and returns a configured server.
func NewRouter(cfg *config.Config, handler *Handler) *http.Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(
		gin.Recovery(),
		requestLogger(handler.logger),
		corsMiddleware(cfg.HTTP.AllowedOrigins),
		errorHandlingMiddleware(handler.logger),
	)

	router.GET("/healthz", handler.Health)

	api := router.Group(apiPrefix)
	api.Use(
		rateLimitMiddleware(cfg.HTTP.RateLimit, handler.logger),
		sessionMiddleware(),
	)
	{
		api.GET("/calendar", handler.Calendar)
		api.GET("/calendar/state", handler.CalendarState)
		api.PUT("/calendar/favorites", handler.SetFavorites)
		api.POST("/calendar/overlay", handler.Overlay)
		api.GET("/dashboard/overview", handler.DashboardOverview)
	}

	return &http.Server{
		Addr:           cfg.HTTP.Address,
		Handler:        withSessionKey(withRetry(router, cfg.HTTP.Retry, handler.logger)),
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		MaxHeaderBytes: 1 << 20,
	}
}

func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		logger.Info("http request", "method", c.Request.Method, "path", c.Request.URL.Path, "status", c.Writer.Status(), "latency_ms", latency.Milliseconds())
	}
}
