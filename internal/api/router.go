package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"

	"github.com/AnandRamasubramanian/youtube-downloader/internal/config"
)

// NewRouter builds the echo instance with recovery, request logging, CORS,
// and per-client rate limiting applied globally.
func NewRouter(h *Handler, cfg *config.Config) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	e.Use(middleware.Recover())
	e.Use(middleware.Logger())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: cfg.AllowedOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
	}))
	e.Use(middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Store: middleware.NewRateLimiterMemoryStore(rate.Limit(cfg.RateLimitPerSec)),
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			return errorJSON(c, http.StatusTooManyRequests, "Rate limit exceeded")
		},
	}))

	api := e.Group("/api")
	api.POST("/info", h.Info)
	api.POST("/download", h.Download)
	api.GET("/progress/:job_id", h.Progress)
	api.GET("/file/:job_id", h.File)
	api.GET("/health", h.Health)

	return e
}
