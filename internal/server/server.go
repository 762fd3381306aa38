// Package server exposes the planning steps as a JSON API for the browser
// client. Every request carries the data it needs; nothing is kept between
// requests.
package server

import (
	"net/http"
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"fuel-planner/internal/app"
)

// Options configure the HTTP layer.
type Options struct {
	MaxUploadBytes  int64
	RateLimitPerMin int
	CORSOrigins     []string
	// MetricsDBPath is reported on in /healthz.
	MetricsDBPath   string
	Provider        string
}

// Server holds the handlers' dependencies.
type Server struct {
	app     *app.App
	logger  *zap.Logger
	opts    Options
	limiter *rateLimiterStore
}

// New creates a Server.
func New(a *app.App, logger *zap.Logger, opts Options) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = 1 << 20
	}
	if opts.RateLimitPerMin <= 0 {
		opts.RateLimitPerMin = 10
	}
	return &Server{
		app:     a,
		logger:  logger,
		opts:    opts,
		limiter: newRateLimiterStore(opts.RateLimitPerMin),
	}
}

// Router builds the gin engine with middleware and all routes.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(s.recoverer(), s.requestLogger(), cors.New(corsConfig(s.opts.CORSOrigins)))

	r.GET("/healthz", s.handleHealth)
	// Google redirects here, so it lives outside /api.
	r.GET("/oauth2callback", s.handleGoogleCallback)

	api := r.Group("/api")
	{
		sched := api.Group("/schedule")
		{
			sched.POST("/import", s.handleImport)
			sched.POST("/import/google", s.handleImportGoogle)
			sched.POST("/render", s.handleRender)
		}

		api.GET("/calendar/google/auth", s.handleGoogleAuth)
		api.GET("/dining/locations", s.handleDiningLocations)
		api.GET("/preferences/defaults", s.handlePreferenceDefaults)

		plan := api.Group("/plan")
		{
			plan.POST("/generate", s.rateLimit(), s.handleGenerate)
			plan.POST("/export", s.handleExport)
		}

		api.GET("/metrics/usage", s.handleUsage)
	}
	return r
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders: []string{"Content-Length", "Content-Disposition"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || slices.Contains(origins, "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}

// Run serves until the server is shut down.
func Run(srv *http.Server, logger *zap.Logger) error {
	logger.Info("listening", zap.String("addr", srv.Addr))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
