// Package api provides the HTTP API for the weather relay.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/weatherbestie/weatherbestie/internal/api/handler"
	"github.com/weatherbestie/weatherbestie/internal/api/middleware"
	"github.com/weatherbestie/weatherbestie/internal/api/models"
	"github.com/weatherbestie/weatherbestie/internal/api/response"
	"github.com/weatherbestie/weatherbestie/internal/provider"
)

// DefaultServiceName names the service in spans when none is configured.
const DefaultServiceName = "weatherbestie-api"

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	Version        string
	BuildTime      string
	Logger         zerolog.Logger
	ServiceName    string
	Metrics        *middleware.Metrics
	WeatherService handler.WeatherService
	Registry       *provider.Registry
	AllowedOrigins []string
	RequireTLS     bool
}

// NewRouter creates a new chi router with all API routes configured.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = DefaultServiceName
	}

	// Global middleware - order matters
	r.Use(middleware.RequestID)            // Generate/propagate request ID first
	r.Use(middleware.Tracing(serviceName)) // Distributed tracing
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware()) // HTTP metrics
	}
	r.Use(middleware.Logger(cfg.Logger))         // Structured logging
	r.Use(middleware.Recovery(cfg.Logger))       // Panic recovery
	r.Use(chimiddleware.RealIP)                  // Real IP extraction
	r.Use(middleware.CORS(cfg.AllowedOrigins))   // Answers preflight before routing
	r.Use(middleware.SecurityHeaders)            // Security headers
	r.Use(middleware.RequireTLS(cfg.RequireTLS)) // TLS enforcement
	r.Use(middleware.ContentTypeJSON)            // JSON content type

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		response.NotFound(w, req, models.DetailNotFound)
	})
	r.MethodNotAllowed(response.MethodNotAllowed)

	weatherHandler := handler.NewWeatherHandler(cfg.WeatherService)
	opsHandler := handler.NewOpsHandler(cfg.Version, cfg.BuildTime, cfg.Registry)

	r.Route("/api", func(r chi.Router) {
		r.Get("/weather", weatherHandler.GetCurrentWeather)
		r.Get("/forecast3", weatherHandler.GetForecast3)
		r.Get("/sun", weatherHandler.GetSunTimes)

		r.Route("/ops", func(r chi.Router) {
			r.Get("/health", opsHandler.HealthCheck)
			r.Get("/ready", opsHandler.ReadinessCheck)
			r.Get("/status", opsHandler.SystemStatus)
		})
	})

	return r
}
