package http

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"

	"github.com/fieldvault/fieldvault/internal/config"
	"github.com/fieldvault/fieldvault/internal/metrics"
	recordsHTTP "github.com/fieldvault/fieldvault/internal/records/http"
)

// Server is the protected records API server.
type Server struct {
	server *http.Server
	logger *slog.Logger
}

// NewServer creates the API server with its middleware chain and routes.
func NewServer(
	cfg *config.Config,
	recordHandler *recordsHTTP.RecordHandler,
	metricsProvider *metrics.Provider,
	logger *slog.Logger,
) *Server {
	gin.SetMode(cfg.GetGinMode())

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestid.New())
	router.Use(CustomLoggerMiddleware(logger))

	if metricsProvider != nil {
		router.Use(metrics.HTTPMetricsMiddleware(metricsProvider.MeterProvider(), cfg.MetricsNamespace))
	}

	if corsMiddleware := createCORSMiddleware(cfg.CORSEnabled, cfg.CORSAllowOrigins, logger); corsMiddleware != nil {
		router.Use(corsMiddleware)
	}

	if cfg.RateLimitEnabled {
		router.Use(RateLimitMiddleware(cfg.RateLimitRequestsPerSec, cfg.RateLimitBurst, logger))
	}

	router.GET("/health", HealthHandler())

	v1 := router.Group("/v1")
	{
		v1.POST("/records", recordHandler.CreateHandler)
		v1.PATCH("/records/:id", recordHandler.UpdateHandler)
		v1.GET("/records/:id", recordHandler.GetHandler)
		v1.GET("/records", recordHandler.ListHandler)
		v1.DELETE("/records/:id", recordHandler.DeleteHandler)
		v1.POST("/owners/:owner_id/default-records", recordHandler.ProvisionDefaultsHandler)
	}

	return &Server{
		server: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", cfg.ServerHost, cfg.ServerPort),
			Handler:      router,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		logger: logger,
	}
}

// GetHandler returns the http.Handler for testing purposes.
func (s *Server) GetHandler() http.Handler {
	return s.server.Handler
}

// Start starts the API server.
func (s *Server) Start(ctx context.Context) error {
	s.logger.Info("starting http server", slog.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the API server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.server.Shutdown(ctx)
}
