// Package http serves the summarizer over a JSON API.
package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/fyrsmithlabs/lexisum/internal/config"
	"github.com/fyrsmithlabs/lexisum/internal/logging"
	"github.com/fyrsmithlabs/lexisum/internal/summarizer"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Summarizer is the subset of *summarizer.Summarizer the server needs.
type Summarizer interface {
	Summarize(ctx context.Context, req summarizer.Request) (*summarizer.Result, error)
	ComputeSentenceWeights(ctx context.Context, sentences []string, originalText string, boundaryProbs []float64) (*summarizer.Weights, error)
}

// Server provides the HTTP endpoints for lexisum.
type Server struct {
	echo       *echo.Echo
	summarizer Summarizer
	logger     *zap.Logger
	config     *Config

	metrics  *httpMetrics
	registry *prometheus.Registry
}

// Config holds HTTP server configuration.
type Config struct {
	Host            string
	Port            int
	ShutdownTimeout time.Duration
	// RateLimit is the sustained requests per second allowed per client IP
	// on /api routes. 0 disables limiting.
	RateLimit float64
	Burst     int
	// BodyLimit caps request bodies, in echo's size notation ("2M").
	BodyLimit string
}

// DefaultConfig returns the server defaults.
func DefaultConfig() *Config {
	return &Config{
		Host:            "localhost",
		Port:            9191,
		ShutdownTimeout: 10 * time.Second,
		RateLimit:       20,
		Burst:           40,
		BodyLimit:       "2M",
	}
}

// ConfigFrom converts the application server settings.
func ConfigFrom(c config.ServerConfig) *Config {
	cfg := DefaultConfig()
	cfg.Host = c.Host
	cfg.Port = c.Port
	cfg.ShutdownTimeout = c.ShutdownTimeout.Duration()
	cfg.RateLimit = c.RateLimit
	cfg.Burst = max(1, int(2*c.RateLimit))
	return cfg
}

// NewServer creates a new HTTP server.
func NewServer(svc Summarizer, logger *zap.Logger, cfg *Config) (*Server, error) {
	if svc == nil {
		return nil, fmt.Errorf("summarizer cannot be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required for request tracking and debugging")
	}
	if cfg == nil {
		cfg = DefaultConfig()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	registry := prometheus.NewRegistry()
	metrics, err := newHTTPMetrics(otel.Meter(meterName), registry)
	if err != nil {
		return nil, err
	}

	s := &Server{
		echo:       e,
		summarizer: svc,
		logger:     logger,
		config:     cfg,
		metrics:    metrics,
		registry:   registry,
	}

	e.Use(middleware.Recover())
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator:        uuid.NewString,
		RequestIDHandler: attachRequestID,
	}))
	e.Use(s.requestLogger())
	e.Use(metrics.middleware())
	if cfg.BodyLimit != "" {
		e.Use(middleware.BodyLimit(cfg.BodyLimit))
	}

	s.registerRoutes()
	return s, nil
}

// attachRequestID puts a well-formed request ID on the request context so
// downstream logs carry it. Malformed client-supplied IDs are not propagated.
func attachRequestID(c echo.Context, id string) {
	if !logging.ValidID(id) {
		return
	}
	req := c.Request()
	c.SetRequest(req.WithContext(logging.WithRequestID(req.Context(), id)))
}

func (s *Server) registerRoutes() {
	s.echo.GET("/health", s.handleHealth)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{
		Registry: s.registry,
	})))

	v1 := s.echo.Group("/api/v1")
	if s.config.RateLimit > 0 {
		v1.Use(s.rateLimiter())
	}
	v1.POST("/summarize", s.handleSummarize)
	v1.POST("/weights", s.handleWeights)
}

func (s *Server) rateLimiter() echo.MiddlewareFunc {
	store := middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
		Rate:      rate.Limit(s.config.RateLimit),
		Burst:     max(1, s.config.Burst),
		ExpiresIn: 3 * time.Minute,
	})
	return middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Store: store,
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			s.logger.Warn("rate limit exceeded", zap.String("ip", identifier))
			return echo.NewHTTPError(http.StatusTooManyRequests, "rate limit exceeded")
		},
	})
}

// requestLogger logs one line per request with its final status.
func (s *Server) requestLogger() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			logging.ZapFromContext(c.Request().Context(), s.logger).Info("http request",
				zap.String("method", c.Request().Method),
				zap.String("uri", c.Request().RequestURI),
				zap.Int("status", responseStatus(c, err)),
				zap.Duration("duration", time.Since(start)),
			)
			return err
		}
	}
}

// responseStatus returns the status the client will see, including errors
// not yet rendered by echo's error handler.
func responseStatus(c echo.Context, err error) int {
	if err == nil {
		return c.Response().Status
	}
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code
	}
	return http.StatusInternalServerError
}

// Start listens on the configured address and blocks until ctx is cancelled,
// then shuts down gracefully. It returns http.ErrServerClosed after a clean
// shutdown.
func (s *Server) Start(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.logger.Info("starting http server", zap.String("addr", addr))

	errCh := make(chan error, 1)
	go func() {
		if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("server start: %w", err)
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		timeout := s.config.ShutdownTimeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		if err := s.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown: %w", err)
		}
		return http.ErrServerClosed
	}
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.echo.Shutdown(ctx)
}

// Echo returns the underlying Echo instance.
func (s *Server) Echo() *echo.Echo {
	return s.echo
}
