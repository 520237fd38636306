package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	mw "github.com/menumaker/menumaker/internal/api/middleware"
	"github.com/menumaker/menumaker/internal/logger"
)

// Server is the main HTTP server for menumaker.
// It manages the Echo framework instance, middleware, and all HTTP routes.
type Server struct {
	echo   *echo.Echo
	config *Config
	logger logger.Logger

	apiController *Controller

	startTime time.Time
}

// NewServer creates the HTTP server and its API controller.
func NewServer(config *Config, deps Dependencies) (*Server, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid server configuration: %w", err)
	}
	if deps.Logger == nil {
		deps.Logger = logger.NewSlogLogger(nil, config.LogLevel, nil)
	}

	s := &Server{
		config:    config,
		logger:    deps.Logger.Module("server"),
		startTime: time.Now(),
	}

	s.echo = echo.New()
	s.echo.HideBanner = true
	s.echo.HidePort = true
	s.echo.Debug = config.Debug

	s.echo.Server.ReadTimeout = config.ReadTimeout
	s.echo.Server.WriteTimeout = config.WriteTimeout
	s.echo.Server.IdleTimeout = config.IdleTimeout

	s.setupMiddleware(deps)

	controller, err := New(s.echo, deps)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize API: %w", err)
	}
	s.apiController = controller

	s.logger.Info("HTTP server initialized",
		logger.String("address", config.Address()),
		logger.Bool("debug", config.Debug),
	)
	return s, nil
}

// setupMiddleware configures the Echo middleware stack.
func (s *Server) setupMiddleware(deps Dependencies) {
	// Recovery middleware - should be first
	s.echo.Use(echomw.Recover())

	if deps.Metrics != nil {
		s.echo.Use(mw.NewMetrics(deps.Metrics.HTTP))
	}

	s.echo.Use(mw.NewRequestLoggerWithSkipper(s.logger, func(c echo.Context) bool {
		// status is polled during generation
		return c.Path() == "/api/v1/status" || c.Path() == "/metrics"
	}))

	securityConfig := mw.DefaultSecurityConfig()
	if len(s.config.AllowedOrigins) > 0 {
		securityConfig.AllowedOrigins = s.config.AllowedOrigins
	}

	s.echo.Use(mw.NewCORS(securityConfig))
	s.echo.Use(mw.NewBodyLimit(s.config.BodyLimit))
	s.echo.Use(mw.NewGzip())
	s.echo.Use(mw.NewSecureHeaders(securityConfig))
}

// Run serves HTTP until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Starting HTTP server", logger.String("address", s.config.Address()))
		if err := s.echo.Start(s.config.Address()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("server error: %w", err)
			return
		}
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	if err := s.Shutdown(); err != nil {
		return err
	}
	return <-errCh
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
	defer cancel()

	if err := s.echo.Shutdown(ctx); err != nil {
		s.logger.Error("Error during server shutdown", logger.Error(err))
		return fmt.Errorf("shutdown error: %w", err)
	}

	s.logger.Info("Server shutdown complete", logger.Duration("uptime", time.Since(s.startTime)))
	return nil
}

// APIController returns the API controller.
func (s *Server) APIController() *Controller {
	return s.apiController
}

// Echo returns the underlying Echo instance.
// This is useful for testing or advanced configuration.
func (s *Server) Echo() *echo.Echo {
	return s.echo
}
