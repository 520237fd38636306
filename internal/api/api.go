package api

import (
	"crypto/rand"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/menumaker/menumaker/internal/credentials"
	"github.com/menumaker/menumaker/internal/errors"
	"github.com/menumaker/menumaker/internal/generation"
	"github.com/menumaker/menumaker/internal/history"
	"github.com/menumaker/menumaker/internal/imageprovider"
	"github.com/menumaker/menumaker/internal/logger"
	"github.com/menumaker/menumaker/internal/observability"
	"github.com/menumaker/menumaker/internal/prefs"
	"github.com/menumaker/menumaker/internal/render"
)

// Dependencies are the services the API controller exposes.
type Dependencies struct {
	Generation  *generation.Service
	History     *history.Service
	Credentials *credentials.Store
	Prefs       *prefs.Store
	Registry    *imageprovider.Registry
	Renderer    *render.Renderer
	Metrics     *observability.Metrics // optional, /metrics is not served without it
	Logger      logger.Logger
}

// Controller manages the API routes and handlers
type Controller struct {
	Echo  *echo.Echo
	Group *echo.Group

	generation  *generation.Service
	history     *history.Service
	credentials *credentials.Store
	prefs       *prefs.Store
	registry    *imageprovider.Registry
	renderer    *render.Renderer
	metrics     *observability.Metrics

	logger    logger.Logger
	startTime time.Time
}

// New creates the API controller and registers its routes on e.
func New(e *echo.Echo, deps Dependencies) (*Controller, error) {
	if deps.Generation == nil || deps.History == nil || deps.Credentials == nil || deps.Prefs == nil {
		return nil, errors.Newf("api controller is missing a required service").
			Component("api").
			Category(errors.CategoryConfiguration).
			Build()
	}
	if deps.Registry == nil {
		deps.Registry = imageprovider.DefaultRegistry()
	}
	if deps.Renderer == nil {
		r, err := render.New(render.Options{})
		if err != nil {
			return nil, err
		}
		deps.Renderer = r
	}
	if deps.Logger == nil {
		deps.Logger = logger.NewSlogLogger(nil, logger.LogLevelInfo, nil)
	}

	c := &Controller{
		Echo:        e,
		generation:  deps.Generation,
		history:     deps.History,
		credentials: deps.Credentials,
		prefs:       deps.Prefs,
		registry:    deps.Registry,
		renderer:    deps.Renderer,
		metrics:     deps.Metrics,
		logger:      deps.Logger.Module("api"),
		startTime:   time.Now(),
	}
	c.initRoutes()
	return c, nil
}

// initRoutes registers all endpoints
func (c *Controller) initRoutes() {
	c.Echo.GET("/health", c.HealthCheck)
	if c.metrics != nil {
		c.Echo.GET("/metrics", echo.WrapHandler(c.metrics.Handler(c.logger)))
	}

	// printable views
	c.Echo.GET("/menu", c.RenderMenu)
	c.Echo.GET("/cards", c.RenderCards)

	c.Group = c.Echo.Group("/api/v1")
	c.initMenuRoutes()
	c.initHistoryRoutes()
	c.initSettingsRoutes()
}

// HealthCheck handles the health check endpoint
func (c *Controller) HealthCheck(ctx echo.Context) error {
	uptime := time.Since(c.startTime)
	return ctx.JSON(http.StatusOK, map[string]any{
		"status":         "ok",
		"generating":     c.generation.Running(),
		"uptime":         uptime.String(),
		"uptime_seconds": uptime.Seconds(),
		"timestamp":      time.Now().Format(time.RFC3339),
	})
}

// Error response structure
type ErrorResponse struct {
	Error         string `json:"error"`
	Message       string `json:"message"`
	Code          int    `json:"code"`
	CorrelationID string `json:"correlation_id"` // Unique identifier for tracking this error
}

// NewErrorResponse creates a new API error response
func NewErrorResponse(err error, message string, code int) *ErrorResponse {
	var errorStr string
	if err != nil {
		errorStr = errors.ScrubMessage(err.Error())
	} else {
		errorStr = message
	}

	return &ErrorResponse{
		Error:         errorStr,
		Message:       message,
		Code:          code,
		CorrelationID: generateCorrelationID(),
	}
}

// generateCorrelationID creates a short random identifier for error tracking
func generateCorrelationID() string {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	const length = 8

	b := make([]byte, length)
	if _, err := rand.Read(b); err != nil {
		return "ERR-RAND"
	}
	for i := range b {
		b[i] = charset[int(b[i])%len(charset)]
	}
	return string(b)
}

// StatusFor maps an error category to an HTTP status code.
func StatusFor(err error) int {
	switch errors.CategoryOf(err) {
	case errors.CategoryValidation:
		return http.StatusBadRequest
	case errors.CategoryNotFound:
		return http.StatusNotFound
	case errors.CategoryConflict:
		return http.StatusConflict
	case errors.CategoryMenuGeneration:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// HandleError writes an ErrorResponse with the status derived from err.
func (c *Controller) HandleError(ctx echo.Context, err error, message string) error {
	return c.HandleErrorWithCode(ctx, err, message, StatusFor(err))
}

// HandleErrorWithCode writes an ErrorResponse with an explicit status code.
func (c *Controller) HandleErrorWithCode(ctx echo.Context, err error, message string, code int) error {
	resp := NewErrorResponse(err, message, code)

	fields := []logger.Field{
		logger.String("correlation_id", resp.CorrelationID),
		logger.String("message", message),
		logger.Int("code", code),
		logger.String("path", ctx.Request().URL.Path),
		logger.String("method", ctx.Request().Method),
		logger.String("ip", ctx.RealIP()),
	}
	if err != nil {
		fields = append(fields, logger.Error(err))
	}
	log := c.logger.WithContext(ctx.Request().Context())
	if code >= http.StatusInternalServerError {
		log.Error("API error", fields...)
	} else {
		log.Warn("API error", fields...)
	}

	return ctx.JSON(code, resp)
}

// bind decodes the request body into v. Malformed bodies are validation errors.
func bind(ctx echo.Context, v any) error {
	if err := ctx.Bind(v); err != nil {
		return errors.New(err).
			Component("api").
			Category(errors.CategoryValidation).
			Context("path", ctx.Path()).
			Build()
	}
	return nil
}
