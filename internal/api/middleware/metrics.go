package middleware

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// RequestRecorder receives one observation per handled request.
type RequestRecorder interface {
	RecordHTTPRequest(method, path string, status int, duration float64)
	RecordHTTPRequestError(method, path, errorType string)
}

// NewMetrics records request counts and latency by route pattern, so path
// parameters do not create new series.
func NewMetrics(rec RequestRecorder) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			path := c.Path()
			if path == "" {
				path = "unmatched"
			}
			method := c.Request().Method

			status := c.Response().Status
			if err != nil {
				var he *echo.HTTPError
				if errors.As(err, &he) {
					status = he.Code
				} else if !c.Response().Committed {
					status = http.StatusInternalServerError
				}
			}

			rec.RecordHTTPRequest(method, path, status, time.Since(start).Seconds())
			if status >= http.StatusInternalServerError {
				rec.RecordHTTPRequestError(method, path, http.StatusText(status))
			}
			return err
		}
	}
}
