package middleware

import (
	"time"

	applogger "ZoneWatch/pkg/logger"

	"github.com/labstack/echo/v4"
)

// quietPaths are polled by health checks and scrapers and would drown the debug log.
var quietPaths = map[string]bool{"/healthz": true, "/metrics": true}

// RequestLogging logs each API request at debug level with its route template
// and query, e.g. /api/zones symbol=AAPL&interval=1d.
func RequestLogging(l *applogger.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if quietPaths[c.Request().URL.Path] {
				return err
			}
			l.Debug("api request",
				applogger.String("method", c.Request().Method),
				applogger.String("route", c.Path()),
				applogger.String("query", c.QueryString()),
				applogger.String("remote", c.RealIP()),
				applogger.Int("status", c.Response().Status),
				applogger.Duration("duration_ms", time.Since(start)))
			return err
		}
	}
}
