package middleware

import (
	"time"

	applogger "SalesCast/pkg/logger"

	"github.com/labstack/echo/v4"
)

// RequestLogging logs one line per request.
func RequestLogging(l *applogger.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			req := c.Request()
			l.Info("http request",
				applogger.String("method", req.Method),
				applogger.String("uri", req.RequestURI),
				applogger.String("route", c.Path()),
				applogger.String("remote", c.RealIP()),
				applogger.Int("status", c.Response().Status),
				applogger.Int64("bytes", c.Response().Size),
				applogger.Duration("latency_ms", time.Since(start)),
			)
			return err
		}
	}
}
