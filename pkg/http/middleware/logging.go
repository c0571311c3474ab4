package middleware

import (
	"time"

	applogger "CrediTech/pkg/logger"

	"github.com/labstack/echo/v4"
)

// RequestLogging writes one debug line per request; 4xx are logged at warn.
func RequestLogging(l *applogger.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			req, res := c.Request(), c.Response()
			fields := []applogger.Field{
				applogger.String("method", req.Method),
				applogger.String("uri", req.RequestURI),
				applogger.String("remote", c.RealIP()),
				applogger.Int("status", res.Status),
				applogger.Duration("latency_ms", time.Since(start)),
			}
			if err != nil {
				fields = append(fields, applogger.Error(err))
			}
			if res.Status >= 400 && res.Status < 500 {
				l.Warn("http request", fields...)
			} else {
				l.Debug("http request", fields...)
			}
			return err
		}
	}
}
