package middleware

import (
	"strconv"
	"time"

	"measurebook/internal/metrics"

	"github.com/labstack/echo/v4"
)

// Metrics records request count and latency per route template, so
// /projects/1 and /projects/2 share one series.
func Metrics(m *metrics.Metrics) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}

			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			status := c.Response().Status
			m.ObserveRequest(c.Request().Method, route, strconv.Itoa(status), time.Since(start).Seconds())
			return nil
		}
	}
}
