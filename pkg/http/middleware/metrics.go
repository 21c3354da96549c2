package middleware

import (
	"strconv"
	"sync"
	"time"

	applogger "ZoneWatch/pkg/logger"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	requestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "zonewatch_http_requests_total",
		Help: "API requests by route and status code.",
	}, []string{"route", "method", "status"})

	requestSeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name: "zonewatch_http_request_seconds",
		Help: "API latency by route.",
		// a cold /api/zones/nested fetches two intervals from the provider
		Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
	}, []string{"route", "method", "class"})

	inFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "zonewatch_http_in_flight_requests",
		Help: "API requests currently being served.",
	})

	registerOnce sync.Once
)

// Metrics counts requests per echo route template, so /api/zones?symbol=X
// stays one series. Server errors and requests slower than slow are logged.
func Metrics(l *applogger.Logger, slow time.Duration) echo.MiddlewareFunc {
	registerOnce.Do(func() {
		prometheus.MustRegister(requestsTotal, requestSeconds, inFlight)
	})
	if l == nil {
		l = applogger.Nop()
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			inFlight.Inc()
			defer inFlight.Dec()
			start := time.Now()

			if err := next(c); err != nil {
				c.Error(err)
			}

			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			method := c.Request().Method
			code := c.Response().Status
			took := time.Since(start)

			requestsTotal.WithLabelValues(route, method, strconv.Itoa(code)).Inc()
			requestSeconds.WithLabelValues(route, method, strconv.Itoa(code/100)+"xx").Observe(took.Seconds())

			switch {
			case code >= 500:
				l.Error("api request failed",
					applogger.String("route", route),
					applogger.String("query", c.QueryString()),
					applogger.Int("status", code),
					applogger.Duration("duration_ms", took))
			case slow > 0 && took >= slow:
				l.Warn("api request slow",
					applogger.String("route", route),
					applogger.String("query", c.QueryString()),
					applogger.Duration("duration_ms", took))
			}
			return nil
		}
	}
}
