package metrics

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestsTotal tracks total HTTP requests
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	// RequestDuration tracks HTTP request duration
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	// OrdersTotal tracks placed orders by payment method
	OrdersTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "orders_total",
			Help: "Total number of placed orders",
		},
		[]string{"method"},
	)

	// PaymentsConfirmed tracks confirmed gateway payments
	PaymentsConfirmed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "payments_confirmed_total",
			Help: "Total number of confirmed payments",
		},
	)

	// CartSyncFailures tracks failed best-effort cart persistence
	CartSyncFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cart_sync_failures_total",
			Help: "Total number of failed cart sync attempts",
		},
	)
)

// Middleware はリクエスト数とレイテンシを記録するechoミドルウェア。
func Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			status := c.Response().Status
			if err != nil {
				if he, ok := err.(*echo.HTTPError); ok {
					status = he.Code
				}
			}

			path := c.Path()
			RequestsTotal.WithLabelValues(
				c.Request().Method, path, strconv.Itoa(status),
			).Inc()
			RequestDuration.WithLabelValues(
				c.Request().Method, path,
			).Observe(time.Since(start).Seconds())

			return err
		}
	}
}
