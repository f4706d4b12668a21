package http

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "github.com/fyrsmithlabs/lexisum/internal/http"

var latencyBuckets = []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}

// httpMetrics feeds every request into both the OTEL meter and the
// Prometheus registry served on /metrics.
type httpMetrics struct {
	requests metric.Int64Counter
	latency  metric.Float64Histogram
	size     metric.Int64Histogram
	inflight metric.Int64UpDownCounter

	promRequests *prometheus.CounterVec
	promLatency  *prometheus.HistogramVec
}

func newHTTPMetrics(meter metric.Meter, reg prometheus.Registerer) (*httpMetrics, error) {
	var m httpMetrics
	var errs [4]error
	m.requests, errs[0] = meter.Int64Counter("lexisum.http.requests_total",
		metric.WithDescription("HTTP requests by method, endpoint and status."),
		metric.WithUnit("{request}"))
	m.latency, errs[1] = meter.Float64Histogram("lexisum.http.request_duration_seconds",
		metric.WithDescription("HTTP request latency."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...))
	m.size, errs[2] = meter.Int64Histogram("lexisum.http.response_size_bytes",
		metric.WithDescription("HTTP response body size."),
		metric.WithUnit("By"),
		metric.WithExplicitBucketBoundaries(100, 1000, 10000, 100000, 1000000))
	m.inflight, errs[3] = meter.Int64UpDownCounter("lexisum.http.active_requests",
		metric.WithDescription("Requests currently being served."),
		metric.WithUnit("{request}"))
	if err := errors.Join(errs[:]...); err != nil {
		return nil, fmt.Errorf("creating http instruments: %w", err)
	}

	m.promRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "lexisum_http_requests_total",
		Help: "HTTP requests by method, endpoint and status.",
	}, []string{"method", "endpoint", "status"})
	m.promLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "lexisum_http_request_duration_seconds",
		Help:    "HTTP request latency in seconds.",
		Buckets: latencyBuckets,
	}, []string{"method", "endpoint"})

	for _, c := range []prometheus.Collector{
		m.promRequests,
		m.promLatency,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("registering prometheus collector: %w", err)
		}
	}
	return &m, nil
}

// middleware records after the handler returns, so error statuses are
// counted before echo renders them.
func (m *httpMetrics) middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()
			start := time.Now()
			m.inflight.Add(ctx, 1)
			defer m.inflight.Add(ctx, -1)

			err := next(c)

			method, endpoint := c.Request().Method, routeLabel(c.Path())
			status := responseStatus(c, err)
			elapsed := time.Since(start).Seconds()
			attrs := metric.WithAttributes(
				attribute.String("method", method),
				attribute.String("endpoint", endpoint),
				attribute.Int("status", status),
			)
			m.requests.Add(ctx, 1, attrs)
			m.latency.Record(ctx, elapsed, attrs)
			m.size.Record(ctx, c.Response().Size, attrs)
			m.promRequests.WithLabelValues(method, endpoint, strconv.Itoa(status)).Inc()
			m.promLatency.WithLabelValues(method, endpoint).Observe(elapsed)
			return err
		}
	}
}

// routeLabel keeps label cardinality bounded: unmatched requests have no
// route pattern and share one label.
func routeLabel(route string) string {
	if route == "" {
		return "unmatched"
	}
	return route
}
