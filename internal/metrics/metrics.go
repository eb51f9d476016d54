// Package metrics holds the Prometheus collectors for the server: inbound
// requests, upstream API calls and analytics slice loads.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics is one registry with its collectors. Each instance owns its
// registry so several servers can run in one process.
type Metrics struct {
	registry *prometheus.Registry

	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	inFlight        prometheus.Gauge
	upstream        *prometheus.CounterVec
	upstreamLatency *prometheus.HistogramVec
	slices          *prometheus.CounterVec
}

// New creates and registers every collector.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "feedpulse_http_requests_total",
				Help: "Total number of HTTP requests processed",
			},
			[]string{"method", "route", "status"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "feedpulse_http_request_duration_seconds",
				Help:    "HTTP request latencies in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		inFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "feedpulse_http_inflight_requests",
				Help: "Number of HTTP requests currently being served",
			},
		),
		upstream: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "feedpulse_upstream_requests_total",
				Help: "Calls made to the feedback analytics API",
			},
			[]string{"method", "route", "status"},
		),
		upstreamLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "feedpulse_upstream_request_duration_seconds",
				Help:    "Latency of calls to the feedback analytics API",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route"},
		),
		slices: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "feedpulse_analytics_slice_loads_total",
				Help: "Analytics slice loads by outcome",
			},
			[]string{"slice", "outcome"},
		),
	}
	m.registry.MustRegister(
		m.requests,
		m.requestDuration,
		m.inFlight,
		m.upstream,
		m.upstreamLatency,
		m.slices,
		prometheus.NewGoCollector(),
	)
	return m
}

// Registry exposes the registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Middleware records every request. route must be low cardinality.
func (m *Metrics) Middleware(route func(*http.Request) string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			m.inFlight.Inc()
			defer m.inFlight.Dec()

			sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(sw, r)

			label := route(r)
			m.requests.WithLabelValues(r.Method, label, strconv.Itoa(sw.status)).Inc()
			m.requestDuration.WithLabelValues(r.Method, label).Observe(time.Since(start).Seconds())
		})
	}
}

// ObserveUpstream matches client.ObserveFunc. Status 0 is a transport error.
func (m *Metrics) ObserveUpstream(method, route string, status int, elapsed time.Duration) {
	m.upstream.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.upstreamLatency.WithLabelValues(route).Observe(elapsed.Seconds())
}

// ObserveSlice matches analytics.SliceObserver.
func (m *Metrics) ObserveSlice(slice string, elapsed time.Duration, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.slices.WithLabelValues(slice, outcome).Inc()
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}
