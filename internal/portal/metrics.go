package portal

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the portal collectors on a private registry so tests and
// multiple servers in one process never collide on registration.
type Metrics struct {
	registry *prometheus.Registry

	requests         *prometheus.CounterVec
	requestDuration  *prometheus.HistogramVec
	upstream         *prometheus.CounterVec
	upstreamDuration *prometheus.HistogramVec
	liveSessions     prometheus.Gauge
	liveFilterEvents prometheus.Counter
}

// NewMetrics registers the portal collectors plus the Go runtime collectors.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hubben",
			Subsystem: "portal",
			Name:      "requests_total",
			Help:      "HTTP requests served, by route pattern and status code.",
		}, []string{"route", "code"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "hubben",
			Subsystem: "portal",
			Name:      "request_duration_seconds",
			Help:      "Time spent serving HTTP requests.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
		upstream: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hubben",
			Subsystem: "backend",
			Name:      "requests_total",
			Help:      "Backend API requests, by endpoint and status code (0 for transport errors).",
		}, []string{"endpoint", "code"}),
		upstreamDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "hubben",
			Subsystem: "backend",
			Name:      "request_duration_seconds",
			Help:      "Backend API latency including retries.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"endpoint"}),
		liveSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "hubben",
			Subsystem: "portal",
			Name:      "live_filter_sessions",
			Help:      "Open live filter websocket sessions.",
		}),
		liveFilterEvents: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "hubben",
			Subsystem: "portal",
			Name:      "live_filter_events_total",
			Help:      "Filter updates answered over the live filter websocket.",
		}),
	}
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requests,
		m.requestDuration,
		m.upstream,
		m.upstreamDuration,
		m.liveSessions,
		m.liveFilterEvents,
	)
	return m
}

// ObserveUpstream records one backend call. Its signature matches
// api.Observer.
func (m *Metrics) ObserveUpstream(endpoint string, status int, elapsed time.Duration) {
	m.upstream.WithLabelValues(endpoint, strconv.Itoa(status)).Inc()
	m.upstreamDuration.WithLabelValues(endpoint).Observe(elapsed.Seconds())
}

func (m *Metrics) observeRequest(route string, status int, elapsed time.Duration) {
	m.requests.WithLabelValues(route, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(route).Observe(elapsed.Seconds())
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
