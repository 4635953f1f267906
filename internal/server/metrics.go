package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/agbru/gcdtutor/internal/tutor"
)

// Metrics holds the Prometheus collectors of the web mode on a dedicated
// registry. It also implements tutor.Recorder so collaborator calls are
// observed alongside HTTP traffic.
type Metrics struct {
	registry             *prometheus.Registry
	handler              http.Handler
	activeRequests       prometheus.Gauge
	requestsTotal        *prometheus.CounterVec
	requestDuration      *prometheus.HistogramVec
	collaboratorDuration *prometheus.HistogramVec
	fallbacksTotal       *prometheus.CounterVec
	sessions             prometheus.Gauge
}

var _ tutor.Recorder = (*Metrics)(nil)

// NewMetrics creates and registers every collector.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		activeRequests: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "gcdtutor_active_requests",
			Help: "Number of HTTP requests being served.",
		}),
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gcdtutor_requests_total",
			Help: "HTTP requests by route and status code.",
		}, []string{"route", "code"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "gcdtutor_request_duration_seconds",
			Help:    "HTTP request latency by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
		collaboratorDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "gcdtutor_collaborator_duration_seconds",
			Help:    "Latency of generative-language calls by collaborator and outcome.",
			Buckets: []float64{0.25, 0.5, 1, 2, 4, 8, 16, 32},
		}, []string{"collaborator", "outcome"}),
		fallbacksTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gcdtutor_collaborator_fallbacks_total",
			Help: "Canned replies served instead of a collaborator answer.",
		}, []string{"collaborator"}),
		sessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "gcdtutor_sessions",
			Help: "Number of live browser sessions.",
		}),
	}
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.activeRequests,
		m.requestsTotal,
		m.requestDuration,
		m.collaboratorDuration,
		m.fallbacksTotal,
		m.sessions,
	)
	m.handler = promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
	return m
}

// IncrementActiveRequests marks the start of a request.
func (m *Metrics) IncrementActiveRequests() { m.activeRequests.Inc() }

// DecrementActiveRequests marks the end of a request.
func (m *Metrics) DecrementActiveRequests() { m.activeRequests.Dec() }

// ObserveRequest records a finished request.
func (m *Metrics) ObserveRequest(route string, code int, d time.Duration) {
	m.requestsTotal.WithLabelValues(route, strconv.Itoa(code)).Inc()
	m.requestDuration.WithLabelValues(route).Observe(d.Seconds())
}

// SetSessions publishes the number of live sessions.
func (m *Metrics) SetSessions(n int) { m.sessions.Set(float64(n)) }

// ObserveCollaborator implements tutor.Recorder.
func (m *Metrics) ObserveCollaborator(collaborator, outcome string, d time.Duration) {
	m.collaboratorDuration.WithLabelValues(collaborator, outcome).Observe(d.Seconds())
}

// CountFallback implements tutor.Recorder.
func (m *Metrics) CountFallback(collaborator string) {
	m.fallbacksTotal.WithLabelValues(collaborator).Inc()
}

// WritePrometheus writes the registry in the Prometheus text format.
func (m *Metrics) WritePrometheus(w http.ResponseWriter, r *http.Request) {
	m.handler.ServeHTTP(w, r)
}

// statusRecorder captures the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Unwrap() http.ResponseWriter { return r.ResponseWriter }

// metricsMiddleware tracks active requests, counts and latency per route.
// The route label is the mux pattern, so unmatched paths share one series.
func (s *Server) metricsMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.metrics.IncrementActiveRequests()
		defer s.metrics.DecrementActiveRequests()

		started := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next(rec, r)

		route := r.Pattern
		if route == "" {
			route = "other"
		}
		s.metrics.ObserveRequest(route, rec.status, time.Since(started))
	}
}

// handleMetrics serves GET /metrics.
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "use GET")
		return
	}
	s.metrics.WritePrometheus(w, r)
}
