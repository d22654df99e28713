// Package metrics exposes Prometheus instruments for requests, queries,
// record writes, moderation actions and outbox deliveries.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Result label values.
const (
	ResultOK      = "ok"
	ResultInvalid = "invalid"
	ResultClosed  = "closed"
	ResultError   = "error"
)

// Metrics holds every instrument on a private registry so tests can build
// as many as they like without duplicate-registration panics.
type Metrics struct {
	registry *prometheus.Registry

	httpRequests  *prometheus.CounterVec
	httpDuration  *prometheus.HistogramVec
	queryDuration *prometheus.HistogramVec
	writes        *prometheus.CounterVec
	moderation    *prometheus.CounterVec
	outbox        *prometheus.CounterVec
}

// New builds and registers all instruments.
// POST: Go runtime and process collectors are registered too
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "hackathon_http_requests_total",
			Help: "HTTP requests by route and status.",
		}, []string{"route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "hackathon_http_request_duration_seconds",
			Help:    "HTTP request durations by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
		queryDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "hackathon_db_query_duration_seconds",
			Help:    "Database call durations by operation.",
			Buckets: []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5, 1},
		}, []string{"op"}),
		writes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "hackathon_record_writes_total",
			Help: "Record inserts by entity and result.",
		}, []string{"entity", "result"}),
		moderation: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "hackathon_moderation_actions_total",
			Help: "Moderation actions by board, action and result.",
		}, []string{"board", "action", "result"}),
		outbox: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "hackathon_outbox_deliveries_total",
			Help: "Outbox delivery attempts by action type and result.",
		}, []string{"action", "result"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequests,
		m.httpDuration,
		m.queryDuration,
		m.writes,
		m.moderation,
		m.outbox,
	)
	return m
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveRequest records one HTTP request. Safe on a nil receiver.
func (m *Metrics) ObserveRequest(route string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(route).Observe(d.Seconds())
}

// ObserveQuery records one database call. Safe on a nil receiver.
func (m *Metrics) ObserveQuery(op string, d time.Duration) {
	if m == nil {
		return
	}
	m.queryDuration.WithLabelValues(op).Observe(d.Seconds())
}

// CountWrite records a submission-writer outcome. Safe on a nil receiver.
func (m *Metrics) CountWrite(entity, result string) {
	if m == nil {
		return
	}
	m.writes.WithLabelValues(entity, result).Inc()
}

// CountModeration records a moderation action outcome. Safe on a nil receiver.
func (m *Metrics) CountModeration(board, action, result string) {
	if m == nil {
		return
	}
	m.moderation.WithLabelValues(board, action, result).Inc()
}

// CountOutbox records an outbox delivery attempt. Safe on a nil receiver.
func (m *Metrics) CountOutbox(action, result string) {
	if m == nil {
		return
	}
	m.outbox.WithLabelValues(action, result).Inc()
}
