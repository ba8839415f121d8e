// Package metrics exposes Prometheus collectors for the HTTP API.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry         *prometheus.Registry
	requestsTotal    *prometheus.CounterVec
	requestDuration  *prometheus.HistogramVec
	workflowChanges  *prometheus.CounterVec
	notificationsOut prometheus.Counter
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "agencyos_http_requests_total",
			Help: "HTTP requests by method, route, and status code.",
		}, []string{"method", "route", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "agencyos_http_request_duration_seconds",
			Help:    "HTTP request latency by method and route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		workflowChanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "agencyos_workflow_transitions_total",
			Help: "Applied lifecycle transitions by entity and target state.",
		}, []string{"entity", "to"}),
		notificationsOut: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "agencyos_notifications_recorded_total",
			Help: "Notifications recorded for delivery.",
		}),
	}
	m.registry.MustRegister(m.requestsTotal, m.requestDuration, m.workflowChanges, m.notificationsOut)
	return m
}

func (m *Metrics) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	m.requestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

func (m *Metrics) TransitionApplied(entity, to string) {
	m.workflowChanges.WithLabelValues(entity, to).Inc()
}

func (m *Metrics) NotificationRecorded() {
	m.notificationsOut.Inc()
}

// Handler serves the scrape endpoint for this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
