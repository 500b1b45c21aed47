// Package metrics holds the Prometheus collectors shared by the HTTP layer
// and the catalog service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	httpRequests *prometheus.CounterVec
	httpLatency  *prometheus.HistogramVec
	catalogCache *prometheus.CounterVec
	refreshRuns  *prometheus.CounterVec
}

// New registers all collectors on reg. Pass prometheus.DefaultRegisterer in
// production and a fresh registry in tests.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		httpRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "measurebook_http_requests_total",
				Help: "Total number of HTTP requests by route, method and status",
			},
			[]string{"method", "route", "status"},
		),
		httpLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "measurebook_http_request_duration_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		catalogCache: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "measurebook_catalog_cache_total",
				Help: "Catalog cache lookups by result (hit, miss, error)",
			},
			[]string{"result"},
		),
		refreshRuns: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "measurebook_catalog_refresh_runs_total",
				Help: "Catalog cache refresh job runs by outcome",
			},
			[]string{"outcome"},
		),
	}
}

func (m *Metrics) ObserveRequest(method, route, status string, seconds float64) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, route, status).Inc()
	m.httpLatency.WithLabelValues(method, route).Observe(seconds)
}

func (m *Metrics) CacheHit() {
	if m != nil {
		m.catalogCache.WithLabelValues("hit").Inc()
	}
}

func (m *Metrics) CacheMiss() {
	if m != nil {
		m.catalogCache.WithLabelValues("miss").Inc()
	}
}

func (m *Metrics) CacheError() {
	if m != nil {
		m.catalogCache.WithLabelValues("error").Inc()
	}
}

func (m *Metrics) RefreshRun(ok bool) {
	if m == nil {
		return
	}
	outcome := "success"
	if !ok {
		outcome = "failure"
	}
	m.refreshRuns.WithLabelValues(outcome).Inc()
}
