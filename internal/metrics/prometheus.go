// Package metrics provides Prometheus metrics collection for the flow catalog.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "flowcatalog"

// PrometheusMetrics holds the catalog and HTTP metrics.
type PrometheusMetrics struct {
	CatalogRequests *prometheus.CounterVec
	CatalogDuration *prometheus.HistogramVec
	HTTPRequests    *prometheus.CounterVec
}

// NewPrometheusMetrics creates the metrics and registers them with reg.
func NewPrometheusMetrics(reg prometheus.Registerer) (*PrometheusMetrics, error) {
	m := &PrometheusMetrics{
		CatalogRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "catalog_requests_total",
			Help:      "Catalog listing requests by operation and outcome.",
		}, []string{"operation", "outcome"}),
		CatalogDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "catalog_request_duration_seconds",
			Help:      "Duration of catalog listing requests in seconds.",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		}, []string{"operation"}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status code.",
		}, []string{"method", "route", "status"}),
	}

	for _, c := range []prometheus.Collector{m.CatalogRequests, m.CatalogDuration, m.HTTPRequests} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// ObserveCatalogRequest records one catalog listing call.
func (m *PrometheusMetrics) ObserveCatalogRequest(operation, outcome string, elapsed time.Duration) {
	m.CatalogRequests.WithLabelValues(operation, outcome).Inc()
	m.CatalogDuration.WithLabelValues(operation).Observe(elapsed.Seconds())
}

// RecordHTTPRequest counts a served HTTP request.
func (m *PrometheusMetrics) RecordHTTPRequest(method, route string, status int) {
	if route == "" {
		route = "unmatched"
	}
	m.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
}
