// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics groups the collectors used by the service.
// Collectors are registered on the registry passed to New, so tests can use a fresh one.
type Metrics struct {
	Calculations    *prometheus.CounterVec
	CatalogProducts prometheus.Gauge
	CatalogImports  *prometheus.CounterVec
	HTTPRequests    *prometheus.CounterVec
	HTTPDuration    *prometheus.HistogramVec
}

// New creates the collectors and registers them on reg
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Calculations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dilution",
			Name:      "calculations_total",
			Help:      "Dilution calculations by output unit; unit is \"none\" when no result was produced.",
		}, []string{"unit"}),
		CatalogProducts: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "dilution",
			Name:      "catalog_products",
			Help:      "Number of products in the catalog.",
		}),
		CatalogImports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dilution",
			Name:      "catalog_import_records_total",
			Help:      "Catalog records processed by imports, by outcome.",
		}, []string{"outcome"}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dilution",
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status code.",
		}, []string{"method", "route", "status"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "dilution",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method and route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	reg.MustRegister(
		m.Calculations,
		m.CatalogProducts,
		m.CatalogImports,
		m.HTTPRequests,
		m.HTTPDuration,
	)

	return m
}

// Nop returns collectors registered nowhere, for callers that do not export metrics
func Nop() *Metrics {
	return New(prometheus.NewRegistry())
}
