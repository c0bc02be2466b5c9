// Package metrics bundles the Prometheus collectors of the service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles Prometheus collectors for the service.
type Metrics struct {
	Registry          *prometheus.Registry
	FetchRequests     *prometheus.CounterVec
	FetchDuration     prometheus.Histogram
	FetchRetries      prometheus.Counter
	FetchErrors       *prometheus.CounterVec
	CatalogItems      *prometheus.GaugeVec
	CacheLookups      *prometheus.CounterVec
	LeadsTotal        *prometheus.CounterVec
	HTTPRequestsTotal *prometheus.CounterVec
	HTTPDuration      *prometheus.HistogramVec
}

// New constructs and registers all metrics on a dedicated registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	fetchRequests := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_fetch_requests_total",
			Help: "Total upstream requests issued by the feed fetcher.",
		},
		[]string{"phase"},
	)
	fetchDuration := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "catalog_fetch_duration_seconds",
			Help:    "Upstream request latency.",
			Buckets: prometheus.DefBuckets,
		},
	)
	fetchRetries := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "catalog_fetch_retries_total",
			Help: "Total number of upstream retry attempts.",
		},
	)
	fetchErrors := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_fetch_errors_total",
			Help: "Total number of upstream errors by type.",
		},
		[]string{"error_type"},
	)
	catalogItems := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "catalog_items",
			Help: "Number of items in the current catalog per bucket.",
		},
		[]string{"bucket"},
	)
	cacheLookups := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_cache_lookups_total",
			Help: "Catalog cache lookups by result.",
		},
		[]string{"result"},
	)
	leads := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "leads_total",
			Help: "Lead submissions by outcome.",
		},
		[]string{"outcome"},
	)
	httpRequests := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests served by route and status.",
		},
		[]string{"method", "route", "status"},
	)
	httpDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP handler latency by route.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route"},
	)

	registry.MustRegister(fetchRequests, fetchDuration, fetchRetries, fetchErrors, catalogItems, cacheLookups, leads, httpRequests, httpDuration)

	return &Metrics{
		Registry:          registry,
		FetchRequests:     fetchRequests,
		FetchDuration:     fetchDuration,
		FetchRetries:      fetchRetries,
		FetchErrors:       fetchErrors,
		CatalogItems:      catalogItems,
		CacheLookups:      cacheLookups,
		LeadsTotal:        leads,
		HTTPRequestsTotal: httpRequests,
		HTTPDuration:      httpDuration,
	}
}

// IncRequest increments the fetch requests counter.
func (m *Metrics) IncRequest(phase string) {
	if m == nil {
		return
	}
	m.FetchRequests.WithLabelValues(phase).Inc()
}

// ObserveDuration records an upstream request duration.
func (m *Metrics) ObserveDuration(d time.Duration) {
	if m == nil {
		return
	}
	m.FetchDuration.Observe(d.Seconds())
}

// IncRetries increments the retries counter.
func (m *Metrics) IncRetries() {
	if m == nil {
		return
	}
	m.FetchRetries.Inc()
}

// IncError increments the errors counter for a type label.
func (m *Metrics) IncError(errorType string) {
	if m == nil {
		return
	}
	m.FetchErrors.WithLabelValues(errorType).Inc()
}

// SetItems records the size of a bucket.
func (m *Metrics) SetItems(bucket string, n int) {
	if m == nil {
		return
	}
	m.CatalogItems.WithLabelValues(bucket).Set(float64(n))
}

// IncCache counts a cache lookup ("hit", "miss" or "stale").
func (m *Metrics) IncCache(result string) {
	if m == nil {
		return
	}
	m.CacheLookups.WithLabelValues(result).Inc()
}

// IncLead counts a lead outcome.
func (m *Metrics) IncLead(outcome string) {
	if m == nil {
		return
	}
	m.LeadsTotal.WithLabelValues(outcome).Inc()
}

// ObserveHTTP records one served request.
func (m *Metrics) ObserveHTTP(method, route string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(method, route, statusClass(status)).Inc()
	m.HTTPDuration.WithLabelValues(route).Observe(d.Seconds())
}

func statusClass(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
