package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// ProxyMetrics records how catalog requests to the backend turned out.
type ProxyMetrics struct {
	duration  *prometheus.HistogramVec
	failures  *prometheus.CounterVec
	fallbacks *prometheus.CounterVec
}

// NewProxyMetrics registers the backend proxy metrics on the provided registerer.
func NewProxyMetrics(reg prometheus.Registerer) *ProxyMetrics {
	if reg == nil {
		return &ProxyMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "storefront_backend_request_duration_seconds",
		Help:    "Duration of backend requests in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"resource"})
	failures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_backend_failures_total",
		Help: "Failed backend requests by resource and failure kind.",
	}, []string{"resource", "kind"})
	fallbacks := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_backend_fallbacks_total",
		Help: "Responses served from static fallback data.",
	}, []string{"resource"})
	reg.MustRegister(duration, failures, fallbacks)
	return &ProxyMetrics{
		duration:  duration,
		failures:  failures,
		fallbacks: fallbacks,
	}
}

// ObserveDuration records the backend round-trip for the named resource.
func (p *ProxyMetrics) ObserveDuration(resource string, duration time.Duration) {
	if p == nil || p.duration == nil {
		return
	}
	p.duration.WithLabelValues(normalizeLabel(resource)).Observe(duration.Seconds())
}

// IncFailure counts a failed backend call.
func (p *ProxyMetrics) IncFailure(resource, kind string) {
	if p == nil || p.failures == nil {
		return
	}
	p.failures.WithLabelValues(normalizeLabel(resource), normalizeLabel(kind)).Inc()
}

// IncFallback counts a response answered with fallback data.
func (p *ProxyMetrics) IncFallback(resource string) {
	if p == nil || p.fallbacks == nil {
		return
	}
	p.fallbacks.WithLabelValues(normalizeLabel(resource)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
