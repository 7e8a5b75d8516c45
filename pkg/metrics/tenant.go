package metrics

import "github.com/prometheus/client_golang/prometheus"

// TenantMetrics tracks store resolution by outcome.
type TenantMetrics struct {
	resolutions *prometheus.CounterVec
}

// Resolution outcomes.
const (
	TenantQueryParam = "query_param"
	TenantUser       = "user"
	TenantCacheHit   = "cache_hit"
	TenantLookup     = "lookup"
	TenantNotFound   = "not_found"
	TenantDefault    = "default"
)

// NewTenantMetrics registers the tenant resolution counter.
func NewTenantMetrics(reg prometheus.Registerer) *TenantMetrics {
	if reg == nil {
		return &TenantMetrics{}
	}
	resolutions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_tenant_resolutions_total",
		Help: "Store id resolutions by source.",
	}, []string{"source"})
	reg.MustRegister(resolutions)
	return &TenantMetrics{resolutions: resolutions}
}

// Inc counts one resolution with the given outcome.
func (t *TenantMetrics) Inc(source string) {
	if t == nil || t.resolutions == nil {
		return
	}
	t.resolutions.WithLabelValues(normalizeLabel(source)).Inc()
}
