package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "powerx"

// Metrics groups the collectors exported by the query service.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	gatherer      prometheus.Gatherer
	cacheLookups  *prometheus.CounterVec
	fetchSteps    *prometheus.CounterVec
	fetchDuration *prometheus.HistogramVec
}

// New registers the collectors on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return NewWithRegistry(reg, reg)
}

// NewWithRegistry registers the collectors on reg and serves them from gatherer.
func NewWithRegistry(reg prometheus.Registerer, gatherer prometheus.Gatherer) *Metrics {
	m := &Metrics{
		gatherer: gatherer,
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_lookups_total",
			Help:      "Snapshot cache lookups by cache and result.",
		}, []string{"cache", "result"}),
		fetchSteps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetch_steps_total",
			Help:      "Snapshot window fetches by subject field and outcome.",
		}, []string{"field", "outcome"}),
		fetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "fetch_step_duration_seconds",
			Help:      "Latency of a single snapshot window fetch.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 12),
		}, []string{"field"}),
	}
	reg.MustRegister(m.cacheLookups, m.fetchSteps, m.fetchDuration)
	return m
}

// CacheLookup counts a hit or a miss on the named cache.
func (m *Metrics) CacheLookup(cache string, hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookups.WithLabelValues(cache, result).Inc()
}

// FetchStep records one window fetch. outcome is "found", "empty" or "error".
func (m *Metrics) FetchStep(field, outcome string, took time.Duration) {
	if m == nil {
		return
	}
	m.fetchSteps.WithLabelValues(field, outcome).Inc()
	m.fetchDuration.WithLabelValues(field).Observe(took.Seconds())
}

// Handler serves the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil || m.gatherer == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
