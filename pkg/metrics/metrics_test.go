package metrics

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.CacheLookup("accounts", true)
		m.FetchStep("account", "found", time.Millisecond)
	})
}

func TestCountersAndHandler(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewWithRegistry(reg, reg)

	m.CacheLookup("accounts", true)
	m.CacheLookup("accounts", false)
	m.CacheLookup("accounts", false)
	m.FetchStep("vote_id", "empty", 2*time.Millisecond)

	assert.Equal(t, float64(1), testutil.ToFloat64(m.cacheLookups.WithLabelValues("accounts", "hit")))
	assert.Equal(t, float64(2), testutil.ToFloat64(m.cacheLookups.WithLabelValues("accounts", "miss")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.fetchSteps.WithLabelValues("vote_id", "empty")))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	require.Equal(t, 200, rec.Code)
	assert.Contains(t, rec.Body.String(), "powerx_cache_lookups_total")
}
