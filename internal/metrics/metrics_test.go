package metrics

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounters(t *testing.T) {
	m := New()
	m.IncrementProductsCreated()
	m.ObserveVerification("authentic")
	m.ObserveVerification("authentic")
	m.ObserveVerification("counterfeit")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.ProductsCreated))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Verifications.WithLabelValues("authentic")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Verifications.WithLabelValues("counterfeit")))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.IncrementProductsCreated()
		m.IncrementProductsUpdated()
		m.ObserveVerification("authentic")
		m.ObserveLogin("success")
		m.IncrementRegistrations()
	})
}

func TestHandlerExposesCounters(t *testing.T) {
	m := New()
	m.ObserveLogin("failure")
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `authentiq_logins_total{outcome="failure"} 1`)
}
