package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Counters(t *testing.T) {
	m := New()
	m.GenerationSucceeded("design", 3*time.Second)
	m.GenerationSucceeded("decor", time.Second)
	m.GenerationSucceeded("decor", time.Second)
	m.GenerationFailed("upstream")
	m.CreditDenied()
	m.ResultStored()
	m.ResultStoreFailed()

	assert.Equal(t, 1.0, testutil.ToFloat64(m.generations.WithLabelValues("design")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.generations.WithLabelValues("decor")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.generationFailures.WithLabelValues("upstream")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.creditDenials))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.resultsStored))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.storeFailures))
}

func TestMetrics_NilIsSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.GenerationSucceeded("design", time.Second)
		m.GenerationFailed("x")
		m.CreditDenied()
		m.ResultStored()
		m.ResultStoreFailed()
	})
}

func TestMetrics_Handler(t *testing.T) {
	m := New()
	m.CreditDenied()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "genius_credit_denials_total 1")
}
