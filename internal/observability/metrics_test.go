package observability

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsRecordsCounters(t *testing.T) {
	m := NewMetrics()

	m.RecordRequest("/user/login", http.MethodPost, 200, 15*time.Millisecond)
	m.RecordRequest("/user/login", http.MethodPost, 200, 5*time.Millisecond)
	m.RecordError("/order", http.MethodPost, "EMPTY_CART")
	m.RecordAuth("login", "issued")
	m.RecordAuth("reauthenticate", "SESSION_EXPIRED")
	m.RecordOrderPlaced()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.requests.WithLabelValues(http.MethodPost, "/user/login", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.errors.WithLabelValues(http.MethodPost, "/order", "EMPTY_CART")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.authOutcomes.WithLabelValues("reauthenticate", "SESSION_EXPIRED")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ordersPlaced))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordRequest("/", http.MethodGet, 200, time.Millisecond)
		m.RecordError("/", http.MethodGet, "X")
		m.RecordAuth("login", "issued")
		m.RecordOrderPlaced()
	})
}

func TestMetricsHandlerExposition(t *testing.T) {
	m := NewMetrics()
	m.RecordOrderPlaced()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "storefront_orders_placed_total 1"))
}
