// AngelaMos | 2026
// metrics_test.go

package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func counterValue(t *testing.T, reg *prometheus.Registry, name string, labels map[string]string) float64 {
	t.Helper()

	families, err := reg.Gather()
	require.NoError(t, err)

	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
	next:
		for _, m := range mf.GetMetric() {
			for _, lp := range m.GetLabel() {
				if want, ok := labels[lp.GetName()]; ok && want != lp.GetValue() {
					continue next
				}
			}
			return m.GetCounter().GetValue()
		}
	}
	return 0
}

func TestCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg, "test")

	m.AuthAttempt("login", false)
	m.AuthAttempt("login", false)
	m.TenantFailure("not_found")
	m.PermissionDenied("products", "create")
	m.OrderCreated("MXN")

	assert.Equal(t, 2.0, counterValue(t, reg, "test_auth_attempts_total",
		map[string]string{"kind": "login", "outcome": "failure"}))
	assert.Equal(t, 1.0, counterValue(t, reg, "test_tenant_resolution_failures_total",
		map[string]string{"reason": "not_found"}))
	assert.Equal(t, 1.0, counterValue(t, reg, "test_permission_denied_total",
		map[string]string{"resource": "products", "action": "create"}))
	assert.Equal(t, 1.0, counterValue(t, reg, "test_orders_created_total",
		map[string]string{"currency": "MXN"}))
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.AuthAttempt("login", true)
	m.OrderCreated("MXN")

	h := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)
}

func TestMiddlewareUsesRoutePattern(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg, "test")

	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/products/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/products/abc", nil))

	assert.Equal(t, 1.0, counterValue(t, reg, "test_http_requests_total",
		map[string]string{"route": "/products/{id}", "status": "404"}))

	rec = httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Contains(t, rec.Body.String(), "test_http_requests_total")
}
