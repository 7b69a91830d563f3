// AngelaMos | 2026
// headers_test.go

package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Fr4nk017/La-ruta-el-Pastelazo-Backend/internal/config"
)

func noContent(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

func TestPlatformKey(t *testing.T) {
	h := RequirePlatformKey("s3cret")(http.HandlerFunc(noContent))

	tests := []struct {
		key    string
		status int
	}{
		{"", http.StatusUnauthorized},
		{"wrong", http.StatusForbidden},
		{"s3cret", http.StatusNoContent},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/v1/tenants", nil)
		if tt.key != "" {
			req.Header.Set(PlatformKeyHeader, tt.key)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, tt.status, rec.Code, "key=%q", tt.key)
	}
}

func TestPlatformKeyDisabledWhenUnset(t *testing.T) {
	h := RequirePlatformKey("")(http.HandlerFunc(noContent))
	req := httptest.NewRequest(http.MethodGet, "/v1/tenants", nil)
	req.Header.Set(PlatformKeyHeader, "")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestCORSPreflight(t *testing.T) {
	h := CORS(config.CORSConfig{
		AllowedOrigins:   []string{"https://dulce.pastelazo.mx"},
		AllowedMethods:   []string{"GET", "POST"},
		AllowedHeaders:   []string{"Authorization", "X-Tenant-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	})(http.HandlerFunc(noContent))

	req := httptest.NewRequest(http.MethodOptions, "/v1/products", nil)
	req.Header.Set("Origin", "https://dulce.pastelazo.mx")
	req.Header.Set("Access-Control-Request-Method", "POST")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "https://dulce.pastelazo.mx", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Headers"), "X-Tenant-ID")

	req = httptest.NewRequest(http.MethodGet, "/v1/products", nil)
	req.Header.Set("Origin", "https://evil.example")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRequestIDPropagates(t *testing.T) {
	var seen string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "abc-123", seen)
	assert.Equal(t, "abc-123", rec.Header().Get(RequestIDHeader))
}

func TestRecovererReturnsEnvelope(t *testing.T) {
	h := Recoverer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("oven on fire")
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "INTERNAL_ERROR", errorCode(t, rec))
}

func TestRateLimiterEnvelope(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	rl := NewRateLimiter(rdb, RateLimitConfig{
		Limit:    PerMinute(1, 1),
		FailOpen: true,
	})
	h := rl.Handler(http.HandlerFunc(noContent))

	first := httptest.NewRecorder()
	h.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusNoContent, first.Code)

	second := httptest.NewRecorder()
	h.ServeHTTP(second, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.Equal(t, "RATE_LIMITED", errorCode(t, second))
	assert.NotEmpty(t, second.Header().Get("Retry-After"))
}

func TestPlanRateLimiterKeysByTenant(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	h := PlanRateLimiter(rdb, map[string]PlanLimit{
		"free": {RequestsPerMinute: 1, BurstSize: 1},
	})(http.HandlerFunc(noContent))

	call := func(tenantID string) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		ctx := WithTenant(context.Background(), &TenantInfo{ID: tenantID, Plan: "free"})
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req.WithContext(ctx))
		return rec.Code
	}

	assert.Equal(t, http.StatusNoContent, call(tenantA))
	assert.Equal(t, http.StatusTooManyRequests, call(tenantA))
	assert.Equal(t, http.StatusNoContent, call(tenantB))
}
