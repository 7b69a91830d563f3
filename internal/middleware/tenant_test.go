// AngelaMos | 2026
// tenant_test.go

package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Fr4nk017/La-ruta-el-Pastelazo-Backend/internal/core"
)

type fakeResolver struct {
	tenants map[string]*TenantInfo
	calls   []string
}

func (f *fakeResolver) Resolve(_ context.Context, identifier string) (*TenantInfo, error) {
	f.calls = append(f.calls, identifier)
	t, ok := f.tenants[identifier]
	if !ok {
		return nil, core.ErrTenantNotFound
	}
	if t.Status != "active" && t.Status != "trial" {
		return nil, core.ErrTenantInactive
	}
	return t, nil
}

func newFakeResolver() *fakeResolver {
	dulce := &TenantInfo{ID: "11111111-1111-1111-1111-111111111111", Slug: "dulce", Status: "active"}
	salado := &TenantInfo{ID: "22222222-2222-2222-2222-222222222222", Slug: "salado", Status: "active"}
	closed := &TenantInfo{ID: "33333333-3333-3333-3333-333333333333", Slug: "cerrado", Status: "suspended"}
	return &fakeResolver{tenants: map[string]*TenantInfo{
		dulce.ID: dulce, dulce.Slug: dulce,
		salado.ID: salado, salado.Slug: salado,
		closed.Slug: closed,
	}}
}

func tenantEcho(w http.ResponseWriter, r *http.Request) {
	core.OK(w, map[string]string{"tenant": GetTenant(r.Context()).Slug})
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body core.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Code
}

func TestSubdomainStrategy(t *testing.T) {
	s := NewSubdomainStrategy([]string{"www", "api", "admin", "app", "localhost"})

	tests := []struct {
		host string
		want string
		ok   bool
	}{
		{"dulce.pastelazo.mx", "dulce", true},
		{"dulce.pastelazo.mx:8080", "dulce", true},
		{"www.pastelazo.mx", "", false},
		{"api.pastelazo.mx", "", false},
		{"pastelazo.mx", "", false},
		{"localhost:8080", "", false},
		{"127.0.0.1:8080", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.host, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.Host = tt.host
			got, ok := s.Identify(r)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStrategiesOrderAndModes(t *testing.T) {
	auto, err := Strategies("auto", "", nil)
	require.NoError(t, err)
	names := []string{}
	for _, s := range auto {
		names = append(names, s.Name())
	}
	assert.Equal(t, []string{"token", "header", "path", "subdomain"}, names)

	only, err := Strategies("header", "X-Shop", nil)
	require.NoError(t, err)
	require.Len(t, only, 1)
	assert.Equal(t, "header", only[0].Name())

	_, err = Strategies("cookie", "", nil)
	assert.Error(t, err)
}

func TestRequireTenantHeader(t *testing.T) {
	strategies, err := Strategies("auto", "X-Tenant-ID", nil)
	require.NoError(t, err)
	res := NewTenantResolution(strategies, newFakeResolver(), nil)
	h := res.Require(http.HandlerFunc(tenantEcho))

	req := httptest.NewRequest(http.MethodGet, "/products", nil)
	req.Header.Set("X-Tenant-ID", "dulce")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"tenant":"dulce"`)
}

func TestRequireTenantErrors(t *testing.T) {
	strategies, err := Strategies("header", "", nil)
	require.NoError(t, err)
	res := NewTenantResolution(strategies, newFakeResolver(), nil)
	h := res.Require(http.HandlerFunc(tenantEcho))

	tests := []struct {
		name   string
		header string
		status int
		code   string
	}{
		{"missing", "", http.StatusBadRequest, "TENANT_REQUIRED"},
		{"unknown", "nadie", http.StatusNotFound, "TENANT_NOT_FOUND"},
		{"inactive", "cerrado", http.StatusForbidden, "TENANT_INACTIVE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/products", nil)
			if tt.header != "" {
				req.Header.Set("X-Tenant-ID", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.code, errorCode(t, rec))
		})
	}
}

func TestTokenTenantWinsOverHeader(t *testing.T) {
	resolver := newFakeResolver()
	strategies, err := Strategies("auto", "", nil)
	require.NoError(t, err)
	res := NewTenantResolution(strategies, resolver, nil)
	h := res.Require(http.HandlerFunc(tenantEcho))

	req := httptest.NewRequest(http.MethodGet, "/products", nil)
	req.Header.Set("X-Tenant-ID", "salado")
	claims := &AccessTokenClaims{UserID: "u1", TenantID: "11111111-1111-1111-1111-111111111111"}
	req = req.WithContext(context.WithValue(req.Context(), ClaimsKey, claims))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"tenant":"dulce"`)
}

func TestPathStrategyUnderChi(t *testing.T) {
	strategies, err := Strategies("path", "", nil)
	require.NoError(t, err)
	res := NewTenantResolution(strategies, newFakeResolver(), nil)

	r := chi.NewRouter()
	r.Route("/v1/t/{tenantSlug}", func(r chi.Router) {
		r.Use(res.Require)
		r.Get("/products", tenantEcho)
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/t/salado/products", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"tenant":"salado"`)
}
