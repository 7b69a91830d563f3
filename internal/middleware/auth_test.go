// AngelaMos | 2026
// auth_test.go

package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Fr4nk017/La-ruta-el-Pastelazo-Backend/internal/authz"
	"github.com/Fr4nk017/La-ruta-el-Pastelazo-Backend/internal/core"
)

const (
	tenantA = "11111111-1111-1111-1111-111111111111"
	tenantB = "22222222-2222-2222-2222-222222222222"
)

type fakeVerifier struct {
	claims map[string]*AccessTokenClaims
}

func (f fakeVerifier) VerifyAccessToken(_ context.Context, token string) (*AccessTokenClaims, error) {
	if token == "expired" {
		return nil, core.ErrTokenExpired
	}
	c, ok := f.claims[token]
	if !ok {
		return nil, core.ErrTokenInvalid
	}
	return c, nil
}

type fakeLoader struct {
	principals map[string]*Principal
}

func (f fakeLoader) LoadPrincipal(_ context.Context, tenantID, userID string) (*Principal, error) {
	p, ok := f.principals[tenantID+"/"+userID]
	if !ok {
		return nil, core.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

type fakeBlacklist map[string]bool

func (f fakeBlacklist) IsBlacklisted(_ context.Context, jti string) (bool, error) {
	return f[jti], nil
}

func authChain(t *testing.T, a *Authenticators, final http.Handler) http.Handler {
	t.Helper()

	verifier := fakeVerifier{claims: map[string]*AccessTokenClaims{
		"customer":   {UserID: "u1", TenantID: tenantA, TokenVersion: 0, JTI: "j1"},
		"stale":      {UserID: "u1", TenantID: tenantA, TokenVersion: 0, JTI: "j2"},
		"revoked":    {UserID: "u1", TenantID: tenantA, TokenVersion: 0, JTI: "dead"},
		"inactive":   {UserID: "u2", TenantID: tenantA, JTI: "j3"},
		"ghost":      {UserID: "nobody", TenantID: tenantA, JTI: "j4"},
		"admin":      {UserID: "u3", TenantID: tenantA, JTI: "j5"},
		"other-shop": {UserID: "u9", TenantID: tenantB, JTI: "j6"},
	}}

	tenant := &TenantInfo{ID: tenantA, Slug: "dulce", Status: "active"}
	withTenant := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(WithTenant(r.Context(), tenant)))
		})
	}

	return ParseToken(verifier)(withTenant(a.Required(final)))
}

func newAuthenticators(stale bool) *Authenticators {
	version := 0
	if stale {
		version = 1
	}
	customer := authz.SystemRoles()[2].Permissions
	return NewAuthenticators(fakeLoader{principals: map[string]*Principal{
		tenantA + "/u1": {UserID: "u1", TenantID: tenantA, RoleSlug: "customer", IsActive: true, TokenVersion: version, Permissions: customer},
		tenantA + "/u2": {UserID: "u2", TenantID: tenantA, RoleSlug: "customer", IsActive: false, Permissions: customer},
		tenantA + "/u3": {UserID: "u3", TenantID: tenantA, RoleSlug: "admin", IsActive: true, Permissions: authz.All()},
		tenantB + "/u9": {UserID: "u9", TenantID: tenantB, RoleSlug: "admin", IsActive: true, Permissions: authz.All()},
	}}, fakeBlacklist{"dead": true}, nil)
}

func okHandler(w http.ResponseWriter, r *http.Request) {
	core.OK(w, map[string]string{"user": GetUserID(r.Context())})
}

func doAuth(h http.Handler, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestAuthenticatorOutcomes(t *testing.T) {
	h := authChain(t, newAuthenticators(false), http.HandlerFunc(okHandler))

	tests := []struct {
		token  string
		status int
		code   string
	}{
		{"", http.StatusUnauthorized, "UNAUTHORIZED"},
		{"garbage", http.StatusUnauthorized, "TOKEN_INVALID"},
		{"expired", http.StatusUnauthorized, "TOKEN_EXPIRED"},
		{"ghost", http.StatusUnauthorized, "TOKEN_INVALID"},
		{"inactive", http.StatusUnauthorized, "ACCOUNT_INACTIVE"},
		{"revoked", http.StatusUnauthorized, "TOKEN_REVOKED"},
		{"other-shop", http.StatusUnauthorized, "TOKEN_INVALID"},
	}

	for _, tt := range tests {
		t.Run("token="+tt.token, func(t *testing.T) {
			rec := doAuth(h, tt.token)
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.code, errorCode(t, rec))
		})
	}

	rec := doAuth(h, "customer")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"user":"u1"`)
}

func TestAuthenticatorStaleTokenVersion(t *testing.T) {
	h := authChain(t, newAuthenticators(true), http.HandlerFunc(okHandler))

	rec := doAuth(h, "stale")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "TOKEN_REVOKED", errorCode(t, rec))
}

func TestOptionalAuthenticatorFallsBackToGuest(t *testing.T) {
	a := newAuthenticators(false)
	tenant := &TenantInfo{ID: tenantA}
	h := ParseToken(fakeVerifier{})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		a.Optional(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.False(t, IsAuthenticated(r.Context()))
			w.WriteHeader(http.StatusNoContent)
		})).ServeHTTP(w, r.WithContext(WithTenant(r.Context(), tenant)))
	}))

	rec := doAuth(h, "garbage")
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestRequirePermissionDeniesCustomer(t *testing.T) {
	a := newAuthenticators(false)
	create := RequirePermission(nil, authz.Products, authz.Create)
	h := authChain(t, a, create(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusCreated)
	})))

	rec := doAuth(h, "customer")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "FORBIDDEN", errorCode(t, rec))

	rec = doAuth(h, "admin")
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestRequirePermissionWithoutPrincipal(t *testing.T) {
	h := RequirePermission(nil, authz.Orders, authz.View)(http.HandlerFunc(okHandler))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
