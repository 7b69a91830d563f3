// AngelaMos | 2026
// context.go

package middleware

import (
	"context"
	"time"

	"github.com/Fr4nk017/La-ruta-el-Pastelazo-Backend/internal/authz"
)

type contextKey string

const (
	RequestIDKey contextKey = "request_id"
	ClaimsKey    contextKey = "jwt_claims"
	TokenErrKey  contextKey = "jwt_error"
	TenantKey    contextKey = "tenant"
	PrincipalKey contextKey = "principal"
)

// AccessTokenClaims is what a verified access token asserts. It carries no
// permissions; those are read from the live role on every request.
type AccessTokenClaims struct {
	UserID       string
	TenantID     string
	RoleID       string
	Email        string
	TokenVersion int
	JTI          string
	ExpiresAt    time.Time
}

// TenantInfo is the resolved tenant attached to a request.
type TenantInfo struct {
	ID       string
	Slug     string
	Name     string
	Status   string
	Plan     string
	Currency string
}

// Principal is an authenticated user within the resolved tenant.
type Principal struct {
	UserID       string
	TenantID     string
	RoleID       string
	RoleSlug     string
	Email        string
	TokenVersion int
	IsActive     bool
	Permissions  authz.Set
}

func (p *Principal) Can(r authz.Resource, a authz.Action) bool {
	if p == nil {
		return false
	}
	return p.Permissions.Has(r, a)
}

func GetRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(RequestIDKey).(string); ok {
		return id
	}
	return ""
}

func GetClaims(ctx context.Context) *AccessTokenClaims {
	if claims, ok := ctx.Value(ClaimsKey).(*AccessTokenClaims); ok {
		return claims
	}
	return nil
}

func getTokenErr(ctx context.Context) error {
	if err, ok := ctx.Value(TokenErrKey).(error); ok {
		return err
	}
	return nil
}

func GetTenant(ctx context.Context) *TenantInfo {
	if t, ok := ctx.Value(TenantKey).(*TenantInfo); ok {
		return t
	}
	return nil
}

func GetTenantID(ctx context.Context) string {
	if t := GetTenant(ctx); t != nil {
		return t.ID
	}
	return ""
}

func GetPrincipal(ctx context.Context) *Principal {
	if p, ok := ctx.Value(PrincipalKey).(*Principal); ok {
		return p
	}
	return nil
}

func GetUserID(ctx context.Context) string {
	if p := GetPrincipal(ctx); p != nil {
		return p.UserID
	}
	return ""
}

func IsAuthenticated(ctx context.Context) bool {
	return GetPrincipal(ctx) != nil
}

// WithTenant and WithPrincipal exist for handler tests that bypass the
// middleware chain.
func WithTenant(ctx context.Context, t *TenantInfo) context.Context {
	return context.WithValue(ctx, TenantKey, t)
}

func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, PrincipalKey, p)
}
