// AngelaMos | 2026
// auth.go

package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/Fr4nk017/La-ruta-el-Pastelazo-Backend/internal/authz"
	"github.com/Fr4nk017/La-ruta-el-Pastelazo-Backend/internal/core"
	"github.com/Fr4nk017/La-ruta-el-Pastelazo-Backend/internal/metrics"
)

type TokenVerifier interface {
	VerifyAccessToken(
		ctx context.Context,
		token string,
	) (*AccessTokenClaims, error)
}

// PrincipalLoader fetches the live user and role for a (tenant, user) pair.
// It returns core.ErrNotFound when the user is not a member of the tenant.
type PrincipalLoader interface {
	LoadPrincipal(ctx context.Context, tenantID, userID string) (*Principal, error)
}

type TokenBlacklist interface {
	IsBlacklisted(ctx context.Context, jti string) (bool, error)
}

// ParseToken verifies a bearer token if one is present and records either
// the claims or the verification error. It never rejects a request, so it
// can run ahead of tenant resolution.
func ParseToken(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := ExtractToken(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			ctx := r.Context()
			claims, err := verifier.VerifyAccessToken(ctx, token)
			if err != nil {
				ctx = context.WithValue(ctx, TokenErrKey, err)
			} else {
				ctx = context.WithValue(ctx, ClaimsKey, claims)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

type Authenticators struct {
	loader    PrincipalLoader
	blacklist TokenBlacklist
	metrics   *metrics.Metrics
}

func NewAuthenticators(
	loader PrincipalLoader,
	blacklist TokenBlacklist,
	m *metrics.Metrics,
) *Authenticators {
	return &Authenticators{loader: loader, blacklist: blacklist, metrics: m}
}

// Required rejects any request without a principal of the resolved tenant.
func (a *Authenticators) Required(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, err := a.authenticate(r)
		if err != nil {
			a.metrics.AuthAttempt("access_token", false)
			handleAuthError(w, err)
			return
		}

		noteUser(r.Context(), p.UserID)
		next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), p)))
	})
}

// Optional attaches a principal when the token checks out and otherwise
// lets the request through as a guest.
func (a *Authenticators) Optional(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, err := a.authenticate(r)
		if err == nil {
			noteUser(r.Context(), p.UserID)
			r = r.WithContext(WithPrincipal(r.Context(), p))
		}

		next.ServeHTTP(w, r)
	})
}

func (a *Authenticators) authenticate(r *http.Request) (*Principal, error) {
	ctx := r.Context()

	if err := getTokenErr(ctx); err != nil {
		return nil, err
	}

	claims := GetClaims(ctx)
	if claims == nil {
		return nil, core.UnauthorizedError("missing authorization token")
	}

	tenant := GetTenant(ctx)
	if tenant == nil {
		return nil, core.ErrTenantRequired
	}

	if claims.TenantID != tenant.ID {
		slog.WarnContext(ctx, "token tenant mismatch",
			"token_tenant", claims.TenantID,
			"request_tenant", tenant.ID,
		)
		return nil, core.TokenInvalidError()
	}

	p, err := a.loader.LoadPrincipal(ctx, tenant.ID, claims.UserID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, core.TokenInvalidError()
		}
		return nil, err
	}

	if !p.IsActive {
		return nil, core.InactiveAccountError()
	}

	if p.TokenVersion != claims.TokenVersion {
		return nil, core.TokenRevokedError()
	}

	if a.blacklist != nil && claims.JTI != "" {
		revoked, err := a.blacklist.IsBlacklisted(ctx, claims.JTI)
		if err != nil {
			slog.WarnContext(ctx, "blacklist lookup failed, continuing",
				"error", err,
			)
		} else if revoked {
			return nil, core.TokenRevokedError()
		}
	}

	return p, nil
}

// RequirePermission denies unless the principal's role holds resource:action.
func RequirePermission(
	m *metrics.Metrics,
	resource authz.Resource,
	action authz.Action,
) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p := GetPrincipal(r.Context())
			if p == nil {
				core.JSONError(w, core.UnauthorizedError("authentication required"))
				return
			}

			if !p.Can(resource, action) {
				m.PermissionDenied(string(resource), string(action))
				core.JSONError(w, core.ForbiddenError(
					"missing permission "+string(authz.P(resource, action)),
				))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func ExtractToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}

	return strings.TrimSpace(parts[1])
}

func handleAuthError(w http.ResponseWriter, err error) {
	if core.IsAppError(err) {
		core.JSONError(w, err)
		return
	}

	switch {
	case errors.Is(err, core.ErrTokenExpired):
		core.JSONError(w, core.TokenExpiredError())
	case errors.Is(err, core.ErrTokenRevoked):
		core.JSONError(w, core.TokenRevokedError())
	case errors.Is(err, core.ErrTokenInvalid):
		core.JSONError(w, core.TokenInvalidError())
	default:
		core.JSONError(w, err)
	}
}
