// AngelaMos | 2026
// tenant.go

package middleware

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/attribute"

	"github.com/Fr4nk017/La-ruta-el-Pastelazo-Backend/internal/core"
	"github.com/Fr4nk017/La-ruta-el-Pastelazo-Backend/internal/metrics"
)

const TenantPathParam = "tenantSlug"

// TenantResolver looks a tenant up by id, slug or domain and enforces that
// it may serve traffic.
type TenantResolver interface {
	Resolve(ctx context.Context, identifier string) (*TenantInfo, error)
}

// TenantStrategy extracts a tenant identifier from a request.
type TenantStrategy interface {
	Name() string
	Identify(r *http.Request) (string, bool)
}

type TokenStrategy struct{}

func (TokenStrategy) Name() string { return "token" }

func (TokenStrategy) Identify(r *http.Request) (string, bool) {
	claims := GetClaims(r.Context())
	if claims == nil || claims.TenantID == "" {
		return "", false
	}
	return claims.TenantID, true
}

type HeaderStrategy struct {
	Header string
}

func (HeaderStrategy) Name() string { return "header" }

func (s HeaderStrategy) Identify(r *http.Request) (string, bool) {
	v := strings.TrimSpace(r.Header.Get(s.Header))
	return v, v != ""
}

type PathStrategy struct{}

func (PathStrategy) Name() string { return "path" }

func (PathStrategy) Identify(r *http.Request) (string, bool) {
	v := chi.URLParam(r, TenantPathParam)
	return v, v != ""
}

type SubdomainStrategy struct {
	Reserved map[string]bool
}

func NewSubdomainStrategy(reserved []string) SubdomainStrategy {
	m := make(map[string]bool, len(reserved))
	for _, r := range reserved {
		m[strings.ToLower(r)] = true
	}
	return SubdomainStrategy{Reserved: m}
}

func (SubdomainStrategy) Name() string { return "subdomain" }

func (s SubdomainStrategy) Identify(r *http.Request) (string, bool) {
	host := r.Host
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	host = strings.ToLower(host)

	if net.ParseIP(host) != nil {
		return "", false
	}

	labels := strings.Split(host, ".")
	if len(labels) < 3 || labels[0] == "" || s.Reserved[labels[0]] {
		return "", false
	}
	return labels[0], true
}

// Strategies returns the ordered strategy list for a tenancy source.
func Strategies(source, header string, reserved []string) ([]TenantStrategy, error) {
	if header == "" {
		header = "X-Tenant-ID"
	}

	token := TokenStrategy{}
	hdr := HeaderStrategy{Header: header}
	path := PathStrategy{}
	sub := NewSubdomainStrategy(reserved)

	switch source {
	case "", "auto":
		return []TenantStrategy{token, hdr, path, sub}, nil
	case "token":
		return []TenantStrategy{token}, nil
	case "header":
		return []TenantStrategy{hdr}, nil
	case "path":
		return []TenantStrategy{path}, nil
	case "subdomain":
		return []TenantStrategy{sub}, nil
	default:
		return nil, fmt.Errorf("unknown tenancy source %q", source)
	}
}

type TenantResolution struct {
	strategies []TenantStrategy
	resolver   TenantResolver
	metrics    *metrics.Metrics
}

func NewTenantResolution(
	strategies []TenantStrategy,
	resolver TenantResolver,
	m *metrics.Metrics,
) *TenantResolution {
	return &TenantResolution{
		strategies: strategies,
		resolver:   resolver,
		metrics:    m,
	}
}

// Identify runs the strategies in order; the first identifier found wins.
func (t *TenantResolution) Identify(r *http.Request) (string, string, bool) {
	for _, s := range t.strategies {
		if id, ok := s.Identify(r); ok {
			return id, s.Name(), true
		}
	}
	return "", "", false
}

// Require attaches the resolved tenant or rejects the request.
func (t *TenantResolution) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		identifier, source, ok := t.Identify(r)
		if !ok {
			t.metrics.TenantFailure("missing")
			core.JSONError(w, core.ErrTenantRequired)
			return
		}

		tenant, err := t.resolver.Resolve(ctx, identifier)
		if err != nil {
			t.metrics.TenantFailure(failureReason(err))
			if !errors.Is(err, core.ErrTenantNotFound) && !errors.Is(err, core.ErrTenantInactive) {
				slog.ErrorContext(ctx, "tenant resolution failed",
					"identifier", identifier,
					"source", source,
					"error", err,
				)
			}
			core.JSONError(w, err)
			return
		}

		core.AddSpanEvent(ctx, "tenant.resolved",
			core.AttrTenantID.String(tenant.ID),
			attribute.String("tenant.source", source),
		)

		noteTenant(ctx, tenant.ID)
		next.ServeHTTP(w, r.WithContext(WithTenant(ctx, tenant)))
	})
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, core.ErrTenantNotFound):
		return "not_found"
	case errors.Is(err, core.ErrTenantInactive):
		return "inactive"
	default:
		return "error"
	}
}
