// AngelaMos | 2026
// service.go

package tenant

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.opentelemetry.io/otel/attribute"

	"github.com/Fr4nk017/La-ruta-el-Pastelazo-Backend/internal/authz"
	"github.com/Fr4nk017/La-ruta-el-Pastelazo-Backend/internal/core"
	"github.com/Fr4nk017/La-ruta-el-Pastelazo-Backend/internal/middleware"
	"github.com/Fr4nk017/La-ruta-el-Pastelazo-Backend/internal/role"
	"github.com/Fr4nk017/La-ruta-el-Pastelazo-Backend/internal/user"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

const (
	defaultCurrency = "USD"
	defaultLanguage = "es"
	defaultTimezone = "America/Mexico_City"
)

type Service struct {
	db    *sqlx.DB
	repo  Repository
	cache *core.Cache
	now   func() time.Time
}

func NewService(db *sqlx.DB, repo Repository, cache *core.Cache) *Service {
	return &Service{db: db, repo: repo, cache: cache, now: time.Now}
}

// Resolve implements middleware.TenantResolver. A UUID is looked up by id,
// anything else by slug or domain.
func (s *Service) Resolve(ctx context.Context, identifier string) (*middleware.TenantInfo, error) {
	ident := strings.ToLower(strings.TrimSpace(identifier))
	if ident == "" {
		return nil, core.ErrTenantRequired
	}

	t, err := s.lookup(ctx, ident)
	if err != nil {
		return nil, err
	}

	if !t.CanServe(s.now()) {
		return nil, fmt.Errorf("resolve tenant %s: %w", t.Slug, core.ErrTenantInactive)
	}

	return t.Info(), nil
}

func (s *Service) lookup(ctx context.Context, ident string) (*Tenant, error) {
	var cached Tenant
	if s.cache.Get(ctx, ident, &cached) {
		return &cached, nil
	}

	var (
		t   *Tenant
		err error
	)
	if _, parseErr := uuid.Parse(ident); parseErr == nil {
		t, err = s.repo.GetByID(ctx, ident)
	} else {
		t, err = s.repo.GetBySlugOrDomain(ctx, ident)
	}
	if err != nil {
		return nil, err
	}

	s.cache.Set(ctx, ident, t)
	return t, nil
}

func (s *Service) invalidate(ctx context.Context, tenants ...*Tenant) {
	var keys []string
	for _, t := range tenants {
		if t != nil {
			keys = append(keys, t.identifiers()...)
		}
	}
	s.cache.Delete(ctx, keys...)
}

func resolveSlug(explicit, name string) (string, error) {
	slug := core.Slugify(explicit)
	if explicit == "" {
		slug = core.Slugify(name)
	}
	if slug == "" || !slugPattern.MatchString(slug) {
		return "", core.ValidationFailed("invalid slug", map[string]string{"field": "slug"})
	}
	return slug, nil
}

func optionalDomain(d string) *string {
	d = strings.ToLower(strings.TrimSpace(d))
	if d == "" {
		return nil
	}
	return &d
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

type CreateResult struct {
	Tenant *Tenant
	Roles  []role.Role
	Owner  *user.User
}

// Create provisions a tenant with its system roles, and the first admin
// when an owner is given, in one transaction.
func (s *Service) Create(ctx context.Context, req CreateTenantRequest) (*CreateResult, error) {
	slug, err := resolveSlug(req.Slug, req.Name)
	if err != nil {
		return nil, err
	}

	t := &Tenant{
		ID:           uuid.New().String(),
		Name:         strings.TrimSpace(req.Name),
		Slug:         slug,
		Domain:       optionalDomain(req.Domain),
		ContactEmail: strings.ToLower(req.ContactEmail),
		ContactPhone: req.ContactPhone,
		Address:      req.Address,
		Status:       StatusTrial,
		Currency:     strings.ToUpper(orDefault(req.Currency, defaultCurrency)),
		Language:     orDefault(req.Language, defaultLanguage),
		Timezone:     orDefault(req.Timezone, defaultTimezone),
		Plan:         orDefault(req.Plan, PlanFree),
		PlanIsActive: true,
		Logo:         req.Logo,
	}

	result := &CreateResult{Tenant: t}

	err = core.InTx(ctx, s.db, func(tx *sqlx.Tx) error {
		if err := NewRepository(tx).Create(ctx, t); err != nil {
			return err
		}

		roles, err := role.CreateSystemRoles(ctx, role.NewRepository(tx), t.ID)
		if err != nil {
			return err
		}
		result.Roles = roles

		if req.Owner == nil {
			return nil
		}

		var adminID string
		for _, r := range roles {
			if r.Slug == authz.RoleAdmin {
				adminID = r.ID
			}
		}

		owner, err := user.NewMember(t.ID, adminID, user.CreateUserRequest{
			FirstName: req.Owner.FirstName,
			LastName:  req.Owner.LastName,
			Email:     req.Owner.Email,
			Password:  req.Owner.Password,
			Phone:     req.Owner.Phone,
		})
		if err != nil {
			return err
		}
		if err := user.NewRepository(tx).Create(ctx, owner); err != nil {
			return err
		}
		owner.RoleSlug = authz.RoleAdmin
		result.Owner = owner
		return nil
	})
	if err != nil {
		return nil, err
	}

	core.AddSpanEvent(ctx, "tenant.created",
		core.AttrTenantID.String(t.ID),
		attribute.Bool("tenant.owner", result.Owner != nil),
	)
	return result, nil
}

func (s *Service) List(ctx context.Context, params ListTenantsParams) ([]Tenant, int, error) {
	return s.repo.List(ctx, params)
}

func (s *Service) Get(ctx context.Context, id string) (*Tenant, error) {
	return s.repo.GetByID(ctx, id)
}

func applySettings(t *Tenant, req UpdateSettingsRequest) {
	if req.Name != nil {
		t.Name = strings.TrimSpace(*req.Name)
	}
	if req.ContactEmail != nil {
		t.ContactEmail = strings.ToLower(*req.ContactEmail)
	}
	if req.ContactPhone != nil {
		t.ContactPhone = *req.ContactPhone
	}
	if req.Address != nil {
		t.Address = *req.Address
	}
	if req.Currency != nil {
		t.Currency = strings.ToUpper(*req.Currency)
	}
	if req.Language != nil {
		t.Language = *req.Language
	}
	if req.Timezone != nil {
		t.Timezone = *req.Timezone
	}
	if req.Logo != nil {
		t.Logo = *req.Logo
	}
}

// UpdateSettings is the tenant admin's own update.
func (s *Service) UpdateSettings(ctx context.Context, id string, req UpdateSettingsRequest) (*Tenant, error) {
	return s.update(ctx, id, func(t *Tenant) error {
		applySettings(t, req)
		return nil
	})
}

func (s *Service) Update(ctx context.Context, id string, req UpdateTenantRequest) (*Tenant, error) {
	return s.update(ctx, id, func(t *Tenant) error {
		applySettings(t, req.UpdateSettingsRequest)

		if req.Slug != nil {
			slug, err := resolveSlug(*req.Slug, t.Name)
			if err != nil {
				return err
			}
			t.Slug = slug
		}
		if req.Domain != nil {
			t.Domain = optionalDomain(*req.Domain)
		}
		if req.Plan != nil {
			t.Plan = *req.Plan
		}
		if req.PlanEndDate != nil {
			t.PlanEndDate = req.PlanEndDate
		}
		if req.PlanIsActive != nil {
			t.PlanIsActive = *req.PlanIsActive
		}
		return nil
	})
}

func (s *Service) update(ctx context.Context, id string, mutate func(*Tenant) error) (*Tenant, error) {
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	before := *t

	if err := mutate(t); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, t); err != nil {
		return nil, err
	}

	s.invalidate(ctx, &before, t)
	return t, nil
}

func (s *Service) UpdateStatus(ctx context.Context, id, status string) (*Tenant, error) {
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.repo.SetStatus(ctx, id, status); err != nil {
		return nil, err
	}
	t.Status = status

	s.invalidate(ctx, t)
	return t, nil
}

// Deactivate is the soft delete: the tenant stays but stops resolving.
func (s *Service) Deactivate(ctx context.Context, id string) error {
	_, err := s.UpdateStatus(ctx, id, StatusInactive)
	return err
}

// Purge permanently deletes the tenant and all of its data.
func (s *Service) Purge(ctx context.Context, id string) error {
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	err = core.InTx(ctx, s.db, func(tx *sqlx.Tx) error {
		return NewRepository(tx).Purge(ctx, id)
	})
	if err != nil {
		return err
	}

	s.invalidate(ctx, t)
	return nil
}

func (s *Service) Stats(ctx context.Context, id string) (*Stats, error) {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return nil, err
	}
	return s.repo.Stats(ctx, id)
}

// CountByStatus is the platform-wide tenant census.
func (s *Service) CountByStatus(ctx context.Context) (map[string]int, error) {
	return s.repo.CountByStatus(ctx)
}

var _ middleware.TenantResolver = (*Service)(nil)
