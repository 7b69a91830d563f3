// AngelaMos | 2026
// service.go

package role

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/Fr4nk017/La-ruta-el-Pastelazo-Backend/internal/authz"
	"github.com/Fr4nk017/La-ruta-el-Pastelazo-Backend/internal/core"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9-_]+$`)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// CreateSystemRoles seeds admin, seller and customer for a new tenant. It
// is called with a transaction-bound repository.
func CreateSystemRoles(ctx context.Context, repo Repository, tenantID string) ([]Role, error) {
	defs := authz.SystemRoles()
	roles := make([]Role, 0, len(defs))

	for _, def := range defs {
		r := Role{
			ID:          uuid.New().String(),
			TenantID:    tenantID,
			Name:        def.Name,
			Slug:        def.Slug,
			Description: def.Description,
			Permissions: def.Permissions.Strings(),
			Priority:    def.Priority,
			IsSystem:    true,
			IsActive:    true,
		}
		if err := repo.Create(ctx, &r); err != nil {
			return nil, fmt.Errorf("seed role %s: %w", def.Slug, err)
		}
		roles = append(roles, r)
	}

	return roles, nil
}

func (s *Service) List(
	ctx context.Context,
	tenantID string,
	params ListRolesParams,
) ([]Role, int, error) {
	return s.repo.List(ctx, tenantID, params)
}

func (s *Service) Get(ctx context.Context, tenantID, id string) (*Role, error) {
	return s.repo.GetByID(ctx, tenantID, id)
}

func (s *Service) Create(
	ctx context.Context,
	tenantID string,
	req CreateRoleRequest,
) (*Role, error) {
	slug, err := resolveSlug(req.Slug, req.Name)
	if err != nil {
		return nil, err
	}

	perms, err := parsePermissions(req.Permissions)
	if err != nil {
		return nil, err
	}

	priority := 0
	if req.Priority != nil {
		priority = *req.Priority
	}

	r := &Role{
		ID:          uuid.New().String(),
		TenantID:    tenantID,
		Name:        strings.TrimSpace(req.Name),
		Slug:        slug,
		Description: req.Description,
		Permissions: perms,
		Priority:    priority,
		IsActive:    true,
	}

	if err := s.repo.Create(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

func (s *Service) Update(
	ctx context.Context,
	tenantID, id string,
	req UpdateRoleRequest,
) (*Role, error) {
	r, err := s.repo.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		r.Name = strings.TrimSpace(*req.Name)
	}

	if req.Slug != nil && *req.Slug != r.Slug {
		if r.IsSystem {
			return nil, core.NewAppError(
				core.ErrSystemRole,
				"the slug of a system role cannot be changed",
				http.StatusForbidden,
				"SYSTEM_ROLE",
			)
		}
		slug, err := resolveSlug(*req.Slug, r.Name)
		if err != nil {
			return nil, err
		}
		r.Slug = slug
	}

	if req.Description != nil {
		r.Description = *req.Description
	}

	if req.Permissions != nil {
		perms, err := parsePermissions(*req.Permissions)
		if err != nil {
			return nil, err
		}
		r.Permissions = perms
	}

	if req.Priority != nil {
		r.Priority = *req.Priority
	}

	if req.IsActive != nil {
		if r.IsSystem && !*req.IsActive {
			return nil, core.NewAppError(
				core.ErrSystemRole,
				"system roles cannot be deactivated",
				http.StatusForbidden,
				"SYSTEM_ROLE",
			)
		}
		r.IsActive = *req.IsActive
	}

	if err := s.repo.Update(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

func (s *Service) Delete(ctx context.Context, tenantID, id string) error {
	r, err := s.repo.GetByID(ctx, tenantID, id)
	if err != nil {
		return err
	}

	if r.IsSystem {
		return fmt.Errorf("delete role %s: %w", r.Slug, core.ErrSystemRole)
	}

	n, err := s.repo.CountUsers(ctx, tenantID, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return core.NewAppError(
			core.ErrConflict,
			fmt.Sprintf("role is assigned to %d users", n),
			http.StatusConflict,
			"ROLE_IN_USE",
		)
	}

	return s.repo.Delete(ctx, tenantID, id)
}

func resolveSlug(slug, name string) (string, error) {
	slug = strings.ToLower(strings.TrimSpace(slug))
	if slug == "" {
		slug = core.Slugify(strings.ReplaceAll(name, "_", " "))
	}
	if !slugPattern.MatchString(slug) {
		return "", core.ValidationFailed("invalid role slug", []core.FieldError{
			{Field: "slug", Message: "must match ^[a-z0-9-_]+$"},
		})
	}
	return slug, nil
}

func parsePermissions(tokens []string) ([]string, error) {
	set, err := authz.Parse(tokens)
	if err != nil {
		return nil, core.ValidationFailed(err.Error(), []core.FieldError{
			{Field: "permissions", Message: err.Error()},
		})
	}
	return set.Strings(), nil
}
