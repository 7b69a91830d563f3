// AngelaMos | 2026
// repository.go

package role

import (
	"context"
	"fmt"

	"github.com/Fr4nk017/La-ruta-el-Pastelazo-Backend/internal/core"
)

type Repository interface {
	Create(ctx context.Context, role *Role) error
	GetByID(ctx context.Context, tenantID, id string) (*Role, error)
	GetBySlug(ctx context.Context, tenantID, slug string) (*Role, error)
	List(ctx context.Context, tenantID string, params ListRolesParams) ([]Role, int, error)
	Update(ctx context.Context, role *Role) error
	Delete(ctx context.Context, tenantID, id string) error
	CountUsers(ctx context.Context, tenantID, id string) (int, error)
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

const roleColumns = `id, tenant_id, name, slug, description, permissions,
		       priority, is_system, is_active, created_at, updated_at`

func (r *repository) Create(ctx context.Context, role *Role) error {
	scope, err := core.Scope(role.TenantID)
	if err != nil {
		return fmt.Errorf("create role: %w", err)
	}

	query := `
		INSERT INTO roles (id, tenant_id, name, slug, description, permissions,
		                   priority, is_system, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at`

	err = r.db.GetContext(ctx, role, query,
		role.ID,
		scope.TenantID(),
		role.Name,
		role.Slug,
		role.Description,
		role.Permissions,
		role.Priority,
		role.IsSystem,
		role.IsActive,
	)
	if err != nil {
		if core.IsUniqueViolation(err) {
			return fmt.Errorf("create role: %w", core.ErrDuplicateKey)
		}
		return fmt.Errorf("create role: %w", err)
	}

	return nil
}

func (r *repository) get(ctx context.Context, op string, f *core.Filter) (*Role, error) {
	query := fmt.Sprintf(`SELECT %s FROM roles WHERE %s`, roleColumns, f.Clause())

	var role Role
	if err := r.db.GetContext(ctx, &role, query, f.Args()...); err != nil {
		return nil, core.NoRows(op, err, core.ErrNotFound)
	}
	return &role, nil
}

func (r *repository) GetByID(ctx context.Context, tenantID, id string) (*Role, error) {
	scope, err := core.Scope(tenantID)
	if err != nil {
		return nil, fmt.Errorf("get role: %w", err)
	}
	return r.get(ctx, "get role", scope.Eq("id", id))
}

func (r *repository) GetBySlug(ctx context.Context, tenantID, slug string) (*Role, error) {
	scope, err := core.Scope(tenantID)
	if err != nil {
		return nil, fmt.Errorf("get role by slug: %w", err)
	}
	return r.get(ctx, "get role by slug", scope.Eq("slug", slug))
}

func (r *repository) List(
	ctx context.Context,
	tenantID string,
	params ListRolesParams,
) ([]Role, int, error) {
	params.Normalize()

	scope, err := core.Scope(tenantID)
	if err != nil {
		return nil, 0, fmt.Errorf("list roles: %w", err)
	}

	scope.ILike(params.Search, "name", "slug")
	if params.Active != nil {
		scope.Eq("is_active", *params.Active)
	}

	var total int
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM roles WHERE %s", scope.Clause())
	if err := r.db.GetContext(ctx, &total, countQuery, scope.Args()...); err != nil {
		return nil, 0, fmt.Errorf("count roles: %w", err)
	}

	page, args := scope.Page(params.PageSize, params.Offset())
	query := fmt.Sprintf(`
		SELECT %s
		FROM roles
		WHERE %s
		ORDER BY priority DESC, name ASC
		%s`, roleColumns, scope.Clause(), page)

	var roles []Role
	if err := r.db.SelectContext(ctx, &roles, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list roles: %w", err)
	}

	return roles, total, nil
}

func (r *repository) Update(ctx context.Context, role *Role) error {
	scope, err := core.Scope(role.TenantID)
	if err != nil {
		return fmt.Errorf("update role: %w", err)
	}
	scope.Eq("id", role.ID)

	query := fmt.Sprintf(`
		UPDATE roles
		SET name = %s, slug = %s, description = %s, permissions = %s,
		    priority = %s, is_active = %s, updated_at = NOW()
		WHERE %s
		RETURNING updated_at`,
		scope.Bind(role.Name),
		scope.Bind(role.Slug),
		scope.Bind(role.Description),
		scope.Bind(role.Permissions),
		scope.Bind(role.Priority),
		scope.Bind(role.IsActive),
		scope.Clause(),
	)

	err = r.db.GetContext(ctx, &role.UpdatedAt, query, scope.Args()...)
	if err != nil {
		if core.IsUniqueViolation(err) {
			return fmt.Errorf("update role: %w", core.ErrDuplicateKey)
		}
		return core.NoRows("update role", err, core.ErrNotFound)
	}

	return nil
}

func (r *repository) Delete(ctx context.Context, tenantID, id string) error {
	scope, err := core.Scope(tenantID)
	if err != nil {
		return fmt.Errorf("delete role: %w", err)
	}
	scope.Eq("id", id)

	res, err := r.db.ExecContext(ctx,
		fmt.Sprintf("DELETE FROM roles WHERE %s", scope.Clause()),
		scope.Args()...,
	)
	if err != nil {
		if core.IsForeignKeyViolation(err) {
			return fmt.Errorf("delete role: %w", core.ErrConflict)
		}
		return fmt.Errorf("delete role: %w", err)
	}

	return core.RequireAffected("delete role", res, core.ErrNotFound)
}

func (r *repository) CountUsers(ctx context.Context, tenantID, id string) (int, error) {
	scope, err := core.Scope(tenantID)
	if err != nil {
		return 0, fmt.Errorf("count role users: %w", err)
	}
	scope.Eq("role_id", id)

	var n int
	query := fmt.Sprintf("SELECT COUNT(*) FROM users WHERE %s", scope.Clause())
	if err := r.db.GetContext(ctx, &n, query, scope.Args()...); err != nil {
		return 0, fmt.Errorf("count role users: %w", err)
	}
	return n, nil
}
