// AngelaMos | 2026
// repository.go

package user

import (
	"context"
	"fmt"

	"github.com/Fr4nk017/La-ruta-el-Pastelazo-Backend/internal/core"
)

type Repository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, tenantID, id string) (*User, error)
	GetByEmail(ctx context.Context, tenantID, email string) (*User, error)
	Update(ctx context.Context, user *User) error
	UpdateRole(ctx context.Context, tenantID, id, roleID string) error
	UpdatePassword(ctx context.Context, tenantID, id, passwordHash string) error
	IncrementTokenVersion(ctx context.Context, tenantID, id string) error
	Deactivate(ctx context.Context, tenantID, id string) error
	TouchLastLogin(ctx context.Context, tenantID, id string) error
	List(ctx context.Context, tenantID string, params ListUsersParams) ([]User, int, error)
	LoadPrincipal(ctx context.Context, tenantID, id string) (*principalRow, error)
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

const userSelect = `
		SELECT u.id, u.tenant_id, u.role_id, u.first_name, u.last_name, u.email,
		       u.password_hash, u.phone, u.profile_image, u.is_active,
		       u.token_version, u.last_login_at, u.created_at, u.updated_at,
		       r.slug AS role_slug
		FROM users u
		JOIN roles r ON r.tenant_id = u.tenant_id AND r.id = u.role_id`

func (r *repository) Create(ctx context.Context, user *User) error {
	scope, err := core.Scope(user.TenantID)
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}

	query := `
		INSERT INTO users (id, tenant_id, role_id, first_name, last_name, email,
		                   password_hash, phone, profile_image, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at, updated_at, token_version`

	err = r.db.GetContext(ctx, user, query,
		user.ID,
		scope.TenantID(),
		user.RoleID,
		user.FirstName,
		user.LastName,
		user.Email,
		user.PasswordHash,
		user.Phone,
		user.ProfileImage,
		user.IsActive,
	)
	if err != nil {
		switch {
		case core.IsUniqueViolation(err):
			return fmt.Errorf("create user: %w", core.ErrDuplicateKey)
		case core.IsForeignKeyViolation(err):
			return fmt.Errorf("create user: %w", core.ErrRoleMismatch)
		}
		return fmt.Errorf("create user: %w", err)
	}

	return nil
}

func (r *repository) getOne(ctx context.Context, op string, f *core.Filter) (*User, error) {
	query := fmt.Sprintf("%s WHERE %s", userSelect, f.Clause())

	var user User
	if err := r.db.GetContext(ctx, &user, query, f.Args()...); err != nil {
		return nil, core.NoRows(op, err, core.ErrNotFound)
	}
	return &user, nil
}

func (r *repository) GetByID(ctx context.Context, tenantID, id string) (*User, error) {
	scope, err := core.ScopeAs(tenantID, "u")
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return r.getOne(ctx, "get user", scope.Eq("id", id))
}

func (r *repository) GetByEmail(ctx context.Context, tenantID, email string) (*User, error) {
	scope, err := core.ScopeAs(tenantID, "u")
	if err != nil {
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	return r.getOne(ctx, "get user by email", scope.Eq("email", email))
}

func (r *repository) Update(ctx context.Context, user *User) error {
	scope, err := core.Scope(user.TenantID)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	scope.Eq("id", user.ID)

	query := fmt.Sprintf(`
		UPDATE users
		SET first_name = %s, last_name = %s, phone = %s, profile_image = %s,
		    is_active = %s, updated_at = NOW()
		WHERE %s
		RETURNING updated_at`,
		scope.Bind(user.FirstName),
		scope.Bind(user.LastName),
		scope.Bind(user.Phone),
		scope.Bind(user.ProfileImage),
		scope.Bind(user.IsActive),
		scope.Clause(),
	)

	if err := r.db.GetContext(ctx, &user.UpdatedAt, query, scope.Args()...); err != nil {
		return core.NoRows("update user", err, core.ErrNotFound)
	}
	return nil
}

func (r *repository) exec(ctx context.Context, op, set string, tenantID, id string, values ...any) error {
	scope, err := core.Scope(tenantID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	scope.Eq("id", id)

	binds := make([]any, 0, len(values))
	for _, v := range values {
		binds = append(binds, scope.Bind(v))
	}

	query := fmt.Sprintf("UPDATE users SET %s, updated_at = NOW() WHERE %s",
		fmt.Sprintf(set, binds...), scope.Clause())

	res, err := r.db.ExecContext(ctx, query, scope.Args()...)
	if err != nil {
		if core.IsForeignKeyViolation(err) {
			return fmt.Errorf("%s: %w", op, core.ErrRoleMismatch)
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	return core.RequireAffected(op, res, core.ErrNotFound)
}

func (r *repository) UpdateRole(ctx context.Context, tenantID, id, roleID string) error {
	return r.exec(ctx, "update user role", "role_id = %s", tenantID, id, roleID)
}

func (r *repository) UpdatePassword(ctx context.Context, tenantID, id, passwordHash string) error {
	return r.exec(ctx, "update password", "password_hash = %s", tenantID, id, passwordHash)
}

func (r *repository) IncrementTokenVersion(ctx context.Context, tenantID, id string) error {
	return r.exec(ctx, "increment token version", "token_version = token_version + 1", tenantID, id)
}

// Deactivate also bumps token_version so outstanding access tokens die.
func (r *repository) Deactivate(ctx context.Context, tenantID, id string) error {
	return r.exec(ctx, "deactivate user",
		"is_active = FALSE, token_version = token_version + 1", tenantID, id)
}

func (r *repository) TouchLastLogin(ctx context.Context, tenantID, id string) error {
	return r.exec(ctx, "touch last login", "last_login_at = NOW()", tenantID, id)
}

func (r *repository) List(
	ctx context.Context,
	tenantID string,
	params ListUsersParams,
) ([]User, int, error) {
	params.Normalize()

	scope, err := core.ScopeAs(tenantID, "u")
	if err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}

	scope.ILike(params.Search, "email", "first_name", "last_name")
	if params.RoleID != "" {
		scope.Eq("role_id", params.RoleID)
	}
	if params.Active != nil {
		scope.Eq("is_active", *params.Active)
	}

	var total int
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM users u WHERE %s", scope.Clause())
	if err := r.db.GetContext(ctx, &total, countQuery, scope.Args()...); err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}

	page, args := scope.Page(params.PageSize, params.Offset())
	query := fmt.Sprintf(`%s
		WHERE %s
		ORDER BY u.created_at DESC
		%s`, userSelect, scope.Clause(), page)

	var users []User
	if err := r.db.SelectContext(ctx, &users, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}

	return users, total, nil
}

func (r *repository) LoadPrincipal(ctx context.Context, tenantID, id string) (*principalRow, error) {
	scope, err := core.ScopeAs(tenantID, "u")
	if err != nil {
		return nil, fmt.Errorf("load principal: %w", err)
	}
	scope.Eq("id", id)

	query := fmt.Sprintf(`
		SELECT u.id, u.tenant_id, u.role_id, u.email, u.is_active, u.token_version,
		       r.slug AS role_slug, r.is_active AS role_active, r.permissions
		FROM users u
		JOIN roles r ON r.tenant_id = u.tenant_id AND r.id = u.role_id
		WHERE %s`, scope.Clause())

	var row principalRow
	if err := r.db.GetContext(ctx, &row, query, scope.Args()...); err != nil {
		return nil, core.NoRows("load principal", err, core.ErrNotFound)
	}
	return &row, nil
}
