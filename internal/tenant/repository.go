// AngelaMos | 2026
// repository.go

package tenant

import (
	"context"
	"fmt"
	"strings"

	"github.com/Fr4nk017/La-ruta-el-Pastelazo-Backend/internal/core"
)

// Repository is the one store that is not tenant-scoped: tenants are the
// root of every scope.
type Repository interface {
	Create(ctx context.Context, t *Tenant) error
	GetByID(ctx context.Context, id string) (*Tenant, error)
	GetBySlugOrDomain(ctx context.Context, ident string) (*Tenant, error)
	List(ctx context.Context, params ListTenantsParams) ([]Tenant, int, error)
	Update(ctx context.Context, t *Tenant) error
	SetStatus(ctx context.Context, id, status string) error
	Stats(ctx context.Context, id string) (*Stats, error)
	CountByStatus(ctx context.Context) (map[string]int, error)
	Purge(ctx context.Context, id string) error
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

const tenantColumns = `id, name, slug, domain, contact_email, contact_phone, address,
		       status, currency, language, timezone, plan, plan_start_date,
		       plan_end_date, plan_is_active, logo, created_at, updated_at`

func (r *repository) Create(ctx context.Context, t *Tenant) error {
	query := `
		INSERT INTO tenants (
			id, name, slug, domain, contact_email, contact_phone, address,
			status, currency, language, timezone, plan, plan_is_active, logo
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14
		)
		RETURNING plan_start_date, created_at, updated_at`

	err := r.db.GetContext(ctx, t, query,
		t.ID,
		t.Name,
		t.Slug,
		t.Domain,
		t.ContactEmail,
		t.ContactPhone,
		t.Address,
		t.Status,
		t.Currency,
		t.Language,
		t.Timezone,
		t.Plan,
		t.PlanIsActive,
		t.Logo,
	)
	if err != nil {
		if core.IsUniqueViolation(err) {
			return fmt.Errorf("create tenant: %w", core.ErrDuplicateKey)
		}
		return fmt.Errorf("create tenant: %w", err)
	}

	return nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*Tenant, error) {
	query := fmt.Sprintf(`SELECT %s FROM tenants WHERE id = $1`, tenantColumns)

	var t Tenant
	if err := r.db.GetContext(ctx, &t, query, id); err != nil {
		return nil, core.NoRows("get tenant", err, core.ErrTenantNotFound)
	}
	return &t, nil
}

func (r *repository) GetBySlugOrDomain(ctx context.Context, ident string) (*Tenant, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM tenants
		WHERE slug = $1 OR domain = $1
		ORDER BY (slug = $1) DESC
		LIMIT 1`, tenantColumns)

	var t Tenant
	if err := r.db.GetContext(ctx, &t, query, ident); err != nil {
		return nil, core.NoRows("get tenant by slug", err, core.ErrTenantNotFound)
	}
	return &t, nil
}

func (r *repository) List(ctx context.Context, params ListTenantsParams) ([]Tenant, int, error) {
	params.Normalize()

	var conditions []string
	var args []any
	argIdx := 1

	if params.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argIdx))
		args = append(args, params.Status)
		argIdx++
	}

	if params.Search != "" {
		conditions = append(conditions, fmt.Sprintf(
			"(name ILIKE $%d OR slug ILIKE $%d OR contact_email ILIKE $%d)",
			argIdx, argIdx, argIdx,
		))
		args = append(args, "%"+core.EscapeLike(params.Search)+"%")
		argIdx++
	}

	where := ""
	if len(conditions) > 0 {
		where = "WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	countQuery := "SELECT COUNT(*) FROM tenants " + where
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count tenants: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s FROM tenants
		%s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d`, tenantColumns, where, argIdx, argIdx+1)
	args = append(args, params.PageSize, params.Offset())

	var tenants []Tenant
	if err := r.db.SelectContext(ctx, &tenants, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list tenants: %w", err)
	}

	return tenants, total, nil
}

func (r *repository) Update(ctx context.Context, t *Tenant) error {
	query := `
		UPDATE tenants
		SET name = $2, slug = $3, domain = $4, contact_email = $5,
		    contact_phone = $6, address = $7, currency = $8, language = $9,
		    timezone = $10, plan = $11, plan_end_date = $12,
		    plan_is_active = $13, logo = $14, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`

	err := r.db.GetContext(ctx, &t.UpdatedAt, query,
		t.ID,
		t.Name,
		t.Slug,
		t.Domain,
		t.ContactEmail,
		t.ContactPhone,
		t.Address,
		t.Currency,
		t.Language,
		t.Timezone,
		t.Plan,
		t.PlanEndDate,
		t.PlanIsActive,
		t.Logo,
	)
	if err != nil {
		if core.IsUniqueViolation(err) {
			return fmt.Errorf("update tenant: %w", core.ErrDuplicateKey)
		}
		return core.NoRows("update tenant", err, core.ErrTenantNotFound)
	}

	return nil
}

func (r *repository) SetStatus(ctx context.Context, id, status string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE tenants SET status = $2, updated_at = NOW() WHERE id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("set tenant status: %w", err)
	}
	return core.RequireAffected("set tenant status", res, core.ErrTenantNotFound)
}

func (r *repository) Stats(ctx context.Context, id string) (*Stats, error) {
	scope, err := core.Scope(id)
	if err != nil {
		return nil, fmt.Errorf("tenant stats: %w", err)
	}
	active, err := core.Scope(id)
	if err != nil {
		return nil, fmt.Errorf("tenant stats: %w", err)
	}
	active.Where("is_active")

	// Both filters bind only the tenant id, so they share $1.
	count := func(table string, f *core.Filter) string {
		return fmt.Sprintf("(SELECT COUNT(*) FROM %s WHERE %s)", table, f.Clause())
	}
	query := fmt.Sprintf(`
		SELECT
			%s AS users,
			%s AS active_users,
			%s AS roles,
			%s AS products,
			%s AS orders`,
		count("users", scope),
		count("users", active),
		count("roles", scope),
		count("products", scope),
		count("orders", scope),
	)

	var s Stats
	if err := r.db.GetContext(ctx, &s, query, scope.Args()...); err != nil {
		return nil, fmt.Errorf("tenant stats: %w", err)
	}
	return &s, nil
}

func (r *repository) CountByStatus(ctx context.Context) (map[string]int, error) {
	var rows []struct {
		Status string `db:"status"`
		N      int    `db:"n"`
	}
	err := r.db.SelectContext(ctx, &rows,
		`SELECT status, COUNT(*) AS n FROM tenants GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("count tenants: %w", err)
	}

	out := make(map[string]int, len(rows))
	for _, row := range rows {
		out[row.Status] = row.N
	}
	return out, nil
}

// purgeOrder deletes children before parents: users reference roles, and
// carts and orders reference users.
var purgeOrder = []string{
	"carts",
	"orders",
	"products",
	"refresh_tokens",
	"users",
	"roles",
}

// Purge removes the tenant and everything it owns. Run it inside a
// transaction.
func (r *repository) Purge(ctx context.Context, id string) error {
	for _, table := range purgeOrder {
		scope, err := core.Scope(id)
		if err != nil {
			return fmt.Errorf("purge tenant: %w", err)
		}

		query := fmt.Sprintf("DELETE FROM %s WHERE %s", table, scope.Clause())
		if _, err := r.db.ExecContext(ctx, query, scope.Args()...); err != nil {
			return fmt.Errorf("purge %s: %w", table, err)
		}
	}

	res, err := r.db.ExecContext(ctx, `DELETE FROM tenants WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("purge tenant: %w", err)
	}
	return core.RequireAffected("purge tenant", res, core.ErrTenantNotFound)
}
