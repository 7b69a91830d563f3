// AngelaMos | 2026
// repository.go

package product

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/Fr4nk017/La-ruta-el-Pastelazo-Backend/internal/core"
)

type Repository interface {
	Create(ctx context.Context, p *Product) error
	GetByID(ctx context.Context, tenantID, id string) (*Product, error)
	List(ctx context.Context, tenantID string, params ListProductsParams) ([]Product, int, error)
	Update(ctx context.Context, p *Product) error
	SetActive(ctx context.Context, tenantID, id string, active bool) error
	Delete(ctx context.Context, tenantID, id string) error
	AdjustStock(ctx context.Context, tenantID, id string, delta int) (*Product, error)
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

const productColumns = `id, tenant_id, name, slug, description, price, currency,
		       stock, category, images, tags, is_active, created_at, updated_at`

func (r *repository) Create(ctx context.Context, p *Product) error {
	scope, err := core.Scope(p.TenantID)
	if err != nil {
		return fmt.Errorf("create product: %w", err)
	}

	query := `
		INSERT INTO products (id, tenant_id, name, slug, description, price,
		                      currency, stock, category, images, tags, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING created_at, updated_at`

	err = r.db.GetContext(ctx, p, query,
		p.ID,
		scope.TenantID(),
		p.Name,
		p.Slug,
		p.Description,
		p.Price,
		p.Currency,
		p.Stock,
		p.Category,
		textArray(p.Images),
		textArray(p.Tags),
		p.IsActive,
	)
	if err != nil {
		if core.IsUniqueViolation(err) {
			return fmt.Errorf("create product: %w", core.ErrDuplicateKey)
		}
		if core.IsCheckViolation(err) {
			return fmt.Errorf("create product: %w", core.ErrInvalidInput)
		}
		return fmt.Errorf("create product: %w", err)
	}

	return nil
}

func (r *repository) GetByID(ctx context.Context, tenantID, id string) (*Product, error) {
	scope, err := core.Scope(tenantID)
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	scope.Eq("id", id)

	query := fmt.Sprintf(`SELECT %s FROM products WHERE %s`, productColumns, scope.Clause())

	var p Product
	if err := r.db.GetContext(ctx, &p, query, scope.Args()...); err != nil {
		return nil, core.NoRows("get product", err, core.ErrProductNotFound)
	}
	return &p, nil
}

func (r *repository) List(
	ctx context.Context,
	tenantID string,
	params ListProductsParams,
) ([]Product, int, error) {
	params.Normalize()

	scope, err := core.Scope(tenantID)
	if err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}

	if params.Category != "" {
		scope.Eq("category", params.Category)
	}
	scope.ILike(params.Search, "name", "description")
	if params.Active != nil {
		scope.Eq("is_active", *params.Active)
	}

	var total int
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM products WHERE %s", scope.Clause())
	if err := r.db.GetContext(ctx, &total, countQuery, scope.Args()...); err != nil {
		return nil, 0, fmt.Errorf("count products: %w", err)
	}

	page, args := scope.Page(params.PageSize, params.Offset())
	query := fmt.Sprintf(`
		SELECT %s
		FROM products
		WHERE %s
		ORDER BY created_at DESC
		%s`, productColumns, scope.Clause(), page)

	var products []Product
	if err := r.db.SelectContext(ctx, &products, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}

	return products, total, nil
}

// Update writes every editable column except stock.
func (r *repository) Update(ctx context.Context, p *Product) error {
	scope, err := core.Scope(p.TenantID)
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	scope.Eq("id", p.ID)

	query := fmt.Sprintf(`
		UPDATE products
		SET name = %s, slug = %s, description = %s, price = %s, category = %s,
		    images = %s, tags = %s, is_active = %s, updated_at = NOW()
		WHERE %s
		RETURNING stock, updated_at`,
		scope.Bind(p.Name),
		scope.Bind(p.Slug),
		scope.Bind(p.Description),
		scope.Bind(p.Price),
		scope.Bind(p.Category),
		scope.Bind(textArray(p.Images)),
		scope.Bind(textArray(p.Tags)),
		scope.Bind(p.IsActive),
		scope.Clause(),
	)

	err = r.db.QueryRowxContext(ctx, query, scope.Args()...).Scan(&p.Stock, &p.UpdatedAt)
	if err != nil {
		if core.IsUniqueViolation(err) {
			return fmt.Errorf("update product: %w", core.ErrDuplicateKey)
		}
		return core.NoRows("update product", err, core.ErrProductNotFound)
	}

	return nil
}

func (r *repository) SetActive(ctx context.Context, tenantID, id string, active bool) error {
	scope, err := core.Scope(tenantID)
	if err != nil {
		return fmt.Errorf("set product active: %w", err)
	}
	scope.Eq("id", id)

	query := fmt.Sprintf(
		"UPDATE products SET is_active = %s, updated_at = NOW() WHERE %s",
		scope.Bind(active), scope.Clause(),
	)

	res, err := r.db.ExecContext(ctx, query, scope.Args()...)
	if err != nil {
		return fmt.Errorf("set product active: %w", err)
	}
	return core.RequireAffected("set product active", res, core.ErrProductNotFound)
}

func (r *repository) Delete(ctx context.Context, tenantID, id string) error {
	scope, err := core.Scope(tenantID)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	scope.Eq("id", id)

	res, err := r.db.ExecContext(ctx,
		fmt.Sprintf("DELETE FROM products WHERE %s", scope.Clause()),
		scope.Args()...,
	)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	return core.RequireAffected("delete product", res, core.ErrProductNotFound)
}

// AdjustStock applies delta in a single statement that refuses to take
// stock below zero. When no row changes it tells a missing product apart
// from a short one.
func (r *repository) AdjustStock(
	ctx context.Context,
	tenantID, id string,
	delta int,
) (*Product, error) {
	scope, err := core.Scope(tenantID)
	if err != nil {
		return nil, fmt.Errorf("adjust stock: %w", err)
	}
	scope.Eq("id", id)
	d := scope.Bind(delta)
	scope.Where(fmt.Sprintf("stock + %s >= 0", d))

	query := fmt.Sprintf(`
		UPDATE products
		SET stock = stock + %s, updated_at = NOW()
		WHERE %s
		RETURNING %s`, d, scope.Clause(), productColumns)

	var p Product
	err = r.db.GetContext(ctx, &p, query, scope.Args()...)
	if err == nil {
		return &p, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("adjust stock: %w", err)
	}

	if _, err := r.GetByID(ctx, tenantID, id); err != nil {
		return nil, fmt.Errorf("adjust stock: %w", err)
	}
	return nil, fmt.Errorf("adjust stock: %w", core.ErrInsufficientStock)
}

// textArray keeps nil slices from being written as NULL.
func textArray(s pq.StringArray) pq.StringArray {
	if s == nil {
		return pq.StringArray{}
	}
	return s
}
