// AngelaMos | 2026
// repository.go

package order

import (
	"context"
	"fmt"

	"github.com/Fr4nk017/La-ruta-el-Pastelazo-Backend/internal/core"
)

type Repository interface {
	Create(ctx context.Context, o *Order) error
	GetByID(ctx context.Context, tenantID, id string) (*Order, error)
	// GetForUpdate locks the order row for the surrounding transaction.
	GetForUpdate(ctx context.Context, tenantID, id string) (*Order, error)
	List(ctx context.Context, tenantID string, params ListOrdersParams) ([]Order, int, error)
	SetStatus(ctx context.Context, o *Order, status Status) error
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

const orderColumns = `id, tenant_id, user_id, items, subtotal, discount, total,
		       coupon_code, currency, status, payment_method, shipping_address,
		       notes, created_at, updated_at`

func (r *repository) Create(ctx context.Context, o *Order) error {
	scope, err := core.Scope(o.TenantID)
	if err != nil {
		return fmt.Errorf("create order: %w", err)
	}

	query := `
		INSERT INTO orders (id, tenant_id, user_id, items, subtotal, discount,
		                    total, coupon_code, currency, status, payment_method,
		                    shipping_address, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING created_at, updated_at`

	err = r.db.GetContext(ctx, o, query,
		o.ID,
		scope.TenantID(),
		o.UserID,
		o.Items,
		o.Subtotal,
		o.Discount,
		o.Total,
		o.CouponCode,
		o.Currency,
		o.Status,
		o.PaymentMethod,
		o.ShippingAddress,
		o.Notes,
	)
	if err != nil {
		return fmt.Errorf("create order: %w", err)
	}
	return nil
}

func (r *repository) get(ctx context.Context, op, tenantID, id, suffix string) (*Order, error) {
	scope, err := core.Scope(tenantID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	scope.Eq("id", id)

	query := fmt.Sprintf(`SELECT %s FROM orders WHERE %s%s`, orderColumns, scope.Clause(), suffix)

	var o Order
	if err := r.db.GetContext(ctx, &o, query, scope.Args()...); err != nil {
		return nil, core.NoRows(op, err, core.ErrNotFound)
	}
	return &o, nil
}

func (r *repository) GetByID(ctx context.Context, tenantID, id string) (*Order, error) {
	return r.get(ctx, "get order", tenantID, id, "")
}

func (r *repository) GetForUpdate(ctx context.Context, tenantID, id string) (*Order, error) {
	return r.get(ctx, "lock order", tenantID, id, " FOR UPDATE")
}

func (r *repository) List(
	ctx context.Context,
	tenantID string,
	params ListOrdersParams,
) ([]Order, int, error) {
	params.Normalize()

	scope, err := core.Scope(tenantID)
	if err != nil {
		return nil, 0, fmt.Errorf("list orders: %w", err)
	}

	if params.UserID != "" {
		scope.Eq("user_id", params.UserID)
	}
	if params.Status != "" {
		scope.Eq("status", params.Status)
	}

	var total int
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM orders WHERE %s", scope.Clause())
	if err := r.db.GetContext(ctx, &total, countQuery, scope.Args()...); err != nil {
		return nil, 0, fmt.Errorf("count orders: %w", err)
	}

	page, args := scope.Page(params.PageSize, params.Offset())
	query := fmt.Sprintf(`
		SELECT %s
		FROM orders
		WHERE %s
		ORDER BY created_at DESC
		%s`, orderColumns, scope.Clause(), page)

	var orders []Order
	if err := r.db.SelectContext(ctx, &orders, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list orders: %w", err)
	}

	return orders, total, nil
}

func (r *repository) SetStatus(ctx context.Context, o *Order, status Status) error {
	scope, err := core.Scope(o.TenantID)
	if err != nil {
		return fmt.Errorf("set order status: %w", err)
	}
	scope.Eq("id", o.ID)

	query := fmt.Sprintf(`
		UPDATE orders
		SET status = %s, updated_at = NOW()
		WHERE %s
		RETURNING updated_at`,
		scope.Bind(status),
		scope.Clause(),
	)

	if err := r.db.GetContext(ctx, &o.UpdatedAt, query, scope.Args()...); err != nil {
		return core.NoRows("set order status", err, core.ErrNotFound)
	}
	o.Status = status
	return nil
}
