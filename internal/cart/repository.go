// AngelaMos | 2026
// repository.go

package cart

import (
	"context"
	"fmt"

	"github.com/Fr4nk017/La-ruta-el-Pastelazo-Backend/internal/core"
)

type Repository interface {
	// GetOpen returns the user's open cart. forUpdate locks the row for
	// the rest of the surrounding transaction.
	GetOpen(ctx context.Context, tenantID, userID string, forUpdate bool) (*Cart, error)
	Create(ctx context.Context, c *Cart) error
	Save(ctx context.Context, c *Cart) error
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

const cartColumns = `id, tenant_id, user_id, items, total, status, created_at, updated_at`

func (r *repository) GetOpen(
	ctx context.Context,
	tenantID, userID string,
	forUpdate bool,
) (*Cart, error) {
	scope, err := core.Scope(tenantID)
	if err != nil {
		return nil, fmt.Errorf("get cart: %w", err)
	}
	scope.Eq("user_id", userID).Eq("status", StatusOpen)

	query := fmt.Sprintf(`SELECT %s FROM carts WHERE %s`, cartColumns, scope.Clause())
	if forUpdate {
		query += " FOR UPDATE"
	}

	var c Cart
	if err := r.db.GetContext(ctx, &c, query, scope.Args()...); err != nil {
		return nil, core.NoRows("get cart", err, core.ErrNotFound)
	}
	return &c, nil
}

// Create fails with ErrDuplicateKey when the user already has an open
// cart; the partial unique index enforces one per tenant and user.
func (r *repository) Create(ctx context.Context, c *Cart) error {
	scope, err := core.Scope(c.TenantID)
	if err != nil {
		return fmt.Errorf("create cart: %w", err)
	}
	c.Recompute()

	query := `
		INSERT INTO carts (id, tenant_id, user_id, items, total, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at`

	err = r.db.GetContext(ctx, c, query,
		c.ID,
		scope.TenantID(),
		c.UserID,
		c.Items,
		c.Total,
		c.Status,
	)
	if err != nil {
		if core.IsUniqueViolation(err) {
			return fmt.Errorf("create cart: %w", core.ErrDuplicateKey)
		}
		return fmt.Errorf("create cart: %w", err)
	}
	return nil
}

func (r *repository) Save(ctx context.Context, c *Cart) error {
	scope, err := core.Scope(c.TenantID)
	if err != nil {
		return fmt.Errorf("save cart: %w", err)
	}
	scope.Eq("id", c.ID)
	c.Recompute()

	query := fmt.Sprintf(`
		UPDATE carts
		SET items = %s, total = %s, status = %s, updated_at = NOW()
		WHERE %s
		RETURNING updated_at`,
		scope.Bind(c.Items),
		scope.Bind(c.Total),
		scope.Bind(c.Status),
		scope.Clause(),
	)

	if err := r.db.GetContext(ctx, &c.UpdatedAt, query, scope.Args()...); err != nil {
		return core.NoRows("save cart", err, core.ErrNotFound)
	}
	return nil
}
