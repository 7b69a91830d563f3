// AngelaMos | 2026
// service.go

package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/Fr4nk017/La-ruta-el-Pastelazo-Backend/internal/core"
	"github.com/Fr4nk017/La-ruta-el-Pastelazo-Backend/internal/product"
)

type Service struct {
	db       *sqlx.DB
	repo     Repository
	currency string
}

func NewService(db *sqlx.DB, repo Repository, currency string) *Service {
	return &Service{db: db, repo: repo, currency: currency}
}

func (s *Service) Currency() string {
	return s.currency
}

// Get returns the user's open cart, creating an empty one on first use.
func (s *Service) Get(ctx context.Context, tenantID, userID string) (*Cart, error) {
	if userID == "" {
		return nil, core.ErrUnauthorized
	}

	c, err := s.repo.GetOpen(ctx, tenantID, userID, false)
	if err == nil {
		return c, nil
	}
	if !errors.Is(err, core.ErrNotFound) {
		return nil, err
	}

	c = &Cart{
		ID:       uuid.New().String(),
		TenantID: tenantID,
		UserID:   userID,
		Items:    Items{},
		Status:   StatusOpen,
	}
	err = s.repo.Create(ctx, c)
	if errors.Is(err, core.ErrDuplicateKey) {
		// Lost the race with a concurrent first request.
		return s.repo.GetOpen(ctx, tenantID, userID, false)
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

// mutate applies fn to the locked open cart and persists the result in
// the same transaction.
func (s *Service) mutate(
	ctx context.Context,
	tenantID, userID string,
	fn func(c *Cart, products product.Repository) error,
) (*Cart, error) {
	if _, err := s.Get(ctx, tenantID, userID); err != nil {
		return nil, err
	}

	var out *Cart
	err := core.InTx(ctx, s.db, func(tx *sqlx.Tx) error {
		carts := NewRepository(tx)

		c, err := carts.GetOpen(ctx, tenantID, userID, true)
		if err != nil {
			return err
		}
		if err := fn(c, product.NewRepository(tx)); err != nil {
			return err
		}
		if err := carts.Save(ctx, c); err != nil {
			return err
		}

		out = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Service) AddItem(
	ctx context.Context,
	tenantID, userID string,
	req AddItemRequest,
) (*Cart, error) {
	qty := req.Quantity
	if qty <= 0 {
		qty = 1
	}

	return s.mutate(ctx, tenantID, userID, func(c *Cart, products product.Repository) error {
		p, err := products.GetByID(ctx, tenantID, req.ProductID)
		if err != nil {
			return err
		}
		if !p.IsActive {
			return fmt.Errorf("add to cart: %w", core.ErrProductUnavailable)
		}

		held := 0
		if i := c.find(p.ID); i >= 0 {
			held = c.Items[i].Quantity
		}
		if held+qty > p.Stock {
			return fmt.Errorf("add to cart: %w", core.ErrInsufficientStock)
		}

		c.Add(p.ID, p.Name, p.Price, qty)
		return nil
	})
}

func (s *Service) SetQuantity(
	ctx context.Context,
	tenantID, userID, productID string,
	qty int,
) (*Cart, error) {
	return s.mutate(ctx, tenantID, userID, func(c *Cart, products product.Repository) error {
		if c.find(productID) < 0 {
			return core.NotFoundError("cart item")
		}
		if qty > 0 {
			p, err := products.GetByID(ctx, tenantID, productID)
			if err != nil {
				return err
			}
			if qty > p.Stock {
				return fmt.Errorf("set cart quantity: %w", core.ErrInsufficientStock)
			}
		}
		c.SetQuantity(productID, qty)
		return nil
	})
}

func (s *Service) RemoveItem(
	ctx context.Context,
	tenantID, userID, productID string,
) (*Cart, error) {
	return s.mutate(ctx, tenantID, userID, func(c *Cart, _ product.Repository) error {
		if !c.Remove(productID) {
			return core.NotFoundError("cart item")
		}
		return nil
	})
}

func (s *Service) Clear(ctx context.Context, tenantID, userID string) (*Cart, error) {
	return s.mutate(ctx, tenantID, userID, func(c *Cart, _ product.Repository) error {
		c.Clear()
		return nil
	})
}
