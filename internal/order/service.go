// AngelaMos | 2026
// service.go

package order

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.opentelemetry.io/otel/attribute"

	"github.com/Fr4nk017/La-ruta-el-Pastelazo-Backend/internal/core"
	"github.com/Fr4nk017/La-ruta-el-Pastelazo-Backend/internal/metrics"
	"github.com/Fr4nk017/La-ruta-el-Pastelazo-Backend/internal/product"
)

type Service struct {
	db       *sqlx.DB
	repo     Repository
	currency string
	metrics  *metrics.Metrics
}

func NewService(db *sqlx.DB, repo Repository, currency string, m *metrics.Metrics) *Service {
	return &Service{db: db, repo: repo, currency: currency, metrics: m}
}

// Viewer is who is asking: their own orders are always visible, everyone
// else's only with orders:viewAll.
type Viewer struct {
	UserID  string
	ViewAll bool
}

func (v Viewer) owns(o *Order) bool {
	return v.ViewAll || o.UserID == v.UserID
}

// mergeLines folds repeated product ids into one line, keeping the order
// in which they first appear.
func mergeLines(reqs []LineRequest) []LineRequest {
	idx := make(map[string]int, len(reqs))
	out := make([]LineRequest, 0, len(reqs))
	for _, r := range reqs {
		if i, ok := idx[r.ProductID]; ok {
			out[i].Quantity += r.Quantity
			continue
		}
		idx[r.ProductID] = len(out)
		out = append(out, r)
	}
	return out
}

// Create prices every line from the live catalog and takes the stock in
// the same transaction, so one bad line leaves no stock moved.
func (s *Service) Create(
	ctx context.Context,
	tenantID, userID string,
	req CreateOrderRequest,
) (*Order, error) {
	if userID == "" {
		return nil, core.ErrUnauthorized
	}

	code, pct, ok := lookupCoupon(req.CouponCode)
	if !ok {
		return nil, core.ValidationFailed("unknown coupon code", map[string]string{"field": "coupon_code"})
	}

	ctx, span := core.StartSpan(ctx, "order.create",
		core.AttrTenantID.String(tenantID),
		core.AttrUserID.String(userID),
		attribute.Int("order.lines", len(req.Items)),
	)
	defer span.End()

	o := &Order{
		ID:            uuid.New().String(),
		TenantID:      tenantID,
		UserID:        userID,
		CouponCode:    code,
		Currency:      s.currency,
		Status:        StatusPending,
		PaymentMethod: req.PaymentMethod,
		Notes:         req.Notes,
	}
	if o.PaymentMethod == "" {
		o.PaymentMethod = PaymentNone
	}
	if req.ShippingAddress != nil {
		o.ShippingAddress = *req.ShippingAddress
	}

	lines := mergeLines(req.Items)
	err := core.InTx(ctx, s.db, func(tx *sqlx.Tx) error {
		products := product.NewRepository(tx)

		o.Items = make(Lines, 0, len(lines))
		for _, l := range lines {
			p, err := products.GetByID(ctx, tenantID, l.ProductID)
			if err != nil {
				return err
			}
			if !p.IsActive {
				return core.NewAppError(
					core.ErrProductUnavailable,
					"product unavailable: "+p.Name,
					http.StatusBadRequest,
					"PRODUCT_UNAVAILABLE",
				).WithDetails(map[string]string{"product_id": p.ID})
			}

			if _, err := products.AdjustStock(ctx, tenantID, p.ID, -l.Quantity); err != nil {
				if errors.Is(err, core.ErrInsufficientStock) {
					s.metrics.StockRejected()
					return core.NewAppError(
						core.ErrInsufficientStock,
						"insufficient stock: "+p.Name,
						http.StatusBadRequest,
						"INSUFFICIENT_STOCK",
					).WithDetails(map[string]any{"product_id": p.ID, "available": p.Stock})
				}
				return err
			}

			o.Items = append(o.Items, Line{
				ProductID: p.ID,
				Name:      p.Name,
				Image:     p.FirstImage(),
				Quantity:  l.Quantity,
				UnitPrice: p.Price,
			})
		}

		o.price(pct)
		return NewRepository(tx).Create(ctx, o)
	})
	if err != nil {
		core.SetSpanError(ctx, err)
		return nil, err
	}

	s.metrics.OrderCreated(o.Currency)
	slog.InfoContext(ctx, "order created",
		"order_id", o.ID,
		"tenant_id", tenantID,
		"total", o.Total,
	)
	return o, nil
}

func (s *Service) List(
	ctx context.Context,
	tenantID string,
	viewer Viewer,
	params ListOrdersParams,
) ([]Order, int, error) {
	if !viewer.ViewAll {
		params.UserID = viewer.UserID
	}
	return s.repo.List(ctx, tenantID, params)
}

// Get reports another user's order as missing rather than forbidden.
func (s *Service) Get(ctx context.Context, tenantID string, viewer Viewer, id string) (*Order, error) {
	o, err := s.repo.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if !viewer.owns(o) {
		return nil, fmt.Errorf("get order: %w", core.ErrNotFound)
	}
	return o, nil
}

func (s *Service) UpdateStatus(ctx context.Context, tenantID, id, status string) (*Order, error) {
	to, ok := ParseStatus(status)
	if !ok {
		return nil, core.ValidationFailed("unknown order status", map[string]string{"status": status})
	}
	return s.transition(ctx, tenantID, id, to, func(*Order) error { return nil })
}

func (s *Service) Cancel(ctx context.Context, tenantID string, viewer Viewer, id string) (*Order, error) {
	return s.transition(ctx, tenantID, id, StatusCancelled, func(o *Order) error {
		if !viewer.owns(o) {
			return fmt.Errorf("cancel order: %w", core.ErrNotFound)
		}
		return nil
	})
}

// transition moves a locked order one step. Cancelling puts the stock of
// every line back.
func (s *Service) transition(
	ctx context.Context,
	tenantID, id string,
	to Status,
	allow func(*Order) error,
) (*Order, error) {
	var out *Order
	err := core.InTx(ctx, s.db, func(tx *sqlx.Tx) error {
		orders := NewRepository(tx)

		o, err := orders.GetForUpdate(ctx, tenantID, id)
		if err != nil {
			return err
		}
		if err := allow(o); err != nil {
			return err
		}
		if !o.Status.CanTransition(to) {
			return core.NewAppError(
				core.ErrInvalidStatusTransition,
				fmt.Sprintf("cannot move order from %s to %s", o.Status, to),
				http.StatusBadRequest,
				"INVALID_STATUS_TRANSITION",
			)
		}

		if to == StatusCancelled {
			if err := restock(ctx, product.NewRepository(tx), tenantID, o.Items); err != nil {
				return err
			}
		}

		if err := orders.SetStatus(ctx, o, to); err != nil {
			return err
		}
		out = o
		return nil
	})
	if err != nil {
		return nil, err
	}

	core.AddSpanEvent(ctx, "order.status_changed",
		attribute.String("order.id", out.ID),
		attribute.String("order.status", string(out.Status)),
	)
	return out, nil
}

// restock skips products deleted since the order was placed.
func restock(ctx context.Context, products product.Repository, tenantID string, lines Lines) error {
	for _, l := range lines {
		_, err := products.AdjustStock(ctx, tenantID, l.ProductID, l.Quantity)
		if errors.Is(err, core.ErrProductNotFound) {
			slog.WarnContext(ctx, "restock skipped, product gone",
				"product_id", l.ProductID,
			)
			continue
		}
		if err != nil {
			return err
		}
	}
	return nil
}
