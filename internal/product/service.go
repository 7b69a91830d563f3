// AngelaMos | 2026
// service.go

package product

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"go.opentelemetry.io/otel/attribute"

	"github.com/Fr4nk017/La-ruta-el-Pastelazo-Backend/internal/core"
	"github.com/Fr4nk017/La-ruta-el-Pastelazo-Backend/internal/metrics"
)

type Service struct {
	repo     Repository
	currency string
	metrics  *metrics.Metrics
}

func NewService(repo Repository, currency string, m *metrics.Metrics) *Service {
	return &Service{repo: repo, currency: currency, metrics: m}
}

// List returns only active products unless includeInactive is set, in
// which case the caller's is_active filter is honoured as given.
func (s *Service) List(
	ctx context.Context,
	tenantID string,
	params ListProductsParams,
	includeInactive bool,
) ([]Product, int, error) {
	if !includeInactive {
		active := true
		params.Active = &active
	}
	return s.repo.List(ctx, tenantID, params)
}

// Get hides inactive products from callers that cannot edit the catalog.
func (s *Service) Get(
	ctx context.Context,
	tenantID, id string,
	includeInactive bool,
) (*Product, error) {
	p, err := s.repo.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if !p.IsActive && !includeInactive {
		return nil, fmt.Errorf("get product: %w", core.ErrProductNotFound)
	}
	return p, nil
}

func (s *Service) Create(
	ctx context.Context,
	tenantID string,
	req CreateProductRequest,
) (*Product, error) {
	slug := core.Slugify(req.Name)
	if slug == "" {
		return nil, core.ValidationFailed("name must contain letters or digits", nil)
	}

	p := &Product{
		ID:          uuid.New().String(),
		TenantID:    tenantID,
		Name:        req.Name,
		Slug:        slug,
		Description: req.Description,
		Price:       req.Price,
		Currency:    s.currency,
		Stock:       req.Stock,
		Category:    req.Category,
		Images:      pq.StringArray(req.Images),
		Tags:        pq.StringArray(req.Tags),
		IsActive:    true,
	}
	if req.IsActive != nil {
		p.IsActive = *req.IsActive
	}

	err := s.repo.Create(ctx, p)
	if errors.Is(err, core.ErrDuplicateKey) {
		// Same name as an existing product: keep the readable slug and
		// disambiguate it once.
		p.Slug = uniqueSuffix(slug)
		err = s.repo.Create(ctx, p)
	}
	if err != nil {
		if errors.Is(err, core.ErrDuplicateKey) {
			return nil, core.DuplicateError("slug")
		}
		return nil, err
	}

	core.AddSpanEvent(ctx, "product.created",
		core.AttrTenantID.String(p.TenantID),
		attribute.String("product.slug", p.Slug),
	)
	return p, nil
}

func (s *Service) Update(
	ctx context.Context,
	tenantID, id string,
	req UpdateProductRequest,
) (*Product, error) {
	return s.modify(ctx, tenantID, id, func(p *Product) {
		p.Name = req.Name
		p.Description = req.Description
		p.Price = req.Price
		p.Category = req.Category
		p.Images = pq.StringArray(req.Images)
		p.Tags = pq.StringArray(req.Tags)
		p.IsActive = req.IsActive
	})
}

func (s *Service) Patch(
	ctx context.Context,
	tenantID, id string,
	req PatchProductRequest,
) (*Product, error) {
	return s.modify(ctx, tenantID, id, func(p *Product) {
		if req.Name != nil {
			p.Name = *req.Name
		}
		if req.Description != nil {
			p.Description = *req.Description
		}
		if req.Price != nil {
			p.Price = *req.Price
		}
		if req.Category != nil {
			p.Category = *req.Category
		}
		if req.Images != nil {
			p.Images = pq.StringArray(*req.Images)
		}
		if req.Tags != nil {
			p.Tags = pq.StringArray(*req.Tags)
		}
		if req.IsActive != nil {
			p.IsActive = *req.IsActive
		}
	})
}

// modify re-derives the slug only when the name changed.
func (s *Service) modify(
	ctx context.Context,
	tenantID, id string,
	apply func(*Product),
) (*Product, error) {
	p, err := s.repo.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	oldName := p.Name
	apply(p)

	if p.Name != oldName {
		slug := core.Slugify(p.Name)
		if slug == "" {
			return nil, core.ValidationFailed("name must contain letters or digits", nil)
		}
		p.Slug = slug
	}

	if err := s.repo.Update(ctx, p); err != nil {
		if errors.Is(err, core.ErrDuplicateKey) {
			return nil, core.DuplicateError("slug")
		}
		return nil, err
	}
	return p, nil
}

// Deactivate is the soft delete: the product leaves the public catalog
// but order history keeps resolving it.
func (s *Service) Deactivate(ctx context.Context, tenantID, id string) error {
	return s.repo.SetActive(ctx, tenantID, id, false)
}

func (s *Service) Delete(ctx context.Context, tenantID, id string) error {
	return s.repo.Delete(ctx, tenantID, id)
}

func (s *Service) AdjustStock(
	ctx context.Context,
	tenantID, id string,
	delta int,
) (*Product, error) {
	p, err := s.repo.AdjustStock(ctx, tenantID, id, delta)
	if err != nil {
		if errors.Is(err, core.ErrInsufficientStock) {
			s.metrics.StockRejected()
		}
		return nil, err
	}
	return p, nil
}

func uniqueSuffix(slug string) string {
	return slug + "-" + uuid.New().String()[:6]
}
