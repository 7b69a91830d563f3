// AngelaMos | 2026
// dto.go

package product

import (
	"time"
)

type CreateProductRequest struct {
	Name        string   `json:"name"        validate:"required,min=2,max=100"`
	Description string   `json:"description" validate:"max=2000"`
	Price       int64    `json:"price"       validate:"gte=0"`
	Stock       int      `json:"stock"       validate:"gte=0"`
	Category    string   `json:"category"    validate:"max=50"`
	Images      []string `json:"images"      validate:"max=10,dive,max=2048"`
	Tags        []string `json:"tags"        validate:"max=20,dive,max=30"`
	IsActive    *bool    `json:"is_active"`
}

// UpdateProductRequest replaces every editable field. Stock is left alone;
// it only moves through the stock adjustment.
type UpdateProductRequest struct {
	Name        string   `json:"name"        validate:"required,min=2,max=100"`
	Description string   `json:"description" validate:"max=2000"`
	Price       int64    `json:"price"       validate:"gte=0"`
	Category    string   `json:"category"    validate:"max=50"`
	Images      []string `json:"images"      validate:"max=10,dive,max=2048"`
	Tags        []string `json:"tags"        validate:"max=20,dive,max=30"`
	IsActive    bool     `json:"is_active"`
}

type PatchProductRequest struct {
	Name        *string   `json:"name,omitempty"        validate:"omitempty,min=2,max=100"`
	Description *string   `json:"description,omitempty" validate:"omitempty,max=2000"`
	Price       *int64    `json:"price,omitempty"       validate:"omitempty,gte=0"`
	Category    *string   `json:"category,omitempty"    validate:"omitempty,max=50"`
	Images      *[]string `json:"images,omitempty"      validate:"omitempty,max=10"`
	Tags        *[]string `json:"tags,omitempty"        validate:"omitempty,max=20"`
	IsActive    *bool     `json:"is_active,omitempty"`
}

type AdjustStockRequest struct {
	Delta int `json:"delta" validate:"required"`
}

type ProductResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description"`
	Price       int64     `json:"price"`
	Currency    string    `json:"currency"`
	Stock       int       `json:"stock"`
	Category    string    `json:"category"`
	Images      []string  `json:"images"`
	Tags        []string  `json:"tags"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type ListProductsParams struct {
	Page     int
	PageSize int
	Category string
	Search   string
	Active   *bool
}

func (p *ListProductsParams) Normalize() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = 20
	}
	if p.PageSize > 100 {
		p.PageSize = 100
	}
}

func (p *ListProductsParams) Offset() int {
	return (p.Page - 1) * p.PageSize
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func ToProductResponse(p *Product) ProductResponse {
	return ProductResponse{
		ID:          p.ID,
		Name:        p.Name,
		Slug:        p.Slug,
		Description: p.Description,
		Price:       p.Price,
		Currency:    p.Currency,
		Stock:       p.Stock,
		Category:    p.Category,
		Images:      nonNil(p.Images),
		Tags:        nonNil(p.Tags),
		IsActive:    p.IsActive,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func ToProductResponseList(products []Product) []ProductResponse {
	out := make([]ProductResponse, 0, len(products))
	for i := range products {
		out = append(out, ToProductResponse(&products[i]))
	}
	return out
}
