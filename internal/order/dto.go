// AngelaMos | 2026
// dto.go

package order

import (
	"time"
)

// LineRequest carries no price; whatever a client sends for one is
// dropped by the decoder.
type LineRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
	Quantity  int    `json:"quantity"   validate:"required,min=1,max=999"`
}

type CreateOrderRequest struct {
	Items           []LineRequest    `json:"items"            validate:"required,min=1,max=50,dive"`
	CouponCode      string           `json:"coupon_code"      validate:"max=32"`
	PaymentMethod   string           `json:"payment_method"   validate:"omitempty,oneof=none card transfer cash test"`
	ShippingAddress *ShippingAddress `json:"shipping_address"`
	Notes           string           `json:"notes"            validate:"max=500"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

type ListOrdersParams struct {
	Page     int
	PageSize int
	Status   Status
	UserID   string
}

func (p *ListOrdersParams) Normalize() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = 10
	}
	if p.PageSize > 100 {
		p.PageSize = 100
	}
}

func (p *ListOrdersParams) Offset() int {
	return (p.Page - 1) * p.PageSize
}

type OrderResponse struct {
	ID              string          `json:"id"`
	UserID          string          `json:"user_id"`
	Items           []Line          `json:"items"`
	Subtotal        int64           `json:"subtotal"`
	Discount        int64           `json:"discount"`
	Total           int64           `json:"total"`
	CouponCode      string          `json:"coupon_code,omitempty"`
	Currency        string          `json:"currency"`
	Status          Status          `json:"status"`
	PaymentMethod   string          `json:"payment_method"`
	ShippingAddress ShippingAddress `json:"shipping_address"`
	Notes           string          `json:"notes,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

func ToOrderResponse(o *Order) OrderResponse {
	items := []Line(o.Items)
	if items == nil {
		items = []Line{}
	}
	return OrderResponse{
		ID:              o.ID,
		UserID:          o.UserID,
		Items:           items,
		Subtotal:        o.Subtotal,
		Discount:        o.Discount,
		Total:           o.Total,
		CouponCode:      o.CouponCode,
		Currency:        o.Currency,
		Status:          o.Status,
		PaymentMethod:   o.PaymentMethod,
		ShippingAddress: o.ShippingAddress,
		Notes:           o.Notes,
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
	}
}

func ToOrderResponseList(orders []Order) []OrderResponse {
	out := make([]OrderResponse, 0, len(orders))
	for i := range orders {
		out = append(out, ToOrderResponse(&orders[i]))
	}
	return out
}
