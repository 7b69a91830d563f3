// AngelaMos | 2026
// dto.go

package cart

import (
	"time"
)

type AddItemRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
	Quantity  int    `json:"quantity"   validate:"omitempty,min=1,max=999"`
}

// SetQuantityRequest accepts zero or negative to drop the line.
type SetQuantityRequest struct {
	Quantity *int `json:"quantity" validate:"required,max=999"`
}

type CartResponse struct {
	ID        string    `json:"id"`
	Items     []Item    `json:"items"`
	Total     int64     `json:"total"`
	Currency  string    `json:"currency"`
	Status    string    `json:"status"`
	UpdatedAt time.Time `json:"updated_at"`
}

func ToCartResponse(c *Cart, currency string) CartResponse {
	items := []Item(c.Items)
	if items == nil {
		items = []Item{}
	}
	return CartResponse{
		ID:        c.ID,
		Items:     items,
		Total:     c.Total,
		Currency:  currency,
		Status:    c.Status,
		UpdatedAt: c.UpdatedAt,
	}
}
