// AngelaMos | 2026
// entity.go

package order

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

const (
	PaymentNone     = "none"
	PaymentCard     = "card"
	PaymentTransfer = "transfer"
	PaymentCash     = "cash"
	PaymentTest     = "test"
)

// Line snapshots the product as it was when the order was placed.
type Line struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Image     string `json:"image"`
	Quantity  int    `json:"quantity"`
	UnitPrice int64  `json:"unit_price"`
	LineTotal int64  `json:"line_total"`
}

type Lines []Line

func (l Lines) Value() (driver.Value, error) {
	if l == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(l)
}

func (l *Lines) Scan(src any) error {
	return scanJSON("order lines", src, l)
}

type ShippingAddress struct {
	Recipient  string `json:"recipient,omitempty"   validate:"omitempty,max=100"`
	Phone      string `json:"phone,omitempty"       validate:"omitempty,max=30"`
	Street     string `json:"street,omitempty"      validate:"omitempty,max=200"`
	City       string `json:"city,omitempty"        validate:"omitempty,max=100"`
	State      string `json:"state,omitempty"       validate:"omitempty,max=100"`
	PostalCode string `json:"postal_code,omitempty" validate:"omitempty,max=20"`
	Country    string `json:"country,omitempty"     validate:"omitempty,max=100"`
}

func (a ShippingAddress) Value() (driver.Value, error) {
	return json.Marshal(a)
}

func (a *ShippingAddress) Scan(src any) error {
	return scanJSON("shipping address", src, a)
}

func scanJSON(what string, src, dst any) error {
	switch v := src.(type) {
	case nil:
		return nil
	case []byte:
		return json.Unmarshal(v, dst)
	case string:
		return json.Unmarshal([]byte(v), dst)
	default:
		return fmt.Errorf("%s: unsupported type %T", what, src)
	}
}

type Order struct {
	ID              string          `db:"id"`
	TenantID        string          `db:"tenant_id"`
	UserID          string          `db:"user_id"`
	Items           Lines           `db:"items"`
	Subtotal        int64           `db:"subtotal"`
	Discount        int64           `db:"discount"`
	Total           int64           `db:"total"`
	CouponCode      string          `db:"coupon_code"`
	Currency        string          `db:"currency"`
	Status          Status          `db:"status"`
	PaymentMethod   string          `db:"payment_method"`
	ShippingAddress ShippingAddress `db:"shipping_address"`
	Notes           string          `db:"notes"`
	CreatedAt       time.Time       `db:"created_at"`
	UpdatedAt       time.Time       `db:"updated_at"`
}

// price fills line totals, the subtotal and the discounted total.
func (o *Order) price(discountPct int64) {
	var subtotal int64
	for i := range o.Items {
		o.Items[i].LineTotal = o.Items[i].UnitPrice * int64(o.Items[i].Quantity)
		subtotal += o.Items[i].LineTotal
	}
	o.Subtotal = subtotal
	o.Discount = subtotal * discountPct / 100
	o.Total = subtotal - o.Discount
}
