// AngelaMos | 2026
// entity.go

package cart

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

const (
	StatusOpen      = "open"
	StatusConverted = "converted"
	StatusAbandoned = "abandoned"
)

// Item prices are captured when the product is first added.
type Item struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
	UnitPrice int64  `json:"unit_price"`
	Subtotal  int64  `json:"subtotal"`
}

// Items is stored as a JSONB array.
type Items []Item

func (it Items) Value() (driver.Value, error) {
	if it == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(it)
}

func (it *Items) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*it = Items{}
		return nil
	case []byte:
		return json.Unmarshal(v, it)
	case string:
		return json.Unmarshal([]byte(v), it)
	default:
		return fmt.Errorf("cart items: unsupported type %T", src)
	}
}

type Cart struct {
	ID        string    `db:"id"`
	TenantID  string    `db:"tenant_id"`
	UserID    string    `db:"user_id"`
	Items     Items     `db:"items"`
	Total     int64     `db:"total"`
	Status    string    `db:"status"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (c *Cart) find(productID string) int {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			return i
		}
	}
	return -1
}

// Add merges into an existing line, which keeps its original price.
func (c *Cart) Add(productID, name string, unitPrice int64, qty int) {
	if i := c.find(productID); i >= 0 {
		c.Items[i].Quantity += qty
		c.Items[i].Subtotal = c.Items[i].UnitPrice * int64(c.Items[i].Quantity)
		return
	}
	c.Items = append(c.Items, Item{
		ProductID: productID,
		Name:      name,
		Quantity:  qty,
		UnitPrice: unitPrice,
		Subtotal:  unitPrice * int64(qty),
	})
}

// SetQuantity removes the line when qty <= 0. It reports false when the
// product is not in the cart.
func (c *Cart) SetQuantity(productID string, qty int) bool {
	i := c.find(productID)
	if i < 0 {
		return false
	}
	if qty <= 0 {
		c.Items = append(c.Items[:i], c.Items[i+1:]...)
		return true
	}
	c.Items[i].Quantity = qty
	c.Items[i].Subtotal = c.Items[i].UnitPrice * int64(qty)
	return true
}

func (c *Cart) Remove(productID string) bool {
	return c.SetQuantity(productID, 0)
}

func (c *Cart) Clear() {
	c.Items = Items{}
}

// Recompute derives Total from the lines. Repositories call it before
// every write.
func (c *Cart) Recompute() {
	var total int64
	for i := range c.Items {
		c.Items[i].Subtotal = c.Items[i].UnitPrice * int64(c.Items[i].Quantity)
		total += c.Items[i].Subtotal
	}
	c.Total = total
}
