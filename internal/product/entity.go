// AngelaMos | 2026
// entity.go

package product

import (
	"time"

	"github.com/lib/pq"
)

// Product prices are minor currency units.
type Product struct {
	ID          string         `db:"id"`
	TenantID    string         `db:"tenant_id"`
	Name        string         `db:"name"`
	Slug        string         `db:"slug"`
	Description string         `db:"description"`
	Price       int64          `db:"price"`
	Currency    string         `db:"currency"`
	Stock       int            `db:"stock"`
	Category    string         `db:"category"`
	Images      pq.StringArray `db:"images"`
	Tags        pq.StringArray `db:"tags"`
	IsActive    bool           `db:"is_active"`
	CreatedAt   time.Time      `db:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at"`
}

// FirstImage is what order lines snapshot.
func (p *Product) FirstImage() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}
