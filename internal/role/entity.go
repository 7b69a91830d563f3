// AngelaMos | 2026
// entity.go

package role

import (
	"time"

	"github.com/lib/pq"

	"github.com/Fr4nk017/La-ruta-el-Pastelazo-Backend/internal/authz"
)

type Role struct {
	ID          string         `db:"id"`
	TenantID    string         `db:"tenant_id"`
	Name        string         `db:"name"`
	Slug        string         `db:"slug"`
	Description string         `db:"description"`
	Permissions pq.StringArray `db:"permissions"`
	Priority    int            `db:"priority"`
	IsSystem    bool           `db:"is_system"`
	IsActive    bool           `db:"is_active"`
	CreatedAt   time.Time      `db:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at"`
}

func (r *Role) PermissionSet() authz.Set {
	return authz.FromStrings(r.Permissions)
}
