// AngelaMos | 2026
// entity.go

package tenant

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Fr4nk017/La-ruta-el-Pastelazo-Backend/internal/middleware"
)

const (
	StatusTrial     = "trial"
	StatusActive    = "active"
	StatusInactive  = "inactive"
	StatusSuspended = "suspended"
)

const (
	PlanFree       = "free"
	PlanBasic      = "basic"
	PlanPremium    = "premium"
	PlanEnterprise = "enterprise"
)

// Address is stored as a JSONB document.
type Address struct {
	Street     string `json:"street,omitempty"`
	City       string `json:"city,omitempty"`
	State      string `json:"state,omitempty"`
	Country    string `json:"country,omitempty"`
	PostalCode string `json:"postal_code,omitempty"`
}

func (a Address) Value() (driver.Value, error) {
	return json.Marshal(a)
}

func (a *Address) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*a = Address{}
		return nil
	case []byte:
		return json.Unmarshal(v, a)
	case string:
		return json.Unmarshal([]byte(v), a)
	default:
		return fmt.Errorf("address: unsupported type %T", src)
	}
}

type Tenant struct {
	ID            string     `db:"id"`
	Name          string     `db:"name"`
	Slug          string     `db:"slug"`
	Domain        *string    `db:"domain"`
	ContactEmail  string     `db:"contact_email"`
	ContactPhone  string     `db:"contact_phone"`
	Address       Address    `db:"address"`
	Status        string     `db:"status"`
	Currency      string     `db:"currency"`
	Language      string     `db:"language"`
	Timezone      string     `db:"timezone"`
	Plan          string     `db:"plan"`
	PlanStartDate time.Time  `db:"plan_start_date"`
	PlanEndDate   *time.Time `db:"plan_end_date"`
	PlanIsActive  bool       `db:"plan_is_active"`
	Logo          string     `db:"logo"`
	CreatedAt     time.Time  `db:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at"`
}

// SubscriptionActive is false once the plan is switched off or its end
// date has passed.
func (t *Tenant) SubscriptionActive(now time.Time) bool {
	if !t.PlanIsActive {
		return false
	}
	return t.PlanEndDate == nil || t.PlanEndDate.After(now)
}

// CanServe reports whether the tenant may receive tenant-scoped traffic.
func (t *Tenant) CanServe(now time.Time) bool {
	if t.Status != StatusActive && t.Status != StatusTrial {
		return false
	}
	return t.SubscriptionActive(now)
}

func (t *Tenant) Info() *middleware.TenantInfo {
	return &middleware.TenantInfo{
		ID:       t.ID,
		Slug:     t.Slug,
		Name:     t.Name,
		Status:   t.Status,
		Plan:     t.Plan,
		Currency: t.Currency,
	}
}

// identifiers are the cache keys a tenant can be resolved under.
func (t *Tenant) identifiers() []string {
	keys := []string{t.ID, t.Slug}
	if t.Domain != nil && *t.Domain != "" {
		keys = append(keys, *t.Domain)
	}
	return keys
}

type Stats struct {
	Users       int `db:"users"        json:"users"`
	ActiveUsers int `db:"active_users" json:"active_users"`
	Roles       int `db:"roles"        json:"roles"`
	Products    int `db:"products"     json:"products"`
	Orders      int `db:"orders"       json:"orders"`
}
