// AngelaMos | 2026
// dto.go

package tenant

import (
	"time"

	"github.com/Fr4nk017/La-ruta-el-Pastelazo-Backend/internal/role"
	"github.com/Fr4nk017/La-ruta-el-Pastelazo-Backend/internal/user"
)

type OwnerRequest struct {
	FirstName string `json:"first_name" validate:"required,min=1,max=50"`
	LastName  string `json:"last_name"  validate:"required,min=1,max=50"`
	Email     string `json:"email"      validate:"required,email,max=255"`
	Password  string `json:"password"   validate:"required,min=8,max=128"`
	Phone     string `json:"phone"      validate:"max=50"`
}

type CreateTenantRequest struct {
	Name         string        `json:"name"          validate:"required,min=2,max=100"`
	Slug         string        `json:"slug"          validate:"omitempty,max=100"`
	Domain       string        `json:"domain"        validate:"omitempty,fqdn,max=255"`
	ContactEmail string        `json:"contact_email" validate:"required,email,max=255"`
	ContactPhone string        `json:"contact_phone" validate:"max=50"`
	Address      Address       `json:"address"`
	Currency     string        `json:"currency"      validate:"omitempty,len=3"`
	Language     string        `json:"language"      validate:"omitempty,max=10"`
	Timezone     string        `json:"timezone"      validate:"omitempty,max=64"`
	Plan         string        `json:"plan"          validate:"omitempty,oneof=free basic premium enterprise"`
	Logo         string        `json:"logo"          validate:"max=2048"`
	Owner        *OwnerRequest `json:"owner,omitempty"`
}

// UpdateSettingsRequest is what a tenant's own admin may change.
type UpdateSettingsRequest struct {
	Name         *string  `json:"name,omitempty"          validate:"omitempty,min=2,max=100"`
	ContactEmail *string  `json:"contact_email,omitempty" validate:"omitempty,email,max=255"`
	ContactPhone *string  `json:"contact_phone,omitempty" validate:"omitempty,max=50"`
	Address      *Address `json:"address,omitempty"`
	Currency     *string  `json:"currency,omitempty"      validate:"omitempty,len=3"`
	Language     *string  `json:"language,omitempty"      validate:"omitempty,max=10"`
	Timezone     *string  `json:"timezone,omitempty"      validate:"omitempty,max=64"`
	Logo         *string  `json:"logo,omitempty"          validate:"omitempty,max=2048"`
}

// UpdateTenantRequest is the platform operator's update. Status is not
// part of it; that goes through the status operation.
type UpdateTenantRequest struct {
	UpdateSettingsRequest
	Slug         *string    `json:"slug,omitempty"           validate:"omitempty,max=100"`
	Domain       *string    `json:"domain,omitempty"         validate:"omitempty,max=255"`
	Plan         *string    `json:"plan,omitempty"           validate:"omitempty,oneof=free basic premium enterprise"`
	PlanEndDate  *time.Time `json:"plan_end_date,omitempty"`
	PlanIsActive *bool      `json:"plan_is_active,omitempty"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=trial active inactive suspended"`
}

type ListTenantsParams struct {
	Page     int
	PageSize int
	Status   string
	Search   string
}

func (p *ListTenantsParams) Normalize() {
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

func (p *ListTenantsParams) Offset() int {
	return (p.Page - 1) * p.PageSize
}

type SettingsResponse struct {
	Currency string `json:"currency"`
	Language string `json:"language"`
	Timezone string `json:"timezone"`
}

type SubscriptionResponse struct {
	Plan      string     `json:"plan"`
	StartDate time.Time  `json:"start_date"`
	EndDate   *time.Time `json:"end_date,omitempty"`
	IsActive  bool       `json:"is_active"`
}

type TenantResponse struct {
	ID           string               `json:"id"`
	Name         string               `json:"name"`
	Slug         string               `json:"slug"`
	Domain       string               `json:"domain,omitempty"`
	ContactEmail string               `json:"contact_email"`
	ContactPhone string               `json:"contact_phone,omitempty"`
	Address      Address              `json:"address"`
	Status       string               `json:"status"`
	Settings     SettingsResponse     `json:"settings"`
	Subscription SubscriptionResponse `json:"subscription"`
	Logo         string               `json:"logo,omitempty"`
	CreatedAt    time.Time            `json:"created_at"`
	UpdatedAt    time.Time            `json:"updated_at"`
}

type CreateTenantResponse struct {
	Tenant TenantResponse      `json:"tenant"`
	Roles  []role.RoleResponse `json:"roles"`
	Owner  *user.UserResponse  `json:"owner,omitempty"`
}

type StatsResponse struct {
	TenantID string `json:"tenant_id"`
	Stats
}

func ToTenantResponse(t *Tenant) TenantResponse {
	resp := TenantResponse{
		ID:           t.ID,
		Name:         t.Name,
		Slug:         t.Slug,
		ContactEmail: t.ContactEmail,
		ContactPhone: t.ContactPhone,
		Address:      t.Address,
		Status:       t.Status,
		Settings: SettingsResponse{
			Currency: t.Currency,
			Language: t.Language,
			Timezone: t.Timezone,
		},
		Subscription: SubscriptionResponse{
			Plan:      t.Plan,
			StartDate: t.PlanStartDate,
			EndDate:   t.PlanEndDate,
			IsActive:  t.PlanIsActive,
		},
		Logo:      t.Logo,
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
	if t.Domain != nil {
		resp.Domain = *t.Domain
	}
	return resp
}

func ToTenantResponseList(tenants []Tenant) []TenantResponse {
	out := make([]TenantResponse, 0, len(tenants))
	for i := range tenants {
		out = append(out, ToTenantResponse(&tenants[i]))
	}
	return out
}
