// AngelaMos | 2026
// dto.go

package role

import (
	"time"
)

type CreateRoleRequest struct {
	Name        string   `json:"name"        validate:"required,min=1,max=50"`
	Slug        string   `json:"slug"        validate:"omitempty,max=50"`
	Description string   `json:"description" validate:"max=200"`
	Permissions []string `json:"permissions" validate:"dive,required"`
	Priority    *int     `json:"priority"    validate:"omitempty,gte=0,lte=100"`
}

type UpdateRoleRequest struct {
	Name        *string   `json:"name,omitempty"        validate:"omitempty,min=1,max=50"`
	Slug        *string   `json:"slug,omitempty"        validate:"omitempty,max=50"`
	Description *string   `json:"description,omitempty" validate:"omitempty,max=200"`
	Permissions *[]string `json:"permissions,omitempty"`
	Priority    *int      `json:"priority,omitempty"    validate:"omitempty,gte=0,lte=100"`
	IsActive    *bool     `json:"is_active,omitempty"`
}

type RoleResponse struct {
	ID          string                     `json:"id"`
	Name        string                     `json:"name"`
	Slug        string                     `json:"slug"`
	Description string                     `json:"description"`
	Permissions []string                   `json:"permissions"`
	Matrix      map[string]map[string]bool `json:"matrix"`
	Priority    int                        `json:"priority"`
	IsSystem    bool                       `json:"is_system"`
	IsActive    bool                       `json:"is_active"`
	CreatedAt   time.Time                  `json:"created_at"`
	UpdatedAt   time.Time                  `json:"updated_at"`
}

type ListRolesParams struct {
	Page     int
	PageSize int
	Search   string
	Active   *bool
}

func (p *ListRolesParams) Normalize() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = 50
	}
	if p.PageSize > 100 {
		p.PageSize = 100
	}
}

func (p *ListRolesParams) Offset() int {
	return (p.Page - 1) * p.PageSize
}

func ToRoleResponse(r *Role) RoleResponse {
	set := r.PermissionSet()
	return RoleResponse{
		ID:          r.ID,
		Name:        r.Name,
		Slug:        r.Slug,
		Description: r.Description,
		Permissions: set.Strings(),
		Matrix:      set.Matrix(),
		Priority:    r.Priority,
		IsSystem:    r.IsSystem,
		IsActive:    r.IsActive,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

func ToRoleResponseList(roles []Role) []RoleResponse {
	out := make([]RoleResponse, 0, len(roles))
	for i := range roles {
		out = append(out, ToRoleResponse(&roles[i]))
	}
	return out
}
