// AngelaMos | 2026
// dto.go

package user

import (
	"time"
)

type CreateUserRequest struct {
	FirstName string `json:"first_name" validate:"required,min=1,max=50"`
	LastName  string `json:"last_name"  validate:"required,min=1,max=50"`
	Email     string `json:"email"      validate:"required,email,max=255"`
	Password  string `json:"password"   validate:"required,min=8,max=128"`
	Phone     string `json:"phone"      validate:"max=50"`
	RoleID    string `json:"role_id"    validate:"omitempty,uuid"`
}

type UpdateProfileRequest struct {
	FirstName    *string `json:"first_name,omitempty"    validate:"omitempty,min=1,max=50"`
	LastName     *string `json:"last_name,omitempty"     validate:"omitempty,min=1,max=50"`
	Phone        *string `json:"phone,omitempty"         validate:"omitempty,max=50"`
	ProfileImage *string `json:"profile_image,omitempty" validate:"omitempty,max=2048"`
}

type UpdateUserRequest struct {
	UpdateProfileRequest
	IsActive *bool `json:"is_active,omitempty"`
}

type UpdateUserRoleRequest struct {
	RoleID string `json:"role_id" validate:"required,uuid"`
}

type UserResponse struct {
	ID           string     `json:"id"`
	TenantID     string     `json:"tenant_id"`
	RoleID       string     `json:"role_id"`
	Role         string     `json:"role"`
	FirstName    string     `json:"first_name"`
	LastName     string     `json:"last_name"`
	FullName     string     `json:"full_name"`
	Email        string     `json:"email"`
	Phone        string     `json:"phone"`
	ProfileImage string     `json:"profile_image,omitempty"`
	IsActive     bool       `json:"is_active"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

type ListUsersParams struct {
	Page     int
	PageSize int
	Search   string
	RoleID   string
	Active   *bool
}

func (p *ListUsersParams) Normalize() {
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

func (p *ListUsersParams) Offset() int {
	return (p.Page - 1) * p.PageSize
}

func ToUserResponse(u *User) UserResponse {
	return UserResponse{
		ID:           u.ID,
		TenantID:     u.TenantID,
		RoleID:       u.RoleID,
		Role:         u.RoleSlug,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		FullName:     u.FullName(),
		Email:        u.Email,
		Phone:        u.Phone,
		ProfileImage: u.ProfileImage,
		IsActive:     u.IsActive,
		LastLoginAt:  u.LastLoginAt,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

func ToUserResponseList(users []User) []UserResponse {
	responses := make([]UserResponse, 0, len(users))
	for i := range users {
		responses = append(responses, ToUserResponse(&users[i]))
	}
	return responses
}
