// AngelaMos | 2026
// entity.go

package user

import (
	"time"

	"github.com/lib/pq"
)

type User struct {
	ID           string     `db:"id"`
	TenantID     string     `db:"tenant_id"`
	RoleID       string     `db:"role_id"`
	RoleSlug     string     `db:"role_slug"`
	FirstName    string     `db:"first_name"`
	LastName     string     `db:"last_name"`
	Email        string     `db:"email"`
	PasswordHash string     `db:"password_hash"`
	Phone        string     `db:"phone"`
	ProfileImage string     `db:"profile_image"`
	IsActive     bool       `db:"is_active"`
	TokenVersion int        `db:"token_version"`
	LastLoginAt  *time.Time `db:"last_login_at"`
	CreatedAt    time.Time  `db:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at"`
}

func (u *User) FullName() string {
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// principalRow is a user joined with the live state of its role.
type principalRow struct {
	UserID       string         `db:"id"`
	TenantID     string         `db:"tenant_id"`
	RoleID       string         `db:"role_id"`
	Email        string         `db:"email"`
	IsActive     bool           `db:"is_active"`
	TokenVersion int            `db:"token_version"`
	RoleSlug     string         `db:"role_slug"`
	RoleActive   bool           `db:"role_active"`
	Permissions  pq.StringArray `db:"permissions"`
}
