// AngelaMos | 2026
// entity.go

package auth

import (
	"time"

	"github.com/Fr4nk017/La-ruta-el-Pastelazo-Backend/internal/core"
)

// RefreshToken is one link of a rotation family. Rotating marks the link
// used and points it at its replacement; the family shares FamilyID.
type RefreshToken struct {
	ID           string     `db:"id"`
	TenantID     string     `db:"tenant_id"`
	UserID       string     `db:"user_id"`
	TokenHash    string     `db:"token_hash"`
	FamilyID     string     `db:"family_id"`
	ExpiresAt    time.Time  `db:"expires_at"`
	CreatedAt    time.Time  `db:"created_at"`
	IsUsed       bool       `db:"is_used"`
	UsedAt       *time.Time `db:"used_at"`
	RevokedAt    *time.Time `db:"revoked_at"`
	ReplacedByID *string    `db:"replaced_by_id"`
	UserAgent    string     `db:"user_agent"`
	IPAddress    string     `db:"ip_address"`
}

// Check reports why an unused token can no longer be exchanged, or nil.
// Revocation wins over expiry.
func (t *RefreshToken) Check(now time.Time) error {
	switch {
	case t.RevokedAt != nil:
		return core.ErrTokenRevoked
	case !now.Before(t.ExpiresAt):
		return core.ErrTokenExpired
	default:
		return nil
	}
}
