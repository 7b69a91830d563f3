// AngelaMos | 2026
// repository.go

package auth

import (
	"context"
	"fmt"

	"github.com/Fr4nk017/La-ruta-el-Pastelazo-Backend/internal/core"
)

type Repository interface {
	Create(ctx context.Context, token *RefreshToken) error
	FindByHash(ctx context.Context, tenantID, tokenHash string) (*RefreshToken, error)
	MarkAsUsed(ctx context.Context, tenantID, id, replacedByID string) error
	RevokeByID(ctx context.Context, tenantID, id string) error
	RevokeByFamilyID(ctx context.Context, tenantID, familyID string) error
	RevokeAllForUser(ctx context.Context, tenantID, userID string) error
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, token *RefreshToken) error {
	scope, err := core.Scope(token.TenantID)
	if err != nil {
		return fmt.Errorf("create refresh token: %w", err)
	}

	query := `
		INSERT INTO refresh_tokens (
			id, tenant_id, user_id, token_hash, family_id, expires_at,
			user_agent, ip_address
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8
		)
		RETURNING created_at`

	err = r.db.GetContext(ctx, &token.CreatedAt, query,
		token.ID,
		scope.TenantID(),
		token.UserID,
		token.TokenHash,
		token.FamilyID,
		token.ExpiresAt,
		token.UserAgent,
		token.IPAddress,
	)
	if err != nil {
		return fmt.Errorf("create refresh token: %w", err)
	}

	return nil
}

// FindByHash only sees tokens of the given tenant, so a token minted for
// one storefront cannot be refreshed through another.
func (r *repository) FindByHash(
	ctx context.Context,
	tenantID, tokenHash string,
) (*RefreshToken, error) {
	scope, err := core.Scope(tenantID)
	if err != nil {
		return nil, fmt.Errorf("find refresh token: %w", err)
	}
	scope.Eq("token_hash", tokenHash)

	query := fmt.Sprintf(`
		SELECT
			id, tenant_id, user_id, token_hash, family_id, expires_at, created_at,
			is_used, used_at, revoked_at, replaced_by_id, user_agent, ip_address
		FROM refresh_tokens
		WHERE %s`, scope.Clause())

	var token RefreshToken
	if err := r.db.GetContext(ctx, &token, query, scope.Args()...); err != nil {
		return nil, core.NoRows("find refresh token", err, core.ErrNotFound)
	}

	return &token, nil
}

func (r *repository) MarkAsUsed(
	ctx context.Context,
	tenantID, id, replacedByID string,
) error {
	scope, err := core.Scope(tenantID)
	if err != nil {
		return fmt.Errorf("mark refresh token as used: %w", err)
	}
	scope.Eq("id", id).Where("is_used = false")

	query := fmt.Sprintf(`
		UPDATE refresh_tokens
		SET is_used = true, used_at = NOW(), replaced_by_id = %s
		WHERE %s`, scope.Bind(replacedByID), scope.Clause())

	res, err := r.db.ExecContext(ctx, query, scope.Args()...)
	if err != nil {
		return fmt.Errorf("mark refresh token as used: %w", err)
	}

	return core.RequireAffected("mark refresh token as used", res, core.ErrNotFound)
}

func (r *repository) revoke(ctx context.Context, op, tenantID, column, value string) (int64, error) {
	scope, err := core.Scope(tenantID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	scope.Eq(column, value).Where("revoked_at IS NULL")

	query := fmt.Sprintf(`
		UPDATE refresh_tokens
		SET revoked_at = NOW()
		WHERE %s`, scope.Clause())

	res, err := r.db.ExecContext(ctx, query, scope.Args()...)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return rows, nil
}

func (r *repository) RevokeByID(ctx context.Context, tenantID, id string) error {
	rows, err := r.revoke(ctx, "revoke refresh token", tenantID, "id", id)
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("revoke refresh token: %w", core.ErrNotFound)
	}
	return nil
}

func (r *repository) RevokeByFamilyID(ctx context.Context, tenantID, familyID string) error {
	_, err := r.revoke(ctx, "revoke token family", tenantID, "family_id", familyID)
	return err
}

func (r *repository) RevokeAllForUser(ctx context.Context, tenantID, userID string) error {
	_, err := r.revoke(ctx, "revoke all user tokens", tenantID, "user_id", userID)
	return err
}
