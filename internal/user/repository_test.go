// AngelaMos | 2026
// repository_test.go

package user

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Fr4nk017/La-ruta-el-Pastelazo-Backend/internal/core"
)

const (
	tenantA = "11111111-1111-1111-1111-111111111111"
	tenantB = "22222222-2222-2222-2222-222222222222"
)

func setupMockDB(t *testing.T) (sqlmock.Sqlmock, Repository) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return mock, NewRepository(sqlx.NewDb(db, "sqlmock"))
}

var userCols = []string{
	"id", "tenant_id", "role_id", "first_name", "last_name", "email",
	"password_hash", "phone", "profile_image", "is_active",
	"token_version", "last_login_at", "created_at", "updated_at", "role_slug",
}

func TestGetByIDJoinsRoleWithinTenant(t *testing.T) {
	mock, repo := setupMockDB(t)
	now := time.Now()

	mock.ExpectQuery(`FROM users u\s+JOIN roles r ON r.tenant_id = u.tenant_id AND r.id = u.role_id\s+WHERE u.tenant_id = \$1 AND u.id = \$2`).
		WithArgs(tenantA, "u1").
		WillReturnRows(sqlmock.NewRows(userCols).AddRow(
			"u1", tenantA, "r1", "Ana", "Lopez", "ana@example.com",
			"hash", "", "", true, 2, nil, now, now, "customer",
		))

	u, err := repo.GetByID(context.Background(), tenantA, "u1")
	require.NoError(t, err)
	assert.Equal(t, "customer", u.RoleSlug)
	assert.Equal(t, 2, u.TokenVersion)
	assert.Nil(t, u.LastLoginAt)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByIDOtherTenantIsNotFound(t *testing.T) {
	mock, repo := setupMockDB(t)

	mock.ExpectQuery(`WHERE u.tenant_id = \$1 AND u.id = \$2`).
		WithArgs(tenantB, "u1").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), tenantB, "u1")
	assert.True(t, errors.Is(err, core.ErrNotFound))

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateMapsConstraintViolations(t *testing.T) {
	tests := []struct {
		name string
		code string
		want error
	}{
		{"duplicate email in tenant", "23505", core.ErrDuplicateKey},
		{"role from another tenant", "23503", core.ErrRoleMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, repo := setupMockDB(t)

			mock.ExpectQuery(`INSERT INTO users`).
				WillReturnError(&pgconn.PgError{Code: tt.code})

			err := repo.Create(context.Background(), &User{
				ID:       "u1",
				TenantID: tenantA,
				RoleID:   "r1",
				Email:    "ana@example.com",
			})
			assert.True(t, errors.Is(err, tt.want), "got %v", err)

			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestCreateWithoutTenant(t *testing.T) {
	_, repo := setupMockDB(t)

	err := repo.Create(context.Background(), &User{ID: "u1"})
	assert.True(t, errors.Is(err, core.ErrTenantRequired))
}

func TestDeactivateBumpsTokenVersion(t *testing.T) {
	mock, repo := setupMockDB(t)

	mock.ExpectExec(`UPDATE users SET is_active = FALSE, token_version = token_version \+ 1, updated_at = NOW\(\) WHERE tenant_id = \$1 AND id = \$2`).
		WithArgs(tenantA, "u1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Deactivate(context.Background(), tenantA, "u1"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateRoleNoRowsIsNotFound(t *testing.T) {
	mock, repo := setupMockDB(t)

	mock.ExpectExec(`UPDATE users SET role_id = \$3`).
		WithArgs(tenantB, "u1", "r1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateRole(context.Background(), tenantB, "u1", "r1")
	assert.True(t, errors.Is(err, core.ErrNotFound))

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListAppliesFilters(t *testing.T) {
	mock, repo := setupMockDB(t)
	active := true

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM users u WHERE u.tenant_id = \$1 AND \(u.email ILIKE \$2 OR u.first_name ILIKE \$2 OR u.last_name ILIKE \$2\) AND u.is_active = \$3`).
		WithArgs(tenantA, "%ana%", true).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	mock.ExpectQuery(`ORDER BY u.created_at DESC\s+LIMIT \$4 OFFSET \$5`).
		WithArgs(tenantA, "%ana%", true, 20, 0).
		WillReturnRows(sqlmock.NewRows(userCols))

	_, total, err := repo.List(context.Background(), tenantA, ListUsersParams{
		Search: "ana",
		Active: &active,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, total)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLoadPrincipal(t *testing.T) {
	mock, repo := setupMockDB(t)

	mock.ExpectQuery(`r.is_active AS role_active, r.permissions`).
		WithArgs(tenantA, "u1").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "tenant_id", "role_id", "email", "is_active", "token_version",
			"role_slug", "role_active", "permissions",
		}).AddRow("u1", tenantA, "r1", "ana@example.com", true, 0,
			"seller", true, "{products:view,products:manageStock}"))

	row, err := repo.LoadPrincipal(context.Background(), tenantA, "u1")
	require.NoError(t, err)
	assert.Equal(t, "seller", row.RoleSlug)
	assert.ElementsMatch(t, []string{"products:view", "products:manageStock"}, []string(row.Permissions))

	require.NoError(t, mock.ExpectationsWereMet())
}
