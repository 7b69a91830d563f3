// AngelaMos | 2026
// repository_test.go

package role

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

	"github.com/Fr4nk017/La-ruta-el-Pastelazo-Backend/internal/authz"
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

var roleCols = []string{
	"id", "tenant_id", "name", "slug", "description", "permissions",
	"priority", "is_system", "is_active", "created_at", "updated_at",
}

func TestGetByIDIsTenantScoped(t *testing.T) {
	mock, repo := setupMockDB(t)
	now := time.Now()

	mock.ExpectQuery(`(?s)SELECT .+ FROM roles WHERE tenant_id = \$1 AND id = \$2`).
		WithArgs(tenantA, "r1").
		WillReturnRows(sqlmock.NewRows(roleCols).AddRow(
			"r1", tenantA, "Cliente", "customer", "", "{products:view,orders:create}",
			10, true, true, now, now,
		))

	r, err := repo.GetByID(context.Background(), tenantA, "r1")
	require.NoError(t, err)
	assert.Equal(t, "customer", r.Slug)
	assert.True(t, r.PermissionSet().Has(authz.Orders, authz.Create))
	assert.False(t, r.PermissionSet().Has(authz.Orders, authz.ViewAll))

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByIDOtherTenantIsNotFound(t *testing.T) {
	mock, repo := setupMockDB(t)

	mock.ExpectQuery(`(?s)SELECT .+ FROM roles WHERE tenant_id = \$1 AND id = \$2`).
		WithArgs(tenantB, "r1").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), tenantB, "r1")
	assert.True(t, errors.Is(err, core.ErrNotFound))

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByIDWithoutTenant(t *testing.T) {
	_, repo := setupMockDB(t)

	_, err := repo.GetByID(context.Background(), "", "r1")
	assert.True(t, errors.Is(err, core.ErrTenantRequired))
}

func TestCreateDuplicateSlug(t *testing.T) {
	mock, repo := setupMockDB(t)

	mock.ExpectQuery(`INSERT INTO roles`).
		WillReturnError(&pgconn.PgError{Code: "23505"})

	err := repo.Create(context.Background(), &Role{ID: "r2", TenantID: tenantA, Name: "VIP", Slug: "vip"})
	assert.True(t, errors.Is(err, core.ErrDuplicateKey))

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteScoped(t *testing.T) {
	mock, repo := setupMockDB(t)

	mock.ExpectExec(`DELETE FROM roles WHERE tenant_id = \$1 AND id = \$2`).
		WithArgs(tenantA, "r9").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(context.Background(), tenantA, "r9")
	assert.True(t, errors.Is(err, core.ErrNotFound))

	require.NoError(t, mock.ExpectationsWereMet())
}
