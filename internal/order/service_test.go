// AngelaMos | 2026
// service_test.go

package order

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-chi/chi/v5"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Fr4nk017/La-ruta-el-Pastelazo-Backend/internal/authz"
	"github.com/Fr4nk017/La-ruta-el-Pastelazo-Backend/internal/core"
	"github.com/Fr4nk017/La-ruta-el-Pastelazo-Backend/internal/middleware"
)

const (
	tenantA = "11111111-1111-1111-1111-111111111111"
	buyer   = "aaaaaaaa-aaaa-aaaa-aaaa-aaaaaaaaaaaa"
	other   = "bbbbbbbb-bbbb-bbbb-bbbb-bbbbbbbbbbbb"
	cake    = "cccccccc-cccc-cccc-cccc-cccccccccccc"
	bread   = "dddddddd-dddd-dddd-dddd-dddddddddddd"
)

var (
	productCols = []string{
		"id", "tenant_id", "name", "slug", "description", "price", "currency",
		"stock", "category", "images", "tags", "is_active", "created_at", "updated_at",
	}
	orderCols = []string{
		"id", "tenant_id", "user_id", "items", "subtotal", "discount", "total",
		"coupon_code", "currency", "status", "payment_method", "shipping_address",
		"notes", "created_at", "updated_at",
	}
)

func newService(t *testing.T) (*Service, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	sdb := sqlx.NewDb(db, "sqlmock")
	return NewService(sdb, NewRepository(sdb), "MXN", nil), mock
}

func productRow(id, name string, price int64, stock int, active bool) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows(productCols).AddRow(
		id, tenantA, name, strings.ToLower(name), "", price, "MXN",
		stock, "", "{https://cdn.example.com/" + id + ".jpg}", "{}", active, now, now,
	)
}

func orderRow(owner string, status Status, items string) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows(orderCols).AddRow(
		"o1", tenantA, owner, []byte(items), int64(70000), int64(0), int64(70000),
		"", "MXN", string(status), PaymentNone, []byte(`{}`), "", now, now,
	)
}

func expectLine(mock sqlmock.Sqlmock, id, name string, price int64, stock, qty int) {
	mock.ExpectQuery(`FROM products WHERE tenant_id = \$1 AND id = \$2`).
		WithArgs(tenantA, id).
		WillReturnRows(productRow(id, name, price, stock, true))
	mock.ExpectQuery(`UPDATE products\s+SET stock = stock \+ \$3`).
		WithArgs(tenantA, id, -qty).
		WillReturnRows(productRow(id, name, price, stock-qty, true))
}

func TestCreatePricesFromCatalog(t *testing.T) {
	svc, mock := newService(t)
	now := time.Now()

	mock.ExpectBegin()
	expectLine(mock, cake, "Pastel", 35000, 5, 2)
	expectLine(mock, bread, "Concha", 1500, 20, 3)
	mock.ExpectQuery(`INSERT INTO orders`).
		WithArgs(
			sqlmock.AnyArg(), tenantA, buyer, sqlmock.AnyArg(),
			int64(74500), int64(7450), int64(67050),
			"DULCE10", "MXN", StatusPending, PaymentCard, sqlmock.AnyArg(), "",
		).
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))
	mock.ExpectCommit()

	o, err := svc.Create(context.Background(), tenantA, buyer, CreateOrderRequest{
		Items: []LineRequest{
			{ProductID: cake, Quantity: 1},
			{ProductID: bread, Quantity: 3},
			{ProductID: cake, Quantity: 1},
		},
		CouponCode:    "dulce10",
		PaymentMethod: PaymentCard,
	})
	require.NoError(t, err)

	require.Len(t, o.Items, 2)
	assert.Equal(t, cake, o.Items[0].ProductID)
	assert.Equal(t, 2, o.Items[0].Quantity)
	assert.Equal(t, "Pastel", o.Items[0].Name)
	assert.Equal(t, "https://cdn.example.com/"+cake+".jpg", o.Items[0].Image)
	assert.Equal(t, int64(67050), o.Total)
	assert.Equal(t, StatusPending, o.Status)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateRejectsBadLines(t *testing.T) {
	t.Run("missing product", func(t *testing.T) {
		svc, mock := newService(t)

		mock.ExpectBegin()
		mock.ExpectQuery(`FROM products`).WithArgs(tenantA, cake).WillReturnError(sql.ErrNoRows)
		mock.ExpectRollback()

		_, err := svc.Create(context.Background(), tenantA, buyer, CreateOrderRequest{
			Items: []LineRequest{{ProductID: cake, Quantity: 1}},
		})
		assert.ErrorIs(t, err, core.ErrProductNotFound)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("inactive product", func(t *testing.T) {
		svc, mock := newService(t)

		mock.ExpectBegin()
		mock.ExpectQuery(`FROM products`).WillReturnRows(productRow(cake, "Pastel", 35000, 5, false))
		mock.ExpectRollback()

		_, err := svc.Create(context.Background(), tenantA, buyer, CreateOrderRequest{
			Items: []LineRequest{{ProductID: cake, Quantity: 1}},
		})
		assert.ErrorIs(t, err, core.ErrProductUnavailable)
		assert.Equal(t, "PRODUCT_UNAVAILABLE", core.ToAppError(err).Code)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("short second line rolls back the first", func(t *testing.T) {
		svc, mock := newService(t)

		mock.ExpectBegin()
		expectLine(mock, cake, "Pastel", 35000, 5, 1)
		mock.ExpectQuery(`FROM products`).WithArgs(tenantA, bread).
			WillReturnRows(productRow(bread, "Concha", 1500, 2, true))
		mock.ExpectQuery(`UPDATE products`).WithArgs(tenantA, bread, -9).WillReturnError(sql.ErrNoRows)
		mock.ExpectQuery(`FROM products`).WithArgs(tenantA, bread).
			WillReturnRows(productRow(bread, "Concha", 1500, 2, true))
		mock.ExpectRollback()

		_, err := svc.Create(context.Background(), tenantA, buyer, CreateOrderRequest{
			Items: []LineRequest{{ProductID: cake, Quantity: 1}, {ProductID: bread, Quantity: 9}},
		})
		assert.ErrorIs(t, err, core.ErrInsufficientStock)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unknown coupon touches nothing", func(t *testing.T) {
		svc, mock := newService(t)

		_, err := svc.Create(context.Background(), tenantA, buyer, CreateOrderRequest{
			Items:      []LineRequest{{ProductID: cake, Quantity: 1}},
			CouponCode: "GRATIS",
		})
		assert.ErrorIs(t, err, core.ErrInvalidInput)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestCancelRestoresStock(t *testing.T) {
	svc, mock := newService(t)
	now := time.Now()
	items := `[{"product_id":"` + cake + `","name":"Pastel","quantity":2,"unit_price":35000,"line_total":70000}]`

	mock.ExpectBegin()
	mock.ExpectQuery(`FROM orders WHERE tenant_id = \$1 AND id = \$2 FOR UPDATE`).
		WithArgs(tenantA, "o1").
		WillReturnRows(orderRow(buyer, StatusConfirmed, items))
	mock.ExpectQuery(`UPDATE products\s+SET stock = stock \+ \$3`).
		WithArgs(tenantA, cake, 2).
		WillReturnRows(productRow(cake, "Pastel", 35000, 7, true))
	mock.ExpectQuery(`UPDATE orders\s+SET status = \$3`).
		WithArgs(tenantA, "o1", StatusCancelled).
		WillReturnRows(sqlmock.NewRows([]string{"updated_at"}).AddRow(now))
	mock.ExpectCommit()

	o, err := svc.Cancel(context.Background(), tenantA, Viewer{UserID: buyer}, "o1")
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, o.Status)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCancelRefusals(t *testing.T) {
	tests := []struct {
		name   string
		owner  string
		status Status
		viewer Viewer
		want   error
	}{
		{"preparing is too late", buyer, StatusPreparing, Viewer{UserID: buyer}, core.ErrInvalidStatusTransition},
		{"delivered is terminal", buyer, StatusDelivered, Viewer{UserID: buyer, ViewAll: true}, core.ErrInvalidStatusTransition},
		{"someone else's order", other, StatusPending, Viewer{UserID: buyer}, core.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, mock := newService(t)

			mock.ExpectBegin()
			mock.ExpectQuery(`FOR UPDATE`).WillReturnRows(orderRow(tt.owner, tt.status, `[]`))
			mock.ExpectRollback()

			_, err := svc.Cancel(context.Background(), tenantA, tt.viewer, "o1")
			assert.ErrorIs(t, err, tt.want)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestUpdateStatusTakesSynonyms(t *testing.T) {
	svc, mock := newService(t)
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery(`FOR UPDATE`).WillReturnRows(orderRow(buyer, StatusPending, `[]`))
	mock.ExpectQuery(`UPDATE orders`).
		WithArgs(tenantA, "o1", StatusConfirmed).
		WillReturnRows(sqlmock.NewRows([]string{"updated_at"}).AddRow(now))
	mock.ExpectCommit()

	o, err := svc.UpdateStatus(context.Background(), tenantA, "o1", "paid")
	require.NoError(t, err)
	assert.Equal(t, StatusConfirmed, o.Status)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateStatusSkippingAStepFails(t *testing.T) {
	svc, mock := newService(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`FOR UPDATE`).WillReturnRows(orderRow(buyer, StatusPending, `[]`))
	mock.ExpectRollback()

	_, err := svc.UpdateStatus(context.Background(), tenantA, "o1", "shipped")
	assert.ErrorIs(t, err, core.ErrInvalidStatusTransition)

	_, err = svc.UpdateStatus(context.Background(), tenantA, "o1", "lost")
	assert.ErrorIs(t, err, core.ErrInvalidInput)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetHidesOtherUsersOrders(t *testing.T) {
	svc, mock := newService(t)

	mock.ExpectQuery(`FROM orders WHERE tenant_id = \$1 AND id = \$2`).
		WillReturnRows(orderRow(other, StatusPending, `[]`))
	mock.ExpectQuery(`FROM orders WHERE tenant_id = \$1 AND id = \$2`).
		WillReturnRows(orderRow(other, StatusPending, `[]`))

	_, err := svc.Get(context.Background(), tenantA, Viewer{UserID: buyer}, "o1")
	assert.ErrorIs(t, err, core.ErrNotFound)

	o, err := svc.Get(context.Background(), tenantA, Viewer{UserID: buyer, ViewAll: true}, "o1")
	require.NoError(t, err)
	assert.Equal(t, other, o.UserID)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListScopesToOwnerWithoutViewAll(t *testing.T) {
	svc, mock := newService(t)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM orders WHERE tenant_id = \$1 AND user_id = \$2 AND status = \$3`).
		WithArgs(tenantA, buyer, StatusPending).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(`ORDER BY created_at DESC`).
		WithArgs(tenantA, buyer, StatusPending, 10, 0).
		WillReturnRows(sqlmock.NewRows(orderCols))

	orders, total, err := svc.List(context.Background(), tenantA, Viewer{UserID: buyer},
		ListOrdersParams{Status: StatusPending, UserID: other})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, orders)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateHandlerIgnoresClientPrice(t *testing.T) {
	svc, mock := newService(t)
	now := time.Now()

	mock.ExpectBegin()
	expectLine(mock, cake, "Pastel", 35000, 5, 2)
	mock.ExpectQuery(`INSERT INTO orders`).
		WithArgs(
			sqlmock.AnyArg(), tenantA, buyer, sqlmock.AnyArg(),
			int64(70000), int64(0), int64(70000),
			"", "MXN", StatusPending, PaymentNone, sqlmock.AnyArg(), "",
		).
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))
	mock.ExpectCommit()

	principal := &middleware.Principal{
		UserID: buyer, TenantID: tenantA, IsActive: true,
		Permissions: authz.NewSet(authz.P(authz.Orders, authz.Create)),
	}
	inject := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := middleware.WithTenant(r.Context(), &middleware.TenantInfo{ID: tenantA})
			next.ServeHTTP(w, r.WithContext(middleware.WithPrincipal(ctx, principal)))
		})
	}
	perm := func(res authz.Resource, a authz.Action) func(http.Handler) http.Handler {
		return middleware.RequirePermission(nil, res, a)
	}

	r := chi.NewRouter()
	NewHandler(svc).RegisterRoutes(r, inject, perm)

	body := `{"items":[{"product_id":"` + cake + `","quantity":2,"price":1,"unit_price":1}]}`
	req := httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(body))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"total":70000`)
	require.NoError(t, mock.ExpectationsWereMet())

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/orders/o1/cancel", nil))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
