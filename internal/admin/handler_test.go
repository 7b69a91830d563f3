// AngelaMos | 2026
// handler_test.go

package admin

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Fr4nk017/La-ruta-el-Pastelazo-Backend/internal/middleware"
)

type fakeCensus struct {
	counts map[string]int
	err    error
}

func (f fakeCensus) CountByStatus(context.Context) (map[string]int, error) {
	return f.counts, f.err
}

func newRouter(census TenantCensus) http.Handler {
	h := NewHandler(HandlerConfig{
		DBStats: func() sql.DBStats { return sql.DBStats{MaxOpenConnections: 25, InUse: 3} },
		Census:  census,
	})
	r := chi.NewRouter()
	h.RegisterRoutes(r, middleware.RequirePlatformKey("ops-key"))
	return r
}

func get(h http.Handler, path, key string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if key != "" {
		req.Header.Set("X-Platform-Key", key)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestPlatformStatsNeedKey(t *testing.T) {
	h := newRouter(fakeCensus{counts: map[string]int{"active": 2}})

	assert.Equal(t, http.StatusUnauthorized, get(h, "/admin/stats", "").Code)
	assert.Equal(t, http.StatusForbidden, get(h, "/admin/stats", "wrong").Code)
	assert.Equal(t, http.StatusOK, get(h, "/admin/stats", "ops-key").Code)
}

func TestPlatformStatsSumsCensus(t *testing.T) {
	h := newRouter(fakeCensus{counts: map[string]int{"active": 4, "trial": 2, "suspended": 1}})

	rec := get(h, "/admin/stats", "ops-key")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data PlatformStatsResponse `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, 7, resp.Data.Tenants.Total)
	assert.Equal(t, 2, resp.Data.Tenants.ByStatus["trial"])
	require.NotNil(t, resp.Data.Pools.Database)
	assert.Equal(t, 3, resp.Data.Pools.Database.InUse)
	assert.Nil(t, resp.Data.Pools.Redis)
	assert.NotEmpty(t, resp.Data.Runtime.GoVersion)
}

func TestCensusFailureIsServerError(t *testing.T) {
	h := newRouter(fakeCensus{err: errors.New("db down")})

	rec := get(h, "/admin/stats/tenants", "ops-key")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "db down")
}
