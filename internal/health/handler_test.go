// AngelaMos | 2026
// handler_test.go

package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pinger struct{ err error }

func (p pinger) Ping(context.Context) error { return p.err }

func serve(h *Handler, path string) *httptest.ResponseRecorder {
	r := chi.NewRouter()
	h.RegisterRoutes(r)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestReadyWhenAllChecksPass(t *testing.T) {
	h := NewHandler("1.2.3").With("database", pinger{}).With("redis", pinger{})

	rec := serve(h, "/readyz")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp ReadinessResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "1.2.3", resp.Version)
	require.Len(t, resp.Checks, 2)
	assert.Equal(t, "database", resp.Checks[0].Name)
	assert.Equal(t, "redis", resp.Checks[1].Name)
}

func TestDegradedWhenADependencyFails(t *testing.T) {
	h := NewHandler("").With("database", pinger{}).With("redis", pinger{err: errors.New("refused")})

	rec := serve(h, "/readyz")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), `"degraded"`)
	assert.NotContains(t, rec.Body.String(), "refused")
}

func TestNilCheckerIsUnhealthy(t *testing.T) {
	h := NewHandler("").With("database", nil)
	assert.Equal(t, http.StatusServiceUnavailable, serve(h, "/readyz").Code)
}

func TestDrainKeepsLiveness(t *testing.T) {
	h := NewHandler("").With("database", pinger{})
	h.Drain()

	assert.Equal(t, http.StatusServiceUnavailable, serve(h, "/readyz").Code)
	assert.Equal(t, http.StatusOK, serve(h, "/healthz").Code)
	assert.Equal(t, "no-cache, no-store, must-revalidate", serve(h, "/healthz").Header().Get("Cache-Control"))
}

func TestFailingCheckDoesNotHideOthers(t *testing.T) {
	h := NewHandler("").
		With("database", pinger{err: errors.New("refused")}).
		With("redis", pinger{})

	rec := serve(h, "/readyz")
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var resp ReadinessResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp.Checks, 2)
	assert.False(t, resp.Checks[0].Healthy)
	assert.Equal(t, "ping failed", resp.Checks[0].Message)
	assert.True(t, resp.Checks[1].Healthy)
	assert.NotEmpty(t, resp.Checks[1].Latency)
}
