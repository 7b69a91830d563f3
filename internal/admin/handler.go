// AngelaMos | 2026
// handler.go

package admin

import (
	"context"
	"database/sql"
	"net/http"
	"runtime"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"

	"github.com/Fr4nk017/La-ruta-el-Pastelazo-Backend/internal/core"
)

// TenantCensus counts tenants across the platform by status.
type TenantCensus interface {
	CountByStatus(ctx context.Context) (map[string]int, error)
}

type Handler struct {
	dbStats    func() sql.DBStats
	redisStats func() *redis.PoolStats
	census     TenantCensus
}

type HandlerConfig struct {
	DBStats    func() sql.DBStats
	RedisStats func() *redis.PoolStats
	Census     TenantCensus
}

func NewHandler(cfg HandlerConfig) *Handler {
	return &Handler{
		dbStats:    cfg.DBStats,
		redisStats: cfg.RedisStats,
		census:     cfg.Census,
	}
}

// RegisterRoutes mounts /admin behind the platform operator guard. These
// numbers span every tenant, so tenant roles never reach them.
func (h *Handler) RegisterRoutes(r chi.Router, platform func(http.Handler) http.Handler) {
	r.Route("/admin", func(r chi.Router) {
		r.Use(platform)

		r.Get("/stats", h.GetPlatformStats)
		r.Get("/stats/tenants", h.GetTenantCensus)
		r.Get("/stats/pools", h.GetPoolStats)
	})
}

func (h *Handler) GetPlatformStats(w http.ResponseWriter, r *http.Request) {
	tenants, err := h.countTenants(r.Context())
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, PlatformStatsResponse{
		Tenants: tenants,
		Pools:   h.pools(),
		Runtime: readRuntime(),
	})
}

func (h *Handler) GetTenantCensus(w http.ResponseWriter, r *http.Request) {
	tenants, err := h.countTenants(r.Context())
	if err != nil {
		core.JSONError(w, err)
		return
	}
	core.OK(w, tenants)
}

func (h *Handler) GetPoolStats(w http.ResponseWriter, _ *http.Request) {
	core.OK(w, h.pools())
}

func (h *Handler) countTenants(ctx context.Context) (TenantCounts, error) {
	counts := TenantCounts{ByStatus: map[string]int{}}
	if h.census == nil {
		return counts, nil
	}

	byStatus, err := h.census.CountByStatus(ctx)
	if err != nil {
		return counts, err
	}
	for status, n := range byStatus {
		counts.ByStatus[status] = n
		counts.Total += n
	}
	return counts, nil
}

func (h *Handler) pools() PoolStats {
	var out PoolStats

	if h.dbStats != nil {
		s := h.dbStats()
		out.Database = &DBPoolStats{
			MaxOpenConnections: s.MaxOpenConnections,
			OpenConnections:    s.OpenConnections,
			InUse:              s.InUse,
			Idle:               s.Idle,
			WaitCount:          s.WaitCount,
			WaitDuration:       s.WaitDuration.String(),
		}
	}

	if h.redisStats != nil {
		s := h.redisStats()
		out.Redis = &RedisPoolStats{
			Hits:       s.Hits,
			Misses:     s.Misses,
			Timeouts:   s.Timeouts,
			TotalConns: s.TotalConns,
			IdleConns:  s.IdleConns,
		}
	}

	return out
}

func readRuntime() RuntimeStats {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	return RuntimeStats{
		GoVersion:    runtime.Version(),
		NumGoroutine: runtime.NumGoroutine(),
		MemAlloc:     mem.Alloc,
		NumGC:        mem.NumGC,
	}
}

type PlatformStatsResponse struct {
	Tenants TenantCounts `json:"tenants"`
	Pools   PoolStats    `json:"pools"`
	Runtime RuntimeStats `json:"runtime"`
}

type TenantCounts struct {
	Total    int            `json:"total"`
	ByStatus map[string]int `json:"by_status"`
}

type PoolStats struct {
	Database *DBPoolStats    `json:"database,omitempty"`
	Redis    *RedisPoolStats `json:"redis,omitempty"`
}

type DBPoolStats struct {
	MaxOpenConnections int    `json:"max_open_connections"`
	OpenConnections    int    `json:"open_connections"`
	InUse              int    `json:"in_use"`
	Idle               int    `json:"idle"`
	WaitCount          int64  `json:"wait_count"`
	WaitDuration       string `json:"wait_duration"`
}

type RedisPoolStats struct {
	Hits       uint32 `json:"hits"`
	Misses     uint32 `json:"misses"`
	Timeouts   uint32 `json:"timeouts"`
	TotalConns uint32 `json:"total_conns"`
	IdleConns  uint32 `json:"idle_conns"`
}

type RuntimeStats struct {
	GoVersion    string `json:"go_version"`
	NumGoroutine int    `json:"num_goroutine"`
	MemAlloc     uint64 `json:"mem_alloc_bytes"`
	NumGC        uint32 `json:"num_gc"`
}
