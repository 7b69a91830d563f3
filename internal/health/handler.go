// AngelaMos | 2026
// handler.go

package health

import (
	"context"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"github.com/Fr4nk017/La-ruta-el-Pastelazo-Backend/internal/core"
)

const checkTimeout = 3 * time.Second

type Checker interface {
	Ping(ctx context.Context) error
}

type namedChecker struct {
	name    string
	checker Checker
}

// Handler answers orchestrator health checks. They sit outside tenant
// resolution so a check never needs a tenant.
type Handler struct {
	version  string
	checks   []namedChecker
	draining atomic.Bool
}

func NewHandler(version string) *Handler {
	return &Handler{version: version}
}

// With registers a dependency that /readyz pings.
func (h *Handler) With(name string, c Checker) *Handler {
	h.checks = append(h.checks, namedChecker{name: name, checker: c})
	return h
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/healthz", h.Liveness)
	r.Get("/readyz", h.Readiness)
}

// Drain flips readiness off ahead of shutdown so load balancers stop
// routing here while in-flight requests finish.
func (h *Handler) Drain() {
	h.draining.Store(true)
}

func (h *Handler) Liveness(w http.ResponseWriter, _ *http.Request) {
	writeStatus(w, http.StatusOK, StatusResponse{Status: "ok", Version: h.version})
}

func (h *Handler) Readiness(w http.ResponseWriter, r *http.Request) {
	if h.draining.Load() {
		writeStatus(w, http.StatusServiceUnavailable, StatusResponse{
			Status:  "draining",
			Version: h.version,
		})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), checkTimeout)
	defer cancel()

	checks := h.run(ctx)

	resp := ReadinessResponse{Status: "ok", Version: h.version, Checks: checks}
	code := http.StatusOK
	for _, c := range checks {
		if !c.Healthy {
			resp.Status = "degraded"
			code = http.StatusServiceUnavailable
			break
		}
	}

	writeStatus(w, code, resp)
}

func (h *Handler) run(ctx context.Context) []HealthCheck {
	out := make([]HealthCheck, len(h.checks))

	// A failed check is a result, not a group error, so every check
	// reports even when one is down.
	var g errgroup.Group
	for i, nc := range h.checks {
		g.Go(func() error {
			out[i] = runCheck(ctx, nc)
			return nil
		})
	}
	_ = g.Wait()

	return out
}

func runCheck(ctx context.Context, nc namedChecker) HealthCheck {
	check := HealthCheck{Name: nc.name, Healthy: true}
	if nc.checker == nil {
		check.Healthy = false
		check.Message = "not configured"
		return check
	}

	start := time.Now()
	err := nc.checker.Ping(ctx)
	check.Latency = time.Since(start).String()
	if err != nil {
		check.Healthy = false
		check.Message = "ping failed"
	}
	return check
}

func writeStatus(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	core.JSON(w, status, data)
}

type StatusResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
}

type ReadinessResponse struct {
	Status  string        `json:"status"`
	Version string        `json:"version,omitempty"`
	Checks  []HealthCheck `json:"checks"`
}

type HealthCheck struct {
	Name    string `json:"name"`
	Healthy bool   `json:"healthy"`
	Latency string `json:"latency,omitempty"`
	Message string `json:"message,omitempty"`
}
