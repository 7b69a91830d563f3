// AngelaMos | 2026
// ratelimit.go

package middleware

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	redis_rate "github.com/go-redis/redis_rate/v10"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"

	"github.com/Fr4nk017/La-ruta-el-Pastelazo-Backend/internal/core"
)

var errRateLimited = errors.New("rate limited")

// bucket is what one request is counted against. A zero key means the
// request is not limited.
type bucket struct {
	key   string
	limit redis_rate.Limit
	plan  string
}

type RateLimitConfig struct {
	Limit    redis_rate.Limit
	KeyFunc  func(*http.Request) string
	FailOpen bool
}

// RateLimiter counts requests in Redis with GCRA and falls back to an
// in-process token bucket per key when Redis is unreachable.
type RateLimiter struct {
	limiter  *redis_rate.Limiter
	fallback *localLimiter
	bucketOf func(*http.Request) bucket
	failOpen bool
}

func newLimiter(rdb redis.UniversalClient, failOpen bool, bucketOf func(*http.Request) bucket) *RateLimiter {
	return &RateLimiter{
		limiter:  redis_rate.NewLimiter(rdb),
		fallback: newLocalLimiter(),
		bucketOf: bucketOf,
		failOpen: failOpen,
	}
}

// NewRateLimiter applies one limit to every request, bucketed by
// cfg.KeyFunc (client IP by default).
func NewRateLimiter(rdb redis.UniversalClient, cfg RateLimitConfig) *RateLimiter {
	keyOf := cfg.KeyFunc
	if keyOf == nil {
		keyOf = KeyByIP
	}
	return newLimiter(rdb, cfg.FailOpen, func(r *http.Request) bucket {
		return bucket{key: keyOf(r), limit: cfg.Limit}
	})
}

type PlanLimit struct {
	RequestsPerMinute int
	BurstSize         int
}

// DefaultPlanLimits throttles each tenant according to its subscription plan.
var DefaultPlanLimits = map[string]PlanLimit{
	"free":       {RequestsPerMinute: 120, BurstSize: 20},
	"basic":      {RequestsPerMinute: 600, BurstSize: 100},
	"premium":    {RequestsPerMinute: 3000, BurstSize: 500},
	"enterprise": {RequestsPerMinute: 12000, BurstSize: 2000},
}

// PlanRateLimiter gives every tenant its own bucket sized by plan. Unknown
// plans get the free allowance. It must run after tenant resolution;
// requests without a tenant pass through.
func PlanRateLimiter(
	rdb redis.UniversalClient,
	plans map[string]PlanLimit,
) func(http.Handler) http.Handler {
	rl := newLimiter(rdb, true, func(r *http.Request) bucket {
		tenant := GetTenant(r.Context())
		if tenant == nil {
			return bucket{}
		}

		plan := tenant.Plan
		pl, ok := plans[plan]
		if !ok {
			plan = "free"
			pl = plans[plan]
		}

		return bucket{
			key:   "ratelimit:tenant:" + tenant.ID,
			limit: PerMinute(pl.RequestsPerMinute, pl.BurstSize),
			plan:  plan,
		}
	})
	return rl.Handler
}

func (rl *RateLimiter) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b := rl.bucketOf(r)
		if b.key == "" {
			next.ServeHTTP(w, r)
			return
		}

		res, err := rl.allow(r.Context(), b)
		if err != nil {
			if rl.failOpen {
				slog.WarnContext(r.Context(), "rate limiter error, failing open",
					"error", err,
					"key", b.key,
				)
				next.ServeHTTP(w, r)
				return
			}
			core.JSONError(w, core.NewAppError(
				err,
				"rate limiter unavailable",
				http.StatusServiceUnavailable,
				"SERVICE_UNAVAILABLE",
			))
			return
		}

		if b.plan != "" {
			w.Header().Set("X-RateLimit-Plan", b.plan)
		}
		setRateLimitHeaders(w, res, b.limit)

		if res.Allowed == 0 {
			writeRateLimitExceeded(w, res)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (rl *RateLimiter) allow(ctx context.Context, b bucket) (*redis_rate.Result, error) {
	res, err := rl.limiter.Allow(ctx, b.key, b.limit)
	if err != nil {
		return rl.fallback.allow(b.key, b.limit)
	}
	return res, nil
}

// KeyByIP trusts the last X-Forwarded-For hop, which is the one our own
// proxy appended.
func KeyByIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		hops := strings.Split(xff, ",")
		return "ratelimit:ip:" + strings.TrimSpace(hops[len(hops)-1])
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return "ratelimit:ip:" + xri
	}

	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		ip = r.RemoteAddr
	}
	return "ratelimit:ip:" + ip
}

func PerMinute(rate, burst int) redis_rate.Limit {
	return PerWindow(rate, burst, time.Minute)
}

// PerWindow allows rate requests per window. A non-positive window means
// one minute.
func PerWindow(rate, burst int, window time.Duration) redis_rate.Limit {
	if window <= 0 {
		window = time.Minute
	}
	if burst <= 0 {
		burst = rate
	}
	return redis_rate.Limit{Rate: rate, Burst: burst, Period: window}
}

func setRateLimitHeaders(w http.ResponseWriter, res *redis_rate.Result, limit redis_rate.Limit) {
	h := w.Header()

	h.Set("X-RateLimit-Limit", strconv.Itoa(limit.Rate))
	h.Set("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))
	h.Set("X-RateLimit-Reset", strconv.FormatInt(time.Now().Add(res.ResetAfter).Unix(), 10))

	h.Set("RateLimit-Policy", fmt.Sprintf("%d;w=%d", limit.Rate, int(limit.Period.Seconds())))
	h.Set("RateLimit", fmt.Sprintf("%d;t=%d", res.Remaining, int(res.ResetAfter.Seconds())))
}

func writeRateLimitExceeded(w http.ResponseWriter, res *redis_rate.Result) {
	retryAfter := max(int(res.RetryAfter.Seconds()), 1)

	w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
	core.JSONError(w, core.NewAppError(
		errRateLimited,
		fmt.Sprintf("Rate limit exceeded. Retry after %d seconds.", retryAfter),
		http.StatusTooManyRequests,
		"RATE_LIMITED",
	))
}

const (
	localSweepInterval = 5 * time.Minute
	localEntryTTL      = 10 * time.Minute
)

type localEntry struct {
	mu       sync.Mutex
	limiter  *rate.Limiter
	lastSeen time.Time
}

// localLimiter only has to hold traffic back while Redis is down; its
// counts are per instance.
type localLimiter struct {
	mu      sync.Mutex
	entries map[string]*localEntry
}

func newLocalLimiter() *localLimiter {
	l := &localLimiter{entries: make(map[string]*localEntry)}
	go l.sweep()
	return l
}

func (l *localLimiter) sweep() {
	ticker := time.NewTicker(localSweepInterval)
	defer ticker.Stop()

	for now := range ticker.C {
		cutoff := now.Add(-localEntryTTL)
		l.mu.Lock()
		for key, e := range l.entries {
			e.mu.Lock()
			stale := e.lastSeen.Before(cutoff)
			e.mu.Unlock()
			if stale {
				delete(l.entries, key)
			}
		}
		l.mu.Unlock()
	}
}

func (l *localLimiter) entry(key string, limit redis_rate.Limit, perSec rate.Limit) *localEntry {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.entries[key]
	if !ok {
		e = &localEntry{limiter: rate.NewLimiter(perSec, limit.Burst)}
		l.entries[key] = e
	}
	return e
}

func (l *localLimiter) allow(key string, limit redis_rate.Limit) (*redis_rate.Result, error) {
	if limit.Rate <= 0 || limit.Period <= 0 {
		return nil, fmt.Errorf("local limiter: invalid limit %v", limit)
	}

	perSec := rate.Limit(float64(limit.Rate) / limit.Period.Seconds())
	interval := time.Duration(float64(time.Second) / float64(perSec))

	e := l.entry(key, limit, perSec)
	e.mu.Lock()
	e.lastSeen = time.Now()
	allowed := e.limiter.Allow()
	remaining := max(int(e.limiter.Tokens()), 0)
	e.mu.Unlock()

	res := &redis_rate.Result{
		Limit:      limit,
		Remaining:  remaining,
		RetryAfter: -1,
		ResetAfter: interval,
	}
	if allowed {
		res.Allowed = 1
	} else {
		res.RetryAfter = interval
	}
	return res, nil
}
