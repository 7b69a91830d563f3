// AngelaMos | 2026
// logger.go

package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/Fr4nk017/La-ruta-el-Pastelazo-Backend/internal/core"
)

type logStateKey struct{}

// logState is filled in by inner middleware so the access log line can name
// the tenant and user even though they are attached to a derived context.
type logState struct {
	tenantID string
	userID   string
}

func noteTenant(ctx context.Context, id string) {
	if s, ok := ctx.Value(logStateKey{}).(*logState); ok {
		s.tenantID = id
	}
}

func noteUser(ctx context.Context, id string) {
	if s, ok := ctx.Value(logStateKey{}).(*logState); ok {
		s.userID = id
	}
}

type responseWriter struct {
	http.ResponseWriter
	status      int
	bytes       int
	wroteHeader bool
}

func (rw *responseWriter) WriteHeader(code int) {
	if rw.wroteHeader {
		return
	}
	rw.status = code
	rw.wroteHeader = true
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	if !rw.wroteHeader {
		rw.WriteHeader(http.StatusOK)
	}
	n, err := rw.ResponseWriter.Write(b)
	rw.bytes += n
	return n, err
}

func Logger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			state := &logState{}
			rw := &responseWriter{ResponseWriter: w, status: http.StatusOK}

			ctx := context.WithValue(r.Context(), logStateKey{}, state)
			next.ServeHTTP(rw, r.WithContext(ctx))

			level := slog.LevelInfo
			switch {
			case rw.status >= 500:
				level = slog.LevelError
			case rw.status >= 400:
				level = slog.LevelWarn
			}

			logger.LogAttrs(ctx, level, "request",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", rw.status),
				slog.Int("bytes", rw.bytes),
				slog.Duration("duration", time.Since(start)),
				slog.String("request_id", GetRequestID(ctx)),
				slog.String("tenant_id", state.tenantID),
				slog.String("user_id", state.userID),
				slog.String("trace_id", core.TraceIDFromContext(ctx)),
			)
		})
	}
}

// Recoverer turns a panic into a logged 500 in the error envelope.
func Recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				slog.ErrorContext(r.Context(), "panic recovered",
					"panic", rec,
					"request_id", GetRequestID(r.Context()),
					"stack", string(debug.Stack()),
				)
				core.InternalServerError(w, nil)
			}
		}()

		next.ServeHTTP(w, r)
	})
}
