// Package middleware wraps the daemon's mux with request ids, access logs
// and panic recovery.
package middleware

import (
	"encoding/json"
	"net/http"
	"time"

	"svc/internal/logging"
	shared "svc/shared/types"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// RequestIDHeader carries the request id in both directions.
const RequestIDHeader = "X-Request-ID"

// HealthPath requests are access-logged at debug level.
const HealthPath = "/health"

// recorder remembers what the handler sent so the access log can report it.
type recorder struct {
	http.ResponseWriter
	status  int
	written int
	wrote   bool
}

func (rw *recorder) WriteHeader(status int) {
	if !rw.wrote {
		rw.status = status
		rw.wrote = true
	}
	rw.ResponseWriter.WriteHeader(status)
}

func (rw *recorder) Write(b []byte) (int, error) {
	rw.wrote = true
	n, err := rw.ResponseWriter.Write(b)
	rw.written += n
	return n, err
}

type Middleware func(http.Handler) http.Handler

// Chain wraps h so that the first middleware runs innermost.
func Chain(h http.Handler, middlewares ...Middleware) http.Handler {
	for _, m := range middlewares {
		h = m(h)
	}
	return h
}

// RequestID reuses the caller's request id when it is a uuid and assigns a
// new one otherwise.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(logging.WithRequestID(r.Context(), id)))
	})
}

func levelFor(path string, status int) zapcore.Level {
	switch {
	case status >= http.StatusInternalServerError:
		return zapcore.ErrorLevel
	case status >= http.StatusBadRequest:
		return zapcore.WarnLevel
	case path == HealthPath:
		return zapcore.DebugLevel
	default:
		return zapcore.InfoLevel
	}
}

// Logger writes one access log line per request. Client errors log at warn
// and server errors at error.
func Logger(logger *logging.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rw := &recorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(rw, r)

			log := logger.For(r.Context())
			if ce := log.Check(levelFor(r.URL.Path, rw.status), "request completed"); ce != nil {
				ce.Write(
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.Int("status", rw.status),
					zap.Int("bytes", rw.written),
					zap.Duration("duration", time.Since(start)),
				)
			}
		})
	}
}

// Recover turns a handler panic into the same JSON error body the API uses.
func Recover(logger *logging.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if p := recover(); p != nil {
					logger.For(r.Context()).Error("panic recovered", zap.Any("panic", p), zap.Stack("stack"))
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					json.NewEncoder(w).Encode(shared.ErrorResponse{
						Type:    "INTERNAL",
						Message: "internal server error",
						Code:    -1,
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
