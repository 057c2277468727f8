package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"runtime"
	"time"

	"github.com/dmitrymomot/mergeflow/pkg/id"
	"github.com/dmitrymomot/mergeflow/pkg/logger"
)

const stackSize = 4096

// HandlerFunc is an http handler that reports failures as errors.
type HandlerFunc func(w http.ResponseWriter, r *http.Request) error

type Middleware func(next HandlerFunc) HandlerFunc

type requestIDKey struct{}

var requestIDHeaders = []string{"X-Request-ID", "X-Correlation-ID"}

// RequestIDExtractor adds request_id to records logged with a request context.
func RequestIDExtractor() logger.ContextExtractor {
	return logger.StringExtractor("request_id", requestIDKey{})
}

// RequestID reuses an upstream request id header or generates a ULID.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var reqID string
		for _, h := range requestIDHeaders {
			if v := r.Header.Get(h); v != "" {
				reqID = v
				break
			}
		}
		if reqID == "" {
			reqID = id.NewULID()
		}
		w.Header().Set("X-Request-ID", reqID)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey{}, reqID)))
	})
}

// Recover turns a panic into a PanicError.
func Recover(log *slog.Logger) Middleware {
	return func(next HandlerFunc) HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) (err error) {
			defer func() {
				if v := recover(); v != nil {
					stack := make([]byte, stackSize)
					stack = stack[:runtime.Stack(stack, false)]
					log.ErrorContext(r.Context(), "panic recovered",
						slog.Any("panic", v),
						slog.String("stack", string(stack)),
					)
					err = &PanicError{Value: v, Stack: stack}
				}
			}()
			return next(w, r)
		}
	}
}

// logRequests writes one record per request.
func logRequests(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rw := newResponseWriter(w)
			next.ServeHTTP(rw, r)

			level := slog.LevelInfo
			if rw.status >= http.StatusInternalServerError {
				level = slog.LevelError
			}
			log.Log(r.Context(), level, "http request",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", rw.status),
				slog.Int64("size", rw.size),
				slog.Duration("duration", time.Since(start)),
			)
		})
	}
}
