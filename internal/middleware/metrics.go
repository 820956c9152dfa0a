package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gotodo/gotodo/internal/metrics"
)

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode  int
	wroteHeader bool
}

func newResponseWriter(w http.ResponseWriter) *responseWriter {
	return &responseWriter{
		ResponseWriter: w,
		statusCode:     http.StatusOK,
	}
}

func (rw *responseWriter) WriteHeader(code int) {
	if rw.wroteHeader {
		return
	}
	rw.statusCode = code
	rw.wroteHeader = true
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	rw.wroteHeader = true
	return rw.ResponseWriter.Write(b)
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (rw *responseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

// Metrics returns a middleware that records Prometheus metrics.
func Metrics() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rw := newResponseWriter(w)

			metrics.ActiveConnections.Inc()
			defer metrics.ActiveConnections.Dec()

			next.ServeHTTP(rw, r)

			metrics.RecordRequest(r.Method, normalizePath(r.URL.Path), rw.statusCode, time.Since(start))
		})
	}
}

// normalizePath maps a request path to its route pattern so that ids do not
// become label values.
func normalizePath(path string) string {
	switch path {
	case "/health", "/ready", "/metrics",
		"/docs", "/docs/redoc", "/docs/openapi.yaml",
		"/api/v1/users", "/api/v1/users/me",
		"/api/v1/auth/sign-in", "/api/v1/auth/refresh",
		"/api/v1/tags", "/api/v1/tasks", "/api/v1/tasks/user":
		return path
	}

	switch {
	case hasIDSuffix(path, "/api/v1/tasks/"):
		return "/api/v1/tasks/{id}"
	case hasIDSuffix(path, "/api/v1/tags/"):
		return "/api/v1/tags/{id}"
	default:
		return "/other"
	}
}

func hasIDSuffix(path, prefix string) bool {
	rest, ok := strings.CutPrefix(path, prefix)
	return ok && rest != "" && !strings.Contains(rest, "/")
}
