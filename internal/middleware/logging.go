package middleware

import (
	"net/http"
	"time"

	"github.com/gotodo/gotodo/pkg/logger"
)

// Logging writes one entry per request. 5xx responses are logged at error,
// 4xx at warn and the rest at info.
func Logging(log *logger.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rw := newResponseWriter(w)

			next.ServeHTTP(rw, r)

			keyvals := []any{
				"method", r.Method,
				"path", r.URL.Path,
				"status", rw.statusCode,
				"duration_ms", time.Since(start).Milliseconds(),
				"request_id", GetRequestID(r.Context()),
				"client_ip", GetClientIP(r.Context()),
			}

			switch {
			case rw.statusCode >= 500:
				log.Error("request", keyvals...)
			case rw.statusCode >= 400:
				log.Warn("request", keyvals...)
			default:
				log.Info("request", keyvals...)
			}
		})
	}
}

// Recover turns a panic in a handler into a 500 and logs it.
func Recover(log *logger.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					if rec == http.ErrAbortHandler {
						panic(rec)
					}
					log.Error("handler panic",
						"panic", rec,
						"path", r.URL.Path,
						"request_id", GetRequestID(r.Context()),
					)
					writeError(w, http.StatusInternalServerError, errorBody{
						Message: "internal server error",
						Code:    "INTERNAL_ERROR",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
