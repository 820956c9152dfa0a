package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gotodo/gotodo/internal/metrics"
	"github.com/gotodo/gotodo/internal/ratelimit"
	"github.com/gotodo/gotodo/pkg/logger"
)

// RateLimitConfig holds configuration for the rate limit middleware.
type RateLimitConfig struct {
	TrustProxy     bool           // Trust X-Forwarded-For header
	APIKeyHeader   string         // Header name for API key (e.g., "X-API-Key")
	TrustedProxies []string       // List of trusted proxy IPs
	KeyPrefix      string         // Namespaces identifiers when limiters share storage
	Logger         *logger.Logger // Receives limiter failures; nil discards them
}

// RateLimit returns a middleware that rate limits requests. Limiter errors
// fail open: the request is served and the error logged.
func RateLimit(limiter ratelimit.Limiter, cfg RateLimitConfig) Middleware {
	res := newIPResolver(cfg.TrustProxy, cfg.TrustedProxies)
	log := cfg.Logger
	if log == nil {
		log = logger.Nop()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identifier := cfg.KeyPrefix + identify(r, cfg.APIKeyHeader, res)

			result, err := limiter.Allow(r.Context(), identifier)
			if err != nil {
				log.Warn("rate limiter unavailable, allowing request",
					"error", err.Error(),
					"request_id", GetRequestID(r.Context()),
				)
				next.ServeHTTP(w, r)
				return
			}

			setRateLimitHeaders(w, result)

			if !result.Allowed {
				metrics.RecordRateLimited()
				writeError(w, http.StatusTooManyRequests, errorBody{
					Message:    "rate limit exceeded",
					Code:       "RATE_LIMIT_EXCEEDED",
					RetryAfter: retrySeconds(result.RetryAfter),
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// identify prefers an API key when one is configured and sent, otherwise
// the client IP.
func identify(r *http.Request, apiKeyHeader string, res ipResolver) string {
	if apiKeyHeader != "" {
		if key := r.Header.Get(apiKeyHeader); key != "" {
			return "api:" + key
		}
	}
	return "ip:" + res.resolve(r)
}

func setRateLimitHeaders(w http.ResponseWriter, result *ratelimit.Result) {
	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))

	if result.ResetAfter > 0 {
		reset := time.Now().Add(result.ResetAfter).Unix()
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(reset, 10))
	}
	if !result.Allowed {
		w.Header().Set("Retry-After", strconv.Itoa(retrySeconds(result.RetryAfter)))
	}
}

func retrySeconds(d time.Duration) int {
	s := int((d + time.Second - 1) / time.Second)
	if s < 1 {
		s = 1
	}
	return s
}
