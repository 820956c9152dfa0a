package middleware

import (
	"context"
	"net"
	"net/http"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

const (
	// HeaderXRequestID is the header name for request ID.
	HeaderXRequestID = "X-Request-ID"
	// HeaderXForwardedFor is the header name for forwarded client IP.
	HeaderXForwardedFor = "X-Forwarded-For"
	// HeaderXRealIP is the header name for real client IP.
	HeaderXRealIP = "X-Real-IP"
)

const requestIDMaxLength = 128

var validRequestIDRegex = regexp.MustCompile(`^[a-zA-Z0-9\-_]+$`)

// RequestID returns a middleware that adds a unique request ID to each request.
// A valid incoming X-Request-ID is reused; otherwise a UUID v4 is generated.
func RequestID() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := r.Header.Get(HeaderXRequestID)
			if !isValidRequestID(requestID) {
				requestID = uuid.New().String()
			}

			w.Header().Set(HeaderXRequestID, requestID)
			ctx := context.WithValue(r.Context(), RequestIDKey, requestID)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func isValidRequestID(id string) bool {
	if id == "" || len(id) > requestIDMaxLength {
		return false
	}
	return validRequestIDRegex.MatchString(id)
}

// ipResolver decides which address a request came from.
type ipResolver struct {
	trustProxy bool
	trusted    map[string]bool
}

func newIPResolver(trustProxy bool, trustedProxies []string) ipResolver {
	trusted := make(map[string]bool, len(trustedProxies))
	for _, ip := range trustedProxies {
		trusted[ip] = true
	}
	return ipResolver{trustProxy: trustProxy, trusted: trusted}
}

// resolve returns the IP stored by ClientIP when present, otherwise derives
// it from the request. Forwarding headers are honoured only when the proxy
// is trusted.
func (res ipResolver) resolve(r *http.Request) string {
	if ip := GetClientIP(r.Context()); ip != "" {
		return ip
	}

	remoteIP := hostOnly(r.RemoteAddr)
	if !res.trustProxy {
		return remoteIP
	}
	if len(res.trusted) > 0 && !res.trusted[remoteIP] {
		return remoteIP
	}

	// client, proxy1, proxy2: the first entry is the original client
	if xff := r.Header.Get(HeaderXForwardedFor); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if xri := strings.TrimSpace(r.Header.Get(HeaderXRealIP)); xri != "" {
		return xri
	}
	return remoteIP
}

// ClientIP returns a middleware that stores the client IP in the context.
func ClientIP(trustProxy bool, trustedProxies []string) Middleware {
	res := newIPResolver(trustProxy, trustedProxies)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := context.WithValue(r.Context(), ClientIPKey, res.resolve(r))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func hostOnly(addr string) string {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return addr
	}
	return host
}
