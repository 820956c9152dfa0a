package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gotodo/gotodo/pkg/logger"
)

// Authenticator resolves an access token to a user id.
type Authenticator interface {
	Authenticate(ctx context.Context, accessToken string) (int64, error)
}

// BearerToken extracts the token from an "Authorization: Bearer <token>"
// header. The scheme is matched case-insensitively.
func BearerToken(r *http.Request) (string, bool) {
	scheme, tok, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	tok = strings.TrimSpace(tok)
	return tok, tok != ""
}

// Auth rejects requests without a valid bearer access token with 401 and
// stores the user id in the context for the rest.
func Auth(auth Authenticator, log *logger.Logger) Middleware {
	if log == nil {
		log = logger.Nop()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tok, ok := BearerToken(r)
			if !ok {
				unauthorized(w, "missing bearer token")
				return
			}

			userID, err := auth.Authenticate(r.Context(), tok)
			if err != nil {
				log.Debug("bearer token rejected",
					"error", err.Error(),
					"request_id", GetRequestID(r.Context()),
				)
				unauthorized(w, "invalid or expired token")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
		})
	}
}

func unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("WWW-Authenticate", `Bearer realm="gotodo"`)
	writeError(w, http.StatusUnauthorized, errorBody{Message: msg, Code: "UNAUTHORIZED"})
}
