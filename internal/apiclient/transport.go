package apiclient

import (
	"net/http"
	"strings"
)

// TokenSource supplies the current bearer token. session.Store satisfies it.
type TokenSource interface {
	Token() string
}

// BearerTransport sets "Authorization: Bearer <token>" from Source on
// requests to Host that do not already carry an Authorization header.
// Requests to any other host, such as redirect targets, go out without it.
// An empty Host matches nothing. Nothing is added while Source has no token.
type BearerTransport struct {
	Base   http.RoundTripper
	Source TokenSource
	Host   string
}

// RoundTrip implements http.RoundTripper.
func (t *BearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}
	if t.Source == nil || !strings.EqualFold(req.URL.Host, t.Host) || req.Header.Get("Authorization") != "" {
		return base.RoundTrip(req)
	}
	token := t.Source.Token()
	if token == "" {
		return base.RoundTrip(req)
	}

	// RoundTrippers must not modify the caller's request.
	out := req.Clone(req.Context())
	out.Header.Set("Authorization", "Bearer "+token)
	return base.RoundTrip(out)
}
