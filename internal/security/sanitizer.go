// Package security provides password hashing and the checks applied to the
// API base URL before a bearer token is sent to it.
package security

import (
	"errors"
	"net"
	"net/url"
	"strings"
)

// URL validation errors.
var (
	ErrDangerousScheme   = errors.New("dangerous URL scheme detected")
	ErrBlockedHost       = errors.New("host is blocked")
	ErrURLTooLong        = errors.New("URL exceeds maximum length")
	ErrInvalidURL        = errors.New("invalid URL format")
	ErrEmptyURL          = errors.New("URL cannot be empty")
	ErrInvalidScheme     = errors.New("URL must use http or https scheme")
	ErrInsecureTransport = errors.New("plain http is only allowed for local hosts")
)

// dangerousSchemes contains URL schemes that can execute code.
var dangerousSchemes = map[string]bool{
	"javascript": true,
	"data":       true,
	"vbscript":   true,
	"file":       true,
}

// Config holds sanitizer configuration.
type Config struct {
	MaxURLLength int      // Maximum allowed URL length
	RequireTLS   bool     // Reject http:// for hosts that are not local
	BlockedHosts []string // Explicitly blocked hostnames
}

// DefaultConfig returns the default sanitizer configuration.
func DefaultConfig() Config {
	return Config{
		MaxURLLength: 2048,
		RequireTLS:   false,
		BlockedHosts: nil,
	}
}

// Sanitizer validates API base URLs.
type Sanitizer struct {
	config       Config
	blockedHosts map[string]bool
}

// NewSanitizer creates a new URL sanitizer.
func NewSanitizer(cfg Config) *Sanitizer {
	if cfg.MaxURLLength <= 0 {
		cfg.MaxURLLength = DefaultConfig().MaxURLLength
	}
	blockedHosts := make(map[string]bool)
	for _, host := range cfg.BlockedHosts {
		blockedHosts[strings.ToLower(host)] = true
	}

	return &Sanitizer{
		config:       cfg,
		blockedHosts: blockedHosts,
	}
}

// Parse validates rawURL and returns it parsed, with any trailing slash
// removed from the path.
func (s *Sanitizer) Parse(rawURL string) (*url.URL, error) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return nil, ErrEmptyURL
	}

	if len(rawURL) > s.config.MaxURLLength {
		return nil, ErrURLTooLong
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, ErrInvalidURL
	}

	scheme := strings.ToLower(u.Scheme)
	if scheme == "" {
		return nil, ErrInvalidScheme
	}
	if dangerousSchemes[scheme] {
		return nil, ErrDangerousScheme
	}
	if scheme != "http" && scheme != "https" {
		return nil, ErrInvalidScheme
	}

	host := strings.ToLower(u.Hostname())
	if host == "" {
		return nil, ErrInvalidURL
	}

	if s.isBlockedHost(host) {
		return nil, ErrBlockedHost
	}

	if s.config.RequireTLS && scheme == "http" && !IsLocalHost(host) {
		return nil, ErrInsecureTransport
	}

	u.Path = strings.TrimRight(u.Path, "/")
	return u, nil
}

// Validate checks if a URL is safe and valid.
func (s *Sanitizer) Validate(rawURL string) error {
	_, err := s.Parse(rawURL)
	return err
}

// isBlockedHost checks if a host or any of its parent domains is blocked.
func (s *Sanitizer) isBlockedHost(host string) bool {
	if s.blockedHosts[host] {
		return true
	}

	parts := strings.Split(host, ".")
	for i := 1; i < len(parts); i++ {
		parent := strings.Join(parts[i:], ".")
		if s.blockedHosts[parent] {
			return true
		}
	}

	return false
}

// IsLocalHost reports whether host is localhost or a loopback, private,
// link-local or unspecified address.
func IsLocalHost(host string) bool {
	if host == "localhost" {
		return true
	}
	return isPrivateIP(host)
}

// isPrivateIP checks if an IP address is private/local.
func isPrivateIP(ipStr string) bool {
	// Handle IPv6 addresses in brackets
	ipStr = strings.TrimPrefix(ipStr, "[")
	ipStr = strings.TrimSuffix(ipStr, "]")

	ip := net.ParseIP(ipStr)
	if ip == nil {
		return false
	}

	return ip.IsLoopback() ||
		ip.IsPrivate() ||
		ip.IsLinkLocalUnicast() ||
		ip.IsLinkLocalMulticast() ||
		ip.IsUnspecified()
}
