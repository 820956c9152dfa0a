package logger

import "strings"

// sensitiveKeys are matched as substrings of the lower-cased field name.
var sensitiveKeys = []string{
	"token",
	"password",
	"secret",
	"authorization",
	"credential",
}

const redacted = "***REDACTED***"

// Redact returns value unchanged unless key names a sensitive field. String
// values of sensitive fields keep a short fingerprint so two log lines about
// the same credential can still be correlated.
func Redact(key string, value any) any {
	if !IsSensitiveKey(key) {
		return value
	}
	s, ok := value.(string)
	if !ok {
		if value == nil {
			return nil
		}
		return redacted
	}
	return MaskToken(s)
}

// IsSensitiveKey reports whether a field name carries credentials.
func IsSensitiveKey(key string) bool {
	k := strings.ToLower(key)
	for _, pattern := range sensitiveKeys {
		if strings.Contains(k, pattern) {
			return true
		}
	}
	return false
}

// MaskToken masks a credential, keeping an optional "Bearer " scheme and
// the first and last three characters when the secret is long enough.
//
//	MaskToken("Bearer eyJhbGciOi.payload.sig") == "Bearer eyJ...sig"
func MaskToken(s string) string {
	if s == "" {
		return ""
	}
	scheme := ""
	if len(s) > 7 && strings.EqualFold(s[:7], "bearer ") {
		scheme, s = s[:7], s[7:]
	}
	if len(s) < 12 {
		return scheme + redacted
	}
	return scheme + s[:3] + "..." + s[len(s)-3:]
}
