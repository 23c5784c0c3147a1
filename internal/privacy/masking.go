// Package privacy masks credential-bearing values before they reach a log
// line. The relay handles webhook secrets, bot tokens and operator email
// addresses; none of them belong in logs in full.
package privacy

import (
	"net/http"
	"strings"
)

// MaskToken masks a secret or API token showing only the last 4 characters
// Example: "abcd1234efgh5678" -> "************5678"
func MaskToken(token string) string {
	return maskString(token, 4)
}

// MaskEmail masks the local part of an email address
// Example: "operator@example.com" -> "o*******@example.com"
func MaskEmail(addr string) string {
	if addr == "" {
		return ""
	}

	at := strings.Index(addr, "@")
	if at <= 0 {
		return maskString(addr, 0)
	}

	local := addr[:at]
	if len(local) == 1 {
		return local + addr[at:]
	}
	return local[:1] + strings.Repeat("*", len(local)-1) + addr[at:]
}

// MaskSensitiveHeaders copies headers for logging with credential-bearing
// values replaced entirely.
func MaskSensitiveHeaders(h http.Header) map[string]string {
	masked := make(map[string]string, len(h))
	for name, values := range h {
		value := strings.Join(values, ", ")
		switch strings.ToLower(name) {
		case "access_token", "authorization", "cookie", "x-api-key":
			value = "***"
		}
		masked[name] = value
	}
	return masked
}

// MaskSensitiveFields applies appropriate masking to common logging fields
func MaskSensitiveFields(fields map[string]interface{}) map[string]interface{} {
	if fields == nil {
		return nil
	}

	masked := make(map[string]interface{})
	for k, v := range fields {
		switch k {
		case "access_token", "api_key", "bot_token", "webhook_secret", "token":
			if s, ok := v.(string); ok {
				masked[k] = MaskToken(s)
			} else {
				masked[k] = v
			}
		case "recipient", "sender", "email":
			if s, ok := v.(string); ok {
				masked[k] = MaskEmail(s)
			} else {
				masked[k] = v
			}
		default:
			masked[k] = v
		}
	}

	return masked
}

// maskString masks a string showing only the last n characters
func maskString(s string, keepLast int) string {
	if s == "" {
		return ""
	}

	if len(s) <= keepLast {
		return strings.Repeat("*", len(s))
	}

	return strings.Repeat("*", len(s)-keepLast) + s[len(s)-keepLast:]
}
