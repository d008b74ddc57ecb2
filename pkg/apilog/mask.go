package apilog

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// Redacted is the fixed marker substituted for every sensitive value.
const Redacted = "***MASKED***"

// sensitiveKeys are matched case-insensitively as substrings against every
// object key during the recursive walk. A key containing any of these is
// masked regardless of nesting depth.
var sensitiveKeys = []string{
	"password",
	"accesstoken",
	"refreshtoken",
	"token",
	"authorization",
	"apikey",
	"api_key",
	"secret",
	"credential",
}

// isSensitiveKey reports whether key matches the sensitive-key patterns.
func isSensitiveKey(key string) bool {
	lower := strings.ToLower(key)
	for _, sk := range sensitiveKeys {
		if strings.Contains(lower, sk) {
			return true
		}
	}
	return false
}

// Mask walks a decoded JSON value and replaces every value whose key matches
// a sensitive pattern with the redaction marker. The walk covers nested
// objects and array elements; non-container values are returned unchanged.
// The input is never mutated.
//
// Example:
//
//	apilog.Mask(map[string]any{"password": "x", "name": "ok"})
//	// map[string]any{"password": "***MASKED***", "name": "ok"}
func Mask(v any) any {
	switch val := v.(type) {
	case map[string]any:
		masked := make(map[string]any, len(val))
		for k, inner := range val {
			if isSensitiveKey(k) {
				masked[k] = Redacted
				continue
			}
			masked[k] = Mask(inner)
		}
		return masked
	case []any:
		masked := make([]any, len(val))
		for i, inner := range val {
			masked[i] = Mask(inner)
		}
		return masked
	default:
		return v
	}
}

// maskHeaders converts an http.Header into a maskable map and applies Mask.
// Multi-valued headers are joined so the output stays readable.
func maskHeaders(h http.Header) map[string]any {
	if len(h) == 0 {
		return nil
	}
	m := make(map[string]any, len(h))
	for k, vals := range h {
		m[k] = strings.Join(vals, ", ")
	}
	return Mask(m).(map[string]any)
}

// formatBody masks and serializes a raw body for logging, truncating the
// result to maxLen characters with a marker noting how many were cut.
// Truncation counts runes, not bytes, so a multi-byte character is never
// split into invalid UTF-8. Non-JSON bodies are logged as plain strings
// (still subject to truncation); they carry no keyed fields to mask.
func formatBody(raw []byte, maxLen int) string {
	if len(raw) == 0 {
		return ""
	}

	var decoded any
	var out string
	if err := json.Unmarshal(raw, &decoded); err != nil {
		out = string(raw)
	} else {
		masked, err := json.Marshal(Mask(decoded))
		if err != nil {
			out = string(raw)
		} else {
			out = string(masked)
		}
	}

	if maxLen > 0 {
		if runes := []rune(out); len(runes) > maxLen {
			return fmt.Sprintf("%s... [truncated %d chars]", string(runes[:maxLen]), len(runes)-maxLen)
		}
	}
	return out
}
