// Package redact defines the redaction sentinel used by the settings engine
// and helpers for keeping sensitive values out of logs and error messages.
//
// The sentinel is used in both directions: it replaces a sensitive setting
// value on the read path, and when it arrives on the write path it means
// "leave the stored value alone" rather than "store this literal string".
package redact

import "regexp"

// Sentinel is the reserved placeholder emitted in place of sensitive values.
// No caster ever produces this string from real data, so receiving it back
// on a write is always interpreted as a suppressed write.
const Sentinel = "(redacted)"

// Precompiled patterns for scrubbing driver error messages before they are
// logged or wrapped. Connection strings are the main leak vector here.
var (
	dbConnRegex   = regexp.MustCompile(`(?i)(postgres|postgresql|mysql|mongodb)://[^@\s]+@`)
	passwordRegex = regexp.MustCompile(`(?i)(password|passwd|pwd)=[^\s&]+`)
)

// IsSentinel reports whether v is the literal redaction sentinel.
func IsSentinel(v any) bool {
	s, ok := v.(string)
	return ok && s == Sentinel
}

// Map returns a copy of values with every entry equal to the sentinel
// removed. Use this before persisting a config mapping that may have been
// round-tripped through a redacted display.
func Map(values map[string]any) map[string]any {
	out := make(map[string]any, len(values))
	for k, v := range values {
		if IsSentinel(v) {
			continue
		}
		out[k] = v
	}
	return out
}

// String scrubs credentials embedded in s, replacing them with the sentinel.
// Intended for driver error messages, not for setting values.
func String(s string) string {
	if s == "" {
		return s
	}
	s = dbConnRegex.ReplaceAllString(s, "$1://"+Sentinel+"@")
	return passwordRegex.ReplaceAllString(s, "$1="+Sentinel)
}

// Error scrubs an error's message via String. Returns "" for a nil error.
func Error(err error) string {
	if err == nil {
		return ""
	}
	return String(err.Error())
}
