package logger

import (
	"log/slog"
	"strings"
)

// Redacted replaces attribute values that may hold stored data.
const Redacted = "***REDACTED***"

// Substrings of attribute keys that mark stored values or raw command
// arguments. Matching is case-insensitive.
var payloadKeys = []string{"value", "payload", "args", "password", "secret"}

// IsPayloadKey reports whether an attribute named key is masked.
func IsPayloadKey(key string) bool {
	key = strings.ToLower(key)
	for _, p := range payloadKeys {
		if strings.Contains(key, p) {
			return true
		}
	}
	return false
}

// redactPayload masks payload attributes. Groups are walked recursively.
// Empty strings and scalar kinds (ints, durations, bools) are left alone
// since they cannot carry a stored value.
func redactPayload(a slog.Attr) slog.Attr {
	v := a.Value.Resolve()
	if v.Kind() == slog.KindGroup {
		group := v.Group()
		out := make([]slog.Attr, 0, len(group))
		for _, ga := range group {
			out = append(out, redactPayload(ga))
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(out...)}
	}
	if !IsPayloadKey(a.Key) {
		return a
	}
	switch {
	case v.Kind() == slog.KindString && v.String() != "",
		v.Kind() == slog.KindAny:
		return slog.String(a.Key, Redacted)
	}
	return a
}
