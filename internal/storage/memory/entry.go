package memory

import "time"

// Entry is a single stored value.
//
// A zero ExpiresAt means the entry never expires.
type Entry struct {
	Value     string
	ExpiresAt time.Time
}

// IsExpired reports whether the entry is logically absent at now.
func (e Entry) IsExpired(now time.Time) bool {
	if e.ExpiresAt.IsZero() {
		return false
	}
	return now.After(e.ExpiresAt)
}
