package config

import (
	"fmt"
	"strings"
	"time"
)

// ParseDurationField parses a Go duration string from a config field.
// Empty means "not set" and returns (0, false, nil).
func ParseDurationField(s string) (time.Duration, bool, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, false, fmt.Errorf("invalid duration %q: %w", s, err)
	}
	if d < 0 {
		return 0, false, fmt.Errorf("invalid duration %q: must not be negative", s)
	}
	return d, true, nil
}

// DurationOrDefault resolves a duration field, falling back to def when the
// field is empty or malformed.
func DurationOrDefault(s string, def time.Duration) time.Duration {
	d, ok, err := ParseDurationField(s)
	if err != nil || !ok {
		return def
	}
	return d
}
