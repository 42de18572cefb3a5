// Package export projects the final stage table onto the JSON records
// consumed by the downstream application.
package export

import (
	"strings"

	"github.com/HazeMiya/ai-2024/internal/record"
)

// Set is a closed set of allowed values.
type Set map[string]struct{}

// NewSet builds a Set from values.
func NewSet(values ...string) Set {
	s := make(Set, len(values))
	for _, v := range values {
		s[v] = struct{}{}
	}
	return s
}

// Contains reports whether v is in the set.
func (s Set) Contains(v string) bool {
	_, ok := s[v]
	return ok
}

// Placeholders are answers that carry no information and are exported as the sentinel.
var Placeholders = NewSet(record.SettingUnknown, record.SettingFictional, "unknown", "fictional")

// Validate returns the trimmed raw value and true when it may be exported as is.
// It returns false when raw is blank, outside allowed, or (with placeholders set)
// one of the Placeholders. A nil allowed set accepts any non-blank value.
func Validate(raw string, allowed Set, placeholders bool) (string, bool) {
	v := strings.TrimSpace(raw)
	if v == "" {
		return "", false
	}
	if allowed != nil && !allowed.Contains(v) {
		return "", false
	}
	if placeholders && Placeholders.Contains(strings.ToLower(v)) {
		return "", false
	}
	return v, true
}
