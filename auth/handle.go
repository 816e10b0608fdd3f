package auth

import "strings"

const (
	minOutlawIDLen = 3
	maxOutlawIDLen = 20
)

// NormalizeOutlawID lowercases the handle and strips every rune outside
// [a-z0-9_], matching what the signup form does as the user types.
func NormalizeOutlawID(raw string) string {
	lowered := strings.ToLower(raw)
	var b strings.Builder
	b.Grow(len(lowered))
	for _, r := range lowered {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ValidateOutlawID reports whether a normalized handle is acceptable:
// 3-20 chars of [a-z0-9_]. Callers normalize first; anything that still
// fails here is rejected before the uniqueness check.
func ValidateOutlawID(handle string) bool {
	if len(handle) < minOutlawIDLen || len(handle) > maxOutlawIDLen {
		return false
	}
	for _, r := range handle {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') && r != '_' {
			return false
		}
	}
	return true
}
