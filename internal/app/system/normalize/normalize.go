// internal/app/system/normalize/normalize.go

// Package normalize standardizes user-supplied identity fields before
// they are stored or compared.
package normalize

import "strings"

// Email lowercases and trims an email address.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Username trims a username. Case is preserved for display; use the CI
// field for lookups.
func Username(s string) string {
	return strings.TrimSpace(s)
}

// Role lowercases and trims a role string.
func Role(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Label trims a free-text label (location, organization name).
func Label(s string) string {
	return strings.TrimSpace(s)
}
