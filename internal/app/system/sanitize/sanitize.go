// internal/app/system/sanitize/sanitize.go

// Package sanitize strips markup from free-text fields before storage.
// Listings are rendered back into browsers by the frontend, so item
// names, descriptions, and location labels must never carry HTML.
package sanitize

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var strict = bluemonday.StrictPolicy()

// Text removes all HTML from s and trims the result.
func Text(s string) string {
	return strings.TrimSpace(strict.Sanitize(s))
}
