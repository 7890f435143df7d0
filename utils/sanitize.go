package utils

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var sanitizer = bluemonday.StrictPolicy()

// Sanitize strips all markup from user supplied text and trims it. The
// result is plain text: entities added by the policy are decoded again so
// values like "O'Brien" are stored as typed.
func Sanitize(input string) string {
	return strings.TrimSpace(html.UnescapeString(sanitizer.Sanitize(input)))
}

// SanitizePtr sanitizes an optional string; blank results become nil.
func SanitizePtr(input *string) *string {
	if input == nil {
		return nil
	}
	s := Sanitize(*input)
	if s == "" {
		return nil
	}
	return &s
}
