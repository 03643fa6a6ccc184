// Package sanitize normalizes untrusted text received from clients.
package sanitize

import (
	"strings"
	"unicode/utf16"
)

// MaxLength is the maximum length kept after escaping, in UTF-16 code units.
const MaxLength = 500

var htmlReplacer = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#x27;",
	"/", "&#x2F;",
)

// Text escapes HTML-significant characters, trims surrounding whitespace and
// truncates the result to MaxLength. Values that are not strings yield an
// empty string.
//
// Truncation runs after escaping, so an entity may be cut at the boundary.
// A surrogate pair that would straddle the boundary is dropped whole.
func Text(v any) string {
	s, ok := v.(string)
	if !ok {
		return ""
	}
	s = strings.TrimSpace(htmlReplacer.Replace(s))

	if Length(s) <= MaxLength {
		return s
	}
	n := 0
	for i, r := range s {
		n += utf16.RuneLen(r)
		if n > MaxLength {
			return s[:i]
		}
	}
	return s
}

// Length counts s in UTF-16 code units, the unit browsers use for string
// length. Characters outside the Basic Multilingual Plane count twice.
func Length(s string) int {
	n := 0
	for _, r := range s {
		n += utf16.RuneLen(r)
	}
	return n
}
