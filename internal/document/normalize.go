package document

import (
	"regexp"
	"strings"
)

var (
	// Characters outside letters, digits, underscore, and whitespace are
	// dropped before key construction.
	nonKeyChars = regexp.MustCompile(`[^\p{L}\p{N}_\s]`)
	whitespace  = regexp.MustCompile(`\s+`)
)

// NormalizeKey maps a section title to its stable lookup key: lower-cased,
// stripped of punctuation, interior whitespace runs collapsed to a single
// underscore. Distinct titles may collapse to the same key; callers own
// that collision policy.
func NormalizeKey(title string) string {
	key := nonKeyChars.ReplaceAllString(strings.ToLower(title), "")
	key = strings.TrimSpace(key)
	return whitespace.ReplaceAllString(key, "_")
}
