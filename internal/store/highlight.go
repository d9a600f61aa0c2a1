package store

import (
	"regexp"
	"unicode/utf8"
)

const (
	// excerptContext is the excerpt length used when the term does not
	// occur in the text, and the basis for the padding around a match.
	excerptContext = 150

	// excerptPad is how many characters of context surround a match.
	excerptPad = excerptContext / 2
)

// buildExcerpt returns a short window of text around the first match of re,
// with every occurrence inside the window wrapped in ** markers. Without a
// match it degrades to a plain prefix of the text. Offsets are measured in
// characters, not bytes.
func buildExcerpt(text string, re *regexp.Regexp) string {
	loc := re.FindStringIndex(text)
	runes := []rune(text)

	if loc == nil {
		if len(runes) > excerptContext {
			return string(runes[:excerptContext]) + "..."
		}
		return text
	}

	start := utf8.RuneCountInString(text[:loc[0]]) - excerptPad
	if start < 0 {
		start = 0
	}
	end := utf8.RuneCountInString(text[:loc[1]]) + excerptPad
	if end > len(runes) {
		end = len(runes)
	}

	excerpt := string(runes[start:end])
	if start > 0 {
		excerpt = "..." + excerpt
	}
	if end < len(runes) {
		excerpt += "..."
	}

	return re.ReplaceAllString(excerpt, "**${0}**")
}
