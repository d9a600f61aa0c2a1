package document

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// InferredHeadingLevel is the fixed nesting level assigned to headings
// recognized from plain text. Inferred headings are never nested.
const InferredHeadingLevel = 2

var explicitHeading = regexp.MustCompile(`^(#{2,6})\s+(.+)$`)

const (
	maxHeadingRunes  = 80
	maxHeadingTokens = 8
	proseLookahead   = 3
)

// ClassifyHeading decides whether line opens a new section. The lookahead
// slice holds the raw lines following the current one; the plain-text
// heuristic inspects up to three of them. Classification never fails:
// anything that is not a heading is content.
func ClassifyHeading(line string, lookahead []string) (Heading, bool) {
	if m := explicitHeading.FindStringSubmatch(line); m != nil {
		return Heading{Title: strings.TrimSpace(m[2]), Level: len(m[1])}, true
	}
	if isInferredHeading(line, lookahead) {
		return Heading{Title: line, Level: InferredHeadingLevel}, true
	}
	return Heading{}, false
}

// isInferredHeading applies the plain-text heading heuristic: a short line
// without sentence punctuation, immediately followed by content, where at
// least one of the next two non-empty lines reads like prose. Hash-led
// lines never qualify; they are markup, not plain text.
func isInferredHeading(line string, lookahead []string) bool {
	if strings.HasPrefix(line, "#") {
		return false
	}
	if utf8.RuneCountInString(line) >= maxHeadingRunes {
		return false
	}
	if len(lookahead) == 0 || strings.TrimSpace(lookahead[0]) == "" {
		return false
	}
	if strings.HasSuffix(line, ".") || strings.HasSuffix(line, ",") || strings.HasSuffix(line, ";") {
		return false
	}
	if len(strings.Fields(line)) > maxHeadingTokens {
		return false
	}

	var next []string
	for i := 0; i < len(lookahead) && i < proseLookahead; i++ {
		if trimmed := strings.TrimSpace(lookahead[i]); trimmed != "" {
			next = append(next, trimmed)
		}
	}
	if len(next) > 2 {
		next = next[:2]
	}
	for _, candidate := range next {
		if strings.HasSuffix(candidate, ".") {
			return true
		}
	}
	return false
}
