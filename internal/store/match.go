package store

import (
	"fmt"
	"regexp"

	"github.com/normanking/wikidex/internal/document"
)

// ciPattern compiles a case-insensitive literal matcher for term. The term
// is quoted, so regex metacharacters in user input match themselves.
func ciPattern(term string) (*regexp.Regexp, error) {
	re, err := regexp.Compile("(?i)" + regexp.QuoteMeta(term))
	if err != nil {
		return nil, fmt.Errorf("compile term matcher: %w", err)
	}
	return re, nil
}

// matchFilter applies a Filter to a decoded document. queryRe carries the
// compiled QueryContains predicate, nil when unset.
func matchFilter(doc *document.Document, f Filter, queryRe *regexp.Regexp) bool {
	if f.ID != "" && doc.ID != f.ID {
		return false
	}
	if f.Query != "" && doc.Query != f.Query {
		return false
	}
	if f.URL != "" && doc.URL != f.URL {
		return false
	}
	if queryRe != nil && !queryRe.MatchString(doc.Query) && !queryRe.MatchString(doc.Metadata["query"]) {
		return false
	}
	return true
}
