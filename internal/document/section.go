package document

import (
	"strings"
	"unicode/utf8"
)

// ResolveSection finds a section by name. Resolution tries the normalized
// key first, then case-insensitive title equality in document order. The
// names "summary" and "introduction" resolve to a pseudo-section built
// from the document summary when no real section claims them.
func (d *Document) ResolveSection(name string) *Section {
	key := NormalizeKey(name)
	if s, ok := d.Sections[key]; ok {
		return s
	}

	lower := strings.ToLower(name)
	for _, k := range d.SectionKeysInOrder() {
		s := d.Sections[k]
		if strings.ToLower(s.Title) == lower {
			return s
		}
	}

	if lower == "summary" || lower == "introduction" {
		return &Section{
			Title:          "Summary",
			Content:        d.Summary,
			Level:          1,
			WordCount:      len(strings.Fields(d.Summary)),
			CharacterCount: utf8.RuneCountInString(d.Summary),
		}
	}

	return nil
}
