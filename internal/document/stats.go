package document

import (
	"strings"
	"unicode/utf8"
)

// ComputeStatistics derives document-level counts from the parsed tree.
// Word and character totals cover the summary plus every surviving section;
// collided sections count once. Hierarchy depth spans every heading
// encountered, default 0 for a sectionless document.
func ComputeStatistics(doc *Document) *Statistics {
	stats := &Statistics{
		TotalSections:   len(doc.Sections),
		TotalWords:      len(strings.Fields(doc.Summary)),
		TotalCharacters: utf8.RuneCountInString(doc.Summary),
	}
	for _, section := range doc.Sections {
		stats.TotalWords += section.WordCount
		stats.TotalCharacters += section.CharacterCount
	}
	for _, entry := range doc.SectionHierarchy {
		if entry.Level > stats.HierarchyDepth {
			stats.HierarchyDepth = entry.Level
		}
	}
	return stats
}
