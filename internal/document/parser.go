package document

import (
	"strings"
	"time"
	"unicode/utf8"
)

// metadataSeparator divides the metadata/title block from the article body.
// Only the first occurrence is significant.
const metadataSeparator = "---"

// Parse converts raw article markdown into a Document in a single pass.
//
// Lines before the first "---" separator form the metadata block: "#"-led
// title lines are skipped, "**Key:** Value" lines become metadata entries,
// everything else is discarded. After the separator, headings (explicit or
// inferred) open sections and plain lines accumulate into the open section,
// or into the summary while no section is open. Ambiguous lines never fail
// classification; they fall through to content.
func Parse(content string) *Document {
	lines := strings.Split(content, "\n")

	doc := &Document{
		Metadata:         make(map[string]string),
		Sections:         make(map[string]*Section),
		SectionHierarchy: make([]HierarchyEntry, 0),
		ContentType:      ContentTypeWikipedia,
		CreatedAt:        time.Now(),
	}

	var (
		separatorSeen bool
		sectionOpen   bool
		currentTitle  string
		currentLevel  int
		buffer        []string
	)

	flush := func() {
		if len(buffer) == 0 {
			return
		}
		if !sectionOpen {
			doc.Summary = strings.TrimSpace(strings.Join(buffer, "\n"))
		} else {
			attachSection(doc, currentTitle, buffer, currentLevel)
		}
		buffer = nil
	}

	for i := 0; i < len(lines); i++ {
		line := strings.TrimSpace(lines[i])

		if !separatorSeen {
			if strings.HasPrefix(line, "#") {
				continue
			}
			if line == metadataSeparator {
				separatorSeen = true
				continue
			}
			if key, value, ok := parseMetadataLine(line); ok {
				doc.Metadata[key] = value
				promoteMetadata(doc, key, value)
			}
			continue
		}

		if line == "" {
			continue
		}

		if heading, ok := ClassifyHeading(line, lines[i+1:]); ok {
			flush()
			currentTitle = heading.Title
			currentLevel = heading.Level
			sectionOpen = true
			continue
		}

		// Hash lines that did not classify as explicit headings are
		// noise, not content.
		if strings.HasPrefix(line, "#") {
			continue
		}

		buffer = append(buffer, line)
	}

	flush()
	return doc
}

// parseMetadataLine extracts a "**Key:** Value" metadata pair. The key is
// lower-cased with spaces replaced by underscores.
func parseMetadataLine(line string) (key, value string, ok bool) {
	if !strings.HasPrefix(line, "**") || !strings.Contains(line, ":") {
		return "", "", false
	}
	idx := strings.Index(line, ":**")
	if idx <= 2 {
		return "", "", false
	}
	key = strings.ReplaceAll(strings.ToLower(strings.TrimSpace(line[2:idx])), " ", "_")
	value = strings.TrimSpace(line[idx+3:])
	return key, value, true
}

// promoteMetadata copies well-known metadata keys to top-level document
// fields. The metadata map keeps the entry either way.
func promoteMetadata(doc *Document, key, value string) {
	switch key {
	case "query":
		doc.Query = value
	case "url":
		doc.URL = value
	case "extract_format":
		doc.Format = value
	case "extracted_on":
		doc.ExtractedAt = value
	}
}

// attachSection builds a Section from buffered content and links it into
// the document. The hierarchy entry is appended unconditionally; the
// sections entry overwrites on key collision.
func attachSection(doc *Document, title string, contentLines []string, level int) {
	key := NormalizeKey(title)
	content := strings.TrimSpace(strings.Join(contentLines, "\n"))

	section := &Section{
		Title:          title,
		Content:        content,
		Level:          level,
		WordCount:      len(strings.Fields(content)),
		CharacterCount: utf8.RuneCountInString(content),
	}

	// Top-level sections sit at level 2; anything deeper gets a parent.
	if level > 2 {
		if parentKey := findParentKey(doc.SectionHierarchy, level); parentKey != "" {
			section.ParentSection = parentKey
			// Only link into the parent if a later collision has not
			// replaced it.
			if parent, ok := doc.Sections[parentKey]; ok {
				parent.Subsections = append(parent.Subsections, key)
			}
		}
	}

	doc.Sections[key] = section
	doc.SectionHierarchy = append(doc.SectionHierarchy, HierarchyEntry{
		Key:   key,
		Title: title,
		Level: level,
	})
}

// findParentKey walks the hierarchy backwards for the nearest preceding
// entry with a strictly smaller level.
func findParentKey(hierarchy []HierarchyEntry, level int) string {
	for i := len(hierarchy) - 1; i >= 0; i-- {
		if hierarchy[i].Level < level {
			return hierarchy[i].Key
		}
	}
	return ""
}
