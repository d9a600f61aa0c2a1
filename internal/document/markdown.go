package document

import (
	"sort"
	"strings"
	"unicode"
)

// metadataOrder fixes the rendering order of well-known metadata keys.
var metadataOrder = []string{"query", "url", "extract_format", "hierarchy_preserved", "extracted_on"}

// metadataLabels maps metadata keys back to their display form.
var metadataLabels = map[string]string{
	"query":               "Query",
	"url":                 "URL",
	"extract_format":      "Extract Format",
	"hierarchy_preserved": "Hierarchy Preserved",
	"extracted_on":        "Extracted on",
}

// Markdown re-renders the document in its storage layout: title, metadata
// block, separator, summary, then surviving sections in document order.
func (d *Document) Markdown() string {
	var b strings.Builder

	b.WriteString("# ")
	b.WriteString(d.DisplayTitle())
	b.WriteString("\n\n")

	written := make(map[string]bool, len(d.Metadata))
	for _, key := range metadataOrder {
		if value, ok := d.Metadata[key]; ok {
			writeMetadataLine(&b, key, value)
			written[key] = true
		}
	}
	rest := make([]string, 0, len(d.Metadata))
	for key := range d.Metadata {
		if !written[key] {
			rest = append(rest, key)
		}
	}
	sort.Strings(rest)
	for _, key := range rest {
		writeMetadataLine(&b, key, d.Metadata[key])
	}

	b.WriteString("---\n\n")

	if d.Summary != "" {
		b.WriteString(d.Summary)
		b.WriteString("\n\n")
	}

	for _, key := range d.SectionKeysInOrder() {
		section := d.Sections[key]
		b.WriteString(strings.Repeat("#", section.Level))
		b.WriteString(" ")
		b.WriteString(section.Title)
		b.WriteString("\n\n")
		if section.Content != "" {
			b.WriteString(section.Content)
			b.WriteString("\n\n")
		}
	}

	return b.String()
}

func writeMetadataLine(b *strings.Builder, key, value string) {
	label, ok := metadataLabels[key]
	if !ok {
		label = labelFromKey(key)
	}
	b.WriteString("**")
	b.WriteString(label)
	b.WriteString(":** ")
	b.WriteString(value)
	b.WriteString("\n\n")
}

// labelFromKey rebuilds a display label from a normalized metadata key.
func labelFromKey(key string) string {
	words := strings.Split(key, "_")
	for i, word := range words {
		if word == "" {
			continue
		}
		runes := []rune(word)
		runes[0] = unicode.ToUpper(runes[0])
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}
