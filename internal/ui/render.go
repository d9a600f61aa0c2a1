package ui

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/muesli/termenv"

	"github.com/normanking/wikidex/internal/document"
)

// RenderMarkdown renders markdown content for terminal display, wrapped to
// width. Terminals without color support, and any renderer failure, fall
// back to the plain text.
func RenderMarkdown(content string, width int) string {
	if termenv.EnvColorProfile() == termenv.Ascii {
		return strings.TrimRight(content, "\n")
	}
	if width <= 0 {
		width = 80
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return strings.TrimRight(content, "\n")
	}

	rendered, err := renderer.Render(content)
	if err != nil {
		return strings.TrimRight(content, "\n")
	}
	return strings.TrimRight(rendered, "\n")
}

// RenderDocument renders a stored document for terminal display.
func RenderDocument(doc *document.Document, width int) string {
	if doc == nil {
		return ""
	}
	return RenderMarkdown(doc.Markdown(), width)
}

// RenderSection renders a single section, headed by its title.
func RenderSection(sec *document.Section, width int) string {
	if sec == nil {
		return ""
	}
	heading := strings.Repeat("#", sec.Level)
	return RenderMarkdown(heading+" "+sec.Title+"\n\n"+sec.Content, width)
}
