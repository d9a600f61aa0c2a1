package wiki

import (
	"context"
	"fmt"
	"regexp"
	"strings"
)

// headingRe matches wikitext section markers like "== History ==". The
// marker depth is the heading level.
var headingRe = regexp.MustCompile(`^(={2,6})\s*(.+?)\s*={2,6}\s*$`)

// splitExtract divides a plain-text extract into the lead summary and its
// sections. Text before the first heading is the summary; each heading
// collects the lines that follow it.
func splitExtract(extract string) (string, []ExtractSection) {
	lines := strings.Split(extract, "\n")

	var (
		summary  []string
		sections []ExtractSection
		current  *ExtractSection
		buffer   []string
	)

	flush := func() {
		content := strings.TrimSpace(strings.Join(buffer, "\n"))
		if current == nil {
			if content != "" {
				summary = append(summary, content)
			}
		} else {
			current.Content = content
			sections = append(sections, *current)
		}
		buffer = nil
	}

	for _, line := range lines {
		if m := headingRe.FindStringSubmatch(strings.TrimSpace(line)); m != nil {
			flush()
			current = &ExtractSection{
				Title: m[2],
				Level: len(m[1]),
			}
			continue
		}
		buffer = append(buffer, line)
	}
	flush()

	return strings.Join(summary, "\n"), sections
}

// FetchMarkdown fetches the article for topic and renders it into the
// storage markdown layout. A topic with no article returns empty content
// without error.
func (c *Client) FetchMarkdown(ctx context.Context, topic string) (string, error) {
	article, err := c.Fetch(ctx, topic)
	if err != nil || article == nil {
		return "", err
	}
	return FormatArticle(article), nil
}

// FormatArticle renders an article into the storage markdown layout: a
// metadata block, a separator, the bare summary, then markdown headings
// mirroring the wikitext nesting.
func FormatArticle(a *Article) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("# %s\n\n", a.Title))
	sb.WriteString(fmt.Sprintf("**Query:** %s\n\n", a.Query))
	sb.WriteString(fmt.Sprintf("**URL:** %s\n\n", a.URL))
	sb.WriteString("**Extract Format:** wiki\n\n")
	sb.WriteString("**Hierarchy Preserved:** Yes\n\n")
	sb.WriteString(fmt.Sprintf("**Extracted on:** %s\n\n", a.FetchedAt.Format("2006-01-02 15:04:05")))
	sb.WriteString("---\n\n")

	if a.Summary != "" {
		sb.WriteString(a.Summary)
		sb.WriteString("\n\n")
	}

	for _, sec := range a.Sections {
		sb.WriteString(fmt.Sprintf("%s %s\n\n", strings.Repeat("#", sec.Level), sec.Title))
		if sec.Content != "" {
			sb.WriteString(sec.Content)
			sb.WriteString("\n\n")
		}
	}

	return sb.String()
}
