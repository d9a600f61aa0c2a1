package document

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyExplicitHeading(t *testing.T) {
	tests := []struct {
		name      string
		line      string
		wantTitle string
		wantLevel int
	}{
		{"h2", "## History", "History", 2},
		{"h3", "### Early period", "Early period", 3},
		{"h4", "#### Details", "Details", 4},
		{"h6", "###### Deepest", "Deepest", 6},
		{"extra spaces trimmed", "##   Padded title  ", "Padded title", 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			heading, ok := ClassifyHeading(tt.line, nil)
			require.True(t, ok)
			assert.Equal(t, tt.wantTitle, heading.Title)
			assert.Equal(t, tt.wantLevel, heading.Level)
		})
	}
}

func TestClassifyExplicitHeadingRejects(t *testing.T) {
	tests := []struct {
		name string
		line string
	}{
		{"single hash", "# Title"},
		{"seven hashes", "####### Too deep"},
		{"no space after hashes", "##NoSpace"},
		{"hashes only", "##"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := ClassifyHeading(tt.line, nil)
			assert.False(t, ok)
		})
	}
}

func TestInferredHeading(t *testing.T) {
	prose := []string{"The city grew rapidly during this period."}

	tests := []struct {
		name      string
		line      string
		lookahead []string
		want      bool
	}{
		{
			name:      "short title before prose",
			line:      "Early History",
			lookahead: prose,
			want:      true,
		},
		{
			name:      "prose on second non-empty line",
			line:      "Geography",
			lookahead: []string{"A short fragment", "It spans three distinct climate zones."},
			want:      true,
		},
		{
			name:      "blank line inside lookahead window",
			line:      "Economy",
			lookahead: []string{"Trade dominated the region.", "", "More text"},
			want:      true,
		},
		{
			name:      "line ends in period",
			line:      "This is a sentence.",
			lookahead: prose,
			want:      false,
		},
		{
			name:      "line ends in comma",
			line:      "First clause,",
			lookahead: prose,
			want:      false,
		},
		{
			name:      "line ends in semicolon",
			line:      "First clause;",
			lookahead: prose,
			want:      false,
		},
		{
			name:      "too many tokens",
			line:      "one two three four five six seven eight nine",
			lookahead: prose,
			want:      false,
		},
		{
			name:      "exactly eight tokens allowed",
			line:      "one two three four five six seven eight",
			lookahead: prose,
			want:      true,
		},
		{
			name:      "line too long",
			line:      strings.Repeat("a", 80),
			lookahead: prose,
			want:      false,
		},
		{
			name:      "seventy nine runes allowed",
			line:      strings.Repeat("a", 79),
			lookahead: prose,
			want:      true,
		},
		{
			name:      "no next line",
			line:      "Trailing Title",
			lookahead: nil,
			want:      false,
		},
		{
			name:      "empty next line",
			line:      "Floating Title",
			lookahead: []string{"", "Prose follows later."},
			want:      false,
		},
		{
			name:      "no prose in window",
			line:      "List Header",
			lookahead: []string{"item one", "item two", "item three"},
			want:      false,
		},
		{
			name:      "prose beyond two non-empty lines ignored",
			line:      "Deep Header",
			lookahead: []string{"item one", "item two", "This one ends with a period."},
			want:      false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			heading, ok := ClassifyHeading(tt.line, tt.lookahead)
			assert.Equal(t, tt.want, ok)
			if tt.want {
				assert.Equal(t, tt.line, heading.Title)
				assert.Equal(t, InferredHeadingLevel, heading.Level)
			}
		})
	}
}
