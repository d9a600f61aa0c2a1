package ui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/normanking/wikidex/internal/document"
	"github.com/normanking/wikidex/internal/store"
)

// resolveOption is one duplicate resolution choice.
type resolveOption struct {
	mode  store.Mode
	key   string
	label string
	hint  string
}

var resolveOptions = []resolveOption{
	{store.ModeSkip, "s", "Skip", "keep the existing document untouched"},
	{store.ModeUpdate, "u", "Update", "replace the first duplicate in place"},
	{store.ModeOverwrite, "o", "Overwrite", "delete every duplicate and insert fresh"},
	{store.ModeAdd, "a", "Add", "insert alongside the duplicates"},
}

// ResolveModel is the interactive prompt shown when a stored document
// collides with existing ones.
type ResolveModel struct {
	doc      *document.Document
	dups     []*document.Document
	cursor   int
	choice   store.Mode
	resolved bool
	width    int
}

// NewResolveModel creates the duplicate resolution prompt. The cursor starts
// on Update, the same resolution applied when no prompt is available.
func NewResolveModel(doc *document.Document, dups []*document.Document) *ResolveModel {
	return &ResolveModel{
		doc:    doc,
		dups:   dups,
		cursor: 1,
		choice: store.ModeSkip,
		width:  64,
	}
}

// Choice returns the selected resolution. Before the user decides, and after
// a cancel, this is ModeSkip.
func (m *ResolveModel) Choice() store.Mode {
	return m.choice
}

// Init implements tea.Model.
func (m *ResolveModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *ResolveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		if msg.Width > 0 && msg.Width < m.width+4 {
			m.width = msg.Width - 4
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc", "q":
			// Cancel resolves to skip
			m.choice = store.ModeSkip
			m.resolved = true
			return m, tea.Quit

		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
			return m, nil

		case "down", "j":
			if m.cursor < len(resolveOptions)-1 {
				m.cursor++
			}
			return m, nil

		case "enter", " ":
			m.choice = resolveOptions[m.cursor].mode
			m.resolved = true
			return m, tea.Quit

		default:
			// Quick keys select directly
			for i, opt := range resolveOptions {
				if msg.String() == opt.key {
					m.cursor = i
					m.choice = opt.mode
					m.resolved = true
					return m, tea.Quit
				}
			}
		}
	}

	return m, nil
}

// View implements tea.Model and renders the resolution prompt.
func (m *ResolveModel) View() string {
	var lines []string

	warnStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(colorYellow)).
		Width(m.width - 4)

	lines = append(lines, warnStyle.Render("Duplicate document detected"))
	lines = append(lines, "")
	lines = append(lines, fmt.Sprintf("Storing %q collides with %d existing document(s):",
		m.doc.DisplayTitle(), len(m.dups)))

	shown := m.dups
	if len(shown) > 3 {
		shown = shown[:3]
	}
	for _, dup := range shown {
		lines = append(lines, mutedStyle.Render(fmt.Sprintf("  • %s (%s)", dup.DisplayTitle(), dup.ID)))
	}
	if len(m.dups) > 3 {
		lines = append(lines, mutedStyle.Render(fmt.Sprintf("  … and %d more", len(m.dups)-3)))
	}
	lines = append(lines, "")

	selectedStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(colorGreen))

	for i, opt := range resolveOptions {
		marker := "  "
		label := fmt.Sprintf("[%s] %-9s %s", opt.key, opt.label, mutedStyle.Render(opt.hint))
		if i == m.cursor {
			marker = "> "
			label = selectedStyle.Render(fmt.Sprintf("[%s] %-9s ", opt.key, opt.label)) + mutedStyle.Render(opt.hint)
		}
		lines = append(lines, marker+label)
	}

	lines = append(lines, "")
	lines = append(lines, hintStyle.Render("↑/↓ to move • Enter to choose • Esc to skip"))

	prompt := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(colorYellow)).
		Padding(1, 2).
		Width(m.width)

	return prompt.Render(strings.Join(lines, "\n"))
}

// PromptResolver returns a store.Resolver that asks the user interactively.
// When the prompt cannot run, the duplicate is skipped.
func PromptResolver() store.Resolver {
	return func(doc *document.Document, dups []*document.Document) store.Mode {
		model := NewResolveModel(doc, dups)
		out, err := tea.NewProgram(model).Run()
		if err != nil {
			return store.ModeSkip
		}
		final, ok := out.(*ResolveModel)
		if !ok || !final.resolved {
			return store.ModeSkip
		}
		return final.Choice()
	}
}
