package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/evertras/bubble-table/table"
	"github.com/mistakenelf/teacup/statusbar"

	"github.com/normanking/wikidex/internal/document"
	"github.com/normanking/wikidex/internal/store"
)

// ═══════════════════════════════════════════════════════════════════════════════
// COLLECTION BROWSER
// ═══════════════════════════════════════════════════════════════════════════════

const (
	columnKeyTitle    = "title"
	columnKeySections = "sections"
	columnKeyWords    = "words"
	columnKeyUpdated  = "updated"
	columnKeyID       = "id"

	browseTimeout = 10 * time.Second
)

type browseMode int

const (
	browseLoading browseMode = iota
	browseTable
	browseDocument
)

// Messages delivered by the loader commands.
type (
	docsLoadedMsg struct{ docs []store.DocumentSummary }
	docLoadedMsg  struct{ doc *document.Document }
	browseErrMsg  struct{ err error }
)

// BrowseModel is the interactive collection browser: a document table over
// the store, with a markdown reading view for the selected document.
type BrowseModel struct {
	adapter *store.Adapter

	table    table.Model
	viewport viewport.Model
	spinner  spinner.Model
	status   statusbar.Model

	docs    []store.DocumentSummary
	current *document.Document
	mode    browseMode
	width   int
	height  int
	err     error
}

// NewBrowseModel creates the browser over adapter. Call Run to start it.
func NewBrowseModel(adapter *store.Adapter) *BrowseModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color(colorAccent))

	sb := statusbar.New(
		statusbar.ColorConfig{
			Foreground: lipgloss.AdaptiveColor{Light: colorBackground, Dark: colorBackground},
			Background: lipgloss.AdaptiveColor{Light: colorAccent, Dark: colorAccent},
		},
		statusbar.ColorConfig{
			Foreground: lipgloss.AdaptiveColor{Light: colorForeground, Dark: colorForeground},
			Background: lipgloss.AdaptiveColor{Light: colorBackground, Dark: colorBackground},
		},
		statusbar.ColorConfig{
			Foreground: lipgloss.AdaptiveColor{Light: colorBackground, Dark: colorBackground},
			Background: lipgloss.AdaptiveColor{Light: colorGreen, Dark: colorGreen},
		},
		statusbar.ColorConfig{
			Foreground: lipgloss.AdaptiveColor{Light: colorBackground, Dark: colorBackground},
			Background: lipgloss.AdaptiveColor{Light: colorYellow, Dark: colorYellow},
		},
	)

	return &BrowseModel{
		adapter:  adapter,
		table:    newDocumentTable(nil),
		viewport: viewport.New(80, 20),
		spinner:  sp,
		status:   sb,
		mode:     browseLoading,
		width:    80,
		height:   24,
	}
}

func newDocumentTable(rows []table.Row) table.Model {
	return table.New([]table.Column{
		table.NewFlexColumn(columnKeyTitle, "Title", 3),
		table.NewColumn(columnKeySections, "Sections", 10),
		table.NewColumn(columnKeyWords, "Words", 10),
		table.NewColumn(columnKeyUpdated, "Updated", 18),
	}).
		WithRows(rows).
		Focused(true).
		WithBaseStyle(tableBaseStyle)
}

func documentRows(docs []store.DocumentSummary) []table.Row {
	rows := make([]table.Row, 0, len(docs))
	for _, doc := range docs {
		sections, words := "0", "0"
		if doc.Stats != nil {
			sections = fmt.Sprintf("%d", doc.Stats.TotalSections)
			words = fmt.Sprintf("%d", doc.Stats.TotalWords)
		}
		updated := "—"
		if doc.UpdatedAt != nil {
			updated = doc.UpdatedAt.Local().Format("2006-01-02 15:04")
		}
		rows = append(rows, table.NewRow(table.RowData{
			columnKeyTitle:    doc.Title,
			columnKeySections: sections,
			columnKeyWords:    words,
			columnKeyUpdated:  updated,
			columnKeyID:       doc.ID,
		}))
	}
	return rows
}

// ═══════════════════════════════════════════════════════════════════════════════
// COMMANDS
// ═══════════════════════════════════════════════════════════════════════════════

func (m *BrowseModel) loadDocuments() tea.Cmd {
	adapter := m.adapter
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), browseTimeout)
		defer cancel()

		docs, err := adapter.List(ctx, 0)
		if err != nil {
			return browseErrMsg{err}
		}
		return docsLoadedMsg{docs}
	}
}

func (m *BrowseModel) loadDocument(id string) tea.Cmd {
	adapter := m.adapter
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), browseTimeout)
		defer cancel()

		doc, err := adapter.GetByID(ctx, id)
		if err != nil {
			return browseErrMsg{err}
		}
		return docLoadedMsg{doc}
	}
}

// ═══════════════════════════════════════════════════════════════════════════════
// TEA.MODEL
// ═══════════════════════════════════════════════════════════════════════════════

// Init implements tea.Model.
func (m *BrowseModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.loadDocuments())
}

// Update implements tea.Model.
func (m *BrowseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case docsLoadedMsg:
		m.docs = msg.docs
		m.err = nil
		m.table = m.table.WithRows(documentRows(m.docs))
		if m.mode != browseDocument {
			m.mode = browseTable
		}
		m.refreshStatus()
		return m, nil

	case docLoadedMsg:
		m.current = msg.doc
		m.err = nil
		m.mode = browseDocument
		m.viewport.SetContent(RenderDocument(m.current, m.viewport.Width))
		m.viewport.GotoTop()
		m.refreshStatus()
		return m, nil

	case browseErrMsg:
		m.err = msg.err
		if m.mode == browseLoading {
			m.mode = browseTable
		}
		m.refreshStatus()
		return m, nil

	case spinner.TickMsg:
		if m.mode != browseLoading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m *BrowseModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	switch m.mode {
	case browseDocument:
		switch msg.String() {
		case "q", "esc", "backspace":
			m.mode = browseTable
			m.current = nil
			m.refreshStatus()
			return m, nil
		default:
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}

	case browseTable:
		switch msg.String() {
		case "q":
			return m, tea.Quit
		case "r":
			m.mode = browseLoading
			m.refreshStatus()
			return m, tea.Batch(m.spinner.Tick, m.loadDocuments())
		case "enter":
			row := m.table.HighlightedRow()
			id, ok := row.Data[columnKeyID].(string)
			if !ok || id == "" {
				return m, nil
			}
			return m, m.loadDocument(id)
		default:
			var cmd tea.Cmd
			m.table, cmd = m.table.Update(msg)
			m.refreshStatus()
			return m, cmd
		}

	default:
		if msg.String() == "q" {
			return m, tea.Quit
		}
	}

	return m, nil
}

func (m *BrowseModel) resize(width, height int) {
	m.width = width
	m.height = height

	// One line of title, one of hints, one for the statusbar
	body := height - 2 - statusbar.Height
	if body < 4 {
		body = 4
	}

	pageSize := body - 4
	if pageSize < 1 {
		pageSize = 1
	}
	m.table = m.table.WithTargetWidth(width).WithPageSize(pageSize)

	m.viewport.Width = width
	m.viewport.Height = body
	if m.current != nil {
		m.viewport.SetContent(RenderDocument(m.current, width))
	}

	m.status.SetSize(width)
	m.refreshStatus()
}

func (m *BrowseModel) refreshStatus() {
	first := "wikidex"
	second := fmt.Sprintf("%d documents", len(m.docs))
	third := "browse"
	fourth := "q quit"

	switch m.mode {
	case browseLoading:
		third = "loading"
	case browseDocument:
		third = "reading"
		fourth = "esc back"
		if m.current != nil {
			second = m.current.DisplayTitle()
		}
	case browseTable:
		if row := m.table.HighlightedRow(); row.Data != nil {
			if title, ok := row.Data[columnKeyTitle].(string); ok {
				second = title
			}
		}
		fourth = "enter open"
	}
	if m.err != nil {
		second = m.err.Error()
		third = "error"
	}

	m.status.SetContent(first, second, third, fourth)
}

// View implements tea.Model.
func (m *BrowseModel) View() string {
	var b strings.Builder

	switch m.mode {
	case browseLoading:
		b.WriteString(titleStyle.Render("Wikipedia Collection"))
		b.WriteString("\n\n")
		b.WriteString(fmt.Sprintf("%s Loading documents…", m.spinner.View()))
		b.WriteString("\n")

	case browseDocument:
		title := "Document"
		if m.current != nil {
			title = m.current.DisplayTitle()
		}
		b.WriteString(titleStyle.Render(title))
		b.WriteString("\n")
		b.WriteString(m.viewport.View())
		b.WriteString("\n")
		b.WriteString(hintStyle.Render("↑/↓ to scroll • Esc to go back"))

	default:
		b.WriteString(titleStyle.Render("Wikipedia Collection"))
		b.WriteString("\n")
		if m.err != nil {
			b.WriteString(errorStyle.Render(m.err.Error()))
			b.WriteString("\n")
		}
		if len(m.docs) == 0 {
			b.WriteString(mutedStyle.Render("No documents stored yet. Fetch one with: wikidex fetch <topic>"))
			b.WriteString("\n")
		} else {
			b.WriteString(m.table.View())
			b.WriteString("\n")
		}
		b.WriteString(hintStyle.Render("↑/↓ to move • Enter to open • r to reload • q to quit"))
	}

	b.WriteString("\n")
	b.WriteString(m.status.View())
	return b.String()
}

// Run starts the browser in the alternate screen and blocks until it exits.
func (m *BrowseModel) Run() error {
	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
