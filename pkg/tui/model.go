// Package tui renders the artwork table in a terminal.
//
// Fetches run as tea.Cmds carrying the table.Request they were issued for; the
// result comes back as a message and is applied through table.View.Complete,
// so a slow response for a page the user has already left is dropped.
package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	btable "github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"github.com/Sternrassler/artwork-table/pkg/catalog"
	"github.com/Sternrassler/artwork-table/pkg/logging"
	"github.com/Sternrassler/artwork-table/pkg/table"
)

// fetchedMsg carries the outcome of one issued request.
type fetchedMsg struct {
	req  table.Request
	page *catalog.Page
	err  error
}

var (
	titleStyle   = lipgloss.NewStyle().Bold(true)
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	currentStyle = lipgloss.NewStyle().Bold(true).Underline(true)
	boxStyle     = lipgloss.NewStyle().BorderStyle(lipgloss.NormalBorder()).BorderForeground(lipgloss.Color("240"))
	popoverStyle = lipgloss.NewStyle().BorderStyle(lipgloss.RoundedBorder()).Padding(0, 1)
)

// column widths: checkbox, Title, Place of Origin, Artist, Inscriptions, Start Date, End Date
var columnWidths = []int{3, 32, 16, 24, 24, 10, 10}

// Model is the bubbletea model for the table.
type Model struct {
	ctx    context.Context
	view   *table.View
	keys   keyMap
	logger zerolog.Logger

	table     btable.Model
	input     textinput.Model
	ids       []int64
	selecting bool
	initial   table.Request
	pending   uint64
	loading   bool
	page      int

	width int
}

// New creates a model over view. ctx bounds every fetch.
func New(ctx context.Context, view *table.View) Model {
	input := textinput.New()
	input.Placeholder = "Select rows..."
	input.CharLimit = 6
	input.Width = 14

	m := Model{
		ctx:    ctx,
		view:   view,
		keys:   defaultKeyMap(),
		logger: logging.NewLogger("tui"),
		input:  input,
		table: btable.New(
			btable.WithFocused(true),
			btable.WithHeight(14),
			btable.WithStyles(btable.DefaultStyles()),
		),
	}
	m.sync()
	m.initial = view.Begin()
	m.pending = m.initial.Seq
	m.loading = true
	return m
}

// Init loads the current page.
func (m Model) Init() tea.Cmd {
	return m.fetch(m.initial)
}

func (m *Model) start(req table.Request) tea.Cmd {
	m.pending = req.Seq
	m.loading = true
	m.logger.Debug().Int("page", req.Page).Int("limit", req.Limit).Uint64("seq", req.Seq).Msg("Requesting page")
	return m.fetch(req)
}

func (m Model) fetch(req table.Request) tea.Cmd {
	view, ctx := m.view, m.ctx
	return func() tea.Msg {
		page, err := view.Fetch(ctx, req)
		return fetchedMsg{req: req, page: page, err: err}
	}
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.table.SetHeight(max(msg.Height-10, 3))
		return m, nil

	case fetchedMsg:
		m.view.Complete(msg.req, msg.page, msg.err)
		if msg.req.Seq >= m.pending {
			m.loading = false
		}
		m.sync()
		return m, nil

	case tea.KeyMsg:
		if m.selecting {
			return m.updateSelecting(msg)
		}
		return m.updateKeys(msg)
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m Model) updateSelecting(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Confirm):
		m.view.SelectFirst(m.input.Value())
		m.closeInput()
		m.sync()
		return m, nil
	case key.Matches(msg, m.keys.Cancel):
		m.closeInput()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Toggle):
		if c := m.table.Cursor(); c >= 0 && c < len(m.ids) {
			m.view.ToggleRow(m.ids[c])
			m.sync()
		}
		return m, nil

	case key.Matches(msg, m.keys.TogglePage):
		m.view.TogglePage()
		m.sync()
		return m, nil

	case key.Matches(msg, m.keys.Prev):
		if req, ok := m.view.PrevPage(); ok {
			cmd := m.start(req)
			m.sync()
			return m, cmd
		}
		return m, nil

	case key.Matches(msg, m.keys.Next):
		if req, ok := m.view.NextPage(); ok {
			cmd := m.start(req)
			m.sync()
			return m, cmd
		}
		return m, nil

	case key.Matches(msg, m.keys.Select):
		if len(m.ids) == 0 {
			return m, nil
		}
		m.selecting = true
		m.input.Reset()
		return m, m.input.Focus()
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m *Model) closeInput() {
	m.selecting = false
	m.input.Blur()
	m.input.Reset()
}

// sync copies the view model into the bubbles table.
func (m *Model) sync() {
	vm := m.view.Model()

	header := "[ ]"
	if vm.AllSelected {
		header = "[x]"
	}
	titles := append([]string{header}, vm.Columns...)
	columns := make([]btable.Column, len(titles))
	for i, t := range titles {
		columns[i] = btable.Column{Title: t, Width: columnWidths[i]}
	}

	rows := make([]btable.Row, len(vm.Rows))
	ids := make([]int64, len(vm.Rows))
	for i, r := range vm.Rows {
		check := "[ ]"
		if r.Selected {
			check = "[x]"
		}
		rows[i] = append(btable.Row{check}, r.Cells...)
		ids[i] = r.ID
	}

	m.table.SetColumns(columns)
	m.table.SetRows(rows)
	m.ids = ids

	if vm.Page != m.page {
		m.page = vm.Page
		m.table.SetCursor(0)
	}
	if len(rows) > 0 {
		switch c := m.table.Cursor(); {
		case c < 0:
			m.table.SetCursor(0)
		case c >= len(rows):
			m.table.SetCursor(len(rows) - 1)
		}
	}
	m.input.Placeholder = fmt.Sprintf("1-%d", max(vm.MaxSelect, 1))
}

// View renders the screen.
func (m Model) View() string {
	vm := m.view.Model()

	var b strings.Builder
	b.WriteString(titleStyle.Render("Artworks"))
	b.WriteString("  ")
	fmt.Fprintf(&b, "%d rows selected", vm.SelectedCount)
	if m.loading {
		b.WriteString(mutedStyle.Render("  loading..."))
	}
	b.WriteString("\n")

	if vm.Empty() {
		b.WriteString(boxStyle.Render("No data available"))
	} else {
		b.WriteString(boxStyle.Render(m.table.View()))
	}
	b.WriteString("\n")

	fmt.Fprintf(&b, "Showing %d to %d from %d entries.", vm.From, vm.To, vm.Total)
	b.WriteString("   ")
	b.WriteString(renderPages(vm))
	b.WriteString("\n")

	if m.selecting {
		b.WriteString(popoverStyle.Render("Select first rows: " + m.input.View()))
		b.WriteString("\n")
	}

	b.WriteString(mutedStyle.Render(helpText(m.keys)))
	return b.String()
}

func renderPages(vm table.Model) string {
	parts := make([]string, 0, len(vm.Pages)+2)

	prev := "‹ Prev"
	if !vm.HasPrev {
		prev = mutedStyle.Render(prev)
	}
	parts = append(parts, prev)

	for _, p := range vm.Pages {
		label := strconv.Itoa(p.Number)
		if p.Current {
			label = currentStyle.Render("[" + label + "]")
		}
		parts = append(parts, label)
	}

	next := "Next ›"
	if !vm.HasNext {
		next = mutedStyle.Render(next)
	}
	parts = append(parts, next)

	return strings.Join(parts, " ")
}

func helpText(k keyMap) string {
	bindings := k.helpLine()
	parts := make([]string, len(bindings))
	for i, b := range bindings {
		h := b.Help()
		parts[i] = h.Key + " " + h.Desc
	}
	return "↑/↓ move • " + strings.Join(parts, " • ")
}

// Run starts the terminal program and blocks until the user quits.
func Run(ctx context.Context, view *table.View, opts ...tea.ProgramOption) error {
	opts = append([]tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx)}, opts...)
	p := tea.NewProgram(New(ctx, view), opts...)
	_, err := p.Run()
	return err
}
