package tui

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sternrassler/artwork-table/internal/testutil"
	"github.com/Sternrassler/artwork-table/pkg/catalog"
	"github.com/Sternrassler/artwork-table/pkg/table"
)

type stubFetcher struct{ total int }

func (s stubFetcher) FetchPage(_ context.Context, page, limit int) (*catalog.Page, error) {
	p := testutil.PageFor(page, limit, s.total)
	return &p, nil
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

var (
	space = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	right = tea.KeyMsg{Type: tea.KeyRight}
	left  = tea.KeyMsg{Type: tea.KeyLeft}
	down  = tea.KeyMsg{Type: tea.KeyDown}
	enter = tea.KeyMsg{Type: tea.KeyEnter}
	esc   = tea.KeyMsg{Type: tea.KeyEsc}
)

// loaded returns a model whose first page has been fetched.
func loaded(t *testing.T, total int) (Model, *table.View) {
	t.Helper()
	view := table.New(stubFetcher{total: total}, table.DefaultConfig())
	m := New(context.Background(), view)

	cmd := m.Init()
	require.NotNil(t, cmd)
	return send(t, m, cmd()), view
}

func send(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	return next.(Model)
}

// press sends a key without running the command it returns.
func press(t *testing.T, m Model, key tea.KeyMsg) Model {
	t.Helper()
	return send(t, m, key)
}

// navigate sends a paging key and delivers the fetch it issues.
func navigate(t *testing.T, m Model, key tea.KeyMsg) Model {
	t.Helper()
	next, cmd := m.Update(key)
	require.NotNil(t, cmd, "key %q issued no fetch", key.String())
	msg, ok := cmd().(fetchedMsg)
	require.True(t, ok)
	return send(t, next.(Model), msg)
}

func TestInit_LoadsFirstPage(t *testing.T) {
	m, view := loaded(t, 100)

	vm := view.Model()
	assert.True(t, vm.Loaded)
	assert.Len(t, m.ids, 12)
	assert.Equal(t, int64(1), m.ids[0])

	out := m.View()
	assert.Contains(t, out, "Artwork 1")
	assert.Contains(t, out, "0 rows selected")
	assert.Contains(t, out, "Showing 1 to 12 from 100 entries.")
}

func TestNew_ShowsLoadingUntilFirstPage(t *testing.T) {
	view := table.New(stubFetcher{total: 100}, table.DefaultConfig())
	m := New(context.Background(), view)

	assert.True(t, m.loading)
	assert.Contains(t, m.View(), "loading...")

	m = send(t, m, m.Init()())
	assert.False(t, m.loading)
	assert.NotContains(t, m.View(), "loading...")
}

func TestFirstPage_CursorOnFirstRow(t *testing.T) {
	m, view := loaded(t, 100)
	assert.Equal(t, 0, m.table.Cursor())

	m = press(t, m, space)
	assert.True(t, view.IsSelected(1))
	assert.Contains(t, m.View(), "1 rows selected")
}

func TestToggleRowAtCursor(t *testing.T) {
	m, view := loaded(t, 100)

	m = press(t, m, space)
	m = press(t, m, down)
	m = press(t, m, down)
	m = press(t, m, space)

	sel, _ := view.Selection()
	assert.Equal(t, []int64{1, 3}, sel)
	assert.Contains(t, m.View(), "2 rows selected")
}

func TestSelectionSurvivesPaging(t *testing.T) {
	m, view := loaded(t, 100)
	m = press(t, m, space)

	m = navigate(t, m, right)
	assert.Equal(t, 2, view.Model().Page)
	assert.Equal(t, int64(13), m.ids[0])
	assert.Equal(t, 0, m.table.Cursor(), "cursor resets on page change")

	m = navigate(t, m, runes("h"))
	assert.Equal(t, 1, view.Model().Page)
	assert.True(t, view.IsSelected(1))
	assert.Contains(t, m.View(), "[x]")
}

func TestTogglePageKey(t *testing.T) {
	m, view := loaded(t, 100)

	m = press(t, m, runes("a"))
	assert.True(t, view.Model().AllSelected)
	assert.Equal(t, "[x]", m.table.Columns()[0].Title)

	m = press(t, m, runes("a"))
	assert.Zero(t, view.SelectedCount())
	assert.Equal(t, "[ ]", m.table.Columns()[0].Title)
}

func TestSelectFirstInput(t *testing.T) {
	m, view := loaded(t, 100)

	m = press(t, m, runes("s"))
	require.True(t, m.selecting)
	assert.Contains(t, m.View(), "Select first rows")

	m = press(t, m, runes("5"))
	m = press(t, m, enter)

	assert.False(t, m.selecting)
	sel, desel := view.Selection()
	assert.Equal(t, []int64{1, 2, 3, 4, 5}, sel)
	assert.Len(t, desel, 7)
}

func TestSelectFirstInput_CancelAndInvalid(t *testing.T) {
	m, view := loaded(t, 100)

	m = press(t, m, runes("s"))
	m = press(t, m, runes("3"))
	m = press(t, m, esc)
	assert.False(t, m.selecting)
	assert.Zero(t, view.SelectedCount())

	m = press(t, m, runes("s"))
	m = press(t, m, runes("x"))
	m = press(t, m, enter)
	assert.False(t, m.selecting)
	assert.Zero(t, view.SelectedCount())

	// keys typed into the input do not act on the table
	m = press(t, m, runes("s"))
	m = press(t, m, runes("a"))
	assert.Zero(t, view.SelectedCount())
	assert.True(t, m.selecting)
}

func TestNavigationBounds(t *testing.T) {
	m, view := loaded(t, 20)

	next, cmd := m.Update(left)
	assert.Nil(t, cmd, "no fetch before page 1")
	m = next.(Model)

	m = navigate(t, m, right)
	assert.Equal(t, 2, view.Model().Page)

	_, cmd = m.Update(right)
	assert.Nil(t, cmd, "no fetch past the last page")
}

func TestStaleResponseDropped(t *testing.T) {
	m, view := loaded(t, 100)

	next, slowCmd := m.Update(right)
	m = next.(Model)
	next, fastCmd := m.Update(right)
	m = next.(Model)
	require.NotNil(t, slowCmd)
	require.NotNil(t, fastCmd)
	assert.True(t, m.loading)

	m = send(t, m, fastCmd())
	assert.False(t, m.loading)
	assert.Equal(t, int64(25), m.ids[0])

	m = send(t, m, slowCmd())
	assert.Equal(t, 3, view.Model().Page)
	assert.Equal(t, int64(25), m.ids[0], "the page 2 response arrived late and was dropped")
}

func TestEmptyCatalog(t *testing.T) {
	m, _ := loaded(t, 0)

	out := m.View()
	assert.Contains(t, out, "No data available")
	assert.Contains(t, out, "Showing 0 to 0 from 0 entries.")

	m = press(t, m, runes("s"))
	assert.False(t, m.selecting, "nothing to select on an empty page")
}

func TestQuit(t *testing.T) {
	m, _ := loaded(t, 10)

	_, cmd := m.Update(runes("q"))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())
}

func TestWindowResize(t *testing.T) {
	m, _ := loaded(t, 100)
	m = send(t, m, tea.WindowSizeMsg{Width: 120, Height: 30})

	assert.Equal(t, 120, m.width)
	assert.Contains(t, m.View(), "Artwork 1")
}

func TestHelpText(t *testing.T) {
	help := helpText(defaultKeyMap())
	for _, want := range []string{"space toggle row", "a toggle page", "s select first n", "q quit"} {
		assert.True(t, strings.Contains(help, want), "help %q missing %q", help, want)
	}
}
