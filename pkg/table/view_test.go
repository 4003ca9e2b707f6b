package table

import (
	"context"
	"errors"
	"net/http"
	"testing"

	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sternrassler/artwork-table/internal/testutil"
	"github.com/Sternrassler/artwork-table/pkg/catalog"
)

// stubFetcher answers from testutil.PageFor, or with err when set.
type stubFetcher struct {
	total int
	err   error
	calls int
}

func (s *stubFetcher) FetchPage(_ context.Context, page, limit int) (*catalog.Page, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	p := testutil.PageFor(page, limit, s.total)
	return &p, nil
}

func newMockView(t *testing.T, total int) (*View, *testutil.MockCatalog) {
	t.Helper()
	mock := testutil.NewMockCatalog(total)
	t.Cleanup(mock.Close)

	cfg := catalog.DefaultConfig("table-tests/1.0")
	cfg.BaseURL = mock.BaseURL()
	client, err := catalog.New(cfg)
	require.NoError(t, err)

	return New(client, DefaultConfig()), mock
}

func TestView_SelectionSurvivesNavigation(t *testing.T) {
	ctx := context.Background()
	v, _ := newMockView(t, 100)

	require.NoError(t, v.Refresh(ctx))
	m := v.Model()
	require.Len(t, m.Rows, 12)
	assert.Equal(t, 9, m.TotalPages)

	for _, id := range []int64{1, 3, 5} {
		require.True(t, v.ToggleRow(id))
	}
	assert.Equal(t, 3, v.SelectedCount())

	moved, err := v.GoTo(ctx, 2)
	require.NoError(t, err)
	require.True(t, moved)
	assert.Equal(t, int64(13), v.Model().Rows[0].ID)

	moved, err = v.GoTo(ctx, 1)
	require.NoError(t, err)
	require.True(t, moved)

	m = v.Model()
	for _, row := range m.Rows {
		want := row.ID == 1 || row.ID == 3 || row.ID == 5
		assert.Equal(t, want, row.Selected, "row %d", row.ID)
	}
	assert.Equal(t, 3, m.SelectedCount)
	assert.False(t, m.AllSelected)
}

func TestView_SelectFirstFive(t *testing.T) {
	ctx := context.Background()
	v, _ := newMockView(t, 100)
	require.NoError(t, v.Refresh(ctx))

	require.True(t, v.SelectFirst("5"))

	selected, deselected := v.Selection()
	assert.Equal(t, []int64{1, 2, 3, 4, 5}, selected)
	assert.Equal(t, []int64{6, 7, 8, 9, 10, 11, 12}, deselected)
	assert.Equal(t, 5, v.SelectedCount())

	m := v.Model()
	for i, row := range m.Rows {
		assert.Equal(t, i < 5, row.Selected, "row %d", i)
	}
}

func TestView_SelectFirstInvalidIsNoOp(t *testing.T) {
	ctx := context.Background()
	v, _ := newMockView(t, 100)
	require.NoError(t, v.Refresh(ctx))
	require.True(t, v.ToggleRow(2))

	for _, raw := range []string{"0", "-3", "abc"} {
		assert.False(t, v.SelectFirst(raw))
	}
	assert.False(t, v.SelectFirstN(0))

	selected, deselected := v.Selection()
	assert.Equal(t, []int64{2}, selected)
	assert.Empty(t, deselected)
}

func TestView_TogglePageDrivesHeader(t *testing.T) {
	ctx := context.Background()
	v, _ := newMockView(t, 30)
	require.NoError(t, v.Refresh(ctx))

	v.TogglePage()
	m := v.Model()
	assert.True(t, m.AllSelected)
	assert.Equal(t, 12, m.SelectedCount)

	v.TogglePage()
	m = v.Model()
	assert.False(t, m.AllSelected)
	assert.Zero(t, m.SelectedCount)
}

func TestView_ToggleRowNotOnPage(t *testing.T) {
	v, _ := newMockView(t, 100)
	require.NoError(t, v.Refresh(context.Background()))

	assert.False(t, v.ToggleRow(99))
	assert.Zero(t, v.SelectedCount())
}

func TestView_FailureKeepsRows(t *testing.T) {
	ctx := context.Background()
	v, mock := newMockView(t, 100)
	require.NoError(t, v.Refresh(ctx))
	require.True(t, v.ToggleRow(4))

	mock.FailWith(http.StatusInternalServerError)
	moved, err := v.Next(ctx)
	require.True(t, moved)
	require.Error(t, err)
	assert.Equal(t, catalog.ErrorClassServer, catalog.ClassOf(err))

	m := v.Model()
	assert.Equal(t, 2, m.Page, "page follows the control even when the fetch fails")
	require.Len(t, m.Rows, 12)
	assert.Equal(t, int64(1), m.Rows[0].ID, "previous rows stay in place")
	assert.True(t, v.IsSelected(4))

	mock.FailWith(0)
	require.NoError(t, v.Refresh(ctx))
	assert.Equal(t, int64(13), v.Model().Rows[0].ID)
}

func TestView_StaleResponseDiscarded(t *testing.T) {
	f := &stubFetcher{total: 100}
	v := New(f, DefaultConfig())
	require.NoError(t, v.Refresh(context.Background()))

	slow, ok := v.PageTo(2)
	require.True(t, ok)
	fast, ok := v.PageTo(3)
	require.True(t, ok)
	assert.Greater(t, fast.Seq, slow.Seq)

	fastPage, err := v.Fetch(context.Background(), fast)
	require.NoError(t, err)
	require.True(t, v.Complete(fast, fastPage, nil))

	stale := promtest.ToFloat64(staleResponsesTotal)
	slowPage, err := v.Fetch(context.Background(), slow)
	require.NoError(t, err)
	assert.False(t, v.Complete(slow, slowPage, nil), "older response must be discarded")
	assert.Equal(t, stale+1, promtest.ToFloat64(staleResponsesTotal))

	m := v.Model()
	assert.Equal(t, 3, m.Page)
	assert.Equal(t, int64(25), m.Rows[0].ID)
}

func TestView_StaleFailureIgnored(t *testing.T) {
	f := &stubFetcher{total: 100}
	v := New(f, DefaultConfig())
	require.NoError(t, v.Refresh(context.Background()))

	old := v.Begin()
	latest := v.Begin()

	assert.False(t, v.Complete(old, nil, errors.New("late failure")))
	page, err := v.Fetch(context.Background(), latest)
	require.NoError(t, err)
	assert.True(t, v.Complete(latest, page, nil))
}

func TestView_NilPageIsFailure(t *testing.T) {
	v := New(&stubFetcher{total: 10}, DefaultConfig())
	req := v.Begin()
	assert.False(t, v.Complete(req, nil, nil))
	assert.False(t, v.Model().Loaded)
}

func TestView_NavigationBounds(t *testing.T) {
	ctx := context.Background()
	f := &stubFetcher{total: 30}
	v := New(f, DefaultConfig())

	moved, err := v.GoTo(ctx, 2)
	require.NoError(t, err)
	assert.False(t, moved, "no pages are known before the first fetch")

	require.NoError(t, v.Refresh(ctx))
	calls := f.calls

	moved, err = v.Prev(ctx)
	require.NoError(t, err)
	assert.False(t, moved)

	for _, p := range []int{0, 1, 4, -1} {
		moved, err = v.GoTo(ctx, p)
		require.NoError(t, err)
		assert.False(t, moved, "GoTo(%d)", p)
	}
	assert.Equal(t, calls, f.calls, "out-of-range navigation issues no fetch")

	moved, err = v.GoTo(ctx, 3)
	require.NoError(t, err)
	require.True(t, moved)

	moved, err = v.Next(ctx)
	require.NoError(t, err)
	assert.False(t, moved)

	m := v.Model()
	assert.True(t, m.HasPrev)
	assert.False(t, m.HasNext)
	assert.Equal(t, 25, m.From)
	assert.Equal(t, 30, m.To)
	assert.Equal(t, 6, m.MaxSelect)
}

func TestView_SetLimit(t *testing.T) {
	ctx := context.Background()
	v, mock := newMockView(t, 100)
	require.NoError(t, v.Refresh(ctx))
	_, err := v.GoTo(ctx, 3)
	require.NoError(t, err)

	changed, err := v.SetLimit(ctx, 25)
	require.NoError(t, err)
	require.True(t, changed)

	assert.Equal(t, "25", mock.LastQuery().Get("limit"))
	assert.Equal(t, "1", mock.LastQuery().Get("page"))

	m := v.Model()
	assert.Equal(t, 1, m.Page)
	assert.Equal(t, 25, m.Limit)
	assert.Equal(t, 4, m.TotalPages)
	assert.Len(t, m.Rows, 25)

	changed, err = v.SetLimit(ctx, 0)
	require.NoError(t, err)
	assert.False(t, changed)
}

func TestView_ModelBeforeLoad(t *testing.T) {
	v := New(&stubFetcher{}, DefaultConfig())
	m := v.Model()

	assert.False(t, m.Loaded)
	assert.True(t, m.Empty())
	assert.Empty(t, m.Pages)
	assert.False(t, m.HasPrev)
	assert.False(t, m.HasNext)
	assert.Zero(t, m.From)
	assert.Zero(t, m.To)
	assert.Equal(t, catalog.Columns, m.Columns)
}

func TestView_ModelPageButtons(t *testing.T) {
	ctx := context.Background()
	v := New(&stubFetcher{total: 240}, DefaultConfig())
	require.NoError(t, v.Refresh(ctx))
	_, err := v.GoTo(ctx, 10)
	require.NoError(t, err)

	m := v.Model()
	require.Len(t, m.Pages, 5)
	for i, b := range m.Pages {
		assert.Equal(t, 8+i, b.Number)
		assert.Equal(t, b.Number == 10, b.Current)
	}
	assert.Equal(t, 109, m.From)
	assert.Equal(t, 120, m.To)
	assert.Equal(t, 240, m.Total)
}

func TestView_RowCellsUsePlaceholder(t *testing.T) {
	v := New(&stubFetcher{total: 3}, DefaultConfig())
	require.NoError(t, v.Refresh(context.Background()))

	m := v.Model()
	require.Len(t, m.Rows, 3)
	assert.Equal(t, catalog.Placeholder, m.Rows[2].Cells[2], "record 3 has no artist")
	assert.Equal(t, "Artwork 1", m.Rows[0].Cells[0])
}
