package table

import (
	"errors"

	"github.com/Sternrassler/artwork-table/pkg/catalog"
)

var errEmptyResponse = errors.New("fetcher returned no page and no error")

// Row is one rendered table row.
type Row struct {
	ID       int64
	Cells    []string
	Selected bool
}

// PageButton is one numbered pagination button.
type PageButton struct {
	Number  int
	Current bool
}

// Model is everything a front end needs to draw the table. It is a copy and
// does not change when the view does.
type Model struct {
	Columns []string
	Rows    []Row

	// AllSelected drives the header checkbox.
	AllSelected   bool
	SelectedCount int

	Page       int
	Limit      int
	Total      int
	TotalPages int
	Pages      []PageButton
	HasPrev    bool
	HasNext    bool

	// From and To are the 1-based positions shown in the range caption.
	From int
	To   int

	// MaxSelect bounds the select-first input (1..MaxSelect).
	MaxSelect int

	// Loaded is false until the first successful fetch.
	Loaded bool
}

// Empty reports whether there are no rows to show.
func (m Model) Empty() bool {
	return len(m.Rows) == 0
}

// Model renders the current state.
func (v *View) Model() Model {
	v.mu.Lock()
	defer v.mu.Unlock()

	ids := catalog.RecordIDs(v.rows)
	rows := make([]Row, len(v.rows))
	for i, r := range v.rows {
		rows[i] = Row{
			ID:       r.ID,
			Cells:    r.Cells(),
			Selected: v.sel.IsSelected(r.ID),
		}
	}

	window := v.pager.PageWindow(v.maxButtons)
	buttons := make([]PageButton, len(window))
	for i, p := range window {
		buttons[i] = PageButton{Number: p, Current: p == v.pager.Page()}
	}

	from, to := v.pager.DisplayRange(len(v.rows))

	return Model{
		Columns:       append([]string(nil), catalog.Columns...),
		Rows:          rows,
		AllSelected:   v.sel.AllSelected(ids),
		SelectedCount: v.sel.Count(),
		Page:          v.pager.Page(),
		Limit:         v.pager.Limit(),
		Total:         v.pager.Total(),
		TotalPages:    v.pager.TotalPages(),
		Pages:         buttons,
		HasPrev:       v.pager.HasPrev(),
		HasNext:       v.pager.HasNext(),
		From:          from,
		To:            to,
		MaxSelect:     len(v.rows),
		Loaded:        v.loaded,
	}
}
