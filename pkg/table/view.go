// Package table composes the catalog client, the pagination controller, and
// the selection state into one table view.
//
// Every fetch is issued as a Request carrying a sequence number. A response is
// applied only when its Request is still the latest one issued; older
// responses are discarded, so a slow page can never overwrite a newer one.
// On failure the previously loaded rows stay in place.
//
// The view lock is held only while issuing and applying requests, never across
// the network call. Front ends either call the blocking helpers (Refresh,
// GoTo, Next, Prev, SetLimit) or drive the Request lifecycle themselves with
// PageTo/Fetch/Complete.
package table

import (
	"context"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"

	"github.com/Sternrassler/artwork-table/pkg/catalog"
	"github.com/Sternrassler/artwork-table/pkg/logging"
	"github.com/Sternrassler/artwork-table/pkg/pagination"
	"github.com/Sternrassler/artwork-table/pkg/selection"
)

var (
	fetchesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "artable_table_fetches_total",
		Help: "Completed table fetches by result (applied, failed, stale)",
	}, []string{"result"})

	staleResponsesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "artable_table_stale_responses_total",
		Help: "Responses discarded because a newer request was issued",
	})
)

// Fetcher loads one page of records.
type Fetcher interface {
	FetchPage(ctx context.Context, page, limit int) (*catalog.Page, error)
}

// Config holds table view configuration.
type Config struct {
	// PageSize is the initial limit.
	PageSize int

	// MaxButtons is the number of numbered page buttons.
	MaxButtons int
}

// DefaultConfig returns 12 rows per page and 5 page buttons.
func DefaultConfig() Config {
	return Config{
		PageSize:   12,
		MaxButtons: pagination.DefaultMaxButtons,
	}
}

// Request identifies one issued fetch.
type Request struct {
	Seq   uint64
	Page  int
	Limit int
}

// View is the table view state. It is safe for concurrent use.
type View struct {
	fetcher    Fetcher
	maxButtons int
	logger     zerolog.Logger

	mu     sync.Mutex
	pager  *pagination.Controller
	sel    *selection.State
	rows   []catalog.Record
	seq    uint64
	loaded bool
}

// New creates an empty view on page 1. Call Refresh to load the first page.
func New(fetcher Fetcher, cfg Config) *View {
	if cfg.MaxButtons < 1 {
		cfg.MaxButtons = pagination.DefaultMaxButtons
	}
	return &View{
		fetcher:    fetcher,
		maxButtons: cfg.MaxButtons,
		logger:     logging.NewLogger("table-view"),
		pager:      pagination.NewController(cfg.PageSize),
		sel:        selection.New(),
		rows:       []catalog.Record{},
	}
}

// Begin issues a request for the current page and limit. Any request issued
// earlier becomes stale.
func (v *View) Begin() Request {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.beginLocked()
}

func (v *View) beginLocked() Request {
	v.seq++
	return Request{Seq: v.seq, Page: v.pager.Page(), Limit: v.pager.Limit()}
}

// Fetch performs the network call for req without touching view state.
func (v *View) Fetch(ctx context.Context, req Request) (*catalog.Page, error) {
	return v.fetcher.FetchPage(ctx, req.Page, req.Limit)
}

// Complete applies the outcome of req. It reports whether rows were replaced:
// false when req is stale or the fetch failed. Failures are logged and the
// previous rows are kept.
func (v *View) Complete(req Request, page *catalog.Page, err error) bool {
	v.mu.Lock()
	defer v.mu.Unlock()

	if req.Seq != v.seq {
		fetchesTotal.WithLabelValues("stale").Inc()
		staleResponsesTotal.Inc()
		v.logger.Debug().
			Uint64("seq", req.Seq).
			Uint64("latest_seq", v.seq).
			Int("page", req.Page).
			Msg("Discarding stale response")
		return false
	}

	if err == nil && page == nil {
		err = errEmptyResponse
	}
	if err != nil {
		fetchesTotal.WithLabelValues("failed").Inc()
		v.logger.Error().
			Err(err).
			Int("page", req.Page).
			Int("limit", req.Limit).
			Str("error_class", string(catalog.ClassOf(err))).
			Uint64("seq", req.Seq).
			Msg("Failed to fetch page")
		return false
	}

	fetchesTotal.WithLabelValues("applied").Inc()
	v.rows = page.Items
	if v.rows == nil {
		v.rows = []catalog.Record{}
	}
	v.pager.Apply(page.Pagination.Total, page.Pagination.Limit)
	v.loaded = true
	return true
}

// run fetches req and applies the result.
func (v *View) run(ctx context.Context, req Request) error {
	page, err := v.Fetch(ctx, req)
	v.Complete(req, page, err)
	return err
}

// Refresh reloads the current page.
func (v *View) Refresh(ctx context.Context) error {
	return v.run(ctx, v.Begin())
}

// PageTo moves to page p and issues a request for it. It returns false, and
// issues nothing, when p is out of range or already current.
func (v *View) PageTo(p int) (Request, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.pager.SetPage(p) {
		return Request{}, false
	}
	return v.beginLocked(), true
}

// NextPage is PageTo(page+1).
func (v *View) NextPage() (Request, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.pager.HasNext() {
		return Request{}, false
	}
	v.pager.SetPage(v.pager.Page() + 1)
	return v.beginLocked(), true
}

// PrevPage is PageTo(page-1).
func (v *View) PrevPage() (Request, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.pager.HasPrev() {
		return Request{}, false
	}
	v.pager.SetPage(v.pager.Page() - 1)
	return v.beginLocked(), true
}

// Resize changes the page size, returns to page 1, and issues a request.
func (v *View) Resize(limit int) (Request, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.pager.SetLimit(limit) {
		return Request{}, false
	}
	return v.beginLocked(), true
}

// GoTo moves to page p and loads it. It reports whether navigation happened.
func (v *View) GoTo(ctx context.Context, p int) (bool, error) {
	req, ok := v.PageTo(p)
	if !ok {
		return false, nil
	}
	return true, v.run(ctx, req)
}

// Next loads the next page, if any.
func (v *View) Next(ctx context.Context) (bool, error) {
	req, ok := v.NextPage()
	if !ok {
		return false, nil
	}
	return true, v.run(ctx, req)
}

// Prev loads the previous page, if any.
func (v *View) Prev(ctx context.Context) (bool, error) {
	req, ok := v.PrevPage()
	if !ok {
		return false, nil
	}
	return true, v.run(ctx, req)
}

// SetLimit changes the page size and loads page 1.
func (v *View) SetLimit(ctx context.Context, limit int) (bool, error) {
	req, ok := v.Resize(limit)
	if !ok {
		return false, nil
	}
	return true, v.run(ctx, req)
}

// ToggleRow flips the selection of a row on the current page.
// IDs that are not on the current page are ignored.
func (v *View) ToggleRow(id int64) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	for _, r := range v.rows {
		if r.ID == id {
			v.sel.Toggle(id)
			return true
		}
	}
	return false
}

// TogglePage selects every row on the page, or deselects them all when all
// are already selected.
func (v *View) TogglePage() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.sel.TogglePage(catalog.RecordIDs(v.rows))
}

// SelectFirst parses raw as a row count and replaces the selection with the
// first rows of the page. Invalid input is ignored and reported as false.
func (v *View) SelectFirst(raw string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.sel.SelectFirstInput(catalog.RecordIDs(v.rows), raw)
}

// SelectFirstN is SelectFirst with an already parsed count.
func (v *View) SelectFirstN(n int) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.sel.SelectFirst(catalog.RecordIDs(v.rows), n)
}

// IsSelected reports whether id is selected.
func (v *View) IsSelected(id int64) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.sel.IsSelected(id)
}

// SelectedCount returns the number of selected records.
func (v *View) SelectedCount() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.sel.Count()
}

// Selection returns the selected and deselected IDs in ascending order.
func (v *View) Selection() (selected, deselected []int64) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.sel.Selected(), v.sel.Deselected()
}

// Rows returns a copy of the loaded records.
func (v *View) Rows() []catalog.Record {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := make([]catalog.Record, len(v.rows))
	copy(out, v.rows)
	return out
}
