package web

import (
	"context"
	"net/http"
	"slices"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Sternrassler/artwork-table/pkg/table"
)

type indexData struct {
	Model        table.Model
	SelectOpen   bool
	LimitOptions []int
}

// stateResponse is the JSON form of the table state.
type stateResponse struct {
	Page          int        `json:"page"`
	Limit         int        `json:"limit"`
	Total         int        `json:"total"`
	TotalPages    int        `json:"total_pages"`
	Pages         []int      `json:"pages"`
	HasPrev       bool       `json:"has_prev"`
	HasNext       bool       `json:"has_next"`
	From          int        `json:"from"`
	To            int        `json:"to"`
	AllSelected   bool       `json:"all_selected"`
	SelectedCount int        `json:"selected_count"`
	Selected      []int64    `json:"selected"`
	Deselected    []int64    `json:"deselected"`
	Columns       []string   `json:"columns"`
	Rows          []stateRow `json:"rows"`
	Loaded        bool       `json:"loaded"`
}

type stateRow struct {
	ID       int64    `json:"id"`
	Cells    []string `json:"cells"`
	Selected bool     `json:"selected"`
}

// ensureLoaded fetches the current page when the view has never loaded one.
// Fetch failures are logged by the view and the page renders without rows.
func ensureLoaded(ctx context.Context, view *table.View) {
	if !view.Model().Loaded {
		_ = view.Refresh(ctx)
	}
}

func (s *Server) handleIndex(c *gin.Context) {
	ctx := c.Request.Context()
	id, lv, view := s.sessionView(c)
	ensureLoaded(ctx, view)
	s.persist(ctx, id, lv, view)

	model := view.Model()
	options := s.config.LimitOptions
	if !slices.Contains(options, model.Limit) {
		options = append(slices.Clone(options), model.Limit)
		slices.Sort(options)
	}

	c.HTML(http.StatusOK, "table.html", indexData{
		Model:        model,
		SelectOpen:   c.Query("select") == "1" && !model.Empty(),
		LimitOptions: options,
	})
}

// mutate runs fn against the session view, persists the result, and
// redirects back to the table.
func (s *Server) mutate(c *gin.Context, fn func(ctx context.Context, view *table.View)) {
	ctx := c.Request.Context()
	id, lv, view := s.sessionView(c)
	ensureLoaded(ctx, view)
	fn(ctx, view)
	s.persist(ctx, id, lv, view)
	c.Redirect(http.StatusSeeOther, "/")
}

func (s *Server) handlePage(c *gin.Context) {
	p, err := strconv.Atoi(c.PostForm("page"))
	s.mutate(c, func(ctx context.Context, view *table.View) {
		if err == nil {
			_, _ = view.GoTo(ctx, p)
		}
	})
}

func (s *Server) handlePrev(c *gin.Context) {
	s.mutate(c, func(ctx context.Context, view *table.View) {
		_, _ = view.Prev(ctx)
	})
}

func (s *Server) handleNext(c *gin.Context) {
	s.mutate(c, func(ctx context.Context, view *table.View) {
		_, _ = view.Next(ctx)
	})
}

func (s *Server) handleLimit(c *gin.Context) {
	limit, err := strconv.Atoi(c.PostForm("limit"))
	s.mutate(c, func(ctx context.Context, view *table.View) {
		if err == nil {
			_, _ = view.SetLimit(ctx, limit)
		}
	})
}

func (s *Server) handleToggleRow(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	s.mutate(c, func(_ context.Context, view *table.View) {
		if err == nil {
			view.ToggleRow(id)
		}
	})
}

func (s *Server) handleTogglePage(c *gin.Context) {
	s.mutate(c, func(_ context.Context, view *table.View) {
		view.TogglePage()
	})
}

func (s *Server) handleSelectFirst(c *gin.Context) {
	raw := c.PostForm("count")
	s.mutate(c, func(_ context.Context, view *table.View) {
		view.SelectFirst(raw)
	})
}

func (s *Server) handleState(c *gin.Context) {
	ctx := c.Request.Context()
	id, lv, view := s.sessionView(c)
	ensureLoaded(ctx, view)
	s.persist(ctx, id, lv, view)

	model := view.Model()
	selected, deselected := view.Selection()

	pages := make([]int, len(model.Pages))
	for i, b := range model.Pages {
		pages[i] = b.Number
	}
	rows := make([]stateRow, len(model.Rows))
	for i, r := range model.Rows {
		rows[i] = stateRow{ID: r.ID, Cells: r.Cells, Selected: r.Selected}
	}

	c.JSON(http.StatusOK, stateResponse{
		Page:          model.Page,
		Limit:         model.Limit,
		Total:         model.Total,
		TotalPages:    model.TotalPages,
		Pages:         pages,
		HasPrev:       model.HasPrev,
		HasNext:       model.HasNext,
		From:          model.From,
		To:            model.To,
		AllSelected:   model.AllSelected,
		SelectedCount: model.SelectedCount,
		Selected:      selected,
		Deselected:    deselected,
		Columns:       model.Columns,
		Rows:          rows,
		Loaded:        model.Loaded,
	})
}

func (s *Server) handleHealth(c *gin.Context) {
	c.String(http.StatusOK, "OK")
}

func (s *Server) handleReady(c *gin.Context) {
	pinger, ok := s.store.(Pinger)
	if !ok {
		c.String(http.StatusOK, "OK")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := pinger.Ping(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("Readiness check failed")
		c.String(http.StatusServiceUnavailable, "Session store not ready")
		return
	}
	c.String(http.StatusOK, "OK")
}
