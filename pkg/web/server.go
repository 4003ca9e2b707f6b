// Package web serves the artwork table to browsers.
//
// Each browser gets a session cookie. The session's table view lives in a
// process-local registry while it is in use and is written to the session
// store after every request, so a restarted process (or another replica
// sharing Redis) picks up where the user left off. Snapshots carry a version;
// a replica whose live view is older than the stored snapshot reloads it.
//
// All mutations are plain form POSTs answered with 303 See Other back to /.
package web

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"

	"github.com/Sternrassler/artwork-table/pkg/logging"
	"github.com/Sternrassler/artwork-table/pkg/metrics"
	"github.com/Sternrassler/artwork-table/pkg/session"
	"github.com/Sternrassler/artwork-table/pkg/table"
)

// CookieName is the session cookie.
const CookieName = "artable_session"

//go:embed templates/*.html
var templatesFS embed.FS

var httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "artable_http_requests_total",
	Help: "Handled browser requests by route and status",
}, []string{"route", "status"})

// Pinger is implemented by stores that can report their health.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Config holds server configuration.
type Config struct {
	// Table configures every new table view.
	Table table.Config

	// SessionTTL bounds both the cookie lifetime and how long an idle view stays in memory.
	SessionTTL time.Duration

	// LimitOptions are offered in the page size selector.
	LimitOptions []int

	// SecureCookie sets the Secure flag on the session cookie.
	SecureCookie bool
}

// DefaultConfig returns the default server configuration.
func DefaultConfig() Config {
	return Config{
		Table:        table.DefaultConfig(),
		SessionTTL:   30 * time.Minute,
		LimitOptions: []int{12, 24, 48, 96},
	}
}

// liveView is a session view held in memory. version is the snapshot
// version it was restored from or last persisted as.
type liveView struct {
	view     *table.View
	version  uint64
	lastUsed time.Time
}

// Server is the browser front end.
type Server struct {
	fetcher table.Fetcher
	store   session.Store
	config  Config
	logger  zerolog.Logger
	router  *gin.Engine
	now     func() time.Time

	mu        sync.Mutex
	views     map[string]*liveView
	lastPrune time.Time
}

// New creates a server. fetcher loads catalog pages; store keeps snapshots.
func New(fetcher table.Fetcher, store session.Store, cfg Config) (*Server, error) {
	if fetcher == nil {
		return nil, errors.New("fetcher is required")
	}
	if store == nil {
		return nil, errors.New("session store is required")
	}
	if cfg.SessionTTL <= 0 {
		return nil, errors.New("session ttl must be > 0")
	}
	if len(cfg.LimitOptions) == 0 {
		cfg.LimitOptions = DefaultConfig().LimitOptions
	}

	tmpl, err := template.New("").Funcs(template.FuncMap{
		"inc": func(i int) int { return i + 1 },
	}).ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, err
	}

	s := &Server{
		fetcher: fetcher,
		store:   store,
		config:  cfg,
		logger:  logging.NewLogger("web"),
		now:     time.Now,
		views:   make(map[string]*liveView),
	}

	r := gin.New()
	r.Use(gin.Recovery(), s.observe())
	r.SetHTMLTemplate(tmpl)

	r.GET("/", s.handleIndex)
	r.POST("/page", s.handlePage)
	r.POST("/prev", s.handlePrev)
	r.POST("/next", s.handleNext)
	r.POST("/limit", s.handleLimit)
	r.POST("/rows/toggle-page", s.handleTogglePage)
	r.POST("/rows/select-first", s.handleSelectFirst)
	r.POST("/rows/:id/toggle", s.handleToggleRow)
	r.GET("/api/state", s.handleState)

	r.GET("/health", s.handleHealth)
	r.GET("/ready", s.handleReady)
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	s.router = r
	return s, nil
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// observe counts and logs every request.
func (s *Server) observe() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()
		httpRequestsTotal.WithLabelValues(route, strconv.Itoa(status)).Inc()

		s.logger.Debug().
			Str("method", c.Request.Method).
			Str("route", route).
			Int("status_code", status).
			Dur("duration", time.Since(start)).
			Msg("Handled request")
	}
}

// sessionView returns the session id, its registry entry and the view to
// serve the request with, creating them when needed. A newer snapshot in the
// store replaces the live view. A new view is not fetched here.
func (s *Server) sessionView(c *gin.Context) (string, *liveView, *table.View) {
	id, err := c.Cookie(CookieName)
	if err != nil || !session.ValidID(id) {
		id = session.NewID()
	}
	// refresh the cookie so it expires together with the stored snapshot
	c.SetCookie(CookieName, id, int(s.config.SessionTTL.Seconds()), "/", "", s.config.SecureCookie, true)

	now := s.now()
	s.mu.Lock()
	s.pruneLocked(now)
	s.mu.Unlock()

	snap := s.load(c.Request.Context(), id)

	s.mu.Lock()
	defer s.mu.Unlock()

	lv, ok := s.views[id]
	if !ok {
		lv = &liveView{view: table.New(s.fetcher, s.config.Table)}
		s.views[id] = lv
	}
	lv.lastUsed = now

	if snap != nil && (!ok || snap.Version > lv.version) {
		view, err := table.Restore(s.fetcher, s.config.Table, snap)
		if err != nil {
			s.logger.Warn().Err(err).Str("session", id).Msg("Discarding unreadable session snapshot")
		} else {
			lv.view = view
			lv.version = snap.Version
		}
	}
	return id, lv, lv.view
}

// load reads the stored snapshot. Missing or unavailable snapshots yield nil.
func (s *Server) load(ctx context.Context, id string) *table.Snapshot {
	snap, err := s.store.Get(ctx, id)
	switch {
	case err == nil:
		return snap
	case errors.Is(err, session.ErrNotFound):
	default:
		s.logger.Warn().Err(err).Str("session", id).Msg("Session store unavailable, using live view")
	}
	return nil
}

// persist writes the view snapshot to the store under the next version.
// Failures only cost the ability to resume in another process.
func (s *Server) persist(ctx context.Context, id string, lv *liveView, view *table.View) {
	snap, err := view.Snapshot()
	if err != nil {
		s.logger.Warn().Err(err).Str("session", id).Msg("Failed to snapshot view")
		return
	}

	s.mu.Lock()
	lv.version++
	snap.Version = lv.version
	s.mu.Unlock()

	if err := s.store.Set(ctx, id, snap); err != nil {
		s.logger.Warn().Err(err).Str("session", id).Msg("Failed to persist session")
	}
}

func (s *Server) pruneLocked(now time.Time) {
	if now.Sub(s.lastPrune) < time.Minute {
		return
	}
	s.lastPrune = now
	for id, lv := range s.views {
		if now.Sub(lv.lastUsed) > s.config.SessionTTL {
			delete(s.views, id)
		}
	}
}

// LiveViews returns the number of views held in memory.
func (s *Server) LiveViews() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.views)
}
