// Package testutil provides testing utilities for the artwork table.
package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/Sternrassler/artwork-table/pkg/catalog"
)

// APIPath is the path prefix the mock serves; use BaseURL() as the client base.
const APIPath = "/api/v1"

// MockCatalog is a configurable in-memory catalog server for tests.
// Record IDs are 1..Total, in page order.
type MockCatalog struct {
	server *httptest.Server

	mu          sync.RWMutex
	total       int
	failStatus  int
	delays      map[int]time.Duration
	requests    int
	lastQuery   url.Values
	lastHeaders http.Header
}

// NewMockCatalog starts a mock catalog holding total records.
func NewMockCatalog(total int) *MockCatalog {
	m := &MockCatalog{
		total:  total,
		delays: make(map[int]time.Duration),
	}

	mux := http.NewServeMux()
	mux.HandleFunc(APIPath+"/artworks", m.handleArtworks)
	m.server = httptest.NewServer(mux)

	return m
}

// URL returns the mock server root URL.
func (m *MockCatalog) URL() string {
	return m.server.URL
}

// BaseURL returns the value to use as catalog.Config.BaseURL.
func (m *MockCatalog) BaseURL() string {
	return m.server.URL + APIPath
}

// Close shuts down the mock server.
func (m *MockCatalog) Close() {
	m.server.Close()
}

// SetTotal changes the collection size.
func (m *MockCatalog) SetTotal(total int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.total = total
}

// FailWith makes every request answer with status. Zero restores normal answers.
func (m *MockCatalog) FailWith(status int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failStatus = status
}

// DelayPage makes requests for page wait d before answering.
func (m *MockCatalog) DelayPage(page int, d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.delays[page] = d
}

// RequestCount returns the number of requests served.
func (m *MockCatalog) RequestCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.requests
}

// LastQuery returns the query parameters of the latest request.
func (m *MockCatalog) LastQuery() url.Values {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastQuery
}

// LastHeaders returns the headers of the latest request.
func (m *MockCatalog) LastHeaders() http.Header {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastHeaders
}

func (m *MockCatalog) handleArtworks(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	m.mu.Lock()
	m.requests++
	m.lastQuery = q
	m.lastHeaders = r.Header.Clone()
	total := m.total
	failStatus := m.failStatus
	m.mu.Unlock()

	page, err := strconv.Atoi(q.Get("page"))
	if err != nil || page < 1 {
		page = 1
	}
	limit, err := strconv.Atoi(q.Get("limit"))
	if err != nil || limit < 1 {
		limit = 12
	}

	m.mu.RLock()
	delay := m.delays[page]
	m.mu.RUnlock()
	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-r.Context().Done():
			return
		}
	}

	if failStatus != 0 {
		http.Error(w, `{"error": "mock failure"}`, failStatus)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(PageFor(page, limit, total)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// PageFor builds the page the mock would serve.
func PageFor(page, limit, total int) catalog.Page {
	items := []catalog.Record{}
	for id := (page-1)*limit + 1; id <= page*limit && id <= total; id++ {
		items = append(items, NewRecord(int64(id)))
	}
	return catalog.Page{
		Items: items,
		Pagination: catalog.Pagination{
			Total:       total,
			Limit:       limit,
			CurrentPage: page,
		},
	}
}

// NewRecord returns a deterministic record. Every third record has no artist,
// every fifth has no inscriptions, to exercise placeholder rendering.
func NewRecord(id int64) catalog.Record {
	title := fmt.Sprintf("Artwork %d", id)
	place := "Chicago"
	start := 1800 + int(id)
	end := start + 5

	rec := catalog.Record{
		ID:            id,
		Title:         &title,
		PlaceOfOrigin: &place,
		DateStart:     &start,
		DateEnd:       &end,
	}
	if id%3 != 0 {
		artist := fmt.Sprintf("Artist %d", id)
		rec.ArtistTitle = &artist
	}
	if id%5 != 0 {
		ins := fmt.Sprintf("Signed %d", id)
		rec.Inscriptions = &ins
	}
	return rec
}
