// Package catalog provides the HTTP adapter for the remote artwork catalog.
// It fetches one page of records at a time; nothing is cached between calls.
package catalog

import "strconv"

// Placeholder is rendered for every missing field.
const Placeholder = "N/A"

// Columns are the display headers, in the order returned by Record.Cells.
var Columns = []string{"Title", "Place of Origin", "Artist", "Inscriptions", "Start Date", "End Date"}

// Record is one artwork as returned by the catalog.
// Every field except ID may be null on the wire.
type Record struct {
	ID            int64   `json:"id"`
	Title         *string `json:"title"`
	PlaceOfOrigin *string `json:"place_of_origin"`
	ArtistTitle   *string `json:"artist_title"`
	Inscriptions  *string `json:"inscriptions"`
	DateStart     *int    `json:"date_start"`
	DateEnd       *int    `json:"date_end"`
}

// Pagination is the envelope describing where a page sits in the collection.
type Pagination struct {
	Total       int `json:"total"`
	Limit       int `json:"limit"`
	CurrentPage int `json:"current_page"`
}

// Page is a single fetched page.
type Page struct {
	Items      []Record   `json:"data"`
	Pagination Pagination `json:"pagination"`
}

// IDs returns the record identifiers in display order.
func (p *Page) IDs() []int64 {
	if p == nil {
		return nil
	}
	return RecordIDs(p.Items)
}

// RecordIDs returns the identifiers of records in order.
func RecordIDs(records []Record) []int64 {
	ids := make([]int64, len(records))
	for i, r := range records {
		ids[i] = r.ID
	}
	return ids
}

// Cells returns the six display values for the record.
// Empty text and zero years count as missing, matching how the catalog UI treats them.
func (r Record) Cells() []string {
	return []string{
		text(r.Title),
		text(r.PlaceOfOrigin),
		text(r.ArtistTitle),
		text(r.Inscriptions),
		year(r.DateStart),
		year(r.DateEnd),
	}
}

func text(s *string) string {
	if s == nil || *s == "" {
		return Placeholder
	}
	return *s
}

func year(y *int) string {
	if y == nil || *y == 0 {
		return Placeholder
	}
	return strconv.Itoa(*y)
}
