package table

import (
	"fmt"

	"github.com/Sternrassler/artwork-table/pkg/catalog"
	"github.com/Sternrassler/artwork-table/pkg/pagination"
	"github.com/Sternrassler/artwork-table/pkg/selection"
)

// Snapshot is the serializable state of a View.
// Selection holds the binary encoding of the selected and deselected sets.
// Version orders snapshots written for the same session; the writer sets it
// and View ignores it.
type Snapshot struct {
	Version   uint64           `json:"version"`
	Page      int              `json:"page"`
	Limit     int              `json:"limit"`
	Total     int              `json:"total"`
	Rows      []catalog.Record `json:"rows"`
	Selection []byte           `json:"selection"`
	Loaded    bool             `json:"loaded"`
}

// Snapshot captures the view state.
func (v *View) Snapshot() (*Snapshot, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	sel, err := v.sel.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("snapshot selection: %w", err)
	}

	rows := make([]catalog.Record, len(v.rows))
	copy(rows, v.rows)

	return &Snapshot{
		Page:      v.pager.Page(),
		Limit:     v.pager.Limit(),
		Total:     v.pager.Total(),
		Rows:      rows,
		Selection: sel,
		Loaded:    v.loaded,
	}, nil
}

// Restore rebuilds a view from a snapshot. No request is issued.
func Restore(fetcher Fetcher, cfg Config, snap *Snapshot) (*View, error) {
	v := New(fetcher, cfg)
	if snap == nil {
		return v, nil
	}

	sel := selection.New()
	if len(snap.Selection) > 0 {
		if err := sel.UnmarshalBinary(snap.Selection); err != nil {
			return nil, fmt.Errorf("restore selection: %w", err)
		}
	}

	v.pager = pagination.Restore(snap.Page, snap.Limit, snap.Total)
	v.sel = sel
	v.loaded = snap.Loaded
	if snap.Rows != nil {
		v.rows = snap.Rows
	}
	return v, nil
}
