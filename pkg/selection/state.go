// Package selection tracks which catalog records a user has selected.
//
// Selection is keyed by record ID, never by row position, so it survives
// page navigation. Two sets are kept: selected (S) and deselected (D). For
// every ID that has been touched exactly one of them holds it.
//
// A State is not safe for concurrent use; the owning view serializes access.
package selection

import (
	"encoding/binary"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/RoaringBitmap/roaring/roaring64"
)

// ErrInvalidEncoding is returned by UnmarshalBinary for malformed input.
var ErrInvalidEncoding = errors.New("invalid selection encoding")

// State holds the selected and deselected ID sets.
type State struct {
	selected   *roaring64.Bitmap
	deselected *roaring64.Bitmap
}

// New returns an empty selection.
func New() *State {
	return &State{
		selected:   roaring64.New(),
		deselected: roaring64.New(),
	}
}

// Toggle flips the membership of id in the selected set.
func (s *State) Toggle(id int64) {
	key := uint64(id)
	if s.selected.Contains(key) {
		s.selected.Remove(key)
		s.deselected.Add(key)
		return
	}
	s.selected.Add(key)
	s.deselected.Remove(key)
}

// AllSelected reports whether visible is non-empty and every ID in it is selected.
func (s *State) AllSelected(visible []int64) bool {
	if len(visible) == 0 {
		return false
	}
	for _, id := range visible {
		if !s.selected.Contains(uint64(id)) {
			return false
		}
	}
	return true
}

// TogglePage deselects every visible ID when all of them are selected,
// otherwise selects every visible ID. IDs outside visible are untouched.
func (s *State) TogglePage(visible []int64) {
	deselect := s.AllSelected(visible)
	for _, id := range visible {
		key := uint64(id)
		if deselect {
			s.selected.Remove(key)
			s.deselected.Add(key)
		} else {
			s.selected.Add(key)
			s.deselected.Remove(key)
		}
	}
}

// SelectFirst replaces the whole selection with the first min(n, len(visible))
// IDs of visible and marks the remaining visible IDs as deselected.
// IDs from other pages are dropped from both sets. n < 1 is a no-op.
// It reports whether the selection changed shape (i.e. n was valid).
func (s *State) SelectFirst(visible []int64, n int) bool {
	if n < 1 {
		return false
	}
	n = min(n, len(visible))

	selected := roaring64.New()
	deselected := roaring64.New()
	for i, id := range visible {
		if i < n {
			selected.Add(uint64(id))
		} else {
			deselected.Add(uint64(id))
		}
	}
	// a duplicated id in visible must not end up in both sets
	deselected.AndNot(selected)

	s.selected = selected
	s.deselected = deselected
	return true
}

// SelectFirstInput parses raw as a positive integer and applies SelectFirst.
// Non-numeric or non-positive input is ignored and reported as false.
func (s *State) SelectFirstInput(visible []int64, raw string) bool {
	n, ok := ParseCount(raw)
	if !ok {
		return false
	}
	return s.SelectFirst(visible, n)
}

// ParseCount parses a bulk-select count. Only plain positive integers are accepted.
func ParseCount(raw string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}

// IsSelected reports whether id is selected.
func (s *State) IsSelected(id int64) bool {
	return s.selected.Contains(uint64(id))
}

// IsDeselected reports whether id was touched and is currently not selected.
func (s *State) IsDeselected(id int64) bool {
	return s.deselected.Contains(uint64(id))
}

// Count returns the number of selected IDs.
func (s *State) Count() int {
	return int(s.selected.GetCardinality())
}

// Selected returns the selected IDs in ascending order.
func (s *State) Selected() []int64 {
	return toIDs(s.selected)
}

// Deselected returns the deselected IDs in ascending order.
func (s *State) Deselected() []int64 {
	return toIDs(s.deselected)
}

// Clone returns an independent copy.
func (s *State) Clone() *State {
	return &State{
		selected:   s.selected.Clone(),
		deselected: s.deselected.Clone(),
	}
}

// MarshalBinary encodes both sets as length-prefixed roaring bitmaps.
func (s *State) MarshalBinary() ([]byte, error) {
	sel, err := s.selected.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("marshal selected: %w", err)
	}
	desel, err := s.deselected.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("marshal deselected: %w", err)
	}

	out := make([]byte, 4, 4+len(sel)+len(desel))
	binary.BigEndian.PutUint32(out, uint32(len(sel)))
	out = append(out, sel...)
	out = append(out, desel...)
	return out, nil
}

// UnmarshalBinary restores a State produced by MarshalBinary.
func (s *State) UnmarshalBinary(data []byte) error {
	if len(data) < 4 {
		return fmt.Errorf("%w: %d bytes", ErrInvalidEncoding, len(data))
	}
	n := int(binary.BigEndian.Uint32(data))
	if n > len(data)-4 {
		return fmt.Errorf("%w: selected length %d exceeds payload", ErrInvalidEncoding, n)
	}

	selected := roaring64.New()
	if err := selected.UnmarshalBinary(data[4 : 4+n]); err != nil {
		return fmt.Errorf("%w: selected: %v", ErrInvalidEncoding, err)
	}
	deselected := roaring64.New()
	if err := deselected.UnmarshalBinary(data[4+n:]); err != nil {
		return fmt.Errorf("%w: deselected: %v", ErrInvalidEncoding, err)
	}

	s.selected = selected
	s.deselected = deselected
	return nil
}

func toIDs(b *roaring64.Bitmap) []int64 {
	raw := b.ToArray()
	ids := make([]int64, len(raw))
	for i, v := range raw {
		ids[i] = int64(v)
	}
	slices.Sort(ids)
	return ids
}
