package selection

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pageIDs(first, n int64) []int64 {
	ids := make([]int64, n)
	for i := range ids {
		ids[i] = first + int64(i)
	}
	return ids
}

func TestToggle_ParityOfToggles(t *testing.T) {
	s := New()
	toggles := []int64{1, 2, 1, 3, 1, 2, 4, 4, 4}
	counts := map[int64]int{}

	for _, id := range toggles {
		s.Toggle(id)
		counts[id]++
	}

	for id, n := range counts {
		assert.Equal(t, n%2 == 1, s.IsSelected(id), "id %d toggled %d times", id, n)
		assert.NotEqual(t, s.IsSelected(id), s.IsDeselected(id), "id %d must be in exactly one set", id)
	}
	require.Equal(t, 3, s.Count())
	require.Equal(t, []int64{1, 3, 4}, s.Selected())
	require.Equal(t, []int64{2}, s.Deselected())
}

func TestToggle_UntouchedInNeitherSet(t *testing.T) {
	s := New()
	s.Toggle(10)

	assert.False(t, s.IsSelected(99))
	assert.False(t, s.IsDeselected(99))
}

func TestTogglePage_TwiceRestores(t *testing.T) {
	visible := pageIDs(1, 12)

	t.Run("from nothing selected", func(t *testing.T) {
		s := New()
		s.Toggle(100) // other page

		s.TogglePage(visible)
		require.True(t, s.AllSelected(visible))
		require.Equal(t, 13, s.Count())

		s.TogglePage(visible)
		for _, id := range visible {
			assert.False(t, s.IsSelected(id))
		}
		assert.True(t, s.IsSelected(100), "ids on other pages are untouched")
	})

	t.Run("from whole page selected", func(t *testing.T) {
		s := New()
		s.TogglePage(visible)
		before := s.Clone()

		s.TogglePage(visible)
		s.TogglePage(visible)

		assert.Equal(t, before.Selected(), s.Selected())
		assert.Equal(t, before.Deselected(), s.Deselected())
	})

	t.Run("from partial selection the page ends deselected", func(t *testing.T) {
		s := New()
		s.Toggle(3)

		s.TogglePage(visible)
		s.TogglePage(visible)

		assert.Zero(t, s.Count())
		assert.Equal(t, visible, s.Deselected())
	})
}

func TestTogglePage_PartialSelectsAll(t *testing.T) {
	visible := pageIDs(1, 4)
	s := New()
	s.Toggle(2)

	s.TogglePage(visible)

	assert.Equal(t, visible, s.Selected())
	assert.Empty(t, s.Deselected())
}

func TestTogglePage_EmptyPage(t *testing.T) {
	s := New()
	s.Toggle(1)

	s.TogglePage(nil)

	assert.False(t, s.AllSelected(nil))
	assert.Equal(t, []int64{1}, s.Selected())
}

func TestSelectFirst(t *testing.T) {
	visible := pageIDs(13, 12)

	t.Run("first five of twelve", func(t *testing.T) {
		s := New()
		require.True(t, s.SelectFirst(visible, 5))

		assert.Equal(t, 5, s.Count())
		assert.Equal(t, visible[:5], s.Selected())
		assert.Equal(t, visible[5:], s.Deselected())
	})

	t.Run("n larger than page selects the page", func(t *testing.T) {
		s := New()
		require.True(t, s.SelectFirst(visible, 50))

		assert.Equal(t, visible, s.Selected())
		assert.Empty(t, s.Deselected())
		assert.True(t, s.AllSelected(visible))
	})

	t.Run("replaces selections from other pages", func(t *testing.T) {
		s := New()
		s.Toggle(1)
		s.Toggle(2)
		s.Toggle(2)

		require.True(t, s.SelectFirst(visible, 2))

		assert.False(t, s.IsSelected(1))
		assert.False(t, s.IsDeselected(2))
		assert.Equal(t, []int64{13, 14}, s.Selected())
	})

	t.Run("display order not numeric order", func(t *testing.T) {
		s := New()
		require.True(t, s.SelectFirst([]int64{9, 4, 7}, 2))

		assert.True(t, s.IsSelected(9))
		assert.True(t, s.IsSelected(4))
		assert.True(t, s.IsDeselected(7))
	})
}

func TestSelectFirst_NoOps(t *testing.T) {
	visible := pageIDs(1, 12)

	for _, n := range []int{0, -3} {
		s := New()
		s.Toggle(5)
		s.Toggle(40)

		assert.False(t, s.SelectFirst(visible, n))
		assert.Equal(t, []int64{5, 40}, s.Selected())
	}

	for _, raw := range []string{"abc", "", "  ", "-3", "0", "2.5", "5x"} {
		s := New()
		s.Toggle(5)

		assert.False(t, s.SelectFirstInput(visible, raw), "input %q", raw)
		assert.Equal(t, []int64{5}, s.Selected(), "input %q", raw)
	}
}

func TestSelectFirstInput_Valid(t *testing.T) {
	s := New()
	require.True(t, s.SelectFirstInput(pageIDs(1, 12), " 3 "))
	assert.Equal(t, []int64{1, 2, 3}, s.Selected())
}

func TestParseCount(t *testing.T) {
	tests := []struct {
		raw string
		n   int
		ok  bool
	}{
		{"5", 5, true},
		{"12", 12, true},
		{" 7\n", 7, true},
		{"0", 0, false},
		{"-1", 0, false},
		{"abc", 0, false},
		{"1e3", 0, false},
		{"5.5", 0, false},
		{"5abc", 0, false},
		{"", 0, false},
	}

	for _, tt := range tests {
		n, ok := ParseCount(tt.raw)
		assert.Equal(t, tt.ok, ok, "ParseCount(%q)", tt.raw)
		assert.Equal(t, tt.n, n, "ParseCount(%q)", tt.raw)
	}
}

func TestBinaryRoundTrip(t *testing.T) {
	s := New()
	s.Toggle(1)
	s.Toggle(300000)
	s.Toggle(2)
	s.Toggle(2)

	data, err := s.MarshalBinary()
	require.NoError(t, err)

	restored := New()
	require.NoError(t, restored.UnmarshalBinary(data))
	assert.Equal(t, s.Selected(), restored.Selected())
	assert.Equal(t, s.Deselected(), restored.Deselected())

	empty, err := New().MarshalBinary()
	require.NoError(t, err)
	require.NoError(t, restored.UnmarshalBinary(empty))
	assert.Zero(t, restored.Count())
}

func TestUnmarshalBinary_Invalid(t *testing.T) {
	s := New()
	assert.ErrorIs(t, s.UnmarshalBinary(nil), ErrInvalidEncoding)
	assert.ErrorIs(t, s.UnmarshalBinary([]byte{0, 0, 1, 0, 1}), ErrInvalidEncoding)
}

func TestClone_Independent(t *testing.T) {
	s := New()
	s.Toggle(1)
	c := s.Clone()
	c.Toggle(1)

	assert.True(t, s.IsSelected(1))
	assert.False(t, c.IsSelected(1))
}
