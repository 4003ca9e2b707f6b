package pagination

// DefaultMaxButtons is the number of numbered page buttons shown at once.
const DefaultMaxButtons = 5

// Controller holds the current page, page size, and collection total, and
// derives everything the pagination controls need from them.
type Controller struct {
	page  int
	limit int
	total int
}

// NewController returns a controller on page 1 with the given page size.
// Limits below 1 are raised to 1.
func NewController(limit int) *Controller {
	return &Controller{
		page:  1,
		limit: max(limit, 1),
	}
}

// Restore returns a controller with explicit state, clamping invalid values.
func Restore(page, limit, total int) *Controller {
	return &Controller{
		page:  max(page, 1),
		limit: max(limit, 1),
		total: max(total, 0),
	}
}

// Page returns the current 1-based page.
func (c *Controller) Page() int { return c.page }

// Limit returns the page size.
func (c *Controller) Limit() int { return c.limit }

// Total returns the collection size from the last successful fetch.
func (c *Controller) Total() int { return c.total }

// TotalPages returns ceil(total / limit).
func (c *Controller) TotalPages() int {
	return TotalPages(c.total, c.limit)
}

// TotalPages returns ceil(total / limit), or 0 when limit is not positive.
func TotalPages(total, limit int) int {
	if limit <= 0 || total <= 0 {
		return 0
	}
	return (total + limit - 1) / limit
}

// SetPage moves to p when 1 <= p <= TotalPages. It reports whether the page changed.
func (c *Controller) SetPage(p int) bool {
	if p < 1 || p > c.TotalPages() || p == c.page {
		return false
	}
	c.page = p
	return true
}

// SetLimit changes the page size and returns to page 1. Limits below 1 are rejected.
func (c *Controller) SetLimit(limit int) bool {
	if limit < 1 || limit == c.limit {
		return false
	}
	c.limit = limit
	c.page = 1
	return true
}

// Apply records the envelope of a successful fetch. The current page is kept.
func (c *Controller) Apply(total, limit int) {
	c.total = max(total, 0)
	if limit >= 1 {
		c.limit = limit
	}
}

// HasPrev reports whether a previous page exists.
func (c *Controller) HasPrev() bool {
	return c.page > 1
}

// HasNext reports whether a next page exists.
func (c *Controller) HasNext() bool {
	return c.page < c.TotalPages()
}

// PageWindow returns up to maxButtons consecutive page numbers centered on the
// current page and clamped to [1, TotalPages]. It is empty when there are no pages.
func (c *Controller) PageWindow(maxButtons int) []int {
	return Window(c.page, c.TotalPages(), maxButtons)
}

// Window computes the page button window for current out of totalPages.
func Window(current, totalPages, maxButtons int) []int {
	if maxButtons < 1 || totalPages < 1 {
		return []int{}
	}

	start := max(1, current-maxButtons/2)
	end := start + maxButtons - 1
	if end > totalPages {
		end = totalPages
		start = max(1, end-maxButtons+1)
	}

	pages := make([]int, 0, end-start+1)
	for p := start; p <= end; p++ {
		pages = append(pages, p)
	}
	return pages
}

// DisplayRange returns the 1-based positions of the first and last item shown,
// for the "showing X to Y of Z" caption. Both are 0 on an empty page.
func (c *Controller) DisplayRange(itemsOnPage int) (from, to int) {
	if itemsOnPage <= 0 {
		return 0, 0
	}
	offset := (c.page - 1) * c.limit
	return offset + 1, offset + itemsOnPage
}
