// Package pagination provides page arithmetic for the artwork table and a
// parallel batch fetcher for multi-page exports.
//
// Controller holds the current page, the page size, and the collection total
// reported by the last successful fetch. Everything the pagination controls
// render is derived from those three values:
//
//	c := pagination.NewController(12)
//	c.Apply(100, 12)          // envelope of a fetched page
//	c.TotalPages()            // 9
//	c.SetPage(9)              // true
//	c.PageWindow(5)           // [5 6 7 8 9]
//	from, to := c.DisplayRange(4) // 97, 100
//
// Navigation outside [1, TotalPages] is a no-op; callers disable the
// corresponding controls instead of handling an error.
//
// BatchFetcher fetches a contiguous range of pages with a bounded worker pool:
//   - Fetches the first page to learn the remote page count
//   - Clamps the range to that count
//   - Distributes the remaining pages across workers
//   - Returns records in page order, with partial data on failure
//
// Failed pages are not retried.
package pagination
