package pagination

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/Sternrassler/artwork-table/pkg/catalog"
	"github.com/Sternrassler/artwork-table/pkg/logging"
)

var batchPagesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "artable_batch_pages_total",
	Help: "Pages fetched by the batch fetcher by result",
}, []string{"result"})

// Config holds batch fetcher configuration
type Config struct {
	// MaxConcurrency is the maximum number of parallel requests
	MaxConcurrency int
	// Timeout per page fetch
	Timeout time.Duration
	// RequestsPerSecond caps the request rate across all workers (0 = no cap)
	RequestsPerSecond float64
	// Burst is the number of requests allowed at once under the cap
	Burst int
}

// DefaultConfig returns a polite default for a public catalog API
func DefaultConfig() Config {
	return Config{
		MaxConcurrency: 4,
		Timeout:        15 * time.Second,
	}
}

// PageFetcher fetches a single page of records
type PageFetcher interface {
	FetchPage(ctx context.Context, page, limit int) (*catalog.Page, error)
}

// PageResult represents the result of fetching a single page
type PageResult struct {
	PageNumber int
	Records    []catalog.Record
	Error      error
}

// BatchFetcher fetches a range of pages in parallel
type BatchFetcher struct {
	fetcher PageFetcher
	config  Config
	limiter *rate.Limiter
	logger  zerolog.Logger
}

// NewBatchFetcher creates a new batch fetcher
func NewBatchFetcher(fetcher PageFetcher, config Config) *BatchFetcher {
	if config.MaxConcurrency <= 0 {
		config.MaxConcurrency = 4
	}
	if config.Timeout <= 0 {
		config.Timeout = 15 * time.Second
	}

	var limiter *rate.Limiter
	if config.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(config.RequestsPerSecond), max(config.Burst, 1))
	}

	return &BatchFetcher{
		fetcher: fetcher,
		config:  config,
		limiter: limiter,
		logger:  logging.NewLogger("batch-fetcher"),
	}
}

// fetch waits for the rate limiter, then fetches one page.
func (bf *BatchFetcher) fetch(ctx context.Context, page, limit int) (*catalog.Page, error) {
	if bf.limiter != nil {
		if err := bf.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit wait: %w", err)
		}
	}
	return bf.fetcher.FetchPage(ctx, page, limit)
}

// FetchRange fetches pages first..last with the given page size.
// The first page is fetched alone to learn the page count; last is clamped to it.
// Records are returned in page order. When some pages fail the records of the
// successful pages are returned together with an error.
func (bf *BatchFetcher) FetchRange(ctx context.Context, first, last, limit int) ([]catalog.Record, error) {
	if first < 1 || last < first {
		return nil, fmt.Errorf("invalid page range %d..%d", first, last)
	}
	start := time.Now()

	firstPage, err := bf.fetch(ctx, first, limit)
	if err != nil {
		batchPagesTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("failed to fetch first page: %w", err)
	}
	batchPagesTotal.WithLabelValues("ok").Inc()

	totalPages := TotalPages(firstPage.Pagination.Total, limit)
	if firstPage.Pagination.Limit > 0 {
		totalPages = TotalPages(firstPage.Pagination.Total, firstPage.Pagination.Limit)
	}
	if last > totalPages {
		last = totalPages
	}

	bf.logger.Info().
		Int("first", first).
		Int("last", last).
		Int("total_pages", totalPages).
		Msg("Starting parallel page fetch")

	results := map[int][]catalog.Record{first: firstPage.Items}
	if last <= first {
		return collect(results), nil
	}

	pageQueue := make(chan int, last-first)
	pageResults := make(chan PageResult, last-first)

	for page := first + 1; page <= last; page++ {
		pageQueue <- page
	}
	close(pageQueue)

	var wg sync.WaitGroup
	for i := 0; i < bf.config.MaxConcurrency; i++ {
		wg.Add(1)
		go bf.worker(ctx, limit, pageQueue, pageResults, &wg, i)
	}

	go func() {
		wg.Wait()
		close(pageResults)
	}()

	var failed []int
	var firstErr error
	for result := range pageResults {
		if result.Error != nil {
			batchPagesTotal.WithLabelValues("error").Inc()
			failed = append(failed, result.PageNumber)
			if firstErr == nil {
				firstErr = result.Error
			}
			continue
		}
		batchPagesTotal.WithLabelValues("ok").Inc()
		results[result.PageNumber] = result.Records
	}

	records := collect(results)
	wanted := last - first + 1

	if firstErr != nil {
		sort.Ints(failed)
		bf.logger.Warn().
			Err(firstErr).
			Ints("failed_pages", failed).
			Int("fetched_pages", len(results)).
			Msg("Returning partial results")
		return records, fmt.Errorf("partial data: %d/%d pages: %w", len(results), wanted, firstErr)
	}

	if err := ctx.Err(); err != nil && len(results) < wanted {
		return records, fmt.Errorf("partial data: %d/%d pages: %w", len(results), wanted, err)
	}

	bf.logger.Info().
		Int("pages", len(results)).
		Int("records", len(records)).
		Dur("duration", time.Since(start)).
		Msg("Fetch complete")

	return records, nil
}

// worker processes pages from the queue
func (bf *BatchFetcher) worker(ctx context.Context, limit int, pageQueue <-chan int, results chan<- PageResult, wg *sync.WaitGroup, workerID int) {
	defer wg.Done()
	pagesProcessed := 0

	for pageNum := range pageQueue {
		select {
		case <-ctx.Done():
			bf.logger.Debug().
				Int("worker_id", workerID).
				Int("pages_processed", pagesProcessed).
				Msg("Worker stopping (context cancelled)")
			return
		default:
		}

		pageCtx, cancel := context.WithTimeout(ctx, bf.config.Timeout)
		page, err := bf.fetch(pageCtx, pageNum, limit)
		cancel()

		result := PageResult{PageNumber: pageNum, Error: err}
		if err == nil {
			result.Records = page.Items
		}
		// results is buffered for every queued page, so this never blocks
		results <- result
		pagesProcessed++
	}

	if pagesProcessed > 0 {
		bf.logger.Debug().
			Int("worker_id", workerID).
			Int("pages_processed", pagesProcessed).
			Msg("Worker completed")
	}
}

func collect(results map[int][]catalog.Record) []catalog.Record {
	pages := make([]int, 0, len(results))
	for p := range results {
		pages = append(pages, p)
	}
	sort.Ints(pages)

	var records []catalog.Record
	for _, p := range pages {
		records = append(records, results[p]...)
	}
	return records
}
