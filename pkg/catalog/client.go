package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Prometheus metrics for catalog fetches.
var (
	catalogRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "artable_catalog_requests_total",
		Help: "Total catalog page requests by HTTP status",
	}, []string{"status"})

	catalogRequestDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "artable_catalog_request_duration_seconds",
		Help:    "Catalog page request duration in seconds",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
	})

	catalogErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "artable_catalog_errors_total",
		Help: "Total catalog fetch failures by class",
	}, []string{"class"})
)

// DefaultBaseURL is the public Art Institute of Chicago API.
const DefaultBaseURL = "https://api.artic.edu/api/v1"

// artworksPath is appended to the base URL.
const artworksPath = "/artworks"

// Client is the catalog data source adapter.
type Client struct {
	httpClient *http.Client
	baseURL    *url.URL
	config     Config
	logger     zerolog.Logger
}

// Config holds the client configuration.
type Config struct {
	// BaseURL of the catalog API, without the /artworks suffix
	BaseURL string

	// UserAgent header sent with every request
	UserAgent string

	// Timeout for a single page request
	Timeout time.Duration

	// Fields restricts the returned record fields (sent as ?fields=). Empty sends nothing.
	Fields []string
}

// DefaultConfig returns a configuration pointing at the public catalog.
func DefaultConfig(userAgent string) Config {
	return Config{
		BaseURL:   DefaultBaseURL,
		UserAgent: userAgent,
		Timeout:   30 * time.Second,
	}
}

// New creates a new catalog client.
func New(cfg Config) (*Client, error) {
	if cfg.UserAgent == "" {
		return nil, fmt.Errorf("user-agent is required")
	}

	if cfg.Timeout <= 0 {
		return nil, fmt.Errorf("timeout must be > 0 (got %s)", cfg.Timeout)
	}

	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("base url must be http(s) (got %q)", cfg.BaseURL)
	}
	if base.Host == "" {
		return nil, fmt.Errorf("base url must include a host (got %q)", cfg.BaseURL)
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL: base,
		config:  cfg,
		logger:  log.With().Str("component", "catalog-client").Logger(),
	}, nil
}

// FetchPage requests one page of records. Every call goes to the network.
// A failed call returns an error and is never retried here.
func (c *Client) FetchPage(ctx context.Context, page, limit int) (*Page, error) {
	if page < 1 || limit < 1 {
		return nil, fmt.Errorf("%w (page=%d, limit=%d)", ErrInvalidPageRequest, page, limit)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.pageURL(page, limit), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.config.UserAgent)
	req.Header.Set("Accept", "application/json")

	c.logger.Debug().
		Int("page", page).
		Int("limit", limit).
		Msg("Fetching catalog page")

	startTime := time.Now()
	defer func() {
		catalogRequestDuration.Observe(time.Since(startTime).Seconds())
	}()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		catalogRequestsTotal.WithLabelValues("network_error").Inc()
		return nil, c.fail(&CatalogError{
			ErrorClass: ErrorClassNetwork,
			Message:    "request failed",
			Err:        err,
		})
	}
	defer resp.Body.Close()

	catalogRequestsTotal.WithLabelValues(strconv.Itoa(resp.StatusCode)).Inc()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// drain so the connection can be reused
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, c.fail(&CatalogError{
			StatusCode: resp.StatusCode,
			ErrorClass: classifyStatus(resp.StatusCode),
			Message:    resp.Status,
		})
	}

	var out Page
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, c.fail(&CatalogError{
			StatusCode: resp.StatusCode,
			ErrorClass: ErrorClassDecode,
			Message:    "decode page",
			Err:        err,
		})
	}
	if out.Items == nil {
		out.Items = []Record{}
	}

	c.logger.Debug().
		Int("page", page).
		Int("items", len(out.Items)).
		Int("total", out.Pagination.Total).
		Dur("duration", time.Since(startTime)).
		Msg("Fetched catalog page")

	return &out, nil
}

func (c *Client) fail(err *CatalogError) error {
	catalogErrorsTotal.WithLabelValues(string(err.ErrorClass)).Inc()
	c.logger.Debug().
		Str("error_class", string(err.ErrorClass)).
		Int("status", err.StatusCode).
		Msg("Error classified")
	return err
}

func (c *Client) pageURL(page, limit int) string {
	u := *c.baseURL
	u.Path = strings.TrimRight(u.Path, "/") + artworksPath

	q := u.Query()
	q.Set("page", strconv.Itoa(page))
	q.Set("limit", strconv.Itoa(limit))
	if len(c.config.Fields) > 0 {
		q.Set("fields", strings.Join(c.config.Fields, ","))
	}
	u.RawQuery = q.Encode()

	return u.String()
}

// SetHTTPClient sets a custom HTTP client (for testing).
func (c *Client) SetHTTPClient(client *http.Client) {
	c.httpClient = client
}
