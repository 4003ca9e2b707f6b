// Package metrics provides centralized Prometheus metrics registry for the artwork table.
// All metrics are defined in their respective packages (catalog, table, session, ...)
// to maintain modularity and avoid circular dependencies.
//
// This package provides the exposition handler and documentation for all available metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry is the default Prometheus registry used by the artwork table.
// All metrics are automatically registered via promauto in their respective packages.
var Registry = prometheus.DefaultRegisterer

// Gatherer is the registry read by Handler.
var Gatherer = prometheus.DefaultGatherer

// Handler returns the /metrics exposition handler.
func Handler() http.Handler {
	return promhttp.HandlerFor(Gatherer, promhttp.HandlerOpts{})
}

// Metrics Documentation
//
// Catalog Metrics (pkg/catalog):
//   - artable_catalog_requests_total{status} (Counter): Page requests by HTTP status
//   - artable_catalog_request_duration_seconds (Histogram): Page request duration
//   - artable_catalog_errors_total{class} (Counter): Errors by class (client, server, network, decode)
//
// Table View Metrics (pkg/table):
//   - artable_table_fetches_total{result} (Counter): Completed fetches (applied, failed, stale)
//   - artable_table_stale_responses_total (Counter): Responses discarded because a newer request was issued
//
// Batch Metrics (pkg/pagination):
//   - artable_batch_pages_total{result} (Counter): Pages fetched by the batch fetcher (ok, error)
//
// Session Metrics (pkg/session):
//   - artable_session_lookups_total{backend, result} (Counter): Snapshot lookups (hit, miss)
//   - artable_session_errors_total{backend, operation} (Counter): Store operation errors
//
// Web Metrics (pkg/web):
//   - artable_http_requests_total{route, status} (Counter): Handled browser requests
//
// Export Metrics (pkg/export):
//   - artable_export_records_total{format} (Counter): Records written by format
//
// Example Prometheus Queries:
//
//   # Catalog Error Rate
//   rate(artable_catalog_errors_total[5m])
//
//   # P95 Catalog Latency
//   histogram_quantile(0.95, rate(artable_catalog_request_duration_seconds_bucket[5m]))
//
//   # Share of fetches overtaken by a newer request
//   rate(artable_table_stale_responses_total[5m]) / sum(rate(artable_table_fetches_total[5m]))
//
//   # Session Miss Rate
//   sum(rate(artable_session_lookups_total{result="miss"}[5m])) /
//   sum(rate(artable_session_lookups_total[5m]))
