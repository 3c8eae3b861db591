// Package metrics provides Prometheus instrumentation for the photo indexer.
//
// All metrics are prefixed with "photo_browser_" to avoid naming collisions
// with other applications.
//
// # Metric Categories
//
// Scanner metrics track index runs:
//   - ScanRunsTotal: Counter of scan runs started
//   - ScanIsRunning: Gauge indicating if a scan is active
//   - ScanLastRunTimestamp: Gauge of last completed run time
//   - ScanLastRunDuration: Gauge of last run duration
//   - ScanItemsTotal: Counter of item outcomes by result
//   - ScanErrors: Counter of fatal scan errors
//
// Database metrics monitor query performance:
//   - DBQueryTotal: Counter of queries by operation and status
//   - DBQueryDuration: Histogram of query duration by operation
//   - DBRowsAffected: Histogram of rows touched by write operations
//   - DBConnectionsOpen: Gauge of open database connections
//
// Thumbnail metrics monitor generation and caching:
//   - ThumbnailCacheHits: Counter of requests served from the cache
//   - ThumbnailGenerations: Counter of generation attempts by status
//   - ThumbnailGenerationDuration: Histogram of generation time
//
// Metadata metrics:
//   - MetadataExtractions: Counter of extraction attempts by status
//
// # Usage
//
// Metrics are automatically registered with the default Prometheus registry
// using promauto. Exposing the registry over HTTP is left to whatever
// process hosts this library:
//
//	import "github.com/prometheus/client_golang/prometheus/promhttp"
//
//	mux.Handle("/metrics", promhttp.Handler())
package metrics
