package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Scanner metrics
var (
	ScanRunsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "photo_browser_scan_runs_total",
			Help: "Total number of scan runs started",
		},
	)

	ScanIsRunning = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "photo_browser_scan_is_running",
			Help: "Whether a scan is currently running (1) or not (0)",
		},
	)

	ScanLastRunTimestamp = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "photo_browser_scan_last_run_timestamp_seconds",
			Help: "Unix timestamp of the last completed scan run",
		},
	)

	ScanLastRunDuration = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "photo_browser_scan_last_run_duration_seconds",
			Help: "Duration of the last completed scan run in seconds",
		},
	)

	ScanItemsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "photo_browser_scan_items_total",
			Help: "Scan item outcomes by result",
		},
		[]string{"result"},
	)

	ScanErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "photo_browser_scan_errors_total",
			Help: "Total number of fatal scan errors",
		},
	)
)

// Database metrics
var (
	DBQueryTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "photo_browser_db_queries_total",
			Help: "Total number of database queries",
		},
		[]string{"operation", "status"},
	)

	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "photo_browser_db_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"operation"},
	)

	DBRowsAffected = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "photo_browser_db_rows_affected",
			Help:    "Rows affected by write operations",
			Buckets: []float64{1, 10, 50, 100, 500, 1000, 5000},
		},
		[]string{"operation"},
	)

	DBConnectionsOpen = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "photo_browser_db_connections_open",
			Help: "Number of open database connections",
		},
	)
)

// Thumbnail metrics
var (
	ThumbnailCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "photo_browser_thumbnail_cache_hits_total",
			Help: "Thumbnail requests served from the cache",
		},
	)

	ThumbnailGenerations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "photo_browser_thumbnail_generations_total",
			Help: "Thumbnail generation attempts by status",
		},
		[]string{"status"},
	)

	ThumbnailGenerationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "photo_browser_thumbnail_generation_duration_seconds",
			Help:    "Thumbnail generation duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)
)

// Metadata extraction metrics
var (
	MetadataExtractions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "photo_browser_metadata_extractions_total",
			Help: "Metadata extraction attempts by status",
		},
		[]string{"status"},
	)
)
