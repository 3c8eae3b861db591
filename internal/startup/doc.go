// Package startup handles application initialization and configuration
// loading.
//
// All configuration is loaded from environment variables via [LoadConfig].
// The following environment variables are supported:
//
//   - ROOT_DIR: Path to the photo library root (required)
//   - DATA_DIR: Path for the database and thumbnail cache (default: ./data)
//   - EXTENSIONS: Comma-separated allowed extensions (default: jpg,jpeg,png,webp,gif,bmp)
//   - EXCLUDED_DIRS: Comma-separated folders to skip during scans
//   - THUMBNAIL_MAX_SIZE: Maximum thumbnail dimension in pixels (default: 300)
//   - SCAN_BATCH_SIZE: Photos per database commit during a scan (default: 100)
//   - LOG_LEVEL: Logging level - debug, info, warn, error (default: info)
//   - WARMER_WORKERS: Override the thumbnail warmer worker count
//
// The package also carries build-time variables (Version, Commit,
// BuildTime) injected via -ldflags:
//
//	go build -ldflags "-X .../internal/startup.Version=$(VERSION)"
package startup
