package startup

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/Kohei075/local-photo-browser/internal/logging"
	"github.com/Kohei075/local-photo-browser/internal/pathutil"
)

// Build-time variables (injected via -ldflags)
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
	GoVersion = runtime.Version()
)

// Defaults mirroring the settings the serving layer persists.
const (
	defaultExtensions   = "jpg,jpeg,png,webp,gif,bmp"
	defaultThumbnailMax = 300
	defaultBatchSize    = 100
)

// Config holds all application configuration.
type Config struct {
	RootDir      string
	DataDir      string
	DatabasePath string
	ThumbnailDir string

	Extensions       map[string]bool
	ExcludedDirs     []string
	ThumbnailMaxSize int
	BatchSize        int
}

// LoadConfig loads and validates configuration from environment variables.
func LoadConfig() (*Config, error) {
	rootDir := getEnv("ROOT_DIR", "")
	dataDir := getEnv("DATA_DIR", "./data")
	extensionsStr := getEnv("EXTENSIONS", defaultExtensions)
	excludedStr := getEnv("EXCLUDED_DIRS", "")
	thumbnailMax := getEnvInt("THUMBNAIL_MAX_SIZE", defaultThumbnailMax)
	batchSize := getEnvInt("SCAN_BATCH_SIZE", defaultBatchSize)

	logging.Info("------------------------------------------------------------")
	logging.Info("CONFIGURATION")
	logging.Info("------------------------------------------------------------")
	logging.Info("  ROOT_DIR:            %s", rootDir)
	logging.Info("  DATA_DIR:            %s", dataDir)
	logging.Info("  EXTENSIONS:          %s", extensionsStr)
	logging.Info("  EXCLUDED_DIRS:       %s", excludedStr)
	logging.Info("  THUMBNAIL_MAX_SIZE:  %d", thumbnailMax)
	logging.Info("  SCAN_BATCH_SIZE:     %d", batchSize)
	logging.Info("  LOG_LEVEL:           %s", logging.GetLevel())

	if rootDir == "" {
		return nil, fmt.Errorf("ROOT_DIR is required")
	}
	rootDir = pathutil.Normalize(rootDir)

	dataDir = pathutil.Normalize(dataDir)
	thumbnailDir := filepath.Join(dataDir, "thumbnails")

	if err := os.MkdirAll(thumbnailDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory %s: %w", dataDir, err)
	}

	if thumbnailMax < 16 {
		logging.Warn("  THUMBNAIL_MAX_SIZE %d too small, using default %d", thumbnailMax, defaultThumbnailMax)
		thumbnailMax = defaultThumbnailMax
	}
	if batchSize < 1 {
		logging.Warn("  Invalid SCAN_BATCH_SIZE, using default %d", defaultBatchSize)
		batchSize = defaultBatchSize
	}

	cfg := &Config{
		RootDir:          rootDir,
		DataDir:          dataDir,
		DatabasePath:     filepath.Join(dataDir, "photos.db"),
		ThumbnailDir:     thumbnailDir,
		Extensions:       ParseExtensions(extensionsStr),
		ExcludedDirs:     parseExcluded(excludedStr),
		ThumbnailMaxSize: thumbnailMax,
		BatchSize:        batchSize,
	}

	if len(cfg.Extensions) == 0 {
		return nil, fmt.Errorf("EXTENSIONS parsed to an empty set: %q", extensionsStr)
	}

	return cfg, nil
}

// ParseExtensions parses a comma-separated extension list into the allowed
// set: lowercase, dots stripped, blanks dropped.
func ParseExtensions(s string) map[string]bool {
	set := make(map[string]bool)
	for _, ext := range strings.Split(s, ",") {
		ext = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
		if ext != "" {
			set[ext] = true
		}
	}
	return set
}

// parseExcluded parses a comma-separated folder list into normalized
// absolute paths.
func parseExcluded(s string) []string {
	var dirs []string
	for _, dir := range strings.Split(s, ",") {
		dir = strings.TrimSpace(dir)
		if dir != "" {
			dirs = append(dirs, pathutil.Normalize(dir))
		}
	}
	return dirs
}

// getEnv returns an environment variable or a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt returns an integer environment variable or a default value.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
		logging.Warn("  Invalid %s=%q, using default %d", key, value, defaultValue)
	}
	return defaultValue
}
