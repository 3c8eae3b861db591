package media

import (
	"bytes"
	"fmt"
	"image/color"
	"image/jpeg"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/disintegration/imaging"

	"github.com/Kohei075/local-photo-browser/internal/logging"
	"github.com/Kohei075/local-photo-browser/internal/metrics"
	"github.com/Kohei075/local-photo-browser/internal/pathutil"
)

// thumbnailQuality is the fixed JPEG quality for cached thumbnails.
const thumbnailQuality = 85

// ThumbnailCache produces and persists derived thumbnails, one JPEG per
// photo identifier. Artifacts live at a deterministic path derived solely
// from the identifier and are never invalidated by later source changes;
// only Clear removes them.
type ThumbnailCache struct {
	cacheDir string

	// Per-identifier locks so concurrent first-generation requests for the
	// same photo do only one decode. Different identifiers never contend.
	// Entries are reference-counted and removed once the last holder
	// releases, so the map stays bounded by in-flight generations.
	mu    sync.Mutex
	locks map[int64]*thumbLock
}

type thumbLock struct {
	mu   sync.Mutex
	refs int
}

// NewThumbnailCache creates a thumbnail cache rooted at cacheDir.
func NewThumbnailCache(cacheDir string) *ThumbnailCache {
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		logging.Warn("thumbnail: failed to create cache dir %s: %v", cacheDir, err)
	}
	return &ThumbnailCache{
		cacheDir: cacheDir,
		locks:    make(map[int64]*thumbLock),
	}
}

// ArtifactPath returns the deterministic artifact location for id. It does
// not depend on the source file or the configured maximum dimension.
func (c *ThumbnailCache) ArtifactPath(id int64) string {
	return filepath.Join(c.cacheDir, fmt.Sprintf("%d.jpg", id))
}

// GetOrCreate returns the cached thumbnail path for id, generating it from
// sourcePath on first request. An existing artifact is returned without
// touching the source file. On failure no partial artifact is left behind,
// so a later call may retry.
func (c *ThumbnailCache) GetOrCreate(id int64, sourcePath string, maxDimension int) (string, error) {
	artifact := c.ArtifactPath(id)

	if _, err := os.Stat(artifact); err == nil {
		metrics.ThumbnailCacheHits.Inc()
		logging.Debug("thumbnail cache hit: %d", id)
		return artifact, nil
	}

	lock := c.lockFor(id)
	lock.mu.Lock()
	defer func() {
		lock.mu.Unlock()
		c.release(id, lock)
	}()

	// Another request may have generated it while we waited.
	if _, err := os.Stat(artifact); err == nil {
		metrics.ThumbnailCacheHits.Inc()
		return artifact, nil
	}

	start := time.Now()
	err := c.generate(artifact, sourcePath, maxDimension)
	metrics.ThumbnailGenerationDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.ThumbnailGenerations.WithLabelValues("error").Inc()
		return "", err
	}

	metrics.ThumbnailGenerations.WithLabelValues("success").Inc()
	logging.Debug("thumbnail generated: %d (%s)", id, sourcePath)
	return artifact, nil
}

// lockFor returns the generation lock for one identifier, taking a reference.
func (c *ThumbnailCache) lockFor(id int64) *thumbLock {
	c.mu.Lock()
	defer c.mu.Unlock()
	lock, ok := c.locks[id]
	if !ok {
		lock = &thumbLock{}
		c.locks[id] = lock
	}
	lock.refs++
	return lock
}

// release drops a reference and removes the lock once nobody holds it.
func (c *ThumbnailCache) release(id int64, lock *thumbLock) {
	c.mu.Lock()
	defer c.mu.Unlock()
	lock.refs--
	if lock.refs == 0 {
		delete(c.locks, id)
	}
}

// generate decodes the source, bounds it to maxDimension and writes the JPEG
// atomically via a temp file and rename.
func (c *ThumbnailCache) generate(artifact, sourcePath string, maxDimension int) error {
	// imaging.Open decodes only the first frame of animated formats.
	img, err := imaging.Open(pathutil.LongPath(sourcePath), imaging.AutoOrientation(true))
	if err != nil {
		return fmt.Errorf("failed to open source image %s: %w", sourcePath, err)
	}

	thumb := imaging.Fit(img, maxDimension, maxDimension, imaging.Lanczos)

	// Flatten alpha and palette images onto an opaque background so the
	// result is directly JPEG-encodable.
	bounds := thumb.Bounds()
	flat := imaging.New(bounds.Dx(), bounds.Dy(), color.White)
	flat = imaging.Overlay(flat, thumb, bounds.Min, 1.0)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, flat, &jpeg.Options{Quality: thumbnailQuality}); err != nil {
		return fmt.Errorf("failed to encode thumbnail: %w", err)
	}

	tmp, err := os.CreateTemp(c.cacheDir, ".thumb-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to write thumbnail: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to close thumbnail: %w", err)
	}
	if err := os.Rename(tmpPath, artifact); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to store thumbnail: %w", err)
	}

	return nil
}

// Clear removes every cached artifact and returns how many were deleted.
func (c *ThumbnailCache) Clear() (int, error) {
	entries, err := os.ReadDir(c.cacheDir)
	if err != nil {
		return 0, fmt.Errorf("failed to read cache dir: %w", err)
	}

	removed := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if filepath.Ext(name) != ".jpg" && filepath.Ext(name) != ".tmp" {
			continue
		}
		if err := os.Remove(filepath.Join(c.cacheDir, name)); err != nil {
			logging.Warn("thumbnail: failed to remove %s: %v", name, err)
			continue
		}
		removed++
	}

	logging.Info("Thumbnail cache cleared: %d artifacts removed", removed)
	return removed, nil
}
