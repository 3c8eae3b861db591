package media

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/Kohei075/local-photo-browser/internal/database"
	"github.com/Kohei075/local-photo-browser/internal/logging"
	"github.com/Kohei075/local-photo-browser/internal/workers"
)

// Warmer pre-generates thumbnails for photos that have none recorded yet.
// Generation is idempotent, so warming can run concurrently with on-demand
// requests without producing conflicting artifacts.
type Warmer struct {
	db           *database.Database
	cache        *ThumbnailCache
	maxDimension int
}

// WarmStats reports the outcome of one warming pass.
type WarmStats struct {
	Generated int
	Failed    int
}

// NewWarmer creates a thumbnail warmer.
func NewWarmer(db *database.Database, cache *ThumbnailCache, maxDimension int) *Warmer {
	return &Warmer{
		db:           db,
		cache:        cache,
		maxDimension: maxDimension,
	}
}

// Warm generates thumbnails for up to limit photos missing one, using an
// I/O-sized worker pool. Per-photo failures are counted and skipped.
func (w *Warmer) Warm(ctx context.Context, limit int) (WarmStats, error) {
	photos, err := w.db.MissingThumbnails(ctx, limit)
	if err != nil {
		return WarmStats{}, err
	}
	if len(photos) == 0 {
		return WarmStats{}, nil
	}

	numWorkers := workers.ForIO(8)
	logging.Info("Warming thumbnails for %d photos with %d workers", len(photos), numWorkers)

	jobs := make(chan database.Photo)
	var generated, failed atomic.Int64
	var wg sync.WaitGroup

	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for p := range jobs {
				artifact, err := w.cache.GetOrCreate(p.ID, p.Path, w.maxDimension)
				if err != nil {
					logging.Debug("warmer: thumbnail for %s failed: %v", p.Path, err)
					failed.Add(1)
					continue
				}
				if err := w.db.SetThumbnailPath(ctx, p.ID, artifact); err != nil {
					logging.Warn("warmer: failed to record thumbnail for %s: %v", p.Path, err)
				}
				generated.Add(1)
			}
		}()
	}

	for _, p := range photos {
		jobs <- p
	}
	close(jobs)
	wg.Wait()

	w.db.UpdateDBMetrics()

	stats := WarmStats{
		Generated: int(generated.Load()),
		Failed:    int(failed.Load()),
	}
	logging.Info("Thumbnail warming complete: %d generated, %d failed", stats.Generated, stats.Failed)
	return stats, nil
}
