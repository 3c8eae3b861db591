package scanner

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Kohei075/local-photo-browser/internal/database"
	"github.com/Kohei075/local-photo-browser/internal/logging"
	"github.com/Kohei075/local-photo-browser/internal/media"
	"github.com/Kohei075/local-photo-browser/internal/metrics"
	"github.com/Kohei075/local-photo-browser/internal/pathutil"
)

// defaultBatchSize is the number of processed candidates per commit.
const defaultBatchSize = 100

// Config is the frozen per-run configuration snapshot. Changes made while a
// run is active take effect only on the next run.
type Config struct {
	// Root is the library root directory.
	Root string
	// Extensions is the allowed set, lowercase without dots.
	Extensions map[string]bool
	// Excluded holds normalized absolute directory paths to prune. Matching
	// is exact at the directory itself; children are pruned implicitly
	// because the walk never descends.
	Excluded []string
	// BatchSize overrides the commit batch size; 0 means the default.
	BatchSize int
}

// Scanner executes one index run over a frozen configuration.
type Scanner struct {
	db  *database.Database
	cfg Config
}

// New creates a Scanner for one run.
func New(db *database.Database, cfg Config) *Scanner {
	if cfg.BatchSize < 1 {
		cfg.BatchSize = defaultBatchSize
	}
	return &Scanner{db: db, cfg: cfg}
}

// RunStats accumulates per-item outcomes for a run.
type RunStats struct {
	Candidates int           `json:"candidates"`
	Inserted   int           `json:"inserted"`
	Updated    int           `json:"updated"`
	Unchanged  int           `json:"unchanged"`
	Skipped    int           `json:"skipped"`
	Removed    int           `json:"removed"`
	Duration   time.Duration `json:"duration"`
}

// itemOutcome is the explicit result of processing one candidate.
type itemOutcome int

const (
	outcomeInserted itemOutcome = iota
	outcomeUpdated
	outcomeUnchanged
	outcomeSkipped
)

func (o itemOutcome) String() string {
	switch o {
	case outcomeInserted:
		return "inserted"
	case outcomeUpdated:
		return "updated"
	case outcomeUnchanged:
		return "unchanged"
	default:
		return "skipped"
	}
}

// Run performs one scan. folders, when non-empty, restricts both the walk
// and the deletion scope to those subtrees. Only whole-run-fatal conditions
// return an error; per-file failures are absorbed into the stats.
func (s *Scanner) Run(folders []string, sink progressSink) (RunStats, error) {
	if sink == nil {
		sink = nopSink{}
	}

	start := time.Now()
	metrics.ScanRunsTotal.Inc()
	metrics.ScanIsRunning.Set(1)
	defer metrics.ScanIsRunning.Set(0)

	var stats RunStats

	root := pathutil.Normalize(s.cfg.Root)
	if info, err := os.Stat(pathutil.LongPath(root)); err != nil || !info.IsDir() {
		return stats, fmt.Errorf("folder not found: %s", root)
	}

	scopes := []string{root}
	if len(folders) > 0 {
		scopes = make([]string, 0, len(folders))
		for _, f := range folders {
			scopes = append(scopes, pathutil.Normalize(f))
		}
		logging.Info("Starting partial scan of %d folders under %s", len(scopes), root)
	} else {
		logging.Info("Starting full scan of %s", root)
	}

	excluded := make(map[string]bool, len(s.cfg.Excluded))
	for _, dir := range s.cfg.Excluded {
		excluded[pathutil.Key(dir)] = true
	}

	// Eager enumeration buys an accurate progress denominator at the cost
	// of holding the candidate list in memory.
	candidates := s.enumerate(scopes, excluded)
	stats.Candidates = len(candidates)
	sink.begin(len(candidates))
	logging.Info("Found %d candidate files", len(candidates))

	ctx := context.Background()

	// The snapshot is frozen for the whole run; store writes by anyone else
	// are reconciled on the next run.
	snapshot, err := s.db.LoadSnapshot(ctx, scopes)
	if err != nil {
		return stats, fmt.Errorf("failed to load index snapshot: %w", err)
	}

	observed := make(map[string]bool, len(candidates))
	now := time.Now()

	var pending []database.Photo
	for i, path := range candidates {
		sink.advance(i+1, path)

		outcome := s.processCandidate(path, snapshot, observed, &pending, now)
		metrics.ScanItemsTotal.WithLabelValues(outcome.String()).Inc()
		switch outcome {
		case outcomeInserted:
			stats.Inserted++
		case outcomeUpdated:
			stats.Updated++
		case outcomeUnchanged:
			stats.Unchanged++
		case outcomeSkipped:
			stats.Skipped++
		}

		if (i+1)%s.cfg.BatchSize == 0 {
			s.flush(&pending)
		}
	}
	s.flush(&pending)

	stats.Removed = s.reconcileDeletions(snapshot, observed)

	stats.Duration = time.Since(start)
	metrics.ScanLastRunTimestamp.Set(float64(time.Now().Unix()))
	metrics.ScanLastRunDuration.Set(stats.Duration.Seconds())
	s.db.UpdateDBMetrics()

	logging.Info("Scan complete in %v: %d inserted, %d updated, %d unchanged, %d skipped, %d removed",
		stats.Duration.Round(time.Millisecond),
		stats.Inserted, stats.Updated, stats.Unchanged, stats.Skipped, stats.Removed)

	return stats, nil
}

// enumerate walks every scope depth-first and collects files with an allowed
// extension, pruning excluded directories. Walk errors on single entries are
// logged and skipped; a missing target subfolder simply contributes nothing.
func (s *Scanner) enumerate(scopes []string, excluded map[string]bool) []string {
	var candidates []string

	for _, scope := range scopes {
		err := filepath.WalkDir(pathutil.LongPath(scope), func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				logging.Warn("Error accessing path %s: %v", pathutil.CleanPath(path), err)
				if d != nil && d.IsDir() {
					return fs.SkipDir
				}
				return nil
			}

			clean := pathutil.Normalize(path)

			if d.IsDir() {
				if excluded[pathutil.Key(clean)] {
					logging.Debug("Pruning excluded folder: %s", clean)
					return fs.SkipDir
				}
				return nil
			}

			ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(d.Name()), "."))
			if s.cfg.Extensions[ext] {
				candidates = append(candidates, clean)
			}
			return nil
		})
		if err != nil {
			logging.Warn("Walk of %s failed: %v", scope, err)
		}
	}

	return candidates
}

// processCandidate handles one file. The comparison key is recorded as
// observed before the stat so that a file which is present but unreadable is
// never reconciled as deleted.
func (s *Scanner) processCandidate(
	path string,
	snapshot map[string]database.SnapshotEntry,
	observed map[string]bool,
	pending *[]database.Photo,
	now time.Time,
) itemOutcome {
	key := pathutil.Key(path)
	observed[key] = true

	info, err := os.Stat(pathutil.LongPath(path))
	if err != nil {
		logging.Warn("Skipping %s: stat failed: %v", path, err)
		return outcomeSkipped
	}

	entry, known := snapshot[key]
	if known && entry.SizeBytes == info.Size() && entry.ModifiedAt.Unix() == info.ModTime().Unix() {
		// Fingerprint unchanged, nothing to re-process.
		return outcomeUnchanged
	}

	meta := media.Extract(path)

	name := filepath.Base(path)
	photo := database.Photo{
		Path:      path,
		Name:      name,
		Extension: strings.ToLower(strings.TrimPrefix(filepath.Ext(name), ".")),
		SizeBytes: info.Size(),
		Width:     meta.Width,
		Height:    meta.Height,
		// ModTime stands in for the creation time; Go has no portable
		// birth-time accessor.
		CreatedAt:  info.ModTime(),
		ModifiedAt: info.ModTime(),
		TakenAt:    meta.TakenAt,
		ScannedAt:  now,
	}
	*pending = append(*pending, photo)

	if known {
		return outcomeUpdated
	}
	return outcomeInserted
}

// flush commits the pending photos in one transaction. Batch failures are
// logged, not fatal; the affected rows are retried naturally on the next run.
func (s *Scanner) flush(pending *[]database.Photo) {
	if len(*pending) == 0 {
		return
	}

	tx, err := s.db.BeginBatch()
	if err != nil {
		logging.Error("Failed to begin batch: %v", err)
		*pending = (*pending)[:0]
		return
	}

	for i := range *pending {
		if err := s.db.UpsertPhoto(tx, &(*pending)[i]); err != nil {
			logging.Warn("Error upserting %s: %v", (*pending)[i].Path, err)
		}
	}

	if err := s.db.EndBatch(tx, nil); err != nil {
		logging.Error("Failed to commit batch: %v", err)
	}

	*pending = (*pending)[:0]
}

// reconcileDeletions removes snapshot entries never observed during this
// run. The snapshot was loaded scoped to the run, so a partial scan can only
// delete rows under its target subfolders.
func (s *Scanner) reconcileDeletions(snapshot map[string]database.SnapshotEntry, observed map[string]bool) int {
	var stale []int64
	for key, entry := range snapshot {
		if !observed[key] {
			stale = append(stale, entry.ID)
		}
	}
	if len(stale) == 0 {
		return 0
	}

	tx, err := s.db.BeginBatch()
	if err != nil {
		logging.Error("Failed to begin deletion batch: %v", err)
		return 0
	}

	deleted, err := s.db.DeletePhotosByID(tx, stale)
	if err != nil {
		if endErr := s.db.EndBatch(tx, err); endErr != nil {
			logging.Error("Deletion reconciliation failed: %v", endErr)
		}
		return 0
	}

	if err := s.db.EndBatch(tx, nil); err != nil {
		logging.Error("Failed to commit deletions: %v", err)
		return 0
	}

	if deleted > 0 {
		logging.Info("Removed %d missing photos from index", deleted)
	}
	return int(deleted)
}
