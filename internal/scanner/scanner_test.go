package scanner

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Kohei075/local-photo-browser/internal/database"
)

func newTestDB(t *testing.T) *database.Database {
	t.Helper()

	db, err := database.New(context.Background(), filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func writeFile(t *testing.T, path string, content []byte) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("MkdirAll failed: %v", err)
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
}

func testConfig(root string) Config {
	return Config{
		Root: root,
		Extensions: map[string]bool{
			"jpg":  true,
			"jpeg": true,
			"png":  true,
		},
	}
}

func countPhotos(t *testing.T, db *database.Database) int {
	t.Helper()

	stats, err := db.CalculateStats(context.Background())
	if err != nil {
		t.Fatalf("CalculateStats failed: %v", err)
	}
	return stats.TotalPhotos
}

func TestScanNewFiles(t *testing.T) {
	root := t.TempDir()
	db := newTestDB(t)

	writeFile(t, filepath.Join(root, "a.jpg"), []byte("not a real image"))
	writeFile(t, filepath.Join(root, "sub", "b.png"), []byte("still not an image"))
	writeFile(t, filepath.Join(root, "notes.txt"), []byte("ignored"))

	s := New(db, testConfig(root))
	stats, err := s.Run(nil, nil)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if stats.Candidates != 2 {
		t.Errorf("Expected 2 candidates, got %d", stats.Candidates)
	}
	if stats.Inserted != 2 {
		t.Errorf("Expected 2 inserted, got %d", stats.Inserted)
	}
	if got := countPhotos(t, db); got != 2 {
		t.Errorf("Expected 2 photos in index, got %d", got)
	}

	// Undecodable files are still indexed; their dimensions stay unknown.
	p, err := db.GetPhotoByPath(context.Background(), filepath.Join(root, "a.jpg"))
	if err != nil {
		t.Fatalf("GetPhotoByPath failed: %v", err)
	}
	if p.Width != nil || p.Height != nil {
		t.Error("Expected nil dimensions for undecodable file")
	}
	if p.SizeBytes != int64(len("not a real image")) {
		t.Errorf("Unexpected size: %d", p.SizeBytes)
	}
}

func TestScanIdempotent(t *testing.T) {
	root := t.TempDir()
	db := newTestDB(t)

	writeFile(t, filepath.Join(root, "a.jpg"), []byte("aaaa"))
	writeFile(t, filepath.Join(root, "b.jpg"), []byte("bbbb"))

	s := New(db, testConfig(root))
	if _, err := s.Run(nil, nil); err != nil {
		t.Fatalf("First run failed: %v", err)
	}

	stats, err := s.Run(nil, nil)
	if err != nil {
		t.Fatalf("Second run failed: %v", err)
	}

	if stats.Unchanged != 2 {
		t.Errorf("Expected 2 unchanged, got %d", stats.Unchanged)
	}
	if stats.Inserted != 0 || stats.Updated != 0 || stats.Removed != 0 {
		t.Errorf("Expected a no-op second run, got %+v", stats)
	}
	if got := countPhotos(t, db); got != 2 {
		t.Errorf("Expected 2 photos after second run, got %d", got)
	}
}

func TestScanDetectsChangePreservingUserState(t *testing.T) {
	root := t.TempDir()
	db := newTestDB(t)
	ctx := context.Background()

	path := filepath.Join(root, "a.jpg")
	writeFile(t, path, []byte("version one"))

	s := New(db, testConfig(root))
	if _, err := s.Run(nil, nil); err != nil {
		t.Fatalf("First run failed: %v", err)
	}

	p, err := db.GetPhotoByPath(ctx, path)
	if err != nil {
		t.Fatalf("GetPhotoByPath failed: %v", err)
	}
	if err := db.SetFavorite(ctx, p.ID, true); err != nil {
		t.Fatalf("SetFavorite failed: %v", err)
	}
	if err := db.SetThumbnailPath(ctx, p.ID, "/thumbs/1.jpg"); err != nil {
		t.Fatalf("SetThumbnailPath failed: %v", err)
	}

	// Change both size and mtime so the fingerprint differs.
	writeFile(t, path, []byte("version two is longer"))
	newMod := time.Now().Add(-time.Hour)
	if err := os.Chtimes(path, newMod, newMod); err != nil {
		t.Fatalf("Chtimes failed: %v", err)
	}

	stats, err := s.Run(nil, nil)
	if err != nil {
		t.Fatalf("Second run failed: %v", err)
	}
	if stats.Updated != 1 {
		t.Errorf("Expected 1 updated, got %d", stats.Updated)
	}

	updated, err := db.GetPhotoByPath(ctx, path)
	if err != nil {
		t.Fatalf("GetPhotoByPath after update failed: %v", err)
	}
	if updated.ID != p.ID {
		t.Errorf("Expected stable id %d, got %d", p.ID, updated.ID)
	}
	if updated.SizeBytes != int64(len("version two is longer")) {
		t.Errorf("Expected updated size, got %d", updated.SizeBytes)
	}
	if !updated.IsFavorite {
		t.Error("Expected favorite flag to survive a re-index")
	}
	if updated.ThumbnailPath != "/thumbs/1.jpg" {
		t.Errorf("Expected thumbnail path to survive a re-index, got %q", updated.ThumbnailPath)
	}
}

func TestScanUnchangedFingerprintSkipsUpdate(t *testing.T) {
	root := t.TempDir()
	db := newTestDB(t)
	ctx := context.Background()

	path := filepath.Join(root, "a.jpg")
	writeFile(t, path, []byte("stable"))

	s := New(db, testConfig(root))
	if _, err := s.Run(nil, nil); err != nil {
		t.Fatalf("First run failed: %v", err)
	}

	before, err := db.GetPhotoByPath(ctx, path)
	if err != nil {
		t.Fatalf("GetPhotoByPath failed: %v", err)
	}

	stats, err := s.Run(nil, nil)
	if err != nil {
		t.Fatalf("Second run failed: %v", err)
	}
	if stats.Unchanged != 1 {
		t.Errorf("Expected 1 unchanged, got %d", stats.Unchanged)
	}

	after, err := db.GetPhotoByPath(ctx, path)
	if err != nil {
		t.Fatalf("GetPhotoByPath after second run failed: %v", err)
	}
	if !after.ScannedAt.Equal(before.ScannedAt) {
		t.Error("Expected scanned_at untouched for an unchanged file")
	}
}

func TestScanRemovesDeleted(t *testing.T) {
	root := t.TempDir()
	db := newTestDB(t)

	keep := filepath.Join(root, "keep.jpg")
	gone := filepath.Join(root, "gone.jpg")
	writeFile(t, keep, []byte("keep"))
	writeFile(t, gone, []byte("gone"))

	s := New(db, testConfig(root))
	if _, err := s.Run(nil, nil); err != nil {
		t.Fatalf("First run failed: %v", err)
	}

	if err := os.Remove(gone); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}

	stats, err := s.Run(nil, nil)
	if err != nil {
		t.Fatalf("Second run failed: %v", err)
	}

	if stats.Removed != 1 {
		t.Errorf("Expected 1 removed, got %d", stats.Removed)
	}
	if got := countPhotos(t, db); got != 1 {
		t.Errorf("Expected 1 photo after reconciliation, got %d", got)
	}
	if _, err := db.GetPhotoByPath(context.Background(), gone); err == nil {
		t.Error("Expected deleted file's row to be gone")
	}
}

func TestPartialScanScopeSafety(t *testing.T) {
	root := t.TempDir()
	db := newTestDB(t)

	inA := filepath.Join(root, "a", "one.jpg")
	inB := filepath.Join(root, "b", "two.jpg")
	writeFile(t, inA, []byte("one"))
	writeFile(t, inB, []byte("two"))

	s := New(db, testConfig(root))
	if _, err := s.Run(nil, nil); err != nil {
		t.Fatalf("Full run failed: %v", err)
	}

	// Delete a file outside the partial scope. The scoped run must not touch
	// its row.
	if err := os.Remove(inB); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}

	stats, err := s.Run([]string{filepath.Join(root, "a")}, nil)
	if err != nil {
		t.Fatalf("Partial run failed: %v", err)
	}
	if stats.Removed != 0 {
		t.Errorf("Partial scan removed %d rows outside its scope", stats.Removed)
	}
	if got := countPhotos(t, db); got != 2 {
		t.Errorf("Expected 2 photos after scoped run, got %d", got)
	}

	// A full run afterwards reconciles the deletion.
	stats, err = s.Run(nil, nil)
	if err != nil {
		t.Fatalf("Second full run failed: %v", err)
	}
	if stats.Removed != 1 {
		t.Errorf("Expected 1 removed on full run, got %d", stats.Removed)
	}
	if got := countPhotos(t, db); got != 1 {
		t.Errorf("Expected 1 photo after full reconciliation, got %d", got)
	}
}

func TestPartialScanScopedDeletion(t *testing.T) {
	root := t.TempDir()
	db := newTestDB(t)

	inA := filepath.Join(root, "a", "one.jpg")
	writeFile(t, inA, []byte("one"))
	writeFile(t, filepath.Join(root, "b", "two.jpg"), []byte("two"))

	s := New(db, testConfig(root))
	if _, err := s.Run(nil, nil); err != nil {
		t.Fatalf("Full run failed: %v", err)
	}

	if err := os.Remove(inA); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}

	stats, err := s.Run([]string{filepath.Join(root, "a")}, nil)
	if err != nil {
		t.Fatalf("Partial run failed: %v", err)
	}
	if stats.Removed != 1 {
		t.Errorf("Expected in-scope deletion to reconcile, got %d removed", stats.Removed)
	}
	if got := countPhotos(t, db); got != 1 {
		t.Errorf("Expected 1 photo remaining, got %d", got)
	}
}

func TestExcludedFolderPruned(t *testing.T) {
	root := t.TempDir()
	db := newTestDB(t)

	writeFile(t, filepath.Join(root, "a.jpg"), []byte("in"))
	writeFile(t, filepath.Join(root, "trash", "b.jpg"), []byte("out"))
	writeFile(t, filepath.Join(root, "trash", "deep", "c.jpg"), []byte("out"))

	cfg := testConfig(root)
	cfg.Excluded = []string{filepath.Join(root, "trash")}

	s := New(db, cfg)
	stats, err := s.Run(nil, nil)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if stats.Candidates != 1 {
		t.Errorf("Expected 1 candidate outside excluded folder, got %d", stats.Candidates)
	}
	if got := countPhotos(t, db); got != 1 {
		t.Errorf("Expected 1 photo indexed, got %d", got)
	}
}

func TestScanSkipsUnreadableCandidate(t *testing.T) {
	root := t.TempDir()
	db := newTestDB(t)

	writeFile(t, filepath.Join(root, "good.jpg"), []byte("good"))

	// A dangling symlink enumerates as a candidate but fails to stat.
	broken := filepath.Join(root, "broken.jpg")
	if err := os.Symlink(filepath.Join(root, "no-such-target"), broken); err != nil {
		t.Skipf("Symlinks not supported: %v", err)
	}

	s := New(db, testConfig(root))
	stats, err := s.Run(nil, nil)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if stats.Candidates != 2 {
		t.Errorf("Expected 2 candidates, got %d", stats.Candidates)
	}
	if stats.Inserted != 1 {
		t.Errorf("Expected 1 inserted, got %d", stats.Inserted)
	}
	if stats.Skipped != 1 {
		t.Errorf("Expected 1 skipped, got %d", stats.Skipped)
	}
	if got := countPhotos(t, db); got != 1 {
		t.Errorf("Expected 1 photo indexed, got %d", got)
	}
}

func TestScanUnreadableFileKeepsRow(t *testing.T) {
	root := t.TempDir()
	db := newTestDB(t)

	path := filepath.Join(root, "a.jpg")
	writeFile(t, path, []byte("aaaa"))

	s := New(db, testConfig(root))
	if _, err := s.Run(nil, nil); err != nil {
		t.Fatalf("First run failed: %v", err)
	}

	// Replace the file with a dangling symlink: still present in the walk,
	// unreadable on stat. Its row must survive reconciliation.
	if err := os.Remove(path); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if err := os.Symlink(filepath.Join(root, "no-such-target"), path); err != nil {
		t.Skipf("Symlinks not supported: %v", err)
	}

	stats, err := s.Run(nil, nil)
	if err != nil {
		t.Fatalf("Second run failed: %v", err)
	}

	if stats.Skipped != 1 {
		t.Errorf("Expected 1 skipped, got %d", stats.Skipped)
	}
	if stats.Removed != 0 {
		t.Errorf("A skipped candidate must not be reconciled as deleted, got %d removed", stats.Removed)
	}
	if _, err := db.GetPhotoByPath(context.Background(), path); err != nil {
		t.Errorf("Expected the row to survive: %v", err)
	}
}

func TestScanMissingRootFatal(t *testing.T) {
	db := newTestDB(t)

	s := New(db, testConfig(filepath.Join(t.TempDir(), "does-not-exist")))
	if _, err := s.Run(nil, nil); err == nil {
		t.Fatal("Expected an error for a missing root")
	}
}

func TestScanMissingSubfolderNotFatal(t *testing.T) {
	root := t.TempDir()
	db := newTestDB(t)

	writeFile(t, filepath.Join(root, "a", "one.jpg"), []byte("one"))

	s := New(db, testConfig(root))
	stats, err := s.Run([]string{filepath.Join(root, "no-such-folder")}, nil)
	if err != nil {
		t.Fatalf("Expected missing subfolder to be tolerated, got %v", err)
	}
	if stats.Candidates != 0 {
		t.Errorf("Expected 0 candidates from a missing subfolder, got %d", stats.Candidates)
	}
}

func TestScanSmallBatchSize(t *testing.T) {
	root := t.TempDir()
	db := newTestDB(t)

	for _, name := range []string{"a.jpg", "b.jpg", "c.jpg", "d.jpg", "e.jpg"} {
		writeFile(t, filepath.Join(root, name), []byte(name))
	}

	cfg := testConfig(root)
	cfg.BatchSize = 2

	s := New(db, cfg)
	stats, err := s.Run(nil, nil)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if stats.Inserted != 5 {
		t.Errorf("Expected 5 inserted, got %d", stats.Inserted)
	}
	if got := countPhotos(t, db); got != 5 {
		t.Errorf("Expected 5 photos indexed, got %d", got)
	}
}
