package scanner

import (
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func waitForIdle(t *testing.T, c *Coordinator) Status {
	t.Helper()

	deadline := time.Now().Add(10 * time.Second)
	for time.Now().Before(deadline) {
		st := c.Status()
		if !st.Active {
			return st
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("Scan did not finish in time")
	return Status{}
}

func TestCoordinatorRunsScan(t *testing.T) {
	root := t.TempDir()
	db := newTestDB(t)

	writeFile(t, filepath.Join(root, "a.jpg"), []byte("aaaa"))
	writeFile(t, filepath.Join(root, "b.jpg"), []byte("bbbb"))

	c := NewCoordinator(db, func() Config { return testConfig(root) })

	if err := c.Start(nil); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	st := waitForIdle(t, c)
	if st.LastError != "" {
		t.Fatalf("Unexpected scan error: %s", st.LastError)
	}
	if st.TotalCandidates != 2 {
		t.Errorf("Expected 2 total candidates, got %d", st.TotalCandidates)
	}
	if st.Processed != 2 {
		t.Errorf("Expected 2 processed, got %d", st.Processed)
	}

	stats := c.LastStats()
	if stats.Inserted != 2 {
		t.Errorf("Expected 2 inserted, got %d", stats.Inserted)
	}
	if got := countPhotos(t, db); got != 2 {
		t.Errorf("Expected 2 photos indexed, got %d", got)
	}
}

func TestCoordinatorRejectsConcurrentStart(t *testing.T) {
	db := newTestDB(t)

	c := NewCoordinator(db, func() Config { return testConfig(t.TempDir()) })

	c.mu.Lock()
	c.running = true
	c.mu.Unlock()

	if err := c.Start(nil); !errors.Is(err, ErrAlreadyRunning) {
		t.Fatalf("Expected ErrAlreadyRunning, got %v", err)
	}

	c.mu.Lock()
	c.running = false
	c.mu.Unlock()
}

func TestCoordinatorRejectsEmptyScope(t *testing.T) {
	db := newTestDB(t)

	c := NewCoordinator(db, func() Config { return testConfig(t.TempDir()) })

	if err := c.Start([]string{}); !errors.Is(err, ErrNoScope) {
		t.Fatalf("Expected ErrNoScope, got %v", err)
	}
	if c.Status().Active {
		t.Error("Rejected start must not mark a session active")
	}
}

func TestCoordinatorReportsRunError(t *testing.T) {
	db := newTestDB(t)

	missing := filepath.Join(t.TempDir(), "does-not-exist")
	c := NewCoordinator(db, func() Config { return testConfig(missing) })

	if err := c.Start(nil); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	st := waitForIdle(t, c)
	if st.LastError == "" {
		t.Fatal("Expected LastError to be set for a missing root")
	}
}

func TestCoordinatorRunnableAgainAfterCompletion(t *testing.T) {
	root := t.TempDir()
	db := newTestDB(t)

	writeFile(t, filepath.Join(root, "a.jpg"), []byte("aaaa"))

	c := NewCoordinator(db, func() Config { return testConfig(root) })

	if err := c.Start(nil); err != nil {
		t.Fatalf("First start failed: %v", err)
	}
	waitForIdle(t, c)

	if err := c.Start(nil); err != nil {
		t.Fatalf("Expected a second run to be admitted, got %v", err)
	}
	waitForIdle(t, c)

	if stats := c.LastStats(); stats.Unchanged != 1 {
		t.Errorf("Expected second run to see 1 unchanged, got %+v", stats)
	}
}
