package scanner

import (
	"errors"
	"fmt"
	"sync"

	"github.com/Kohei075/local-photo-browser/internal/database"
	"github.com/Kohei075/local-photo-browser/internal/logging"
	"github.com/Kohei075/local-photo-browser/internal/metrics"
)

var (
	// ErrAlreadyRunning is returned by Start while a scan is active.
	ErrAlreadyRunning = errors.New("scan already in progress")
	// ErrNoScope is returned by Start for an empty (but non-nil) folder list.
	ErrNoScope = errors.New("no folders specified")
)

// Coordinator is the sole admission-control point for scan runs: at most one
// run executes at a time process-wide. It owns the scan session exclusively;
// progress is observable only through Status.
type Coordinator struct {
	db       *database.Database
	configFn func() Config

	mu        sync.Mutex
	session   Status
	running   bool
	lastStats RunStats
}

// NewCoordinator creates a Coordinator. configFn is called at the start of
// each run to take the configuration snapshot for that run.
func NewCoordinator(db *database.Database, configFn func() Config) *Coordinator {
	return &Coordinator{
		db:       db,
		configFn: configFn,
	}
}

// Start begins a scan asynchronously and returns immediately. A nil scope
// means the whole configured root; a non-empty scope restricts the run to
// those subfolders. There is no queuing: a rejected start is dropped and the
// caller may retry later.
func (c *Coordinator) Start(scope []string) error {
	if scope != nil && len(scope) == 0 {
		return ErrNoScope
	}

	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		return ErrAlreadyRunning
	}
	c.running = true
	c.session = Status{Active: true}
	c.mu.Unlock()

	go c.run(scope)
	return nil
}

// Status returns a snapshot of the current scan session, readable at any
// time including mid-run.
func (c *Coordinator) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session
}

// LastStats returns the stats of the most recently completed run.
func (c *Coordinator) LastStats() RunStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastStats
}

// run executes one scan on the background worker. The active flag is cleared
// on every exit path, including panics, so the coordinator stays releasable.
func (c *Coordinator) run(scope []string) {
	defer func() {
		if r := recover(); r != nil {
			logging.Error("Scan panicked: %v", r)
			metrics.ScanErrors.Inc()
			c.mu.Lock()
			c.session.LastError = fmt.Sprintf("internal error: %v", r)
			c.mu.Unlock()
		}
		c.mu.Lock()
		c.running = false
		c.session.Active = false
		c.mu.Unlock()
	}()

	s := New(c.db, c.configFn())

	stats, err := s.Run(scope, c)
	if err != nil {
		logging.Error("Scan failed: %v", err)
		metrics.ScanErrors.Inc()
		c.mu.Lock()
		c.session.LastError = err.Error()
		c.mu.Unlock()
		return
	}

	c.mu.Lock()
	c.lastStats = stats
	c.mu.Unlock()
}

// begin implements progressSink.
func (c *Coordinator) begin(totalCandidates int) {
	c.mu.Lock()
	c.session.TotalCandidates = totalCandidates
	c.mu.Unlock()
}

// advance implements progressSink.
func (c *Coordinator) advance(processed int, currentPath string) {
	c.mu.Lock()
	c.session.Processed = processed
	c.session.CurrentPath = currentPath
	c.mu.Unlock()
}
