// Package workers provides utilities for determining worker pool sizes in
// containerized environments.
//
// When running in containers, the number of available CPUs may be limited
// by cgroup constraints. While Go 1.19+ automatically sets GOMAXPROCS based
// on container CPU limits, runtime.NumCPU() still returns the host machine's
// CPU count. This package sizes pools from GOMAXPROCS so worker counts
// respect container resource limits.
//
// The package provides task-specific helper functions:
//
//	// For CPU-intensive tasks (image decoding, resizing)
//	numWorkers := workers.ForCPU(8) // max 8 workers
//
//	// For I/O-bound tasks (file operations, database writes)
//	numWorkers := workers.ForIO(16) // max 16 workers
//
// All functions respect the WARMER_WORKERS environment variable, allowing
// operators to override the automatic calculation.
package workers
