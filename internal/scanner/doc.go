// Package scanner reconciles the photo index against the live filesystem.
//
// A scan run walks the configured library root (or a restricted set of
// subfolders) and diffs every discovered file against the persisted
// snapshot:
//   - New files are inserted with extracted metadata
//   - Files whose size or modification time changed are re-processed
//   - Unchanged files are left untouched, including their scan timestamp
//   - Rows whose backing file vanished within the run's scope are removed
//
// Change detection compares the stored (size, mtime) fingerprint at Unix
// second granularity; file content is never hashed. Re-processing a file
// never resets user-applied state such as the favorite flag, and never
// invalidates an existing thumbnail.
//
// A partial scan restricted to subfolders bounds both the filesystem walk
// and the deletion scope: files outside the requested subtrees are neither
// read nor reconciled, so their rows survive even if the files are gone.
//
// The Coordinator wraps runs with process-wide admission control: at most
// one scan executes at a time, concurrent start requests are rejected
// rather than queued, and progress is observable through point-in-time
// Status snapshots.
package scanner
