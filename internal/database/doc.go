// Package database provides SQLite storage for the photo index.
//
// It handles storage and retrieval of:
//   - Photo metadata (paths, sizes, dimensions, timestamps)
//   - EXIF capture times
//   - Favorite flags and cached thumbnail locations
//   - Scan snapshots for change detection
//
// The database uses WAL mode for improved concurrent read performance
// and includes automatic schema initialization. Timestamps are stored as
// Unix seconds, which also defines the granularity of the scanner's
// change-detection fingerprint.
package database
