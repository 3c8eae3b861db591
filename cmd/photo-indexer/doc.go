// Command photo-indexer maintains a searchable index of a photo library.
//
// It walks a configured root directory, records photo metadata in a SQLite
// database and manages a cache of pre-generated thumbnails. Configuration
// comes from environment variables (see the startup package); ROOT_DIR is
// the only required setting.
//
// # Subcommands
//
//	scan          Scan the library and reconcile the index.
//	              --folder/-f restricts the scan to subfolders (repeatable);
//	              --no-progress disables the progress bar.
//
//	stats         Print index statistics: photo counts, total size,
//	              favorites and per-extension breakdowns.
//
//	thumbs warm   Pre-generate thumbnails for photos missing one.
//	              --limit/-l caps the number generated per invocation.
//
//	thumbs clear  Remove every cached thumbnail artifact.
//
//	vacuum        Compact the index database, reclaiming space left by
//	              deleted rows.
//
// # Examples
//
//	ROOT_DIR=/photos photo-indexer scan
//	ROOT_DIR=/photos photo-indexer scan -f /photos/2024 -f /photos/2025
//	ROOT_DIR=/photos photo-indexer thumbs warm --limit 500
//	ROOT_DIR=/photos photo-indexer stats
package main
