// Package media derives artifacts from image files: embedded metadata and
// cached thumbnails.
//
// Everything here is best-effort enrichment. The scanner indexes a file
// whether or not its pixels can be decoded; extraction failures degrade to
// absent metadata rather than errors. Thumbnails are generated lazily, one
// JPEG per photo identifier, and are never invalidated by later source
// changes.
package media
