package media

import (
	"image"
	"io"
	"os"
	"strings"
	"time"

	// Image format decoders
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/rwcarlsen/goexif/exif"
	_ "golang.org/x/image/webp" // WebP format support

	"github.com/Kohei075/local-photo-browser/internal/logging"
	"github.com/Kohei075/local-photo-browser/internal/metrics"
	"github.com/Kohei075/local-photo-browser/internal/pathutil"
)

// exifTimeLayout is the timestamp format cameras embed in EXIF fields.
const exifTimeLayout = "2006:01:02 15:04:05"

// Metadata holds what could be extracted from an image. Nil fields mean the
// corresponding extraction failed or the data was absent.
type Metadata struct {
	Width   *int
	Height  *int
	TakenAt *time.Time
}

// Extract opens the image at path once and derives pixel dimensions and the
// capture timestamp. The two extractions are independent: either may fail
// without affecting the other. A file that cannot be opened at all yields an
// all-nil Metadata; Extract never returns an error.
func Extract(path string) Metadata {
	var meta Metadata

	f, err := os.Open(pathutil.LongPath(path))
	if err != nil {
		logging.Debug("metadata: cannot open %s: %v", path, err)
		metrics.MetadataExtractions.WithLabelValues("open_error").Inc()
		return meta
	}
	defer func() {
		if err := f.Close(); err != nil {
			logging.Warn("metadata: failed to close %s: %v", path, err)
		}
	}()

	if config, _, err := image.DecodeConfig(f); err == nil {
		w, h := config.Width, config.Height
		meta.Width = &w
		meta.Height = &h
	} else {
		logging.Debug("metadata: cannot decode dimensions of %s: %v", path, err)
	}

	// EXIF sits at the front of the file; rewind after the dimension probe.
	if _, err := f.Seek(0, io.SeekStart); err == nil {
		if x, err := exif.Decode(f); err == nil {
			meta.TakenAt = captureTime(x)
		} else {
			logging.Debug("metadata: no EXIF in %s: %v", path, err)
		}
	}

	status := "partial"
	if meta.Width != nil && meta.TakenAt != nil {
		status = "full"
	} else if meta.Width == nil && meta.TakenAt == nil {
		status = "empty"
	}
	metrics.MetadataExtractions.WithLabelValues(status).Inc()

	return meta
}

// captureTime resolves the capture timestamp: DateTimeOriginal preferred,
// DateTime as fallback. Absent or unparsable fields yield nil.
func captureTime(x *exif.Exif) *time.Time {
	for _, name := range []exif.FieldName{exif.DateTimeOriginal, exif.DateTime} {
		tag, err := x.Get(name)
		if err != nil {
			continue
		}
		s, err := tag.StringVal()
		if err != nil {
			continue
		}
		t, err := time.ParseInLocation(exifTimeLayout, strings.TrimSpace(s), time.Local)
		if err != nil {
			continue
		}
		return &t
	}
	return nil
}
