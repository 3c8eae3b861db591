package database

import "time"

// Photo is one indexed image file. Path is the identity: platform-normalized,
// globally unique, never two rows with the same path.
type Photo struct {
	ID            int64      `json:"id"`
	Path          string     `json:"path"`
	Name          string     `json:"name"`
	Extension     string     `json:"extension"`
	SizeBytes     int64      `json:"sizeBytes"`
	Width         *int       `json:"width,omitempty"`
	Height        *int       `json:"height,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
	ModifiedAt    time.Time  `json:"modifiedAt"`
	TakenAt       *time.Time `json:"takenAt,omitempty"`
	IsFavorite    bool       `json:"isFavorite"`
	ThumbnailPath string     `json:"thumbnailPath,omitempty"`
	ScannedAt     time.Time  `json:"scannedAt"`
}

// SnapshotEntry is the per-path state the scanner diffs against:
// the change-detection fingerprint plus the row identifier.
type SnapshotEntry struct {
	ID         int64
	Path       string
	SizeBytes  int64
	ModifiedAt time.Time
}

// PhotoListing is one page of photos.
type PhotoListing struct {
	Items      []Photo `json:"items"`
	TotalItems int     `json:"totalItems"`
	Page       int     `json:"page"`
	PageSize   int     `json:"pageSize"`
	TotalPages int     `json:"totalPages"`
}

// IndexStats summarizes the persisted index.
type IndexStats struct {
	TotalPhotos    int            `json:"totalPhotos"`
	TotalFavorites int            `json:"totalFavorites"`
	TotalBytes     int64          `json:"totalBytes"`
	ByExtension    map[string]int `json:"byExtension"`
	Thumbnailed    int            `json:"thumbnailed"`
}
