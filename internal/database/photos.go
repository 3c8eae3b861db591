package database

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"path/filepath"
	"strings"
	"time"

	"github.com/Kohei075/local-photo-browser/internal/metrics"
	"github.com/Kohei075/local-photo-browser/internal/pathutil"
)

type SortField string
type SortOrder string

const (
	SortByName     SortField = "name"
	SortByModified SortField = "modified"
	SortByTaken    SortField = "taken"
	SortBySize     SortField = "size"
	SortAsc        SortOrder = "asc"
	SortDesc       SortOrder = "desc"
)

// ListOptions controls ListPhotos filtering, ordering and pagination.
type ListOptions struct {
	FolderPrefix  string
	SortField     SortField
	SortOrder     SortOrder
	FavoritesOnly bool
	Page          int
	PageSize      int
}

const photoColumns = `id, path, name, extension, size_bytes, width, height,
	created_at, modified_at, taken_at, is_favorite, thumbnail_path, scanned_at`

// scanPhoto reads one photo row, converting stored Unix timestamps and
// nullable columns into the model types.
func scanPhoto(row interface{ Scan(...interface{}) error }) (*Photo, error) {
	var p Photo
	var width, height sql.NullInt64
	var createdAt, modifiedAt, scannedAt int64
	var takenAt sql.NullInt64
	var thumbPath sql.NullString

	err := row.Scan(
		&p.ID, &p.Path, &p.Name, &p.Extension, &p.SizeBytes,
		&width, &height, &createdAt, &modifiedAt, &takenAt,
		&p.IsFavorite, &thumbPath, &scannedAt,
	)
	if err != nil {
		return nil, err
	}

	if width.Valid {
		w := int(width.Int64)
		p.Width = &w
	}
	if height.Valid {
		h := int(height.Int64)
		p.Height = &h
	}
	p.CreatedAt = time.Unix(createdAt, 0)
	p.ModifiedAt = time.Unix(modifiedAt, 0)
	if takenAt.Valid {
		t := time.Unix(takenAt.Int64, 0)
		p.TakenAt = &t
	}
	if thumbPath.Valid {
		p.ThumbnailPath = thumbPath.String
	}
	p.ScannedAt = time.Unix(scannedAt, 0)
	return &p, nil
}

// GetPhotoByID retrieves a single photo by its identifier.
func (d *Database) GetPhotoByID(ctx context.Context, id int64) (*Photo, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("get_photo_by_id", start, err) }()

	d.mu.RLock()
	defer d.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	row := d.db.QueryRowContext(ctx, `SELECT `+photoColumns+` FROM photos WHERE id = ?`, id)
	var p *Photo
	p, err = scanPhoto(row)
	return p, err
}

// GetPhotoByPath retrieves a single photo by its normalized path.
func (d *Database) GetPhotoByPath(ctx context.Context, path string) (*Photo, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("get_photo_by_path", start, err) }()

	d.mu.RLock()
	defer d.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	row := d.db.QueryRowContext(ctx, `SELECT `+photoColumns+` FROM photos WHERE path = ?`, path)
	var p *Photo
	p, err = scanPhoto(row)
	return p, err
}

// LoadSnapshot loads the fingerprint of every photo whose path falls under
// one of the given directory prefixes, keyed by comparison key. The SQL
// prefix match over-selects sibling directories that share a name prefix;
// pathutil.HasPrefix filters those out.
func (d *Database) LoadSnapshot(ctx context.Context, prefixes []string) (map[string]SnapshotEntry, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("load_snapshot", start, err) }()

	d.mu.RLock()
	defer d.mu.RUnlock()

	snapshot := make(map[string]SnapshotEntry)

	for _, prefix := range prefixes {
		var rows *sql.Rows
		rows, err = d.db.QueryContext(ctx,
			`SELECT id, path, size_bytes, modified_at FROM photos WHERE path LIKE ? || '%'`,
			prefix,
		)
		if err != nil {
			return nil, fmt.Errorf("snapshot query failed for %s: %w", prefix, err)
		}

		for rows.Next() {
			var e SnapshotEntry
			var modifiedAt int64
			if err = rows.Scan(&e.ID, &e.Path, &e.SizeBytes, &modifiedAt); err != nil {
				if closeErr := rows.Close(); closeErr != nil {
					err = fmt.Errorf("%w (close: %v)", err, closeErr)
				}
				return nil, fmt.Errorf("snapshot scan failed: %w", err)
			}
			e.ModifiedAt = time.Unix(modifiedAt, 0)

			if !pathutil.HasPrefix(e.Path, prefix) {
				continue
			}
			snapshot[pathutil.Key(e.Path)] = e
		}

		if err = rows.Err(); err != nil {
			if closeErr := rows.Close(); closeErr != nil {
				err = fmt.Errorf("%w (close: %v)", err, closeErr)
			}
			return nil, fmt.Errorf("snapshot rows error: %w", err)
		}
		if err = rows.Close(); err != nil {
			return nil, fmt.Errorf("snapshot close failed: %w", err)
		}
	}

	return snapshot, nil
}

// UpsertPhoto inserts a new photo or updates an existing row's mutable
// fields. is_favorite and thumbnail_path are never written on conflict;
// re-scans must not reset user-applied state or regenerate thumbnails.
// Must be called within a transaction.
func (d *Database) UpsertPhoto(tx *sql.Tx, p *Photo) error {
	var takenAt interface{}
	if p.TakenAt != nil {
		takenAt = p.TakenAt.Unix()
	}
	var width, height interface{}
	if p.Width != nil {
		width = *p.Width
	}
	if p.Height != nil {
		height = *p.Height
	}

	query := `
	INSERT INTO photos (path, name, extension, size_bytes, width, height,
		created_at, modified_at, taken_at, is_favorite, thumbnail_path, scanned_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, 0, NULL, ?)
	ON CONFLICT(path) DO UPDATE SET
		size_bytes = excluded.size_bytes,
		width = excluded.width,
		height = excluded.height,
		modified_at = excluded.modified_at,
		taken_at = excluded.taken_at,
		scanned_at = excluded.scanned_at
	`

	// Background context: the transaction controls the operation's lifecycle.
	result, err := tx.ExecContext(context.Background(), query,
		p.Path, p.Name, p.Extension, p.SizeBytes, width, height,
		p.CreatedAt.Unix(), p.ModifiedAt.Unix(), takenAt, p.ScannedAt.Unix(),
	)
	if err == nil {
		if rows, _ := result.RowsAffected(); rows > 0 {
			metrics.DBRowsAffected.WithLabelValues("upsert_photo").Observe(float64(rows))
		}
	}
	return err
}

// DeletePhotosByID removes the given rows. Must be called within a
// transaction; the scanner uses it for deletion reconciliation.
func (d *Database) DeletePhotosByID(tx *sql.Tx, ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	// SQLite caps bound parameters, so delete in chunks.
	const chunkSize = 500
	var total int64

	for i := 0; i < len(ids); i += chunkSize {
		end := i + chunkSize
		if end > len(ids) {
			end = len(ids)
		}
		chunk := ids[i:end]

		placeholders := strings.Repeat("?,", len(chunk))
		placeholders = placeholders[:len(placeholders)-1]

		args := make([]interface{}, len(chunk))
		for j, id := range chunk {
			args[j] = id
		}

		result, err := tx.ExecContext(context.Background(),
			"DELETE FROM photos WHERE id IN ("+placeholders+")", args...)
		if err != nil {
			return total, err
		}
		if rows, err := result.RowsAffected(); err == nil {
			total += rows
		}
	}

	if total > 0 {
		metrics.DBRowsAffected.WithLabelValues("delete_photos").Observe(float64(total))
	}
	return total, nil
}

// SetFavorite flips the favorite flag. The favorite feature itself lives
// outside this core; this is the store-boundary write it goes through.
func (d *Database) SetFavorite(ctx context.Context, id int64, favorite bool) error {
	start := time.Now()
	var err error
	defer func() { recordQuery("set_favorite", start, err) }()

	d.mu.Lock()
	defer d.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err = d.db.ExecContext(ctx, "UPDATE photos SET is_favorite = ? WHERE id = ?", favorite, id)
	return err
}

// SetThumbnailPath records the artifact path after first generation. It only
// fills an empty slot; an existing thumbnail path is never overwritten.
func (d *Database) SetThumbnailPath(ctx context.Context, id int64, thumbPath string) error {
	start := time.Now()
	var err error
	defer func() { recordQuery("set_thumbnail_path", start, err) }()

	d.mu.Lock()
	defer d.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err = d.db.ExecContext(ctx,
		"UPDATE photos SET thumbnail_path = ? WHERE id = ? AND thumbnail_path IS NULL",
		thumbPath, id)
	return err
}

// MissingThumbnails returns up to limit photos with no recorded thumbnail,
// oldest first. Used by the thumbnail warmer.
func (d *Database) MissingThumbnails(ctx context.Context, limit int) ([]Photo, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("missing_thumbnails", start, err) }()

	d.mu.RLock()
	defer d.mu.RUnlock()

	if limit < 1 {
		limit = 1000
	}

	rows, err := d.db.QueryContext(ctx,
		`SELECT `+photoColumns+` FROM photos WHERE thumbnail_path IS NULL ORDER BY id LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var photos []Photo
	for rows.Next() {
		p, scanErr := scanPhoto(rows)
		if scanErr != nil {
			err = scanErr
			return nil, scanErr
		}
		photos = append(photos, *p)
	}
	err = rows.Err()
	return photos, err
}

// likeFolderPattern builds a LIKE pattern matching paths strictly under dir.
// The trailing separator keeps sibling folders that share a name prefix out,
// and LIKE wildcards in the folder name itself are escaped so they match
// literally.
func likeFolderPattern(dir string) string {
	dir = strings.TrimRight(dir, string(filepath.Separator))
	escaped := strings.NewReplacer("!", "!!", "%", "!%", "_", "!_").Replace(dir)
	return escaped + string(filepath.Separator) + "%"
}

// ListPhotos returns one page of photos, optionally restricted to a folder
// prefix, sorted and paginated.
func (d *Database) ListPhotos(ctx context.Context, opts ListOptions) (*PhotoListing, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("list_photos", start, err) }()

	d.mu.RLock()
	defer d.mu.RUnlock()

	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.PageSize < 1 {
		opts.PageSize = 100
	}
	if opts.PageSize > 500 {
		opts.PageSize = 500
	}

	where := "1=1"
	args := []interface{}{}
	if opts.FolderPrefix != "" {
		where += " AND path LIKE ? ESCAPE '!'"
		args = append(args, likeFolderPattern(opts.FolderPrefix))
	}
	if opts.FavoritesOnly {
		where += " AND is_favorite = 1"
	}

	var totalItems int
	if err = d.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM photos WHERE "+where, args...).Scan(&totalItems); err != nil {
		return nil, fmt.Errorf("count query failed: %w", err)
	}

	sortColumn := "name COLLATE NOCASE"
	switch opts.SortField {
	case SortByModified:
		sortColumn = "modified_at"
	case SortByTaken:
		// Rows with no capture time sort to the end.
		sortColumn = "taken_at IS NULL, taken_at"
	case SortBySize:
		sortColumn = "size_bytes"
	}

	sortDir := "ASC"
	if opts.SortOrder == SortDesc {
		sortDir = "DESC"
	}

	totalPages := int(math.Ceil(float64(totalItems) / float64(opts.PageSize)))
	if totalPages < 1 {
		totalPages = 1
	}
	offset := (opts.Page - 1) * opts.PageSize

	query := fmt.Sprintf(`SELECT `+photoColumns+` FROM photos WHERE %s ORDER BY %s %s LIMIT ? OFFSET ?`,
		where, sortColumn, sortDir)
	args = append(args, opts.PageSize, offset)

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("select query failed: %w", err)
	}
	defer rows.Close()

	items := []Photo{}
	for rows.Next() {
		p, scanErr := scanPhoto(rows)
		if scanErr != nil {
			err = scanErr
			return nil, fmt.Errorf("scan failed: %w", scanErr)
		}
		items = append(items, *p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return &PhotoListing{
		Items:      items,
		TotalItems: totalItems,
		Page:       opts.Page,
		PageSize:   opts.PageSize,
		TotalPages: totalPages,
	}, nil
}

// CalculateStats computes index totals from the photos table.
func (d *Database) CalculateStats(ctx context.Context) (IndexStats, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("calculate_stats", start, err) }()

	d.mu.RLock()
	defer d.mu.RUnlock()

	stats := IndexStats{ByExtension: make(map[string]int)}

	err = d.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       COALESCE(SUM(size_bytes), 0),
		       COALESCE(SUM(is_favorite), 0),
		       COALESCE(SUM(thumbnail_path IS NOT NULL), 0)
		FROM photos`,
	).Scan(&stats.TotalPhotos, &stats.TotalBytes, &stats.TotalFavorites, &stats.Thumbnailed)
	if err != nil {
		return stats, err
	}

	rows, err := d.db.QueryContext(ctx,
		"SELECT extension, COUNT(*) FROM photos GROUP BY extension")
	if err != nil {
		return stats, err
	}
	defer rows.Close()

	for rows.Next() {
		var ext string
		var count int
		if err = rows.Scan(&ext, &count); err != nil {
			return stats, err
		}
		stats.ByExtension[ext] = count
	}
	err = rows.Err()
	return stats, err
}
