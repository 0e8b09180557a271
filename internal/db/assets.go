package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/michaelscutari/assetpath/internal/content"
	"github.com/michaelscutari/assetpath/internal/coursekey"
)

// ErrNotFound is returned when an asset is not in the store.
var ErrNotFound = errors.New("asset not found")

const upsertAssetSQL = `
INSERT INTO assets (asset_key, course_key, category, name, display_name, content_type, length, locked, thumbnail_key, thumbnail_name, import_path, created)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(asset_key) DO UPDATE SET
    course_key = excluded.course_key,
    display_name = excluded.display_name,
    content_type = excluded.content_type,
    length = excluded.length,
    locked = excluded.locked,
    thumbnail_key = excluded.thumbnail_key,
    thumbnail_name = excluded.thumbnail_name,
    import_path = excluded.import_path
`

const selectAssetColumns = `course_key, category, name, display_name, content_type, length, locked, thumbnail_name, import_path, created`

// CourseStats summarizes the assets of one course.
type CourseStats struct {
	Course      string
	AssetCount  int64
	LockedCount int64
	TotalLength int64
}

// SaveAsset inserts or replaces a single asset.
func SaveAsset(db *sql.DB, c *content.StaticContent) error {
	return SaveAssets(db, []*content.StaticContent{c})
}

// SaveAssets writes a batch of assets in one transaction.
func SaveAssets(db *sql.DB, batch []*content.StaticContent) error {
	if len(batch) == 0 {
		return nil
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	stmt, err := tx.Prepare(upsertAssetSQL)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to prepare asset statement: %w", err)
	}
	defer stmt.Close()

	for _, c := range batch {
		var thumbKey, thumbName sql.NullString
		if c.Thumbnail != nil {
			thumbKey = sql.NullString{String: c.Thumbnail.String(), Valid: true}
			thumbName = sql.NullString{String: c.Thumbnail.Name, Valid: true}
		}
		created := c.Created
		if created.IsZero() {
			created = time.Now()
		}
		loc := c.Location
		_, err := stmt.Exec(loc.String(), loc.Course.String(), loc.Category, loc.Name,
			c.Name, c.ContentType, c.Length, c.Locked, thumbKey, thumbName, c.ImportPath, created.Unix())
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to insert asset %q: %w", loc.String(), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	purgeLockCache(db)
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAsset(row rowScanner) (*content.StaticContent, error) {
	var (
		c         content.StaticContent
		courseStr string
		category  string
		name      string
		thumbName sql.NullString
		created   int64
	)
	if err := row.Scan(&courseStr, &category, &name, &c.Name, &c.ContentType, &c.Length, &c.Locked,
		&thumbName, &c.ImportPath, &created); err != nil {
		return nil, err
	}

	course, err := coursekey.ParseCourseKey(courseStr)
	if err != nil {
		return nil, fmt.Errorf("stored asset has bad course key: %w", err)
	}
	c.Location = course.MakeAssetKey(category, name)
	if thumbName.Valid {
		thumb := course.MakeAssetKey(coursekey.CategoryThumbnail, thumbName.String)
		c.Thumbnail = &thumb
	}
	c.Created = time.Unix(created, 0)
	return &c, nil
}

// GetAsset loads one asset by key.
func GetAsset(db *sql.DB, key coursekey.AssetKey) (*content.StaticContent, error) {
	row := db.QueryRow(`SELECT `+selectAssetColumns+` FROM assets WHERE asset_key = ?`, key.String())
	c, err := scanAsset(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load asset %s: %w", key, err)
	}
	return c, nil
}

// ListAssets returns the assets of a course.
func ListAssets(db *sql.DB, course coursekey.CourseKey, sortBy string, limit int) ([]*content.StaticContent, error) {
	orderClause := "name ASC"
	switch sortBy {
	case "size":
		orderClause = "length DESC, name ASC"
	case "type":
		orderClause = "content_type ASC, name ASC"
	case "date":
		orderClause = "created DESC, name ASC"
	}
	if limit <= 0 {
		limit = -1
	}

	query := fmt.Sprintf(`SELECT %s FROM assets WHERE course_key = ? ORDER BY %s LIMIT ?`, selectAssetColumns, orderClause)
	rows, err := db.Query(query, course.String(), limit)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	var assets []*content.StaticContent
	for rows.Next() {
		c, err := scanAsset(rows)
		if err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}
		assets = append(assets, c)
	}

	return assets, rows.Err()
}

// SetLocked changes the lock state of an asset.
func SetLocked(db *sql.DB, key coursekey.AssetKey, locked bool) error {
	res, err := db.Exec(`UPDATE assets SET locked = ? WHERE asset_key = ?`, locked, key.String())
	if err != nil {
		return fmt.Errorf("failed to update asset %s: %w", key, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	purgeLockCache(db)
	return nil
}

// DeleteAsset removes an asset.
func DeleteAsset(db *sql.DB, key coursekey.AssetKey) error {
	res, err := db.Exec(`DELETE FROM assets WHERE asset_key = ?`, key.String())
	if err != nil {
		return fmt.Errorf("failed to delete asset %s: %w", key, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	purgeLockCache(db)
	return nil
}

// ListCourses returns per-course statistics for every course with assets.
func ListCourses(db *sql.DB) ([]CourseStats, error) {
	rows, err := db.Query(`
		SELECT course_key, COUNT(*), COALESCE(SUM(locked), 0), COALESCE(SUM(length), 0)
		FROM assets
		GROUP BY course_key
		ORDER BY course_key
	`)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	var stats []CourseStats
	for rows.Next() {
		var s CourseStats
		if err := rows.Scan(&s.Course, &s.AssetCount, &s.LockedCount, &s.TotalLength); err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}
		stats = append(stats, s)
	}
	return stats, rows.Err()
}

// GetCourseStats summarizes one course. A course without assets yields
// zero counts.
func GetCourseStats(db *sql.DB, course coursekey.CourseKey) (*CourseStats, error) {
	s := CourseStats{Course: course.String()}
	err := db.QueryRow(`
		SELECT COUNT(*), COALESCE(SUM(locked), 0), COALESCE(SUM(length), 0)
		FROM assets WHERE course_key = ?
	`, s.Course).Scan(&s.AssetCount, &s.LockedCount, &s.TotalLength)
	if err != nil {
		return nil, fmt.Errorf("failed to read course stats: %w", err)
	}
	return &s, nil
}

// Locks answers lock-state lookups for the canonicalizer. Thumbnails are
// never locked; assets missing from the store report ErrNotFound.
type Locks struct {
	DB *sql.DB
}

// IsLocked implements canon.LockChecker.
func (l Locks) IsLocked(ctx context.Context, key coursekey.AssetKey) (bool, error) {
	k := key.String()
	cache := getLockCache(l.DB)
	if cache != nil {
		if locked, ok := cache.Get(k); ok {
			return locked, nil
		}
	}

	var locked bool
	err := l.DB.QueryRowContext(ctx, `SELECT locked FROM assets WHERE asset_key = ?`, k).Scan(&locked)
	if errors.Is(err, sql.ErrNoRows) {
		var one int
		err = l.DB.QueryRowContext(ctx, `SELECT 1 FROM assets WHERE thumbnail_key = ? LIMIT 1`, k).Scan(&one)
		if errors.Is(err, sql.ErrNoRows) {
			return false, fmt.Errorf("%w: %s", ErrNotFound, k)
		}
		locked = false
	}
	if err != nil {
		return false, fmt.Errorf("lock lookup for %s: %w", k, err)
	}

	if cache != nil {
		cache.Set(k, locked)
	}
	return locked, nil
}
