package db

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

const assetsTableDDL = `
CREATE TABLE IF NOT EXISTS assets (
    id INTEGER PRIMARY KEY,
    asset_key TEXT UNIQUE NOT NULL,
    course_key TEXT NOT NULL,
    category TEXT NOT NULL,
    name TEXT NOT NULL,
    display_name TEXT NOT NULL,
    content_type TEXT NOT NULL,
    length INTEGER NOT NULL,
    locked INTEGER NOT NULL DEFAULT 0,
    thumbnail_key TEXT,
    thumbnail_name TEXT,
    import_path TEXT NOT NULL DEFAULT '',
    created INTEGER NOT NULL
);
`

const baseURLConfigTableDDL = `
CREATE TABLE IF NOT EXISTS asset_base_url_config (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    change_date INTEGER NOT NULL,
    changed_by TEXT NOT NULL DEFAULT '',
    enabled INTEGER NOT NULL,
    base_url TEXT NOT NULL DEFAULT ''
);
`

const assetsCourseIndexDDL = `CREATE INDEX IF NOT EXISTS idx_assets_course ON assets(course_key, name);`
const assetsCourseLengthIndexDDL = `CREATE INDEX IF NOT EXISTS idx_assets_course_length ON assets(course_key, length DESC);`
const assetsThumbnailIndexDDL = `CREATE INDEX IF NOT EXISTS idx_assets_thumbnail ON assets(thumbnail_key);`

// Open opens (creating if needed) the asset database at path and makes
// sure the schema exists.
func Open(path string) (*sql.DB, error) {
	database, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if path == ":memory:" {
		// Every pooled connection would otherwise get its own empty database.
		database.SetMaxOpenConns(1)
	}
	if err := InitSchema(database); err != nil {
		database.Close()
		return nil, err
	}
	return database, nil
}

// InitSchema creates all tables and indexes in the database.
func InitSchema(db *sql.DB) error {
	ddls := []string{
		assetsTableDDL,
		baseURLConfigTableDDL,
		assetsCourseIndexDDL,
		assetsCourseLengthIndexDDL,
		assetsThumbnailIndexDDL,
	}

	for _, ddl := range ddls {
		if _, err := db.Exec(ddl); err != nil {
			return fmt.Errorf("failed to execute DDL: %w", err)
		}
	}

	return nil
}

// ApplyWritePragmas configures SQLite for bulk imports.
func ApplyWritePragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA cache_size = -16000", // 16MB cache
		"PRAGMA temp_store = MEMORY",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to apply pragma %q: %w", pragma, err)
		}
	}

	return nil
}

// ApplyReadPragmas configures SQLite for read-only browsing.
func ApplyReadPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA synchronous = NORMAL",
		"PRAGMA cache_size = -16000",
		"PRAGMA temp_store = MEMORY",
		"PRAGMA query_only = ON",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to apply pragma %q: %w", pragma, err)
		}
	}

	return nil
}
