package db

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/michaelscutari/assetpath/internal/canon"
)

// BaseURLConfig is one row of the base-URL configuration history. The
// newest row is the current configuration.
type BaseURLConfig struct {
	ID         int64
	ChangeDate time.Time
	ChangedBy  string
	Enabled    bool
	BaseURL    string // hostname[:port] to serve unlocked assets from
}

// SetBaseURL appends a configuration row, making it current. The value
// is normalized first; an invalid value is rejected.
func SetBaseURL(db *sql.DB, baseURL, changedBy string, enabled bool) (*BaseURLConfig, error) {
	normalized, err := canon.NormalizeBaseURL(baseURL)
	if err != nil {
		return nil, err
	}

	cfg := BaseURLConfig{
		ChangeDate: time.Now(),
		ChangedBy:  changedBy,
		Enabled:    enabled,
		BaseURL:    normalized,
	}
	res, err := db.Exec(
		`INSERT INTO asset_base_url_config (change_date, changed_by, enabled, base_url) VALUES (?, ?, ?, ?)`,
		cfg.ChangeDate.UnixNano(), cfg.ChangedBy, cfg.Enabled, cfg.BaseURL,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to store base URL config: %w", err)
	}
	cfg.ID, _ = res.LastInsertId()
	return &cfg, nil
}

// CurrentBaseURLConfig returns the newest configuration row, or nil when
// none has been written.
func CurrentBaseURLConfig(db *sql.DB) (*BaseURLConfig, error) {
	history, err := BaseURLHistory(db, 1)
	if err != nil {
		return nil, err
	}
	if len(history) == 0 {
		return nil, nil
	}
	return &history[0], nil
}

// CurrentBaseURL returns the base URL to serve unlocked assets from, or
// "" when no enabled override is configured.
func CurrentBaseURL(db *sql.DB) (string, error) {
	cfg, err := CurrentBaseURLConfig(db)
	if err != nil {
		return "", err
	}
	if cfg == nil || !cfg.Enabled {
		return "", nil
	}
	return cfg.BaseURL, nil
}

// BaseURLHistory returns configuration rows, newest first.
func BaseURLHistory(db *sql.DB, limit int) ([]BaseURLConfig, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := db.Query(`
		SELECT id, change_date, changed_by, enabled, base_url
		FROM asset_base_url_config
		ORDER BY id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	var history []BaseURLConfig
	for rows.Next() {
		var cfg BaseURLConfig
		var changeDate int64
		if err := rows.Scan(&cfg.ID, &changeDate, &cfg.ChangedBy, &cfg.Enabled, &cfg.BaseURL); err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}
		cfg.ChangeDate = time.Unix(0, changeDate)
		history = append(history, cfg)
	}
	return history, rows.Err()
}
