package db

import (
	"database/sql"
	"fmt"
)

// SetSetting stores or replaces a key-value setting.
func SetSetting(d *DB, key, value string) error {
	if d == nil || d.sql == nil {
		return fmt.Errorf("database handle is nil")
	}

	_, err := d.sql.Exec(
		`INSERT INTO settings (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	if err != nil {
		return fmt.Errorf("set setting: %w", err)
	}
	return nil
}

// GetSetting returns the value for key, or "" when unset.
func GetSetting(d *DB, key string) (string, error) {
	if d == nil || d.sql == nil {
		return "", fmt.Errorf("database handle is nil")
	}

	var value string
	err := d.sql.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", nil
		}
		return "", fmt.Errorf("get setting: %w", err)
	}
	return value, nil
}
