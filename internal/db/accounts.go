package db

import (
	"database/sql"
	"fmt"
)

// MasterAccountRow holds the single local identity. The password hash is a
// self-describing Argon2id string; the salt is the extra value concatenated
// to the passphrase before hashing, stored base64-encoded.
type MasterAccountRow struct {
	Username     string
	PasswordHash string
	Salt         string
	CreatedAt    string
}

// CountMasterAccounts returns how many master accounts exist (0 or 1).
func CountMasterAccounts(d *DB) (int, error) {
	if d == nil || d.sql == nil {
		return 0, fmt.Errorf("database handle is nil")
	}

	var n int
	if err := d.sql.QueryRow(`SELECT COUNT(*) FROM master_account`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count master accounts: %w", err)
	}
	return n, nil
}

// InsertMasterAccount stores the master account row.
func InsertMasterAccount(d *DB, a MasterAccountRow) error {
	if d == nil || d.sql == nil {
		return fmt.Errorf("database handle is nil")
	}

	_, err := d.sql.Exec(
		`INSERT INTO master_account (username, password_hash, salt) VALUES (?, ?, ?)`,
		a.Username, a.PasswordHash, a.Salt,
	)
	if err != nil {
		return fmt.Errorf("insert master account: %w", err)
	}
	return nil
}

// GetMasterAccount returns the account row for username.
// It returns sql.ErrNoRows when the username does not exist.
func GetMasterAccount(d *DB, username string) (*MasterAccountRow, error) {
	if d == nil || d.sql == nil {
		return nil, fmt.Errorf("database handle is nil")
	}

	var a MasterAccountRow
	err := d.sql.QueryRow(
		`SELECT username, password_hash, salt, created_at FROM master_account WHERE username = ?`,
		username,
	).Scan(&a.Username, &a.PasswordHash, &a.Salt, &a.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("select master account: %w", err)
	}

	return &a, nil
}
