package db

import (
	"database/sql"
	"fmt"
	"strings"
)

// EntryRow represents a credential row retrieved from storage. The encrypted
// secret is opaque here; sealing and opening happen in the vault package.
type EntryRow struct {
	ID              int64
	Title           string
	Username        string
	Website         string
	Notes           string
	Category        string
	EncryptedSecret []byte
	Icon            []byte
	Favorite        bool
	Deleted         bool
	CreatedAt       string
	UpdatedAt       string
}

// ListRow is the lightweight record returned by listings. Secrets are never
// read, let alone decrypted, for a listing.
type ListRow struct {
	ID       int64
	Icon     []byte
	Title    string
	Username string
}

// ListFilter selects which slice of the vault a listing covers.
type ListFilter struct {
	// Favorites limits the listing to favorite, non-deleted entries.
	Favorites bool
	// Trash limits the listing to soft-deleted entries.
	Trash bool
	// Category limits the listing to non-deleted entries in the named category.
	Category string
}

const entryColumns = `id, title, username, website, notes, category,
	encrypted_secret, icon, favorite, deleted, created_at, updated_at`

// InsertEntry stores a new credential row and returns its database ID.
// Every known column is bound as a parameter; no column list is ever built
// from caller-supplied keys.
func InsertEntry(d *DB, e EntryRow) (int64, error) {
	if d == nil || d.sql == nil {
		return 0, fmt.Errorf("database handle is nil")
	}

	res, err := d.sql.Exec(
		`INSERT INTO vault (title, username, website, notes, category, encrypted_secret, icon, favorite)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.Title, e.Username, e.Website, e.Notes, nullIfEmpty(e.Category), e.EncryptedSecret, e.Icon, e.Favorite,
	)
	if err != nil {
		return 0, fmt.Errorf("insert entry: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("fetch insert id: %w", err)
	}

	return id, nil
}

// LiveTitleExists reports whether a non-deleted entry already uses title.
func LiveTitleExists(d *DB, title string) (bool, error) {
	if d == nil || d.sql == nil {
		return false, fmt.Errorf("database handle is nil")
	}

	var n int
	err := d.sql.QueryRow(
		`SELECT COUNT(*) FROM vault WHERE title = ? AND deleted = 0`, title,
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("check title: %w", err)
	}
	return n > 0, nil
}

// GetEntryByID returns the full row for the given id.
func GetEntryByID(d *DB, id int64) (*EntryRow, error) {
	return getEntry(d, `WHERE id = ?`, id)
}

// GetEntryByTitle returns the full row for the given title, preferring a
// live entry when a trashed one shares the title.
func GetEntryByTitle(d *DB, title string) (*EntryRow, error) {
	return getEntry(d, `WHERE title = ? ORDER BY deleted ASC, id ASC`, title)
}

func getEntry(d *DB, where string, args ...any) (*EntryRow, error) {
	if d == nil || d.sql == nil {
		return nil, fmt.Errorf("database handle is nil")
	}

	var (
		r        EntryRow
		username sql.NullString
		website  sql.NullString
		notes    sql.NullString
		category sql.NullString
	)
	err := d.sql.QueryRow(
		`SELECT `+entryColumns+` FROM vault `+where+` LIMIT 1`, args...,
	).Scan(
		&r.ID,
		&r.Title,
		&username,
		&website,
		&notes,
		&category,
		&r.EncryptedSecret,
		&r.Icon,
		&r.Favorite,
		&r.Deleted,
		&r.CreatedAt,
		&r.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("select entry: %w", err)
	}

	r.Username = username.String
	r.Website = website.String
	r.Notes = notes.String
	r.Category = category.String
	return &r, nil
}

// UpdateEntry replaces the metadata and encrypted secret of an existing row
// and refreshes updated_at. created_at is never touched.
func UpdateEntry(d *DB, e EntryRow) error {
	if d == nil || d.sql == nil {
		return fmt.Errorf("database handle is nil")
	}

	res, err := d.sql.Exec(
		`UPDATE vault
		    SET title = ?, username = ?, website = ?, notes = ?, category = ?,
		        encrypted_secret = ?, icon = ?, favorite = ?,
		        updated_at = CURRENT_TIMESTAMP
		  WHERE id = ?`,
		e.Title, e.Username, e.Website, e.Notes, nullIfEmpty(e.Category),
		e.EncryptedSecret, e.Icon, e.Favorite, e.ID,
	)
	if err != nil {
		return fmt.Errorf("update entry: %w", err)
	}
	return requireRow(res)
}

// SetFavorite flips the favorite flag without rewriting the secret.
func SetFavorite(d *DB, id int64, favorite bool) error {
	if d == nil || d.sql == nil {
		return fmt.Errorf("database handle is nil")
	}

	res, err := d.sql.Exec(
		`UPDATE vault SET favorite = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		favorite, id,
	)
	if err != nil {
		return fmt.Errorf("set favorite: %w", err)
	}
	return requireRow(res)
}

// SetDeleted moves an entry in or out of the trash.
func SetDeleted(d *DB, id int64, deleted bool) error {
	if d == nil || d.sql == nil {
		return fmt.Errorf("database handle is nil")
	}

	res, err := d.sql.Exec(
		`UPDATE vault SET deleted = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		deleted, id,
	)
	if err != nil {
		return fmt.Errorf("set deleted: %w", err)
	}
	return requireRow(res)
}

// PurgeEntry irreversibly removes a row.
// It returns sql.ErrNoRows if nothing was deleted.
func PurgeEntry(d *DB, id int64) error {
	if d == nil || d.sql == nil {
		return fmt.Errorf("database handle is nil")
	}

	res, err := d.sql.Exec(`DELETE FROM vault WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("purge entry: %w", err)
	}
	return requireRow(res)
}

// ListEntries returns lightweight rows matching the filter, ordered by title.
// A non-empty search matches title, username, or website.
func ListEntries(d *DB, filter ListFilter, search string) ([]ListRow, error) {
	if d == nil || d.sql == nil {
		return nil, fmt.Errorf("database handle is nil")
	}

	var (
		conds []string
		args  []any
	)
	switch {
	case filter.Trash:
		conds = append(conds, "deleted = 1")
	case filter.Favorites:
		conds = append(conds, "favorite = 1", "deleted = 0")
	case filter.Category != "":
		conds = append(conds, "category = ?", "deleted = 0")
		args = append(args, filter.Category)
	default:
		conds = append(conds, "deleted = 0")
	}
	if search != "" {
		conds = append(conds, "(title LIKE ? OR username LIKE ? OR website LIKE ?)")
		pattern := "%" + search + "%"
		args = append(args, pattern, pattern, pattern)
	}

	query := `SELECT id, icon, title, username FROM vault WHERE ` +
		strings.Join(conds, " AND ") + ` ORDER BY title`

	rows, err := d.sql.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("select entries: %w", err)
	}
	defer rows.Close()

	var results []ListRow
	for rows.Next() {
		var (
			r        ListRow
			username sql.NullString
		)
		if err := rows.Scan(&r.ID, &r.Icon, &r.Title, &username); err != nil {
			return nil, fmt.Errorf("scan entry row: %w", err)
		}
		r.Username = username.String
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate entry rows: %w", err)
	}

	return results, nil
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
