package db

import (
	"fmt"
)

// CategoryRow is a display grouping for vault entries.
type CategoryRow struct {
	Name  string
	Color string
}

// InsertCategory stores a new category. The name is unique.
func InsertCategory(d *DB, c CategoryRow) error {
	if d == nil || d.sql == nil {
		return fmt.Errorf("database handle is nil")
	}

	_, err := d.sql.Exec(
		`INSERT INTO categories (name, color) VALUES (?, ?)`,
		c.Name, c.Color,
	)
	if err != nil {
		return fmt.Errorf("insert category: %w", err)
	}
	return nil
}

// CategoryExists reports whether a category with the given name is
// registered.
func CategoryExists(d *DB, name string) (bool, error) {
	if d == nil || d.sql == nil {
		return false, fmt.Errorf("database handle is nil")
	}

	var n int
	err := d.sql.QueryRow(`SELECT COUNT(*) FROM categories WHERE name = ?`, name).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("count categories by name: %w", err)
	}
	return n > 0, nil
}

// ListCategories returns all categories ordered by name.
func ListCategories(d *DB) ([]CategoryRow, error) {
	if d == nil || d.sql == nil {
		return nil, fmt.Errorf("database handle is nil")
	}

	rows, err := d.sql.Query(`SELECT name, color FROM categories ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("select categories: %w", err)
	}
	defer rows.Close()

	var results []CategoryRow
	for rows.Next() {
		var c CategoryRow
		if err := rows.Scan(&c.Name, &c.Color); err != nil {
			return nil, fmt.Errorf("scan category row: %w", err)
		}
		results = append(results, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate category rows: %w", err)
	}

	return results, nil
}

// DeleteCategory removes a category and clears the category field of every
// entry that referenced it. Entries themselves are never deleted by this.
func DeleteCategory(d *DB, name string) error {
	if d == nil || d.sql == nil {
		return fmt.Errorf("database handle is nil")
	}

	tx, err := d.sql.Begin()
	if err != nil {
		return fmt.Errorf("begin delete category: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM categories WHERE name = ?`, name); err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	if _, err := tx.Exec(`UPDATE vault SET category = NULL WHERE category = ?`, name); err != nil {
		return fmt.Errorf("clear category references: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete category: %w", err)
	}
	return nil
}
