// Package storage provides read-only access to the Köksglädje sales database.
//
// It is the only layer that talks to SQLite. Queries fully control the shape
// of what they return through their column aliases; everything above this
// layer works with the stable lower-case schema those aliases define.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"

	_ "modernc.org/sqlite"
)

// NotFoundError reports that the database file does not exist at the
// expected location.
type NotFoundError struct {
	Path string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("database not found at %s", e.Path)
}

// DB wraps a read-only SQLite handle.
type DB struct {
	db   *sql.DB
	path string
}

// Open verifies the database file exists and opens it read-only.
func Open(path string) (*DB, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, &NotFoundError{Path: path}
	} else if err != nil {
		return nil, fmt.Errorf("stat database: %w", err)
	}

	db, err := sql.Open("sqlite", "file:"+path+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	slog.Info("Opened sales database", "db_path", path)

	return &DB{db: db, path: path}, nil
}

// Close releases the underlying handle.
func (d *DB) Close() error {
	if d.db != nil {
		return d.db.Close()
	}
	return nil
}

// Path returns the database file location.
func (d *DB) Path() string {
	return d.path
}

// Select runs one parameterized query and invokes scan once per row.
// The result set is released on every exit path, including scan errors.
func (d *DB) Select(ctx context.Context, query string, args []any, scan func(*sql.Rows) error) error {
	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("execute query: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		if err := scan(rows); err != nil {
			return fmt.Errorf("scan row: %w", err)
		}
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate rows: %w", err)
	}

	return nil
}

// HasTable probes the schema for a table, so optional relations resolve to
// a present/absent outcome instead of a failed query.
func (d *DB) HasTable(ctx context.Context, name string) (bool, error) {
	var count int
	err := d.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?`, name,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("probe table %s: %w", name, err)
	}
	return count > 0, nil
}
