// Package sqlite keeps item records in an embedded SQLite database.
//
// The store holds a single items table. Records are read back in insertion
// order, which fixes their item ids.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"

	errs "github.com/matzehuels/narrative/pkg/errors"
	"github.com/matzehuels/narrative/pkg/item"
	"github.com/matzehuels/narrative/pkg/source"
)

// Store is a SQLite-backed record store.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens or creates the database at path and applies the schema.
func Open(path string) (*Store, error) {
	if err := errs.ValidatePath(path); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeSourceUnavailable, err, "open %s", path)
	}

	s := &Store{db: db, path: path}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, errs.Wrap(errs.ErrCodeSourceUnavailable, err, "migrate %s", path)
	}
	return s, nil
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS items (
		seq       INTEGER PRIMARY KEY AUTOINCREMENT,
		timestamp TEXT NOT NULL,
		text      TEXT NOT NULL,
		hashtags  TEXT NOT NULL DEFAULT '',
		author    TEXT NOT NULL DEFAULT ''
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Path returns the database file path.
func (s *Store) Path() string { return s.path }

// Save appends records in one transaction and returns how many were
// written.
func (s *Store) Save(ctx context.Context, records []item.Record) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO items (timestamp, text, hashtags, author) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	for i, r := range records {
		if _, err := item.ParseTimestamp(r.Timestamp); err != nil {
			return 0, errs.Wrap(errs.ErrCodeInvalidInput, err, "record %d", i)
		}
		if _, err := stmt.ExecContext(ctx, r.Timestamp, r.Text, strings.Join(r.Hashtags, " "), r.Author); err != nil {
			return 0, fmt.Errorf("insert record %d: %w", i, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return len(records), nil
}

// Load returns all records in insertion order.
func (s *Store) Load(ctx context.Context) ([]item.Record, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT timestamp, text, hashtags, author FROM items ORDER BY seq`)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeSourceUnavailable, err, "query items")
	}
	defer rows.Close()

	records := []item.Record{}
	for rows.Next() {
		var r item.Record
		var tags string
		if err := rows.Scan(&r.Timestamp, &r.Text, &tags, &r.Author); err != nil {
			return nil, err
		}
		r.Hashtags = strings.Fields(tags)
		records = append(records, r)
	}
	return records, rows.Err()
}

// Count returns the number of stored records.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM items`).Scan(&n)
	return n, err
}

// Clear removes all records.
func (s *Store) Clear(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM items`)
	return err
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

var _ source.Source = (*Store)(nil)
