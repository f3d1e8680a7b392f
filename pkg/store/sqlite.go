package store

import (
	"context"
	"database/sql"
	"os"
	"strings"

	"gitlab.com/tozd/go/errors"
	_ "modernc.org/sqlite" // registers the "sqlite" driver
)

// openSQLite opens an existing SQLite store. A missing file maps to
// ErrNotPresent rather than letting the driver create an empty database.
func openSQLite(path string) (*sql.DB, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Errorf("%w: %s", ErrNotPresent, path)
		}
		return nil, errors.Errorf("checking store file: %w", err)
	}

	dsn := path + "?_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, errors.Errorf("opening sqlite store: %w", err)
	}

	// One connection per store: rewrites are single-threaded and a second
	// connection would only widen the lock window.
	db.SetMaxOpenConns(1)
	return db, nil
}

// mapSQLiteErr folds driver errors into the store error taxonomy so callers
// can distinguish a running browser from a corrupt database.
func mapSQLiteErr(err error) error {
	if err == nil {
		return nil
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, "database is locked"),
		strings.Contains(msg, "SQLITE_BUSY"),
		strings.Contains(msg, "SQLITE_LOCKED"):
		return errors.Errorf("%w: %v", ErrLocked, err)
	case strings.Contains(msg, "no such table"),
		strings.Contains(msg, "no such column"),
		strings.Contains(msg, "file is not a database"),
		strings.Contains(msg, "malformed"):
		return errors.Errorf("%w: %v", ErrMalformedStore, err)
	default:
		return err
	}
}

// applyInTx runs fn inside a single immediate transaction and guarantees
// rollback on any failure, leaving the store byte-for-byte as it was.
func applyInTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return mapSQLiteErr(err)
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return errors.Errorf("rolling back after %v: %w", err, rbErr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return mapSQLiteErr(err)
	}
	return nil
}

// countRows is the cheap record count used by profile listings.
func countRows(ctx context.Context, path, table string) (int, error) {
	db, err := openSQLite(path)
	if err != nil {
		return 0, err
	}
	defer db.Close()

	var n int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&n); err != nil {
		return 0, mapSQLiteErr(err)
	}
	return n, nil
}
