package store

import (
	"context"
	"database/sql"

	"gitlab.com/tozd/go/errors"
)

// 📝 FormHistoryAdapter rewrites the origin column of formhistory.sqlite.
// Older profiles ship a moz_formhistory table without an origin column; those
// simply have nothing to rewrite.
type FormHistoryAdapter struct {
	path string
}

func NewFormHistory(path string) *FormHistoryAdapter {
	return &FormHistoryAdapter{path: path}
}

func (a *FormHistoryAdapter) Name() string { return "formhistory" }
func (a *FormHistoryAdapter) Path() string { return a.path }

func (a *FormHistoryAdapter) Enumerate(ctx context.Context) ([]Candidate, error) {
	db, err := openSQLite(a.path)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	hasOrigin, err := columnExists(ctx, db, "moz_formhistory", "origin")
	if err != nil {
		return nil, err
	}
	if !hasOrigin {
		return nil, nil
	}

	rows, err := db.QueryContext(ctx,
		`SELECT id, origin FROM moz_formhistory WHERE origin IS NOT NULL AND origin != '' ORDER BY id`)
	if err != nil {
		return nil, mapSQLiteErr(err)
	}
	defer rows.Close()

	var out []Candidate
	for rows.Next() {
		var id int64
		var origin string
		if err := rows.Scan(&id, &origin); err != nil {
			return nil, errors.Errorf("scanning moz_formhistory row: %w", err)
		}
		out = append(out, Candidate{Loc: Location{Table: "moz_formhistory", Column: "origin", Row: id}, Value: origin})
	}
	if err := rows.Err(); err != nil {
		return nil, mapSQLiteErr(err)
	}
	return out, nil
}

func (a *FormHistoryAdapter) Apply(ctx context.Context, changes []Change) error {
	db, err := openSQLite(a.path)
	if err != nil {
		return err
	}
	defer db.Close()

	return applyInTx(ctx, db, func(tx *sql.Tx) error {
		for _, ch := range changes {
			res, err := tx.ExecContext(ctx,
				`UPDATE moz_formhistory SET origin = ? WHERE id = ? AND origin = ?`,
				ch.New, ch.Loc.Row, ch.Old)
			if err != nil {
				return mapSQLiteErr(err)
			}
			if err := requireOneRow(res, ch.Loc); err != nil {
				return err
			}
		}
		return nil
	})
}

func (a *FormHistoryAdapter) Count(ctx context.Context) (int, error) {
	return countRows(ctx, a.path, "moz_formhistory")
}

func columnExists(ctx context.Context, db *sql.DB, table, column string) (bool, error) {
	rows, err := db.QueryContext(ctx, `SELECT name FROM pragma_table_info(?)`, table)
	if err != nil {
		return false, mapSQLiteErr(err)
	}
	defer rows.Close()

	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return false, errors.Errorf("scanning table info: %w", err)
		}
		if name == column {
			return true, nil
		}
	}
	return false, mapSQLiteErr(rows.Err())
}
