// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package store

import (
	"context"
	"database/sql"

	"gitlab.com/tozd/go/errors"
)

// 🍪 CookiesAdapter rewrites the host column of cookies.sqlite. Only the host
// ever changes: name, value, path, expiry, and flags are left alone. Domain
// cookies keep their leading dot because the matcher treats it as a label
// boundary.
type CookiesAdapter struct {
	path string
}

func NewCookies(path string) *CookiesAdapter {
	return &CookiesAdapter{path: path}
}

func (a *CookiesAdapter) Name() string { return "cookies" }
func (a *CookiesAdapter) Path() string { return a.path }

func (a *CookiesAdapter) Enumerate(ctx context.Context) ([]Candidate, error) {
	db, err := openSQLite(a.path)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx,
		`SELECT id, host FROM moz_cookies WHERE host IS NOT NULL AND host != '' ORDER BY id`)
	if err != nil {
		return nil, mapSQLiteErr(err)
	}
	defer rows.Close()

	var out []Candidate
	for rows.Next() {
		var id int64
		var host string
		if err := rows.Scan(&id, &host); err != nil {
			return nil, errors.Errorf("scanning moz_cookies row: %w", err)
		}
		out = append(out, Candidate{Loc: Location{Table: "moz_cookies", Column: "host", Row: id}, Value: host})
	}
	if err := rows.Err(); err != nil {
		return nil, mapSQLiteErr(err)
	}
	return out, nil
}

func (a *CookiesAdapter) Apply(ctx context.Context, changes []Change) error {
	db, err := openSQLite(a.path)
	if err != nil {
		return err
	}
	defer db.Close()

	return applyInTx(ctx, db, func(tx *sql.Tx) error {
		for _, ch := range changes {
			if err := a.applyOne(ctx, tx, ch); err != nil {
				return err
			}
		}
		return nil
	})
}

// applyOne moves one cookie to its new host. moz_cookies enforces
// UNIQUE(name, host, path, originAttributes); if a cookie already exists at
// the target tuple (e.g. set during a transition period against the new
// domain), the stale target row is deleted first so the update can land.
func (a *CookiesAdapter) applyOne(ctx context.Context, tx *sql.Tx, ch Change) error {
	var name, path, originAttrs string
	err := tx.QueryRowContext(ctx,
		`SELECT name, path, originAttributes FROM moz_cookies WHERE id = ? AND host = ?`,
		ch.Loc.Row, ch.Old).Scan(&name, &path, &originAttrs)
	if err == sql.ErrNoRows {
		return errors.Errorf("%w: cookie %s no longer matches the plan", ErrMalformedStore, ch.Loc)
	}
	if err != nil {
		return mapSQLiteErr(err)
	}

	var conflictID int64
	err = tx.QueryRowContext(ctx,
		`SELECT id FROM moz_cookies
		 WHERE name = ? AND host = ? AND path = ? AND originAttributes = ?
		 LIMIT 1`,
		name, ch.New, path, originAttrs).Scan(&conflictID)
	switch {
	case err == sql.ErrNoRows:
		// no conflict
	case err != nil:
		return mapSQLiteErr(err)
	default:
		if _, err := tx.ExecContext(ctx, `DELETE FROM moz_cookies WHERE id = ?`, conflictID); err != nil {
			return mapSQLiteErr(err)
		}
	}

	res, err := tx.ExecContext(ctx,
		`UPDATE moz_cookies SET host = ? WHERE id = ?`, ch.New, ch.Loc.Row)
	if err != nil {
		return mapSQLiteErr(err)
	}
	return requireOneRow(res, ch.Loc)
}

func (a *CookiesAdapter) Count(ctx context.Context) (int, error) {
	return countRows(ctx, a.path, "moz_cookies")
}
