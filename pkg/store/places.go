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

// 🗄️ PlacesAdapter rewrites places.sqlite: history and bookmark URLs live in
// moz_places.url (bookmarks reference those rows by foreign key), and the
// per-site origin table keeps a host plus its reversed form.
type PlacesAdapter struct {
	path string
}

func NewPlaces(path string) *PlacesAdapter {
	return &PlacesAdapter{path: path}
}

func (a *PlacesAdapter) Name() string { return "history" }
func (a *PlacesAdapter) Path() string { return a.path }

func (a *PlacesAdapter) Enumerate(ctx context.Context) ([]Candidate, error) {
	db, err := openSQLite(a.path)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	var out []Candidate

	rows, err := db.QueryContext(ctx,
		`SELECT id, url FROM moz_places WHERE url IS NOT NULL AND url != '' ORDER BY id`)
	if err != nil {
		return nil, mapSQLiteErr(err)
	}
	defer rows.Close()
	for rows.Next() {
		var id int64
		var url string
		if err := rows.Scan(&id, &url); err != nil {
			return nil, errors.Errorf("scanning moz_places row: %w", err)
		}
		out = append(out, Candidate{Loc: Location{Table: "moz_places", Column: "url", Row: id}, Value: url})
	}
	if err := rows.Err(); err != nil {
		return nil, mapSQLiteErr(err)
	}

	// Older schemas predate moz_origins; skip the table when absent.
	hasOrigins, err := tableExists(ctx, db, "moz_origins")
	if err != nil {
		return nil, err
	}
	if hasOrigins {
		origins, err := db.QueryContext(ctx,
			`SELECT id, host FROM moz_origins WHERE host IS NOT NULL AND host != '' ORDER BY id`)
		if err != nil {
			return nil, mapSQLiteErr(err)
		}
		defer origins.Close()
		for origins.Next() {
			var id int64
			var host string
			if err := origins.Scan(&id, &host); err != nil {
				return nil, errors.Errorf("scanning moz_origins row: %w", err)
			}
			out = append(out, Candidate{Loc: Location{Table: "moz_origins", Column: "host", Row: id}, Value: host})
		}
		if err := origins.Err(); err != nil {
			return nil, mapSQLiteErr(err)
		}
	}

	return out, nil
}

func (a *PlacesAdapter) Apply(ctx context.Context, changes []Change) error {
	db, err := openSQLite(a.path)
	if err != nil {
		return err
	}
	defer db.Close()

	return applyInTx(ctx, db, func(tx *sql.Tx) error {
		for _, ch := range changes {
			switch ch.Loc.Table {
			case "moz_places":
				res, err := tx.ExecContext(ctx,
					`UPDATE moz_places SET url = ? WHERE id = ? AND url = ?`,
					ch.New, ch.Loc.Row, ch.Old)
				if err != nil {
					return mapSQLiteErr(err)
				}
				if err := requireOneRow(res, ch.Loc); err != nil {
					return err
				}
			case "moz_origins":
				// rev_host mirrors host reversed with a trailing dot; keep
				// the pair consistent so origin frecency lookups stay valid.
				res, err := tx.ExecContext(ctx,
					`UPDATE moz_origins SET host = ?, rev_host = ? WHERE id = ? AND host = ?`,
					ch.New, reverseHost(ch.New), ch.Loc.Row, ch.Old)
				if err != nil {
					return mapSQLiteErr(err)
				}
				if err := requireOneRow(res, ch.Loc); err != nil {
					return err
				}
			default:
				return errors.Errorf("%w: unexpected change location %s", ErrMalformedStore, ch.Loc)
			}
		}
		return nil
	})
}

func (a *PlacesAdapter) Count(ctx context.Context) (int, error) {
	return countRows(ctx, a.path, "moz_places")
}

// requireOneRow guards targeted updates: a zero-row update means the store
// changed underneath the plan, which must abort the whole transaction.
func requireOneRow(res sql.Result, loc Location) error {
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Errorf("reading rows affected: %w", err)
	}
	if n != 1 {
		return errors.Errorf("%w: row %s no longer matches the plan", ErrMalformedStore, loc)
	}
	return nil
}

func tableExists(ctx context.Context, db *sql.DB, name string) (bool, error) {
	var n int
	err := db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?`, name).Scan(&n)
	if err != nil {
		return false, mapSQLiteErr(err)
	}
	return n > 0, nil
}

// reverseHost produces the moz_origins rev_host form: the host reversed
// byte-wise with a trailing dot ("www.new.com" → "moc.wen.www.").
func reverseHost(host string) string {
	b := []byte(host)
	for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
	return string(b) + "."
}
