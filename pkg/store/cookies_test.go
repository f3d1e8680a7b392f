package store

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cookieRow struct {
	name   string
	value  string
	host   string
	path   string
	expiry int64
}

func newCookiesDB(t *testing.T, rows []cookieRow) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cookies.sqlite")

	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Exec(`
		CREATE TABLE moz_cookies (
			id INTEGER PRIMARY KEY,
			originAttributes TEXT NOT NULL DEFAULT '',
			name TEXT,
			value TEXT,
			host TEXT,
			path TEXT,
			expiry INTEGER,
			isSecure INTEGER DEFAULT 0,
			CONSTRAINT moz_uniqueid UNIQUE (name, host, path, originAttributes)
		);
	`)
	require.NoError(t, err)

	for _, r := range rows {
		_, err = db.Exec(
			`INSERT INTO moz_cookies (name, value, host, path, expiry) VALUES (?, ?, ?, ?, ?)`,
			r.name, r.value, r.host, r.path, r.expiry)
		require.NoError(t, err)
	}
	return path
}

func TestCookiesAdapter_Enumerate(t *testing.T) {
	path := newCookiesDB(t, []cookieRow{
		{name: "sid", value: "abc", host: ".old-domain.com", path: "/", expiry: 4102444800},
		{name: "theme", value: "dark", host: "example.org", path: "/", expiry: 4102444800},
	})

	candidates, err := NewCookies(path).Enumerate(context.Background())
	require.NoError(t, err)
	require.Len(t, candidates, 2)
	assert.Equal(t, ".old-domain.com", candidates[0].Value)
	assert.Equal(t, Location{Table: "moz_cookies", Column: "host", Row: 1}, candidates[0].Loc)
}

func TestCookiesAdapter_Apply_PreservesOtherColumns(t *testing.T) {
	path := newCookiesDB(t, []cookieRow{
		{name: "sid", value: "secret-value", host: ".old-domain.com", path: "/app", expiry: 4102444800},
	})

	err := NewCookies(path).Apply(context.Background(), []Change{
		{
			Loc: Location{Table: "moz_cookies", Column: "host", Row: 1},
			Old: ".old-domain.com",
			New: ".new-domain.com",
		},
	})
	require.NoError(t, err)

	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer db.Close()

	var name, value, host, cookiePath string
	var expiry int64
	require.NoError(t, db.QueryRow(
		`SELECT name, value, host, path, expiry FROM moz_cookies WHERE id = 1`).
		Scan(&name, &value, &host, &cookiePath, &expiry))

	assert.Equal(t, ".new-domain.com", host)
	assert.Equal(t, "sid", name)
	assert.Equal(t, "secret-value", value)
	assert.Equal(t, "/app", cookiePath)
	assert.Equal(t, int64(4102444800), expiry)
}

func TestCookiesAdapter_Apply_ResolvesUniqueConflict(t *testing.T) {
	// A cookie already exists at the target host tuple (set during a
	// transition period); the stale target row is replaced by the migrated one.
	path := newCookiesDB(t, []cookieRow{
		{name: "sid", value: "old-session", host: ".old-domain.com", path: "/", expiry: 4102444800},
		{name: "sid", value: "new-session", host: ".new-domain.com", path: "/", expiry: 4102444800},
	})

	err := NewCookies(path).Apply(context.Background(), []Change{
		{
			Loc: Location{Table: "moz_cookies", Column: "host", Row: 1},
			Old: ".old-domain.com",
			New: ".new-domain.com",
		},
	})
	require.NoError(t, err)

	hosts := queryStrings(t, path, `SELECT host FROM moz_cookies ORDER BY id`)
	assert.Equal(t, []string{".new-domain.com"}, hosts)

	values := queryStrings(t, path, `SELECT value FROM moz_cookies ORDER BY id`)
	assert.Equal(t, []string{"old-session"}, values)
}

func TestCookiesAdapter_Apply_RollsBackOnStaleRow(t *testing.T) {
	path := newCookiesDB(t, []cookieRow{
		{name: "a", value: "1", host: "a.old-domain.com", path: "/", expiry: 1},
		{name: "b", value: "2", host: "b.old-domain.com", path: "/", expiry: 2},
	})

	err := NewCookies(path).Apply(context.Background(), []Change{
		{Loc: Location{Table: "moz_cookies", Column: "host", Row: 1}, Old: "a.old-domain.com", New: "a.new-domain.com"},
		{Loc: Location{Table: "moz_cookies", Column: "host", Row: 2}, Old: "b.old-domain.com/STALE", New: "b.new-domain.com"},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMalformedStore)

	hosts := queryStrings(t, path, `SELECT host FROM moz_cookies ORDER BY id`)
	assert.Equal(t, []string{"a.old-domain.com", "b.old-domain.com"}, hosts)
}
