package store

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const loginsFixture = `{
  "nextId": 3,
  "logins": [
    {
      "id": 1,
      "hostname": "https://www.old-domain.com",
      "httpRealm": null,
      "formSubmitURL": "https://www.old-domain.com",
      "usernameField": "user",
      "passwordField": "pass",
      "encryptedUsername": "MDIEEPgAAAA=",
      "encryptedPassword": "MDoEEPgBBBB=",
      "guid": "{aaaa-bbbb}",
      "timeCreated": 1700000000000
    },
    {
      "id": 2,
      "hostname": "https://example.org",
      "httpRealm": "Members Only",
      "formSubmitURL": "",
      "encryptedUsername": "MDIEECCCCCC=",
      "encryptedPassword": "MDoEEDDDDDD=",
      "guid": "{cccc-dddd}",
      "timeCreated": 1700000000001
    }
  ],
  "potentiallyVulnerablePasswords": [],
  "version": 3
}
`

func writeLoginsFixture(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "logins.json")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))
	return path
}

func TestLoginsAdapter_Enumerate(t *testing.T) {
	path := writeLoginsFixture(t, loginsFixture)

	candidates, err := NewLogins(path).Enumerate(context.Background())
	require.NoError(t, err)

	// Entry 0 contributes hostname and formSubmitURL; httpRealm is null.
	// Entry 1 contributes only hostname: formSubmitURL is empty and the
	// realm "Members Only" is free text, not a URL.
	require.Len(t, candidates, 3)
	assert.Equal(t, Location{Table: "logins", Column: "hostname", Row: 0}, candidates[0].Loc)
	assert.Equal(t, "https://www.old-domain.com", candidates[0].Value)
	assert.Equal(t, "formSubmitURL", candidates[1].Loc.Column)
	assert.Equal(t, Location{Table: "logins", Column: "hostname", Row: 1}, candidates[2].Loc)
}

func TestLoginsAdapter_Enumerate_URLRealm(t *testing.T) {
	path := writeLoginsFixture(t, `{"logins": [{"hostname": "https://a.example", "httpRealm": "https://a.example/realm"}]}`)

	candidates, err := NewLogins(path).Enumerate(context.Background())
	require.NoError(t, err)
	require.Len(t, candidates, 2)
	assert.Equal(t, "httpRealm", candidates[1].Loc.Column)
	assert.Equal(t, "https://a.example/realm", candidates[1].Value)
}

func TestLoginsAdapter_MalformedShapes(t *testing.T) {
	tests := []struct {
		name     string
		contents string
	}{
		{name: "not_json", contents: `user_pref("a", "b");`},
		{name: "not_an_object", contents: `[1, 2, 3]`},
		{name: "missing_logins", contents: `{"version": 3}`},
		{name: "logins_not_array", contents: `{"logins": {"id": 1}}`},
		{name: "entry_not_object", contents: `{"logins": ["nope"]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeLoginsFixture(t, tt.contents)
			_, err := NewLogins(path).Enumerate(context.Background())
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrMalformedStore)
		})
	}
}

func TestLoginsAdapter_Apply(t *testing.T) {
	path := writeLoginsFixture(t, loginsFixture)
	adapter := NewLogins(path)

	err := adapter.Apply(context.Background(), []Change{
		{
			Loc: Location{Table: "logins", Column: "hostname", Row: 0},
			Old: "https://www.old-domain.com",
			New: "https://www.new-domain.com",
		},
		{
			Loc: Location{Table: "logins", Column: "formSubmitURL", Row: 0},
			Old: "https://www.old-domain.com",
			New: "https://www.new-domain.com",
		},
	})
	require.NoError(t, err)

	data, rerr := os.ReadFile(path)
	require.NoError(t, rerr)

	var doc map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &doc))

	var entries []map[string]any
	require.NoError(t, json.Unmarshal(doc["logins"], &entries))
	require.Len(t, entries, 2)

	assert.Equal(t, "https://www.new-domain.com", entries[0]["hostname"])
	assert.Equal(t, "https://www.new-domain.com", entries[0]["formSubmitURL"])

	// Encrypted payloads and identity fields must survive untouched.
	assert.Equal(t, "MDIEEPgAAAA=", entries[0]["encryptedUsername"])
	assert.Equal(t, "MDoEEPgBBBB=", entries[0]["encryptedPassword"])
	assert.Equal(t, "{aaaa-bbbb}", entries[0]["guid"])
	assert.Equal(t, float64(1700000000000), entries[0]["timeCreated"])
	assert.Nil(t, entries[0]["httpRealm"])

	// The second entry did not change.
	assert.Equal(t, "https://example.org", entries[1]["hostname"])
	assert.Equal(t, "Members Only", entries[1]["httpRealm"])

	// Top-level keys beside "logins" are carried through.
	assert.Contains(t, doc, "nextId")
	assert.Contains(t, doc, "version")
	assert.Contains(t, doc, "potentiallyVulnerablePasswords")
}

func TestLoginsAdapter_Apply_StalePlanLeavesFileAlone(t *testing.T) {
	path := writeLoginsFixture(t, loginsFixture)
	before, err := os.ReadFile(path)
	require.NoError(t, err)

	aerr := NewLogins(path).Apply(context.Background(), []Change{
		{
			Loc: Location{Table: "logins", Column: "hostname", Row: 0},
			Old: "https://stale.old-domain.com",
			New: "https://stale.new-domain.com",
		},
	})
	require.Error(t, aerr)
	assert.ErrorIs(t, aerr, ErrMalformedStore)

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestLoginsAdapter_Apply_PreservesMode(t *testing.T) {
	path := writeLoginsFixture(t, loginsFixture)

	err := NewLogins(path).Apply(context.Background(), []Change{
		{
			Loc: Location{Table: "logins", Column: "hostname", Row: 0},
			Old: "https://www.old-domain.com",
			New: "https://www.new-domain.com",
		},
	})
	require.NoError(t, err)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestLoginsAdapter_Count(t *testing.T) {
	path := writeLoginsFixture(t, loginsFixture)
	n, err := NewLogins(path).Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestLoginsAdapter_NotPresent(t *testing.T) {
	adapter := NewLogins(filepath.Join(t.TempDir(), "logins.json"))
	_, err := adapter.Enumerate(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotPresent)
}
