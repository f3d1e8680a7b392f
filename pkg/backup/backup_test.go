package backup

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, contents string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
}

func newProfileDir(t *testing.T) string {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "abcd1234.default-release")
	writeFile(t, filepath.Join(dir, "prefs.js"), `user_pref("a", "b");`)
	writeFile(t, filepath.Join(dir, "logins.json"), `{"logins": []}`)
	writeFile(t, filepath.Join(dir, "cache2", "entries", "blob"), "cached data")
	writeFile(t, filepath.Join(dir, "storage", "default", "data.bin"), "site data")
	return dir
}

func TestRun_CopiesProfileAndSkipsIgnored(t *testing.T) {
	ctx := context.Background()
	src := newProfileDir(t)
	destRoot := filepath.Join(t.TempDir(), "backups")

	dest, sum, err := Run(ctx, src, destRoot, []string{"cache2/**"})
	require.NoError(t, err)

	assert.Contains(t, filepath.Base(dest), "abcd1234.default-release-backup-")

	data, err := os.ReadFile(filepath.Join(dest, "prefs.js"))
	require.NoError(t, err)
	assert.Equal(t, `user_pref("a", "b");`, string(data))

	_, err = os.Stat(filepath.Join(dest, "storage", "default", "data.bin"))
	assert.NoError(t, err)

	_, err = os.Stat(filepath.Join(dest, "cache2", "entries", "blob"))
	assert.True(t, os.IsNotExist(err), "ignored cache file must not be copied")

	assert.Equal(t, 3, sum.Files)
	assert.Positive(t, sum.Bytes)
}

func TestRun_SkipsLockSymlink(t *testing.T) {
	ctx := context.Background()
	src := newProfileDir(t)
	// The POSIX profile lock is a dangling symlink.
	require.NoError(t, os.Symlink("192.0.2.1:+12345", filepath.Join(src, "lock")))

	dest, _, err := Run(ctx, src, filepath.Join(t.TempDir(), "backups"), nil)
	require.NoError(t, err)

	_, err = os.Lstat(filepath.Join(dest, "lock"))
	assert.True(t, os.IsNotExist(err))
}

func TestRestore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	prof := newProfileDir(t)

	dest, _, err := Run(ctx, prof, filepath.Join(t.TempDir(), "backups"), nil)
	require.NoError(t, err)

	// Mutate the live profile after the backup.
	writeFile(t, filepath.Join(prof, "prefs.js"), `user_pref("a", "MUTATED");`)
	writeFile(t, filepath.Join(prof, "extra.txt"), "post-backup file")

	preRestore, err := Restore(ctx, prof, dest)
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(prof, "prefs.js"))
	require.NoError(t, err)
	assert.Equal(t, `user_pref("a", "b");`, string(data))

	_, err = os.Stat(filepath.Join(prof, "extra.txt"))
	assert.True(t, os.IsNotExist(err), "restore must clear post-backup files")

	// The pre-restore copy keeps the mutated state.
	data, err = os.ReadFile(filepath.Join(preRestore, "prefs.js"))
	require.NoError(t, err)
	assert.Equal(t, `user_pref("a", "MUTATED");`, string(data))
}

func TestRestore_MissingBackup(t *testing.T) {
	prof := newProfileDir(t)
	_, err := Restore(context.Background(), prof, filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
}

func TestFileBackup(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "places.sqlite")
	require.NoError(t, os.WriteFile(path, []byte("sqlite bytes"), 0o600))

	backupPath, err := FileBackup(path)
	require.NoError(t, err)
	assert.Contains(t, backupPath, "places.sqlite.pre_migration_")
	assert.Contains(t, backupPath, ".bak")

	data, err := os.ReadFile(backupPath)
	require.NoError(t, err)
	assert.Equal(t, "sqlite bytes", string(data))

	info, err := os.Stat(backupPath)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestFileBackup_MissingSource(t *testing.T) {
	_, err := FileBackup(filepath.Join(t.TempDir(), "missing.sqlite"))
	require.Error(t, err)
}

func TestSummarize(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.txt"), "12345")
	writeFile(t, filepath.Join(dir, "sub", "b.txt"), "123")

	sum, err := Summarize(dir)
	require.NoError(t, err)
	assert.Equal(t, 2, sum.Files)
	assert.Equal(t, int64(8), sum.Bytes)
}

func TestHumanSize(t *testing.T) {
	tests := []struct {
		n    int64
		want string
	}{
		{0, "0.0 B"},
		{512, "512.0 B"},
		{2048, "2.0 KB"},
		{3 * 1024 * 1024, "3.0 MB"},
		{5 * 1024 * 1024 * 1024, "5.0 GB"},
		{2 * 1024 * 1024 * 1024 * 1024, "2.0 TB"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, HumanSize(tt.n))
	}
}
