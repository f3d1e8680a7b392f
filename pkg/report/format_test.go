package report

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"gitlab.com/tozd/go/errors"
)

func TestDefaultFormatter_VerbTracksDryRun(t *testing.T) {
	f := NewDefaultFormatter()
	res := StoreResult{Store: "history", Status: StatusApplied, Candidates: 4, Changes: sampleChanges()}

	dry := f.FormatStoreResult(res, true)
	assert.Contains(t, dry, "would change")
	assert.Contains(t, dry, "4 candidates")

	applied := f.FormatStoreResult(res, false)
	assert.Contains(t, applied, "changed")
	assert.NotContains(t, applied, "would change")

	// Apart from the verb, dry-run and real output read identically.
	assert.Equal(t,
		bytes.ReplaceAll([]byte(dry), []byte("would change"), []byte("changed")),
		[]byte(applied))
}

func TestDefaultFormatter_Skipped(t *testing.T) {
	f := NewDefaultFormatter()
	line := f.FormatStoreResult(StoreResult{Store: "logins", Path: "/p/logins.json", Status: StatusSkipped}, false)
	assert.Contains(t, line, "not present")
	assert.Contains(t, line, "/p/logins.json")
}

func TestDefaultFormatter_Failed(t *testing.T) {
	f := NewDefaultFormatter()
	res := StoreResult{Store: "cookies", Status: StatusFailed, Candidates: 2, Err: errors.New("database is locked")}
	line := f.FormatStoreResult(res, false)
	assert.Contains(t, line, "failed")
	assert.Contains(t, line, "database is locked")
}

func TestDefaultFormatter_FormatChange(t *testing.T) {
	f := NewDefaultFormatter()
	line := f.FormatChange(sampleChanges()[0])
	assert.Contains(t, line, "moz_places.url#1")
	assert.Contains(t, line, "https://a.old-domain.com/")
	assert.Contains(t, line, "https://a.new-domain.com/")
}

func TestPrinter_VerboseListsChanges(t *testing.T) {
	rep := New()
	rep.Add(StoreResult{Store: "history", Status: StatusApplied, Candidates: 1, Changes: sampleChanges()})

	var quiet bytes.Buffer
	NewPrinter(&quiet, false).Print(rep, false)
	assert.NotContains(t, quiet.String(), "https://a.new-domain.com/")

	var verbose bytes.Buffer
	NewPrinter(&verbose, true).Print(rep, false)
	assert.Contains(t, verbose.String(), "https://a.new-domain.com/")
}

func TestPrinter_DryRunAlwaysListsChanges(t *testing.T) {
	rep := New()
	rep.Add(StoreResult{Store: "history", Status: StatusSimulated, Candidates: 1, Changes: sampleChanges()})

	var out bytes.Buffer
	NewPrinter(&out, false).Print(rep, true)
	assert.Contains(t, out.String(), "https://a.new-domain.com/")
	assert.Contains(t, out.String(), "would change")
}
