package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/ffmigrate/pkg/store"
)

func sampleChanges() []store.Change {
	return []store.Change{
		{Loc: store.Location{Table: "moz_places", Column: "url", Row: 1}, Old: "https://a.old-domain.com/", New: "https://a.new-domain.com/"},
	}
}

func TestReport_Totals(t *testing.T) {
	rep := New()
	rep.Add(StoreResult{Store: "history", Status: StatusApplied, Candidates: 10, Changes: sampleChanges()})
	rep.Add(StoreResult{Store: "cookies", Status: StatusApplied, Candidates: 3})
	rep.Add(StoreResult{Store: "logins", Status: StatusSkipped})

	assert.True(t, rep.OK())
	assert.Empty(t, rep.FailedStores())
	assert.Equal(t, 13, rep.TotalCandidates())
	assert.Equal(t, 1, rep.TotalChanges())
	require.Len(t, rep.Results(), 3)
	assert.Equal(t, "history", rep.Results()[0].Store)
}

func TestReport_FailedStores(t *testing.T) {
	rep := New()
	rep.Add(StoreResult{Store: "history", Status: StatusApplied})
	rep.Add(StoreResult{Store: "cookies", Status: StatusFailed, Err: errors.New("locked")})
	rep.Add(StoreResult{Store: "prefs", Status: StatusFailed, Err: errors.New("stale")})

	assert.False(t, rep.OK())
	assert.Equal(t, []string{"cookies", "prefs"}, rep.FailedStores())
}

func TestReport_ResultsReturnsCopy(t *testing.T) {
	rep := New()
	rep.Add(StoreResult{Store: "history", Status: StatusApplied})

	results := rep.Results()
	results[0].Store = "tampered"
	assert.Equal(t, "history", rep.Results()[0].Store)
}

func TestStatus_String(t *testing.T) {
	assert.Equal(t, "skipped", StatusSkipped.String())
	assert.Equal(t, "simulated", StatusSimulated.String())
	assert.Equal(t, "applied", StatusApplied.String())
	assert.Equal(t, "failed", StatusFailed.String())
	assert.Equal(t, "unknown", Status(42).String())
}
