package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectChange_TruthTable(t *testing.T) {
	const ts = "2026-08-01T10:00:00Z"
	const other = "2026-08-02T09:30:00Z"

	tests := []struct {
		name    string
		current string
		stored  string
		force   bool
		want    Change
	}{
		{"no artifact, not forced", ts, "", false, ChangeNew},
		{"no artifact, forced", ts, "", true, ChangeNew},
		{"equal, not forced", ts, ts, false, ChangeUnchanged},
		{"equal, forced", ts, ts, true, ChangeUpdated},
		{"differs, not forced", ts, other, false, ChangeUpdated},
		{"differs, forced", ts, other, true, ChangeUpdated},
		{"empty current, stored set", "", ts, false, ChangeUpdated},
		{"both empty", "", "", false, ChangeNew},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectChange(tt.current, tt.stored, tt.force))
		})
	}
}

func TestDetectChange_OpaqueStrings(t *testing.T) {
	// Equivalent instants with different formatting are a mismatch:
	// fingerprints are opaque strings, not parsed dates.
	got := DetectChange("2026-08-01T10:00:00Z", "2026-08-01T10:00:00+00:00", false)
	assert.Equal(t, ChangeUpdated, got)
}

func TestChange_NeedsIndex(t *testing.T) {
	assert.True(t, ChangeNew.NeedsIndex())
	assert.True(t, ChangeUpdated.NeedsIndex())
	assert.False(t, ChangeUnchanged.NeedsIndex())
}

func TestChange_String(t *testing.T) {
	assert.Equal(t, "new", ChangeNew.String())
	assert.Equal(t, "unchanged", ChangeUnchanged.String())
	assert.Equal(t, "updated", ChangeUpdated.String())
}
