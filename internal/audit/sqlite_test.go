package audit

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLiteRecorderRoundTrip(t *testing.T) {
	rec, err := NewSQLiteRecorder(filepath.Join(t.TempDir(), "audit.db"))
	require.NoError(t, err)
	defer func() { require.NoError(t, rec.Close()) }()

	at := time.Date(2024, 3, 5, 12, 0, 0, 0, time.UTC)
	require.NoError(t, rec.Record(Event{
		At:         at,
		ProposalID: "MATCH_0001",
		BankID:     "BANK_0001",
		From:       "pending",
		To:         "confirmed",
	}))
	require.NoError(t, rec.Record(Event{
		At:         at.Add(time.Minute),
		ProposalID: "MATCH_0001",
		BankID:     "BANK_0001",
		From:       "confirmed",
		To:         "pending",
		Note:       "operator undo",
	}))
	require.NoError(t, rec.Record(Event{
		At:         at,
		ProposalID: "MATCH_0002",
		BankID:     "BANK_0002",
		From:       "pending",
		To:         "rejected",
	}))

	events, err := rec.Events("MATCH_0001")
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "confirmed", events[0].To)
	assert.Equal(t, "operator undo", events[1].Note)
	assert.True(t, events[0].At.Equal(at))
}

func TestSQLiteRecorderDefaultsTimestamp(t *testing.T) {
	rec, err := NewSQLiteRecorder(filepath.Join(t.TempDir(), "audit.db"))
	require.NoError(t, err)
	defer func() { require.NoError(t, rec.Close()) }()

	require.NoError(t, rec.Record(Event{ProposalID: "MATCH_0001", BankID: "BANK_0001", From: "pending", To: "skipped"}))

	events, err := rec.Events("MATCH_0001")
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.False(t, events[0].At.IsZero())
}

func TestSQLiteRecorderCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "audit.db")
	rec, err := NewSQLiteRecorder(path)
	require.NoError(t, err)
	require.NoError(t, rec.Close())
}

func TestSQLiteRecorderRequiresPath(t *testing.T) {
	_, err := NewSQLiteRecorder("")
	assert.Error(t, err)
}
