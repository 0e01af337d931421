package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hwhitmarsh/beacon-reconcile/internal/common"
	"github.com/hwhitmarsh/beacon-reconcile/internal/model"
)

func manualSession(t *testing.T) *Session {
	t.Helper()

	s := newTestSession(
		[]model.BankTransaction{
			bankTxn("BANK_0001", 5, "PENHALIGON A", "45.50"),
			bankTxn("BANK_0002", 5, "UNKNOWN SENDER", "10.00"),
		},
		[]model.LedgerEntry{
			ledgerEntry("LEDGER_0001", 5, "4312", "A Penhaligon", "32.00"),
			ledgerEntry("LEDGER_0002", 5, "4313", "A Penhaligon", "13.50"),
			ledgerEntry("LEDGER_0003", 5, "4314", "B Ravenscroft", "10.00"),
		},
	)
	s.Generate(nil)
	return s
}

func TestCreateManualMatch(t *testing.T) {
	s := manualSession(t)

	p, err := s.CreateManualMatch("BANK_0001", []string{"4312", "4313"})
	require.NoError(t, err)

	assert.Equal(t, model.KindManual, p.Kind)
	assert.Equal(t, model.StatusManual, p.Status)
	assert.True(t, p.IsSettled())
	assert.InDelta(t, 1.0, p.Confidence, 1e-9)
	assert.Equal(t, []string{"LEDGER_0001", "LEDGER_0002"}, p.EntryIDs())

	snap := s.Snapshot()
	assert.Contains(t, snap.ClaimedLedgerIDs, "LEDGER_0001")
	assert.Contains(t, snap.ClaimedLedgerIDs, "LEDGER_0002")
	require.Len(t, snap.Confirmed, 1)
	assert.Equal(t, p.ID, snap.Confirmed[0].ID)
}

func TestCreateManualMatchSurvivesRegeneration(t *testing.T) {
	s := manualSession(t)

	p, err := s.CreateManualMatch("BANK_0001", []string{"4312", "4313"})
	require.NoError(t, err)

	proposals := s.Generate(nil)
	found := false
	for _, np := range proposals {
		if np.ID == p.ID {
			found = true
			assert.Same(t, p, np)
		}
	}
	assert.True(t, found)
}

func TestCreateManualMatchValidation(t *testing.T) {
	tests := []struct {
		name    string
		bankID  string
		refNos  []string
		wantErr error
	}{
		{name: "unknown bank transaction", bankID: "BANK_9999", refNos: []string{"4312"}, wantErr: common.ErrBankNotFound},
		{name: "unknown reference", bankID: "BANK_0001", refNos: []string{"9999"}, wantErr: common.ErrEntryNotFound},
		{name: "amount off by a penny", bankID: "BANK_0001", refNos: []string{"4312"}, wantErr: common.ErrAmountMismatch},
		{name: "duplicate reference", bankID: "BANK_0001", refNos: []string{"4312", "4312"}, wantErr: common.ErrEntryClaimed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := manualSession(t)

			_, err := s.CreateManualMatch(tt.bankID, tt.refNos)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)

			// Failed overrides leave no trace.
			snap := s.Snapshot()
			assert.Empty(t, snap.ClaimedLedgerIDs)
			assert.Empty(t, snap.Confirmed)
		})
	}
}

func TestCreateManualMatchClaimedEntry(t *testing.T) {
	s := manualSession(t)

	_, err := s.CreateManualMatch("BANK_0002", []string{"4314"})
	require.NoError(t, err)

	// 4314 is claimed now; a second override naming it must fail without
	// touching the session.
	before := len(s.Snapshot().ClaimedLedgerIDs)
	_, err = s.CreateManualMatch("BANK_0001", []string{"4314"})
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrEntryClaimed)
	assert.Len(t, s.Snapshot().ClaimedLedgerIDs, before)
}

func TestCreateManualMatchAlreadySettled(t *testing.T) {
	s := manualSession(t)

	_, err := s.CreateManualMatch("BANK_0001", []string{"4312", "4313"})
	require.NoError(t, err)

	_, err = s.CreateManualMatch("BANK_0001", []string{"4312", "4313"})
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrAlreadySettled)
}

func TestCreateManualMatchCascades(t *testing.T) {
	s := manualSession(t)

	// The generator proposed the 32.00+13.50 pair for BANK_0001. A manual
	// match claiming those entries must cascade-reject it.
	var generated *model.MatchProposal
	for _, p := range proposalsFor(s, "BANK_0001") {
		if p.Kind == model.KindOneToTwo {
			generated = p
		}
	}
	require.NotNil(t, generated)
	require.Equal(t, model.StatusPending, generated.Status)

	_, err := s.CreateManualMatch("BANK_0001", []string{"4312", "4313"})
	require.NoError(t, err)
	assert.Equal(t, model.StatusRejected, generated.Status)
}

func TestCreateManuallyResolved(t *testing.T) {
	s := manualSession(t)

	p, err := s.CreateManuallyResolved("BANK_0002", "refund issued outside the ledger")
	require.NoError(t, err)

	assert.Equal(t, model.KindResolved, p.Kind)
	assert.Equal(t, model.StatusResolved, p.Status)
	assert.Empty(t, p.Entries)
	assert.Equal(t, "refund issued outside the ledger", p.Comment)
	assert.True(t, p.Balanced())

	snap := s.Snapshot()
	require.Len(t, snap.Confirmed, 1)
	assert.Empty(t, snap.ClaimedLedgerIDs)
}

func TestCreateManuallyResolvedValidation(t *testing.T) {
	s := manualSession(t)

	_, err := s.CreateManuallyResolved("BANK_9999", "comment")
	assert.ErrorIs(t, err, common.ErrBankNotFound)

	_, err = s.CreateManuallyResolved("BANK_0002", "first")
	require.NoError(t, err)
	_, err = s.CreateManuallyResolved("BANK_0002", "second")
	assert.ErrorIs(t, err, common.ErrAlreadySettled)
}
