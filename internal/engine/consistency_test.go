package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hwhitmarsh/beacon-reconcile/internal/model"
	"github.com/hwhitmarsh/beacon-reconcile/internal/state"
)

func confirmedState(proposals ...*model.MatchProposal) *state.State {
	st := state.Empty()
	st.Confirmed = append(st.Confirmed, proposals...)
	for _, p := range proposals {
		st.ClaimedLedgerIDs = append(st.ClaimedLedgerIDs, p.EntryIDs()...)
	}
	return st
}

func confirmedProposal(id, bankID string, amount string, entries ...model.LedgerEntry) *model.MatchProposal {
	return &model.MatchProposal{
		ID:         id,
		Bank:       bankTxn(bankID, 5, "WHITTAKER J", amount),
		Entries:    entries,
		Kind:       model.KindOneToOne,
		Status:     model.StatusConfirmed,
		Confidence: 0.95,
	}
}

func TestCheckConsistencyCleanSession(t *testing.T) {
	s := newTestSession(
		[]model.BankTransaction{bankTxn("BANK_0001", 5, "WHITTAKER J", "45.00")},
		[]model.LedgerEntry{ledgerEntry("LEDGER_0001", 5, "4312", "J Whittaker", "45.00")},
	)
	proposals := s.Generate(nil)
	require.NoError(t, s.Transition(proposals[0].ID, model.StatusConfirmed))

	assert.Empty(t, s.CheckConsistency(nil))
}

func TestCheckConsistencyDoubleClaim(t *testing.T) {
	entry := ledgerEntry("LEDGER_0001", 5, "4312", "J Whittaker", "45.00")
	st := confirmedState(
		confirmedProposal("MATCH_0001", "BANK_0001", "45.00", entry),
		confirmedProposal("MATCH_0002", "BANK_0002", "45.00", entry),
	)

	s := newTestSession(nil, nil)
	s.Restore(st)

	findings := s.CheckConsistency(nil)
	require.Len(t, findings, 1)
	assert.Contains(t, findings[0].Reason, "LEDGER_0001")
	assert.Contains(t, findings[0].Reason, "2 confirmed proposals")
	assert.Equal(t, "MATCH_0001", findings[0].Proposal.ID)

	related := make([]string, 0, len(findings[0].Related))
	for _, p := range findings[0].Related {
		related = append(related, p.ID)
	}
	assert.ElementsMatch(t, []string{"MATCH_0001", "MATCH_0002"}, related)
}

func TestCheckConsistencyAmountConservation(t *testing.T) {
	// Confirmed proposal off by a penny.
	entry := ledgerEntry("LEDGER_0001", 5, "4312", "J Whittaker", "44.99")
	st := confirmedState(confirmedProposal("MATCH_0001", "BANK_0001", "45.00", entry))

	s := newTestSession(nil, nil)
	s.Restore(st)

	findings := s.CheckConsistency(nil)
	require.Len(t, findings, 1)
	assert.Contains(t, findings[0].Reason, "45")
	assert.Contains(t, findings[0].Reason, "44.99")
	require.Len(t, findings[0].Related, 1)
	assert.Equal(t, "MATCH_0001", findings[0].Related[0].ID)
}

func TestCheckConsistencyFiltersByLiveStatus(t *testing.T) {
	// A proposal whose live status has moved off confirmed is not checked,
	// even while it still sits in the confirmed collection. Manual and
	// resolved proposals are exempt too.
	unbalanced := confirmedProposal("MATCH_0001", "BANK_0001", "45.00",
		ledgerEntry("LEDGER_0001", 5, "4312", "J Whittaker", "44.99"))
	unbalanced.Status = model.StatusRejected

	manual := confirmedProposal("MATCH_0002", "BANK_0002", "45.00",
		ledgerEntry("LEDGER_0002", 5, "4313", "J Whittaker", "44.99"))
	manual.Status = model.StatusManual
	manual.Kind = model.KindManual

	s := newTestSession(nil, nil)
	s.Restore(confirmedState(unbalanced, manual))

	assert.Empty(t, s.CheckConsistency(nil))
}

func TestCheckConsistencyResolvedWithNoEntriesIsBalanced(t *testing.T) {
	resolved := confirmedProposal("MATCH_0001", "BANK_0001", "45.00")
	resolved.Status = model.StatusConfirmed
	resolved.Entries = []model.LedgerEntry{}

	s := newTestSession(nil, nil)
	s.Restore(confirmedState(resolved))

	assert.Empty(t, s.CheckConsistency(nil))
}

func TestCheckConsistencyProgress(t *testing.T) {
	st := confirmedState(
		confirmedProposal("MATCH_0001", "BANK_0001", "45.00",
			ledgerEntry("LEDGER_0001", 5, "4312", "J Whittaker", "45.00")),
		confirmedProposal("MATCH_0002", "BANK_0002", "13.00",
			ledgerEntry("LEDGER_0002", 5, "4313", "J Whittaker", "13.00")),
	)

	s := newTestSession(nil, nil)
	s.Restore(st)

	var seen []string
	s.CheckConsistency(func(current, total int, label string) {
		assert.Equal(t, 2, total)
		seen = append(seen, label)
	})
	assert.Equal(t, []string{"MATCH_0001", "MATCH_0002"}, seen)
}
