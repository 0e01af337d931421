package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hwhitmarsh/beacon-reconcile/internal/model"
)

func issueTypes(issues []Issue) []IssueType {
	types := make([]IssueType, len(issues))
	for i, issue := range issues {
		types[i] = issue.Type
	}
	return types
}

func TestValidateCleanState(t *testing.T) {
	st := Empty()
	st.Confirmed = append(st.Confirmed, testProposal("MATCH_0001", "BANK_0001", model.StatusConfirmed, "LEDGER_0001"))
	st.ClaimedLedgerIDs = []string{"LEDGER_0001"}

	assert.Empty(t, Validate(st))
}

func TestValidateDuplicateIDIdentical(t *testing.T) {
	st := Empty()
	st.Confirmed = append(st.Confirmed,
		testProposal("MATCH_0001", "BANK_0001", model.StatusConfirmed, "LEDGER_0001"),
		testProposal("MATCH_0001", "BANK_0001", model.StatusConfirmed, "LEDGER_0001"),
	)
	st.ClaimedLedgerIDs = []string{"LEDGER_0001"}

	issues := Validate(st)
	require.Len(t, issues, 1)
	assert.Equal(t, IssueDuplicateIDIdentical, issues[0].Type)
	assert.Contains(t, issues[0].Location, "confirmed_matches[0]")
	assert.Contains(t, issues[0].Location, "confirmed_matches[1]")
}

func TestValidateDuplicateIDDifferent(t *testing.T) {
	st := Empty()
	st.Confirmed = append(st.Confirmed,
		testProposal("MATCH_0001", "BANK_0001", model.StatusConfirmed, "LEDGER_0001"),
		testProposal("MATCH_0001", "BANK_0002", model.StatusConfirmed, "LEDGER_0002"),
	)
	st.ClaimedLedgerIDs = []string{"LEDGER_0001", "LEDGER_0002"}

	issues := Validate(st)
	require.Len(t, issues, 1)
	assert.Equal(t, IssueDuplicateIDDifferent, issues[0].Type)
}

func TestValidateDuplicateAcrossCollections(t *testing.T) {
	st := Empty()
	st.Confirmed = append(st.Confirmed, testProposal("MATCH_0001", "BANK_0001", model.StatusConfirmed, "LEDGER_0001"))
	st.Rejected = append(st.Rejected, testProposal("MATCH_0001", "BANK_0002", model.StatusRejected, "LEDGER_0002"))
	st.ClaimedLedgerIDs = []string{"LEDGER_0001"}

	issues := Validate(st)
	require.Len(t, issues, 1)
	assert.Equal(t, IssueDuplicateIDDifferent, issues[0].Type)
	assert.Contains(t, issues[0].Location, "rejected_matches[0]")
}

func TestValidateOrphanedClaim(t *testing.T) {
	st := Empty()
	st.ClaimedLedgerIDs = []string{"LEDGER_0042"}

	issues := Validate(st)
	require.Len(t, issues, 1)
	assert.Equal(t, IssueOrphanedClaim, issues[0].Type)
	assert.Contains(t, issues[0].Message, "LEDGER_0042")
}

func TestValidateInvalidStatusInConfirmed(t *testing.T) {
	tests := []struct {
		name   string
		status model.MatchStatus
	}{
		{name: "pending", status: model.StatusPending},
		{name: "rejected", status: model.StatusRejected},
		{name: "unknown value", status: model.MatchStatus("archived")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := testProposal("MATCH_0001", "BANK_0001", tt.status, "LEDGER_0001")
			for i := range p.Entries {
				p.Entries[i].Claimed = true
			}
			st := Empty()
			st.Confirmed = append(st.Confirmed, p)
			st.ClaimedLedgerIDs = []string{"LEDGER_0001"}

			issues := Validate(st)
			require.Len(t, issues, 1)
			assert.Equal(t, IssueInvalidStatus, issues[0].Type)
		})
	}
}

func TestValidateStaleClaimedFlag(t *testing.T) {
	p := testProposal("MATCH_0001", "BANK_0001", model.StatusConfirmed, "LEDGER_0001")
	p.Entries[0].Claimed = false
	st := Empty()
	st.Confirmed = append(st.Confirmed, p)
	st.ClaimedLedgerIDs = []string{"LEDGER_0001"}

	issues := Validate(st)
	require.Len(t, issues, 1)
	assert.Equal(t, IssueStaleClaimedFlag, issues[0].Type)
}

func TestValidateReportsMultipleIssueTypes(t *testing.T) {
	p := testProposal("MATCH_0001", "BANK_0001", model.StatusPending, "LEDGER_0001")
	st := Empty()
	st.Confirmed = append(st.Confirmed, p)
	st.ClaimedLedgerIDs = []string{"LEDGER_0001", "LEDGER_0099"}

	types := issueTypes(Validate(st))
	assert.Contains(t, types, IssueOrphanedClaim)
	assert.Contains(t, types, IssueInvalidStatus)
	assert.Contains(t, types, IssueStaleClaimedFlag)
}

func TestReportRendering(t *testing.T) {
	st := Empty()
	st.ClaimedLedgerIDs = []string{"LEDGER_0042"}

	report := Report("state.json", Validate(st))
	assert.Contains(t, report, "state.json")
	assert.Contains(t, report, "Found 1 issue(s)")
	assert.Contains(t, report, "ORPHANED_CLAIM: 1")

	clean := Report("state.json", nil)
	assert.Contains(t, clean, "No validation issues found")
}
