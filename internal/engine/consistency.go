package engine

import (
	"fmt"

	"github.com/hwhitmarsh/beacon-reconcile/internal/model"
)

// Inconsistency is one violation found in the confirmed set. Related holds
// every proposal implicated in the violation, Proposal included, so callers
// can present the full conflict rather than one side of it.
type Inconsistency struct {
	Proposal *model.MatchProposal
	Reason   string
	Related  []*model.MatchProposal
}

// CheckConsistency verifies the invariants of the confirmed set: no ledger
// entry claimed by more than one confirmed proposal, and every confirmed
// proposal balanced to the penny. Only proposals whose live status is
// exactly confirmed are checked; manual and resolved proposals answer to the
// operator, not the scorer, and stale collection membership is the state
// validator's concern.
func (s *Session) CheckConsistency(progress ProgressFunc) []Inconsistency {
	var live []*model.MatchProposal
	for _, p := range s.confirmed {
		if p.Status == model.StatusConfirmed {
			live = append(live, p)
		}
	}

	var findings []Inconsistency

	claimants := make(map[string][]*model.MatchProposal)
	var entryOrder []string
	for _, p := range live {
		for _, eid := range p.EntryIDs() {
			if _, seen := claimants[eid]; !seen {
				entryOrder = append(entryOrder, eid)
			}
			claimants[eid] = append(claimants[eid], p)
		}
	}
	for _, eid := range entryOrder {
		owners := claimants[eid]
		if len(owners) < 2 {
			continue
		}
		findings = append(findings, Inconsistency{
			Proposal: owners[0],
			Reason:   fmt.Sprintf("ledger entry %s is claimed by %d confirmed proposals", eid, len(owners)),
			Related:  owners,
		})
	}

	for i, p := range live {
		if progress != nil {
			progress(i+1, len(live), p.ID)
		}
		if len(p.Entries) == 0 || p.Balanced() {
			continue
		}
		findings = append(findings, Inconsistency{
			Proposal: p,
			Reason: fmt.Sprintf("bank amount %s does not equal entry sum %s",
				p.Bank.Amount.String(), p.EntrySum().String()),
			Related: []*model.MatchProposal{p},
		})
	}

	if len(findings) > 0 {
		s.logger.Warn("consistency check found violations", "count", len(findings))
	}

	return findings
}
