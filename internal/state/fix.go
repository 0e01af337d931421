package state

import (
	"fmt"
	"sort"

	"github.com/hwhitmarsh/beacon-reconcile/internal/model"
)

// FixSummary reports what a repair changed.
type FixSummary struct {
	Kept                 int
	RemovedInvalidStatus int
	RemovedDuplicates    int
	ClaimedRebuilt       int
	RejectionsCleared    int
}

// Fix deterministically rebuilds a damaged snapshot: it filters the
// confirmed collection to settled statuses, drops meaningful duplicates
// (same bank transaction, same entry set, same status — first occurrence
// wins), reassigns sequential proposal identifiers, forces claimed flags
// true, recomputes the claimed-identifier set from the surviving proposals,
// and clears both rejection sets. The input snapshot is not modified.
//
// Repair is a tooling decision made by the operator; the live engine never
// rewrites confirmed financial matches on its own.
func Fix(st *State) (*State, FixSummary) {
	var summary FixSummary

	// Filter to settled statuses only.
	var valid []*model.MatchProposal
	for _, p := range st.Confirmed {
		if p.Status.Valid() && p.Status.IsSettled() {
			valid = append(valid, p)
		} else {
			summary.RemovedInvalidStatus++
		}
	}

	// Drop meaningful duplicates, keeping the first occurrence.
	seen := make(map[string]struct{})
	var kept []*model.MatchProposal
	for _, p := range valid {
		key := meaningfulKey(p)
		if _, dup := seen[key]; dup {
			summary.RemovedDuplicates++
			continue
		}
		seen[key] = struct{}{}
		kept = append(kept, p)
	}

	// Renumber and repair flags on deep copies.
	claimed := make(map[string]struct{})
	fixed := Empty()
	for i, p := range kept {
		c := *p
		c.ID = fmt.Sprintf("MATCH_%04d", i+1)
		c.Entries = make([]model.LedgerEntry, len(p.Entries))
		for j, e := range p.Entries {
			e.Claimed = true
			c.Entries[j] = e
			claimed[e.ID] = struct{}{}
		}
		fixed.Confirmed = append(fixed.Confirmed, &c)
	}

	ids := make([]string, 0, len(claimed))
	for id := range claimed {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	fixed.ClaimedLedgerIDs = ids

	summary.Kept = len(fixed.Confirmed)
	summary.ClaimedRebuilt = len(ids)
	summary.RejectionsCleared = len(st.RejectedBankIDs) + len(st.Rejected)

	return fixed, summary
}
