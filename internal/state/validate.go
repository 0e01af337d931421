package state

import (
	"fmt"
	"sort"
	"strings"

	"github.com/hwhitmarsh/beacon-reconcile/internal/model"
)

// IssueType classifies a validation finding.
type IssueType string

// Validation issue types.
const (
	IssueDuplicateIDIdentical IssueType = "DUPLICATE_ID_IDENTICAL"
	IssueDuplicateIDDifferent IssueType = "DUPLICATE_ID_DIFFERENT"
	IssueOrphanedClaim        IssueType = "ORPHANED_CLAIM"
	IssueInvalidStatus        IssueType = "INVALID_STATUS"
	IssueStaleClaimedFlag     IssueType = "STALE_CLAIMED_FLAG"
)

// Issue is a single validation finding with enough context to repair it by
// hand.
type Issue struct {
	Type       IssueType
	Message    string
	Location   string
	Suggestion string
}

func (i Issue) String() string {
	return fmt.Sprintf("[%s] %s\n  Location: %s\n  Suggestion: %s", i.Type, i.Message, i.Location, i.Suggestion)
}

// Validate checks a loaded snapshot against the session invariants: unique
// proposal identifiers, no orphaned claimed identifiers, only settled
// statuses inside the confirmed collection, and claimed flags that mirror
// membership. It never mutates the snapshot.
func Validate(st *State) []Issue {
	var issues []Issue

	issues = append(issues, checkDuplicateIDs(st)...)
	issues = append(issues, checkOrphanedClaims(st)...)
	issues = append(issues, checkConfirmedStatuses(st)...)
	issues = append(issues, checkClaimedFlags(st)...)

	return issues
}

type idOccurrence struct {
	proposal *model.MatchProposal
	location string
}

func checkDuplicateIDs(st *State) []Issue {
	occurrences := make(map[string][]idOccurrence)
	var order []string

	record := func(source string, proposals []*model.MatchProposal) {
		for i, p := range proposals {
			if _, seen := occurrences[p.ID]; !seen {
				order = append(order, p.ID)
			}
			occurrences[p.ID] = append(occurrences[p.ID], idOccurrence{
				proposal: p,
				location: fmt.Sprintf("%s[%d]", source, i),
			})
		}
	}
	record("confirmed_matches", st.Confirmed)
	record("rejected_matches", st.Rejected)

	var issues []Issue
	for _, id := range order {
		occ := occurrences[id]
		if len(occ) < 2 {
			continue
		}

		locations := make([]string, len(occ))
		for i, o := range occ {
			locations[i] = o.location
		}

		identical := true
		first := meaningfulKey(occ[0].proposal)
		for _, o := range occ[1:] {
			if meaningfulKey(o.proposal) != first {
				identical = false
				break
			}
		}

		if identical {
			issues = append(issues, Issue{
				Type:       IssueDuplicateIDIdentical,
				Message:    fmt.Sprintf("proposal ID %q appears %d times with identical data", id, len(occ)),
				Location:   strings.Join(locations, ", "),
				Suggestion: "remove all but one occurrence",
			})
		} else {
			issues = append(issues, Issue{
				Type:       IssueDuplicateIDDifferent,
				Message:    fmt.Sprintf("proposal ID %q appears %d times with different data", id, len(occ)),
				Location:   strings.Join(locations, ", "),
				Suggestion: "renumber the duplicates with fresh sequential identifiers",
			})
		}
	}

	return issues
}

func checkOrphanedClaims(st *State) []Issue {
	referenced := make(map[string]struct{})
	for _, p := range st.Confirmed {
		for _, id := range p.EntryIDs() {
			referenced[id] = struct{}{}
		}
	}

	var orphans []string
	for _, id := range st.ClaimedLedgerIDs {
		if _, ok := referenced[id]; !ok {
			orphans = append(orphans, id)
		}
	}
	sort.Strings(orphans)

	issues := make([]Issue, 0, len(orphans))
	for _, id := range orphans {
		issues = append(issues, Issue{
			Type:       IssueOrphanedClaim,
			Message:    fmt.Sprintf("ledger entry %q is claimed but no confirmed proposal references it", id),
			Location:   "matched_ledger_ids",
			Suggestion: "remove the identifier from matched_ledger_ids or restore the missing confirmed proposal",
		})
	}
	return issues
}

func checkConfirmedStatuses(st *State) []Issue {
	var issues []Issue
	for i, p := range st.Confirmed {
		if p.Status.Valid() && p.Status.IsSettled() {
			continue
		}
		issues = append(issues, Issue{
			Type:       IssueInvalidStatus,
			Message:    fmt.Sprintf("proposal %q has status %q inside the confirmed collection", p.ID, p.Status),
			Location:   fmt.Sprintf("confirmed_matches[%d]", i),
			Suggestion: "move rejected proposals to rejected_matches; remove pending or skipped ones entirely",
		})
	}
	return issues
}

func checkClaimedFlags(st *State) []Issue {
	var issues []Issue
	for i, p := range st.Confirmed {
		for j, e := range p.Entries {
			if e.Claimed {
				continue
			}
			issues = append(issues, Issue{
				Type:       IssueStaleClaimedFlag,
				Message:    fmt.Sprintf("entry %q in confirmed proposal %q has claimed=false", e.ID, p.ID),
				Location:   fmt.Sprintf("confirmed_matches[%d].ledger_entries[%d]", i, j),
				Suggestion: "set claimed to true; the flag must mirror the claimed-identifier set",
			})
		}
	}
	return issues
}

// meaningfulKey identifies a proposal by what it settles: the bank
// transaction, the set of claimed entries, and the status. Two records with
// the same key are duplicates regardless of score differences.
func meaningfulKey(p *model.MatchProposal) string {
	ids := append([]string(nil), p.EntryIDs()...)
	sort.Strings(ids)
	return p.Bank.ID + "|" + strings.Join(ids, ",") + "|" + string(p.Status)
}

// Report renders the issues as a human-readable report.
func Report(path string, issues []Issue) string {
	var b strings.Builder

	fmt.Fprintf(&b, "State validation report for %s\n", path)
	if len(issues) == 0 {
		b.WriteString("No validation issues found.\n")
		return b.String()
	}

	counts := make(map[IssueType]int)
	for _, issue := range issues {
		counts[issue.Type]++
	}

	fmt.Fprintf(&b, "Found %d issue(s):\n", len(issues))
	types := make([]string, 0, len(counts))
	for t := range counts {
		types = append(types, string(t))
	}
	sort.Strings(types)
	for _, t := range types {
		fmt.Fprintf(&b, "  %s: %d\n", t, counts[IssueType(t)])
	}
	b.WriteString("\n")

	for i, issue := range issues {
		fmt.Fprintf(&b, "Issue #%d: %s\n\n", i+1, issue)
	}

	return b.String()
}
