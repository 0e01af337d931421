// Package model defines the core domain records shared by every part of the
// reconciliation engine: bank transactions, ledger entries, and the match
// proposals that pair them.
package model

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// MatchStatus is the review state of a proposal.
type MatchStatus string

// Proposal statuses. Confirmed, manual and resolved all count as settled:
// they claim their ledger entries exclusively and retire the bank transaction
// from candidate generation.
const (
	StatusPending   MatchStatus = "pending"
	StatusConfirmed MatchStatus = "confirmed"
	StatusRejected  MatchStatus = "rejected"
	StatusSkipped   MatchStatus = "skipped"
	StatusManual    MatchStatus = "manual"
	StatusResolved  MatchStatus = "resolved"
)

// IsSettled reports whether the status claims ledger entries exclusively.
// Always test settledness through this predicate rather than comparing
// against individual statuses.
func (s MatchStatus) IsSettled() bool {
	switch s {
	case StatusConfirmed, StatusManual, StatusResolved:
		return true
	default:
		return false
	}
}

// Valid reports whether s is a known status value.
func (s MatchStatus) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusRejected, StatusSkipped, StatusManual, StatusResolved:
		return true
	default:
		return false
	}
}

// MatchKind describes how a proposal was produced and how many ledger
// entries it references.
type MatchKind string

// Proposal kinds.
const (
	KindOneToOne MatchKind = "one_to_one"
	KindOneToTwo MatchKind = "one_to_two"
	KindManual   MatchKind = "manual"
	KindResolved MatchKind = "resolved"
	KindNoMatch  MatchKind = "no_match"
)

// Scores holds the component sub-scores behind a confidence value, kept so a
// reviewer can see why a pairing was suggested.
type Scores struct {
	Amount float64
	Date   float64
	Name   float64
}

// MatchProposal is a candidate or settled correspondence between one bank
// transaction and zero, one or two ledger entries.
//
// Proposals are identified by ID. Status is mutable, so structural equality
// of whole proposals is unreliable for lookup or removal; all bookkeeping
// must go through the ID.
type MatchProposal struct {
	ID         string
	Bank       BankTransaction
	Entries    []LedgerEntry
	Kind       MatchKind
	Status     MatchStatus
	Confidence float64
	Scores     Scores
	Comment    string
}

// IsSettled reports whether the proposal currently claims its entries.
func (p *MatchProposal) IsSettled() bool {
	return p.Status.IsSettled()
}

// EntryIDs returns the referenced ledger-entry identifiers in order.
func (p *MatchProposal) EntryIDs() []string {
	ids := make([]string, len(p.Entries))
	for i, e := range p.Entries {
		ids[i] = e.ID
	}
	return ids
}

// References reports whether the proposal references the given ledger entry.
func (p *MatchProposal) References(entryID string) bool {
	for _, e := range p.Entries {
		if e.ID == entryID {
			return true
		}
	}
	return false
}

// EntrySum returns the exact sum of the referenced entry amounts.
func (p *MatchProposal) EntrySum() decimal.Decimal {
	sum := decimal.Zero
	for _, e := range p.Entries {
		sum = sum.Add(e.Amount)
	}
	return sum
}

// Balanced reports whether the bank amount equals the exact entry sum. A
// proposal with no entries is trivially balanced.
func (p *MatchProposal) Balanced() bool {
	if len(p.Entries) == 0 {
		return true
	}
	return p.Bank.Amount.Equal(p.EntrySum())
}

type matchProposalWire struct {
	ID          string          `json:"id"`
	Bank        BankTransaction `json:"bank_transaction"`
	Entries     []LedgerEntry   `json:"ledger_entries"`
	Kind        MatchKind       `json:"kind"`
	Status      MatchStatus     `json:"status"`
	Confidence  float64         `json:"confidence"`
	AmountScore float64         `json:"amount_score"`
	DateScore   float64         `json:"date_score"`
	NameScore   float64         `json:"name_score"`
	Comment     string          `json:"comment,omitempty"`
}

// MarshalJSON flattens the sub-scores into the wire record.
func (p *MatchProposal) MarshalJSON() ([]byte, error) {
	entries := p.Entries
	if entries == nil {
		entries = []LedgerEntry{}
	}
	return json.Marshal(matchProposalWire{
		ID:          p.ID,
		Bank:        p.Bank,
		Entries:     entries,
		Kind:        p.Kind,
		Status:      p.Status,
		Confidence:  p.Confidence,
		AmountScore: p.Scores.Amount,
		DateScore:   p.Scores.Date,
		NameScore:   p.Scores.Name,
		Comment:     p.Comment,
	})
}

// UnmarshalJSON is the inverse of MarshalJSON. Decoding is deliberately
// permissive about status values: the state-file validator needs to load and
// report records whose status is invalid, so validity is checked by callers
// through MatchStatus.Valid rather than rejected here.
func (p *MatchProposal) UnmarshalJSON(data []byte) error {
	var w matchProposalWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	p.ID = w.ID
	p.Bank = w.Bank
	p.Entries = w.Entries
	p.Kind = w.Kind
	p.Status = w.Status
	p.Confidence = w.Confidence
	p.Scores = Scores{Amount: w.AmountScore, Date: w.DateScore, Name: w.NameScore}
	p.Comment = w.Comment

	return nil
}
