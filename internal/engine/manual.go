package engine

import (
	"fmt"

	"github.com/hwhitmarsh/beacon-reconcile/internal/common"
	"github.com/hwhitmarsh/beacon-reconcile/internal/model"
)

// CreateManualMatch settles a bank transaction against the ledger entries
// with the given reference numbers, bypassing the scorer. Every validation
// runs before any mutation: a failed override leaves the session exactly as
// it was.
func (s *Session) CreateManualMatch(bankID string, refNos []string) (*model.MatchProposal, error) {
	bank, err := s.findBank(bankID)
	if err != nil {
		return nil, err
	}
	if err := s.ensureUnsettled(bankID); err != nil {
		return nil, err
	}

	entries := make([]model.LedgerEntry, 0, len(refNos))
	seen := make(map[string]struct{}, len(refNos))
	for _, ref := range refNos {
		e, err := s.findEntryByRef(ref)
		if err != nil {
			return nil, err
		}
		if _, dup := seen[e.ID]; dup {
			return nil, fmt.Errorf("%w: reference %s resolves to entry %s twice", common.ErrEntryClaimed, ref, e.ID)
		}
		seen[e.ID] = struct{}{}
		if _, taken := s.claimed[e.ID]; taken {
			return nil, fmt.Errorf("%w: %s (reference %s)", common.ErrEntryClaimed, e.ID, ref)
		}
		entries = append(entries, *e)
	}

	p := &model.MatchProposal{
		ID:         s.newID(),
		Bank:       *bank,
		Entries:    entries,
		Kind:       model.KindManual,
		Status:     model.StatusPending,
		Confidence: 1.0,
		Scores:     model.Scores{Amount: 1.0, Date: 1.0, Name: 1.0},
	}

	if !p.Balanced() {
		s.nextID-- // identifier was never used
		return nil, fmt.Errorf("%w: bank amount %s, entry sum %s",
			common.ErrAmountMismatch, bank.Amount.String(), p.EntrySum().String())
	}

	if err := s.settle(p, model.StatusManual); err != nil {
		s.nextID--
		return nil, err
	}
	s.proposals = append(s.proposals, p)
	s.record(p, model.StatusPending, model.StatusManual, "manual match")

	s.logger.Info("manual match created", "proposal", p.ID, "bank", bankID, "entries", len(entries))
	return p, nil
}

// CreateManuallyResolved settles a bank transaction that will never match a
// ledger entry, recording the operator's explanation. The proposal claims no
// entries and always succeeds for an unsettled transaction.
func (s *Session) CreateManuallyResolved(bankID, comment string) (*model.MatchProposal, error) {
	bank, err := s.findBank(bankID)
	if err != nil {
		return nil, err
	}
	if err := s.ensureUnsettled(bankID); err != nil {
		return nil, err
	}

	p := &model.MatchProposal{
		ID:         s.newID(),
		Bank:       *bank,
		Entries:    []model.LedgerEntry{},
		Kind:       model.KindResolved,
		Status:     model.StatusPending,
		Confidence: 1.0,
		Scores:     model.Scores{Amount: 1.0, Date: 1.0, Name: 1.0},
		Comment:    comment,
	}

	if err := s.settle(p, model.StatusResolved); err != nil {
		s.nextID--
		return nil, err
	}
	s.proposals = append(s.proposals, p)
	s.record(p, model.StatusPending, model.StatusResolved, "manually resolved: "+comment)

	s.logger.Info("transaction manually resolved", "proposal", p.ID, "bank", bankID)
	return p, nil
}

func (s *Session) findBank(bankID string) (*model.BankTransaction, error) {
	for i := range s.bank {
		if s.bank[i].ID == bankID {
			return &s.bank[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s", common.ErrBankNotFound, bankID)
}

func (s *Session) findEntryByRef(refNo string) (*model.LedgerEntry, error) {
	for _, e := range s.ledger {
		if e.RefNo == refNo {
			return e, nil
		}
	}
	return nil, fmt.Errorf("%w: reference %s", common.ErrEntryNotFound, refNo)
}

func (s *Session) ensureUnsettled(bankID string) error {
	for _, p := range s.confirmed {
		if p.Status.IsSettled() && p.Bank.ID == bankID {
			return fmt.Errorf("%w: %s is settled by %s", common.ErrAlreadySettled, bankID, p.ID)
		}
	}
	return nil
}
