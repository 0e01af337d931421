package engine

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/hwhitmarsh/beacon-reconcile/internal/model"
	"github.com/hwhitmarsh/beacon-reconcile/internal/score"
)

func day(d int) time.Time {
	return time.Date(2024, 3, d, 0, 0, 0, 0, time.UTC)
}

func amt(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func bankTxn(id string, d int, description, amount string) model.BankTransaction {
	return model.BankTransaction{
		Date:        day(d),
		ID:          id,
		Type:        "FPI",
		Description: description,
		Amount:      amt(amount),
	}
}

func ledgerEntry(id string, d int, refNo, payee, amount string) model.LedgerEntry {
	return model.LedgerEntry{
		Date:   day(d),
		ID:     id,
		RefNo:  refNo,
		Payee:  payee,
		Amount: amt(amount),
	}
}

func newTestSession(bank []model.BankTransaction, ledger []model.LedgerEntry) *Session {
	return NewSession(score.DefaultConfig(), bank, ledger)
}

// proposalsFor filters the working set to one bank transaction.
func proposalsFor(s *Session, bankID string) []*model.MatchProposal {
	var out []*model.MatchProposal
	for _, p := range s.Proposals() {
		if p.Bank.ID == bankID {
			out = append(out, p)
		}
	}
	return out
}
