// Package export writes reconciliation results in formats the treasurer
// hands on: a flat CSV of proposals and their outcomes.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/hwhitmarsh/beacon-reconcile/internal/model"
)

var header = []string{
	"match_id", "status", "kind", "confidence",
	"bank_date", "bank_type", "bank_description", "bank_amount",
	"ledger_refs", "ledger_payees", "ledger_amounts", "comment",
}

// WriteCSV writes one row per proposal. Multi-entry proposals join their
// entry fields with a semicolon so the file stays one row per bank
// transaction decision.
func WriteCSV(w io.Writer, proposals []*model.MatchProposal) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write export header: %w", err)
	}

	for _, p := range proposals {
		refs := make([]string, len(p.Entries))
		payees := make([]string, len(p.Entries))
		amounts := make([]string, len(p.Entries))
		for i, e := range p.Entries {
			refs[i] = e.RefNo
			payees[i] = e.Payee
			amounts[i] = e.Amount.StringFixed(2)
		}

		row := []string{
			p.ID,
			string(p.Status),
			string(p.Kind),
			strconv.FormatFloat(p.Confidence, 'f', 4, 64),
			p.Bank.Date.Format(model.BankDateLayout),
			p.Bank.Type,
			p.Bank.Description,
			p.Bank.Amount.StringFixed(2),
			strings.Join(refs, ";"),
			strings.Join(payees, ";"),
			strings.Join(amounts, ";"),
			p.Comment,
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write export row for %s: %w", p.ID, err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to flush export: %w", err)
	}
	return nil
}

// WriteSettledCSV writes only settled proposals.
func WriteSettledCSV(w io.Writer, proposals []*model.MatchProposal) error {
	var settled []*model.MatchProposal
	for _, p := range proposals {
		if p.IsSettled() {
			settled = append(settled, p)
		}
	}
	return WriteCSV(w, settled)
}
