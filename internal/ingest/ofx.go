package ingest

import (
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strings"

	"github.com/aclindsa/ofxgo"
	"github.com/shopspring/decimal"

	"github.com/hwhitmarsh/beacon-reconcile/internal/model"
)

var (
	severityPattern = regexp.MustCompile(`(?i)<SEVERITY>(Info|Warn|Error)</SEVERITY>`)
	openTagPattern  = regexp.MustCompile(`(?m)^(\s*<[A-Z][A-Z0-9._]*[A-Z0-9])$`)
)

// preprocessOFX fixes common formatting defects in bank OFX exports before
// parsing: leading whitespace, mixed-case SEVERITY values, and SGML-style
// tags missing their closing bracket.
func preprocessOFX(content string) string {
	content = strings.TrimLeft(content, " \t\r\n")
	content = severityPattern.ReplaceAllStringFunc(content, strings.ToUpper)
	content = openTagPattern.ReplaceAllString(content, "$1>")
	return content
}

// ReadBankOFX parses a bank statement in OFX/QFX format into the same
// transaction records the CSV reader produces. Statement amounts are signed
// (debits negative); reconciliation works on magnitudes, so the sign is
// dropped.
func ReadBankOFX(r io.Reader) ([]model.BankTransaction, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read OFX file: %w", err)
	}

	resp, err := ofxgo.ParseResponse(strings.NewReader(preprocessOFX(string(content))))
	if err != nil {
		return nil, fmt.Errorf("failed to parse OFX file: %w", err)
	}

	var transactions []model.BankTransaction
	statements := 0
	for _, msg := range resp.Bank {
		stmt, ok := msg.(*ofxgo.StatementResponse)
		if !ok || stmt.BankTranList == nil {
			continue
		}
		statements++

		for _, tx := range stmt.BankTranList.Transactions {
			amount := decimal.NewFromBigRat(&tx.TrnAmt.Rat, 2)
			if amount.Sign() < 0 {
				amount = amount.Neg()
			}

			transactions = append(transactions, model.BankTransaction{
				Date:        tx.DtPosted.Time,
				ID:          fmt.Sprintf("BANK_%04d", len(transactions)+1),
				Type:        fmt.Sprintf("%v", tx.TrnType),
				Description: ofxDescription(tx),
				Amount:      amount,
			})
		}
	}

	slog.Info("OFX feed loaded", "transactions", len(transactions), "statements", statements)
	return transactions, nil
}

// ofxDescription picks the most informative description field: payee name
// when present, then the name field, then the memo.
func ofxDescription(tx ofxgo.Transaction) string {
	if tx.Payee != nil && tx.Payee.Name != "" {
		return strings.TrimSpace(string(tx.Payee.Name))
	}
	if name := strings.TrimSpace(string(tx.Name)); name != "" {
		return name
	}
	return strings.TrimSpace(string(tx.Memo))
}
