package model

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Date layouts are a compatibility contract with the feeds that produce the
// source files: the bank export uses DD-Mon-YY, the Beacon ledger export uses
// DD/MM/YYYY. Both must round-trip exactly through the persisted state.
const (
	BankDateLayout   = "02-Jan-06"
	LedgerDateLayout = "02/01/2006"
)

// BankTransaction is a single row from the bank feed. Immutable after
// ingestion; the ID is assigned from ingestion order and is stable across
// runs as long as the feed itself is stable.
type BankTransaction struct {
	Date        time.Time
	ID          string
	Type        string
	Description string
	Amount      decimal.Decimal
}

type bankTransactionWire struct {
	ID          string `json:"id"`
	Date        string `json:"date"`
	Type        string `json:"type"`
	Description string `json:"description"`
	Amount      string `json:"amount"`
}

// MarshalJSON serialises the date in bank-feed format and the amount as an
// exact decimal string. Amounts are never written as binary floating point:
// the conservation invariants depend on exact equality.
func (t BankTransaction) MarshalJSON() ([]byte, error) {
	return json.Marshal(bankTransactionWire{
		ID:          t.ID,
		Date:        t.Date.Format(BankDateLayout),
		Type:        t.Type,
		Description: t.Description,
		Amount:      t.Amount.String(),
	})
}

// UnmarshalJSON is the inverse of MarshalJSON.
func (t *BankTransaction) UnmarshalJSON(data []byte) error {
	var w bankTransactionWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	date, err := time.Parse(BankDateLayout, w.Date)
	if err != nil {
		return fmt.Errorf("invalid bank transaction date %q: %w", w.Date, err)
	}

	amount, err := decimal.NewFromString(w.Amount)
	if err != nil {
		return fmt.Errorf("invalid bank transaction amount %q: %w", w.Amount, err)
	}

	t.ID = w.ID
	t.Date = date
	t.Type = w.Type
	t.Description = w.Description
	t.Amount = amount

	return nil
}
