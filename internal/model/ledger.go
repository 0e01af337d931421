package model

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// LedgerEntry is a single row from the Beacon accounting feed.
//
// The Claimed flag is derived state kept for display convenience: the
// authoritative record of claims is the session's claimed-identifier set, and
// the flag must always mirror it. Everything else is immutable after
// ingestion.
type LedgerEntry struct {
	Date    time.Time
	ID      string
	RefNo   string
	Payee   string
	Detail  string
	Amount  decimal.Decimal
	Claimed bool
}

type ledgerEntryWire struct {
	ID      string `json:"id"`
	Date    string `json:"date"`
	RefNo   string `json:"trans_no"`
	Payee   string `json:"payee"`
	Detail  string `json:"detail"`
	Amount  string `json:"amount"`
	Claimed bool   `json:"claimed"`
}

// MarshalJSON serialises the date in ledger-feed format and the amount as an
// exact decimal string.
func (e LedgerEntry) MarshalJSON() ([]byte, error) {
	return json.Marshal(ledgerEntryWire{
		ID:      e.ID,
		Date:    e.Date.Format(LedgerDateLayout),
		RefNo:   e.RefNo,
		Payee:   e.Payee,
		Detail:  e.Detail,
		Amount:  e.Amount.String(),
		Claimed: e.Claimed,
	})
}

// UnmarshalJSON is the inverse of MarshalJSON.
func (e *LedgerEntry) UnmarshalJSON(data []byte) error {
	var w ledgerEntryWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	date, err := time.Parse(LedgerDateLayout, w.Date)
	if err != nil {
		return fmt.Errorf("invalid ledger entry date %q: %w", w.Date, err)
	}

	amount, err := decimal.NewFromString(w.Amount)
	if err != nil {
		return fmt.Errorf("invalid ledger entry amount %q: %w", w.Amount, err)
	}

	e.ID = w.ID
	e.Date = date
	e.RefNo = w.RefNo
	e.Payee = w.Payee
	e.Detail = w.Detail
	e.Amount = amount
	e.Claimed = w.Claimed

	return nil
}
