// Package ingest reads the two feeds: bank statement exports (CSV or OFX)
// and the Beacon ledger export (CSV). Malformed rows are skipped with a
// warning rather than failing the whole feed; a monthly statement with one
// mangled row should still reconcile.
package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/hwhitmarsh/beacon-reconcile/internal/model"
)

// bank statement CSV column layout.
const (
	bankColDate = iota
	bankColType
	bankColDescription
	bankColAmount
	bankColumns
)

// ReadBankCSV parses a bank statement export. Expected columns:
// Date,Type,Description,Amount with dates in DD-Mon-YY format. Identifiers
// are assigned positionally, so the same file always produces the same
// identifiers.
func ReadBankCSV(r io.Reader) ([]model.BankTransaction, error) {
	reader := csv.NewReader(stripBOM(r))
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read bank CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("bank CSV is empty")
	}

	start := 0
	if isBankHeader(records[0]) {
		start = 1
	}

	var transactions []model.BankTransaction
	for i, record := range records[start:] {
		line := start + i + 1

		if len(record) < bankColumns {
			slog.Warn("skipping short bank row", "line", line, "fields", len(record))
			continue
		}

		date, err := time.Parse(model.BankDateLayout, strings.TrimSpace(record[bankColDate]))
		if err != nil {
			slog.Warn("skipping bank row with bad date", "line", line, "date", record[bankColDate])
			continue
		}

		amount, err := parseAmount(record[bankColAmount])
		if err != nil {
			slog.Warn("skipping bank row with bad amount", "line", line, "amount", record[bankColAmount])
			continue
		}

		transactions = append(transactions, model.BankTransaction{
			Date:        date,
			ID:          fmt.Sprintf("BANK_%04d", len(transactions)+1),
			Type:        strings.TrimSpace(record[bankColType]),
			Description: strings.TrimSpace(record[bankColDescription]),
			Amount:      amount,
		})
	}

	slog.Info("bank feed loaded", "transactions", len(transactions), "rows", len(records)-start)
	return transactions, nil
}

// parseAmount parses a feed amount field. Exports group thousands with
// commas; those are stripped before parsing.
func parseAmount(field string) (decimal.Decimal, error) {
	return decimal.NewFromString(strings.ReplaceAll(strings.TrimSpace(field), ",", ""))
}

func isBankHeader(record []string) bool {
	return len(record) > 0 && strings.EqualFold(strings.TrimSpace(record[0]), "date")
}

// stripBOM removes a UTF-8 byte order mark; bank exports produced on Windows
// routinely carry one.
func stripBOM(r io.Reader) io.Reader {
	buffered := make([]byte, 3)
	n, err := io.ReadFull(r, buffered)
	if err != nil {
		return io.MultiReader(strings.NewReader(string(buffered[:n])), r)
	}
	if buffered[0] == 0xEF && buffered[1] == 0xBB && buffered[2] == 0xBF {
		return r
	}
	return io.MultiReader(strings.NewReader(string(buffered)), r)
}
