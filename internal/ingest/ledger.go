package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/hwhitmarsh/beacon-reconcile/internal/model"
)

// ledger CSV column layout.
const (
	ledgerColDate = iota
	ledgerColRefNo
	ledgerColPayee
	ledgerColAmount
	ledgerColDetail
	ledgerColumns
)

// ReadLedgerCSV parses a Beacon ledger export. Expected columns:
// date,trans_no,payee,amount,detail with dates in DD/MM/YYYY format. The
// detail column is optional.
func ReadLedgerCSV(r io.Reader) ([]model.LedgerEntry, error) {
	reader := csv.NewReader(stripBOM(r))
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read ledger CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("ledger CSV is empty")
	}

	start := 0
	if isLedgerHeader(records[0]) {
		start = 1
	}

	var entries []model.LedgerEntry
	for i, record := range records[start:] {
		line := start + i + 1

		if len(record) < ledgerColumns-1 {
			slog.Warn("skipping short ledger row", "line", line, "fields", len(record))
			continue
		}

		date, err := time.Parse(model.LedgerDateLayout, strings.TrimSpace(record[ledgerColDate]))
		if err != nil {
			slog.Warn("skipping ledger row with bad date", "line", line, "date", record[ledgerColDate])
			continue
		}

		amount, err := parseAmount(record[ledgerColAmount])
		if err != nil {
			slog.Warn("skipping ledger row with bad amount", "line", line, "amount", record[ledgerColAmount])
			continue
		}

		detail := ""
		if len(record) > ledgerColDetail {
			detail = strings.TrimSpace(record[ledgerColDetail])
		}

		entries = append(entries, model.LedgerEntry{
			Date:   date,
			ID:     fmt.Sprintf("LEDGER_%04d", len(entries)+1),
			RefNo:  strings.TrimSpace(record[ledgerColRefNo]),
			Payee:  strings.TrimSpace(record[ledgerColPayee]),
			Detail: detail,
			Amount: amount,
		})
	}

	slog.Info("ledger feed loaded", "entries", len(entries), "rows", len(records)-start)
	return entries, nil
}

func isLedgerHeader(record []string) bool {
	return len(record) > 0 && strings.EqualFold(strings.TrimSpace(record[0]), "date")
}
