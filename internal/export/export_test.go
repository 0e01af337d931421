package export

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hwhitmarsh/beacon-reconcile/internal/model"
)

func exportProposal(id string, status model.MatchStatus, entryAmounts ...string) *model.MatchProposal {
	sum := decimal.Zero
	entries := make([]model.LedgerEntry, len(entryAmounts))
	for i, a := range entryAmounts {
		amount := decimal.RequireFromString(a)
		sum = sum.Add(amount)
		entries[i] = model.LedgerEntry{
			Date:   time.Date(2024, 3, 7, 0, 0, 0, 0, time.UTC),
			ID:     "LEDGER_000" + string(rune('1'+i)),
			RefNo:  "431" + string(rune('2'+i)),
			Payee:  "J Whittaker",
			Amount: amount,
		}
	}

	return &model.MatchProposal{
		ID: id,
		Bank: model.BankTransaction{
			Date:        time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC),
			ID:          "BANK_0001",
			Type:        "FPI",
			Description: "WHITTAKER J",
			Amount:      sum,
		},
		Entries:    entries,
		Kind:       model.KindOneToTwo,
		Status:     status,
		Confidence: 0.711,
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	p := exportProposal("MATCH_0001", model.StatusConfirmed, "13.00", "13.00")

	require.NoError(t, WriteCSV(&buf, []*model.MatchProposal{p}))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "match_id", rows[0][0])
	assert.Equal(t, "MATCH_0001", rows[1][0])
	assert.Equal(t, "confirmed", rows[1][1])
	assert.Equal(t, "one_to_two", rows[1][2])
	assert.Equal(t, "0.7110", rows[1][3])
	assert.Equal(t, "05-Mar-24", rows[1][4])
	assert.Equal(t, "26.00", rows[1][7])
	assert.Equal(t, "4312;4313", rows[1][8])
	assert.Equal(t, "13.00;13.00", rows[1][10])
}

func TestWriteSettledCSVFilters(t *testing.T) {
	var buf bytes.Buffer
	proposals := []*model.MatchProposal{
		exportProposal("MATCH_0001", model.StatusConfirmed, "13.00"),
		exportProposal("MATCH_0002", model.StatusPending, "9.50"),
		exportProposal("MATCH_0003", model.StatusManual, "45.00"),
	}

	require.NoError(t, WriteSettledCSV(&buf, proposals))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "MATCH_0001", rows[1][0])
	assert.Equal(t, "MATCH_0003", rows[2][0])
}

func TestWriteCSVEmptyEntries(t *testing.T) {
	var buf bytes.Buffer
	p := exportProposal("MATCH_0001", model.StatusResolved)
	p.Kind = model.KindResolved
	p.Comment = "refund handled outside the ledger"

	require.NoError(t, WriteCSV(&buf, []*model.MatchProposal{p}))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, "", rows[1][8])
	assert.Equal(t, "refund handled outside the ledger", rows[1][11])
}
