package ingest

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadLedgerCSV(t *testing.T) {
	input := `date,trans_no,payee,amount,detail
07/03/2024,4312,J Whittaker,13.00,annual membership
08/03/2024,4313,A Penhaligon,45.50,
`

	entries, err := ReadLedgerCSV(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, entries, 2)

	first := entries[0]
	assert.Equal(t, "LEDGER_0001", first.ID)
	assert.Equal(t, "4312", first.RefNo)
	assert.Equal(t, "J Whittaker", first.Payee)
	assert.Equal(t, "annual membership", first.Detail)
	assert.True(t, first.Amount.Equal(decimal.RequireFromString("13.00")))
	assert.Equal(t, 7, first.Date.Day())
	assert.Equal(t, 3, int(first.Date.Month()))
	assert.False(t, first.Claimed)
}

func TestReadLedgerCSVDetailOptional(t *testing.T) {
	input := "07/03/2024,4312,J Whittaker,13.00\n"

	entries, err := ReadLedgerCSV(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Empty(t, entries[0].Detail)
}

func TestReadLedgerCSVCommaGroupedAmount(t *testing.T) {
	input := "07/03/2024,4312,Village Hall Trust,\"2,500.00\",annual grant\n"

	entries, err := ReadLedgerCSV(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, entries[0].Amount.Equal(decimal.RequireFromString("2500.00")))
}

func TestReadLedgerCSVSkipsBadRows(t *testing.T) {
	input := `date,trans_no,payee,amount,detail
07/03/2024,4312,J Whittaker,13.00,
2024-03-08,4313,Wrong Date Format,13.00,
09/03/2024,4314,Bad Amount,NaN-ish,
10/03/2024,4315,B Ravenscroft,9.50,
`

	entries, err := ReadLedgerCSV(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "LEDGER_0002", entries[1].ID)
	assert.Equal(t, "B Ravenscroft", entries[1].Payee)
}

func TestReadLedgerCSVEmpty(t *testing.T) {
	_, err := ReadLedgerCSV(strings.NewReader(""))
	assert.Error(t, err)
}
