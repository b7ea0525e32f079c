package journal

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/books/internal/model"
)

func TestReadEntries(t *testing.T) {
	csv := ImportHeader + "\n" +
		"e1,2024-01-15,Client payment,INV-1042,1010,1000.00,,\n" +
		"e1,,,,4010,,1000.00,consulting\n" +
		"e2,2024-01-18,Software,,5020,40.00,,\n" +
		"e2,,,,1010,,40.00,\n"

	entries, err := ReadEntries(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, entries, 2)

	e1 := entries[0]
	assert.Equal(t, 2, e1.Row)
	assert.Equal(t, "e1", e1.Ref)
	assert.Equal(t, date(2024, 1, 15), e1.Input.Date)
	assert.Equal(t, "Client payment", e1.Input.Description)
	assert.Equal(t, "INV-1042", e1.Input.Reference)
	require.Len(t, e1.Input.Lines, 2)
	assert.True(t, e1.Input.Lines[0].Debit.Equal(dec("1000")))
	assert.True(t, e1.Input.Lines[1].Credit.Equal(dec("1000")))
	assert.Equal(t, "consulting", e1.Input.Lines[1].Description)

	assert.Equal(t, 4, entries[1].Row)
	assert.Len(t, entries[1].Input.Lines, 2)
}

func TestReadEntries_Errors(t *testing.T) {
	tests := map[string]string{
		"missing ref": ",2024-01-15,x,,1010,1.00,,\n",
		"bad date":    "e1,15/01/2024,x,,1010,1.00,,\n",
		"bad debit":   "e1,2024-01-15,x,,1010,abc,,\n",
		"bad credit":  "e1,2024-01-15,x,,1010,,abc,\n",
		"short row":   "e1,2024-01-15\n",
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ReadEntries(strings.NewReader(ImportHeader + "\n" + body))
			require.Error(t, err)
		})
	}
}

func TestReadEntries_HeaderOnly(t *testing.T) {
	entries, err := ReadEntries(strings.NewReader(ImportHeader + "\n"))
	require.NoError(t, err)
	assert.Nil(t, entries)
}

func TestWriteLedgerLines(t *testing.T) {
	lines := []model.LedgerLine{
		{
			LineID: "2024-01-001-01", EntryID: "2024-01-001", Date: date(2024, 1, 15),
			AccountID: "1010", Description: "Client payment", Reference: "INV-1042",
			Debit: dec("1000"), Direction: model.DirectionDebit, Amount: dec("1000"),
		},
		{
			LineID: "2024-01-002-02", EntryID: "2024-01-002", Date: date(2024, 1, 18),
			AccountID: "1010", Description: "Software",
			Credit: dec("40"), Direction: model.DirectionCredit, Amount: dec("-40"),
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteLedgerLines(&buf, lines))

	got := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, got, 3)
	assert.Equal(t, LedgerHeader, got[0])
	assert.Equal(t, "2024-01-001-01,2024-01-001,2024-01-15,1010,Client payment,INV-1042,debit,1000.00,,1000.00", got[1])
	assert.Equal(t, "2024-01-002-02,2024-01-002,2024-01-18,1010,Software,,credit,,40.00,-40.00", got[2])
}
