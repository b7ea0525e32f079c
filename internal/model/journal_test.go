package model

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestNewLedgerLine(t *testing.T) {
	entry := JournalEntry{
		ID:          "2024-01-001",
		Date:        time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
		Description: "Client payment",
		Reference:   "INV-1042",
	}

	tests := []struct {
		name     string
		line     JournalLine
		wantDir  Direction
		wantAmt  string
		wantDesc string
	}{
		{"debit leg", JournalLine{ID: "2024-01-001-01", Debit: dec("100.00")}, DirectionDebit, "100", "Client payment"},
		{"credit leg", JournalLine{ID: "2024-01-001-02", Credit: dec("100.00"), Description: "override"}, DirectionCredit, "-100", "override"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ll := NewLedgerLine(entry, tt.line)
			assert.Equal(t, tt.wantDir, ll.Direction)
			assert.True(t, ll.Amount.Equal(dec(tt.wantAmt)), "amount %s", ll.Amount)
			assert.Equal(t, tt.wantDesc, ll.Description)
			assert.Equal(t, "INV-1042", ll.Reference)
			assert.Equal(t, entry.ID, ll.EntryID)
		})
	}
}

func TestEntryTotals(t *testing.T) {
	e := JournalEntry{Lines: []JournalLine{
		{Debit: dec("60")},
		{Debit: dec("40")},
		{Credit: dec("100")},
	}}
	d, c := e.Totals()
	assert.True(t, d.Equal(dec("100")))
	assert.True(t, c.Equal(dec("100")))
}

func TestAccountType(t *testing.T) {
	for _, at := range AccountTypes {
		got, err := ParseAccountType(string(at))
		assert.NoError(t, err)
		assert.Equal(t, at, got)
	}
	_, err := ParseAccountType("income")
	assert.Error(t, err)

	assert.True(t, AccountTypeAsset.DebitNormal())
	assert.True(t, AccountTypeExpense.DebitNormal())
	assert.False(t, AccountTypeRevenue.DebitNormal())
}

func TestStatementSignedAmount(t *testing.T) {
	tests := []struct {
		typ  StatementType
		amt  string
		want string
	}{
		{StatementDebit, "25.00", "-25"},
		{StatementDebit, "-25.00", "-25"},
		{StatementCredit, "-25.00", "25"},
		{"", "-25.00", "-25"},
		{"DEBIT", "25.00", "-25"},
	}
	for _, tt := range tests {
		s := StatementLine{Amount: decimal.NewNullDecimal(dec(tt.amt)), Type: tt.typ}
		assert.True(t, s.SignedAmount().Equal(dec(tt.want)), "%s %s -> %s", tt.typ, tt.amt, s.SignedAmount())
	}
}

func TestDateRangeContains(t *testing.T) {
	d := func(day int) time.Time { return time.Date(2024, 1, day, 0, 0, 0, 0, time.UTC) }
	r := DateRange{From: d(10), To: d(20)}
	assert.True(t, r.Contains(d(10)))
	assert.True(t, r.Contains(d(20)))
	assert.False(t, r.Contains(d(9)))
	assert.False(t, r.Contains(d(21)))
	assert.True(t, r.Contains(d(20).Add(23*time.Hour+59*time.Minute)), "To covers its whole day")
	assert.Equal(t, d(21), r.End())
	assert.True(t, DateRange{}.Contains(d(1)))
}
