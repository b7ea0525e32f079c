package journal

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/books/internal/apperr"
)

// mockAccounts implements AccountChecker for testing.
type mockAccounts struct {
	ids map[string]bool
}

func (m *mockAccounts) Exists(id string) bool {
	return m.ids[id]
}

func newMockAccounts(ids ...string) *mockAccounts {
	m := &mockAccounts{ids: make(map[string]bool)}
	for _, id := range ids {
		m.ids[id] = true
	}
	return m
}

func date(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func balanced(debitAcct, creditAcct, amount string) EntryInput {
	return EntryInput{
		Date:        date(2024, 1, 15),
		Description: "Balanced entry",
		Lines: []LineInput{
			{AccountID: debitAcct, Debit: dec(amount)},
			{AccountID: creditAcct, Credit: dec(amount)},
		},
	}
}

func TestValidateEntry_Balanced(t *testing.T) {
	accts := newMockAccounts("1010", "4010")
	require.NoError(t, ValidateEntry(balanced("1010", "4010", "1000"), accts))
}

func TestValidateEntry_SplitLines(t *testing.T) {
	accts := newMockAccounts("1010", "5020", "5030")
	in := EntryInput{
		Date:        date(2024, 1, 15),
		Description: "Split purchase",
		Lines: []LineInput{
			{AccountID: "5020", Debit: dec("60.25")},
			{AccountID: "5030", Debit: dec("39.75")},
			{AccountID: "1010", Credit: dec("100.00")},
		},
	}
	require.NoError(t, ValidateEntry(in, accts))
}

func TestValidateEntry_Unbalanced(t *testing.T) {
	accts := newMockAccounts("1010", "4010")
	in := EntryInput{
		Date:        date(2024, 1, 15),
		Description: "Unbalanced",
		Lines: []LineInput{
			{AccountID: "1010", Debit: dec("100")},
			{AccountID: "4010", Credit: dec("90")},
		},
	}
	err := ValidateEntry(in, accts)
	require.Error(t, err)
	require.True(t, apperr.IsValidation(err))

	var ve *apperr.ValidationError
	require.ErrorAs(t, err, &ve)
	require.NotNil(t, ve.Required)
	require.NotNil(t, ve.Actual)
	assert.True(t, ve.Required.Equal(dec("100")))
	assert.True(t, ve.Actual.Equal(dec("90")))
	assert.Contains(t, err.Error(), "required 100.00, actual 90.00")
}

func TestValidateEntry_OneCentOff(t *testing.T) {
	accts := newMockAccounts("1010", "4010")
	in := balanced("1010", "4010", "100.00")
	in.Lines[1].Credit = dec("100.01")
	assert.True(t, apperr.IsValidation(ValidateEntry(in, accts)))
}

func TestValidateEntry_Rules(t *testing.T) {
	accts := newMockAccounts("1010", "4010")
	tests := []struct {
		name    string
		mutate  func(*EntryInput)
		wantMsg string
	}{
		{"missing date", func(in *EntryInput) { in.Date = time.Time{} }, "Date: is required"},
		{"missing description", func(in *EntryInput) { in.Description = "" }, "Description: is required"},
		{"single line", func(in *EntryInput) { in.Lines = in.Lines[:1] }, "Lines: needs at least 2 items"},
		{"missing account", func(in *EntryInput) { in.Lines[0].AccountID = "" }, "Lines[0].AccountID: is required"},
		{"negative", func(in *EntryInput) {
			in.Lines[0].Debit = dec("-5")
			in.Lines[1].Credit = dec("-5")
		}, "non-negative"},
		{"both sides", func(in *EntryInput) { in.Lines[0].Credit = dec("1") }, "exactly one of debit or credit"},
		{"neither side", func(in *EntryInput) { in.Lines[0].Debit = decimal.Zero }, "exactly one of debit or credit"},
		{"sub-cent", func(in *EntryInput) {
			in.Lines[0].Debit = dec("10.005")
			in.Lines[1].Credit = dec("10.005")
		}, "more than 2 decimal places"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := balanced("1010", "4010", "10")
			tt.mutate(&in)
			err := ValidateEntry(in, accts)
			require.Error(t, err)
			assert.True(t, apperr.IsValidation(err), "kind %s", apperr.KindOf(err))
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestValidateEntry_UnknownAccount(t *testing.T) {
	accts := newMockAccounts("1010")
	err := ValidateEntry(balanced("1010", "9999", "10"), accts)
	require.Error(t, err)
	assert.True(t, apperr.IsNotFound(err))
	assert.Contains(t, err.Error(), "9999")
}
