package id

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatEntryID(t *testing.T) {
	tests := []struct {
		year, month, seq int
		want             string
	}{
		{2025, 1, 1, "2025-01-001"},
		{2025, 12, 99, "2025-12-099"},
		{2025, 1, 123, "2025-01-123"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatEntryID(tt.year, tt.month, tt.seq))
	}
}

func TestFormatLineID(t *testing.T) {
	assert.Equal(t, "2025-01-001-01", FormatLineID("2025-01-001", 1))
	assert.Equal(t, "2025-01-001-12", FormatLineID("2025-01-001", 12))
}

func TestParseEntryID(t *testing.T) {
	tests := []struct {
		input               string
		wantYear, wantMonth int
		wantSeq             int
	}{
		{"2025-01-001", 2025, 1, 1},
		{"2025-12-099", 2025, 12, 99},
		{"2025-01-001-01", 2025, 1, 1},
		{"2024-03-017-03", 2024, 3, 17},
	}
	for _, tt := range tests {
		year, month, seq, err := ParseEntryID(tt.input)
		require.NoError(t, err, "input: %s", tt.input)
		assert.Equal(t, tt.wantYear, year)
		assert.Equal(t, tt.wantMonth, month)
		assert.Equal(t, tt.wantSeq, seq)
	}
}

func TestParseEntryID_Errors(t *testing.T) {
	for _, input := range []string{"", "not-valid", "2025-01", "xxxx-01-001", "2025-13-001", "2025-01-abc"} {
		_, _, _, err := ParseEntryID(input)
		assert.Error(t, err, "expected error for input: %s", input)
	}
}

func TestEntryOf(t *testing.T) {
	assert.Equal(t, "2025-01-001", EntryOf("2025-01-001-02"))
	assert.Equal(t, "2025-01-001", EntryOf("2025-01-001"))
	assert.Equal(t, "", EntryOf(""))
}

func TestNewReconciliationID(t *testing.T) {
	a, b := NewReconciliationID(), NewReconciliationID()
	assert.NotEqual(t, a, b)
	_, err := uuid.Parse(a)
	assert.NoError(t, err)
}
