package id

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// FormatEntryID returns an entry ID like "2025-01-001".
func FormatEntryID(year, month, seq int) string {
	return fmt.Sprintf("%04d-%02d-%03d", year, month, seq)
}

// FormatLineID returns a line ID like "2025-01-001-01". Lines are numbered from 1.
func FormatLineID(entryID string, line int) string {
	return fmt.Sprintf("%s-%02d", entryID, line)
}

// ParseEntryID parses "2025-01-001" (or a line ID "2025-01-001-02") into year, month, seq.
func ParseEntryID(id string) (year, month, seq int, err error) {
	parts := strings.Split(id, "-")
	if len(parts) != 3 && len(parts) != 4 {
		return 0, 0, 0, fmt.Errorf("invalid entry ID format: %q", id)
	}

	year, err = strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, 0, fmt.Errorf("invalid year in entry ID %q: %w", id, err)
	}

	month, err = strconv.Atoi(parts[1])
	if err != nil || month < 1 || month > 12 {
		return 0, 0, 0, fmt.Errorf("invalid month in entry ID %q", id)
	}

	seq, err = strconv.Atoi(parts[2])
	if err != nil {
		return 0, 0, 0, fmt.Errorf("invalid sequence in entry ID %q: %w", id, err)
	}

	return year, month, seq, nil
}

// EntryOf strips the line suffix from a line ID.
// "2025-01-001-02" -> "2025-01-001"
func EntryOf(lineID string) string {
	parts := strings.Split(lineID, "-")
	if len(parts) == 4 {
		return strings.Join(parts[:3], "-")
	}
	return lineID
}

// NewReconciliationID returns a random reconciliation identifier.
func NewReconciliationID() string {
	return uuid.NewString()
}
