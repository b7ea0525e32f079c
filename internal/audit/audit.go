// Package audit keeps an append-only CSV trail of the changes made to a
// books directory, one row per stored entry, reconciliation, matching run
// or lock.
package audit

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Action names a recorded change.
type Action string

const (
	ActionInit                  Action = "init"
	ActionEntryCreated          Action = "entry_created"
	ActionReconciliationCreated Action = "reconciliation_created"
	ActionReconciliationMatched Action = "reconciliation_matched"
	ActionReconciliationLocked  Action = "reconciliation_locked"
)

// Record is one row in the audit log.
type Record struct {
	Timestamp  time.Time
	Actor      string
	Action     Action
	ResourceID string
	Details    string
}

// Header is the CSV header for audit-log.csv.
const Header = "timestamp,actor,action,resource_id,details"

// File is the log location relative to the books directory.
var File = filepath.Join("logs", "audit-log.csv")

const (
	numFields     = 5
	colTimestamp  = 0
	colActor      = 1
	colAction     = 2
	colResourceID = 3
	colDetails    = 4
)

// MarshalRecord converts a Record to a CSV row.
func MarshalRecord(r Record) []string {
	row := make([]string, numFields)
	row[colTimestamp] = r.Timestamp.UTC().Format(time.RFC3339)
	row[colActor] = r.Actor
	row[colAction] = string(r.Action)
	row[colResourceID] = r.ResourceID
	row[colDetails] = r.Details
	return row
}

// UnmarshalRecord converts a CSV row to a Record.
func UnmarshalRecord(row []string) (Record, error) {
	if len(row) != numFields {
		return Record{}, fmt.Errorf("expected %d fields, got %d", numFields, len(row))
	}
	ts, err := time.Parse(time.RFC3339, row[colTimestamp])
	if err != nil {
		return Record{}, fmt.Errorf("parsing timestamp %q: %w", row[colTimestamp], err)
	}
	return Record{
		Timestamp:  ts,
		Actor:      row[colActor],
		Action:     Action(row[colAction]),
		ResourceID: row[colResourceID],
		Details:    row[colDetails],
	}, nil
}

// Append writes records to <root>/logs/audit-log.csv, creating the file and
// header if needed.
func Append(root string, records ...Record) error {
	if len(records) == 0 {
		return nil
	}
	path := filepath.Join(root, File)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating logs dir: %w", err)
	}

	needsHeader := false
	if _, err := os.Stat(path); os.IsNotExist(err) {
		needsHeader = true
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening audit log: %w", err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if needsHeader {
		if err := cw.Write(strings.Split(Header, ",")); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}
	for i, r := range records {
		if err := cw.Write(MarshalRecord(r)); err != nil {
			return fmt.Errorf("writing record %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// Read returns every record in <root>/logs/audit-log.csv, oldest first.
// A missing log reads as empty.
func Read(root string) ([]Record, error) {
	f, err := os.Open(filepath.Join(root, File))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening audit log: %w", err)
	}
	defer f.Close()
	return readRecords(f)
}

func readRecords(r io.Reader) ([]Record, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading audit log CSV: %w", err)
	}
	if len(rows) <= 1 {
		return nil, nil
	}

	records := make([]Record, 0, len(rows)-1)
	for i, row := range rows[1:] {
		rec, err := UnmarshalRecord(row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

// Filter returns the records whose ResourceID starts with prefix.
func Filter(records []Record, prefix string) []Record {
	if prefix == "" {
		return records
	}
	var out []Record
	for _, r := range records {
		if strings.HasPrefix(r.ResourceID, prefix) {
			out = append(out, r)
		}
	}
	return out
}
