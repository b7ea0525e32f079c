package journal

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/books/internal/model"
)

// ImportHeader is the CSV header for journal import files. Rows sharing an
// entry_ref form one entry; date, description and reference come from its first row.
const ImportHeader = "entry_ref,date,description,reference,account_id,debit,credit,memo"

// LedgerHeader is the CSV header for ledger line exports.
const LedgerHeader = "line_id,entry_id,date,account_id,description,reference,direction,debit,credit,amount"

const (
	numImportFields = 8
	dateFormat      = "2006-01-02"
	colRef          = 0
	colDate         = 1
	colDesc         = 2
	colReference    = 3
	colAcctID       = 4
	colDebit        = 5
	colCredit       = 6
	colMemo         = 7
)

// ImportedEntry is one entry read from an import file.
type ImportedEntry struct {
	Row   int
	Ref   string
	Input EntryInput
}

// ReadEntries reads an import CSV and groups its rows into entries, in order
// of first appearance.
func ReadEntries(r io.Reader) ([]ImportedEntry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numImportFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading journal CSV: %w", err)
	}
	if len(records) <= 1 {
		return nil, nil
	}

	var entries []ImportedEntry
	index := make(map[string]int)
	for i, rec := range records[1:] {
		row := i + 2
		ref := strings.TrimSpace(rec[colRef])
		if ref == "" {
			return nil, fmt.Errorf("row %d: missing entry_ref", row)
		}
		line, err := unmarshalLine(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", row, err)
		}

		pos, seen := index[ref]
		if !seen {
			var date time.Time
			if rec[colDate] != "" {
				date, err = time.Parse(dateFormat, rec[colDate])
				if err != nil {
					return nil, fmt.Errorf("row %d: parsing date %q: %w", row, rec[colDate], err)
				}
			}
			entries = append(entries, ImportedEntry{
				Row: row,
				Ref: ref,
				Input: EntryInput{
					Date:        date,
					Description: rec[colDesc],
					Reference:   rec[colReference],
				},
			})
			pos = len(entries) - 1
			index[ref] = pos
		}
		entries[pos].Input.Lines = append(entries[pos].Input.Lines, line)
	}
	return entries, nil
}

func unmarshalLine(rec []string) (LineInput, error) {
	var debit, credit decimal.Decimal
	var err error
	if rec[colDebit] != "" {
		debit, err = decimal.NewFromString(rec[colDebit])
		if err != nil {
			return LineInput{}, fmt.Errorf("parsing debit %q: %w", rec[colDebit], err)
		}
	}
	if rec[colCredit] != "" {
		credit, err = decimal.NewFromString(rec[colCredit])
		if err != nil {
			return LineInput{}, fmt.Errorf("parsing credit %q: %w", rec[colCredit], err)
		}
	}
	return LineInput{
		AccountID:   rec[colAcctID],
		Debit:       debit,
		Credit:      credit,
		Description: rec[colMemo],
	}, nil
}

// WriteLedgerLines writes ledger lines as CSV (including header).
func WriteLedgerLines(w io.Writer, lines []model.LedgerLine) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(strings.Split(LedgerHeader, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i, l := range lines {
		if err := cw.Write(MarshalLedgerLine(l)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// MarshalLedgerLine converts a LedgerLine to a CSV row.
func MarshalLedgerLine(l model.LedgerLine) []string {
	row := []string{
		l.LineID,
		l.EntryID,
		l.Date.Format(dateFormat),
		l.AccountID,
		l.Description,
		l.Reference,
		string(l.Direction),
		"",
		"",
		l.Amount.StringFixed(2),
	}
	if !l.Debit.IsZero() {
		row[7] = l.Debit.StringFixed(2)
	}
	if !l.Credit.IsZero() {
		row[8] = l.Credit.StringFixed(2)
	}
	return row
}
