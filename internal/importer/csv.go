package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/books/internal/model"
)

// CSVParser reads a headed CSV with date, description, amount and an
// optional type column, in any order.
type CSVParser struct{}

// dateFormats are tried in order.
var dateFormats = []string{"2006-01-02", "01/02/2006"}

var requiredColumns = []string{"date", "description", "amount"}

// Format returns the parser name.
func (p *CSVParser) Format() string { return "csv" }

// Parse reads the CSV. A row with the wrong number of fields or an
// unreadable date, amount or type is kept with those fields missing and the
// reason in Unreadable, so matching rejects that line alone. Only a broken
// header or CSV syntax fails the file.
func (p *CSVParser) Parse(r io.Reader) ([]model.StatementLine, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading statement CSV header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, c := range requiredColumns {
		if _, ok := cols[c]; !ok {
			return nil, fmt.Errorf("statement CSV missing %q column", c)
		}
	}

	var lines []model.StatementLine
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading statement CSV: %w", err)
		}
		line := parseRow(rec, cols)
		if len(rec) != len(header) && line.Unreadable == "" {
			line.Unreadable = fmt.Sprintf("expected %d fields, got %d", len(header), len(rec))
		}
		lines = append(lines, line)
	}
	return lines, nil
}

// parseRow converts one record. The first unreadable field is recorded in
// Unreadable and left missing; the remaining fields are still read.
func parseRow(rec []string, cols map[string]int) model.StatementLine {
	field := func(name string) string {
		i, ok := cols[name]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	line := model.StatementLine{Description: field("description")}
	fail := func(format string, args ...any) {
		if line.Unreadable == "" {
			line.Unreadable = fmt.Sprintf(format, args...)
		}
	}

	if s := field("date"); s != "" {
		if d, ok := parseDate(s); ok {
			line.Date = d
		} else {
			fail("parsing date %q", s)
		}
	}

	if s := field("amount"); s != "" {
		if amt, err := decimal.NewFromString(strings.ReplaceAll(s, ",", "")); err == nil {
			line.Amount = decimal.NewNullDecimal(amt)
		} else {
			fail("parsing amount %q", s)
		}
	}

	switch t := model.StatementType(strings.ToLower(field("type"))); t {
	case "", model.StatementCredit, model.StatementDebit:
		line.Type = t
	default:
		fail("unknown type %q", field("type"))
	}
	return line
}

func parseDate(s string) (time.Time, bool) {
	for _, f := range dateFormats {
		if d, err := time.Parse(f, s); err == nil {
			return d, true
		}
	}
	return time.Time{}, false
}
