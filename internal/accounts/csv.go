package accounts

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/cleared-dev/books/internal/model"
)

// Header lists the chart-of-accounts columns in the order WriteAccounts
// emits them. ReadAccounts locates columns by name, so a hand-edited chart
// may reorder them or drop the optional ones.
var Header = []string{"account_id", "code", "account_name", "account_type", "category", "parent_id", "description"}

var requiredColumns = []string{"account_id", "account_name", "account_type"}

// columns maps a header name to its index in a record.
type columns map[string]int

func parseHeader(rec []string) (columns, error) {
	cols := make(columns, len(rec))
	for i, name := range rec {
		name = strings.ToLower(strings.TrimSpace(name))
		if _, dup := cols[name]; dup {
			return nil, fmt.Errorf("duplicate column %q", name)
		}
		cols[name] = i
	}
	for _, name := range requiredColumns {
		if _, ok := cols[name]; !ok {
			return nil, fmt.Errorf("missing column %q", name)
		}
	}
	return cols, nil
}

func (c columns) get(rec []string, name string) string {
	i, ok := c[name]
	if !ok || i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[i])
}

// ReadAccounts reads chart-of-accounts.csv. An empty input reads as an
// empty chart.
func ReadAccounts(r io.Reader) ([]model.Account, error) {
	cr := csv.NewReader(r)
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading accounts CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	cols, err := parseHeader(records[0])
	if err != nil {
		return nil, fmt.Errorf("accounts CSV header: %w", err)
	}

	var accounts []model.Account
	for i, rec := range records[1:] {
		acct, err := cols.account(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		accounts = append(accounts, acct)
	}
	return accounts, nil
}

func (c columns) account(rec []string) (model.Account, error) {
	id := c.get(rec, "account_id")
	if id == "" {
		return model.Account{}, errors.New("missing account_id")
	}
	typ, err := model.ParseAccountType(c.get(rec, "account_type"))
	if err != nil {
		return model.Account{}, fmt.Errorf("account %s: %w", id, err)
	}
	return model.Account{
		ID:          id,
		Code:        c.get(rec, "code"),
		Name:        c.get(rec, "account_name"),
		Type:        typ,
		Category:    c.get(rec, "category"),
		ParentID:    c.get(rec, "parent_id"),
		Description: c.get(rec, "description"),
	}, nil
}

// WriteAccounts writes chart-of-accounts.csv with the full Header.
func WriteAccounts(w io.Writer, accounts []model.Account) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i, acct := range accounts {
		row := []string{acct.ID, acct.Code, acct.Name, string(acct.Type), acct.Category, acct.ParentID, acct.Description}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
