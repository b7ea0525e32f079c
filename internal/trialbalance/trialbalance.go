// Package trialbalance folds ledger lines into per-account and per-type
// totals. Every function is a pure reducer: inputs are never modified and
// identical input yields identical output.
package trialbalance

import (
	"errors"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/books/internal/apperr"
	"github.com/cleared-dev/books/internal/model"
)

// Row is one account's aggregate.
type Row struct {
	AccountID    string
	TotalDebits  decimal.Decimal
	TotalCredits decimal.Decimal
	Balance      decimal.Decimal // TotalDebits - TotalCredits
}

// TrialBalance maps accounts to their aggregates. Rows are sorted by account ID.
type TrialBalance struct {
	Rows  []Row
	index map[string]int
}

// Get returns the row for accountID.
func (tb TrialBalance) Get(accountID string) (Row, bool) {
	i, ok := tb.index[accountID]
	if !ok {
		return Row{}, false
	}
	return tb.Rows[i], true
}

// Totals sums every row.
func (tb TrialBalance) Totals() (debits, credits, balance decimal.Decimal) {
	debits, credits, balance = decimal.Zero, decimal.Zero, decimal.Zero
	for _, r := range tb.Rows {
		debits = debits.Add(r.TotalDebits)
		credits = credits.Add(r.TotalCredits)
		balance = balance.Add(r.Balance)
	}
	return debits, credits, balance
}

// ComputeTrialBalance sums each line's debit and credit amounts per account.
// Lines that could not have passed entry validation yield a ComputationError.
func ComputeTrialBalance(lines []model.LedgerLine) (TrialBalance, error) {
	sums := make(map[string]*Row)
	for i, l := range lines {
		if err := checkLine(l); err != nil {
			return TrialBalance{}, apperr.Computation("trial balance", fmt.Errorf("line %d (%s): %w", i, l.LineID, err))
		}
		r, ok := sums[l.AccountID]
		if !ok {
			r = &Row{AccountID: l.AccountID, TotalDebits: decimal.Zero, TotalCredits: decimal.Zero}
			sums[l.AccountID] = r
		}
		r.TotalDebits = r.TotalDebits.Add(l.Debit)
		r.TotalCredits = r.TotalCredits.Add(l.Credit)
	}

	tb := TrialBalance{Rows: make([]Row, 0, len(sums)), index: make(map[string]int, len(sums))}
	for _, r := range sums {
		r.Balance = r.TotalDebits.Sub(r.TotalCredits)
		tb.Rows = append(tb.Rows, *r)
	}
	sort.Slice(tb.Rows, func(i, j int) bool { return tb.Rows[i].AccountID < tb.Rows[j].AccountID })
	for i, r := range tb.Rows {
		tb.index[r.AccountID] = i
	}
	return tb, nil
}

func checkLine(l model.LedgerLine) error {
	switch {
	case l.AccountID == "":
		return errors.New("missing account")
	case l.Debit.IsNegative() || l.Credit.IsNegative():
		return errors.New("negative amount")
	}
	return nil
}

// AccountLookup resolves account IDs to accounts.
type AccountLookup interface {
	Get(id string) (model.Account, bool)
}

// CategoryTotal is the aggregate of all accounts of one type.
type CategoryTotal struct {
	Type         model.AccountType
	Accounts     int
	TotalDebits  decimal.Decimal
	TotalCredits decimal.Decimal
	Balance      decimal.Decimal
}

// Categories holds one total per account type.
type Categories struct {
	Asset     CategoryTotal
	Liability CategoryTotal
	Equity    CategoryTotal
	Revenue   CategoryTotal
	Expense   CategoryTotal
}

// All returns the five totals in statement order.
func (c Categories) All() []CategoryTotal {
	return []CategoryTotal{c.Asset, c.Liability, c.Equity, c.Revenue, c.Expense}
}

// slot returns the total for t. It covers every AccountType.
func (c *Categories) slot(t model.AccountType) (*CategoryTotal, error) {
	switch t {
	case model.AccountTypeAsset:
		return &c.Asset, nil
	case model.AccountTypeLiability:
		return &c.Liability, nil
	case model.AccountTypeEquity:
		return &c.Equity, nil
	case model.AccountTypeRevenue:
		return &c.Revenue, nil
	case model.AccountTypeExpense:
		return &c.Expense, nil
	}
	return nil, fmt.Errorf("unknown account type %q", t)
}

// GroupByCategory sums trial balance rows by account type.
func GroupByCategory(tb TrialBalance, accounts AccountLookup) (Categories, error) {
	var c Categories
	for _, t := range model.AccountTypes {
		s, _ := c.slot(t)
		*s = CategoryTotal{Type: t, TotalDebits: decimal.Zero, TotalCredits: decimal.Zero, Balance: decimal.Zero}
	}

	for _, r := range tb.Rows {
		acct, ok := accounts.Get(r.AccountID)
		if !ok {
			return Categories{}, apperr.Computation("group by category", fmt.Errorf("account %s not in chart", r.AccountID))
		}
		s, err := c.slot(acct.Type)
		if err != nil {
			return Categories{}, apperr.Computation("group by category", fmt.Errorf("account %s: %w", r.AccountID, err))
		}
		s.Accounts++
		s.TotalDebits = s.TotalDebits.Add(r.TotalDebits)
		s.TotalCredits = s.TotalCredits.Add(r.TotalCredits)
		s.Balance = s.Balance.Add(r.Balance)
	}
	return c, nil
}
