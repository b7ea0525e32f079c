package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// JournalEntry is a balanced financial event made of two or more lines.
type JournalEntry struct {
	ID          string // "YYYY-MM-NNN"
	Date        time.Time
	Description string
	Reference   string
	BusinessID  string
	IsAdjusting bool
	PeriodID    string
	Lines       []JournalLine
}

// JournalLine is one leg of a journal entry.
type JournalLine struct {
	ID          string // "YYYY-MM-NNN-LL"
	EntryID     string
	AccountID   string
	Debit       decimal.Decimal // zero if credit side
	Credit      decimal.Decimal // zero if debit side
	Description string
}

// Totals returns the summed debits and credits of the entry.
func (e JournalEntry) Totals() (debits, credits decimal.Decimal) {
	debits, credits = decimal.Zero, decimal.Zero
	for _, l := range e.Lines {
		debits = debits.Add(l.Debit)
		credits = credits.Add(l.Credit)
	}
	return debits, credits
}

// Direction is the side of a ledger line from its account's perspective.
type Direction string

const (
	DirectionDebit  Direction = "debit"
	DirectionCredit Direction = "credit"
)

// LedgerLine is a journal line materialized from one account's perspective.
type LedgerLine struct {
	LineID      string
	EntryID     string
	AccountID   string
	Date        time.Time
	Description string
	Reference   string
	Debit       decimal.Decimal
	Credit      decimal.Decimal
	Direction   Direction
	Amount      decimal.Decimal // Debit - Credit
}

// NewLedgerLine annotates a journal line with its entry header, direction and signed amount.
func NewLedgerLine(e JournalEntry, l JournalLine) LedgerLine {
	dir := DirectionCredit
	if l.Debit.IsPositive() {
		dir = DirectionDebit
	}
	desc := l.Description
	if desc == "" {
		desc = e.Description
	}
	return LedgerLine{
		LineID:      l.ID,
		EntryID:     e.ID,
		AccountID:   l.AccountID,
		Date:        e.Date,
		Description: desc,
		Reference:   e.Reference,
		Debit:       l.Debit,
		Credit:      l.Credit,
		Direction:   dir,
		Amount:      l.Debit.Sub(l.Credit),
	}
}

// DateRange bounds a ledger query. Zero endpoints are open. To covers its
// whole calendar day.
type DateRange struct {
	From time.Time
	To   time.Time
}

// End returns the exclusive upper bound: midnight starting the day after To.
func (r DateRange) End() time.Time {
	y, m, d := r.To.Date()
	return time.Date(y, m, d+1, 0, 0, 0, 0, r.To.Location())
}

// Contains reports whether t falls inside the range.
func (r DateRange) Contains(t time.Time) bool {
	if !r.From.IsZero() && t.Before(r.From) {
		return false
	}
	if !r.To.IsZero() && !t.Before(r.End()) {
		return false
	}
	return true
}
