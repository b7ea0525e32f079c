package model

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// StatementType is the bank's classification of a statement line.
type StatementType string

const (
	StatementCredit StatementType = "credit" // money in
	StatementDebit  StatementType = "debit"  // money out
)

// StatementLine is one normalized bank statement row. A zero Date or an
// invalid Amount marks the field as missing. Unreadable is set by importers
// when the source row could not be read; such a line is rejected on its own
// during matching.
type StatementLine struct {
	Date        time.Time
	Description string
	Amount      decimal.NullDecimal
	Type        StatementType
	Unreadable  string
}

// SignedAmount returns the amount with its sign forced by Type.
// An untyped line keeps the sign it was given.
func (s StatementLine) SignedAmount() decimal.Decimal {
	amt := s.Amount.Decimal
	switch StatementType(strings.ToLower(string(s.Type))) {
	case StatementDebit:
		return amt.Abs().Neg()
	case StatementCredit:
		return amt.Abs()
	}
	return amt
}
