package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// MatchType classifies how a statement line was paired with the ledger.
type MatchType string

const (
	MatchExact MatchType = "exact"
	MatchFuzzy MatchType = "fuzzy"
	MatchNone  MatchType = "none"
)

// Confidence is the qualitative strength of a match.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// Match pairs one statement line with at most one ledger line.
type Match struct {
	Position      int // index of the statement line in its batch
	Statement     StatementLine
	Ledger        *LedgerLine
	Type          MatchType
	Confidence    Confidence
	NeedsReview   bool
	NeedsCreation bool
}

// Delta returns statement amount minus ledger amount, or zero without a ledger line.
func (m Match) Delta() decimal.Decimal {
	if m.Ledger == nil {
		return decimal.Zero
	}
	return m.Statement.SignedAmount().Sub(m.Ledger.Amount)
}

// LineError records a statement line rejected before matching.
type LineError struct {
	Position int
	Message  string
}

// MatchSummary aggregates one matcher run.
type MatchSummary struct {
	TotalItems    int
	Matched       int
	Adjusted      int
	Unmatched     int
	Rejected      int
	BankBalance   decimal.Decimal
	LedgerBalance decimal.Decimal
	Difference    decimal.Decimal // BankBalance - LedgerBalance
	Errors        []LineError
}

// MatchReport is the output of a matcher run.
type MatchReport struct {
	Matched     []Match
	Adjustments []Match
	Unmatched   []Match
	Summary     MatchSummary
}

// Reconciliation compares one bank statement against one account's ledger.
type Reconciliation struct {
	ID             string
	AccountID      string
	BusinessID     string
	StatementDate  time.Time
	ClosingBalance decimal.Decimal
	IsLocked       bool
	CreatedAt      time.Time
	LockedAt       *time.Time
	Report         *MatchReport // nil until a matching run is stored
}

// ReconciliationReport is the stored match summary plus reconciliation arithmetic.
type ReconciliationReport struct {
	Reconciliation     Reconciliation
	Summary            MatchSummary
	OpeningBalance     decimal.Decimal
	PendingAdjustments decimal.Decimal
	AdjustedBalance    decimal.Decimal
	Outstanding        decimal.Decimal
	Balanced           bool
}
