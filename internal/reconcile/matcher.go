package reconcile

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/books/internal/apperr"
	"github.com/cleared-dev/books/internal/model"
)

// Selection decides which candidate wins when several fall inside a tolerance window.
type Selection string

const (
	// SelectClosest picks the smallest amount difference, then the smallest
	// date gap, then the earliest listed candidate.
	SelectClosest Selection = "closest"
	// SelectFirst picks the earliest listed candidate.
	SelectFirst Selection = "first"
)

// Config holds the tolerance windows. Amount bounds are exclusive, day bounds inclusive.
type Config struct {
	ExactAmount decimal.Decimal
	ExactDays   int
	FuzzyAmount decimal.Decimal
	FuzzyDays   int
	Selection   Selection
}

// DefaultConfig returns the standard windows: exact under 1.00 within 3 days,
// fuzzy under 10.00 within 7 days.
func DefaultConfig() Config {
	return Config{
		ExactAmount: decimal.NewFromInt(1),
		ExactDays:   3,
		FuzzyAmount: decimal.NewFromInt(10),
		FuzzyDays:   7,
		Selection:   SelectClosest,
	}
}

// Validate checks the windows are positive and nested.
func (c Config) Validate() error {
	switch {
	case !c.ExactAmount.IsPositive() || !c.FuzzyAmount.IsPositive():
		return fmt.Errorf("amount tolerances must be positive")
	case c.ExactDays < 0 || c.FuzzyDays < 0:
		return fmt.Errorf("day tolerances must not be negative")
	case c.FuzzyAmount.LessThan(c.ExactAmount) || c.FuzzyDays < c.ExactDays:
		return fmt.Errorf("fuzzy window must contain the exact window")
	}
	switch c.Selection {
	case SelectClosest, SelectFirst:
	default:
		return fmt.Errorf("unknown selection %q", c.Selection)
	}
	return nil
}

// Matcher pairs statement lines with ledger lines. It holds no state between
// runs and is safe for concurrent use.
type Matcher struct {
	cfg Config
}

// NewMatcher creates a Matcher after validating cfg.
func NewMatcher(cfg Config) (*Matcher, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Matcher{cfg: cfg}, nil
}

// Config returns the matcher's configuration.
func (m *Matcher) Config() Config {
	return m.cfg
}

// Match makes one pass over statement in input order. Each statement line
// takes at most one unused candidate, trying the exact window before the
// fuzzy one; a consumed candidate is never offered again in the same run.
// Malformed statement lines are reported in the summary and skipped.
func (m *Matcher) Match(statement []model.StatementLine, candidates []model.LedgerLine) model.MatchReport {
	used := make([]bool, len(candidates))
	report := model.MatchReport{
		Summary: model.MatchSummary{
			TotalItems:    len(statement),
			BankBalance:   decimal.Zero,
			LedgerBalance: decimal.Zero,
		},
	}

	for i, s := range statement {
		if err := checkStatementLine(s); err != nil {
			report.Summary.Errors = append(report.Summary.Errors, model.LineError{Position: i, Message: err.Error()})
			continue
		}
		report.Summary.BankBalance = report.Summary.BankBalance.Add(s.SignedAmount())

		if j := m.pick(s, candidates, used, m.cfg.ExactAmount, m.cfg.ExactDays); j >= 0 {
			used[j] = true
			l := candidates[j]
			report.Matched = append(report.Matched, model.Match{
				Position: i, Statement: s, Ledger: &l,
				Type: model.MatchExact, Confidence: model.ConfidenceHigh,
			})
			continue
		}
		if j := m.pick(s, candidates, used, m.cfg.FuzzyAmount, m.cfg.FuzzyDays); j >= 0 {
			used[j] = true
			l := candidates[j]
			report.Adjustments = append(report.Adjustments, model.Match{
				Position: i, Statement: s, Ledger: &l,
				Type: model.MatchFuzzy, Confidence: model.ConfidenceMedium, NeedsReview: true,
			})
			continue
		}
		report.Unmatched = append(report.Unmatched, model.Match{
			Position: i, Statement: s,
			Type: model.MatchNone, Confidence: model.ConfidenceLow, NeedsCreation: true,
		})
	}

	for _, l := range candidates {
		report.Summary.LedgerBalance = report.Summary.LedgerBalance.Add(l.Amount)
	}
	report.Summary.Matched = len(report.Matched)
	report.Summary.Adjusted = len(report.Adjustments)
	report.Summary.Unmatched = len(report.Unmatched)
	report.Summary.Rejected = len(report.Summary.Errors)
	report.Summary.Difference = report.Summary.BankBalance.Sub(report.Summary.LedgerBalance)
	return report
}

// pick returns the index of the winning unused candidate inside the window, or -1.
func (m *Matcher) pick(s model.StatementLine, candidates []model.LedgerLine, used []bool, maxAmount decimal.Decimal, maxDays int) int {
	amount := s.SignedAmount()
	best := -1
	var bestAmt decimal.Decimal
	var bestDays int
	for j, l := range candidates {
		if used[j] {
			continue
		}
		diff := l.Amount.Sub(amount).Abs()
		if !diff.LessThan(maxAmount) {
			continue
		}
		days := DaysApart(l.Date, s.Date)
		if days > maxDays {
			continue
		}
		if m.cfg.Selection == SelectFirst {
			return j
		}
		if best < 0 || diff.LessThan(bestAmt) || (diff.Equal(bestAmt) && days < bestDays) {
			best, bestAmt, bestDays = j, diff, days
		}
	}
	return best
}

func checkStatementLine(s model.StatementLine) error {
	if s.Unreadable != "" {
		return apperr.Validation("", "%s", s.Unreadable)
	}
	if s.Date.IsZero() {
		return apperr.Validation("date", "is required")
	}
	if !s.Amount.Valid {
		return apperr.Validation("amount", "is required")
	}
	return nil
}

// DaysApart returns the absolute number of calendar days between a and b,
// each taken in its own location.
func DaysApart(a, b time.Time) int {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	da := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	db := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	n := int(da.Sub(db).Hours() / 24)
	if n < 0 {
		return -n
	}
	return n
}
