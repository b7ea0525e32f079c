// Package reconciliation manages reconciliation records: creating them,
// storing matching runs, locking, and reporting.
//
// A reconciliation starts unlocked and may be matched any number of times.
// Locking is one-way; after it, the stored report can be read but never
// replaced.
package reconciliation

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/books/internal/apperr"
	"github.com/cleared-dev/books/internal/id"
	"github.com/cleared-dev/books/internal/logging"
	"github.com/cleared-dev/books/internal/metrics"
	"github.com/cleared-dev/books/internal/model"
	"github.com/cleared-dev/books/internal/reconcile"
)

// Store persists reconciliations. LockReconciliation and SaveMatchReport must
// both be conditional on the record being unlocked at write time and return
// an apperr.ConflictError otherwise.
type Store interface {
	CreateReconciliation(ctx context.Context, rec model.Reconciliation) error
	Reconciliation(ctx context.Context, id string) (model.Reconciliation, error)
	ListReconciliations(ctx context.Context, accountID string) ([]model.Reconciliation, error)
	LockReconciliation(ctx context.Context, id string, at time.Time) error
	SaveMatchReport(ctx context.Context, id string, report model.MatchReport, at time.Time) error
	LockedMatchedLineIDs(ctx context.Context, accountID string) ([]string, error)
}

// Ledger supplies candidate ledger lines.
type Ledger interface {
	LedgerLines(ctx context.Context, accountID string, r model.DateRange) ([]model.LedgerLine, error)
}

// AccountChecker checks whether an account exists.
type AccountChecker interface {
	Exists(id string) bool
}

// balanceTolerance is the largest outstanding amount still treated as balanced.
var balanceTolerance = decimal.New(1, -2)

// Service implements the reconciliation lifecycle.
type Service struct {
	store    Store
	ledger   Ledger
	accounts AccountChecker
	matcher  *reconcile.Matcher
	logger   *slog.Logger
	metrics  *metrics.Metrics
	now      func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithMatcher replaces the default matcher.
func WithMatcher(m *reconcile.Matcher) Option {
	return func(s *Service) { s.matcher = m }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = logging.OrDiscard(l) }
}

// WithMetrics sets the metrics recorder.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates a Service.
func NewService(store Store, ledger Ledger, accounts AccountChecker, opts ...Option) *Service {
	matcher, _ := reconcile.NewMatcher(reconcile.DefaultConfig())
	s := &Service{
		store:    store,
		ledger:   ledger,
		accounts: accounts,
		matcher:  matcher,
		logger:   logging.Discard(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateInput describes a new reconciliation.
type CreateInput struct {
	AccountID      string
	StatementDate  time.Time
	ClosingBalance decimal.Decimal
	BusinessID     string
}

// CreateReconciliation stores a new unlocked reconciliation for an existing account.
func (s *Service) CreateReconciliation(ctx context.Context, in CreateInput) (model.Reconciliation, error) {
	switch {
	case in.AccountID == "":
		return model.Reconciliation{}, apperr.Validation("accountId", "is required")
	case in.StatementDate.IsZero():
		return model.Reconciliation{}, apperr.Validation("statementDate", "is required")
	case !in.ClosingBalance.Equal(in.ClosingBalance.Round(2)):
		return model.Reconciliation{}, apperr.Validation("closingBalance", "has more than 2 decimal places")
	}
	if !s.accounts.Exists(in.AccountID) {
		return model.Reconciliation{}, apperr.NotFound("account", in.AccountID)
	}

	rec := model.Reconciliation{
		ID:             id.NewReconciliationID(),
		AccountID:      in.AccountID,
		BusinessID:     in.BusinessID,
		StatementDate:  in.StatementDate,
		ClosingBalance: in.ClosingBalance,
		CreatedAt:      s.now().UTC(),
	}
	if err := s.store.CreateReconciliation(ctx, rec); err != nil {
		return model.Reconciliation{}, fmt.Errorf("creating reconciliation: %w", err)
	}
	s.logger.Info("reconciliation created", "reconciliationId", rec.ID, "accountId", rec.AccountID)
	return rec, nil
}

// RunMatching matches statement against the account's ledger and stores the
// report, replacing any earlier run. Ledger lines already consumed by a
// locked reconciliation of the same account are not offered. A locked
// reconciliation yields a ConflictError and nothing is written.
func (s *Service) RunMatching(ctx context.Context, recID string, statement []model.StatementLine) (model.MatchReport, error) {
	rec, err := s.store.Reconciliation(ctx, recID)
	if err != nil {
		return model.MatchReport{}, err
	}
	if rec.IsLocked {
		return model.MatchReport{}, s.conflict("match", apperr.Conflict("reconciliation", recID, "reconciliation is locked"))
	}

	candidates, err := s.candidates(ctx, rec.AccountID, statement)
	if err != nil {
		return model.MatchReport{}, err
	}
	report := s.matcher.Match(statement, candidates)

	if err := s.store.SaveMatchReport(ctx, recID, report, s.now()); err != nil {
		if apperr.IsConflict(err) {
			return model.MatchReport{}, s.conflict("match", err)
		}
		return model.MatchReport{}, fmt.Errorf("storing match report: %w", err)
	}

	sum := report.Summary
	s.metrics.RecordMatchRun(len(candidates), sum.Matched, sum.Adjusted, sum.Unmatched, sum.Rejected)
	s.logger.Info("matching run completed",
		"reconciliationId", recID,
		"candidates", len(candidates),
		"matched", sum.Matched,
		"adjusted", sum.Adjusted,
		"unmatched", sum.Unmatched,
		"rejected", sum.Rejected,
	)
	return report, nil
}

// candidates returns the account's unused ledger lines dated within the
// fuzzy window of the statement's date span.
func (s *Service) candidates(ctx context.Context, accountID string, statement []model.StatementLine) ([]model.LedgerLine, error) {
	var from, to time.Time
	for _, l := range statement {
		if l.Date.IsZero() {
			continue
		}
		if from.IsZero() || l.Date.Before(from) {
			from = l.Date
		}
		if to.IsZero() || l.Date.After(to) {
			to = l.Date
		}
	}
	if from.IsZero() {
		return nil, nil
	}
	days := s.matcher.Config().FuzzyDays
	window := model.DateRange{
		From: startOfDay(from).AddDate(0, 0, -days),
		To:   startOfDay(to).AddDate(0, 0, days),
	}

	lines, err := s.ledger.LedgerLines(ctx, accountID, window)
	if err != nil {
		return nil, fmt.Errorf("loading ledger lines: %w", err)
	}
	usedIDs, err := s.store.LockedMatchedLineIDs(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("loading matched lines: %w", err)
	}
	if len(usedIDs) == 0 {
		return lines, nil
	}

	used := make(map[string]bool, len(usedIDs))
	for _, lineID := range usedIDs {
		used[lineID] = true
	}
	out := lines[:0:0]
	for _, l := range lines {
		if !used[l.LineID] {
			out = append(out, l)
		}
	}
	return out, nil
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Lock transitions the reconciliation to locked. A second lock, or one that
// loses a race, returns a ConflictError.
func (s *Service) Lock(ctx context.Context, recID string) (model.Reconciliation, error) {
	if err := s.store.LockReconciliation(ctx, recID, s.now()); err != nil {
		if apperr.IsConflict(err) {
			return model.Reconciliation{}, s.conflict("lock", err)
		}
		return model.Reconciliation{}, err
	}
	s.metrics.RecordLock()
	s.logger.Info("reconciliation locked", "reconciliationId", recID)
	return s.store.Reconciliation(ctx, recID)
}

func (s *Service) conflict(op string, err error) error {
	s.metrics.RecordConflict(op)
	s.logger.Warn("reconciliation conflict", "operation", op, "error", err)
	return err
}

// Get returns the reconciliation with its stored report.
func (s *Service) Get(ctx context.Context, recID string) (model.Reconciliation, error) {
	return s.store.Reconciliation(ctx, recID)
}

// List returns the reconciliations of accountID, or all of them when empty.
func (s *Service) List(ctx context.Context, accountID string) ([]model.Reconciliation, error) {
	if accountID != "" && !s.accounts.Exists(accountID) {
		return nil, apperr.NotFound("account", accountID)
	}
	return s.store.ListReconciliations(ctx, accountID)
}

// GenerateReport returns the stored summary with the reconciliation
// arithmetic. It is valid in either state; without a stored run the summary
// is all zero.
func (s *Service) GenerateReport(ctx context.Context, recID string) (model.ReconciliationReport, error) {
	rec, err := s.store.Reconciliation(ctx, recID)
	if err != nil {
		return model.ReconciliationReport{}, err
	}
	return BuildReport(rec), nil
}

// BuildReport derives the reconciliation arithmetic from rec's stored report:
//
//	opening     = closing - bank movement
//	pending     = unmatched statement amounts + fuzzy deltas
//	adjusted    = opening + ledger movement + pending
//	outstanding = closing - adjusted
func BuildReport(rec model.Reconciliation) model.ReconciliationReport {
	sum := model.MatchSummary{BankBalance: decimal.Zero, LedgerBalance: decimal.Zero, Difference: decimal.Zero}
	pending := decimal.Zero
	if rec.Report != nil {
		sum = rec.Report.Summary
		for _, m := range rec.Report.Unmatched {
			pending = pending.Add(m.Statement.SignedAmount())
		}
		for _, m := range rec.Report.Adjustments {
			pending = pending.Add(m.Delta())
		}
	}

	opening := rec.ClosingBalance.Sub(sum.BankBalance)
	adjusted := opening.Add(sum.LedgerBalance).Add(pending)
	outstanding := rec.ClosingBalance.Sub(adjusted)
	return model.ReconciliationReport{
		Reconciliation:     rec,
		Summary:            sum,
		OpeningBalance:     opening,
		PendingAdjustments: pending,
		AdjustedBalance:    adjusted,
		Outstanding:        outstanding,
		Balanced:           outstanding.Abs().LessThan(balanceTolerance),
	}
}
