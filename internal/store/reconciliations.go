package store

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/cleared-dev/books/internal/apperr"
	"github.com/cleared-dev/books/internal/model"
)

const lockedMessage = "reconciliation is locked"

// CreateReconciliation inserts rec in the unlocked state.
func (s *Store) CreateReconciliation(ctx context.Context, rec model.Reconciliation) error {
	row := reconciliationRow{
		ID:             rec.ID,
		AccountID:      rec.AccountID,
		BusinessID:     rec.BusinessID,
		StatementDate:  rec.StatementDate.UTC(),
		ClosingBalance: rec.ClosingBalance,
		CreatedAt:      rec.CreatedAt.UTC(),
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("failed to create reconciliation: %w", err)
	}
	return nil
}

// Reconciliation returns the record with its stored match report, if any.
func (s *Store) Reconciliation(ctx context.Context, recID string) (model.Reconciliation, error) {
	var row reconciliationRow
	err := s.db.WithContext(ctx).First(&row, "id = ?", recID).Error
	if isNotFound(err) {
		return model.Reconciliation{}, apperr.NotFound("reconciliation", recID)
	}
	if err != nil {
		return model.Reconciliation{}, fmt.Errorf("failed to load reconciliation: %w", err)
	}

	rec := row.toModel()
	if row.MatchedAt == nil {
		return rec, nil
	}

	var matches []matchRow
	if err := s.db.WithContext(ctx).Where("reconciliation_id = ?", recID).Order("position").Find(&matches).Error; err != nil {
		return model.Reconciliation{}, fmt.Errorf("failed to load matches: %w", err)
	}
	var lineErrs []lineErrorRow
	if err := s.db.WithContext(ctx).Where("reconciliation_id = ?", recID).Order("position").Find(&lineErrs).Error; err != nil {
		return model.Reconciliation{}, fmt.Errorf("failed to load line errors: %w", err)
	}

	report := &model.MatchReport{Summary: row.summary()}
	for _, m := range matches {
		match := m.toModel()
		switch match.Type {
		case model.MatchExact:
			report.Matched = append(report.Matched, match)
		case model.MatchFuzzy:
			report.Adjustments = append(report.Adjustments, match)
		default:
			report.Unmatched = append(report.Unmatched, match)
		}
	}
	for _, e := range lineErrs {
		report.Summary.Errors = append(report.Summary.Errors, model.LineError{Position: e.Position, Message: e.Message})
	}
	rec.Report = report
	return rec, nil
}

// ListReconciliations returns the records for accountID, or for every account
// when accountID is empty, ordered by statement date. Reports are not loaded.
func (s *Store) ListReconciliations(ctx context.Context, accountID string) ([]model.Reconciliation, error) {
	q := s.db.WithContext(ctx).Order("statement_date, created_at, id")
	if accountID != "" {
		q = q.Where("account_id = ?", accountID)
	}
	var rows []reconciliationRow
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list reconciliations: %w", err)
	}
	out := make([]model.Reconciliation, len(rows))
	for i, r := range rows {
		out[i] = r.toModel()
	}
	return out, nil
}

// LockReconciliation sets is_locked with a conditional update so that only
// one caller can win. Losing callers get a ConflictError.
func (s *Store) LockReconciliation(ctx context.Context, recID string, at time.Time) error {
	at = at.UTC()
	res := s.db.WithContext(ctx).
		Model(&reconciliationRow{}).
		Where("id = ? AND is_locked = ?", recID, false).
		Updates(map[string]any{"is_locked": true, "locked_at": at})
	if res.Error != nil {
		return fmt.Errorf("failed to lock reconciliation: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return unchanged(s.db.WithContext(ctx), recID)
	}
	return nil
}

// SaveMatchReport replaces the stored match report of an unlocked
// reconciliation. The unlocked check and the write share one transaction,
// so a concurrent lock either happens before (ConflictError) or after.
func (s *Store) SaveMatchReport(ctx context.Context, recID string, report model.MatchReport, at time.Time) error {
	sum := report.Summary
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&reconciliationRow{}).
			Where("id = ? AND is_locked = ?", recID, false).
			Updates(map[string]any{
				"matched_at":     at.UTC(),
				"total_items":    sum.TotalItems,
				"matched":        sum.Matched,
				"adjusted":       sum.Adjusted,
				"unmatched":      sum.Unmatched,
				"rejected":       sum.Rejected,
				"bank_balance":   decimal.NewNullDecimal(sum.BankBalance),
				"ledger_balance": decimal.NewNullDecimal(sum.LedgerBalance),
				"difference":     decimal.NewNullDecimal(sum.Difference),
			})
		if res.Error != nil {
			return fmt.Errorf("failed to update reconciliation: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return unchanged(tx, recID)
		}

		if err := tx.Where("reconciliation_id = ?", recID).Delete(&matchRow{}).Error; err != nil {
			return fmt.Errorf("failed to clear matches: %w", err)
		}
		if err := tx.Where("reconciliation_id = ?", recID).Delete(&lineErrorRow{}).Error; err != nil {
			return fmt.Errorf("failed to clear line errors: %w", err)
		}

		var rows []matchRow
		for _, group := range [][]model.Match{report.Matched, report.Adjustments, report.Unmatched} {
			for _, m := range group {
				rows = append(rows, newMatchRow(recID, m))
			}
		}
		if len(rows) > 0 {
			if err := tx.Create(&rows).Error; err != nil {
				return fmt.Errorf("failed to save matches: %w", err)
			}
		}

		if len(sum.Errors) > 0 {
			errRows := make([]lineErrorRow, len(sum.Errors))
			for i, e := range sum.Errors {
				errRows[i] = lineErrorRow{ReconciliationID: recID, Position: e.Position, Message: e.Message}
			}
			if err := tx.Create(&errRows).Error; err != nil {
				return fmt.Errorf("failed to save line errors: %w", err)
			}
		}
		return nil
	})
}

// LockedMatchedLineIDs returns the ledger line IDs consumed by locked
// reconciliations of accountID.
func (s *Store) LockedMatchedLineIDs(ctx context.Context, accountID string) ([]string, error) {
	var ids []string
	err := s.db.WithContext(ctx).
		Table("reconciliation_matches AS m").
		Joins("JOIN reconciliations AS r ON r.id = m.reconciliation_id").
		Where("r.account_id = ? AND r.is_locked = ? AND m.ledger_line_id IS NOT NULL", accountID, true).
		Distinct().
		Order("m.ledger_line_id").
		Pluck("m.ledger_line_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query matched lines: %w", err)
	}
	return ids, nil
}

// unchanged explains why a conditional update on recID touched no rows.
func unchanged(db *gorm.DB, recID string) error {
	var n int64
	if err := db.Model(&reconciliationRow{}).Where("id = ?", recID).Count(&n).Error; err != nil {
		return fmt.Errorf("failed to check reconciliation: %w", err)
	}
	if n == 0 {
		return apperr.NotFound("reconciliation", recID)
	}
	return apperr.Conflict("reconciliation", recID, lockedMessage)
}

func (r reconciliationRow) toModel() model.Reconciliation {
	rec := model.Reconciliation{
		ID:             r.ID,
		AccountID:      r.AccountID,
		BusinessID:     r.BusinessID,
		StatementDate:  r.StatementDate.UTC(),
		ClosingBalance: r.ClosingBalance,
		IsLocked:       r.IsLocked,
		CreatedAt:      r.CreatedAt.UTC(),
	}
	if r.LockedAt != nil {
		t := r.LockedAt.UTC()
		rec.LockedAt = &t
	}
	return rec
}

func (r reconciliationRow) summary() model.MatchSummary {
	return model.MatchSummary{
		TotalItems:    r.TotalItems,
		Matched:       r.Matched,
		Adjusted:      r.Adjusted,
		Unmatched:     r.Unmatched,
		Rejected:      r.Rejected,
		BankBalance:   r.BankBalance.Decimal,
		LedgerBalance: r.LedgerBalance.Decimal,
		Difference:    r.Difference.Decimal,
	}
}

func newMatchRow(recID string, m model.Match) matchRow {
	row := matchRow{
		ReconciliationID:     recID,
		Position:             m.Position,
		StatementDate:        m.Statement.Date.UTC(),
		StatementDescription: m.Statement.Description,
		StatementAmount:      m.Statement.Amount,
		StatementType:        string(m.Statement.Type),
		MatchType:            string(m.Type),
		Confidence:           string(m.Confidence),
		NeedsReview:          m.NeedsReview,
		NeedsCreation:        m.NeedsCreation,
	}
	if l := m.Ledger; l != nil {
		lineID := l.LineID
		date := l.Date.UTC()
		row.LedgerLineID = &lineID
		row.LedgerEntryID = l.EntryID
		row.LedgerAccountID = l.AccountID
		row.LedgerDate = &date
		row.LedgerDescription = l.Description
		row.LedgerReference = l.Reference
		row.LedgerDebit = decimal.NewNullDecimal(l.Debit)
		row.LedgerCredit = decimal.NewNullDecimal(l.Credit)
	}
	return row
}

func (r matchRow) toModel() model.Match {
	m := model.Match{
		Position: r.Position,
		Statement: model.StatementLine{
			Date:        r.StatementDate.UTC(),
			Description: r.StatementDescription,
			Amount:      r.StatementAmount,
			Type:        model.StatementType(r.StatementType),
		},
		Type:          model.MatchType(r.MatchType),
		Confidence:    model.Confidence(r.Confidence),
		NeedsReview:   r.NeedsReview,
		NeedsCreation: r.NeedsCreation,
	}
	if r.LedgerLineID != nil {
		var date time.Time
		if r.LedgerDate != nil {
			date = r.LedgerDate.UTC()
		}
		e := model.JournalEntry{ID: r.LedgerEntryID, Date: date, Reference: r.LedgerReference}
		l := model.JournalLine{
			ID:          *r.LedgerLineID,
			EntryID:     r.LedgerEntryID,
			AccountID:   r.LedgerAccountID,
			Debit:       r.LedgerDebit.Decimal,
			Credit:      r.LedgerCredit.Decimal,
			Description: r.LedgerDescription,
		}
		ll := model.NewLedgerLine(e, l)
		m.Ledger = &ll
	}
	return m
}
