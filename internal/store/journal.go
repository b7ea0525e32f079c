package store

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/cleared-dev/books/internal/apperr"
	"github.com/cleared-dev/books/internal/id"
	"github.com/cleared-dev/books/internal/model"
)

// CreateEntry writes the entry header and all of its lines in one
// transaction, assigning the next sequence number for the entry's month.
// On success entry and its lines carry their assigned IDs.
func (s *Store) CreateEntry(ctx context.Context, entry *model.JournalEntry) error {
	date := calendarDay(entry.Date)
	year, month := date.Year(), int(date.Month())

	var row entryRow
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var last int
		err := tx.Model(&entryRow{}).
			Where("year = ? AND month = ?", year, month).
			Select("COALESCE(MAX(seq), 0)").
			Scan(&last).Error
		if err != nil {
			return fmt.Errorf("reading entry sequence: %w", err)
		}

		entryID := id.FormatEntryID(year, month, last+1)
		row = entryRow{
			ID:          entryID,
			Year:        year,
			Month:       month,
			Seq:         last + 1,
			Date:        date,
			Description: entry.Description,
			Reference:   entry.Reference,
			BusinessID:  entry.BusinessID,
			IsAdjusting: entry.IsAdjusting,
			PeriodID:    entry.PeriodID,
			Lines:       make([]lineRow, len(entry.Lines)),
		}
		for i, l := range entry.Lines {
			row.Lines[i] = lineRow{
				ID:          id.FormatLineID(entryID, i+1),
				EntryID:     entryID,
				LineNo:      i + 1,
				AccountID:   l.AccountID,
				Debit:       l.Debit,
				Credit:      l.Credit,
				Description: l.Description,
			}
		}
		return tx.Create(&row).Error
	})
	if err != nil {
		return fmt.Errorf("failed to create journal entry: %w", err)
	}

	entry.ID = row.ID
	entry.Date = date
	for i := range entry.Lines {
		entry.Lines[i].ID = row.Lines[i].ID
		entry.Lines[i].EntryID = row.ID
	}
	return nil
}

// Entry returns the entry with its lines in submission order.
func (s *Store) Entry(ctx context.Context, entryID string) (model.JournalEntry, error) {
	var row entryRow
	err := s.db.WithContext(ctx).
		Preload("Lines", func(db *gorm.DB) *gorm.DB { return db.Order("line_no") }).
		First(&row, "id = ?", entryID).Error
	if isNotFound(err) {
		return model.JournalEntry{}, apperr.NotFound("journal entry", entryID)
	}
	if err != nil {
		return model.JournalEntry{}, fmt.Errorf("failed to load journal entry: %w", err)
	}

	e := model.JournalEntry{
		ID:          row.ID,
		Date:        row.Date.UTC(),
		Description: row.Description,
		Reference:   row.Reference,
		BusinessID:  row.BusinessID,
		IsAdjusting: row.IsAdjusting,
		PeriodID:    row.PeriodID,
		Lines:       make([]model.JournalLine, len(row.Lines)),
	}
	for i, l := range row.Lines {
		e.Lines[i] = model.JournalLine{
			ID:          l.ID,
			EntryID:     l.EntryID,
			AccountID:   l.AccountID,
			Debit:       l.Debit,
			Credit:      l.Credit,
			Description: l.Description,
		}
	}
	return e, nil
}

type ledgerRow struct {
	LineID           string
	EntryID          string
	AccountID        string
	Debit            decimal.Decimal
	Credit           decimal.Decimal
	LineDescription  string
	Date             time.Time
	EntryDescription string
	Reference        string
}

// LedgerLines returns accountID's lines within r, ordered by date, entry and line.
func (s *Store) LedgerLines(ctx context.Context, accountID string, r model.DateRange) ([]model.LedgerLine, error) {
	return s.ledgerLines(ctx, r, func(q *gorm.DB) *gorm.DB {
		return q.Where("l.account_id = ?", accountID)
	})
}

// AllLedgerLines returns every line within r, ordered by date, entry and line.
func (s *Store) AllLedgerLines(ctx context.Context, r model.DateRange) ([]model.LedgerLine, error) {
	return s.ledgerLines(ctx, r, nil)
}

func (s *Store) ledgerLines(ctx context.Context, r model.DateRange, scope func(*gorm.DB) *gorm.DB) ([]model.LedgerLine, error) {
	q := s.db.WithContext(ctx).
		Table("journal_lines AS l").
		Select("l.id AS line_id, l.entry_id, l.account_id, l.debit, l.credit, l.description AS line_description, " +
			"e.date, e.description AS entry_description, e.reference").
		Joins("JOIN journal_entries AS e ON e.id = l.entry_id")
	if scope != nil {
		q = scope(q)
	}
	if !r.From.IsZero() {
		q = q.Where("e.date >= ?", calendarDay(r.From))
	}
	if !r.To.IsZero() {
		q = q.Where("e.date < ?", calendarDay(r.To).AddDate(0, 0, 1))
	}

	var rows []ledgerRow
	if err := q.Order("e.date, e.id, l.line_no").Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to query ledger lines: %w", err)
	}

	out := make([]model.LedgerLine, len(rows))
	for i, row := range rows {
		e := model.JournalEntry{ID: row.EntryID, Date: row.Date.UTC(), Description: row.EntryDescription, Reference: row.Reference}
		l := model.JournalLine{
			ID:          row.LineID,
			EntryID:     row.EntryID,
			AccountID:   row.AccountID,
			Debit:       row.Debit,
			Credit:      row.Credit,
			Description: row.LineDescription,
		}
		out[i] = model.NewLedgerLine(e, l)
	}
	return out, nil
}

// calendarDay keeps t's own year, month and day at midnight UTC, the form
// entry dates are stored in.
func calendarDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
