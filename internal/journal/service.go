package journal

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cleared-dev/books/internal/apperr"
	"github.com/cleared-dev/books/internal/id"
	"github.com/cleared-dev/books/internal/logging"
	"github.com/cleared-dev/books/internal/metrics"
	"github.com/cleared-dev/books/internal/model"
)

// Store persists journal entries. CreateEntry must write the header and all
// lines atomically, assigning entry and line IDs.
type Store interface {
	CreateEntry(ctx context.Context, entry *model.JournalEntry) error
	Entry(ctx context.Context, entryID string) (model.JournalEntry, error)
	LedgerLines(ctx context.Context, accountID string, r model.DateRange) ([]model.LedgerLine, error)
	AllLedgerLines(ctx context.Context, r model.DateRange) ([]model.LedgerLine, error)
}

// Service provides business logic for journal entries.
type Service struct {
	store    Store
	accounts AccountChecker
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

// NewService creates a journal Service. logger and m may be nil.
func NewService(store Store, accounts AccountChecker, logger *slog.Logger, m *metrics.Metrics) *Service {
	return &Service{
		store:    store,
		accounts: accounts,
		logger:   logging.OrDiscard(logger),
		metrics:  m,
	}
}

// CreateJournalEntry validates the submission and stores it with all of its
// lines as one unit. Nothing is written when validation fails.
func (s *Service) CreateJournalEntry(ctx context.Context, in EntryInput) (model.JournalEntry, error) {
	if err := ValidateEntry(in, s.accounts); err != nil {
		s.metrics.RecordEntryRejected(string(apperr.KindOf(err)))
		s.logger.Warn("journal entry rejected", "description", in.Description, "error", err)
		return model.JournalEntry{}, err
	}

	entry := model.JournalEntry{
		Date:        in.Date,
		Description: in.Description,
		Reference:   in.Reference,
		BusinessID:  in.BusinessID,
		IsAdjusting: in.IsAdjusting,
		PeriodID:    in.PeriodID,
		Lines:       make([]model.JournalLine, len(in.Lines)),
	}
	for i, l := range in.Lines {
		entry.Lines[i] = model.JournalLine{
			AccountID:   l.AccountID,
			Debit:       l.Debit,
			Credit:      l.Credit,
			Description: l.Description,
		}
	}

	if err := s.store.CreateEntry(ctx, &entry); err != nil {
		return model.JournalEntry{}, fmt.Errorf("storing journal entry: %w", err)
	}

	s.metrics.RecordEntryCreated()
	s.logger.Info("journal entry created", "entryId", entry.ID, "lines", len(entry.Lines))
	return entry, nil
}

// GetEntry returns a stored entry with its lines. A line ID resolves to the
// entry that owns it.
func (s *Service) GetEntry(ctx context.Context, entryID string) (model.JournalEntry, error) {
	if _, _, _, err := id.ParseEntryID(entryID); err != nil {
		return model.JournalEntry{}, apperr.Validation("entryId", "%v", err)
	}
	e, err := s.store.Entry(ctx, id.EntryOf(entryID))
	if err != nil {
		return model.JournalEntry{}, fmt.Errorf("getting journal entry: %w", err)
	}
	return e, nil
}

// GetLedgerLines returns the lines touching accountID in date order, each
// annotated with its direction and signed amount.
func (s *Service) GetLedgerLines(ctx context.Context, accountID string, r model.DateRange) ([]model.LedgerLine, error) {
	if !s.accounts.Exists(accountID) {
		return nil, apperr.NotFound("account", accountID)
	}
	lines, err := s.store.LedgerLines(ctx, accountID, r)
	if err != nil {
		return nil, fmt.Errorf("reading ledger lines for %s: %w", accountID, err)
	}
	return lines, nil
}

// AllLedgerLines returns every ledger line in the range, across all accounts.
func (s *Service) AllLedgerLines(ctx context.Context, r model.DateRange) ([]model.LedgerLine, error) {
	lines, err := s.store.AllLedgerLines(ctx, r)
	if err != nil {
		return nil, fmt.Errorf("reading ledger lines: %w", err)
	}
	return lines, nil
}

// ImportResult reports the outcome of one entry in a batch import.
type ImportResult struct {
	Row     int // first CSV row of the entry
	EntryID string
	Err     error
}

// ImportEntries creates each entry independently. An invalid entry is
// reported in its result and does not stop the batch; a storage failure does.
func (s *Service) ImportEntries(ctx context.Context, batch []ImportedEntry) ([]ImportResult, error) {
	results := make([]ImportResult, 0, len(batch))
	for _, ie := range batch {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		entry, err := s.CreateJournalEntry(ctx, ie.Input)
		switch {
		case err == nil:
			results = append(results, ImportResult{Row: ie.Row, EntryID: entry.ID})
		case apperr.IsValidation(err) || apperr.IsNotFound(err):
			results = append(results, ImportResult{Row: ie.Row, Err: err})
		default:
			return results, err
		}
	}
	return results, nil
}
