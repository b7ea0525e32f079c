package journal

import (
	"context"
	"errors"
	"sort"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/books/internal/apperr"
	"github.com/cleared-dev/books/internal/id"
	"github.com/cleared-dev/books/internal/metrics"
	"github.com/cleared-dev/books/internal/model"
)

// memStore is an in-memory Store keeping entries in creation order.
type memStore struct {
	entries []model.JournalEntry
	seq     map[string]int
	failOn  string
}

func newMemStore() *memStore {
	return &memStore{seq: make(map[string]int)}
}

func (m *memStore) CreateEntry(_ context.Context, e *model.JournalEntry) error {
	if m.failOn != "" && e.Description == m.failOn {
		return errors.New("disk full")
	}
	month := e.Date.Format("2006-01")
	m.seq[month]++
	e.ID = id.FormatEntryID(e.Date.Year(), int(e.Date.Month()), m.seq[month])
	for i := range e.Lines {
		e.Lines[i].ID = id.FormatLineID(e.ID, i+1)
		e.Lines[i].EntryID = e.ID
	}
	m.entries = append(m.entries, *e)
	return nil
}

func (m *memStore) Entry(_ context.Context, entryID string) (model.JournalEntry, error) {
	for _, e := range m.entries {
		if e.ID == entryID {
			return e, nil
		}
	}
	return model.JournalEntry{}, apperr.NotFound("journal entry", entryID)
}

func (m *memStore) LedgerLines(ctx context.Context, accountID string, r model.DateRange) ([]model.LedgerLine, error) {
	all, _ := m.AllLedgerLines(ctx, r)
	var out []model.LedgerLine
	for _, l := range all {
		if l.AccountID == accountID {
			out = append(out, l)
		}
	}
	return out, nil
}

func (m *memStore) AllLedgerLines(_ context.Context, r model.DateRange) ([]model.LedgerLine, error) {
	var out []model.LedgerLine
	for _, e := range m.entries {
		if !r.Contains(e.Date) {
			continue
		}
		for _, l := range e.Lines {
			out = append(out, model.NewLedgerLine(e, l))
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func TestCreateJournalEntry(t *testing.T) {
	store := newMemStore()
	m := metrics.New(metrics.DefaultConfig())
	svc := NewService(store, newMockAccounts("1010", "4010"), nil, m)

	entry, err := svc.CreateJournalEntry(context.Background(), balanced("1010", "4010", "1000"))
	require.NoError(t, err)
	assert.Equal(t, "2024-01-001", entry.ID)
	require.Len(t, entry.Lines, 2)
	assert.Equal(t, "2024-01-001-01", entry.Lines[0].ID)
	assert.Equal(t, "2024-01-001-02", entry.Lines[1].ID)
	assert.InDelta(t, 1, testutil.ToFloat64(m.EntriesCreated), 0)

	got, err := svc.GetEntry(context.Background(), entry.ID)
	require.NoError(t, err)
	assert.Equal(t, entry.Description, got.Description)
}

func TestGetEntry_ResolvesAndValidatesIDs(t *testing.T) {
	store := newMemStore()
	svc := NewService(store, newMockAccounts("1010", "4010"), nil, metrics.New(metrics.DefaultConfig()))
	entry, err := svc.CreateJournalEntry(context.Background(), balanced("1010", "4010", "1000"))
	require.NoError(t, err)

	got, err := svc.GetEntry(context.Background(), entry.Lines[1].ID)
	require.NoError(t, err)
	assert.Equal(t, entry.ID, got.ID, "a line ID resolves to its entry")

	for _, bad := range []string{"bogus", "2024-13-001", "2024-01"} {
		_, err = svc.GetEntry(context.Background(), bad)
		require.Error(t, err, bad)
		assert.True(t, apperr.IsValidation(err), bad)
	}

	_, err = svc.GetEntry(context.Background(), "2024-01-009")
	require.Error(t, err)
	assert.True(t, apperr.IsNotFound(err))
}

func TestCreateJournalEntry_UnbalancedNotStored(t *testing.T) {
	store := newMemStore()
	m := metrics.New(metrics.DefaultConfig())
	svc := NewService(store, newMockAccounts("1010", "4010"), nil, m)

	in := balanced("1010", "4010", "100")
	in.Lines[1].Credit = dec("90")
	_, err := svc.CreateJournalEntry(context.Background(), in)
	require.Error(t, err)
	assert.True(t, apperr.IsValidation(err))
	assert.InDelta(t, 1, testutil.ToFloat64(m.EntriesRejected.WithLabelValues("validation")), 0)

	lines, err := svc.GetLedgerLines(context.Background(), "1010", model.DateRange{})
	require.NoError(t, err)
	assert.Empty(t, lines)
}

func TestGetLedgerLines(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newMemStore(), newMockAccounts("1010", "4010", "5020"), nil, nil)

	_, err := svc.CreateJournalEntry(ctx, balanced("1010", "4010", "500"))
	require.NoError(t, err)
	spend := balanced("5020", "1010", "40")
	spend.Date = date(2024, 1, 20)
	_, err = svc.CreateJournalEntry(ctx, spend)
	require.NoError(t, err)

	lines, err := svc.GetLedgerLines(ctx, "1010", model.DateRange{})
	require.NoError(t, err)
	require.Len(t, lines, 2)
	assert.Equal(t, model.DirectionDebit, lines[0].Direction)
	assert.True(t, lines[0].Amount.Equal(dec("500")))
	assert.Equal(t, model.DirectionCredit, lines[1].Direction)
	assert.True(t, lines[1].Amount.Equal(dec("-40")))

	ranged, err := svc.GetLedgerLines(ctx, "1010", model.DateRange{From: date(2024, 1, 16)})
	require.NoError(t, err)
	require.Len(t, ranged, 1)

	_, err = svc.GetLedgerLines(ctx, "9999", model.DateRange{})
	assert.True(t, apperr.IsNotFound(err))
}

func TestImportEntries(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	svc := NewService(store, newMockAccounts("1010", "4010"), nil, nil)

	bad := balanced("1010", "4010", "10")
	bad.Lines[1].Credit = dec("9")
	results, err := svc.ImportEntries(ctx, []ImportedEntry{
		{Row: 2, Input: balanced("1010", "4010", "10")},
		{Row: 4, Input: bad},
		{Row: 6, Input: balanced("1010", "9999", "10")},
		{Row: 8, Input: balanced("1010", "4010", "20")},
	})
	require.NoError(t, err)
	require.Len(t, results, 4)
	assert.Equal(t, "2024-01-001", results[0].EntryID)
	assert.True(t, apperr.IsValidation(results[1].Err))
	assert.True(t, apperr.IsNotFound(results[2].Err))
	assert.Equal(t, "2024-01-002", results[3].EntryID)
	assert.Len(t, store.entries, 2)
}

func TestImportEntries_StoreFailureStops(t *testing.T) {
	store := newMemStore()
	store.failOn = "Balanced entry"
	svc := NewService(store, newMockAccounts("1010", "4010"), nil, nil)

	results, err := svc.ImportEntries(context.Background(), []ImportedEntry{
		{Row: 2, Input: balanced("1010", "4010", "10")},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.Empty(t, results)
}
