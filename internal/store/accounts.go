package store

import (
	"context"
	"fmt"

	"gorm.io/gorm/clause"

	"github.com/cleared-dev/books/internal/model"
)

// SaveAccounts inserts the accounts, replacing any with the same ID.
func (s *Store) SaveAccounts(ctx context.Context, accts []model.Account) error {
	if len(accts) == 0 {
		return nil
	}
	rows := make([]accountRow, len(accts))
	for i, a := range accts {
		rows[i] = accountRow{
			ID:          a.ID,
			Code:        a.Code,
			Name:        a.Name,
			Type:        string(a.Type),
			Category:    a.Category,
			ParentID:    a.ParentID,
			Description: a.Description,
		}
	}
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&rows).Error
	if err != nil {
		return fmt.Errorf("failed to save accounts: %w", err)
	}
	return nil
}

// ListAccounts returns every account ordered by ID.
func (s *Store) ListAccounts(ctx context.Context) ([]model.Account, error) {
	var rows []accountRow
	if err := s.db.WithContext(ctx).Order("id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	out := make([]model.Account, len(rows))
	for i, r := range rows {
		t, err := model.ParseAccountType(r.Type)
		if err != nil {
			return nil, fmt.Errorf("account %s: %w", r.ID, err)
		}
		out[i] = model.Account{
			ID:          r.ID,
			Code:        r.Code,
			Name:        r.Name,
			Type:        t,
			Category:    r.Category,
			ParentID:    r.ParentID,
			Description: r.Description,
		}
	}
	return out, nil
}
