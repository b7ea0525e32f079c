package accounts

import (
	"fmt"
	"os"

	"github.com/cleared-dev/books/internal/model"
)

// Service provides in-memory lookup over the chart of accounts.
type Service struct {
	accounts []model.Account
	byID     map[string]model.Account
}

// NewService creates a Service from a slice of accounts.
func NewService(accounts []model.Account) *Service {
	byID := make(map[string]model.Account, len(accounts))
	for _, a := range accounts {
		byID[a.ID] = a
	}
	return &Service{accounts: accounts, byID: byID}
}

// LoadFile reads a chart-of-accounts CSV from path and returns a Service.
func LoadFile(path string) (*Service, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening chart of accounts: %w", err)
	}
	defer f.Close()

	accts, err := ReadAccounts(f)
	if err != nil {
		return nil, fmt.Errorf("reading chart of accounts: %w", err)
	}
	svc := NewService(accts)
	if err := svc.Validate(); err != nil {
		return nil, err
	}
	return svc, nil
}

// All returns all accounts.
func (s *Service) All() []model.Account {
	return s.accounts
}

// Get returns an account by ID.
func (s *Service) Get(id string) (model.Account, bool) {
	a, ok := s.byID[id]
	return a, ok
}

// Exists reports whether an account ID exists.
func (s *Service) Exists(id string) bool {
	_, ok := s.byID[id]
	return ok
}

// ByType returns all accounts of the given type.
func (s *Service) ByType(accountType model.AccountType) []model.Account {
	var result []model.Account
	for _, a := range s.accounts {
		if a.Type == accountType {
			result = append(result, a)
		}
	}
	return result
}

// Children returns the direct children of parentID.
func (s *Service) Children(parentID string) []model.Account {
	var result []model.Account
	for _, a := range s.accounts {
		if a.ParentID == parentID && a.ID != parentID {
			result = append(result, a)
		}
	}
	return result
}

// Validate checks the chart is a well-formed tree: unique IDs, valid types,
// known parents of the same type, and no cycles.
func (s *Service) Validate() error {
	if len(s.byID) != len(s.accounts) {
		seen := make(map[string]bool, len(s.accounts))
		for _, a := range s.accounts {
			if seen[a.ID] {
				return fmt.Errorf("duplicate account %s", a.ID)
			}
			seen[a.ID] = true
		}
	}

	for _, a := range s.accounts {
		if !a.Type.Valid() {
			return fmt.Errorf("account %s: unknown type %q", a.ID, a.Type)
		}
		if a.ParentID == "" {
			continue
		}
		parent, ok := s.byID[a.ParentID]
		if !ok {
			return fmt.Errorf("account %s: unknown parent %s", a.ID, a.ParentID)
		}
		if parent.Type != a.Type {
			return fmt.Errorf("account %s: type %s differs from parent %s (%s)", a.ID, a.Type, parent.ID, parent.Type)
		}
	}

	for _, a := range s.accounts {
		steps := 0
		for cur := a; cur.ParentID != ""; cur = s.byID[cur.ParentID] {
			steps++
			if steps > len(s.accounts) {
				return fmt.Errorf("account %s: parent cycle", a.ID)
			}
		}
	}
	return nil
}
