package store

import (
	"context"
	"sort"
	"sync"

	"account-ledger/internal/domain"
)

// Memory is a mutex-guarded in-memory AccountStore. It backs unit tests
// and the no-DB dev mode; it replaces the process-wide mutable map the
// old test doubles used, so every engine gets its own instance.
type Memory struct {
	mu    sync.Mutex
	accts map[int64]domain.Account
}

func NewMemory() *Memory {
	return &Memory{accts: make(map[int64]domain.Account)}
}

func (s *Memory) FindByID(_ context.Context, id int64) (*domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accts[id]
	if !ok {
		return nil, nil
	}
	return &a, nil
}

func (s *Memory) FindByOwnerTaxID(ctx context.Context, taxID string) (*domain.Account, error) {
	accts, err := s.ListByOwnerTaxID(ctx, taxID)
	if err != nil || len(accts) == 0 {
		return nil, err
	}
	return &accts[0], nil
}

func (s *Memory) ListByOwnerTaxID(_ context.Context, taxID string) ([]domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []domain.Account{}
	for _, a := range s.accts {
		if a.OwnerTaxID == taxID {
			out = append(out, a)
		}
	}
	sortByID(out)
	return out, nil
}

func (s *Memory) ListAll(_ context.Context) ([]domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Account, 0, len(s.accts))
	for _, a := range s.accts {
		out = append(out, a)
	}
	sortByID(out)
	return out, nil
}

func (s *Memory) Save(_ context.Context, acct domain.Account) (domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accts[acct.ID] = acct
	return acct, nil
}

func (s *Memory) Update(ctx context.Context, acct domain.Account) (domain.Account, error) {
	return s.Save(ctx, acct)
}

func sortByID(accts []domain.Account) {
	sort.Slice(accts, func(i, j int) bool { return accts[i].ID < accts[j].ID })
}
