package store

import (
	"context"

	"account-ledger/internal/domain"
)

// AccountStore is the persistence port consumed by the ledger engine.
// Finders report absence as (nil, nil); deciding whether absence is an
// error belongs to the engine, not the store.
type AccountStore interface {
	FindByID(ctx context.Context, id int64) (*domain.Account, error)
	FindByOwnerTaxID(ctx context.Context, taxID string) (*domain.Account, error)
	ListByOwnerTaxID(ctx context.Context, taxID string) ([]domain.Account, error)

	// Save is insert-or-replace; Update replaces an existing record.
	Save(ctx context.Context, acct domain.Account) (domain.Account, error)
	Update(ctx context.Context, acct domain.Account) (domain.Account, error)

	ListAll(ctx context.Context) ([]domain.Account, error)
}
