// Package ledger is the account-ledger engine: the rules that keep
// balances consistent across create, deposit, withdraw, transfer and
// update, and the error taxonomy around them. Storage and notification
// are ports injected at construction.
package ledger

import (
	"context"
	"fmt"
	"log"
	"math/rand"

	"github.com/shopspring/decimal"

	"account-ledger/internal/domain"
	"account-ledger/internal/notify"
	"account-ledger/internal/store"
)

// Operation codes are opaque receipts, not unique transaction ids;
// collisions across transfers are acceptable.
const (
	OpCodeMin int64 = 10000000
	OpCodeMax int64 = 19999999
)

type Engine struct {
	store    store.AccountStore
	notifier notify.Notifier
	locks    *accountLocks
}

func New(st store.AccountStore, n notify.Notifier) *Engine {
	return &Engine{
		store:    st,
		notifier: n,
		locks:    newAccountLocks(),
	}
}

// Create persists a new account and then queues a welcome notification.
// Persist-first: a crash between the two steps leaves a saved account
// with a missing email, never an email about an account that does not
// exist. The notification is best-effort and cannot fail the creation.
func (e *Engine) Create(ctx context.Context, acct domain.Account) (domain.Account, error) {
	unlock := e.locks.lock(acct.ID)
	defer unlock()

	existing, err := e.store.FindByID(ctx, acct.ID)
	if err != nil {
		return domain.Account{}, fmt.Errorf("find account %d: %w", acct.ID, err)
	}
	if existing != nil {
		return domain.Account{}, fmt.Errorf("account %d: %w", acct.ID, ErrAlreadyExists)
	}

	saved, err := e.store.Save(ctx, acct)
	if err != nil {
		return domain.Account{}, fmt.Errorf("save account %d: %w", acct.ID, err)
	}

	if err := e.notifier.Send(ctx, saved.OwnerTaxID); err != nil {
		log.Printf("[ledger] notify owner_tax_id=%s failed: %v", saved.OwnerTaxID, err)
	}
	return saved, nil
}

// Deposit adds amount to the account balance and returns the amount
// deposited. Non-positive amounts are rejected.
func (e *Engine) Deposit(ctx context.Context, id int64, amount decimal.Decimal) (decimal.Decimal, error) {
	if !amount.IsPositive() {
		return decimal.Zero, ErrInvalidAmount
	}

	unlock := e.locks.lock(id)
	defer unlock()

	acct, err := e.mustFind(ctx, id)
	if err != nil {
		return decimal.Zero, err
	}

	acct.Balance = acct.Balance.Add(amount)
	if _, err := e.store.Save(ctx, *acct); err != nil {
		return decimal.Zero, fmt.Errorf("save account %d: %w", id, err)
	}
	return amount, nil
}

// Withdraw subtracts amount from the account balance. A withdrawal equal
// to the full balance is rejected, not just one exceeding it: the ledger
// has always refused to drain an account to exactly zero in one
// withdrawal, and callers depend on that boundary.
func (e *Engine) Withdraw(ctx context.Context, id int64, amount decimal.Decimal) (decimal.Decimal, error) {
	if !amount.IsPositive() {
		return decimal.Zero, ErrInvalidAmount
	}

	unlock := e.locks.lock(id)
	defer unlock()

	acct, err := e.mustFind(ctx, id)
	if err != nil {
		return decimal.Zero, err
	}
	if acct.Balance.Cmp(amount) <= 0 {
		return decimal.Zero, fmt.Errorf("account %d: %w", id, ErrInsufficientFunds)
	}

	acct.Balance = acct.Balance.Sub(amount)
	if _, err := e.store.Save(ctx, *acct); err != nil {
		return decimal.Zero, fmt.Errorf("save account %d: %w", id, err)
	}
	return amount, nil
}

// Transfer moves amount from sourceID to destID all-or-nothing: both
// accounts are locked and loaded before either balance changes, so a
// missing destination or insufficient funds leaves both sides untouched.
// Returns an operation code in [OpCodeMin, OpCodeMax].
func (e *Engine) Transfer(ctx context.Context, sourceID, destID int64, amount decimal.Decimal) (int64, error) {
	if !amount.IsPositive() || sourceID == destID {
		return 0, ErrInvalidAmount
	}

	unlock := e.locks.lock(sourceID, destID)
	defer unlock()

	src, err := e.mustFind(ctx, sourceID)
	if err != nil {
		return 0, err
	}
	dst, err := e.mustFind(ctx, destID)
	if err != nil {
		return 0, err
	}
	if src.Balance.Cmp(amount) <= 0 {
		return 0, fmt.Errorf("account %d: %w", sourceID, ErrInsufficientFunds)
	}

	src.Balance = src.Balance.Sub(amount)
	dst.Balance = dst.Balance.Add(amount)

	if _, err := e.store.Save(ctx, *src); err != nil {
		return 0, fmt.Errorf("save account %d: %w", sourceID, err)
	}
	if _, err := e.store.Save(ctx, *dst); err != nil {
		// Compensate the debit so funds are never stranded.
		src.Balance = src.Balance.Add(amount)
		if _, cerr := e.store.Save(ctx, *src); cerr != nil {
			return 0, fmt.Errorf("save account %d failed and compensation of %d failed: %v: %w", destID, sourceID, cerr, err)
		}
		return 0, fmt.Errorf("save account %d: %w", destID, err)
	}
	return operationCode(), nil
}

// Update replaces the stored record wholesale and returns the reloaded
// account. The payload must carry the target's own id: this operation
// cannot change an account's identity.
func (e *Engine) Update(ctx context.Context, id int64, acct domain.Account) (domain.Account, error) {
	unlock := e.locks.lock(id)
	defer unlock()

	if _, err := e.mustFind(ctx, id); err != nil {
		return domain.Account{}, err
	}
	if acct.ID != id {
		return domain.Account{}, fmt.Errorf("payload id %d, target id %d: %w", acct.ID, id, ErrIdentityMismatch)
	}

	if _, err := e.store.Update(ctx, acct); err != nil {
		return domain.Account{}, fmt.Errorf("update account %d: %w", id, err)
	}

	updated, err := e.store.FindByID(ctx, id)
	if err != nil {
		return domain.Account{}, fmt.Errorf("reload account %d: %w", id, err)
	}
	if updated == nil {
		return domain.Account{}, fmt.Errorf("account %d: %w", id, ErrNotFound)
	}
	return *updated, nil
}

// ListAll returns every account; an empty store is an empty list, not
// an error.
func (e *Engine) ListAll(ctx context.Context) ([]domain.Account, error) {
	accts, err := e.store.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	return accts, nil
}

// ListByOwnerTaxID returns the customer's accounts. Unlike ListAll an
// empty result is ErrNotFound: "no such customer" is an answer callers
// distinguish from "no accounts in the bank".
func (e *Engine) ListByOwnerTaxID(ctx context.Context, taxID string) ([]domain.Account, error) {
	accts, err := e.store.ListByOwnerTaxID(ctx, taxID)
	if err != nil {
		return nil, fmt.Errorf("list accounts by owner %s: %w", taxID, err)
	}
	if len(accts) == 0 {
		return nil, fmt.Errorf("owner tax id %s: %w", taxID, ErrNotFound)
	}
	return accts, nil
}

func (e *Engine) mustFind(ctx context.Context, id int64) (*domain.Account, error) {
	acct, err := e.store.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find account %d: %w", id, err)
	}
	if acct == nil {
		return nil, fmt.Errorf("account %d: %w", id, ErrNotFound)
	}
	return acct, nil
}

func operationCode() int64 {
	return OpCodeMin + rand.Int63n(OpCodeMax-OpCodeMin+1)
}
