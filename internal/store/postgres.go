package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"account-ledger/internal/domain"
)

// Postgres is the pgx-backed AccountStore. Balances live in NUMERIC(19,2)
// and cross the wire as text so no binary float ever touches an amount.
type Postgres struct {
	db *pgxpool.Pool
}

func NewPostgres(db *pgxpool.Pool) *Postgres { return &Postgres{db: db} }

const selectAccount = `
	SELECT id, agency, digit, balance::text, owner_name, owner_tax_id
	  FROM accounts`

func scanAccount(row pgx.Row) (*domain.Account, error) {
	var a domain.Account
	var balance string
	if err := row.Scan(&a.ID, &a.Agency, &a.Digit, &balance, &a.OwnerName, &a.OwnerTaxID); err != nil {
		return nil, err
	}
	bal, err := decimal.NewFromString(balance)
	if err != nil {
		return nil, fmt.Errorf("parse balance %q: %w", balance, err)
	}
	a.Balance = bal
	return &a, nil
}

func (s *Postgres) FindByID(ctx context.Context, id int64) (*domain.Account, error) {
	a, err := scanAccount(s.db.QueryRow(ctx, selectAccount+` WHERE id=$1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return a, err
}

func (s *Postgres) FindByOwnerTaxID(ctx context.Context, taxID string) (*domain.Account, error) {
	a, err := scanAccount(s.db.QueryRow(ctx,
		selectAccount+` WHERE owner_tax_id=$1 ORDER BY id LIMIT 1`, taxID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return a, err
}

func (s *Postgres) ListByOwnerTaxID(ctx context.Context, taxID string) ([]domain.Account, error) {
	rows, err := s.db.Query(ctx, selectAccount+` WHERE owner_tax_id=$1 ORDER BY id`, taxID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collect(rows)
}

func (s *Postgres) ListAll(ctx context.Context) ([]domain.Account, error) {
	rows, err := s.db.Query(ctx, selectAccount+` ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collect(rows)
}

func collect(rows pgx.Rows) ([]domain.Account, error) {
	accts := []domain.Account{}
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accts = append(accts, *a)
	}
	return accts, rows.Err()
}

func (s *Postgres) Save(ctx context.Context, acct domain.Account) (domain.Account, error) {
	_, err := s.db.Exec(ctx, `
		INSERT INTO accounts(id, agency, digit, balance, owner_name, owner_tax_id)
		VALUES($1,$2,$3,$4::numeric,$5,$6)
		ON CONFLICT (id) DO UPDATE SET
			agency       = EXCLUDED.agency,
			digit        = EXCLUDED.digit,
			balance      = EXCLUDED.balance,
			owner_name   = EXCLUDED.owner_name,
			owner_tax_id = EXCLUDED.owner_tax_id,
			updated_at   = now()`,
		acct.ID, acct.Agency, acct.Digit, acct.Balance.String(), acct.OwnerName, acct.OwnerTaxID,
	)
	if err != nil {
		return domain.Account{}, err
	}
	return acct, nil
}

func (s *Postgres) Update(ctx context.Context, acct domain.Account) (domain.Account, error) {
	return s.Save(ctx, acct)
}
