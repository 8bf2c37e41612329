package store

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/punchamoorthee/bankcore/internal/domain"
)

const accountColumns = "account_id, customer_id, balance, account_type, is_active"

// InsertAccount opens an account with its initial balance. No ledger row is
// written for the opening balance.
func (q *queries) InsertAccount(ctx context.Context, a *domain.Account) (int64, error) {
	var id int64
	err := q.db.QueryRow(ctx,
		"INSERT INTO accounts (customer_id, balance, account_type, is_active) VALUES ($1, $2, $3, $4) RETURNING account_id",
		a.CustomerID, a.Balance, string(a.Type), a.Active,
	).Scan(&id)
	if err != nil {
		return 0, storageErr("insert account", err)
	}
	a.ID = id
	return id, nil
}

// GetAccount retrieves a single account by ID.
func (q *queries) GetAccount(ctx context.Context, id int64) (*domain.Account, error) {
	row := q.db.QueryRow(ctx, "SELECT "+accountColumns+" FROM accounts WHERE account_id = $1", id)
	a, err := scanAccount(row)
	if err != nil {
		return nil, rowErr(domain.EntityAccount, id, err)
	}
	return a, nil
}

// LockAccount is GetAccount with a row lock; only meaningful inside InTx.
func (q *queries) LockAccount(ctx context.Context, id int64) (*domain.Account, error) {
	row := q.db.QueryRow(ctx, "SELECT "+accountColumns+" FROM accounts WHERE account_id = $1 FOR UPDATE", id)
	a, err := scanAccount(row)
	if err != nil {
		return nil, rowErr(domain.EntityAccount, id, err)
	}
	return a, nil
}

func (q *queries) SetAccountBalance(ctx context.Context, id int64, balance decimal.Decimal) error {
	tag, err := q.db.Exec(ctx, "UPDATE accounts SET balance = $1 WHERE account_id = $2", balance, id)
	if err != nil {
		return storageErr("update balance", err)
	}
	if tag.RowsAffected() == 0 {
		return rowErr(domain.EntityAccount, id, pgx.ErrNoRows)
	}
	return nil
}

func scanAccount(row pgx.Row) (*domain.Account, error) {
	var a domain.Account
	var typ string
	if err := row.Scan(&a.ID, &a.CustomerID, &a.Balance, &typ, &a.Active); err != nil {
		return nil, err
	}
	a.Type = domain.AccountType(typ)
	return &a, nil
}
