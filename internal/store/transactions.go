package store

import (
	"context"

	"github.com/punchamoorthee/bankcore/internal/domain"
)

// InsertTransaction appends a ledger row. Rows are never updated.
func (q *queries) InsertTransaction(ctx context.Context, t *domain.Transaction) (int64, error) {
	var id int64
	err := q.db.QueryRow(ctx,
		"INSERT INTO transactions (account_id, txn_type, amount, created_at) VALUES ($1, $2, $3, $4) RETURNING txn_id",
		t.AccountID, string(t.Type), t.Amount, t.CreatedAt,
	).Scan(&id)
	if err != nil {
		return 0, storageErr("insert transaction", err)
	}
	t.ID = id
	return id, nil
}

// ListTransactions returns an account's ledger oldest first.
func (q *queries) ListTransactions(ctx context.Context, accountID int64) ([]domain.Transaction, error) {
	rows, err := q.db.Query(ctx,
		"SELECT txn_id, account_id, txn_type, amount, created_at FROM transactions WHERE account_id = $1 ORDER BY txn_id",
		accountID)
	if err != nil {
		return nil, storageErr("list transactions", err)
	}
	defer rows.Close()

	var out []domain.Transaction
	for rows.Next() {
		var t domain.Transaction
		var typ string
		if err := rows.Scan(&t.ID, &t.AccountID, &typ, &t.Amount, &t.CreatedAt); err != nil {
			return nil, storageErr("scan transaction", err)
		}
		t.Type = domain.TxnType(typ)
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("list transactions", err)
	}
	return out, nil
}
