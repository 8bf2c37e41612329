package store

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/punchamoorthee/bankcore/internal/domain"
)

const loanColumns = "loan_id, customer_id, amount, interest_rate, status"

func (q *queries) InsertLoan(ctx context.Context, l *domain.Loan) (int64, error) {
	var id int64
	err := q.db.QueryRow(ctx,
		"INSERT INTO loans (customer_id, amount, interest_rate, status) VALUES ($1, $2, $3, $4) RETURNING loan_id",
		l.CustomerID, l.Amount, l.InterestRate, string(l.Status),
	).Scan(&id)
	if err != nil {
		return 0, storageErr("insert loan", err)
	}
	l.ID = id
	return id, nil
}

func (q *queries) GetLoan(ctx context.Context, id int64) (*domain.Loan, error) {
	l, err := scanLoan(q.db.QueryRow(ctx, "SELECT "+loanColumns+" FROM loans WHERE loan_id = $1", id))
	if err != nil {
		return nil, rowErr(domain.EntityLoan, id, err)
	}
	return l, nil
}

func (q *queries) LockLoan(ctx context.Context, id int64) (*domain.Loan, error) {
	l, err := scanLoan(q.db.QueryRow(ctx, "SELECT "+loanColumns+" FROM loans WHERE loan_id = $1 FOR UPDATE", id))
	if err != nil {
		return nil, rowErr(domain.EntityLoan, id, err)
	}
	return l, nil
}

func (q *queries) SetLoanStatus(ctx context.Context, id int64, status domain.LoanStatus) error {
	tag, err := q.db.Exec(ctx, "UPDATE loans SET status = $1 WHERE loan_id = $2", string(status), id)
	if err != nil {
		return storageErr("update loan status", err)
	}
	if tag.RowsAffected() == 0 {
		return rowErr(domain.EntityLoan, id, pgx.ErrNoRows)
	}
	return nil
}

func scanLoan(row pgx.Row) (*domain.Loan, error) {
	var l domain.Loan
	var status string
	if err := row.Scan(&l.ID, &l.CustomerID, &l.Amount, &l.InterestRate, &status); err != nil {
		return nil, err
	}
	l.Status = domain.LoanStatus(status)
	return &l, nil
}
