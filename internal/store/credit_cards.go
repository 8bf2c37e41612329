package store

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/punchamoorthee/bankcore/internal/domain"
)

const cardColumns = "card_id, customer_id, credit_limit, current_debt, is_active"

func (q *queries) InsertCreditCard(ctx context.Context, c *domain.CreditCard) (int64, error) {
	var id int64
	err := q.db.QueryRow(ctx,
		"INSERT INTO credit_cards (customer_id, credit_limit, current_debt, is_active) VALUES ($1, $2, $3, $4) RETURNING card_id",
		c.CustomerID, c.CreditLimit, c.CurrentDebt, c.Active,
	).Scan(&id)
	if err != nil {
		return 0, storageErr("insert credit card", err)
	}
	c.ID = id
	return id, nil
}

func (q *queries) GetCreditCard(ctx context.Context, id int64) (*domain.CreditCard, error) {
	c, err := scanCard(q.db.QueryRow(ctx, "SELECT "+cardColumns+" FROM credit_cards WHERE card_id = $1", id))
	if err != nil {
		return nil, rowErr(domain.EntityCreditCard, id, err)
	}
	return c, nil
}

func (q *queries) LockCreditCard(ctx context.Context, id int64) (*domain.CreditCard, error) {
	c, err := scanCard(q.db.QueryRow(ctx, "SELECT "+cardColumns+" FROM credit_cards WHERE card_id = $1 FOR UPDATE", id))
	if err != nil {
		return nil, rowErr(domain.EntityCreditCard, id, err)
	}
	return c, nil
}

func (q *queries) SetCardDebt(ctx context.Context, id int64, debt decimal.Decimal) error {
	tag, err := q.db.Exec(ctx, "UPDATE credit_cards SET current_debt = $1 WHERE card_id = $2", debt, id)
	if err != nil {
		return storageErr("update card debt", err)
	}
	if tag.RowsAffected() == 0 {
		return rowErr(domain.EntityCreditCard, id, pgx.ErrNoRows)
	}
	return nil
}

func scanCard(row pgx.Row) (*domain.CreditCard, error) {
	var c domain.CreditCard
	if err := row.Scan(&c.ID, &c.CustomerID, &c.CreditLimit, &c.CurrentDebt, &c.Active); err != nil {
		return nil, err
	}
	return &c, nil
}
