package store

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/punchamoorthee/bankcore/internal/domain"
)

const customerColumns = "customer_id, first_name, last_name, address, join_date"

// InsertCustomer writes one row and sets c.ID on success.
func (q *queries) InsertCustomer(ctx context.Context, c *domain.Customer) (int64, error) {
	joined, err := time.Parse(domain.DateLayout, c.JoinDate)
	if err != nil {
		return 0, domain.Validationf("join date %q: %v", c.JoinDate, err)
	}

	var id int64
	err = q.db.QueryRow(ctx,
		"INSERT INTO customers (first_name, last_name, address, join_date) VALUES ($1, $2, $3, $4) RETURNING customer_id",
		c.FirstName, c.LastName, c.Address, joined,
	).Scan(&id)
	if err != nil {
		return 0, storageErr("insert customer", err)
	}
	c.ID = id
	return id, nil
}

// GetCustomer retrieves a single customer by ID.
func (q *queries) GetCustomer(ctx context.Context, id int64) (*domain.Customer, error) {
	row := q.db.QueryRow(ctx, "SELECT "+customerColumns+" FROM customers WHERE customer_id = $1", id)
	c, err := scanCustomer(row)
	if err != nil {
		return nil, rowErr(domain.EntityCustomer, id, err)
	}
	return c, nil
}

func scanCustomer(row pgx.Row) (*domain.Customer, error) {
	var c domain.Customer
	var joined time.Time
	if err := row.Scan(&c.ID, &c.FirstName, &c.LastName, &c.Address, &joined); err != nil {
		return nil, err
	}
	c.JoinDate = joined.Format(domain.DateLayout)
	return &c, nil
}
