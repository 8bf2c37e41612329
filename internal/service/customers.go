package service

import (
	"context"
	"strings"

	"github.com/punchamoorthee/bankcore/internal/domain"
)

// CreateCustomer validates and inserts c, setting c.ID on success. An empty
// JoinDate defaults to today.
func (b *Bank) CreateCustomer(ctx context.Context, c *domain.Customer) (id int64, err error) {
	defer timer("create_customer").ObserveDuration()
	defer func() {
		b.report(ctx, "create_customer", err, "customer_id", id, "first_name", c.FirstName, "last_name", c.LastName)
	}()

	c.FirstName = strings.TrimSpace(c.FirstName)
	c.LastName = strings.TrimSpace(c.LastName)
	c.Address = strings.TrimSpace(c.Address)
	if c.JoinDate == "" {
		c.JoinDate = b.now().Format(domain.DateLayout)
	}
	if err := b.check(c); err != nil {
		return 0, err
	}
	return b.repo.InsertCustomer(ctx, c)
}

func (b *Bank) GetCustomer(ctx context.Context, id int64) (c *domain.Customer, err error) {
	defer timer("get_customer").ObserveDuration()
	defer func() { b.report(ctx, "get_customer", err, "customer_id", id) }()

	return load(ctx, b, domain.EntityCustomer, id, b.repo.GetCustomer)
}

// UpdateCustomerAddress persists a new address and then updates the snapshot.
func (b *Bank) UpdateCustomerAddress(ctx context.Context, c *domain.Customer, address string) (err error) {
	defer timer("update_customer_address").ObserveDuration()
	defer func() { b.report(ctx, "update_customer_address", err, "customer_id", c.ID) }()

	value, err := b.updateField(ctx, domain.EntityCustomer, c.ID, "address", address)
	if err != nil {
		return err
	}
	c.Address = value.(string)
	return nil
}
