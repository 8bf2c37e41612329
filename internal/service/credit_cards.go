package service

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/punchamoorthee/bankcore/internal/domain"
	"github.com/punchamoorthee/bankcore/internal/store"
)

// IssueCreditCard issues an active, debt-free card to an existing customer. A
// zero CreditLimit means unset and takes domain.DefaultCreditLimit.
func (b *Bank) IssueCreditCard(ctx context.Context, c *domain.CreditCard) (id int64, err error) {
	defer timer("issue_credit_card").ObserveDuration()
	defer func() {
		b.report(ctx, "issue_credit_card", err, "card_id", id, "customer_id", c.CustomerID, "credit_limit", c.CreditLimit)
	}()

	c.CurrentDebt = decimal.Zero
	if c.CreditLimit.IsZero() {
		c.CreditLimit = domain.DefaultCreditLimit
	}
	c.Active = true
	if err := b.check(c); err != nil {
		return 0, err
	}
	if !c.CreditLimit.IsPositive() {
		return 0, domain.Validationf("credit_limit must be positive")
	}
	if err := centScale("credit_limit", c.CreditLimit); err != nil {
		return 0, err
	}
	if _, err := load(ctx, b, domain.EntityCustomer, c.CustomerID, b.repo.GetCustomer); err != nil {
		return 0, err
	}
	return b.repo.InsertCreditCard(ctx, c)
}

func (b *Bank) GetCreditCard(ctx context.Context, id int64) (c *domain.CreditCard, err error) {
	defer timer("get_credit_card").ObserveDuration()
	defer func() { b.report(ctx, "get_credit_card", err, "card_id", id) }()

	return load(ctx, b, domain.EntityCreditCard, id, b.repo.GetCreditCard)
}

// MakePurchase charges amount to the card if it fits in the available credit,
// so debt never exceeds the limit. Returns the new debt.
func (b *Bank) MakePurchase(ctx context.Context, card *domain.CreditCard, amount decimal.Decimal) (debt decimal.Decimal, err error) {
	defer timer("make_purchase").ObserveDuration()
	defer func() {
		b.report(ctx, "make_purchase", err, "card_id", card.ID, "amount", amount, "current_debt", card.CurrentDebt)
	}()

	if err := positiveAmount(amount); err != nil {
		return card.CurrentDebt, err
	}

	var updated *domain.CreditCard
	err = b.repo.InTx(ctx, func(q store.Querier) error {
		c, err := q.LockCreditCard(ctx, card.ID)
		if err != nil {
			return err
		}
		if !c.Active {
			return fmt.Errorf("card %d is inactive: %w", c.ID, domain.ErrInvalidState)
		}
		if amount.GreaterThan(c.AvailableCredit()) {
			return fmt.Errorf("card %d has %s available, purchase is %s: %w", c.ID, c.AvailableCredit().StringFixed(2), amount.StringFixed(2), domain.ErrCreditLimitExceeded)
		}
		c.CurrentDebt = c.CurrentDebt.Add(amount)
		if err := q.SetCardDebt(ctx, c.ID, c.CurrentDebt); err != nil {
			return err
		}
		updated = c
		return nil
	})
	if err != nil {
		return card.CurrentDebt, err
	}

	*card = *updated
	b.remember(ctx, domain.EntityCreditCard, card.ID, card)
	return card.CurrentDebt, nil
}
