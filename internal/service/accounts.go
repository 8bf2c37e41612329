package service

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/punchamoorthee/bankcore/internal/domain"
	"github.com/punchamoorthee/bankcore/internal/store"
)

// OpenAccount opens an account for an existing customer. The opening balance
// is stored as-is without a ledger row.
func (b *Bank) OpenAccount(ctx context.Context, a *domain.Account) (id int64, err error) {
	defer timer("open_account").ObserveDuration()
	defer func() {
		b.report(ctx, "open_account", err, "account_id", id, "customer_id", a.CustomerID, "account_type", a.Type, "balance", a.Balance)
	}()

	a.Type = domain.ParseAccountType(string(a.Type))
	if a.Type == "" {
		a.Type = domain.Checking
	}
	a.Active = true
	if err := b.check(a); err != nil {
		return 0, err
	}
	if err := nonNegativeMoney("balance", a.Balance); err != nil {
		return 0, err
	}
	if _, err := load(ctx, b, domain.EntityCustomer, a.CustomerID, b.repo.GetCustomer); err != nil {
		return 0, err
	}
	return b.repo.InsertAccount(ctx, a)
}

func (b *Bank) GetAccount(ctx context.Context, id int64) (a *domain.Account, err error) {
	defer timer("get_account").ObserveDuration()
	defer func() { b.report(ctx, "get_account", err, "account_id", id) }()

	return load(ctx, b, domain.EntityAccount, id, b.repo.GetAccount)
}

// ListTransactions returns the account's ledger, oldest first.
func (b *Bank) ListTransactions(ctx context.Context, accountID int64) (txns []domain.Transaction, err error) {
	defer timer("list_transactions").ObserveDuration()
	defer func() { b.report(ctx, "list_transactions", err, "account_id", accountID, "count", len(txns)) }()

	if _, err := b.repo.GetAccount(ctx, accountID); err != nil {
		return nil, err
	}
	return b.repo.ListTransactions(ctx, accountID)
}

// Deposit adds amount to the account and appends a Deposit ledger row in the
// same database transaction. On success acct is refreshed from the stored row.
func (b *Bank) Deposit(ctx context.Context, acct *domain.Account, amount decimal.Decimal) (balance decimal.Decimal, err error) {
	defer timer("deposit").ObserveDuration()
	defer func() {
		b.report(ctx, "deposit", err, "account_id", acct.ID, "amount", amount, "balance", acct.Balance)
	}()

	return b.post(ctx, acct, domain.Deposit, amount)
}

// Withdraw removes amount if the stored balance covers it; the balance never
// goes negative.
func (b *Bank) Withdraw(ctx context.Context, acct *domain.Account, amount decimal.Decimal) (balance decimal.Decimal, err error) {
	defer timer("withdraw").ObserveDuration()
	defer func() {
		b.report(ctx, "withdraw", err, "account_id", acct.ID, "amount", amount, "balance", acct.Balance)
	}()

	return b.post(ctx, acct, domain.Withdrawal, amount)
}

func (b *Bank) post(ctx context.Context, acct *domain.Account, typ domain.TxnType, amount decimal.Decimal) (decimal.Decimal, error) {
	if err := positiveAmount(amount); err != nil {
		return acct.Balance, err
	}

	var updated *domain.Account
	err := b.repo.InTx(ctx, func(q store.Querier) error {
		a, err := q.LockAccount(ctx, acct.ID)
		if err != nil {
			return err
		}
		if !a.Active {
			return fmt.Errorf("account %d is inactive: %w", a.ID, domain.ErrInvalidState)
		}

		switch typ {
		case domain.Deposit:
			a.Balance = a.Balance.Add(amount)
		case domain.Withdrawal:
			if amount.GreaterThan(a.Balance) {
				return fmt.Errorf("account %d needs %s, has %s: %w", a.ID, amount.StringFixed(2), a.Balance.StringFixed(2), domain.ErrInsufficientFunds)
			}
			a.Balance = a.Balance.Sub(amount)
		}

		if err := q.SetAccountBalance(ctx, a.ID, a.Balance); err != nil {
			return err
		}
		txn := &domain.Transaction{AccountID: a.ID, Type: typ, Amount: amount, CreatedAt: b.now()}
		if _, err := q.InsertTransaction(ctx, txn); err != nil {
			return err
		}
		updated = a
		return nil
	})
	if err != nil {
		return acct.Balance, err
	}

	*acct = *updated
	b.remember(ctx, domain.EntityAccount, acct.ID, acct)
	return acct.Balance, nil
}
