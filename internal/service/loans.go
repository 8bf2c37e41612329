package service

import (
	"context"
	"fmt"

	"github.com/punchamoorthee/bankcore/internal/domain"
	"github.com/punchamoorthee/bankcore/internal/store"
)

// ApplyForLoan records a Pending loan for an existing customer. A zero
// InterestRate means unset and takes domain.DefaultInterestRate.
func (b *Bank) ApplyForLoan(ctx context.Context, l *domain.Loan) (id int64, err error) {
	defer timer("apply_for_loan").ObserveDuration()
	defer func() {
		b.report(ctx, "apply_for_loan", err, "loan_id", id, "customer_id", l.CustomerID, "amount", l.Amount, "interest_rate", l.InterestRate)
	}()

	l.Status = domain.LoanPending
	if l.InterestRate.IsZero() {
		l.InterestRate = domain.DefaultInterestRate
	}
	if err := b.check(l); err != nil {
		return 0, err
	}
	if err := positiveAmount(l.Amount); err != nil {
		return 0, err
	}
	if l.InterestRate.IsNegative() {
		return 0, domain.Validationf("interest_rate must not be negative")
	}
	if !l.InterestRate.Equal(l.InterestRate.Round(5)) {
		return 0, domain.Validationf("interest_rate %s has more than five decimal places", l.InterestRate)
	}
	if _, err := load(ctx, b, domain.EntityCustomer, l.CustomerID, b.repo.GetCustomer); err != nil {
		return 0, err
	}
	return b.repo.InsertLoan(ctx, l)
}

func (b *Bank) GetLoan(ctx context.Context, id int64) (l *domain.Loan, err error) {
	defer timer("get_loan").ObserveDuration()
	defer func() { b.report(ctx, "get_loan", err, "loan_id", id) }()

	return load(ctx, b, domain.EntityLoan, id, b.repo.GetLoan)
}

// ApproveLoan moves a Pending loan to Approved. Any other stored status yields
// ErrInvalidState, so a second approval fails.
func (b *Bank) ApproveLoan(ctx context.Context, loan *domain.Loan) (err error) {
	defer timer("approve_loan").ObserveDuration()
	defer func() {
		b.report(ctx, "approve_loan", err, "loan_id", loan.ID, "customer_id", loan.CustomerID, "status", loan.Status)
	}()

	var updated *domain.Loan
	err = b.repo.InTx(ctx, func(q store.Querier) error {
		l, err := q.LockLoan(ctx, loan.ID)
		if err != nil {
			return err
		}
		if l.Status != domain.LoanPending {
			return fmt.Errorf("loan %d is %s: %w", l.ID, l.Status, domain.ErrInvalidState)
		}
		l.Status = domain.LoanApproved
		if err := q.SetLoanStatus(ctx, l.ID, l.Status); err != nil {
			return err
		}
		updated = l
		return nil
	})
	if err != nil {
		return err
	}

	*loan = *updated
	b.remember(ctx, domain.EntityLoan, loan.ID, loan)
	return nil
}
