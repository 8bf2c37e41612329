package memstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/punchamoorthee/bankcore/internal/domain"
	"github.com/punchamoorthee/bankcore/internal/store"
)

func seedCustomer(t *testing.T, s *Store) int64 {
	t.Helper()
	id, err := s.InsertCustomer(context.Background(), &domain.Customer{FirstName: "Ada", LastName: "Lovelace", JoinDate: "2024-01-02"})
	if err != nil {
		t.Fatal(err)
	}
	return id
}

func TestIDsAreMonotonicPerEntity(t *testing.T) {
	ctx := context.Background()
	s := New()
	first := seedCustomer(t, s)
	second := seedCustomer(t, s)
	if first != 1 || second != 2 {
		t.Fatalf("customer ids = %d, %d", first, second)
	}

	a := &domain.Account{CustomerID: first, Type: domain.Checking, Active: true}
	id, err := s.InsertAccount(ctx, a)
	if err != nil {
		t.Fatal(err)
	}
	if id != 1 || a.ID != 1 {
		t.Fatalf("account id = %d (entity %d)", id, a.ID)
	}
}

func TestInTxRollsBackOnError(t *testing.T) {
	ctx := context.Background()
	s := New()
	cid := seedCustomer(t, s)
	a := &domain.Account{CustomerID: cid, Type: domain.Savings, Balance: decimal.NewFromInt(10), Active: true}
	if _, err := s.InsertAccount(ctx, a); err != nil {
		t.Fatal(err)
	}

	boom := errors.New("boom")
	err := s.InTx(ctx, func(q store.Querier) error {
		if err := q.SetAccountBalance(ctx, a.ID, decimal.NewFromInt(99)); err != nil {
			return err
		}
		if _, err := q.InsertTransaction(ctx, &domain.Transaction{AccountID: a.ID, Type: domain.Deposit, Amount: decimal.NewFromInt(89), CreatedAt: time.Now()}); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("InTx err = %v", err)
	}

	got, _ := s.GetAccount(ctx, a.ID)
	if !got.Balance.Equal(decimal.NewFromInt(10)) {
		t.Fatalf("balance = %s after rollback", got.Balance)
	}
	txns, _ := s.ListTransactions(ctx, a.ID)
	if len(txns) != 0 {
		t.Fatalf("transactions = %d after rollback", len(txns))
	}
}

func TestConstraintViolationsAreStorageErrors(t *testing.T) {
	ctx := context.Background()
	s := New()
	cid := seedCustomer(t, s)

	card := &domain.CreditCard{CustomerID: cid, CreditLimit: decimal.NewFromInt(100), Active: true}
	if _, err := s.InsertCreditCard(ctx, card); err != nil {
		t.Fatal(err)
	}

	cases := map[string]error{
		"orphan account": func() error {
			_, err := s.InsertAccount(ctx, &domain.Account{CustomerID: 42, Type: domain.Checking})
			return err
		}(),
		"negative balance": func() error {
			_, err := s.InsertAccount(ctx, &domain.Account{CustomerID: cid, Type: domain.Checking, Balance: decimal.NewFromInt(-1)})
			return err
		}(),
		"debt over limit": s.SetCardDebt(ctx, card.ID, decimal.NewFromInt(101)),
		"orphan loan": func() error {
			_, err := s.InsertLoan(ctx, &domain.Loan{CustomerID: 42, Amount: decimal.NewFromInt(1), Status: domain.LoanPending})
			return err
		}(),
	}
	for name, err := range cases {
		if !errors.Is(err, domain.ErrStorage) {
			t.Errorf("%s: want ErrStorage, got %v", name, err)
		}
	}
}

func TestGetMissingIsNotFound(t *testing.T) {
	ctx := context.Background()
	s := New()
	if _, err := s.GetCustomer(ctx, 1); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("customer: %v", err)
	}
	if _, err := s.GetLoan(ctx, 1); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("loan: %v", err)
	}
	if err := s.UpdateField(ctx, domain.EntityEmployee, 3, "position", "Manager"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("update: %v", err)
	}
}

func TestFailNextFiresOnce(t *testing.T) {
	ctx := context.Background()
	s := New()
	s.FailNext("GetCustomer", errors.New("timeout"))
	cid := seedCustomer(t, s)

	if _, err := s.GetCustomer(ctx, cid); !errors.Is(err, domain.ErrStorage) {
		t.Fatalf("first call: want ErrStorage, got %v", err)
	}
	if _, err := s.GetCustomer(ctx, cid); err != nil {
		t.Fatalf("second call: %v", err)
	}
}

func TestUpdateFieldWhitelist(t *testing.T) {
	ctx := context.Background()
	s := New()
	cid := seedCustomer(t, s)

	if err := s.UpdateField(ctx, domain.EntityCustomer, cid, "join_date", "2020-01-01"); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("want ErrValidation, got %v", err)
	}
	if err := s.UpdateField(ctx, domain.EntityCustomer, cid, "last_name", "Byron"); err != nil {
		t.Fatal(err)
	}
	c, _ := s.GetCustomer(ctx, cid)
	if c.FullName() != "Ada Byron" {
		t.Fatalf("name = %q", c.FullName())
	}
}
