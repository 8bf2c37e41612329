// Package memstore is a map-backed store.Repository. It honours the same
// contract as the Postgres store, including row-level constraints. It backs the
// service and API tests; no binary wires it.
package memstore

import (
	"context"
	"fmt"
	"maps"
	"sort"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/punchamoorthee/bankcore/internal/domain"
	"github.com/punchamoorthee/bankcore/internal/store"
)

type state struct {
	nextID       map[domain.EntityType]int64
	customers    map[int64]domain.Customer
	accounts     map[int64]domain.Account
	transactions map[int64]domain.Transaction
	employees    map[int64]domain.Employee
	loans        map[int64]domain.Loan
	cards        map[int64]domain.CreditCard
}

func newState() *state {
	return &state{
		nextID:       make(map[domain.EntityType]int64),
		customers:    make(map[int64]domain.Customer),
		accounts:     make(map[int64]domain.Account),
		transactions: make(map[int64]domain.Transaction),
		employees:    make(map[int64]domain.Employee),
		loans:        make(map[int64]domain.Loan),
		cards:        make(map[int64]domain.CreditCard),
	}
}

func (s *state) clone() *state {
	return &state{
		nextID:       maps.Clone(s.nextID),
		customers:    maps.Clone(s.customers),
		accounts:     maps.Clone(s.accounts),
		transactions: maps.Clone(s.transactions),
		employees:    maps.Clone(s.employees),
		loans:        maps.Clone(s.loans),
		cards:        maps.Clone(s.cards),
	}
}

func (s *state) assign(entity domain.EntityType) int64 {
	s.nextID[entity]++
	return s.nextID[entity]
}

// Store serialises every call through one mutex. InTx works on a copy of the
// state and swaps it in only when the callback succeeds.
type Store struct {
	mu       sync.Mutex
	st       *state
	failures map[string]error
}

var _ store.Repository = (*Store)(nil)

func New() *Store {
	return &Store{st: newState(), failures: make(map[string]error)}
}

// FailNext makes the next call to the named Querier method (for example
// "InsertTransaction") fail with err wrapped as domain.ErrStorage.
func (s *Store) FailNext(method string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[method] = err
}

// EnsureSchema exists for parity with the Postgres store.
func (s *Store) EnsureSchema(context.Context) error { return nil }

func (s *Store) InTx(ctx context.Context, fn func(q store.Querier) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	work := s.st.clone()
	if err := fn(&querier{st: work, s: s}); err != nil {
		return err
	}
	s.st = work
	return nil
}

// with runs fn against the live state under the lock.
func (s *Store) with(fn func(q *querier) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(&querier{st: s.st, s: s})
}

// querier does no locking of its own; the caller holds Store.mu.
type querier struct {
	st *state
	s  *Store
}

func (q *querier) fail(method string) error {
	err, ok := q.s.failures[method]
	if !ok {
		return nil
	}
	delete(q.s.failures, method)
	return fmt.Errorf("%w: %s: %w", domain.ErrStorage, method, err)
}

func notFound(entity domain.EntityType, id int64) error {
	return fmt.Errorf("%s %d: %w", entity, id, domain.ErrNotFound)
}

func violation(format string, args ...any) error {
	return fmt.Errorf("%w: constraint violation: %s", domain.ErrStorage, fmt.Sprintf(format, args...))
}

func (q *querier) InsertCustomer(_ context.Context, c *domain.Customer) (int64, error) {
	if err := q.fail("InsertCustomer"); err != nil {
		return 0, err
	}
	if c.FirstName == "" || c.LastName == "" {
		return 0, violation("customer names must be non-empty")
	}
	id := q.st.assign(domain.EntityCustomer)
	row := *c
	row.ID = id
	q.st.customers[id] = row
	c.ID = id
	return id, nil
}

func (q *querier) GetCustomer(_ context.Context, id int64) (*domain.Customer, error) {
	if err := q.fail("GetCustomer"); err != nil {
		return nil, err
	}
	c, ok := q.st.customers[id]
	if !ok {
		return nil, notFound(domain.EntityCustomer, id)
	}
	return &c, nil
}

func (q *querier) InsertAccount(_ context.Context, a *domain.Account) (int64, error) {
	if err := q.fail("InsertAccount"); err != nil {
		return 0, err
	}
	if _, ok := q.st.customers[a.CustomerID]; !ok {
		return 0, violation("account references missing customer %d", a.CustomerID)
	}
	if a.Balance.IsNegative() {
		return 0, violation("balance must be >= 0")
	}
	if a.Type != domain.Checking && a.Type != domain.Savings {
		return 0, violation("unknown account type %q", a.Type)
	}
	id := q.st.assign(domain.EntityAccount)
	row := *a
	row.ID = id
	q.st.accounts[id] = row
	a.ID = id
	return id, nil
}

func (q *querier) GetAccount(_ context.Context, id int64) (*domain.Account, error) {
	if err := q.fail("GetAccount"); err != nil {
		return nil, err
	}
	a, ok := q.st.accounts[id]
	if !ok {
		return nil, notFound(domain.EntityAccount, id)
	}
	return &a, nil
}

func (q *querier) LockAccount(ctx context.Context, id int64) (*domain.Account, error) {
	if err := q.fail("LockAccount"); err != nil {
		return nil, err
	}
	return q.GetAccount(ctx, id)
}

func (q *querier) SetAccountBalance(_ context.Context, id int64, balance decimal.Decimal) error {
	if err := q.fail("SetAccountBalance"); err != nil {
		return err
	}
	a, ok := q.st.accounts[id]
	if !ok {
		return notFound(domain.EntityAccount, id)
	}
	if balance.IsNegative() {
		return violation("balance must be >= 0")
	}
	a.Balance = balance
	q.st.accounts[id] = a
	return nil
}

func (q *querier) InsertTransaction(_ context.Context, t *domain.Transaction) (int64, error) {
	if err := q.fail("InsertTransaction"); err != nil {
		return 0, err
	}
	if _, ok := q.st.accounts[t.AccountID]; !ok {
		return 0, violation("transaction references missing account %d", t.AccountID)
	}
	if !t.Amount.IsPositive() {
		return 0, violation("transaction amount must be > 0")
	}
	id := q.st.assign(domain.EntityTransaction)
	row := *t
	row.ID = id
	q.st.transactions[id] = row
	t.ID = id
	return id, nil
}

func (q *querier) ListTransactions(_ context.Context, accountID int64) ([]domain.Transaction, error) {
	if err := q.fail("ListTransactions"); err != nil {
		return nil, err
	}
	var out []domain.Transaction
	for _, t := range q.st.transactions {
		if t.AccountID == accountID {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (q *querier) InsertEmployee(_ context.Context, e *domain.Employee) (int64, error) {
	if err := q.fail("InsertEmployee"); err != nil {
		return 0, err
	}
	if e.FirstName == "" || e.LastName == "" {
		return 0, violation("employee names must be non-empty")
	}
	id := q.st.assign(domain.EntityEmployee)
	row := *e
	row.ID = id
	q.st.employees[id] = row
	e.ID = id
	return id, nil
}

func (q *querier) GetEmployee(_ context.Context, id int64) (*domain.Employee, error) {
	if err := q.fail("GetEmployee"); err != nil {
		return nil, err
	}
	e, ok := q.st.employees[id]
	if !ok {
		return nil, notFound(domain.EntityEmployee, id)
	}
	return &e, nil
}

func (q *querier) InsertLoan(_ context.Context, l *domain.Loan) (int64, error) {
	if err := q.fail("InsertLoan"); err != nil {
		return 0, err
	}
	if _, ok := q.st.customers[l.CustomerID]; !ok {
		return 0, violation("loan references missing customer %d", l.CustomerID)
	}
	id := q.st.assign(domain.EntityLoan)
	row := *l
	row.ID = id
	q.st.loans[id] = row
	l.ID = id
	return id, nil
}

func (q *querier) GetLoan(_ context.Context, id int64) (*domain.Loan, error) {
	if err := q.fail("GetLoan"); err != nil {
		return nil, err
	}
	l, ok := q.st.loans[id]
	if !ok {
		return nil, notFound(domain.EntityLoan, id)
	}
	return &l, nil
}

func (q *querier) LockLoan(ctx context.Context, id int64) (*domain.Loan, error) {
	if err := q.fail("LockLoan"); err != nil {
		return nil, err
	}
	return q.GetLoan(ctx, id)
}

func (q *querier) SetLoanStatus(_ context.Context, id int64, status domain.LoanStatus) error {
	if err := q.fail("SetLoanStatus"); err != nil {
		return err
	}
	l, ok := q.st.loans[id]
	if !ok {
		return notFound(domain.EntityLoan, id)
	}
	l.Status = status
	q.st.loans[id] = l
	return nil
}

func (q *querier) InsertCreditCard(_ context.Context, c *domain.CreditCard) (int64, error) {
	if err := q.fail("InsertCreditCard"); err != nil {
		return 0, err
	}
	if _, ok := q.st.customers[c.CustomerID]; !ok {
		return 0, violation("credit card references missing customer %d", c.CustomerID)
	}
	if c.CurrentDebt.IsNegative() || c.CurrentDebt.GreaterThan(c.CreditLimit) {
		return 0, violation("current debt must be within [0, credit limit]")
	}
	id := q.st.assign(domain.EntityCreditCard)
	row := *c
	row.ID = id
	q.st.cards[id] = row
	c.ID = id
	return id, nil
}

func (q *querier) GetCreditCard(_ context.Context, id int64) (*domain.CreditCard, error) {
	if err := q.fail("GetCreditCard"); err != nil {
		return nil, err
	}
	c, ok := q.st.cards[id]
	if !ok {
		return nil, notFound(domain.EntityCreditCard, id)
	}
	return &c, nil
}

func (q *querier) LockCreditCard(ctx context.Context, id int64) (*domain.CreditCard, error) {
	if err := q.fail("LockCreditCard"); err != nil {
		return nil, err
	}
	return q.GetCreditCard(ctx, id)
}

func (q *querier) SetCardDebt(_ context.Context, id int64, debt decimal.Decimal) error {
	if err := q.fail("SetCardDebt"); err != nil {
		return err
	}
	c, ok := q.st.cards[id]
	if !ok {
		return notFound(domain.EntityCreditCard, id)
	}
	if debt.IsNegative() || debt.GreaterThan(c.CreditLimit) {
		return violation("current debt must be within [0, credit limit]")
	}
	c.CurrentDebt = debt
	q.st.cards[id] = c
	return nil
}

func (q *querier) UpdateField(_ context.Context, entity domain.EntityType, id int64, field string, value any) error {
	if err := q.fail("UpdateField"); err != nil {
		return err
	}
	if _, ok := domain.LookupField(entity, field); !ok {
		return domain.Validationf("%s field %q is not updatable", entity, field)
	}
	return q.setField(entity, id, field, value)
}

func (q *querier) setField(entity domain.EntityType, id int64, field string, value any) error {
	bad := func() error {
		return fmt.Errorf("%w: %s.%s: unexpected value type %T", domain.ErrStorage, entity, field, value)
	}
	switch entity {
	case domain.EntityCustomer:
		c, ok := q.st.customers[id]
		if !ok {
			return notFound(entity, id)
		}
		v, ok := value.(string)
		if !ok {
			return bad()
		}
		switch field {
		case "first_name":
			c.FirstName = v
		case "last_name":
			c.LastName = v
		case "address":
			c.Address = v
		}
		q.st.customers[id] = c
	case domain.EntityEmployee:
		e, ok := q.st.employees[id]
		if !ok {
			return notFound(entity, id)
		}
		if field == "salary" {
			v, ok := value.(decimal.Decimal)
			if !ok {
				return bad()
			}
			e.Salary = v
		} else {
			v, ok := value.(string)
			if !ok {
				return bad()
			}
			switch field {
			case "first_name":
				e.FirstName = v
			case "last_name":
				e.LastName = v
			case "position":
				e.Position = v
			}
		}
		q.st.employees[id] = e
	case domain.EntityAccount:
		a, ok := q.st.accounts[id]
		if !ok {
			return notFound(entity, id)
		}
		v, ok := value.(bool)
		if !ok {
			return bad()
		}
		a.Active = v
		q.st.accounts[id] = a
	case domain.EntityCreditCard:
		c, ok := q.st.cards[id]
		if !ok {
			return notFound(entity, id)
		}
		v, ok := value.(bool)
		if !ok {
			return bad()
		}
		c.Active = v
		q.st.cards[id] = c
	}
	return nil
}

// The Store's own Querier methods run against the live state.

func (s *Store) InsertCustomer(ctx context.Context, c *domain.Customer) (id int64, err error) {
	err = s.with(func(q *querier) error { id, err = q.InsertCustomer(ctx, c); return err })
	return id, err
}

func (s *Store) GetCustomer(ctx context.Context, id int64) (c *domain.Customer, err error) {
	err = s.with(func(q *querier) error { c, err = q.GetCustomer(ctx, id); return err })
	return c, err
}

func (s *Store) InsertAccount(ctx context.Context, a *domain.Account) (id int64, err error) {
	err = s.with(func(q *querier) error { id, err = q.InsertAccount(ctx, a); return err })
	return id, err
}

func (s *Store) GetAccount(ctx context.Context, id int64) (a *domain.Account, err error) {
	err = s.with(func(q *querier) error { a, err = q.GetAccount(ctx, id); return err })
	return a, err
}

func (s *Store) LockAccount(ctx context.Context, id int64) (a *domain.Account, err error) {
	err = s.with(func(q *querier) error { a, err = q.LockAccount(ctx, id); return err })
	return a, err
}

func (s *Store) SetAccountBalance(ctx context.Context, id int64, balance decimal.Decimal) error {
	return s.with(func(q *querier) error { return q.SetAccountBalance(ctx, id, balance) })
}

func (s *Store) InsertTransaction(ctx context.Context, t *domain.Transaction) (id int64, err error) {
	err = s.with(func(q *querier) error { id, err = q.InsertTransaction(ctx, t); return err })
	return id, err
}

func (s *Store) ListTransactions(ctx context.Context, accountID int64) (out []domain.Transaction, err error) {
	err = s.with(func(q *querier) error { out, err = q.ListTransactions(ctx, accountID); return err })
	return out, err
}

func (s *Store) InsertEmployee(ctx context.Context, e *domain.Employee) (id int64, err error) {
	err = s.with(func(q *querier) error { id, err = q.InsertEmployee(ctx, e); return err })
	return id, err
}

func (s *Store) GetEmployee(ctx context.Context, id int64) (e *domain.Employee, err error) {
	err = s.with(func(q *querier) error { e, err = q.GetEmployee(ctx, id); return err })
	return e, err
}

func (s *Store) InsertLoan(ctx context.Context, l *domain.Loan) (id int64, err error) {
	err = s.with(func(q *querier) error { id, err = q.InsertLoan(ctx, l); return err })
	return id, err
}

func (s *Store) GetLoan(ctx context.Context, id int64) (l *domain.Loan, err error) {
	err = s.with(func(q *querier) error { l, err = q.GetLoan(ctx, id); return err })
	return l, err
}

func (s *Store) LockLoan(ctx context.Context, id int64) (l *domain.Loan, err error) {
	err = s.with(func(q *querier) error { l, err = q.LockLoan(ctx, id); return err })
	return l, err
}

func (s *Store) SetLoanStatus(ctx context.Context, id int64, status domain.LoanStatus) error {
	return s.with(func(q *querier) error { return q.SetLoanStatus(ctx, id, status) })
}

func (s *Store) InsertCreditCard(ctx context.Context, c *domain.CreditCard) (id int64, err error) {
	err = s.with(func(q *querier) error { id, err = q.InsertCreditCard(ctx, c); return err })
	return id, err
}

func (s *Store) GetCreditCard(ctx context.Context, id int64) (c *domain.CreditCard, err error) {
	err = s.with(func(q *querier) error { c, err = q.GetCreditCard(ctx, id); return err })
	return c, err
}

func (s *Store) LockCreditCard(ctx context.Context, id int64) (c *domain.CreditCard, err error) {
	err = s.with(func(q *querier) error { c, err = q.LockCreditCard(ctx, id); return err })
	return c, err
}

func (s *Store) SetCardDebt(ctx context.Context, id int64, debt decimal.Decimal) error {
	return s.with(func(q *querier) error { return q.SetCardDebt(ctx, id, debt) })
}

func (s *Store) UpdateField(ctx context.Context, entity domain.EntityType, id int64, field string, value any) error {
	return s.with(func(q *querier) error { return q.UpdateField(ctx, entity, id, field, value) })
}
