// Package store maps bank entities to Postgres rows through pgx.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/punchamoorthee/bankcore/internal/domain"
)

// Querier is the per-entity row contract. Both the pool-backed Store and the
// callback argument of InTx implement it.
type Querier interface {
	InsertCustomer(ctx context.Context, c *domain.Customer) (int64, error)
	GetCustomer(ctx context.Context, id int64) (*domain.Customer, error)

	InsertAccount(ctx context.Context, a *domain.Account) (int64, error)
	GetAccount(ctx context.Context, id int64) (*domain.Account, error)
	LockAccount(ctx context.Context, id int64) (*domain.Account, error)
	SetAccountBalance(ctx context.Context, id int64, balance decimal.Decimal) error

	InsertTransaction(ctx context.Context, t *domain.Transaction) (int64, error)
	ListTransactions(ctx context.Context, accountID int64) ([]domain.Transaction, error)

	InsertEmployee(ctx context.Context, e *domain.Employee) (int64, error)
	GetEmployee(ctx context.Context, id int64) (*domain.Employee, error)

	InsertLoan(ctx context.Context, l *domain.Loan) (int64, error)
	GetLoan(ctx context.Context, id int64) (*domain.Loan, error)
	LockLoan(ctx context.Context, id int64) (*domain.Loan, error)
	SetLoanStatus(ctx context.Context, id int64, status domain.LoanStatus) error

	InsertCreditCard(ctx context.Context, c *domain.CreditCard) (int64, error)
	GetCreditCard(ctx context.Context, id int64) (*domain.CreditCard, error)
	LockCreditCard(ctx context.Context, id int64) (*domain.CreditCard, error)
	SetCardDebt(ctx context.Context, id int64, debt decimal.Decimal) error

	UpdateField(ctx context.Context, entity domain.EntityType, id int64, field string, value any) error
}

// Repository adds atomic multi-statement work on top of Querier.
type Repository interface {
	Querier
	InTx(ctx context.Context, fn func(q Querier) error) error
}

// dbtx is satisfied by both *pgxpool.Pool and pgx.Tx.
type dbtx interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type queries struct {
	db dbtx
}

type Store struct {
	Db         *pgxpool.Pool
	maxRetries int
	*queries
}

func NewStore(ctx context.Context, connString string, maxRetries int) (*Store, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("unable to parse database config: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	return New(pool, maxRetries), nil
}

// New wraps an existing pool.
func New(pool *pgxpool.Pool, maxRetries int) *Store {
	return &Store{Db: pool, maxRetries: maxRetries, queries: &queries{db: pool}}
}

func (s *Store) Close() {
	s.Db.Close()
}

// InTx runs fn inside one database transaction. Serialization failures and
// deadlocks are retried up to maxRetries times; fn must be safe to re-run.
func (s *Store) InTx(ctx context.Context, fn func(q Querier) error) error {
	for attempt := 0; ; attempt++ {
		err := s.runTx(ctx, fn)
		if err == nil || attempt >= s.maxRetries || !retryable(err) {
			return err
		}
	}
}

func (s *Store) runTx(ctx context.Context, fn func(q Querier) error) error {
	tx, err := s.Db.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return storageErr("tx begin", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(&queries{db: tx}); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return storageErr("tx commit", err)
	}
	return nil
}

func retryable(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == "40001" || pgErr.Code == "40P01"
}

// storageErr tags a driver error as domain.ErrStorage while keeping the
// driver error reachable for errors.As.
func storageErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", domain.ErrStorage, op, err)
}

// rowErr maps pgx.ErrNoRows to domain.ErrNotFound.
func rowErr(entity domain.EntityType, id int64, err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s %d: %w", entity, id, domain.ErrNotFound)
	}
	return storageErr(fmt.Sprintf("load %s %d", entity, id), err)
}
