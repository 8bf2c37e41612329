package store

import "context"

// schema is applied in order; every statement is idempotent.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS customers (
		customer_id BIGSERIAL PRIMARY KEY,
		first_name  TEXT NOT NULL CHECK (first_name <> ''),
		last_name   TEXT NOT NULL CHECK (last_name <> ''),
		address     TEXT NOT NULL DEFAULT '',
		join_date   DATE NOT NULL DEFAULT CURRENT_DATE
	)`,
	`CREATE TABLE IF NOT EXISTS accounts (
		account_id   BIGSERIAL PRIMARY KEY,
		customer_id  BIGINT NOT NULL REFERENCES customers (customer_id),
		balance      NUMERIC(20,2) NOT NULL CHECK (balance >= 0),
		account_type TEXT NOT NULL CHECK (account_type IN ('Checking', 'Savings')),
		is_active    BOOLEAN NOT NULL DEFAULT TRUE
	)`,
	`CREATE TABLE IF NOT EXISTS transactions (
		txn_id     BIGSERIAL PRIMARY KEY,
		account_id BIGINT NOT NULL REFERENCES accounts (account_id),
		txn_type   TEXT NOT NULL CHECK (txn_type IN ('Deposit', 'Withdrawal')),
		amount     NUMERIC(20,2) NOT NULL CHECK (amount > 0),
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS transactions_account_id_idx ON transactions (account_id)`,
	`CREATE TABLE IF NOT EXISTS employees (
		employee_id BIGSERIAL PRIMARY KEY,
		first_name  TEXT NOT NULL CHECK (first_name <> ''),
		last_name   TEXT NOT NULL CHECK (last_name <> ''),
		position    TEXT NOT NULL DEFAULT '',
		salary      NUMERIC(20,2) NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS loans (
		loan_id       BIGSERIAL PRIMARY KEY,
		customer_id   BIGINT NOT NULL REFERENCES customers (customer_id),
		amount        NUMERIC(20,2) NOT NULL CHECK (amount > 0),
		interest_rate NUMERIC(8,5) NOT NULL CHECK (interest_rate >= 0),
		status        TEXT NOT NULL CHECK (status IN ('Pending', 'Approved', 'Paid'))
	)`,
	`CREATE TABLE IF NOT EXISTS credit_cards (
		card_id      BIGSERIAL PRIMARY KEY,
		customer_id  BIGINT NOT NULL REFERENCES customers (customer_id),
		credit_limit NUMERIC(20,2) NOT NULL CHECK (credit_limit > 0),
		current_debt NUMERIC(20,2) NOT NULL DEFAULT 0,
		is_active    BOOLEAN NOT NULL DEFAULT TRUE,
		CHECK (current_debt >= 0 AND current_debt <= credit_limit)
	)`,
}

// EnsureSchema creates every table that does not exist yet. Safe to call on
// each startup.
func (s *Store) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := s.Db.Exec(ctx, stmt); err != nil {
			return storageErr("ensure schema", err)
		}
	}
	return nil
}

// Tables lists the tables EnsureSchema manages, in creation order.
func Tables() []string {
	return []string{"customers", "accounts", "transactions", "employees", "loans", "credit_cards"}
}
