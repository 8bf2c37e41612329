package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the persisted shape of a customer's join date.
const DateLayout = "2006-01-02"

// EntityType names a persisted record kind.
type EntityType string

const (
	EntityCustomer    EntityType = "customer"
	EntityAccount     EntityType = "account"
	EntityTransaction EntityType = "transaction"
	EntityEmployee    EntityType = "employee"
	EntityLoan        EntityType = "loan"
	EntityCreditCard  EntityType = "credit_card"
)

// AccountType is fixed when the account is opened.
type AccountType string

const (
	Checking AccountType = "Checking"
	Savings  AccountType = "Savings"
)

// ParseAccountType accepts any casing ("savings", " CHECKING ") and returns
// the canonical value. Unknown input is returned as-is so validation rejects it.
func ParseAccountType(s string) AccountType {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	return AccountType(strings.ToUpper(s[:1]) + strings.ToLower(s[1:]))
}

// TxnType is the direction of a ledger row.
type TxnType string

const (
	Deposit    TxnType = "Deposit"
	Withdrawal TxnType = "Withdrawal"
)

// LoanStatus only moves Pending -> Approved. Paid is stored but never reached.
type LoanStatus string

const (
	LoanPending  LoanStatus = "Pending"
	LoanApproved LoanStatus = "Approved"
	LoanPaid     LoanStatus = "Paid"
)

// Defaults carried by new records when the caller leaves them unset (zero).
var (
	DefaultInterestRate = decimal.RequireFromString("0.05")
	DefaultCreditLimit  = decimal.RequireFromString("1000.00")
)

// Customer is a bank customer. JoinDate is a DateLayout string.
type Customer struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name" validate:"required"`
	Address   string `json:"address"`
	JoinDate  string `json:"join_date" validate:"required,datetime=2006-01-02"`
}

// FullName joins first and last name.
func (c Customer) FullName() string {
	return c.FirstName + " " + c.LastName
}

// Account holds a non-negative balance owned by one customer.
type Account struct {
	ID         int64           `json:"id"`
	CustomerID int64           `json:"customer_id" validate:"required,gt=0"`
	Balance    decimal.Decimal `json:"balance"`
	Type       AccountType     `json:"account_type" validate:"required,oneof=Checking Savings"`
	Active     bool            `json:"is_active"`
}

// Transaction is an append-only ledger row for an account.
type Transaction struct {
	ID        int64           `json:"id"`
	AccountID int64           `json:"account_id"`
	Type      TxnType         `json:"txn_type"`
	Amount    decimal.Decimal `json:"amount"`
	CreatedAt time.Time       `json:"timestamp"`
}

// Employee is a member of staff. No invariants beyond named existence.
type Employee struct {
	ID        int64           `json:"id"`
	FirstName string          `json:"first_name" validate:"required"`
	LastName  string          `json:"last_name" validate:"required"`
	Position  string          `json:"position"`
	Salary    decimal.Decimal `json:"salary"`
}

// FullName joins first and last name.
func (e Employee) FullName() string {
	return e.FirstName + " " + e.LastName
}

// Loan is a customer's loan application.
type Loan struct {
	ID           int64           `json:"id"`
	CustomerID   int64           `json:"customer_id" validate:"required,gt=0"`
	Amount       decimal.Decimal `json:"amount"`
	InterestRate decimal.Decimal `json:"interest_rate"`
	Status       LoanStatus      `json:"status" validate:"required,oneof=Pending Approved Paid"`
}

// CreditCard tracks debt against a fixed limit: 0 <= CurrentDebt <= CreditLimit.
type CreditCard struct {
	ID          int64           `json:"id"`
	CustomerID  int64           `json:"customer_id" validate:"required,gt=0"`
	CreditLimit decimal.Decimal `json:"credit_limit"`
	CurrentDebt decimal.Decimal `json:"current_debt"`
	Active      bool            `json:"is_active"`
}

// AvailableCredit is what can still be spent on the card.
func (c CreditCard) AvailableCredit() decimal.Decimal {
	return c.CreditLimit.Sub(c.CurrentDebt)
}

// FieldKind is the Go type an updatable column expects.
type FieldKind int

const (
	FieldText FieldKind = iota
	FieldRequiredText
	FieldMoney
	FieldBool
)

// UpdatableFields lists the columns that UpdateField may touch per entity.
// Balance, debt and loan status are absent: only the mutators change them.
var UpdatableFields = map[EntityType]map[string]FieldKind{
	EntityCustomer: {
		"first_name": FieldRequiredText,
		"last_name":  FieldRequiredText,
		"address":    FieldText,
	},
	EntityEmployee: {
		"first_name": FieldRequiredText,
		"last_name":  FieldRequiredText,
		"position":   FieldText,
		"salary":     FieldMoney,
	},
	EntityAccount: {
		"is_active": FieldBool,
	},
	EntityCreditCard: {
		"is_active": FieldBool,
	},
}

// LookupField reports the kind of an updatable column.
func LookupField(entity EntityType, field string) (FieldKind, bool) {
	fields, ok := UpdatableFields[entity]
	if !ok {
		return 0, false
	}
	kind, ok := fields[field]
	return kind, ok
}
