package domain

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestParseAccountType(t *testing.T) {
	cases := map[string]AccountType{
		"savings":     Savings,
		" CHECKING  ": Checking,
		"Savings":     Savings,
		"":            "",
		"gold":        "Gold",
	}
	for in, want := range cases {
		if got := ParseAccountType(in); got != want {
			t.Errorf("ParseAccountType(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestAvailableCredit(t *testing.T) {
	c := CreditCard{CreditLimit: decimal.RequireFromString("500.00"), CurrentDebt: decimal.RequireFromString("120.25")}
	if got := c.AvailableCredit(); !got.Equal(decimal.RequireFromString("379.75")) {
		t.Fatalf("AvailableCredit = %s", got)
	}
}

func TestInvalidAmountIsValidationError(t *testing.T) {
	if !errors.Is(ErrInvalidAmount, ErrValidation) {
		t.Fatal("ErrInvalidAmount should match ErrValidation")
	}
	err := Validationf("salary %s", "-1")
	if !errors.Is(err, ErrValidation) || err.Error() != "validation failed: salary -1" {
		t.Fatalf("Validationf = %v", err)
	}
}

func TestLookupField(t *testing.T) {
	if kind, ok := LookupField(EntityEmployee, "salary"); !ok || kind != FieldMoney {
		t.Fatalf("salary: kind=%v ok=%v", kind, ok)
	}
	for _, tc := range []struct {
		entity EntityType
		field  string
	}{
		{EntityAccount, "balance"},
		{EntityCreditCard, "current_debt"},
		{EntityLoan, "status"},
		{EntityTransaction, "amount"},
	} {
		if _, ok := LookupField(tc.entity, tc.field); ok {
			t.Errorf("%s.%s must not be updatable", tc.entity, tc.field)
		}
	}
}
