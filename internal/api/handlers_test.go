package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"github.com/punchamoorthee/bankcore/internal/domain"
	"github.com/punchamoorthee/bankcore/internal/logging"
	"github.com/punchamoorthee/bankcore/internal/service"
	"github.com/punchamoorthee/bankcore/internal/store/memstore"
)

// ---- helpers ----

func newTestRouter(t *testing.T) (*mux.Router, *memstore.Store) {
	t.Helper()
	repo := memstore.New()
	bank := service.New(repo, service.WithLogger(logging.Discard()))
	return NewRouter(NewHandler(bank, logging.Discard())), repo
}

func doRequest(router http.Handler, method, url, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, url, nil)
	} else {
		req = httptest.NewRequest(method, url, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, dst any) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), dst); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
}

func mustCreate(t *testing.T, router http.Handler, url, body string) int64 {
	t.Helper()
	w := doRequest(router, http.MethodPost, url, body)
	if w.Code != http.StatusCreated {
		t.Fatalf("POST %s: expected 201, got %d: %s", url, w.Code, w.Body.String())
	}
	var out struct {
		ID int64 `json:"id"`
	}
	decodeBody(t, w, &out)
	return out.ID
}

func seedAccount(t *testing.T, router http.Handler, initial string) int64 {
	t.Helper()
	custID := mustCreate(t, router, "/api/v1/customers", `{"first_name":"Ada","last_name":"Lovelace","address":"12 Analytical St"}`)
	return mustCreate(t, router, "/api/v1/accounts", fmt.Sprintf(`{"customer_id":%d,"account_type":"savings","initial_deposit":%s}`, custID, initial))
}

// ---- tests ----

func TestHealthCheck(t *testing.T) {
	router, _ := newTestRouter(t)
	w := doRequest(router, http.MethodGet, "/health", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if w.Header().Get(RequestIDHeader) == "" {
		t.Fatal("expected a generated request id")
	}
}

func TestRequestIDIsEchoed(t *testing.T) {
	router, _ := newTestRouter(t)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if got := w.Header().Get(RequestIDHeader); got != "abc-123" {
		t.Fatalf("expected echoed request id, got %q", got)
	}
}

func TestCreateAndGetCustomer(t *testing.T) {
	router, _ := newTestRouter(t)
	w := doRequest(router, http.MethodPost, "/api/v1/customers", `{"first_name":" Grace ","last_name":"Hopper","join_date":"2020-01-02"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var created domain.Customer
	decodeBody(t, w, &created)
	if created.ID == 0 || created.FirstName != "Grace" {
		t.Fatalf("unexpected customer: %+v", created)
	}
	if loc := w.Header().Get("Location"); loc != fmt.Sprintf("/api/v1/customers/%d", created.ID) {
		t.Fatalf("unexpected Location %q", loc)
	}

	w = doRequest(router, http.MethodGet, fmt.Sprintf("/api/v1/customers/%d", created.ID), "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var got domain.Customer
	decodeBody(t, w, &got)
	if got.JoinDate != "2020-01-02" || got.LastName != "Hopper" {
		t.Fatalf("unexpected customer: %+v", got)
	}
}

func TestCreateCustomerRejectsEmptyName(t *testing.T) {
	router, repo := newTestRouter(t)
	w := doRequest(router, http.MethodPost, "/api/v1/customers", `{"first_name":"","last_name":"Hopper"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if _, err := repo.GetCustomer(context.Background(), 1); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("nothing should be persisted, got %v", err)
	}
}

func TestMalformedRequests(t *testing.T) {
	router, _ := newTestRouter(t)
	tests := []struct {
		name, method, url, body string
		want                    int
	}{
		{"bad json", http.MethodPost, "/api/v1/customers", `{"first_name":`, http.StatusBadRequest},
		{"unknown field", http.MethodPost, "/api/v1/customers", `{"first_name":"A","last_name":"B","ssn":"x"}`, http.StatusBadRequest},
		{"non-numeric id", http.MethodGet, "/api/v1/accounts/abc", "", http.StatusBadRequest},
		{"zero id", http.MethodGet, "/api/v1/loans/0", "", http.StatusBadRequest},
		{"missing account", http.MethodGet, "/api/v1/accounts/99", "", http.StatusNotFound},
		{"missing card", http.MethodPost, "/api/v1/credit-cards/99/purchases", `{"amount":"1"}`, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(router, tt.method, tt.url, tt.body)
			if w.Code != tt.want {
				t.Fatalf("expected %d, got %d: %s", tt.want, w.Code, w.Body.String())
			}
		})
	}
}

func TestDepositAndWithdraw(t *testing.T) {
	router, _ := newTestRouter(t)
	acctID := seedAccount(t, router, `"100.00"`)
	base := fmt.Sprintf("/api/v1/accounts/%d", acctID)

	w := doRequest(router, http.MethodPost, base+"/deposits", `{"amount":50}`)
	if w.Code != http.StatusOK {
		t.Fatalf("deposit: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var res balanceResponse
	decodeBody(t, w, &res)
	if !res.Balance.Equal(decimal.RequireFromString("150")) {
		t.Fatalf("expected balance 150, got %s", res.Balance)
	}

	w = doRequest(router, http.MethodPost, base+"/withdrawals", `{"amount":"200"}`)
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("overdraw: expected 422, got %d", w.Code)
	}

	w = doRequest(router, http.MethodPost, base+"/withdrawals", `{"amount":"30.25"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("withdraw: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	decodeBody(t, w, &res)
	if !res.Balance.Equal(decimal.RequireFromString("119.75")) {
		t.Fatalf("expected balance 119.75, got %s", res.Balance)
	}

	w = doRequest(router, http.MethodGet, base+"/transactions", "")
	var txns []domain.Transaction
	decodeBody(t, w, &txns)
	if len(txns) != 2 || txns[0].Type != domain.Deposit || txns[1].Type != domain.Withdrawal {
		t.Fatalf("unexpected ledger: %+v", txns)
	}
}

func TestNonPositiveAmountIsUnprocessable(t *testing.T) {
	router, _ := newTestRouter(t)
	acctID := seedAccount(t, router, "10")
	for _, amount := range []string{`0`, `"-5"`} {
		w := doRequest(router, http.MethodPost, fmt.Sprintf("/api/v1/accounts/%d/deposits", acctID), `{"amount":`+amount+`}`)
		if w.Code != http.StatusUnprocessableEntity {
			t.Fatalf("amount %s: expected 422, got %d", amount, w.Code)
		}
	}
}

func TestEmptyLedgerIsJSONArray(t *testing.T) {
	router, _ := newTestRouter(t)
	acctID := seedAccount(t, router, "0")
	w := doRequest(router, http.MethodGet, fmt.Sprintf("/api/v1/accounts/%d/transactions", acctID), "")
	if strings.TrimSpace(w.Body.String()) != "[]" {
		t.Fatalf("expected [], got %s", w.Body.String())
	}
}

func TestLoanLifecycle(t *testing.T) {
	router, _ := newTestRouter(t)
	custID := mustCreate(t, router, "/api/v1/customers", `{"first_name":"Ada","last_name":"Lovelace"}`)
	loanID := mustCreate(t, router, "/api/v1/loans", fmt.Sprintf(`{"customer_id":%d,"amount":"5000"}`, custID))

	w := doRequest(router, http.MethodGet, fmt.Sprintf("/api/v1/loans/%d", loanID), "")
	var loan domain.Loan
	decodeBody(t, w, &loan)
	if loan.Status != domain.LoanPending || !loan.InterestRate.Equal(domain.DefaultInterestRate) {
		t.Fatalf("unexpected loan: %+v", loan)
	}

	approve := fmt.Sprintf("/api/v1/loans/%d/approve", loanID)
	w = doRequest(router, http.MethodPost, approve, "")
	if w.Code != http.StatusOK {
		t.Fatalf("approve: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	decodeBody(t, w, &loan)
	if loan.Status != domain.LoanApproved {
		t.Fatalf("expected Approved, got %s", loan.Status)
	}

	w = doRequest(router, http.MethodPost, approve, "")
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("second approve: expected 422, got %d", w.Code)
	}
}

func TestLoanForUnknownCustomer(t *testing.T) {
	router, _ := newTestRouter(t)
	w := doRequest(router, http.MethodPost, "/api/v1/loans", `{"customer_id":42,"amount":"10"}`)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestCreditCardPurchases(t *testing.T) {
	router, _ := newTestRouter(t)
	custID := mustCreate(t, router, "/api/v1/customers", `{"first_name":"Ada","last_name":"Lovelace"}`)
	cardID := mustCreate(t, router, "/api/v1/credit-cards", fmt.Sprintf(`{"customer_id":%d,"credit_limit":"500"}`, custID))
	url := fmt.Sprintf("/api/v1/credit-cards/%d/purchases", cardID)

	w := doRequest(router, http.MethodPost, url, `{"amount":"450"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("purchase: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var res purchaseResponse
	decodeBody(t, w, &res)
	if !res.AvailableCredit.Equal(decimal.RequireFromString("50")) {
		t.Fatalf("expected 50 available, got %s", res.AvailableCredit)
	}

	w = doRequest(router, http.MethodPost, url, `{"amount":"60"}`)
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("over limit: expected 422, got %d", w.Code)
	}
}

func TestDefaultCreditLimit(t *testing.T) {
	router, _ := newTestRouter(t)
	custID := mustCreate(t, router, "/api/v1/customers", `{"first_name":"Ada","last_name":"Lovelace"}`)
	cardID := mustCreate(t, router, "/api/v1/credit-cards", fmt.Sprintf(`{"customer_id":%d}`, custID))

	w := doRequest(router, http.MethodGet, fmt.Sprintf("/api/v1/credit-cards/%d", cardID), "")
	var card domain.CreditCard
	decodeBody(t, w, &card)
	if !card.CreditLimit.Equal(domain.DefaultCreditLimit) || !card.Active {
		t.Fatalf("unexpected card: %+v", card)
	}
}

func TestUpdateFieldEndpoints(t *testing.T) {
	router, _ := newTestRouter(t)
	empID := mustCreate(t, router, "/api/v1/employees", `{"first_name":"Alan","last_name":"Turing","position":"Teller","salary":"3000"}`)
	url := fmt.Sprintf("/api/v1/employees/%d", empID)

	w := doRequest(router, http.MethodPatch, url, `{"field":"salary","value":3500.50}`)
	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d: %s", w.Code, w.Body.String())
	}
	w = doRequest(router, http.MethodGet, url, "")
	var emp domain.Employee
	decodeBody(t, w, &emp)
	if !emp.Salary.Equal(decimal.RequireFromString("3500.50")) {
		t.Fatalf("expected salary 3500.50, got %s", emp.Salary)
	}

	w = doRequest(router, http.MethodPatch, url, `{"field":"id","value":7}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("non-whitelisted field: expected 400, got %d", w.Code)
	}
}

func TestDeactivatedAccountRejectsDeposits(t *testing.T) {
	router, _ := newTestRouter(t)
	acctID := seedAccount(t, router, "10")
	url := fmt.Sprintf("/api/v1/accounts/%d", acctID)

	w := doRequest(router, http.MethodPatch, url, `{"field":"is_active","value":false}`)
	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d: %s", w.Code, w.Body.String())
	}
	w = doRequest(router, http.MethodPost, url+"/deposits", `{"amount":"1"}`)
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", w.Code)
	}
}

func TestStorageFailureIsHidden(t *testing.T) {
	router, repo := newTestRouter(t)
	repo.FailNext("InsertCustomer", errors.New("connection reset"))

	w := doRequest(router, http.MethodPost, "/api/v1/customers", `{"first_name":"Ada","last_name":"Lovelace"}`)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
	if strings.Contains(w.Body.String(), "connection reset") {
		t.Fatalf("storage detail leaked: %s", w.Body.String())
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{domain.Validationf("bad"), http.StatusBadRequest},
		{domain.ErrInvalidAmount, http.StatusUnprocessableEntity},
		{fmt.Errorf("loan 1: %w", domain.ErrNotFound), http.StatusNotFound},
		{domain.ErrInsufficientFunds, http.StatusUnprocessableEntity},
		{domain.ErrCreditLimitExceeded, http.StatusUnprocessableEntity},
		{domain.ErrInvalidState, http.StatusUnprocessableEntity},
		{domain.ErrStorage, http.StatusInternalServerError},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := statusFor(tt.err); got != tt.want {
			t.Errorf("statusFor(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}
