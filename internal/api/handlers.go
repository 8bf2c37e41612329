package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"github.com/punchamoorthee/bankcore/internal/domain"
	"github.com/punchamoorthee/bankcore/internal/service"
)

type Handler struct {
	bank *service.Bank
	log  *slog.Logger
}

func NewHandler(bank *service.Bank, log *slog.Logger) *Handler {
	return &Handler{bank: bank, log: log}
}

func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type customerRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Address   string `json:"address"`
	JoinDate  string `json:"join_date"`
}

func (h *Handler) CreateCustomer(w http.ResponseWriter, r *http.Request) {
	var req customerRequest
	if !h.decode(w, r, &req) {
		return
	}
	c := &domain.Customer{FirstName: req.FirstName, LastName: req.LastName, Address: req.Address, JoinDate: req.JoinDate}
	id, err := h.bank.CreateCustomer(r.Context(), c)
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	c.ID = id
	w.Header().Set("Location", fmt.Sprintf("/api/v1/customers/%d", id))
	respondWithJSON(w, http.StatusCreated, c)
}

func (h *Handler) GetCustomer(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	c, err := h.bank.GetCustomer(r.Context(), id)
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, c)
}

type openAccountRequest struct {
	CustomerID     int64           `json:"customer_id"`
	AccountType    string          `json:"account_type"`
	InitialDeposit decimal.Decimal `json:"initial_deposit"`
}

func (h *Handler) OpenAccount(w http.ResponseWriter, r *http.Request) {
	var req openAccountRequest
	if !h.decode(w, r, &req) {
		return
	}
	a := &domain.Account{CustomerID: req.CustomerID, Type: domain.AccountType(req.AccountType), Balance: req.InitialDeposit}
	id, err := h.bank.OpenAccount(r.Context(), a)
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	a.ID = id
	w.Header().Set("Location", fmt.Sprintf("/api/v1/accounts/%d", id))
	respondWithJSON(w, http.StatusCreated, a)
}

func (h *Handler) GetAccount(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	a, err := h.bank.GetAccount(r.Context(), id)
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, a)
}

type amountRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

type balanceResponse struct {
	AccountID int64           `json:"account_id"`
	Balance   decimal.Decimal `json:"balance"`
}

func (h *Handler) Deposit(w http.ResponseWriter, r *http.Request) {
	h.post(w, r, h.bank.Deposit)
}

func (h *Handler) Withdraw(w http.ResponseWriter, r *http.Request) {
	h.post(w, r, h.bank.Withdraw)
}

// post runs a balance mutator against the account named in the path. The
// service locks and reloads the row, so only the id is needed up front.
func (h *Handler) post(w http.ResponseWriter, r *http.Request, apply func(ctx context.Context, acct *domain.Account, amount decimal.Decimal) (decimal.Decimal, error)) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req amountRequest
	if !h.decode(w, r, &req) {
		return
	}
	balance, err := apply(r.Context(), &domain.Account{ID: id}, req.Amount)
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, balanceResponse{AccountID: id, Balance: balance})
}

func (h *Handler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	txns, err := h.bank.ListTransactions(r.Context(), id)
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	if txns == nil {
		txns = []domain.Transaction{}
	}
	respondWithJSON(w, http.StatusOK, txns)
}

type employeeRequest struct {
	FirstName string          `json:"first_name"`
	LastName  string          `json:"last_name"`
	Position  string          `json:"position"`
	Salary    decimal.Decimal `json:"salary"`
}

func (h *Handler) AddEmployee(w http.ResponseWriter, r *http.Request) {
	var req employeeRequest
	if !h.decode(w, r, &req) {
		return
	}
	e := &domain.Employee{FirstName: req.FirstName, LastName: req.LastName, Position: req.Position, Salary: req.Salary}
	id, err := h.bank.AddEmployee(r.Context(), e)
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	e.ID = id
	w.Header().Set("Location", fmt.Sprintf("/api/v1/employees/%d", id))
	respondWithJSON(w, http.StatusCreated, e)
}

func (h *Handler) GetEmployee(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	e, err := h.bank.GetEmployee(r.Context(), id)
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, e)
}

type loanRequest struct {
	CustomerID   int64           `json:"customer_id"`
	Amount       decimal.Decimal `json:"amount"`
	InterestRate decimal.Decimal `json:"interest_rate"`
}

func (h *Handler) ApplyForLoan(w http.ResponseWriter, r *http.Request) {
	var req loanRequest
	if !h.decode(w, r, &req) {
		return
	}
	l := &domain.Loan{CustomerID: req.CustomerID, Amount: req.Amount, InterestRate: req.InterestRate}
	id, err := h.bank.ApplyForLoan(r.Context(), l)
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	l.ID = id
	w.Header().Set("Location", fmt.Sprintf("/api/v1/loans/%d", id))
	respondWithJSON(w, http.StatusCreated, l)
}

func (h *Handler) GetLoan(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	l, err := h.bank.GetLoan(r.Context(), id)
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, l)
}

func (h *Handler) ApproveLoan(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	l := &domain.Loan{ID: id}
	if err := h.bank.ApproveLoan(r.Context(), l); err != nil {
		h.respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, l)
}

type creditCardRequest struct {
	CustomerID  int64           `json:"customer_id"`
	CreditLimit decimal.Decimal `json:"credit_limit"`
}

func (h *Handler) IssueCreditCard(w http.ResponseWriter, r *http.Request) {
	var req creditCardRequest
	if !h.decode(w, r, &req) {
		return
	}
	c := &domain.CreditCard{CustomerID: req.CustomerID, CreditLimit: req.CreditLimit}
	id, err := h.bank.IssueCreditCard(r.Context(), c)
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	c.ID = id
	w.Header().Set("Location", fmt.Sprintf("/api/v1/credit-cards/%d", id))
	respondWithJSON(w, http.StatusCreated, c)
}

func (h *Handler) GetCreditCard(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	c, err := h.bank.GetCreditCard(r.Context(), id)
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, c)
}

type purchaseResponse struct {
	CardID          int64           `json:"card_id"`
	CurrentDebt     decimal.Decimal `json:"current_debt"`
	AvailableCredit decimal.Decimal `json:"available_credit"`
}

func (h *Handler) MakePurchase(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req amountRequest
	if !h.decode(w, r, &req) {
		return
	}
	card := &domain.CreditCard{ID: id}
	debt, err := h.bank.MakePurchase(r.Context(), card, req.Amount)
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, purchaseResponse{CardID: id, CurrentDebt: debt, AvailableCredit: card.AvailableCredit()})
}

type updateFieldRequest struct {
	Field string `json:"field"`
	Value any    `json:"value"`
}

// UpdateField returns a handler that patches one column of entity.
func (h *Handler) UpdateField(entity domain.EntityType) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}
		var req updateFieldRequest
		if !h.decode(w, r, &req) {
			return
		}
		if err := h.bank.UpdateField(r.Context(), entity, id, req.Field, req.Value); err != nil {
			h.respondWithError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// Helpers

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || id <= 0 {
		respondWithMessage(w, http.StatusBadRequest, "Invalid id")
		return 0, false
	}
	return id, true
}

// decode reads a JSON body, keeping numbers as json.Number so money values
// reach the service without float rounding.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		h.log.WarnContext(r.Context(), "bad_request", "method", r.Method, "path", r.URL.Path, "err", err.Error())
		respondWithMessage(w, http.StatusBadRequest, "Invalid JSON: "+err.Error())
		return false
	}
	return true
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidAmount):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInsufficientFunds),
		errors.Is(err, domain.ErrCreditLimitExceeded),
		errors.Is(err, domain.ErrInvalidState):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// respondWithError hides storage details from clients; the service has
// already logged them.
func (h *Handler) respondWithError(w http.ResponseWriter, err error) {
	code := statusFor(err)
	msg := err.Error()
	if code == http.StatusInternalServerError {
		msg = "System error"
	}
	respondWithMessage(w, code, msg)
}

func respondWithMessage(w http.ResponseWriter, code int, msg string) {
	respondWithJSON(w, code, map[string]string{"error": msg})
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(payload)
}
