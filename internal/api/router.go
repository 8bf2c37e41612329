package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/punchamoorthee/bankcore/internal/domain"
)

// NewRouter wires /health, /metrics and the /api/v1 routes.
func NewRouter(h *Handler) *mux.Router {
	r := mux.NewRouter()
	r.Use(RequestID)
	r.Handle("/metrics", promhttp.Handler())
	r.HandleFunc("/health", h.HealthCheck).Methods(http.MethodGet)

	v1 := r.PathPrefix("/api/v1").Subrouter()
	v1.Use(Instrument)

	v1.HandleFunc("/customers", h.CreateCustomer).Methods(http.MethodPost)
	v1.HandleFunc("/customers/{id}", h.GetCustomer).Methods(http.MethodGet)
	v1.HandleFunc("/customers/{id}", h.UpdateField(domain.EntityCustomer)).Methods(http.MethodPatch)

	v1.HandleFunc("/accounts", h.OpenAccount).Methods(http.MethodPost)
	v1.HandleFunc("/accounts/{id}", h.GetAccount).Methods(http.MethodGet)
	v1.HandleFunc("/accounts/{id}", h.UpdateField(domain.EntityAccount)).Methods(http.MethodPatch)
	v1.HandleFunc("/accounts/{id}/deposits", h.Deposit).Methods(http.MethodPost)
	v1.HandleFunc("/accounts/{id}/withdrawals", h.Withdraw).Methods(http.MethodPost)
	v1.HandleFunc("/accounts/{id}/transactions", h.ListTransactions).Methods(http.MethodGet)

	v1.HandleFunc("/employees", h.AddEmployee).Methods(http.MethodPost)
	v1.HandleFunc("/employees/{id}", h.GetEmployee).Methods(http.MethodGet)
	v1.HandleFunc("/employees/{id}", h.UpdateField(domain.EntityEmployee)).Methods(http.MethodPatch)

	v1.HandleFunc("/loans", h.ApplyForLoan).Methods(http.MethodPost)
	v1.HandleFunc("/loans/{id}", h.GetLoan).Methods(http.MethodGet)
	v1.HandleFunc("/loans/{id}/approve", h.ApproveLoan).Methods(http.MethodPost)

	v1.HandleFunc("/credit-cards", h.IssueCreditCard).Methods(http.MethodPost)
	v1.HandleFunc("/credit-cards/{id}", h.GetCreditCard).Methods(http.MethodGet)
	v1.HandleFunc("/credit-cards/{id}", h.UpdateField(domain.EntityCreditCard)).Methods(http.MethodPatch)
	v1.HandleFunc("/credit-cards/{id}/purchases", h.MakePurchase).Methods(http.MethodPost)

	return r
}
