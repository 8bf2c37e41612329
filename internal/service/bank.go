// Package service holds the bank's operations: validated creates, loads by id,
// single-field updates and the guarded balance/status mutators. Every exported
// operation reports exactly one log record and one metrics outcome.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/shopspring/decimal"

	"github.com/punchamoorthee/bankcore/internal/cache"
	"github.com/punchamoorthee/bankcore/internal/domain"
	"github.com/punchamoorthee/bankcore/internal/store"
)

var (
	opsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bank_operations_total",
		Help: "Bank operations processed, labeled by outcome",
	}, []string{"op", "outcome"})

	opDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "bank_operation_duration_seconds",
		Help:    "Latency distribution of bank operations",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
	}, []string{"op"})
)

// Bank is safe for concurrent use when its repository is. Mutators lock the
// affected row for the whole read-modify-write.
type Bank struct {
	repo     store.Repository
	cache    cache.Snapshots
	log      *slog.Logger
	now      func() time.Time
	validate *validator.Validate
}

type Option func(*Bank)

func WithLogger(l *slog.Logger) Option {
	return func(b *Bank) { b.log = l }
}

func WithCache(c cache.Snapshots) Option {
	return func(b *Bank) { b.cache = c }
}

func WithClock(now func() time.Time) Option {
	return func(b *Bank) { b.now = now }
}

func New(repo store.Repository, opts ...Option) *Bank {
	b := &Bank{
		repo:     repo,
		cache:    cache.Nop{},
		log:      slog.Default(),
		now:      func() time.Time { return time.Now().UTC() },
		validate: newValidator(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// newValidator reports fields by their JSON names.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func (b *Bank) check(v any) error {
	err := b.validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return domain.Validationf("%v", err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Param() != "" {
			msgs = append(msgs, fmt.Sprintf("%s must satisfy %s=%s", fe.Field(), fe.Tag(), fe.Param()))
		} else {
			msgs = append(msgs, fmt.Sprintf("%s is %s", fe.Field(), fe.Tag()))
		}
	}
	return domain.Validationf("%s", strings.Join(msgs, "; "))
}

// report emits the single log record and outcome counter for an operation.
func (b *Bank) report(ctx context.Context, op string, err error, attrs ...any) {
	outcome := outcomeOf(err)
	opsTotal.WithLabelValues(op, outcome).Inc()

	level := slog.LevelInfo
	if err != nil {
		attrs = append(attrs, "err", err.Error())
		level = slog.LevelWarn
		if outcome == "storage" || outcome == "error" {
			level = slog.LevelError
		}
	}
	b.log.Log(ctx, level, op, attrs...)
}

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrValidation):
		return "validation"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrInsufficientFunds):
		return "insufficient_funds"
	case errors.Is(err, domain.ErrCreditLimitExceeded):
		return "credit_limit_exceeded"
	case errors.Is(err, domain.ErrInvalidState):
		return "invalid_state"
	case errors.Is(err, domain.ErrStorage):
		return "storage"
	default:
		return "error"
	}
}

func timer(op string) *prometheus.Timer {
	return prometheus.NewTimer(opDuration.WithLabelValues(op))
}

// load reads one entity by id through the snapshot cache. The cache is only
// filled when empty, so a read that raced a mutator never replaces the
// snapshot the mutator stored after its commit.
func load[T any](ctx context.Context, b *Bank, entity domain.EntityType, id int64, get func(context.Context, int64) (*T, error)) (*T, error) {
	key := cache.Key(entity, id)
	var cached T
	if b.cache.Get(ctx, key, &cached) {
		return &cached, nil
	}
	v, err := get(ctx, id)
	if err != nil {
		return nil, err
	}
	b.cache.Add(ctx, key, v)
	return v, nil
}

// remember stores the committed state of an entity.
func (b *Bank) remember(ctx context.Context, entity domain.EntityType, id int64, v any) {
	b.cache.Set(ctx, cache.Key(entity, id), v)
}

// refresh re-reads a row after a write that did not return it. If the read
// fails the snapshot is dropped instead.
func (b *Bank) refresh(ctx context.Context, entity domain.EntityType, id int64) {
	var (
		v   any
		err error
	)
	switch entity {
	case domain.EntityCustomer:
		v, err = b.repo.GetCustomer(ctx, id)
	case domain.EntityAccount:
		v, err = b.repo.GetAccount(ctx, id)
	case domain.EntityEmployee:
		v, err = b.repo.GetEmployee(ctx, id)
	case domain.EntityLoan:
		v, err = b.repo.GetLoan(ctx, id)
	case domain.EntityCreditCard:
		v, err = b.repo.GetCreditCard(ctx, id)
	default:
		return
	}
	if err != nil {
		b.cache.Delete(ctx, cache.Key(entity, id))
		return
	}
	b.remember(ctx, entity, id, v)
}

// positiveAmount guards every mutator amount.
func positiveAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return domain.ErrInvalidAmount
	}
	return centScale("amount", amount)
}

func nonNegativeMoney(name string, v decimal.Decimal) error {
	if v.IsNegative() {
		return domain.Validationf("%s must not be negative", name)
	}
	return centScale(name, v)
}

// centScale rejects values the NUMERIC(20,2) columns would silently round.
func centScale(name string, v decimal.Decimal) error {
	if !v.Equal(v.Round(2)) {
		return domain.Validationf("%s %s has more than two decimal places", name, v)
	}
	return nil
}
