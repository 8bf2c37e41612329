package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/punchamoorthee/bankcore/internal/config"
	"github.com/punchamoorthee/bankcore/internal/domain"
	"github.com/punchamoorthee/bankcore/internal/logging"
	"github.com/punchamoorthee/bankcore/internal/service"
	"github.com/punchamoorthee/bankcore/internal/store"
)

var (
	totalCustomers int
	initialBalance string
)

func init() {
	flag.IntVar(&totalCustomers, "customers", 1000, "Target number of customers")
	flag.StringVar(&initialBalance, "balance", "100.00", "Opening balance of each seeded Savings account")
}

func main() {
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Invalid configuration", "err", err)
		os.Exit(1)
	}
	log, closeLog, err := logging.Open(cfg)
	if err != nil {
		slog.Error("Unable to open log file", "err", err)
		os.Exit(1)
	}
	defer closeLog()

	if err := run(context.Background(), cfg, log); err != nil {
		log.Error("Seeding failed", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log *slog.Logger) error {
	balance, err := decimal.NewFromString(initialBalance)
	if err != nil {
		return fmt.Errorf("invalid -balance: %w", err)
	}

	db, err := store.NewStore(ctx, cfg.DBSource, cfg.TxMaxRetries)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.EnsureSchema(ctx); err != nil {
		return err
	}

	log.Info("--- Seeding Database ---")

	var count int
	if err := db.Db.QueryRow(ctx, "SELECT COUNT(*) FROM customers").Scan(&count); err != nil {
		return fmt.Errorf("count customers: %w", err)
	}

	if missing := totalCustomers - count; missing > 0 {
		log.Info("Generating customers", "count", missing)
		joined := time.Now().UTC()
		rows := make([][]any, 0, missing)
		for i := count; i < totalCustomers; i++ {
			rows = append(rows, []any{"Demo", fmt.Sprintf("Customer%04d", i+1), fmt.Sprintf("%d Seed Street", i+1), joined})
		}

		// Bulk Insert using CopyFrom
		copied, err := db.Db.CopyFrom(
			ctx,
			pgx.Identifier{"customers"},
			[]string{"first_name", "last_name", "address", "join_date"},
			pgx.CopyFromRows(rows),
		)
		if err != nil {
			return fmt.Errorf("bulk insert customers: %w", err)
		}
		log.Info("Seeded customers", "count", copied)
	} else {
		log.Info("Customers already seeded, skipping", "count", count)
	}

	ids, err := customersWithoutAccount(ctx, db)
	if err != nil {
		return err
	}

	bank := service.New(db, service.WithLogger(logging.Discard()))
	opened := 0
	for _, id := range ids {
		acct := &domain.Account{CustomerID: id, Type: domain.Savings, Balance: balance}
		if _, err := bank.OpenAccount(ctx, acct); err != nil {
			return fmt.Errorf("open account for customer %d: %w", id, err)
		}
		opened++
	}
	log.Info("Opened savings accounts", "count", opened, "balance", balance.StringFixed(2))
	return nil
}

func customersWithoutAccount(ctx context.Context, db *store.Store) ([]int64, error) {
	rows, err := db.Db.Query(ctx, `
		SELECT c.customer_id FROM customers c
		WHERE NOT EXISTS (SELECT 1 FROM accounts a WHERE a.customer_id = c.customer_id)
		ORDER BY c.customer_id`)
	if err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[int64])
	if err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	return ids, nil
}
