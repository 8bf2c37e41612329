package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/punchamoorthee/bankcore/internal/domain"
	"github.com/punchamoorthee/bankcore/internal/logging"
)

func TestKey(t *testing.T) {
	if got := Key(domain.EntityCreditCard, 42); got != "bank:credit_card:42" {
		t.Fatalf("Key = %q", got)
	}
}

func TestNopNeverHits(t *testing.T) {
	var c Snapshots = Nop{}
	c.Set(context.Background(), "k", 1)
	c.Add(context.Background(), "k", 1)
	var v int
	if c.Get(context.Background(), "k", &v) {
		t.Fatal("Nop cache returned a hit")
	}
}

func TestRedisRoundTrip(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}
	ctx := context.Background()
	c, err := NewRedis(ctx, addr, time.Minute, logging.Discard())
	if err != nil {
		t.Fatalf("NewRedis: %v", err)
	}
	defer c.Close()

	key := Key(domain.EntityAccount, time.Now().UnixNano())
	want := domain.Account{ID: 1, CustomerID: 2, Balance: decimal.RequireFromString("100.50"), Type: domain.Savings, Active: true}
	c.Set(ctx, key, want)

	var got domain.Account
	if !c.Get(ctx, key, &got) {
		t.Fatal("expected cache hit")
	}
	if !got.Balance.Equal(want.Balance) || got.Type != want.Type || got.CustomerID != want.CustomerID {
		t.Fatalf("got %+v want %+v", got, want)
	}

	c.Delete(ctx, key)
	if c.Get(ctx, key, &got) {
		t.Fatal("expected miss after delete")
	}
}

func TestRedisAddKeepsNewerSnapshot(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}
	ctx := context.Background()
	c, err := NewRedis(ctx, addr, time.Minute, logging.Discard())
	if err != nil {
		t.Fatalf("NewRedis: %v", err)
	}
	defer c.Close()

	key := Key(domain.EntityAccount, time.Now().UnixNano())
	defer c.Delete(ctx, key)

	c.Add(ctx, key, domain.Account{ID: 1, Balance: decimal.RequireFromString("100")})
	c.Set(ctx, key, domain.Account{ID: 1, Balance: decimal.RequireFromString("150")})
	c.Add(ctx, key, domain.Account{ID: 1, Balance: decimal.RequireFromString("100")})

	var got domain.Account
	if !c.Get(ctx, key, &got) {
		t.Fatal("expected cache hit")
	}
	if !got.Balance.Equal(decimal.RequireFromString("150")) {
		t.Fatalf("late Add replaced the newer snapshot: %s", got.Balance)
	}
}
