// Package cache keeps loaded entity snapshots in Redis so repeated lookups by
// id skip the database. Writes always go to the database first. After a
// successful change the service overwrites the snapshot with Set; readers only
// fill an empty key with Add, so a read that raced a write cannot replace the
// newer snapshot.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/punchamoorthee/bankcore/internal/domain"
)

// Snapshots is the read-through cache used by the service.
type Snapshots interface {
	// Get decodes the cached value into dst and reports whether it was found.
	Get(ctx context.Context, key string, dst any) bool
	// Set overwrites key; used after a committed change.
	Set(ctx context.Context, key string, value any)
	// Add stores value only if key is absent; used after a database read.
	Add(ctx context.Context, key string, value any)
	Delete(ctx context.Context, key string)
}

// Key is the cache key for one entity row.
func Key(entity domain.EntityType, id int64) string {
	return fmt.Sprintf("bank:%s:%d", entity, id)
}

// Nop caches nothing.
type Nop struct{}

func (Nop) Get(context.Context, string, any) bool { return false }
func (Nop) Set(context.Context, string, any) {}
func (Nop) Add(context.Context, string, any) {}
func (Nop) Delete(context.Context, string) {}

// Redis is a JSON-backed Snapshots implementation. A ttl of 0 means keys never
// expire.
type Redis struct {
	client *goredis.Client
	ttl    time.Duration
	log    *slog.Logger
}

// NewRedis connects and pings the server.
func NewRedis(ctx context.Context, addr string, ttl time.Duration, log *slog.Logger) (*Redis, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:         addr,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := rdb.Ping(pingCtx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return &Redis{client: rdb, ttl: ttl, log: log}, nil
}

func (c *Redis) Close() error {
	return c.client.Close()
}

// Get treats any miss or decode error as a miss.
func (c *Redis) Get(ctx context.Context, key string, dst any) bool {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		return false
	}
	if err := json.Unmarshal(data, dst); err != nil {
		c.log.Debug("cache decode failed", "key", key, "err", err)
		return false
	}
	return true
}

// Set is best effort: a failed write is logged, not returned. The old
// snapshot is dropped when the new one cannot be stored.
func (c *Redis) Set(ctx context.Context, key string, value any) {
	data, err := json.Marshal(value)
	if err == nil {
		err = c.client.Set(ctx, key, data, c.ttl).Err()
	}
	if err != nil {
		c.log.WarnContext(ctx, "cache write failed", "key", key, "err", err)
		c.Delete(ctx, key)
	}
}

func (c *Redis) Add(ctx context.Context, key string, value any) {
	data, err := json.Marshal(value)
	if err != nil {
		c.log.DebugContext(ctx, "cache encode failed", "key", key, "err", err)
		return
	}
	if err := c.client.SetNX(ctx, key, data, c.ttl).Err(); err != nil {
		c.log.DebugContext(ctx, "cache fill failed", "key", key, "err", err)
	}
}

// Delete failures leave a stale snapshot until the ttl expires, so they are
// logged at warn.
func (c *Redis) Delete(ctx context.Context, key string) {
	if err := c.client.Del(ctx, key).Err(); err != nil {
		c.log.WarnContext(ctx, "cache delete failed", "key", key, "err", err)
	}
}
