// Package redis provides the cross-process advisory lock that serializes
// backfill invocations per schedule config. It is not a full store backend;
// pair it with store/postgres, store/bun, or store/mongo.
//
// Usage:
//
//	client := redis.NewClient(&redis.Options{Addr: "localhost:6379"})
//	locker := redisstore.NewLocker(client)
//	engine := backfill.New(cfgs, digests, gen, mapper, backfill.WithLocker(locker))
package redis

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tesserahq/chrona/backfill"
	"github.com/tesserahq/chrona/id"
)

// Compile-time interface check.
var _ backfill.Locker = (*Locker)(nil)

// Option configures the Locker.
type Option func(*Locker)

// WithLogger sets a custom logger.
func WithLogger(l *slog.Logger) Option {
	return func(lk *Locker) { lk.logger = l }
}

// Locker implements backfill.Locker with SET NX + TTL. The caller owns the
// Redis client lifecycle.
type Locker struct {
	client redis.Cmdable
	logger *slog.Logger
}

// NewLocker creates a Redis-backed backfill locker.
func NewLocker(client redis.Cmdable, opts ...Option) *Locker {
	lk := &Locker{client: client, logger: slog.Default()}
	for _, o := range opts {
		o(lk)
	}
	return lk
}

// Client returns the underlying Redis client.
func (lk *Locker) Client() redis.Cmdable { return lk.client }

// Ping verifies the Redis connection is alive.
func (lk *Locker) Ping(ctx context.Context) error {
	return lk.client.Ping(ctx).Err()
}

// AcquireBackfillLock takes the per-config lock with SET NX. Returns false
// without error when another invocation holds it.
func (lk *Locker) AcquireBackfillLock(ctx context.Context, configID id.ConfigID, ttl time.Duration) (bool, error) {
	ok, err := lk.client.SetNX(ctx, backfillLockKey(configID.String()), "1", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("chrona/redis: acquire backfill lock: %w", err)
	}
	return ok, nil
}

// ReleaseBackfillLock releases the per-config lock. Releasing a lock that
// already expired is a no-op.
func (lk *Locker) ReleaseBackfillLock(ctx context.Context, configID id.ConfigID) error {
	if err := lk.client.Del(ctx, backfillLockKey(configID.String())).Err(); err != nil {
		return fmt.Errorf("chrona/redis: release backfill lock: %w", err)
	}
	return nil
}
