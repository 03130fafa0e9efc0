package notificacion

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
)

// CounterCache caches per-user unread counts.
//
// Every Invalidate bumps the user's generation. A count read from the
// database is only stored when the generation has not moved since before
// the read, so an invalidation racing a refill is never lost.
type CounterCache interface {
	Get(ctx context.Context, usuarioID string) (int64, bool, error)
	Generation(ctx context.Context, usuarioID string) (int64, error)
	SetIfGeneration(ctx context.Context, usuarioID string, count, generation int64) (bool, error)
	Invalidate(ctx context.Context, usuarioIDs ...string) error
}

var errStaleGeneration = errors.New("counter generation changed")

// UnreadCounter stores unread counts in Redis under "<prefix>noleidas:<id>"
// and their generation under "<prefix>noleidas-gen:<id>".
type UnreadCounter struct {
	client *redis.Client
	prefix string
	ttl    time.Duration

	hits     atomic.Uint64
	misses   atomic.Uint64
	failures atomic.Uint64
	deletes  atomic.Uint64
	stale    atomic.Uint64
}

var _ CounterCache = (*UnreadCounter)(nil)

// CounterStats is a snapshot of the counter cache activity.
type CounterStats struct {
	Hits    uint64 `json:"hits"`
	Misses  uint64 `json:"misses"`
	Errors  uint64 `json:"errors"`
	Deletes uint64 `json:"deletes"`
	Stale   uint64 `json:"stale"`
}

// NewRedisClient creates the pooled client used by the counter cache.
func NewRedisClient(addr string) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         addr,
		PoolSize:     50,
		MinIdleConns: 5,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})
}

// NewUnreadCounter creates a counter cache on top of client.
func NewUnreadCounter(client *redis.Client, prefix string, ttl time.Duration) *UnreadCounter {
	return &UnreadCounter{
		client: client,
		prefix: prefix,
		ttl:    ttl,
	}
}

func (c *UnreadCounter) key(usuarioID string) string {
	return c.prefix + "noleidas:" + usuarioID
}

func (c *UnreadCounter) genKey(usuarioID string) string {
	return c.prefix + "noleidas-gen:" + usuarioID
}

// Get returns the cached count. The boolean is false on a cache miss.
func (c *UnreadCounter) Get(ctx context.Context, usuarioID string) (int64, bool, error) {
	val, err := c.client.Get(ctx, c.key(usuarioID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			c.misses.Add(1)
			return 0, false, nil
		}
		c.failures.Add(1)
		return 0, false, fmt.Errorf("cache get error: %w", err)
	}

	count, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		c.failures.Add(1)
		return 0, false, fmt.Errorf("cache decode error: %w", err)
	}
	c.hits.Add(1)
	return count, true, nil
}

// Generation returns the user's current generation. A user that was never
// invalidated is at generation 0.
func (c *UnreadCounter) Generation(ctx context.Context, usuarioID string) (int64, error) {
	gen, err := c.client.Get(ctx, c.genKey(usuarioID)).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		c.failures.Add(1)
		return 0, fmt.Errorf("cache generation error: %w", err)
	}
	return gen, nil
}

// SetIfGeneration stores count with the configured TTL unless the user was
// invalidated after generation was read. It reports whether the value was
// stored.
func (c *UnreadCounter) SetIfGeneration(ctx context.Context, usuarioID string, count, generation int64) (bool, error) {
	genKey := c.genKey(usuarioID)
	err := c.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, genKey).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if current != generation {
			return errStaleGeneration
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, c.key(usuarioID), count, c.ttl)
			return nil
		})
		return err
	}, genKey)

	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, errStaleGeneration), errors.Is(err, redis.TxFailedErr):
		c.stale.Add(1)
		return false, nil
	}
	c.failures.Add(1)
	return false, fmt.Errorf("cache set error: %w", err)
}

// Invalidate drops the cached counts of the given users and bumps their
// generations.
func (c *UnreadCounter) Invalidate(ctx context.Context, usuarioIDs ...string) error {
	if len(usuarioIDs) == 0 {
		return nil
	}
	keys := make([]string, 0, len(usuarioIDs))
	for _, id := range usuarioIDs {
		keys = append(keys, c.key(id))
	}
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, keys...)
		for _, id := range usuarioIDs {
			pipe.Incr(ctx, c.genKey(id))
		}
		return nil
	})
	if err != nil {
		c.failures.Add(1)
		return fmt.Errorf("cache delete error: %w", err)
	}
	c.deletes.Add(uint64(len(keys)))
	return nil
}

// Stats returns the current counters.
func (c *UnreadCounter) Stats() CounterStats {
	return CounterStats{
		Hits:    c.hits.Load(),
		Misses:  c.misses.Load(),
		Errors:  c.failures.Load(),
		Deletes: c.deletes.Load(),
		Stale:   c.stale.Load(),
	}
}

// Ping checks if the Redis connection is healthy.
func (c *UnreadCounter) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close closes the Redis client connection.
func (c *UnreadCounter) Close() error {
	return c.client.Close()
}
