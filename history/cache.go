package history

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const DefaultCacheTTL = 5 * time.Minute

// Cached is a read-through redis cache in front of a Store. Redis failures are
// logged and the underlying store is used directly.
type Cached struct {
	next Store
	rdb  redis.UniversalClient
	ttl  time.Duration
}

func NewCached(next Store, rdb redis.UniversalClient, ttl time.Duration) *Cached {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &Cached{next: next, rdb: rdb, ttl: ttl}
}

func (c *Cached) OrderHistory(ctx context.Context, userID string) ([]string, error) {
	return c.load(ctx, ordersKey(userID), func() ([]string, error) {
		return c.next.OrderHistory(ctx, userID)
	})
}

func (c *Cached) PlayedGames(ctx context.Context, userID string) ([]string, error) {
	return c.load(ctx, gamesKey(userID), func() ([]string, error) {
		return c.next.PlayedGames(ctx, userID)
	})
}

// Invalidate drops the cached entries of userID.
func (c *Cached) Invalidate(ctx context.Context, userID string) error {
	return Invalidate(ctx, c.rdb, userID)
}

// Invalidate drops the cached history of every user in userIDs.
func Invalidate(ctx context.Context, rdb redis.UniversalClient, userIDs ...string) error {
	if len(userIDs) == 0 {
		return nil
	}
	keys := make([]string, 0, 2*len(userIDs))
	for _, id := range userIDs {
		keys = append(keys, ordersKey(id), gamesKey(id))
	}
	return rdb.Del(ctx, keys...).Err()
}

func ordersKey(userID string) string { return "history:orders:" + userID }

func gamesKey(userID string) string { return "history:games:" + userID }

func (c *Cached) load(ctx context.Context, key string, fetch func() ([]string, error)) ([]string, error) {
	raw, err := c.rdb.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var items []string
		if err := json.Unmarshal(raw, &items); err == nil {
			return items, nil
		}
		slog.Warn("discarding corrupt history cache entry", "key", key)
	case !errors.Is(err, redis.Nil):
		slog.Warn("history cache unavailable", "key", key, "error", err)
	}

	items, err := fetch()
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(items)
	if err != nil {
		return items, nil
	}
	if err := c.rdb.Set(ctx, key, data, c.ttl).Err(); err != nil {
		slog.Warn("failed to cache history", "key", key, "error", err)
	}

	return items, nil
}
