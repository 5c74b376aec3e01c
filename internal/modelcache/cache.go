// Package modelcache persists trained model snapshots in Redis and
// answers the one question the harness asks: may a stored model be
// reused, or has new event data arrived since it was trained? The
// invalidation key is the latest event name, not a timestamp: events
// arrive in bulk and have stable identity.
package modelcache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrNoSnapshot reports a cache miss for a model.
var ErrNoSnapshot = errors.New("no model snapshot in cache")

const (
	snapshotKeyPrefix = "models:snapshot:"
	lastEventKey      = "models:last_trained_event"
)

// RedisClient is the subset of go-redis the cache needs; the mock in
// tests implements the same two calls.
type RedisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}

// Cache is an explicit object handed to whichever component needs
// model persistence. There is deliberately no package-level state.
type Cache struct {
	rdb RedisClient
}

func New(rdb RedisClient) *Cache {
	return &Cache{rdb: rdb}
}

// LastTrainedEvent returns the event name models were last trained
// on, or "" when nothing has been recorded yet.
func (c *Cache) LastTrainedEvent(ctx context.Context) (string, error) {
	v, err := c.rdb.Get(ctx, lastEventKey).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("modelcache: read last trained event: %w", err)
	}
	return v, nil
}

// SetLastTrainedEvent records the event name covered by the stored
// snapshots.
func (c *Cache) SetLastTrainedEvent(ctx context.Context, event string) error {
	if err := c.rdb.Set(ctx, lastEventKey, event, 0).Err(); err != nil {
		return fmt.Errorf("modelcache: record last trained event: %w", err)
	}
	return nil
}

// SaveSnapshot stores a model's serialized state.
func (c *Cache) SaveSnapshot(ctx context.Context, name string, payload []byte) error {
	if err := c.rdb.Set(ctx, snapshotKeyPrefix+name, payload, 0).Err(); err != nil {
		return fmt.Errorf("modelcache: save snapshot %s: %w", name, err)
	}
	return nil
}

// LoadSnapshot fetches a model's serialized state, ErrNoSnapshot on
// miss.
func (c *Cache) LoadSnapshot(ctx context.Context, name string) ([]byte, error) {
	v, err := c.rdb.Get(ctx, snapshotKeyPrefix+name).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNoSnapshot
	}
	if err != nil {
		return nil, fmt.Errorf("modelcache: load snapshot %s: %w", name, err)
	}
	return v, nil
}

// CanReuse reports whether every named model has a stored snapshot
// that is still current for latestEvent. The reason string names
// what failed, for the run report.
func (c *Cache) CanReuse(ctx context.Context, names []string, latestEvent string) (bool, string) {
	last, err := c.LastTrainedEvent(ctx)
	if err != nil {
		return false, fmt.Sprintf("cache unavailable: %v", err)
	}
	if last == "" {
		return false, "no previous training recorded"
	}
	if last != latestEvent {
		return false, fmt.Sprintf("new data: latest event %q differs from last trained event %q", latestEvent, last)
	}
	for _, name := range names {
		if _, err := c.LoadSnapshot(ctx, name); err != nil {
			return false, fmt.Sprintf("missing snapshot for %s", name)
		}
	}
	return true, "snapshots current for latest event"
}
