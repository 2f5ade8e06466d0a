package analytics

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/trade-manager/trade-manager/internal/events"
)

const cacheVersionKey = "analytics:version"

// Cache wraps Redis based caching with versioning controls. Every cached
// entry embeds the current version in its key, so bumping the version
// orphans all stale entries at once: a superseded load writes under an old
// key no reader consults (last-request-wins).
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCache instantiates the cache helper.
func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

// Version returns the current cache version, initialising when missing.
func (c *Cache) Version(ctx context.Context) (int64, error) {
	if c == nil || c.client == nil {
		return 0, nil
	}
	ver, err := c.client.Get(ctx, cacheVersionKey).Int64()
	if err == redis.Nil {
		if err := c.client.Set(ctx, cacheVersionKey, 1, 0).Err(); err != nil {
			return 0, err
		}
		return 1, nil
	}
	if err != nil {
		return 0, err
	}
	if ver <= 0 {
		ver = 1
		if err := c.client.Set(ctx, cacheVersionKey, ver, 0).Err(); err != nil {
			return 0, err
		}
	}
	return ver, nil
}

// BuildKey composes the cache key with the current version.
func (c *Cache) BuildKey(ctx context.Context, parts ...string) (string, error) {
	if c == nil || c.client == nil {
		return strings.Join(parts, ":"), nil
	}
	ver, err := c.Version(ctx)
	if err != nil {
		return "", err
	}
	joined := strings.Join(parts, ":")
	return fmt.Sprintf("%s:%d", joined, ver), nil
}

// FetchJSON loads a cached value or populates it using the loader.
func (c *Cache) FetchJSON(ctx context.Context, key string, dest interface{}, loader func(context.Context) (interface{}, error)) error {
	if loader == nil {
		return errors.New("analytics: cache loader required")
	}
	if c == nil || c.client == nil {
		value, err := loader(ctx)
		if err != nil {
			return err
		}
		raw, err := json.Marshal(value)
		if err != nil {
			return err
		}
		return json.Unmarshal(raw, dest)
	}
	payload, err := c.client.Get(ctx, key).Bytes()
	if err == nil {
		return json.Unmarshal(payload, dest)
	}
	if err != redis.Nil {
		return err
	}
	value, err := loader(ctx)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		return err
	}
	return json.Unmarshal(raw, dest)
}

// Bump invalidates the cache by incrementing the global version and
// publishing the new version on the invalidation topic.
func (c *Cache) Bump(ctx context.Context) error {
	if c == nil || c.client == nil {
		return nil
	}
	ver, err := c.client.Incr(ctx, cacheVersionKey).Result()
	if err != nil {
		return err
	}
	payload, err := json.Marshal(events.AnalyticsInvalidated{Version: ver})
	if err != nil {
		return err
	}
	return c.client.Publish(ctx, events.TopicAnalyticsInvalidated, payload).Err()
}

// ListenForInvalidation subscribes to version bump notifications so other
// processes converge on the same version.
func (c *Cache) ListenForInvalidation(ctx context.Context) error {
	if c == nil || c.client == nil {
		return nil
	}
	pubsub := c.client.Subscribe(ctx, events.TopicAnalyticsInvalidated)
	go func() {
		defer func() { _ = pubsub.Close() }()
		ch := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var evt events.AnalyticsInvalidated
				if err := json.Unmarshal([]byte(msg.Payload), &evt); err == nil && evt.Version > 0 {
					_ = c.client.Set(ctx, cacheVersionKey, evt.Version, 0).Err()
					continue
				}
				_ = c.client.Incr(ctx, cacheVersionKey).Err()
			}
		}
	}()
	return nil
}

func keyCategory(r DayRange) string {
	return strings.Join([]string{"analytics", "category", rangeToken(r)}, ":")
}

func keySeries(r DayRange, txType TransactionType) string {
	t := string(txType)
	if t == "" {
		t = "-"
	}
	return strings.Join([]string{"analytics", "series", rangeToken(r), t}, ":")
}

func keyTopProducts(r DayRange, by string, n int) string {
	return strings.Join([]string{"analytics", "top", rangeToken(r), by, strconv.Itoa(n)}, ":")
}

func keySummary(period string) string {
	return strings.Join([]string{"analytics", "summary", period}, ":")
}

func rangeToken(r DayRange) string {
	if r.IsZero() {
		return "all"
	}
	start, end := "-", "-"
	if !r.Start.IsZero() {
		start = dayOf(r.Start).Format("2006-01-02")
	}
	if !r.End.IsZero() {
		end = dayOf(r.End).Format("2006-01-02")
	}
	return start + ".." + end
}
