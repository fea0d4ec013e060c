// Package cache memoizes asset searches in redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/himanishpuri/studiokit/pkg/studio/assets"
)

const keyPrefix = "studiokit:asset:"

// Store is the subset of a key/value store the cache needs.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Close() error
}

// RedisStore is a Store on top of go-redis.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore connects using a redis:// or rediss:// URL and pings once.
func NewRedisStore(ctx context.Context, rawURL string) (*RedisStore, error) {
	opt, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}
	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("pinging redis: %w", err)
	}
	return &RedisStore{client: client}, nil
}

func (s *RedisStore) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := s.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

func (s *RedisStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return s.client.Set(ctx, key, value, ttl).Err()
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

type Logger interface {
	Debugf(format string, args ...any)
	Warnf(format string, args ...any)
}

// Searcher wraps an assets.Searcher with a read-through cache. A miss or a
// store error falls through to exactly one live search. Failed live searches
// are not cached.
type Searcher struct {
	inner assets.Searcher
	store Store
	ttl   time.Duration
	log   Logger
}

func NewSearcher(inner assets.Searcher, store Store, ttl time.Duration, log Logger) *Searcher {
	return &Searcher{inner: inner, store: store, ttl: ttl, log: log}
}

func Key(phrase string) string {
	return keyPrefix + strings.ToLower(strings.Join(strings.Fields(phrase), " "))
}

func (c *Searcher) Search(ctx context.Context, phrase string) ([]string, error) {
	key := Key(phrase)

	raw, ok, err := c.store.Get(ctx, key)
	switch {
	case err != nil:
		c.warnf("cache get %s: %v", key, err)
	case ok:
		var urls []string
		if jerr := json.Unmarshal([]byte(raw), &urls); jerr == nil {
			c.debugf("cache hit %s", key)
			return urls, nil
		}
		c.warnf("cache entry %s is corrupt, refreshing", key)
	}

	urls, err := c.inner.Search(ctx, phrase)
	if err != nil {
		return nil, err
	}

	data, _ := json.Marshal(urls)
	if err := c.store.Set(ctx, key, string(data), c.ttl); err != nil {
		c.warnf("cache set %s: %v", key, err)
	}
	return urls, nil
}

func (c *Searcher) warnf(format string, args ...any) {
	if c.log != nil {
		c.log.Warnf(format, args...)
	}
}

func (c *Searcher) debugf(format string, args ...any) {
	if c.log != nil {
		c.log.Debugf(format, args...)
	}
}
