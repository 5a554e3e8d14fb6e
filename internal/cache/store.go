// Package cache provides a small JSON read-through cache on Redis. It is
// used for public user profiles only: email and role are immutable in this
// service, so cached projections cannot go stale. Password hashes and token
// rows are never cached; token validity is always re-derived from the
// database.
package cache

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store wraps a Redis client with a key prefix and a TTL. A nil *Store is
// valid and disables caching, mirroring how the Redis client itself is
// optional at startup.
type Store struct {
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
}

// New returns a Store, or nil when no Redis client is available so callers
// can keep a single code path.
func New(rdb *redis.Client, prefix string, ttl time.Duration) *Store {
	if rdb == nil {
		return nil
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Store{rdb: rdb, prefix: prefix, ttl: ttl}
}

func (s *Store) key(k string) string { return s.prefix + ":" + k }

// Get unmarshals the cached value into dest and reports whether it was
// present. Decode failures are treated as misses.
func (s *Store) Get(ctx context.Context, key string, dest any) bool {
	if s == nil {
		return false
	}
	bs, err := s.rdb.Get(ctx, s.key(key)).Bytes()
	if err != nil {
		return false
	}
	if err := json.Unmarshal(bs, dest); err != nil {
		return false
	}
	return true
}

// Set stores the value best-effort; failures are logged and ignored so the
// request path never depends on Redis being up.
func (s *Store) Set(ctx context.Context, key string, v any) {
	if s == nil {
		return
	}
	bs, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := s.rdb.SetEx(ctx, s.key(key), bs, s.ttl).Err(); err != nil {
		log.Printf("cache: set %s failed: %v", key, err)
	}
}
