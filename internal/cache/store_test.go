package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/user-auth-service/internal/cache"
)

type profile struct {
	Email string `json:"email"`
	Role  string `json:"role"`
}

func setupStore(t *testing.T) *cache.Store {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	store := cache.New(rdb, "test", time.Minute)
	require.NotNil(t, store)
	return store
}

func TestStoreRoundTrip(t *testing.T) {
	t.Parallel()

	store := setupStore(t)
	ctx := context.Background()

	store.Set(ctx, "a@x.com", profile{Email: "a@x.com", Role: "USER"})

	var got profile
	require.True(t, store.Get(ctx, "a@x.com", &got))
	assert.Equal(t, "a@x.com", got.Email)
	assert.Equal(t, "USER", got.Role)
}

func TestStoreMiss(t *testing.T) {
	t.Parallel()

	store := setupStore(t)

	var got profile
	assert.False(t, store.Get(context.Background(), "missing@x.com", &got))
}

func TestStoreKeysArePrefixed(t *testing.T) {
	t.Parallel()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	store := cache.New(rdb, "auth:profile", time.Minute)
	store.Set(context.Background(), "a@x.com", profile{Email: "a@x.com"})

	assert.True(t, mr.Exists("auth:profile:a@x.com"))
}

func TestNilStoreIsDisabled(t *testing.T) {
	t.Parallel()

	var store *cache.Store
	assert.Nil(t, cache.New(nil, "test", time.Minute))

	// nil-safe: no panic, always a miss
	store.Set(context.Background(), "a@x.com", profile{Email: "a@x.com"})
	var got profile
	assert.False(t, store.Get(context.Background(), "a@x.com", &got))
}
