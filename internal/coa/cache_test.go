package coa

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func cacheFixture(t *testing.T) *Cache {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewCache(client, time.Minute)
}

func TestCacheFetchJSONPopulatesOnce(t *testing.T) {
	cache := cacheFixture(t)
	calls := 0
	loader := func(ctx context.Context) (any, error) {
		calls++
		return Account{ID: 7, Code: "1100", Name: "Cash"}, nil
	}

	var first Account
	require.NoError(t, cache.FetchJSON(context.Background(), &first, loader, "account", "7"))
	require.Equal(t, int64(7), first.ID)
	require.Equal(t, 1, calls)

	var second Account
	require.NoError(t, cache.FetchJSON(context.Background(), &second, loader, "account", "7"))
	require.Equal(t, "Cash", second.Name)
	require.Equal(t, 1, calls)
}

func TestCacheBumpInvalidates(t *testing.T) {
	cache := cacheFixture(t)
	calls := 0
	loader := func(ctx context.Context) (any, error) {
		calls++
		return []Account{{ID: 1, Code: "1000"}}, nil
	}

	var accounts []Account
	require.NoError(t, cache.FetchJSON(context.Background(), &accounts, loader, "list"))
	require.Equal(t, 1, calls)

	require.NoError(t, cache.Bump(context.Background()))

	require.NoError(t, cache.FetchJSON(context.Background(), &accounts, loader, "list"))
	require.Equal(t, 2, calls)
}

func TestCacheDisabledPassesThrough(t *testing.T) {
	cache := NewCache(nil, 0)
	calls := 0
	loader := func(ctx context.Context) (any, error) {
		calls++
		return Account{ID: 3, Code: "2100"}, nil
	}

	var account Account
	require.NoError(t, cache.FetchJSON(context.Background(), &account, loader, "account", "3"))
	require.NoError(t, cache.FetchJSON(context.Background(), &account, loader, "account", "3"))
	require.Equal(t, 2, calls)
	require.Equal(t, int64(3), account.ID)
	require.NoError(t, cache.Bump(context.Background()))
}
