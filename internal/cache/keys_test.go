package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cachedThing struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

func testClient(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

// useGlobalClient swaps the package client for the duration of a test.
func useGlobalClient(t *testing.T, rdb *redis.Client) {
	t.Helper()
	prev := client
	client = rdb
	t.Cleanup(func() { client = prev })
}

func TestGetSetJSON(t *testing.T) {
	mr, rdb := testClient(t)
	ctx := context.Background()

	var out cachedThing
	assert.False(t, GetJSON(ctx, rdb, "thing:1", &out))

	SetJSON(ctx, rdb, "thing:1", cachedThing{ID: 1, Name: "fade"}, time.Minute)
	require.True(t, GetJSON(ctx, rdb, "thing:1", &out))
	assert.Equal(t, "fade", out.Name)

	// TTL is honored.
	mr.FastForward(2 * time.Minute)
	assert.False(t, GetJSON(ctx, rdb, "thing:1", &out))

	// Corrupt payloads are treated as misses and evicted.
	require.NoError(t, mr.Set("thing:2", "{not json"))
	assert.False(t, GetJSON(ctx, rdb, "thing:2", &out))
	assert.False(t, mr.Exists("thing:2"))
}

func TestGetSetJSONNilClient(t *testing.T) {
	ctx := context.Background()
	var out cachedThing
	assert.False(t, GetJSON(ctx, nil, "thing:1", &out))
	SetJSON(ctx, nil, "thing:1", cachedThing{}, time.Minute) // must not panic
}

func TestAside(t *testing.T) {
	_, rdb := testClient(t)
	useGlobalClient(t, rdb)
	ctx := context.Background()

	fills := 0
	fill := func(dest *cachedThing) func() error {
		return func() error {
			fills++
			*dest = cachedThing{ID: 7, Name: "fresh"}
			return nil
		}
	}

	var first cachedThing
	require.NoError(t, Aside(ctx, UserKey(7), &first, UserTTL, fill(&first)))
	assert.Equal(t, 1, fills)
	assert.Equal(t, "fresh", first.Name)

	// Second read is served from cache.
	var second cachedThing
	require.NoError(t, Aside(ctx, UserKey(7), &second, UserTTL, fill(&second)))
	assert.Equal(t, 1, fills)
	assert.Equal(t, "fresh", second.Name)

	// Invalidation forces a refill.
	InvalidateUser(ctx, 7)
	var third cachedThing
	require.NoError(t, Aside(ctx, UserKey(7), &third, UserTTL, fill(&third)))
	assert.Equal(t, 2, fills)
}

func TestAsideWithoutClient(t *testing.T) {
	useGlobalClient(t, nil)

	fills := 0
	var out cachedThing
	err := Aside(context.Background(), ListingKey(1), &out, ListingTTL, func() error {
		fills++
		out = cachedThing{ID: 1}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, fills)
	assert.Equal(t, uint(1), out.ID)

	Invalidate(context.Background(), ListingKey(1)) // must not panic
}
