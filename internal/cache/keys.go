package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	UserKeyPrefix    = "user:%d"
	ListingKeyPrefix = "listing:%d"
)

const (
	UserTTL    = 5 * time.Minute
	ListingTTL = 10 * time.Minute
)

func UserKey(userID uint) string {
	return fmt.Sprintf(UserKeyPrefix, userID)
}

func ListingKey(listingID uint) string {
	return fmt.Sprintf(ListingKeyPrefix, listingID)
}

// GetJSON loads and unmarshals a cached value into dest. Returns false when
// the key is absent, the client is unavailable, or the payload is stale junk.
func GetJSON(ctx context.Context, rdb *redis.Client, key string, dest any) bool {
	if rdb == nil {
		return false
	}
	raw, err := rdb.Get(ctx, key).Bytes()
	if err != nil {
		return false
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		rdb.Del(ctx, key)
		return false
	}
	return true
}

// SetJSON marshals and stores a value with the given TTL, best-effort.
func SetJSON(ctx context.Context, rdb *redis.Client, key string, v any, ttl time.Duration) {
	if rdb == nil {
		return
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return
	}
	rdb.Set(ctx, key, raw, ttl)
}

// Aside implements cache-aside over the global client: serve from cache when
// possible, otherwise run fill and store the result. Cache failures never
// fail the read.
func Aside(ctx context.Context, key string, dest any, ttl time.Duration, fill func() error) error {
	if GetJSON(ctx, client, key, dest) {
		return nil
	}
	if err := fill(); err != nil {
		return err
	}
	SetJSON(ctx, client, key, dest, ttl)
	return nil
}

// Invalidate deletes a key, tolerating an absent client.
func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

func InvalidateUser(ctx context.Context, userID uint) {
	Invalidate(ctx, UserKey(userID))
}

func InvalidateListing(ctx context.Context, listingID uint) {
	Invalidate(ctx, ListingKey(listingID))
}
