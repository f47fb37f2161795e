package utils

import (
	"context"       // Context for Redis operations
	"encoding/json" // JSON encoding/decoding
	"strconv"       // String conversion for page sweeps
	"time"          // Time durations

	"github.com/redis/go-redis/v9" // Redis client
)

// Cache keys for the public browse views
const (
	BrowseCacheKey  = "cafes:browse"  // Unfiltered browse view with choice lists
	ChoicesCacheKey = "cafes:choices" // Choice lists for the add-listing form
)

// AdminCafesCacheKey builds the cache key for one page of the admin
// listing-management view
func AdminCafesCacheKey(page, size string) string {
	return "admin:cafes:page=" + page + ":size=" + size
}

// AdminUsersCacheKey builds the cache key for one page of the admin
// user-management view
func AdminUsersCacheKey(page, size string) string {
	return "admin:users:page=" + page + ":size=" + size
}

// GetCache retrieves a value from Redis and unmarshals it into dest
func GetCache(ctx context.Context, rdb *redis.Client, key string, dest any) (bool, error) {
	val, err := rdb.Get(ctx, key).Result() // Get value from Redis
	if err == redis.Nil {
		return false, nil // Key does not exist
	} else if err != nil {
		return false, err // Other Redis error
	}
	return true, json.Unmarshal([]byte(val), dest) // Unmarshal JSON into dest
}

// SetCache sets a value in Redis with a specified TTL
func SetCache(ctx context.Context, rdb *redis.Client, key string, value any, ttl time.Duration) error {
	b, err := json.Marshal(value) // Marshal value to JSON
	if err != nil {
		return err // Return error if marshaling fails
	}
	return rdb.Set(ctx, key, b, ttl).Err() // Set value in Redis with TTL
}

// DeleteCache deletes a key from Redis
func DeleteCache(ctx context.Context, rdb *redis.Client, key string) error {
	return rdb.Del(ctx, key).Err() // Delete key from Redis
}

// InvalidateCafeCaches drops the browse, choices and admin listing caches
// after any listing mutation. Failures are ignored: stale entries expire on
// their TTL anyway.
func InvalidateCafeCaches(ctx context.Context, rdb *redis.Client) {
	_ = DeleteCache(ctx, rdb, BrowseCacheKey)  // Invalidate browse cache
	_ = DeleteCache(ctx, rdb, ChoicesCacheKey) // Invalidate form choices cache
	// Invalidate paginated admin listing cache (simple version: delete first 5 pages)
	for i := 1; i <= 5; i++ {
		_ = DeleteCache(ctx, rdb, AdminCafesCacheKey(strconv.Itoa(i), "20"))
	}
}

// InvalidateUserCaches drops the admin user-management caches after a bulk
// admin-flag update (simple version: delete first 5 pages)
func InvalidateUserCaches(ctx context.Context, rdb *redis.Client) {
	for i := 1; i <= 5; i++ {
		_ = DeleteCache(ctx, rdb, AdminUsersCacheKey(strconv.Itoa(i), "20"))
	}
}
