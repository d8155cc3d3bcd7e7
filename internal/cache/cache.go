package cache

import (
	"context"       // Context for Redis operations
	"encoding/json" // JSON encoding/decoding
	"errors"        // redis.Nil detection
	"strconv"       // Key formatting
	"time"          // Time durations

	"finance_tracker/internal/ledger" // Settlement summary

	"github.com/redis/go-redis/v9" // Redis client
)

// Get retrieves a value from Redis and unmarshals it into dest
func Get(ctx context.Context, rdb *redis.Client, key string, dest any) (bool, error) {
	val, err := rdb.Get(ctx, key).Result() // Get value from Redis
	if errors.Is(err, redis.Nil) {
		return false, nil // Key does not exist
	} else if err != nil {
		return false, err // Other Redis error
	}
	return true, json.Unmarshal([]byte(val), dest) // Unmarshal JSON into dest
}

// Set stores a value in Redis with a specified TTL
func Set(ctx context.Context, rdb *redis.Client, key string, value any, ttl time.Duration) error {
	b, err := json.Marshal(value) // Marshal value to JSON
	if err != nil {
		return err // Return error if marshaling fails
	}
	return rdb.Set(ctx, key, b, ttl).Err() // Set value in Redis with TTL
}

// Delete removes a key from Redis
func Delete(ctx context.Context, rdb *redis.Client, key string) error {
	return rdb.Del(ctx, key).Err() // Delete key from Redis
}

// SettlementCache keeps computed group settlement summaries.
// A nil client disables caching: every Get misses and every write is a no-op.
type SettlementCache struct {
	rdb *redis.Client // Redis client, optional
	ttl time.Duration // Entry lifetime
}

// NewSettlementCache returns a settlement cache with the given TTL
func NewSettlementCache(rdb *redis.Client, ttl time.Duration) *SettlementCache {
	return &SettlementCache{rdb: rdb, ttl: ttl}
}

// SettlementKey is the cache key of a group's summary
func SettlementKey(groupID uint) string {
	return "settlement:group:" + strconv.FormatUint(uint64(groupID), 10)
}

// Get returns the cached summary of a group if it was computed at version.
// A summary of any other version counts as a miss.
func (c *SettlementCache) Get(ctx context.Context, groupID, version uint) (*ledger.Summary, bool, error) {
	if c == nil || c.rdb == nil {
		return nil, false, nil // Caching disabled
	}
	var s ledger.Summary
	found, err := Get(ctx, c.rdb, SettlementKey(groupID), &s)
	if err != nil || !found {
		return nil, false, err
	}
	if s.GroupVersion != version {
		return nil, false, nil // Written before a later commit
	}
	return &s, true, nil
}

// Set stores a group's summary
func (c *SettlementCache) Set(ctx context.Context, s *ledger.Summary) error {
	if c == nil || c.rdb == nil {
		return nil
	}
	return Set(ctx, c.rdb, SettlementKey(s.GroupID), s, c.ttl)
}

// Invalidate drops a group's summary after a committed mutation
func (c *SettlementCache) Invalidate(ctx context.Context, groupID uint) error {
	if c == nil || c.rdb == nil {
		return nil
	}
	return Delete(ctx, c.rdb, SettlementKey(groupID))
}
