// Package cache stores opaque byte values under string keys.
//
// Three backends share the [Cache] interface: [NullCache] (caching disabled),
// [MemoryCache] (process lifetime) and [FileCache] (CLI, survives restarts).
// A [Keyer] derives keys from a topology identity so that layouts of
// different topologies or option sets never share an entry.
//
// [GetJSON] and [SetJSON] wrap any backend with JSON encoding and report
// hits, misses and writes to the observability cache hooks.
package cache

import (
	"context"
	"time"

	"github.com/goccy/go-json"

	"github.com/matzehuels/topolayout/pkg/observability"
)

// Cache is a byte store with optional expiry.
type Cache interface {
	// Get returns the value for key and whether it was found. Expired and
	// unreadable entries are reported as misses.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases resources held by the cache.
	Close() error
}

// GetJSON loads key from c and decodes it into v. keyType labels the entry
// for observability. A decode failure is treated as a miss.
func GetJSON(ctx context.Context, c Cache, keyType, key string, v any) (bool, error) {
	data, ok, err := c.Get(ctx, key)
	if err != nil {
		return false, err
	}
	if !ok || json.Unmarshal(data, v) != nil {
		observability.Cache().OnCacheMiss(ctx, keyType)
		return false, nil
	}
	observability.Cache().OnCacheHit(ctx, keyType)
	return true, nil
}

// SetJSON encodes v and stores it under key.
func SetJSON(ctx context.Context, c Cache, keyType, key string, v any, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if err := c.Set(ctx, key, data, ttl); err != nil {
		return err
	}
	observability.Cache().OnCacheSet(ctx, keyType, len(data))
	return nil
}
