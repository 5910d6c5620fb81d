// Package cache provides cache backends for memoizing normalized field values.
package cache

import (
	"context"
	"time"
)

// Cache is the interface for cache backends. Keys and values are strings.
type Cache interface {
	// Get retrieves a value. The bool is false if the key is missing or expired.
	Get(ctx context.Context, key string) (string, bool, error)

	// Set stores a value. If ttl is 0, the default TTL is used.
	Set(ctx context.Context, key, value string, ttl time.Duration) error

	// Delete removes a value and reports whether it existed.
	Delete(ctx context.Context, key string) (bool, error)

	// Clear removes all entries from the cache.
	Clear(ctx context.Context) error

	// Close releases any resources held by the cache.
	Close() error
}

// StatsProvider provides cache statistics.
type StatsProvider interface {
	Stats(ctx context.Context) (Stats, error)
}

// Stats contains cache statistics.
type Stats struct {
	Size         int   `json:"size"`
	MaxSize      int   `json:"max_size,omitempty"`
	ExpiredCount int   `json:"expired_count,omitempty"`
	Hits         int64 `json:"hits,omitempty"`
	Misses       int64 `json:"misses,omitempty"`
}

// NullCache is a cache that doesn't cache anything.
type NullCache struct{}

// NewNullCache creates a new NullCache.
func NewNullCache() *NullCache {
	return &NullCache{}
}

// Get always misses.
func (c *NullCache) Get(_ context.Context, _ string) (string, bool, error) {
	return "", false, nil
}

// Set does nothing.
func (c *NullCache) Set(_ context.Context, _, _ string, _ time.Duration) error {
	return nil
}

// Delete always returns false.
func (c *NullCache) Delete(_ context.Context, _ string) (bool, error) {
	return false, nil
}

// Clear does nothing.
func (c *NullCache) Clear(_ context.Context) error {
	return nil
}

// Close does nothing.
func (c *NullCache) Close() error {
	return nil
}

// PrefixedCache wraps a cache with a key prefix so several users can share one backend.
type PrefixedCache struct {
	cache  Cache
	prefix string
}

// NewPrefixedCache creates a new cache that prefixes all keys.
func NewPrefixedCache(cache Cache, prefix string) *PrefixedCache {
	return &PrefixedCache{
		cache:  cache,
		prefix: prefix,
	}
}

func (c *PrefixedCache) prefixKey(key string) string {
	return c.prefix + ":" + key
}

// Get retrieves a value with the prefixed key.
func (c *PrefixedCache) Get(ctx context.Context, key string) (string, bool, error) {
	return c.cache.Get(ctx, c.prefixKey(key))
}

// Set stores a value with the prefixed key.
func (c *PrefixedCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return c.cache.Set(ctx, c.prefixKey(key), value, ttl)
}

// Delete removes a value with the prefixed key.
func (c *PrefixedCache) Delete(ctx context.Context, key string) (bool, error) {
	return c.cache.Delete(ctx, c.prefixKey(key))
}

// Clear clears the underlying cache, including keys outside the prefix.
func (c *PrefixedCache) Clear(ctx context.Context) error {
	return c.cache.Clear(ctx)
}

// Close closes the underlying cache.
func (c *PrefixedCache) Close() error {
	return c.cache.Close()
}

// Stats forwards to the underlying cache when it provides statistics.
func (c *PrefixedCache) Stats(ctx context.Context) (Stats, error) {
	if sp, ok := c.cache.(StatsProvider); ok {
		return sp.Stats(ctx)
	}
	return Stats{}, nil
}

// Memoize returns a function that serves fn's results from the cache.
// Cache failures fall back to calling fn directly.
func Memoize(ctx context.Context, c Cache, fn func(string) string) func(string) string {
	return func(key string) string {
		if v, ok, err := c.Get(ctx, key); err == nil && ok {
			return v
		}
		v := fn(key)
		_ = c.Set(ctx, key, v, 0)
		return v
	}
}
