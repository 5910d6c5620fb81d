package cache

import (
	"container/list"
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// entry represents a single cache entry.
type entry struct {
	key       string
	value     string
	expiresAt time.Time
}

func (e *entry) isExpired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

// MemoryCache is an in-memory LRU cache with TTL support.
type MemoryCache struct {
	mu              sync.Mutex
	items           map[string]*list.Element
	lru             *list.List
	maxSize         int
	defaultTTL      time.Duration
	cleanupInterval time.Duration
	stopCleanup     chan struct{}
	closeOnce       sync.Once
	hits            atomic.Int64
	misses          atomic.Int64
}

// MemoryCacheOption is a functional option for MemoryCache.
type MemoryCacheOption func(*MemoryCache)

// WithMaxSize sets the maximum number of entries.
func WithMaxSize(size int) MemoryCacheOption {
	return func(c *MemoryCache) {
		c.maxSize = size
	}
}

// WithDefaultTTL sets the default TTL for entries. A negative TTL disables expiry.
func WithDefaultTTL(ttl time.Duration) MemoryCacheOption {
	return func(c *MemoryCache) {
		c.defaultTTL = ttl
	}
}

// WithCleanupInterval sets the interval for expired entry cleanup.
func WithCleanupInterval(interval time.Duration) MemoryCacheOption {
	return func(c *MemoryCache) {
		c.cleanupInterval = interval
	}
}

// NewMemoryCache creates a new in-memory cache and starts its cleanup goroutine.
func NewMemoryCache(opts ...MemoryCacheOption) *MemoryCache {
	c := &MemoryCache{
		items:           make(map[string]*list.Element),
		lru:             list.New(),
		maxSize:         10000,
		defaultTTL:      time.Hour,
		cleanupInterval: time.Minute,
		stopCleanup:     make(chan struct{}),
	}

	for _, opt := range opts {
		opt(c)
	}
	if c.maxSize < 1 {
		c.maxSize = 1
	}

	go c.cleanupLoop()

	return c
}

func (c *MemoryCache) cleanupLoop() {
	ticker := time.NewTicker(c.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.cleanupExpired()
		case <-c.stopCleanup:
			return
		}
	}
}

func (c *MemoryCache) cleanupExpired() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	for elem := c.lru.Front(); elem != nil; {
		next := elem.Next()
		if e := elem.Value.(*entry); e.isExpired(now) {
			c.removeElement(elem)
		}
		elem = next
	}
}

// removeElement must be called with mu held.
func (c *MemoryCache) removeElement(elem *list.Element) {
	c.lru.Remove(elem)
	delete(c.items, elem.Value.(*entry).key)
}

// Get retrieves a value from the cache.
func (c *MemoryCache) Get(_ context.Context, key string) (string, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.items[key]
	if !ok {
		c.misses.Add(1)
		return "", false, nil
	}

	e := elem.Value.(*entry)
	if e.isExpired(time.Now()) {
		c.removeElement(elem)
		c.misses.Add(1)
		return "", false, nil
	}

	c.lru.MoveToBack(elem)
	c.hits.Add(1)
	return e.value, true, nil
}

// Set stores a value in the cache, evicting the least recently used entry when full.
func (c *MemoryCache) Set(_ context.Context, key, value string, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if ttl == 0 {
		ttl = c.defaultTTL
	}

	var expiresAt time.Time
	if ttl > 0 {
		expiresAt = time.Now().Add(ttl)
	}

	if elem, ok := c.items[key]; ok {
		c.lru.MoveToBack(elem)
		e := elem.Value.(*entry)
		e.value = value
		e.expiresAt = expiresAt
		return nil
	}

	for c.lru.Len() >= c.maxSize {
		c.removeElement(c.lru.Front())
	}

	c.items[key] = c.lru.PushBack(&entry{
		key:       key,
		value:     value,
		expiresAt: expiresAt,
	})

	return nil
}

// Delete removes a value from the cache.
func (c *MemoryCache) Delete(_ context.Context, key string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.items[key]
	if !ok {
		return false, nil
	}

	c.removeElement(elem)
	return true, nil
}

// Clear removes all entries from the cache.
func (c *MemoryCache) Clear(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make(map[string]*list.Element)
	c.lru.Init()
	return nil
}

// Close stops the cleanup goroutine and clears the cache. It is safe to call more than once.
func (c *MemoryCache) Close() error {
	c.closeOnce.Do(func() { close(c.stopCleanup) })
	return c.Clear(context.Background())
}

// Size returns the current number of entries in the cache.
func (c *MemoryCache) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}

// Stats returns cache statistics.
func (c *MemoryCache) Stats(_ context.Context) (Stats, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	expiredCount := 0
	for elem := c.lru.Front(); elem != nil; elem = elem.Next() {
		if elem.Value.(*entry).isExpired(now) {
			expiredCount++
		}
	}

	return Stats{
		Size:         c.lru.Len(),
		MaxSize:      c.maxSize,
		ExpiredCount: expiredCount,
		Hits:         c.hits.Load(),
		Misses:       c.misses.Load(),
	}, nil
}
