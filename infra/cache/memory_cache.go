package cache

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// MemoryCache implements cache.PriceCache in process memory.
type MemoryCache struct {
	entries map[string]cacheEntry
	mu      sync.RWMutex
	now     func() time.Time
}

type cacheEntry struct {
	price     decimal.Decimal
	expiresAt time.Time
}

// NewMemoryCache creates a cache whose expired entries are swept every
// interval until ctx is done.
func NewMemoryCache(ctx context.Context, interval time.Duration) *MemoryCache {
	c := &MemoryCache{entries: make(map[string]cacheEntry), now: time.Now}
	if interval > 0 {
		go c.cleanup(ctx, interval)
	}
	return c
}

func (c *MemoryCache) Get(_ context.Context, key string) (decimal.Decimal, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, exists := c.entries[key]
	if !exists || !c.now().Before(entry.expiresAt) {
		return decimal.Zero, false, nil
	}
	return entry.price, true, nil
}

func (c *MemoryCache) Set(_ context.Context, key string, price decimal.Decimal, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = cacheEntry{price: price, expiresAt: c.now().Add(ttl)}
	return nil
}

func (c *MemoryCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, key)
	return nil
}

// Len counts stored entries, expired ones included until swept.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *MemoryCache) sweep() {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	for key, entry := range c.entries {
		if !now.Before(entry.expiresAt) {
			delete(c.entries, key)
		}
	}
}

func (c *MemoryCache) cleanup(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.sweep()
		}
	}
}
