package store

import (
	"context"
	"sync"
	"time"

	"mindgate-core/internal/domain/entity"
)

// MemoryCache is the fastest tier: a process-lifetime map. Expired entries
// are misses and are deleted lazily on read; a background sweep additionally
// bounds growth from keys that are never read again.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]*entity.CacheEntry

	now  func() time.Time
	stop chan struct{}
	once sync.Once
}

func NewMemoryCache(sweepInterval time.Duration) *MemoryCache {
	c := &MemoryCache{
		entries: make(map[string]*entity.CacheEntry),
		now:     time.Now,
		stop:    make(chan struct{}),
	}
	if sweepInterval > 0 {
		go c.sweepLoop(sweepInterval)
	}
	return c
}

func (c *MemoryCache) Name() string { return "memory" }

func (c *MemoryCache) Get(_ context.Context, key string) (*entity.CacheEntry, error) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	if entry.Expired(c.now()) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return nil, nil
	}
	cp := *entry
	return &cp, nil
}

func (c *MemoryCache) Set(_ context.Context, entry *entity.CacheEntry) error {
	cp := *entry
	c.mu.Lock()
	c.entries[entry.Key] = &cp
	c.mu.Unlock()
	return nil
}

func (c *MemoryCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
	return nil
}

func (c *MemoryCache) Clear(_ context.Context) error {
	c.mu.Lock()
	c.entries = make(map[string]*entity.CacheEntry)
	c.mu.Unlock()
	return nil
}

// Len reports the live entry count, expired included until swept.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Close stops the background sweep.
func (c *MemoryCache) Close() {
	c.once.Do(func() { close(c.stop) })
}

func (c *MemoryCache) sweepLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			c.sweep()
		case <-c.stop:
			return
		}
	}
}

func (c *MemoryCache) sweep() {
	now := c.now()
	c.mu.Lock()
	for key, entry := range c.entries {
		if entry.Expired(now) {
			delete(c.entries, key)
		}
	}
	c.mu.Unlock()
}
