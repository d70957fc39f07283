package store

import (
	"context"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"mindgate-core/internal/domain/entity"
	"mindgate-core/internal/domain/repository"
)

// TierStats is one tier's hit/miss counters.
type TierStats struct {
	Name   string `json:"name"`
	Hits   int64  `json:"hits"`
	Misses int64  `json:"misses"`
	Errors int64  `json:"errors"`
}

type tierCounters struct {
	hits   atomic.Int64
	misses atomic.Int64
	errors atomic.Int64
}

// TieredCache chains the memory, remote and on-device tiers. Lookups walk
// fast to slow; a hit in a slower tier is promoted into every faster tier
// before being returned. Writes populate all tiers. A failing tier is logged
// and skipped — the chain keeps serving from whatever still works.
type TieredCache struct {
	tiers    []repository.CacheTier
	counters []*tierCounters
	log      *zap.Logger
	now      func() time.Time
}

func NewTieredCache(log *zap.Logger, tiers ...repository.CacheTier) *TieredCache {
	counters := make([]*tierCounters, len(tiers))
	for i := range counters {
		counters[i] = &tierCounters{}
	}
	return &TieredCache{tiers: tiers, counters: counters, log: log, now: time.Now}
}

func (c *TieredCache) Get(ctx context.Context, key string) (*entity.AnalysisResult, bool) {
	for i, tier := range c.tiers {
		entry, err := tier.Get(ctx, key)
		if err != nil {
			c.counters[i].errors.Add(1)
			c.log.Warn("cache tier read failed",
				zap.String("tier", tier.Name()), zap.Error(err))
			continue
		}
		if entry == nil {
			c.counters[i].misses.Add(1)
			continue
		}
		c.counters[i].hits.Add(1)
		c.promote(ctx, entry, i)
		value := entry.Value
		return &value, true
	}
	return nil, false
}

// promote copies a slow-tier hit into every faster tier.
func (c *TieredCache) promote(ctx context.Context, entry *entity.CacheEntry, hitTier int) {
	for i := 0; i < hitTier; i++ {
		if err := c.tiers[i].Set(ctx, entry); err != nil {
			c.counters[i].errors.Add(1)
			c.log.Warn("cache tier promote failed",
				zap.String("tier", c.tiers[i].Name()), zap.Error(err))
		}
	}
}

func (c *TieredCache) Set(ctx context.Context, key string, value *entity.AnalysisResult, ttl time.Duration) {
	entry := &entity.CacheEntry{
		Key:       key,
		Value:     *value,
		ExpiresAt: c.now().Add(ttl), // ttl<=0 lands already expired: next lookup misses
	}
	for i, tier := range c.tiers {
		if err := tier.Set(ctx, entry); err != nil {
			c.counters[i].errors.Add(1)
			c.log.Warn("cache tier write failed",
				zap.String("tier", tier.Name()), zap.Error(err))
		}
	}
}

func (c *TieredCache) Delete(ctx context.Context, key string) {
	for i, tier := range c.tiers {
		if err := tier.Delete(ctx, key); err != nil {
			c.counters[i].errors.Add(1)
			c.log.Warn("cache tier delete failed",
				zap.String("tier", tier.Name()), zap.Error(err))
		}
	}
}

func (c *TieredCache) Clear(ctx context.Context) {
	for i, tier := range c.tiers {
		if err := tier.Clear(ctx); err != nil {
			c.counters[i].errors.Add(1)
			c.log.Warn("cache tier clear failed",
				zap.String("tier", tier.Name()), zap.Error(err))
		}
	}
}

// Stats snapshots per-tier counters, fast tier first.
func (c *TieredCache) Stats() []TierStats {
	out := make([]TierStats, len(c.tiers))
	for i, tier := range c.tiers {
		out[i] = TierStats{
			Name:   tier.Name(),
			Hits:   c.counters[i].hits.Load(),
			Misses: c.counters[i].misses.Load(),
			Errors: c.counters[i].errors.Load(),
		}
	}
	return out
}
