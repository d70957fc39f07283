package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mindgate-core/internal/domain/entity"
)

func newTestSQLite(t *testing.T) *SQLiteCache {
	t.Helper()
	c, err := NewSQLiteCache(filepath.Join(t.TempDir(), "nested", "cache.db"))
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func TestSQLiteCacheRoundTrip(t *testing.T) {
	c := newTestSQLite(t)
	ctx := context.Background()

	entry := &entity.CacheEntry{
		Key: "k1",
		Value: entity.AnalysisResult{
			Category:   entity.CategoryBreathwork,
			Confidence: 0.75,
			Route:      entity.RouteSuggestBreathwork,
			Payload:    entity.BreathworkPayload{Protocol: "box", AnxietyLevel: 4},
			Source:     entity.SourceHeuristic,
		},
		ExpiresAt: time.Now().Add(time.Minute),
	}
	require.NoError(t, c.Set(ctx, entry))

	got, err := c.Get(ctx, "k1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, entity.CategoryBreathwork, got.Value.Category)

	payload, ok := got.Value.Payload.(entity.BreathworkPayload)
	require.True(t, ok, "payload variant must survive persistence")
	assert.Equal(t, 4, payload.AnxietyLevel)
}

func TestSQLiteCacheUpsertOverwrites(t *testing.T) {
	c := newTestSQLite(t)
	ctx := context.Background()

	first := &entity.CacheEntry{
		Key:       "k1",
		Value:     entity.AnalysisResult{Category: entity.CategoryMood},
		ExpiresAt: time.Now().Add(time.Minute),
	}
	require.NoError(t, c.Set(ctx, first))

	second := &entity.CacheEntry{
		Key:       "k1",
		Value:     entity.AnalysisResult{Category: entity.CategoryOCD},
		ExpiresAt: time.Now().Add(time.Minute),
	}
	require.NoError(t, c.Set(ctx, second))

	got, err := c.Get(ctx, "k1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, entity.CategoryOCD, got.Value.Category)
}

func TestSQLiteCacheExpiredRowIsMissAndDeleted(t *testing.T) {
	c := newTestSQLite(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, &entity.CacheEntry{
		Key:       "dead",
		Value:     entity.AnalysisResult{Category: entity.CategoryMood},
		ExpiresAt: time.Now().Add(-time.Second),
	}))

	got, err := c.Get(ctx, "dead")
	require.NoError(t, err)
	assert.Nil(t, got)

	// Lazy delete happened; a second read hits no row at all.
	got, err = c.Get(ctx, "dead")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSQLiteCachePurge(t *testing.T) {
	c := newTestSQLite(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, &entity.CacheEntry{
		Key: "dead", Value: entity.AnalysisResult{}, ExpiresAt: time.Now().Add(-time.Second),
	}))
	require.NoError(t, c.Set(ctx, &entity.CacheEntry{
		Key: "alive", Value: entity.AnalysisResult{}, ExpiresAt: time.Now().Add(time.Minute),
	}))

	require.NoError(t, c.Purge(ctx))

	alive, err := c.Get(ctx, "alive")
	require.NoError(t, err)
	assert.NotNil(t, alive)
}

func TestSQLiteCacheClear(t *testing.T) {
	c := newTestSQLite(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, &entity.CacheEntry{
		Key: "k1", Value: entity.AnalysisResult{}, ExpiresAt: time.Now().Add(time.Minute),
	}))
	require.NoError(t, c.Clear(ctx))

	got, err := c.Get(ctx, "k1")
	require.NoError(t, err)
	assert.Nil(t, got)
}
