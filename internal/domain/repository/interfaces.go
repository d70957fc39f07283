package repository

import (
	"context"
	"time"

	"mindgate-core/internal/domain/entity"
)

// CacheTier is one storage layer of the tiered cache. A nil entry with a nil
// error means a clean miss; errors are tier-local and the caller decides how
// much to care.
type CacheTier interface {
	Name() string
	Get(ctx context.Context, key string) (*entity.CacheEntry, error)
	Set(ctx context.Context, entry *entity.CacheEntry) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
}

// CacheStore is the composed cache the pipeline talks to. Misses and tier
// failures both surface as "not found"; the store never fails a read.
type CacheStore interface {
	Get(ctx context.Context, key string) (*entity.AnalysisResult, bool)
	Set(ctx context.Context, key string, value *entity.AnalysisResult, ttl time.Duration)
	Delete(ctx context.Context, key string)
	Clear(ctx context.Context)
}

// AIProvider generates a model completion for a prompt.
type AIProvider interface {
	Generate(ctx context.Context, prompt string) (*entity.ProviderResponse, error)
}

// Embedder turns text into a vector for the similarity index.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// SimilarityIndex remembers recent request embeddings per user so the gate can
// skip the model when a near-duplicate was just analyzed.
type SimilarityIndex interface {
	// LastSimilar returns when the most recent sufficiently-similar request
	// inside the window was recorded. found is false when there is none.
	LastSimilar(ctx context.Context, userID string, vector []float32, window time.Duration) (seenAt time.Time, found bool, err error)
	Record(ctx context.Context, userID string, vector []float32) error
}

// TokenLimiter enforces the per-user daily token budget.
type TokenLimiter interface {
	Allow(ctx context.Context, userID string) (bool, error)
	Spend(ctx context.Context, userID string, tokens int) error
}
