package config

import (
	"os"
	"strconv"
	"time"

	"mindgate-core/internal/domain/entity"
)

// Gating holds the externally tunable gate thresholds. The reference values
// are product configuration, not clinical constants; do not read meaning into
// the exact numbers.
type Gating struct {
	ThresholdSimple  float64 // rule 1: simple category short-circuit
	ThresholdLow     float64 // rule 3: escalate below this
	ThresholdComplex float64 // rules 2 and 5
	TextLengthLimit  int     // rule 2: "long text" boundary, in runes
	SimilarWindow    time.Duration
}

// Cache holds TTLs per result category plus tier housekeeping knobs.
type Cache struct {
	TTLMood       time.Duration
	TTLBreathwork time.Duration
	TTLTherapy    time.Duration
	TTLOther      time.Duration
	SweepInterval time.Duration
	KeyPrefix     string
}

// TTLFor maps a category to its write TTL.
func (c Cache) TTLFor(cat entity.Category) time.Duration {
	switch cat {
	case entity.CategoryMood:
		return c.TTLMood
	case entity.CategoryBreathwork:
		return c.TTLBreathwork
	case entity.CategoryCBT, entity.CategoryOCD, entity.CategoryERP:
		return c.TTLTherapy
	default:
		return c.TTLOther
	}
}

// Provider holds the remote model settings.
type Provider struct {
	Project        string
	Location       string
	PrimaryModel   string
	FallbackModel  string
	EmbeddingModel string
	AttemptTimeouts []time.Duration // staged, one per attempt
}

// Enabled reports whether the LLM path can be wired at all.
func (p Provider) Enabled() bool {
	return p.Project != ""
}

type Config struct {
	Port            string
	RedisAddr       string
	RedisPassword   string
	QdrantHost      string
	QdrantPort      int
	QdrantCollection string
	SQLitePath      string

	DailyTokenBudget    int
	DuplicateWindow     time.Duration
	RouteTimeout        time.Duration
	SimilarityThreshold float64

	Gating   Gating
	Cache    Cache
	Provider Provider
}

// Load reads configuration from the environment, filling defaults for
// anything unset. It never fails: a missing value falls back, a malformed
// value falls back too.
func Load() *Config {
	return &Config{
		Port:             envStr("PORT", "8080"),
		RedisAddr:        envStr("REDIS_ADDR", ""),
		RedisPassword:    envStr("REDIS_PASSWORD", ""),
		QdrantHost:       envStr("QDRANT_HOST", ""),
		QdrantPort:       envInt("QDRANT_PORT", 6334),
		QdrantCollection: envStr("QDRANT_COLLECTION", "mindgate_requests"),
		SQLitePath:       envStr("SQLITE_PATH", ".mindgate/cache.db"),

		DailyTokenBudget:    envInt("DAILY_TOKEN_BUDGET", 50000),
		DuplicateWindow:     envDur("DUPLICATE_WINDOW", 2*time.Minute),
		RouteTimeout:        envDur("ROUTE_TIMEOUT", 3*time.Second),
		SimilarityThreshold: envFloat("SIMILARITY_THRESHOLD", 0.83),

		Gating: Gating{
			ThresholdSimple:  envFloat("GATE_THRESHOLD_SIMPLE", 0.65),
			ThresholdLow:     envFloat("GATE_THRESHOLD_LOW", 0.60),
			ThresholdComplex: envFloat("GATE_THRESHOLD_COMPLEX", 0.80),
			TextLengthLimit:  envInt("GATE_TEXT_LENGTH", 280),
			SimilarWindow:    envDur("GATE_SIMILAR_WINDOW", time.Hour),
		},
		Cache: Cache{
			TTLMood:       envDur("CACHE_TTL_MOOD", 24*time.Hour),
			TTLBreathwork: envDur("CACHE_TTL_BREATHWORK", 24*time.Hour),
			TTLTherapy:    envDur("CACHE_TTL_THERAPY", 12*time.Hour),
			TTLOther:      envDur("CACHE_TTL_OTHER", time.Hour),
			SweepInterval: envDur("CACHE_SWEEP_INTERVAL", time.Hour),
			KeyPrefix:     envStr("CACHE_KEY_PREFIX", "mindgate:analysis:"),
		},
		Provider: Provider{
			Project:        envStr("GOOGLE_CLOUD_PROJECT", ""),
			Location:       envStr("GOOGLE_CLOUD_LOCATION", "us-central1"),
			PrimaryModel:   envStr("PRIMARY_MODEL", "gemini-2.5-flash"),
			FallbackModel:  envStr("FALLBACK_MODEL", "gemini-1.5-flash"),
			EmbeddingModel: envStr("EMBEDDING_MODEL", "text-embedding-004"),
			AttemptTimeouts: []time.Duration{
				envDur("PROVIDER_TIMEOUT_1", 4*time.Second),
				envDur("PROVIDER_TIMEOUT_2", 8*time.Second),
				envDur("PROVIDER_TIMEOUT_3", 15*time.Second),
			},
		},
	}
}

func envStr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func envFloat(key string, def float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}

func envDur(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}
