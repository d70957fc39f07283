package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"mindgate-core/internal/domain/entity"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	cfg := Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 0.65, cfg.Gating.ThresholdSimple)
	assert.Equal(t, 0.60, cfg.Gating.ThresholdLow)
	assert.Equal(t, 0.80, cfg.Gating.ThresholdComplex)
	assert.Equal(t, 280, cfg.Gating.TextLengthLimit)
	assert.Equal(t, time.Hour, cfg.Gating.SimilarWindow)
	assert.Len(t, cfg.Provider.AttemptTimeouts, 3)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("GATE_THRESHOLD_SIMPLE", "0.7")
	t.Setenv("GATE_TEXT_LENGTH", "500")
	t.Setenv("CACHE_TTL_MOOD", "30m")

	cfg := Load()

	assert.Equal(t, 0.7, cfg.Gating.ThresholdSimple)
	assert.Equal(t, 500, cfg.Gating.TextLengthLimit)
	assert.Equal(t, 30*time.Minute, cfg.Cache.TTLMood)
}

func TestLoadMalformedValuesFallBack(t *testing.T) {
	t.Setenv("GATE_THRESHOLD_SIMPLE", "not-a-number")
	t.Setenv("CACHE_TTL_MOOD", "eleven")
	t.Setenv("QDRANT_PORT", "6334x")

	cfg := Load()

	assert.Equal(t, 0.65, cfg.Gating.ThresholdSimple)
	assert.Equal(t, 24*time.Hour, cfg.Cache.TTLMood)
	assert.Equal(t, 6334, cfg.QdrantPort)
}

func TestCacheTTLFor(t *testing.T) {
	c := Cache{
		TTLMood:       1 * time.Hour,
		TTLBreathwork: 2 * time.Hour,
		TTLTherapy:    3 * time.Hour,
		TTLOther:      4 * time.Hour,
	}

	assert.Equal(t, 1*time.Hour, c.TTLFor(entity.CategoryMood))
	assert.Equal(t, 2*time.Hour, c.TTLFor(entity.CategoryBreathwork))
	assert.Equal(t, 3*time.Hour, c.TTLFor(entity.CategoryCBT))
	assert.Equal(t, 3*time.Hour, c.TTLFor(entity.CategoryOCD))
	assert.Equal(t, 3*time.Hour, c.TTLFor(entity.CategoryERP))
	assert.Equal(t, 4*time.Hour, c.TTLFor(entity.CategoryOther))
}

func TestProviderEnabled(t *testing.T) {
	assert.False(t, Provider{}.Enabled())
	assert.True(t, Provider{Project: "p"}.Enabled())
}
