package usecase

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mindgate-core/internal/domain/entity"
)

func TestParseRefinementPlainJSON(t *testing.T) {
	ref, err := parseRefinement(`{"category":"OCD","confidence":0.92,"summary":"checking ritual"}`)
	require.NoError(t, err)

	cat, ok := ref.category()
	require.True(t, ok)
	assert.Equal(t, entity.CategoryOCD, cat)
	assert.Equal(t, 0.92, ref.Confidence)
}

func TestParseRefinementFencedOutput(t *testing.T) {
	raw := "Sure, here is the classification:\n```json\n{\"category\": \"breathwork\", \"confidence\": 0.8, \"anxiety_level\": 7}\n```"
	ref, err := parseRefinement(raw)
	require.NoError(t, err)

	cat, ok := ref.category()
	require.True(t, ok)
	assert.Equal(t, entity.CategoryBreathwork, cat)
	assert.Equal(t, 7, ref.AnxietyLevel)
}

func TestParseRefinementClampsConfidence(t *testing.T) {
	ref, err := parseRefinement(`{"category":"MOOD","confidence":3.5}`)
	require.NoError(t, err)
	assert.Equal(t, 1.0, ref.Confidence)
}

func TestParseRefinementRejectsProse(t *testing.T) {
	_, err := parseRefinement("I think this is about mood, roughly 80% sure.")
	assert.Error(t, err)
}

func TestRefinementUnknownCategory(t *testing.T) {
	ref, err := parseRefinement(`{"category":"DEPRESSION","confidence":0.9}`)
	require.NoError(t, err)

	_, ok := ref.category()
	assert.False(t, ok)
}
