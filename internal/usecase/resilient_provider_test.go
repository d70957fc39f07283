package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mindgate-core/internal/domain/entity"
)

type scriptedProvider struct {
	errs  []error
	resp  *entity.ProviderResponse
	calls int
}

func (s *scriptedProvider) Generate(context.Context, string) (*entity.ProviderResponse, error) {
	s.calls++
	if s.calls <= len(s.errs) {
		return nil, s.errs[s.calls-1]
	}
	return s.resp, nil
}

func fastTimeouts() []time.Duration {
	return []time.Duration{50 * time.Millisecond, 100 * time.Millisecond, 200 * time.Millisecond}
}

func TestResilientProviderRecoversOnRetry(t *testing.T) {
	primary := &scriptedProvider{
		errs: []error{errors.New("503 service unavailable")},
		resp: &entity.ProviderResponse{Content: "ok", Model: "primary"},
	}
	r := NewResilientProvider(primary, nil, fastTimeouts())
	r.baseDelay = time.Millisecond

	resp, err := r.Generate(context.Background(), "p")
	require.NoError(t, err)
	assert.Equal(t, "primary", resp.Model)
	assert.Equal(t, 2, primary.calls)
}

func TestResilientProviderNonRetryableGoesStraightToFallback(t *testing.T) {
	primary := &scriptedProvider{errs: []error{errors.New("400 invalid argument")}}
	fallback := &scriptedProvider{resp: &entity.ProviderResponse{Content: "ok", Model: "fallback"}}
	r := NewResilientProvider(primary, fallback, fastTimeouts())
	r.baseDelay = time.Millisecond

	resp, err := r.Generate(context.Background(), "p")
	require.NoError(t, err)
	assert.Equal(t, "fallback", resp.Model)
	assert.Equal(t, 1, primary.calls, "a non-retryable error must not be retried")
	assert.Equal(t, true, resp.Metadata["fallback_used"])
}

func TestResilientProviderExhaustsStagedAttempts(t *testing.T) {
	primary := &scriptedProvider{
		errs: []error{
			errors.New("429 rate limited"),
			errors.New("429 rate limited"),
			errors.New("429 rate limited"),
		},
	}
	r := NewResilientProvider(primary, nil, fastTimeouts())
	r.baseDelay = time.Millisecond

	_, err := r.Generate(context.Background(), "p")
	require.Error(t, err)
	assert.Equal(t, len(fastTimeouts()), primary.calls)
}

func TestResilientProviderBothFail(t *testing.T) {
	primary := &scriptedProvider{errs: []error{errors.New("boom")}}
	fallback := &scriptedProvider{errs: []error{errors.New("boom too")}}
	r := NewResilientProvider(primary, fallback, fastTimeouts())
	r.baseDelay = time.Millisecond

	_, err := r.Generate(context.Background(), "p")
	assert.Error(t, err)
}
