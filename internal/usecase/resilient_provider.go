package usecase

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"mindgate-core/internal/domain/entity"
	"mindgate-core/internal/domain/repository"
)

// ResilientProvider wraps a primary model with staged per-attempt timeouts,
// retry with jittered backoff, and a single-shot cheaper fallback model.
// Attempt N gets timeout N; the stages escalate so a transient slow patch
// gets one quick retry before we grant the model more time.
type ResilientProvider struct {
	primary         repository.AIProvider
	fallback        repository.AIProvider
	attemptTimeouts []time.Duration
	baseDelay       time.Duration
}

func NewResilientProvider(primary, fallback repository.AIProvider, attemptTimeouts []time.Duration) *ResilientProvider {
	if len(attemptTimeouts) == 0 {
		attemptTimeouts = []time.Duration{4 * time.Second, 8 * time.Second, 15 * time.Second}
	}
	return &ResilientProvider{
		primary:         primary,
		fallback:        fallback,
		attemptTimeouts: attemptTimeouts,
		baseDelay:       500 * time.Millisecond,
	}
}

func (r *ResilientProvider) Generate(ctx context.Context, prompt string) (*entity.ProviderResponse, error) {
	resp, err := r.tryPrimary(ctx, prompt)
	if err == nil {
		return resp, nil
	}
	if r.fallback == nil {
		return nil, err
	}

	// One shot at the fallback model, on the last (longest) stage timeout.
	fbCtx, cancel := context.WithTimeout(ctx, r.attemptTimeouts[len(r.attemptTimeouts)-1])
	defer cancel()
	resp, fbErr := r.fallback.Generate(fbCtx, prompt)
	if fbErr != nil {
		return nil, fmt.Errorf("primary and fallback both failed: %w", errors.Join(err, fbErr))
	}
	if resp.Metadata == nil {
		resp.Metadata = make(map[string]any)
	}
	resp.Metadata["fallback_used"] = true
	return resp, nil
}

func (r *ResilientProvider) tryPrimary(ctx context.Context, prompt string) (*entity.ProviderResponse, error) {
	var lastErr error
	for attempt, stage := range r.attemptTimeouts {
		attemptCtx, cancel := context.WithTimeout(ctx, stage)
		resp, err := r.primary.Generate(attemptCtx, prompt)
		cancel()
		if err == nil {
			return resp, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if !isRetryable(err) || attempt == len(r.attemptTimeouts)-1 {
			break
		}
		select {
		case <-time.After(backoff(r.baseDelay, attempt)):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return nil, lastErr
}

func isRetryable(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, entity.ErrRateLimited) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "429") ||
		strings.Contains(msg, "500") ||
		strings.Contains(msg, "503") ||
		strings.Contains(msg, "overloaded") ||
		strings.Contains(msg, "deadline")
}

func backoff(base time.Duration, attempt int) time.Duration {
	d := float64(base) * float64(int(1)<<attempt)
	jitter := rand.Float64() * 0.2 * d
	return time.Duration(d + jitter)
}
