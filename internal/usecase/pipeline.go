package usecase

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"mindgate-core/internal/config"
	"mindgate-core/internal/domain/entity"
	"mindgate-core/internal/domain/repository"
	"mindgate-core/internal/observe"
)

// PipelineDeps carries everything the coordinator is wired with. Provider,
// limiter, embedder and similarity index are optional: a nil provider means
// heuristic-only operation, a nil similarity index means gate rule 4 never
// fires.
type PipelineDeps struct {
	Cache      repository.CacheStore
	Limiter    repository.TokenLimiter
	Provider   repository.AIProvider
	Embedder   repository.Embedder
	Similarity repository.SimilarityIndex
	Collector  observe.Collector
}

// Pipeline coordinates classify -> gate -> (optional model call) -> route ->
// cache write for one request. Process never returns an error: every failure
// mode degrades to a best-effort result, because this is an advisory feature
// and blocking the user flow is worse than a rough answer.
type Pipeline struct {
	cache      repository.CacheStore
	limiter    repository.TokenLimiter
	provider   repository.AIProvider
	embedder   repository.Embedder
	similarity repository.SimilarityIndex
	collector  observe.Collector

	classifier *Classifier
	gate       *Gate
	router     *Router

	gateCfg   config.Gating
	cacheCfg  config.Cache
	dupWindow time.Duration

	now func() time.Time

	mu     sync.Mutex
	recent map[string]time.Time // cache key -> last seen, duplicate suppression
}

func NewPipeline(cfg *config.Config, deps PipelineDeps) *Pipeline {
	collector := deps.Collector
	if collector == nil {
		collector = observe.NopCollector{}
	}
	return &Pipeline{
		cache:      deps.Cache,
		limiter:    deps.Limiter,
		provider:   deps.Provider,
		embedder:   deps.Embedder,
		similarity: deps.Similarity,
		collector:  collector,
		classifier: NewClassifier(),
		gate:       NewGate(cfg.Gating),
		router:     NewRouter(cfg.RouteTimeout),
		gateCfg:    cfg.Gating,
		cacheCfg:   cfg.Cache,
		dupWindow:  cfg.DuplicateWindow,
		now:        time.Now,
		recent:     make(map[string]time.Time),
	}
}

// CacheKey derives the deterministic lookup key for one request.
func CacheKey(userID string, kind entity.InputKind, normalized string) string {
	sum := sha256.Sum256([]byte(userID + "|" + string(kind) + "|" + normalized))
	return hex.EncodeToString(sum[:])
}

// Process is the public entry point. It always resolves to a well-formed
// result, never an error.
func (p *Pipeline) Process(ctx context.Context, input entity.AnalysisInput) *entity.AnalysisResult {
	res, _ := p.Analyze(ctx, input)
	return res
}

// Analyze runs the full pipeline and additionally returns the UI directive
// the module router derived from the result.
func (p *Pipeline) Analyze(ctx context.Context, input entity.AnalysisInput) (res *entity.AnalysisResult, directive entity.RouteDirective) {
	reqID := uuid.NewString()
	defer func() {
		if rec := recover(); rec != nil {
			res = p.degraded(input, "")
			directive = fallbackDirective()
			p.emit(reqID, input.UserID, observe.EventDegraded, map[string]any{"panic": fmt.Sprint(rec)})
		}
	}()

	normalized := Normalize(input.Content)
	if normalized == "" || input.UserID == "" {
		p.emit(reqID, input.UserID, observe.EventDegraded, map[string]any{"reason": "invalid input"})
		res = p.degraded(input, "empty or anonymous input")
		return res, fallbackDirective()
	}

	key := CacheKey(input.UserID, input.Kind, normalized)

	if cached, ok := p.cache.Get(ctx, key); ok {
		hit := cached.WithSource(entity.SourceCache)
		p.emit(reqID, input.UserID, observe.EventCacheHit, map[string]any{"key": key})
		return &hit, p.router.Route(ctx, &hit)
	}
	p.emit(reqID, input.UserID, observe.EventCacheMiss, map[string]any{"key": key})

	if p.seenRecently(key) {
		p.emit(reqID, input.UserID, observe.EventDuplicate, map[string]any{"key": key})
		dup := p.duplicateResult(key)
		return dup, p.router.Route(ctx, dup)
	}
	p.markSeen(key)

	cls := p.classifier.Classify(normalized)
	p.emit(reqID, input.UserID, observe.EventClassified, map[string]any{
		"category": cls.Category, "confidence": cls.Confidence,
	})

	sinceSimilar, vector := p.similarRecency(ctx, input.UserID, normalized)

	decision := p.gate.Decide(GateParams{
		Category:          cls.Category,
		Confidence:        cls.Confidence,
		TextLength:        len([]rune(normalized)),
		SinceSimilar:      sinceSimilar,
		UserPreference:    Preference(input.Metadata["preference"]),
		ContextImportance: Importance(input.Metadata["importance"]),
		Text:              normalized,
	})
	p.emit(reqID, input.UserID, observe.EventGateDecision, map[string]any{
		"needs_llm": decision.NeedsLLM, "reason": decision.Reason,
	})

	result := &entity.AnalysisResult{
		Category:   cls.Category,
		Confidence: cls.Confidence,
		NeedsLLM:   decision.NeedsLLM,
		Route:      cls.Route,
		Payload:    cls.Payload,
		CacheKey:   key,
		ComputedAt: p.now(),
		Source:     entity.SourceHeuristic,
	}

	if decision.NeedsLLM && p.provider != nil {
		if p.budgetOK(ctx, reqID, input.UserID) {
			if refined := p.refineWithModel(ctx, reqID, input.UserID, normalized, result); refined != nil {
				result = refined
			}
		}
	}

	directive = p.router.Route(ctx, result)
	p.emit(reqID, input.UserID, observe.EventRouted, map[string]any{
		"action": directive.Action, "screen": directive.Screen,
	})

	p.cache.Set(ctx, key, result, p.cacheCfg.TTLFor(result.Category))

	if vector != nil && p.similarity != nil {
		// Request context may be gone by the time this lands; detach it.
		go p.similarity.Record(context.Background(), input.UserID, vector)
	}

	return result, directive
}

// similarRecency embeds the (redacted) text and asks the index how long ago a
// near-duplicate was analyzed. Any failure simply disables gate rule 4.
func (p *Pipeline) similarRecency(ctx context.Context, userID, normalized string) (time.Duration, []float32) {
	if p.embedder == nil || p.similarity == nil {
		return 0, nil
	}
	vector, err := p.embedder.Embed(ctx, Redact(normalized))
	if err != nil {
		return 0, nil
	}
	seenAt, found, err := p.similarity.LastSimilar(ctx, userID, vector, p.gateCfg.SimilarWindow)
	if err != nil || !found {
		return 0, vector
	}
	since := p.now().Sub(seenAt)
	if since <= 0 {
		since = time.Nanosecond
	}
	return since, vector
}

func (p *Pipeline) budgetOK(ctx context.Context, reqID, userID string) bool {
	if p.limiter == nil {
		return true
	}
	allowed, err := p.limiter.Allow(ctx, userID)
	if err != nil || !allowed {
		p.emit(reqID, userID, observe.EventBudgetBlocked, map[string]any{"err": errString(err)})
		return false
	}
	return true
}

// refineWithModel calls the provider and overlays its verdict on the
// heuristic result. Returns nil when the heuristic result should stand.
func (p *Pipeline) refineWithModel(ctx context.Context, reqID, userID, normalized string, heuristic *entity.AnalysisResult) *entity.AnalysisResult {
	resp, err := p.provider.Generate(ctx, buildRefinementPrompt(Redact(normalized)))
	if err != nil {
		p.emit(reqID, userID, observe.EventLLMFailed, map[string]any{"err": err.Error()})
		return nil
	}
	p.emit(reqID, userID, observe.EventLLMCall, map[string]any{
		"model": resp.Model, "tokens": resp.TokenCount,
	})
	if p.limiter != nil && resp.TokenCount > 0 {
		go p.limiter.Spend(context.Background(), userID, resp.TokenCount)
	}

	ref, err := parseRefinement(resp.Content)
	if err != nil {
		p.emit(reqID, userID, observe.EventLLMFailed, map[string]any{"err": err.Error()})
		return nil
	}
	cat, ok := ref.category()
	if !ok {
		return nil
	}
	return &entity.AnalysisResult{
		Category:   cat,
		Confidence: ref.Confidence,
		NeedsLLM:   true,
		Route:      routeFor(cat),
		Payload:    ref.payload(cat),
		CacheKey:   heuristic.CacheKey,
		ComputedAt: p.now(),
		Source:     entity.SourceLLM,
	}
}

func (p *Pipeline) duplicateResult(key string) *entity.AnalysisResult {
	return &entity.AnalysisResult{
		Category:   entity.CategoryOther,
		Confidence: 0.5,
		NeedsLLM:   false,
		Route:      entity.RouteAutoSave,
		Payload:    entity.OtherPayload{Summary: "duplicate request"},
		CacheKey:   key,
		ComputedAt: p.now(),
		Source:     entity.SourceHeuristic,
	}
}

func (p *Pipeline) degraded(input entity.AnalysisInput, note string) *entity.AnalysisResult {
	normalized := Normalize(input.Content)
	return &entity.AnalysisResult{
		Category:   entity.CategoryOther,
		Confidence: 0.1,
		NeedsLLM:   false,
		Route:      entity.RouteAutoSave,
		Payload:    entity.OtherPayload{Summary: note},
		CacheKey:   CacheKey(input.UserID, input.Kind, normalized),
		ComputedAt: p.now(),
		Source:     entity.SourceHeuristic,
	}
}

func (p *Pipeline) seenRecently(key string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	seen, ok := p.recent[key]
	return ok && p.now().Sub(seen) <= p.dupWindow
}

func (p *Pipeline) markSeen(key string) {
	now := p.now()
	p.mu.Lock()
	defer p.mu.Unlock()
	for k, t := range p.recent {
		if now.Sub(t) > p.dupWindow {
			delete(p.recent, k)
		}
	}
	p.recent[key] = now
}

func (p *Pipeline) emit(reqID, userID string, kind observe.EventKind, fields map[string]any) {
	p.collector.Emit(observe.Event{
		Kind:      kind,
		RequestID: reqID,
		UserID:    userID,
		At:        p.now(),
		Fields:    fields,
	})
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
