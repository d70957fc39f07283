package entity

import (
	"encoding/json"
	"fmt"
	"time"
)

// InputKind tells the pipeline what produced the raw content.
type InputKind string

const (
	KindVoice  InputKind = "VOICE"
	KindText   InputKind = "TEXT"
	KindSensor InputKind = "SENSOR"
)

// Category is the coarse classification bucket used to route a request.
type Category string

const (
	CategoryMood       Category = "MOOD"
	CategoryCBT        Category = "CBT"
	CategoryOCD        Category = "OCD"
	CategoryERP        Category = "ERP"
	CategoryBreathwork Category = "BREATHWORK"
	CategoryOther      Category = "OTHER"
)

// IsTherapy reports whether the category maps to a guided therapy tool.
func (c Category) IsTherapy() bool {
	return c == CategoryCBT || c == CategoryOCD || c == CategoryERP
}

// RouteKind is the UI action the app should take for a result.
type RouteKind string

const (
	RouteOpenScreen        RouteKind = "OPEN_SCREEN"
	RouteAutoSave          RouteKind = "AUTO_SAVE"
	RouteSuggestBreathwork RouteKind = "SUGGEST_BREATHWORK"
)

// Source records which stage produced the result.
type Source string

const (
	SourceHeuristic Source = "heuristic"
	SourceLLM       Source = "llm"
	SourceCache     Source = "cache"
)

// AnalysisInput is one raw request into the pipeline. Created per request,
// never mutated.
type AnalysisInput struct {
	Kind      InputKind         `json:"kind"`
	Content   string            `json:"content"`
	UserID    string            `json:"user_id"`
	Locale    string            `json:"locale,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// AnalysisResult is the pipeline's output. Immutable after construction; a
// re-analysis supersedes it with a new value instead of mutating it.
type AnalysisResult struct {
	Category   Category  `json:"category"`
	Confidence float64   `json:"confidence"`
	NeedsLLM   bool      `json:"needs_llm"`
	Route      RouteKind `json:"route"`
	Payload    Payload   `json:"payload,omitempty"`
	CacheKey   string    `json:"cache_key"`
	ComputedAt time.Time `json:"computed_at"`
	Source     Source    `json:"source"`
}

// UnmarshalJSON restores the payload variant matching the category tag.
func (r *AnalysisResult) UnmarshalJSON(data []byte) error {
	var raw struct {
		Category   Category        `json:"category"`
		Confidence float64         `json:"confidence"`
		NeedsLLM   bool            `json:"needs_llm"`
		Route      RouteKind       `json:"route"`
		Payload    json.RawMessage `json:"payload"`
		CacheKey   string          `json:"cache_key"`
		ComputedAt time.Time       `json:"computed_at"`
		Source     Source          `json:"source"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	r.Category = raw.Category
	r.Confidence = raw.Confidence
	r.NeedsLLM = raw.NeedsLLM
	r.Route = raw.Route
	r.CacheKey = raw.CacheKey
	r.ComputedAt = raw.ComputedAt
	r.Source = raw.Source
	r.Payload = nil
	if len(raw.Payload) == 0 || string(raw.Payload) == "null" {
		return nil
	}
	p, err := decodePayload(raw.Category, raw.Payload)
	if err != nil {
		return fmt.Errorf("decode %s payload: %w", raw.Category, err)
	}
	r.Payload = p
	return nil
}

// WithSource returns a copy of the result re-tagged with a new source.
// Used when a cached value is replayed to the caller.
func (r AnalysisResult) WithSource(s Source) AnalysisResult {
	r.Source = s
	return r
}

// CacheEntry is one tier's copy of a cached result. Tier copies are
// independent and only eventually consistent with each other.
type CacheEntry struct {
	Key       string         `json:"key"`
	Value     AnalysisResult `json:"value"`
	ExpiresAt time.Time      `json:"expires_at"`
}

// Expired reports whether the entry is past its TTL at the given instant.
func (e *CacheEntry) Expired(now time.Time) bool {
	return !e.ExpiresAt.After(now)
}

// RouteDirective is the UI instruction the module router derives from a result.
type RouteDirective struct {
	Action  RouteKind      `json:"action"`
	Screen  string         `json:"screen,omitempty"`
	Params  map[string]any `json:"params,omitempty"`
	Message string         `json:"message"`
}

// ProviderResponse is the normalized output of one remote model call.
type ProviderResponse struct {
	Content    string         `json:"content"`
	Model      string         `json:"model"`
	TokenCount int            `json:"token_count"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}
