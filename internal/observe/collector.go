// Package observe decouples pipeline telemetry from business logic. The
// coordinator emits events; a collector decides what to do with them.
package observe

import (
	"time"

	"go.uber.org/zap"
)

// EventKind names a pipeline stage transition worth recording.
type EventKind string

const (
	EventCacheHit       EventKind = "cache_hit"
	EventCacheMiss      EventKind = "cache_miss"
	EventDuplicate      EventKind = "duplicate"
	EventClassified     EventKind = "classified"
	EventGateDecision   EventKind = "gate_decision"
	EventBudgetBlocked  EventKind = "budget_blocked"
	EventLLMCall        EventKind = "llm_call"
	EventLLMFailed      EventKind = "llm_failed"
	EventRouted         EventKind = "routed"
	EventRouteFallback  EventKind = "route_fallback"
	EventCacheWriteFail EventKind = "cache_write_failed"
	EventDegraded       EventKind = "degraded"
)

// Event is one telemetry record emitted by the coordinator.
type Event struct {
	Kind      EventKind
	RequestID string
	UserID    string
	At        time.Time
	Fields    map[string]any
}

// Collector receives pipeline events. Implementations must be non-blocking
// and must never fail the caller.
type Collector interface {
	Emit(ev Event)
}

// ZapCollector logs every event as a structured zap entry.
type ZapCollector struct {
	log *zap.Logger
}

func NewZapCollector(log *zap.Logger) *ZapCollector {
	return &ZapCollector{log: log}
}

func (c *ZapCollector) Emit(ev Event) {
	fields := make([]zap.Field, 0, len(ev.Fields)+3)
	fields = append(fields,
		zap.String("request_id", ev.RequestID),
		zap.String("user_id", ev.UserID),
		zap.Time("at", ev.At),
	)
	for k, v := range ev.Fields {
		fields = append(fields, zap.Any(k, v))
	}
	c.log.Info(string(ev.Kind), fields...)
}

// NopCollector drops everything. Useful in tests and library embedding.
type NopCollector struct{}

func (NopCollector) Emit(Event) {}
