package observe

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestZapCollectorEmitsStructuredEntry(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	c := NewZapCollector(zap.New(core))

	c.Emit(Event{
		Kind:      EventGateDecision,
		RequestID: "r1",
		UserID:    "u1",
		At:        time.Now(),
		Fields:    map[string]any{"needs_llm": true},
	})

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, string(EventGateDecision), entries[0].Message)

	ctx := entries[0].ContextMap()
	assert.Equal(t, "r1", ctx["request_id"])
	assert.Equal(t, "u1", ctx["user_id"])
	assert.Equal(t, true, ctx["needs_llm"])
}

func TestNopCollectorDoesNothing(t *testing.T) {
	assert.NotPanics(t, func() {
		NopCollector{}.Emit(Event{Kind: EventDegraded})
	})
}
