package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"mindgate-core/internal/domain/entity"
)

func TestRouteBreathworkProtocols(t *testing.T) {
	r := NewRouter(time.Second)

	high := r.Route(context.Background(), &entity.AnalysisResult{
		Category: entity.CategoryBreathwork,
		Payload:  entity.BreathworkPayload{AnxietyLevel: 8},
	})
	assert.Equal(t, entity.RouteSuggestBreathwork, high.Action)
	assert.Equal(t, protocol478, high.Params["protocol"])

	low := r.Route(context.Background(), &entity.AnalysisResult{
		Category: entity.CategoryBreathwork,
		Payload:  entity.BreathworkPayload{AnxietyLevel: 4},
	})
	assert.Equal(t, protocolBox, low.Params["protocol"])
}

func TestRouteMoodAutoSave(t *testing.T) {
	r := NewRouter(time.Second)

	d := r.Route(context.Background(), &entity.AnalysisResult{
		Category: entity.CategoryMood,
		Payload:  entity.MoodPayload{Score: 6, Note: "ok day"},
	})
	assert.Equal(t, entity.RouteAutoSave, d.Action)
	assert.Equal(t, 6, d.Params["mood_score"])
	assert.Equal(t, "ok day", d.Params["note"])
}

func TestRouteTherapyScreens(t *testing.T) {
	r := NewRouter(time.Second)

	cases := []struct {
		cat    entity.Category
		screen string
	}{
		{entity.CategoryCBT, ScreenThoughtRecord},
		{entity.CategoryOCD, ScreenOCDLog},
		{entity.CategoryERP, ScreenERPSession},
	}
	for _, tc := range cases {
		d := r.Route(context.Background(), &entity.AnalysisResult{Category: tc.cat})
		assert.Equal(t, entity.RouteOpenScreen, d.Action)
		assert.Equal(t, tc.screen, d.Screen)
	}
}

func TestRouteUnknownCategoryFallsBack(t *testing.T) {
	r := NewRouter(time.Second)

	d := r.Route(context.Background(), &entity.AnalysisResult{Category: entity.Category("MYSTERY")})
	assert.Equal(t, entity.RouteAutoSave, d.Action)
	assert.Empty(t, d.Screen)
}

func TestRouteCancelledContextFallsBack(t *testing.T) {
	r := NewRouter(time.Second)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	d := r.Route(ctx, &entity.AnalysisResult{Category: entity.CategoryMood})
	// Either the handler won the race or the fallback did; both are
	// AUTO_SAVE here, the invariant is that Route always answers.
	assert.Equal(t, entity.RouteAutoSave, d.Action)
}
