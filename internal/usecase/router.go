package usecase

import (
	"context"
	"time"

	"mindgate-core/internal/domain/entity"
)

// Screen names the app navigates to for guided tools.
const (
	ScreenThoughtRecord = "thought-record"
	ScreenOCDLog        = "ocd-log"
	ScreenERPSession    = "erp-session"
)

// Breathwork protocols. High anxiety gets the longer grounding cadence.
const (
	protocolBox       = "box"
	protocol478       = "4-7-8"
	anxietyHighCutoff = 7
)

// Router maps an analysis result to a UI directive. The category set is
// closed, so dispatch is an exhaustive switch rather than a runtime registry.
// Each handler is wrapped in a timeout; a slow or panicking handler degrades
// to the generic auto-save directive instead of failing the request.
type Router struct {
	timeout time.Duration
}

func NewRouter(timeout time.Duration) *Router {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &Router{timeout: timeout}
}

func (r *Router) Route(ctx context.Context, res *entity.AnalysisResult) entity.RouteDirective {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	out := make(chan entity.RouteDirective, 1)
	go func() {
		defer func() {
			if rec := recover(); rec != nil {
				out <- fallbackDirective()
			}
		}()
		out <- dispatch(res)
	}()

	select {
	case d := <-out:
		return d
	case <-ctx.Done():
		return fallbackDirective()
	}
}

func dispatch(res *entity.AnalysisResult) entity.RouteDirective {
	switch res.Category {
	case entity.CategoryMood:
		return routeMood(res)
	case entity.CategoryBreathwork:
		return routeBreathwork(res)
	case entity.CategoryCBT:
		return routeTherapy(res, ScreenThoughtRecord, "A thought record can help you work through this.")
	case entity.CategoryOCD:
		return routeTherapy(res, ScreenOCDLog, "Logging the urge can weaken it. Want to note it down?")
	case entity.CategoryERP:
		return routeTherapy(res, ScreenERPSession, "This looks like an exposure exercise moment.")
	default:
		return fallbackDirective()
	}
}

func routeMood(res *entity.AnalysisResult) entity.RouteDirective {
	params := map[string]any{}
	if p, ok := res.Payload.(entity.MoodPayload); ok {
		if p.Score > 0 {
			params["mood_score"] = p.Score
		}
		if p.Note != "" {
			params["note"] = p.Note
		}
	}
	return entity.RouteDirective{
		Action:  entity.RouteAutoSave,
		Params:  params,
		Message: "Mood entry saved.",
	}
}

func routeBreathwork(res *entity.AnalysisResult) entity.RouteDirective {
	protocol := protocolBox
	anxiety := 0
	if p, ok := res.Payload.(entity.BreathworkPayload); ok {
		anxiety = p.AnxietyLevel
		if p.Protocol != "" {
			protocol = p.Protocol
		} else if anxiety >= anxietyHighCutoff {
			protocol = protocol478
		}
	}
	return entity.RouteDirective{
		Action:  entity.RouteSuggestBreathwork,
		Params:  map[string]any{"protocol": protocol, "anxiety_level": anxiety},
		Message: "A short breathing exercise might help right now.",
	}
}

func routeTherapy(res *entity.AnalysisResult, screen, message string) entity.RouteDirective {
	params := map[string]any{}
	if p, ok := res.Payload.(entity.TherapyPayload); ok {
		if len(p.Distortions) > 0 {
			params["distortions"] = p.Distortions
		}
		if p.Summary != "" {
			params["summary"] = p.Summary
		}
	}
	return entity.RouteDirective{
		Action:  entity.RouteOpenScreen,
		Screen:  screen,
		Params:  params,
		Message: message,
	}
}

func fallbackDirective() entity.RouteDirective {
	return entity.RouteDirective{
		Action:  entity.RouteAutoSave,
		Message: "Saved. No specific action suggested.",
	}
}
