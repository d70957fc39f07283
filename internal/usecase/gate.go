package usecase

import (
	"strings"
	"time"

	"mindgate-core/internal/config"
	"mindgate-core/internal/domain/entity"
)

// Preference is the user's stated analysis depth.
type Preference string

const (
	PrefNone     Preference = ""
	PrefSimple   Preference = "simple"
	PrefAdvanced Preference = "advanced"
)

// Importance marks how much this request matters to the surrounding flow.
type Importance string

const (
	ImportanceNormal Importance = ""
	ImportanceHigh   Importance = "high"
)

// GateParams is everything the gate may look at. The struct is assembled by
// the coordinator; the gate itself performs no I/O.
type GateParams struct {
	Category          entity.Category
	Confidence        float64
	TextLength        int
	SinceSimilar      time.Duration // elapsed since the last similar request; <=0 means none known
	UserPreference    Preference
	ContextImportance Importance
	Text              string // normalized, for linguistic pattern checks
}

// Gate decides whether a request escalates to the remote model. It is a pure
// ordered rule table: the first applicable rule wins, and the same params
// always produce the same decision.
type Gate struct {
	cfg config.Gating
}

func NewGate(cfg config.Gating) *Gate {
	return &Gate{cfg: cfg}
}

func (g *Gate) Decide(p GateParams) entity.GatingDecision {
	// 1. Confident simple categories never need the model.
	if (p.Category == entity.CategoryMood || p.Category == entity.CategoryBreathwork) &&
		p.Confidence >= g.cfg.ThresholdSimple {
		return decision(false, entity.GateReasonSimpleCategory, p.Confidence)
	}

	// 2. Long text the heuristic is unsure about.
	if p.TextLength > g.cfg.TextLengthLimit && p.Confidence < g.cfg.ThresholdComplex {
		return decision(true, entity.GateReasonLongComplexText, p.Confidence)
	}

	// 3. Plain low confidence.
	if p.Confidence < g.cfg.ThresholdLow {
		return decision(true, entity.GateReasonLowConfidence, p.Confidence)
	}

	// 4. A similar request was already analyzed inside the window.
	if p.SinceSimilar > 0 && p.SinceSimilar <= g.cfg.SimilarWindow {
		return decision(false, entity.GateReasonRecentSimilar, p.Confidence)
	}

	// 5. Therapy categories escalate when not confidently classified.
	if p.Category.IsTherapy() && p.Confidence < g.cfg.ThresholdComplex {
		return decision(true, entity.GateReasonTherapyUncertain, p.Confidence)
	}

	// 6. Explicit user preference.
	if p.UserPreference == PrefSimple {
		return decision(false, entity.GateReasonUserPrefSimple, p.Confidence)
	}
	if p.UserPreference == PrefAdvanced && p.Confidence < 0.9 {
		return decision(true, entity.GateReasonUserPrefAdvanced, p.Confidence)
	}

	// 7. Important context with room for doubt.
	if p.ContextImportance == ImportanceHigh && p.Confidence < 0.85 {
		return decision(true, entity.GateReasonHighImportance, p.Confidence)
	}

	// 8. Linguistically complex text the keyword rules cannot be trusted on.
	if hasComplexLanguage(p.Text) {
		return decision(true, entity.GateReasonComplexLanguage, p.Confidence)
	}

	// 9. Default: stay cheap.
	return decision(false, entity.GateReasonDefault, p.Confidence)
}

func decision(needs bool, reason string, conf float64) entity.GatingDecision {
	return entity.GatingDecision{NeedsLLM: needs, Reason: reason, Confidence: conf}
}

var (
	contradictionMarkers = []string{" ama ", " fakat ", " ancak ", " but ", " yet ", " oysa "}
	distortionTerms      = []string{
		"her zaman", "asla", "hiçbir zaman", "hep böyle", "mahvol", "berbat",
		"always", "never", "everyone", "no one", "kimse", "worthless", "terrible",
	}
)

// hasComplexLanguage flags contradiction markers, stacked distortion keywords
// or nested questioning. Any one signal is enough.
func hasComplexLanguage(text string) bool {
	if containsAny(text, contradictionMarkers) {
		return true
	}
	hits := 0
	for _, t := range distortionTerms {
		if strings.Contains(text, t) {
			hits++
			if hits >= 2 {
				return true
			}
		}
	}
	return strings.Count(text, "?") >= 2
}
