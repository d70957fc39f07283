package usecase

import (
	"regexp"
	"strconv"
	"strings"

	"mindgate-core/internal/domain/entity"
)

// Classification is the heuristic verdict for one normalized text.
type Classification struct {
	Category   entity.Category
	Confidence float64
	Route      entity.RouteKind
	Payload    entity.Payload
}

// classifierRule is one ordered keyword rule. First match wins; there is no
// scoring beyond rule order, and each rule carries a fixed confidence.
type classifierRule struct {
	category   entity.Category
	confidence float64
	keywords   []string
}

// Rules are checked top to bottom. Keyword sets cover Turkish and English;
// matching is plain substring containment over the normalized (lowercased)
// text. The classifier makes no accuracy claim, it only filters cheap cases
// before a paid model call.
var classifierRules = []classifierRule{
	{entity.CategoryBreathwork, 0.75, []string{
		"nefes", "breath", "breathe", "sakin ol", "çok sakin", "calm down",
		"rahatla", "relax", "derin nefes",
	}},
	{entity.CategoryOCD, 0.80, []string{
		"takıntı", "obsesyon", "obsession", "obsessive", "kompulsiyon",
		"compulsion", "kontrol etme", "checking", "bulaş", "contamination",
		"ritüel", "ritual", "emin olamıyorum",
	}},
	{entity.CategoryERP, 0.70, []string{
		"maruz", "exposure", "direnme", "resist the urge", "erp egzersiz",
		"habituation", "alışma",
	}},
	{entity.CategoryCBT, 0.70, []string{
		"düşünce kaydı", "thought record", "çarpıtma", "distortion",
		"bilişsel", "cognitive", "felaket", "catastroph", "otomatik düşünce",
		"automatic thought", "kanıt",
	}},
	{entity.CategoryMood, 0.70, []string{
		"ruh hali", "hissediyorum", "moralim", "mood", "i feel", "feeling",
		"duygu",
	}},
}

const defaultMoodConfidence = 0.50

var (
	moodScoreRe = regexp.MustCompile(`(10|[1-9])\s*/\s*10`)
	panicTerms  = []string{"panik", "panic", "dayanamıyorum", "boğul", "can't breathe", "overwhelm"}
)

// Classifier is a pure keyword classifier over normalized text.
type Classifier struct{}

func NewClassifier() *Classifier { return &Classifier{} }

// Classify runs the ordered rule list. The default bucket is MOOD: a free-text
// check-in with no recognizable cue is treated as a plain mood note.
func (c *Classifier) Classify(text string) Classification {
	for _, rule := range classifierRules {
		if containsAny(text, rule.keywords) {
			return Classification{
				Category:   rule.category,
				Confidence: rule.confidence,
				Route:      routeFor(rule.category),
				Payload:    heuristicPayload(rule.category, text),
			}
		}
	}
	return Classification{
		Category:   entity.CategoryMood,
		Confidence: defaultMoodConfidence,
		Route:      entity.RouteAutoSave,
		Payload:    heuristicPayload(entity.CategoryMood, text),
	}
}

func routeFor(cat entity.Category) entity.RouteKind {
	switch cat {
	case entity.CategoryBreathwork:
		return entity.RouteSuggestBreathwork
	case entity.CategoryCBT, entity.CategoryOCD, entity.CategoryERP:
		return entity.RouteOpenScreen
	default:
		return entity.RouteAutoSave
	}
}

func heuristicPayload(cat entity.Category, text string) entity.Payload {
	switch cat {
	case entity.CategoryMood:
		return entity.MoodPayload{Score: extractMoodScore(text), Note: snippet(text, 120)}
	case entity.CategoryBreathwork:
		return entity.BreathworkPayload{AnxietyLevel: estimateAnxiety(text)}
	case entity.CategoryCBT, entity.CategoryOCD, entity.CategoryERP:
		return entity.TherapyPayload{Summary: snippet(text, 120)}
	default:
		return entity.OtherPayload{Summary: snippet(text, 120)}
	}
}

// extractMoodScore picks up an explicit "7/10" style self-rating, 0 if absent.
func extractMoodScore(text string) int {
	m := moodScoreRe.FindStringSubmatch(text)
	if m == nil {
		return 0
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0
	}
	return n
}

// estimateAnxiety is a coarse 2-level guess: panic language reads high,
// anything else reads moderate.
func estimateAnxiety(text string) int {
	if containsAny(text, panicTerms) {
		return 8
	}
	return 4
}

func containsAny(text string, terms []string) bool {
	for _, t := range terms {
		if strings.Contains(text, t) {
			return true
		}
	}
	return false
}

func snippet(text string, max int) string {
	r := []rune(text)
	if len(r) <= max {
		return text
	}
	return string(r[:max])
}
