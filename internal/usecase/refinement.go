package usecase

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"mindgate-core/internal/domain/entity"
)

// refinement is the structured verdict asked of the model. The parser is
// deliberately lenient: models wrap JSON in prose and code fences.
type refinement struct {
	Category     string  `json:"category"`
	Confidence   float64 `json:"confidence"`
	MoodScore    int     `json:"mood_score"`
	AnxietyLevel int     `json:"anxiety_level"`
	Summary      string  `json:"summary"`
}

var jsonObjectRe = regexp.MustCompile(`(?s)\{.*\}`)

const refinementInstruction = `You are a triage classifier for a mental-health self-help app.
Classify the user note into exactly one category: MOOD, CBT, OCD, ERP, BREATHWORK, OTHER.
Respond ONLY with a JSON object:
{"category": "...", "confidence": 0.0-1.0, "mood_score": 0-10, "anxiety_level": 0-10, "summary": "one short sentence"}
Use 0 for mood_score or anxiety_level when the note gives no signal. Do not explain.`

func buildRefinementPrompt(redactedText string) string {
	return fmt.Sprintf("%s\n\nUser note: %s", refinementInstruction, redactedText)
}

// parseRefinement extracts the JSON object from free-form model output.
func parseRefinement(raw string) (*refinement, error) {
	match := jsonObjectRe.FindString(raw)
	if match == "" {
		return nil, fmt.Errorf("no JSON object in model output")
	}
	var ref refinement
	if err := json.Unmarshal([]byte(match), &ref); err != nil {
		return nil, fmt.Errorf("unmarshal model output: %w", err)
	}
	ref.Category = strings.ToUpper(strings.TrimSpace(ref.Category))
	if ref.Confidence < 0 {
		ref.Confidence = 0
	}
	if ref.Confidence > 1 {
		ref.Confidence = 1
	}
	return &ref, nil
}

func (ref *refinement) category() (entity.Category, bool) {
	switch entity.Category(ref.Category) {
	case entity.CategoryMood, entity.CategoryCBT, entity.CategoryOCD,
		entity.CategoryERP, entity.CategoryBreathwork, entity.CategoryOther:
		return entity.Category(ref.Category), true
	}
	return "", false
}

func (ref *refinement) payload(cat entity.Category) entity.Payload {
	switch cat {
	case entity.CategoryMood:
		return entity.MoodPayload{Score: ref.MoodScore, Note: ref.Summary}
	case entity.CategoryBreathwork:
		return entity.BreathworkPayload{AnxietyLevel: ref.AnxietyLevel}
	case entity.CategoryCBT, entity.CategoryOCD, entity.CategoryERP:
		return entity.TherapyPayload{Summary: ref.Summary}
	default:
		return entity.OtherPayload{Summary: ref.Summary}
	}
}
