package entity

// GatingDecision is the outcome of the LLM gate for one request. It is
// computed and discarded per request, never persisted.
type GatingDecision struct {
	NeedsLLM   bool    `json:"needs_llm"`
	Reason     string  `json:"reason"`
	Confidence float64 `json:"confidence"`
}

// Gate reason tags, one per rule in evaluation order.
const (
	GateReasonSimpleCategory   = "simple_category"
	GateReasonLongComplexText  = "long_complex_text"
	GateReasonLowConfidence    = "low_confidence"
	GateReasonRecentSimilar    = "recent_similar"
	GateReasonTherapyUncertain = "therapy_uncertain"
	GateReasonUserPrefSimple   = "user_pref_simple"
	GateReasonUserPrefAdvanced = "user_pref_advanced"
	GateReasonHighImportance   = "high_importance"
	GateReasonComplexLanguage  = "complex_language"
	GateReasonDefault          = "default"
)
