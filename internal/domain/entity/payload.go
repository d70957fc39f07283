package entity

import "encoding/json"

// Payload is the per-category result detail. The variant set is closed: each
// category decodes to exactly one concrete type, so consumers can switch on
// the type instead of probing loose map keys.
type Payload interface {
	isPayload()
}

// MoodPayload carries a mood check-in. Score 0 means "not stated".
type MoodPayload struct {
	Score int    `json:"score,omitempty"` // 1..10
	Note  string `json:"note,omitempty"`
}

// BreathworkPayload selects a breathing protocol for the suggested exercise.
type BreathworkPayload struct {
	Protocol     string `json:"protocol,omitempty"`
	AnxietyLevel int    `json:"anxiety_level,omitempty"` // 1..10
}

// TherapyPayload covers the guided tools (CBT thought record, OCD log, ERP).
type TherapyPayload struct {
	Technique   string   `json:"technique,omitempty"`
	Distortions []string `json:"distortions,omitempty"`
	Summary     string   `json:"summary,omitempty"`
}

// OtherPayload is the fallback variant for unclassified or degraded results.
type OtherPayload struct {
	Summary string `json:"summary,omitempty"`
}

func (MoodPayload) isPayload()       {}
func (BreathworkPayload) isPayload() {}
func (TherapyPayload) isPayload()    {}
func (OtherPayload) isPayload()      {}

func decodePayload(cat Category, raw json.RawMessage) (Payload, error) {
	switch cat {
	case CategoryMood:
		var p MoodPayload
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, err
		}
		return p, nil
	case CategoryBreathwork:
		var p BreathworkPayload
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, err
		}
		return p, nil
	case CategoryCBT, CategoryOCD, CategoryERP:
		var p TherapyPayload
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, err
		}
		return p, nil
	default:
		var p OtherPayload
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, err
		}
		return p, nil
	}
}
