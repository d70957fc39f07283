package api

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"mindgate-core/internal/adapter/store"
	"mindgate-core/internal/domain/entity"
	"mindgate-core/internal/usecase"
)

type analyzeRequest struct {
	Kind     string            `json:"kind"`
	Content  string            `json:"content"`
	UserID   string            `json:"user_id"`
	Locale   string            `json:"locale"`
	Metadata map[string]string `json:"metadata"`
}

type analyzeResponse struct {
	Result    *entity.AnalysisResult `json:"result"`
	Directive entity.RouteDirective  `json:"directive"`
}

// AnalysisHandler is the delivery layer over the pipeline. The pipeline never
// fails, so the only client-visible errors are malformed requests.
type AnalysisHandler struct {
	pipeline *usecase.Pipeline
	stats    func() []store.TierStats
}

func NewAnalysisHandler(pipeline *usecase.Pipeline, stats func() []store.TierStats) *AnalysisHandler {
	return &AnalysisHandler{pipeline: pipeline, stats: stats}
}

func (h *AnalysisHandler) HandleAnalyze(c *fiber.Ctx) error {
	var req analyzeRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if req.Content == "" || req.UserID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": entity.ErrInvalidRequest.Error()})
	}

	kind := entity.InputKind(req.Kind)
	switch kind {
	case entity.KindVoice, entity.KindText, entity.KindSensor:
	case "":
		kind = entity.KindText
	default:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "unknown input kind"})
	}

	input := entity.AnalysisInput{
		Kind:      kind,
		Content:   req.Content,
		UserID:    req.UserID,
		Locale:    req.Locale,
		Timestamp: time.Now(),
		Metadata:  req.Metadata,
	}

	result, directive := h.pipeline.Analyze(c.Context(), input)

	c.Set("X-Mindgate-Cache", "miss")
	if result.Source == entity.SourceCache {
		c.Set("X-Mindgate-Cache", "hit")
	}
	return c.Status(fiber.StatusOK).JSON(analyzeResponse{Result: result, Directive: directive})
}

func (h *AnalysisHandler) HandleHealth(c *fiber.Ctx) error {
	body := fiber.Map{"status": "healthy"}
	if h.stats != nil {
		body["cache"] = h.stats()
	}
	return c.Status(fiber.StatusOK).JSON(body)
}
