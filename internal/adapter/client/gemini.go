package client

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"mindgate-core/internal/domain/entity"
)

// GeminiClient adapts one Gemini model to the AIProvider port. Generation
// parameters are fixed low-temperature: the pipeline wants a classification
// verdict, not prose.
type GeminiClient struct {
	client *genai.Client
	model  string
}

func NewGeminiClient(ctx context.Context, projectID, location, model string) (*GeminiClient, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		Project:  projectID,
		Location: location,
		Backend:  genai.BackendVertexAI,
	})
	if err != nil {
		return nil, err
	}
	return &GeminiClient{client: client, model: model}, nil
}

func NewGeminiClientFromClient(c *genai.Client, model string) *GeminiClient {
	return &GeminiClient{client: c, model: model}
}

func (g *GeminiClient) Generate(ctx context.Context, prompt string) (*entity.ProviderResponse, error) {
	cfg := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(float32(0.2)),
		MaxOutputTokens: 512,
	}
	result, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), cfg)
	if err != nil {
		return nil, classifyProviderError(err)
	}
	if len(result.Candidates) == 0 || result.Candidates[0].Content == nil {
		return nil, fmt.Errorf("model %s returned no candidates", g.model)
	}

	tokens := 0
	if result.UsageMetadata != nil {
		tokens = int(result.UsageMetadata.TotalTokenCount)
	}
	return &entity.ProviderResponse{
		Content:    result.Text(),
		Model:      g.model,
		TokenCount: tokens,
	}, nil
}

// classifyProviderError maps transport errors onto the domain taxonomy so the
// caller can tell rate limiting from timeout from plain failure.
func classifyProviderError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", entity.ErrProviderTimeout, err)
	}
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "429") || strings.Contains(msg, "resource_exhausted") ||
		strings.Contains(msg, "quota") {
		return fmt.Errorf("%w: %v", entity.ErrRateLimited, err)
	}
	return err
}
