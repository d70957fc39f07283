package client

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// Embedder produces request embeddings for the similarity index.
type Embedder struct {
	client *genai.Client
	model  string // e.g. "text-embedding-004"
}

func NewEmbedderFromClient(c *genai.Client, model string) *Embedder {
	return &Embedder{client: c, model: model}
}

func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	res, err := e.client.Models.EmbedContent(ctx, e.model, genai.Text(text), nil)
	if err != nil {
		return nil, err
	}
	if len(res.Embeddings) == 0 {
		return nil, fmt.Errorf("embedding model %s returned no vectors", e.model)
	}
	return res.Embeddings[0].Values, nil
}
