package memory

import (
	"context"
	"fmt"
	"os"
	"sync"

	"google.golang.org/genai"

	"agiharness/internal/config"
)

// Embedder converts text to a dense similarity vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float64, error)
}

var (
	embedderMu     sync.Mutex
	embedderLoaded bool
	embedder       Embedder
)

// loadEmbedder lazily builds the optional embedding backend, at most once
// per process. Every failure path yields nil, permanently: callers treat an
// unavailable backend as a silent branch, never an error.
func loadEmbedder(ctx context.Context) Embedder {
	embedderMu.Lock()
	defer embedderMu.Unlock()

	if embedderLoaded {
		return embedder
	}
	embedderLoaded = true

	if !config.Enabled(config.FlagSemanticMemory) {
		return nil
	}
	model := config.EmbeddingModel()
	if model == "" {
		return nil
	}
	backend, err := newGenAIEmbedder(ctx, model)
	if err != nil {
		return nil
	}
	embedder = backend
	return embedder
}

type genAIEmbedder struct {
	client *genai.Client
	model  string
}

var _ Embedder = (*genAIEmbedder)(nil)

func newGenAIEmbedder(ctx context.Context, model string) (*genAIEmbedder, error) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		apiKey = os.Getenv("GOOGLE_API_KEY")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("embedding backend requires an API key")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, fmt.Errorf("create embedding client: %w", err)
	}
	return &genAIEmbedder{client: client, model: model}, nil
}

func (e *genAIEmbedder) Embed(ctx context.Context, text string) ([]float64, error) {
	contents := []*genai.Content{
		genai.NewContentFromText(text, genai.RoleUser),
	}
	result, err := e.client.Models.EmbedContent(ctx, e.model, contents,
		&genai.EmbedContentConfig{
			TaskType: "SEMANTIC_SIMILARITY",
		},
	)
	if err != nil {
		return nil, fmt.Errorf("embed: %w", err)
	}
	if len(result.Embeddings) == 0 {
		return nil, fmt.Errorf("no embeddings returned")
	}

	values := result.Embeddings[0].Values
	vec := make([]float64, len(values))
	for i, v := range values {
		vec[i] = float64(v)
	}
	l2Normalize(vec)
	return vec, nil
}
