package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/sashabaranov/go-openai"
)

// embeddingTimeout bounds the single external HTTP call of a search request.
const embeddingTimeout = 30 * time.Second

// EmbeddingService is the vector embedding service interface.
type EmbeddingService interface {
	// Embed generates a vector for a single text.
	Embed(ctx context.Context, text string) ([]float32, error)
}

type embeddingService struct {
	client *openai.Client
	model  string
}

// NewEmbeddingService creates an EmbeddingService for any OpenAI-compatible
// provider. Returns nil (service unavailable) when no API key is configured,
// so callers can degrade without a network round trip.
func NewEmbeddingService(cfg EmbeddingConfig) EmbeddingService {
	if !cfg.IsConfigured() {
		return nil
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}
	clientConfig.HTTPClient = &http.Client{Timeout: embeddingTimeout}

	return &embeddingService{
		client: openai.NewClientWithConfig(clientConfig),
		model:  cfg.Model,
	}
}

func (s *embeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	resp, err := s.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: []string{text},
		Model: openai.EmbeddingModel(s.model),
	})
	if err != nil {
		return nil, fmt.Errorf("create embeddings failed: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, errors.New("empty embedding response")
	}
	return resp.Data[0].Embedding, nil
}
