package ai

import (
	"os"

	"github.com/sena-services/registry/internal/profile"
)

const (
	defaultBaseURL = "https://api.openai.com/v1"
	defaultModel   = "text-embedding-3-small"
)

// EmbeddingConfig holds connection settings for any OpenAI-compatible
// embedding provider.
type EmbeddingConfig struct {
	APIKey  string
	BaseURL string
	Model   string
}

// ResolveEmbeddingConfig resolves embedding settings with the priority:
// process environment, then profile, then hardcoded defaults. An empty APIKey
// means embeddings are unavailable; that is an expected state, not an error.
func ResolveEmbeddingConfig(p *profile.Profile) EmbeddingConfig {
	cfg := EmbeddingConfig{
		APIKey:  os.Getenv("OPENAI_API_KEY"),
		BaseURL: os.Getenv("OPENAI_BASE_URL"),
		Model:   os.Getenv("EMBEDDING_MODEL"),
	}
	if p != nil {
		if cfg.APIKey == "" {
			cfg.APIKey = p.EmbeddingAPIKey
		}
		if cfg.BaseURL == "" {
			cfg.BaseURL = p.EmbeddingBaseURL
		}
		if cfg.Model == "" {
			cfg.Model = p.EmbeddingModel
		}
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	return cfg
}

// IsConfigured reports whether an API key was resolved.
func (c EmbeddingConfig) IsConfigured() bool {
	return c.APIKey != ""
}
