package ai

import (
	"testing"

	"github.com/sena-services/registry/internal/profile"
)

func TestResolveEmbeddingConfig_Defaults(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("OPENAI_BASE_URL", "")
	t.Setenv("EMBEDDING_MODEL", "")

	cfg := ResolveEmbeddingConfig(nil)

	if cfg.APIKey != "" {
		t.Errorf("Expected empty APIKey, got %s", cfg.APIKey)
	}
	if cfg.BaseURL != "https://api.openai.com/v1" {
		t.Errorf("Expected default BaseURL, got %s", cfg.BaseURL)
	}
	if cfg.Model != "text-embedding-3-small" {
		t.Errorf("Expected default Model, got %s", cfg.Model)
	}
	if cfg.IsConfigured() {
		t.Error("Expected IsConfigured=false without an API key")
	}
}

func TestResolveEmbeddingConfig_FromProfile(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("OPENAI_BASE_URL", "")
	t.Setenv("EMBEDDING_MODEL", "")

	prof := &profile.Profile{
		EmbeddingAPIKey:  "profile-key",
		EmbeddingBaseURL: "https://embeddings.internal/v1",
		EmbeddingModel:   "bge-m3",
	}
	cfg := ResolveEmbeddingConfig(prof)

	if cfg.APIKey != "profile-key" {
		t.Errorf("Expected APIKey=profile-key, got %s", cfg.APIKey)
	}
	if cfg.BaseURL != "https://embeddings.internal/v1" {
		t.Errorf("Expected profile BaseURL, got %s", cfg.BaseURL)
	}
	if cfg.Model != "bge-m3" {
		t.Errorf("Expected Model=bge-m3, got %s", cfg.Model)
	}
	if !cfg.IsConfigured() {
		t.Error("Expected IsConfigured=true with an API key")
	}
}

func TestResolveEmbeddingConfig_EnvWinsOverProfile(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "env-key")
	t.Setenv("OPENAI_BASE_URL", "https://env.example/v1")
	t.Setenv("EMBEDDING_MODEL", "env-model")

	prof := &profile.Profile{
		EmbeddingAPIKey:  "profile-key",
		EmbeddingBaseURL: "https://profile.example/v1",
		EmbeddingModel:   "profile-model",
	}
	cfg := ResolveEmbeddingConfig(prof)

	if cfg.APIKey != "env-key" {
		t.Errorf("Expected APIKey=env-key, got %s", cfg.APIKey)
	}
	if cfg.BaseURL != "https://env.example/v1" {
		t.Errorf("Expected env BaseURL, got %s", cfg.BaseURL)
	}
	if cfg.Model != "env-model" {
		t.Errorf("Expected Model=env-model, got %s", cfg.Model)
	}
}

func TestNewEmbeddingService_NilWhenUnconfigured(t *testing.T) {
	svc := NewEmbeddingService(EmbeddingConfig{BaseURL: "https://api.openai.com/v1", Model: "x"})
	if svc != nil {
		t.Error("Expected nil service without an API key")
	}

	svc = NewEmbeddingService(EmbeddingConfig{APIKey: "k", BaseURL: "https://api.openai.com/v1", Model: "x"})
	if svc == nil {
		t.Error("Expected a service with an API key")
	}
}
