// Package ai turns a user instruction plus the current page into a reply and
// an optional next browser action, using one of several LLM providers.
package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/neboloop/browserpilot/internal/config"
)

// ErrNoAPIKey is returned when a hosted provider is configured without a key.
var ErrNoAPIKey = errors.New("ai provider requires an API key")

// CompletionRequest is a single-turn request for a JSON object reply.
type CompletionRequest struct {
	System    string
	Prompt    string
	MaxTokens int
}

// Provider interface for AI providers
type Provider interface {
	// ID returns the provider identifier (e.g., "anthropic", "openai")
	ID() string

	// Model returns the model the provider sends requests to
	Model() string

	// Complete returns the raw reply text, which should be a JSON object
	Complete(ctx context.Context, req *CompletionRequest) (string, error)
}

// Default models per provider, used when ai.model is empty.
var defaultModels = map[string]string{
	"openai":    "gpt-4o-mini",
	"anthropic": "claude-3-5-haiku-latest",
	"ollama":    "qwen3:4b",
	"gemini":    "gemini-1.5-flash",
}

// NewProvider builds the provider named by cfg.Provider.
func NewProvider(ctx context.Context, cfg config.AI) (Provider, error) {
	name := strings.ToLower(strings.TrimSpace(cfg.Provider))
	model := cfg.Model
	if model == "" {
		model = defaultModels[name]
	}

	switch name {
	case "openai", "":
		if cfg.APIKey == "" && cfg.BaseURL == "" {
			return nil, fmt.Errorf("openai: %w", ErrNoAPIKey)
		}
		if model == "" {
			model = defaultModels["openai"]
		}
		return NewOpenAIProvider(cfg.APIKey, model, cfg.BaseURL), nil
	case "anthropic":
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("anthropic: %w", ErrNoAPIKey)
		}
		return NewAnthropicProvider(cfg.APIKey, model, cfg.BaseURL), nil
	case "ollama":
		return NewOllamaProvider(cfg.BaseURL, model), nil
	case "gemini":
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("gemini: %w", ErrNoAPIKey)
		}
		return NewGeminiProvider(ctx, cfg.APIKey, model)
	default:
		return nil, fmt.Errorf("unknown ai provider: %s", cfg.Provider)
	}
}
