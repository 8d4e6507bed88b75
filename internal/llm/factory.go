package llm

import (
	"context"
	"fmt"

	"github.com/studyhall/homework-helper/internal/config"
)

// NewProvider creates a Provider from the loaded application config.
func NewProvider(ctx context.Context, cfg config.Config) (Provider, error) {
	switch cfg.LLMProvider {
	case "anthropic":
		p, err := NewAnthropicProvider(cfg.AnthropicAPIKey, cfg.AnthropicModel)
		if err != nil {
			return nil, fmt.Errorf("initializing anthropic provider: %w", err)
		}
		return p, nil
	case "gemini":
		p, err := NewGeminiProvider(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			return nil, fmt.Errorf("initializing gemini provider: %w", err)
		}
		return p, nil
	case "mock":
		return NewMockProvider(), nil
	default:
		return nil, fmt.Errorf("unknown LLM provider: %q", cfg.LLMProvider)
	}
}
