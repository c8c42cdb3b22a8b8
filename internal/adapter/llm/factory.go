package llm

import (
	"context"
	"fmt"

	"bloomforge/internal/config"
	"bloomforge/internal/domain"
)

// New builds the configured generator. Provider "none" yields nil and no
// error: the service then runs rule-based only.
func New(ctx context.Context, cfg config.LLMConfig) (domain.TextGenerator, error) {
	switch cfg.Provider {
	case "", "none":
		return nil, nil
	case "gemini":
		return NewGemini(ctx, cfg.APIKey, cfg.Model, cfg.Temperature)
	case "openai":
		return NewOpenAI(cfg.APIKey, cfg.Model, cfg.Temperature)
	case "ollama":
		return NewOllama(cfg.ServerURL, cfg.Model, cfg.Temperature)
	case "openai_compat":
		return NewOpenAICompatible(cfg.ServerURL, cfg.APIKey, cfg.Model, cfg.Temperature)
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}
}
